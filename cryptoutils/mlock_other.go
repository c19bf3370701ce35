//go:build !linux && !darwin

package cryptoutils

// Lock is a no-op on platforms without mlock; the build targeted by this
// service is linux/arm secure-world firmware, so this path only matters for
// running the test suite on other hosts.
func Lock(b []byte) error { return nil }

// Unlock is a no-op to match Lock.
func Unlock(b []byte) error { return nil }
