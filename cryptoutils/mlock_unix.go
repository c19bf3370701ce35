//go:build linux || darwin

package cryptoutils

import "golang.org/x/sys/unix"

// Lock pins b in physical memory so it cannot be written to swap, for the
// duration the decryption key scratch buffer is live. Best effort:
// callers must not treat a non-nil error as fatal, only as "unlocked".
func Lock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

// Unlock reverses Lock.
func Unlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}
