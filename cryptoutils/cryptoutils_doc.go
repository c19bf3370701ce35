// Package cryptoutils provides the low-level byte utilities shared by the
// signer's other packages: hex codec, constant-time comparison, best-effort
// memory zeroization, and the typed fixed-size byte wrappers used for
// public keys, signatures and signing roots.
//
// None of the BLS12-381 or AES/SHA primitives themselves live here — those
// are handled by package bls and the stdlib crypto packages respectively.
// This package only covers the framing concerns around them: encoding,
// comparing, and scrubbing byte slices that touch key material.
package cryptoutils
