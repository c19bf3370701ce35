// Package eip2335 implements the decryption half of the EIP-2335 keystore
// format: KDF selection (scrypt or PBKDF2-HMAC-SHA256), checksum
// verification, and AES-128-CTR decryption of the wrapped secret scalar.
//
// There is deliberately no encryption side. The signer only ever consumes
// keystores produced elsewhere (eth2-deposit-cli and similar tooling) and
// never exports a stored key, so this package never needs to produce a
// keystore a caller could exfiltrate.
//
// Every error this package can return collapses, at the httpserver
// boundary, to a single "bad request" outcome — see the package-level
// error variables for the taxonomy kept internally for tests and logging.
package eip2335
