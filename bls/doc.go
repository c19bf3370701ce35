// Package bls is a thin facade over the BLS12-381 MinPk scheme as used by
// the Ethereum consensus layer: secret scalars in Fr, public keys in
// G1 (48-byte compressed), signatures in G2 (96-byte compressed).
//
// It exists so that nothing outside this package needs to know the shape
// of the supranational/blst bindings: keystore and httpserver only see
// SecretKey, cryptoutils.PublicKey48 and cryptoutils.Signature96.
package bls
