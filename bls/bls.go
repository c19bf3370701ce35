package bls

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"

	"github.com/ruteri/tee-bls-signer/cryptoutils"
)

// dst is the domain separation tag for the Ethereum consensus layer's
// proof-of-possession BLS signature scheme (MinPk: PK in G1, sig in G2).
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// ErrInvalidIKM is returned when the input key material is too short for
// EIP-2333 key generation.
var ErrInvalidIKM = errors.New("bls: ikm must be at least 32 bytes")

// ErrKeyGenFailed is returned when the underlying library rejects otherwise
// well-formed input key material.
var ErrKeyGenFailed = errors.New("bls: key generation failed")

// ErrInvalidSecretKey is returned when secret key bytes cannot be
// deserialized into a valid scalar.
var ErrInvalidSecretKey = errors.New("bls: invalid secret key bytes")

// ErrInvalidPublicKey is returned when public key bytes cannot be
// decompressed into a valid G1 point.
var ErrInvalidPublicKey = errors.New("bls: invalid public key bytes")

// ErrInvalidSignature is returned when signature bytes cannot be
// decompressed into a valid G2 point.
var ErrInvalidSignature = errors.New("bls: invalid signature bytes")

// SecretKey wraps a BLS12-381 secret scalar. The zero value is invalid; use
// Keygen or SecretKeyFromBytes.
type SecretKey struct {
	sk *blst.SecretKey
}

// Keygen derives a secret key from input key material per EIP-2333. ikm
// must be at least 32 bytes. info is an optional, caller-supplied key-info
// string (may be nil or empty) mixed into the derivation; it is never
// synthesized from a pointer or its size, unlike the source this contract
// was corrected from.
func Keygen(ikm []byte, info []byte) (*SecretKey, error) {
	if len(ikm) < 32 {
		return nil, ErrInvalidIKM
	}
	var sk *blst.SecretKey
	if len(info) > 0 {
		sk = blst.KeyGen(ikm, info)
	} else {
		sk = blst.KeyGen(ikm)
	}
	if sk == nil {
		return nil, ErrKeyGenFailed
	}
	return &SecretKey{sk: sk}, nil
}

// SecretKeyFromBytes deserializes a 32-byte big-endian secret scalar.
func SecretKeyFromBytes(b [32]byte) (*SecretKey, error) {
	sk := new(blst.SecretKey).Deserialize(b[:])
	if sk == nil {
		return nil, ErrInvalidSecretKey
	}
	return &SecretKey{sk: sk}, nil
}

// Bytes serializes the secret key to its 32-byte big-endian scalar form.
func (s *SecretKey) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], s.sk.Serialize())
	return out
}

// PublicKey derives the G1-compressed public key matching this secret key.
func (s *SecretKey) PublicKey() cryptoutils.PublicKey48 {
	p := new(blst.P1Affine).From(s.sk)
	var out cryptoutils.PublicKey48
	copy(out[:], p.Compress())
	return out
}

// Sign produces a G2-compressed signature over a 32-byte signing root.
func (s *SecretKey) Sign(root cryptoutils.SigningRoot32) cryptoutils.Signature96 {
	sig := new(blst.P2Affine).Sign(s.sk, root[:], dst)
	var out cryptoutils.Signature96
	copy(out[:], sig.Compress())
	return out
}

// Verify checks a signature over a signing root under the given public key.
// Not required by the Web3Signer wire protocol; used by the round-trip
// property tests.
func Verify(pk cryptoutils.PublicKey48, root cryptoutils.SigningRoot32, sig cryptoutils.Signature96) bool {
	p := new(blst.P1Affine).Uncompress(pk[:])
	if p == nil {
		return false
	}
	s := new(blst.P2Affine).Uncompress(sig[:])
	if s == nil {
		return false
	}
	return s.Verify(true, p, true, root[:], dst)
}
