package cryptoutils

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PublicKey48 is a BLS12-381 G1-compressed public key.
type PublicKey48 [48]byte

// PublicKey48FromHex parses a 96-char hex string, with or without a 0x
// prefix, into a PublicKey48.
func PublicKey48FromHex(s string) (PublicKey48, error) {
	var pk PublicKey48
	b, err := decodeFixed(s, len(pk))
	if err != nil {
		return pk, fmt.Errorf("public key: %w", err)
	}
	copy(pk[:], b)
	return pk, nil
}

// Hex renders the public key as lowercase hex without a 0x prefix, the form
// used by the Sign path URL and by the store's public-key lookup.
func (pk PublicKey48) Hex() string { return EncodeHex(pk[:]) }

// Hex0x renders the public key as "0x"-prefixed lowercase hex, the form
// used on the wire in JSON bodies.
func (pk PublicKey48) Hex0x() string { return hexutil.Encode(pk[:]) }

func (pk PublicKey48) String() string { return pk.Hex0x() }

// Signature96 is a BLS12-381 G2-compressed signature.
type Signature96 [96]byte

// Hex renders the signature as lowercase hex without a 0x prefix.
func (s Signature96) Hex() string { return EncodeHex(s[:]) }

// Hex0x renders the signature as "0x"-prefixed lowercase hex.
func (s Signature96) Hex0x() string { return hexutil.Encode(s[:]) }

func (s Signature96) String() string { return s.Hex0x() }

// SigningRoot32 is the 32-byte Merkle root a validator is asked to sign.
type SigningRoot32 [32]byte

// SigningRoot32FromHex parses a 64-char hex string, with or without a 0x
// prefix, into a SigningRoot32.
func SigningRoot32FromHex(s string) (SigningRoot32, error) {
	var r SigningRoot32
	b, err := decodeFixed(s, len(r))
	if err != nil {
		return r, fmt.Errorf("signing root: %w", err)
	}
	copy(r[:], b)
	return r, nil
}

func (r SigningRoot32) Hex0x() string { return hexutil.Encode(r[:]) }

func (r SigningRoot32) String() string { return r.Hex0x() }

// decodeFixed strips an optional 0x prefix and decodes exactly n bytes of
// hex, rejecting anything shorter or longer.
func decodeFixed(s string, n int) ([]byte, error) {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	b, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, fmt.Errorf("want %d bytes, got %d", n, len(b))
	}
	return b, nil
}
