package eip2335

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/ruteri/tee-bls-signer/cryptoutils"
)

// ErrBadJSONFormat is returned for any missing or wrong-typed EIP-2335
// field, including hex decode failures and wrong-length byte strings.
var ErrBadJSONFormat = errors.New("eip2335: malformed keystore JSON")

// ErrBadPassword is returned when the checksum computed from the derived
// key does not match the keystore's stored checksum.
var ErrBadPassword = errors.New("eip2335: checksum mismatch")

// ErrKdfTooExpensive is returned when scrypt's cost parameters exceed the
// configured memory ceiling.
var ErrKdfTooExpensive = errors.New("eip2335: kdf cost exceeds configured ceiling")

// Limits bounds the resources a single decryption may consume.
type Limits struct {
	// MaxScryptCost bounds scrypt's n*r*p product. EIP-2335's reference
	// parameters (n=2^18, r=8, p=1) cost 2097152; this default leaves
	// meaningful headroom while still rejecting pathological inputs on a
	// memory-constrained secure-world target.
	MaxScryptCost int
}

// DefaultLimits returns the limits used when the caller has not
// configured any.
func DefaultLimits() Limits {
	return Limits{MaxScryptCost: 1 << 24}
}

// Decrypt runs the full EIP-2335 pipeline: KDF derivation, checksum
// verification, and AES-128-CTR decryption. On success it returns the
// 32-byte secret scalar that was wrapped by the keystore.
func Decrypt(ks EncryptedKeystore, password []byte, limits Limits) ([32]byte, error) {
	var out [32]byte

	cipherMsg, err := decodeHexField(ks.Crypto.Cipher.Message)
	if err != nil || len(cipherMsg) != 32 {
		return out, ErrBadJSONFormat
	}

	dk, err := deriveKey(ks.Crypto.KDF, password, limits)
	if err != nil {
		return out, err
	}
	// Best-effort: keep the derived key off swap for the short window it
	// lives in this stack frame.
	cryptoutils.Lock(dk[:])
	defer cryptoutils.Unlock(dk[:])
	defer cryptoutils.Zero(dk[:])

	if err := verifyChecksum(ks.Crypto.Checksum, dk, cipherMsg); err != nil {
		return out, err
	}

	iv, err := decodeHexField(ks.Crypto.Cipher.Params.IV)
	if err != nil || len(iv) != 16 {
		return out, ErrBadJSONFormat
	}
	if ks.Crypto.Cipher.Function != "aes-128-ctr" {
		return out, ErrBadJSONFormat
	}

	block, err := aes.NewCipher(dk[:16])
	if err != nil {
		return out, ErrBadJSONFormat
	}
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(out[:], cipherMsg)

	return out, nil
}

func deriveKey(kdf kdfSection, password []byte, limits Limits) ([32]byte, error) {
	var dk [32]byte
	switch kdf.Function {
	case "pbkdf2":
		return derivePBKDF2(kdf.Params, password)
	case "scrypt":
		return deriveScrypt(kdf.Params, password, limits)
	default:
		return dk, ErrBadJSONFormat
	}
}

func derivePBKDF2(params map[string]interface{}, password []byte) ([32]byte, error) {
	var dk [32]byte

	dklen, ok := paramInt(params, "dklen")
	if !ok || dklen != 32 {
		return dk, ErrBadJSONFormat
	}
	iterations, ok := paramInt(params, "c")
	if !ok || iterations <= 0 {
		return dk, ErrBadJSONFormat
	}
	prf, ok := paramString(params, "prf")
	if !ok || prf != "hmac-sha256" {
		return dk, ErrBadJSONFormat
	}
	saltHex, ok := paramString(params, "salt")
	if !ok {
		return dk, ErrBadJSONFormat
	}
	salt, err := decodeHexField(saltHex)
	if err != nil {
		return dk, ErrBadJSONFormat
	}

	derived := pbkdf2.Key(password, salt, iterations, 32, sha256.New)
	copy(dk[:], derived)
	cryptoutils.Zero(derived)
	return dk, nil
}

func deriveScrypt(params map[string]interface{}, password []byte, limits Limits) ([32]byte, error) {
	var dk [32]byte

	dklen, ok := paramInt(params, "dklen")
	if !ok || dklen != 32 {
		return dk, ErrBadJSONFormat
	}
	n, ok := paramInt(params, "n")
	if !ok || n < 2 || n&(n-1) != 0 {
		return dk, ErrBadJSONFormat
	}
	r, ok := paramInt(params, "r")
	if !ok || r <= 0 {
		return dk, ErrBadJSONFormat
	}
	p, ok := paramInt(params, "p")
	if !ok || p <= 0 {
		return dk, ErrBadJSONFormat
	}
	saltHex, ok := paramString(params, "salt")
	if !ok {
		return dk, ErrBadJSONFormat
	}
	salt, err := decodeHexField(saltHex)
	if err != nil {
		return dk, ErrBadJSONFormat
	}

	ceiling := limits.MaxScryptCost
	if ceiling <= 0 {
		ceiling = DefaultLimits().MaxScryptCost
	}
	if n*r*p > ceiling {
		return dk, ErrKdfTooExpensive
	}

	derived, err := scrypt.Key(password, salt, n, r, p, 32)
	if err != nil {
		return dk, ErrBadJSONFormat
	}
	copy(dk[:], derived)
	cryptoutils.Zero(derived)
	return dk, nil
}

func verifyChecksum(sum checksumSection, dk [32]byte, cipherMsg []byte) error {
	if sum.Function != "sha256" {
		return ErrBadJSONFormat
	}
	want, err := decodeHexField(sum.Message)
	if err != nil || len(want) != 32 {
		return ErrBadJSONFormat
	}

	preimage := make([]byte, 0, 16+len(cipherMsg))
	preimage = append(preimage, dk[16:32]...)
	preimage = append(preimage, cipherMsg...)
	got := sha256.Sum256(preimage)
	cryptoutils.Zero(preimage)

	if !cryptoutils.ConstantTimeEqual(got[:], want) {
		return ErrBadPassword
	}
	return nil
}

func decodeHexField(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrBadJSONFormat
	}
	return cryptoutils.DecodeHex(s)
}

func paramInt(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func paramString(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
