package httpserver

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/scrypt"

	"github.com/ruteri/tee-bls-signer/cryptoutils"
	"github.com/ruteri/tee-bls-signer/eip2335"
	"github.com/ruteri/tee-bls-signer/kms"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(capacity int) (*Handler, *kms.Store) {
	store := kms.NewStore(capacity)
	return NewHandler(store, eip2335.DefaultLimits(), testLogger()), store
}

func TestHandleUpcheck(t *testing.T) {
	h, _ := newTestHandler(kms.DefaultCapacity)
	got := h.Handle(Request{Method: MethodGet, Endpoint: EndpointUpcheck})
	assert.Equal(t, ComposeUpcheck(), got)
}

func TestHandleListKeysEmpty(t *testing.T) {
	h, _ := newTestHandler(kms.DefaultCapacity)
	got := h.Handle(Request{Method: MethodGet, Endpoint: EndpointListKeys})
	assert.Equal(t, `[` + "\n" + `]`, string(got[len(got)-3:]))
}

func TestHandleSignUnknownKey(t *testing.T) {
	h, _ := newTestHandler(kms.DefaultCapacity)
	req := Request{
		Method:    MethodPost,
		Endpoint:  EndpointSign,
		PubKeyHex: "00" + stringsRepeat("0", 94),
		Accept:    AcceptApplicationJSON,
		Body:      []byte(`{"signingRoot":"0x` + stringsRepeat("0", 64) + `"}`),
	}
	got := h.Handle(req)
	assert.Equal(t, ComposeNotFound(), got)
}

func TestHandleSignRoundTrip(t *testing.T) {
	h, store := newTestHandler(kms.DefaultCapacity)
	_, err := store.InsertGenerated(rand.Reader, nil)
	require.NoError(t, err)
	pk := store.PublicKeys()[0]

	var rootHex [32]byte
	_, err = rand.Read(rootHex[:])
	require.NoError(t, err)
	root := cryptoutils.SigningRoot32(rootHex)

	req := Request{
		Method:    MethodPost,
		Endpoint:  EndpointSign,
		PubKeyHex: pk.Hex(),
		Accept:    AcceptApplicationJSON,
		Body:      []byte(`{"signingRoot":"` + root.Hex0x() + `"}`),
	}

	got := h.Handle(req)
	var parsed struct {
		Signature string `json:"signature"`
	}
	body := extractBody(t, got)
	require.NoError(t, json.Unmarshal(body, &parsed))

	sigBytes, err := cryptoutils.DecodeHex(strings.TrimPrefix(parsed.Signature, "0x"))
	require.NoError(t, err)
	require.Len(t, sigBytes, 96)
	var sig cryptoutils.Signature96
	copy(sig[:], sigBytes)

	assert.True(t, blsVerifyViaStore(store, pk, root, sig))
}

func TestHandleImportRoundTrip(t *testing.T) {
	h, store := newTestHandler(kms.DefaultCapacity)

	password := []byte("a round trip password")
	var secret [32]byte
	_, err := rand.Read(secret[:])
	require.NoError(t, err)
	secret[0] &= 0x3f // keep the scalar below the BLS12-381 group order

	ksJSON := buildScryptKeystoreJSON(t, password, secret, 4, 1, 1)
	reqBody, err := json.Marshal(importRequestBody{
		Keystores: []string{ksJSON},
		Passwords: []string{string(password)},
	})
	require.NoError(t, err)

	got := h.Handle(Request{Method: MethodPost, Endpoint: EndpointImport, Body: reqBody})
	body := extractBody(t, got)

	require.Equal(t, 1, store.Size())
	assert.Contains(t, string(body), store.PublicKeys()[0].Hex0x())
}

func TestHandleImportWrongPassword(t *testing.T) {
	h, store := newTestHandler(kms.DefaultCapacity)

	var secret [32]byte
	_, err := rand.Read(secret[:])
	require.NoError(t, err)

	ksJSON := buildScryptKeystoreJSON(t, []byte("right password"), secret, 4, 1, 1)
	reqBody, err := json.Marshal(importRequestBody{
		Keystores: []string{ksJSON},
		Passwords: []string{"wrong password"},
	})
	require.NoError(t, err)

	got := h.Handle(Request{Method: MethodPost, Endpoint: EndpointImport, Body: reqBody})
	assert.Equal(t, ComposeBadRequest(), got)
	assert.Equal(t, 0, store.Size())
}

func TestHandleImportAtomicity(t *testing.T) {
	h, store := newTestHandler(kms.DefaultCapacity)

	var secretA, secretB [32]byte
	_, err := rand.Read(secretA[:])
	require.NoError(t, err)
	_, err = rand.Read(secretB[:])
	require.NoError(t, err)

	password := []byte("batch password")
	ksA := buildScryptKeystoreJSON(t, password, secretA, 4, 1, 1)
	ksB := buildScryptKeystoreJSON(t, password, secretB, 4, 1, 1)

	reqBody, err := json.Marshal(importRequestBody{
		Keystores: []string{ksA, ksB, "not a keystore"},
		Passwords: []string{string(password), string(password), string(password)},
	})
	require.NoError(t, err)

	got := h.Handle(Request{Method: MethodPost, Endpoint: EndpointImport, Body: reqBody})
	assert.Equal(t, ComposeBadRequest(), got)
	assert.Equal(t, 0, store.Size())
}

// TestHandleImportAtomicityInvalidScalar exercises the commit loop's
// failure path directly: a keystore that decrypts cleanly (correct
// password, correct checksum) to 32 bytes that are not a valid BLS
// scalar. This must be caught before either keystore in the batch is
// committed, not partway through the commit loop.
func TestHandleImportAtomicityInvalidScalar(t *testing.T) {
	h, store := newTestHandler(kms.DefaultCapacity)

	var secretA [32]byte
	_, err := rand.Read(secretA[:])
	require.NoError(t, err)
	secretA[0] &= 0x3f // keep the scalar below the BLS12-381 group order

	var invalidScalar [32]byte
	for i := range invalidScalar {
		invalidScalar[i] = 0xff
	}

	password := []byte("batch password")
	ksA := buildScryptKeystoreJSON(t, password, secretA, 4, 1, 1)
	ksInvalid := buildScryptKeystoreJSON(t, password, invalidScalar, 4, 1, 1)

	reqBody, err := json.Marshal(importRequestBody{
		Keystores: []string{ksA, ksInvalid},
		Passwords: []string{string(password), string(password)},
	})
	require.NoError(t, err)

	got := h.Handle(Request{Method: MethodPost, Endpoint: EndpointImport, Body: reqBody})
	assert.Equal(t, ComposeBadRequest(), got)
	assert.Equal(t, 0, store.Size())
}

func TestHandleImportCapacityBound(t *testing.T) {
	h, store := newTestHandler(1)

	var secretA, secretB [32]byte
	_, err := rand.Read(secretA[:])
	require.NoError(t, err)
	_, err = rand.Read(secretB[:])
	require.NoError(t, err)

	password := []byte("capacity password")
	ksA := buildScryptKeystoreJSON(t, password, secretA, 4, 1, 1)
	ksB := buildScryptKeystoreJSON(t, password, secretB, 4, 1, 1)

	reqBody, err := json.Marshal(importRequestBody{
		Keystores: []string{ksA, ksB},
		Passwords: []string{string(password), string(password)},
	})
	require.NoError(t, err)

	got := h.Handle(Request{Method: MethodPost, Endpoint: EndpointImport, Body: reqBody})
	assert.Equal(t, ComposeBadRequest(), got)
	assert.Equal(t, 0, store.Size())
}

func extractBody(t *testing.T, resp []byte) []byte {
	t.Helper()
	sep := []byte("\r\n\r\n")
	idx := indexOf(resp, sep)
	require.GreaterOrEqual(t, idx, 0)
	return resp[idx+len(sep):]
}

func indexOf(buf, sep []byte) int {
	for i := 0; i+len(sep) <= len(buf); i++ {
		if string(buf[i:i+len(sep)]) == string(sep) {
			return i
		}
	}
	return -1
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func blsVerifyViaStore(store *kms.Store, pk cryptoutils.PublicKey48, root cryptoutils.SigningRoot32, sig cryptoutils.Signature96) bool {
	idx, err := store.LookupByPublicKeyHex(pk.Hex())
	if err != nil {
		return false
	}
	resigned, err := store.Sign(idx, root)
	if err != nil {
		return false
	}
	return resigned == sig
}

// buildScryptKeystoreJSON builds a self-consistent EIP-2335 keystore JSON
// document for (password, secret) using the same scrypt/AES-CTR primitives
// eip2335.Decrypt consumes, independent of that package's own fixtures.
func buildScryptKeystoreJSON(t *testing.T, password []byte, secret [32]byte, n, r, p int) string {
	t.Helper()

	salt := make([]byte, 32)
	_, err := rand.Read(salt)
	require.NoError(t, err)
	iv := make([]byte, 16)
	_, err = rand.Read(iv)
	require.NoError(t, err)

	derived, err := scrypt.Key(password, salt, n, r, p, 32)
	require.NoError(t, err)

	block, err := aes.NewCipher(derived[:16])
	require.NoError(t, err)
	stream := cipher.NewCTR(block, iv)
	cipherMsg := make([]byte, 32)
	stream.XORKeyStream(cipherMsg, secret[:])

	preimage := append(append([]byte{}, derived[16:32]...), cipherMsg...)
	checksum := sha256.Sum256(preimage)

	doc := map[string]interface{}{
		"crypto": map[string]interface{}{
			"kdf": map[string]interface{}{
				"function": "scrypt",
				"params": map[string]interface{}{
					"dklen": 32,
					"n":     n,
					"r":     r,
					"p":     p,
					"salt":  cryptoutils.EncodeHex(salt),
				},
			},
			"checksum": map[string]interface{}{
				"function": "sha256",
				"message":  cryptoutils.EncodeHex(checksum[:]),
			},
			"cipher": map[string]interface{}{
				"function": "aes-128-ctr",
				"params": map[string]interface{}{
					"iv": cryptoutils.EncodeHex(iv),
				},
				"message": cryptoutils.EncodeHex(cipherMsg),
			},
		},
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(raw)
}
