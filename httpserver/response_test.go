package httpserver

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ruteri/tee-bls-signer/cryptoutils"
)

func TestComposeUpcheckExactBytes(t *testing.T) {
	got := ComposeUpcheck()
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 0\r\n\r\n"
	assert.Equal(t, want, string(got))
}

func TestComposeListKeysEmpty(t *testing.T) {
	got := ComposeListKeys(nil)
	want := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 3\r\n\r\n[\n]"
	assert.Equal(t, want, string(got))
}

func TestComposeListKeysMultiple(t *testing.T) {
	var a, b cryptoutils.PublicKey48
	a[0] = 0xaa
	b[0] = 0xbb

	got := ComposeListKeys([]cryptoutils.PublicKey48{a, b})
	body := "[\n\"" + a.Hex0x() + "\",\n\"" + b.Hex0x() + "\"\n]"
	want := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: " +
		strconv.Itoa(len(body)) + "\r\n\r\n" + body
	assert.Equal(t, want, string(got))
}

func TestComposeSignTextPlain(t *testing.T) {
	var sig cryptoutils.Signature96
	sig[0] = 0xff
	got := ComposeSign(sig, AcceptTextPlain)
	assert.Contains(t, string(got), "Content-Type: text/plain")
	assert.Contains(t, string(got), sig.Hex0x())
}

func TestComposeSignJSON(t *testing.T) {
	var sig cryptoutils.Signature96
	sig[0] = 0xff
	got := ComposeSign(sig, AcceptApplicationJSON)
	want := `{"signature": "` + sig.Hex0x() + `"}`
	assert.Contains(t, string(got), "Content-Type: application/json")
	assert.Contains(t, string(got), want)
}

func TestComposeNotFoundEmptyBody(t *testing.T) {
	got := ComposeNotFound()
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\nContent-Type: application/json\r\nContent-Length: 0\r\n\r\n", string(got))
}

func TestComposeBadRequestEmptyBody(t *testing.T) {
	got := ComposeBadRequest()
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\nContent-Type: application/json\r\nContent-Length: 0\r\n\r\n", string(got))
}
