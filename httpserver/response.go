package httpserver

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ruteri/tee-bls-signer/cryptoutils"
)

func composeResponse(statusCode int, statusText, contentType string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", statusCode, statusText)
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.Itoa(len(body)))
	buf.WriteString("\r\n\r\n")
	buf.Write(body)
	return buf.Bytes()
}

// ComposeUpcheck renders the fixed 200 response with an empty body.
func ComposeUpcheck() []byte {
	return composeResponse(200, "OK", "text/plain", nil)
}

// ComposeListKeys renders the ListKeys body: one hex-encoded public key per
// line, in insertion order, comma-separated, bracketed.
func ComposeListKeys(pubkeys []cryptoutils.PublicKey48) []byte {
	if len(pubkeys) == 0 {
		return composeResponse(200, "OK", "application/json", []byte("[\n]"))
	}

	var body bytes.Buffer
	body.WriteString("[\n")
	for i, pk := range pubkeys {
		if i > 0 {
			body.WriteString(",\n")
		}
		body.WriteString(`"`)
		body.WriteString(pk.Hex0x())
		body.WriteString(`"`)
	}
	body.WriteString("\n]")
	return composeResponse(200, "OK", "application/json", body.Bytes())
}

// ComposeSign renders the Sign response body in the caller's negotiated
// content type.
func ComposeSign(sig cryptoutils.Signature96, accept Accept) []byte {
	if accept == AcceptApplicationJSON {
		body := []byte(fmt.Sprintf(`{"signature": "%s"}`, sig.Hex0x()))
		return composeResponse(200, "OK", "application/json", body)
	}
	return composeResponse(200, "OK", "text/plain", []byte(sig.Hex0x()))
}

// ComposeNotFound renders the 404 response used when a signing public key
// is not present in the store.
func ComposeNotFound() []byte {
	return composeResponse(404, "Not Found", "application/json", nil)
}

// ComposeBadRequest renders the 400 response used for every other failure
// in the parse/dispatch/import pipeline.
func ComposeBadRequest() []byte {
	return composeResponse(400, "Bad Request", "application/json", nil)
}
