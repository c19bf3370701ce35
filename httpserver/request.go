package httpserver

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

// MaxBuf bounds a single request's read buffer.
const MaxBuf = 32768

// MaxHeaders bounds the number of header lines a request may carry.
const MaxHeaders = 100

// headerProbeLimit is how many bytes of headerless input Parse will wait
// for before concluding the request will never terminate its headers.
const headerProbeLimit = 300

const signPathPrefix = "/api/v1/eth2/sign/0x"

var (
	// ErrBadRequest covers malformed HTTP, unknown POST paths, malformed
	// JSON, wrong field types, oversized bodies and too many headers.
	ErrBadRequest = errors.New("httpserver: bad request")
	// ErrNotFound is returned when a signing public key is not in the store.
	ErrNotFound = errors.New("httpserver: public key not found")
)

// Method is the HTTP method of a parsed request. Only GET and POST appear
// on the signer's API surface.
type Method int

const (
	MethodGet Method = iota
	MethodPost
)

// EndpointKind identifies which of the four routes a request resolved to.
type EndpointKind int

const (
	EndpointUpcheck EndpointKind = iota
	EndpointListKeys
	EndpointSign
	EndpointImport
)

// Accept is the negotiated response content type.
type Accept int

const (
	AcceptTextPlain Accept = iota
	AcceptApplicationJSON
)

// Request is a fully parsed, dispatch-ready request. Body is a slice into
// the caller's read buffer, not a copy; it is only valid for the lifetime
// of that buffer.
type Request struct {
	Method    Method
	Endpoint  EndpointKind
	PubKeyHex string
	Accept    Accept
	Body      []byte
}

// Outcome is the result of feeding a buffer to Parse.
type Outcome int

const (
	Incomplete Outcome = iota
	Complete
	Invalid
)

// ParseResult is what Parse returns: either more bytes are needed
// (Incomplete), a Request is ready to dispatch (Complete), or the buffer
// can never become a valid request (Invalid, with Err set).
type ParseResult struct {
	Outcome Outcome
	Request Request
	Err     error
}

func incomplete() ParseResult {
	return ParseResult{Outcome: Incomplete}
}

func invalid(err error) ParseResult {
	return ParseResult{Outcome: Invalid, Err: err}
}

func complete(req Request) ParseResult {
	return ParseResult{Outcome: Complete, Request: req}
}

// Parse runs an Incomplete/Complete/Invalid state machine over a single
// connection's read buffer. It never blocks and never allocates header
// strings independent of buf's lifetime beyond what Go's string/[]byte
// conversions require for map keys.
func Parse(buf []byte) ParseResult {
	termIdx := bytes.Index(buf, []byte("\r\n\r\n"))
	if termIdx < 0 {
		if len(buf) >= headerProbeLimit {
			return invalid(ErrBadRequest)
		}
		return incomplete()
	}

	head := buf[:termIdx]
	lines := bytes.Split(head, []byte("\r\n"))
	if len(lines) == 0 || len(lines[0]) == 0 {
		return invalid(ErrBadRequest)
	}

	method, path, ok := parseRequestLine(lines[0])
	if !ok {
		return invalid(ErrBadRequest)
	}

	headerLines := lines[1:]
	if len(headerLines) > MaxHeaders {
		return invalid(ErrBadRequest)
	}
	headers, err := parseHeaders(headerLines)
	if err != nil {
		return invalid(err)
	}

	endpoint, pubKeyHex, err := classifyEndpoint(method, path)
	if err != nil {
		return invalid(err)
	}

	accept := classifyAccept(headers)
	bodyStart := termIdx + 4

	if method != MethodPost {
		if len(buf) > bodyStart {
			return invalid(ErrBadRequest)
		}
		return complete(Request{Method: method, Endpoint: endpoint, Accept: accept})
	}

	clStr, ok := headers["content-length"]
	if !ok {
		return invalid(ErrBadRequest)
	}
	contentLength, err := strconv.Atoi(clStr)
	if err != nil || contentLength < 0 {
		return invalid(ErrBadRequest)
	}
	bodyEnd := bodyStart + contentLength
	if bodyEnd > MaxBuf {
		return invalid(ErrBadRequest)
	}
	if len(buf) < bodyEnd {
		return incomplete()
	}
	if len(buf) > bodyEnd {
		return invalid(ErrBadRequest)
	}

	return complete(Request{
		Method:    method,
		Endpoint:  endpoint,
		PubKeyHex: pubKeyHex,
		Accept:    accept,
		Body:      buf[bodyStart:bodyEnd],
	})
}

func parseRequestLine(line []byte) (Method, string, bool) {
	fields := strings.Fields(string(line))
	if len(fields) < 2 {
		return 0, "", false
	}
	switch fields[0] {
	case "GET":
		return MethodGet, fields[1], true
	case "POST":
		return MethodPost, fields[1], true
	default:
		return 0, "", false
	}
}

func parseHeaders(lines [][]byte) (map[string]string, error) {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		idx := bytes.IndexByte(line, ':')
		if idx <= 0 {
			return nil, ErrBadRequest
		}
		name := strings.ToLower(strings.TrimSpace(string(line[:idx])))
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, ErrBadRequest
		}
		value := strings.TrimSpace(string(line[idx+1:]))
		headers[name] = value
	}
	return headers, nil
}

func classifyAccept(headers map[string]string) Accept {
	v, ok := headers["accept"]
	if !ok {
		return AcceptTextPlain
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "application/json", "*/*":
		return AcceptApplicationJSON
	default:
		return AcceptTextPlain
	}
}

func classifyEndpoint(method Method, path string) (EndpointKind, string, error) {
	switch {
	case method == MethodGet && path == "/upcheck":
		return EndpointUpcheck, "", nil
	case method == MethodGet && path == "/api/v1/eth2/publicKeys":
		return EndpointListKeys, "", nil
	case method == MethodPost && path == "/eth/v1/keystores":
		return EndpointImport, "", nil
	case method == MethodPost && strings.HasPrefix(path, signPathPrefix):
		hexPart := path[len(signPathPrefix):]
		if len(hexPart) == 96 && isHex(hexPart) {
			return EndpointSign, hexPart, nil
		}
		return 0, "", ErrBadRequest
	default:
		return 0, "", ErrBadRequest
	}
}

func isHex(s string) bool {
	for _, c := range s {
		isHexDigit := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHexDigit {
			return false
		}
	}
	return true
}
