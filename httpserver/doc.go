// Package httpserver implements the signer's Web3Signer-compatible request
// core: a hand-rolled byte-buffer parser, endpoint dispatch, and a response
// composer that emits exact Content-Length bodies.
//
// The core deliberately does not use net/http or chi: a connection hands
// this package a raw byte buffer and receives a raw byte buffer back. The
// transport loop that reads/writes those buffers lives in cmd/signerd; the
// operational sidecar that does use net/http and chi lives in opsserver.
//
// Dispatch:
//
//	for {
//		n, _ := conn.Read(buf[filled:])
//		filled += n
//		result := httpserver.Parse(buf[:filled])
//		switch result.Outcome {
//		case httpserver.Incomplete:
//			continue
//		case httpserver.Invalid:
//			conn.Write(httpserver.ComposeForError(result.Err))
//		case httpserver.Complete:
//			resp := handler.Handle(result.Request)
//			conn.Write(resp)
//		}
//	}
package httpserver
