package main

import (
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/ruteri/tee-bls-signer/httpserver"
	"github.com/ruteri/tee-bls-signer/logging"
)

// signingListener runs the raw-byte TCP transport that the httpserver
// package itself stays agnostic of. Connections are served strictly one
// at a time: the accept loop calls serve directly rather than handing a
// connection to its own goroutine, so a second connection is never
// accepted until the first has been read, parsed, dispatched, and
// responded to in full.
type signingListener struct {
	addr    string
	maxBuf  int
	handler *httpserver.Handler
	log     *slog.Logger

	ln net.Listener
	wg sync.WaitGroup
}

func newListener(addr string, maxBuf int, handler *httpserver.Handler, log *slog.Logger) (*signingListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &signingListener{addr: addr, maxBuf: maxBuf, handler: handler, log: log, ln: ln}, nil
}

// RunInBackground accepts and serves connections, one at a time, until
// the listener is closed.
func (l *signingListener) RunInBackground() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			conn, err := l.ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				l.log.Error("accept failed", "err", err)
				continue
			}
			l.serve(conn)
		}
	}()
}

// serve runs the parse/dispatch loop for a single connection to
// completion. Each request is handled fully, response written, before
// the next is read.
func (l *signingListener) serve(conn net.Conn) {
	defer conn.Close()

	connLog := logging.WithConnID(l.log)
	buf := make([]byte, l.maxBuf)

	for {
		filled := 0
		for {
			n, err := conn.Read(buf[filled:])
			if n > 0 {
				filled += n
			}
			if err != nil {
				return
			}

			result := httpserver.Parse(buf[:filled])
			switch result.Outcome {
			case httpserver.Incomplete:
				if filled >= l.maxBuf {
					conn.Write(httpserver.ComposeForError(httpserver.ErrBadRequest))
					return
				}
				continue
			case httpserver.Invalid:
				conn.Write(httpserver.ComposeForError(result.Err))
				return
			case httpserver.Complete:
				resp := l.handler.Handle(result.Request)
				if _, err := conn.Write(resp); err != nil {
					connLog.Warn("write failed", "err", err)
					return
				}
			}
			break
		}
	}
}

// Shutdown stops accepting new connections and waits for in-flight
// connections to finish.
func (l *signingListener) Shutdown() {
	l.ln.Close()
	l.wg.Wait()
}
