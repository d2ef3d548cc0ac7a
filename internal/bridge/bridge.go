package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync/atomic"
)

// pendingRequest is one request handed from the worker to the main thread,
// with a single-slot response channel standing in for the condition
// variable described in spec.md §4.6/§5.
type pendingRequest struct {
	req    Request
	respCh chan Response
}

// Bridge owns the TCP listener and the single-in-flight handoff queue
// between its background worker and the main editor thread.
type Bridge struct {
	addr      string
	pending   chan pendingRequest
	shutdown  chan struct{}
	connected atomic.Bool
	listener  net.Listener
}

// New creates a bridge listening on loopback:port. Call Serve to start the
// background worker.
func New(port int) *Bridge {
	return &Bridge{
		addr:     fmt.Sprintf("127.0.0.1:%d", port),
		pending:  make(chan pendingRequest),
		shutdown: make(chan struct{}),
	}
}

// Connected reports whether a client is currently attached, for the status
// line (spec.md §5: "the bridge does not write to the terminal itself").
func (br *Bridge) Connected() bool { return br.connected.Load() }

// Serve runs the accept loop on a background goroutine until Shutdown is
// called. Only one client connection is served at a time, matching the
// "at most one request in flight" invariant.
func (br *Bridge) Serve() error {
	listener, err := net.Listen("tcp", br.addr)
	if err != nil {
		return fmt.Errorf("bridge listen on %s: %w", br.addr, err)
	}
	br.listener = listener
	go br.acceptLoop(listener)
	return nil
}

func (br *Bridge) acceptLoop(listener net.Listener) {
	defer listener.Close()
	for {
		select {
		case <-br.shutdown:
			return
		default:
		}
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-br.shutdown:
				return
			default:
				log.Printf("bridge: accept error: %v", err)
				continue
			}
		}
		br.connected.Store(true)
		br.serveConn(conn)
		br.connected.Store(false)
	}
}

// serveConn reads newline-delimited JSON requests, handing each to the main
// thread and blocking for its response before reading the next line — this
// is what makes "at most one in flight" true per connection, and the
// unbuffered pending channel makes it true bridge-wide.
func (br *Bridge) serveConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(Response{OK: false, Error: "malformed request: " + err.Error()})
			return
		}

		respCh := make(chan Response, 1)
		select {
		case br.pending <- pendingRequest{req: req, respCh: respCh}:
		case <-br.shutdown:
			return
		}

		select {
		case resp := <-respCh:
			if err := enc.Encode(resp); err != nil {
				return
			}
		case <-br.shutdown:
			return
		}
	}
}

// DrainOne services at most one pending request, to be called from the
// main loop's idle point between keystrokes (spec.md §5). dispatch runs on
// the caller's goroutine (the main thread), so buffer access stays
// main-thread-only. Returns false if nothing was pending.
func (br *Bridge) DrainOne(dispatch func(Request) Response) bool {
	select {
	case p := <-br.pending:
		p.respCh <- dispatch(p.req)
		return true
	default:
		return false
	}
}

// Shutdown closes the listener's accept loop and unblocks any worker
// waiting on the pending/response handoff.
func (br *Bridge) Shutdown() {
	close(br.shutdown)
	if br.listener != nil {
		br.listener.Close()
	}
}
