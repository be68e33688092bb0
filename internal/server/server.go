// Package server exposes the stack store on a Unix domain socket.
//
// A connection is a session: the store is attached when the connection
// is accepted and detached when it closes, mirroring a device node's
// open and release. All sessions share the one store; request framing
// is defined in internal/wire.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/journal"
	"github.com/evgd/stackd/internal/stack"
	"github.com/evgd/stackd/internal/wire"
)

// Server accepts stackd sessions on a Unix socket.
type Server struct {
	socket string
	store  *stack.Store
	rec    *journal.Recorder // nil disables journaling
	log    *slog.Logger
	tokens TokenGenerator

	// opMu serializes each operation with its post-state observation so
	// journal rows are exact even under concurrent sessions. The store
	// has its own lock; this one only widens the critical section to
	// include the depth/capacity read recorded alongside the result.
	opMu sync.Mutex

	ln    net.Listener
	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder enables journaling of every session operation.
func WithRecorder(rec *journal.Recorder) Option {
	return func(s *Server) { s.rec = rec }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithTokenGenerator overrides session token generation; tests use a
// fixed sequence for deterministic logs and journals.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Server) { s.tokens = gen }
}

// New creates a server for the given socket path and store.
func New(socket string, store *stack.Store, opts ...Option) *Server {
	s := &Server{
		socket: socket,
		store:  store,
		log:    slog.Default(),
		tokens: UUIDv7Generator{},
		conns:  make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the Unix socket, removing a stale socket file from a
// previous run first.
func (s *Server) Listen() error {
	if err := os.Remove(s.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", s.socket, err)
	}
	ln, err := net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socket, err)
	}
	s.ln = ln
	s.log.Info("listening", "socket", s.socket)
	return nil
}

// Addr returns the bound socket path. Valid after Listen.
func (s *Server) Addr() string {
	return s.socket
}

// Serve accepts sessions until ctx is cancelled, then closes the
// listener, terminates live sessions, waits for their handlers, and
// force-resets the store so no freed state can be observed afterwards.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("serve called before listen")
	}

	go func() {
		<-ctx.Done()
		s.ln.Close()
		s.closeConns()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}

	s.wg.Wait()
	s.store.ForceReset()
	if err := os.Remove(s.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("remove socket", "error", err)
	}
	s.log.Info("server stopped")
	return nil
}

// handle runs one session to completion.
func (s *Server) handle(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()

	sess := &session{
		token:  s.tokens.Generate(),
		dev:    device.New(s.store),
		server: s,
	}
	log := s.log.With("session", sess.token)

	sess.open()
	defer sess.close()
	log.Info("session attached")

	for {
		req, err := wire.ReadRequest(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("session detached")
			} else {
				log.Warn("session aborted", "error", err)
			}
			return
		}

		resp := sess.dispatch(req)
		if err := wire.WriteResponse(conn, resp); err != nil {
			log.Warn("write response", "error", err)
			return
		}
		log.Debug("request served", "op", req.Op, "status", resp.Status.String())
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// record forwards an event to the journal recorder, if one is set.
func (s *Server) record(e journal.Event) {
	if s.rec == nil {
		return
	}
	if !s.rec.Record(e) {
		s.log.Warn("journal recorder closed, event dropped", "op", string(e.Op))
	}
}
