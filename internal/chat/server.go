package chat

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

type Options struct {
	MailboxSize   int
	MaxLineLength int
	WriteTimeout  time.Duration
}

type Server struct {
	addr        string
	opts        Options
	logger      *slog.Logger
	registry    *Registry
	broadcaster *Broadcaster
	listener    net.Listener

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	sessions sync.WaitGroup
}

func NewServer(addr string, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = DefaultMailboxSize
	}
	registry := NewRegistry()
	return &Server{
		addr:        addr,
		opts:        opts,
		logger:      logger,
		registry:    registry,
		broadcaster: NewBroadcaster(registry, logger),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		conns:       make(map[net.Conn]struct{}),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Addr is the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every live connection, then waits for all
// sessions to finish. Calls after the first are no-ops.
func (s *Server) Stop() {
	s.stopOnce.Do(s.stop)
}

func (s *Server) stop() {
	s.logger.Info("shutting down")

	close(s.stopCh)
	if s.listener != nil {
		s.listener.Close()
		<-s.doneCh
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.sessions.Wait()

	s.logger.Info("shutdown complete")
}

// acceptLoop runs until the listener is closed. Other accept errors are
// logged and retried with backoff so one bad accept does not take down every
// connected peer.
func (s *Server) acceptLoop(ln net.Listener) {
	defer close(s.doneCh)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			s.logger.Error("accept failed", "error", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
				continue
			case <-s.stopCh:
				return
			}
		}
		backoff = 0

		if !s.track(conn) {
			conn.Close()
			return
		}

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())
		go s.serve(conn)
	}
}

// track records conn so Stop can close it. It refuses once Stop has begun.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopCh:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	s.sessions.Add(1)
	return true
}

func (s *Server) serve(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	sess := &Session{
		ID:          uuid.NewString(),
		Addr:        addr,
		conn:        NewLineConn(conn, s.opts.MaxLineLength, s.opts.WriteTimeout),
		registry:    s.registry,
		broadcaster: s.broadcaster,
		mailboxSize: s.opts.MailboxSize,
	}
	sess.logger = s.logger.With("addr", addr, "session_id", sess.ID)

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.sessions.Done()
	}()

	if err := sess.Run(); err != nil {
		sess.logger.Warn("failed to handle client", "error", err)
	}
}
