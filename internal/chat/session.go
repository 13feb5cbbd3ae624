package chat

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Session owns the read side of one connection, from the username prompt
// until the peer leaves.
type Session struct {
	ID          string
	Addr        string
	conn        *LineConn
	registry    *Registry
	broadcaster *Broadcaster
	mailboxSize int
	logger      *slog.Logger
}

// peer is the session-local view of a registered connection.
type peer struct {
	username string
	mailbox  *Mailbox
	relay    *Relay
}

// Run performs the handshake, relays chat lines until the peer exits or the
// connection fails, then unregisters the peer. Only handshake and registration
// failures are returned; the caller owns closing the connection.
func (s *Session) Run() error {
	username, err := s.handshake()
	if err != nil {
		HandshakeFailures.Inc()
		return err
	}

	p, err := s.join(username)
	if err != nil {
		return err
	}

	joined := Joined(p.username)
	s.logger.Info(joined.String(), "username", p.username)
	s.broadcaster.Broadcast(s.Addr, joined)

	s.readLoop(p)
	s.leave(p)
	return nil
}

func (s *Session) handshake() (string, error) {
	if err := s.conn.WriteLine(usernamePrompt); err != nil {
		return "", fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	line, err := s.conn.ReadLine()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", fmt.Errorf("%w: empty username", ErrHandshake)
	}
	return username, nil
}

// join inserts the peer into the registry and starts its relay.
func (s *Session) join(username string) (*peer, error) {
	mb := NewMailbox(s.mailboxSize)
	if err := s.registry.Insert(s.Addr, mb); err != nil {
		return nil, fmt.Errorf("register %s: %w", s.Addr, err)
	}
	return &peer{
		username: username,
		mailbox:  mb,
		relay:    StartRelay(s.Addr, s.conn, mb, s.logger),
	}, nil
}

func (s *Session) readLoop(p *peer) {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("connection closed by peer", "username", p.username)
			} else {
				s.logger.Warn("failed to read", "username", p.username, "error", err)
			}
			return
		}

		if strings.TrimSpace(line) == exitCommand {
			s.logger.Info("user requested to exit", "username", p.username)
			return
		}

		s.broadcaster.Broadcast(s.Addr, Chat(p.username, line))
	}
}

// leave removes the peer, announces it to everyone remaining and waits for
// the relay to flush what was already queued.
func (s *Session) leave(p *peer) {
	s.registry.Remove(s.Addr)
	p.mailbox.Close()

	left := Left(p.username)
	s.logger.Info(left.String(), "username", p.username)
	s.broadcaster.Broadcast(s.Addr, left)

	p.relay.Wait()
}
