package chat

import "log/slog"

// LineWriter is the write half of a framed connection.
type LineWriter interface {
	WriteLine(line string) error
}

// Relay drains one peer's mailbox onto its connection.
type Relay struct {
	done chan struct{}
}

// StartRelay writes every message received from mb to w until the mailbox is
// closed and drained, or a write fails. A failed write closes the mailbox so
// later sends report ErrMailboxClosed; the registry entry is left for the
// broadcaster or the session to remove.
func StartRelay(addr string, w LineWriter, mb *Mailbox, logger *slog.Logger) *Relay {
	r := &Relay{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		for {
			msg, ok := mb.Recv()
			if !ok {
				return
			}
			if err := w.WriteLine(msg.String()); err != nil {
				logger.Warn("failed to write message", "peer", addr, "error", err)
				mb.Close()
				return
			}
		}
	}()
	return r
}

// Done is closed when the relay goroutine has exited.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) Wait() {
	<-r.done
}
