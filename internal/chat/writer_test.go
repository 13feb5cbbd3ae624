package chat

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	lines  []string
	failAt int
}

func (w *recordingWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failAt > 0 && len(w.lines) == w.failAt {
		return errors.New("broken pipe")
	}
	w.lines = append(w.lines, line)
	return nil
}

func (w *recordingWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}

func waitRelay(t *testing.T, r *Relay) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("relay did not exit")
	}
}

func TestRelay_WritesInOrderAndDrainsOnClose(t *testing.T) {
	req := require.New(t)
	w := &recordingWriter{}
	mb := NewMailbox(8)
	req.NoError(mb.Send(Joined("bob")))
	req.NoError(mb.Send(Chat("bob", "one")))
	req.NoError(mb.Send(Chat("bob", "two")))
	mb.Close()

	relay := StartRelay("addr", w, mb, discardLogger())
	waitRelay(t, relay)

	req.Equal([]string{"[bob has joined the chat]", "bob: one", "bob: two"}, w.Lines())
}

func TestRelay_WriteErrorClosesMailboxButKeepsEntry(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	w := &recordingWriter{failAt: 1}
	mb := NewMailbox(8)
	req.NoError(r.Insert("addr", mb))

	relay := StartRelay("addr", w, mb, discardLogger())
	req.NoError(mb.Send(Chat("bob", "one")))
	req.NoError(mb.Send(Chat("bob", "two")))
	waitRelay(t, relay)

	req.Equal([]string{"bob: one"}, w.Lines())
	req.ErrorIs(mb.Send(Chat("bob", "three")), ErrMailboxClosed)

	_, ok := r.Get("addr")
	req.True(ok, "relay must not remove its own registry entry")

	NewBroadcaster(r, discardLogger()).Broadcast("other", Chat("carol", "hi"))
	_, ok = r.Get("addr")
	req.False(ok)
}
