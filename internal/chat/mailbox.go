package chat

import "sync"

// Mailbox is a peer's bounded inbound queue. Any number of broadcasters may
// Send concurrently; exactly one relay receives.
type Mailbox struct {
	ch   chan *Message
	done chan struct{}
	once sync.Once
}

func NewMailbox(size int) *Mailbox {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	return &Mailbox{
		ch:   make(chan *Message, size),
		done: make(chan struct{}),
	}
}

// Send enqueues msg, blocking while the mailbox is full. It returns
// ErrMailboxClosed if the mailbox is, or becomes, closed. A nil return means
// the message was queued before Close, so a draining relay will see it.
func (m *Mailbox) Send(msg *Message) error {
	select {
	case <-m.done:
		return ErrMailboxClosed
	default:
	}

	select {
	case m.ch <- msg:
	case <-m.done:
		return ErrMailboxClosed
	}

	// Close may have raced the enqueue; the relay could already be gone.
	select {
	case <-m.done:
		return ErrMailboxClosed
	default:
		return nil
	}
}

// Recv returns the next queued message. After Close it keeps returning
// whatever was already queued and then reports false.
func (m *Mailbox) Recv() (*Message, bool) {
	select {
	case msg := <-m.ch:
		return msg, true
	case <-m.done:
	}

	select {
	case msg := <-m.ch:
		return msg, true
	default:
		return nil, false
	}
}

// Close is safe to call more than once and from any goroutine.
func (m *Mailbox) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Mailbox) Len() int { return len(m.ch) }

func (m *Mailbox) Cap() int { return cap(m.ch) }
