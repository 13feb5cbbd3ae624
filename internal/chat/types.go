package chat

const (
	// DefaultMailboxSize is the number of pending messages a peer may have
	// queued before broadcasters block on it.
	DefaultMailboxSize = 128

	usernamePrompt = "Enter your username:"
	exitCommand    = "exit!"
)

var (
	ErrHandshake     = errorString("handshake failed")
	ErrMailboxClosed = errorString("mailbox closed")
	ErrPeerExists    = errorString("peer already registered")
)

type errorString string

func (e errorString) Error() string { return string(e) }
