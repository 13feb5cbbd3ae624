package chat

import "fmt"

type MessageKind int

const (
	KindJoined MessageKind = iota
	KindLeft
	KindChat
)

func (k MessageKind) String() string {
	switch k {
	case KindJoined:
		return "joined"
	case KindLeft:
		return "left"
	case KindChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Message is one broadcastable event. It is never mutated after construction,
// so a single *Message is handed to every recipient's mailbox.
type Message struct {
	kind    MessageKind
	sender  string
	content string
}

// Joined announces that name entered the chat.
func Joined(name string) *Message {
	return &Message{kind: KindJoined, content: name + " has joined the chat"}
}

// Left announces that name left the chat.
func Left(name string) *Message {
	return &Message{kind: KindLeft, content: name + " has left the chat"}
}

// Chat is a line of text sent by sender.
func Chat(sender, content string) *Message {
	return &Message{kind: KindChat, sender: sender, content: content}
}

func (m *Message) Kind() MessageKind { return m.kind }

// Sender is empty for join and leave announcements.
func (m *Message) Sender() string { return m.sender }

func (m *Message) Content() string { return m.content }

// String renders the message as it is written on the wire.
func (m *Message) String() string {
	switch m.kind {
	case KindJoined:
		return fmt.Sprintf("[%s]", m.content)
	case KindLeft:
		return fmt.Sprintf("[%s :(]", m.content)
	default:
		return fmt.Sprintf("%s: %s", m.sender, m.content)
	}
}
