package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_String(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
		want string
		kind MessageKind
	}{
		{name: "joined", msg: Joined("alice"), want: "[alice has joined the chat]", kind: KindJoined},
		{name: "left", msg: Left("alice"), want: "[alice has left the chat :(]", kind: KindLeft},
		{name: "chat", msg: Chat("alice", "hi there"), want: "alice: hi there", kind: KindChat},
		{name: "chat keeps content verbatim", msg: Chat("bob", "  a: b  "), want: "bob:   a: b  ", kind: KindChat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.msg.String())
			require.Equal(t, tt.kind, tt.msg.Kind())
		})
	}
}

func TestMessage_ChatFields(t *testing.T) {
	req := require.New(t)
	msg := Chat("alice", "hi")
	req.Equal("alice", msg.Sender())
	req.Equal("hi", msg.Content())
	req.Empty(Joined("alice").Sender())
}
