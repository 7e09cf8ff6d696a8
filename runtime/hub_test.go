package runtime

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/mocks"
)

func TestHub_SendToUser_AllSessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	hub := NewHub(slog.Default(), registry, nil, ScopedBroadcast)

	first := newFakeConn("alice")
	second := newFakeConn("alice")
	registry.Register(first)
	registry.Register(second)

	hub.SendToUser("alice", event.UserOnline{UserID: "bob"})

	req.Len(first.Events(), 1)
	req.Len(second.Events(), 1)
}

func TestHub_SendToUser_Offline_SilentNoop(t *testing.T) {
	registry := NewRegistry()
	hub := NewHub(slog.Default(), registry, nil, ScopedBroadcast)

	// Best-effort delivery: no panic, no error, nothing to assert
	// beyond it not blowing up.
	hub.SendToUser("nobody", event.UserOnline{UserID: "bob"})
}

func TestHub_BroadcastNewMessage_MultiDeviceEcho(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	resolver := mocks.NewMockParticipantResolver(ctrl)
	hub := NewHub(slog.Default(), registry, resolver, ScopedBroadcast)

	// Given A with two sessions and B with one, sharing conversation 42
	senderOrigin := newFakeConn("alice")
	senderOther := newFakeConn("alice")
	peer := newFakeConn("bob")
	outsider := newFakeConn("carol")
	registry.Register(senderOrigin)
	registry.Register(senderOther)
	registry.Register(peer)
	registry.Register(outsider)

	resolver.EXPECT().
		Participants(int64(42)).
		Return(domain.Participants{A: "alice", B: "bob"}, nil).
		Times(1)

	message := domain.Message{ConversationID: 42, SenderID: "alice", Content: "hi"}

	// When A sends from the first session
	hub.BroadcastNewMessage(42, message, "alice", senderOrigin)

	// Then B's session and A's other session receive the event
	req.Len(peer.Events(), 1)
	req.Len(senderOther.Events(), 1)
	evt, ok := peer.Events()[0].(event.NewMessage)
	req.True(ok)
	req.Equal(int64(42), evt.ConversationID)
	req.Equal("hi", evt.Message.Content)

	// And the originating session and non-participants receive nothing
	req.Empty(senderOrigin.Events())
	req.Empty(outsider.Events())
}

func TestHub_BroadcastNewMessage_ResolverFailure_DropsEvent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	resolver := mocks.NewMockParticipantResolver(ctrl)
	hub := NewHub(slog.Default(), registry, resolver, ScopedBroadcast)

	peer := newFakeConn("bob")
	registry.Register(peer)

	resolver.EXPECT().
		Participants(int64(42)).
		Return(domain.Participants{}, fmt.Errorf("store unavailable")).
		Times(1)

	// When resolution fails, scoped mode never degrades to a global
	// broadcast: the live event is dropped
	hub.BroadcastNewMessage(42, domain.Message{}, "alice", nil)

	req.Empty(peer.Events())
}

func TestHub_BroadcastRead_ReachesOtherParticipant(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	resolver := mocks.NewMockParticipantResolver(ctrl)
	hub := NewHub(slog.Default(), registry, resolver, ScopedBroadcast)

	senderA := newFakeConn("alice")
	senderB := newFakeConn("alice")
	reader := newFakeConn("bob")
	registry.Register(senderA)
	registry.Register(senderB)
	registry.Register(reader)

	resolver.EXPECT().
		Participants(int64(42)).
		Return(domain.Participants{A: "alice", B: "bob"}, nil).
		Times(1)

	// When B marks the conversation read
	hub.BroadcastRead(42, "bob")

	// Then both of A's sessions learn it, B's own session does not
	for _, conn := range []*fakeConn{senderA, senderB} {
		req.Len(conn.Events(), 1)
		evt, ok := conn.Events()[0].(event.MessageRead)
		req.True(ok)
		req.Equal("bob", evt.ReaderID)
		req.Equal(int64(42), evt.ConversationID)
	}
	req.Empty(reader.Events())
}

func TestHub_BroadcastTyping_ExcludesTypist(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	resolver := mocks.NewMockParticipantResolver(ctrl)
	hub := NewHub(slog.Default(), registry, resolver, ScopedBroadcast)

	typist := newFakeConn("alice")
	peer := newFakeConn("bob")
	registry.Register(typist)
	registry.Register(peer)

	resolver.EXPECT().
		Participants(int64(42)).
		Return(domain.Participants{A: "alice", B: "bob"}, nil).
		Times(1)

	hub.BroadcastTyping(42, "alice", true)

	req.Empty(typist.Events())
	req.Len(peer.Events(), 1)
	evt, ok := peer.Events()[0].(event.Typing)
	req.True(ok)
	req.True(evt.IsTyping)
	req.Equal("alice", evt.UserID)
}

func TestHub_BroadcastTyping_NonParticipant_Dropped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	resolver := mocks.NewMockParticipantResolver(ctrl)
	hub := NewHub(slog.Default(), registry, resolver, ScopedBroadcast)

	peerA := newFakeConn("alice")
	peerB := newFakeConn("bob")
	registry.Register(peerA)
	registry.Register(peerB)

	resolver.EXPECT().
		Participants(int64(42)).
		Return(domain.Participants{A: "alice", B: "bob"}, nil).
		Times(1)

	// A typing signal from outside the conversation reaches nobody.
	hub.BroadcastTyping(42, "mallory", true)

	req.Empty(peerA.Events())
	req.Empty(peerB.Events())
}

func TestHub_BroadcastPresence_ExcludesSubject(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	hub := NewHub(slog.Default(), registry, nil, ScopedBroadcast)

	subject := newFakeConn("alice")
	other := newFakeConn("bob")
	registry.Register(subject)
	registry.Register(other)

	hub.BroadcastPresence("alice", true)

	req.Empty(subject.Events())
	req.Len(other.Events(), 1)
	_, ok := other.Events()[0].(event.UserOnline)
	req.True(ok)

	hub.BroadcastPresence("alice", false)
	req.Len(other.Events(), 2)
	_, ok = other.Events()[1].(event.UserOffline)
	req.True(ok)
}

func TestHub_GlobalBroadcastFallback_ReachesEveryoneButActor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	// The degraded mode never consults the resolver.
	hub := NewHub(slog.Default(), registry, nil, GlobalBroadcastFallback)

	actor := newFakeConn("alice")
	peer := newFakeConn("bob")
	outsider := newFakeConn("carol")
	registry.Register(actor)
	registry.Register(peer)
	registry.Register(outsider)

	hub.BroadcastTyping(42, "alice", true)

	req.Empty(actor.Events())
	req.Len(peer.Events(), 1)
	req.Len(outsider.Events(), 1)
}

func TestParseBroadcastMode(t *testing.T) {
	req := require.New(t)

	mode, err := ParseBroadcastMode("")
	req.NoError(err)
	req.Equal(ScopedBroadcast, mode)

	mode, err = ParseBroadcastMode("scoped")
	req.NoError(err)
	req.Equal(ScopedBroadcast, mode)

	mode, err = ParseBroadcastMode("global")
	req.NoError(err)
	req.Equal(GlobalBroadcastFallback, mode)

	_, err = ParseBroadcastMode("whatever")
	req.Error(err)
}
