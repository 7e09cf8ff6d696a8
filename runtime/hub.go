package runtime

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/store"
)

// BroadcastMode selects how conversation events are scoped.
type BroadcastMode int

const (
	// ScopedBroadcast resolves the true participant set from the store
	// before fan-out. Default.
	ScopedBroadcast BroadcastMode = iota

	// GlobalBroadcastFallback delivers to every connected identity
	// except the actor. A privacy and efficiency defect kept only as an
	// explicitly configured degraded mode.
	GlobalBroadcastFallback
)

func ParseBroadcastMode(s string) (BroadcastMode, error) {
	switch s {
	case "", "scoped":
		return ScopedBroadcast, nil
	case "global":
		return GlobalBroadcastFallback, nil
	default:
		return ScopedBroadcast, fmt.Errorf("unknown broadcast mode %q", s)
	}
}

// Hub fans live events out to the right sessions. Delivery is best
// effort: an offline target is silently skipped, since persisted state
// remains the source of truth.
type Hub struct {
	log      *slog.Logger
	registry *Registry
	resolver store.ParticipantResolver
	mode     BroadcastMode
}

func NewHub(log *slog.Logger, registry *Registry,
	resolver store.ParticipantResolver, mode BroadcastMode) *Hub {
	return &Hub{log: log, registry: registry, resolver: resolver, mode: mode}
}

// SendToUser delivers to every open connection bound to the identity.
// A no-op, not an error, when the identity has no open connections.
func (h *Hub) SendToUser(userID string, e event.DomainEvent) {
	for _, conn := range h.registry.Connections(userID) {
		conn.Deliver(e)
	}
}

// BroadcastPresence announces an online/offline transition to every
// connected identity except the subject.
func (h *Hub) BroadcastPresence(userID string, online bool) {
	var e event.DomainEvent = event.UserOffline{UserID: userID}
	if online {
		e = event.UserOnline{UserID: userID}
	}
	for _, target := range h.registry.OnlineUsers() {
		if target == userID {
			continue
		}
		h.SendToUser(target, e)
	}
}

// BroadcastNewMessage is invoked only after the store durably persisted
// the message. It reaches the other participant's sessions and the
// sender's other sessions (multi-device echo), excluding the originating
// connection, so every open session for both parties converges without a
// refetch.
func (h *Hub) BroadcastNewMessage(conversationID int64, message domain.Message,
	senderID string, origin Conn) {
	e := event.NewMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Message:        message,
	}

	if h.mode == GlobalBroadcastFallback {
		h.deliverGlobal(senderID, e)
		return
	}

	participants, err := h.resolver.Participants(conversationID)
	if err != nil {
		// Never degrade to a global broadcast on resolution failure;
		// the live update is dropped and persisted state stays
		// authoritative.
		h.log.Error("Participant resolution failed, dropping live event",
			"conversation_id", conversationID, "err", err)
		return
	}

	h.SendToUser(participants.Other(senderID), e)
	for _, conn := range h.registry.Connections(senderID) {
		if conn != origin {
			conn.Deliver(e)
		}
	}
}

// BroadcastRead tells the other participant their sent messages were
// read, so sent-message UI state transitions without re-querying.
func (h *Hub) BroadcastRead(conversationID int64, readerID string) {
	e := event.MessageRead{ConversationID: conversationID, ReaderID: readerID}

	if h.mode == GlobalBroadcastFallback {
		h.deliverGlobal(readerID, e)
		return
	}

	participants, err := h.resolver.Participants(conversationID)
	if err != nil {
		h.log.Error("Participant resolution failed, dropping live event",
			"conversation_id", conversationID, "err", err)
		return
	}
	h.SendToUser(participants.Other(readerID), e)
}

// BroadcastTyping reaches the other conversation participant(s),
// excluding the typist's own sessions.
func (h *Hub) BroadcastTyping(conversationID int64, userID string, isTyping bool) {
	e := event.Typing{ConversationID: conversationID, UserID: userID, IsTyping: isTyping}

	if h.mode == GlobalBroadcastFallback {
		h.deliverGlobal(userID, e)
		return
	}

	participants, err := h.resolver.Participants(conversationID)
	if err != nil {
		h.log.Error("Participant resolution failed, dropping live event",
			"conversation_id", conversationID, "err", err)
		return
	}
	if !participants.Contains(userID) {
		h.log.Warn("Typing signal from a non-participant, dropping",
			"conversation_id", conversationID, "user_id", userID)
		return
	}
	h.SendToUser(participants.Other(userID), e)
}

func (h *Hub) deliverGlobal(actorID string, e event.DomainEvent) {
	targets := lo.Filter(h.registry.OnlineUsers(), func(userID string, _ int) bool {
		return userID != actorID
	})
	for _, target := range targets {
		h.SendToUser(target, e)
	}
}
