//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package store

import (
	"chat-relay/domain"
)

// MessageStore is the durable persistence collaborator consumed by the
// messaging core. Live delivery is best-effort; what this store holds is
// authoritative.
type MessageStore interface {
	CreateConversation(participantA, participantB string) (domain.Conversation, error)
	Participants(conversationID int64) (domain.Participants, error)

	// Persist encrypts plaintext through the pipeline before writing.
	// The ciphertext is immutable afterwards; only the read flag
	// mutates.
	Persist(conversationID int64, senderID, plaintext string) (domain.Message, error)

	// MarkRead flips the read flag on the reader's unread messages
	// (those sent by the peer) and returns how many were flipped.
	MarkRead(conversationID int64, readerID string) (int, error)

	// Messages returns a reverse-chronological page and an opaque
	// continuation cursor.
	Messages(conversationID int64, cursor *string) ([]domain.Message, *string, error)
}

// ParticipantResolver is the narrow slice of the store the broadcaster
// needs to scope fan-out.
type ParticipantResolver interface {
	Participants(conversationID int64) (domain.Participants, error)
}

// ConversationSummary is the list-rendering view: conversation metadata
// plus the decrypted preview of the latest message, or a placeholder
// when the preview cannot be decrypted.
type ConversationSummary struct {
	Conversation domain.Conversation
	LastPreview  string
	Messages     int
}
