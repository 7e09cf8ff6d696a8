// Package domain contains core concepts of the messaging system.
// Messages are immutable after creation; only the read flag mutates.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is the decrypted view of a stored chat message, as handed to
// live delivery and list rendering. The at-rest form is encrypted.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID int64     `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
