// Package ws carries the duplex transport: one persistent websocket per
// client session exchanging discriminated JSON text frames.
package ws

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"chat-relay/domain"
	"chat-relay/errors"
)

type FrameType string

// Client→server frame types.
const (
	FrameAuthenticate FrameType = "authenticate"
	FramePing         FrameType = "ping"
	FrameTyping       FrameType = "typing"
	FrameMessageRead  FrameType = "message_read"
	FrameSendMessage  FrameType = "send_message"
)

// Server→client frame types.
const (
	FrameAuthSuccess FrameType = "auth_success"
	FramePong        FrameType = "pong"
	FrameNewMessage  FrameType = "new_message"
	FrameUserOnline  FrameType = "user_online"
	FrameUserOffline FrameType = "user_offline"
	FrameError       FrameType = "error"
)

// Frame is the wire envelope in both directions; Type selects which
// fields are meaningful.
type Frame struct {
	Type           FrameType       `json:"type"`
	Token          string          `json:"token,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	ConversationID int64           `json:"conversationId,omitempty"`
	Content        string          `json:"content,omitempty"`
	IsTyping       *bool           `json:"isTyping,omitempty"`
	Message        *domain.Message `json:"message,omitempty"`
	Error          string          `json:"error,omitempty"`
}

var validate = validator.New()

type authenticatePayload struct {
	Token string `validate:"required"`
}

type typingPayload struct {
	ConversationID int64 `validate:"required"`
	IsTyping       *bool `validate:"required"`
}

type messageReadPayload struct {
	ConversationID int64 `validate:"required"`
}

type sendMessagePayload struct {
	ConversationID int64  `validate:"required"`
	Content        string `validate:"required,max=4000"`
}

// Validate checks the fields required by the frame's type. Unknown
// types and missing fields map to ErrProtocol; the connection stays
// open.
func (f Frame) Validate() error {
	var err error
	switch f.Type {
	case FrameAuthenticate:
		err = validate.Struct(authenticatePayload{Token: f.Token})
	case FramePing:
		err = nil
	case FrameTyping:
		err = validate.Struct(typingPayload{ConversationID: f.ConversationID, IsTyping: f.IsTyping})
	case FrameMessageRead:
		err = validate.Struct(messageReadPayload{ConversationID: f.ConversationID})
	case FrameSendMessage:
		err = validate.Struct(sendMessagePayload{ConversationID: f.ConversationID, Content: f.Content})
	default:
		return fmt.Errorf("%w: unknown frame type %q", errors.ErrProtocol, f.Type)
	}
	if err != nil {
		return fmt.Errorf("%w: %s frame: %s", errors.ErrProtocol, f.Type, err)
	}
	return nil
}
