// Package event defines the live events fanned out to connected
// sessions. Live events are hints to merge with persisted state, not an
// authoritative log.
package event

import "chat-relay/domain"

type DomainEvent interface {
	isDomainEvent()
}

type UserOnline struct {
	UserID string
}

type UserOffline struct {
	UserID string
}

type Typing struct {
	ConversationID int64
	UserID         string
	IsTyping       bool
}

// NewMessage is emitted only after the store durably persisted the
// message.
type NewMessage struct {
	ConversationID int64
	SenderID       string
	Message        domain.Message
}

type MessageRead struct {
	ConversationID int64
	ReaderID       string
}

func (UserOnline) isDomainEvent()  {}
func (UserOffline) isDomainEvent() {}
func (Typing) isDomainEvent()      {}
func (NewMessage) isDomainEvent()  {}
func (MessageRead) isDomainEvent() {}
