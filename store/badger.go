package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/encryption"
	"chat-relay/errors"
)

const conversationSeqKey = "seq:conversation"

// storedMessage is the at-rest document. Ciphertext and hash are the
// pipeline's output; content never touches disk in the clear.
type storedMessage struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	Ciphertext string `json:"ciphertext"`
	Hash       string `json:"hash"`
	Preview    string `json:"preview"`
	Read       bool   `json:"read"`
	At         int64  `json:"at"`
}

type BadgerStore struct {
	db            *badger.DB
	pipeline      *encryption.Pipeline
	log           *slog.Logger
	seq           *badger.Sequence
	limitMessages *int
}

func NewBadgerStore(db *badger.DB, pipeline *encryption.Pipeline,
	log *slog.Logger, limitMessages *int) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(conversationSeqKey), 16)
	if err != nil {
		return nil, fmt.Errorf("conversation sequence: %w", err)
	}
	return &BadgerStore{
		db:            db,
		pipeline:      pipeline,
		log:           log,
		seq:           seq,
		limitMessages: limitMessages,
	}, nil
}

// Close releases the conversation sequence. The Badger handle itself is
// owned by the caller.
func (s *BadgerStore) Close() error {
	return s.seq.Release()
}

func conversationKey(id int64) []byte {
	return []byte(fmt.Sprintf("conv:%019d", id))
}

// messageKey follows the padded-timestamp scheme so a prefix scan yields
// chronological order, with the UUID as collision disconnector when two
// messages land on the same nanosecond.
func messageKey(conversationID int64, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%d:%019d:%s", conversationID, at.UnixNano(), id))
}

func (s *BadgerStore) CreateConversation(participantA, participantB string) (domain.Conversation, error) {
	n, err := s.seq.Next()
	if err != nil {
		return domain.Conversation{}, err
	}
	conversation := domain.Conversation{
		ID:           int64(n) + 1,
		ParticipantA: participantA,
		ParticipantB: participantB,
		CreatedAt:    time.Now().UTC(),
	}
	bytes, err := json.Marshal(conversation)
	if err != nil {
		return domain.Conversation{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversationKey(conversation.ID), bytes)
	})
	return conversation, err
}

func (s *BadgerStore) conversation(txn *badger.Txn, conversationID int64) (domain.Conversation, error) {
	item, err := txn.Get(conversationKey(conversationID))
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	var conversation domain.Conversation
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &conversation)
	})
	return conversation, err
}

func (s *BadgerStore) Participants(conversationID int64) (domain.Participants, error) {
	var participants domain.Participants
	err := s.db.View(func(txn *badger.Txn) error {
		conversation, err := s.conversation(txn, conversationID)
		if err != nil {
			return err
		}
		participants = domain.Participants{A: conversation.ParticipantA, B: conversation.ParticipantB}
		return nil
	})
	return participants, err
}

func (s *BadgerStore) Persist(conversationID int64, senderID, plaintext string) (domain.Message, error) {
	participants, err := s.Participants(conversationID)
	if err != nil {
		return domain.Message{}, err
	}
	if !participants.Contains(senderID) {
		return domain.Message{}, errors.ErrNotParticipant
	}

	ciphertext, hash, err := s.pipeline.Encode(plaintext)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode message: %w", err)
	}
	preview, err := s.pipeline.EncodePreview(plaintext)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode preview: %w", err)
	}

	message := domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        plaintext,
		CreatedAt:      time.Now().UTC(),
	}
	stored := storedMessage{
		ID:         message.ID.String(),
		Sender:     senderID,
		Ciphertext: ciphertext,
		Hash:       hash,
		Preview:    preview,
		At:         message.CreatedAt.UnixNano(),
	}
	bytes, err := json.Marshal(stored)
	if err != nil {
		return domain.Message{}, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(conversationID, message.CreatedAt, message.ID), bytes)
	})
	return message, err
}

// MarkRead flips the read flag in place. The ciphertext bytes are
// rewritten verbatim; the read flag is the only field that may change
// after creation.
func (s *BadgerStore) MarkRead(conversationID int64, readerID string) (int, error) {
	participants, err := s.Participants(conversationID)
	if err != nil {
		return 0, err
	}
	if !participants.Contains(readerID) {
		return 0, errors.ErrNotParticipant
	}

	count := 0
	err = s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%d:", conversationID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			var stored storedMessage
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			if stored.Read || stored.Sender == readerID {
				continue
			}

			stored.Read = true
			bytes, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := txn.Set(key, bytes); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// Messages pages backwards through a conversation. Thanks to the padded
// timestamp in the key, a reverse prefix scan yields newest first; the
// returned cursor is the key suffix of the last row.
func (s *BadgerStore) Messages(conversationID int64, cursor *string) ([]domain.Message, *string, error) {
	var rawMessages [][]byte
	var lastKey string

	err := s.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%d:", conversationID)
		prefix := []byte(prefixStr)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if s.limitMessages != nil && len(rawMessages) == *s.limitMessages {
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(val []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var messages []domain.Message
	for _, raw := range rawMessages {
		var stored storedMessage
		if err := json.Unmarshal(raw, &stored); err != nil {
			return nil, nil, err
		}
		message, err := s.toMessage(conversationID, stored)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}

func (s *BadgerStore) toMessage(conversationID int64, stored storedMessage) (domain.Message, error) {
	id, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	content, err := s.pipeline.Decode(stored.Ciphertext, stored.Hash)
	if err != nil {
		return domain.Message{}, fmt.Errorf("message %s: %w", stored.ID, err)
	}
	return domain.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       stored.Sender,
		Content:        content,
		Read:           stored.Read,
		CreatedAt:      time.Unix(0, stored.At).UTC(),
	}, nil
}

// ConversationSummaries is the list-rendering view: one row per
// conversation with the decrypted preview of its latest message. A
// preview that fails any pipeline stage becomes the placeholder string,
// never an error.
func (s *BadgerStore) ConversationSummaries() ([]ConversationSummary, error) {
	var summaries []ConversationSummary
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte("conv:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var conversation domain.Conversation
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &conversation)
			})
			if err != nil {
				return err
			}

			preview, count := s.latestPreview(txn, conversation.ID)
			summaries = append(summaries, ConversationSummary{
				Conversation: conversation,
				LastPreview:  preview,
				Messages:     count,
			})
		}
		return nil
	})
	return summaries, err
}

func (s *BadgerStore) latestPreview(txn *badger.Txn, conversationID int64) (string, int) {
	prefixStr := fmt.Sprintf("msg:%d:", conversationID)
	prefix := []byte(prefixStr)

	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := txn.NewIterator(options)
	defer it.Close()

	count := 0
	var latest *storedMessage
	for it.Seek(append(prefix, []byte("9999999999999999999")...)); it.ValidForPrefix(prefix); it.Next() {
		if latest == nil {
			var stored storedMessage
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err == nil {
				latest = lo.ToPtr(stored)
			}
		}
		count++
	}
	if latest == nil {
		return "", 0
	}

	preview, err := s.pipeline.DecodePreview(latest.Preview)
	if err != nil {
		s.log.Debug("Preview undecodable, substituting placeholder",
			"conversation_id", conversationID, "err", err)
		return encryption.PreviewPlaceholder, count
	}
	return preview, count
}
