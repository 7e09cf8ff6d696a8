package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// ErrProtocol covers malformed or unknown frames. The connection
	// stays open; the client receives an error frame.
	ErrProtocol = fmt.Errorf("malformed or unknown frame")

	// ErrAuthRequired is returned when a protected frame arrives before
	// the handshake completed. No state is mutated.
	ErrAuthRequired = fmt.Errorf("authentication required")

	ErrInvalidToken = fmt.Errorf("invalid or expired token")

	// ErrDecryption means the AEAD tag did not verify. Fails closed:
	// no partial plaintext is ever returned.
	ErrDecryption = fmt.Errorf("message decryption failed")

	// ErrIntegrity means the cipher authenticated but the plaintext hash
	// stored alongside did not match. Distinct from ErrDecryption.
	ErrIntegrity = fmt.Errorf("message integrity check failed")

	ErrMissingKey = fmt.Errorf("no encryption key configured")

	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrNotParticipant       = fmt.Errorf("user is not a participant of the conversation")
)
