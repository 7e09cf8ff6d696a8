package encryption

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/argon2"

	"chat-relay/errors"
)

// Argon2id parameters based on OWASP recommendations, matching the
// password-hashing profile used elsewhere in the stack.
const (
	keyMemory      = 64 * 1024 // 64 MB
	keyIterations  = 3
	keyParallelism = 2
	keyLength      = 32
)

// LoadKey resolves the process-wide AES-256 key.
//
// A 64-character hex value is decoded directly. Any other non-empty
// value is treated as a passphrase and stretched with Argon2id. An empty
// value is a hard configuration error unless allowEphemeral is set, in
// which case a throwaway key is generated and the fallback is logged
// loudly: everything encrypted with it is unreadable after a restart.
func LoadKey(material string, allowEphemeral bool, log *slog.Logger) ([]byte, error) {
	switch {
	case material == "" && !allowEphemeral:
		return nil, errors.ErrMissingKey
	case material == "":
		key := make([]byte, keyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("ephemeral key generation: %w", err)
		}
		log.Warn("CHAT_ENCRYPTION_KEY is not set, using an ephemeral key; " +
			"all encrypted content becomes unreadable after restart")
		return key, nil
	}

	if len(material) == 2*keyLength {
		if key, err := hex.DecodeString(material); err == nil {
			return key, nil
		}
	}

	// Passphrase path. The salt must be deterministic so the same
	// passphrase yields the same key across restarts.
	salt := sha256.Sum256([]byte("chat-relay/keyring:" + material))
	return argon2.IDKey([]byte(material), salt[:16], keyIterations, keyMemory, keyParallelism, keyLength), nil
}
