package encryption

import (
	"encoding/hex"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestLoadKey_HexKey(t *testing.T) {
	req := require.New(t)
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}

	key, err := LoadKey(hex.EncodeToString(raw), false, slog.Default())
	req.NoError(err)
	req.Equal(raw, key)
}

func TestLoadKey_Passphrase_Deterministic(t *testing.T) {
	req := require.New(t)

	first, err := LoadKey("correct horse battery staple", false, slog.Default())
	req.NoError(err)
	req.Len(first, 32)

	// Same passphrase must yield the same key across restarts.
	second, err := LoadKey("correct horse battery staple", false, slog.Default())
	req.NoError(err)
	req.Equal(first, second)

	other, err := LoadKey("a different passphrase", false, slog.Default())
	req.NoError(err)
	req.NotEqual(first, other)
}

func TestLoadKey_Missing_HardError(t *testing.T) {
	req := require.New(t)
	_, err := LoadKey("", false, slog.Default())
	req.ErrorIs(err, errors.ErrMissingKey)
}

func TestLoadKey_EphemeralFallback(t *testing.T) {
	req := require.New(t)
	first, err := LoadKey("", true, slog.Default())
	req.NoError(err)
	req.Len(first, 32)

	second, err := LoadKey("", true, slog.Default())
	req.NoError(err)
	req.NotEqual(first, second)
}
