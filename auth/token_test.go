package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestAuthority_RoundTrip(t *testing.T) {
	req := require.New(t)
	authority := NewAuthority([]byte("test_secret_for_unit_tests"), time.Minute)

	token, err := authority.GenerateToken("user-42")
	req.NoError(err)

	userID, err := authority.VerifyToken(token)
	req.NoError(err)
	req.Equal("user-42", userID)
}

func TestAuthority_ExpiredToken(t *testing.T) {
	req := require.New(t)
	authority := NewAuthority([]byte("test_secret_for_unit_tests"), -time.Minute)

	token, err := authority.GenerateToken("user-42")
	req.NoError(err)

	_, err = authority.VerifyToken(token)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestAuthority_WrongSecret(t *testing.T) {
	req := require.New(t)
	minting := NewAuthority([]byte("secret_one"), time.Minute)
	verifying := NewAuthority([]byte("secret_two"), time.Minute)

	token, err := minting.GenerateToken("user-42")
	req.NoError(err)

	_, err = verifying.VerifyToken(token)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestAuthority_Garbage(t *testing.T) {
	req := require.New(t)
	authority := NewAuthority([]byte("test_secret_for_unit_tests"), time.Minute)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := authority.VerifyToken(token)
		req.ErrorIs(err, errors.ErrInvalidToken)
	}
}
