// Package auth implements the Session Authority token contract.
// The websocket handshake accepts only identities carried inside a
// short-lived signed token; bare identity strings are rejected.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-relay/errors"
)

// Claims defines the data stored inside the session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Authority mints and verifies session tokens with a shared HS256
// secret. In production the secret comes from configuration, never from
// source.
type Authority struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthority(secret []byte, ttl time.Duration) *Authority {
	return &Authority{secret: secret, ttl: ttl}
}

// GenerateToken creates a signed short-lived token for a user.
func (a *Authority) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-relay",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyToken validates signature and expiration and returns the
// asserted identity. Unsigned or expired claims are rejected.
func (a *Authority) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		return "", errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", errors.ErrInvalidToken
	}
	return claims.UserID, nil
}
