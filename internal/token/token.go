// Package token signs and verifies the bearer tokens issued to linked users.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/untangled/link-server-go/internal/errors"
)

// Issuer mints and verifies bearer tokens carrying a user id.
type Issuer interface {
	Sign(userID int64) (string, error)
	// Verify returns the user id embedded in the token. Malformed,
	// expired, and badly signed tokens all fold into INVALID_TOKEN.
	Verify(tokenString string) (int64, error)
}

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) Issuer {
	return &jwtIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *jwtIssuer) Sign(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *jwtIssuer) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, apperrors.InvalidToken("Invalid or expired token").WithCause(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, apperrors.InvalidToken("Invalid token claims")
	}

	// JSON numbers decode as float64.
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, apperrors.InvalidToken("Token is missing the user id")
	}

	return int64(id), nil
}
