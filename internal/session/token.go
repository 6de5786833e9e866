package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

const tokenType = "session"

// Tokens signs and verifies the session cookie value. The token carries
// only the session id.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
}

func (t Tokens) Sign(id string) (string, error) {
	claims := jwt.MapClaims{
		"sub": id,
		"typ": tokenType,
		"exp": time.Now().Add(t.TTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.Secret)
}

func (t Tokens) Parse(raw string) (string, error) {
	id, _, err := t.Inspect(raw)
	return id, err
}

// Inspect verifies raw like Parse and also returns its expiry.
func (t Tokens) Inspect(raw string) (string, time.Time, error) {
	tok, err := jwt.Parse(raw, func(j *jwt.Token) (interface{}, error) {
		if _, ok := j.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", j.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil || !tok.Valid {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != tokenType {
		return "", time.Time{}, fmt.Errorf("%w: not a session token", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if _, err := uuid.Parse(sub); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	return sub, exp.Time, nil
}
