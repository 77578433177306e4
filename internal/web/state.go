package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	stateIssuer = "labelsweep"
	stateTTL    = 10 * time.Minute
	stateCookie = "labelsweep_oauth_state"
)

var errBadState = errors.New("invalid oauth state")

// newState issues a signed, short-lived OAuth state value.
func (s *Server) newState() (string, error) {
	now := s.Clock()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return signed, nil
}

func (s *Server) verifyState(raw string) error {
	_, err := jwt.ParseWithClaims(
		raw,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Clock),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadState, err)
	}
	return nil
}
