package session

import (
	"strings"
	"time"
)

// Service issues and verifies identity tokens with the fixed TokenTTL.
type Service struct {
	tokens TokenManager
}

// Issued is the result of issuing a token.
type Issued struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewService wraps a TokenManager.
func NewService(tokens TokenManager) *Service {
	return &Service{tokens: tokens}
}

// NewServiceFromConfig selects the TokenManager for cfg.Format.
func NewServiceFromConfig(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		mgr TokenManager
		err error
	)
	switch cfg.Format {
	case FormatJWT:
		mgr, err = NewJWTManager(cfg)
	default:
		mgr, err = NewPasetoV4PublicManager(cfg)
	}
	if err != nil {
		return nil, err
	}
	return NewService(mgr), nil
}

// Issue signs a token for userID valid from now for exactly TokenTTL.
// now is truncated to whole seconds so the encoded expiry matches ExpiresAt.
func (s *Service) Issue(userID string, now time.Time) (Issued, error) {
	if strings.TrimSpace(userID) == "" {
		return Issued{}, ErrInvalidToken
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Second)

	tok, exp, err := s.tokens.Issue(userID, now, TokenTTL)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: tok, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify returns the claims of a valid token, or ErrInvalidToken.
// A token is rejected once now reaches its expiry.
func (s *Service) Verify(token string, now time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	// Basic sanity bounds to avoid pathological inputs.
	if token == "" || len(token) > 4096 {
		return Claims{}, ErrInvalidToken
	}
	if now.IsZero() {
		now = time.Now()
	}
	return s.tokens.Verify(token, now.UTC())
}
