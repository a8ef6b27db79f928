package session

import (
	"errors"
	"time"

	"tasktrack/cmd/internal/ids"

	"github.com/golang-jwt/jwt/v5"
)

type jwtHS256Manager struct {
	issuer    string
	clockSkew time.Duration
	secret    []byte
}

// NewJWTManager builds a TokenManager that signs HS256 JWTs.
func NewJWTManager(cfg Config) (TokenManager, error) {
	if len(cfg.JWTSecret) < minJWTSecretBytes {
		return nil, ErrConfig
	}
	secret := make([]byte, len(cfg.JWTSecret))
	copy(secret, cfg.JWTSecret)

	return &jwtHS256Manager{
		issuer:    cfg.Issuer,
		clockSkew: cfg.ClockSkew,
		secret:    secret,
	}, nil
}

func (m *jwtHS256Manager) Issue(userID string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.RegisteredClaims{
		ID:        jti,
		Subject:   userID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *jwtHS256Manager) Verify(token string, now time.Time) (Claims, error) {
	var rc jwt.RegisteredClaims

	// Time-based claims are checked by checkWindow so both formats share one rule.
	_, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	// Claims validation is off, so the issuer is checked here.
	if rc.Issuer != m.issuer || rc.Subject == "" || rc.ExpiresAt == nil || rc.IssuedAt == nil {
		return Claims{}, ErrInvalidToken
	}
	if rc.NotBefore != nil && now.Add(m.clockSkew).Before(rc.NotBefore.Time) {
		return Claims{}, ErrInvalidToken
	}
	if err := checkWindow(rc.IssuedAt.Time, rc.ExpiresAt.Time, now, m.clockSkew); err != nil {
		return Claims{}, err
	}

	return Claims{
		UserID:    rc.Subject,
		IssuedAt:  rc.IssuedAt.Time,
		ExpiresAt: rc.ExpiresAt.Time,
		Issuer:    rc.Issuer,
		TokenID:   rc.ID,
	}, nil
}
