package session

import (
	"time"

	"tasktrack/cmd/internal/ids"

	paseto "aidanwoods.dev/go-paseto"
)

// Claims is the identity envelope carried by a token.
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
	// TokenID is unique per issued token.
	TokenID string
}

// TokenManager signs and verifies identity tokens.
type TokenManager interface {
	Issue(userID string, now time.Time, ttl time.Duration) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (Claims, error)
}

type pasetoV4PublicManager struct {
	issuer    string
	clockSkew time.Duration

	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

// NewPasetoV4PublicManager builds a TokenManager based on PASETO v4.public.
//
// It uses an Ed25519 asymmetric keypair and enforces issuer and expiration rules.
func NewPasetoV4PublicManager(cfg Config) (TokenManager, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(cfg.PasetoV4SecretKeyHex)
	if err != nil {
		return nil, ErrConfig
	}

	return &pasetoV4PublicManager{
		issuer:    cfg.Issuer,
		clockSkew: cfg.ClockSkew,
		secret:    secret,
		public:    secret.Public(),
	}, nil
}

func (m *pasetoV4PublicManager) Issue(userID string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}

	tok := paseto.NewToken()
	tok.SetJti(jti)
	tok.SetIssuer(m.issuer)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(exp)
	if err := tok.Set("uid", userID); err != nil {
		return "", time.Time{}, err
	}

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4PublicManager) Verify(token string, now time.Time) (Claims, error) {
	// Expiry is checked below against the caller's clock, not the parser's.
	p := paseto.NewParserWithoutExpiryCheck()
	p.AddRule(paseto.IssuedBy(m.issuer))

	parsed, err := p.ParseV4Public(m.public, token, nil)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	exp, err := parsed.GetExpiration()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	iat, err := parsed.GetIssuedAt()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if nbf, err := parsed.GetNotBefore(); err == nil && now.Add(m.clockSkew).Before(nbf) {
		return Claims{}, ErrInvalidToken
	}
	if err := checkWindow(iat, exp, now, m.clockSkew); err != nil {
		return Claims{}, err
	}

	uid, err := parsed.GetString("uid")
	if err != nil || uid == "" {
		return Claims{}, ErrInvalidToken
	}
	iss, _ := parsed.GetIssuer()
	jti, _ := parsed.GetJti()

	return Claims{
		UserID:    uid,
		IssuedAt:  iat,
		ExpiresAt: exp,
		Issuer:    iss,
		TokenID:   jti,
	}, nil
}

// checkWindow rejects tokens issued in the future (beyond skew) and tokens at or past expiry.
func checkWindow(iat, exp, now time.Time, skew time.Duration) error {
	if now.Add(skew).Before(iat) {
		return ErrInvalidToken
	}
	if !now.Before(exp) {
		return ErrInvalidToken
	}
	return nil
}
