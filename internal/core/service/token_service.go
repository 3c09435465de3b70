package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// shape checks.
var ErrInvalidToken = errors.New("invalid session token")

var _ ports.TokenService = (*TokenService)(nil)

// TokenService signs the session identifier into an HS256 JWT so clients
// cannot forge or enumerate session keys.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token carrying sessionID.
func (t *TokenService) Issue(sessionID string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies raw and returns the session identifier it carries with
// its validity window.
func (t *TokenService) Parse(raw string) (ports.SessionToken, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !tkn.Valid {
		return ports.SessionToken{}, ErrInvalidToken
	}

	sid, _ := claims["sid"].(string)
	iat, _ := claims.GetIssuedAt()
	exp, _ := claims.GetExpirationTime()
	if sid == "" || iat == nil || exp == nil {
		return ports.SessionToken{}, ErrInvalidToken
	}
	return ports.SessionToken{SessionID: sid, IssuedAt: iat.Time, ExpiresAt: exp.Time}, nil
}

// TTL is how long issued tokens stay valid.
func (t *TokenService) TTL() time.Duration { return t.ttl }
