package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// HMACStrategy signs actor tokens as base64("actor:scope:expires:signature").
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken generates a signed token for the actor.
func (s *HMACStrategy) IssueToken(claims Claims) (string, error) {
	if claims.Scope != ScopeBuyer && claims.Scope != ScopeOperator {
		return "", fmt.Errorf("unknown scope %q", claims.Scope)
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%d:%s:%d", claims.ActorID, claims.Scope, expires)
	token := payload + ":" + s.sign(payload)
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates the signature and expiry and returns the claims.
func (s *HMACStrategy) ParseToken(token string) (Claims, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:3], ":")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return Claims{}, ErrInvalidToken
	}

	actorID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	scope := Scope(parts[1])
	if scope != ScopeBuyer && scope != ScopeOperator {
		return Claims{}, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if time.Unix(expires, 0).Before(s.now()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{ActorID: actorID, Scope: scope}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
