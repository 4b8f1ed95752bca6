// Package token issues and verifies the bearer tokens used by the API.
// Tokens are HMAC-SHA256 JWTs; the signing key never leaves memory.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates a malformed or tampered token.
	ErrInvalidToken = errors.New("token: invalid token")
	// ErrExpiredToken indicates the token's lifetime has passed.
	ErrExpiredToken = errors.New("token: expired")
	// ErrWrongKind indicates an access token used as refresh or vice versa.
	ErrWrongKind = errors.New("token: wrong token kind")
)

// Token kinds carried in the claims.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims carried by both access and refresh tokens.
type Claims struct {
	ID        string `json:"jti"`
	Subject   int64  `json:"sub,string"`
	Kind      string `json:"kind"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// Pair bundles the two tokens returned by login and refresh.
type Pair struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs and verifies token pairs.
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer constructs an Issuer. The key should be at least 32 bytes.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret required")
	}
	return &Issuer{
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// IssuePair creates a fresh access/refresh pair for the user.
func (i *Issuer) IssuePair(userID int64) (Pair, error) {
	now := i.now().UTC()
	accessExp := now.Add(i.accessTTL)

	access, err := i.sign(Claims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Kind:      KindAccess,
		ExpiresAt: accessExp.Unix(),
		IssuedAt:  now.Unix(),
	})
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(Claims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Kind:      KindRefresh,
		ExpiresAt: now.Add(i.refreshTTL).Unix(),
		IssuedAt:  now.Unix(),
	})
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh, ExpiresAt: accessExp}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (i *Issuer) ParseAccess(raw string) (Claims, error) {
	return i.parse(raw, KindAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (i *Issuer) ParseRefresh(raw string) (Claims, error) {
	return i.parse(raw, KindRefresh)
}

// RefreshTTL exposes the refresh lifetime, used to bound denylist entries.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) sign(claims Claims) (string, error) {
	headerJSON, err := json.Marshal(header{Type: "JWT", Algorithm: "HS256"})
	if err != nil {
		return "", fmt.Errorf("token: marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("token: marshal claims: %w", err)
	}
	payload := b64(headerJSON) + "." + b64(claimsJSON)
	return payload + "." + i.signature(payload), nil
}

func (i *Issuer) parse(raw, kind string) (Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}
	payload := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(i.signature(payload))) != 1 {
		return Claims{}, ErrInvalidToken
	}

	headerJSON, err := unb64(parts[0])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil || hdr.Algorithm != "HS256" {
		return Claims{}, ErrInvalidToken
	}

	claimsJSON, err := unb64(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return Claims{}, ErrWrongKind
	}
	if claims.ExpiresAt > 0 && i.now().Unix() > claims.ExpiresAt {
		return Claims{}, ErrExpiredToken
	}
	return claims, nil
}

func (i *Issuer) signature(payload string) string {
	mac := hmac.New(sha256.New, i.key)
	mac.Write([]byte(payload))
	return b64(mac.Sum(nil))
}

func b64(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func unb64(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
