// Package auth issues and verifies the HS256 access tokens carried by API requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Tokens signs and parses access tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued access tokens.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue returns a signed access token for user.
func (t *Tokens) Issue(user *model.User) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       user.ID.String(),
		"tenant_id": user.TenantID.String(),
		"role":      user.Role,
		"email":     user.Email,
		"iat":       now.Unix(),
		"exp":       now.Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and builds the caller's session from its claims.
func (t *Tokens) Parse(tokenString string) (*session.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, err := uuidClaim(claims, "sub")
	if err != nil {
		return nil, err
	}
	tenantID, err := uuidClaim(claims, "tenant_id")
	if err != nil {
		return nil, err
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return nil, fmt.Errorf("%w: role not found in token", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	return &session.Session{
		UserID:   userID,
		TenantID: tenantID,
		Email:    email,
		Role:     role,
	}, nil
}

func uuidClaim(claims jwt.MapClaims, name string) (uuid.UUID, error) {
	raw, _ := claims[name].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s claim", ErrInvalidToken, name)
	}
	return id, nil
}
