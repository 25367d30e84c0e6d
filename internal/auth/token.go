// Package auth inspects the bearer tokens issued by the backend. Tokens are
// never verified here; the server remains the authority. Inspection only
// lets a restored session be dropped early once its token has expired.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims is the subset of registered claims the client cares about.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes token without verifying its signature.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrOpaqueToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("decode token: %w", err)
	}

	var out Claims
	if sub, err := mc.GetSubject(); err == nil {
		out.Subject = sub
	}
	if id, ok := mc["id"].(string); ok && out.Subject == "" {
		out.Subject = id
	}
	if role, ok := mc["role"].(string); ok {
		out.Role = role
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether token carries an exp claim that lies before now.
// Opaque tokens and tokens without exp are never considered expired.
func Expired(token string, now time.Time) bool {
	claims, err := Inspect(token)
	if errors.Is(err, ErrOpaqueToken) {
		return false
	}
	if err != nil {
		return true
	}
	return !claims.ExpiresAt.IsZero() && !now.Before(claims.ExpiresAt)
}
