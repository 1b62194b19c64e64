package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is a cosmetic summary of a bearer token's claims, parsed without
// signature verification. The backend is the only authority on token
// validity; this exists so the CLI can show expiry and scope.
type TokenInfo struct {
	Subject   string
	Scope     string
	ExpiresAt time.Time
}

// InspectToken parses the token's claims without verifying the signature.
// Opaque (non-JWT) tokens yield ok=false; that is not an error condition.
func InspectToken(token string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if scope, ok := claims["scope"].(string); ok {
		info.Scope = scope
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
