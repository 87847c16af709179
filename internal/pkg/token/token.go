// Package token inspects the session token issued by the backend gateway.
//
// The signature is never verified here: the token only travels inside an
// HTTP-only cookie and the gateway re-checks it on every forwarded call.
package token

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie read by the guard and every proxy route.
const CookieName = "creditoya_token"

// ClientType is the only token type allowed into the panel.
const ClientType = "client"

// User facing validation messages
const (
	MsgMissing   = "No se encontró token en cookies"
	MsgMalformed = "Formato de token inválido"
	MsgExpired   = "Token expirado"
	msgDecode    = "Error al validar token: "
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims represents the payload the gateway puts in a session token
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// IsClient reports whether the token belongs to a customer session
func (c *Claims) IsClient() bool {
	return c != nil && c.Type == ClientType
}

// Result is the outcome of Validate. Error is empty when IsValid is true.
type Result struct {
	IsValid bool
	Error   string
	Claims  *Claims
}

// Err converts the result into a sentinel error (nil when valid)
func (r Result) Err() error {
	switch {
	case r.IsValid:
		return nil
	case r.Error == MsgExpired:
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}

var parser = jwt.NewParser()

// Validate decodes the payload of raw and checks its expiry against now.
// Only the payload segment is read; the header is left to the gateway.
// It never panics and never returns an error value; callers branch on IsValid.
func Validate(raw string, now time.Time) Result {
	if raw == "" {
		return Result{Error: MsgMissing}
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Result{Error: MsgMalformed}
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return Result{Error: msgDecode + err.Error()}
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return Result{Error: msgDecode + err.Error()}
	}

	// A token without exp is accepted everywhere, the guard included; the
	// gateway owns its lifetime.
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(now) {
		return Result{Error: MsgExpired, Claims: claims}
	}

	return Result{IsValid: true, Claims: claims}
}

// ValidateNow is Validate against the wall clock
func ValidateNow(raw string) Result {
	return Validate(raw, time.Now())
}
