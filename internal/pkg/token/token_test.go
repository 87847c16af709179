package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("gateway-secret"))
	require.NoError(t, err)
	return raw
}

func clientClaims(exp time.Time) *Claims {
	return &Claims{
		Email: "ana@example.com",
		Type:  ClientType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestValidate_Structure(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "missing", raw: "", wantErr: MsgMissing},
		{name: "one segment", raw: "abc", wantErr: MsgMalformed},
		{name: "two segments", raw: "abc.def", wantErr: MsgMalformed},
		{name: "four segments", raw: "a.b.c.d", wantErr: MsgMalformed},
		{name: "trailing dot", raw: "a.b.c.", wantErr: MsgMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.raw, now)
			assert.False(t, res.IsValid)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.ErrorIs(t, res.Err(), ErrTokenInvalid)
		})
	}
}

func TestValidate_UndecodablePayload(t *testing.T) {
	res := Validate("eyJhbGciOiJIUzI1NiJ9.%%%not-base64%%%.sig", time.Now())

	assert.False(t, res.IsValid)
	assert.Contains(t, res.Error, "Error al validar token")
}

func TestValidate_PayloadNotJSON(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	res := Validate("eyJhbGciOiJIUzI1NiJ9."+payload+".sig", time.Now())

	assert.False(t, res.IsValid)
	assert.Contains(t, res.Error, "Error al validar token")
}

func TestValidate_ReadsOnlyPayload(t *testing.T) {
	signed := sign(t, clientClaims(time.Now().Add(time.Hour)))
	payload := strings.Split(signed, ".")[1]

	for _, header := range []string{"%%%garbled%%%", base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"whatever"}`))} {
		res := Validate(header+"."+payload+".sig", time.Now())
		require.True(t, res.IsValid, res.Error)
		assert.Equal(t, "user-1", res.Claims.Subject)
	}
}

func TestValidate_Expiry(t *testing.T) {
	now := time.Now()

	for _, offset := range []time.Duration{-time.Hour, -time.Minute, -2 * time.Second} {
		res := Validate(sign(t, clientClaims(now.Add(offset))), now)
		assert.False(t, res.IsValid, "offset %s", offset)
		assert.Equal(t, MsgExpired, res.Error)
		assert.ErrorIs(t, res.Err(), ErrTokenExpired)
	}

	for _, offset := range []time.Duration{2 * time.Second, time.Minute, 24 * time.Hour} {
		res := Validate(sign(t, clientClaims(now.Add(offset))), now)
		assert.True(t, res.IsValid, "offset %s", offset)
		assert.Empty(t, res.Error)
		assert.NoError(t, res.Err())
	}
}

func TestValidate_WithoutExpIsValid(t *testing.T) {
	raw := sign(t, &Claims{Type: ClientType})

	res := Validate(raw, time.Now())
	assert.True(t, res.IsValid)
	assert.True(t, Validate(raw, time.Now().AddDate(10, 0, 0)).IsValid, "no expiry to pass")
}

func TestValidate_ExposesClaims(t *testing.T) {
	raw := sign(t, clientClaims(time.Now().Add(time.Hour)))

	res := ValidateNow(raw)
	require.True(t, res.IsValid)
	require.NotNil(t, res.Claims)
	assert.Equal(t, "user-1", res.Claims.Subject)
	assert.Equal(t, "ana@example.com", res.Claims.Email)
	assert.True(t, res.Claims.IsClient())

	other := sign(t, &Claims{Type: "intranet"})
	res = ValidateNow(other)
	require.True(t, res.IsValid)
	assert.False(t, res.Claims.IsClient())
}
