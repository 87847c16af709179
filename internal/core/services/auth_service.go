package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/pkg/logger"
)

// ErrMissingAccessToken is returned when the gateway accepted the
// credentials but sent no token back
var ErrMissingAccessToken = errors.New("gateway returned no access token")

// RegisterRequiredFields are checked in this order
var RegisterRequiredFields = []string{"email", "password", "names", "firstLastName"}

// AuthService handles login, registration and logout against the gateway
type AuthService struct {
	gw Gateway
}

// NewAuthService creates a new auth service
func NewAuthService(gw Gateway) *AuthService {
	return &AuthService{gw: gw}
}

// AuthResult is what the gateway answers on login and registration
type AuthResult struct {
	User        interface{} `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Login exchanges credentials for a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := s.gw.Post(ctx, "/auth/login/client", "", gateway.JSON(map[string]string{
		"email":    email,
		"password": password,
	}))
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(resp)
}

// Register validates the required fields and forwards the whole payload
func (s *AuthService) Register(ctx context.Context, payload map[string]interface{}) (*AuthResult, error) {
	for _, field := range RegisterRequiredFields {
		if isEmpty(payload[field]) {
			return nil, invalid(fmt.Sprintf("El campo %s es requerido", field))
		}
	}

	resp, err := s.gw.Post(ctx, "/auth/register/client", "", gateway.JSON(payload))
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(resp)
}

// Logout tells the gateway the session ended. Failures are logged and
// returned, but callers clear the session regardless.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	_, err := s.gw.Post(ctx, "/auth/logout/client", sessionToken, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("gateway logout failed, clearing session anyway")
	}
	return err
}

func decodeAuthResult(resp *gateway.Response) (*AuthResult, error) {
	var out AuthResult
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, &gateway.Error{Status: http.StatusBadGateway, Message: ErrMissingAccessToken.Error()}
	}
	return &out, nil
}

// isEmpty mirrors a JavaScript falsy check on decoded JSON values
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}
