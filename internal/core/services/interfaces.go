package services

import (
	"context"

	"creditoya-web/internal/adapters/gateway"
)

// Gateway is the part of the backend client the services use.
// *gateway.Client satisfies it.
type Gateway interface {
	Get(ctx context.Context, path, sessionToken string) (*gateway.Response, error)
	Post(ctx context.Context, path, sessionToken string, body gateway.Body) (*gateway.Response, error)
	Put(ctx context.Context, path, sessionToken string, body gateway.Body) (*gateway.Response, error)
}

// ValidationError is a client input problem. Its message is shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
