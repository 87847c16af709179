package services

import (
	"context"
	"encoding/json"
	"net/url"

	"creditoya-web/internal/adapters/gateway"
)

// Upload targets on the gateway, relative to /clients/{id}
const (
	UploadAvatar   = "/avatar"
	UploadDocument = "/document"
	UploadSelfie   = "/document/selfie"
)

// ProfileService reads and edits the client profile on the gateway
type ProfileService struct {
	gw Gateway
}

// NewProfileService creates a new profile service
func NewProfileService(gw Gateway) *ProfileService {
	return &ProfileService{gw: gw}
}

// Me returns the session user, or the full profile of userID when given
func (s *ProfileService) Me(ctx context.Context, sessionToken, userID string) (*gateway.Response, error) {
	if userID == "" {
		return s.gw.Get(ctx, "/auth/me/client", sessionToken)
	}
	return s.gw.Get(ctx, clientPath(userID), sessionToken)
}

// UpdateField sets one profile field to value. A JSON null value is allowed,
// an absent one is not.
func (s *ProfileService) UpdateField(ctx context.Context, sessionToken, userID, field string, value json.RawMessage) (*gateway.Response, error) {
	if field == "" || value == nil {
		return nil, invalid("Field and value are required")
	}
	if userID == "" {
		return nil, invalid("user_id is required in query")
	}
	return s.gw.Put(ctx, clientPath(userID), sessionToken, gateway.JSON(map[string]json.RawMessage{field: value}))
}

// Upload sends a single file to one of the Upload* targets
func (s *ProfileService) Upload(ctx context.Context, sessionToken, userID, target string, file gateway.File) error {
	if userID == "" {
		return invalid("No se proporcionó ningún identificador")
	}

	body := &gateway.Multipart{}
	body.AddFile("file", file.Filename, file.Content)

	_, err := s.gw.Put(ctx, clientPath(userID)+target, sessionToken, body)
	return err
}

func clientPath(userID string) string {
	return "/clients/" + url.PathEscape(userID)
}
