package handlers

import (
	"encoding/json"

	"creditoya-web/internal/adapters/http/middleware"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Upload success messages
const (
	MsgAvatarUpdated   = "Actualizacion de avatar exitoso"
	MsgDocumentUpdated = "Verificación de documento de identidad exitosa"
	MsgSelfieUpdated   = "Verificación de imagen con CC actualizada"
	MsgMissingFile     = "No se proporcionó ningún archivo"
)

// ProfileHandler handles the session user's profile and uploads
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateFieldRequest sets one profile field
type UpdateFieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value" swaggertype:"object"`
}

// Me returns the session user or a full profile
// @Summary Get profile
// @Description Session user from /auth/me/client, or the full profile when user_id is given
// @Tags Profile
// @Produce json
// @Param user_id query string false "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	resp, err := h.profileService.Me(c.UserContext(), middleware.SessionToken(c), c.Query("user_id"))
	if err != nil {
		return fail(c, err, "Error desconocido")
	}
	return response.Success(c, "", resp.Value())
}

// UpdateMe updates a single profile field
// @Summary Update profile field
// @Tags Profile
// @Accept json
// @Produce json
// @Param user_id query string false "User ID (defaults to the session user)"
// @Param body body UpdateFieldRequest true "Field and value"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/me [put]
func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	var req UpdateFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Field and value are required")
	}

	userID := middleware.UserID(c, c.Query("user_id"))
	resp, err := h.profileService.UpdateField(c.UserContext(), middleware.SessionToken(c), userID, req.Field, req.Value)
	if err != nil {
		return fail(c, err, "Error desconocido")
	}
	return response.Success(c, "", resp.Value())
}

// Avatar uploads a new avatar
// @Summary Upload avatar
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image"
// @Param user_id formData string false "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/me/avatar [put]
func (h *ProfileHandler) Avatar(c *fiber.Ctx) error {
	return h.upload(c, services.UploadAvatar, MsgAvatarUpdated)
}

// Papers uploads both sides of the identity document
// @Summary Upload identity document
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param file formData file true "Document image or PDF"
// @Param user_id formData string false "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/me/docs/papers [post]
func (h *ProfileHandler) Papers(c *fiber.Ctx) error {
	return h.upload(c, services.UploadDocument, MsgDocumentUpdated)
}

// Selfie uploads the selfie holding the identity document
// @Summary Upload verification selfie
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param file formData file true "Selfie"
// @Param user_id formData string false "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/me/docs/selfie [post]
func (h *ProfileHandler) Selfie(c *fiber.Ctx) error {
	return h.upload(c, services.UploadSelfie, MsgSelfieUpdated)
}

func (h *ProfileHandler) upload(c *fiber.Ctx, target, success string) error {
	file, closeFile, err := formFile(c, "file")
	defer closeFile()
	if err != nil {
		return fail(c, err, "Error desconocido al subir la imagen")
	}
	if file == nil {
		return response.BadRequest(c, MsgMissingFile)
	}

	userID := middleware.UserID(c, c.FormValue("user_id"))
	if err := h.profileService.Upload(c.UserContext(), middleware.SessionToken(c), userID, target, *file); err != nil {
		return fail(c, err, "Error desconocido al subir la imagen")
	}

	return response.Success(c, "", success)
}
