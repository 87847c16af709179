package handlers

import (
	"time"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/config"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/response"
	"creditoya-web/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles client login
// @Summary Login client
// @Description Authenticate against the gateway and store the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Solicitud inválida")
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Error al iniciar sesión")
	}

	h.setSessionCookie(c, result.AccessToken)

	return response.Success(c, "", fiber.Map{
		"user": result.User,
	})
}

// Register handles client registration
// @Summary Register client
// @Description Create a client account on the gateway and store the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body map[string]interface{} true "Registration data (email, password, names, firstLastName required)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	payload := map[string]interface{}{}
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "Solicitud inválida")
	}

	result, err := h.authService.Register(c.UserContext(), payload)
	if err != nil {
		if gwErr, ok := gateway.AsError(err); ok {
			return response.Error(c, gwErr.Status, gwErr.DetailOr("Error durante el registro"))
		}
		return fail(c, err, "Error durante el registro")
	}

	h.setSessionCookie(c, result.AccessToken)

	return response.Success(c, "", fiber.Map{
		"user":        result.User,
		"accessToken": result.AccessToken,
	})
}

// Logout handles client logout
// @Summary Logout client
// @Description Best-effort gateway logout; the session cookie is always cleared
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	_ = h.authService.Logout(c.UserContext(), c.Cookies(token.CookieName))

	h.clearSessionCookie(c)

	return c.JSON(response.Response{Success: true})
}

// setSessionCookie stores the gateway token in the HTTP-only session cookie
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     token.CookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.cfg.Cookie.MaxAge.Seconds()),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearSessionCookie expires the session cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	clearSessionCookie(c, h.cfg)
}

func clearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     token.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})
}
