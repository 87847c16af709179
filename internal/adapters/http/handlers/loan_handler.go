package handlers

import (
	"errors"
	"net/http"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/adapters/http/middleware"
	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/response"
	"creditoya-web/internal/pkg/signature"

	"github.com/gofiber/fiber/v2"
)

// Loan route messages
const (
	// MsgPendingLoanExists answers a create while a loan awaits its code
	MsgPendingLoanExists = "Ya tienes una solicitud pendiente de verificación"
	MsgForeignUser       = "No tienes permiso para operar sobre este usuario"
)

// LoanHandler handles loan requests
type LoanHandler struct {
	loanService    *services.LoanService
	pendingService *services.PendingLoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService, pendingService *services.PendingLoanService) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		pendingService: pendingService,
	}
}

// VerifyTokenRequest confirms a pending loan with its one-time code
type VerifyTokenRequest struct {
	PreToken  string `json:"preToken"`
	PreLoanID string `json:"preLoanId"`
	UserID    string `json:"userId"`
}

// Create submits a new loan request
// @Summary Create loan request
// @Description Validates and forwards a new loan request. Answers 409 with the pending loan when one still awaits its code.
// @Tags Loan
// @Accept mpfd
// @Produce json
// @Param signature formData string true "PNG data URL"
// @Param user_id formData string false "User ID"
// @Param entity formData string true "Bank key"
// @Param bankNumberAccount formData string true "Account number"
// @Param cantity formData string true "Requested amount"
// @Param terms_and_conditions formData string true "true"
// @Param isValorAgregado formData string false "true|false"
// @Param labor_card formData file false "Labor letter"
// @Param fisrt_flyer formData file false "Payslip 1"
// @Param second_flyer formData file false "Payslip 2"
// @Param third_flyer formData file false "Payslip 3"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loan [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	userID := middleware.UserID(c, c.FormValue("user_id"))
	if userID != "" && !middleware.OwnsUser(c, userID) {
		return response.Error(c, fiber.StatusForbidden, MsgForeignUser)
	}

	in := &services.CreateLoanInput{
		Signature:          normalizeSignature(c.FormValue("signature")),
		UserID:             userID,
		Entity:             c.FormValue("entity"),
		BankNumberAccount:  c.FormValue("bankNumberAccount"),
		Cantity:            c.FormValue("cantity"),
		TermsAndConditions: c.FormValue("terms_and_conditions") == "true",
		IsValorAgregado:    c.FormValue("isValorAgregado") == "true",
		Files:              map[string]*gateway.File{},
	}

	for _, field := range services.LoanFileFields {
		file, closeFile, err := formFile(c, field)
		defer closeFile()
		if err != nil {
			return fail(c, err, "Error interno del servidor")
		}
		if file != nil {
			in.Files[field] = file
		}
	}

	result, err := h.loanService.Create(c.UserContext(), middleware.SessionToken(c), in)
	if err != nil {
		if errors.Is(err, domain.ErrPendingLoanExists) {
			return response.ErrorWithData(c, fiber.StatusConflict, MsgPendingLoanExists, result.Pending)
		}
		if gwErr, ok := gateway.AsError(err); ok {
			return response.Error(c, gwErr.Status, gwErr.DetailOr("Error al procesar la solicitud"))
		}
		return fail(c, err, "Error interno del servidor")
	}

	return response.WithLoanDetails(c, services.MsgLoanCreated, result.Details)
}

// Get returns one loan or the user's latest
// @Summary Get loan
// @Tags Loan
// @Produce json
// @Param user_id query string false "User ID (defaults to the session user)"
// @Param loan_id query string false "Loan ID, required unless latest=true"
// @Param latest query boolean false "Fetch the latest loan"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	lookup, err := h.loanService.Get(c.UserContext(), middleware.SessionToken(c), services.LoanQuery{
		UserID: middleware.UserID(c, c.Query("user_id")),
		LoanID: c.Query("loan_id"),
		Latest: c.Query("latest") == "true",
	})
	if err != nil {
		return fail(c, err, "Error del servidor")
	}

	if lookup.Data == nil {
		return response.SuccessNullable(c, lookup.Message, nil)
	}
	return response.Success(c, lookup.Message, lookup.Data)
}

// VerifyToken confirms a pending loan with the code sent to the client
// @Summary Verify loan code
// @Tags Loan
// @Accept json
// @Produce json
// @Param body body VerifyTokenRequest true "Code and pending loan"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /loan/verify-token [post]
func (h *LoanHandler) VerifyToken(c *fiber.Ctx) error {
	var req VerifyTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Error al procesar la solicitud")
	}

	userID := middleware.UserID(c, req.UserID)
	if userID != "" && !middleware.OwnsUser(c, userID) {
		return response.Error(c, fiber.StatusForbidden, MsgForeignUser)
	}

	details, err := h.loanService.VerifyToken(c.UserContext(), middleware.SessionToken(c),
		userID, req.PreLoanID, req.PreToken)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return response.BadRequest(c, vErr.Message)
		}
		if gwErr, ok := gateway.AsError(err); ok && gwErr.Status == http.StatusUnauthorized {
			return response.Unauthorized(c, gwErr.Message)
		}
		logEntry(c, err).Error("token verification failed")
		return response.InternalServerError(c, "Error al verificar el token")
	}

	return response.WithLoanDetails(c, services.MsgTokenVerified, details)
}

// Pending returns the loan awaiting verification that this session
// created, if any
// @Summary Get pending loan
// @Tags Loan
// @Produce json
// @Success 200 {object} response.Response
// @Router /loan/pending [get]
func (h *LoanHandler) Pending(c *fiber.Ctx) error {
	pending, err := h.pendingService.Active(c.UserContext(), middleware.UserID(c, ""), middleware.SessionToken(c))
	if err != nil {
		return fail(c, err, "Error del servidor")
	}
	return response.SuccessNullable(c, "", pending)
}

// Banks lists the disbursement banks
// @Summary List banks
// @Tags Loan
// @Produce json
// @Param q query string false "Label filter"
// @Success 200 {object} response.Response
// @Router /banks [get]
func (h *LoanHandler) Banks(c *fiber.Ctx) error {
	return response.Success(c, "", domain.SearchBanks(c.Query("q")))
}

// normalizeSignature recolours a PNG signature. A blank pad counts as no
// signature; anything that is not a PNG data URL is passed through.
func normalizeSignature(raw string) string {
	if raw == "" {
		return ""
	}
	out, err := signature.Normalize(raw)
	switch {
	case err == nil:
		return out
	case errors.Is(err, signature.ErrEmptySignature):
		return ""
	default:
		return raw
	}
}
