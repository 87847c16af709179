package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/adapters/http/middleware"
	"creditoya-web/internal/config"
	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const layout = "layout"

// PageHandler renders the customer pages. The navigation guard runs first,
// so panel pages can assume a client session.
type PageHandler struct {
	profileService *services.ProfileService
	loanService    *services.LoanService
	pendingService *services.PendingLoanService
	cfg            *config.Config
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	profileService *services.ProfileService,
	loanService *services.LoanService,
	pendingService *services.PendingLoanService,
	cfg *config.Config,
) *PageHandler {
	return &PageHandler{
		profileService: profileService,
		loanService:    loanService,
		pendingService: pendingService,
		cfg:            cfg,
	}
}

var companies = []domain.UserCompany{
	domain.CompanyIncaucaSAS,
	domain.CompanyIncaucaCosecha,
	domain.CompanyProvidenciaSAS,
	domain.CompanyProvidenciaCosecha,
	domain.CompanyConAlta,
	domain.CompanyPichichiSAS,
	domain.CompanyPichichiCoorte,
	domain.CompanyValorAgregado,
}

// Landing renders the public home page
func (h *PageHandler) Landing(c *fiber.Ctx) error {
	return c.Render("landing", fiber.Map{"Title": "Inicio"}, layout)
}

// Auth renders the login and registration forms
func (h *PageHandler) Auth(c *fiber.Ctx) error {
	return c.Render("auth", fiber.Map{
		"Title":     "Ingresar",
		"Companies": companies,
	}, layout)
}

// Panel renders the profile checklist and the latest loan
func (h *PageHandler) Panel(c *fiber.Ctx) error {
	session, user, err := h.currentUser(c)
	if err != nil {
		return h.pageError(c, err)
	}

	checklist := domain.BuildChecklist(user)
	data := fiber.Map{
		"Title":     "Panel",
		"User":      user,
		"Checklist": checklist,
		"Complete":  checklist.AllComplete(),
		"Missing":   checklist.MissingFields(),
	}

	lookup, err := h.loanService.Get(c.UserContext(), session, services.LoanQuery{UserID: user.ID, Latest: true})
	if err != nil {
		logEntry(c, err).Warn("latest loan unavailable")
		data["LatestMessage"] = "No pudimos consultar tus préstamos"
	} else if loan := decodeLoan(lookup.Data); loan != nil {
		data["LatestLoan"] = loan
	} else {
		data["LatestMessage"] = lookup.Message
	}

	return c.Render("panel", data, layout)
}

// Profile renders the profile fields and the document uploads
func (h *PageHandler) Profile(c *fiber.Ctx) error {
	_, user, err := h.currentUser(c)
	if err != nil {
		return h.pageError(c, err)
	}

	var doc *domain.Document
	if len(user.Document) > 0 {
		doc = &user.Document[0]
	}

	return c.Render("profile", fiber.Map{
		"Title":    "Perfil",
		"User":     user,
		"Document": doc,
	}, layout)
}

// NewRequest renders the loan form, or the code entry while a loan awaits
// verification. Incomplete profiles are sent back to the panel.
func (h *PageHandler) NewRequest(c *fiber.Ctx) error {
	session, user, err := h.currentUser(c)
	if err != nil {
		return h.pageError(c, err)
	}

	if !domain.BuildChecklist(user).AllComplete() {
		return c.Redirect(middleware.PanelPath, fiber.StatusFound)
	}

	pending, err := h.pendingService.Active(c.UserContext(), user.ID, session)
	if err != nil {
		logEntry(c, err).Warn("pending loan lookup failed")
	}

	return c.Render("new_request", fiber.Map{
		"Title":         "Nueva solicitud",
		"User":          user,
		"Banks":         domain.Banks,
		"Pending":       pending,
		"RequiresFiles": user.CurrentCompanie.RequiresLoanFiles(),
	}, layout)
}

// LoanDetail renders one loan
func (h *PageHandler) LoanDetail(c *fiber.Ctx) error {
	session, user, err := h.currentUser(c)
	if err != nil {
		return h.pageError(c, err)
	}

	lookup, err := h.loanService.Get(c.UserContext(), session, services.LoanQuery{
		UserID: user.ID,
		LoanID: c.Params("loanId"),
	})
	if err != nil {
		return h.pageError(c, err)
	}

	loan := decodeLoan(lookup.Data)
	if loan == nil {
		return h.pageError(c, &gateway.Error{Status: http.StatusNotFound, Message: services.MsgLoanNotFound})
	}

	return c.Render("loan", fiber.Map{
		"Title": "Solicitud",
		"User":  user,
		"Loan":  loan,
	}, layout)
}

// currentUser loads the full profile of the session subject
func (h *PageHandler) currentUser(c *fiber.Ctx) (string, *domain.User, error) {
	raw := c.Cookies(token.CookieName)
	res := token.ValidateNow(raw)
	if !res.IsValid {
		return "", nil, &gateway.Error{Status: http.StatusUnauthorized, Message: res.Error}
	}

	user, err := h.loadUser(c.UserContext(), raw, res.Claims.Subject)
	if err != nil {
		return "", nil, err
	}
	return raw, user, nil
}

func (h *PageHandler) loadUser(ctx context.Context, raw, userID string) (*domain.User, error) {
	resp, err := h.profileService.Me(ctx, raw, userID)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// pageError renders the error page. A rejected session goes back to /auth.
func (h *PageHandler) pageError(c *fiber.Ctx, err error) error {
	status := http.StatusBadGateway
	message := "No pudimos cargar la página, intenta de nuevo"

	if gwErr, ok := gateway.AsError(err); ok {
		if gwErr.Status == http.StatusUnauthorized {
			clearSessionCookie(c, h.cfg)
			return c.Redirect(middleware.AuthPath, fiber.StatusFound)
		}
		if gwErr.Status == http.StatusNotFound {
			status = http.StatusNotFound
			message = gwErr.MessageOr(services.MsgLoanNotFound)
		}
	}

	logEntry(c, err).Warn("page render failed")
	return c.Status(status).Render("error", fiber.Map{
		"Title":   "Algo salió mal",
		"Message": message,
	}, layout)
}

// decodeLoan converts a relayed gateway body into a loan, nil when empty
func decodeLoan(data interface{}) *domain.LoanApplication {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var loan domain.LoanApplication
	if err := json.Unmarshal(raw, &loan); err != nil || loan.ID == "" {
		return nil
	}
	return &loan
}
