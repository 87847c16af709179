package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Loan route messages
const (
	MsgLoanCreated      = "Creación de préstamo exitoso"
	MsgNoLoans          = "No tienes préstamos por el momento"
	MsgLoanNotFound     = "Préstamo o usuario no encontrado"
	MsgTokenVerified    = "Token verificado exitosamente"
	MsgMissingSignature = "No se proporcionó la firma del préstamo"
	MsgMissingUser      = "No se proporcionó el ID del usuario"
	MsgMissingFields    = "Faltan campos obligatorios"
	MsgMissingFiles     = "Faltan archivos requeridos"
)

// LoanFileFields are the multipart file names the gateway expects.
// "fisrt_flyer" is spelled the way the gateway spells it.
var LoanFileFields = []string{"labor_card", "fisrt_flyer", "second_flyer", "third_flyer"}

// CreateLoanInput is a new loan request as submitted by the client
type CreateLoanInput struct {
	Signature          string
	UserID             string
	Entity             string
	BankNumberAccount  string
	Cantity            string
	TermsAndConditions bool
	IsValorAgregado    bool
	Files              map[string]*gateway.File
}

// Validate checks the input in the order the client expects errors
func (in *CreateLoanInput) Validate() error {
	switch {
	case in.Signature == "":
		return invalid(MsgMissingSignature)
	case in.UserID == "":
		return invalid(MsgMissingUser)
	case in.Entity == "" || in.BankNumberAccount == "" || in.Cantity == "" || !in.TermsAndConditions:
		return invalid(MsgMissingFields)
	}

	if !in.IsValorAgregado {
		for _, field := range LoanFileFields {
			if in.Files[field] == nil {
				return invalid(MsgMissingFiles)
			}
		}
	}
	return nil
}

// CreateLoanResult carries the upstream loan body and the pending record
type CreateLoanResult struct {
	LoanID  string
	Details interface{}
	Pending *domain.PendingLoan
}

// LoanQuery selects a specific loan or the user's latest
type LoanQuery struct {
	UserID string
	LoanID string
	Latest bool
}

// LoanLookup is a loan body, or nil data with an explanatory message
type LoanLookup struct {
	Data    interface{}
	Message string
}

// LoanService creates, reads and confirms loan requests on the gateway
type LoanService struct {
	gw      Gateway
	pending *PendingLoanService
}

// NewLoanService creates a new loan service
func NewLoanService(gw Gateway, pending *PendingLoanService) *LoanService {
	return &LoanService{gw: gw, pending: pending}
}

// Create submits a loan request. When the same session already has an
// unexpired pending loan for the user nothing is sent and
// domain.ErrPendingLoanExists is returned together with that record.
func (s *LoanService) Create(ctx context.Context, sessionToken string, in *CreateLoanInput) (*CreateLoanResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.pending.Active(ctx, in.UserID, sessionToken)
	if err != nil {
		logger.Log.WithError(err).Warn("pending loan lookup failed, continuing")
	}
	if existing != nil {
		return &CreateLoanResult{LoanID: existing.LoanID, Pending: existing}, domain.ErrPendingLoanExists
	}

	body := &gateway.Multipart{}
	body.AddField("signature", in.Signature)
	body.AddField("entity", in.Entity)
	body.AddField("bankNumberAccount", in.BankNumberAccount)
	body.AddField("cantity", in.Cantity)
	body.AddField("terms_and_conditions", "true")
	if in.IsValorAgregado {
		body.AddField("isValorAgregado", "true")
	}
	for _, field := range LoanFileFields {
		if f := in.Files[field]; f != nil {
			body.AddFile(field, f.Filename, f.Content)
		}
	}

	key := s.pending.NewIdempotencyKey()
	resp, err := s.gw.Post(gateway.WithIdempotencyKey(ctx, key), "/loans/"+url.PathEscape(in.UserID), sessionToken, body)
	if err != nil {
		return nil, err
	}

	result := &CreateLoanResult{
		LoanID:  resp.Field("loanId"),
		Details: resp.Value(),
	}

	if result.LoanID != "" {
		pending, err := s.pending.Register(ctx, in.UserID, result.LoanID, key, sessionToken)
		if err != nil {
			logger.Log.WithError(err).WithField("user_id", in.UserID).Warn("could not record pending loan")
		}
		result.Pending = pending
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": in.UserID,
		"loan_id": result.LoanID,
	}).Info("loan request created")

	return result, nil
}

// Get fetches one loan or the latest. A user without loans is not an error.
func (s *LoanService) Get(ctx context.Context, sessionToken string, q LoanQuery) (*LoanLookup, error) {
	if q.UserID == "" {
		return nil, invalid("Falta parámetro requerido: user_id")
	}
	if !q.Latest && q.LoanID == "" {
		return nil, invalid("Falta parámetro requerido: loan_id")
	}

	path := "/loans/" + url.PathEscape(q.UserID)
	if q.Latest {
		path += "/latest"
	} else {
		path += "/" + url.PathEscape(q.LoanID) + "/info"
	}

	resp, err := s.gw.Get(ctx, path, sessionToken)
	if err != nil {
		if gwErr, ok := gateway.AsError(err); ok && gwErr.Status == http.StatusNotFound {
			if q.Latest {
				return &LoanLookup{Message: MsgNoLoans}, nil
			}
			return nil, &gateway.Error{Status: http.StatusNotFound, Message: MsgLoanNotFound}
		}
		return nil, err
	}

	if resp.IsNull() {
		if q.Latest {
			return &LoanLookup{Message: MsgNoLoans}, nil
		}
		return nil, &gateway.Error{Status: http.StatusInternalServerError, Message: "No se recibieron datos de la API"}
	}

	var status struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := resp.Decode(&status); err == nil && status.Success != nil && !*status.Success {
		msg := status.Error
		if msg == "" {
			msg = "Error al obtener información del préstamo"
		}
		return nil, &gateway.Error{Status: http.StatusInternalServerError, Message: msg}
	}

	return &LoanLookup{Data: resp.Value()}, nil
}

// VerifyToken confirms a pending loan with the code the client received.
// On success the pending record is cleared.
func (s *LoanService) VerifyToken(ctx context.Context, sessionToken, userID, preLoanID, code string) (interface{}, error) {
	if userID == "" || preLoanID == "" || code == "" {
		return nil, invalid("Faltan datos para verificar el token")
	}

	resp, err := s.gw.Post(ctx,
		fmt.Sprintf("/loans/%s/%s", url.PathEscape(userID), url.PathEscape(preLoanID)),
		sessionToken,
		gateway.JSON(map[string]string{"token": code, "preLoanId": preLoanID}),
	)
	if err != nil {
		return nil, err
	}

	if rejected := resp.Field("error"); rejected != "" {
		return nil, invalid(rejected)
	}

	if err := s.pending.Clear(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("could not clear pending loan")
	}

	return resp.Value(), nil
}
