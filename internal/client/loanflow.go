package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/pkg/logger"
	"creditoya-web/internal/pkg/signature"

	"github.com/sirupsen/logrus"
)

// FlowState is a step of the new-loan-request flow
type FlowState int

const (
	StateCheckingStorage FlowState = iota
	StateIdle
	StateHasPendingLoan
	StateSubmitting
	StateAwaitingCode
	StateVerifying
	StateVerified
	StateFailed
)

var flowStateNames = [...]string{
	StateCheckingStorage: "checking_storage",
	StateIdle:            "idle",
	StateHasPendingLoan:  "has_pending_loan",
	StateSubmitting:      "submitting",
	StateAwaitingCode:    "awaiting_code",
	StateVerifying:       "verifying",
	StateVerified:        "verified",
	StateFailed:          "failed",
}

func (s FlowState) String() string {
	if int(s) < len(flowStateNames) {
		return flowStateNames[s]
	}
	return "unknown"
}

// RedirectDelay is how long the success screen shows before going to the panel
const RedirectDelay = 4 * time.Second

// PanelPath is where a verified flow navigates
const PanelPath = "/panel"

var (
	ErrTermsNotAccepted = errors.New("Debes aceptar los términos y condiciones para continuar.")
	ErrMissingFiles     = errors.New("Faltan archivos requeridos")
	ErrCodeLength       = errors.New("El código debe tener 6 dígitos")
	ErrWrongState       = errors.New("action not allowed in the current step")
)

// RequiredLoanFiles are the attachments asked of affiliations that need them
var RequiredLoanFiles = []string{"labor_card", "fisrt_flyer", "second_flyer", "third_flyer"}

// LoanForm is what the customer fills in while Idle
type LoanForm struct {
	Entity            string
	BankNumberAccount string
	Cantity           string
	// Signature is the drawn signature as a PNG data URL
	Signature     string
	TermsAccepted bool
	Files         map[string]FileUpload
}

// LoanFlow drives one visit to the new-request page
type LoanFlow struct {
	api      *Client
	markers  *MarkerStore
	user     *domain.User
	navigate func(path string)

	// afterFunc schedules the post-verification redirect
	afterFunc func(d time.Duration, f func()) (stop func() bool)

	mu        sync.Mutex
	state     FlowState
	form      LoanForm
	preLoanID string
	code      CodeInput
	lastErr   string
	stop      func() bool
}

// NewLoanFlow prepares the flow for user. navigate is called with
// PanelPath once the loan is verified.
func NewLoanFlow(api *Client, markers *MarkerStore, user *domain.User, navigate func(path string)) *LoanFlow {
	return &LoanFlow{
		api:      api,
		markers:  markers,
		user:     user,
		navigate: navigate,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		state: StateCheckingStorage,
		form:  LoanForm{Files: map[string]FileUpload{}},
	}
}

// Start reads the pending-loan marker. It returns StateHasPendingLoan when
// an unexpired marker was found, in which case the flow resumes at
// StateAwaitingCode; otherwise it returns StateIdle.
func (f *LoanFlow) Start() (FlowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateCheckingStorage {
		return f.state, ErrWrongState
	}

	details, ok, err := f.markers.Load()
	if err != nil {
		logger.Log.WithError(err).Warn("could not read pending loan marker")
	}
	if !ok {
		f.state = StateIdle
		return StateIdle, nil
	}

	f.preLoanID = LoanID(details)
	f.state = StateAwaitingCode
	return StateHasPendingLoan, nil
}

// State returns the current step
func (f *LoanFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// PreLoanID is the loan awaiting its code
func (f *LoanFlow) PreLoanID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preLoanID
}

// LastError is the message of the last failed submit or verify
func (f *LoanFlow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Form returns a copy of the form inputs
func (f *LoanFlow) Form() LoanForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	form := f.form
	form.Files = make(map[string]FileUpload, len(f.form.Files))
	for k, v := range f.form.Files {
		form.Files[k] = v
	}
	return form
}

// EditForm changes the form; only allowed while Idle
func (f *LoanFlow) EditForm(edit func(form *LoanForm)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return ErrWrongState
	}
	edit(&f.form)
	if f.form.Files == nil {
		f.form.Files = map[string]FileUpload{}
	}
	return nil
}

// EditCode changes the code boxes; only allowed while awaiting the code
func (f *LoanFlow) EditCode(edit func(code *CodeInput)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingCode {
		return ErrWrongState
	}
	edit(&f.code)
	return nil
}

// Code returns the code typed so far
func (f *LoanFlow) Code() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code.Code()
}

// RequiresFiles reports whether the user's affiliation must attach files
func (f *LoanFlow) RequiresFiles() bool {
	return f.user.CurrentCompanie.RequiresLoanFiles()
}

// Submit posts the form. On success the loan id is stored as the pending
// marker and the flow awaits the code; on failure it returns to Idle with
// the inputs untouched.
func (f *LoanFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return ErrWrongState
	}
	if !f.form.TermsAccepted {
		f.mu.Unlock()
		return ErrTermsNotAccepted
	}

	requiresFiles := f.RequiresFiles()
	if requiresFiles {
		for _, name := range RequiredLoanFiles {
			if _, ok := f.form.Files[name]; !ok {
				f.mu.Unlock()
				return ErrMissingFiles
			}
		}
	}

	req := LoanRequest{
		UserID:             f.user.ID,
		Entity:             f.form.Entity,
		BankNumberAccount:  f.form.BankNumberAccount,
		Cantity:            f.form.Cantity,
		Signature:          normalizeSignature(f.form.Signature),
		TermsAndConditions: true,
		IsValorAgregado:    !requiresFiles,
		Files:              f.form.Files,
	}
	f.state = StateSubmitting
	f.lastErr = ""
	f.mu.Unlock()

	details, err := f.api.CreateLoan(ctx, req)

	var pending *PendingLoanError
	if errors.As(err, &pending) {
		details, _ = json.Marshal(map[string]string{"loanId": pending.LoanID})
		err = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateIdle
		f.lastErr = ErrorMessage(err)
		return err
	}

	if err := f.markers.Save(details); err != nil {
		logger.Log.WithError(err).Warn("could not store pending loan marker")
	}
	f.preLoanID = LoanID(details)
	f.code.Reset()
	f.state = StateAwaitingCode

	logger.Log.WithFields(logrus.Fields{
		"user_id": f.user.ID,
		"loan_id": f.preLoanID,
	}).Debug("loan awaiting verification code")
	return nil
}

// Verify sends the six-character code. Success clears the marker and
// schedules navigation to the panel after RedirectDelay. A rejected code
// clears the boxes for another try; a lost session ends in StateFailed.
func (f *LoanFlow) Verify(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingCode {
		f.mu.Unlock()
		return ErrWrongState
	}
	code := f.code.Code()
	if len([]rune(code)) != CodeLength {
		f.mu.Unlock()
		return ErrCodeLength
	}
	preLoanID := f.preLoanID
	f.state = StateVerifying
	f.lastErr = ""
	f.mu.Unlock()

	_, err := f.api.VerifyToken(ctx, f.user.ID, preLoanID, code)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.lastErr = ErrorMessage(err)
		f.code.Reset()
		f.state = StateAwaitingCode
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status == http.StatusUnauthorized {
			f.state = StateFailed
		}
		return err
	}

	if err := f.markers.Clear(); err != nil {
		logger.Log.WithError(err).Warn("could not clear pending loan marker")
	}
	f.preLoanID = ""
	f.state = StateVerified
	f.stop = f.afterFunc(RedirectDelay, func() { f.navigate(PanelPath) })
	return nil
}

// Close cancels a scheduled redirect
func (f *LoanFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop != nil {
		f.stop()
		f.stop = nil
	}
}

// normalizeSignature recolours the signature; a blank pad is no signature
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
