// Package client drives the CreditoYa proxy routes the way the customer pages
// do. Client is a cookie-carrying HTTP client for the /api routes; the other
// types hold the page state built on top of it (session, panel, loan flow).
//
// Every network call takes a context.Context and aborts when it is cancelled.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"creditoya-web/internal/core/domain"
)

// Upload targets under /api/auth/me
const (
	UploadAvatar   = "/api/auth/me/avatar"
	UploadDocument = "/api/auth/me/docs/papers"
	UploadSelfie   = "/api/auth/me/docs/selfie"
)

// ErrNoUser is returned when a route answers successfully but without a user
var ErrNoUser = errors.New("response carries no user")

// APIError is a non-success envelope. Data holds the envelope's data field,
// which the create-loan route fills on a 409.
type APIError struct {
	Status  int
	Message string
	Data    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type envelope struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Error       string          `json:"error"`
	Data        json.RawMessage `json:"data"`
	LoanDetails json.RawMessage `json:"loanDetails"`
}

// Client talks to the proxy routes and keeps the session cookie in a jar
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the site at baseURL
func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// RegisterInput is the registration form
type RegisterInput struct {
	Email           string             `json:"email"`
	Password        string             `json:"password"`
	Names           string             `json:"names"`
	FirstLastName   string             `json:"firstLastName"`
	SecondLastName  string             `json:"secondLastName,omitempty"`
	CurrentCompanie domain.UserCompany `json:"currentCompanie,omitempty"`
}

// Me returns the user behind the current session cookie
func (c *Client) Me(ctx context.Context) (*domain.ClientUser, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeUser(env.Data)
}

// Profile returns the full profile of userID
func (c *Client) Profile(ctx context.Context, userID string) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/me?"+url.Values{"user_id": {userID}}.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if user.ID == "" {
		return nil, ErrNoUser
	}
	return &user, nil
}

// Login opens a session; the cookie lands in the client's jar
func (c *Client) Login(ctx context.Context, email, password string) (*domain.ClientUser, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/auth", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return decodeUser(env.Data)
}

// Register creates an account and opens a session
func (c *Client) Register(ctx context.Context, in RegisterInput) (*domain.ClientUser, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", in)
	if err != nil {
		return nil, err
	}
	return decodeUser(env.Data)
}

// Logout closes the session
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, "")
	return err
}

// UpdateField sends one profile field update
func (c *Client) UpdateField(ctx context.Context, userID, field string, value interface{}) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/api/auth/me?"+url.Values{"user_id": {userID}}.Encode(), map[string]interface{}{
		"field": field,
		"value": value,
	})
	return err
}

// Upload sends a file to one of the Upload* targets
func (c *Client) Upload(ctx context.Context, target, userID, filename string, content io.Reader) error {
	form := newForm()
	form.field("user_id", userID)
	form.file("file", filename, content)

	method := http.MethodPost
	if target == UploadAvatar {
		method = http.MethodPut
	}
	_, err := c.sendForm(ctx, method, target, form)
	return err
}

// LoanRequest is the new-loan form as posted to /api/loan
type LoanRequest struct {
	UserID             string
	Entity             string
	BankNumberAccount  string
	Cantity            string
	Signature          string
	TermsAndConditions bool
	IsValorAgregado    bool
	Files              map[string]FileUpload
}

// FileUpload is an attached file
type FileUpload struct {
	Filename string
	Content  []byte
}

// PendingLoanError means the user already has a loan waiting for its code
type PendingLoanError struct {
	LoanID string
}

func (e *PendingLoanError) Error() string {
	return "loan " + e.LoanID + " is awaiting verification"
}

// CreateLoan posts a new loan request and returns the loan details. A 409
// from the server comes back as *PendingLoanError.
func (c *Client) CreateLoan(ctx context.Context, in LoanRequest) (json.RawMessage, error) {
	form := newForm()
	for _, name := range []string{"labor_card", "fisrt_flyer", "second_flyer", "third_flyer"} {
		if f, ok := in.Files[name]; ok {
			form.file(name, f.Filename, bytes.NewReader(f.Content))
		}
	}
	if in.Signature != "" {
		form.field("signature", in.Signature)
	}
	form.field("user_id", in.UserID)
	form.field("entity", in.Entity)
	form.field("bankNumberAccount", in.BankNumberAccount)
	form.field("cantity", in.Cantity)
	form.field("terms_and_conditions", fmt.Sprint(in.TermsAndConditions))
	form.field("isValorAgregado", fmt.Sprint(in.IsValorAgregado))

	env, err := c.sendForm(ctx, http.MethodPost, "/api/loan", form)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status == http.StatusConflict {
			var pending domain.PendingLoan
			if json.Unmarshal(apiErr.Data, &pending) == nil && pending.LoanID != "" {
				return nil, &PendingLoanError{LoanID: pending.LoanID}
			}
		}
		return nil, err
	}
	return env.LoanDetails, nil
}

// LatestLoan returns the user's latest loan, or nil and the server's message
// when there is none.
func (c *Client) LatestLoan(ctx context.Context, userID string) (*domain.LoanApplication, string, error) {
	q := url.Values{"user_id": {userID}, "latest": {"true"}}
	env, err := c.do(ctx, http.MethodGet, "/api/loan?"+q.Encode(), nil, "")
	if err != nil {
		return nil, "", err
	}
	loan, err := decodeLoan(env.Data)
	return loan, env.Message, err
}

// Loan returns one loan
func (c *Client) Loan(ctx context.Context, userID, loanID string) (*domain.LoanApplication, error) {
	q := url.Values{"user_id": {userID}, "loan_id": {loanID}}
	env, err := c.do(ctx, http.MethodGet, "/api/loan?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeLoan(env.Data)
}

// VerifyToken confirms a pending loan with its one-time code
func (c *Client) VerifyToken(ctx context.Context, userID, preLoanID, code string) (json.RawMessage, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/loan/verify-token", map[string]string{
		"preToken":  code,
		"preLoanId": preLoanID,
		"userId":    userID,
	})
	if err != nil {
		return nil, err
	}
	return env.LoanDetails, nil
}

// Banks lists the disbursement banks matching term
func (c *Client) Banks(ctx context.Context, term string) ([]domain.Bank, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/banks?"+url.Values{"q": {term}}.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	var banks []domain.Bank
	if err := json.Unmarshal(env.Data, &banks); err != nil {
		return nil, fmt.Errorf("decode banks: %w", err)
	}
	return banks, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, v interface{}) (*envelope, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(raw), "application/json")
}

func (c *Client) sendForm(ctx context.Context, method, path string, f *form) (*envelope, error) {
	if err := f.close(); err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, &f.buf, f.w.FormDataContentType())
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &env, &APIError{Status: resp.StatusCode, Message: msg, Data: env.Data}
	}

	return &env, nil
}

func decodeUser(data json.RawMessage) (*domain.ClientUser, error) {
	var out struct {
		User *domain.ClientUser `json:"user"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.User == nil {
		return nil, ErrNoUser
	}
	return out.User, nil
}

func decodeLoan(data json.RawMessage) (*domain.LoanApplication, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var loan domain.LoanApplication
	if err := json.Unmarshal(data, &loan); err != nil {
		return nil, fmt.Errorf("decode loan: %w", err)
	}
	return &loan, nil
}

// form is a multipart body under construction
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) {
	if f.err == nil {
		f.err = f.w.WriteField(name, value)
	}
}

func (f *form) file(name, filename string, content io.Reader) {
	if f.err != nil {
		return
	}
	part, err := f.w.CreateFormFile(name, filename)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = io.Copy(part, content)
}

func (f *form) close() error {
	if f.err != nil {
		return fmt.Errorf("build multipart body: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	return nil
}
