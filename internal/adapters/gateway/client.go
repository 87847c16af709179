package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"creditoya-web/internal/pkg/token"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MsgUnauthenticated is returned for every upstream 401
const MsgUnauthenticated = "No autenticado"

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "creditoya_gateway_request_duration_seconds",
	Help:    "Latency of requests forwarded to the backend gateway.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "status"})

// Error is a non-2xx answer from the gateway. Message is the body's "error"
// field, falling back to its "message" field.
type Error struct {
	Status       int
	Message      string
	ErrorField   string
	MessageField string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway responded %d", e.Status)
	}
	return fmt.Sprintf("gateway responded %d: %s", e.Status, e.Message)
}

// MessageOr returns the upstream message or fallback when there was none
func (e *Error) MessageOr(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// DetailOr prefers the body's "message" field over "error", then fallback
func (e *Error) DetailOr(fallback string) string {
	if e.MessageField != "" {
		return e.MessageField
	}
	return e.MessageOr(fallback)
}

// AsError extracts a *Error from err
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// Body is something that can be sent as a request payload
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct{ v interface{} }

// JSON wraps v as an application/json body
func JSON(v interface{}) Body { return jsonBody{v} }

func (b jsonBody) encode() (io.Reader, string, error) {
	raw, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(raw), "application/json", nil
}

// File is one file part of a multipart body
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart is a multipart/form-data body. Fields are written in order
// before the files.
type Multipart struct {
	Fields [][2]string
	Files  []File
}

// AddField appends a text field
func (m *Multipart) AddField(name, value string) {
	m.Fields = append(m.Fields, [2]string{name, value})
}

// AddFile appends a file part
func (m *Multipart) AddFile(field, filename string, content io.Reader) {
	m.Files = append(m.Files, File{Field: field, Filename: filename, Content: content})
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// Response is a 2xx gateway answer
type Response struct {
	Status int
	Body   json.RawMessage
}

// IsNull reports whether the body is empty or the JSON literal null
func (r *Response) IsNull() bool {
	trimmed := bytes.TrimSpace(r.Body)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// Decode unmarshals the body into v
func (r *Response) Decode(v interface{}) error {
	if r.IsNull() {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Value returns the body as a generic JSON value so handlers can relay it
func (r *Response) Value() interface{} {
	if r.IsNull() {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return string(r.Body)
	}
	return v
}

// Field returns a top-level string field of an object body
func (r *Response) Field(name string) string {
	var m map[string]interface{}
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return ""
	}
	s, _ := m[name].(string)
	return s
}

type ctxKey int

const idempotencyKeyCtx ctxKey = iota

// IdempotencyHeader carries the key that lets the gateway drop a replayed create
const IdempotencyHeader = "Idempotency-Key"

// WithIdempotencyKey makes requests sent with ctx carry key in IdempotencyHeader
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx, key)
}

// Client forwards requests to the backend gateway
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway client for baseURL with the given timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Do sends method path with the session token and an optional body.
// Non-2xx answers come back as *Error; transport failures as wrapped errors.
func (c *Client) Do(ctx context.Context, method, path, sessionToken string, body Body) (*Response, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		var err error
		reader, contentType, err = body.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
		req.Header.Set("Cookie", token.CookieName+"="+sessionToken)
	}
	if key, _ := ctx.Value(idempotencyKeyCtx).(string); key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		upstreamDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	upstreamDuration.WithLabelValues(method, fmt.Sprint(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &Error{Status: http.StatusUnauthorized, Message: MsgUnauthenticated}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errField, msgField := errorFields(raw)
		msg := errField
		if msg == "" {
			msg = msgField
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg, ErrorField: errField, MessageField: msgField}
	}

	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// Get is Do with GET and no body
func (c *Client) Get(ctx context.Context, path, sessionToken string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, sessionToken, nil)
}

// Post is Do with POST
func (c *Client) Post(ctx context.Context, path, sessionToken string, body Body) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, sessionToken, body)
}

// Put is Do with PUT
func (c *Client) Put(ctx context.Context, path, sessionToken string, body Body) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, sessionToken, body)
}

// errorFields pulls "error" and "message" out of a gateway error body.
// NestJS style bodies may carry message as an array of strings.
func errorFields(raw []byte) (string, string) {
	var body struct {
		Error   interface{} `json:"error"`
		Message interface{} `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", ""
	}
	return stringOf(body.Error), stringOf(body.Message)
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
