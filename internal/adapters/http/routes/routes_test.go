package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"creditoya-web/internal/adapters/gateway"
	"creditoya-web/internal/adapters/http/middleware"
	"creditoya-web/internal/adapters/http/views"
	"creditoya-web/internal/adapters/persistence/repositories"
	"creditoya-web/internal/config"
	"creditoya-web/internal/core/services"
	"creditoya-web/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeUser = `{
	"id": "u1", "email": "ana@correo.co", "names": "Ana", "firstLastName": "Gómez",
	"currentCompanie": "incauca_sas",
	"city": "Cali", "residence_address": "Calle 1", "genre": "F",
	"phone_whatsapp": "3000000000", "phone": "3000000000",
	"Document": [{"id": "d1", "documentSides": "https://x/doc.pdf", "imageWithCC": "https://x/selfie.png", "number": "123", "typeDocument": "CC"}],
	"LoanApplication": []
}`

const incompleteUser = `{
	"id": "u1", "email": "ana@correo.co", "names": "Ana", "firstLastName": "Gómez",
	"currentCompanie": "incauca_sas",
	"city": "No definido", "residence_address": null, "genre": "F",
	"phone_whatsapp": "No definidos", "phone": "3000000000",
	"Document": []
}`

type fakeGateway struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests map[string]*recorded
}

type recorded struct {
	header http.Header
	body   []byte
}

func (f *fakeGateway) on(key string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeGateway) last(key string) *recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[key]
}

type testEnv struct {
	app     *fiber.App
	gw      *fakeGateway
	pending *services.PendingLoanService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fg := &fakeGateway{routes: map[string]http.HandlerFunc{}, requests: map[string]*recorded{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))

		fg.mu.Lock()
		fg.requests[key] = &recorded{header: r.Header.Clone(), body: raw}
		h := fg.routes[key]
		fg.mu.Unlock()

		if h == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"statusCode":404,"message":"Not Found"}`)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AppMode: "dev",
		Cookie:  config.CookieConfig{SameSite: "Lax", MaxAge: 24 * time.Hour},
	}
	pending := services.NewPendingLoanService(repositories.NewMemoryPendingLoanRepository(), 15*time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
		Views:        views.NewEngine(false),
	})
	middleware.Setup(app, cfg)
	Setup(app, Deps{
		Gateway: gateway.NewClient(srv.URL, 2*time.Second),
		Pending: pending,
	}, cfg)

	return &testEnv{app: app, gw: fg, pending: pending}
}

func sessionToken(t *testing.T, typ string) string {
	t.Helper()
	claims := token.Claims{
		Email: "ana@correo.co",
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("gateway-secret"))
	require.NoError(t, err)
	return raw
}

// unsignedToken builds an alg=none token; the BFF cannot tell it apart
// from a real one without the gateway's key
func unsignedToken(t *testing.T, subject string) string {
	t.Helper()
	claims := token.Claims{
		Type: "client",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return raw
}

type envelope struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Error       string          `json:"error"`
	Data        json.RawMessage `json:"data"`
	LoanDetails json.RawMessage `json:"loanDetails"`
}

func (e *testEnv) do(t *testing.T, req *http.Request, session string) (*http.Response, envelope) {
	t.Helper()
	if session != "" {
		req.AddCookie(&http.Cookie{Name: token.CookieName, Value: session})
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Message = string(raw)
	}
	return resp, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f, f+".pdf")
		require.NoError(t, err)
		_, _ = part.Write([]byte("contenido"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == token.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /auth/login/client", 200, `{"user":{"id":"u1","email":"ana@correo.co"},"accessToken":"tok-123"}`)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/auth", `{"email":"ana@correo.co","password":"x"}`), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.JSONEq(t, `{"user":{"id":"u1","email":"ana@correo.co"}}`, string(body.Data))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-123", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 86400, cookie.MaxAge)
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /auth/login/client", 401, `{"error":"Credenciales inválidas"}`)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/auth", `{"email":"a","password":"b"}`), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, gateway.MsgUnauthenticated, body.Error)
	assert.Nil(t, sessionCookie(resp))
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /auth/register/client", 201, `{"user":{"id":"u2"},"accessToken":"tok-new"}`)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"a@b.co","password":"x","firstLastName":"G"}`), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "El campo names es requerido", body.Error)

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"a@b.co","password":"x","names":"Ana","firstLastName":"G"}`), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"user":{"id":"u2"},"accessToken":"tok-new"}`, string(body.Data))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "registration uses the same session cookie as login")
	assert.Equal(t, "tok-new", cookie.Value)
}

func TestRegisterConflictUsesGatewayMessage(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /auth/register/client", 409, `{"error":"Conflict","message":"El correo ya está registrado"}`)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"a@b.co","password":"x","names":"Ana","firstLastName":"G"}`), "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "El correo ya está registrado", body.Error)
}

func TestLogoutAlwaysClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /auth/logout/client", 500, `{"error":"down"}`)

	resp, body := env.do(t, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), sessionToken(t, "client"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("GET /auth/me/client", 200, `{"id":"u1","email":"ana@correo.co"}`)
	env.gw.on("GET /clients/u1", 200, completeUser)
	session := sessionToken(t, "client")

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, token.MsgMissing, body.Error)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"u1","email":"ana@correo.co"}`, string(body.Data))

	rec := env.gw.last("GET /auth/me/client")
	require.NotNil(t, rec)
	assert.Equal(t, "Bearer "+session, rec.header.Get("Authorization"))
	assert.Equal(t, token.CookieName+"="+session, rec.header.Get("Cookie"))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/me?user_id=u1", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotNil(t, env.gw.last("GET /clients/u1"))
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("PUT /clients/u1", 200, `{"id":"u1","city":"Palmira"}`)
	session := sessionToken(t, "client")

	resp, body := env.do(t, jsonRequest(http.MethodPut, "/api/auth/me?user_id=u1", `{"field":"city"}`), session)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Field and value are required", body.Error)

	resp, body = env.do(t, jsonRequest(http.MethodPut, "/api/auth/me?user_id=u1", `{"field":"city","value":"Palmira"}`), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.JSONEq(t, `{"city":"Palmira"}`, string(env.gw.last("PUT /clients/u1").body))

	// the session subject fills in a missing user_id
	resp, _ = env.do(t, jsonRequest(http.MethodPut, "/api/auth/me", `{"field":"city","value":null}`), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"city":null}`, string(env.gw.last("PUT /clients/u1").body))
}

func TestUploads(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("PUT /clients/u1/avatar", 200, `{}`)
	env.gw.on("PUT /clients/u1/document", 200, `{}`)
	env.gw.on("PUT /clients/u1/document/selfie", 200, `{}`)
	session := sessionToken(t, "client")

	resp, body := env.do(t, multipartRequest(t, http.MethodPut, "/api/auth/me/avatar", map[string]string{"user_id": "u1"}), session)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No se proporcionó ningún archivo", body.Error)

	tests := []struct {
		method, path, want string
	}{
		{http.MethodPut, "/api/auth/me/avatar", `"Actualizacion de avatar exitoso"`},
		{http.MethodPost, "/api/auth/me/docs/papers", `"Verificación de documento de identidad exitosa"`},
		{http.MethodPost, "/api/auth/me/docs/selfie", `"Verificación de imagen con CC actualizada"`},
	}
	for _, tt := range tests {
		resp, body := env.do(t, multipartRequest(t, tt.method, tt.path, map[string]string{"user_id": "u1"}, "file"), session)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, tt.path)
		assert.JSONEq(t, tt.want, string(body.Data))
	}
}

func loanFields() map[string]string {
	return map[string]string{
		"signature":            "firma",
		"user_id":              "u1",
		"entity":               "bancolombia",
		"bankNumberAccount":    "123456",
		"cantity":              "800000",
		"terms_and_conditions": "true",
		"isValorAgregado":      "false",
	}
}

var loanFiles = []string{"labor_card", "fisrt_flyer", "second_flyer", "third_flyer"}

func TestCreateLoanValidation(t *testing.T) {
	env := newTestEnv(t)
	session := sessionToken(t, "client")

	tests := []struct {
		name   string
		mutate func(map[string]string)
		files  []string
		want   string
	}{
		{"signature", func(f map[string]string) { delete(f, "signature") }, loanFiles, "No se proporcionó la firma del préstamo"},
		{"fields", func(f map[string]string) { f["terms_and_conditions"] = "false" }, loanFiles, "Faltan campos obligatorios"},
		{"files", func(f map[string]string) {}, loanFiles[:3], "Faltan archivos requeridos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := loanFields()
			tt.mutate(fields)
			resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", fields, tt.files...), session)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, body.Error)
		})
	}
}

func TestCreateLoanAndResume(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /loans/u1", 201, `{"loanId":"l-77","status":"Borrador"}`)
	session := sessionToken(t, "client")

	resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", loanFields(), loanFiles...), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Error)
	assert.JSONEq(t, `"Creación de préstamo exitoso"`, string(body.Data))
	assert.JSONEq(t, `{"loanId":"l-77","status":"Borrador"}`, string(body.LoanDetails))

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan/pending", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"loan_id":"l-77"`)

	// a second submit resumes instead of creating another loan
	resp, body = env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", loanFields(), loanFiles...), session)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"loan_id":"l-77"`)
}

func TestPendingLoanOnlyForCreatingSession(t *testing.T) {
	env := newTestEnv(t)
	session := sessionToken(t, "client")
	_, err := env.pending.Register(context.Background(), "u1", "l1", "k1", session)
	require.NoError(t, err)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan/pending", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"loan_id":"l1"`)
	assert.NotContains(t, string(body.Data), "session")

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan/pending", nil), unsignedToken(t, "u1"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, []string{"", "null"}, string(body.Data))
}

func TestCreateLoanForAnotherUser(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /loans/victim", 401, `{"message":"Unauthorized"}`)
	_, err := env.pending.Register(context.Background(), "victim", "l-v", "k-v", "victim-session")
	require.NoError(t, err)

	fields := loanFields()
	fields["user_id"] = "victim"
	fields["isValorAgregado"] = "true"

	resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", fields), sessionToken(t, "client"))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "No tienes permiso para operar sobre este usuario", body.Error)
	assert.NotContains(t, string(body.Data), "l-v")
	assert.Nil(t, env.gw.last("POST /loans/victim"))

	// claiming the victim's subject still does not reach their record
	resp, body = env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", fields), unsignedToken(t, "victim"))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, string(body.Data), "l-v")
	assert.NotNil(t, env.gw.last("POST /loans/victim"))
}

func TestCreateLoanValorAgregadoWithoutFiles(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /loans/u1", 201, `{"loanId":"l-1"}`)

	fields := loanFields()
	fields["isValorAgregado"] = "true"
	resp, _ := env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", fields), sessionToken(t, "client"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	sent := string(env.gw.last("POST /loans/u1").body)
	assert.Contains(t, sent, `name="isValorAgregado"`)
	assert.NotContains(t, sent, `name="user_id"`)
}

func TestCreateLoanGatewayError(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /loans/u1", 400, `{"error":"Bad Request","message":"Monto fuera de rango"}`)

	resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/loan", loanFields(), loanFiles...), sessionToken(t, "client"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Monto fuera de rango", body.Error)
}

func TestGetLoan(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("GET /loans/u1/latest", 200, `null`)
	env.gw.on("GET /loans/u1/l1/info", 200, `{"id":"l1","status":"Aprobado"}`)
	session := sessionToken(t, "client")

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan?user_id=u1&latest=true", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Contains(t, []string{"", "null"}, string(body.Data))
	assert.Equal(t, "No tienes préstamos por el momento", body.Message)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan?user_id=u1", nil), session)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Falta parámetro requerido: loan_id", body.Error)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan?user_id=u1&loan_id=l1", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"l1","status":"Aprobado"}`, string(body.Data))

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/loan?user_id=u1&loan_id=nope", nil), session)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Préstamo o usuario no encontrado", body.Error)
}

func TestVerifyToken(t *testing.T) {
	env := newTestEnv(t)
	env.gw.routes["POST /loans/u1/l1"] = func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["token"] != "482913" {
			_, _ = io.WriteString(w, `{"error":"Código incorrecto"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"l1","status":"Pendiente"}`)
	}
	session := sessionToken(t, "client")
	_, err := env.pending.Register(context.Background(), "u1", "l1", "k1", session)
	require.NoError(t, err)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/loan/verify-token", `{"preToken":"000000","preLoanId":"l1","userId":"u1"}`), session)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Código incorrecto", body.Error)

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/loan/verify-token", `{"preToken":"482913","preLoanId":"l1","userId":"u1"}`), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"Token verificado exitosamente"`, string(body.Data))

	active, err := env.pending.Active(context.Background(), "u1", session)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestVerifyTokenGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("POST /loans/u1/l1", 502, `{"error":"upstream"}`)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/loan/verify-token", `{"preToken":"482913","preLoanId":"l1","userId":"u1"}`), sessionToken(t, "client"))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error al verificar el token", body.Error)
}

func TestBanks(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/banks?q=pichincha", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"value":"banco-pichincha","label":"Banco Pichincha"}]`, string(body.Data))
}

func TestPanelPages(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("GET /clients/u1", 200, completeUser)
	env.gw.on("GET /loans/u1/latest", 200, `{"id":"l9","status":"Aprobado","cantity":"1500000","entity":"davivienda","created_at":"2024-03-05T10:00:00Z"}`)
	env.gw.on("GET /loans/u1/l9/info", 200, `{"id":"l9","status":"Aprobado","cantity":"1500000","entity":"davivienda","bankNumberAccount":"99","created_at":"2024-03-05T10:00:00Z"}`)
	session := sessionToken(t, "client")

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/panel", nil), "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth", resp.Header.Get("Location"))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/panel", nil), sessionToken(t, "intranet"))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp, page := env.do(t, httptest.NewRequest(http.MethodGet, "/panel", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, page.Message, "Nueva solicitud")
	assert.Contains(t, page.Message, "status-green")
	assert.Contains(t, page.Message, "Davivienda")
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get("Cache-Control"))

	resp, page = env.do(t, httptest.NewRequest(http.MethodGet, "/panel/solicitud/l9", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, page.Message, "5 de marzo de 2024")

	resp, page = env.do(t, httptest.NewRequest(http.MethodGet, "/panel/nueva-solicitud", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, page.Message, `name="fisrt_flyer"`)

	_, err := env.pending.Register(context.Background(), "u1", "l10", "k10", session)
	require.NoError(t, err)
	_, page = env.do(t, httptest.NewRequest(http.MethodGet, "/panel/nueva-solicitud", nil), session)
	assert.Contains(t, page.Message, `value="l10"`)
}

func TestPanelIncompleteProfile(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("GET /clients/u1", 200, incompleteUser)
	session := sessionToken(t, "client")

	resp, page := env.do(t, httptest.NewRequest(http.MethodGet, "/panel", nil), session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, page.Message, "Ciudad")
	assert.Contains(t, page.Message, "No tienes préstamos por el momento")
	assert.NotContains(t, page.Message, `href="/panel/nueva-solicitud"`)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/panel/nueva-solicitud", nil), session)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/panel", resp.Header.Get("Location"))
}

func TestPanelGatewayRejectsSession(t *testing.T) {
	env := newTestEnv(t)
	env.gw.on("GET /clients/u1", 401, `{}`)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/panel", nil), sessionToken(t, "client"))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth", resp.Header.Get("Location"))
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), sessionToken(t, "client"))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/panel", resp.Header.Get("Location"))

	resp, page := env.do(t, httptest.NewRequest(http.MethodGet, "/auth", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, page.Message, "valor_agregado")
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, page := env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, page.Message, "creditoya_http_requests_total")
}
