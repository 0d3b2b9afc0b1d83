package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type testHandler struct {
	method string
	path   string
	handle pkghttp.HandlerFunc
}

func (h testHandler) Method() string { return h.method }
func (h testHandler) Path() string   { return h.path }
func (h testHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	return h.handle(w, r)
}

func serve(t *testing.T, handler testHandler, req *http.Request, opts ...pkghttp.ServerOption) *httptest.ResponseRecorder {
	t.Helper()
	server := pkghttp.NewServer("", opts...)
	server.Register(handler)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestServer_WritesHandlerResult(t *testing.T) {
	tests := []struct {
		name   string
		handle pkghttp.HandlerFunc
		status int
		body   string
	}{
		{
			name: "json_body",
			handle: func(w pkghttp.ResponseWriter, _ *http.Request) error {
				w.SetStatusCode(http.StatusCreated).SetJSONBody(pkghttp.MessageOut{Message: "created"})
				return nil
			},
			status: http.StatusCreated,
			body:   `{"message":"created"}`,
		},
		{
			name: "internal_error_hides_details",
			handle: func(pkghttp.ResponseWriter, *http.Request) error {
				return errors.New("db password is wrong")
			},
			status: http.StatusInternalServerError,
			body:   `{"message":"Internal server error"}`,
		},
		{
			name: "parsing_error_is_bad_request",
			handle: func(_ pkghttp.ResponseWriter, r *http.Request) error {
				_, err := pkghttp.ParseRequest(r, pkghttp.QueryParameter[int]("page"), nil)
				return err
			},
			status: http.StatusBadRequest,
			body:   `{"message":"Bad Request"}`,
		},
		{
			name: "explicit_failure_status_is_kept_with_error",
			handle: func(w pkghttp.ResponseWriter, _ *http.Request) error {
				w.SetStatusCode(http.StatusServiceUnavailable).SetJSONBody(pkghttp.MessageOut{Message: "Auth service unavailable"})
				return errors.New("unreachable")
			},
			status: http.StatusServiceUnavailable,
			body:   `{"message":"Auth service unavailable"}`,
		},
		{
			name: "panic",
			handle: func(pkghttp.ResponseWriter, *http.Request) error {
				panic("unexpected")
			},
			status: http.StatusInternalServerError,
			body:   `{"message":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := testHandler{method: http.MethodGet, path: "/test", handle: tt.handle}
			resp := serve(t, handler, httptest.NewRequest(http.MethodGet, "/test?page=x", nil))

			assert.Equal(t, tt.status, resp.Code)
			assert.JSONEq(t, tt.body, resp.Body.String())
			assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
		})
	}
}

func TestServer_RedirectKeepsFoundStatusWithError(t *testing.T) {
	handler := testHandler{
		method: http.MethodPost,
		path:   "/login",
		handle: func(w pkghttp.ResponseWriter, _ *http.Request) error {
			w.Redirect("/login?error=failed")
			return errors.New("backend failure")
		},
	}

	resp := serve(t, handler, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/login?error=failed", resp.Header().Get("Location"))
}

func TestServer_TextBody(t *testing.T) {
	handler := testHandler{
		method: http.MethodGet,
		path:   "/text",
		handle: func(w pkghttp.ResponseWriter, _ *http.Request) error {
			w.SetTextBody("ok")
			return nil
		},
	}

	resp := serve(t, handler, httptest.NewRequest(http.MethodGet, "/text", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body.String())
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain"))
}

func TestServer_HealthCheck(t *testing.T) {
	server := pkghttp.NewServer("", pkghttp.WithHealthCheck())
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestFormValues_AcceptsUrlencodedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("email=jane%40example.com&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.True(t, pkghttp.IsForm(req))
	require.False(t, pkghttp.IsMultipart(req))

	values, err := pkghttp.ParseRequest(req, pkghttp.FormValues(pkghttp.DefaultMultipartMemory), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"email": "jane@example.com", "password": "x"}, values)
}

func TestCookieValue_EmptyCookieIsMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "Authentication", Value: ""})

	_, err := pkghttp.ParseRequest(req, pkghttp.CookieValue[string]("Authentication"), nil)
	assert.ErrorIs(t, err, pkghttp.ErrParsingError)
}

func TestServer_CORSPreflight(t *testing.T) {
	var handled bool
	handler := testHandler{
		method: http.MethodPost,
		path:   "/auth/login",
		handle: func(w pkghttp.ResponseWriter, _ *http.Request) error {
			handled = true
			return nil
		},
	}

	server := pkghttp.NewServer("", pkghttp.WithCORSHandler())
	server.Register(handler)
	server.Register(testHandler{method: http.MethodGet, path: "/auth/profile", handle: handler.handle}, pkghttp.WithAuthenticationRequirement())

	for _, path := range []string{"/auth/login", "/auth/profile"} {
		t.Run(strings.TrimPrefix(path, "/auth/"), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "https://shop.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "content-type")

			resp := httptest.NewRecorder()
			server.Handler().ServeHTTP(resp, req)

			assert.Equal(t, http.StatusNoContent, resp.Code)
			assert.Equal(t, "https://shop.example.com", resp.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", resp.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, http.MethodPost, resp.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "content-type", resp.Header().Get("Access-Control-Allow-Headers"))
		})
	}
	assert.False(t, handled)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	resp := httptest.NewRecorder()
	server.Handler().ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "https://shop.example.com", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, handled)
}

func TestServer_OptionsListsRegisteredMethods(t *testing.T) {
	var handled bool
	handle := func(pkghttp.ResponseWriter, *http.Request) error {
		handled = true
		return nil
	}

	server := pkghttp.NewServer("")
	server.Register(testHandler{method: http.MethodGet, path: "/notification", handle: handle})
	server.Register(testHandler{method: http.MethodPost, path: "/notification", handle: handle})

	resp := httptest.NewRecorder()
	server.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/notification", nil))

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "GET, POST, OPTIONS", resp.Header().Get("Allow"))
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, handled)
}
