package companion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator(username, password string) (bool, bool) {
	switch {
	case username == "agency-admin" && password == "app-password":
		return true, true
	case username == "editor-bob" && password == "app-password":
		return false, true
	default:
		return false, false
	}
}

func testEndpoint(secret string) *Endpoint {
	return New(Config{
		SharedSecret: secret,
		Authenticate: testAuthenticator,
	})
}

type call struct {
	method   string
	path     string
	user     string
	password string
	secret   string
	confirm  bool
	body     string
}

func perform(t *testing.T, e *Endpoint, c call) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if c.body != "" {
		reader = strings.NewReader(c.body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(c.method, "/wp-json/dashboard/v1"+c.path, reader)
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	if c.secret != "" {
		req.Header.Set(HeaderSecret, c.secret)
	}
	if c.confirm {
		req.Header.Set(HeaderAction, ActionConfirm)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.Router().ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	return body.Code
}

func TestAuthorizationGates(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		call       call
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no credentials",
			secret:     "site-secret",
			call:       call{method: http.MethodGet, path: "/health", secret: "site-secret"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeNotLoggedIn,
		},
		{
			name:       "wrong password",
			secret:     "site-secret",
			call:       call{method: http.MethodGet, path: "/health", user: "agency-admin", password: "nope", secret: "site-secret"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeNotLoggedIn,
		},
		{
			name:       "authenticated but not an administrator",
			secret:     "site-secret",
			call:       call{method: http.MethodGet, path: "/health", user: "editor-bob", password: "app-password", secret: "site-secret"},
			wantStatus: http.StatusForbidden,
			wantCode:   CodeForbidden,
		},
		{
			name:       "secret never configured on the site",
			secret:     "",
			call:       call{method: http.MethodGet, path: "/health", user: "agency-admin", password: "app-password", secret: "site-secret"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeSecretNotConfigured,
		},
		{
			name:       "secret mismatch",
			secret:     "site-secret",
			call:       call{method: http.MethodGet, path: "/health", user: "agency-admin", password: "app-password", secret: "wrong-secret"},
			wantStatus: http.StatusForbidden,
			wantCode:   CodeInvalidSecret,
		},
		{
			name:       "all gates pass",
			secret:     "site-secret",
			call:       call{method: http.MethodGet, path: "/health", user: "agency-admin", password: "app-password", secret: "site-secret"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, testEndpoint(tt.secret), tt.call)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
		})
	}
}

func TestWriteRoutesRequireConfirmation(t *testing.T) {
	writes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/cache/clear", ""},
		{http.MethodPost, "/maintenance", `{"enabled": true}`},
		{http.MethodPost, "/debug", `{"enabled": true}`},
		{http.MethodPost, "/themes/activate", `{"stylesheet": "twentytwentyfour"}`},
		{http.MethodPost, "/update/core", ""},
		{http.MethodPost, "/woo/orders/12", `{"status": "completed"}`},
		{http.MethodPost, "/users/3/reset-password", ""},
	}

	for _, wr := range writes {
		t.Run(wr.path, func(t *testing.T) {
			e := testEndpoint("site-secret")

			// Fully authorized but unconfirmed: rejected before any effect.
			w := perform(t, e, call{
				method: wr.method, path: wr.path,
				user: "agency-admin", password: "app-password",
				secret: "site-secret", body: wr.body,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, CodeConfirmRequired, errorCode(t, w))

			// Same request with the confirmation header goes through.
			w = perform(t, e, call{
				method: wr.method, path: wr.path,
				user: "agency-admin", password: "app-password",
				secret: "site-secret", confirm: true, body: wr.body,
			})
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestReadRoutesIgnoreConfirmationHeader(t *testing.T) {
	e := testEndpoint("site-secret")

	// Reads work with or without the confirmation header.
	for _, confirm := range []bool{false, true} {
		w := perform(t, e, call{
			method: http.MethodGet, path: "/site-health",
			user: "agency-admin", password: "app-password",
			secret: "site-secret", confirm: confirm,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestMaintenanceToggleIsObservable(t *testing.T) {
	e := testEndpoint("site-secret")
	authorized := call{
		user: "agency-admin", password: "app-password", secret: "site-secret",
	}

	on := authorized
	on.method = http.MethodPost
	on.path = "/maintenance"
	on.confirm = true
	on.body = `{"enabled": true}`
	require.Equal(t, http.StatusOK, perform(t, e, on).Code)

	read := authorized
	read.method = http.MethodGet
	read.path = "/site-health"
	w := perform(t, e, read)
	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		MaintenanceMode bool `json:"maintenance_mode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.True(t, health.MaintenanceMode)
}

func TestRateLimitPerIP(t *testing.T) {
	e := testEndpoint("site-secret")
	healthCall := call{
		method: http.MethodGet, path: "/health",
		user: "agency-admin", password: "app-password", secret: "site-secret",
	}

	for i := 0; i < 60; i++ {
		w := perform(t, e, healthCall)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := perform(t, e, healthCall)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, CodeRateLimited, errorCode(t, w))
}

func TestRateLimitAppliesBeforeAuthentication(t *testing.T) {
	e := testEndpoint("site-secret")
	anonymous := call{method: http.MethodGet, path: "/health"}

	// Unauthenticated probes burn budget too, so a scanner cannot hammer
	// the endpoint for free.
	for i := 0; i < 60; i++ {
		w := perform(t, e, anonymous)
		require.Equal(t, http.StatusUnauthorized, w.Code, "request %d", i)
	}

	w := perform(t, e, anonymous)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
