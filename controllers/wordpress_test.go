package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-dashboard/models"
	"agency-dashboard/services"
	"agency-dashboard/store"
	"agency-dashboard/vault"
	"agency-dashboard/wordpress"
)

type wpFixture struct {
	router *gin.Engine
	store  *store.Store
	vault  *vault.Vault
}

func newWPFixture(t *testing.T) *wpFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "dashboard.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var key [32]byte
	key[0] = 0x42
	vt := vault.New(key)

	ctrl := NewWordPressController(st, vt, wordpress.NewRunner(zerolog.Nop()), services.NewDeployer(zerolog.Nop()), zerolog.Nop())

	router := gin.New()
	wp := router.Group("/api/websites/:websiteId/wordpress")
	wp.POST("/connect", ctrl.Connect)
	wp.DELETE("/connection", ctrl.Disconnect)
	wp.POST("/diagnostics", ctrl.Diagnose)
	wp.GET("/status", ctrl.Status)
	wp.POST("/cache/clear", ctrl.ClearCache)
	wp.GET("/logs", ctrl.DebugLog)

	ctx := context.Background()
	require.NoError(t, st.CreateTenant(ctx, models.Tenant{ID: "tenant-1", Name: "Acme Agency"}))
	require.NoError(t, st.CreateWebsite(ctx, models.Website{
		ID: "site-1", TenantID: "tenant-1", Name: "Client Site", URL: "https://client-site.example",
	}))

	return &wpFixture{router: router, store: st, vault: vt}
}

func (f *wpFixture) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *wpFixture) connect(t *testing.T, siteURL string) {
	t.Helper()
	body := `{"siteUrl": "` + siteURL + `", "username": "agency-admin", "appPassword": "abcd efgh", "sharedSecret": "s3cret-token"}`
	w := f.request(http.MethodPost, "/api/websites/site-1/wordpress/connect", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// wpSite fakes the two remote surfaces the happy-path handlers touch.
func wpSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/wp-json/wp/v2/users/me":
			_, _ = w.Write([]byte(`{"id": 1, "username": "agency-admin", "roles": ["administrator"]}`))
		case "/wp-json/dashboard/v1/health":
			_, _ = w.Write([]byte(`{"version": "1.0.0", "status": "ok"}`))
		case "/wp-json/dashboard/v1/cache/clear":
			_, _ = w.Write([]byte(`{"cleared": true}`))
		case "/wp-json/dashboard/v1/logs":
			_, _ = w.Write([]byte(`{"lines": ["[notice] boot"], "truncated": false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code": "rest_no_route", "message": "No route was found."}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnect(t *testing.T) {
	f := newWPFixture(t)
	f.connect(t, "https://client-site.example")

	in, err := f.store.ActiveIntegration(context.Background(), "tenant-1", models.IntegrationTypeWordPress)
	require.NoError(t, err)

	creds, err := f.vault.DecryptCredentials(in.Credentials)
	require.NoError(t, err)
	assert.Equal(t, "https://client-site.example", creds.SiteURL)
	assert.Equal(t, "agency-admin", creds.Username)

	activities, err := f.store.Activities(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, activities)
	assert.Contains(t, activities[0].Message, "connection created")
}

func TestConnect_ValidationAndMissingWebsite(t *testing.T) {
	f := newWPFixture(t)

	w := f.request(http.MethodPost, "/api/websites/site-1/wordpress/connect", `{"siteUrl": "not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(http.MethodPost, "/api/websites/missing/wordpress/connect",
		`{"siteUrl": "https://x.example", "username": "u", "appPassword": "p", "sharedSecret": "s"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOperationsWithoutConnectionReturn404(t *testing.T) {
	f := newWPFixture(t)

	w := f.request(http.MethodPost, "/api/websites/site-1/wordpress/cache/clear", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "wordpress integration")
}

func TestStatus_RefreshesHealthCache(t *testing.T) {
	f := newWPFixture(t)
	srv := wpSite(t)
	f.connect(t, srv.URL)

	w := f.request(http.MethodGet, "/api/websites/site-1/wordpress/status", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Connected bool `json:"connected"`
		Companion *struct {
			Version string `json:"version"`
		} `json:"companion"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Connected)
	require.NotNil(t, resp.Companion)
	assert.Equal(t, "1.0.0", resp.Companion.Version)

	in, err := f.store.ActiveIntegration(context.Background(), "tenant-1", models.IntegrationTypeWordPress)
	require.NoError(t, err)
	creds, err := f.vault.DecryptCredentials(in.Credentials)
	require.NoError(t, err)
	assert.True(t, creds.MuPluginInstalled)
	assert.Equal(t, "healthy", creds.LastHealthStatus)
}

func TestDiagnose_AlwaysReturnsReport(t *testing.T) {
	f := newWPFixture(t)

	// A closed server: the site is down, the report still comes back 200.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	f.connect(t, srv.URL)

	w := f.request(http.MethodPost, "/api/websites/site-1/wordpress/diagnostics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report models.ConnectionDiagnostics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, models.StatusFail, report.Overall)
	require.Len(t, report.Steps, 1)
	assert.Equal(t, models.StepSiteReachable, report.Steps[0].Step)
}

func TestClearCache_LogsActivity(t *testing.T) {
	f := newWPFixture(t)
	srv := wpSite(t)
	f.connect(t, srv.URL)

	w := f.request(http.MethodPost, "/api/websites/site-1/wordpress/cache/clear", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	activities, err := f.store.Activities(context.Background(), 10)
	require.NoError(t, err)
	assert.Contains(t, activities[0].Message, "cache cleared")
}

func TestRemoteErrorsKeepUpstreamStatus(t *testing.T) {
	f := newWPFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code": "dashboard_invalid_secret", "message": "The dashboard shared secret does not match."}`))
	}))
	t.Cleanup(srv.Close)
	f.connect(t, srv.URL)

	w := f.request(http.MethodGet, "/api/websites/site-1/wordpress/logs", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_invalid_secret")
}

func TestDisconnect_WarnsAboutAppPassword(t *testing.T) {
	f := newWPFixture(t)
	f.connect(t, "https://client-site.example")

	w := f.request(http.MethodDelete, "/api/websites/site-1/wordpress/connection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "NOT revoked")

	_, err := f.store.ActiveIntegration(context.Background(), "tenant-1", models.IntegrationTypeWordPress)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
