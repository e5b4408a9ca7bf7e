package wordpress

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-dashboard/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// fakeSite scripts the four endpoints the diagnostics pipeline touches.
type fakeSite struct {
	serverHeader    string
	restStatus      int
	restContentType string
	restBody        string
	userStatus      int
	userBody        string
	companionStatus int
	companionBody   string
}

// healthySite answers every probe the way a fully set-up site would.
func healthySite() fakeSite {
	return fakeSite{
		serverHeader:    "nginx/1.25.3",
		restStatus:      http.StatusOK,
		restContentType: "application/json",
		restBody:        `{"name": "Client Site", "namespaces": ["wp/v2"]}`,
		userStatus:      http.StatusOK,
		userBody:        `{"id": 1, "username": "agency-admin", "roles": ["administrator"], "capabilities": {"manage_options": true}}`,
		companionStatus: http.StatusOK,
		companionBody:   `{"version": "1.0.0", "status": "ok"}`,
	}
}

func (s fakeSite) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverHeader)
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/wp-json/":
			w.Header().Set("Content-Type", s.restContentType)
			w.WriteHeader(s.restStatus)
			_, _ = w.Write([]byte(s.restBody))
		case "/wp-json/wp/v2/users/me":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.userStatus)
			_, _ = w.Write([]byte(s.userBody))
		case "/wp-json/dashboard/v1/health":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.companionStatus)
			_, _ = w.Write([]byte(s.companionBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func stepNames(report models.ConnectionDiagnostics) []string {
	names := make([]string, 0, len(report.Steps))
	for _, s := range report.Steps {
		names = append(names, s.Step)
	}
	return names
}

func TestRun_AllStepsPass(t *testing.T) {
	srv := healthySite().serve(t)
	runner := NewRunner(zerolog.Nop())

	report := runner.Run(context.Background(), testCreds(srv.URL))

	assert.Equal(t, []string{
		models.StepSiteReachable,
		models.StepRESTAPIAvailable,
		models.StepAuthentication,
		models.StepAdminRole,
		models.StepMuPlugin,
	}, stepNames(report))
	for _, s := range report.Steps {
		assert.Equal(t, models.StatusPass, s.Status, s.Step)
	}
	assert.Equal(t, models.StatusPass, report.Overall)
	assert.False(t, report.Timestamp.IsZero())
}

func TestRun_DNSFailureStopsAtFirstStep(t *testing.T) {
	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, &net.DNSError{Err: "no such host", Name: "missing.example", IsNotFound: true}
	})
	runner := NewRunnerWithTransport(zerolog.Nop(), transport)

	report := runner.Run(context.Background(), testCreds("https://missing.example"))

	require.Len(t, report.Steps, 1)
	step := report.Steps[0]
	assert.Equal(t, models.StepSiteReachable, step.Step)
	assert.Equal(t, models.StatusFail, step.Status)
	assert.Contains(t, step.Detail, "DNS lookup failed")
	assert.Equal(t, models.StatusFail, report.Overall)
}

func TestRun_RESTAPIMissingStopsAtSecondStep(t *testing.T) {
	site := healthySite()
	site.restStatus = http.StatusNotFound
	site.restContentType = "text/html"
	site.restBody = "<html><body>404</body></html>"
	srv := site.serve(t)

	report := NewRunner(zerolog.Nop()).Run(context.Background(), testCreds(srv.URL))

	require.Len(t, report.Steps, 2)
	assert.Equal(t, models.StatusPass, report.Steps[0].Status)
	assert.Equal(t, models.StepRESTAPIAvailable, report.Steps[1].Step)
	assert.Equal(t, models.StatusFail, report.Steps[1].Status)
	assert.Contains(t, report.Steps[1].Detail, "Permalinks")
	assert.Equal(t, models.StatusFail, report.Overall)
}

func TestRun_RESTAPIAnsweringHTMLFails(t *testing.T) {
	site := healthySite()
	site.restStatus = http.StatusOK
	site.restContentType = "text/html"
	site.restBody = "<!doctype html><html><body>Briefly unavailable for scheduled maintenance.</body></html>"
	srv := site.serve(t)

	report := NewRunner(zerolog.Nop()).Run(context.Background(), testCreds(srv.URL))

	require.Len(t, report.Steps, 2)
	assert.Equal(t, models.StatusFail, report.Steps[1].Status)
	assert.Contains(t, report.Steps[1].Message, "web page")
}

func TestRun_StrippedAuthHeaderBranchesOnServerSoftware(t *testing.T) {
	site := healthySite()
	site.serverHeader = "Apache/2.4.58 (Ubuntu)"
	site.userStatus = http.StatusUnauthorized
	site.userBody = `{"code": "rest_not_logged_in", "message": "You are not currently logged in."}`
	srv := site.serve(t)

	report := NewRunner(zerolog.Nop()).Run(context.Background(), testCreds(srv.URL))

	require.Len(t, report.Steps, 3)
	authStep := report.Steps[2]
	assert.Equal(t, models.StepAuthentication, authStep.Step)
	assert.Equal(t, models.StatusFail, authStep.Status)
	// The Apache remediation must include the literal .htaccess lines.
	assert.Contains(t, authStep.Detail, apacheHtaccessSnippet)
	assert.Equal(t, models.StatusFail, report.Overall)
}

func TestRun_NonAdminUserFailsRoleStep(t *testing.T) {
	site := healthySite()
	site.userBody = `{"id": 7, "username": "editor-bob", "roles": ["editor"], "capabilities": {"edit_posts": true}}`
	srv := site.serve(t)

	report := NewRunner(zerolog.Nop()).Run(context.Background(), testCreds(srv.URL))

	require.Len(t, report.Steps, 4)
	assert.Equal(t, models.StatusPass, report.Steps[2].Status)
	roleStep := report.Steps[3]
	assert.Equal(t, models.StepAdminRole, roleStep.Step)
	assert.Equal(t, models.StatusFail, roleStep.Status)
	assert.Contains(t, roleStep.Detail, "editor-bob")
	assert.Equal(t, models.StatusFail, report.Overall)
}

func TestRun_MissingCompanionIsOnlyAWarning(t *testing.T) {
	site := healthySite()
	site.companionStatus = http.StatusNotFound
	site.companionBody = `{"code": "rest_no_route", "message": "No route was found matching the URL and request method."}`
	srv := site.serve(t)

	report := NewRunner(zerolog.Nop()).Run(context.Background(), testCreds(srv.URL))

	require.Len(t, report.Steps, 5)
	muStep := report.Steps[4]
	assert.Equal(t, models.StepMuPlugin, muStep.Step)
	assert.Equal(t, models.StatusWarn, muStep.Status)
	assert.Equal(t, models.StatusWarn, report.Overall)
}

func TestRun_SharedSecretMismatchFails(t *testing.T) {
	site := healthySite()
	site.companionStatus = http.StatusForbidden
	site.companionBody = `{"code": "dashboard_invalid_secret", "message": "Invalid shared secret."}`
	srv := site.serve(t)

	report := NewRunner(zerolog.Nop()).Run(context.Background(), testCreds(srv.URL))

	require.Len(t, report.Steps, 5)
	assert.Equal(t, models.StatusFail, report.Steps[4].Status)
	assert.Equal(t, models.StatusFail, report.Overall)
}

func TestRun_SameInputsClassifyIdentically(t *testing.T) {
	site := healthySite()
	site.serverHeader = "nginx/1.25.3"
	site.userStatus = http.StatusUnauthorized
	site.userBody = `{"code": "rest_not_logged_in", "message": "You are not currently logged in."}`
	srv := site.serve(t)
	runner := NewRunner(zerolog.Nop())

	first := runner.Run(context.Background(), testCreds(srv.URL))
	second := runner.Run(context.Background(), testCreds(srv.URL))

	assert.Equal(t, first.Overall, second.Overall)
	assert.Equal(t, first.Steps, second.Steps)
	assert.Contains(t, first.Steps[2].Detail, nginxConfSnippet)
}
