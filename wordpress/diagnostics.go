package wordpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agency-dashboard/models"
)

// Probe timeouts per call class. Unauthenticated reachability probes get
// 10s, authenticated probes 15s.
const (
	reachabilityTimeout = 10 * time.Second
	authProbeTimeout    = 15 * time.Second
)

// Runner executes the connection diagnostics pipeline: five ordered steps,
// each gated on the previous one. It classifies root causes; it never
// returns an error itself - every failure becomes a step in the report.
//
// The steps run strictly sequentially because later remediation text
// depends on earlier observations (the server software seen in step 2
// shapes step 3's advice).
type Runner struct {
	transport http.RoundTripper
	logger    zerolog.Logger
}

// NewRunner builds a diagnostics runner using the default transport.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{transport: http.DefaultTransport, logger: logger}
}

// NewRunnerWithTransport builds a runner with an injected transport, used
// by tests to simulate network conditions.
func NewRunnerWithTransport(logger zerolog.Logger, rt http.RoundTripper) *Runner {
	return &Runner{transport: rt, logger: logger}
}

// Run probes the site described by creds and returns a complete report.
// Steps after an early termination are absent from the report, not marked
// as skipped.
func (r *Runner) Run(ctx context.Context, creds models.WordPressCredentials) (report models.ConnectionDiagnostics) {
	start := time.Now()
	baseURL := models.NormalizeSiteURL(creds.SiteURL)

	defer func() {
		report.DurationMs = time.Since(start).Milliseconds()
		report.Timestamp = time.Now().UTC()
		report.Aggregate()
	}()

	// Step 1: is anything answering at all? Status codes are irrelevant
	// here, only reachability.
	step, ok := r.probeSiteReachable(ctx, baseURL)
	report.Steps = append(report.Steps, step)
	if !ok {
		return report
	}

	// Step 2: REST API discovery. Remembers the server software for the
	// authentication remediation text.
	step, server, ok := r.probeRESTAPI(ctx, baseURL)
	report.Steps = append(report.Steps, step)
	if !ok {
		return report
	}

	// Step 3: authentication, folding in the admin-role check.
	steps, ok := r.probeAuthentication(ctx, creds, server)
	report.Steps = append(report.Steps, steps...)
	if !ok {
		return report
	}

	// Step 4: companion plugin. Terminal either way.
	report.Steps = append(report.Steps, r.probeCompanion(ctx, creds))
	return report
}

func (r *Runner) httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Transport: r.transport, Timeout: timeout}
}

func (r *Runner) probeSiteReachable(ctx context.Context, baseURL string) (models.DiagnosticStep, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return models.DiagnosticStep{
			Step:    models.StepSiteReachable,
			Status:  models.StatusFail,
			Message: "Invalid site URL",
			Detail:  fmt.Sprintf("The site URL could not be used to build a request: %v. Correct the URL in the connection settings.", err),
		}, false
	}

	resp, err := r.httpClient(reachabilityTimeout).Do(req)
	if err != nil {
		kind := classifyNetworkError(err)
		r.logger.Debug().Err(err).Str("kind", string(kind)).Msg("site reachability probe failed")
		return networkFailureStep(models.StepSiteReachable, baseURL, kind), false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	return models.DiagnosticStep{
		Step:    models.StepSiteReachable,
		Status:  models.StatusPass,
		Message: "Site is reachable",
	}, true
}

func (r *Runner) probeRESTAPI(ctx context.Context, baseURL string) (models.DiagnosticStep, serverSoftware, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/wp-json/", nil)
	if err != nil {
		return networkFailureStep(models.StepRESTAPIAvailable, baseURL, NetworkUnknown), serverUnknown, false
	}

	resp, err := r.httpClient(reachabilityTimeout).Do(req)
	if err != nil {
		kind := classifyNetworkError(err)
		return networkFailureStep(models.StepRESTAPIAvailable, baseURL, kind), serverUnknown, false
	}
	defer resp.Body.Close()

	server := parseServerSoftware(resp.Header.Get("Server"))
	contentType := resp.Header.Get("Content-Type")
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
	isJSON := strings.Contains(strings.ToLower(contentType), "json")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.DiagnosticStep{
			Step:    models.StepRESTAPIAvailable,
			Status:  models.StatusFail,
			Message: "REST API not found",
			Detail:  detailRESTNotFound,
		}, server, false
	case resp.StatusCode == http.StatusForbidden:
		return models.DiagnosticStep{
			Step:    models.StepRESTAPIAvailable,
			Status:  models.StatusFail,
			Message: "REST API access blocked",
			Detail:  detailRESTForbidden,
		}, server, false
	case !isJSON && looksLikeHTML(snippet):
		return models.DiagnosticStep{
			Step:    models.StepRESTAPIAvailable,
			Status:  models.StatusFail,
			Message: "REST API answered with a web page instead of API data",
			Detail:  detailRESTNotJSON,
		}, server, false
	case resp.StatusCode >= 200 && resp.StatusCode <= 299 && isJSON:
		return models.DiagnosticStep{
			Step:    models.StepRESTAPIAvailable,
			Status:  models.StatusPass,
			Message: "REST API is available",
		}, server, true
	default:
		return models.DiagnosticStep{
			Step:    models.StepRESTAPIAvailable,
			Status:  models.StatusWarn,
			Message: fmt.Sprintf("REST API answered with HTTP %d", resp.StatusCode),
			Detail:  "The API discovery endpoint answered with an unexpected status but appears to be present. Later steps will tell whether this matters.",
		}, server, true
	}
}

func (r *Runner) probeAuthentication(ctx context.Context, creds models.WordPressCredentials, server serverSoftware) ([]models.DiagnosticStep, bool) {
	client := NewWithHTTPClient(creds, r.logger, r.httpClient(authProbeTimeout))

	user, err := client.TestConnection(ctx)
	if err != nil {
		var netErr *NetworkUnreachableError
		if errors.As(err, &netErr) {
			return []models.DiagnosticStep{
				networkFailureStep(models.StepAuthentication, client.BaseURL(), netErr.Kind),
			}, false
		}
		var apiErr *RemoteAPIError
		if errors.As(err, &apiErr) {
			return []models.DiagnosticStep{classifyAuthError(apiErr, server)}, false
		}
		return []models.DiagnosticStep{{
			Step:    models.StepAuthentication,
			Status:  models.StatusFail,
			Message: "Authentication check failed",
			Detail:  fmt.Sprintf("The authentication probe failed unexpectedly: %v. Re-run the check.", err),
		}}, false
	}

	authStep := models.DiagnosticStep{
		Step:    models.StepAuthentication,
		Status:  models.StatusPass,
		Message: fmt.Sprintf("Authenticated as %s (%s)", user.Username, strings.Join(user.Roles, ", ")),
	}

	if !user.IsAdministrator() {
		return []models.DiagnosticStep{authStep, {
			Step:    models.StepAdminRole,
			Status:  models.StatusFail,
			Message: "User lacks administrator privileges",
			Detail:  detailAdminRoleMissing(user.Username),
		}}, false
	}

	return []models.DiagnosticStep{authStep, {
		Step:    models.StepAdminRole,
		Status:  models.StatusPass,
		Message: "User has administrator privileges",
	}}, true
}

func (r *Runner) probeCompanion(ctx context.Context, creds models.WordPressCredentials) models.DiagnosticStep {
	client := NewWithHTTPClient(creds, r.logger, r.httpClient(authProbeTimeout))
	sshOnFile := creds.SSHHost != "" && creds.SSHUser != ""

	info, err := client.CompanionStatus(ctx)
	if err != nil {
		var netErr *NetworkUnreachableError
		if errors.As(err, &netErr) {
			return networkFailureStep(models.StepMuPlugin, client.BaseURL(), netErr.Kind)
		}
		var apiErr *RemoteAPIError
		if errors.As(err, &apiErr) {
			return classifyCompanionError(apiErr, sshOnFile)
		}
		return models.DiagnosticStep{
			Step:    models.StepMuPlugin,
			Status:  models.StatusFail,
			Message: "Companion plugin check failed",
			Detail:  fmt.Sprintf("The companion plugin probe failed unexpectedly: %v. Re-run the check.", err),
		}
	}

	return models.DiagnosticStep{
		Step:    models.StepMuPlugin,
		Status:  models.StatusPass,
		Message: fmt.Sprintf("Companion plugin %s is installed", info.Version),
	}
}

// looksLikeHTML reports whether a response body smells like a web page
// (maintenance screen, security challenge, redirect target) rather than
// API output.
func looksLikeHTML(body []byte) bool {
	trimmed := strings.ToLower(strings.TrimSpace(string(body)))
	return strings.HasPrefix(trimmed, "<!doctype html") ||
		strings.HasPrefix(trimmed, "<html") ||
		strings.Contains(trimmed, "<head") ||
		strings.Contains(trimmed, "<body")
}
