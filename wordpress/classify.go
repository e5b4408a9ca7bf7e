package wordpress

import (
	"fmt"
	"strings"

	"agency-dashboard/models"
)

// The remote error bodies carry prose as much as machine codes, so all of
// the brittle substring matching lives in the tables below and nowhere
// else. Changing a code here must track the companion plugin's responses.

// parseServerSoftware maps a Server response header onto the families the
// remediation text distinguishes.
func parseServerSoftware(header string) serverSoftware {
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "apache"), strings.Contains(h, "litespeed"):
		return serverApache
	case strings.Contains(h, "nginx"):
		return serverNginx
	default:
		return serverUnknown
	}
}

// networkFailureStep converts a classified transport failure into a failed
// diagnostic step for the given pipeline stage.
func networkFailureStep(stepName, host string, kind NetworkErrorKind) models.DiagnosticStep {
	step := models.DiagnosticStep{Step: stepName, Status: models.StatusFail}
	switch kind {
	case NetworkDNS:
		step.Message = "DNS resolution failed"
		step.Detail = detailDNSFailure(host)
	case NetworkRefused:
		step.Message = "Connection refused"
		step.Detail = detailConnectionRefused(host)
	case NetworkTimeout:
		step.Message = "Connection timed out"
		step.Detail = detailConnectionTimeout(host)
	case NetworkTLS:
		step.Message = "TLS certificate problem"
		step.Detail = detailTLSFailure(host)
	default:
		step.Message = "Site is unreachable"
		step.Detail = detailGenericNetworkFailure(host)
	}
	return step
}

// authRule maps (status, code substring) from the authentication probe's
// error response onto a classified outcome. First match wins; an empty
// codeSubstr matches any code, including none at all.
type authRule struct {
	status     int
	codeSubstr string
	message    string
	detail     func(server serverSoftware) string
}

var authRules = []authRule{
	{401, "incorrect_password", "Application password rejected",
		func(serverSoftware) string { return detailBadAppPassword }},
	{401, "invalid_username", "Unknown username",
		func(serverSoftware) string { return detailUnknownUsername }},
	// A bare "not logged in" - or a 401 with no recognizable code at all -
	// means the credentials never reached WordPress: the Authorization
	// header was stripped upstream.
	{401, "", "Authorization header is being stripped before reaching WordPress",
		detailAuthHeaderStripped},
	{403, "", "REST API blocked for authenticated requests",
		func(serverSoftware) string { return detailAuthForbidden }},
	{404, "", "REST API user routes are disabled",
		func(serverSoftware) string { return detailAuthEndpointMissing }},
}

// classifyAuthError maps an authentication-probe API error onto its failed
// step, branching the header-stripping remediation on the server software
// observed in the previous step.
func classifyAuthError(apiErr *RemoteAPIError, server serverSoftware) models.DiagnosticStep {
	for _, rule := range authRules {
		if apiErr.Status != rule.status {
			continue
		}
		if rule.codeSubstr != "" && !strings.Contains(apiErr.Code, rule.codeSubstr) {
			continue
		}
		return models.DiagnosticStep{
			Step:    models.StepAuthentication,
			Status:  models.StatusFail,
			Message: rule.message,
			Detail:  rule.detail(server),
		}
	}
	return models.DiagnosticStep{
		Step:    models.StepAuthentication,
		Status:  models.StatusFail,
		Message: fmt.Sprintf("Authentication failed with HTTP %d", apiErr.Status),
		Detail:  fmt.Sprintf("The site answered: %s. Re-run the check; if this persists, contact your hosting provider.", apiErr.Message),
	}
}

// classifyCompanionError maps a companion health-check API error onto a
// step. 404 is the one soft outcome: the plugin simply is not installed
// yet, which must never block the connection from scoring as usable.
func classifyCompanionError(apiErr *RemoteAPIError, sshOnFile bool) models.DiagnosticStep {
	lowered := strings.ToLower(apiErr.Code + " " + apiErr.Message)

	switch {
	case apiErr.Status == 404:
		return models.DiagnosticStep{
			Step:    models.StepMuPlugin,
			Status:  models.StatusWarn,
			Message: "Companion plugin is not installed",
			Detail:  detailMuPluginMissing(sshOnFile),
		}
	case apiErr.Status == 403 && strings.Contains(lowered, "secret"):
		return models.DiagnosticStep{
			Step:    models.StepMuPlugin,
			Status:  models.StatusFail,
			Message: "Shared secret mismatch",
			Detail:  detailSharedSecretMismatch,
		}
	case apiErr.Status == 500 && strings.Contains(lowered, "not_configured"):
		return models.DiagnosticStep{
			Step:    models.StepMuPlugin,
			Status:  models.StatusFail,
			Message: "Companion plugin is installed but not configured",
			Detail:  detailCompanionNotConfigured,
		}
	case apiErr.Status == 401:
		// Basic-Auth worked on the standard surface moments ago, so a 401
		// here means the two route families are handled differently
		// upstream.
		return models.DiagnosticStep{
			Step:    models.StepMuPlugin,
			Status:  models.StatusFail,
			Message: "Inconsistent authentication across API routes",
			Detail:  detailCompanionAuthAnomaly,
		}
	default:
		return models.DiagnosticStep{
			Step:    models.StepMuPlugin,
			Status:  models.StatusFail,
			Message: fmt.Sprintf("Companion plugin check failed with HTTP %d", apiErr.Status),
			Detail:  fmt.Sprintf("The site answered: %s. Re-run the check; if this persists, check the site's error log.", apiErr.Message),
		}
	}
}
