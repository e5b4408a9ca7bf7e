package models

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// WordPressCredentials is the connection record for one managed WordPress
// site. Only the encrypted form is ever persisted; the plaintext value lives
// in memory for the duration of a request.
//
// AppPassword is a WordPress application password, not the account login
// password. SharedSecret must match the constant configured into the
// companion plugin on the remote site. The SSH fields are used once, for
// deploying the companion plugin, never for ongoing API calls.
//
// Disconnecting a site deletes this record from the dashboard but does NOT
// revoke the application password on the remote WordPress installation;
// that remains a manual step in the site's admin area.
type WordPressCredentials struct {
	SiteURL      string `json:"siteUrl"`
	Username     string `json:"username"`
	AppPassword  string `json:"appPassword"`
	SharedSecret string `json:"sharedSecret"`

	SSHHost string `json:"sshHost,omitempty"`
	SSHUser string `json:"sshUser,omitempty"`
	SSHKey  string `json:"sshKey,omitempty"`
	SSHPort int    `json:"sshPort,omitempty"`

	// Advisory cache from the most recent successful probe. Last writer
	// wins; never used for correctness decisions.
	MuPluginInstalled bool       `json:"muPluginInstalled"`
	MuPluginVersion   string     `json:"muPluginVersion,omitempty"`
	LastHealthCheck   *time.Time `json:"lastHealthCheck,omitempty"`
	LastHealthStatus  string     `json:"lastHealthStatus,omitempty"`
}

// NormalizeSiteURL strips trailing slashes so paths can be joined verbatim.
func NormalizeSiteURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// StepStatus is the outcome tier of a single diagnostic step.
type StepStatus string

const (
	StatusPass StepStatus = "pass"
	StatusWarn StepStatus = "warn"
	StatusFail StepStatus = "fail"
)

// Diagnostic step identifiers, in pipeline order.
const (
	StepSiteReachable    = "site_reachable"
	StepRESTAPIAvailable = "rest_api_available"
	StepAuthentication   = "authentication"
	StepAdminRole        = "admin_role"
	StepMuPlugin         = "mu_plugin"
)

// DiagnosticStep is one probe outcome. Detail is remediation prose for the
// site owner and is only set on warn/fail.
type DiagnosticStep struct {
	Step    string     `json:"step"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
}

// ConnectionDiagnostics is the report produced by one diagnostics run.
// Steps appear in pipeline order; steps after an early termination are
// absent, not marked skipped.
type ConnectionDiagnostics struct {
	Overall    StepStatus       `json:"overall"`
	Steps      []DiagnosticStep `json:"steps"`
	DurationMs int64            `json:"durationMs"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Aggregate computes Overall from the steps actually present: fail beats
// warn beats pass.
func (d *ConnectionDiagnostics) Aggregate() {
	d.Overall = StatusPass
	for _, s := range d.Steps {
		if s.Status == StatusFail {
			d.Overall = StatusFail
			return
		}
		if s.Status == StatusWarn {
			d.Overall = StatusWarn
		}
	}
}

// User represents a dashboard user for authentication.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Claims represents the JWT claims.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}
