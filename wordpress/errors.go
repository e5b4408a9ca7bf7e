package wordpress

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// NetworkErrorKind tags the root cause of a failed connection attempt. The
// diagnostics engine keys its remediation text off this tag, so "timed out"
// must never collapse into "refused" or "DNS failed".
type NetworkErrorKind string

const (
	NetworkDNS     NetworkErrorKind = "dns"
	NetworkRefused NetworkErrorKind = "refused"
	NetworkTimeout NetworkErrorKind = "timeout"
	NetworkTLS     NetworkErrorKind = "tls"
	NetworkUnknown NetworkErrorKind = "unknown"
)

// NetworkUnreachableError wraps a transport-level failure with its
// classified kind.
type NetworkUnreachableError struct {
	Kind NetworkErrorKind
	Host string
	Err  error
}

func (e *NetworkUnreachableError) Error() string {
	return fmt.Sprintf("network unreachable (%s): %s: %v", e.Kind, e.Host, e.Err)
}

func (e *NetworkUnreachableError) Unwrap() error { return e.Err }

// RemoteAPIError is a non-2xx response from either WordPress surface. Code
// is the machine-readable error code from the JSON body when one was
// present.
type RemoteAPIError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote API error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote API error %d: %s", e.Status, e.Message)
}

// NotFoundError is returned when the website → integration → credentials
// resolution chain is broken. The same type covers every link; which link
// broke is only distinguished in logs.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigurationError reports a missing remote configuration constant, e.g.
// the companion plugin's shared secret was never set.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// AuthorizationError reports a capability or shared-secret mismatch.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// classifyNetworkError inspects a transport error and returns its kind.
// Ordering matters: timeouts are checked before the generic op-error cases
// because a timed-out dial also satisfies *net.OpError.
func classifyNetworkError(err error) NetworkErrorKind {
	if err == nil {
		return NetworkUnknown
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetworkTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkDNS
	}

	var certVerifyErr *tls.CertificateVerificationError
	var recordErr tls.RecordHeaderError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certVerifyErr) || errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalidErr) {
		return NetworkTLS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return NetworkRefused
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) && errors.Is(sysErr.Err, syscall.ECONNREFUSED) {
		return NetworkRefused
	}

	return NetworkUnknown
}
