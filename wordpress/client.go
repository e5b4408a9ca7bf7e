// Package wordpress contains the remote-management client and connection
// diagnostics for managed WordPress sites. The client talks to two REST
// surfaces on the target host: the standard content API (/wp-json/wp/v2)
// and the administrative API exposed by the companion plugin
// (/wp-json/dashboard/v1).
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"agency-dashboard/models"
)

// Surface selects which API base path a request targets.
type Surface string

const (
	// SurfaceStandard is the vendor-stable content API.
	SurfaceStandard Surface = "/wp-json/wp/v2"
	// SurfaceCustom is the administrative API served by the companion
	// plugin.
	SurfaceCustom Surface = "/wp-json/dashboard/v1"
)

// Headers of the custom surface's wire protocol.
const (
	HeaderSecret  = "X-Dashboard-Secret"
	HeaderAction  = "X-Dashboard-Action"
	ActionConfirm = "confirm"
)

const (
	requestTimeout   = 30 * time.Second
	maxErrorBodySize = 64 << 10
)

// Client is an authenticated gateway to one WordPress site. It is an
// immutable value: all headers are derived from the credentials at
// construction and never change afterwards.
type Client struct {
	baseURL      string
	authHeader   string
	sharedSecret string
	httpClient   *http.Client
	logger       zerolog.Logger
}

// New builds a client from decrypted credentials.
func New(creds models.WordPressCredentials, logger zerolog.Logger) *Client {
	return NewWithHTTPClient(creds, logger, &http.Client{Timeout: requestTimeout})
}

// NewWithHTTPClient builds a client with a caller-supplied http.Client,
// used by tests to inject transports.
func NewWithHTTPClient(creds models.WordPressCredentials, logger zerolog.Logger, hc *http.Client) *Client {
	auth := base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.AppPassword))
	return &Client{
		baseURL:      models.NormalizeSiteURL(creds.SiteURL),
		authHeader:   "Basic " + auth,
		sharedSecret: creds.SharedSecret,
		httpClient:   hc,
		logger:       logger,
	}
}

// BaseURL returns the normalized site URL the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// do executes one request against the given surface. Every call carries
// Basic-Auth, the shared-secret header and no-cache headers; state-changing
// calls additionally carry the write-confirmation header. Non-2xx responses
// come back as *RemoteAPIError; transport failures as
// *NetworkUnreachableError. The result body, when out is non-nil, is
// decoded as JSON.
func (c *Client) do(ctx context.Context, method string, surface Surface, path string, query url.Values, body any, confirm bool, out any) error {
	endpoint := c.baseURL + string(surface) + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Every call must observe live remote state.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(HeaderSecret, c.sharedSecret)
	if confirm {
		req.Header.Set(HeaderAction, ActionConfirm)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := classifyNetworkError(err)
		c.logger.Debug().Err(err).Str("kind", string(kind)).Str("url", endpoint).Msg("request transport failure")
		return &NetworkUnreachableError{Kind: kind, Host: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

// apiError turns a non-2xx response into a *RemoteAPIError, preferring the
// JSON error body's code and message over the HTTP status text.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &RemoteAPIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil && len(raw) > 0 {
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Code = body.Code
			if body.Message != "" {
				apiErr.Message = body.Message
			}
		}
	}
	return apiErr
}
