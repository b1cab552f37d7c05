// Package ea provides a checker.EAChecker implementation backed by the public
// availability endpoint of the EA sign-in service.
package ea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
)

const (
	checkPath  = "/p/ajax/user/checkEmailExisted"
	signupPath = "/p/juno/create"

	// Messages the endpoint answers with on a decisive verdict.
	msgExisted    = "register_email_existed"
	msgNotExisted = "register_email_not_existed"
)

// Options configure the EA endpoint client.
type Options struct {
	// BaseURL is the scheme and host of the EA sign-in service,
	// e.g. "https://signin.ea.com".
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// Timeout bounds each request including reading the response body.
	// Zero means no client-side bound.
	Timeout time.Duration
}

// Client talks to the EA sign-in service and fulfills the checker.EAChecker
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the EA endpoint
	opts       Options
}

// New constructs a Client that uses the provided http.Client to query the EA
// registration-status endpoint. Give the http.Client a cookie jar so Prime can
// carry session cookies into subsequent checks.
func New(httpClient *http.Client, opts Options) *Client {
	return &Client{httpClient: httpClient, opts: opts}
}

// Prime fetches the signup page the browser flow starts from so the client's
// cookie jar picks up the endpoint's session cookies. Best effort; checks work
// without it.
func (c *Client) Prime(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+signupPath, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not fetch signup page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Check queries the registration status of addr. The request mirrors what the
// signup page itself sends: a GET with requestorId, the address and a
// millisecond cache buster, under browser-profile headers.
func (c *Client) Check(ctx context.Context, addr domain.EmailAddress) (domain.EAStatus, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	q := url.Values{}
	q.Set("requestorId", "portal")
	q.Set("email", addr.String())
	q.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet,
		c.opts.BaseURL+checkPath+"?"+q.Encode(),
		nil)
	if err != nil {
		return domain.EAStatusIndeterminate, serrors.Wrap(serrors.ErrPermanent, err, "could not create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.opts.BaseURL+signupPath)
	req.Header.Set("DNT", "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.EAStatusIndeterminate, serrors.Wrap(serrors.ErrTimeout, err, "request timed out")
		}

		return domain.EAStatusIndeterminate, serrors.Wrap(serrors.ErrTransient, err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.EAStatusIndeterminate, serrors.Wrap(serrors.ErrTransient, err, "could not read response body")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if after, ok := checker.ParseRetryAfter(resp.Header); ok {
			return domain.EAStatusIndeterminate, serrors.Wrap(serrors.ErrRateLimited,
				&checker.RetryAfterError{After: after},
				"rate limited: %s", strings.TrimSpace(string(b)))
		}

		return domain.EAStatusIndeterminate,
			serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode >= 500:
		return domain.EAStatusIndeterminate,
			serrors.With(serrors.ErrTransient, "endpoint error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	case resp.StatusCode != http.StatusOK:
		return domain.EAStatusIndeterminate,
			serrors.With(serrors.ErrPermanent, "check failed %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// successful
	var body struct {
		Status  *bool  `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return domain.EAStatusIndeterminate, serrors.Wrap(serrors.ErrPermanent, err, "could not decode response")
	}

	msg := strings.ToLower(body.Message)
	switch msg {
	case msgExisted:
		return domain.EAStatusLinked, nil
	case msgNotExisted:
		return domain.EAStatusNotLinked, nil
	}

	// The endpoint occasionally rephrases the message; the status flag still
	// disambiguates known variants.
	switch {
	case body.Status != nil && !*body.Status &&
		strings.Contains(msg, "existed") && !strings.Contains(msg, "not_existed"):
		return domain.EAStatusLinked, nil
	case body.Status != nil && *body.Status && strings.Contains(msg, "not_existed"):
		return domain.EAStatusNotLinked, nil
	}

	return domain.EAStatusIndeterminate,
		serrors.With(serrors.ErrPermanent, "unrecognized response: %s", strings.TrimSpace(string(b)))
}

// bound applies the configured per-request timeout, if any.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout > 0 {
		return context.WithTimeout(ctx, c.opts.Timeout)
	}

	return context.WithCancel(ctx)
}

// Ensure Client conforms to the checker.EAChecker interface at compile time.
var _ checker.EAChecker = (*Client)(nil)
