// Package mslive provides a checker.MSChecker implementation backed by the
// public signup-availability endpoint of the Microsoft account service.
package mslive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
)

const checkPath = "/API/CheckAvailableSigninNames"

// Options configure the Microsoft endpoint client.
type Options struct {
	// BaseURL is the scheme and host of the signup service,
	// e.g. "https://signup.live.com".
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// Timeout bounds each request including reading the response body.
	// Zero means no client-side bound.
	Timeout time.Duration
}

// Client talks to the Microsoft signup service and fulfills the
// checker.MSChecker interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the signup endpoint
	opts       Options
}

// New constructs a Client that uses the provided http.Client to query the
// signup-availability endpoint. Give the http.Client a cookie jar so Prime can
// carry session cookies into subsequent checks.
func New(httpClient *http.Client, opts Options) *Client {
	return &Client{httpClient: httpClient, opts: opts}
}

// Prime fetches the signup landing page so the client's cookie jar picks up
// the endpoint's session cookies. Best effort; checks work without it.
func (c *Client) Prime(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

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

// Check queries whether addr is available as a Microsoft sign-in name. The
// request mirrors the signup page's availability probe.
func (c *Client) Check(ctx context.Context, addr domain.EmailAddress) (domain.MSStatus, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	type checkReq struct {
		IncludeSuggestions bool   `json:"includeSuggestions"`
		SignInName         string `json:"signInName"`
		UIFlavor           int    `json:"uiflvr"`
		SCID               int    `json:"scid"`
		UAID               string `json:"uaid"`
		HPGID              int    `json:"hpgid"`
	}
	bodyBytes, err := json.Marshal(checkReq{
		IncludeSuggestions: true,
		SignInName:         addr.String(),
		UIFlavor:           1001,
		SCID:               100118,
		UAID:               "auto",
		HPGID:              200225,
	})
	if err != nil {
		return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrPermanent, err, "could not marshal request")
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.opts.BaseURL+checkPath,
		strings.NewReader(string(bodyBytes)))
	if err != nil {
		return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrPermanent, err, "could not create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Referer", c.opts.BaseURL+"/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrTimeout, err, "request timed out")
		}

		return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrTransient, err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrTransient, err, "could not read response body")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if after, ok := checker.ParseRetryAfter(resp.Header); ok {
			return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrRateLimited,
				&checker.RetryAfterError{After: after},
				"rate limited: %s", strings.TrimSpace(string(b)))
		}

		return domain.MSStatusIndeterminate,
			serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode >= 500:
		return domain.MSStatusIndeterminate,
			serrors.With(serrors.ErrTransient, "endpoint error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	case resp.StatusCode != http.StatusOK:
		return domain.MSStatusIndeterminate,
			serrors.With(serrors.ErrPermanent, "check failed %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// successful
	var body struct {
		IsAvailable *bool  `json:"isAvailable"`
		Suggestions []any  `json:"suggestions"`
		Type        string `json:"type"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return domain.MSStatusIndeterminate, serrors.Wrap(serrors.ErrPermanent, err, "could not decode response")
	}

	if body.IsAvailable != nil {
		if *body.IsAvailable {
			return domain.MSStatusAvailable, nil
		}

		return domain.MSStatusTaken, nil
	}
	// an alternatives list only comes back for names that are in use
	if len(body.Suggestions) > 0 {
		return domain.MSStatusTaken, nil
	}

	return domain.MSStatusIndeterminate,
		serrors.With(serrors.ErrPermanent, "unrecognized response: %s", strings.TrimSpace(string(b)))
}

// bound applies the configured per-request timeout, if any.
func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout > 0 {
		return context.WithTimeout(ctx, c.opts.Timeout)
	}

	return context.WithCancel(ctx)
}

// Ensure Client conforms to the checker.MSChecker interface at compile time.
var _ checker.MSChecker = (*Client)(nil)
