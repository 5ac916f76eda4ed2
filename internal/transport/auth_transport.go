// Package transport applies the session policy to every outbound API call:
// bearer decoration, 401 recovery through a single token refresh and retry,
// and begin/end bracketing for the busy counter.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
	"github.com/mvaldes/invctl/internal/session"
)

// DefaultAllowlist names the URL path prefixes that bypass authentication:
// the endpoints that must work without a session plus anything public.
var DefaultAllowlist = []string{
	"/api/auth/login",
	"/api/auth/refresh",
	"/api/public/",
	"/health",
}

const maxDrainBytes = 4 << 10

// TokenSource yields the current access token, empty when unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Renewer performs the single-flight token refresh.
type Renewer interface {
	Refresh(ctx context.Context) (session.Outcome, error)
}

// RenewerFunc adapts a function to the Renewer interface.
type RenewerFunc func(ctx context.Context) (session.Outcome, error)

func (f RenewerFunc) Refresh(ctx context.Context) (session.Outcome, error) {
	return f(ctx)
}

// Counter brackets every request for the busy indicator.
type Counter interface {
	Begin()
	End()
}

// AuthTransport is the request interceptor. It wraps a base RoundTripper so
// no call site re-implements auth policy.
type AuthTransport struct {
	base      http.RoundTripper
	tokens    TokenSource
	renewer   Renewer
	counter   Counter
	nav       ports.Navigator
	log       zerolog.Logger
	allowlist []string
}

var _ http.RoundTripper = (*AuthTransport)(nil)

func New(base http.RoundTripper, tokens TokenSource, renewer Renewer, counter Counter, nav ports.Navigator, logger zerolog.Logger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &AuthTransport{
		base:      base,
		tokens:    tokens,
		renewer:   renewer,
		counter:   counter,
		nav:       nav,
		log:       logger.With().Str("component", "transport").Logger(),
		allowlist: DefaultAllowlist,
	}
}

// WithAllowlist replaces the default bypass prefixes.
func (t *AuthTransport) WithAllowlist(prefixes []string) *AuthTransport {
	t.allowlist = prefixes
	return t
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.counter.Begin()
	defer t.counter.End()

	if t.allowlisted(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	token := t.tokens.AccessToken()
	if token == "" {
		// Fail fast: without a token the request would only bounce off the
		// backend, so it never reaches the network.
		t.nav.ToSignIn(req.URL.RequestURI())
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, domain.ErrUnauthenticated)
	}

	resp, err := t.base.RoundTrip(t.decorate(req, token))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return t.retryAfterRefresh(req, resp)
	}

	return t.classify(resp), nil
}

// retryAfterRefresh drives the 401 path: renew the session once, replay the
// original request with the new token, and never loop on a second 401.
func (t *AuthTransport) retryAfterRefresh(req *http.Request, unauthorized *http.Response) (*http.Response, error) {
	drainAndClose(unauthorized.Body)

	outcome, err := t.renewer.Refresh(req.Context())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	retry, err := t.replay(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	resp, err := t.base.RoundTrip(t.decorate(retry, outcome.AccessToken))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// The renewed token was rejected; never retry a second time.
		t.log.Warn().Str("path", req.URL.Path).Msg("request unauthorized again after refresh")
	}

	return t.classify(resp), nil
}

// classify handles the response categories the interceptor owns. A 403 is an
// authorization problem, not a session problem: no retry, no logout, just a
// redirect to safe ground while the error propagates to the caller.
func (t *AuthTransport) classify(resp *http.Response) *http.Response {
	if resp.StatusCode == http.StatusForbidden {
		reason := resp.Header.Get("X-Error-Code")
		if reason == "" {
			reason = "forbidden"
		}
		t.nav.ToSafeView(reason)
	}
	return resp
}

func (t *AuthTransport) decorate(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	if clone.Header.Get("Content-Type") == "" {
		clone.Header.Set("Content-Type", "application/json")
	}
	if clone.Header.Get("X-Request-ID") == "" {
		clone.Header.Set("X-Request-ID", uuid.NewString())
	}
	return clone
}

// replay rebuilds the original request for the post-refresh retry. Requests
// without a replayable body cannot be retried.
func (t *AuthTransport) replay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable: %w", domain.ErrUnauthenticated)
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	clone.Body = body

	return clone, nil
}

func (t *AuthTransport) allowlisted(path string) bool {
	for _, prefix := range t.allowlist {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
	_ = body.Close()
}
