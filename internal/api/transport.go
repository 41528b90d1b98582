package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// TokenSource provides tokens to the request pipeline.
// *session.Store satisfies it.
type TokenSource interface {
	Access() string
	Refresh() string
	SaveAccess(access string) error
	Clear()
}

// authTransport attaches the bearer token to outgoing requests and
// performs exactly one refresh-and-retry on 401 responses.
//
// The refresh call itself goes through a bare client so it is never
// intercepted, and a replayed request that 401s again is returned as-is.
// Requests targeting auth, ping or health endpoints pass through
// unmodified.
type authTransport struct {
	base       http.RoundTripper
	tokens     TokenSource
	refreshURL string

	// bare performs the refresh call outside the pipeline.
	bare *http.Client

	// refreshMu serializes refreshes so concurrent 401s trigger one
	// refresh, not a storm.
	refreshMu sync.Mutex
}

func newAuthTransport(base http.RoundTripper, tokens TokenSource, refreshURL string) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:       base,
		tokens:     tokens,
		refreshURL: refreshURL,
		bare:       &http.Client{Transport: base},
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if skipAuth(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	// Token reads are in-memory; blocking here is fine.
	access := t.tokens.Access()

	authed := req.Clone(req.Context())
	if access != "" {
		authed.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := t.base.RoundTrip(authed)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	newAccess, ok := t.refreshAfter401(req.Context(), access)
	if !ok {
		// Session cleared; hand the original 401 back to the caller.
		return resp, nil
	}

	retry, err := cloneWithBody(req)
	if err != nil {
		return resp, nil
	}
	resp.Body.Close()

	retry.Header.Set("Authorization", "Bearer "+newAccess)
	return t.base.RoundTrip(retry)
}

// refreshAfter401 obtains a fresh access token after a 401.
// Returns ("", false) when the session was cleared instead.
func (t *authTransport) refreshAfter401(ctx context.Context, staleAccess string) (string, bool) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	// Another request may have refreshed while we waited on the lock.
	if current := t.tokens.Access(); current != "" && current != staleAccess {
		return current, true
	}

	refresh := t.tokens.Refresh()
	if refresh == "" {
		t.tokens.Clear()
		return "", false
	}

	access, err := t.doRefresh(ctx, refresh)
	if err != nil {
		t.tokens.Clear()
		return "", false
	}
	if err := t.tokens.SaveAccess(access); err != nil {
		// The token is still valid for this retry even if persistence failed.
		return access, true
	}
	return access, true
}

func (t *authTransport) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.bare.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var result refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}
	return result.AccessToken, nil
}

// skipAuth reports whether the path targets an endpoint that must not
// carry a bearer token.
func skipAuth(path string) bool {
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		switch seg {
		case "auth", "ping", "health":
			return true
		}
	}
	return false
}

// cloneWithBody clones req with a replayable body for the single retry.
func cloneWithBody(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
