// Package api provides the client for the remote catalog server,
// including the bearer-token request pipeline.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides access to the catalog server API.
//
// All data endpoints go through the auth pipeline; requests without a
// stored token are sent unauthenticated and rejected by the server.
type Client struct {
	baseURL    string // always ends in "/"
	clientID   string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. The tokens source
// feeds the bearer pipeline; clientID identifies this installation.
func New(baseURL string, tokens TokenSource, clientID string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	transport := newAuthTransport(nil, tokens, baseURL+"api/auth/refresh")
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// HTTPClient returns the pipeline-backed client, for callers that fetch
// raw resources (audio streams, cover art) with authentication.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// StreamURL returns the audio stream URL for a song.
func (c *Client) StreamURL(songID string) string {
	return c.baseURL + "api/songs/" + url.PathEscape(songID) + "/stream"
}

// CoverURL returns the cover art URL for an album.
func (c *Client) CoverURL(albumID string) string {
	return c.baseURL + "albums/" + url.PathEscape(albumID) + "/cover"
}

// Ping checks server reachability without authentication.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "ping", nil, nil, nil)
}

// do builds, executes and decodes a JSON request against an API path.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + "api/" + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set("X-Client-Id", c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// pageQuery builds the common pagination parameters.
func pageQuery(limit, offset int, sort string) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	return q
}
