// Package auth implements the login/logout/refresh flows against the
// catalog server, persisting tokens in the session store.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"cadence/internal/api"
)

// Gateway coordinates the remote auth endpoints with the local session.
type Gateway struct {
	client *api.Client
	tokens TokenStore
	log    *logrus.Entry
}

// TokenStore is the slice of the session store the gateway needs.
type TokenStore interface {
	Access() string
	Refresh() string
	Save(access, refresh string) error
	SaveAccess(access string) error
	Clear()
}

// New creates a gateway.
func New(client *api.Client, tokens TokenStore, log *logrus.Logger) *Gateway {
	return &Gateway{
		client: client,
		tokens: tokens,
		log:    log.WithField("component", "auth"),
	}
}

// Login authenticates and persists both tokens atomically.
// Invalid credentials surface as api.ErrInvalidCredentials; transport
// errors propagate as-is and leave the stored session untouched.
func (g *Gateway) Login(ctx context.Context, username, password string) (*api.Session, error) {
	sess, err := g.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := g.tokens.Save(sess.AccessToken, sess.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	g.log.WithField("user", sess.User.Username).Info("logged in")
	return sess, nil
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears the local tokens. The local clear is the source of
// truth for "logged out".
func (g *Gateway) Logout(ctx context.Context) {
	if refresh := g.tokens.Refresh(); refresh != "" {
		if err := g.client.Logout(ctx, refresh); err != nil {
			g.log.WithError(err).Warn("remote logout failed, clearing local session anyway")
		}
	}
	g.tokens.Clear()
}

// RefreshSession obtains a new access token with the stored refresh
// token. Any failure clears the session and returns false, forcing a
// re-login.
func (g *Gateway) RefreshSession(ctx context.Context) bool {
	refresh := g.tokens.Refresh()
	if refresh == "" {
		g.tokens.Clear()
		return false
	}

	access, err := g.client.RefreshAccess(ctx, refresh)
	if err != nil {
		g.log.WithError(err).Info("token refresh failed, session cleared")
		g.tokens.Clear()
		return false
	}

	if err := g.tokens.SaveAccess(access); err != nil {
		g.log.WithError(err).Warn("persist refreshed access token failed")
		g.tokens.Clear()
		return false
	}
	return true
}

// LoggedIn reports whether a session is stored locally.
func (g *Gateway) LoggedIn() bool {
	return g.tokens.Refresh() != ""
}

// IsAuthError reports whether err indicates rejected credentials rather
// than a transport failure.
func IsAuthError(err error) bool {
	return errors.Is(err, api.ErrInvalidCredentials) || errors.Is(err, api.ErrUnauthorized)
}
