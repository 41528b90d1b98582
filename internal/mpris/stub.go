//go:build !linux

package mpris

import "cadence/internal/host"

// CoverSource resolves an album id to its artwork URL.
type CoverSource interface {
	CoverURL(albumID string) string
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *host.Host, _ CoverSource) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
