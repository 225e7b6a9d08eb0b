package auth

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/kbukum/authkit/storage"
)

type fakeProvider struct {
	id        string
	resp      *Response
	err       error
	valid     bool
	delay     time.Duration
	calls     atomic.Int32
	validated atomic.Int32
	refreshed string
}

func (p *fakeProvider) ID() string         { return p.id }
func (p *fakeProvider) Name() string       { return "Fake " + p.id }
func (p *fakeProvider) Type() ProviderType { return ProviderOAuth }

func (p *fakeProvider) Authorize(context.Context, AuthorizeOptions) (*Response, error) {
	p.calls.Add(1)
	return p.resp, p.err
}

func (p *fakeProvider) ValidateToken(ctx context.Context, _ string) bool {
	p.validated.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return false
		}
	}
	return p.valid
}

// refreshingProvider adds the Refresher capability.
type refreshingProvider struct {
	*fakeProvider
}

func (p refreshingProvider) RefreshAccessToken(_ context.Context, refreshToken string) (*Response, error) {
	p.refreshed = refreshToken
	return p.resp, p.err
}

type fakeGuard struct {
	name   string
	result bool
	err    error
	calls  int
}

func (g *fakeGuard) Name() string { return g.name }

func (g *fakeGuard) CanActivate(context.Context, Session) (bool, error) {
	g.calls++
	return g.result, g.err
}

var errBackend = stderrors.New("backend down")

// brokenStorage fails every operation.
type brokenStorage struct{}

func (brokenStorage) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errBackend
}
func (brokenStorage) SetItem(context.Context, string, string) error { return errBackend }
func (brokenStorage) RemoveItem(context.Context, string) error      { return errBackend }
func (brokenStorage) Clear(context.Context) error                   { return errBackend }

var _ storage.Strategy = brokenStorage{}

func int64Ptr(v int64) *int64 { return &v }
