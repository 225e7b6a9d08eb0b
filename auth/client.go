package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/observability"
)

// Client coordinates scheme selection, provider delegation, token
// persistence and guard evaluation.
//
// A Client is safe for concurrent use, but its current scheme is shared:
// concurrent UseScheme calls are last-write-wins. Use Scoped to give each
// session its own selection.
type Client struct {
	cfg    *Config
	log    *logger.Logger
	tracer trace.Tracer

	mu      sync.RWMutex
	current *Scheme
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger. The default discards everything.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTracer sets the tracer provider spans are created from. The default
// is the global provider.
func WithTracer(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = observability.Tracer(tp) }
}

// New creates a client. The current scheme is cfg.Schemes[cfg.DefaultScheme];
// when that is absent the client starts without one.
func New(cfg *Config, opts ...Option) *Client {
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = observability.Tracer(nil)
	}
	c.log = logger.OrNop(c.log).WithComponent("auth")
	c.current = cfg.Schemes[cfg.DefaultScheme]
	return c
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *Config { return c.cfg }

// UseScheme makes name the current scheme. An unknown name fails with
// SchemeNotFound and leaves the selection unchanged.
func (c *Client) UseScheme(name string) (*Client, error) {
	scheme, ok := c.cfg.Schemes[name]
	if !ok || scheme == nil {
		return c, errors.SchemeNotFound(name)
	}
	c.mu.Lock()
	c.current = scheme
	c.mu.Unlock()
	c.log.Debug("scheme selected", logger.Fields(logger.FieldScheme, name))
	return c, nil
}

// Scoped returns an independent client sharing configuration and storage
// whose current scheme is name.
func (c *Client) Scoped(name string) (*Client, error) {
	scheme, ok := c.cfg.Schemes[name]
	if !ok || scheme == nil {
		return nil, errors.SchemeNotFound(name)
	}
	return &Client{cfg: c.cfg, log: c.log, tracer: c.tracer, current: scheme}, nil
}

// CurrentScheme returns the selected scheme, if any.
func (c *Client) CurrentScheme() (*Scheme, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current != nil
}

func (c *Client) scheme() *Scheme {
	s, _ := c.CurrentScheme()
	return s
}

// Login resolves opts.Scheme and opts.Provider, runs the provider's
// authorization and persists the resulting tokens. The response is
// returned unchanged. Provider errors, including RedirectInProgress, are
// returned as-is and nothing is persisted.
func (c *Client) Login(ctx context.Context, opts AuthorizeOptions) (resp *Response, err error) {
	correlationID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanLogin,
		attribute.String(observability.AttrScheme, opts.Scheme),
		attribute.String(observability.AttrProvider, opts.Provider),
		attribute.String(observability.AttrCorrelationID, correlationID))
	defer func() {
		if errors.Is(err, errors.ErrRedirectInProgress) {
			span.SetAttributes(attribute.String(observability.AttrResult, "redirect"))
			observability.EndSpan(span, nil)
			return
		}
		observability.EndSpan(span, err)
	}()

	log := c.log.WithFields(logger.Fields(
		logger.FieldCorrelationID, correlationID,
		logger.FieldScheme, opts.Scheme,
		logger.FieldProvider, opts.Provider,
	))

	scheme, ok := c.cfg.Schemes[opts.Scheme]
	if !ok || scheme == nil {
		return nil, errors.SchemeNotFound(opts.Scheme)
	}
	provider, ok := scheme.Provider(opts.Provider)
	if !ok {
		return nil, errors.ProviderNotFound(opts.Provider, opts.Scheme)
	}

	start := time.Now()
	resp, err = provider.Authorize(ctx, opts)
	if err != nil {
		if errors.Is(err, errors.ErrRedirectInProgress) {
			log.Info("redirecting to provider")
		} else {
			log.Warn("authorization failed", logger.ErrorFields("authorize", err))
		}
		return nil, err
	}
	if resp == nil {
		return nil, errors.Internal(fmt.Errorf("provider %s returned no response", opts.Provider))
	}

	if err := c.setTokens(ctx, resp); err != nil {
		log.Error("failed to persist tokens", logger.ErrorFields("set_tokens", err))
		return nil, err
	}
	log.Info("login completed", logger.DurationFields("login", time.Since(start)))
	return resp, nil
}

// Logout clears the storage strategy. This wipes every key it holds, not
// only the current scheme's tokens.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.cfg.Storage.Clear(ctx); err != nil {
		return wrapStorage("clear", err)
	}
	c.log.Info("logged out")
	return nil
}

// IsAuthenticated reports whether an access token is stored and at least
// one provider of the current scheme accepts it. Providers are asked
// concurrently; the first acceptance wins and cancels the rest.
func (c *Client) IsAuthenticated(ctx context.Context) (ok bool, err error) {
	scheme := c.scheme()
	if scheme == nil {
		return false, nil
	}

	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanIsAuthenticated,
		attribute.String(observability.AttrScheme, scheme.ID))
	defer func() {
		span.SetAttributes(attribute.Bool(observability.AttrResult, ok))
		observability.EndSpan(span, err)
	}()

	token, found, err := c.GetAccessToken(ctx)
	if err != nil {
		return false, err
	}
	if !found || token == "" || len(scheme.Providers) == 0 {
		return false, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so late validators never block after an early return.
	results := make(chan bool, len(scheme.Providers))
	for _, p := range scheme.Providers {
		go func() {
			results <- p.ValidateToken(ctx, token)
		}()
	}

	for range scheme.Providers {
		select {
		case valid := <-results:
			if valid {
				return true, nil
			}
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return false, nil
}

// CheckGuard evaluates the current scheme's guards in declaration order,
// stopping at the first one that denies. A scheme without guards allows.
// A guard error aborts the check and is wrapped as GuardCheckFailed.
func (c *Client) CheckGuard(ctx context.Context) (allowed bool, err error) {
	scheme := c.scheme()
	if scheme == nil {
		return false, errors.NoSchemeSelected()
	}

	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanCheckGuard,
		attribute.String(observability.AttrScheme, scheme.ID),
		attribute.Int(observability.AttrGuardCount, len(scheme.Guards)))
	defer func() {
		span.SetAttributes(attribute.Bool(observability.AttrResult, allowed))
		observability.EndSpan(span, err)
	}()

	for i, g := range scheme.Guards {
		ok, err := g.CanActivate(ctx, c)
		if err != nil {
			name := guardName(g)
			c.log.Error("guard evaluation failed", logger.Fields(
				logger.FieldScheme, scheme.ID,
				logger.FieldGuard, name,
				"index", i,
				logger.FieldError, err.Error(),
			))
			return false, errors.GuardCheckFailed(name, i, err)
		}
		if !ok {
			c.log.Debug("guard denied access", logger.Fields(logger.FieldScheme, scheme.ID, logger.FieldGuard, guardName(g), "index", i))
			return false, nil
		}
	}
	return true, nil
}

// Refresh exchanges the stored refresh token through providerID, which must
// belong to the current scheme and implement Refresher, and persists the
// new tokens.
func (c *Client) Refresh(ctx context.Context, providerID string) (resp *Response, err error) {
	scheme := c.scheme()
	if scheme == nil {
		return nil, errors.NoSchemeSelected()
	}

	ctx, span := observability.StartSpan(ctx, c.tracer, observability.SpanRefresh,
		attribute.String(observability.AttrScheme, scheme.ID),
		attribute.String(observability.AttrProvider, providerID))
	defer func() { observability.EndSpan(span, err) }()

	refreshToken, found, err := c.GetRefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if !found || refreshToken == "" {
		return nil, errors.NoRefreshToken(scheme.refreshTokenKey())
	}

	provider, ok := scheme.Provider(providerID)
	if !ok {
		return nil, errors.ProviderNotFound(providerID, scheme.ID)
	}
	refresher, ok := provider.(Refresher)
	if !ok {
		return nil, errors.RefreshUnsupported(providerID)
	}

	resp, err = refresher.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		c.log.Warn("token refresh failed", logger.Fields(logger.FieldProvider, providerID, logger.FieldError, err.Error()))
		return nil, err
	}
	if resp == nil {
		return nil, errors.Internal(fmt.Errorf("provider %s returned no response", providerID))
	}
	if err := c.setTokens(ctx, resp); err != nil {
		return nil, err
	}
	c.log.Info("tokens refreshed", logger.Fields(logger.FieldScheme, scheme.ID, logger.FieldProvider, providerID))
	return resp, nil
}

func guardName(g Guard) string {
	if n, ok := g.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", g)
}
