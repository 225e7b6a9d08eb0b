// Package cookie implements storage.Strategy on top of HTTP cookies for a
// single request/response exchange.
//
// Reads come from the request's cookies; writes emit Set-Cookie headers and
// are also visible to later reads through the same Strategy, so a handler
// can log a user in and check the session before responding.
package cookie

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/kbukum/authkit/storage"
)

// Options controls the attributes of written cookies.
type Options struct {
	// Prefix is prepended to every cookie name; Clear only touches prefixed cookies.
	Prefix   string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// Option configures a cookie Strategy.
type Option func(*Options)

// WithPrefix namespaces cookie names.
func WithPrefix(prefix string) Option { return func(o *Options) { o.Prefix = prefix } }

// WithPath sets the cookie path. Defaults to "/".
func WithPath(path string) Option { return func(o *Options) { o.Path = path } }

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option { return func(o *Options) { o.Domain = domain } }

// WithMaxAge sets the cookie lifetime in seconds. Zero makes session cookies.
func WithMaxAge(seconds int) Option { return func(o *Options) { o.MaxAge = seconds } }

// WithInsecure drops the Secure attribute, for plain-HTTP development servers.
func WithInsecure() Option { return func(o *Options) { o.Secure = false } }

// WithHTTPOnly hides cookies from scripts.
func WithHTTPOnly() Option { return func(o *Options) { o.HTTPOnly = true } }

// WithSameSite sets the SameSite attribute. Defaults to Lax.
func WithSameSite(mode http.SameSite) Option { return func(o *Options) { o.SameSite = mode } }

// Strategy stores items as cookies.
type Strategy struct {
	w    http.ResponseWriter
	opts Options

	mu   sync.Mutex
	view map[string]string
}

var _ storage.Strategy = (*Strategy)(nil)

// New creates a Strategy reading from r and writing to w.
func New(w http.ResponseWriter, r *http.Request, opts ...Option) *Strategy {
	o := Options{Path: "/", Secure: true, SameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Strategy{w: w, opts: o, view: make(map[string]string)}
	if r != nil {
		for _, c := range r.Cookies() {
			if !strings.HasPrefix(c.Name, o.Prefix) {
				continue
			}
			v, err := url.QueryUnescape(c.Value)
			if err != nil {
				v = c.Value
			}
			s.view[strings.TrimPrefix(c.Name, o.Prefix)] = v
		}
	}
	return s
}

func (s *Strategy) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.view[key]
	return v, ok, nil
}

func (s *Strategy) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view[key] = value
	http.SetCookie(s.w, s.cookie(key, url.QueryEscape(value), s.opts.MaxAge))
	return nil
}

func (s *Strategy) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(key)
	return nil
}

func (s *Strategy) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.view {
		s.expire(key)
	}
	return nil
}

// expire deletes key from the view and tells the client to drop the cookie.
// Missing keys still get an expiring header, which is harmless.
func (s *Strategy) expire(key string) {
	delete(s.view, key)
	http.SetCookie(s.w, s.cookie(key, "", -1))
}

func (s *Strategy) cookie(key, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.Prefix + key,
		Value:    value,
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		MaxAge:   maxAge,
		Secure:   s.opts.Secure,
		HttpOnly: s.opts.HTTPOnly,
		SameSite: s.opts.SameSite,
	}
}
