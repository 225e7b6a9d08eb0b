package storage

import (
	"slices"
	"sync"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
)

// Factory creates a Strategy from core config and backend-specific settings.
// Each backend type-asserts providerCfg to its own config type.
type Factory func(cfg Config, providerCfg any, log *logger.Logger) (Strategy, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend under name. Backend packages call
// this from init; registering a name twice replaces the earlier factory.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers returns the registered backend names, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the Strategy selected by cfg.Provider. providerCfg carries
// backend-specific settings (e.g. *redis.Config) and may be nil.
func New(cfg Config, providerCfg any, log *logger.Logger) (Strategy, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}

	factoriesMu.RLock()
	f := factories[cfg.Provider]
	factoriesMu.RUnlock()

	l := logger.OrNop(log).WithComponent("storage")
	l.Info("initializing token storage", logger.Fields(logger.FieldStorage, cfg.Provider))
	return f(cfg, providerCfg, l)
}
