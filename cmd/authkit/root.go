package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/auth/oauth2"
	"github.com/kbukum/authkit/authconfig"
	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/storage"
	"github.com/kbukum/authkit/version"
)

const serviceName = "authkit"

// Exit codes for scripting.
const (
	ExitCodeError        = 1
	ExitCodeAuthRequired = 2
	ExitCodeAuthFailed   = 3
)

type rootOptions struct {
	configFile string
	envFile    string
	scheme     string
	logLevel   string

	// redirector replaces the browser in tests.
	redirector oauth2.Redirector
}

func newRootCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authkit",
		Short: "Log in to configured auth providers and manage stored tokens",
		Long: `authkit runs the login flows declared in an authkit configuration file
and keeps the resulting tokens in the configured storage (the OS keyring
unless the file says otherwise).

The configuration is searched as ./authkit.yml, ./config.yml and
$XDG_CONFIG_HOME/authkit/config.yml; AUTHKIT_* variables override it.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "config file (default: searched)")
	flags.StringVar(&o.envFile, "env-file", "", ".env file to load before reading the config")
	flags.StringVarP(&o.scheme, "scheme", "s", "", "scheme to use (default: auth.default_scheme)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCmd(o),
		newLogoutCmd(o),
		newStatusCmd(o),
		newTokenCmd(o),
		newRefreshCmd(o),
		newVersionCmd(),
	)
	return cmd
}

// session is the configuration and client of one command run.
type session struct {
	client *auth.Client
	scheme *auth.Scheme
	log    *logger.Logger
	store  storage.Strategy
}

func (s *session) Close() {
	if c, ok := s.store.(storage.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("failed to close storage", logger.ErrorFields("close", err))
		}
	}
}

// open loads the configuration, builds the client and selects the scheme.
// The CLI stores tokens in the keyring unless a provider is configured.
func (o *rootOptions) open(ctx context.Context, opts ...authconfig.BuildOption) (*session, error) {
	var loadOpts []config.LoaderOption
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(o.envFile))
	}
	doc, err := authconfig.Load(serviceName, loadOpts...)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		doc.Logging.Level = o.logLevel
	}
	log := logger.New(&doc.Logging, doc.Name).WithComponent("cli")

	if doc.Auth.Storage.Provider == "" {
		doc.Auth.Storage.Provider = storage.ProviderKeyring
	}
	cfg, err := authconfig.Build(ctx, doc.Auth, log, opts...)
	if err != nil {
		return nil, err
	}

	s := &session{
		client: auth.New(cfg, auth.WithLogger(log)),
		log:    log,
		store:  cfg.Storage,
	}
	if o.scheme != "" {
		if _, err := s.client.UseScheme(o.scheme); err != nil {
			s.Close()
			return nil, err
		}
	}
	scheme, ok := s.client.CurrentScheme()
	if !ok {
		s.Close()
		return nil, errors.NoSchemeSelected()
	}
	s.scheme = scheme
	return s, nil
}

// provider resolves id in the current scheme. An empty id selects the
// scheme's only provider.
func (s *session) provider(id string) (auth.Provider, error) {
	if id == "" {
		if len(s.scheme.Providers) != 1 {
			return nil, errors.InvalidInput("provider", "--provider is required when the scheme has several providers")
		}
		return s.scheme.Providers[0], nil
	}
	p, ok := s.scheme.Provider(id)
	if !ok {
		return nil, errors.ProviderNotFound(id, s.scheme.ID)
	}
	return p, nil
}

// notLoggedInError reports a scheme without usable tokens.
type notLoggedInError struct {
	scheme string
}

func (e *notLoggedInError) Error() string {
	return "not logged in to scheme " + e.scheme + "; run 'authkit login'"
}

// accessDeniedError reports a guard denying the current scheme.
type accessDeniedError struct {
	scheme string
}

func (e *accessDeniedError) Error() string {
	return "access to scheme " + e.scheme + " denied by its guards"
}

func exitCode(err error) int {
	var (
		notLoggedIn *notLoggedInError
		denied      *accessDeniedError
	)
	switch {
	case errors.As(err, &notLoggedIn), errors.Is(err, errors.ErrNoRefreshToken):
		return ExitCodeAuthRequired
	case errors.As(err, &denied), errors.Is(err, errors.ErrInvalidCredentials), errors.Is(err, errors.ErrGuardCheckFailed):
		return ExitCodeAuthFailed
	default:
		return ExitCodeError
	}
}
