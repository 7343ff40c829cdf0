package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonandersen/schwab/internal/config"
	"github.com/jonandersen/schwab/internal/keyring"
	"github.com/jonandersen/schwab/internal/logging"
	"github.com/jonandersen/schwab/pkg/auth"
	"github.com/jonandersen/schwab/pkg/schwab"
)

// runtime is the production wiring shared by every command.
type runtime struct {
	cfg    *config.Config
	store  keyring.Store
	logger *zap.Logger
}

// loadRuntime reads the config file, applies environment overrides and
// builds the logger.
func loadRuntime() (*runtime, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		store:  keyring.NewEnvStore(keyring.NewSystemStore()),
		logger: logger,
	}, nil
}

// resolveConfigPath returns the --config flag value or the default path.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

// session builds an auth session from the stored credentials.
func (r *runtime) session() (*auth.Session, error) {
	clientID, clientSecret, err := keyring.Credentials(r.store)
	if err != nil {
		return nil, fmt.Errorf("%w\nRun 'schwab configure' first", err)
	}

	return newSession(r.cfg, clientID, clientSecret, r.logger), nil
}

// client builds an API client authenticated by a session.
func (r *runtime) client() (*schwab.Client, error) {
	s, err := r.session()
	if err != nil {
		return nil, err
	}
	return newClient(r.cfg, s, r.logger), nil
}

func newSession(cfg *config.Config, clientID, clientSecret string, logger *zap.Logger) *auth.Session {
	return auth.NewSession(
		auth.Credential{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURI:  cfg.RedirectURI,
		},
		auth.WithEndpoint(cfg.AuthURL, cfg.TokenURL),
		auth.WithStore(auth.NewFileStore(cfg.ResolvedTokenPath())),
		auth.WithLogger(logger),
	)
}

func newClient(cfg *config.Config, provider schwab.TokenProvider, logger *zap.Logger) *schwab.Client {
	return schwab.NewClient(cfg.APIBaseURL, provider,
		schwab.WithTimeout(cfg.RequestTimeout),
		schwab.WithLogger(logger),
	)
}

// productionClient is the clientFunc used outside tests.
func productionClient() (*schwab.Client, error) {
	rt, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	return rt.client()
}

// clientFunc lazily builds the API client so that tests can substitute one
// pointed at an httptest server.
type clientFunc func() (*schwab.Client, error)
