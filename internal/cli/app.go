package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/bitrig"
	"github.com/aretw0/bitrig/internal/config"
	"github.com/aretw0/bitrig/internal/logging"
	"github.com/aretw0/bitrig/pkg/adapters/file"
	"github.com/aretw0/bitrig/pkg/adapters/redis"
	"github.com/aretw0/bitrig/pkg/persistence/middleware"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/ports"
	"github.com/aretw0/bitrig/pkg/session"
	"github.com/muesli/termenv"
)

// KeyEnv names the environment variable holding the scene encryption key.
const KeyEnv = "BITRIG_STORE_KEY"

// Options are the global flags shared by every command. Empty values leave
// the configuration file in charge.
type Options struct {
	ConfigPath string
	Dir        string
	Redis      string
	Order      string
	LogLevel   string
	BestEffort *bool
	Debug      bool
}

// App bundles what a command needs: configuration, logger, scene storage and
// the terminal it writes to.
type App struct {
	Config config.Config
	Logger *slog.Logger
	Scenes *session.Manager
	Locker ports.DistributedLocker
	Out    *termenv.Output

	debug bool
	close func() error
}

// NewApp resolves configuration and flags into a ready App writing to w.
func NewApp(opts Options, w io.Writer) (*App, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Out:    termenv.NewOutput(w),
		debug:  opts.Debug,
		close:  func() error { return nil },
	}

	var store ports.SceneStore
	if cfg.Redis.Addr != "" {
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix+"scene:"))
		store = rs
		app.Locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
		app.close = rs.Close
		logger.Debug("using redis scene store", "addr", cfg.Redis.Addr)
	} else {
		store = file.New(cfg.Store.Dir, file.Format(cfg.Store.Format))
		logger.Debug("using file scene store", "dir", cfg.Store.Dir, "format", cfg.Store.Format)
	}

	if cfg.Store.Key != "" {
		key, err := middleware.ParseKey(cfg.Store.Key)
		if err != nil {
			_ = app.close()
			return nil, fmt.Errorf("store key: %w", err)
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	sessOpts := []session.Option{session.WithLogger(logger)}
	if app.Locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(app.Locker))
	}
	app.Scenes = session.NewManager(store, sessOpts...)
	return app, nil
}

// Close releases the store connection, if any.
func (a *App) Close() error {
	return a.close()
}

// EngineOptions turns the configuration into engine options, followed by extra.
func (a *App) EngineOptions(extra ...bitrig.Option) []bitrig.Option {
	opts := []bitrig.Option{
		bitrig.WithLogger(a.Logger),
		bitrig.WithOrder(a.Config.Order),
		bitrig.WithBestEffort(a.Config.BestEffort),
	}
	if a.Locker != nil {
		opts = append(opts, bitrig.WithLocker(a.Locker, session.DefaultLockTTL))
	}
	return append(opts, extra...)
}

func resolveConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.Dir != "" {
		cfg.Store.Dir = opts.Dir
	}
	if opts.Redis != "" {
		cfg.Redis.Addr = opts.Redis
	}
	if opts.Order != "" {
		cfg.Order = domain.Order(opts.Order)
	}
	if key := os.Getenv(KeyEnv); key != "" {
		cfg.Store.Key = key
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.BestEffort != nil {
		cfg.BestEffort = *opts.BestEffort
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createLogger configures the application logger.
// Debug mode wins over the configured level.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}
