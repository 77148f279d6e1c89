package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/khidmat-portal/khidmat/internal/access"
	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/config"
	"github.com/khidmat-portal/khidmat/internal/listing"
	"github.com/khidmat-portal/khidmat/internal/logging"
	"github.com/khidmat-portal/khidmat/internal/notify"
	"github.com/khidmat-portal/khidmat/internal/portal"
	"github.com/khidmat-portal/khidmat/internal/prefs"
	"github.com/khidmat-portal/khidmat/internal/ui"
)

// Options configure a khidmat session.
type Options struct {
	ConfigPath string
	EnvFile    string
	PrefsPath  string // empty uses ~/.config/khidmat/prefs.toml
	Debug      bool
	// LogToStderr sends logs to stderr instead of the log file. CLI
	// commands use it; the TUI never does.
	LogToStderr bool
	Entity      string // initial list in the TUI
}

// Env is everything a command needs once configuration, logging, the portal
// client and the session are in place.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Log       *logging.Logger
	Client    *portal.Client
	Token     string
	Session   *access.Provider
	Gate      access.Gate
	Notices   *notify.Board
	Sink      notify.Sink
}

// Open loads configuration and resolves the session. A session that cannot
// be resolved is not fatal: the returned Env denies everything and carries
// the error in Session.Snapshot().LastError.
func Open(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Debug: opts.Debug}
	if !opts.LogToStderr {
		logOpts.File = cfg.LogFile
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	token, err := cfg.ResolveToken()
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	client, err := portal.NewClient(portal.Options{
		BaseURL:  cfg.APIURL,
		Token:    token,
		Timeout:  cfg.RequestTimeout,
		RetryMax: retryMax(cfg.RetryMax),
		Logger:   &logger.Logger,
	})
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("init portal client: %w", err)
	}

	board := notify.NewBoard(0, 0)
	env := &Env{
		Config:    cfg,
		Prefs:     prefs.Load(opts.PrefsPath),
		PrefsPath: opts.PrefsPath,
		Log:       logger,
		Client:    client,
		Token:     token,
		Session:   access.NewProvider(access.CapabilitySet{}, access.SourceNone),
		Notices:   board,
		Sink:      notify.Tee(board, notify.LogSink(logger.Logger)),
	}
	env.Gate = access.Gate{Policy: catalog.Policy(), Provider: env.Session}

	logger.Info().Str("api", cfg.APIURL).Bool("token", token != "").Msg("khidmat starting")
	if err := refreshSession(ctx, env.Session, client, token, logger.Logger); err != nil {
		notify.Error(env.Sink, "Could not load your permissions: %v", err)
	}
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	return e.Log.Close()
}

// Controller returns a list controller for entity wired to this Env.
func (e *Env) Controller(entity catalog.Entity, sink notify.Sink) *listing.Controller {
	if sink == nil {
		sink = e.Sink
	}
	return listing.NewController(listing.Options{
		Entity:       entity,
		API:          e.Client,
		Gate:         e.Gate,
		Notices:      sink,
		Logger:       &e.Log.Logger,
		PageSize:     e.Prefs.PageSize(entity.Name, e.Config.PageSize),
		Timeout:      e.Config.RequestTimeout,
		RefineWindow: e.Config.RefineWindow,
	})
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	StartSessionPoller(ctx, env.Session, env.Client, env.Token, env.Config.SessionEvery, env.Log.Logger)

	initial := opts.Entity
	if initial == "" {
		initial = env.Prefs.LastView
	}

	err = ui.Run(ui.Options{
		Context:        ctx,
		Controller:     func(entity catalog.Entity) *listing.Controller { return env.Controller(entity, nil) },
		Gate:           env.Gate,
		Session:        env.Session,
		Notices:        env.Notices,
		Sink:           env.Sink,
		Logger:         &env.Log.Logger,
		LogPath:        env.Log.Path,
		Prefs:          env.Prefs,
		PrefsPath:      env.PrefsPath,
		InitialEntity:  initial,
		SearchDebounce: env.Config.SearchDebounce,
		RefreshEvery:   env.Config.RefreshEvery,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// retryMax maps the config value onto portal.Options. Config zero disables
// retries; portal treats zero as its default and negative as none.
func retryMax(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
