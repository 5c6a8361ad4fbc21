// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ernfleet/cauldron/internal/config"
	"github.com/ernfleet/cauldron/internal/release"
	"github.com/ernfleet/cauldron/pkg/resolver"
	"github.com/ernfleet/cauldron/pkg/store"
	"github.com/ernfleet/cauldron/pkg/vcs"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// StoreOpener builds the transactional store described by cfg.
	StoreOpener func(cfg *config.Config, logger *log.Logger) (release.Store, error)

	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration and the store through it.
	App struct {
		Config    ConfigProvider
		OpenStore StoreOpener
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		OpenStore StoreOpener
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		verbose    bool
		configPath string
	}

	// session is the per-invocation state shared by a command run.
	session struct {
		cfg    *config.Config
		path   string
		logger *log.Logger
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.OpenStore == nil {
		deps.OpenStore = openGitStore
	}
	return &App{
		Config:    deps.Config,
		OpenStore: deps.OpenStore,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// openGitStore opens the git working copy configured in cfg.Store.
func openGitStore(cfg *config.Config, logger *log.Logger) (release.Store, error) {
	if err := cfg.Store.RequireURL(); err != nil {
		return nil, err
	}
	dir, err := cfg.Store.ResolvedWorkingDir()
	if err != nil {
		return nil, err
	}
	repo, err := vcs.NewGitRepository(vcs.Options{
		Dir:    dir,
		URL:    cfg.Store.URL,
		Remote: cfg.Store.Remote,
		Branch: cfg.Store.Branch,
		Author: vcs.Signature{Name: cfg.Author.Name, Email: cfg.Author.Email},
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened working copy", "dir", dir, "remote", cfg.Store.Remote, "branch", cfg.Store.Branch)
	return store.New(repo, store.WithLogger(logger)), nil
}

// load reads the configuration and builds the logger for one invocation.
func (a *App) load(ctx context.Context, flags *globalFlags) (*session, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	verbose := flags.verbose || loaded.Config.UI.Verbose
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(a.stderr, log.Options{
		Level:  level,
		Prefix: config.AppName,
	})
	return &session{cfg: loaded.Config, path: loaded.Path, logger: logger}, nil
}

// service builds the release service for one invocation.
func (a *App) service(s *session) (*release.Service, error) {
	st, err := a.OpenStore(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	res := resolver.New(
		resolver.WithLogger(s.logger),
		resolver.WithExclusions(s.cfg.Resolver.Exclude...),
	)
	return release.New(st, res, release.WithLogger(s.logger)), nil
}
