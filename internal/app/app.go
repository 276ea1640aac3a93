package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dvxtools/dvx/internal/auth"
	"github.com/dvxtools/dvx/internal/cache"
	"github.com/dvxtools/dvx/internal/config"
	"github.com/dvxtools/dvx/internal/dataverse"
	"github.com/dvxtools/dvx/internal/ui"
)

// Options configure the dvx application.
type Options struct {
	EnvURL     string // environment URL; empty falls back to env var, then config
	ConfigPath string // empty uses default ~/.config/dvx/config.toml
	Vim        bool   // enable hjkl navigation for this run
}

// envURLVar is consulted when no --env flag is given.
const envURLVar = "DATAVERSE_URL"

// Run boots the dvx TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Vim {
		cfg.Vim = true
	}

	envURL := resolveEnvironment(opts.EnvURL, &cfg)
	if envURL == "" {
		return fmt.Errorf("no environment: pass --env, set %s, or configure one in %s", envURLVar, configPath)
	}

	creds := auth.NewCLICredential()

	// Probe the credential up front so a missing az login fails with an
	// actionable message instead of a wall of per-view fetch errors.
	if _, err := creds.Token(ctx, auth.ResourceScope(envURL)); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return fmt.Errorf("%w\n\nrun 'az login' and try again", auth.ErrNotLoggedIn)
		}
		return fmt.Errorf("acquire token for %s: %w", envURL, err)
	}

	client, err := dataverse.NewClient(envURL, creds)
	if err != nil {
		return fmt.Errorf("init dataverse client: %w", err)
	}

	cfg.AddEnvironment(client.EnvironmentURL())
	if err := config.Save(configPath, cfg); err != nil {
		// Not fatal: a read-only home still gets a working session.
		log.Printf("save config: %v", err)
	}

	store := cache.New(client.EnvironmentURL())

	newAPI := func(url string) (dataverse.API, error) {
		c, err := dataverse.NewClient(url, creds)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		API:        client,
		NewAPI:     newAPI,
		Store:      store,
		Config:     &cfg,
		ConfigPath: configPath,
	})
}

// resolveEnvironment picks the environment URL: the flag wins, then the
// DATAVERSE_URL variable, then the config file's current environment.
func resolveEnvironment(flagURL string, cfg *config.Config) string {
	if flagURL != "" {
		return flagURL
	}
	if env := os.Getenv(envURLVar); env != "" {
		return env
	}
	return cfg.CurrentEnv
}
