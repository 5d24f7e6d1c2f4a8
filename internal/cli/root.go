// Package cli implements the decluttr command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/config"
	"github.com/shubh-37/decluttr/internal/agents"
	"github.com/shubh-37/decluttr/internal/client"
	"github.com/shubh-37/decluttr/internal/database"
	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/logging"
	"github.com/shubh-37/decluttr/internal/profile"
)

// App holds what a command invocation works with.
type App struct {
	ProfilePath string
	BackendURL  string
	StoreURL    string
	UserID      string
	LogLevel    string

	profile   *profile.Profile
	session   *declutter.Session
	providers []string
	target    string
	closers   []func()
	out       io.Writer
	errOut    io.Writer
}

// NewRootCommand builds the decluttr command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(&App{})
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "decluttr",
		Short:         "Dump your thoughts, get back categories, tasks and suggestions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.out == nil {
				app.out = cmd.OutOrStdout()
			}
			if app.errOut == nil {
				app.errOut = cmd.ErrOrStderr()
			}
			return app.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.ProfilePath, "profile", "", "profile file (default $XDG_CONFIG_HOME/decluttr/profile.toml)")
	flags.StringVar(&app.BackendURL, "backend", "", "REST backend URL (overrides the profile)")
	flags.StringVar(&app.StoreURL, "store", "", "use a database directly, e.g. sqlite://decluttr.db")
	flags.StringVar(&app.UserID, "user", "", "user id (overrides the profile)")
	flags.StringVar(&app.LogLevel, "log-level", "error", "log level")

	root.AddCommand(
		newDumpCommand(app),
		newTasksCommand(app),
		newMoodCommand(app),
		newHistoryCommand(app),
		newWhoamiCommand(app),
	)
	return root
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	app := &App{}
	defer app.close()

	root := newRootCommand(app)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("error: "+err.Error()))
		return 1
	}
	return 0
}

// setup resolves the profile, builds the classifier and persister and
// loads the session. It is a no-op when a session was injected.
func (a *App) setup(ctx context.Context) error {
	if a.session != nil {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(a.LogLevel, false)
	if err != nil {
		return err
	}

	if a.ProfilePath == "" {
		if a.ProfilePath, err = profile.DefaultPath(); err != nil {
			return err
		}
	}
	p, created, err := profile.LoadOrCreate(a.ProfilePath)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(a.errOut, mutedStyle.Render("created guest profile "+p.UserID+" at "+a.ProfilePath))
	}
	a.profile = p

	userID := firstNonEmpty(a.UserID, p.UserID)
	storeURL := firstNonEmpty(a.StoreURL, p.Store)

	var persister declutter.Persister
	if storeURL != "" {
		store, err := database.Open(ctx, storeURL, logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)
		persister = declutter.NewStorePersister(store)
		a.target = storeURL
	} else {
		backend := firstNonEmpty(a.BackendURL, p.BackendURL, client.DefaultBaseURL)
		persister = client.New(backend, logger)
		a.target = backend
	}

	providers, err := agents.NewProviders(ctx, cfg.ProviderOrder, cfg.ProviderKey, cfg.ProviderTimeout, logger)
	if err != nil {
		return err
	}
	orchestrator := agents.NewOrchestrator(logger, providers,
		agents.WithTimeout(cfg.ProviderTimeout),
		agents.WithFallbackOnAnyError(cfg.FallbackOnAnyError))
	a.providers = orchestrator.Providers()

	a.session = declutter.NewSession(userID, orchestrator, persister, logger)
	if err := a.session.Load(ctx); err != nil {
		logger.Debug("Load failed", zap.Error(err))
		fmt.Fprintln(a.errOut, warnStyle.Render("could not load saved data, starting from defaults: "+err.Error()))
	}
	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// report prints sync failures as a warning; the command still fails
func (a *App) report(err error) error {
	if errors.Is(err, declutter.ErrSyncFailed) {
		fmt.Fprintln(a.errOut, warnStyle.Render("change was not saved"))
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
