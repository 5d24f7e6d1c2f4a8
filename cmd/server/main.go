package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shubh-37/decluttr/config"
	"github.com/shubh-37/decluttr/internal/agents"
	"github.com/shubh-37/decluttr/internal/api"
	"github.com/shubh-37/decluttr/internal/database"
	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/logging"
	slackpkg "github.com/shubh-37/decluttr/internal/slack"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "decluttr server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, using environment variables")
	}
	logger.Info("decluttr server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	providers, err := agents.NewProviders(ctx, cfg.ProviderOrder, cfg.ProviderKey, cfg.ProviderTimeout, logger)
	if err != nil {
		return err
	}
	orchestrator := agents.NewOrchestrator(logger, providers,
		agents.WithTimeout(cfg.ProviderTimeout),
		agents.WithFallbackOnAnyError(cfg.FallbackOnAnyError))

	service := declutter.NewService(store, orchestrator, logger)

	var opts []api.Option
	var slackServer *slackpkg.Server
	if cfg.SlackEnabled() {
		slackClient, err := slackpkg.NewClient(cfg.SlackToken)
		if err != nil {
			return err
		}
		commands := slackpkg.NewCommandHandler(slackClient, declutter.NewStorePersister(store), orchestrator, service, logger)
		messages := slackpkg.NewMessageHandler(slackClient, service, commands, logger)
		slackServer = slackpkg.NewServer(messages, cfg.SlackSigningSecret, logger)
		opts = append(opts, api.WithSlack(slackServer))
		logger.Info("Slack intake enabled", zap.String("bot_id", slackClient.BotID()))
	}

	httpServer := api.NewServer(store, service, logger, opts...).HTTPServer(":" + cfg.Port)

	logger.Info("System initialized",
		zap.String("port", cfg.Port),
		zap.Strings("providers", orchestrator.Providers()),
		zap.Bool("fallback_on_any_error", cfg.FallbackOnAnyError),
		zap.Bool("slack", cfg.SlackEnabled()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		if slackServer != nil {
			slackServer.Wait()
		}
		return err
	})

	return g.Wait()
}
