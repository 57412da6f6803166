package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/purplecheck/agent/app/api"
	"github.com/purplecheck/agent/app/cfg"
	"github.com/purplecheck/agent/app/config"
	"github.com/purplecheck/agent/app/cursor"
	"github.com/purplecheck/agent/app/database"
	"github.com/purplecheck/agent/app/images"
	"github.com/purplecheck/agent/app/instagram"
	"github.com/purplecheck/agent/app/llm"
	"github.com/purplecheck/agent/app/pipeline"
	"github.com/purplecheck/agent/app/reddit"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting purple-check agent", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	sources := config.NewCache(appCfg.SourcesDir)
	if err := sources.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", sources.GetSourceCount())

	postRepo := database.NewPostRepository(db)
	feedbackRepo := database.NewFeedbackRepository(db)
	cursors := cursor.NewStore(filepath.Join(appCfg.DataDir, "fetch_state.json"))

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
	}

	redditClient := reddit.NewClient(httpClient, appCfg.RedditBaseURL, appCfg.UserAgent)
	llmClient := llm.NewClient(httpClient, appCfg.LLMEndpoint, appCfg.LLMAPIKey, appCfg.LLMModel)
	checker := instagram.NewChecker(httpClient, appCfg.UserAgent)
	imageFetcher := images.NewFetcher(httpClient, appCfg.UserAgent)

	harvester := pipeline.NewHarvester(sources, redditClient, postRepo, cursors)
	engine := pipeline.NewEngine(postRepo, feedbackRepo, llmClient, redditClient, imageFetcher, checker, appCfg.BatchLimit)

	handler := api.NewHandler(postRepo, feedbackRepo, engine)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("Status server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Status server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := run(ctx, harvester, engine, appCfg.PollInterval); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("Interrupted, shutting down")
		} else {
			slog.Error("Run failed", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Status server shutdown error", "error", err)
	}

	os.Exit(exitCode)
}

// run executes harvest+process cycles. With a zero interval it runs a single
// cycle and returns; otherwise it polls until the context is cancelled.
func run(ctx context.Context, harvester *pipeline.Harvester, engine *pipeline.Engine, pollInterval int) error {
	if err := cycle(ctx, harvester, engine); err != nil {
		return err
	}
	if pollInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(time.Duration(pollInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := cycle(ctx, harvester, engine); err != nil {
				return err
			}
		}
	}
}

func cycle(ctx context.Context, harvester *pipeline.Harvester, engine *pipeline.Engine) error {
	if err := harvester.Run(ctx); err != nil {
		return err
	}
	return engine.Run(ctx)
}
