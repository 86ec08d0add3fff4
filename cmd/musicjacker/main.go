package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v5"
	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/api"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/app"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/bot"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/engine"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/fetcher"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/config"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/logger"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/registry"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/store"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/transport"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/workdir"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "musicjacker",
		Short: "Telegram bot that turns media links and searches into audio files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Make sure a yt-dlp binary is available before taking any traffic
	ytdlp.MustInstall(ctx, nil)

	// Cookie jar is a single configured path, checked once here
	if cfg.Download.CookiesFile != "" {
		if _, err := os.Stat(cfg.Download.CookiesFile); err != nil {
			log.Warn("cookies file %s not readable, continuing without it: %v", cfg.Download.CookiesFile, err)
			cfg.Download.CookiesFile = ""
		} else {
			log.Info("using cookies from %s", cfg.Download.CookiesFile)
		}
	}

	db, err := store.New(cfg.Store.SQLitePath)
	if err != nil {
		return fmt.Errorf("store error: %w", err)
	}
	defer db.Close()

	dirs, err := workdir.NewAllocator(cfg.Download.WorkBase)
	if err != nil {
		return fmt.Errorf("workdir error: %w", err)
	}

	tgAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram error: %w", err)
	}
	tgAPI.Debug = cfg.Telegram.Debug
	log.Info("authorized as @%s", tgAPI.Self.UserName)

	var fetch fetcher.Fetcher = fetcher.NewYTDLP(log, cfg.Download.CookiesFile)
	fetch = fetcher.NewCachedFetcher(fetch, cfg.Search.CacheTTL)

	reg := registry.New()
	orch := engine.New(cfg.Download, log, reg, dirs, fetch, transport.NewTelegram(tgAPI), db)

	appCtx := app.NewContext(cfg, log)
	appCtx.Store = db
	appCtx.Tasks = orch

	// Admin API
	e := echo.New()
	api.RegisterRoutes(e, appCtx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: e}
	go func() {
		log.Info("admin API on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin API stopped: %v", err)
		}
	}()

	// Bot update loop blocks until shutdown
	bot.New(tgAPI, appCtx, orch, fetch).Run(ctx)

	log.Info("shutting down, waiting for active tasks")
	orch.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin API shutdown: %v", err)
	}

	log.Info("bye")
	return nil
}
