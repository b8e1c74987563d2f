package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/medtick/internal/config"
	"github.com/lazypower/medtick/internal/notify"
	"github.com/lazypower/medtick/internal/schedule"
	"github.com/lazypower/medtick/internal/server"
	"github.com/lazypower/medtick/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reminder clock and HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Wire the notification channels. The in-app feed is always
	// present; the rest depend on configured capabilities.
	feed := notify.NewFeed(cfg.Notify.FeedSize)
	dispatcher := notify.NewDispatcher(feed)

	if cfg.Notify.Telegram.BotToken != "" {
		dispatcher.SetPlatform(notify.NewTelegramPusher(
			cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
		fmt.Fprintln(os.Stderr, "  push: telegram")
	}
	if cfg.Notify.Sound.Command != "" {
		dispatcher.SetSound(&notify.CommandSound{
			Command: cfg.Notify.Sound.Command,
			File:    cfg.Notify.Sound.File,
		})
		fmt.Fprintf(os.Stderr, "  audio: %s\n", cfg.Notify.Sound.Command)
	}
	if cfg.Notify.Haptic.Command != "" {
		dispatcher.SetHaptics(&notify.CommandHaptics{
			Command: cfg.Notify.Haptic.Command,
			Args:    cfg.Notify.Haptic.Args,
		})
		fmt.Fprintf(os.Stderr, "  haptic: %s\n", cfg.Notify.Haptic.Command)
	}

	clock := schedule.NewClock(db, dispatcher,
		schedule.WithInterval(time.Duration(cfg.Clock.IntervalSeconds)*time.Second))
	clock.Start()
	defer clock.Stop()

	srv := server.New(db, feed, dispatcher, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "medtick serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
