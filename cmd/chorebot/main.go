package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/chorebot/internal/bot"
	"github.com/dukerupert/chorebot/internal/chat"
	"github.com/dukerupert/chorebot/internal/command"
	"github.com/dukerupert/chorebot/internal/config"
	"github.com/dukerupert/chorebot/internal/database"
	"github.com/dukerupert/chorebot/internal/logging"
	"github.com/dukerupert/chorebot/internal/loop"
	"github.com/dukerupert/chorebot/internal/middleware"
	"github.com/dukerupert/chorebot/internal/server"
	"github.com/dukerupert/chorebot/internal/store"
)

const inboundBuffer = 64

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-token" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: chorebot hash-token <token>")
			os.Exit(2)
		}
		hash, err := middleware.HashToken(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, path, logger); err != nil {
		logger.Error("chorebot stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, path string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenContext(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	loc := cfg.Location()
	st := store.New(db, loc)
	hub := chat.NewHub(logger.With("component", "chat"), inboundBuffer)

	b := bot.New(bot.Options{
		Store:      st,
		Sender:     hub,
		Dispatcher: command.NewDispatcher(command.Registry(cfg.UpcomingWindow), logger.With("component", "command")),
		Messages:   hub.Messages(),
		Window:     loop.Window{Morning: cfg.Morning, Night: cfg.Night},
		Interval:   cfg.TickInterval,
		Location:   loc,
		Logger:     logger.With("component", "bot"),
	})

	srv := server.New(db, st, hub, cfg.APITokenHash, time.Now, logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.Run(ctx)
	})

	g.Go(func() error {
		return srv.RateLimiter().Run(ctx)
	})

	g.Go(func() error {
		watchLogger := logger.With("component", "config")
		err := config.Watch(ctx, path, watchLogger, func(c config.Config) {
			b.SetWindow(loop.Window{Morning: c.Morning, Night: c.Night})
		})
		if err != nil {
			// Hot reload is optional; keep serving without it.
			watchLogger.Warn("config watch disabled", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("chorebot listening", "addr", cfg.Addr, "timezone", loc.String(),
			"morning", cfg.Morning.String(), "night", cfg.Night.String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
