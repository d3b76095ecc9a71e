package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/enzosantiagosrv1245-cell/aula/config"
	"github.com/enzosantiagosrv1245-cell/aula/game"
	"github.com/enzosantiagosrv1245-cell/aula/handlers"
)

// shutdownGrace is how long the shutdown notice gets to reach clients before
// connections are torn down.
const shutdownGrace = 2 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	room := game.NewRoom("main", cfg.Settings(), cfg.MaxPlayers)
	manager := handlers.NewClientManager(logger)
	engine := game.NewEngine(room, manager, logger, cfg.TickRate, cfg.IdleTimeout)
	ws := handlers.NewWebSocket(engine, manager, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", handlers.HandleRoot)
	r.Get("/status", handlers.NewStatusHandler(engine))
	r.Get("/ws", ws.Handle)

	// Serve static files
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started",
			"addr", cfg.Addr(),
			"maxPlayers", cfg.MaxPlayers,
			"tickRate", cfg.TickRate,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		engine.RunBroadcast(ctx)
		return nil
	})
	g.Go(func() error {
		engine.RunSweep(ctx)
		return nil
	})
	g.Go(func() error {
		engine.RunStats(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		engine.AnnounceShutdown()
		time.Sleep(shutdownGrace)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "err", err)
		}
		manager.CloseAll()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
