package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"the-game/internal/config"
	"the-game/internal/database"
	"the-game/internal/server"
	"the-game/internal/sim"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := cfg.NewLogger()
	log.Println("Starting The Game simulation server...")

	db, err := database.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to open results database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(log)
	go hub.Run(ctx)

	defaults := sim.Config{
		Games:              cfg.Sim.Games,
		Players:            cfg.Sim.Players,
		HandSize:           cfg.Sim.HandSize,
		Strategy:           cfg.Sim.Strategy,
		FirstMoveSelection: cfg.Sim.FirstMoveSelection,
		Seed:               cfg.Sim.Seed,
		Workers:            cfg.Sim.Workers,
		MaxTurns:           cfg.Sim.MaxTurns,
	}
	api := server.NewAPI(ctx, db, hub, defaults, log)

	mux := http.NewServeMux()
	server.HandleRoutes(mux, api)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.HTTPAddr).Info("Listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Server failed")
	}
	api.Wait()
	log.Info("Server stopped")
}
