// Command sim plays a batch of games and writes one JSON event per line to the
// simulation log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"the-game/internal/config"
	"the-game/internal/database"
	"the-game/internal/sim"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := cfg.NewLogger()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Simulation did not complete")
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	simCfg := sim.Config{Seed: cfg.Sim.Seed}
	flag.IntVar(&simCfg.Games, "n_games", cfg.Sim.Games, "number of games to simulate")
	flag.StringVar(&simCfg.Strategy, "player_style", cfg.Sim.Strategy, "player strategy: greedy or optimized")
	flag.IntVar(&simCfg.Players, "n_players", cfg.Sim.Players, "players per game")
	flag.IntVar(&simCfg.HandSize, "n_cards", cfg.Sim.HandSize, "cards dealt to each player")
	flag.StringVar(&simCfg.FirstMoveSelection, "first_move_selection", cfg.Sim.FirstMoveSelection, "first_player or optimized")
	flag.IntVar(&simCfg.Workers, "workers", cfg.Sim.Workers, "games played in parallel")
	flag.IntVar(&simCfg.MaxTurns, "max_turns", cfg.Sim.MaxTurns, "turn cap per game, 0 for none")
	seed := flag.Int64("seed", -1, "base deck seed, negative for random")
	logFile := flag.String("log_file", cfg.SimLogFile, "simulation event log")
	save := flag.Bool("save", false, "store outcomes in the results database")
	flag.Parse()

	if *seed >= 0 {
		s := uint64(*seed)
		simCfg.Seed = &s
	}

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open simulation log: %w", err)
	}
	defer f.Close()

	var store sim.ResultStore
	if *save {
		db, err := database.New(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open results database: %w", err)
		}
		defer db.Close()
		store = db
	}

	runner, err := sim.NewRunner(simCfg, sim.NewLogSink(f), store, log)
	if err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"games":               summary.Games,
		"won":                 summary.Won,
		"win_rate":            summary.WinRate,
		"avg_cards_remaining": summary.AvgCardsRemaining,
	}).Info("Done")
	return nil
}
