package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/config"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/resolve"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

var version = "dev" // set via ldflags during build

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    "hogwarts-sim",
		Usage:   "play Hogwarts Battle games headlessly with a random bot",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config/config.yaml", Usage: "path to configuration file"},
			&cli.StringFlag{Name: "year", Usage: "year to play"},
			&cli.StringSliceFlag{Name: "hero", Usage: "hero to seat, repeat for more players"},
			&cli.StringSliceFlag{Name: "proficiency", Usage: "proficiency per hero, in seat order"},
			&cli.Int64Flag{Name: "seed", Usage: "seed of the first game"},
			&cli.IntFlag{Name: "turns", Usage: "give up after this many turns"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "number of games to play concurrently"},
			&cli.BoolFlag{Name: "verify", Usage: "play every finished game back and check it step by step"},
		},
		Action: run,
	}
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "hogwarts-sim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(cmd, &cfg.Sim)

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()
	verify := cmd.Bool("verify")

	logger.Info("starting simulator",
		zap.String("version", version),
		zap.String("year", cfg.Sim.Year),
		zap.Strings("heroes", cfg.Sim.Heroes),
		zap.Int64("seed", cfg.Sim.Seed),
	)

	reg := cards.Open(cfg.Catalog.Dir, logger)
	if err := reg.Err(); err != nil {
		return err
	}
	engine := game.NewEngine(reg, cfg.Rules, logger)

	games := int(cmd.Int("games"))
	if games < 1 {
		games = 1
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	for i := 0; i < games; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			if err := simulate(ctx, engine, reg, cfg.Sim, seed, verify, logger); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
		}(cfg.Sim.Seed + int64(i))
	}
	wg.Wait()
	return errors.Join(failures...)
}

func applyFlags(cmd *cli.Command, sim *config.SimConfig) {
	if cmd.IsSet("year") {
		sim.Year = cmd.String("year")
	}
	if cmd.IsSet("hero") {
		sim.Heroes = cmd.StringSlice("hero")
	}
	if cmd.IsSet("proficiency") {
		sim.Proficiencies = cmd.StringSlice("proficiency")
	}
	if cmd.IsSet("seed") {
		sim.Seed = cmd.Int64("seed")
	}
	if cmd.IsSet("turns") {
		sim.MaxTurns = int(cmd.Int("turns"))
	}
}

func simulate(ctx context.Context, engine *game.Engine, reg *cards.Registry, sim config.SimConfig, seed int64, verify bool, logger *zap.Logger) error {
	var opts []game.Option
	if verify {
		opts = append(opts, game.WithReplay())
	}
	g, err := engine.StartGame(ctx, game.GameConfig{
		Year:          sim.Year,
		Heroes:        sim.Heroes,
		Proficiencies: sim.Proficiencies,
		Seed:          seed,
	}, resolve.NewRandomChooser(seed), opts...)
	if err != nil {
		return err
	}
	log := logger.With(zap.String("game_id", g.ID()), zap.Int64("seed", seed))

	g.SubscribeTyped(rules.EventVillainDefeated, func(evt rules.Event) {
		log.Info("villain defeated", zap.String("villain", evt.CardID), zap.Int("player", evt.Player), zap.Int("turn", g.Turn()))
	})

	playErr := playOut(ctx, g, sim.MaxTurns)
	outcome := g.Outcome()
	stats, err := engine.EndGame(g.ID())
	if err != nil {
		return err
	}
	log.Info("simulation finished",
		zap.String("outcome", outcome.String()),
		zap.Int("turn", g.Turn()),
		zap.Any("stats", stats.Summary()),
	)
	if playErr != nil || !verify {
		return playErr
	}

	rec := g.Replay()
	replayed, err := rec.Play(ctx, reg)
	if err != nil {
		return fmt.Errorf("verify game %s: %w", g.ID(), err)
	}
	log.Info("replay verified",
		zap.Int("steps", rec.Size()),
		zap.String("digest", replayed.Digest()),
	)
	return nil
}

// playOut drives one game with a greedy bot: play everything, attack the first
// villain, buy the cheapest affordable cards, pass.
func playOut(ctx context.Context, g *game.Game, maxTurns int) error {
	for !g.Over() && (maxTurns <= 0 || g.Turn() <= maxTurns) {
		if err := ctx.Err(); err != nil {
			return err
		}
		seat := g.CurrentPlayer()

		var err error
		switch g.Phase() {
		case state.PhasePlayCards:
			err = playHand(ctx, g, seat)
		case state.PhaseAttack:
			err = attackAll(ctx, g, seat)
		case state.PhaseBuy:
			err = buyCheapest(ctx, g, seat)
		}
		if err != nil {
			return err
		}
		if g.Over() {
			break
		}
		if _, err := g.AdvancePhase(ctx); err != nil {
			return err
		}
	}
	return nil
}

func playHand(ctx context.Context, g *game.Game, seat int) error {
	for !g.Over() {
		p, _ := g.Player(seat)
		if len(p.Hand) == 0 {
			return nil
		}
		if _, err := g.PlayCard(ctx, seat, 0); err != nil {
			return err
		}
	}
	return nil
}

func attackAll(ctx context.Context, g *game.Game, seat int) error {
	for !g.Over() {
		p, _ := g.Player(seat)
		if p.Attack < 1 || len(g.Villains()) == 0 {
			return nil
		}
		if _, err := g.Attack(ctx, seat, 0); err != nil {
			return err
		}
	}
	return nil
}

func buyCheapest(ctx context.Context, g *game.Game, seat int) error {
	for !g.Over() {
		p, _ := g.Player(seat)
		market := g.Market()
		slot := -1
		for i, offer := range market {
			if offer.Empty() || offer.Cost > p.Influence {
				continue
			}
			if slot < 0 || offer.Cost < market[slot].Cost {
				slot = i
			}
		}
		if slot < 0 {
			return nil
		}
		if _, err := g.Buy(ctx, seat, slot); err != nil {
			return err
		}
	}
	return nil
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
