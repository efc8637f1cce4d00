package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/config"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/resolve"
)

// Engine hosts any number of independent games over one card registry.
// Games share nothing but the read-only registry, so different games may be
// driven from different goroutines.
type Engine struct {
	logger   *zap.Logger
	registry *cards.Registry
	rules    config.RulesConfig

	mu    sync.RWMutex
	games map[string]*Game
}

// NewEngine creates an engine that builds games from reg.
func NewEngine(reg *cards.Registry, rules config.RulesConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:   logger,
		registry: reg,
		rules:    rules,
		games:    make(map[string]*Game),
	}
}

// StartGame creates a game and keeps it under its id. Extra options are
// applied after the engine's own.
func (e *Engine) StartGame(ctx context.Context, cfg GameConfig, chooser resolve.Chooser, opts ...Option) (*Game, error) {
	opts = append([]Option{WithLogger(e.logger), WithRules(e.rules), WithChooser(chooser)}, opts...)
	g, err := NewGame(ctx, e.registry, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}

	e.mu.Lock()
	e.games[g.ID()] = g
	e.mu.Unlock()
	return g, nil
}

// Game returns the game with the given id.
func (e *Engine) Game(id string) (*Game, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s not found", id)
	}
	return g, nil
}

// EndGame forgets a game. It reports the final stats.
func (e *Engine) EndGame(id string) (Stats, error) {
	e.mu.Lock()
	g, ok := e.games[id]
	delete(e.games, id)
	e.mu.Unlock()
	if !ok {
		return Stats{}, fmt.Errorf("game %s not found", id)
	}
	e.logger.Info("game ended",
		zap.String("game_id", id),
		zap.String("outcome", g.Outcome().String()),
		zap.Int("turn", g.Turn()),
	)
	return g.Stats(), nil
}

// Games lists the ids of the hosted games in order.
func (e *Engine) Games() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
