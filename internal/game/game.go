package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/config"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/resolve"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

// GameConfig selects the year, the heroes and optional overrides for a new game.
type GameConfig struct {
	Year   string
	Heroes []string
	// Proficiencies is parallel to Heroes. Entries are ignored unless the year
	// enables proficiencies; an empty entry leaves that hero without one.
	Proficiencies []string
	Seed          int64
	// KeepOrder disables every shuffle, so piles keep the order given.
	KeepOrder bool

	// Overrides replace the year pools; the first entry is the top of the pile.
	DarkArts []string
	Villains []string
	Shop     []string
	Location string
}

// Result reports the game after an accepted action, with the events it raised.
type Result struct {
	Phase   state.Phase
	Turn    int
	Current int
	Outcome state.Outcome
	Events  []rules.Event
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the game logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithChooser sets the capability that answers choices during resolution.
func WithChooser(c resolve.Chooser) Option {
	return func(g *Game) {
		if c != nil {
			g.chooser = c
		}
	}
}

// WithRules overrides the rule constants.
func WithRules(r config.RulesConfig) Option {
	return func(g *Game) {
		g.rules = r
	}
}

// Game is one running game. Actions are serialized: while one resolves,
// including while it waits on the chooser, any other action is rejected.
type Game struct {
	id      string
	logger  *zap.Logger
	chooser resolve.Chooser
	rules   config.RulesConfig

	state    *state.Game
	machine  *rules.PhaseMachine
	bus      *rules.EventBus
	triggers *rules.TriggerRegistry
	exec     *resolve.Executor

	mu      sync.Mutex
	busy    bool
	pending []rules.Event
	stats   Stats

	recording bool
	recorder  *recordingChooser
	replay    *Replay
}

// NewGame lays out a game from the registry and plays the automatic phases of
// the first turn, stopping at the first hero's PlayCards phase.
func NewGame(ctx context.Context, reg *cards.Registry, cfg GameConfig, opts ...Option) (*Game, error) {
	g := &Game{
		id:      uuid.NewString(),
		logger:  zap.NewNop(),
		chooser: resolve.FirstChoice{},
		rules:   config.Default().Rules,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rules = withRuleDefaults(g.rules)
	g.logger = g.logger.With(zap.String("game_id", g.id))
	if g.recording {
		g.recorder = &recordingChooser{inner: g.chooser}
		g.chooser = g.recorder
	}

	if reg == nil {
		return nil, errors.New("card registry is required")
	}
	if err := reg.Err(); err != nil {
		return nil, err
	}
	setup, proficiencies, err := g.buildSetup(reg, cfg)
	if err != nil {
		return nil, err
	}

	g.state = state.New(setup)
	g.machine = rules.NewPhaseMachine(setup.Year.Mechanics.Horcruxes, g.logger)
	g.bus = rules.NewEventBus()
	g.triggers = rules.NewTriggerRegistry()
	g.exec = resolve.NewExecutor(resolve.Config{
		Bus:      g.bus,
		Triggers: g.triggers,
		Chooser:  g.chooser,
		Dice:     reg,
		MaxDepth: g.rules.MaxTriggerDepth,
		Logger:   g.logger,
	})
	g.bus.Subscribe(g.record)

	for i, prof := range proficiencies {
		if prof == nil {
			continue
		}
		g.state.Players[i].Proficiency = prof
		g.exec.Bind(uuid.NewString(), i, prof.Triggers, effects.DurationPermanent)
	}

	g.logger.Info("game created",
		zap.String("year", setup.Year.ID),
		zap.Strings("heroes", cfg.Heroes),
		zap.String("location", setup.Location.ID),
		zap.Int64("seed", cfg.Seed),
	)

	if err := g.exec.RevealVillains(ctx, g.state); err != nil {
		return nil, fmt.Errorf("reveal villains: %w", err)
	}
	g.notify(rules.EventTurnStarted, g.state.Current)
	if err := g.runAutomatic(ctx); err != nil {
		return nil, err
	}
	if g.recording {
		g.replay = &Replay{
			GameID:      g.id,
			Config:      cfg,
			Rules:       g.rules,
			Setup:       g.recorder.drain(),
			SetupDigest: g.state.Digest(),
		}
	}
	g.pending = nil
	return g, nil
}

func (g *Game) buildSetup(reg *cards.Registry, cfg GameConfig) (state.Setup, []*cards.Proficiency, error) {
	year, err := reg.Year(cfg.Year)
	if err != nil {
		return state.Setup{}, nil, err
	}
	if len(cfg.Heroes) == 0 {
		return state.Setup{}, nil, errors.New("at least one hero is required")
	}

	players := make([]*state.Player, len(cfg.Heroes))
	proficiencies := make([]*cards.Proficiency, len(cfg.Heroes))
	for i, id := range cfg.Heroes {
		hero, err := reg.Hero(id)
		if err != nil {
			return state.Setup{}, nil, err
		}
		deck, err := reg.Cards(hero.StartingDeck)
		if err != nil {
			return state.Setup{}, nil, fmt.Errorf("hero %s: %w", id, err)
		}
		players[i] = state.NewPlayer(i, hero, state.NewInstances(deck))

		if i >= len(cfg.Proficiencies) || cfg.Proficiencies[i] == "" {
			continue
		}
		if !year.Mechanics.Proficiencies {
			g.logger.Warn("proficiencies are not used this year",
				zap.String("year", year.ID), zap.String("proficiency", cfg.Proficiencies[i]))
			continue
		}
		if proficiencies[i], err = reg.Proficiency(cfg.Proficiencies[i]); err != nil {
			return state.Setup{}, nil, err
		}
	}

	villains, err := reg.Cards(pool(cfg.Villains, year.Villains))
	if err != nil {
		return state.Setup{}, nil, fmt.Errorf("villains: %w", err)
	}
	darkArts, err := reg.Cards(pool(cfg.DarkArts, year.DarkArts))
	if err != nil {
		return state.Setup{}, nil, fmt.Errorf("dark arts: %w", err)
	}
	shop, err := reg.Cards(pool(cfg.Shop, year.Shop))
	if err != nil {
		return state.Setup{}, nil, fmt.Errorf("shop: %w", err)
	}

	locationID := cfg.Location
	if locationID == "" {
		if len(year.Locations) == 0 {
			return state.Setup{}, nil, fmt.Errorf("year %s has no locations", year.ID)
		}
		locationID = year.Locations[0]
	}
	location, err := reg.Card(locationID)
	if err != nil {
		return state.Setup{}, nil, err
	}
	if location.Kind != cards.KindLocation {
		return state.Setup{}, nil, fmt.Errorf("card %s is a %s, not a location", location.ID, location.Kind)
	}

	var horcruxes []*cards.Card
	if year.Mechanics.Horcruxes {
		if horcruxes, err = reg.Cards(year.Horcruxes); err != nil {
			return state.Setup{}, nil, fmt.Errorf("horcruxes: %w", err)
		}
	}

	return state.Setup{
		Year:       year,
		Players:    players,
		Location:   location,
		Shop:       state.NewInstances(shop),
		Villains:   state.NewInstances(villains),
		DarkArts:   state.NewInstances(darkArts),
		Horcruxes:  state.NewInstances(horcruxes),
		MarketSize: g.rules.MarketSize,
		HandSize:   g.rules.HandSize,
		Seed:       cfg.Seed,
		KeepOrder:  cfg.KeepOrder,
	}, proficiencies, nil
}

func withRuleDefaults(r config.RulesConfig) config.RulesConfig {
	def := config.Default().Rules
	if r.HandSize <= 0 {
		r.HandSize = def.HandSize
	}
	if r.MarketSize <= 0 {
		r.MarketSize = def.MarketSize
	}
	if r.MaxTriggerDepth <= 0 {
		r.MaxTriggerDepth = def.MaxTriggerDepth
	}
	return r
}

func pool(override, year []string) []string {
	if len(override) > 0 {
		return override
	}
	return year
}

// ID returns the game's unique id.
func (g *Game) ID() string { return g.id }

// begin claims the game for one action.
func (g *Game) begin(action string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return reject(action, ErrBusy, "")
	}
	g.busy = true
	g.pending = nil
	return nil
}

func (g *Game) end() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
}

func (g *Game) result() Result {
	return Result{
		Phase:   g.state.Phase,
		Turn:    g.state.Turn,
		Current: g.state.Current,
		Outcome: g.state.Outcome(),
		Events:  g.pending,
	}
}

// rejected logs a refused action and returns it without events.
func (g *Game) rejected(err *InvalidActionError) (Result, error) {
	g.logger.Debug("action rejected", zap.String("action", err.Action), zap.Error(err))
	res := g.result()
	res.Events = nil
	return res, err
}

// check validates the common preconditions of a hero action.
func (g *Game) check(action string, player int, phase state.Phase) *InvalidActionError {
	st := g.state
	if st.Over() {
		return reject(action, ErrGameOver, "outcome %s", st.Outcome())
	}
	if _, ok := st.PlayerAt(player); !ok {
		return reject(action, ErrOutOfRange, "player %d of %d", player, len(st.Players))
	}
	if st.Phase != phase {
		return reject(action, ErrWrongPhase, "%s is not allowed during %s", action, st.Phase)
	}
	if player != st.Current {
		return reject(action, ErrNotYourTurn, "player %d acted on player %d's turn", player, st.Current)
	}
	return nil
}

func (g *Game) notify(kind rules.EventKind, player int) {
	evt := rules.NewEvent(kind, player)
	evt.Phase = g.state.Phase
	evt.Turn = g.state.Turn
	g.bus.Publish(evt)
}

func (g *Game) record(evt rules.Event) {
	g.pending = append(g.pending, evt)
	g.stats.track(evt)
}
