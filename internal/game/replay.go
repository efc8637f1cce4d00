package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/config"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/resolve"
)

// ReplayStep is one accepted action with the chooser answers it consumed and
// the state digest right after it.
type ReplayStep struct {
	Action  string
	Player  int
	Index   int
	Answers []int
	Failed  bool
	Digest  string
}

// Replay is the action log of a game. Played back against the same catalog it
// rebuilds the game step by step, checking the digest after every action.
type Replay struct {
	GameID      string
	Config      GameConfig
	Rules       config.RulesConfig
	Setup       []int
	SetupDigest string
	Steps       []ReplayStep

	mu sync.RWMutex
}

// ReplayMismatchError reports a playback that diverged from the recording.
// Step is -1 when the game already differed right after setup.
type ReplayMismatchError struct {
	Step int
	Want string
	Got  string
}

func (e *ReplayMismatchError) Error() string {
	return fmt.Sprintf("replay diverged at step %d: digest %s, recorded %s", e.Step, e.Got, e.Want)
}

// Size returns the number of recorded steps.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Steps)
}

// StepAt returns the step at index.
func (r *Replay) StepAt(index int) (ReplayStep, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.Steps) {
		return ReplayStep{}, false
	}
	return r.Steps[index], true
}

func (r *Replay) record(step ReplayStep) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps = append(r.Steps, step)
}

func (r *Replay) clone() *Replay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Replay{
		GameID:      r.GameID,
		Config:      r.Config,
		Rules:       r.Rules,
		Setup:       append([]int(nil), r.Setup...),
		SetupDigest: r.SetupDigest,
		Steps:       append([]ReplayStep(nil), r.Steps...),
	}
}

// Play rebuilds the recorded game from reg. It returns the game as far as it
// got, with a *ReplayMismatchError if any digest differs.
func (r *Replay) Play(ctx context.Context, reg *cards.Registry, opts ...Option) (*Game, error) {
	rec := r.clone()
	script := resolve.NewScriptedChooser(rec.Setup...)
	opts = append(opts, WithRules(rec.Rules), WithChooser(script))

	g, err := NewGame(ctx, reg, rec.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("replay setup: %w", err)
	}
	if got := g.Digest(); got != rec.SetupDigest {
		return g, &ReplayMismatchError{Step: -1, Want: rec.SetupDigest, Got: got}
	}

	for i, step := range rec.Steps {
		script.Push(step.Answers...)
		_, err := g.apply(ctx, step)
		if err != nil && !step.Failed {
			return g, fmt.Errorf("replay step %d (%s): %w", i, step.Action, err)
		}
		if got := g.Digest(); got != step.Digest {
			return g, &ReplayMismatchError{Step: i, Want: step.Digest, Got: got}
		}
	}
	return g, nil
}

func (g *Game) apply(ctx context.Context, step ReplayStep) (Result, error) {
	switch step.Action {
	case actionPlayCard:
		return g.PlayCard(ctx, step.Player, step.Index)
	case actionAttack:
		return g.Attack(ctx, step.Player, step.Index)
	case actionBuy:
		return g.Buy(ctx, step.Player, step.Index)
	case actionAdvance:
		return g.AdvancePhase(ctx)
	}
	return Result{}, fmt.Errorf("unknown replay action %q", step.Action)
}

// recordingChooser passes choices through and remembers the answers until
// the current step is logged.
type recordingChooser struct {
	inner resolve.Chooser

	mu      sync.Mutex
	answers []int
}

func (c *recordingChooser) ChooseOne(ctx context.Context, choice resolve.Choice) (int, error) {
	answer, err := c.inner.ChooseOne(ctx, choice)
	if err == nil {
		c.keep(answer)
	}
	return answer, err
}

func (c *recordingChooser) ChooseTarget(ctx context.Context, choice resolve.Choice) (int, error) {
	answer, err := c.inner.ChooseTarget(ctx, choice)
	if err == nil {
		c.keep(answer)
	}
	return answer, err
}

func (c *recordingChooser) keep(answer int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, answer)
}

func (c *recordingChooser) drain() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.answers
	c.answers = nil
	return out
}

// WithReplay records every accepted action so the game can be played back.
func WithReplay() Option {
	return func(g *Game) {
		g.recording = true
	}
}

// Replay returns a copy of the action log, or nil when the game was created
// without WithReplay.
func (g *Game) Replay() *Replay {
	if g.replay == nil {
		return nil
	}
	return g.replay.clone()
}

func (g *Game) logStep(action string, player, index int, err error) {
	if g.replay == nil {
		return
	}
	g.replay.record(ReplayStep{
		Action:  action,
		Player:  player,
		Index:   index,
		Answers: g.recorder.drain(),
		Failed:  err != nil,
		Digest:  g.state.Digest(),
	})
}
