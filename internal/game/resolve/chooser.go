package resolve

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// ChoiceKind says what a Choice picks among.
type ChoiceKind string

const (
	ChoiceOption  ChoiceKind = "option"
	ChoiceDiscard ChoiceKind = "discard"
	ChoicePlayer  ChoiceKind = "player"
	ChoiceVillain ChoiceKind = "villain"
)

// Choice is a question put to a player mid-resolution. The answer is an index
// into Options.
type Choice struct {
	Kind    ChoiceKind
	Player  int
	Prompt  string
	Options []string
	// Refs maps each option to a player seat, villain slot or hand index.
	Refs []int
}

// Chooser answers choices. ChooseOne handles alternatives and discards,
// ChooseTarget handles hero and villain targets.
type Chooser interface {
	ChooseOne(ctx context.Context, c Choice) (int, error)
	ChooseTarget(ctx context.Context, c Choice) (int, error)
}

// ErrInvalidChoice is returned when a chooser answers outside the options.
var ErrInvalidChoice = errors.New("invalid choice")

// ErrNoAnswer is returned by a ScriptedChooser that ran out of answers.
var ErrNoAnswer = errors.New("no scripted answer left")

func checkAnswer(c Choice, answer int) error {
	if answer < 0 || answer >= len(c.Options) {
		return fmt.Errorf("%w: %s answer %d of %d options", ErrInvalidChoice, c.Kind, answer, len(c.Options))
	}
	return nil
}

// FirstChoice always picks the first option.
type FirstChoice struct{}

func (FirstChoice) ChooseOne(ctx context.Context, _ Choice) (int, error) {
	return 0, ctx.Err()
}

func (FirstChoice) ChooseTarget(ctx context.Context, _ Choice) (int, error) {
	return 0, ctx.Err()
}

// ScriptedChooser replays queued answers in order. Once the queue is empty it
// defers to Fallback, or fails with ErrNoAnswer when there is none.
type ScriptedChooser struct {
	mu       sync.Mutex
	answers  []int
	asked    []Choice
	Fallback Chooser
}

// NewScriptedChooser creates a chooser that answers with the given indices.
func NewScriptedChooser(answers ...int) *ScriptedChooser {
	return &ScriptedChooser{answers: answers}
}

// Push queues more answers.
func (s *ScriptedChooser) Push(answers ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answers...)
}

// Asked returns the choices seen so far.
func (s *ScriptedChooser) Asked() []Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Choice(nil), s.asked...)
}

func (s *ScriptedChooser) next(ctx context.Context, c Choice, target bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.asked = append(s.asked, c)
	if len(s.answers) > 0 {
		answer := s.answers[0]
		s.answers = s.answers[1:]
		s.mu.Unlock()
		return answer, nil
	}
	fallback := s.Fallback
	s.mu.Unlock()

	if fallback == nil {
		return 0, fmt.Errorf("%w: %s for player %d", ErrNoAnswer, c.Kind, c.Player)
	}
	if target {
		return fallback.ChooseTarget(ctx, c)
	}
	return fallback.ChooseOne(ctx, c)
}

func (s *ScriptedChooser) ChooseOne(ctx context.Context, c Choice) (int, error) {
	return s.next(ctx, c, false)
}

func (s *ScriptedChooser) ChooseTarget(ctx context.Context, c Choice) (int, error) {
	return s.next(ctx, c, true)
}

// RandomChooser picks uniformly with its own seeded source.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser creates a random chooser seeded with seed.
func NewRandomChooser(seed int64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomChooser) pick(ctx context.Context, c Choice) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(c.Options) == 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(len(c.Options)), nil
}

func (r *RandomChooser) ChooseOne(ctx context.Context, c Choice) (int, error) {
	return r.pick(ctx, c)
}

func (r *RandomChooser) ChooseTarget(ctx context.Context, c Choice) (int, error) {
	return r.pick(ctx, c)
}
