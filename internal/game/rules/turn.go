package rules

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

const (
	eventAdvance  = "advance"
	eventConclude = "conclude"
)

// baseTurnSequence is the default turn structure without the horcrux phase
var baseTurnSequence = []state.Phase{
	state.PhaseDarkArts,
	state.PhaseVillains,
	state.PhasePlayCards,
	state.PhaseAttack,
	state.PhaseBuy,
	state.PhaseEndTurn,
}

// buildTurnSequence creates the turn sequence, inserting PhaseHorcrux after
// the villains phase if withHorcrux is true
func buildTurnSequence(withHorcrux bool) []state.Phase {
	sequence := make([]state.Phase, 0, len(baseTurnSequence)+1)
	for _, p := range baseTurnSequence {
		sequence = append(sequence, p)
		if withHorcrux && p == state.PhaseVillains {
			sequence = append(sequence, state.PhaseHorcrux)
		}
	}
	return sequence
}

// PhaseMachine drives the fixed phase cycle of a turn. Each phase has exactly
// one successor; the only other transition is the conclude interrupt into
// PhaseGameOver.
type PhaseMachine struct {
	machine  *fsm.FSM
	sequence []state.Phase
	next     map[state.Phase]state.Phase
}

// NewPhaseMachine builds the transition table, starting at PhaseDarkArts.
func NewPhaseMachine(withHorcrux bool, logger *zap.Logger) *PhaseMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	sequence := buildTurnSequence(withHorcrux)
	next := make(map[state.Phase]state.Phase, len(sequence))

	events := make(fsm.Events, 0, len(sequence)+1)
	live := make([]string, 0, len(sequence))
	for i, p := range sequence {
		succ := sequence[(i+1)%len(sequence)]
		next[p] = succ
		events = append(events, fsm.EventDesc{Name: eventAdvance, Src: []string{string(p)}, Dst: string(succ)})
		live = append(live, string(p))
	}
	events = append(events, fsm.EventDesc{Name: eventConclude, Src: live, Dst: string(state.PhaseGameOver)})

	machine := fsm.NewFSM(string(state.PhaseDarkArts), events, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			logger.Debug("phase changed", zap.String("from", e.Src), zap.String("to", e.Dst), zap.String("event", e.Event))
		},
	})

	return &PhaseMachine{machine: machine, sequence: sequence, next: next}
}

// Current returns the phase in progress.
func (pm *PhaseMachine) Current() state.Phase {
	return state.Phase(pm.machine.Current())
}

// Sequence returns the phases of one turn in order.
func (pm *PhaseMachine) Sequence() []state.Phase {
	out := make([]state.Phase, len(pm.sequence))
	copy(out, pm.sequence)
	return out
}

// Successor returns the phase that follows p, if p is part of the cycle.
func (pm *PhaseMachine) Successor(p state.Phase) (state.Phase, bool) {
	succ, ok := pm.next[p]
	return succ, ok
}

// Advance moves to the successor of the current phase.
func (pm *PhaseMachine) Advance(ctx context.Context) (state.Phase, error) {
	if err := pm.machine.Event(ctx, eventAdvance); err != nil {
		return pm.Current(), fmt.Errorf("advance from %s: %w", pm.Current(), err)
	}
	return pm.Current(), nil
}

// Conclude forces PhaseGameOver. It reports false when the game was already over.
func (pm *PhaseMachine) Conclude(ctx context.Context) bool {
	if !pm.machine.Can(eventConclude) {
		return false
	}
	return pm.machine.Event(ctx, eventConclude) == nil
}

// Over reports whether the machine reached PhaseGameOver.
func (pm *PhaseMachine) Over() bool {
	return pm.Current() == state.PhaseGameOver
}
