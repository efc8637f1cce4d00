package targeting

import (
	"fmt"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

// Scope says whether target indices refer to player seats or villain slots.
type Scope string

const (
	// ScopePlayer targets heroes by seat index
	ScopePlayer Scope = "PLAYER"
	// ScopeVillain targets active villains by slot index
	ScopeVillain Scope = "VILLAIN"
)

// TargetRequirement defines how many targets a chooser must pick.
type TargetRequirement struct {
	// Scope specifies what kind of target is required
	Scope Scope
	// MinTargets is the minimum number of targets required
	MinTargets int
	// MaxTargets is the maximum number of targets allowed
	MaxTargets int
	// Description is a human-readable description of the requirement
	Description string
}

// Resolution is the outcome of resolving an effect target.
// Either Fixed holds the final targets, or Requirement is set and the
// targets must be picked from Candidates.
type Resolution struct {
	Scope       Scope
	Fixed       []int
	Candidates  []int
	Requirement *TargetRequirement
}

// NeedsChoice reports whether a chooser has to pick the targets.
func (r Resolution) NeedsChoice() bool {
	return r.Requirement != nil
}

// Empty reports whether nothing can be targeted.
func (r Resolution) Empty() bool {
	return len(r.Fixed) == 0 && len(r.Candidates) == 0
}

// Resolve computes the target set of an effect for the acting player.
// An empty target defaults to self, or to the chosen villain for villain kinds.
func Resolve(g *state.Game, actor int, kind effects.Kind, target effects.Target, picks int) Resolution {
	if target == "" {
		target = effects.TargetSelf
		if kind.TargetsVillains() {
			target = effects.TargetChosenVillain
		}
	}

	switch target {
	case effects.TargetSelf:
		return players(seatIf(g, actor))
	case effects.TargetActive:
		return players(seatIf(g, g.Current))
	case effects.TargetNext:
		return players(seatIf(g, g.NextIndex(actor)))
	case effects.TargetAll:
		return players(allSeats(g, state.NoPlayer))
	case effects.TargetOthers:
		return players(allSeats(g, actor))
	case effects.TargetChosen:
		return choose(ScopePlayer, allSeats(g, state.NoPlayer), picks, "choose a hero")
	case effects.TargetAllVillains:
		return Resolution{Scope: ScopeVillain, Fixed: allSlots(g)}
	case effects.TargetChosenVillain:
		return choose(ScopeVillain, allSlots(g), picks, "choose a villain")
	}
	return Resolution{Scope: ScopePlayer}
}

func players(seats []int) Resolution {
	return Resolution{Scope: ScopePlayer, Fixed: seats}
}

func choose(scope Scope, candidates []int, picks int, desc string) Resolution {
	res := Resolution{Scope: scope}
	if len(candidates) == 0 {
		return res
	}
	if picks <= 0 {
		picks = 1
	}
	if picks > len(candidates) {
		picks = len(candidates)
	}
	// A single candidate needs no question.
	if len(candidates) == 1 {
		res.Fixed = candidates
		return res
	}
	res.Candidates = candidates
	res.Requirement = &TargetRequirement{
		Scope:       scope,
		MinTargets:  picks,
		MaxTargets:  picks,
		Description: fmt.Sprintf("%s (%d)", desc, picks),
	}
	return res
}

func seatIf(g *state.Game, seat int) []int {
	if _, ok := g.PlayerAt(seat); !ok {
		return nil
	}
	return []int{seat}
}

func allSeats(g *state.Game, except int) []int {
	seats := make([]int, 0, len(g.Players))
	for i := range g.Players {
		if i != except {
			seats = append(seats, i)
		}
	}
	return seats
}

func allSlots(g *state.Game) []int {
	slots := make([]int, len(g.Villains))
	for i := range slots {
		slots[i] = i
	}
	return slots
}
