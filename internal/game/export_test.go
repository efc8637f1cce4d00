package game

import "github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"

// StateOf exposes the mutable state to the external tests.
func StateOf(g *Game) *state.Game { return g.state }

// TriggerCount returns the number of live trigger registrations.
func TriggerCount(g *Game) int { return g.exec.Triggers().Len() }
