package game

import "github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"

// Stats counts what happened over a game.
type Stats struct {
	Turns            int
	CardsPlayed      int
	CardsBought      int
	VillainsDefeated int
	Reveals          int
	DamageTaken      int
	LifeHealed       int
	CardsDiscarded   int
	DarkMarksAdded   int
	DarkMarksRemoved int
	Stuns            int
}

func (s *Stats) track(evt rules.Event) {
	switch evt.Kind {
	case rules.EventTurnStarted:
		s.Turns++
	case rules.EventAllyPlayed, rules.EventItemPlayed, rules.EventSpellPlayed:
		s.CardsPlayed++
	case rules.EventCardBought:
		s.CardsBought++
	case rules.EventVillainDefeated:
		s.VillainsDefeated++
	case rules.EventDarkMarkOrVillainRevealed:
		s.Reveals++
	case rules.EventHeroDamaged:
		s.DamageTaken += evt.Amount
	case rules.EventHeroHealed:
		s.LifeHealed += evt.Amount
	case rules.EventHeroDiscarded:
		s.CardsDiscarded++
	case rules.EventDarkMarkAdded:
		s.DarkMarksAdded += evt.Amount
	case rules.EventDarkMarkRemoved:
		s.DarkMarksRemoved += evt.Amount
	case rules.EventHeroStunned:
		s.Stuns++
	}
}

// Summary renders the counters as a flat map for structured logs.
func (s Stats) Summary() map[string]int {
	return map[string]int{
		"turns":              s.Turns,
		"cards_played":       s.CardsPlayed,
		"cards_bought":       s.CardsBought,
		"villains_defeated":  s.VillainsDefeated,
		"reveals":            s.Reveals,
		"damage_taken":       s.DamageTaken,
		"life_healed":        s.LifeHealed,
		"cards_discarded":    s.CardsDiscarded,
		"dark_marks_added":   s.DarkMarksAdded,
		"dark_marks_removed": s.DarkMarksRemoved,
		"stuns":              s.Stuns,
	}
}

// Stats returns the counters so far.
func (g *Game) Stats() Stats {
	return g.stats
}
