package state

import (
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
)

// Restriction is an effect kind that forbids an action while in force.
type Restriction = effects.Kind

// Player is one hero at the table.
type Player struct {
	Index       int
	Hero        *cards.Hero
	Proficiency *cards.Proficiency

	Life    int
	MaxLife int

	Deck    *Pile
	Hand    *Pile
	Discard *Pile

	Influence int
	Attack    int

	// Per-turn counters, zeroed at end of turn.
	AlliesPlayed []*CardInstance
	SpellsPlayed int
	ItemsPlayed  int

	Stunned bool

	restrictions map[Restriction]effects.Duration
}

// NewPlayer creates a hero at full life with deck as the draw pile.
func NewPlayer(index int, hero *cards.Hero, deck []*CardInstance) *Player {
	return &Player{
		Index:        index,
		Hero:         hero,
		Life:         hero.Life(),
		MaxLife:      hero.Life(),
		Deck:         NewPile(deck...),
		Hand:         NewPile(),
		Discard:      NewPile(),
		restrictions: make(map[Restriction]effects.Duration),
	}
}

// Name returns the hero's display name.
func (p *Player) Name() string {
	return p.Hero.Name
}

// LoseLife lowers life, never below zero, and returns the amount lost.
func (p *Player) LoseLife(n int) int {
	if n <= 0 || p.Stunned {
		return 0
	}
	if n > p.Life {
		n = p.Life
	}
	p.Life -= n
	return n
}

// GainLife raises life, never above MaxLife, and returns the amount gained.
// Stunned heroes and heroes under prevent_heal gain nothing.
func (p *Player) GainLife(n int) int {
	if n <= 0 || p.Stunned || p.Restricted(effects.KindPreventHeal) {
		return 0
	}
	if room := p.MaxLife - p.Life; n > room {
		n = room
	}
	p.Life += n
	return n
}

// Restrict puts a prevent_* restriction in force for the given duration.
func (p *Player) Restrict(kind Restriction, d effects.Duration) {
	if cur, ok := p.restrictions[kind]; ok && cur == effects.DurationPermanent {
		return
	}
	p.restrictions[kind] = d
}

// Restricted reports whether a restriction is in force.
func (p *Player) Restricted(kind Restriction) bool {
	_, ok := p.restrictions[kind]
	return ok
}

// ClearTurnRestrictions lifts every restriction that lasts until end of turn.
func (p *Player) ClearTurnRestrictions() {
	for kind, d := range p.restrictions {
		if d != effects.DurationPermanent {
			delete(p.restrictions, kind)
		}
	}
}

// DrawCards moves up to n cards from the deck to the hand, reshuffling the
// discard pile into the deck when it runs out. shuffle may be nil.
func (p *Player) DrawCards(n int, shuffle func(*Pile)) int {
	drawn := 0
	for drawn < n {
		if p.Deck.Empty() {
			if p.Discard.Empty() {
				break
			}
			p.Deck.Add(p.Discard.TakeAll()...)
			if shuffle != nil {
				shuffle(p.Deck)
			}
		}
		c, _ := p.Deck.Draw()
		p.Hand.Add(c)
		drawn++
	}
	return drawn
}

// DiscardAt moves the hand card at index i to the discard pile.
func (p *Player) DiscardAt(i int) (*CardInstance, bool) {
	c, ok := p.Hand.RemoveAt(i)
	if !ok {
		return nil, false
	}
	p.Discard.Add(c)
	return c, true
}

// DiscardHand moves the whole hand to the discard pile.
func (p *Player) DiscardHand() int {
	hand := p.Hand.TakeAll()
	p.Discard.Add(hand...)
	return len(hand)
}

// ResetTurn zeroes tokens and per-turn counters.
func (p *Player) ResetTurn() {
	p.Influence = 0
	p.Attack = 0
	p.AlliesPlayed = nil
	p.SpellsPlayed = 0
	p.ItemsPlayed = 0
}

// CountPlayed records a played card in the per-turn counters.
func (p *Player) CountPlayed(c *CardInstance) {
	switch c.Card.Kind {
	case cards.KindAlly:
		p.AlliesPlayed = append(p.AlliesPlayed, c)
	case cards.KindSpell:
		p.SpellsPlayed++
	case cards.KindItem:
		p.ItemsPlayed++
	}
}

// Revive ends a stun and restores full life.
func (p *Player) Revive() {
	p.Stunned = false
	p.Life = p.MaxLife
}

// CardCount is the number of cards the player owns across deck, hand and discard.
func (p *Player) CardCount() int {
	return p.Deck.Len() + p.Hand.Len() + p.Discard.Len()
}
