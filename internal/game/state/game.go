package state

import (
	"math/rand"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
)

// Phase is a step of a hero's turn.
type Phase string

const (
	PhaseDarkArts  Phase = "dark_arts"
	PhaseVillains  Phase = "villains"
	PhaseHorcrux   Phase = "horcrux"
	PhasePlayCards Phase = "play_cards"
	PhaseAttack    Phase = "attack"
	PhaseBuy       Phase = "buy"
	PhaseEndTurn   Phase = "end_turn"
	PhaseGameOver  Phase = "game_over"
)

func (p Phase) String() string { return string(p) }

// PlayerDriven reports whether the phase waits for player actions.
func (p Phase) PlayerDriven() bool {
	return p == PhasePlayCards || p == PhaseAttack || p == PhaseBuy
}

// Outcome is the result of a game.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	}
	return "none"
}

// Setup lists everything needed to lay out a new game.
type Setup struct {
	Year       *cards.Year
	Players    []*Player
	Location   *cards.Card
	Shop       []*CardInstance
	Villains   []*CardInstance
	DarkArts   []*CardInstance
	Horcruxes  []*CardInstance
	MarketSize int
	HandSize   int
	Seed       int64
	KeepOrder  bool
}

// Game is the shared mutable state of one game.
type Game struct {
	Year     *cards.Year
	Players  []*Player
	Current  int
	Phase    Phase
	Turn     int
	HandSize int

	Market          *Market
	Villains        []*Villain
	VillainDeck     *Pile
	DarkArtsDeck    *Pile
	DarkArtsDiscard *Pile
	Horcruxes       []*CardInstance
	Location        *Location

	MaxVillains int

	outcome   Outcome
	rng       *rand.Rand
	keepOrder bool
}

// New lays out a game: piles are shuffled unless KeepOrder is set, the market
// is filled and every hero draws an opening hand.
func New(s Setup) *Game {
	g := &Game{
		Year:            s.Year,
		Players:         s.Players,
		Phase:           PhaseDarkArts,
		Turn:            1,
		HandSize:        s.HandSize,
		VillainDeck:     NewPile(s.Villains...),
		DarkArtsDeck:    NewPile(s.DarkArts...),
		DarkArtsDiscard: NewPile(),
		Horcruxes:       s.Horcruxes,
		Location:        NewLocation(s.Location),
		MaxVillains:     s.Year.ActiveVillains(),
		rng:             rand.New(rand.NewSource(s.Seed)),
		keepOrder:       s.KeepOrder,
	}
	if g.HandSize <= 0 {
		g.HandSize = 5
	}
	shop := NewPile(s.Shop...)
	g.Shuffle(shop)
	g.Shuffle(g.VillainDeck)
	g.Shuffle(g.DarkArtsDeck)
	g.Market = NewMarket(s.MarketSize, shop)

	for _, p := range g.Players {
		g.Shuffle(p.Deck)
		p.DrawCards(g.HandSize, g.Shuffle)
	}
	return g
}

// Shuffle permutes a pile with the game's seeded source, unless the game keeps order.
func (g *Game) Shuffle(p *Pile) {
	if g.keepOrder {
		return
	}
	p.Shuffle(g.rng)
}

// Roll returns a uniform face index in [0, faces).
func (g *Game) Roll(faces int) int {
	if faces <= 1 {
		return 0
	}
	return g.rng.Intn(faces)
}

// CurrentPlayer returns the hero whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	return g.Players[g.Current]
}

// PlayerAt returns the player at index i.
func (g *Game) PlayerAt(i int) (*Player, bool) {
	if i < 0 || i >= len(g.Players) {
		return nil, false
	}
	return g.Players[i], true
}

// NextIndex returns the seat after i.
func (g *Game) NextIndex(i int) int {
	return (i + 1) % len(g.Players)
}

// DrawDarkArts reveals the top dark arts card, reshuffling the discard when the deck is empty.
func (g *Game) DrawDarkArts() (*CardInstance, bool) {
	if g.DarkArtsDeck.Empty() {
		g.DarkArtsDeck.Add(g.DarkArtsDiscard.TakeAll()...)
		g.Shuffle(g.DarkArtsDeck)
	}
	return g.DarkArtsDeck.Draw()
}

// RevealVillains fills the active villain slots from the villain deck and
// returns the newly revealed villains.
func (g *Game) RevealVillains() []*Villain {
	var revealed []*Villain
	for len(g.Villains) < g.MaxVillains {
		c, ok := g.VillainDeck.Draw()
		if !ok {
			break
		}
		v := NewVillain(c)
		g.Villains = append(g.Villains, v)
		revealed = append(revealed, v)
	}
	return revealed
}

// Villain returns the active villain in slot i.
func (g *Game) Villain(i int) (*Villain, bool) {
	if i < 0 || i >= len(g.Villains) {
		return nil, false
	}
	return g.Villains[i], true
}

// RemoveVillain takes the villain in slot i out of play.
func (g *Game) RemoveVillain(i int) (*Villain, bool) {
	v, ok := g.Villain(i)
	if !ok {
		return nil, false
	}
	g.Villains = append(g.Villains[:i:i], g.Villains[i+1:]...)
	return v, true
}

// VillainSlot returns the slot of the villain instance with the given id, or -1.
func (g *Game) VillainSlot(id string) int {
	for i, v := range g.Villains {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// AllVillainsDefeated reports whether no villain is active or left to reveal.
func (g *Game) AllVillainsDefeated() bool {
	return len(g.Villains) == 0 && g.VillainDeck.Empty()
}

// Outcome returns the decided result, or OutcomeNone.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// Over reports whether the outcome is decided.
func (g *Game) Over() bool {
	return g.outcome != OutcomeNone
}

// Conclude records the outcome. Only the first call has an effect; it reports
// whether this call decided the game.
func (g *Game) Conclude(o Outcome) bool {
	if g.outcome != OutcomeNone || o == OutcomeNone {
		return false
	}
	g.outcome = o
	return true
}
