package game

import (
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

// CardView is a read-only copy of a card instance. An empty market slot has
// a zero CardView.
type CardView struct {
	InstanceID  string
	ID          string
	Name        string
	Kind        cards.Kind
	Class       string
	Cost        int
	Description string
	Image       string
}

// Empty reports whether the view stands for an empty slot.
func (c CardView) Empty() bool { return c.ID == "" }

// PlayerView is a read-only copy of a hero's public and private state.
type PlayerView struct {
	Index        int
	HeroID       string
	Name         string
	Proficiency  string
	Life         int
	MaxLife      int
	Influence    int
	Attack       int
	Stunned      bool
	Hand         []CardView
	DeckSize     int
	DiscardSize  int
	AlliesPlayed int
	SpellsPlayed int
	ItemsPlayed  int
}

// VillainView is a read-only copy of an active villain.
type VillainView struct {
	CardView
	Life       int
	Damage     int
	BlockedFor int
}

// LocationView is a read-only copy of the current location.
type LocationView struct {
	ID           string
	Name         string
	DarkMarks    int
	MaxDarkMarks int
}

// GameView is a snapshot of the whole board for rendering.
type GameView struct {
	ID        string
	Year      string
	Turn      int
	Phase     state.Phase
	Current   int
	Outcome   state.Outcome
	Players   []PlayerView
	Market    []CardView
	ShopSize  int
	Villains  []VillainView
	Location  LocationView
	Horcruxes []CardView
}

func cardView(c *state.CardInstance) CardView {
	if c == nil {
		return CardView{}
	}
	return CardView{
		InstanceID:  c.ID,
		ID:          c.Card.ID,
		Name:        c.Card.Name,
		Kind:        c.Card.Kind,
		Class:       c.Card.Class,
		Cost:        c.Card.Cost,
		Description: c.Card.Description,
		Image:       c.Card.Image,
	}
}

func cardViews(list []*state.CardInstance) []CardView {
	out := make([]CardView, len(list))
	for i, c := range list {
		out[i] = cardView(c)
	}
	return out
}

func playerView(p *state.Player) PlayerView {
	view := PlayerView{
		Index:        p.Index,
		HeroID:       p.Hero.ID,
		Name:         p.Name(),
		Life:         p.Life,
		MaxLife:      p.MaxLife,
		Influence:    p.Influence,
		Attack:       p.Attack,
		Stunned:      p.Stunned,
		Hand:         cardViews(p.Hand.Cards()),
		DeckSize:     p.Deck.Len(),
		DiscardSize:  p.Discard.Len(),
		AlliesPlayed: len(p.AlliesPlayed),
		SpellsPlayed: p.SpellsPlayed,
		ItemsPlayed:  p.ItemsPlayed,
	}
	if p.Proficiency != nil {
		view.Proficiency = p.Proficiency.ID
	}
	return view
}

// Players returns a view of every hero in seat order.
func (g *Game) Players() []PlayerView {
	out := make([]PlayerView, len(g.state.Players))
	for i, p := range g.state.Players {
		out[i] = playerView(p)
	}
	return out
}

// Player returns a view of the hero in seat i.
func (g *Game) Player(i int) (PlayerView, bool) {
	p, ok := g.state.PlayerAt(i)
	if !ok {
		return PlayerView{}, false
	}
	return playerView(p), true
}

// CurrentPlayer returns the seat whose turn it is.
func (g *Game) CurrentPlayer() int { return g.state.Current }

// Market returns the market slots in order.
func (g *Game) Market() []CardView {
	return cardViews(g.state.Market.Slots())
}

// Villains returns the active villains in slot order.
func (g *Game) Villains() []VillainView {
	out := make([]VillainView, len(g.state.Villains))
	for i, v := range g.state.Villains {
		out[i] = VillainView{
			CardView:   cardView(v.CardInstance),
			Life:       v.Life(),
			Damage:     v.Damage.Count,
			BlockedFor: v.BlockedFor,
		}
	}
	return out
}

// Location returns the current location and its dark marks.
func (g *Game) Location() LocationView {
	loc := g.state.Location
	return LocationView{
		ID:           loc.Card.ID,
		Name:         loc.Card.Name,
		DarkMarks:    loc.Marks.Count,
		MaxDarkMarks: loc.Marks.Max,
	}
}

// DarkMarks returns the dark marks on the location and their maximum.
func (g *Game) DarkMarks() (int, int) {
	return g.state.Location.Marks.Count, g.state.Location.Marks.Max
}

// Horcruxes returns the active horcruxes.
func (g *Game) Horcruxes() []CardView { return cardViews(g.state.Horcruxes) }

func (g *Game) Phase() state.Phase { return g.state.Phase }

func (g *Game) Turn() int { return g.state.Turn }

func (g *Game) Outcome() state.Outcome { return g.state.Outcome() }

// Over reports whether the game reached GameOver.
func (g *Game) Over() bool { return g.machine.Over() }

// Digest returns a checksum of the full game state.
func (g *Game) Digest() string { return g.state.Digest() }

// Sequence returns the phases of one turn in this game.
func (g *Game) Sequence() []state.Phase { return g.machine.Sequence() }

// Subscribe registers a listener for every event the game publishes and
// returns a handle for Unsubscribe.
func (g *Game) Subscribe(listener func(rules.Event)) int {
	return g.bus.Subscribe(listener)
}

// SubscribeTyped registers a listener for one event kind.
func (g *Game) SubscribeTyped(kind rules.EventKind, listener func(rules.Event)) int {
	return g.bus.SubscribeTyped(kind, listener)
}

// Unsubscribe removes a listener registered with Subscribe.
func (g *Game) Unsubscribe(handle int) {
	g.bus.Unsubscribe(handle)
}

// View returns a snapshot of the whole board.
func (g *Game) View() GameView {
	return GameView{
		ID:        g.id,
		Year:      g.state.Year.ID,
		Turn:      g.state.Turn,
		Phase:     g.state.Phase,
		Current:   g.state.Current,
		Outcome:   g.state.Outcome(),
		Players:   g.Players(),
		Market:    g.Market(),
		ShopSize:  g.state.Market.ShopLen(),
		Villains:  g.Villains(),
		Location:  g.Location(),
		Horcruxes: g.Horcruxes(),
	}
}
