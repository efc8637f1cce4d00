package state

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
)

// CardInstance is one physical copy of a card template in a game.
type CardInstance struct {
	ID   string
	Card *cards.Card
}

// NewInstance creates a copy of the template with a fresh instance id.
func NewInstance(card *cards.Card) *CardInstance {
	return &CardInstance{ID: uuid.NewString(), Card: card}
}

// NewInstances creates one instance per template.
func NewInstances(list []*cards.Card) []*CardInstance {
	out := make([]*CardInstance, len(list))
	for i, c := range list {
		out[i] = NewInstance(c)
	}
	return out
}

// Pile is an ordered stack of cards. Index 0 is the top.
type Pile struct {
	cards []*CardInstance
}

// NewPile creates a pile holding list top first.
func NewPile(list ...*CardInstance) *Pile {
	p := &Pile{cards: make([]*CardInstance, 0, len(list))}
	p.cards = append(p.cards, list...)
	return p
}

func (p *Pile) Len() int { return len(p.cards) }

func (p *Pile) Empty() bool { return len(p.cards) == 0 }

// Cards returns a copy of the pile, top first.
func (p *Pile) Cards() []*CardInstance {
	out := make([]*CardInstance, len(p.cards))
	copy(out, p.cards)
	return out
}

// At returns the card at index i.
func (p *Pile) At(i int) (*CardInstance, bool) {
	if i < 0 || i >= len(p.cards) {
		return nil, false
	}
	return p.cards[i], true
}

// IndexOf returns the position of the instance with the given id, or -1.
func (p *Pile) IndexOf(id string) int {
	for i, c := range p.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Add puts cards at the bottom.
func (p *Pile) Add(list ...*CardInstance) {
	p.cards = append(p.cards, list...)
}

// Draw removes and returns the top card.
func (p *Pile) Draw() (*CardInstance, bool) {
	if len(p.cards) == 0 {
		return nil, false
	}
	top := p.cards[0]
	p.cards = p.cards[1:]
	return top, true
}

// RemoveAt removes and returns the card at index i.
func (p *Pile) RemoveAt(i int) (*CardInstance, bool) {
	if i < 0 || i >= len(p.cards) {
		return nil, false
	}
	c := p.cards[i]
	p.cards = append(p.cards[:i:i], p.cards[i+1:]...)
	return c, true
}

// TakeAll empties the pile and returns its former contents.
func (p *Pile) TakeAll() []*CardInstance {
	out := p.cards
	p.cards = nil
	return out
}

// Shuffle permutes the pile. A nil rng leaves the order unchanged.
func (p *Pile) Shuffle(rng *rand.Rand) {
	if rng == nil {
		return
	}
	rng.Shuffle(len(p.cards), func(i, j int) {
		p.cards[i], p.cards[j] = p.cards[j], p.cards[i]
	})
}

// IDs lists the template ids of the pile, top first.
func (p *Pile) IDs() []string {
	out := make([]string, len(p.cards))
	for i, c := range p.cards {
		out[i] = c.Card.ID
	}
	return out
}
