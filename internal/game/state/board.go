package state

import (
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/counters"
)

// NoPlayer marks an unset player reference.
const NoPlayer = -1

// Villain is an active villain with its accumulated damage and block.
type Villain struct {
	*CardInstance
	Damage *counters.Counter

	// BlockedFor is the player whose villains phase skips this villain's ability.
	BlockedFor int

	// BlockedOn is the turn the block was placed. A block only applies to
	// later turns.
	BlockedOn int
}

// NewVillain puts a villain card into play.
func NewVillain(c *CardInstance) *Villain {
	return &Villain{
		CardInstance: c,
		Damage:       counters.NewCounter(counters.CounterTypeDamage, c.Card.Life()),
		BlockedFor:   NoPlayer,
	}
}

// Life returns the villain's printed life.
func (v *Villain) Life() int {
	return v.Card.Life()
}

// Remaining returns life minus accumulated damage.
func (v *Villain) Remaining() int {
	return v.Life() - v.Damage.Count
}

// Hit adds damage and returns the amount that landed.
func (v *Villain) Hit(n int) int {
	return v.Damage.Add(n)
}

// Mend removes damage and returns the amount removed.
func (v *Villain) Mend(n int) int {
	return v.Damage.Remove(n)
}

// Defeated reports whether accumulated damage has reached life.
func (v *Villain) Defeated() bool {
	return v.Damage.Reached()
}

// Block skips the villain's ability on the given player's next villains
// phase after turn.
func (v *Villain) Block(player, turn int) {
	v.BlockedFor = player
	v.BlockedOn = turn
}

// BlockedAgainst reports whether a block placed before turn applies to player.
func (v *Villain) BlockedAgainst(player, turn int) bool {
	return v.BlockedFor != NoPlayer && v.BlockedFor == player && v.BlockedOn < turn
}

func (v *Villain) ClearBlock() {
	v.BlockedFor = NoPlayer
	v.BlockedOn = 0
}

// Location is the current location and its dark marks.
type Location struct {
	Card  *cards.Card
	Marks *counters.Counter
}

// NewLocation creates a location with an empty dark-mark track.
func NewLocation(card *cards.Card) *Location {
	max := 0
	if card.Location != nil {
		max = card.Location.MaxDarkMarks
	}
	return &Location{
		Card:  card,
		Marks: counters.NewCounter(counters.CounterTypeDarkMark, max),
	}
}

// Full reports whether the dark-mark track is at its maximum.
func (l *Location) Full() bool {
	return l.Marks.Reached()
}

// Market is the row of purchasable cards over the shop deck.
type Market struct {
	slots []*CardInstance
	shop  *Pile
}

// NewMarket creates a market of size slots and fills it from shop.
func NewMarket(size int, shop *Pile) *Market {
	m := &Market{slots: make([]*CardInstance, size), shop: shop}
	for i := range m.slots {
		m.refill(i)
	}
	return m
}

func (m *Market) Size() int { return len(m.slots) }

// ShopLen returns the number of cards left in the shop deck.
func (m *Market) ShopLen() int { return m.shop.Len() }

// Slots returns a copy of the slots; empty slots are nil.
func (m *Market) Slots() []*CardInstance {
	out := make([]*CardInstance, len(m.slots))
	copy(out, m.slots)
	return out
}

// Slot returns the card in slot i, if any.
func (m *Market) Slot(i int) (*CardInstance, bool) {
	if i < 0 || i >= len(m.slots) || m.slots[i] == nil {
		return nil, false
	}
	return m.slots[i], true
}

// Take removes the card in slot i and refills the slot from the shop deck.
func (m *Market) Take(i int) (*CardInstance, bool) {
	c, ok := m.Slot(i)
	if !ok {
		return nil, false
	}
	m.slots[i] = nil
	m.refill(i)
	return c, true
}

// Cards counts the cards on display.
func (m *Market) Cards() int {
	n := 0
	for _, c := range m.slots {
		if c != nil {
			n++
		}
	}
	return n
}

func (m *Market) refill(i int) {
	if c, ok := m.shop.Draw(); ok {
		m.slots[i] = c
	}
}
