package rules

import (
	"sync"
	"time"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

// EventKind indicates the category of a game event. Trigger declarations name
// these values in their event field.
type EventKind string

const (
	// Hero events
	EventHeroDamaged   EventKind = "HERO_DAMAGED"
	EventHeroHealed    EventKind = "HERO_HEALED"
	EventHeroDiscarded EventKind = "HERO_DISCARDED"
	EventHeroStunned   EventKind = "HERO_STUNNED"
	EventExtraCardDraw EventKind = "EXTRA_CARD_DRAWN"

	// Board events
	EventDarkMarkAdded             EventKind = "DARK_MARK_ADDED"
	EventDarkMarkRemoved           EventKind = "DARK_MARK_REMOVED"
	EventDarkMarkOrVillainRevealed EventKind = "DARK_MARK_OR_VILLAIN_REVEALED"
	EventVillainDefeated           EventKind = "VILLAIN_DEFEATED"

	// Card events
	EventAllyPlayed  EventKind = "ALLY_PLAYED"
	EventItemPlayed  EventKind = "ITEM_PLAYED"
	EventSpellPlayed EventKind = "SPELL_PLAYED"
	EventCardBought  EventKind = "CARD_BOUGHT"

	// Flow events, published to listeners only
	EventPhaseChanged EventKind = "PHASE_CHANGED"
	EventTurnStarted  EventKind = "TURN_STARTED"
	EventGameOver     EventKind = "GAME_OVER"

	// EventTriggerLimit reports an event whose triggers were cut off by the
	// nesting limit. Amount carries the depth.
	EventTriggerLimit EventKind = "TRIGGER_LIMIT_REACHED"
)

var triggerable = map[EventKind]bool{
	EventHeroDamaged:               true,
	EventHeroHealed:                true,
	EventHeroDiscarded:             true,
	EventHeroStunned:               true,
	EventExtraCardDraw:             true,
	EventDarkMarkAdded:             true,
	EventDarkMarkRemoved:           true,
	EventDarkMarkOrVillainRevealed: true,
	EventVillainDefeated:           true,
	EventAllyPlayed:                true,
	EventItemPlayed:                true,
	EventSpellPlayed:               true,
	EventCardBought:                true,
}

// Triggerable reports whether trigger declarations may name this kind.
func (k EventKind) Triggerable() bool {
	return triggerable[k]
}

// Event represents something that happened while resolving the game.
type Event struct {
	Kind      EventKind
	Player    int    // Seat of the subject hero, state.NoPlayer when none
	SourceID  string // Instance ID of the card that caused the event
	CardID    string // Template ID of that card
	Amount    int    // Numeric value (damage, cards, marks)
	Phase     state.Phase
	Turn      int
	Timestamp time.Time
}

// NewEvent creates an event about player.
func NewEvent(kind EventKind, player int) Event {
	return Event{
		Kind:      kind,
		Player:    player,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates an event carrying an amount.
func NewEventWithAmount(kind EventKind, player, amount int) Event {
	evt := NewEvent(kind, player)
	evt.Amount = amount
	return evt
}

// FromSource sets the causing card.
func (e Event) FromSource(c *state.CardInstance) Event {
	if c != nil {
		e.SourceID = c.ID
		e.CardID = c.Card.ID
	}
	return e
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event kind.
type TypedListener struct {
	Handle   int
	Kind     EventKind
	Callback func(Event)
}

type handleListener struct {
	handle   int
	listener Listener
}

// EventBus provides a synchronous publish/subscribe implementation with kind filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      []handleListener
	typedListeners map[EventKind][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		typedListeners: make(map[EventKind][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, handleListener{handle: handle, listener: listener})
	return handle
}

// SubscribeTyped registers a listener for a specific event kind.
func (bus *EventBus) SubscribeTyped(kind EventKind, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[kind] = append(bus.typedListeners[kind], TypedListener{
		Handle:   handle,
		Kind:     kind,
		Callback: callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, l := range bus.listeners {
		if l.handle == handle {
			bus.listeners = append(bus.listeners[:i:i], bus.listeners[i+1:]...)
			return
		}
	}
	for kind, listeners := range bus.typedListeners {
		for i := range listeners {
			if listeners[i].Handle == handle {
				bus.typedListeners[kind] = append(listeners[:i:i], listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously, in
// subscription order. Listeners run outside the lock so they may unsubscribe.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	all := make([]Listener, 0, len(bus.listeners))
	for _, l := range bus.listeners {
		all = append(all, l.listener)
	}
	typed := append([]TypedListener(nil), bus.typedListeners[event.Kind]...)
	bus.mu.RUnlock()

	for _, listener := range all {
		listener(event)
	}
	for _, listener := range typed {
		listener.Callback(event)
	}
}
