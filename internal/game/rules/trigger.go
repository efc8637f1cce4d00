package rules

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

// TriggerEntry is one registered effect bundle waiting for an event.
type TriggerEntry struct {
	ID       string
	SourceID string
	Owner    int
	Event    EventKind
	Effects  []effects.Effect
	Duration effects.Duration

	// Admit is asked before the entry fires. Quorum, once-only and owner
	// filtering live here, supplied by whoever registers the entry.
	Admit func(Event) bool
}

// RunFunc resolves a fired entry's effects for player.
type RunFunc func(ctx context.Context, st *state.Game, player int, entry TriggerEntry) error

// TriggerRegistry indexes effect bundles by event kind, in registration order.
type TriggerRegistry struct {
	mu      sync.Mutex
	entries map[EventKind][]TriggerEntry
}

// NewTriggerRegistry creates an empty trigger registry.
func NewTriggerRegistry() *TriggerRegistry {
	return &TriggerRegistry{
		entries: make(map[EventKind][]TriggerEntry),
	}
}

// Register appends an entry under event and returns its ID.
func (tr *TriggerRegistry) Register(event EventKind, entry TriggerEntry) string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Event = event
	if entry.Duration == "" {
		entry.Duration = effects.DurationEndOfTurn
	}
	tr.entries[event] = append(tr.entries[event], entry)
	return entry.ID
}

// Unregister removes every entry registered by sourceID and returns how many went.
func (tr *TriggerRegistry) Unregister(sourceID string) int {
	return tr.removeWhere(func(e TriggerEntry) bool { return e.SourceID == sourceID })
}

// Remove removes a single entry by ID.
func (tr *TriggerRegistry) Remove(entryID string) bool {
	return tr.removeWhere(func(e TriggerEntry) bool { return e.ID == entryID }) > 0
}

// ClearEndOfTurn removes every entry that lasts until end of turn.
func (tr *TriggerRegistry) ClearEndOfTurn() int {
	return tr.removeWhere(func(e TriggerEntry) bool { return e.Duration.ExpiresAtEndOfTurn() })
}

func (tr *TriggerRegistry) removeWhere(match func(TriggerEntry) bool) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	removed := 0
	for event, list := range tr.entries {
		kept := list[:0:0]
		for _, e := range list {
			if match(e) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(tr.entries, event)
		} else {
			tr.entries[event] = kept
		}
	}
	return removed
}

// Entries returns a snapshot of the entries registered under event.
func (tr *TriggerRegistry) Entries(event EventKind) []TriggerEntry {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]TriggerEntry(nil), tr.entries[event]...)
}

// Len returns the total number of registered entries.
func (tr *TriggerRegistry) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	n := 0
	for _, list := range tr.entries {
		n += len(list)
	}
	return n
}

// Has reports whether an entry with the given ID is registered.
func (tr *TriggerRegistry) Has(id string) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, list := range tr.entries {
		for _, e := range list {
			if e.ID == id {
				return true
			}
		}
	}
	return false
}

func (tr *TriggerRegistry) registered(event EventKind, id string) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, e := range tr.entries[event] {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Activate runs every entry registered for evt.Kind, in registration order,
// against evt.Player. Entries added while activating wait for the next event;
// entries removed while activating are skipped. It returns how many fired.
func (tr *TriggerRegistry) Activate(ctx context.Context, evt Event, st *state.Game, run RunFunc) (int, error) {
	fired := 0
	for _, entry := range tr.Entries(evt.Kind) {
		if err := ctx.Err(); err != nil {
			return fired, err
		}
		if !tr.registered(evt.Kind, entry.ID) {
			continue
		}
		if entry.Admit != nil && !entry.Admit(evt) {
			continue
		}
		fired++
		if err := run(ctx, st, evt.Player, entry); err != nil {
			return fired, err
		}
	}
	return fired, nil
}
