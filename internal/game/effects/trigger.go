package effects

import (
	"fmt"
	"strings"
)

// Trigger declares a reactive effect bundle on a card. It is registered when the
// card enters play and activated when an event of kind Event happens.
type Trigger struct {
	Event    string   `yaml:"event"`
	Effects  []Effect `yaml:"effects"`
	Target   Target   `yaml:"target,omitempty"`
	Quorum   int      `yaml:"quorum,omitempty"`
	Once     bool     `yaml:"once,omitempty"`
	Duration Duration `yaml:"duration,omitempty"`
}

// Threshold returns the number of occurrences needed before the trigger fires.
func (t Trigger) Threshold() int {
	if t.Quorum > 0 {
		return t.Quorum
	}
	return 1
}

// OwnerOnly reports whether only events whose subject is the owning player count.
func (t Trigger) OwnerOnly() bool {
	return t.Target == TargetSelf
}

// Validate checks the declaration and its effects.
func (t Trigger) Validate() error {
	if strings.TrimSpace(t.Event) == "" {
		return fmt.Errorf("%w: trigger event is required", ErrInvalidEffect)
	}
	if len(t.Effects) == 0 {
		return fmt.Errorf("%w: trigger %s has no effects", ErrInvalidEffect, t.Event)
	}
	switch t.Target {
	case "", TargetSelf, TargetAll:
	default:
		return fmt.Errorf("%w: trigger target must be self or all, got %q", ErrInvalidEffect, t.Target)
	}
	if !t.Duration.valid() || t.Duration == DurationInstant {
		return fmt.Errorf("%w: trigger duration %q", ErrInvalidEffect, t.Duration)
	}
	if t.Quorum < 0 {
		return fmt.Errorf("%w: negative quorum", ErrInvalidEffect)
	}
	if err := ValidateAll(t.Effects); err != nil {
		return fmt.Errorf("trigger %s: %w", t.Event, err)
	}
	return nil
}
