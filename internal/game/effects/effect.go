package effects

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the consequence an effect applies when it resolves.
type Kind string

const (
	KindDamage         Kind = "damage"
	KindHeal           Kind = "heal"
	KindInfluence      Kind = "influence"
	KindAttack         Kind = "attack"
	KindDraw           Kind = "draw"
	KindDiscard        Kind = "discard"
	KindAddDarkMark    Kind = "add_dark_mark"
	KindRemoveDarkMark Kind = "remove_dark_mark"
	KindBlockVillain   Kind = "block_villain"
	KindDamageVillain  Kind = "damage_villain"
	KindHealVillain    Kind = "heal_villain"
	KindAttackPerAlly  Kind = "attack_per_ally"
	KindPreventDraw    Kind = "prevent_draw"
	KindPreventHeal    Kind = "prevent_heal"
	KindRollDie        Kind = "roll_die"
	// KindChoice marks a node whose behaviour comes entirely from Options or Repeated.
	KindChoice Kind = "choice"
)

var knownKinds = map[Kind]bool{
	KindDamage:         true,
	KindHeal:           true,
	KindInfluence:      true,
	KindAttack:         true,
	KindDraw:           true,
	KindDiscard:        true,
	KindAddDarkMark:    true,
	KindRemoveDarkMark: true,
	KindBlockVillain:   true,
	KindDamageVillain:  true,
	KindHealVillain:    true,
	KindAttackPerAlly:  true,
	KindPreventDraw:    true,
	KindPreventHeal:    true,
	KindRollDie:        true,
	KindChoice:         true,
}

// Valid reports whether k is a kind the executor knows how to resolve.
func (k Kind) Valid() bool {
	return knownKinds[k]
}

// TargetsVillains reports whether the kind addresses villains rather than heroes.
func (k Kind) TargetsVillains() bool {
	switch k {
	case KindBlockVillain, KindDamageVillain, KindHealVillain:
		return true
	}
	return false
}

// Global reports whether the kind acts on the board and ignores its target.
func (k Kind) Global() bool {
	switch k {
	case KindAddDarkMark, KindRemoveDarkMark, KindRollDie:
		return true
	}
	return false
}

// Target selects who an effect applies to.
type Target string

const (
	TargetSelf          Target = "self"
	TargetActive        Target = "active"
	TargetAll           Target = "all"
	TargetOthers        Target = "others"
	TargetChosen        Target = "chosen"
	TargetNext          Target = "next"
	TargetChosenVillain Target = "chosen_villain"
	TargetAllVillains   Target = "all_villains"
)

// IsVillain reports whether the target selects villains.
func (t Target) IsVillain() bool {
	return t == TargetChosenVillain || t == TargetAllVillains
}

func (t Target) valid() bool {
	switch t {
	case "", TargetSelf, TargetActive, TargetAll, TargetOthers, TargetChosen, TargetNext,
		TargetChosenVillain, TargetAllVillains:
		return true
	}
	return false
}

// Effect is one node of a card's effect tree.
//
// A node resolves in exactly one of three shapes: pick one of Options, run
// Repeated Quantity times, or apply Kind to the resolved targets.
type Effect struct {
	Kind           Kind     `yaml:"kind"`
	Quantity       int      `yaml:"quantity,omitempty"`
	Target         Target   `yaml:"target,omitempty"`
	Duration       Duration `yaml:"duration,omitempty"`
	QuantityTarget int      `yaml:"quantity_target,omitempty"`
	Options        []Effect `yaml:"options,omitempty"`
	Repeated       *Effect  `yaml:"repeated,omitempty"`
	Die            string   `yaml:"die,omitempty"`
}

// ErrInvalidEffect is wrapped by every Validate failure.
var ErrInvalidEffect = errors.New("invalid effect")

// Validate checks the node and its children for shape and enum errors.
func (e Effect) Validate() error {
	if len(e.Options) > 0 && e.Repeated != nil {
		return fmt.Errorf("%w: options and repeated are mutually exclusive", ErrInvalidEffect)
	}
	if e.Kind == "" && len(e.Options) == 0 && e.Repeated == nil {
		return fmt.Errorf("%w: kind is required", ErrInvalidEffect)
	}
	if e.Kind == KindChoice && len(e.Options) == 0 && e.Repeated == nil {
		return fmt.Errorf("%w: choice needs options or repeated", ErrInvalidEffect)
	}
	if e.Kind != "" && !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEffect, e.Kind)
	}
	if !e.Target.valid() {
		return fmt.Errorf("%w: unknown target %q", ErrInvalidEffect, e.Target)
	}
	if !e.Duration.valid() {
		return fmt.Errorf("%w: unknown duration %q", ErrInvalidEffect, e.Duration)
	}
	if e.Quantity < 0 || e.QuantityTarget < 0 {
		return fmt.Errorf("%w: negative quantity", ErrInvalidEffect)
	}
	if e.Kind == KindRollDie && strings.TrimSpace(e.Die) == "" {
		return fmt.Errorf("%w: roll_die needs a die", ErrInvalidEffect)
	}
	if e.Kind.TargetsVillains() && e.Target != "" && !e.Target.IsVillain() {
		return fmt.Errorf("%w: %s cannot target %s", ErrInvalidEffect, e.Kind, e.Target)
	}
	for i, opt := range e.Options {
		if err := opt.Validate(); err != nil {
			return fmt.Errorf("option %d: %w", i, err)
		}
	}
	if e.Repeated != nil {
		if err := e.Repeated.Validate(); err != nil {
			return fmt.Errorf("repeated: %w", err)
		}
	}
	return nil
}

// Amount returns Quantity, treating zero as one for kinds that always act.
func (e Effect) Amount() int {
	if e.Quantity > 0 {
		return e.Quantity
	}
	switch e.Kind {
	case KindPreventDraw, KindPreventHeal, KindBlockVillain, KindRollDie:
		return 1
	}
	return 0
}

// Picks returns how many targets a chosen-target node selects.
func (e Effect) Picks() int {
	if e.QuantityTarget > 0 {
		return e.QuantityTarget
	}
	return 1
}

// String renders a compact description used in logs and choice prompts.
func (e Effect) String() string {
	switch {
	case len(e.Options) > 0:
		parts := make([]string, len(e.Options))
		for i, opt := range e.Options {
			parts[i] = opt.String()
		}
		return "one of [" + strings.Join(parts, " | ") + "]"
	case e.Repeated != nil:
		return fmt.Sprintf("%dx (%s)", e.Quantity, e.Repeated.String())
	}
	s := string(e.Kind)
	if e.Quantity > 0 {
		s = fmt.Sprintf("%s %d", s, e.Quantity)
	}
	if e.Target != "" {
		s += " -> " + string(e.Target)
	}
	if e.Die != "" {
		s += " (" + e.Die + ")"
	}
	return s
}

// ValidateAll validates a list of effects, reporting the first failure.
func ValidateAll(list []Effect) error {
	for i, eff := range list {
		if err := eff.Validate(); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}
	return nil
}
