package cards

import (
	"fmt"
	"strings"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
)

// Kind is the variant tag of a Card.
type Kind string

const (
	KindAlly     Kind = "ally"
	KindItem     Kind = "item"
	KindSpell    Kind = "spell"
	KindDarkArts Kind = "dark_arts"
	KindVillain  Kind = "villain"
	KindHorcrux  Kind = "horcrux"
	KindLocation Kind = "location"
)

// Playable reports whether heroes hold, play and buy cards of this kind.
func (k Kind) Playable() bool {
	return k == KindAlly || k == KindItem || k == KindSpell
}

func (k Kind) valid() bool {
	switch k {
	case KindAlly, KindItem, KindSpell, KindDarkArts, KindVillain, KindHorcrux, KindLocation:
		return true
	}
	return false
}

// VillainStats holds the villain-only fields of a card.
type VillainStats struct {
	Life   int              `yaml:"life"`
	Reward []effects.Effect `yaml:"reward,omitempty"`
}

// LocationStats holds the location-only fields of a card.
type LocationStats struct {
	MaxDarkMarks    int `yaml:"max_dark_marks"`
	DarkArtsPerTurn int `yaml:"dark_arts_per_turn,omitempty"`
}

// Card is the read-only template of every game piece that carries effects.
// Kind selects which of the optional payloads is populated.
type Card struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Kind        Kind              `yaml:"kind"`
	Class       string            `yaml:"class,omitempty"`
	Cost        int               `yaml:"cost,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Image       string            `yaml:"image,omitempty"`
	Effects     []effects.Effect  `yaml:"effects,omitempty"`
	Triggers    []effects.Trigger `yaml:"triggers,omitempty"`

	// RevealsVillain marks a dark arts card whose reveal fires the
	// dark-mark-or-villain-revealed event.
	RevealsVillain bool `yaml:"reveals_villain,omitempty"`

	Villain  *VillainStats  `yaml:"villain,omitempty"`
	Location *LocationStats `yaml:"location,omitempty"`
}

// Life returns the villain's life, or zero for other kinds.
func (c *Card) Life() int {
	if c.Villain == nil {
		return 0
	}
	return c.Villain.Life
}

// DarkArtsPerTurn returns how many dark arts cards a location reveals each turn.
func (c *Card) DarkArtsPerTurn() int {
	if c.Location == nil || c.Location.DarkArtsPerTurn <= 0 {
		return 1
	}
	return c.Location.DarkArtsPerTurn
}

// Validate checks that the card has the payload its kind requires.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("card id is required")
	}
	if !c.Kind.valid() {
		return fmt.Errorf("card %s: unknown kind %q", c.ID, c.Kind)
	}
	if c.Cost < 0 {
		return fmt.Errorf("card %s: negative cost", c.ID)
	}
	switch c.Kind {
	case KindVillain:
		if c.Villain == nil || c.Villain.Life <= 0 {
			return fmt.Errorf("card %s: villain needs positive life", c.ID)
		}
		if err := effects.ValidateAll(c.Villain.Reward); err != nil {
			return fmt.Errorf("card %s reward: %w", c.ID, err)
		}
	case KindLocation:
		if c.Location == nil || c.Location.MaxDarkMarks <= 0 {
			return fmt.Errorf("card %s: location needs max_dark_marks", c.ID)
		}
	}
	if err := effects.ValidateAll(c.Effects); err != nil {
		return fmt.Errorf("card %s: %w", c.ID, err)
	}
	for i, trig := range c.Triggers {
		if err := trig.Validate(); err != nil {
			return fmt.Errorf("card %s trigger %d: %w", c.ID, i, err)
		}
	}
	return nil
}

// Hero is the template of a playable character.
type Hero struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	MaxLife      int      `yaml:"max_life,omitempty"`
	StartingDeck []string `yaml:"starting_deck"`
}

// Life returns the hero's maximum life, defaulting to 10.
func (h *Hero) Life() int {
	if h.MaxLife <= 0 {
		return 10
	}
	return h.MaxLife
}

// Proficiency is a passive per-hero bonus chosen at setup.
type Proficiency struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Effects     []effects.Effect  `yaml:"effects,omitempty"`
	Triggers    []effects.Trigger `yaml:"triggers,omitempty"`
}

// Die is a six-sided die whose faces are effects.
type Die struct {
	ID    string           `yaml:"id"`
	Name  string           `yaml:"name"`
	Faces []effects.Effect `yaml:"faces"`
}

// Mechanics toggles the optional rules of a year.
type Mechanics struct {
	Horcruxes     bool `yaml:"horcruxes,omitempty"`
	Proficiencies bool `yaml:"proficiencies,omitempty"`
	Dice          bool `yaml:"dice,omitempty"`
}

// Year describes the card pools and rules of one game box.
type Year struct {
	ID                string    `yaml:"id"`
	Number            int       `yaml:"number"`
	Name              string    `yaml:"name"`
	MaxActiveVillains int       `yaml:"max_active_villains"`
	Mechanics         Mechanics `yaml:"mechanics,omitempty"`
	Villains          []string  `yaml:"villains"`
	DarkArts          []string  `yaml:"dark_arts"`
	Shop              []string  `yaml:"shop"`
	Locations         []string  `yaml:"locations"`
	Horcruxes         []string  `yaml:"horcruxes,omitempty"`
}

// ActiveVillains returns the villain cap, clamped to 1..2.
func (y *Year) ActiveVillains() int {
	switch {
	case y.MaxActiveVillains <= 1:
		return 1
	default:
		return 2
	}
}
