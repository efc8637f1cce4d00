package cards

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
)

func TestEmbeddedRegistryLoadsYears(t *testing.T) {
	reg := NewEmbeddedRegistry(zaptest.NewLogger(t))
	require.NoError(t, reg.Err())

	assert.Equal(t, []string{"year-1", "year-2", "year-7"}, reg.Years())

	year, err := reg.Year("year-1")
	require.NoError(t, err)
	assert.Equal(t, 1, year.ActiveVillains())
	assert.False(t, year.Mechanics.Horcruxes)
	assert.Contains(t, year.Villains, "crabbe-and-goyle")

	year7, err := reg.Year("year-7")
	require.NoError(t, err)
	assert.True(t, year7.Mechanics.Horcruxes)
	assert.True(t, year7.Mechanics.Dice)
	assert.Len(t, year7.Horcruxes, 2)

	harry, err := reg.Hero("harry-potter")
	require.NoError(t, err)
	assert.Len(t, harry.StartingDeck, 10)
	assert.Equal(t, 10, harry.Life())

	cg, err := reg.Card("crabbe-and-goyle")
	require.NoError(t, err)
	assert.Equal(t, KindVillain, cg.Kind)
	assert.Equal(t, 5, cg.Life())

	die, err := reg.Die("slytherin-die")
	require.NoError(t, err)
	assert.Len(t, die.Faces, 6)

	prof, err := reg.Proficiency("defence-against-the-dark-arts")
	require.NoError(t, err)
	assert.Equal(t, 3, prof.Triggers[0].Threshold())
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewEmbeddedRegistry(zaptest.NewLogger(t))

	_, err := reg.Card("sword-of-gryffindor-9000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "card", nf.Kind)
	assert.Equal(t, "sword-of-gryffindor-9000", nf.ID)

	_, err = reg.Hero("draco-malfoy")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = reg.Cards([]string{"alohomora", "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistryLoadsOnce(t *testing.T) {
	reg := NewEmbeddedRegistry(zaptest.NewLogger(t))

	first, err := reg.Card("alohomora")
	require.NoError(t, err)
	second, err := reg.Card("alohomora")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

const goodCatalog = `
cards:
  - id: spark
    name: Spark
    kind: spell
    effects:
      - kind: attack
        quantity: 1
  - id: broken
    name: Broken
    kind: spell
    effects:
      - kind: teleport
  - id: goon
    name: Goon
    kind: villain
    villain:
      life: 3
  - id: yard
    name: Yard
    kind: location
    location:
      max_dark_marks: 3
heroes:
  - id: tester
    name: Tester
    starting_deck: [spark, spark, broken, ghost]
years:
  - id: tiny
    number: 1
    max_active_villains: 1
    villains: [goon, spark]
    dark_arts: []
    shop: [spark, ghost]
    locations: [yard]
`

func TestRegistrySkipsBadEntries(t *testing.T) {
	src := fstest.MapFS{
		"a-bad.yaml":  {Data: []byte("cards: [\n  - id: oops\n    kind: [")},
		"b-good.yaml": {Data: []byte(goodCatalog)},
	}
	reg := NewRegistry(src, zaptest.NewLogger(t))
	require.NoError(t, reg.Err())

	_, err := reg.Card("spark")
	assert.NoError(t, err)

	_, err = reg.Card("broken")
	assert.True(t, errors.Is(err, ErrNotFound), "card with an invalid effect is skipped")

	hero, err := reg.Hero("tester")
	require.NoError(t, err)
	assert.Equal(t, []string{"spark", "spark"}, hero.StartingDeck)

	year, err := reg.Year("tiny")
	require.NoError(t, err)
	assert.Equal(t, []string{"goon"}, year.Villains, "non-villain ids are dropped from the villain pool")
	assert.Equal(t, []string{"spark"}, year.Shop)
}

func TestRegistryDuplicateKeepsFirst(t *testing.T) {
	src := fstest.MapFS{
		"a.yaml": {Data: []byte("cards:\n  - {id: dup, name: First, kind: spell, cost: 1}\n")},
		"b.yaml": {Data: []byte("cards:\n  - {id: dup, name: Second, kind: spell, cost: 2}\n")},
	}
	reg := NewRegistry(src, zaptest.NewLogger(t))

	c, err := reg.Card("dup")
	require.NoError(t, err)
	assert.Equal(t, "First", c.Name)
}

func TestRegistryEmptySource(t *testing.T) {
	reg := NewRegistry(fstest.MapFS{}, zaptest.NewLogger(t))

	var loadErr *ConfigLoadError
	require.True(t, errors.As(reg.Err(), &loadErr))

	_, err := reg.Year("year-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCardValidate(t *testing.T) {
	tests := []struct {
		name    string
		card    Card
		wantErr bool
	}{
		{"spell", Card{ID: "s", Kind: KindSpell, Effects: []effects.Effect{{Kind: effects.KindDraw, Quantity: 1}}}, false},
		{"missing id", Card{Kind: KindSpell}, true},
		{"unknown kind", Card{ID: "x", Kind: "artifact"}, true},
		{"negative cost", Card{ID: "x", Kind: KindItem, Cost: -1}, true},
		{"villain without life", Card{ID: "v", Kind: KindVillain}, true},
		{"location without max", Card{ID: "l", Kind: KindLocation, Location: &LocationStats{}}, true},
		{"bad trigger", Card{ID: "t", Kind: KindAlly, Triggers: []effects.Trigger{{Event: "ALLY_PLAYED"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
