package targeting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

func table(t *testing.T, players, villains int) *state.Game {
	t.Helper()
	hero := &cards.Hero{ID: "hero", Name: "Hero"}
	ps := make([]*state.Player, players)
	for i := range ps {
		ps[i] = state.NewPlayer(i, hero, nil)
	}
	vs := make([]*state.CardInstance, villains)
	for i := range vs {
		vs[i] = state.NewInstance(&cards.Card{
			ID: fmt.Sprintf("v%d", i), Kind: cards.KindVillain, Villain: &cards.VillainStats{Life: 4},
		})
	}
	g := state.New(state.Setup{
		Year:      &cards.Year{ID: "t", MaxActiveVillains: 2},
		Players:   ps,
		Location:  &cards.Card{ID: "loc", Kind: cards.KindLocation, Location: &cards.LocationStats{MaxDarkMarks: 4}},
		Villains:  vs,
		KeepOrder: true,
	})
	g.RevealVillains()
	return g
}

func TestResolvePlayerTargets(t *testing.T) {
	g := table(t, 3, 0)
	g.Current = 2

	tests := []struct {
		target effects.Target
		want   []int
	}{
		{"", []int{1}},
		{effects.TargetSelf, []int{1}},
		{effects.TargetActive, []int{2}},
		{effects.TargetNext, []int{2}},
		{effects.TargetAll, []int{0, 1, 2}},
		{effects.TargetOthers, []int{0, 2}},
	}
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			res := Resolve(g, 1, effects.KindHeal, tt.target, 0)
			assert.False(t, res.NeedsChoice())
			assert.Equal(t, ScopePlayer, res.Scope)
			assert.Equal(t, tt.want, res.Fixed)
		})
	}
}

func TestResolveNextWraps(t *testing.T) {
	g := table(t, 2, 0)
	assert.Equal(t, []int{0}, Resolve(g, 1, effects.KindDamage, effects.TargetNext, 0).Fixed)

	solo := table(t, 1, 0)
	assert.Equal(t, []int{0}, Resolve(solo, 0, effects.KindDamage, effects.TargetNext, 0).Fixed)
}

func TestResolveOthersInSoloGameIsEmpty(t *testing.T) {
	g := table(t, 1, 0)
	res := Resolve(g, 0, effects.KindDamage, effects.TargetOthers, 0)
	assert.True(t, res.Empty())
}

func TestResolveChosen(t *testing.T) {
	g := table(t, 3, 0)

	res := Resolve(g, 0, effects.KindHeal, effects.TargetChosen, 2)
	require.True(t, res.NeedsChoice())
	assert.Equal(t, []int{0, 1, 2}, res.Candidates)
	assert.Equal(t, 2, res.Requirement.MinTargets)
	assert.Equal(t, 2, res.Requirement.MaxTargets)

	res = Resolve(g, 0, effects.KindHeal, effects.TargetChosen, 9)
	assert.Equal(t, 3, res.Requirement.MaxTargets, "picks are capped by the candidates")

	solo := table(t, 1, 0)
	res = Resolve(solo, 0, effects.KindHeal, effects.TargetChosen, 1)
	assert.False(t, res.NeedsChoice())
	assert.Equal(t, []int{0}, res.Fixed)
}

func TestResolveVillains(t *testing.T) {
	g := table(t, 1, 3)
	require.Len(t, g.Villains, 2)

	res := Resolve(g, 0, effects.KindDamageVillain, "", 0)
	require.True(t, res.NeedsChoice())
	assert.Equal(t, ScopeVillain, res.Scope)
	assert.Equal(t, []int{0, 1}, res.Candidates)

	res = Resolve(g, 0, effects.KindHealVillain, effects.TargetAllVillains, 0)
	assert.Equal(t, []int{0, 1}, res.Fixed)

	empty := table(t, 1, 0)
	assert.True(t, Resolve(empty, 0, effects.KindBlockVillain, effects.TargetChosenVillain, 1).Empty())
}

func TestTargetSelectionValidate(t *testing.T) {
	req := TargetRequirement{Scope: ScopePlayer, MinTargets: 2, MaxTargets: 2}
	cands := []int{0, 1, 2}

	tests := []struct {
		name    string
		targets []int
		wantErr bool
	}{
		{"ok", []int{0, 2}, false},
		{"too few", []int{1}, true},
		{"too many", []int{0, 1, 2}, true},
		{"illegal", []int{0, 5}, true},
		{"duplicate", []int{1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &TargetSelection{Targets: tt.targets, Candidates: cands, Requirement: req}
			err := sel.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	var nilSel *TargetSelection
	assert.Error(t, nilSel.Validate())
}
