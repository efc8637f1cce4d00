package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

var (
	testHero  = &cards.Hero{ID: "tester", Name: "Tester", MaxLife: 10}
	testCoin  = &cards.Card{ID: "coin", Name: "Coin", Kind: cards.KindItem}
	testGoon  = &cards.Card{ID: "goon", Name: "Goon", Kind: cards.KindVillain, Villain: &cards.VillainStats{Life: 3}}
	testBoss  = &cards.Card{ID: "boss", Name: "Boss", Kind: cards.KindVillain, Villain: &cards.VillainStats{Life: 5}}
	testYard  = &cards.Card{ID: "yard", Name: "Yard", Kind: cards.KindLocation, Location: &cards.LocationStats{MaxDarkMarks: 3}}
	testYear  = &cards.Year{ID: "test-year", MaxActiveVillains: 2}
	diceYear  = &cards.Year{ID: "dice-year", MaxActiveVillains: 2, Mechanics: cards.Mechanics{Dice: true}}
	allAttack = &cards.Die{ID: "attack-die", Faces: []effects.Effect{
		{Kind: effects.KindAttack, Quantity: 1}, {Kind: effects.KindAttack, Quantity: 1},
		{Kind: effects.KindAttack, Quantity: 1}, {Kind: effects.KindAttack, Quantity: 1},
		{Kind: effects.KindAttack, Quantity: 1}, {Kind: effects.KindAttack, Quantity: 1},
	}}
)

type dieTable map[string]*cards.Die

func (d dieTable) Die(id string) (*cards.Die, error) {
	if die, ok := d[id]; ok {
		return die, nil
	}
	return nil, &cards.NotFoundError{Kind: "die", ID: id}
}

func newTestGame(t *testing.T, players int, year *cards.Year, villains ...*cards.Card) *state.Game {
	t.Helper()
	seats := make([]*state.Player, players)
	for i := range seats {
		deck := make([]*cards.Card, 10)
		for j := range deck {
			deck[j] = testCoin
		}
		seats[i] = state.NewPlayer(i, testHero, state.NewInstances(deck))
	}
	if len(villains) == 0 {
		villains = []*cards.Card{testGoon, testBoss}
	}
	st := state.New(state.Setup{
		Year:      year,
		Players:   seats,
		Location:  testYard,
		Villains:  state.NewInstances(villains),
		HandSize:  5,
		Seed:      1,
		KeepOrder: true,
	})
	st.Phase = state.PhasePlayCards
	return st
}

func newTestExecutor(t *testing.T, chooser Chooser) *Executor {
	t.Helper()
	return NewExecutor(Config{
		Chooser: chooser,
		Dice:    dieTable{allAttack.ID: allAttack},
		Logger:  zaptest.NewLogger(t),
	})
}

func record(x *Executor) *[]rules.Event {
	var seen []rules.Event
	x.Bus().Subscribe(func(e rules.Event) { seen = append(seen, e) })
	return &seen
}

func kinds(events []rules.Event) []rules.EventKind {
	out := make([]rules.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestResolveBasicKinds(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 2, testYear)
	x := newTestExecutor(t, FirstChoice{})
	p := st.Players[0]

	require.NoError(t, x.ResolveAll(ctx, st, 0, []effects.Effect{
		{Kind: effects.KindInfluence, Quantity: 2},
		{Kind: effects.KindAttack, Quantity: 1},
		{Kind: effects.KindDraw, Quantity: 2},
		{Kind: effects.KindDamage, Quantity: 3, Target: effects.TargetAll},
	}))

	assert.Equal(t, 2, p.Influence)
	assert.Equal(t, 1, p.Attack)
	assert.Equal(t, 7, p.Hand.Len())
	assert.Equal(t, 7, p.Life)
	assert.Equal(t, 7, st.Players[1].Life)
	assert.Equal(t, 10, p.CardCount())
}

func TestResolveOptionsMatchesChosenAlternative(t *testing.T) {
	ctx := context.Background()
	choice := effects.OneOf(
		effects.Effect{Kind: effects.KindAttack, Quantity: 2},
		effects.Effect{Kind: effects.KindInfluence, Quantity: 3},
	)

	for k := range choice.Options {
		chosen := newTestGame(t, 1, testYear)
		require.NoError(t, newTestExecutor(t, NewScriptedChooser(k)).Resolve(ctx, chosen, 0, choice))

		direct := newTestGame(t, 1, testYear)
		require.NoError(t, newTestExecutor(t, nil).Resolve(ctx, direct, 0, choice.Options[k]))

		assert.Equal(t, direct.Digest(), chosen.Digest(), "option %d", k)
	}
}

func TestResolveInvalidChoice(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, NewScriptedChooser(5))
	before := st.Digest()

	err := x.Resolve(ctx, st, 0, effects.OneOf(
		effects.Effect{Kind: effects.KindAttack, Quantity: 1},
		effects.Effect{Kind: effects.KindInfluence, Quantity: 1},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidChoice))
	assert.Equal(t, before, st.Digest())
}

func TestResolveRepeated(t *testing.T) {
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, nil)

	eff := effects.Times(3, effects.Effect{Kind: effects.KindAttack, Quantity: 2})
	require.NoError(t, x.Resolve(context.Background(), st, 0, eff))
	assert.Equal(t, 6, st.Players[0].Attack)
}

func TestResolveChosenHero(t *testing.T) {
	st := newTestGame(t, 3, testYear)
	chooser := NewScriptedChooser(2)
	x := newTestExecutor(t, chooser)

	require.NoError(t, x.Resolve(context.Background(), st, 0,
		effects.Effect{Kind: effects.KindDamage, Quantity: 2, Target: effects.TargetChosen}))

	assert.Equal(t, 10, st.Players[0].Life)
	assert.Equal(t, 10, st.Players[1].Life)
	assert.Equal(t, 8, st.Players[2].Life)

	asked := chooser.Asked()
	require.Len(t, asked, 1)
	assert.Equal(t, ChoicePlayer, asked[0].Kind)
	assert.Equal(t, []int{0, 1, 2}, asked[0].Refs)
}

func TestResolveEmptyTargetsIsNoOp(t *testing.T) {
	st := newTestGame(t, 1, testYear, testGoon)
	x := newTestExecutor(t, nil)
	st.Villains = nil
	before := st.Digest()

	require.NoError(t, x.Resolve(context.Background(), st, 0,
		effects.Effect{Kind: effects.KindDamageVillain, Quantity: 2, Target: effects.TargetChosenVillain}))
	assert.Equal(t, before, st.Digest())
}

func TestResolveStunsAtZeroLife(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 2, testYear)
	x := newTestExecutor(t, FirstChoice{})
	seen := record(x)
	p := st.Players[1]
	p.Life = 2

	require.NoError(t, x.Resolve(ctx, st, 0, effects.Effect{Kind: effects.KindDamage, Quantity: 5, Target: effects.TargetNext}))

	assert.True(t, p.Stunned)
	assert.Equal(t, 0, p.Life)
	assert.Equal(t, 1, st.Location.Marks.Count)
	assert.Equal(t, 3, p.Hand.Len(), "half of a five card hand is discarded, rounded down")
	assert.Equal(t, 2, p.Discard.Len())
	assert.Equal(t, []rules.EventKind{
		rules.EventHeroDamaged,
		rules.EventDarkMarkAdded,
		rules.EventHeroDiscarded,
		rules.EventHeroDiscarded,
		rules.EventHeroStunned,
	}, kinds(*seen))

	// Stunned heroes neither lose nor gain life.
	require.NoError(t, x.Damage(ctx, st, 1, 3))
	require.NoError(t, x.Resolve(ctx, st, 1, effects.Effect{Kind: effects.KindHeal, Quantity: 3}))
	assert.Equal(t, 0, p.Life)
}

func TestDarkMarksCanLoseTheGame(t *testing.T) {
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, nil)

	require.NoError(t, x.Resolve(context.Background(), st, 0, effects.DarkMarks(5)))
	assert.Equal(t, 3, st.Location.Marks.Count)
	assert.Equal(t, state.OutcomeDefeat, st.Outcome())

	// Nothing resolves once the game is decided.
	require.NoError(t, x.Resolve(context.Background(), st, 0, effects.Effect{Kind: effects.KindAttack, Quantity: 4}))
	assert.Equal(t, 0, st.Players[0].Attack)
}

func TestPreventRestrictions(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, nil)
	p := st.Players[0]
	p.Life = 5

	require.NoError(t, x.ResolveAll(ctx, st, 0, []effects.Effect{
		{Kind: effects.KindPreventDraw},
		{Kind: effects.KindPreventHeal},
		{Kind: effects.KindDraw, Quantity: 2},
		{Kind: effects.KindHeal, Quantity: 2},
	}))
	assert.Equal(t, 5, p.Hand.Len())
	assert.Equal(t, 5, p.Life)

	p.ClearTurnRestrictions()
	require.NoError(t, x.Resolve(ctx, st, 0, effects.Effect{Kind: effects.KindDraw, Quantity: 1}))
	assert.Equal(t, 6, p.Hand.Len())
}

func TestVillainDefeatRewardsAndRefills(t *testing.T) {
	ctx := context.Background()
	reward := &cards.Card{ID: "payer", Name: "Payer", Kind: cards.KindVillain, Villain: &cards.VillainStats{
		Life:   2,
		Reward: []effects.Effect{{Kind: effects.KindInfluence, Quantity: 1}},
	}}
	year := &cards.Year{ID: "one-slot", MaxActiveVillains: 1}
	st := newTestGame(t, 1, year, reward, testGoon)
	x := newTestExecutor(t, nil)
	seen := record(x)
	require.NoError(t, x.RevealVillains(ctx, st))
	require.Len(t, st.Villains, 1)

	defeated, err := x.HitVillain(ctx, st, 0, 0, 2)
	require.NoError(t, err)
	assert.True(t, defeated)
	assert.Equal(t, 1, st.Players[0].Influence)
	require.Len(t, st.Villains, 1)
	assert.Equal(t, "goon", st.Villains[0].Card.ID)
	assert.False(t, st.Over())
	assert.Contains(t, kinds(*seen), rules.EventVillainDefeated)

	defeated, err = x.HitVillain(ctx, st, 0, 0, 10)
	require.NoError(t, err)
	assert.True(t, defeated)
	assert.Equal(t, state.OutcomeVictory, st.Outcome())
}

func TestVillainTriggersLiveWhileActive(t *testing.T) {
	ctx := context.Background()
	bully := &cards.Card{ID: "bully", Name: "Bully", Kind: cards.KindVillain,
		Villain: &cards.VillainStats{Life: 2},
		Triggers: []effects.Trigger{{
			Event:   string(rules.EventHeroDiscarded),
			Effects: []effects.Effect{{Kind: effects.KindDamage, Quantity: 1}},
		}},
	}
	st := newTestGame(t, 2, &cards.Year{ID: "y", MaxActiveVillains: 1}, bully, testBoss)
	x := newTestExecutor(t, FirstChoice{})
	require.NoError(t, x.RevealVillains(ctx, st))
	assert.Equal(t, 1, x.Triggers().Len())

	require.NoError(t, x.Resolve(ctx, st, 0, effects.Effect{Kind: effects.KindDiscard, Quantity: 1, Target: effects.TargetNext}))
	assert.Equal(t, 9, st.Players[1].Life, "the discarding hero takes the damage")
	assert.Equal(t, 10, st.Players[0].Life)

	x.EndTurn()
	assert.Equal(t, 1, x.Triggers().Len(), "villain triggers outlive the turn")

	_, err := x.HitVillain(ctx, st, 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, x.Triggers().Len(), "triggers leave with the villain")
}

func TestBlockVillainTargetsNextPlayer(t *testing.T) {
	st := newTestGame(t, 3, testYear)
	x := newTestExecutor(t, NewScriptedChooser(1))
	require.NoError(t, x.RevealVillains(context.Background(), st))

	require.NoError(t, x.Resolve(context.Background(), st, 2,
		effects.Effect{Kind: effects.KindBlockVillain, Target: effects.TargetChosenVillain}))

	assert.False(t, st.Villains[0].BlockedAgainst(0, st.Turn+1))
	assert.True(t, st.Villains[1].BlockedAgainst(0, st.Turn+1))
}

func TestBlockVillainSoloBlocksOwnNextTurn(t *testing.T) {
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, NewScriptedChooser(0))
	require.NoError(t, x.RevealVillains(context.Background(), st))

	require.NoError(t, x.Resolve(context.Background(), st, 0,
		effects.Effect{Kind: effects.KindBlockVillain, Target: effects.TargetChosenVillain}))

	v := st.Villains[0]
	assert.Equal(t, 0, v.BlockedFor)
	assert.False(t, v.BlockedAgainst(0, st.Turn), "the block must survive the turn it was placed")
	assert.True(t, v.BlockedAgainst(0, st.Turn+1))
}

func TestHealVillainAllVillains(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, nil)
	require.NoError(t, x.RevealVillains(ctx, st))
	st.Villains[0].Hit(2)
	st.Villains[1].Hit(1)

	require.NoError(t, x.Resolve(ctx, st, 0,
		effects.Effect{Kind: effects.KindHealVillain, Quantity: 2, Target: effects.TargetAllVillains}))
	assert.Equal(t, 0, st.Villains[0].Damage.Count)
	assert.Equal(t, 0, st.Villains[1].Damage.Count)
}

func TestAttackPerAlly(t *testing.T) {
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, nil)
	ally := state.NewInstance(&cards.Card{ID: "pal", Name: "Pal", Kind: cards.KindAlly})
	st.Players[0].CountPlayed(ally)
	st.Players[0].CountPlayed(state.NewInstance(ally.Card))

	require.NoError(t, x.Resolve(context.Background(), st, 0, effects.Effect{Kind: effects.KindAttackPerAlly, Quantity: 2}))
	assert.Equal(t, 4, st.Players[0].Attack)
}

func TestRollDie(t *testing.T) {
	ctx := context.Background()
	roll := effects.Effect{Kind: effects.KindRollDie, Quantity: 2, Die: allAttack.ID}

	st := newTestGame(t, 1, diceYear)
	require.NoError(t, newTestExecutor(t, nil).Resolve(ctx, st, 0, roll))
	assert.Equal(t, 2, st.Players[0].Attack)

	off := newTestGame(t, 1, testYear)
	require.NoError(t, newTestExecutor(t, nil).Resolve(ctx, off, 0, roll))
	assert.Equal(t, 0, off.Players[0].Attack, "dice are ignored when the year does not use them")

	missing := newTestGame(t, 1, diceYear)
	require.NoError(t, newTestExecutor(t, nil).Resolve(ctx, missing, 0,
		effects.Effect{Kind: effects.KindRollDie, Die: "no-such-die"}))
	assert.Equal(t, 0, missing.Players[0].Attack)
}

func TestBindQuorumAndOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 2, testYear)
	x := newTestExecutor(t, nil)
	ids := x.Bind("coin-1", 0, []effects.Trigger{
		{Event: string(rules.EventSpellPlayed), Target: effects.TargetSelf, Quorum: 2,
			Effects: []effects.Effect{{Kind: effects.KindInfluence, Quantity: 1}}},
		{Event: string(rules.EventSpellPlayed), Target: effects.TargetAll, Once: true,
			Effects: []effects.Effect{{Kind: effects.KindAttack, Quantity: 1}}},
		{Event: "NOT_AN_EVENT", Effects: []effects.Effect{{Kind: effects.KindAttack, Quantity: 1}}},
	}, effects.DurationEndOfTurn)
	require.Len(t, ids, 2)

	spell := func(player int) {
		require.NoError(t, x.Emit(ctx, st, rules.NewEvent(rules.EventSpellPlayed, player)))
	}

	spell(1)
	assert.Equal(t, 1, st.Players[1].Attack, "once trigger fires for the subject")
	assert.Equal(t, 0, st.Players[0].Influence, "owner-only trigger ignores other heroes")

	spell(0)
	assert.Equal(t, 0, st.Players[0].Influence, "quorum of two not met yet")
	assert.Equal(t, 0, st.Players[0].Attack, "once trigger is gone")

	spell(0)
	assert.Equal(t, 1, st.Players[0].Influence)

	spell(0)
	x.EndTurn()
	spell(0)
	assert.Equal(t, 1, st.Players[0].Influence, "end of turn clears the trigger")
	assert.Equal(t, 0, x.Triggers().Len())
}

func TestQuorumResetsAtEndOfTurn(t *testing.T) {
	ctx := context.Background()
	st := newTestGame(t, 1, testYear)
	x := newTestExecutor(t, nil)

	x.Bind("coin-1", 0, []effects.Trigger{{
		Event: string(rules.EventItemPlayed), Quorum: 2,
		Effects: []effects.Effect{{Kind: effects.KindInfluence, Quantity: 1}},
	}}, effects.DurationPermanent)

	require.NoError(t, x.Emit(ctx, st, rules.NewEvent(rules.EventItemPlayed, 0)))
	x.EndTurn()
	require.NoError(t, x.Emit(ctx, st, rules.NewEvent(rules.EventItemPlayed, 0)))
	assert.Equal(t, 0, st.Players[0].Influence)

	require.NoError(t, x.Emit(ctx, st, rules.NewEvent(rules.EventItemPlayed, 0)))
	assert.Equal(t, 1, st.Players[0].Influence)
}

func TestTriggerDepthIsCapped(t *testing.T) {
	st := newTestGame(t, 1, testYear)
	st.Players[0].Life = 5
	x := NewExecutor(Config{MaxDepth: 3, Logger: zaptest.NewLogger(t)})

	// Every heal heals again.
	x.Bind("coin-1", 0, []effects.Trigger{{
		Event:   string(rules.EventHeroHealed),
		Effects: []effects.Effect{{Kind: effects.KindHeal, Quantity: 1}},
	}}, effects.DurationPermanent)

	var cut []rules.Event
	x.bus.SubscribeTyped(rules.EventTriggerLimit, func(evt rules.Event) { cut = append(cut, evt) })

	require.NoError(t, x.Resolve(context.Background(), st, 0, effects.Effect{Kind: effects.KindHeal, Quantity: 1}))
	assert.Equal(t, 9, st.Players[0].Life, "one heal plus three nested triggers")
	require.Len(t, cut, 1)
	assert.Equal(t, 3, cut[0].Amount)
	assert.Equal(t, 0, cut[0].Player)
	assert.False(t, rules.EventTriggerLimit.Triggerable())
}
