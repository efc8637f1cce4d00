package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/targeting"
)

// DefaultMaxDepth bounds how deeply triggers may fire other triggers.
const DefaultMaxDepth = 8

// DiceSource looks up die templates for roll_die effects.
type DiceSource interface {
	Die(id string) (*cards.Die, error)
}

// Config wires an Executor to its collaborators.
type Config struct {
	Bus      *rules.EventBus
	Triggers *rules.TriggerRegistry
	Chooser  Chooser
	Dice     DiceSource
	MaxDepth int
	Logger   *zap.Logger
}

// Executor resolves effect trees against the game state. It also binds card
// triggers into the registry, since quorum and once-only counting belong to
// the registering side.
type Executor struct {
	bus      *rules.EventBus
	triggers *rules.TriggerRegistry
	chooser  Chooser
	dice     DiceSource
	maxDepth int
	logger   *zap.Logger

	depth   int
	quorums map[string]*quorum
}

type quorum struct {
	need int
	seen int
}

// NewExecutor creates an executor. Missing collaborators get defaults: a
// fresh bus and registry, FirstChoice and a depth of DefaultMaxDepth.
func NewExecutor(cfg Config) *Executor {
	x := &Executor{
		bus:      cfg.Bus,
		triggers: cfg.Triggers,
		chooser:  cfg.Chooser,
		dice:     cfg.Dice,
		maxDepth: cfg.MaxDepth,
		logger:   cfg.Logger,
		quorums:  make(map[string]*quorum),
	}
	if x.bus == nil {
		x.bus = rules.NewEventBus()
	}
	if x.triggers == nil {
		x.triggers = rules.NewTriggerRegistry()
	}
	if x.chooser == nil {
		x.chooser = FirstChoice{}
	}
	if x.maxDepth <= 0 {
		x.maxDepth = DefaultMaxDepth
	}
	if x.logger == nil {
		x.logger = zap.NewNop()
	}
	return x
}

// Triggers returns the registry the executor binds into.
func (x *Executor) Triggers() *rules.TriggerRegistry { return x.triggers }

// Bus returns the event bus the executor publishes on.
func (x *Executor) Bus() *rules.EventBus { return x.bus }

// ResolveAll resolves effects in order for actor.
func (x *Executor) ResolveAll(ctx context.Context, st *state.Game, actor int, list []effects.Effect) error {
	for _, eff := range list {
		if err := x.Resolve(ctx, st, actor, eff); err != nil {
			return err
		}
	}
	return nil
}

// Resolve applies one effect node: one chosen alternative, the repeated
// sub-effect Quantity times, or the kind itself on its resolved targets.
// Nothing resolves once the game is decided.
func (x *Executor) Resolve(ctx context.Context, st *state.Game, actor int, eff effects.Effect) error {
	if st.Over() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case len(eff.Options) > 0:
		return x.resolveOptions(ctx, st, actor, eff)
	case eff.Repeated != nil:
		for i := 0; i < eff.Quantity; i++ {
			if err := x.Resolve(ctx, st, actor, *eff.Repeated); err != nil {
				return err
			}
		}
		return nil
	}
	return x.apply(ctx, st, actor, eff)
}

func (x *Executor) resolveOptions(ctx context.Context, st *state.Game, actor int, eff effects.Effect) error {
	answer := 0
	if len(eff.Options) > 1 {
		c := Choice{Kind: ChoiceOption, Player: actor, Prompt: "choose one", Options: make([]string, len(eff.Options))}
		for i, opt := range eff.Options {
			c.Options[i] = opt.String()
		}
		var err error
		if answer, err = x.chooser.ChooseOne(ctx, c); err != nil {
			return fmt.Errorf("choose option: %w", err)
		}
		if err := checkAnswer(c, answer); err != nil {
			return err
		}
	}
	x.logger.Debug("option chosen", zap.Int("player", actor), zap.String("effect", eff.Options[answer].String()))
	return x.Resolve(ctx, st, actor, eff.Options[answer])
}

func (x *Executor) apply(ctx context.Context, st *state.Game, actor int, eff effects.Effect) error {
	switch eff.Kind {
	case effects.KindAddDarkMark:
		return x.AddDarkMarks(ctx, st, actor, eff.Amount())
	case effects.KindRemoveDarkMark:
		return x.RemoveDarkMarks(ctx, st, actor, eff.Amount())
	case effects.KindRollDie:
		return x.rollDie(ctx, st, actor, eff)
	case effects.KindChoice:
		x.logger.Warn("choice effect without options", zap.String("effect", eff.String()))
		return nil
	}

	res := targeting.Resolve(st, actor, eff.Kind, eff.Target, eff.Picks())
	if res.Empty() {
		x.logger.Debug("effect has no targets", zap.String("effect", eff.String()), zap.Int("player", actor))
		return nil
	}
	if (res.Scope == targeting.ScopeVillain) != eff.Kind.TargetsVillains() {
		x.logger.Warn("effect kind does not fit its target", zap.String("effect", eff.String()))
		return nil
	}
	targets, err := x.pickTargets(ctx, st, actor, res)
	if err != nil {
		return err
	}

	if res.Scope == targeting.ScopeVillain {
		villains := make([]*state.Villain, 0, len(targets))
		for _, slot := range targets {
			if v, ok := st.Villain(slot); ok {
				villains = append(villains, v)
			}
		}
		for _, v := range villains {
			if st.Over() {
				break
			}
			if st.VillainSlot(v.ID) < 0 {
				continue
			}
			if err := x.applyToVillain(ctx, st, actor, v, eff); err != nil {
				return err
			}
		}
		return nil
	}

	for _, seat := range targets {
		if st.Over() {
			break
		}
		if err := x.applyToPlayer(ctx, st, seat, eff); err != nil {
			return err
		}
	}
	return nil
}

// pickTargets returns the fixed targets or asks the chooser for distinct picks.
func (x *Executor) pickTargets(ctx context.Context, st *state.Game, actor int, res targeting.Resolution) ([]int, error) {
	if !res.NeedsChoice() {
		return res.Fixed, nil
	}

	kind := ChoicePlayer
	if res.Scope == targeting.ScopeVillain {
		kind = ChoiceVillain
	}
	remaining := append([]int(nil), res.Candidates...)
	picked := make([]int, 0, res.Requirement.MaxTargets)
	for len(picked) < res.Requirement.MaxTargets && len(remaining) > 0 {
		c := Choice{Kind: kind, Player: actor, Prompt: res.Requirement.Description, Refs: remaining}
		for _, ref := range remaining {
			c.Options = append(c.Options, targetLabel(st, res.Scope, ref))
		}
		answer, err := x.chooser.ChooseTarget(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("choose target: %w", err)
		}
		if err := checkAnswer(c, answer); err != nil {
			return nil, err
		}
		picked = append(picked, remaining[answer])
		remaining = append(remaining[:answer:answer], remaining[answer+1:]...)
	}

	sel := &targeting.TargetSelection{Targets: picked, Candidates: res.Candidates, Requirement: *res.Requirement}
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChoice, err)
	}
	return picked, nil
}

func targetLabel(st *state.Game, scope targeting.Scope, ref int) string {
	if scope == targeting.ScopeVillain {
		if v, ok := st.Villain(ref); ok {
			return v.Card.Name
		}
	} else if p, ok := st.PlayerAt(ref); ok {
		return p.Name()
	}
	return fmt.Sprintf("#%d", ref)
}

func (x *Executor) applyToPlayer(ctx context.Context, st *state.Game, seat int, eff effects.Effect) error {
	p := st.Players[seat]
	n := eff.Amount()

	switch eff.Kind {
	case effects.KindDamage:
		return x.Damage(ctx, st, seat, n)
	case effects.KindHeal:
		if gained := p.GainLife(n); gained > 0 {
			return x.Emit(ctx, st, rules.NewEventWithAmount(rules.EventHeroHealed, seat, gained))
		}
	case effects.KindInfluence:
		p.Influence += n
	case effects.KindAttack:
		p.Attack += n
	case effects.KindAttackPerAlly:
		p.Attack += n * len(p.AlliesPlayed)
	case effects.KindDraw:
		return x.drawExtra(ctx, st, seat, n)
	case effects.KindDiscard:
		return x.Discard(ctx, st, seat, n)
	case effects.KindPreventDraw, effects.KindPreventHeal:
		d := eff.Duration.OrDefault(effects.DurationEndOfTurn)
		if d == effects.DurationInstant {
			d = effects.DurationEndOfTurn
		}
		p.Restrict(eff.Kind, d)
	default:
		x.logger.Warn("unhandled hero effect", zap.String("kind", string(eff.Kind)))
	}
	return nil
}

func (x *Executor) applyToVillain(ctx context.Context, st *state.Game, actor int, v *state.Villain, eff effects.Effect) error {
	n := eff.Amount()
	switch eff.Kind {
	case effects.KindBlockVillain:
		v.Block(st.NextIndex(actor), st.Turn)
		x.logger.Debug("villain blocked", zap.String("villain", v.Card.ID), zap.Int("for_player", v.BlockedFor))
	case effects.KindDamageVillain:
		_, err := x.hit(ctx, st, actor, v, n)
		return err
	case effects.KindHealVillain:
		v.Mend(n)
	}
	return nil
}

// Damage makes seat lose n life, stunning the hero at zero.
func (x *Executor) Damage(ctx context.Context, st *state.Game, seat, n int) error {
	p := st.Players[seat]
	lost := p.LoseLife(n)
	if lost == 0 {
		return nil
	}
	if err := x.Emit(ctx, st, rules.NewEventWithAmount(rules.EventHeroDamaged, seat, lost)); err != nil {
		return err
	}
	if p.Life == 0 && !p.Stunned {
		return x.stun(ctx, st, seat)
	}
	return nil
}

// stun adds a dark mark and discards half the hero's hand.
func (x *Executor) stun(ctx context.Context, st *state.Game, seat int) error {
	p := st.Players[seat]
	p.Stunned = true
	x.logger.Info("hero stunned", zap.Int("player", seat), zap.String("hero", p.Hero.ID))

	if err := x.AddDarkMarks(ctx, st, seat, 1); err != nil {
		return err
	}
	if err := x.Discard(ctx, st, seat, p.Hand.Len()/2); err != nil {
		return err
	}
	return x.Emit(ctx, st, rules.NewEvent(rules.EventHeroStunned, seat))
}

// Discard moves n cards of the hero's choosing from hand to discard.
func (x *Executor) Discard(ctx context.Context, st *state.Game, seat, n int) error {
	p := st.Players[seat]
	for i := 0; i < n && !p.Hand.Empty(); i++ {
		idx := 0
		if p.Hand.Len() > 1 {
			hand := p.Hand.Cards()
			c := Choice{Kind: ChoiceDiscard, Player: seat, Prompt: "discard a card", Options: make([]string, len(hand)), Refs: make([]int, len(hand))}
			for j, card := range hand {
				c.Options[j] = card.Card.Name
				c.Refs[j] = j
			}
			answer, err := x.chooser.ChooseOne(ctx, c)
			if err != nil {
				return fmt.Errorf("choose discard: %w", err)
			}
			if err := checkAnswer(c, answer); err != nil {
				return err
			}
			idx = answer
		}
		card, _ := p.DiscardAt(idx)
		if err := x.Emit(ctx, st, rules.NewEvent(rules.EventHeroDiscarded, seat).FromSource(card)); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) drawExtra(ctx context.Context, st *state.Game, seat, n int) error {
	p := st.Players[seat]
	if p.Restricted(effects.KindPreventDraw) {
		x.logger.Debug("draw prevented", zap.Int("player", seat), zap.Int("cards", n))
		return nil
	}
	drawn := p.DrawCards(n, st.Shuffle)
	if drawn == 0 {
		return nil
	}
	return x.Emit(ctx, st, rules.NewEventWithAmount(rules.EventExtraCardDraw, seat, drawn))
}

// AddDarkMarks places marks on the location. Filling it concludes the game in defeat.
func (x *Executor) AddDarkMarks(ctx context.Context, st *state.Game, actor, n int) error {
	added := st.Location.Marks.Add(n)
	if st.Location.Full() && st.Conclude(state.OutcomeDefeat) {
		x.logger.Info("location lost",
			zap.String("location", st.Location.Card.ID),
			zap.Int("dark_marks", st.Location.Marks.Count),
		)
	}
	if added == 0 {
		return nil
	}
	return x.Emit(ctx, st, rules.NewEventWithAmount(rules.EventDarkMarkAdded, actor, added))
}

// RemoveDarkMarks takes marks off the location.
func (x *Executor) RemoveDarkMarks(ctx context.Context, st *state.Game, actor, n int) error {
	removed := st.Location.Marks.Remove(n)
	if removed == 0 {
		return nil
	}
	return x.Emit(ctx, st, rules.NewEventWithAmount(rules.EventDarkMarkRemoved, actor, removed))
}

func (x *Executor) rollDie(ctx context.Context, st *state.Game, actor int, eff effects.Effect) error {
	if !st.Year.Mechanics.Dice {
		x.logger.Warn("dice are not used this year", zap.String("year", st.Year.ID), zap.String("die", eff.Die))
		return nil
	}
	if x.dice == nil {
		x.logger.Warn("no dice source configured", zap.String("die", eff.Die))
		return nil
	}
	die, err := x.dice.Die(eff.Die)
	if err != nil {
		x.logger.Warn("skipping roll", zap.Error(err))
		return nil
	}
	for i := 0; i < eff.Amount(); i++ {
		face := die.Faces[st.Roll(len(die.Faces))]
		x.logger.Debug("die rolled", zap.String("die", die.ID), zap.String("face", face.String()))
		if err := x.Resolve(ctx, st, actor, face); err != nil {
			return err
		}
	}
	return nil
}

// HitVillain deals n damage to the villain in slot and reports whether it was defeated.
func (x *Executor) HitVillain(ctx context.Context, st *state.Game, actor, slot, n int) (bool, error) {
	v, ok := st.Villain(slot)
	if !ok {
		return false, fmt.Errorf("no villain in slot %d", slot)
	}
	return x.hit(ctx, st, actor, v, n)
}

func (x *Executor) hit(ctx context.Context, st *state.Game, actor int, v *state.Villain, n int) (bool, error) {
	landed := v.Hit(n)
	x.logger.Debug("villain hit",
		zap.String("villain", v.Card.ID),
		zap.Int("damage", landed),
		zap.Int("remaining", v.Remaining()),
	)
	if !v.Defeated() {
		return false, nil
	}
	return true, x.defeat(ctx, st, actor, v)
}

// defeat removes the villain, pays its reward to actor, refills the slots
// and checks for victory.
func (x *Executor) defeat(ctx context.Context, st *state.Game, actor int, v *state.Villain) error {
	if _, ok := st.RemoveVillain(st.VillainSlot(v.ID)); !ok {
		return nil
	}
	x.Unbind(v.ID)
	x.logger.Info("villain defeated", zap.String("villain", v.Card.ID), zap.Int("player", actor))

	if v.Card.Villain != nil {
		if err := x.ResolveAll(ctx, st, actor, v.Card.Villain.Reward); err != nil {
			return err
		}
	}
	if err := x.Emit(ctx, st, rules.NewEvent(rules.EventVillainDefeated, actor).FromSource(v.CardInstance)); err != nil {
		return err
	}
	if err := x.RevealVillains(ctx, st); err != nil {
		return err
	}
	if st.AllVillainsDefeated() && st.Conclude(state.OutcomeVictory) {
		x.logger.Info("all villains defeated")
	}
	return nil
}

// RevealVillains refills the active villain slots, binding each newcomer's
// triggers for as long as it stays in play.
func (x *Executor) RevealVillains(ctx context.Context, st *state.Game) error {
	for _, v := range st.RevealVillains() {
		x.Bind(v.ID, state.NoPlayer, v.Card.Triggers, effects.DurationPermanent)
		x.logger.Info("villain revealed", zap.String("villain", v.Card.ID), zap.Int("life", v.Life()))
		evt := rules.NewEvent(rules.EventDarkMarkOrVillainRevealed, st.Current).FromSource(v.CardInstance)
		if err := x.Emit(ctx, st, evt); err != nil {
			return err
		}
	}
	return nil
}

// Emit publishes evt and activates the triggers registered for it. Triggers
// stay quiet once the game is decided or the depth limit is hit.
func (x *Executor) Emit(ctx context.Context, st *state.Game, evt rules.Event) error {
	evt.Phase = st.Phase
	evt.Turn = st.Turn
	x.bus.Publish(evt)

	if st.Over() || !evt.Kind.Triggerable() {
		return nil
	}
	if x.depth >= x.maxDepth {
		x.logger.Warn("trigger depth limit reached", zap.String("event", string(evt.Kind)), zap.Int("depth", x.depth))
		cut := rules.NewEventWithAmount(rules.EventTriggerLimit, evt.Player, x.depth)
		cut.SourceID, cut.CardID = evt.SourceID, evt.CardID
		cut.Phase, cut.Turn = st.Phase, st.Turn
		x.bus.Publish(cut)
		return nil
	}
	x.depth++
	defer func() { x.depth-- }()

	_, err := x.triggers.Activate(ctx, evt, st, x.runEntry)
	return err
}

func (x *Executor) runEntry(ctx context.Context, st *state.Game, player int, entry rules.TriggerEntry) error {
	if _, ok := st.PlayerAt(player); !ok {
		player = entry.Owner
		if _, ok := st.PlayerAt(player); !ok {
			player = st.Current
		}
	}
	x.logger.Debug("trigger fired",
		zap.String("event", string(entry.Event)),
		zap.String("source", entry.SourceID),
		zap.Int("player", player),
	)
	return x.ResolveAll(ctx, st, player, entry.Effects)
}

// Bind registers the trigger declarations of sourceID for owner. Declarations
// without a duration get def. Owner-only, quorum and once-only rules are
// enforced by each entry's admit hook.
func (x *Executor) Bind(sourceID string, owner int, triggers []effects.Trigger, def effects.Duration) []string {
	ids := make([]string, 0, len(triggers))
	for _, trig := range triggers {
		kind := rules.EventKind(trig.Event)
		if !kind.Triggerable() {
			x.logger.Warn("skipping trigger on unknown event", zap.String("source", sourceID), zap.String("event", trig.Event))
			continue
		}

		q := &quorum{need: trig.Threshold()}
		ownerOnly := trig.OwnerOnly()
		once := trig.Once
		var id string
		entry := rules.TriggerEntry{
			SourceID: sourceID,
			Owner:    owner,
			Effects:  trig.Effects,
			Duration: trig.Duration.OrDefault(def),
			Admit: func(e rules.Event) bool {
				if ownerOnly && e.Player != owner {
					return false
				}
				q.seen++
				if q.seen < q.need {
					return false
				}
				q.seen = 0
				if once {
					x.triggers.Remove(id)
					delete(x.quorums, id)
				}
				return true
			},
		}
		id = x.triggers.Register(kind, entry)
		x.quorums[id] = q
		ids = append(ids, id)
	}
	return ids
}

// Unbind removes every trigger registered by sourceID.
func (x *Executor) Unbind(sourceID string) int {
	n := x.triggers.Unregister(sourceID)
	x.prune()
	return n
}

// EndTurn drops end-of-turn triggers and restarts every quorum count.
func (x *Executor) EndTurn() int {
	n := x.triggers.ClearEndOfTurn()
	x.prune()
	for _, q := range x.quorums {
		q.seen = 0
	}
	return n
}

func (x *Executor) prune() {
	for id := range x.quorums {
		if !x.triggers.Has(id) {
			delete(x.quorums, id)
		}
	}
}
