package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/cards"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

const (
	actionPlayCard = "play card"
	actionAttack   = "attack"
	actionBuy      = "buy"
	actionAdvance  = "advance phase"
)

var playedEvents = map[cards.Kind]rules.EventKind{
	cards.KindAlly:  rules.EventAllyPlayed,
	cards.KindItem:  rules.EventItemPlayed,
	cards.KindSpell: rules.EventSpellPlayed,
}

// PlayCard plays the card at handIndex of player's hand: its triggers are bound
// until end of turn, its effects resolve and it goes to the discard pile.
func (g *Game) PlayCard(ctx context.Context, player, handIndex int) (Result, error) {
	if err := g.begin(actionPlayCard); err != nil {
		return Result{}, err
	}
	defer g.end()

	if rej := g.check(actionPlayCard, player, state.PhasePlayCards); rej != nil {
		return g.rejected(rej)
	}
	p := g.state.Players[player]
	if _, ok := p.Hand.At(handIndex); !ok {
		return g.rejected(reject(actionPlayCard, ErrOutOfRange, "hand index %d of %d", handIndex, p.Hand.Len()))
	}
	return g.play(ctx, p, handIndex)
}

// PlayCardByID plays the hand card with the given instance id.
func (g *Game) PlayCardByID(ctx context.Context, player int, instanceID string) (Result, error) {
	if err := g.begin(actionPlayCard); err != nil {
		return Result{}, err
	}
	defer g.end()

	if rej := g.check(actionPlayCard, player, state.PhasePlayCards); rej != nil {
		return g.rejected(rej)
	}
	p := g.state.Players[player]
	idx := p.Hand.IndexOf(instanceID)
	if idx < 0 {
		g.logger.Warn("card is not in hand", zap.Int("player", player), zap.String("instance", instanceID))
		return g.rejected(reject(actionPlayCard, ErrNotInHand, "instance %s", instanceID))
	}
	return g.play(ctx, p, idx)
}

func (g *Game) play(ctx context.Context, p *state.Player, handIndex int) (Result, error) {
	st := g.state
	card, _ := p.Hand.RemoveAt(handIndex)
	g.logger.Debug("card played",
		zap.Int("player", p.Index),
		zap.String("card", card.Card.ID),
		zap.String("kind", string(card.Card.Kind)),
	)

	g.exec.Bind(card.ID, p.Index, card.Card.Triggers, effects.DurationEndOfTurn)
	err := g.exec.ResolveAll(ctx, st, p.Index, card.Card.Effects)
	if err == nil {
		p.CountPlayed(card)
		if kind, ok := playedEvents[card.Card.Kind]; ok {
			err = g.exec.Emit(ctx, st, rules.NewEvent(kind, p.Index).FromSource(card))
		}
	} else if n := g.exec.Unbind(card.ID); n > 0 {
		// An unresolved card is not counted as played, so it keeps no triggers.
		g.logger.Debug("card triggers dropped", zap.String("card", card.Card.ID), zap.Int("triggers", n))
	}
	p.Discard.Add(card)
	g.finish()
	g.logStep(actionPlayCard, p.Index, handIndex, err)
	if err != nil {
		return g.result(), fmt.Errorf("play %s: %w", card.Card.ID, err)
	}
	return g.result(), nil
}

// Attack spends one attack token to deal 1 damage to the villain in villainSlot.
func (g *Game) Attack(ctx context.Context, player, villainSlot int) (Result, error) {
	if err := g.begin(actionAttack); err != nil {
		return Result{}, err
	}
	defer g.end()

	if rej := g.check(actionAttack, player, state.PhaseAttack); rej != nil {
		return g.rejected(rej)
	}
	st := g.state
	p := st.Players[player]
	if p.Attack < 1 {
		return g.rejected(reject(actionAttack, ErrInsufficient, "no attack tokens"))
	}
	v, ok := st.Villain(villainSlot)
	if !ok {
		return g.rejected(reject(actionAttack, ErrOutOfRange, "villain slot %d of %d", villainSlot, len(st.Villains)))
	}

	p.Attack--
	defeated, err := g.exec.HitVillain(ctx, st, player, villainSlot, 1)
	g.logger.Debug("villain attacked",
		zap.Int("player", player),
		zap.String("villain", v.Card.ID),
		zap.Int("damage", v.Damage.Count),
		zap.Bool("defeated", defeated),
	)
	g.finish()
	g.logStep(actionAttack, player, villainSlot, err)
	if err != nil {
		return g.result(), fmt.Errorf("attack %s: %w", v.Card.ID, err)
	}
	return g.result(), nil
}

// Buy spends influence on the card in marketSlot, which goes to the discard
// pile. The slot is refilled from the shop deck, or stays empty.
func (g *Game) Buy(ctx context.Context, player, marketSlot int) (Result, error) {
	if err := g.begin(actionBuy); err != nil {
		return Result{}, err
	}
	defer g.end()

	if rej := g.check(actionBuy, player, state.PhaseBuy); rej != nil {
		return g.rejected(rej)
	}
	st := g.state
	p := st.Players[player]
	offer, ok := st.Market.Slot(marketSlot)
	if !ok {
		return g.rejected(reject(actionBuy, ErrOutOfRange, "market slot %d is empty or missing", marketSlot))
	}
	if p.Influence < offer.Card.Cost {
		return g.rejected(reject(actionBuy, ErrInsufficient, "%s costs %d, have %d", offer.Card.ID, offer.Card.Cost, p.Influence))
	}

	p.Influence -= offer.Card.Cost
	card, _ := st.Market.Take(marketSlot)
	p.Discard.Add(card)
	g.logger.Debug("card bought",
		zap.Int("player", player),
		zap.String("card", card.Card.ID),
		zap.Int("cost", card.Card.Cost),
		zap.Int("shop_left", st.Market.ShopLen()),
	)

	err := g.exec.Emit(ctx, st, rules.NewEvent(rules.EventCardBought, player).FromSource(card))
	g.finish()
	g.logStep(actionBuy, player, marketSlot, err)
	if err != nil {
		return g.result(), fmt.Errorf("buy %s: %w", card.Card.ID, err)
	}
	return g.result(), nil
}

// AdvancePhase ends the current player-driven phase and plays the automatic
// phases that follow, stopping at the next player-driven phase or game over.
// From an automatic phase left behind by a cancelled context it resumes play.
func (g *Game) AdvancePhase(ctx context.Context) (Result, error) {
	if err := g.begin(actionAdvance); err != nil {
		return Result{}, err
	}
	defer g.end()

	st := g.state
	if st.Over() {
		return g.rejected(reject(actionAdvance, ErrGameOver, "outcome %s", st.Outcome()))
	}
	var err error
	if st.Phase.PlayerDriven() {
		err = g.advance(ctx)
	}
	if err == nil {
		err = g.runAutomatic(ctx)
	}
	g.logStep(actionAdvance, state.NoPlayer, 0, err)
	return g.result(), err
}
