package game

import (
	"context"

	"go.uber.org/zap"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/rules"
	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/state"
)

// runAutomatic plays automatic phases until a hero has to act or the game ends.
func (g *Game) runAutomatic(ctx context.Context) error {
	for !g.state.Over() && !g.state.Phase.PlayerDriven() {
		if err := g.runPhase(ctx, g.state.Phase); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// The rest of the phase is abandoned; play goes on.
			g.logger.Warn("phase interrupted", zap.String("phase", g.state.Phase.String()), zap.Error(err))
		}
		if g.state.Over() {
			break
		}
		if err := g.advance(ctx); err != nil {
			return err
		}
	}
	g.finish()
	return nil
}

func (g *Game) runPhase(ctx context.Context, phase state.Phase) error {
	switch phase {
	case state.PhaseDarkArts:
		return g.runDarkArts(ctx)
	case state.PhaseVillains:
		return g.runVillains(ctx)
	case state.PhaseHorcrux:
		return g.runHorcruxes(ctx)
	case state.PhaseEndTurn:
		return g.runEndTurn()
	}
	return nil
}

// advance moves the phase machine one step and mirrors the phase into the state.
func (g *Game) advance(ctx context.Context) error {
	to, err := g.machine.Advance(ctx)
	if err != nil {
		return err
	}
	g.state.Phase = to
	g.notify(rules.EventPhaseChanged, g.state.Current)

	switch to {
	case state.PhaseDarkArts:
		g.notify(rules.EventTurnStarted, g.state.Current)
	case state.PhasePlayCards:
		return g.startPlayCards(ctx)
	}
	return nil
}

// finish moves the machine to GameOver once the outcome is decided.
func (g *Game) finish() {
	if !g.state.Over() || !g.machine.Conclude(context.Background()) {
		return
	}
	g.state.Phase = state.PhaseGameOver
	g.logger.Info("game over",
		zap.String("outcome", g.state.Outcome().String()),
		zap.Int("turn", g.state.Turn),
		zap.Int("dark_marks", g.state.Location.Marks.Count),
	)
	g.notify(rules.EventGameOver, state.NoPlayer)
}

func (g *Game) runDarkArts(ctx context.Context) error {
	st := g.state
	for i := 0; i < st.Location.Card.DarkArtsPerTurn() && !st.Over(); i++ {
		card, ok := st.DrawDarkArts()
		if !ok {
			g.logger.Warn("dark arts deck is empty")
			return nil
		}
		g.logger.Debug("dark arts revealed", zap.String("card", card.Card.ID), zap.Int("player", st.Current))

		err := g.exec.ResolveAll(ctx, st, st.Current, card.Card.Effects)
		st.DarkArtsDiscard.Add(card)
		if err != nil {
			return err
		}
		if card.Card.RevealsVillain {
			evt := rules.NewEvent(rules.EventDarkMarkOrVillainRevealed, st.Current).FromSource(card)
			if err := g.exec.Emit(ctx, st, evt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Game) runVillains(ctx context.Context) error {
	st := g.state
	if err := g.exec.RevealVillains(ctx, st); err != nil {
		return err
	}
	for _, v := range append([]*state.Villain(nil), st.Villains...) {
		if st.Over() {
			return nil
		}
		if st.VillainSlot(v.ID) < 0 {
			continue
		}
		if v.BlockedAgainst(st.Current, st.Turn) {
			v.ClearBlock()
			g.logger.Debug("villain blocked this turn", zap.String("villain", v.Card.ID), zap.Int("player", st.Current))
			continue
		}
		if err := g.exec.ResolveAll(ctx, st, st.Current, v.Card.Effects); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) runHorcruxes(ctx context.Context) error {
	st := g.state
	for _, h := range st.Horcruxes {
		if st.Over() {
			return nil
		}
		if err := g.exec.ResolveAll(ctx, st, st.Current, h.Card.Effects); err != nil {
			return err
		}
	}
	return nil
}

// startPlayCards resolves the current hero's proficiency bonus.
func (g *Game) startPlayCards(ctx context.Context) error {
	p := g.state.CurrentPlayer()
	if p.Proficiency == nil || len(p.Proficiency.Effects) == 0 {
		return nil
	}
	g.logger.Debug("proficiency bonus", zap.String("proficiency", p.Proficiency.ID), zap.Int("player", p.Index))
	return g.exec.ResolveAll(ctx, g.state, p.Index, p.Proficiency.Effects)
}

// runEndTurn cleans up the turn and hands over to the next hero.
func (g *Game) runEndTurn() error {
	st := g.state
	p := st.CurrentPlayer()

	cleared := g.exec.EndTurn()
	for _, q := range st.Players {
		q.ClearTurnRestrictions()
		q.ResetTurn()
	}
	for _, v := range st.Villains {
		if v.BlockedAgainst(st.Current, st.Turn) {
			v.ClearBlock()
		}
	}
	discarded := p.DiscardHand()
	g.logger.Debug("turn ended",
		zap.Int("player", st.Current),
		zap.Int("turn", st.Turn),
		zap.Int("discarded", discarded),
		zap.Int("triggers_cleared", cleared),
	)
	if st.Over() {
		return nil
	}

	p.DrawCards(st.HandSize, st.Shuffle)
	st.Current = st.NextIndex(st.Current)
	st.Turn++

	if next := st.CurrentPlayer(); next.Stunned {
		next.Revive()
		g.logger.Info("hero recovered", zap.Int("player", next.Index), zap.String("hero", next.Hero.ID))
	}
	return nil
}
