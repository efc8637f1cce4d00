package effects

// EffectBuilder provides a fluent API for creating effect nodes
// This keeps hand-built card data and tests readable
type EffectBuilder struct {
	target Target
}

// NewEffectBuilder creates a new effect builder aimed at the acting player
func NewEffectBuilder() *EffectBuilder {
	return &EffectBuilder{
		target: TargetSelf,
	}
}

// Targeting sets the target of the built effects
func (b *EffectBuilder) Targeting(target Target) *EffectBuilder {
	b.target = target
	return b
}

// Build creates an effect of the given kind and quantity
func (b *EffectBuilder) Build(kind Kind, quantity int) Effect {
	target := b.target
	if kind.TargetsVillains() && !target.IsVillain() {
		target = TargetChosenVillain
	}
	return Effect{
		Kind:     kind,
		Quantity: quantity,
		Target:   target,
	}
}

// Damage creates a life-loss effect
func (b *EffectBuilder) Damage(n int) Effect { return b.Build(KindDamage, n) }

// Heal creates a life-gain effect
func (b *EffectBuilder) Heal(n int) Effect { return b.Build(KindHeal, n) }

// Influence creates an influence-token effect
func (b *EffectBuilder) Influence(n int) Effect { return b.Build(KindInfluence, n) }

// Attack creates an attack-token effect
func (b *EffectBuilder) Attack(n int) Effect { return b.Build(KindAttack, n) }

// Draw creates a card-draw effect
func (b *EffectBuilder) Draw(n int) Effect { return b.Build(KindDraw, n) }

// Discard creates a discard effect
func (b *EffectBuilder) Discard(n int) Effect { return b.Build(KindDiscard, n) }

// OneOf creates a node whose acting player resolves exactly one alternative
func OneOf(options ...Effect) Effect {
	return Effect{Kind: KindChoice, Options: options}
}

// Times creates a node that resolves sub n times
func Times(n int, sub Effect) Effect {
	return Effect{Kind: KindChoice, Quantity: n, Repeated: &sub}
}

// DarkMarks creates an effect adding (n > 0) or removing (n < 0) dark marks
func DarkMarks(n int) Effect {
	if n < 0 {
		return Effect{Kind: KindRemoveDarkMark, Quantity: -n}
	}
	return Effect{Kind: KindAddDarkMark, Quantity: n}
}
