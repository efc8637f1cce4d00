package effects

// Duration represents how long an effect or trigger registration lasts
type Duration string

const (
	// DurationInstant - Effect applies once and leaves nothing behind
	DurationInstant Duration = "instant"

	// DurationEndOfTurn - Effect expires at end of turn
	DurationEndOfTurn Duration = "end_of_turn"

	// DurationPermanent - Effect lasts until its source leaves play
	DurationPermanent Duration = "permanent"
)

func (d Duration) valid() bool {
	switch d {
	case "", DurationInstant, DurationEndOfTurn, DurationPermanent:
		return true
	}
	return false
}

// OrDefault returns d, or def when d is unset.
func (d Duration) OrDefault(def Duration) Duration {
	if d == "" {
		return def
	}
	return d
}

// ExpiresAtEndOfTurn reports whether end-of-turn cleanup removes things with this duration.
func (d Duration) ExpiresAtEndOfTurn() bool {
	return d == DurationEndOfTurn
}
