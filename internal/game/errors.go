package game

import (
	"errors"
	"fmt"
)

// Reasons an action is rejected. Match them with errors.Is.
var (
	ErrWrongPhase   = errors.New("wrong phase")
	ErrNotYourTurn  = errors.New("not the current player")
	ErrOutOfRange   = errors.New("index out of range")
	ErrInsufficient = errors.New("insufficient tokens")
	ErrGameOver     = errors.New("game is over")
	ErrBusy         = errors.New("another action is resolving")
	ErrNotInHand    = errors.New("card is not in hand")
)

// InvalidActionError rejects an action before it touches the game state.
type InvalidActionError struct {
	Action string
	Reason error
	Detail string
}

func (e *InvalidActionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s rejected: %v", e.Action, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %v (%s)", e.Action, e.Reason, e.Detail)
}

func (e *InvalidActionError) Unwrap() error {
	return e.Reason
}

func reject(action string, reason error, format string, args ...any) *InvalidActionError {
	return &InvalidActionError{Action: action, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
