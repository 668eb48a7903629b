package common

import ledgererrors "tokenledger/core/errors"

// PauseView exposes the global circuit breaker state.
type PauseView interface {
	IsPaused() bool
}

// Guard fails with ErrPaused while the breaker is engaged. A nil view never
// blocks.
func Guard(p PauseView) error {
	if p == nil {
		return nil
	}
	if p.IsPaused() {
		return ledgererrors.ErrPaused
	}
	return nil
}
