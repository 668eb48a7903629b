package errors

import stderrors "errors"

// Arithmetic and authorization failures. None of them leave state mutated.
var (
	ErrNumericOverflow       = stderrors.New("ledger: numeric overflow")
	ErrUnderflow             = stderrors.New("ledger: underflow")
	ErrInsufficientBalance   = stderrors.New("ledger: insufficient balance")
	ErrInsufficientAllowance = stderrors.New("ledger: insufficient allowance")
	ErrMaxSupplyReached      = stderrors.New("ledger: max supply reached")
	ErrPaused                = stderrors.New("pausable: paused")
	ErrBadOrigin             = stderrors.New("roles: bad origin")
	ErrUnknownRole           = stderrors.New("roles: unknown role")
	ErrDuplicateRole         = stderrors.New("roles: duplicate role")
)

// Lifecycle failures.
var (
	ErrNotInitialized     = stderrors.New("ledger: not initialised")
	ErrAlreadyInitialized = stderrors.New("ledger: already initialised")
	ErrSetBalanceDisabled = stderrors.New("ledger: set balance disabled")
	ErrTerminated         = stderrors.New("ledger: program terminated")
	ErrCapacityExceeded   = stderrors.New("ledger: capacity limit exceeded")
)

// Construction-time failures. They abort initialisation entirely.
var (
	ErrInvalidConfig      = stderrors.New("invalid configuration")
	ErrSupplyExceedsCap   = stderrors.New("initial supply exceeds max supply")
	ErrDescriptionTooLong = stderrors.New("description too long")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNumericOverflow, "numeric_overflow"},
	{ErrUnderflow, "underflow"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrInsufficientAllowance, "insufficient_allowance"},
	{ErrMaxSupplyReached, "max_supply_reached"},
	{ErrPaused, "paused"},
	{ErrBadOrigin, "bad_origin"},
	{ErrUnknownRole, "unknown_role"},
	{ErrDuplicateRole, "duplicate_role"},
	{ErrNotInitialized, "not_initialized"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrSetBalanceDisabled, "set_balance_disabled"},
	{ErrTerminated, "terminated"},
	{ErrCapacityExceeded, "capacity_exceeded"},
	{ErrInvalidConfig, "invalid_config"},
}

// Kind returns a short stable label for err suitable for logs and metric
// labels. Nil maps to "ok" and unrecognised errors to "internal".
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
