// Package grid implements the per-slot, per-carrier time-frequency resource
// model the scheduler allocates from: used/free CRB tracking per OFDM
// symbol, fixed-capacity scheduling result lists, and a ring of per-slot
// views indexed by offset from the current transmit slot.
package grid

// allocError is an allocation failure that carries a retryable flag. Grid
// and result-list exhaustion is retryable by postponing to a later slot;
// structural misuse is not.
type allocError struct {
	message   string
	retryable bool
}

// NewError creates an allocation error with the given retryable status.
func NewError(msg string, retryable bool) error {
	return &allocError{message: msg, retryable: retryable}
}

func (e *allocError) Error() string { return e.message }

func (e *allocError) IsRetryable() bool { return e.retryable }

// IsRetryable reports whether err is an allocation error that may succeed
// in a later slot. Unknown error types default to non-retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*allocError); ok {
		return e.IsRetryable()
	}
	return false
}

var (
	// ErrListFull indicates a fixed-capacity scheduling result list is at
	// capacity for this slot.
	ErrListFull = NewError("result list full", true)
	// ErrNoSpace indicates no contiguous free resource-block interval of
	// the requested length exists in the slot.
	ErrNoSpace = NewError("no contiguous free PRBs", true)
)
