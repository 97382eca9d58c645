package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	ErrNotFound             = errors.New("store: not found")
	ErrDuplicateKey         = errors.New("store: duplicate key")
	ErrDuplicateID          = errors.New("store: duplicate ledger id")
	ErrInvalidQty           = errors.New("store: invalid quantity")
	ErrNegativeStock        = errors.New("store: negative stock")
	ErrConfirmationRequired = errors.New("store: confirmation required")
	ErrCorruptFile          = errors.New("store: corrupt data file")
	ErrPersistenceTimeout   = errors.New("store: persistence timeout")
	ErrWritesSuspended      = errors.New("store: writes suspended after persistence failure")
	ErrClosed               = errors.New("store: closed")
)

// ValidationError reports the first offending record found by document
// validation or by input checks on a mutation.
type ValidationError struct {
	Collection string
	Key        string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store: validation failed: %s.%s: %s", e.Collection, e.Field, e.Reason)
	}
	return fmt.Sprintf("store: validation failed: %s[%s].%s: %s", e.Collection, e.Key, e.Field, e.Reason)
}

// RecomputationMismatchError reports a stored stock_after (or item stock)
// that disagrees with the replayed chain. Detected on load and recovered by
// re-running the recomputation, not fatal.
type RecomputationMismatchError struct {
	SKU      string
	EventID  string
	Stored   int
	Computed int
}

func (e *RecomputationMismatchError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("store: stock mismatch for item %s: stored %d, computed %d", e.SKU, e.Stored, e.Computed)
	}
	return fmt.Sprintf("store: stock_after mismatch for event %s (item %s): stored %d, computed %d",
		e.EventID, e.SKU, e.Stored, e.Computed)
}

// failureReason maps an error to a metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrInvalidQty):
		return "invalid_qty"
	case errors.Is(err, ErrNegativeStock):
		return "negative_stock"
	case errors.Is(err, ErrConfirmationRequired):
		return "confirmation_required"
	case errors.Is(err, ErrPersistenceTimeout):
		return "persistence_timeout"
	case errors.Is(err, ErrWritesSuspended):
		return "writes_suspended"
	default:
		var ve *ValidationError
		if errors.As(err, &ve) {
			return "validation"
		}
		return "error"
	}
}
