package ledger

import "errors"

var (
	// ErrInsufficientFunds means a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient coins")
	// ErrDuplicateSubmission means the worker already has a submission for
	// the task. Callers should treat it as an idempotent no-op, not a fault.
	ErrDuplicateSubmission = errors.New("already submitted")
	// ErrSlotUnderflow means a slot decrement was attempted on a task with
	// no open slots left.
	ErrSlotUnderflow = errors.New("no open worker slots")
	// ErrNotFound means the referenced task, submission, withdrawal or user
	// does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a state transition lost a race: the record is no
	// longer in the state the transition requires (e.g. approving a
	// submission that is not pending anymore).
	ErrConflict = errors.New("conflicting state transition")
	// ErrForbidden means the actor does not own the resource.
	ErrForbidden = errors.New("forbidden")
)
