package confirm

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

var (
	ErrNoSelection       = errors.New("no match selected")
	ErrCommitInProgress  = errors.New("commit already in progress for receipt")
	ErrUnknownField      = errors.New("unknown field")
	ErrFieldUnavailable  = errors.New("receipt has no value for field")
	ErrSuggestionInvalid = errors.New("suggestion does not reference a ledger entry")
)

// Stage names the step of a commit that failed.
type Stage string

const (
	StageUpdateEntry     Stage = "update_entry"
	StageAttachReference Stage = "attach_reference"
	StageMarkMatched     Stage = "mark_matched"
)

// CommitError reports a failed ledger or source mutation. The selection is
// kept so the commit can be retried.
type CommitError struct {
	Stage   Stage
	Receipt receipt.Key
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("committing match for %s (%s): %v", e.Receipt, e.Stage, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
