package synchronization

import (
	"errors"
	"fmt"

	"github.com/onflow/flow-blocksync/model/flow"
)

// ErrSyncQueueFull is returned when a block with a missing parent cannot be
// scheduled for synchronization, because the inbound queue is full or too
// many ancestors are pending. No request is sent for the parent, so the
// caller has to try again later.
var ErrSyncQueueFull = errors.New("synchronization queue full")

// MissingAncestorError indicates that an ancestor of a block, which must be
// stored because a descendant of it is stored, could not be found. This
// breaks the invariant that blocks are only stored after their parents, and
// indicates a bug or a corrupted database.
type MissingAncestorError struct {
	BlockID    flow.Identifier // the stored block whose parent is missing
	AncestorID flow.Identifier
	err        error
}

func NewMissingAncestorError(blockID flow.Identifier, ancestorID flow.Identifier, err error) MissingAncestorError {
	return MissingAncestorError{
		BlockID:    blockID,
		AncestorID: ancestorID,
		err:        err,
	}
}

func (e MissingAncestorError) Error() string {
	return fmt.Sprintf("ancestor %x of stored block %x is missing: %v", e.AncestorID, e.BlockID, e.err)
}

func (e MissingAncestorError) Unwrap() error {
	return e.err
}

// IsMissingAncestorError returns whether the given error is a MissingAncestorError
func IsMissingAncestorError(err error) bool {
	var e MissingAncestorError
	return errors.As(err, &e)
}
