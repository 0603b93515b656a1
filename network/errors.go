package network

import (
	"errors"
	"fmt"

	"github.com/onflow/flow-blocksync/model/flow"
)

var (
	EmptyTargetList = errors.New("target list empty")
)

// UnknownTargetError indicates that a message was addressed to a node which
// is not part of the network.
type UnknownTargetError struct {
	TargetID flow.Identifier
}

func (e UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target node %x", e.TargetID)
}

// IsUnknownTargetError returns whether an error is UnknownTargetError
func IsUnknownTargetError(err error) bool {
	var e UnknownTargetError
	return errors.As(err, &e)
}

// InvalidMessageError indicates that a received message is not of a type the
// receiving engine can handle.
type InvalidMessageError struct {
	OriginID flow.Identifier
	Event    interface{}
}

func NewInvalidMessageError(originID flow.Identifier, event interface{}) InvalidMessageError {
	return InvalidMessageError{OriginID: originID, Event: event}
}

func (e InvalidMessageError) Error() string {
	return fmt.Sprintf("invalid message type %T from node %x", e.Event, e.OriginID)
}

// IsInvalidMessageError returns whether an error is InvalidMessageError
func IsInvalidMessageError(err error) bool {
	var e InvalidMessageError
	return errors.As(err, &e)
}
