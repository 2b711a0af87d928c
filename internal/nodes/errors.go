package nodes

import (
	"errors"
	"fmt"
)

// ErrNoReference is returned for a follow-up question when no cluster has
// been discussed yet in the conversation
var ErrNoReference = errors.New("follow-up without a previously resolved cluster or product")

// UnknownClusterError reports a cluster id outside the table's valid set.
// ID is nil when the mentioned number could not be parsed.
type UnknownClusterError struct {
	ID    *int
	Valid []int
}

func (e *UnknownClusterError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("unknown cluster (valid: %s)", joinInts(e.Valid))
	}
	return fmt.Sprintf("unknown cluster %d (valid: %s)", *e.ID, joinInts(e.Valid))
}
