package protocol

import (
	"fmt"
	"sync"
)

// MaxCommandID is the maximum allowed command id (inclusive).
const MaxCommandID = (1 << 31) - 1

// CommandIDs hands out sequential command ids min..max inclusive, wrapping
// back to min. Safe for concurrent use.
type CommandIDs struct {
	mu   sync.Mutex
	min  int64
	max  int64
	next int64
}

// NewCommandIDs returns a generator over [min, max] starting at start.
func NewCommandIDs(min, max, start int64) (*CommandIDs, error) {
	if max <= min {
		return nil, fmt.Errorf("%w: min=%d must be less than max=%d", ErrInvalidRange, min, max)
	}
	if start < min || start > max {
		return nil, fmt.Errorf("%w: start=%d must be within [%d, %d]", ErrInvalidRange, start, min, max)
	}
	return &CommandIDs{min: min, max: max, next: start}, nil
}

// DefaultCommandIDs returns a generator over [1, MaxCommandID].
func DefaultCommandIDs() *CommandIDs {
	ids, err := NewCommandIDs(1, MaxCommandID, 1)
	if err != nil {
		panic(err)
	}
	return ids
}

// Next returns the next command id.
func (c *CommandIDs) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	if c.next > c.max {
		c.next = c.min
	}
	return id
}
