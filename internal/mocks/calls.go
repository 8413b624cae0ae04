package mocks

import (
	"sync"

	"github.com/google/uuid"
)

// callTracker records how often each method was called and with which user.
type callTracker struct {
	mu      sync.Mutex
	counts  map[string]int
	userIDs map[string][]uuid.UUID
}

func (c *callTracker) record(method string, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
		c.userIDs = make(map[string][]uuid.UUID)
	}
	c.counts[method]++
	c.userIDs[method] = append(c.userIDs[method], userID)
}

// CallCount returns how many times method was called.
func (c *callTracker) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method]
}

// UserIDs returns the user IDs method was called with, in call order.
// Methods without a user record uuid.Nil.
func (c *callTracker) UserIDs(method string) []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uuid.UUID(nil), c.userIDs[method]...)
}

// Reset clears the call history.
func (c *callTracker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = nil
	c.userIDs = nil
}
