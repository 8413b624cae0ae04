// Package mocks provides centralized mock implementations for testing.
//
// Every mock follows the same shape: an optional function field per
// interface method, default return values used when the function is nil,
// and call tracking guarded by a mutex so mocks can be shared across
// goroutines.
//
// Usage:
//
//	svc := &mocks.MockReviewService{
//	    DueCountsFn: func(ctx context.Context, userID uuid.UUID) (queue.Counts, error) {
//	        return queue.Counts{Total: 3}, nil
//	    },
//	}
//	// ... exercise the handler ...
//	assert.Equal(t, 1, svc.CallCount("DueCounts"))
//
// Store mocks return themselves from WithTx so expectations set before a
// transaction also apply inside it.
package mocks
