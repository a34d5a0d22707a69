// Package resilience retries graph operations that fail transiently.
//
// The bulk loader wraps every batch commit in Retry so a commit rejected by
// a busy backend is attempted again with exponential backoff:
//
//	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(attempt int) error {
//	    return tx.Commit()
//	})
package resilience
