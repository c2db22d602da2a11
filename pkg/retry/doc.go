// Package retry re-runs failed scrape calls with backoff.
//
// The Instagram session never retries on its own. Callers that want to
// survive transport hiccups, 429 and 5xx responses wrap the call:
//
//	posts, err := retry.DoWithResult(ctx, func(ctx context.Context) ([]instagram.Post, error) {
//		return session.ScrapePosts(ctx, userID, 50)
//	}, retry.FromConfig(cfg.Retry, log))
//
// DefaultRetryIf consults errors.IsRetryable, and ErrorTypeBackoff waits
// longer after a 429 than after a dropped connection.
package retry
