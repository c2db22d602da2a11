// Package ratelimit paces outgoing requests.
//
// Two implementations satisfy Limiter:
//
//   - TokenBucket, backed by golang.org/x/time/rate, allows short bursts and
//     refills continuously. It is the default.
//   - SlidingWindow counts requests inside a moving window.
//
// Both honor context cancellation in Wait, so a Session can plug either one
// in as its pacer:
//
//	limiter, err := ratelimit.New(cfg.RateLimit)
//	if err != nil {
//	    return err
//	}
//	if limiter != nil {
//	    opts = append(opts, instagram.WithPacer(limiter))
//	}
package ratelimit
