// Package ratelimit caps how many requests the Instagram client sends.
//
// Pacing between posts is handled by package pacing; this package guards
// the raw request rate underneath it, so a scan that pages through media
// never exceeds the configured requests per minute.
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Default strategy ("token_bucket")
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - Smoother limiting for consistent request patterns
//   - Selected with scan.limiter: sliding_window
//
// All limiters implement Limiter:
//   - Allow() bool - Check if a request is allowed
//   - Wait(ctx) error - Block until a request is allowed or ctx is done
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	limiter, err := ratelimit.New(ratelimit.StrategySlidingWindow, 60)
//	if err != nil {
//	    return err
//	}
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
