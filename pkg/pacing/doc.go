// Package pacing spaces out reads against Instagram so a scan looks like a
// person scrolling a profile.
//
// A Pacer blocks between two remote reads. The default pacer draws a delay
// uniformly from 3 to 6 seconds; a fixed pacer is used for the pause between
// a self scan and a competitor scan. Every wait honours context cancellation:
//
//	p := pacing.Default(pacing.WithLogger(log))
//	if err := p.Wait(ctx); err != nil {
//	    return err // ctx.Err()
//	}
//
// Tests use pacing.Noop or pacing.WithSleeper to avoid real delays.
package pacing
