// Package sweeper implements the stale-order sweep.
//
// A sweep walks every configured store, fetches orders created before
// now-lookback (the lower bound is pinned at 1900 so nothing ages out of the
// window), and moves every order still in "new" to "in_progress". Each
// applied update is recorded as a transition, and the pass itself as a sweep
// run, so operators can see what happened and when.
//
// Failures are contained: a store that cannot be reached, or an order that
// cannot be parsed or updated, is counted and logged without aborting the
// rest of the sweep.
package sweeper
