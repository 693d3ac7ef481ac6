package bar

import "time"

// computeWait derives the single blocking timeout for the next iteration.
// It is recomputed fresh every loop, never cached.
//
// Any invalidated module forces an immediate iteration. Otherwise the loop
// waits for the soonest time-triggered module; when the previous iteration
// was cut short by a readable, the elapsed loop time is subtracted so that
// periodic modules keep a roughly stable cadence under chatty readables.
// With no finite wait anywhere, maxIdle caps the sleep.
func computeWait(states []*State, lastLoop time.Duration, interrupted bool, maxIdle time.Duration, now time.Time) time.Duration {
	for _, st := range states {
		if st.invalidated() {
			return 0
		}
	}

	minWait := maxIdle
	found := false
	for _, st := range states {
		if d, ok := st.waitHint(now); ok && (!found || d < minWait) {
			minWait = d
			found = true
		}
	}

	wait := minWait
	if interrupted {
		wait -= lastLoop
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}
