package bar

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Module is the contract every bar segment implements.
//
// Output returns the text (markup included) to render for this segment
// right now. It must not block the loop; slow inputs should arrive through
// a Source instead.
//
// HandleEvent receives every event the renderer reports, regardless of
// origin. Modules self-filter by comparing the name against the ones they
// embedded in their own clickable output and ignore the rest. Returning
// invalidate=true asks the scheduler to zero the module's last-update mark
// so it recomputes on the next iteration.
type Module interface {
	Output() (string, error)
	HandleEvent(event string) (invalidate bool, err error)
}

// DefaultWaitTime is the update interval for modules that configure
// neither an interval nor a cron schedule.
const DefaultWaitTime = 24 * time.Hour

// State is the scheduler-owned record tracking when a module last ran and
// what it produced. Modules never touch it directly; it is mutated from
// the loop goroutine only.
type State struct {
	Name   string
	Module Module

	// Source, when non-nil, wakes the loop whenever a line is buffered
	// and forces the module to recompute that iteration.
	Source *Source

	// WaitTime is the update interval. Zero disables time-triggered
	// updates entirely (readable- or event-driven modules).
	WaitTime time.Duration

	// Schedule, when non-nil, replaces WaitTime with a cron schedule.
	Schedule cron.Schedule

	lastUpdate time.Time
	cache      string
}

// StateOption customizes a State at construction.
type StateOption func(*State)

// WithWaitTime sets the update interval. Zero disables the timer.
func WithWaitTime(d time.Duration) StateOption {
	return func(st *State) { st.WaitTime = d }
}

// WithSchedule drives the module from a cron schedule instead of a fixed
// interval.
func WithSchedule(sched cron.Schedule) StateOption {
	return func(st *State) {
		st.Schedule = sched
		st.WaitTime = 0
	}
}

// WithSource registers the readable that wakes this module.
func WithSource(src *Source) StateOption {
	return func(st *State) { st.Source = src }
}

// NewState builds the scheduler-side record for one module. A fresh state
// counts as invalidated, so every module recomputes on the first
// iteration.
func NewState(name string, m Module, opts ...StateOption) *State {
	st := &State{Name: name, Module: m, WaitTime: DefaultWaitTime}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Invalidate zeroes the last-update mark, forcing recomputation on the
// next iteration.
func (st *State) Invalidate() { st.lastUpdate = time.Time{} }

// invalidated reports whether the module never ran or was invalidated.
func (st *State) invalidated() bool { return st.lastUpdate.IsZero() }

// waitHint is the module's contribution to the loop's blocking timeout:
// interval modules contribute their period, cron modules the time left
// until the next activation. ok is false when the module has no time
// trigger at all.
func (st *State) waitHint(now time.Time) (d time.Duration, ok bool) {
	if st.Schedule != nil {
		return st.Schedule.Next(now).Sub(now), true
	}
	if st.WaitTime > 0 {
		return st.WaitTime, true
	}
	return 0, false
}

// due reports whether a time-triggered recomputation is owed. Modules with
// no time trigger are never due; they recompute only when their Source is
// ready.
func (st *State) due(now time.Time) bool {
	if st.Schedule != nil {
		return st.invalidated() || !now.Before(st.Schedule.Next(st.lastUpdate))
	}
	if st.WaitTime > 0 {
		return st.invalidated() || now.Sub(st.lastUpdate) >= st.WaitTime
	}
	return false
}
