package bar

import "time"

// ModuleStatus is the externally visible view of one module's state.
type ModuleStatus struct {
	Name       string        `json:"name"`
	LastUpdate time.Time     `json:"last_update"`
	WaitTime   time.Duration `json:"wait_time"`
	Readable   bool          `json:"readable"`
	Cache      string        `json:"cache"`
}

// Snapshot is published once per iteration for the control API. It is
// immutable after publication; readers on other goroutines only ever see
// complete snapshots.
type Snapshot struct {
	RunID       string         `json:"run_id"`
	Iteration   uint64         `json:"iteration"`
	Interrupted bool           `json:"interrupted"`
	LastLoop    time.Duration  `json:"last_loop"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Modules     []ModuleStatus `json:"modules"`
}

// Status returns the latest published snapshot, or nil before the first
// iteration completes.
func (s *Scheduler) Status() *Snapshot { return s.snapshot.Load() }

func (s *Scheduler) publish() {
	snap := &Snapshot{
		RunID:       s.runID,
		Iteration:   s.iteration,
		Interrupted: s.interrupted,
		LastLoop:    s.lastLoop,
		UpdatedAt:   s.now(),
		Modules:     make([]ModuleStatus, 0, len(s.states)),
	}
	for _, st := range s.states {
		snap.Modules = append(snap.Modules, ModuleStatus{
			Name:       st.Name,
			LastUpdate: st.lastUpdate,
			WaitTime:   st.WaitTime,
			Readable:   st.Source != nil,
			Cache:      st.cache,
		})
	}
	s.snapshot.Store(snap)
}
