package mixer

import "sync"

// registry implements the Registry interface.
type registry struct {
	mu     sync.Mutex
	mixers map[*Mixer]struct{}
}

// Registry tracks the mixers of live assets so the runtime loop can advance
// all of them with one call per frame.
type Registry interface {
	// Register adds a mixer to the tick set. Registering the same mixer twice
	// is a no-op.
	//
	// Parameters:
	//   - m: the mixer to track
	Register(m *Mixer)

	// Unregister removes a mixer from the tick set. Unregistering a mixer that
	// was never registered, or unregistering twice, is a no-op.
	//
	// Parameters:
	//   - m: the mixer to drop
	Unregister(m *Mixer)

	// TickAll advances every registered mixer by dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	TickAll(dt float64)

	// Len returns the number of registered mixers.
	//
	// Returns:
	//   - int: the tick-set size
	Len() int
}

var _ Registry = &registry{}

// NewRegistry creates an empty mixer registry.
//
// Returns:
//   - Registry: the new registry
func NewRegistry() Registry {
	return &registry{mixers: make(map[*Mixer]struct{})}
}

func (r *registry) Register(m *Mixer) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mixers[m] = struct{}{}
}

func (r *registry) Unregister(m *Mixer) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mixers, m)
}

func (r *registry) TickAll(dt float64) {
	r.mu.Lock()
	mixers := make([]*Mixer, 0, len(r.mixers))
	for m := range r.mixers {
		mixers = append(mixers, m)
	}
	r.mu.Unlock()

	for _, m := range mixers {
		m.Update(dt)
	}
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mixers)
}
