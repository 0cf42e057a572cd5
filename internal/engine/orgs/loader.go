package orgs

import "sync"

// Loader suppresses stale responses for a view that reloads its data.
// Each load claims a generation; a result commits only while its
// generation is still the newest. Invalidate (wired to organization
// switches) retires everything in flight.
type Loader struct {
	mu  sync.Mutex
	gen uint64
}

func NewLoader() *Loader {
	return &Loader{}
}

// Begin claims a new generation for a load that is about to start.
func (l *Loader) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

// Invalidate retires all in-flight loads without starting a new one.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
}

// Load runs fetch and then applies its result, unless a newer load or an
// invalidation superseded it mid-flight. It reports whether the result
// was applied.
func (l *Loader) Load(fetch func() error, apply func()) (bool, error) {
	gen := l.Begin()
	if err := fetch(); err != nil {
		return false, err
	}
	return l.Commit(gen, apply), nil
}

// Commit applies the result of the load that claimed gen, unless a newer
// load (or an invalidation) has superseded it. It reports whether the
// result was applied.
func (l *Loader) Commit(gen uint64, apply func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	apply()
	return true
}
