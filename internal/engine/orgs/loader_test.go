package orgs

import (
	"sync"
	"testing"
)

func TestLoaderCommitsNewestOnly(t *testing.T) {
	loader := NewLoader()

	first := loader.Begin()
	second := loader.Begin()

	if loader.Commit(first, func() { t.Error("superseded load committed") }) {
		t.Error("Commit accepted a superseded generation")
	}

	applied := false
	if !loader.Commit(second, func() { applied = true }) {
		t.Error("Commit rejected the newest generation")
	}
	if !applied {
		t.Error("apply not called for the newest generation")
	}
}

func TestLoaderInvalidateRetiresInFlight(t *testing.T) {
	loader := NewLoader()

	gen := loader.Begin()
	loader.Invalidate()

	if loader.Commit(gen, func() { t.Error("invalidated load committed") }) {
		t.Error("Commit accepted an invalidated generation")
	}

	// Loads begun after the invalidation commit normally.
	gen = loader.Begin()
	if !loader.Commit(gen, func() {}) {
		t.Error("post-invalidation load rejected")
	}
}

func TestLoaderLoadDiscardsWhenSuperseded(t *testing.T) {
	loader := NewLoader()

	applied, err := loader.Load(
		func() error {
			// A switch lands while the fetch is in flight.
			loader.Invalidate()
			return nil
		},
		func() { t.Error("superseded result applied") },
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if applied {
		t.Error("Load reported an applied result after invalidation")
	}

	applied, err = loader.Load(func() error { return nil }, func() {})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !applied {
		t.Error("undisturbed load not applied")
	}
}

func TestLoaderConcurrentLoads(t *testing.T) {
	loader := NewLoader()

	const loads = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	commits := 0

	gens := make([]uint64, loads)
	for i := range gens {
		gens[i] = loader.Begin()
	}

	for _, gen := range gens {
		wg.Add(1)
		go func(gen uint64) {
			defer wg.Done()
			loader.Commit(gen, func() {
				mu.Lock()
				commits++
				mu.Unlock()
			})
		}(gen)
	}
	wg.Wait()

	if commits != 1 {
		t.Errorf("%d loads committed, want exactly 1", commits)
	}
}
