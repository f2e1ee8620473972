package metadata

import (
	"sync"

	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

// flight is one extraction in progress. done is closed once rec and err are set.
type flight struct {
	done chan struct{}
	rec  metadata.Record
	err  error
}

// inFlight holds the identities currently under extraction.
type inFlight struct {
	mu      sync.Mutex
	flights map[string]*flight
}

func newInFlight() *inFlight {
	return &inFlight{flights: make(map[string]*flight)}
}

// acquire returns the flight for identity and whether the caller created it.
func (s *inFlight) acquire(identity string) (*flight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flights[identity]; ok {
		return f, false
	}
	f := &flight{done: make(chan struct{})}
	s.flights[identity] = f
	return f, true
}

// release publishes the outcome, removes the entry and wakes waiters.
func (s *inFlight) release(identity string, f *flight, rec metadata.Record, err error) {
	f.rec, f.err = rec, err
	s.mu.Lock()
	delete(s.flights, identity)
	s.mu.Unlock()
	close(f.done)
}

// size reports the number of extractions in progress.
func (s *inFlight) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flights)
}
