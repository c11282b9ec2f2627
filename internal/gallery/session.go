// Package gallery holds the state of one gallery page: the one-shot feed
// load and the filtered views derived from it.
package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"swingtube/internal/core"
	"swingtube/internal/sheets"
)

// State is the settlement state of a session's load.
type State int

const (
	StateLoading State = iota
	StateFailed
	StateReady
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateReady:
		return "ready"
	default:
		return "loading"
	}
}

// ErrClosed is the load error of a session closed before its load settled.
var ErrClosed = errors.New("gallery session closed")

// Session is the page-level state of one gallery page load. Its records are
// loaded exactly once, in the background, and never change afterwards.
type Session struct {
	id      string
	created time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	state    State
	records  []core.Record
	err      error
	closed   bool
	settled  time.Time
	onSettle func(*Session)
}

// Start begins loading records from reader and returns immediately. The
// load runs under a context derived from parent; Close cancels it.
// onSettle, when non-nil, runs once after the load settles and before Done
// is closed.
func Start(parent context.Context, id string, reader sheets.RecordReader, onSettle func(*Session)) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		id:       id,
		created:  time.Now(),
		cancel:   cancel,
		done:     make(chan struct{}),
		onSettle: onSettle,
	}
	go s.load(ctx, reader)
	return s
}

func (s *Session) load(ctx context.Context, reader sheets.RecordReader) {
	records, err := reader.ReadRecords(ctx)

	s.mu.Lock()
	switch {
	case s.closed:
		// Late result after teardown: drop it.
		s.state, s.records, s.err = StateFailed, nil, ErrClosed
	case err != nil:
		s.state, s.records, s.err = StateFailed, nil, err
	default:
		if records == nil {
			records = []core.Record{}
		}
		s.state, s.records = StateReady, records
	}
	s.settled = time.Now()
	fn := s.onSettle
	s.mu.Unlock()

	s.cancel()
	if fn != nil {
		fn(s)
	}
	close(s.done)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Created returns when the session was started.
func (s *Session) Created() time.Time { return s.created }

// Done is closed once the load has settled.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current settlement state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the load error of a failed session.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LoadDuration is the time between Start and settlement, zero while loading.
func (s *Session) LoadDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled.IsZero() {
		return 0
	}
	return s.settled.Sub(s.created)
}

// Records returns the loaded records. It is empty unless the session is ready.
func (s *Session) Records() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Wait blocks until the load settles or ctx is done, then returns the state.
func (s *Session) Wait(ctx context.Context) State {
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return s.State()
}

// Close cancels a pending load. A result that arrives afterwards is dropped
// and the session settles as failed with ErrClosed. Closing a settled
// session keeps its state.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// View derives the filtered page view for sel. It never triggers a load.
func (s *Session) View(sel core.Selection, now time.Time) View {
	sel = sel.Normalize(now)

	s.mu.Lock()
	state, records := s.state, s.records
	s.mu.Unlock()

	v := View{
		SessionID: s.id,
		State:     state,
		Selection: sel,
		Months:    core.Months(),
		Years:     core.Years(now),
		Total:     len(records),
	}
	if state != StateReady {
		return v
	}
	for _, r := range core.Filter(records, sel.Month, sel.Year) {
		v.Cards = append(v.Cards, newCard(r))
	}
	return v
}
