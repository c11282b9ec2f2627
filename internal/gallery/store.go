package gallery

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"swingtube/internal/cache"
	"swingtube/internal/core"
	"swingtube/internal/log"
	"swingtube/internal/sheets"
)

// StoreConfig bounds the number and lifetime of live sessions.
type StoreConfig struct {
	MaxSessions     int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultStoreConfig returns sensible defaults
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxSessions:     1000,
		TTL:             30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Metrics counts session activity since the store was created.
type Metrics struct {
	Started       int64
	LoadsOK       int64
	LoadsFailed   int64
	LoadsCanceled int64
	Evicted       int64
	Active        int
}

// Store owns the live sessions of the server. Sessions leave the store by
// TTL expiry, LRU pressure or Close, and are closed when they do.
type Store struct {
	reader   sheets.RecordReader
	sessions *cache.LRUCache[*Session]
	manager  *cache.Manager
	logger   *log.Logger
	base     context.Context
	cancel   context.CancelFunc

	started       atomic.Int64
	loadsOK       atomic.Int64
	loadsFailed   atomic.Int64
	loadsCanceled atomic.Int64
	evicted       atomic.Int64
}

// NewStore creates a session store reading from reader and starts its
// expiry sweeper.
func NewStore(reader sheets.RecordReader, cfg StoreConfig, logger *log.Logger) *Store {
	def := DefaultStoreConfig()
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentSession)

	base, cancel := context.WithCancel(context.Background())
	st := &Store{
		reader: reader,
		logger: logger,
		base:   base,
		cancel: cancel,
	}
	st.sessions = cache.NewLRUCache[*Session](cfg.MaxSessions, cfg.TTL).OnEvict(st.evict)
	st.manager = cache.NewManager(func(removed int) {
		logger.Debug("Session cleanup completed", "sessions_removed", removed)
	})
	st.manager.Register(st.sessions)
	st.manager.StartCleanup(cfg.CleanupInterval)
	return st
}

// Start creates a session and begins its load.
func (st *Store) Start() *Session {
	s := Start(st.base, newSessionID(), st.reader, st.settled)
	st.started.Add(1)
	st.sessions.Set(s.ID(), s)
	st.logger.Debug("Session started", log.FieldSessionID, s.ID())
	return s
}

// Get returns a live session.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return st.sessions.Get(id)
}

// GetOrStart returns the live session id, or a new one when id is unknown
// or expired. The boolean reports whether a new session was started.
func (st *Store) GetOrStart(id string) (*Session, bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	return st.Start(), true
}

// Size returns the number of live sessions.
func (st *Store) Size() int { return st.sessions.Size() }

// Metrics returns current counters.
func (st *Store) Metrics() Metrics {
	return Metrics{
		Started:       st.started.Load(),
		LoadsOK:       st.loadsOK.Load(),
		LoadsFailed:   st.loadsFailed.Load(),
		LoadsCanceled: st.loadsCanceled.Load(),
		Evicted:       st.evicted.Load(),
		Active:        st.sessions.Size(),
	}
}

// Close stops the sweeper and closes every live session, cancelling
// pending loads.
func (st *Store) Close() {
	st.manager.Stop()
	st.sessions.Purge()
	st.cancel()
}

func (st *Store) evict(id string, s *Session) {
	st.evicted.Add(1)
	s.Close()
	st.logger.Debug("Session closed", log.FieldSessionID, id, log.FieldState, s.State().String(), log.FieldOperation, log.OpEvict)
}

func (st *Store) settled(s *Session) {
	records := s.Records()
	switch {
	case s.State() == StateReady:
		st.loadsOK.Add(1)
		sl := log.NewStructuredLogger(st.logger)
		sl.LogLoadSettled(st.base, s.ID(), StateReady.String(), len(records), core.Malformed(records), s.LoadDuration().Milliseconds())
	case errors.Is(s.Err(), ErrClosed):
		// Closed mid-load by eviction, expiry or shutdown; not a feed failure.
		st.loadsCanceled.Add(1)
		st.logger.Debug("Feed load canceled", log.FieldSessionID, s.ID(), log.FieldOperation, log.OpLoad)
	default:
		st.loadsFailed.Add(1)
		sl := log.NewStructuredLogger(st.logger)
		sl.LogError(st.base, "Feed load failed", s.Err(), log.ComponentFeed, log.OpLoad,
			log.NewFields().WithSession(s.ID(), StateFailed.String()))
	}
}

// newSessionID creates a random session identifier.
func newSessionID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("gs_%d", time.Now().UnixNano())
	}
	return "gs_" + hex.EncodeToString(b)
}
