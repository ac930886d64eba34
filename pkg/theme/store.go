package theme

import (
	"context"
	"sync"

	"github.com/unowned-ai/nstil/pkg/logger"
)

// StorageKey is the key under which the mode is persisted.
const StorageKey = "theme_mode"

// KV is the persistence the store needs. Get returns "" with a nil error
// when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Listener receives the new state after every recompute.
type Listener func(Resolved)

type subscription struct {
	id int
	fn Listener
}

// Store holds the current theme and notifies subscribers when it changes.
// Persistence failures are logged and otherwise ignored.
type Store struct {
	kv  KV
	log logger.Logger

	mu          sync.Mutex
	mode        Mode
	scheme      Scheme
	current     Resolved
	initialized bool
	closed      bool
	nextID      int
	listeners   []subscription
}

type Option func(*Store)

// WithOSScheme sets the scheme assumed until SetOSScheme is called.
func WithOSScheme(s Scheme) Option {
	return func(st *Store) { st.scheme = s }
}

// NewStore returns a store in DefaultMode. Call Initialize to load the
// persisted preference. kv may be nil, in which case nothing is persisted.
func NewStore(kv KV, log logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		kv:     kv,
		log:    log,
		mode:   DefaultMode,
		scheme: SchemeDark,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = Resolve(s.mode, s.scheme)
	return s
}

// Initialize loads the persisted mode. A missing, unreadable or unrecognized
// value leaves the store in DefaultMode.
func (s *Store) Initialize(ctx context.Context) {
	mode := DefaultMode
	if s.kv != nil {
		stored, err := s.kv.Get(ctx, StorageKey)
		if err != nil {
			s.log.Debug("theme: read stored mode failed", logger.Error(err))
		} else if m := Mode(stored); m.Valid() {
			mode = m
		} else if stored != "" {
			s.log.Debug("theme: ignoring unrecognized stored mode", logger.String("value", stored))
		}
	}

	s.mu.Lock()
	s.mode = mode
	s.initialized = true
	s.recomputeLocked()
	s.notify()
}

// SetMode switches to mode and persists it.
func (s *Store) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}

	s.mu.Lock()
	s.mode = mode
	s.recomputeLocked()
	s.notify()

	if s.kv != nil {
		if err := s.kv.Set(ctx, StorageKey, string(mode)); err != nil {
			s.log.Debug("theme: persist mode failed", logger.String("mode", string(mode)), logger.Error(err))
		}
	}
	return nil
}

// SetOSScheme records a change of the system appearance. Subscribers are
// only notified when the mode is auto, since no other mode depends on it.
func (s *Store) SetOSScheme(scheme Scheme) {
	s.mu.Lock()
	s.scheme = scheme
	if s.mode != ModeAuto {
		s.mu.Unlock()
		return
	}
	s.recomputeLocked()
	s.notify()
}

// Current returns the active state.
func (s *Store) Current() Resolved {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Subscribe registers fn and returns a function that removes it. After Close
// the returned function does nothing and fn is never called.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Close detaches every listener.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = nil
}

func (s *Store) recomputeLocked() {
	s.current = Resolve(s.mode, s.scheme)
}

// notify must be called with s.mu held; it releases the lock before calling
// listeners so they may read the store.
func (s *Store) notify() {
	state := s.current
	subs := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		subs[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
