package wish

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("wish not found")
	ErrInvalidID   = errors.New("invalid wish id")
	ErrInvalidData = errors.New("invalid wish data")
)

// Store exposes wish persistence for HTTP handlers.
type Store interface {
	List(ctx context.Context) ([]Wish, error)
	FindByID(ctx context.Context, id string) (Wish, bool, error)
	Create(ctx context.Context, w Wish) (Wish, error)
	Update(ctx context.Context, id string, w Wish) (Wish, error)
	Patch(ctx context.Context, id string, p Patch) (Wish, error)
	Delete(ctx context.Context, id string) error
	// Persist flushes pending changes. Both stores in this package keep data
	// in process memory only, so it never writes anything.
	Persist(ctx context.Context) error
}

// loadFunc produces the initial collection for a store.
type loadFunc func(ctx context.Context) ([]Wish, error)

// MemoryStore implements Store with an in-memory slice that is filled lazily
// on first access. Data does not outlive the process.
type MemoryStore struct {
	mu     sync.Mutex
	items  []Wish
	loaded bool
	load   loadFunc

	newID func() string
	now   func() time.Time
}

// Option customises a MemoryStore.
type Option func(*MemoryStore)

// WithIDGenerator replaces the short random id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *MemoryStore) {
		s.newID = fn
	}
}

// WithClock replaces the clock used for default CreatedAt values.
func WithClock(fn func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = fn
	}
}

// NewMemoryStore returns a store preloaded with items, or with Seed() when
// items is empty.
func NewMemoryStore(items []Wish, opts ...Option) *MemoryStore {
	initial := append([]Wish(nil), items...)
	if len(initial) == 0 {
		initial = Seed()
	}
	return newStore(func(context.Context) ([]Wish, error) {
		return initial, nil
	}, opts...)
}

func newStore(load loadFunc, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		load:  load,
		newID: newShortID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensureLoaded must be called with s.mu held. A failed load is retried on
// the next call.
func (s *MemoryStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.items = cloneAll(items)
	s.loaded = true
	return nil
}

// cloneAll never returns nil, so an empty collection encodes as [].
func cloneAll(items []Wish) []Wish {
	out := make([]Wish, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}

func (s *MemoryStore) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// List returns a copy of the collection in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return cloneAll(s.items), nil
}

// FindByID looks up a wish by identifier. A missing wish is reported through
// the boolean, not as an error.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (Wish, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Wish{}, false, err
	}
	if i := s.indexOf(id); i >= 0 {
		return s.items[i].clone(), true, nil
	}
	return Wish{}, false, nil
}

// Create appends w under a freshly generated id. CreatedAt defaults to now.
// Ids are not checked for collisions.
func (s *MemoryStore) Create(ctx context.Context, w Wish) (Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Wish{}, err
	}

	w.ID = s.newID()
	if w.CreatedAt == "" {
		w.CreatedAt = FormatTime(s.now())
	}
	s.items = append(s.items, w.clone())
	return w, nil
}

// Update replaces the stored record with w, keeping the identifier. Fields
// missing from w end up empty.
func (s *MemoryStore) Update(ctx context.Context, id string, w Wish) (Wish, error) {
	if id == "" {
		return Wish{}, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Wish{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return Wish{}, ErrNotFound
	}

	w.ID = id
	s.items[i] = w.clone()
	return w, nil
}

// Patch merges the supplied fields into the stored record.
func (s *MemoryStore) Patch(ctx context.Context, id string, p Patch) (Wish, error) {
	if id == "" {
		return Wish{}, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Wish{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return Wish{}, ErrNotFound
	}

	s.items[i] = p.apply(s.items[i])
	return s.items[i].clone(), nil
}

// Delete removes the wish with the given id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Persist is a no-op; see Store.
func (s *MemoryStore) Persist(context.Context) error {
	return nil
}

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 4
)

// newShortID returns a 4 character base-36 id taken from the random bytes of
// a v4 UUID.
func newShortID() string {
	u := uuid.New()
	b := make([]byte, idLength)
	for i := range b {
		b[i] = idAlphabet[int(u[i])%len(idAlphabet)]
	}
	return string(b)
}
