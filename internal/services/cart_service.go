package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/cart"
	"storefront/internal/identity"
)

// CartService keeps one cart store per browser session. A store is built
// from its persisted snapshots on first use and dropped after IdleTTL.
type CartService struct {
	Storage cart.Namespaces
	Auth    *AuthService
	Prefix  string
	IdleTTL time.Duration
	Logger  logrus.FieldLogger
	Now     func() time.Time

	mu      sync.Mutex
	entries map[string]*cartEntry
}

type cartEntry struct {
	store    *cart.Store
	detach   func()
	lastUsed time.Time
}

func NewCartService(storage cart.Namespaces, auth *AuthService, prefix string, idle time.Duration, logger logrus.FieldLogger) *CartService {
	return &CartService{
		Storage: storage,
		Auth:    auth,
		Prefix:  prefix,
		IdleTTL: idle,
		Logger:  logger,
		Now:     time.Now,
		entries: make(map[string]*cartEntry),
	}
}

// Session returns the store of browser session sid, synced to userID.
// Handlers call it on every request; an unchanged identity is a no-op.
func (s *CartService) Session(sid, userID string) *cart.Store {
	store := s.store(sid)
	identity.NewBridge(store).Observe(userID)
	return store
}

func (s *CartService) store(sid string) *cart.Store {
	s.mu.Lock()
	if e, ok := s.entries[sid]; ok {
		e.lastUsed = s.Now()
		s.mu.Unlock()
		return e.store
	}
	s.mu.Unlock()

	// Storage and session reads happen outside the registry lock.
	fresh := s.build(sid)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sid]; ok {
		// another request for sid won the race
		fresh.detach()
		e.lastUsed = s.Now()
		return e.store
	}
	fresh.lastUsed = s.Now()
	s.entries[sid] = fresh
	return fresh.store
}

func (s *CartService) build(sid string) *cartEntry {
	opts := []cart.Option{cart.WithPrefix(s.Prefix)}
	if s.Logger != nil {
		opts = append(opts, cart.WithLogger(s.Logger.WithField("sid", sid)))
	}
	e := &cartEntry{detach: func() {}}
	if s.Auth == nil {
		e.store = cart.NewStore(s.Storage.Namespace(sid), "", opts...)
		return e
	}
	id := s.Auth.Identity(sid)
	e.store = cart.NewStore(s.Storage.Namespace(sid), identity.Bootstrap(id), opts...)
	e.detach = identity.Attach(id, e.store)
	return e
}

// EvictIdle drops stores unused for IdleTTL. Their state is already persisted.
func (s *CartService) EvictIdle() int {
	if s.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.Now().Add(-s.IdleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, e := range s.entries {
		if e.lastUsed.Before(cutoff) {
			e.detach()
			delete(s.entries, sid)
			n++
		}
	}
	return n
}

func (s *CartService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
