// Package cart holds the session cart: an ordered list of lines bound to one
// user at a time and persisted under that user's storage key.
//
// A store never lets one identity's lines reach another identity's key.
// SyncUser empties the in-memory lines and rebinds before touching storage,
// and every write derives its key from the identity bound at that moment.
package cart

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type Option func(*Store)

// WithPrefix sets the namespace prefix of storage keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

type Store struct {
	mu      sync.Mutex
	storage Storage
	prefix  string
	log     logrus.FieldLogger

	userID string
	lines  []Line

	subs    map[int]func(State)
	nextSub int
}

// NewStore binds a store to userID and loads that user's persisted snapshot.
func NewStore(storage Storage, userID string, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		prefix:  DefaultPrefix,
		log:     logrus.StandardLogger(),
		userID:  userID,
		lines:   []Line{},
		subs:    make(map[int]func(State)),
	}
	for _, o := range opts {
		o(s)
	}
	if raw, ok := s.readLocked(userID); ok {
		s.lines = s.decodeLocked(userID, raw)
	}
	return s
}

func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) Line(productID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(productID); i >= 0 {
		return copyLines(s.lines[i : i+1])[0], true
	}
	return Line{}, false
}

// Add appends p, or merges into the existing line for p.ID: the add-on
// selection is replaced, qty is added and a non-empty brief overwrites.
func (s *Store) Add(p domain.Product, addOnIDs []string, qty int, brief string) {
	s.mutate(func() {
		qty = clampQty(qty)
		if i := s.indexLocked(p.ID); i >= 0 {
			l := &s.lines[i]
			l.AddOnIDs = addOnSet(addOnIDs)
			l.Quantity += qty
			if brief != "" {
				l.Brief = brief
			}
			return
		}
		s.lines = append(s.lines, Line{
			Product:  p,
			AddOnIDs: addOnSet(addOnIDs),
			Quantity: qty,
			Brief:    brief,
		})
	})
}

func (s *Store) Remove(productID string) {
	s.mutate(func() {
		if i := s.indexLocked(productID); i >= 0 {
			s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
		}
	})
}

func (s *Store) SetQty(productID string, qty int) {
	s.mutate(func() {
		if i := s.indexLocked(productID); i >= 0 {
			s.lines[i].Quantity = clampQty(qty)
		}
	})
}

func (s *Store) SetAddOns(productID string, addOnIDs []string) {
	s.mutate(func() {
		if i := s.indexLocked(productID); i >= 0 {
			s.lines[i].AddOnIDs = addOnSet(addOnIDs)
		}
	})
}

func (s *Store) SetBrief(productID, brief string) {
	s.mutate(func() {
		if i := s.indexLocked(productID); i >= 0 {
			s.lines[i].Brief = brief
		}
	})
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear() {
	s.mutate(func() { s.lines = []Line{} })
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t Totals
	for _, l := range s.lines {
		t.Subtotal += pricing.Line(l.Product, l.AddOnIDs).Total * int64(l.Quantity)
		t.Items += l.Quantity
	}
	return t
}

// Preview prices the cart for checkout. The ETA is the slowest line,
// instant lines counting as zero days.
func (s *Store) Preview(rates pricing.Rates) pricing.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make([]int64, 0, len(s.lines))
	eta := 0
	for _, l := range s.lines {
		totals = append(totals, pricing.Line(l.Product, l.AddOnIDs).Total*int64(l.Quantity))
		if d := pricing.LineETA(l.Product, l.AddOnIDs); d > eta {
			eta = d
		}
	}
	return rates.Preview(totals, eta)
}

func (s *Store) CheckoutLines() []CheckoutLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CheckoutLine, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, CheckoutLine{ProductID: l.Product.ID, Quantity: l.Quantity, Brief: l.Brief})
	}
	return out
}

// SyncUser rebinds the store to userID. Calling it with the bound identity
// does nothing. Otherwise the lines are emptied and the identity rebound
// before any storage access; the target key is then read, overwritten with
// an empty snapshot, and the read snapshot adopted only if it holds lines.
// The read precedes the empty write because that write would otherwise
// erase the target user's own saved cart before it could be loaded.
func (s *Store) SyncUser(userID string) {
	s.mu.Lock()
	if userID == s.userID {
		s.mu.Unlock()
		return
	}
	prev := s.userID
	s.lines = []Line{}
	s.userID = userID

	raw, found := s.readLocked(userID)
	s.persistLocked()
	if found {
		if lines := s.decodeLocked(userID, raw); len(lines) > 0 {
			s.lines = lines
			s.persistLocked()
		}
	}
	s.log.WithFields(logrus.Fields{
		"from_anonymous": prev == "",
		"to_anonymous":   userID == "",
		"lines":          len(s.lines),
	}).Debug("cart.user.switch")
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
}

// Subscribe registers fn to receive the state after every change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.persistLocked()
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
}

func (s *Store) notify(st State) {
	s.mu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) stateLocked() State {
	return State{Lines: copyLines(s.lines), UserID: s.userID}
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() {
	key := Key(s.prefix, s.userID)
	data, err := encodeSnapshot(s.lines, s.userID)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("cart.persist.encode")
		return
	}
	if err := s.storage.Save(key, data); err != nil {
		s.log.WithError(err).WithField("key", key).Error("cart.persist.save")
	}
}

func (s *Store) readLocked(userID string) ([]byte, bool) {
	key := Key(s.prefix, userID)
	raw, err := s.storage.Load(key)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("cart.load")
		return nil, false
	}
	return raw, true
}

func (s *Store) decodeLocked(userID string, raw []byte) []Line {
	lines, err := decodeSnapshot(raw)
	if err != nil {
		s.log.WithError(err).WithField("key", Key(s.prefix, userID)).Warn("cart.snapshot.malformed")
		return []Line{}
	}
	return lines
}
