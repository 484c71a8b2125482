package identity_test

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/identity"
)

type fakeProvider struct {
	current string
	subs    []func(string)
}

func (f *fakeProvider) CurrentUserID() string { return f.current }

func (f *fakeProvider) OnIdentityChange(fn func(string)) func() {
	f.subs = append(f.subs, fn)
	i := len(f.subs) - 1
	return func() { f.subs[i] = nil }
}

func (f *fakeProvider) set(userID string) {
	f.current = userID
	for _, fn := range f.subs {
		if fn != nil {
			fn(userID)
		}
	}
}

type recorder struct{ calls []string }

func (r *recorder) SyncUser(userID string) { r.calls = append(r.calls, userID) }

func TestBootstrap(t *testing.T) {
	assert.Equal(t, "", identity.Bootstrap(nil))
	assert.Equal(t, "u-9", identity.Bootstrap(&fakeProvider{current: "u-9"}))
}

func TestBridgeForwardsEveryObservation(t *testing.T) {
	r := &recorder{}
	b := identity.NewBridge(r)
	b.Observe("a")
	b.Observe("a")
	b.Observe("")
	assert.Equal(t, []string{"a", "a", ""}, r.calls)
}

func TestAttachAndDetach(t *testing.T) {
	p := &fakeProvider{}
	r := &recorder{}
	detach := identity.Attach(p, r)

	p.set("u1")
	p.set("")
	detach()
	p.set("u2")

	assert.Equal(t, []string{"u1", ""}, r.calls)
}

func TestLoginLogoutCycleKeepsCartsApart(t *testing.T) {
	logger, _ := test.NewNullLogger()
	storage := cart.NewMemoryStorage()
	p := &fakeProvider{current: "alice"}

	store := cart.NewStore(storage, identity.Bootstrap(p), cart.WithLogger(logger))
	identity.Attach(p, store)
	require.Equal(t, "alice", store.UserID())

	store.Add(domain.Product{ID: "p1", Price: 100, DeliveryMode: domain.DeliveryInstant}, nil, 2, "")

	p.set("")
	assert.Equal(t, cart.Totals{}, store.Totals())

	p.set("bob")
	assert.Equal(t, cart.Totals{}, store.Totals())

	// redundant re-fire on every render
	bridge := identity.NewBridge(store)
	bridge.Observe("bob")
	bridge.Observe("bob")

	p.set("alice")
	assert.Equal(t, cart.Totals{Subtotal: 200, Items: 2}, store.Totals())

	// reload: a fresh store bootstraps straight into alice's cart
	reloaded := cart.NewStore(storage, identity.Bootstrap(p), cart.WithLogger(logger))
	assert.Equal(t, cart.Totals{Subtotal: 200, Items: 2}, reloaded.Totals())
}
