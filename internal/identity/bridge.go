// Package identity connects the authentication provider to the cart store.
// User ids are strings; "" means no authenticated user.
package identity

// Resolver reports the identity the authentication provider has already
// persisted. It must be synchronous and free of side effects.
type Resolver interface {
	CurrentUserID() string
}

// Notifier delivers identity changes, including sign-out as "".
type Notifier interface {
	OnIdentityChange(fn func(userID string)) (unsubscribe func())
}

// Syncer is the cart side of the bridge.
type Syncer interface {
	SyncUser(userID string)
}

// Bootstrap resolves the identity a store is first bound to, so a reload
// does not bind to the anonymous cart before the real identity is known.
func Bootstrap(r Resolver) string {
	if r == nil {
		return ""
	}
	return r.CurrentUserID()
}

// Bridge forwards every observed identity to the store. It holds no state;
// repeated observations of the same identity are absorbed by SyncUser.
type Bridge struct {
	store Syncer
}

func NewBridge(s Syncer) *Bridge {
	return &Bridge{store: s}
}

func (b *Bridge) Observe(userID string) {
	b.store.SyncUser(userID)
}

// Attach subscribes s to n and returns the function that detaches it.
func Attach(n Notifier, s Syncer) (detach func()) {
	return n.OnIdentityChange(NewBridge(s).Observe)
}
