package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/services"
)

// gatedNamespaces holds loads of one namespace until gate closes.
type gatedNamespaces struct {
	mem     *cart.MemoryStorage
	slow    string
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedNamespaces) Namespace(name string) cart.Storage {
	ns := g.mem.Namespace(name)
	if name != g.slow {
		return ns
	}
	return gatedStorage{Storage: ns, g: g}
}

type gatedStorage struct {
	cart.Storage
	g *gatedNamespaces
}

func (s gatedStorage) Load(key string) ([]byte, error) {
	select {
	case s.g.entered <- struct{}{}:
	default:
	}
	<-s.g.gate
	return s.Storage.Load(key)
}

func TestCartService_SlowFirstLoadDoesNotBlockOtherBrowsers(t *testing.T) {
	g := &gatedNamespaces{
		mem:     cart.NewMemoryStorage(),
		slow:    "sid-slow",
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	carts := services.NewCartService(g, nil, cart.DefaultPrefix, time.Hour, nil)

	slowDone := make(chan struct{})
	go func() {
		carts.Session("sid-slow", "")
		close(slowDone)
	}()
	<-g.entered

	fastDone := make(chan struct{})
	go func() {
		carts.Session("sid-fast", "")
		close(fastDone)
	}()
	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		close(g.gate)
		t.Fatal("a slow first load blocked another browser's cart")
	}

	close(g.gate)
	<-slowDone
	if n := carts.Len(); n != 2 {
		t.Fatalf("want 2 stores, got %d", n)
	}
}

func TestCartService_ConcurrentFirstUseSharesOneStore(t *testing.T) {
	f := setup(t)

	const n = 8
	stores := make([]*cart.Store, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = f.carts.Session("sid-1", "")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if stores[i] != stores[0] {
			t.Fatalf("request %d got a different store", i)
		}
	}
	if f.carts.Len() != 1 {
		t.Fatalf("want 1 store, got %d", f.carts.Len())
	}

	// only the kept store follows identity changes
	if _, err := f.auth.Login(context.Background(), "sid-1", "alice@example.test", "Passw0rd!"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if stores[0].UserID() != "u-alice" {
		t.Fatalf("kept store bound to %q", stores[0].UserID())
	}
}
