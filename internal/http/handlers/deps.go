package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/pricing"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	Auth      *services.AuthService
	Carts     *services.CartService
	Retention *services.RetentionService

	AuthHandler      *AuthHandler
	CatalogHandler   *CatalogHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	DashboardHandler *DashboardHandler
}

// NewDeps wires services and handlers. storage holds the cart snapshots;
// when it is the sqlite repo it also serves as the retention sweeper.
func NewDeps(db *sqlx.DB, cfg config.Config, storage cart.Namespaces) (*Deps, error) {
	rates, err := pricing.NewRates(cfg.PlatformFeeRate, cfg.TaxRate)
	if err != nil {
		return nil, err
	}
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	logger := applog.Logger()

	authSvc := &services.AuthService{
		Sessions: repos.NewSessionRepo(db),
		Backend:  client,
		Secret:   cfg.JWTSecret,
	}
	catalogSvc := services.NewCatalogService(client)
	cartSvc := services.NewCartService(storage, authSvc, cfg.CartKeyPrefix, cfg.CartIdleTTL, logger)
	checkoutSvc := services.NewCheckoutService(client, rates)

	retention := &services.RetentionService{
		Carts:    cartSvc,
		TTL:      cfg.CartSnapshotTTL,
		Interval: cfg.CartSweepInterval,
		Logger:   logger,
	}
	if sw, ok := storage.(services.Sweeper); ok {
		retention.Sweeper = sw
	}

	return &Deps{
		Auth:      authSvc,
		Carts:     cartSvc,
		Retention: retention,

		AuthHandler:      &AuthHandler{Auth: authSvc},
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		CartHandler:      &CartHandler{Catalog: catalogSvc, Checkout: checkoutSvc},
		OrderHandler:     &OrderHandler{Checkout: checkoutSvc},
		DashboardHandler: &DashboardHandler{Catalog: catalogSvc, Checkout: checkoutSvc},
	}, nil
}
