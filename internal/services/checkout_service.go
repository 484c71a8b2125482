package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/pricing"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrBriefRequired = errors.New("project brief required")
)

type CheckoutService struct {
	Backend *backend.Client
	Rates   pricing.Rates
}

func NewCheckoutService(b *backend.Client, rates pricing.Rates) *CheckoutService {
	return &CheckoutService{Backend: b, Rates: rates}
}

func (s *CheckoutService) Preview(store *cart.Store) pricing.Preview {
	return store.Preview(s.Rates)
}

// Validate reports the first reason the cart cannot be ordered.
func (s *CheckoutService) Validate(store *cart.Store) error {
	lines := store.Lines()
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if l.Product.BriefRequired() && l.Brief == "" {
			return fmt.Errorf("%w: %s", ErrBriefRequired, l.Product.Title)
		}
	}
	return nil
}

// Place submits the cart as one order. idemKey identifies the checkout
// attempt; a retried submit with the same key yields the same order.
// The cart is cleared only once the backend accepted the order.
func (s *CheckoutService) Place(ctx context.Context, store *cart.Store, u *domain.User, idemKey string) (domain.OrderSummary, error) {
	if err := s.Validate(store); err != nil {
		return domain.OrderSummary{}, err
	}
	if idemKey == "" {
		idemKey = uuid.NewString()
	}
	req := backend.OrderRequest{
		Lines:   store.CheckoutLines(),
		Preview: s.Preview(store),
	}
	order, err := s.Backend.CreateOrder(ctx, u.Token, idemKey, req)
	if err != nil {
		return domain.OrderSummary{}, err
	}
	store.Clear()
	return order, nil
}

func (s *CheckoutService) History(ctx context.Context, u *domain.User) ([]domain.OrderSummary, error) {
	return s.Backend.Orders(ctx, u.Token)
}

func (s *CheckoutService) Order(ctx context.Context, u *domain.User, id string) (domain.OrderSummary, error) {
	return s.Backend.Order(ctx, u.Token, id)
}

func (s *CheckoutService) AllOrders(ctx context.Context, u *domain.User) ([]domain.OrderSummary, error) {
	return s.Backend.AdminOrders(ctx, u.Token)
}
