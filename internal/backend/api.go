package backend

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type LoginResult struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID    string      `json:"id"`
		Email string      `json:"email"`
		Name  string      `json:"name"`
		Role  domain.Role `json:"role"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	return out, err
}

// Products lists the catalog. Records are normalized here, at the point
// they enter the storefront.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var recs []domain.ProductRecord
	if err := c.do(ctx, http.MethodGet, "/products", nil, &recs); err != nil {
		return nil, err
	}
	return normalize(recs), nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var rec domain.ProductRecord
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &rec); err != nil {
		return domain.Product{}, err
	}
	return rec.Normalize(), nil
}

func (c *Client) SellerProducts(ctx context.Context, token string) ([]domain.Product, error) {
	var recs []domain.ProductRecord
	if err := c.do(ctx, http.MethodGet, "/sellers/me/products", nil, &recs, withToken(token)); err != nil {
		return nil, err
	}
	return normalize(recs), nil
}

type OrderRequest struct {
	Lines   []cart.CheckoutLine `json:"lines"`
	Preview pricing.Preview     `json:"preview"`
}

// CreateOrder hands the checkout lines to the order service. The key makes
// a retried submission land on the same order.
func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, req OrderRequest) (domain.OrderSummary, error) {
	var out domain.OrderSummary
	err := c.do(ctx, http.MethodPost, "/orders", req, &out,
		withToken(token), withHeader("Idempotency-Key", idempotencyKey))
	return out, err
}

func (c *Client) Orders(ctx context.Context, token string) ([]domain.OrderSummary, error) {
	var out []domain.OrderSummary
	err := c.do(ctx, http.MethodGet, "/orders", nil, &out, withToken(token))
	return out, err
}

func (c *Client) Order(ctx context.Context, token, id string) (domain.OrderSummary, error) {
	var out domain.OrderSummary
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &out, withToken(token))
	return out, err
}

func (c *Client) AdminOrders(ctx context.Context, token string) ([]domain.OrderSummary, error) {
	var out []domain.OrderSummary
	err := c.do(ctx, http.MethodGet, "/admin/orders", nil, &out, withToken(token))
	return out, err
}

func normalize(recs []domain.ProductRecord) []domain.Product {
	out := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Normalize())
	}
	return out
}
