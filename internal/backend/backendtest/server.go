// Package backendtest runs an in-process stand-in for the marketplace API.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/backend"
	"storefront/internal/domain"
)

const Secret = "test-secret"

type Account struct {
	ID       string
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

type PlacedOrder struct {
	BuyerID        string
	IdempotencyKey string
	Request        backend.OrderRequest
	Summary        domain.OrderSummary
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts []Account
	products []json.RawMessage
	orders   []PlacedOrder
	// FailOrders makes POST /orders answer 422.
	FailOrders bool
}

var DefaultAccounts = []Account{
	{ID: "u-alice", Email: "alice@example.test", Name: "Alice", Password: "Passw0rd!", Role: domain.RoleBuyer},
	{ID: "u-bob", Email: "bob@example.test", Name: "Bob", Password: "Passw0rd!", Role: domain.RoleBuyer},
	{ID: "u-sam", Email: "sam@example.test", Name: "Sam", Password: "Passw0rd!", Role: domain.RoleSeller},
	{ID: "u-admin", Email: "admin@example.test", Name: "Admin", Password: "Passw0rd!", Role: domain.RoleAdmin},
}

// DefaultProducts mixes both price spellings the API has used.
var DefaultProducts = []string{
	`{"id":"p-web","title":"Company website","tech":["go","htmx"],"price":1500000,"deliveryMode":"custom",
	  "customOrder":{"etaDays":10,"briefRequired":true},"sellerId":"u-sam",
	  "addOns":[{"id":"seo","name":"SEO pack","price":500000,"extraSlaDays":2},
	            {"id":"cms","name":"CMS","price":900000,"extraSlaDays":4}]}`,
	`{"id":"p-tpl","title":"Landing template","basePrice":250000,"deliveryMode":"instant","sellerId":"u-sam"}`,
}

func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{accounts: DefaultAccounts}
	for _, p := range DefaultProducts {
		s.products = append(s.products, json.RawMessage(p))
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /products", s.listProducts)
	mux.HandleFunc("GET /products/{id}", s.getProduct)
	mux.HandleFunc("GET /sellers/me/products", s.authed(s.sellerProducts))
	mux.HandleFunc("POST /orders", s.authed(s.createOrder))
	mux.HandleFunc("GET /orders", s.authed(s.listOrders))
	mux.HandleFunc("GET /orders/{id}", s.authed(s.getOrder))
	mux.HandleFunc("GET /admin/orders", s.authed(s.adminOrders))
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Token signs an access token for acc the way the real API does.
func Token(acc Account) string {
	claims := backend.Claims{
		Email: acc.Email,
		Name:  acc.Name,
		Role:  acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret))
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) Orders() []PlacedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PlacedOrder(nil), s.orders...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, in.Email) && a.Password == in.Password {
			writeJSON(w, http.StatusOK, map[string]any{
				"accessToken": Token(a),
				"user":        map[string]any{"id": a.ID, "email": a.Email, "name": a.Name, "role": a.Role},
			})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, raw := range s.products {
		var head struct{ ID string }
		_ = json.Unmarshal(raw, &head)
		if head.ID == id {
			writeJSON(w, http.StatusOK, raw)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such product"})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, c *backend.Claims)

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := backend.VerifyToken(Secret, tok)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad token"})
			return
		}
		h(w, r, claims)
	}
}

func (s *Server) sellerProducts(w http.ResponseWriter, _ *http.Request, c *backend.Claims) {
	if c.Role != domain.RoleSeller && c.Role != domain.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "sellers only"})
		return
	}
	var out []json.RawMessage
	for _, raw := range s.products {
		var head struct {
			SellerID string `json:"sellerId"`
		}
		_ = json.Unmarshal(raw, &head)
		if head.SellerID == c.Subject || c.Role == domain.RoleAdmin {
			out = append(out, raw)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request, c *backend.Claims) {
	var req backend.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOrders {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "payment declined"})
		return
	}
	key := r.Header.Get("Idempotency-Key")
	for _, o := range s.orders {
		if key != "" && o.IdempotencyKey == key {
			writeJSON(w, http.StatusOK, o.Summary)
			return
		}
	}
	sum := domain.OrderSummary{
		ID:         "ord-" + string(rune('a'+len(s.orders))),
		Status:     "PENDING_PAYMENT",
		GrandTotal: req.Preview.GrandTotal,
		ETADays:    req.Preview.EstimatedDays,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		BuyerID:    c.Subject,
	}
	s.orders = append(s.orders, PlacedOrder{BuyerID: c.Subject, IdempotencyKey: key, Request: req, Summary: sum})
	writeJSON(w, http.StatusCreated, sum)
}

func (s *Server) listOrders(w http.ResponseWriter, _ *http.Request, c *backend.Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.OrderSummary{}
	for _, o := range s.orders {
		if o.BuyerID == c.Subject {
			out = append(out, o.Summary)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request, c *backend.Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.Summary.ID == r.PathValue("id") && (o.BuyerID == c.Subject || c.Role == domain.RoleAdmin) {
			writeJSON(w, http.StatusOK, o.Summary)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such order"})
}

func (s *Server) adminOrders(w http.ResponseWriter, _ *http.Request, c *backend.Claims) {
	if c.Role != domain.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admins only"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.OrderSummary{}
	for _, o := range s.orders {
		out = append(out, o.Summary)
	}
	writeJSON(w, http.StatusOK, out)
}
