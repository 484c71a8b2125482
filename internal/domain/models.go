package domain

type DeliveryMode string

const (
	DeliveryInstant DeliveryMode = "instant"
	DeliveryCustom  DeliveryMode = "custom"
)

// CustomOrder carries the SLA metadata of products delivered as custom work.
type CustomOrder struct {
	ETADays       int  `json:"etaDays"`
	BriefRequired bool `json:"briefRequired"`
}

type AddOn struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	ExtraSLADays int    `json:"extraSlaDays,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Product is an immutable catalog snapshot. Prices are integer currency units.
type Product struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Tech         []string     `json:"tech,omitempty"`
	Price        int64        `json:"price"`
	DeliveryMode DeliveryMode `json:"deliveryMode"`
	CustomOrder  *CustomOrder `json:"customOrder,omitempty"`
	AddOns       []AddOn      `json:"addOns,omitempty"`
	SellerID     string       `json:"sellerId,omitempty"`
}

func (p Product) AddOn(id string) (AddOn, bool) {
	for _, a := range p.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

func (p Product) BriefRequired() bool {
	return p.CustomOrder != nil && p.CustomOrder.BriefRequired
}

// ProductRecord is the shape products arrive in from the backend and from
// older persisted snapshots. BasePrice is the legacy name of Price.
type ProductRecord struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Tech         []string     `json:"tech,omitempty"`
	Price        *int64       `json:"price,omitempty"`
	BasePrice    *int64       `json:"basePrice,omitempty"`
	DeliveryMode DeliveryMode `json:"deliveryMode"`
	CustomOrder  *CustomOrder `json:"customOrder,omitempty"`
	AddOns       []AddOn      `json:"addOns,omitempty"`
	SellerID     string       `json:"sellerId,omitempty"`
}

// Normalize resolves the legacy price field and fills the delivery mode.
// It is the only place the two price spellings are reconciled.
func (r ProductRecord) Normalize() Product {
	var price int64
	switch {
	case r.Price != nil:
		price = *r.Price
	case r.BasePrice != nil:
		price = *r.BasePrice
	}
	mode := r.DeliveryMode
	if mode != DeliveryCustom {
		mode = DeliveryInstant
	}
	return Product{
		ID:           r.ID,
		Title:        r.Title,
		Tech:         r.Tech,
		Price:        price,
		DeliveryMode: mode,
		CustomOrder:  r.CustomOrder,
		AddOns:       r.AddOns,
		SellerID:     r.SellerID,
	}
}

type OrderSummary struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	GrandTotal int64  `json:"grandTotal"`
	ETADays    int    `json:"etaDays"`
	CreatedAt  string `json:"createdAt"`
	BuyerID    string `json:"buyerId,omitempty"`
}
