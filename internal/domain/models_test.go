package domain

import (
	"encoding/json"
	"testing"
)

func TestProductRecordNormalize(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		price int64
		mode  DeliveryMode
	}{
		{"price", `{"id":"a","price":100,"deliveryMode":"custom"}`, 100, DeliveryCustom},
		{"legacy basePrice", `{"id":"b","basePrice":250}`, 250, DeliveryInstant},
		{"price wins", `{"id":"c","price":10,"basePrice":20,"deliveryMode":"instant"}`, 10, DeliveryInstant},
		{"unknown mode", `{"id":"d","price":1,"deliveryMode":"express"}`, 1, DeliveryInstant},
		{"no price", `{"id":"e"}`, 0, DeliveryInstant},
	}
	for _, tc := range cases {
		var rec ProductRecord
		if err := json.Unmarshal([]byte(tc.raw), &rec); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		p := rec.Normalize()
		if p.Price != tc.price || p.DeliveryMode != tc.mode {
			t.Errorf("%s: got price=%d mode=%s", tc.name, p.Price, p.DeliveryMode)
		}
	}
}

func TestUserIs(t *testing.T) {
	var nobody *User
	if nobody.Is(RoleBuyer) {
		t.Fatal("nil user has no role")
	}
	u := &User{Role: RoleSeller}
	if !u.Is(RoleSeller, RoleAdmin) || u.Is(RoleAdmin) {
		t.Fatalf("role check for %s", u.Role)
	}
}
