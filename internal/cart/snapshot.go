package cart

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
)

const (
	DefaultPrefix   = "storefront-cart:"
	AnonymousKey    = "anonymous"
	SnapshotVersion = 1
)

// Key derives the storage key for a user; "" is the anonymous session.
// Reads and writes both go through here.
func Key(prefix, userID string) string {
	if userID == "" {
		return prefix + AnonymousKey
	}
	return prefix + userID
}

type snapshot struct {
	State   snapshotState `json:"state"`
	Version int           `json:"version"`
}

type snapshotState struct {
	Lines  []Line  `json:"lines"`
	UserID *string `json:"userId"`
}

func encodeSnapshot(lines []Line, userID string) ([]byte, error) {
	st := snapshotState{Lines: lines}
	if st.Lines == nil {
		st.Lines = []Line{}
	}
	if userID != "" {
		st.UserID = &userID
	}
	return json.Marshal(snapshot{State: st, Version: SnapshotVersion})
}

// lineRecord accepts products in either price spelling.
type lineRecord struct {
	Product  domain.ProductRecord `json:"product"`
	AddOnIDs []string             `json:"selectedAddOnIds"`
	Quantity int                  `json:"quantity"`
	Brief    string               `json:"brief"`
}

type snapshotRecord struct {
	State *struct {
		Lines []lineRecord `json:"lines"`
	} `json:"state"`
	Version int `json:"version"`
	// Lines is the unwrapped layout written by older clients.
	Lines []lineRecord `json:"lines"`
}

// decodeSnapshot reads both the wrapped and the legacy layout and restores
// the line invariants: quantity >= 1 and one line per product.
func decodeSnapshot(data []byte) ([]Line, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	records := rec.Lines
	if rec.State != nil {
		records = rec.State.Lines
	}

	lines := make([]Line, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		p := r.Product.Normalize()
		if p.ID == "" {
			continue
		}
		if i, ok := index[p.ID]; ok {
			lines[i].Quantity += clampQty(r.Quantity)
			lines[i].AddOnIDs = addOnSet(r.AddOnIDs)
			if r.Brief != "" {
				lines[i].Brief = r.Brief
			}
			continue
		}
		index[p.ID] = len(lines)
		lines = append(lines, Line{
			Product:  p,
			AddOnIDs: addOnSet(r.AddOnIDs),
			Quantity: clampQty(r.Quantity),
			Brief:    r.Brief,
		})
	}
	return lines, nil
}
