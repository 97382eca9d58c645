package models

import (
	"encoding/json"
	"time"
)

// TimeLayout is the serialized timestamp format of the data file. It is part
// of the file compatibility contract and must not change.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the format accepted for date-range filter bounds.
const DateLayout = "2006-01-02"

// Timestamp is a time.Time that serializes using TimeLayout.
type Timestamp struct {
	time.Time
}

func Now() Timestamp {
	return Timestamp{time.Now()}
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t}
}

func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{t}, nil
}

func ParseDate(s string) (Timestamp, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{t}, nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(ts.Format(TimeLayout))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// Item is a row of the product master. The SKU is the key of Document.Items
// and is immutable once created; items are never removed, only disabled,
// because ledger rows reference SKUs by value.
type Item struct {
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"`
	Category  string    `json:"category"`
	Stock     int       `json:"stock"`
	Disabled  bool      `json:"disabled"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Customer is a row of the customer master, keyed by customer ID in
// Document.Customers. Same logical-delete-only rule as items.
type Customer struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Note      string    `json:"note"`
	Disabled  bool      `json:"disabled"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Settings holds display options consumed by the presentation layer, plus
// the confirmation phrase required by purge operations.
type Settings struct {
	Theme                string `json:"theme"`
	PriceMode            string `json:"price_mode"`
	PriceDecimals        int    `json:"price_decimals"`
	DangerConfirmPhrase  string `json:"danger_confirm_phrase"`
	ShowDeletedByDefault bool   `json:"show_deleted_by_default"`
}

// Document is the root of the persisted JSON file. Field names are part of
// the on-disk compatibility contract.
type Document struct {
	Items            map[string]Item     `json:"items"`
	Customers        map[string]Customer `json:"customers"`
	InventoryHistory []InventoryEvent    `json:"inventory_history"`
	Sales            []SaleEvent         `json:"sales"`
	CategoryColors   map[string]string   `json:"category_colors"`
	Settings         Settings            `json:"settings"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:                "",
		PriceMode:            "int",
		PriceDecimals:        2,
		DangerConfirmPhrase:  "DELETE",
		ShowDeletedByDefault: false,
	}
}

func DefaultDocument() *Document {
	return &Document{
		Items:            map[string]Item{},
		Customers:        map[string]Customer{},
		InventoryHistory: []InventoryEvent{},
		Sales:            []SaleEvent{},
		CategoryColors:   map[string]string{},
		Settings:         DefaultSettings(),
	}
}

// Clone returns a deep copy of the document. Mutations are applied to a
// clone and published by pointer swap, so a live document is never mutated
// in place.
func (d *Document) Clone() *Document {
	out := &Document{
		Items:            make(map[string]Item, len(d.Items)),
		Customers:        make(map[string]Customer, len(d.Customers)),
		InventoryHistory: make([]InventoryEvent, len(d.InventoryHistory)),
		Sales:            make([]SaleEvent, len(d.Sales)),
		CategoryColors:   make(map[string]string, len(d.CategoryColors)),
		Settings:         d.Settings,
	}
	for sku, it := range d.Items {
		out.Items[sku] = it
	}
	for cid, cu := range d.Customers {
		out.Customers[cid] = cu
	}
	for i, ev := range d.InventoryHistory {
		out.InventoryHistory[i] = ev.clone()
	}
	for i, s := range d.Sales {
		out.Sales[i] = s.clone()
	}
	for cat, color := range d.CategoryColors {
		out.CategoryColors[cat] = color
	}
	return out
}
