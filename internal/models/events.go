package models

// Inventory movement actions
const (
	ActionIn  = "IN"
	ActionOut = "OUT"
)

// ID prefixes
const (
	PrefixInventory = "IH"
	PrefixSale      = "S"
)

// InventoryEvent is one row of the append-only stock movement ledger.
// StockAfter is a computed snapshot of the item's stock immediately after
// this event; it is rewritten by every chain replay and never supplied by
// callers.
type InventoryEvent struct {
	ID            string     `json:"id"`
	TS            Timestamp  `json:"ts"`
	Action        string     `json:"action"`
	SKU           string     `json:"sku"`
	Qty           int        `json:"qty"`
	StockAfter    int        `json:"stock_after"`
	Note          string     `json:"note"`
	Deleted       bool       `json:"deleted"`
	DeletedAt     *Timestamp `json:"deleted_at,omitempty"`
	DeletedReason string     `json:"deleted_reason,omitempty"`
}

// SignedQty is the stock delta this event contributes when replayed.
func (e InventoryEvent) SignedQty() int {
	if e.Action == ActionOut {
		return -e.Qty
	}
	return e.Qty
}

func (e InventoryEvent) clone() InventoryEvent {
	if e.DeletedAt != nil {
		at := *e.DeletedAt
		e.DeletedAt = &at
	}
	return e
}

// SaleEvent is one row of the append-only sales ledger. UnitPrice is
// captured at sale time and independent of the item's current price;
// LineTotal is Qty * UnitPrice. Sales never affect stock.
type SaleEvent struct {
	ID            string     `json:"id"`
	TS            Timestamp  `json:"ts"`
	CID           string     `json:"cid"`
	SKU           string     `json:"sku"`
	Qty           int        `json:"qty"`
	UnitPrice     int64      `json:"unit_price"`
	LineTotal     int64      `json:"line_total"`
	Note          string     `json:"note"`
	Deleted       bool       `json:"deleted"`
	DeletedAt     *Timestamp `json:"deleted_at,omitempty"`
	DeletedReason string     `json:"deleted_reason,omitempty"`
}

func (s SaleEvent) clone() SaleEvent {
	if s.DeletedAt != nil {
		at := *s.DeletedAt
		s.DeletedAt = &at
	}
	return s
}
