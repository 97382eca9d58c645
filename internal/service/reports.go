package service

import (
	"sort"

	"stockledger/internal/models"
	"stockledger/internal/store"
	"stockledger/internal/util"

	"go.uber.org/zap"
)

// Reports is the read/query surface consumed by the presentation layer.
// Every call works on one consistent document snapshot; deleted ledger rows
// are excluded from all aggregates.
type Reports struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReports wraps a store. A nil logger falls back to the process-wide one.
func NewReports(s *store.Store, logger *zap.Logger) *Reports {
	if logger == nil {
		logger = util.GetLogger()
	}
	return &Reports{
		store:  s,
		logger: logger,
	}
}

// ItemRecord pairs an item with its SKU map key.
type ItemRecord struct {
	SKU string
	models.Item
}

// CustomerRecord pairs a customer with its ID map key.
type CustomerRecord struct {
	CID string
	models.Customer
}

type ItemFilter struct {
	Category        string
	IncludeDisabled bool
}

type CustomerFilter struct {
	IncludeDisabled bool
}

// MovementFilter selects inventory movements. Zero From/To leave that bound
// open; bounds are inclusive.
type MovementFilter struct {
	SKU            string
	From, To       models.Timestamp
	IncludeDeleted bool
}

// SaleFilter selects sales. Zero From/To leave that bound open; bounds are
// inclusive.
type SaleFilter struct {
	CustomerID     string
	SKU            string
	From, To       models.Timestamp
	IncludeDeleted bool
}

// ListItems returns items matching the filter, sorted by name.
func (r *Reports) ListItems(f ItemFilter) []ItemRecord {
	doc := r.store.Snapshot()
	out := make([]ItemRecord, 0, len(doc.Items))
	for sku, it := range doc.Items {
		if !f.IncludeDisabled && it.Disabled {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		out = append(out, ItemRecord{SKU: sku, Item: it})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}

// ListCategories returns the distinct non-empty categories, sorted.
func (r *Reports) ListCategories(includeDisabled bool) []string {
	doc := r.store.Snapshot()
	seen := make(map[string]bool)
	for _, it := range doc.Items {
		if !includeDisabled && it.Disabled {
			continue
		}
		if it.Category != "" {
			seen[it.Category] = true
		}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// ListCustomers returns customers matching the filter, sorted by name.
func (r *Reports) ListCustomers(f CustomerFilter) []CustomerRecord {
	doc := r.store.Snapshot()
	out := make([]CustomerRecord, 0, len(doc.Customers))
	for cid, cu := range doc.Customers {
		if !f.IncludeDisabled && cu.Disabled {
			continue
		}
		out = append(out, CustomerRecord{CID: cid, Customer: cu})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CID < out[j].CID
	})
	return out
}

// ListMovements returns inventory movements matching the filter, ordered by
// timestamp with insertion order as tiebreak.
func (r *Reports) ListMovements(f MovementFilter) []models.InventoryEvent {
	doc := r.store.Snapshot()
	var out []models.InventoryEvent
	for i := range doc.InventoryHistory {
		ev := doc.InventoryHistory[i]
		if !f.IncludeDeleted && ev.Deleted {
			continue
		}
		if f.SKU != "" && ev.SKU != f.SKU {
			continue
		}
		if !inRange(ev.TS, f.From, f.To) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TS.Before(out[j].TS.Time)
	})
	return out
}

// ListSales returns sales matching the filter, ordered by timestamp with
// insertion order as tiebreak.
func (r *Reports) ListSales(f SaleFilter) []models.SaleEvent {
	var out []models.SaleEvent
	r.eachSale(f, f.IncludeDeleted, func(sale models.SaleEvent) {
		out = append(out, sale)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TS.Before(out[j].TS.Time)
	})
	return out
}

// SumSales totals line_total over the non-deleted sales matching the filter.
func (r *Reports) SumSales(f SaleFilter) int64 {
	var total int64
	rows := 0
	r.eachSale(f, false, func(sale models.SaleEvent) {
		total += sale.LineTotal
		rows++
	})
	r.logger.Debug("Sales summed", zap.Int("rows", rows), zap.Int64("total", total))
	return total
}

// SalesByCustomer groups non-deleted sale totals by customer ID.
func (r *Reports) SalesByCustomer(f SaleFilter) map[string]int64 {
	out := make(map[string]int64)
	r.eachSale(f, false, func(sale models.SaleEvent) {
		out[sale.CID] += sale.LineTotal
	})
	return out
}

// SalesByDay groups non-deleted sale totals by calendar day ("2006-01-02").
func (r *Reports) SalesByDay(f SaleFilter) map[string]int64 {
	out := make(map[string]int64)
	r.eachSale(f, false, func(sale models.SaleEvent) {
		out[sale.TS.Format(models.DateLayout)] += sale.LineTotal
	})
	return out
}

// SalesByMonth groups non-deleted sale totals by month ("2006-01").
func (r *Reports) SalesByMonth(f SaleFilter) map[string]int64 {
	out := make(map[string]int64)
	r.eachSale(f, false, func(sale models.SaleEvent) {
		out[sale.TS.Format("2006-01")] += sale.LineTotal
	})
	return out
}

// InventoryValuation sums stock * unit_price over enabled items.
func (r *Reports) InventoryValuation() int64 {
	doc := r.store.Snapshot()
	var total int64
	for _, it := range doc.Items {
		if it.Disabled {
			continue
		}
		total += int64(it.Stock) * it.UnitPrice
	}
	r.logger.Debug("Inventory valued", zap.Int64("total", total))
	return total
}

func (r *Reports) eachSale(f SaleFilter, includeDeleted bool, fn func(models.SaleEvent)) {
	doc := r.store.Snapshot()
	for i := range doc.Sales {
		sale := doc.Sales[i]
		if !includeDeleted && sale.Deleted {
			continue
		}
		if f.CustomerID != "" && sale.CID != f.CustomerID {
			continue
		}
		if f.SKU != "" && sale.SKU != f.SKU {
			continue
		}
		if !inRange(sale.TS, f.From, f.To) {
			continue
		}
		fn(sale)
	}
}

func inRange(ts, from, to models.Timestamp) bool {
	if !from.IsZero() && ts.Before(from.Time) {
		return false
	}
	if !to.IsZero() && ts.After(to.Time) {
		return false
	}
	return true
}
