package store

import (
	"fmt"
	"time"

	"stockledger/internal/idgen"
	"stockledger/internal/models"
)

// SaleLine is one line of a batch sale.
type SaleLine struct {
	SKU       string
	Qty       int
	UnitPrice int64
	Note      string
}

// RecordSale appends a sale for an existing customer and item. The unit
// price is captured on the row and stays fixed when the item's price later
// changes; line_total is qty * unit_price. Sales never touch item stock, the
// two ledgers are independent by design. A zero ts records the sale at the
// current time.
func (s *Store) RecordSale(cid, sku string, qty int, unitPrice int64, ts models.Timestamp, note string) (models.SaleEvent, error) {
	var out models.SaleEvent
	err := s.mutate("record_sale", func(doc *models.Document) error {
		sale, err := appendSale(doc, cid, sku, qty, unitPrice, ts, note)
		if err != nil {
			return err
		}
		out = sale
		return nil
	})
	return out, err
}

// RecordSales appends one sale per line for a single customer with a shared
// timestamp. All lines are applied and persisted together or not at all.
func (s *Store) RecordSales(cid string, lines []SaleLine, ts models.Timestamp) ([]models.SaleEvent, error) {
	var out []models.SaleEvent
	err := s.mutate("record_sales", func(doc *models.Document) error {
		out = make([]models.SaleEvent, 0, len(lines))
		for _, ln := range lines {
			sale, err := appendSale(doc, cid, ln.SKU, ln.Qty, ln.UnitPrice, ts, ln.Note)
			if err != nil {
				return err
			}
			out = append(out, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendSale(doc *models.Document, cid, sku string, qty int, unitPrice int64, ts models.Timestamp, note string) (models.SaleEvent, error) {
	cu, ok := doc.Customers[cid]
	if !ok {
		return models.SaleEvent{}, fmt.Errorf("customer %s: %w", cid, ErrNotFound)
	}
	if cu.Disabled {
		return models.SaleEvent{}, &ValidationError{Collection: "customers", Key: cid, Field: "disabled", Reason: "customer is disabled"}
	}
	it, ok := doc.Items[sku]
	if !ok {
		return models.SaleEvent{}, fmt.Errorf("item %s: %w", sku, ErrNotFound)
	}
	if it.Disabled {
		return models.SaleEvent{}, &ValidationError{Collection: "items", Key: sku, Field: "disabled", Reason: "item is disabled"}
	}
	if qty <= 0 {
		return models.SaleEvent{}, fmt.Errorf("qty %d: %w", qty, ErrInvalidQty)
	}
	if unitPrice < 0 {
		return models.SaleEvent{}, &ValidationError{Collection: "sales", Field: "unit_price", Reason: "negative"}
	}
	if ts.IsZero() {
		ts = models.Now()
	}
	ts = models.NewTimestamp(ts.Truncate(time.Second))

	sale := models.SaleEvent{
		ID:        idgen.New(models.PrefixSale),
		TS:        ts,
		CID:       cid,
		SKU:       sku,
		Qty:       qty,
		UnitPrice: unitPrice,
		LineTotal: int64(qty) * unitPrice,
		Note:      note,
	}
	for i := range doc.Sales {
		if doc.Sales[i].ID == sale.ID {
			return models.SaleEvent{}, fmt.Errorf("sale %s: %w", sale.ID, ErrDuplicateID)
		}
	}
	doc.Sales = append(doc.Sales, sale)
	return sale, nil
}

// SetSaleDeleted toggles the logical-delete flag of a sale. Sales carry no
// derived chain beyond their own line_total, so no recomputation is needed.
func (s *Store) SetSaleDeleted(id string, deleted bool, reason string) error {
	return s.mutate("set_sale_deleted", func(doc *models.Document) error {
		for i := range doc.Sales {
			if doc.Sales[i].ID != id {
				continue
			}
			doc.Sales[i].Deleted = deleted
			if deleted {
				now := models.Now()
				doc.Sales[i].DeletedAt = &now
				doc.Sales[i].DeletedReason = reason
			} else {
				doc.Sales[i].DeletedAt = nil
				doc.Sales[i].DeletedReason = ""
			}
			return nil
		}
		return fmt.Errorf("sale %s: %w", id, ErrNotFound)
	})
}

// RestoreSale clears the logical-delete flag of a sale.
func (s *Store) RestoreSale(id string) error {
	return s.SetSaleDeleted(id, false, "")
}

// PurgeSale physically removes a sale, gated by the danger confirm phrase.
func (s *Store) PurgeSale(id, confirmation string) error {
	return s.mutate("purge_sale", func(doc *models.Document) error {
		if confirmation != doc.Settings.DangerConfirmPhrase {
			return ErrConfirmationRequired
		}
		for i := range doc.Sales {
			if doc.Sales[i].ID != id {
				continue
			}
			doc.Sales = append(doc.Sales[:i], doc.Sales[i+1:]...)
			return nil
		}
		return fmt.Errorf("sale %s: %w", id, ErrNotFound)
	})
}

// PurgeDeletedSales physically removes every soft-deleted sale and returns
// how many were removed.
func (s *Store) PurgeDeletedSales(confirmation string) (int, error) {
	removed := 0
	err := s.mutate("purge_deleted_sales", func(doc *models.Document) error {
		if confirmation != doc.Settings.DangerConfirmPhrase {
			return ErrConfirmationRequired
		}
		kept := doc.Sales[:0:0]
		for i := range doc.Sales {
			if doc.Sales[i].Deleted {
				removed++
				continue
			}
			kept = append(kept, doc.Sales[i])
		}
		doc.Sales = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
