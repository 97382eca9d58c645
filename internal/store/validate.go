package store

import (
	"fmt"
	"sort"

	"stockledger/internal/models"
)

// validateDocument enforces the document invariants, failing on the first
// violation. Check order: required fields, uniqueness, referential
// integrity, value ranges, and (full only) stock chain consistency. The full
// form runs on load; the cheap form runs after every mutation.
func validateDocument(doc *models.Document, full bool) error {
	if err := validateStructure(doc); err != nil {
		return err
	}
	if err := validateUniqueness(doc); err != nil {
		return err
	}
	if err := validateReferences(doc); err != nil {
		return err
	}
	if err := validateRanges(doc); err != nil {
		return err
	}
	if full {
		if mismatches := checkChains(doc); len(mismatches) > 0 {
			return &mismatches[0]
		}
	}
	return nil
}

func validateStructure(doc *models.Document) error {
	for _, sku := range sortedKeys(doc.Items) {
		if sku == "" {
			return &ValidationError{Collection: "items", Field: "sku", Reason: "empty key"}
		}
		if doc.Items[sku].Name == "" {
			return &ValidationError{Collection: "items", Key: sku, Field: "name", Reason: "required"}
		}
	}
	for _, cid := range sortedKeys(doc.Customers) {
		if cid == "" {
			return &ValidationError{Collection: "customers", Field: "cid", Reason: "empty key"}
		}
		if doc.Customers[cid].Name == "" {
			return &ValidationError{Collection: "customers", Key: cid, Field: "name", Reason: "required"}
		}
	}
	for i := range doc.InventoryHistory {
		ev := &doc.InventoryHistory[i]
		if ev.ID == "" {
			return &ValidationError{Collection: "inventory_history", Key: fmt.Sprintf("#%d", i), Field: "id", Reason: "required"}
		}
		if ev.TS.IsZero() {
			return &ValidationError{Collection: "inventory_history", Key: ev.ID, Field: "ts", Reason: "required"}
		}
		if ev.Action != models.ActionIn && ev.Action != models.ActionOut {
			return &ValidationError{Collection: "inventory_history", Key: ev.ID, Field: "action", Reason: "must be IN or OUT"}
		}
	}
	for i := range doc.Sales {
		sale := &doc.Sales[i]
		if sale.ID == "" {
			return &ValidationError{Collection: "sales", Key: fmt.Sprintf("#%d", i), Field: "id", Reason: "required"}
		}
		if sale.TS.IsZero() {
			return &ValidationError{Collection: "sales", Key: sale.ID, Field: "ts", Reason: "required"}
		}
	}
	return nil
}

func validateUniqueness(doc *models.Document) error {
	seen := make(map[string]bool, len(doc.InventoryHistory))
	for i := range doc.InventoryHistory {
		id := doc.InventoryHistory[i].ID
		if seen[id] {
			return &ValidationError{Collection: "inventory_history", Key: id, Field: "id", Reason: "duplicate"}
		}
		seen[id] = true
	}
	seen = make(map[string]bool, len(doc.Sales))
	for i := range doc.Sales {
		id := doc.Sales[i].ID
		if seen[id] {
			return &ValidationError{Collection: "sales", Key: id, Field: "id", Reason: "duplicate"}
		}
		seen[id] = true
	}
	return nil
}

func validateReferences(doc *models.Document) error {
	for i := range doc.InventoryHistory {
		ev := &doc.InventoryHistory[i]
		if _, ok := doc.Items[ev.SKU]; !ok {
			return &ValidationError{Collection: "inventory_history", Key: ev.ID, Field: "sku",
				Reason: fmt.Sprintf("unknown item %q", ev.SKU)}
		}
	}
	for i := range doc.Sales {
		sale := &doc.Sales[i]
		if _, ok := doc.Customers[sale.CID]; !ok {
			return &ValidationError{Collection: "sales", Key: sale.ID, Field: "cid",
				Reason: fmt.Sprintf("unknown customer %q", sale.CID)}
		}
		if _, ok := doc.Items[sale.SKU]; !ok {
			return &ValidationError{Collection: "sales", Key: sale.ID, Field: "sku",
				Reason: fmt.Sprintf("unknown item %q", sale.SKU)}
		}
	}
	return nil
}

func validateRanges(doc *models.Document) error {
	for _, sku := range sortedKeys(doc.Items) {
		if doc.Items[sku].UnitPrice < 0 {
			return &ValidationError{Collection: "items", Key: sku, Field: "unit_price", Reason: "negative"}
		}
	}
	for i := range doc.InventoryHistory {
		ev := &doc.InventoryHistory[i]
		if ev.Qty <= 0 {
			return &ValidationError{Collection: "inventory_history", Key: ev.ID, Field: "qty", Reason: "must be positive"}
		}
	}
	for i := range doc.Sales {
		sale := &doc.Sales[i]
		if sale.Qty <= 0 {
			return &ValidationError{Collection: "sales", Key: sale.ID, Field: "qty", Reason: "must be positive"}
		}
		if sale.UnitPrice < 0 {
			return &ValidationError{Collection: "sales", Key: sale.ID, Field: "unit_price", Reason: "negative"}
		}
		if sale.LineTotal != int64(sale.Qty)*sale.UnitPrice {
			return &ValidationError{Collection: "sales", Key: sale.ID, Field: "line_total",
				Reason: fmt.Sprintf("expected %d", int64(sale.Qty)*sale.UnitPrice)}
		}
	}
	return nil
}

// checkChains replays every item's non-deleted movement chain and reports
// each stock_after or item stock that disagrees with the stored values.
func checkChains(doc *models.Document) []RecomputationMismatchError {
	var mismatches []RecomputationMismatchError
	for _, sku := range sortedKeys(doc.Items) {
		running := 0
		for _, i := range orderedActiveMovements(doc, sku) {
			ev := &doc.InventoryHistory[i]
			running += ev.SignedQty()
			if ev.StockAfter != running {
				mismatches = append(mismatches, RecomputationMismatchError{
					SKU: sku, EventID: ev.ID, Stored: ev.StockAfter, Computed: running,
				})
			}
		}
		if doc.Items[sku].Stock != running {
			mismatches = append(mismatches, RecomputationMismatchError{
				SKU: sku, Stored: doc.Items[sku].Stock, Computed: running,
			})
		}
	}
	return mismatches
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
