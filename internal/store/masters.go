package store

import (
	"fmt"
	"strings"

	"stockledger/internal/models"
)

// ItemUpdate lists the mutable fields of an item. The SKU itself is
// immutable; there is deliberately no way to change or remove it.
type ItemUpdate struct {
	Name      *string
	UnitPrice *int64
	Category  *string
	Disabled  *bool
}

// AddItem inserts a new item with zero stock. Initial stock arrives as an
// ordinary IN movement so the ledger alone explains the total.
func (s *Store) AddItem(sku, name string, unitPrice int64, category string) error {
	return s.mutate("add_item", func(doc *models.Document) error {
		sku = strings.TrimSpace(sku)
		name = strings.TrimSpace(name)
		category = strings.TrimSpace(category)
		if sku == "" {
			return &ValidationError{Collection: "items", Field: "sku", Reason: "required"}
		}
		if name == "" {
			return &ValidationError{Collection: "items", Key: sku, Field: "name", Reason: "required"}
		}
		if unitPrice < 0 {
			return &ValidationError{Collection: "items", Key: sku, Field: "unit_price", Reason: "negative"}
		}
		if _, ok := doc.Items[sku]; ok {
			return fmt.Errorf("item %s: %w", sku, ErrDuplicateKey)
		}
		now := models.Now()
		doc.Items[sku] = models.Item{
			Name:      name,
			UnitPrice: unitPrice,
			Category:  category,
			Stock:     0,
			Disabled:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	})
}

// UpdateItem applies the non-nil fields of upd to an existing item.
func (s *Store) UpdateItem(sku string, upd ItemUpdate) error {
	return s.mutate("update_item", func(doc *models.Document) error {
		it, ok := doc.Items[sku]
		if !ok {
			return fmt.Errorf("item %s: %w", sku, ErrNotFound)
		}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return &ValidationError{Collection: "items", Key: sku, Field: "name", Reason: "required"}
			}
			it.Name = name
		}
		if upd.UnitPrice != nil {
			if *upd.UnitPrice < 0 {
				return &ValidationError{Collection: "items", Key: sku, Field: "unit_price", Reason: "negative"}
			}
			it.UnitPrice = *upd.UnitPrice
		}
		if upd.Category != nil {
			it.Category = strings.TrimSpace(*upd.Category)
		}
		if upd.Disabled != nil {
			it.Disabled = *upd.Disabled
		}
		it.UpdatedAt = models.Now()
		doc.Items[sku] = it
		return nil
	})
}

// SetItemDisabled flips the logical-delete flag of an item. Items are never
// structurally removed; ledger rows reference SKUs by value and must always
// resolve.
func (s *Store) SetItemDisabled(sku string, disabled bool) error {
	return s.UpdateItem(sku, ItemUpdate{Disabled: &disabled})
}

// CustomerUpdate lists the mutable fields of a customer.
type CustomerUpdate struct {
	Name     *string
	Phone    *string
	Note     *string
	Disabled *bool
}

// AddCustomer inserts a new customer.
func (s *Store) AddCustomer(cid, name, phone, note string) error {
	return s.mutate("add_customer", func(doc *models.Document) error {
		cid = strings.TrimSpace(cid)
		name = strings.TrimSpace(name)
		if cid == "" {
			return &ValidationError{Collection: "customers", Field: "cid", Reason: "required"}
		}
		if name == "" {
			return &ValidationError{Collection: "customers", Key: cid, Field: "name", Reason: "required"}
		}
		if _, ok := doc.Customers[cid]; ok {
			return fmt.Errorf("customer %s: %w", cid, ErrDuplicateKey)
		}
		now := models.Now()
		doc.Customers[cid] = models.Customer{
			Name:      name,
			Phone:     phone,
			Note:      note,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	})
}

// UpdateCustomer applies the non-nil fields of upd to an existing customer.
func (s *Store) UpdateCustomer(cid string, upd CustomerUpdate) error {
	return s.mutate("update_customer", func(doc *models.Document) error {
		cu, ok := doc.Customers[cid]
		if !ok {
			return fmt.Errorf("customer %s: %w", cid, ErrNotFound)
		}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return &ValidationError{Collection: "customers", Key: cid, Field: "name", Reason: "required"}
			}
			cu.Name = name
		}
		if upd.Phone != nil {
			cu.Phone = *upd.Phone
		}
		if upd.Note != nil {
			cu.Note = *upd.Note
		}
		if upd.Disabled != nil {
			cu.Disabled = *upd.Disabled
		}
		cu.UpdatedAt = models.Now()
		doc.Customers[cid] = cu
		return nil
	})
}

// SetCustomerDisabled flips the logical-delete flag of a customer.
func (s *Store) SetCustomerDisabled(cid string, disabled bool) error {
	return s.UpdateCustomer(cid, CustomerUpdate{Disabled: &disabled})
}
