package store

import (
	"testing"

	"stockledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDoc(t *testing.T) *models.Document {
	t.Helper()
	doc := models.DefaultDocument()
	now := mustTS(t, "2026-01-01 00:00:00")
	doc.Items["SKU001"] = models.Item{
		Name: "Widget", UnitPrice: 1200, Category: "parts", Stock: 7,
		CreatedAt: now, UpdatedAt: now,
	}
	doc.Customers["C001"] = models.Customer{Name: "Tanaka", CreatedAt: now, UpdatedAt: now}
	doc.InventoryHistory = []models.InventoryEvent{
		{ID: "IH_1", TS: mustTS(t, "2026-01-10 09:00:00"), Action: models.ActionIn, SKU: "SKU001", Qty: 10, StockAfter: 10},
		{ID: "IH_2", TS: mustTS(t, "2026-01-11 09:00:00"), Action: models.ActionOut, SKU: "SKU001", Qty: 3, StockAfter: 7},
	}
	doc.Sales = []models.SaleEvent{
		{ID: "S_1", TS: mustTS(t, "2026-01-11 10:00:00"), CID: "C001", SKU: "SKU001", Qty: 2, UnitPrice: 1200, LineTotal: 2400},
	}
	return doc
}

func TestValidateAcceptsConsistentDocument(t *testing.T) {
	assert.NoError(t, validateDocument(validDoc(t), true))
}

func TestValidateDetects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *models.Document)
		field  string
	}{
		{
			name: "item without name",
			mutate: func(doc *models.Document) {
				it := doc.Items["SKU001"]
				it.Name = ""
				doc.Items["SKU001"] = it
			},
			field: "name",
		},
		{
			name: "movement without id",
			mutate: func(doc *models.Document) {
				doc.InventoryHistory[0].ID = ""
			},
			field: "id",
		},
		{
			name: "movement with unknown action",
			mutate: func(doc *models.Document) {
				doc.InventoryHistory[0].Action = "ADJUST"
			},
			field: "action",
		},
		{
			name: "duplicate movement id",
			mutate: func(doc *models.Document) {
				doc.InventoryHistory[1].ID = "IH_1"
			},
			field: "id",
		},
		{
			name: "movement referencing unknown item",
			mutate: func(doc *models.Document) {
				doc.InventoryHistory[0].SKU = "GHOST"
			},
			field: "sku",
		},
		{
			name: "sale referencing unknown customer",
			mutate: func(doc *models.Document) {
				doc.Sales[0].CID = "GHOST"
			},
			field: "cid",
		},
		{
			name: "zero movement qty",
			mutate: func(doc *models.Document) {
				doc.InventoryHistory[1].Qty = 0
			},
			field: "qty",
		},
		{
			name: "negative item price",
			mutate: func(doc *models.Document) {
				it := doc.Items["SKU001"]
				it.UnitPrice = -1
				doc.Items["SKU001"] = it
			},
			field: "unit_price",
		},
		{
			name: "sale line_total out of sync",
			mutate: func(doc *models.Document) {
				doc.Sales[0].LineTotal = 9999
			},
			field: "line_total",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := validDoc(t)
			tc.mutate(doc)
			err := validateDocument(doc, true)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidateChainMismatchOnlyInFullMode(t *testing.T) {
	doc := validDoc(t)
	doc.InventoryHistory[1].StockAfter = 42

	// Cheap validation skips the chain, full validation reports it.
	assert.NoError(t, validateDocument(doc, false))

	err := validateDocument(doc, true)
	var mm *RecomputationMismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "SKU001", mm.SKU)
	assert.Equal(t, "IH_2", mm.EventID)
	assert.Equal(t, 42, mm.Stored)
	assert.Equal(t, 7, mm.Computed)
}

func TestCheckChainsIgnoresDeletedMovements(t *testing.T) {
	doc := validDoc(t)
	// Soft-delete the OUT and fix up the chain the way a replay would.
	doc.InventoryHistory[1].Deleted = true
	doc.InventoryHistory[1].StockAfter = 0 // stale, must be ignored
	it := doc.Items["SKU001"]
	it.Stock = 10
	doc.Items["SKU001"] = it

	assert.Empty(t, checkChains(doc))
}
