package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"stockledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := testConfig(t, false)
	s, err := Open(cfg, nil)
	require.NoError(t, err)

	require.NoError(t, s.AddItem("SKU001", "Widget", 1200, "parts"))
	require.NoError(t, s.AddCustomer("C001", "Tanaka", "", "regular"))
	_, err = s.RecordMovement("SKU001", models.ActionIn, 10, mustTS(t, "2026-01-10 09:00:00"), "initial stock")
	require.NoError(t, err)
	_, err = s.RecordSale("C001", "SKU001", 2, 1200, mustTS(t, "2026-01-10 10:00:00"), "")
	require.NoError(t, err)
	require.NoError(t, s.SetCategoryColor("parts", "#336699"))

	before, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s2.Close()

	assert.False(t, s2.LoadReport().Recomputed)
	after, err := json.Marshal(s2.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	cfg := testConfig(t, false)
	require.NoError(t, os.WriteFile(cfg.Persist.DataFile, []byte("{not json"), 0o644))

	_, err := Open(cfg, nil)
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestOpenRejectsWrongShape(t *testing.T) {
	cfg := testConfig(t, false)
	// items must be an object keyed by SKU, not an array
	require.NoError(t, os.WriteFile(cfg.Persist.DataFile, []byte(`{"items": []}`), 0o644))

	_, err := Open(cfg, nil)
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestOpenRejectsReferentialViolation(t *testing.T) {
	cfg := testConfig(t, false)
	raw := `{
		"items": {},
		"customers": {},
		"inventory_history": [],
		"sales": [
			{"id": "S_1", "ts": "2026-01-10 10:00:00", "cid": "GHOST", "sku": "SKU001",
			 "qty": 1, "unit_price": 100, "line_total": 100, "note": "", "deleted": false}
		],
		"category_colors": {},
		"settings": {}
	}`
	require.NoError(t, os.WriteFile(cfg.Persist.DataFile, []byte(raw), 0o644))

	_, err := Open(cfg, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sales", ve.Collection)
	assert.Equal(t, "cid", ve.Field)
}

func TestOpenRecomputesMismatchedChain(t *testing.T) {
	cfg := testConfig(t, false)
	// Hand-edited file: stock and stock_after disagree with the movement log.
	raw := `{
		"items": {
			"SKU001": {"name": "Widget", "unit_price": 1200, "category": "parts",
			           "stock": 99, "disabled": false,
			           "created_at": "2026-01-01 00:00:00", "updated_at": "2026-01-01 00:00:00"}
		},
		"customers": {},
		"inventory_history": [
			{"id": "IH_1", "ts": "2026-01-10 09:00:00", "action": "IN", "sku": "SKU001",
			 "qty": 10, "stock_after": 99, "note": "", "deleted": false},
			{"id": "IH_2", "ts": "2026-01-11 09:00:00", "action": "OUT", "sku": "SKU001",
			 "qty": 3, "stock_after": 99, "note": "", "deleted": false}
		],
		"sales": [],
		"category_colors": {},
		"settings": {}
	}`
	require.NoError(t, os.WriteFile(cfg.Persist.DataFile, []byte(raw), 0o644))

	s, err := Open(cfg, nil)
	require.NoError(t, err)

	report := s.LoadReport()
	assert.True(t, report.Recomputed)
	assert.NotEmpty(t, report.Mismatches)

	it, _ := s.Item("SKU001")
	assert.Equal(t, 7, it.Stock)
	hist := s.Snapshot().InventoryHistory
	assert.Equal(t, 10, hist[0].StockAfter)
	assert.Equal(t, 7, hist[1].StockAfter)
	require.NoError(t, s.Close())

	// The corrected chain was persisted: reopening is clean.
	s2, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s2.Close()
	assert.False(t, s2.LoadReport().Recomputed)
}

func TestOpenFillsMissingSettings(t *testing.T) {
	cfg := testConfig(t, false)
	raw := `{
		"items": {},
		"customers": {},
		"inventory_history": [],
		"sales": [],
		"category_colors": {},
		"settings": {"theme": "clam"}
	}`
	require.NoError(t, os.WriteFile(cfg.Persist.DataFile, []byte(raw), 0o644))

	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	settings := s.Settings()
	assert.Equal(t, "clam", settings.Theme)
	assert.Equal(t, "DELETE", settings.DangerConfirmPhrase)
	assert.Equal(t, "int", settings.PriceMode)
	assert.Equal(t, 2, settings.PriceDecimals)
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, atomicWrite(path, []byte(`{"a":1}`)))
	require.NoError(t, atomicWrite(path, []byte(`{"a":2}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBackup(t *testing.T) {
	cfg := testConfig(t, false)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.AddItem("SKU001", "Widget", 100, ""))

	dir := t.TempDir()
	dst, err := s.Backup(dir)
	require.NoError(t, err)

	src, err := os.ReadFile(cfg.Persist.DataFile)
	require.NoError(t, err)
	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, src, copied)
	assert.Contains(t, filepath.Base(dst), ".backup_")
}
