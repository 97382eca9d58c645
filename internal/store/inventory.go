package store

import (
	"fmt"
	"sort"
	"time"

	"stockledger/internal/idgen"
	"stockledger/internal/models"
	"stockledger/internal/util"
)

// orderedActiveMovements returns the indexes of the non-deleted movements
// for sku, ordered by timestamp with insertion order as tiebreak.
func orderedActiveMovements(doc *models.Document, sku string) []int {
	var idx []int
	for i := range doc.InventoryHistory {
		ev := &doc.InventoryHistory[i]
		if ev.SKU == sku && !ev.Deleted {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return doc.InventoryHistory[idx[a]].TS.Before(doc.InventoryHistory[idx[b]].TS.Time)
	})
	return idx
}

// replaySKU recomputes the whole stock chain for one item: a fold over the
// ordered, non-deleted movements from baseline 0, rewriting every
// stock_after and the item's current stock. Always a full replay, never an
// incremental patch, because editing an arbitrary historical movement shifts
// every later snapshot. Returns the lowest running total seen, which callers
// use to enforce the negative-stock policy.
func replaySKU(doc *models.Document, sku string) (minRunning int) {
	util.RecomputationsTotal.Inc()
	running := 0
	for _, i := range orderedActiveMovements(doc, sku) {
		running += doc.InventoryHistory[i].SignedQty()
		doc.InventoryHistory[i].StockAfter = running
		if running < minRunning {
			minRunning = running
		}
	}
	it := doc.Items[sku]
	it.Stock = running
	doc.Items[sku] = it
	return minRunning
}

// MovementLine is one line of a batch movement.
type MovementLine struct {
	SKU  string
	Qty  int
	Note string
}

// RecordMovement appends an IN or OUT movement for sku and replays the
// item's stock chain. This is the only path that changes item stock; sales
// never do. A zero ts records the movement at the current time.
func (s *Store) RecordMovement(sku, action string, qty int, ts models.Timestamp, note string) (models.InventoryEvent, error) {
	var out models.InventoryEvent
	err := s.mutate("record_movement", func(doc *models.Document) error {
		ev, err := appendMovement(doc, sku, action, qty, ts, note)
		if err != nil {
			return err
		}
		if min := replaySKU(doc, sku); min < 0 && !s.allowNegative {
			return fmt.Errorf("item %s: %w", sku, ErrNegativeStock)
		}
		out = findMovement(doc, ev.ID)
		return nil
	})
	return out, err
}

// RecordMovements appends one movement per line with a shared action and
// timestamp. All lines are applied and persisted together or not at all.
func (s *Store) RecordMovements(action string, lines []MovementLine, ts models.Timestamp) ([]models.InventoryEvent, error) {
	var out []models.InventoryEvent
	err := s.mutate("record_movements", func(doc *models.Document) error {
		ids := make([]string, 0, len(lines))
		skus := make(map[string]bool)
		for _, ln := range lines {
			ev, err := appendMovement(doc, ln.SKU, action, ln.Qty, ts, ln.Note)
			if err != nil {
				return err
			}
			ids = append(ids, ev.ID)
			skus[ln.SKU] = true
		}
		for sku := range skus {
			if min := replaySKU(doc, sku); min < 0 && !s.allowNegative {
				return fmt.Errorf("item %s: %w", sku, ErrNegativeStock)
			}
		}
		out = make([]models.InventoryEvent, 0, len(ids))
		for _, id := range ids {
			out = append(out, findMovement(doc, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendMovement(doc *models.Document, sku, action string, qty int, ts models.Timestamp, note string) (models.InventoryEvent, error) {
	if action != models.ActionIn && action != models.ActionOut {
		return models.InventoryEvent{}, &ValidationError{
			Collection: "inventory_history", Field: "action", Reason: fmt.Sprintf("unknown action %q", action),
		}
	}
	if qty <= 0 {
		return models.InventoryEvent{}, fmt.Errorf("qty %d: %w", qty, ErrInvalidQty)
	}
	it, ok := doc.Items[sku]
	if !ok {
		return models.InventoryEvent{}, fmt.Errorf("item %s: %w", sku, ErrNotFound)
	}
	if it.Disabled {
		return models.InventoryEvent{}, &ValidationError{
			Collection: "items", Key: sku, Field: "disabled", Reason: "item is disabled",
		}
	}
	if ts.IsZero() {
		ts = models.Now()
	}
	// serialized precision, so replay order is identical after a reload
	ts = models.NewTimestamp(ts.Truncate(time.Second))

	ev := models.InventoryEvent{
		ID:     idgen.New(models.PrefixInventory),
		TS:     ts,
		Action: action,
		SKU:    sku,
		Qty:    qty,
		Note:   note,
	}
	for i := range doc.InventoryHistory {
		if doc.InventoryHistory[i].ID == ev.ID {
			return models.InventoryEvent{}, fmt.Errorf("movement %s: %w", ev.ID, ErrDuplicateID)
		}
	}
	doc.InventoryHistory = append(doc.InventoryHistory, ev)

	it.UpdatedAt = models.Now()
	doc.Items[sku] = it
	return ev, nil
}

func findMovement(doc *models.Document, id string) models.InventoryEvent {
	for i := range doc.InventoryHistory {
		if doc.InventoryHistory[i].ID == id {
			return doc.InventoryHistory[i]
		}
	}
	return models.InventoryEvent{}
}

// SetMovementDeleted toggles the logical-delete flag of a movement and
// replays the full stock chain of its item. Restoring clears the deletion
// metadata, so a delete/restore round trip reproduces the original chain
// exactly.
func (s *Store) SetMovementDeleted(id string, deleted bool, reason string) error {
	return s.mutate("set_movement_deleted", func(doc *models.Document) error {
		ev := movementByID(doc, id)
		if ev == nil {
			return fmt.Errorf("movement %s: %w", id, ErrNotFound)
		}
		ev.Deleted = deleted
		if deleted {
			now := models.Now()
			ev.DeletedAt = &now
			ev.DeletedReason = reason
		} else {
			ev.DeletedAt = nil
			ev.DeletedReason = ""
		}
		if min := replaySKU(doc, ev.SKU); min < 0 && !s.allowNegative {
			return fmt.Errorf("item %s: %w", ev.SKU, ErrNegativeStock)
		}
		return nil
	})
}

// RestoreMovement clears the logical-delete flag of a movement.
func (s *Store) RestoreMovement(id string) error {
	return s.SetMovementDeleted(id, false, "")
}

// PurgeMovement physically removes a movement. The confirmation must match
// the document's danger confirm phrase; the presentation layer owns any
// dialog, the store only enforces the token.
func (s *Store) PurgeMovement(id, confirmation string) error {
	return s.mutate("purge_movement", func(doc *models.Document) error {
		if confirmation != doc.Settings.DangerConfirmPhrase {
			return ErrConfirmationRequired
		}
		for i := range doc.InventoryHistory {
			if doc.InventoryHistory[i].ID != id {
				continue
			}
			sku := doc.InventoryHistory[i].SKU
			doc.InventoryHistory = append(doc.InventoryHistory[:i], doc.InventoryHistory[i+1:]...)
			if min := replaySKU(doc, sku); min < 0 && !s.allowNegative {
				return fmt.Errorf("item %s: %w", sku, ErrNegativeStock)
			}
			return nil
		}
		return fmt.Errorf("movement %s: %w", id, ErrNotFound)
	})
}

// PurgeDeletedMovements physically removes every soft-deleted movement and
// returns how many were removed. Deleted rows are already excluded from the
// chains, so no replay is needed.
func (s *Store) PurgeDeletedMovements(confirmation string) (int, error) {
	removed := 0
	err := s.mutate("purge_deleted_movements", func(doc *models.Document) error {
		if confirmation != doc.Settings.DangerConfirmPhrase {
			return ErrConfirmationRequired
		}
		kept := doc.InventoryHistory[:0:0]
		for i := range doc.InventoryHistory {
			if doc.InventoryHistory[i].Deleted {
				removed++
				continue
			}
			kept = append(kept, doc.InventoryHistory[i])
		}
		doc.InventoryHistory = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func movementByID(doc *models.Document, id string) *models.InventoryEvent {
	for i := range doc.InventoryHistory {
		if doc.InventoryHistory[i].ID == id {
			return &doc.InventoryHistory[i]
		}
	}
	return nil
}
