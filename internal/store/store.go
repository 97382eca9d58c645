// Package store implements the JSON-persisted ledger store: the product and
// customer masters, the append-only inventory and sales ledgers, and the
// stock recomputation that keeps them consistent. The data file is the sole
// source of truth; every committed mutation is validated and written through
// atomically before it becomes visible to readers.
package store

import (
	"fmt"
	"sync"
	"time"

	"stockledger/config"
	"stockledger/internal/models"
	"stockledger/internal/util"

	"go.uber.org/zap"
)

// Store owns the single in-memory document and serializes all mutations.
// Published documents are never mutated in place: a mutation is applied to a
// clone, persisted, then swapped in, so readers always observe a consistent
// snapshot and a failed mutation leaves no trace.
type Store struct {
	mu  sync.RWMutex
	doc *models.Document

	path          string
	backupDir     string
	saveTimeout   time.Duration
	allowNegative bool

	logger *zap.Logger
	report LoadReport

	// suspended is set when a persist fails, so the in-memory state and the
	// file can never disagree. Cleared by a successful Flush.
	suspended bool
	closed    bool
}

// LoadReport describes what happened when the data file was opened.
type LoadReport struct {
	Created    bool
	Recomputed bool
	Mismatches []RecomputationMismatchError
}

// Open loads the data file at cfg.Persist.DataFile, or initializes an empty
// document if the file does not exist. The document is fully validated; a
// stock chain that disagrees with its stored snapshots is recomputed,
// logged, and persisted rather than rejected. The file is written on open so
// it exists from the first run.
func Open(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = util.GetLogger()
	}

	doc, created, err := loadDocument(cfg.Persist.DataFile)
	if err != nil {
		util.DocumentLoadsTotal.WithLabelValues("corrupt").Inc()
		return nil, err
	}

	if err := validateDocument(doc, false); err != nil {
		util.DocumentLoadsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("load %s: %w", cfg.Persist.DataFile, err)
	}

	s := &Store{
		path:          cfg.Persist.DataFile,
		backupDir:     cfg.Persist.BackupDir,
		saveTimeout:   cfg.Persist.SaveTimeout,
		allowNegative: cfg.Ledger.AllowNegativeStock,
		logger:        logger,
		report:        LoadReport{Created: created},
	}

	mismatches := checkChains(doc)
	if len(mismatches) > 0 {
		util.RecomputationMismatchesTotal.Add(float64(len(mismatches)))
		skus := make(map[string]bool)
		for i := range mismatches {
			mm := mismatches[i]
			logger.Warn("stock chain mismatch in data file, recomputing",
				zap.String("sku", mm.SKU),
				zap.String("event_id", mm.EventID),
				zap.Int("stored", mm.Stored),
				zap.Int("computed", mm.Computed))
			skus[mm.SKU] = true
		}
		for sku := range skus {
			replaySKU(doc, sku)
		}
		s.report.Recomputed = true
		s.report.Mismatches = mismatches
	}

	if err := s.persist(doc); err != nil {
		util.DocumentLoadsTotal.WithLabelValues("persist_failed").Inc()
		return nil, fmt.Errorf("save %s: %w", cfg.Persist.DataFile, err)
	}
	s.doc = doc

	switch {
	case created:
		util.DocumentLoadsTotal.WithLabelValues("created").Inc()
	case s.report.Recomputed:
		util.DocumentLoadsTotal.WithLabelValues("recovered").Inc()
	default:
		util.DocumentLoadsTotal.WithLabelValues("ok").Inc()
	}

	logger.Info("Ledger store opened",
		zap.String("path", cfg.Persist.DataFile),
		zap.Bool("created", created),
		zap.Int("items", len(doc.Items)),
		zap.Int("customers", len(doc.Customers)),
		zap.Int("movements", len(doc.InventoryHistory)),
		zap.Int("sales", len(doc.Sales)))

	return s, nil
}

// LoadReport returns what happened when the store was opened.
func (s *Store) LoadReport() LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Snapshot returns the current document. The returned document must be
// treated as read-only; it is replaced, never modified, by mutations.
func (s *Store) Snapshot() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Item returns the item for sku from the current snapshot.
func (s *Store) Item(sku string) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.doc.Items[sku]
	return it, ok
}

// Customer returns the customer for cid from the current snapshot.
func (s *Store) Customer(cid string) (models.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cu, ok := s.doc.Customers[cid]
	return cu, ok
}

// Close marks the store closed. All further operations fail with ErrClosed.
// Every committed mutation is already on disk, so there is nothing to flush.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Flush re-persists the current document and, on success, lifts the write
// suspension left behind by a failed persist.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.persist(s.doc); err != nil {
		return err
	}
	s.suspended = false
	return nil
}

// mutate runs a mutation as validate-apply-persist: fn is applied to a clone
// of the document, the clone is validated and persisted, and only then
// published. Any failure leaves both the in-memory document and the file
// untouched; a persistence failure additionally suspends further writes
// until Flush succeeds.
func (s *Store) mutate(op string, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.suspended {
		util.MutationsFailedTotal.WithLabelValues(op, failureReason(ErrWritesSuspended)).Inc()
		return ErrWritesSuspended
	}

	clone := s.doc.Clone()
	if err := fn(clone); err != nil {
		util.MutationsFailedTotal.WithLabelValues(op, failureReason(err)).Inc()
		return err
	}

	if err := validateDocument(clone, false); err != nil {
		util.MutationsFailedTotal.WithLabelValues(op, failureReason(err)).Inc()
		return err
	}

	if err := s.persist(clone); err != nil {
		s.suspended = true
		s.logger.Error("Persist failed, suspending writes until Flush",
			zap.String("op", op), zap.Error(err))
		util.MutationsFailedTotal.WithLabelValues(op, failureReason(err)).Inc()
		return err
	}

	s.doc = clone
	util.MutationsTotal.WithLabelValues(op).Inc()
	return nil
}
