package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stockledger/internal/models"
	"stockledger/internal/util"
)

// loadDocument reads and decodes the data file. A missing file yields the
// default empty document (created=true). The on-disk shape is untrusted:
// decoding starts from the default document so absent settings keys keep
// their documented defaults, and any type mismatch fails as ErrCorruptFile.
func loadDocument(path string) (doc *models.Document, created bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultDocument(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	doc = models.DefaultDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptFile, path, err)
	}
	if doc.Items == nil {
		doc.Items = map[string]models.Item{}
	}
	if doc.Customers == nil {
		doc.Customers = map[string]models.Customer{}
	}
	if doc.InventoryHistory == nil {
		doc.InventoryHistory = []models.InventoryEvent{}
	}
	if doc.Sales == nil {
		doc.Sales = []models.SaleEvent{}
	}
	if doc.CategoryColors == nil {
		doc.CategoryColors = map[string]string{}
	}
	return doc, false, nil
}

// persist writes the document to the data file atomically, bounded by the
// configured save timeout. On timeout the write may still complete in the
// background, but the mutation that requested it is reported as failed and
// is not published.
func (s *Store) persist(doc *models.Document) error {
	start := time.Now()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		util.SaveFailuresTotal.WithLabelValues("marshal").Inc()
		return fmt.Errorf("marshal document: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- atomicWrite(s.path, data)
	}()

	select {
	case err := <-done:
		if err != nil {
			util.SaveFailuresTotal.WithLabelValues("io").Inc()
			return err
		}
	case <-time.After(s.saveTimeout):
		util.SaveFailuresTotal.WithLabelValues("timeout").Inc()
		return fmt.Errorf("%w: save exceeded %s", ErrPersistenceTimeout, s.saveTimeout)
	}

	util.SaveLatency.Observe(time.Since(start).Seconds())
	return nil
}

// atomicWrite writes data to a temporary file in the target directory, syncs
// it, then renames it over path. A crash mid-write never leaves a truncated
// data file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

// Backup copies the data file into dir (or the configured backup directory,
// or the data file's own directory) with a timestamped name, and returns the
// path of the copy.
func (s *Store) Backup(dir string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrClosed
	}
	if dir == "" {
		dir = s.backupDir
	}
	if dir == "" {
		dir = filepath.Dir(s.path)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s.backup_%s", filepath.Base(s.path), time.Now().Format("20060102_150405"))
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}
