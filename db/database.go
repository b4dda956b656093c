package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"techhub/config"
	"techhub/logger"
	"techhub/models"
)

// Database is the record store: one JSON document on disk holding every collection.
// There is no in-memory cache; every call reads the file and every mutation rewrites it.
// Mutations run under the write lock so concurrent requests cannot lose updates.
type Database struct {
	filePath     string
	enableBackup bool

	mu     sync.RWMutex
	closed bool
}

// NewDatabase creates the store for cfg.DbFilePath and initialises the file if needed.
func NewDatabase(cfg *config.Config) (*Database, error) {
	db := &Database{
		filePath:     cfg.DbFilePath,
		enableBackup: cfg.EnableBackup,
	}

	logger.Log.Infof("Initializing database with file: %s", db.filePath)
	if err := db.Initialize(); err != nil {
		return nil, err
	}
	return db, nil
}

// Path returns the backing file path.
func (db *Database) Path() string {
	return db.filePath
}

// Initialize ensures the containing directory and the file exist. A missing file is
// created with every known collection empty. Safe to call on every start.
func (db *Database) Initialize() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(db.filePath), 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %v", models.ErrStoreUnavailable, err)
	}

	_, err := os.Stat(db.filePath)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("%w: stat database file: %v", models.ErrStoreUnavailable, err)
	}

	if err := db.persist(models.NewDocument()); err != nil {
		return err
	}
	logger.Log.Infof("Database initialized at %s", db.filePath)
	return nil
}

// Close marks the store closed. Later calls fail with ErrStoreUnavailable.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	logger.Log.Debug("Database closed")
	return nil
}

// ReadAll returns the full document. A missing, unreadable or corrupt file is
// ErrStoreUnavailable, never an empty document.
func (db *Database) ReadAll() (models.Document, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.load()
}

// WriteAll replaces the whole file with doc.
func (db *Database) WriteAll(doc models.Document) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return fmt.Errorf("%w: database is closed", models.ErrStoreUnavailable)
	}
	return db.persist(doc)
}

// load reads and parses the file. Callers hold db.mu.
func (db *Database) load() (models.Document, error) {
	if db.closed {
		return nil, fmt.Errorf("%w: database is closed", models.ErrStoreUnavailable)
	}

	fileData, err := os.ReadFile(db.filePath)
	if err != nil {
		logger.Log.Errorf("Failed to read database file '%s': %v", db.filePath, err)
		return nil, fmt.Errorf("%w: read database file: %v", models.ErrStoreUnavailable, err)
	}

	// UseNumber keeps ids and other numbers byte-stable across a read/write cycle.
	dec := json.NewDecoder(bytes.NewReader(fileData))
	dec.UseNumber()
	var doc models.Document
	if err := dec.Decode(&doc); err != nil {
		logger.Log.Errorf("Failed to parse JSON data from database file '%s': %v", db.filePath, err)
		return nil, fmt.Errorf("%w: parse database file: %v", models.ErrStoreUnavailable, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: database file holds null", models.ErrStoreUnavailable)
	}
	doc.Normalize()
	return doc, nil
}

// persist writes doc atomically: temp file, optional .bak of the old file, rename.
// Callers hold the write lock.
func (db *Database) persist(doc models.Document) error {
	if doc == nil {
		doc = models.NewDocument()
	}
	doc.Normalize()

	// Text such as "C++ & <html>" is stored as written, not as \u0026 / \u003c escapes.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		logger.Log.Errorf("Failed to marshal database state to JSON: %v", err)
		return fmt.Errorf("%w: marshal document: %v", models.ErrStoreUnavailable, err)
	}
	jsonData := buf.Bytes()

	tempFilePath := db.filePath + ".tmp"
	backupFilePath := db.filePath + ".bak"

	if err := os.WriteFile(tempFilePath, jsonData, 0o644); err != nil {
		logger.Log.Errorf("Failed to write to temporary database file '%s': %v", tempFilePath, err)
		return fmt.Errorf("%w: write temp file: %v", models.ErrStoreUnavailable, err)
	}

	if db.enableBackup {
		if current, err := os.ReadFile(db.filePath); err == nil {
			if err := os.WriteFile(backupFilePath, current, 0o644); err != nil {
				logger.Log.Warnf("Failed to write backup '%s': %v. Proceeding with save.", backupFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			logger.Log.Warnf("Error reading database file '%s' before backup: %v", db.filePath, err)
		}
	}

	if err := os.Rename(tempFilePath, db.filePath); err != nil {
		logger.Log.Errorf("Failed to rename temporary file '%s' to '%s': %v", tempFilePath, db.filePath, err)
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("%w: replace database file: %v", models.ErrStoreUnavailable, err)
	}

	logger.Log.Debugf("Saved database state to %s", db.filePath)
	return nil
}

// mutate runs fn against a freshly loaded document under the write lock and
// persists the result when fn reports a change.
func (db *Database) mutate(fn func(doc models.Document) (changed bool, err error)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	doc, err := db.load()
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return db.persist(doc)
}

// --- Queries ---

// List returns the records of a collection, or an empty slice if it is absent.
func (db *Database) List(collection string) ([]models.Record, error) {
	doc, err := db.ReadAll()
	if err != nil {
		return nil, err
	}
	recs := doc[collection]
	if recs == nil {
		return []models.Record{}, nil
	}
	return recs, nil
}

// FindByID returns the record with the given id, or nil when there is none.
func (db *Database) FindByID(collection string, id any) (models.Record, error) {
	recs, err := db.List(collection)
	if err != nil {
		return nil, err
	}
	want := models.IDString(id)
	if want == "" {
		return nil, nil
	}
	for _, rec := range recs {
		if rec.ID() == want {
			return rec, nil
		}
	}
	return nil, nil
}

// FindOne returns the first record matching q, or nil.
func (db *Database) FindOne(collection string, q Query) (models.Record, error) {
	recs, err := db.List(collection)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if q.Match(rec) {
			return rec, nil
		}
	}
	return nil, nil
}

// FindMany returns every record matching q (all records for an empty query).
func (db *Database) FindMany(collection string, q Query) ([]models.Record, error) {
	recs, err := db.List(collection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		if q.Match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count returns the number of records matching q.
func (db *Database) Count(collection string, q Query) (int, error) {
	recs, err := db.FindMany(collection, q)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// --- Mutations ---

// Insert appends record to collection and returns the stored copy. When the record
// has no id it gets max(existing ids, 0)+1. createdAt / updatedAt are stamped if absent.
func (db *Database) Insert(collection string, record models.Record) (models.Record, error) {
	if collection == "" {
		return nil, errors.New("insert: collection name is required")
	}
	var stored models.Record
	if err := db.Transact(func(tx *Tx) error {
		stored = tx.Insert(collection, record)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Log.Infof("Created %s record ID: %s", collection, stored.ID())
	return stored, nil
}

// InsertUnique inserts record only when no record of collection matches q. The check
// and the insert happen under one write lock. It reports whether record was inserted;
// when it was not, the returned record is the existing match.
func (db *Database) InsertUnique(collection string, q Query, record models.Record) (models.Record, bool, error) {
	if collection == "" {
		return nil, false, errors.New("insert: collection name is required")
	}
	var (
		result   models.Record
		inserted bool
	)
	if err := db.Transact(func(tx *Tx) error {
		if existing := tx.FindOne(collection, q); existing != nil {
			result = existing
			return nil
		}
		result, inserted = tx.Insert(collection, record), true
		return nil
	}); err != nil {
		return nil, false, err
	}

	if inserted {
		logger.Log.Infof("Created %s record ID: %s", collection, result.ID())
	}
	return result, inserted, nil
}

// nextID is max(numeric ids)+1, 1 for an empty collection.
func nextID(recs []models.Record) int64 {
	var maxID float64
	for _, rec := range recs {
		if n := models.IDNumber(rec[models.FieldID]); n > maxID {
			maxID = n
		}
	}
	return int64(maxID) + 1
}

// Update shallow-merges patch into the record with the given id and reports whether
// the record existed. The id itself cannot be patched.
func (db *Database) Update(collection string, id any, patch models.Record) (models.Record, bool, error) {
	var (
		updated models.Record
		found   bool
	)
	if err := db.Transact(func(tx *Tx) error {
		updated, found = tx.Update(collection, id, patch)
		return nil
	}); err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	logger.Log.Infof("Updated %s record ID: %s", collection, models.IDString(id))
	return updated, true, nil
}

// Delete removes the first record with the given id and reports whether one was removed.
// The file is only rewritten when something was removed.
func (db *Database) Delete(collection string, id any) (bool, error) {
	removed := false
	if err := db.Transact(func(tx *Tx) error {
		removed = tx.Delete(collection, id)
		return nil
	}); err != nil {
		return false, err
	}
	if removed {
		logger.Log.Infof("Deleted %s record ID: %s", collection, models.IDString(id))
	}
	return removed, nil
}
