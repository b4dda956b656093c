package db

import (
	"techhub/models"
)

// Tx is the document as seen inside one Transact call. Reads see the writes made
// earlier in the same transaction. Records handed out are copies.
type Tx struct {
	doc     models.Document
	changed bool
}

// FindByID returns the record with the given id, or nil.
func (tx *Tx) FindByID(collection string, id any) models.Record {
	if i := tx.indexOf(collection, id); i >= 0 {
		return tx.doc[collection][i].Clone()
	}
	return nil
}

// FindOne returns the first record matching q, or nil.
func (tx *Tx) FindOne(collection string, q Query) models.Record {
	for _, rec := range tx.doc[collection] {
		if q.Match(rec) {
			return rec.Clone()
		}
	}
	return nil
}

// Insert appends record with an id and timestamps as Database.Insert does and
// returns the stored copy.
func (tx *Tx) Insert(collection string, record models.Record) models.Record {
	stored := record.Clone()
	recs := tx.doc[collection]
	if models.IDString(stored[models.FieldID]) == "" {
		stored[models.FieldID] = nextID(recs)
	}
	now := models.Now()
	if _, ok := stored[models.FieldCreatedAt]; !ok {
		stored[models.FieldCreatedAt] = now
	}
	if _, ok := stored[models.FieldUpdatedAt]; !ok {
		stored[models.FieldUpdatedAt] = now
	}
	tx.doc[collection] = append(recs, stored)
	tx.changed = true
	return stored.Clone()
}

// Update shallow-merges patch into the record with the given id. The id itself
// is never patched.
func (tx *Tx) Update(collection string, id any, patch models.Record) (models.Record, bool) {
	i := tx.indexOf(collection, id)
	if i < 0 {
		return nil, false
	}
	merged := tx.doc[collection][i].Clone()
	for k, v := range patch {
		if k == models.FieldID {
			continue
		}
		merged[k] = v
	}
	tx.doc[collection][i] = merged
	tx.changed = true
	return merged.Clone(), true
}

// Delete removes the first record with the given id.
func (tx *Tx) Delete(collection string, id any) bool {
	i := tx.indexOf(collection, id)
	if i < 0 {
		return false
	}
	recs := tx.doc[collection]
	tx.doc[collection] = append(recs[:i:i], recs[i+1:]...)
	tx.changed = true
	return true
}

func (tx *Tx) indexOf(collection string, id any) int {
	want := models.IDString(id)
	if want == "" {
		return -1
	}
	for i, rec := range tx.doc[collection] {
		if rec.ID() == want {
			return i
		}
	}
	return -1
}

// Transact runs fn against a freshly loaded document under the write lock. The
// document is persisted once when fn returns nil and changed something; an error
// from fn discards every change.
func (db *Database) Transact(fn func(tx *Tx) error) error {
	return db.mutate(func(doc models.Document) (bool, error) {
		tx := &Tx{doc: doc}
		if err := fn(tx); err != nil {
			return false, err
		}
		return tx.changed, nil
	})
}
