package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"techhub/config"
	"techhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a config pointing to a temp file path
func createTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		DbFilePath:   filepath.Join(t.TempDir(), "data", "test_db.json"),
		EnableBackup: true,
	}
}

// Helper function to set up a test database instance
func setupTestDB(t *testing.T) (*Database, *config.Config) {
	cfg := createTestConfig(t)
	db, err := NewDatabase(cfg)
	require.NoError(t, err, "NewDatabase failed during setup")
	return db, cfg
}

// Helper to write content directly to the DB file
func writeTestDBFile(t *testing.T, cfg *config.Config, content string) {
	require.NoError(t, os.WriteFile(cfg.DbFilePath, []byte(content), 0644), "Failed to write test DB file")
}

// Helper to read content directly from the DB file
func readTestDBFile(t *testing.T, cfg *config.Config) string {
	data, err := os.ReadFile(cfg.DbFilePath)
	require.NoError(t, err, "Failed to read test DB file")
	return string(data)
}

// --- Initialize Tests ---

func TestDatabase_Initialize_CreatesFile(t *testing.T) {
	db, cfg := setupTestDB(t)

	_, err := os.Stat(cfg.DbFilePath)
	require.NoError(t, err, "database file should exist after NewDatabase")

	doc, err := db.ReadAll()
	require.NoError(t, err)
	for _, name := range models.Collections {
		assert.Contains(t, doc, name)
		assert.Empty(t, doc[name])
	}
}

func TestDatabase_Initialize_Idempotent(t *testing.T) {
	db, cfg := setupTestDB(t)
	_, err := db.Insert(models.CollectionUsers, models.Record{"name": "A"})
	require.NoError(t, err)

	require.NoError(t, db.Initialize())
	db2, err := NewDatabase(cfg)
	require.NoError(t, err)

	users, err := db2.List(models.CollectionUsers)
	require.NoError(t, err)
	assert.Len(t, users, 1, "existing data must survive re-initialisation")
}

// --- ReadAll / WriteAll Tests ---

func TestDatabase_ReadAll_Failures(t *testing.T) {
	t.Run("Corrupt JSON", func(t *testing.T) {
		db, cfg := setupTestDB(t)
		writeTestDBFile(t, cfg, `{"users": [`)

		doc, err := db.ReadAll()
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)

		_, err = db.FindByID(models.CollectionUsers, 1)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})

	t.Run("Missing file", func(t *testing.T) {
		db, cfg := setupTestDB(t)
		require.NoError(t, os.Remove(cfg.DbFilePath))

		_, err := db.ReadAll()
		assert.ErrorIs(t, err, models.ErrStoreUnavailable, "missing file is not an empty document")
	})

	t.Run("Null document", func(t *testing.T) {
		db, cfg := setupTestDB(t)
		writeTestDBFile(t, cfg, `null`)
		_, err := db.ReadAll()
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})
}

func TestDatabase_ReadAll_NormalizesMissingCollections(t *testing.T) {
	db, cfg := setupTestDB(t)
	writeTestDBFile(t, cfg, `{"users": [{"id": 1, "name": "A"}]}`)

	doc, err := db.ReadAll()
	require.NoError(t, err)
	assert.Len(t, doc[models.CollectionUsers], 1)
	assert.NotNil(t, doc[models.CollectionTutorials])
	assert.Empty(t, doc[models.CollectionTutorials])
}

func TestDatabase_WriteAll_RoundTrip(t *testing.T) {
	db, cfg := setupTestDB(t)
	writeTestDBFile(t, cfg, `{
  "users": [{"id": 1, "name": "A", "score": 1.50, "tags": ["x"], "nested": {"k": null}}],
  "tutorials": [], "mentorships": [], "internships": [], "applications": [], "progress": []
}`)

	before, err := db.ReadAll()
	require.NoError(t, err)
	require.NoError(t, db.WriteAll(before))
	after, err := db.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Numbers keep their literal form.
	assert.Contains(t, readTestDBFile(t, cfg), `"score": 1.50`)
}

func TestDatabase_WriteAll_Backup(t *testing.T) {
	db, cfg := setupTestDB(t)
	original := readTestDBFile(t, cfg)

	_, err := db.Insert(models.CollectionTutorials, models.Record{"title": "Go"})
	require.NoError(t, err)

	backup, err := os.ReadFile(cfg.DbFilePath + ".bak")
	require.NoError(t, err, "backup should be written when EnableBackup is set")
	assert.Equal(t, original, string(backup))

	_, err = os.Stat(cfg.DbFilePath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestDatabase_WriteAll_NoBackup(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.EnableBackup = false
	db, err := NewDatabase(cfg)
	require.NoError(t, err)

	_, err = db.Insert(models.CollectionTutorials, models.Record{"title": "Go"})
	require.NoError(t, err)
	_, err = os.Stat(cfg.DbFilePath + ".bak")
	assert.True(t, os.IsNotExist(err))
}

// --- Query Tests ---

func TestDatabase_List_MissingCollection(t *testing.T) {
	db, _ := setupTestDB(t)
	recs, err := db.List("no-such-collection")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestDatabase_FindByID_CanonicalIDs(t *testing.T) {
	db, cfg := setupTestDB(t)
	writeTestDBFile(t, cfg, `{"users": [{"id": 1, "name": "num"}, {"id": "abc", "name": "str"}]}`)

	rec, err := db.FindByID(models.CollectionUsers, "1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "num", rec["name"])

	rec, err = db.FindByID(models.CollectionUsers, 1)
	require.NoError(t, err)
	assert.NotNil(t, rec)

	rec, err = db.FindByID(models.CollectionUsers, "abc")
	require.NoError(t, err)
	assert.Equal(t, "str", rec["name"])

	rec, err = db.FindByID(models.CollectionUsers, 99)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = db.FindByID(models.CollectionUsers, nil)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDatabase_FindOneAndMany(t *testing.T) {
	db, _ := setupTestDB(t)
	for _, r := range []models.Record{
		{"name": "A", "role": "student", "isActive": true},
		{"name": "B", "role": "mentor", "isActive": true},
		{"name": "C", "role": "student", "isActive": false},
	} {
		_, err := db.Insert(models.CollectionUsers, r)
		require.NoError(t, err)
	}

	students, err := db.FindMany(models.CollectionUsers, Where("role", "student"))
	require.NoError(t, err)
	assert.Len(t, students, 2)

	active, err := db.FindMany(models.CollectionUsers, Where("role", "student").And("isActive", true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A", active[0]["name"])

	first, err := db.FindOne(models.CollectionUsers, Where("role", "mentor"))
	require.NoError(t, err)
	assert.Equal(t, "B", first["name"])

	none, err := db.FindOne(models.CollectionUsers, Where("role", "admin"))
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := db.FindMany(models.CollectionUsers, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := db.Count(models.CollectionUsers, Where("isActive", false))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// --- Mutation Tests ---

func TestDatabase_Insert_NextID(t *testing.T) {
	db, cfg := setupTestDB(t)
	writeTestDBFile(t, cfg, `{"users": [{"id": 1}, {"id": 3}]}`)

	rec, err := db.Insert(models.CollectionUsers, models.Record{"name": "new"})
	require.NoError(t, err)
	assert.Equal(t, "4", rec.ID())
	assert.NotEmpty(t, rec[models.FieldCreatedAt])
	assert.NotEmpty(t, rec[models.FieldUpdatedAt])

	t.Run("Empty collection starts at 1", func(t *testing.T) {
		rec, err := db.Insert(models.CollectionTutorials, models.Record{"title": "Go"})
		require.NoError(t, err)
		assert.Equal(t, "1", rec.ID())
	})

	t.Run("Non-numeric ids count as 0", func(t *testing.T) {
		writeTestDBFile(t, cfg, `{"progress": [{"id": "abc"}, {"id": "2"}]}`)
		rec, err := db.Insert(models.CollectionProgress, models.Record{})
		require.NoError(t, err)
		assert.Equal(t, "3", rec.ID())
	})

	t.Run("Explicit id and timestamps are kept", func(t *testing.T) {
		rec, err := db.Insert(models.CollectionMentorships, models.Record{"id": "m-1", "createdAt": "2020-01-01T00:00:00.000Z"})
		require.NoError(t, err)
		assert.Equal(t, "m-1", rec.ID())
		assert.Equal(t, "2020-01-01T00:00:00.000Z", rec["createdAt"])
	})
}

func TestDatabase_Insert_DoesNotAliasInput(t *testing.T) {
	db, _ := setupTestDB(t)
	in := models.Record{"name": "A"}
	_, err := db.Insert(models.CollectionUsers, in)
	require.NoError(t, err)
	assert.NotContains(t, in, "id", "caller's record must not be mutated")
}

func TestDatabase_Update(t *testing.T) {
	db, _ := setupTestDB(t)
	rec, err := db.Insert(models.CollectionUsers, models.Record{"name": "A", "bio": "old"})
	require.NoError(t, err)

	patch := models.Record{"bio": "new", "id": 999}
	first, found, err := db.Update(models.CollectionUsers, rec.ID(), patch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new", first["bio"])
	assert.Equal(t, "A", first["name"], "fields absent from the patch are kept")
	assert.Equal(t, rec.ID(), first.ID(), "id in the patch is ignored")

	second, found, err := db.Update(models.CollectionUsers, rec.ID(), patch)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first, second, "update is idempotent")

	stored, err := db.FindByID(models.CollectionUsers, rec.ID())
	require.NoError(t, err)
	b1, _ := json.Marshal(stored)
	b2, _ := json.Marshal(second)
	assert.JSONEq(t, string(b1), string(b2))

	missing, found, err := db.Update(models.CollectionUsers, 42, patch)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, missing)
}

func TestDatabase_Delete(t *testing.T) {
	db, cfg := setupTestDB(t)
	rec, err := db.Insert(models.CollectionUsers, models.Record{"name": "A"})
	require.NoError(t, err)

	removed, err := db.Delete(models.CollectionUsers, rec.ID())
	require.NoError(t, err)
	assert.True(t, removed)

	found, err := db.FindByID(models.CollectionUsers, rec.ID())
	require.NoError(t, err)
	assert.Nil(t, found, "deleted record must not be found")

	before := readTestDBFile(t, cfg)
	removed, err = db.Delete(models.CollectionUsers, rec.ID())
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, before, readTestDBFile(t, cfg), "file untouched when nothing was removed")
}

func TestDatabase_Close(t *testing.T) {
	db, _ := setupTestDB(t)
	require.NoError(t, db.Close())

	_, err := db.ReadAll()
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	_, err = db.Insert(models.CollectionUsers, models.Record{"name": "A"})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, db.WriteAll(models.NewDocument()), models.ErrStoreUnavailable)
}

func TestDatabase_ConcurrentInserts(t *testing.T) {
	db, _ := setupTestDB(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.Insert(models.CollectionApplications, models.Record{"status": "pending"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := db.List(models.CollectionApplications)
	require.NoError(t, err)
	assert.Len(t, recs, n, "no insert may be lost")

	ids := map[string]bool{}
	for _, r := range recs {
		ids[r.ID()] = true
	}
	assert.Len(t, ids, n, "ids must be unique")
}
