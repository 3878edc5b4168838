package testutil

import (
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/database"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
)

// SetupTestStore creates an in-memory SQLite document store for testing.
// The store is automatically closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    store := testutil.SetupTestStore(t)
//	    // store is ready to use with the documents table migrated
//	}
func SetupTestStore(t *testing.T) *docstore.SQLiteStore {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return docstore.NewSQLiteStore(db)
}

// InsertDocuments stores raw documents into a collection, failing the test on error.
//
// Example usage:
//
//	testutil.InsertDocuments(t, store, model.CollectionOutputSummary,
//	    docstore.Document{"unique_id": "p1", "asset_id": 1, "asset_name": "Solar A"},
//	)
func InsertDocuments(t *testing.T, store docstore.Store, collection string, docs ...docstore.Document) []string {
	t.Helper()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, err := store.Collection(collection).InsertOne(t.Context(), doc)
		if err != nil {
			t.Fatalf("Failed to insert into %s: %v", collection, err)
		}
		ids = append(ids, id)
	}
	return ids
}
