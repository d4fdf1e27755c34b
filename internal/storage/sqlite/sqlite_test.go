package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

func testSnapshot(t *testing.T, number, client string) *models.Snapshot {
	t.Helper()
	inv := models.NewInvoice()
	inv.SetBusinessInfo(models.Party{Name: "Acme Studio", Address: "1 Main St"})
	inv.SetClientInfo(models.Party{Name: client})
	if err := inv.SetInvoiceDetails(models.Details{
		Number:       number,
		Date:         models.Date{Year: 2025, Month: 2, Day: 3},
		TaxRate:      10,
		DiscountRate: 5,
		PaymentTerms: "Net 15",
	}); err != nil {
		t.Fatal(err)
	}
	if err := inv.AddItem("Item 1", 2, 100); err != nil {
		t.Fatal(err)
	}
	if err := inv.AddItem("Item 2", 1, 50); err != nil {
		t.Fatal(err)
	}
	snap, err := inv.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "invoicer-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("Save and Load round trip", func(t *testing.T) {
		snap := testSnapshot(t, "INV-100", "Globex")
		if _, err := store.Save(ctx, snap); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load(ctx, "INV-100")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, snap) {
			t.Errorf("Load() = %+v, want %+v", got, snap)
		}
	})

	t.Run("Save overwrites", func(t *testing.T) {
		if _, err := store.Save(ctx, testSnapshot(t, "INV-200", "Old")); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Save(ctx, testSnapshot(t, "INV-200", "New")); err != nil {
			t.Fatal(err)
		}
		got, err := store.Load(ctx, "INV-200")
		if err != nil {
			t.Fatal(err)
		}
		if got.ClientInfo.Name != "New" {
			t.Errorf("client = %q, want New", got.ClientInfo.Name)
		}
	})

	t.Run("Load missing returns NotFound", func(t *testing.T) {
		if _, err := store.Load(ctx, "missing"); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("Load corrupt document returns MalformedRecord", func(t *testing.T) {
		_, err := store.db.ExecContext(ctx,
			"INSERT INTO invoices (invoice_number, client_name, total, document, updated_at) VALUES (?, ?, ?, ?, ?)",
			"CORRUPT", "x", 0, "{oops", 0,
		)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.Load(ctx, "CORRUPT"); apperr.KindOf(err) != apperr.KindMalformedRecord {
			t.Errorf("expected MalformedRecord, got %v", err)
		}
		if err := store.Delete(ctx, "CORRUPT"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("ListKeys is sorted", func(t *testing.T) {
		for _, n := range []string{"B-2", "A-1", "C-3"} {
			if _, err := store.Save(ctx, testSnapshot(t, n, "Client")); err != nil {
				t.Fatal(err)
			}
		}
		keys, err := store.ListKeys(ctx)
		if err != nil {
			t.Fatalf("ListKeys failed: %v", err)
		}
		want := []string{"A-1", "B-2", "C-3", "INV-100", "INV-200"}
		if !reflect.DeepEqual(keys, want) {
			t.Errorf("ListKeys() = %v, want %v", keys, want)
		}
	})

	t.Run("Delete missing returns NotFound", func(t *testing.T) {
		if err := store.Delete(ctx, "missing"); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NotFound, got %v", err)
		}
	})
}
