package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/precifica/internal/db"
	"github.com/Simplici0/precifica/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 3 {
				t.Fatalf("expected 3 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM general_config WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM sales_channels WHERE name = ? AND kind = ?`, []any{"Direct", "direct"}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM sales_channels WHERE name = ? AND kind = ?`, []any{"Marketplace", "marketplace"}, 1)
}

func TestRunKeepsOperatorChanges(t *testing.T) {
	t.Parallel()

	database, err := db.Open(filepath.Join(t.TempDir(), "seed-keep.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	ctx := context.Background()
	if _, err := Run(ctx, database); err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE general_config SET tax_rate_pct = 6 WHERE id = 1`); err != nil {
		t.Fatalf("update general config: %v", err)
	}
	if _, err := database.Exec(`UPDATE sales_channels SET active = 0 WHERE name = 'Marketplace'`); err != nil {
		t.Fatalf("deactivate channel: %v", err)
	}
	if _, err := database.Exec(`UPDATE sales_channels SET name = 'Counter' WHERE name = 'Direct'`); err != nil {
		t.Fatalf("rename channel: %v", err)
	}

	stats, err := Run(ctx, database)
	if err != nil {
		t.Fatalf("run seed again: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected 0 inserts after operator changes, got %d", stats.Inserts)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM general_config WHERE tax_rate_pct = ?`, 6, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM sales_channels WHERE active = ?`, 0, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM sales_channels`, nil, 2)
	assertCount(t, database, `SELECT COUNT(*) FROM sales_channels WHERE kind = ?`, "direct", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM sales_channels WHERE name = ?`, "Direct", 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
