package migrations

import (
	"path/filepath"
	"testing"

	"github.com/Simplici0/precifica/internal/db"
)

func TestUp_CreatesSchemaAndIsRepeatable(t *testing.T) {
	t.Parallel()

	database, err := db.Open(filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database, "../../migrations"); err != nil {
			t.Fatalf("run migrations (iteration=%d): %v", i, err)
		}
	}

	for _, table := range []string{
		"general_config",
		"sales_channels",
		"category_configs",
		"recurring_costs",
		"labor_entries",
		"catalog_products",
		"sale_batches",
		"sale_line_items",
	} {
		var count int
		if err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	var columns int
	if err := database.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('general_config') WHERE name = 'fixed_cost_pct'`).Scan(&columns); err != nil {
		t.Fatalf("query general_config columns: %v", err)
	}
	if columns != 0 {
		t.Fatalf("fixed cost percentage must be derived, not stored")
	}
}
