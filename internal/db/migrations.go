package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/eldos/workmarket/internal/config"
	"github.com/eldos/workmarket/internal/schema"
)

// runMigrations derives the DDL for each registered kind and executes the
// statements in registry order, so referenced tables exist before the tables
// that point at them. REFERENCES clauses document the relationships; the
// resource mapper enforces them at write time.
func runMigrations(db *gorm.DB, registry *schema.Registry, driver string) error {
	for i, kind := range registry.Kinds() {
		stmt := createTableStatement(kind, registry, driver)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, kind.Table, err)
		}
	}
	return nil
}

func createTableStatement(kind schema.Kind, registry *schema.Registry, driver string) string {
	columns := make([]string, 0, len(kind.Fields))
	for _, f := range kind.Fields {
		columns = append(columns, columnDefinition(f, registry, driver))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %q (\n\t%s\n)",
		kind.Table,
		strings.Join(columns, ",\n\t"),
	)
}

func columnDefinition(f schema.Field, registry *schema.Registry, driver string) string {
	if f.PrimaryKey {
		if driver == config.DriverPostgres {
			return fmt.Sprintf("%q BIGSERIAL PRIMARY KEY", f.Name)
		}
		return fmt.Sprintf("%q INTEGER PRIMARY KEY AUTOINCREMENT", f.Name)
	}

	def := fmt.Sprintf("%q %s", f.Name, columnType(f.Type))
	if f.References != "" {
		if ref, err := registry.Resolve(f.References); err == nil {
			def += fmt.Sprintf(" REFERENCES %q(id)", ref.Table)
		}
	}
	return def
}

func columnType(t schema.FieldType) string {
	switch t {
	case schema.FieldInteger:
		return "BIGINT"
	case schema.FieldDate:
		// Dates are bound as YYYY-MM-DD text by the store.
		return "DATE"
	default:
		return "TEXT"
	}
}
