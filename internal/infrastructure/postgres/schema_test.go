package postgres_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repositories and the migration form one contract: columns the
// repositories write with nullIfEmpty must be nullable, and the constraints
// the store-boundary error mapping translates must actually exist. These
// checks parse the migration so a schema edit cannot silently drift from the
// repository code without a database in the loop.

func loadSchema(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "00001_init.sql"))
	require.NoError(t, err)
	return string(data)
}

// tableDef extracts the CREATE TABLE body for one table.
func tableDef(t *testing.T, schema, table string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE ` + table + ` \((.*?)\n\);`)
	m := re.FindStringSubmatch(schema)
	require.NotNil(t, m, "migration must create table %s", table)
	return m[1]
}

// columnDef extracts a single column line from a table body.
func columnDef(t *testing.T, def, column string) string {
	t.Helper()
	for _, line := range strings.Split(def, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), column+" ") {
			return line
		}
	}
	t.Fatalf("column %s not found in table definition", column)
	return ""
}

func TestSchema_NullableColumnsMatchRepositories(t *testing.T) {
	schema := loadSchema(t)

	// Inserted as NULL until rendering succeeds.
	assert.NotContains(t, columnDef(t, tableDef(t, schema, "invoices"), "pdf_path"), "NOT NULL")

	// Actor and category references are written with nullIfEmpty and must
	// survive the ON DELETE SET NULL referential action.
	for _, tbl := range []string{"products", "stock_movements", "invoices"} {
		line := columnDef(t, tableDef(t, schema, tbl), "created_by")
		assert.NotContains(t, line, "NOT NULL", "%s.created_by must be nullable", tbl)
		assert.Contains(t, line, "ON DELETE SET NULL")
	}
	category := columnDef(t, tableDef(t, schema, "products"), "category_id")
	assert.NotContains(t, category, "NOT NULL")
	assert.Contains(t, category, "ON DELETE SET NULL")
}

func TestSchema_ConstraintsBackErrorMapping(t *testing.T) {
	schema := loadSchema(t)

	// Unique violations the repositories map to domain errors.
	assert.Contains(t, columnDef(t, tableDef(t, schema, "products"), "sku"), "UNIQUE")
	assert.Contains(t, columnDef(t, tableDef(t, schema, "invoices"), "number"), "UNIQUE")
	assert.Contains(t, columnDef(t, tableDef(t, schema, "users"), "username"), "UNIQUE")

	// Quantity checks behind ErrInvalidQuantity / the non-negative invariant.
	assert.Contains(t, columnDef(t, tableDef(t, schema, "products"), "quantity"), "CHECK (quantity >= 0)")
	assert.Contains(t, columnDef(t, tableDef(t, schema, "stock_movements"), "quantity"), "CHECK (quantity >= 1)")
	assert.Contains(t, columnDef(t, tableDef(t, schema, "invoice_items"), "quantity"), "CHECK (quantity >= 1)")

	// Referential actions: history follows its product, items pin theirs.
	assert.Contains(t, columnDef(t, tableDef(t, schema, "stock_movements"), "product_id"), "ON DELETE CASCADE")
	assert.Contains(t, columnDef(t, tableDef(t, schema, "invoice_items"), "invoice_id"), "ON DELETE CASCADE")
	assert.Contains(t, columnDef(t, tableDef(t, schema, "invoice_items"), "product_id"), "ON DELETE RESTRICT")
}
