package migration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunMigrations(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))
	// Running twice must be a no-op.
	require.NoError(t, RunMigrations(db))

	for _, table := range []string{"tax_settings", "invoices", "invoice_tax_lines", "invoice_sequences"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRunMigrations_NilDB(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
