package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("boom")))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKeyErr(errors.New(`ERROR: duplicate key value violates unique constraint "ux_tax_settings_code"`)))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.True(t, IsDuplicateKeyErr(errors.New("constraint failed: UNIQUE constraint failed: tax_settings.code (2067)")))
}

func TestDialect(t *testing.T) {
	for _, kind := range []string{"", "sqlite", "postgres", "mysql", "MySQL"} {
		d, err := Dialect(Config{Type: kind, Path: "test.db"})
		assert.NoError(t, err, kind)
		assert.NotNil(t, d, kind)
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
