package postgres

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstraintViolationHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
		check      bool
	}{
		{name: "gorm duplicated key", err: errors.Wrap(gorm.ErrDuplicatedKey, "insert"), unique: true},
		{name: "postgres unique", err: errors.New(`ERROR: duplicate key value violates unique constraint "idx_report_links_token_hash" (SQLSTATE 23505)`), unique: true},
		{name: "sqlite unique", err: errors.New("UNIQUE constraint failed: report_links.token_hash"), unique: true},
		{name: "gorm foreign key", err: gorm.ErrForeignKeyViolated, foreignKey: true},
		{name: "postgres foreign key", err: errors.New("ERROR: insert or update on table violates foreign key constraint (SQLSTATE 23503)"), foreignKey: true},
		{name: "gorm check", err: gorm.ErrCheckConstraintViolated, check: true},
		{name: "postgres check", err: errors.New(`ERROR: new row violates check constraint "chk_subjects_savings_sum" (SQLSTATE 23514)`), check: true},
		{name: "connection", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, isUniqueConstraintViolation(tt.err))
			assert.Equal(t, tt.foreignKey, isForeignKeyConstraintViolation(tt.err))
			assert.Equal(t, tt.check, isCheckConstraintViolation(tt.err))
		})
	}
}
