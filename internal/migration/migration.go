package migration

import (
	"errors"
	"fmt"

	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"gorm.io/gorm"
)

// Models lists every persisted table in creation order.
func Models() []any {
	return []any{
		&taxdomain.TaxSetting{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceTaxLine{},
		&invoicedomain.InvoiceSequence{},
	}
}

// RunMigrations creates or widens the schema so gymdesk is usable out of the
// box on sqlite, postgres and mysql alike.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
