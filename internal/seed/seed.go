// Package seed fills an empty tax catalog with the configured defaults.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/gymdesk/internal/config"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"go.uber.org/zap"
)

// EnsureDefaultTaxes creates defaults when the catalog holds no setting at
// all. A catalog that was seeded once is never touched again, even if every
// setting has since been deactivated.
func EnsureDefaultTaxes(ctx context.Context, log *zap.Logger, repo taxdomain.Repository, taxes taxdomain.Service, defaults []config.DefaultTax) error {
	if repo == nil || taxes == nil {
		return errors.New("seed tax repository and service are required")
	}
	log = log.Named("seed")

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count tax settings: %w", err)
	}
	if count > 0 {
		log.Debug("tax catalog already seeded", zap.Int64("count", count))
		return nil
	}

	for _, def := range defaults {
		req := taxdomain.CreateRequest{
			Code:        def.Code,
			Name:        def.Name,
			Rate:        def.Rate,
			IsInclusive: def.IsInclusive,
			SortOrder:   def.SortOrder,
		}
		if desc := strings.TrimSpace(def.Description); desc != "" {
			req.Description = &desc
		}
		if _, err := taxes.Create(ctx, req); err != nil {
			return fmt.Errorf("seed tax %q: %w", def.Name, err)
		}
	}

	log.Info("default taxes seeded", zap.Int("count", len(defaults)))
	return nil
}
