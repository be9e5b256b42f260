package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidateBillingConfig(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*BillingConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*BillingConfig) {}},
		{name: "empty currency", mutate: func(c *BillingConfig) { c.Currency = " " }, wantErr: true},
		{name: "negative places", mutate: func(c *BillingConfig) { c.DecimalPlaces = -1 }, wantErr: true},
		{name: "zero ttl", mutate: func(c *BillingConfig) { c.SessionTTL = 0 }, wantErr: true},
		{name: "zero cleanup", mutate: func(c *BillingConfig) { c.SessionCleanupInterval = 0 }, wantErr: true},
		{name: "negative rate", mutate: func(c *BillingConfig) { c.DefaultTaxes[0].Rate = -5 }, wantErr: true},
		{name: "unnamed tax", mutate: func(c *BillingConfig) { c.DefaultTaxes[1].Name = "" }, wantErr: true},
		{name: "duplicate code", mutate: func(c *BillingConfig) { c.DefaultTaxes[1].Code = "GST" }, wantErr: true},
		{name: "no default taxes", mutate: func(c *BillingConfig) { c.DefaultTaxes = nil }},
		{name: "template without sequence", mutate: func(c *BillingConfig) { c.InvoiceNumberTemplate = "GYM-{YYYY}" }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultBillingConfig()
			tc.mutate(&cfg)
			err := ValidateBillingConfig(cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewBillingConfigHolder_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yml")
	content := `billing:
  currency: usd
  decimal_places: 3
  session_ttl: 10m
  session_cleanup_interval: 1m
  default_taxes:
    - name: Sales Tax
      code: sales
      rate: 7.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	holder, err := NewBillingConfigHolder(Config{BillingConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "Gymdesk", cfg.GymName)
	assert.Equal(t, int32(3), cfg.DecimalPlaces)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SessionCleanupInterval)
	require.Len(t, cfg.DefaultTaxes, 1)
	assert.Equal(t, "Sales Tax", cfg.DefaultTaxes[0].Name)
	assert.Equal(t, 7.5, cfg.DefaultTaxes[0].Rate)
	assert.False(t, cfg.DefaultTaxes[0].IsInclusive)
}

func TestNewBillingConfigHolder_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yml")
	require.NoError(t, os.WriteFile(path, []byte("billing:\n  gym_name: Iron Temple\n"), 0o600))

	holder, err := NewBillingConfigHolder(Config{BillingConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	defaults := DefaultBillingConfig()
	cfg := holder.Get()
	assert.Equal(t, "Iron Temple", cfg.GymName)
	assert.Equal(t, defaults.Currency, cfg.Currency)
	assert.Equal(t, defaults.InvoiceNumberTemplate, cfg.InvoiceNumberTemplate)
	assert.Equal(t, defaults.DecimalPlaces, cfg.DecimalPlaces)
	assert.Equal(t, defaults.SessionTTL, cfg.SessionTTL)
	assert.Equal(t, defaults.SessionCleanupInterval, cfg.SessionCleanupInterval)
	assert.Equal(t, defaults.DefaultTaxes, cfg.DefaultTaxes)
}

func TestNewBillingConfigHolder_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewBillingConfigHolder(Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultBillingConfig(), holder.Get())
}

func TestNewBillingConfigHolder_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yml")
	content := `billing:
  currency: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := NewBillingConfigHolder(Config{BillingConfigPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestStaticBillingConfigHolder(t *testing.T) {
	cfg := DefaultBillingConfig()
	holder := NewStaticBillingConfigHolder(cfg)
	assert.Equal(t, cfg, holder.Get())
	assert.Len(t, holder.Get().DefaultTaxes, 4)
}
