package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BillingConfig holds the master billing settings read from billing.yml.
type BillingConfig struct {
	GymName                string        `mapstructure:"gym_name"`
	InvoiceNumberTemplate  string        `mapstructure:"invoice_number_template"`
	Currency               string        `mapstructure:"currency"`
	DecimalPlaces          int32         `mapstructure:"decimal_places"`
	SessionTTL             time.Duration `mapstructure:"session_ttl"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`
	DefaultTaxes           []DefaultTax  `mapstructure:"default_taxes"`
}

// DefaultTax is a tax setting seeded into an empty catalog.
type DefaultTax struct {
	Name        string  `mapstructure:"name"`
	Code        string  `mapstructure:"code"`
	Rate        float64 `mapstructure:"rate"`
	IsInclusive bool    `mapstructure:"is_inclusive"`
	SortOrder   int     `mapstructure:"sort_order"`
	Description string  `mapstructure:"description"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		GymName:                "Gymdesk",
		InvoiceNumberTemplate:  "GYM-{YYYY}{MM}{DD}-{SEQ4}",
		Currency:               "INR",
		DecimalPlaces:          2,
		SessionTTL:             30 * time.Minute,
		SessionCleanupInterval: 5 * time.Minute,
		DefaultTaxes: []DefaultTax{
			{Name: "GST", Code: "gst", Rate: 18, SortOrder: 10, Description: "Goods and services tax"},
			{Name: "CGST", Code: "cgst", Rate: 9, SortOrder: 20, Description: "Central goods and services tax"},
			{Name: "SGST", Code: "sgst", Rate: 9, SortOrder: 30, Description: "State goods and services tax"},
			{Name: "VAT", Code: "vat", Rate: 5, IsInclusive: true, SortOrder: 40, Description: "Value added tax"},
		},
	}
}

// BillingConfigHolder serves the last valid billing config.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewStaticBillingConfigHolder returns a holder that never reloads.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewBillingConfigHolder(cfg Config, log *zap.Logger) (*BillingConfigHolder, error) {
	log = log.Named("billing.config")
	v := viper.New()

	if cfg.BillingConfigPath != "" {
		v.SetConfigFile(cfg.BillingConfigPath)
	} else {
		v.SetConfigName("billing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/gymdesk")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GYMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read billing config: %w", err)
		}
		fileLoaded = false
	}

	loaded, err := unmarshalBilling(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticBillingConfigHolder(loaded)

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := unmarshalBilling(v)
			if err != nil {
				log.Warn("billing config reload ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("billing config reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

// unmarshalBilling decodes the billing section over the defaults, so keys
// missing from the file keep their default value.
func unmarshalBilling(v *viper.Viper) (BillingConfig, error) {
	cfg := DefaultBillingConfig()
	cfg.DefaultTaxes = nil
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return BillingConfig{}, fmt.Errorf("decode billing config: %w", err)
	}
	if !v.IsSet("billing.default_taxes") {
		cfg.DefaultTaxes = DefaultBillingConfig().DefaultTaxes
	}
	if err := ValidateBillingConfig(cfg); err != nil {
		return BillingConfig{}, err
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	return cfg, nil
}

func ValidateBillingConfig(cfg BillingConfig) error {
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("billing.currency cannot be empty")
	}
	if !strings.Contains(cfg.InvoiceNumberTemplate, "{SEQ") {
		return errors.New("billing.invoice_number_template must contain a {SEQ} token")
	}
	if cfg.DecimalPlaces < 0 || cfg.DecimalPlaces > 6 {
		return errors.New("billing.decimal_places must be between 0 and 6")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("billing.session_ttl must be positive")
	}
	if cfg.SessionCleanupInterval <= 0 {
		return errors.New("billing.session_cleanup_interval must be positive")
	}
	codes := make(map[string]struct{}, len(cfg.DefaultTaxes))
	for i, tax := range cfg.DefaultTaxes {
		if strings.TrimSpace(tax.Name) == "" {
			return fmt.Errorf("billing.default_taxes[%d].name cannot be empty", i)
		}
		if math.IsNaN(tax.Rate) || math.IsInf(tax.Rate, 0) || tax.Rate < 0 {
			return fmt.Errorf("billing.default_taxes[%d].rate must be non-negative", i)
		}
		code := strings.ToLower(strings.TrimSpace(tax.Code))
		if code == "" {
			continue
		}
		if _, dup := codes[code]; dup {
			return fmt.Errorf("billing.default_taxes[%d].code %q is duplicated", i, code)
		}
		codes[code] = struct{}{}
	}
	return nil
}
