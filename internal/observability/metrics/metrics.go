package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes invoice instruments exported over OTLP.
type Metrics struct {
	invoicesIssued   metric.Int64Counter
	invoicesVoided   metric.Int64Counter
	receiptsRendered metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "gymdesk"
	}
	meter := provider.Meter(name)

	invoicesIssued, err := meter.Int64Counter("gymdesk_invoices_issued_total")
	if err != nil {
		return nil, err
	}
	invoicesVoided, err := meter.Int64Counter("gymdesk_invoices_voided_total")
	if err != nil {
		return nil, err
	}
	receiptsRendered, err := meter.Int64Counter("gymdesk_receipts_rendered_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesIssued:   invoicesIssued,
		invoicesVoided:   invoicesVoided,
		receiptsRendered: receiptsRendered,
	}, nil
}

// RecordInvoiceIssued counts invoices written from a billing session.
func (m *Metrics) RecordInvoiceIssued(ctx context.Context, taxMode, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("tax_mode", strings.TrimSpace(taxMode)),
		attribute.String("source", strings.TrimSpace(source)),
	)
	m.invoicesIssued.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceVoided counts voided invoices.
func (m *Metrics) RecordInvoiceVoided(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesVoided.Add(ctx, 1)
}

// RecordReceiptRendered counts generated PDF receipts.
func (m *Metrics) RecordReceiptRendered(ctx context.Context) {
	if m == nil {
		return
	}
	m.receiptsRendered.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"tax_mode":    {},
	"source":      {},
	"result":      {},
	"reason":      {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
