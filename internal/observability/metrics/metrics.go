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

// Metrics exposes application-level instruments.
type Metrics struct {
	invitationsCreated      metric.Int64Counter
	invitationEmails        metric.Int64Counter
	invitationsAutoResolved metric.Int64Counter
	membersRemoved          metric.Int64Counter
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
		name = "teamroster"
	}
	meter := provider.Meter(name)

	invitationsCreated, err := meter.Int64Counter("teamroster_invitations_created_total")
	if err != nil {
		return nil, err
	}
	invitationEmails, err := meter.Int64Counter("teamroster_invitation_emails_total")
	if err != nil {
		return nil, err
	}
	invitationsAutoResolved, err := meter.Int64Counter("teamroster_invitations_auto_resolved_total")
	if err != nil {
		return nil, err
	}
	membersRemoved, err := meter.Int64Counter("teamroster_members_removed_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invitationsCreated:      invitationsCreated,
		invitationEmails:        invitationEmails,
		invitationsAutoResolved: invitationsAutoResolved,
		membersRemoved:          membersRemoved,
	}, nil
}

// NewNoop returns instruments backed by the no-op provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordInvitationCreated counts new invitation rows by creation path.
func (m *Metrics) RecordInvitationCreated(ctx context.Context, path string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("path", strings.TrimSpace(path)))
	m.invitationsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvitationEmail counts notification attempts by template and outcome.
func (m *Metrics) RecordInvitationEmail(ctx context.Context, template, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("template", strings.TrimSpace(template)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.invitationEmails.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvitationsAutoResolved counts invitations resolved during signup.
func (m *Metrics) RecordInvitationsAutoResolved(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.invitationsAutoResolved.Add(ctx, int64(count))
}

// RecordMemberRemoved counts membership removals.
func (m *Metrics) RecordMemberRemoved(ctx context.Context) {
	if m == nil {
		return
	}
	m.membersRemoved.Add(ctx, 1)
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
	"path":        {},
	"template":    {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
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
