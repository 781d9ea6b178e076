package observability

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/smallbiznis/teamroster/internal/config"
)

// Config holds logging, tracing and metrics settings.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// envConfig mirrors the standard OTEL_* variables. Unset values fall back to
// the application config.
type envConfig struct {
	Environment    string  `env:"DEPLOYMENT_ENV"`
	Version        string  `env:"SERVICE_VERSION"`
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string  `env:"LOG_FORMAT" envDefault:"json"`
	OtelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint       string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Protocol       string  `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"grpc"`
	TracesProtocol string  `env:"OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"`
	SamplingRatio  float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`
}

func LoadConfig(cfg config.Config) (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("observability env: %w", err)
	}
	return fromEnv(cfg, raw), nil
}

func fromEnv(cfg config.Config, raw envConfig) Config {
	protocol := raw.Protocol
	if strings.TrimSpace(raw.TracesProtocol) != "" {
		protocol = raw.TracesProtocol
	}
	ratio := raw.SamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}

	return Config{
		ServiceName:          firstNonEmpty(cfg.AppName, "teamroster"),
		Environment:          firstNonEmpty(raw.Environment, cfg.Environment),
		Version:              firstNonEmpty(raw.Version, cfg.AppVersion),
		LogLevel:             strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		LogFormat:            strings.ToLower(strings.TrimSpace(raw.LogFormat)),
		OtelEnabled:          raw.OtelEnabled,
		OtelExporterEndpoint: firstNonEmpty(raw.Endpoint, cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(strings.TrimSpace(protocol)),
		OtelSamplingRatio:    ratio,
	}
}

// Debug enables verbose request logging for debug level or dev environments.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
