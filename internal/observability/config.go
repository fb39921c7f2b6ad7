package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/taxops/fbrgate/internal/config"
)

// Config collects the logging and tracing knobs. Values come from the
// application config with OTEL_* environment variables taking precedence,
// matching the conventions collectors already document.
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

func LoadConfig(cfg config.Config) Config {
	service := strings.TrimSpace(cfg.AppName)
	if service == "" {
		service = "fbrgate"
	}

	protocol := strings.ToLower(envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))
	if traces := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = strings.ToLower(traces)
	}

	return Config{
		ServiceName:          service,
		Environment:          strings.TrimSpace(envOr("DEPLOYMENT_ENV", cfg.Environment)),
		Version:              strings.TrimSpace(envOr("SERVICE_VERSION", cfg.AppVersion)),
		LogLevel:             strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(envOr("LOG_FORMAT", "json")),
		OtelEnabled:          envBool("OTEL_ENABLED", true),
		OtelExporterEndpoint: strings.TrimSpace(envOr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)),
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    envFloat("OTEL_SAMPLING_RATIO", 0.1),
	}
}

// Debug is true when either the log level asks for it or the deployment
// environment is a development one.
func (c Config) Debug() bool {
	if strings.ToLower(strings.TrimSpace(c.LogLevel)) == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
