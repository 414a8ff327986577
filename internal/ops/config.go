package ops

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"pricestream/internal/bus"
	"pricestream/pkg/exception"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	yerrors "github.com/yanun0323/errors"
)

// Environment variables read by Load.
const (
	EnvAuthToken       = "OANDA_AUTH_TOKEN"
	EnvAccountID       = "OANDA_ACCOUNT_ID"
	EnvEnvironment     = "OANDA_ENVIRONMENT"
	EnvInstruments     = "OANDA_INSTRUMENTS"
	EnvStreamURL       = "OANDA_STREAM_URL"
	EnvPublishAddress  = "ZMQ_PUBLISHER_ADDRESS"
	EnvRelayCapacity   = "RELAY_CAPACITY"
	EnvMetricsAddress  = "METRICS_ADDRESS"
	EnvProfilerAddress = "PYROSCOPE_SERVER_ADDRESS"
)

const (
	EnvironmentTrade    = "fxtrade"
	EnvironmentPractice = "fxpractice"

	DefaultEnvironment    = EnvironmentPractice
	DefaultInstruments    = "EUR_USD"
	DefaultPublishAddress = "tcp://*:9500"

	// DefaultEnvFile is loaded when present; a missing file is not an error.
	DefaultEnvFile = ".env"
)

// Config is the validated runtime configuration of the streamer.
type Config struct {
	AuthToken      string
	AccountID      string
	Environment    string
	Instruments    string
	PublishAddress string

	// StreamURL replaces https://stream-{Environment}.oanda.com when set.
	StreamURL string

	RelayCapacity   int
	MetricsAddress  string
	ProfilerAddress string
}

var bindings = map[string]string{
	"auth_token":       EnvAuthToken,
	"account_id":       EnvAccountID,
	"environment":      EnvEnvironment,
	"instruments":      EnvInstruments,
	"stream_url":       EnvStreamURL,
	"publish_address":  EnvPublishAddress,
	"relay_capacity":   EnvRelayCapacity,
	"metrics_address":  EnvMetricsAddress,
	"profiler_address": EnvProfilerAddress,
}

// Load reads the configuration from the process environment after merging
// envFile into it. Variables already set in the environment win over the file.
// An empty envFile loads DefaultEnvFile when it exists.
func Load(envFile string) (Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("instruments", DefaultInstruments)
	v.SetDefault("publish_address", DefaultPublishAddress)
	v.SetDefault("relay_capacity", bus.DefaultCapacity)
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, yerrors.Wrap(err, "bind env").With("env", env)
		}
	}

	cfg := Config{
		AuthToken:       strings.TrimSpace(v.GetString("auth_token")),
		AccountID:       strings.TrimSpace(v.GetString("account_id")),
		Environment:     strings.TrimSpace(v.GetString("environment")),
		Instruments:     strings.TrimSpace(v.GetString("instruments")),
		StreamURL:       strings.TrimSpace(v.GetString("stream_url")),
		PublishAddress:  strings.TrimSpace(v.GetString("publish_address")),
		RelayCapacity:   v.GetInt("relay_capacity"),
		MetricsAddress:  strings.TrimSpace(v.GetString("metrics_address")),
		ProfilerAddress: strings.TrimSpace(v.GetString("profiler_address")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	required := path != ""
	if !required {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return yerrors.Wrap(err, "load env file").With("path", path)
	}
	return nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.AuthToken == "" {
		missing = append(missing, EnvAuthToken)
	}
	if c.AccountID == "" {
		missing = append(missing, EnvAccountID)
	}
	if c.Instruments == "" {
		missing = append(missing, EnvInstruments)
	}
	if c.PublishAddress == "" {
		missing = append(missing, EnvPublishAddress)
	}
	if len(missing) != 0 {
		return yerrors.Wrapf(exception.ErrConfigMissing, "%s", strings.Join(missing, ", "))
	}

	if c.StreamURL == "" && c.Environment != EnvironmentTrade && c.Environment != EnvironmentPractice {
		return yerrors.Wrapf(exception.ErrConfigInvalid, "%s must be %s or %s, got %q",
			EnvEnvironment, EnvironmentTrade, EnvironmentPractice, c.Environment)
	}
	if c.RelayCapacity <= 0 {
		return yerrors.Wrapf(exception.ErrConfigInvalid, "%s must be > 0", EnvRelayCapacity)
	}
	return nil
}

// BaseURL returns the pricing stream host without a trailing slash.
func (c Config) BaseURL() string {
	if c.StreamURL != "" {
		return strings.TrimRight(c.StreamURL, "/")
	}
	return fmt.Sprintf("https://stream-%s.oanda.com", c.Environment)
}

// Usage describes the environment variables understood by Load.
func Usage() string {
	var sb strings.Builder
	sb.WriteString("Please ensure the following environment variables are set:\n")
	fmt.Fprintf(&sb, "  %s=<YOUR_TOKEN>\n", EnvAuthToken)
	fmt.Fprintf(&sb, "  %s=<YOUR_ACCOUNT_ID>\n", EnvAccountID)
	fmt.Fprintf(&sb, "  %s=%s | %s (default %s)\n", EnvEnvironment, EnvironmentTrade, EnvironmentPractice, DefaultEnvironment)
	fmt.Fprintf(&sb, "  %s=EUR_USD,USD_CAD (comma-separated, default %s)\n", EnvInstruments, DefaultInstruments)
	sb.WriteString("\nOptional:\n")
	fmt.Fprintf(&sb, "  %s=%s (publisher bind address)\n", EnvPublishAddress, DefaultPublishAddress)
	fmt.Fprintf(&sb, "  %s=https://stream-fxpractice.oanda.com (stream host override)\n", EnvStreamURL)
	fmt.Fprintf(&sb, "  %s=%d (relay capacity)\n", EnvRelayCapacity, bus.DefaultCapacity)
	fmt.Fprintf(&sb, "  %s=:9501 (prometheus listen address)\n", EnvMetricsAddress)
	fmt.Fprintf(&sb, "  %s=http://localhost:4040 (pyroscope server)\n", EnvProfilerAddress)
	return sb.String()
}
