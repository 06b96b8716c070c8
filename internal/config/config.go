// Package config loads process configuration from flags, the environment
// and an optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
)

// Keys. Each is also read from the environment variable of the same name
// upper-cased.
const (
	KeyAlphaVantageAPIKey  = "alpha_vantage_api_key"
	KeyAlphaVantageBaseURL = "alpha_vantage_base_url"
	KeyLLMProvider         = "llm_provider"
	KeyLLMAPIKey           = "llm_api_key"
	KeyLLMBaseURL          = "llm_base_url"
	KeyLLMModel            = "llm_model"
	KeyLogLevel            = "log_level"
	KeyLogFile             = "log_file"
	KeyTransport           = "mcp_transport"
	KeyAddr                = "mcp_addr"
	KeySessionIdle         = "mcp_session_idle"
)

// DefaultEnvFile is read when present and no --config is given.
const DefaultEnvFile = ".env"

// Config is the immutable process configuration.
type Config struct {
	AlphaVantage AlphaVantage
	LLM          LLM
	Log          Log
	Serve        Serve
}

// AlphaVantage configures the market data client.
type AlphaVantage struct {
	APIKey  string
	BaseURL string
}

// LLM configures the answer evaluator backend. An empty BaseURL selects
// the backend's own default.
type LLM struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// Log configures the process logger.
type Log struct {
	Level string
	File  string
}

// Serve selects the transport. SessionIdle is how long an HTTP session
// may sit unused before it is evicted.
type Serve struct {
	Transport   string
	Addr        string
	SessionIdle time.Duration
}

// RegisterFlags adds the shared command line flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "dotenv file to read (default ./.env when present)")
	fs.String("transport", "", "transport: stdio, http or websocket (default stdio)")
	fs.String("addr", "", "listen address for http and websocket (default :8080)")
	fs.String("log-level", "", "log level: debug, info, warn, error (default info)")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.String("session-idle", "", "evict http sessions idle this long (default 30m)")
}

var flagKeys = map[string]string{
	"transport":    KeyTransport,
	"addr":         KeyAddr,
	"log-level":    KeyLogLevel,
	"log-file":     KeyLogFile,
	"session-idle": KeySessionIdle,
}

// Load reads the configuration. Flags win over the environment,
// which wins over the dotenv file, which wins over defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := readEnvFile(v, flags); err != nil {
		return Config{}, err
	}

	return Config{
		AlphaVantage: AlphaVantage{
			APIKey:  v.GetString(KeyAlphaVantageAPIKey),
			BaseURL: v.GetString(KeyAlphaVantageBaseURL),
		},
		LLM: LLM{
			Provider: v.GetString(KeyLLMProvider),
			APIKey:   v.GetString(KeyLLMAPIKey),
			BaseURL:  v.GetString(KeyLLMBaseURL),
			Model:    v.GetString(KeyLLMModel),
		},
		Log: Log{
			Level: v.GetString(KeyLogLevel),
			File:  v.GetString(KeyLogFile),
		},
		Serve: Serve{
			Transport:   v.GetString(KeyTransport),
			Addr:        v.GetString(KeyAddr),
			SessionIdle: v.GetDuration(KeySessionIdle),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAlphaVantageAPIKey, "")
	v.SetDefault(KeyAlphaVantageBaseURL, "https://www.alphavantage.co/query")
	v.SetDefault(KeyLLMProvider, "zhipu")
	v.SetDefault(KeyLLMAPIKey, "")
	v.SetDefault(KeyLLMBaseURL, "")
	v.SetDefault(KeyLLMModel, "glm-4")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTransport, "stdio")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeySessionIdle, "30m")
}

// readEnvFile loads the file named by --config, or ./.env when it exists.
// An explicitly named file must exist.
func readEnvFile(v *viper.Viper, flags *pflag.FlagSet) error {
	path := ""
	if flags != nil && flags.Lookup("config") != nil {
		path, _ = flags.GetString("config")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return &apperr.ConfigError{Key: "config", Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	return nil
}

// RequireMarketKey reports a ConfigError when the market data key is unset.
func (c Config) RequireMarketKey() error {
	if c.AlphaVantage.APIKey == "" {
		return &apperr.ConfigError{
			Key:    "ALPHA_VANTAGE_API_KEY",
			Reason: "Alpha Vantage API key not found. Set ALPHA_VANTAGE_API_KEY in the environment or .env file",
		}
	}
	return nil
}
