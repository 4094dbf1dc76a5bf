package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/database"
	gatewayhttp "github.com/sagarc03/swiftgate/http"
	"github.com/sagarc03/swiftgate/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for swiftgate.
type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Upstream UpstreamConfig         `mapstructure:"upstream"`
	Service  ServiceConfig          `mapstructure:"service"`
	Database database.Config        `mapstructure:"database"`
	Auth     AuthConfig             `mapstructure:"auth"`
	CORS     gatewayhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig              `mapstructure:"log"`
}

// ServerConfig holds inbound HTTP server configuration.
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	PublicURL     string `mapstructure:"public_url" validate:"omitempty,url"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=0"`
	// ShutdownTimeout is how long in-flight transfers get to finish, in seconds.
	ShutdownTimeout int `mapstructure:"shutdown_timeout" validate:"min=1"`
}

// UpstreamConfig describes the storage service the gateway relays to.
type UpstreamConfig struct {
	URL       string `mapstructure:"url" validate:"required,url"`
	Account   string `mapstructure:"account" validate:"required"`
	Container string `mapstructure:"container" validate:"required"`
	User      string `mapstructure:"user" validate:"required"`
	Key       string `mapstructure:"key"`
	MaxConns  int    `mapstructure:"max_conns" validate:"min=1"`
	KeepAlive bool   `mapstructure:"keep_alive"`
	ChunkSize int    `mapstructure:"chunk_size" validate:"min=1024"`
	// Timeout bounds dialing and waiting for response headers, in seconds.
	Timeout int `mapstructure:"timeout" validate:"min=1"`
}

// Options converts the section into client options.
func (u UpstreamConfig) Options() swiftgate.Options {
	return swiftgate.Options{
		BaseURL:         u.URL,
		MaxConnsPerHost: u.MaxConns,
		KeepAlive:       u.KeepAlive,
		ChunkSize:       u.ChunkSize,
		Timeout:         time.Duration(u.Timeout) * time.Second,
	}
}

// Credentials returns the upstream auth credentials.
func (u UpstreamConfig) Credentials() swiftgate.Credentials {
	return swiftgate.Credentials{User: u.User, Key: u.Key}
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	// RecordTimeout bounds registry writes after a relay, in seconds.
	RecordTimeout int `mapstructure:"record_timeout" validate:"min=1"`
}

// AuthConfig holds inbound authentication configuration.
type AuthConfig struct {
	Read  string                `mapstructure:"read" validate:"required,oneof=public private"`
	Write string                `mapstructure:"write" validate:"required,oneof=public private"`
	Keys  keybackend.KeysConfig `mapstructure:"keys"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Env   string `mapstructure:"env" validate:"required,oneof=dev prod"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":            "database.type",
	"db-dsn":             "database.dsn",
	"port":               "server.port",
	"upstream-url":       "upstream.url",
	"upstream-account":   "upstream.account",
	"upstream-container": "upstream.container",
	"upstream-user":      "upstream.user",
	"upstream-key":       "upstream.key",
	"log-level":          "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5708)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.shutdown_timeout", 30)

	v.SetDefault("upstream.url", "http://localhost:8080")
	v.SetDefault("upstream.account", "AUTH_test")
	v.SetDefault("upstream.container", "files")
	v.SetDefault("upstream.user", "test:tester")
	v.SetDefault("upstream.key", "")
	v.SetDefault("upstream.max_conns", swiftgate.DefaultMaxConnsPerHost)
	v.SetDefault("upstream.keep_alive", false)
	v.SetDefault("upstream.chunk_size", swiftgate.DefaultChunkSize)
	v.SetDefault("upstream.timeout", int(swiftgate.DefaultTimeout/time.Second))

	v.SetDefault("service.record_timeout", 5)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "swiftgate.db")
	v.SetDefault("database.tables.objects", "swiftgate_objects")

	v.SetDefault("auth.read", "public")
	v.SetDefault("auth.write", "public")
	v.SetDefault("auth.keys.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "dev")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SWIFTGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
