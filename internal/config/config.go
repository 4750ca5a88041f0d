package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "bondscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Columns  ColumnsConfig  `yaml:"columns" envconfig:"COLUMNS"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
	OTel     OTelConfig     `yaml:"otel" envconfig:"OTEL"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`

	// File is the YAML file the config was read from, if any.
	File string `yaml:"-" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// DataConfig locates the purchase and redemption tables.
type DataConfig struct {
	PurchasesPath    string        `yaml:"purchases_path" envconfig:"PURCHASES_PATH" validate:"required"`
	RedemptionsPath  string        `yaml:"redemptions_path" envconfig:"REDEMPTIONS_PATH" validate:"required"`
	PurchasesSheet   string        `yaml:"purchases_sheet" envconfig:"PURCHASES_SHEET"`
	RedemptionsSheet string        `yaml:"redemptions_sheet" envconfig:"REDEMPTIONS_SHEET"`
	ValidityDays     int           `yaml:"validity_days" envconfig:"VALIDITY_DAYS" validate:"min=1,max=365"`
	LoadTimeout      time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT" validate:"gt=0"`
}

// ColumnsConfig maps raw table headers to canonical field names.
type ColumnsConfig struct {
	Purchases   map[string]string `yaml:"purchases" envconfig:"PURCHASES" validate:"required,dive,keys,required,endkeys,oneof=purchase_date donor_name amount"`
	Redemptions map[string]string `yaml:"redemptions" envconfig:"REDEMPTIONS" validate:"required,dive,keys,required,endkeys,oneof=encashment_date political_party amount"`
}

// CacheConfig controls the analysis result cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" envconfig:"ENABLED"`
	MaxEntries int  `yaml:"max_entries" envconfig:"MAX_ENTRIES" validate:"min=1"`
}

// OTelConfig controls metrics and tracing export.
type OTelConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName  string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Prometheus   bool   `yaml:"prometheus" envconfig:"PROMETHEUS"`
	StdoutTraces bool   `yaml:"stdout_traces" envconfig:"STDOUT_TRACES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"dive,required"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, the YAML file named by BONDSCOPE_CONFIG (or config.yaml in a
// well-known location), and BONDSCOPE_* environment variables. A .env file
// in the working directory is read into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file; an empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("path", configFile)
		}
		cfg.File = configFile
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile decodes YAML over the values already in cfg. Column maps
// given in the file replace the defaults rather than merging with them.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var cols struct {
		Columns ColumnsConfig `yaml:"columns"`
	}
	if err := yaml.Unmarshal(data, &cols); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cols.Columns.Purchases != nil {
		cfg.Columns.Purchases = cols.Columns.Purchases
	}
	if cols.Columns.Redemptions != nil {
		cfg.Columns.Redemptions = cols.Columns.Redemptions
	}
	return nil
}

// resolvePaths anchors relative data paths at the config file's directory.
func (c *Config) resolvePaths() {
	if c.File == "" {
		return
	}
	base := filepath.Dir(c.File)
	c.Data.PurchasesPath = ResolvePath(base, c.Data.PurchasesPath)
	c.Data.RedemptionsPath = ResolvePath(base, c.Data.RedemptionsPath)
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// ValidityPeriod is the bond validity window as a duration.
func (c *Config) ValidityPeriod() time.Duration {
	return time.Duration(c.Data.ValidityDays) * 24 * time.Hour
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// getConfigFilePath returns the YAML file to read, or "" when none exists.
func getConfigFilePath() string {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadWriteTimeout,
			WriteTimeout:    DefaultReadWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Data: DataConfig{
			PurchasesPath:   DefaultPurchasesPath,
			RedemptionsPath: DefaultRedemptionsPath,
			ValidityDays:    DefaultValidityDays,
			LoadTimeout:     DefaultLoadTimeout,
		},
		Columns: ColumnsConfig{
			Purchases: map[string]string{
				"Date of Purchase": FieldPurchaseDate,
				"Purchaser Name":   FieldDonorName,
				"Denomination":     FieldAmount,
			},
			Redemptions: map[string]string{
				"Date of\nEncashment":         FieldEncashmentDate,
				"Name of the Political Party": FieldPoliticalParty,
				"Denomination":                FieldAmount,
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: DefaultCacheMaxEntries,
		},
		OTel: OTelConfig{
			Enabled:     true,
			ServiceName: DefaultOTelServiceName,
			Prometheus:  true,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
	}
}
