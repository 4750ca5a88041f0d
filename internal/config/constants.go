package config

import "time"

// Application constants
const (
	AppName      = "bondscope"
	EnvPrefix    = "BONDSCOPE"
	ConfigEnvVar = "BONDSCOPE_CONFIG"

	// Defaults for the electoral bond disclosure workbooks
	DefaultPurchasesPath    = "data/purchases.xlsx"
	DefaultRedemptionsPath  = "data/redemptions.xlsx"
	DefaultValidityDays     = 15
	DefaultLoadTimeout      = 2 * time.Minute
	DefaultCacheMaxEntries  = 256
	DefaultRequestTimeout   = 30 * time.Second
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultRateLimitRPS     = 50
	DefaultRateLimitBurst   = 100
	DefaultOTelServiceName  = "bondscope"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultLogOutput        = "console"
	DefaultLogFilePath      = "logs/bondscope.log"
	DefaultServerPort       = 8080
	DefaultMaxHeaderBytes   = 1 << 20
	DefaultReadWriteTimeout = 15 * time.Second
	DefaultIdleTimeout      = 60 * time.Second
)

// API endpoints
const (
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/health"
	MetricsEndpoint = "/metrics"
)

// Canonical field names accepted as column mapping targets.
const (
	FieldPurchaseDate   = "purchase_date"
	FieldDonorName      = "donor_name"
	FieldAmount         = "amount"
	FieldEncashmentDate = "encashment_date"
	FieldPoliticalParty = "political_party"
)
