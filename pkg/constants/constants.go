// Package constants provides shared constants for the installment-plan application.
package constants

import "time"

// DateLayout is the format expected for purchase dates on the command line and
// in API payloads; it is also the output date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MinimumDeferredAmount is the smallest cart total, in currency units, that
	// qualifies for deferred payment.
	MinimumDeferredAmount = 5000

	// CurrencyPlaces is the number of decimal places kept for currency values
	CurrencyPlaces = 2

	// PercentageMultiplier converts a fractional rate into a percentage
	PercentageMultiplier = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatXLSX is the printable spreadsheet output format
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout bounds graceful server shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Session constants
const (
	// SessionBackendMemory keeps computed plans in process memory
	SessionBackendMemory = "memory"

	// SessionBackendRedis keeps computed plans in Redis
	SessionBackendRedis = "redis"

	// DefaultSessionTTL is how long a computed plan stays retrievable
	DefaultSessionTTL = 30 * time.Minute

	// SessionKeyPrefix namespaces plan keys in shared stores
	SessionKeyPrefix = "installment:plan:"
)
