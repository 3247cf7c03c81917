// Package constants provides shared constants for the admin-cost application.
package constants

// Calculation constants
const (
	// MillionDivisor converts currency amounts to the millions used by the
	// fee schedule brackets.
	MillionDivisor = 1_000_000

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// MaxPercent is the upper bound accepted for margins and reductions
	MaxPercent = 100

	// DefaultMargin is the margin proposed by the interactive wizard (percent)
	DefaultMargin = 20

	// CurrencyDecimals is the number of fractional digits shown for amounts
	CurrencyDecimals = 2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format, re-readable as a run file
	OutputFormatYAML = "yaml"
)

// Locale constants
const (
	// DefaultLocale renders amounts the way the Algerian administration does
	DefaultLocale = "fr-DZ"

	// DefaultCurrencySymbol is the Algerian dinar abbreviation
	DefaultCurrencySymbol = "DA"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default run file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example run file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile is loaded, when present, before any configuration
	DefaultEnvFile = ".env"

	// EnvPrefix prefixes environment overrides, e.g. ADMINCOST_OUTPUT_FORMAT
	EnvPrefix = "ADMINCOST"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
