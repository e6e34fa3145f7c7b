package driven

// Credential configuration keys. Presence of a non-empty value is the
// sole admission gate for optional providers.
const (
	KeySerpAPIKey    = "providers.serp.api_key"
	KeyYouTubeAPIKey = "providers.youtube.api_key"
	KeyGitHubToken   = "providers.github.token"
)

// Scoring weight override keys. A set key replaces that dimension's
// weight from the selected profile preset.
const (
	KeyWeightAccessibility       = "scoring.weights.accessibility"
	KeyWeightPaymentPotential    = "scoring.weights.payment_potential"
	KeyWeightMarketSize          = "scoring.weights.market_size"
	KeyWeightCompetitionLevel    = "scoring.weights.competition_level"
	KeyWeightImplementationSpeed = "scoring.weights.implementation_speed"
)

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetFloat retrieves a float configuration value.
	// Returns 0 if key doesn't exist or isn't numeric.
	GetFloat(key string) float64

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
