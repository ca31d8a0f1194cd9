package driven

// ConfigStore provides access to application configuration. Implementations
// handle persistence and type conversion; lookups use dot-notation keys
// (e.g. "fetch.concurrency").
type ConfigStore interface {
	// Get retrieves a raw value by key, reporting whether the key exists.
	Get(key string) (any, bool)

	// GetString returns the string value for key, or "" when the key is
	// missing or holds another type.
	GetString(key string) string

	// GetInt returns the integer value for key, or 0 when the key is
	// missing or holds another type.
	GetInt(key string) int

	// GetBool returns the boolean value for key, or false when the key is
	// missing or holds another type.
	GetBool(key string) bool

	// GetStringSlice returns the string slice for key, or nil when the
	// key is missing or holds another type.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
