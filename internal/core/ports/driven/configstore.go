package driven

// ConfigStore is the key/value settings backend. Keys are dotted
// ("llm.provider"). The typed getters return the zero value when a key
// is missing or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	// GetInt accepts any integer width the backend decodes.
	GetInt(key string) int
	// GetFloat widens integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	// GetStringSlice drops non-string members.
	GetStringSlice(key string) []string

	// Set updates one key. Persistent stores write through immediately.
	Set(key string, value any) error
	Save() error
	// Load replaces the in-memory values with what the backend holds.
	Load() error
	// Path names the backing file, or a placeholder for non-file stores.
	Path() string
}
