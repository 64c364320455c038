package bytesize

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Config is the serializable form of an engine configuration.
//
//	custom_words:
//	  - "https://"
//	  - ".com"
//	custom_spaces: false
type Config struct {
	// CustomWords are encoded in two bytes wherever they appear. Only the
	// first 32, or 16 with CustomSpaces, are used.
	CustomWords []string `json:"custom_words" mapstructure:"custom_words"`
	// CustomSpaces lets every custom word also match with a leading space.
	CustomSpaces bool `json:"custom_spaces" mapstructure:"custom_spaces"`
}

// DefaultConfig returns the configuration NewBuilder starts from.
func DefaultConfig() Config {
	return Config{CustomWords: append([]string(nil), DefaultCustomWords...)}
}

// ParseConfig parses a YAML or JSON document. Fields it does not set keep
// their DefaultConfig values; unknown fields are an error.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("bytesize: parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and parses the configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("bytesize: read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports the first empty custom word. Words beyond the capacity
// are valid; the engine ignores them.
func (c Config) Validate() error {
	for i, w := range c.CustomWords {
		if w == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyCustomWord, i)
		}
	}
	return nil
}

// Builder returns a builder holding the configuration.
func (c Config) Builder() *Builder {
	return EmptyBuilder().SetCustom(c.CustomWords).SetCustomSpaces(c.CustomSpaces)
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
