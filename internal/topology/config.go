// Package topology models the job-side inputs of a submission: the YAML job
// configuration and the MODULE:FUNC definition reference. The configuration
// is opaque to the tool — it is carried byte-for-byte into the artifact — with
// one exception, the coordinator host key consulted by the kill flow.
package topology

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ErrConfig covers missing, unreadable, or malformed job inputs.
var ErrConfig = errors.New("topology configuration invalid")

// NimbusHostKey is the only configuration key the tool interprets: the
// cluster coordinator host that kill commands are routed to.
const NimbusHostKey = "nimbus.host"

// Config is one loaded job configuration file. Raw holds the verbatim file
// contents for injection into the artifact; the parsed mapping exists only to
// validate well-formedness and answer key lookups.
type Config struct {
	Path string
	Raw  []byte

	values map[string]any
}

// LoadConfig reads and parses a YAML job configuration file. The document
// must be a mapping (or empty); anything else wraps ErrConfig.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}

	return &Config{Path: path, Raw: raw, values: values}, nil
}

// String returns the value under key rendered as a string, and whether the
// key was present with a non-null value.
func (c *Config) String(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}
