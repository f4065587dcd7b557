// Package config loads and validates the Blocks CLI's optional
// .blocksc.yaml configuration file. The compiler core (lexer, tree, ir,
// emit, blocks) never reads configuration itself; only cmd/blocksc does,
// passing the resolved values down as plain function arguments.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how cmd/blocksc compile renders the emitted word
// vector.
type OutputFormat string

const (
	Decimal OutputFormat = "decimal"
	Binary  OutputFormat = "binary"
)

// Config holds everything .blocksc.yaml can configure. The zero value
// produced by Default matches the core's built-in defaults.
type Config struct {
	// VarAddrStart is the data-section cursor's initial value, overridable
	// per-file by a `? var_addr` tag.
	VarAddrStart int64 `yaml:"varAddrStart" json:"varAddrStart"`

	// OutputFormat controls cmd/blocksc compile's rendering of the word
	// vector: one value per line in decimal, or a flat little-endian byte
	// stream in binary.
	OutputFormat OutputFormat `yaml:"outputFormat" json:"outputFormat"`

	// CacheDir enables the content-addressed compile cache
	// (internal/cache) when non-empty.
	CacheDir string `yaml:"cacheDir" json:"cacheDir"`
}

// Default returns the configuration used when no .blocksc.yaml is present.
func Default() *Config {
	return &Config{
		VarAddrStart: 0,
		OutputFormat: Decimal,
	}
}

// schemaJSON is the embedded JSON Schema every loaded config is validated
// against, using github.com/santhosh-tekuri/jsonschema/v5 with an
// AddResource-then-Compile setup.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "varAddrStart": {"type": "integer", "minimum": 0},
    "outputFormat": {"type": "string", "enum": ["decimal", "binary"]},
    "cacheDir": {"type": "string"}
  }
}`

var schema = mustCompileSchema(schemaJSON)

func mustCompileSchema(src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const url = "schema://blocksc-config.json"
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	s, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema failed to compile: %v", err))
	}
	return s
}

// Load reads and validates path (typically ".blocksc.yaml"). A missing
// file is not an error: Load returns Default() unchanged, matching the
// teacher's pattern of treating optional project config as opt-in.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	// Validate the decoded YAML (converted to plain JSON-compatible values,
	// which yaml.v3's map[string]interface{} already is) against the
	// schema before trusting any of its fields.
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = Decimal
	}
	return cfg, nil
}

func validate(raw map[string]interface{}) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-encoding config as JSON: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(encoded, &v); err != nil {
		return fmt.Errorf("decoding config as JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
