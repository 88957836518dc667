// Package config provides configuration loading and management for semxref.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Raw store drivers.
const (
	RawDriverFS = "fs"
	RawDriverS3 = "s3"
)

// Sink drivers.
const (
	SinkTurtle   = "turtle"
	SinkNTriples = "ntriples"
	SinkNATS     = "nats"
	SinkNeo4j    = "neo4j"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// Run history drivers.
const (
	RunsMemory = "memory"
	RunsNATS   = "nats"
)

// Config represents the complete semxref configuration
type Config struct {
	Raw RawConfig `yaml:"raw"`
	// Curies maps CURIE prefixes to namespace URIs; merged over the built-in map.
	Curies map[string]string `yaml:"curies,omitempty"`
	// Terms overrides term dictionary entries by term name.
	Terms map[string]string `yaml:"terms,omitempty"`

	TestMode bool          `yaml:"test_mode"`
	TestIDs  TestIDsConfig `yaml:"test_ids"`
	// Limit caps processed rows per file outside test mode; 0 means no limit.
	Limit int `yaml:"limit"`

	BioGRID BioGRIDConfig `yaml:"biogrid"`
	Sink    SinkConfig    `yaml:"sink"`
	Runs    RunsConfig    `yaml:"runs"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// RawConfig locates the raw source files. Each source reads from a
// subdirectory (or key prefix) named after it.
type RawConfig struct {
	// Driver is "fs" or "s3".
	Driver string `yaml:"driver"`
	// Dir is the local raw directory for the fs driver.
	Dir string `yaml:"dir"`
	// Bucket, Prefix, Region, Endpoint and PathStyle configure the s3 driver.
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// TestIDsConfig lists the identifiers kept in test mode
type TestIDsConfig struct {
	Disease []string `yaml:"disease,omitempty"`
	Gene    []string `yaml:"gene,omitempty"`
	BioGRID []string `yaml:"biogrid,omitempty"`
}

// BioGRIDConfig configures the BioGRID filters
type BioGRIDConfig struct {
	TaxIDs       []int    `yaml:"tax_ids"`
	Species      []string `yaml:"species"`
	GenePrefixes []string `yaml:"gene_prefixes"`
}

// SinkConfig selects where triples are written
type SinkConfig struct {
	Driver string `yaml:"driver"`
	// Path is the output file for the turtle and ntriples drivers.
	Path string `yaml:"path,omitempty"`
	// URL is the NATS or Neo4j server URL.
	URL      string `yaml:"url,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	// DSN is the database/sql data source for sqlite and postgres.
	DSN       string `yaml:"dsn,omitempty"`
	BatchSize int    `yaml:"batch_size"`
}

// RunsConfig selects where run history is kept
type RunsConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url,omitempty"`
}

// MetricsConfig configures the metrics endpoint
type MetricsConfig struct {
	// Addr is the listen address of the serve command.
	Addr string `yaml:"addr"`
}

// WatchConfig configures raw file watching
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Raw: RawConfig{
			Driver: RawDriverFS,
			Dir:    "raw",
		},
		BioGRID: BioGRIDConfig{
			TaxIDs:       []int{9606, 10090},
			Species:      []string{"Homo sapiens", "Mus musculus"},
			GenePrefixes: []string{"NCBIGene", "MGI", "ENSEMBL", "ZFIN", "HGNC"},
		},
		Sink: SinkConfig{
			Driver:    SinkTurtle,
			Path:      "out/semxref.ttl",
			BatchSize: 500,
		},
		Runs: RunsConfig{
			Driver: RunsMemory,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Raw.Driver {
	case RawDriverFS:
		if c.Raw.Dir == "" {
			return fmt.Errorf("raw.dir is required for the fs driver")
		}
	case RawDriverS3:
		if c.Raw.Bucket == "" {
			return fmt.Errorf("raw.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("raw.driver must be fs or s3, got %q", c.Raw.Driver)
	}

	switch c.Sink.Driver {
	case SinkTurtle, SinkNTriples:
		if c.Sink.Path == "" {
			return fmt.Errorf("sink.path is required for the %s driver", c.Sink.Driver)
		}
	case SinkNATS:
		if c.Sink.URL == "" {
			return fmt.Errorf("sink.url is required for the nats driver")
		}
	case SinkNeo4j:
		if c.Sink.URL == "" || c.Sink.User == "" {
			return fmt.Errorf("sink.url and sink.user are required for the neo4j driver")
		}
	case SinkSQLite, SinkPostgres:
		if c.Sink.DSN == "" {
			return fmt.Errorf("sink.dsn is required for the %s driver", c.Sink.Driver)
		}
	default:
		return fmt.Errorf("unknown sink.driver %q", c.Sink.Driver)
	}
	if c.Sink.BatchSize < 0 {
		return fmt.Errorf("sink.batch_size must not be negative")
	}

	switch c.Runs.Driver {
	case RunsMemory:
	case RunsNATS:
		if c.Runs.URL == "" {
			return fmt.Errorf("runs.url is required for the nats driver")
		}
	default:
		return fmt.Errorf("runs.driver must be memory or nats, got %q", c.Runs.Driver)
	}

	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Raw
	if other.Raw.Driver != "" {
		c.Raw.Driver = other.Raw.Driver
	}
	if other.Raw.Dir != "" {
		c.Raw.Dir = other.Raw.Dir
	}
	if other.Raw.Bucket != "" {
		c.Raw.Bucket = other.Raw.Bucket
	}
	if other.Raw.Prefix != "" {
		c.Raw.Prefix = other.Raw.Prefix
	}
	if other.Raw.Region != "" {
		c.Raw.Region = other.Raw.Region
	}
	if other.Raw.Endpoint != "" {
		c.Raw.Endpoint = other.Raw.Endpoint
	}
	if other.Raw.PathStyle {
		c.Raw.PathStyle = true
	}

	// Curies and terms merge key by key
	c.Curies = mergeMap(c.Curies, other.Curies)
	c.Terms = mergeMap(c.Terms, other.Terms)

	// Test mode
	if other.TestMode {
		c.TestMode = true
	}
	if len(other.TestIDs.Disease) > 0 {
		c.TestIDs.Disease = other.TestIDs.Disease
	}
	if len(other.TestIDs.Gene) > 0 {
		c.TestIDs.Gene = other.TestIDs.Gene
	}
	if len(other.TestIDs.BioGRID) > 0 {
		c.TestIDs.BioGRID = other.TestIDs.BioGRID
	}
	if other.Limit != 0 {
		c.Limit = other.Limit
	}

	// BioGRID
	if len(other.BioGRID.TaxIDs) > 0 {
		c.BioGRID.TaxIDs = other.BioGRID.TaxIDs
	}
	if len(other.BioGRID.Species) > 0 {
		c.BioGRID.Species = other.BioGRID.Species
	}
	if len(other.BioGRID.GenePrefixes) > 0 {
		c.BioGRID.GenePrefixes = other.BioGRID.GenePrefixes
	}

	// Sink
	if other.Sink.Driver != "" {
		c.Sink.Driver = other.Sink.Driver
	}
	if other.Sink.Path != "" {
		c.Sink.Path = other.Sink.Path
	}
	if other.Sink.URL != "" {
		c.Sink.URL = other.Sink.URL
	}
	if other.Sink.User != "" {
		c.Sink.User = other.Sink.User
	}
	if other.Sink.Password != "" {
		c.Sink.Password = other.Sink.Password
	}
	if other.Sink.DSN != "" {
		c.Sink.DSN = other.Sink.DSN
	}
	if other.Sink.BatchSize != 0 {
		c.Sink.BatchSize = other.Sink.BatchSize
	}

	// Runs
	if other.Runs.Driver != "" {
		c.Runs.Driver = other.Runs.Driver
	}
	if other.Runs.URL != "" {
		c.Runs.URL = other.Runs.URL
	}

	// Metrics and watch
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

func mergeMap(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(over))
	}
	for k, v := range over {
		base[k] = v
	}
	return base
}
