package config

import (
	"io"
	"io/ioutil"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"
)

const (
	DefaultPlaceholder     = 242
	DefaultBlocks          = "GeoLiteCity-Blocks.csv"
	DefaultLocations       = "GeoLiteCity-Location.csv"
	DefaultOverrides       = "geoip-manual"
	DefaultAutomaticOutput = "Automatic-GeoLiteCity-Blocks.csv"
	DefaultManualOutput    = "Manual-GeoLiteCity-Blocks.csv"
	DefaultCacheSize       = 1024
)

// ErrInvalidPlaceholder is returned if placeholder block number is not
// a non-negative integer.
var ErrInvalidPlaceholder = errors.New("Placeholder has to be a non-negative integer")

type InputConfig struct {
	Blocks    string
	Locations string
	Overrides string
}

type OutputConfig struct {
	Automatic string
	Manual    string
}

type LookupConfig struct {
	CacheSize int `toml:"cache_size"`
}

type Config struct {
	Placeholder int
	Input       InputConfig
	Output      OutputConfig
	Lookup      LookupConfig
}

// PlaceholderClassifier returns placeholder block number as it is
// written in blocks file.
func (c *Config) PlaceholderClassifier() string {
	return strconv.Itoa(c.Placeholder)
}

// SetPlaceholder parses and sets placeholder block number.
func (c *Config) SetPlaceholder(value string) error {
	num, err := strconv.Atoi(value)
	if err != nil || num < 0 {
		return errors.Annotatef(ErrInvalidPlaceholder, "Incorrect value %q", value)
	}

	c.Placeholder = num

	return nil
}

// Default returns configuration with all default values.
func Default() *Config {
	return &Config{
		Placeholder: DefaultPlaceholder,
		Input: InputConfig{
			Blocks:    DefaultBlocks,
			Locations: DefaultLocations,
			Overrides: DefaultOverrides,
		},
		Output: OutputConfig{
			Automatic: DefaultAutomaticOutput,
			Manual:    DefaultManualOutput,
		},
		Lookup: LookupConfig{
			CacheSize: DefaultCacheSize,
		},
	}
}

// Parse reads TOML configuration. Absent keys keep their default values.
func Parse(file io.Reader) (*Config, error) {
	conf := Default()

	buf, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot read config file")
	}

	if _, err := toml.Decode(string(buf), conf); err != nil {
		return nil, errors.Annotate(err, "Cannot parse config file")
	}

	if err = conf.Validate(); err != nil {
		return nil, errors.Annotate(err, "Invalid value")
	}

	return conf, nil
}

// Validate checks that configuration is usable.
func (c *Config) Validate() error {
	if c.Placeholder < 0 {
		return errors.Annotatef(ErrInvalidPlaceholder, "Incorrect value %d", c.Placeholder)
	}

	if c.Input.Blocks == "" {
		return errors.New("Path to blocks file is empty")
	}
	if c.Input.Locations == "" {
		return errors.New("Path to locations file is empty")
	}

	if c.Output.Automatic == "" || c.Output.Manual == "" {
		return errors.New("Output path is empty")
	}
	if c.Output.Automatic == c.Output.Manual {
		return errors.Errorf("Both outputs point to the same file %s", c.Output.Manual)
	}

	if c.Lookup.CacheSize <= 0 {
		return errors.Errorf("Incorrect cache size %d", c.Lookup.CacheSize)
	}

	return nil
}
