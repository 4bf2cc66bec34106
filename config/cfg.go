package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	IncludeConfig struct {
		Unwrap   bool `yaml:"unwrap"`
		MaxDepth int  `yaml:"max_depth" validate:"gte=0"`
	}

	ViewportConfig struct {
		Width      float64 `yaml:"width" validate:"gt=0"`
		Height     float64 `yaml:"height" validate:"gt=0"`
		LineHeight float64 `yaml:"line_height" validate:"gt=0"`
	}

	FetchConfig struct {
		Timeout     time.Duration     `yaml:"timeout" validate:"gte=0"`
		Concurrency int64             `yaml:"concurrency" validate:"min=1"`
		MaxSize     int64             `yaml:"max_size" validate:"gte=0"`
		UserAgent   string            `yaml:"user_agent"`
		AuthToken   SecretString      `yaml:"auth_token,omitempty"`
		Headers     map[string]string `yaml:"headers,omitempty" validate:"dive,keys,required,endkeys"`
		AllowFile   bool              `yaml:"allow_file"`
	}

	ServeConfig struct {
		Listen  string `yaml:"listen" validate:"required,hostname_port"`
		Release bool   `yaml:"release"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Include   IncludeConfig  `yaml:"include"`
		Viewport  ViewportConfig `yaml:"viewport"`
		Fetch     FetchConfig    `yaml:"fetch"`
		Serve     ServeConfig    `yaml:"serve"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads configuration from the file at the given path,
// puts its values on top of expanded configuration template which provides
// defaults and validates the result. Empty path means defaults only.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
