// Package config loads pipeline files. A pipeline file has a settings
// table and ordered lists of sources, steps and outputs; the entries of
// those lists are free-form and are interpreted by the component they
// configure. TOML and YAML are both accepted, picked by file extension.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/atlasdatatech/geoframe/dict"
)

// Format is the encoding of a pipeline file.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

const (
	KeyName   = "name"
	KeyType   = "type"
	KeyIn     = "in"
	KeyTable  = "table"
	KeyLayers = "layers"

	DefaultOutputDir = "out"
)

// Config is a parsed pipeline file.
type Config struct {
	// LocationName is where the file was loaded from.
	LocationName string      `toml:"-" yaml:"-"`
	Settings     Settings    `toml:"settings" yaml:"settings"`
	Sources      []dict.Dict `toml:"sources" yaml:"sources"`
	Steps        []dict.Dict `toml:"steps" yaml:"steps"`
	Outputs      []dict.Dict `toml:"outputs" yaml:"outputs"`
}

type Settings struct {
	// AllowEmpty lets steps produce tables without rows.
	AllowEmpty bool `toml:"allow_empty" yaml:"allow_empty"`
	// OutputDir receives rendered artifacts when Publish is not set.
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	// Publish configures a publisher; its type key picks the kind.
	Publish dict.Dict `toml:"publish" yaml:"publish"`
}

// FormatFor picks the format from a file name.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", ErrUnknownFormat{Path: path}
}

// Load reads, parses and validates the pipeline file at path. Relative
// output_dir settings are resolved against the file's directory.
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf, err := Parse(f, format, path)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(conf.Settings.OutputDir) {
		conf.Settings.OutputDir = filepath.Join(filepath.Dir(path), conf.Settings.OutputDir)
	}
	return conf, nil
}

// Parse decodes a pipeline file from r. ${VAR} references are replaced
// with environment values before decoding.
func Parse(r io.Reader, format Format, location string) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err = expandEnv(raw)
	if err != nil {
		return nil, err
	}

	var conf Config
	switch format {
	case TOML:
		if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&conf); err != nil {
			return nil, fmt.Errorf("config: %v: %w", location, err)
		}
	case YAML:
		if err := yaml.Unmarshal(raw, &conf); err != nil {
			return nil, fmt.Errorf("config: %v: %w", location, err)
		}
	default:
		return nil, ErrUnknownFormat{Path: location}
	}
	conf.LocationName = location
	if conf.Settings.OutputDir == "" {
		conf.Settings.OutputDir = DefaultOutputDir
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(raw []byte) ([]byte, error) {
	var missing []string
	out := envRef.ReplaceAllFunc(raw, func(m []byte) []byte {
		name := string(envRef.FindSubmatch(m)[1])
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return m
		}
		return []byte(v)
	})
	if len(missing) > 0 {
		return nil, ErrEnvVar{Names: missing}
	}
	return out, nil
}

// Validate checks that every entry has the keys the runner needs and
// that table names are unique among sources.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources{}
	}
	seen := make(map[string]bool)
	for i, s := range c.Sources {
		name, err := requireString("sources", i, s, KeyName)
		if err != nil {
			return err
		}
		if _, err := requireString("sources", i, s, KeyType); err != nil {
			return err
		}
		if seen[name] {
			return ErrDuplicateName{Section: "sources", Name: name}
		}
		seen[name] = true
	}
	for i, s := range c.Steps {
		if _, err := requireString("steps", i, s, KeyType); err != nil {
			return err
		}
		if _, err := requireString("steps", i, s, KeyIn); err != nil {
			return err
		}
	}
	outputs := make(map[string]bool)
	for i, o := range c.Outputs {
		if _, err := requireString("outputs", i, o, KeyType); err != nil {
			return err
		}
		_, hasTable := o[KeyTable]
		_, hasLayers := o[KeyLayers]
		if hasTable == hasLayers {
			return ErrOutputKind{Index: i}
		}
		if !hasLayers {
			continue
		}
		name, err := requireString("outputs", i, o, KeyName)
		if err != nil {
			return err
		}
		if outputs[name] {
			return ErrDuplicateName{Section: "outputs", Name: name}
		}
		outputs[name] = true
	}
	return nil
}

func requireString(section string, i int, d dict.Dict, key string) (string, error) {
	v, err := d.String(key, nil)
	if err != nil || v == "" {
		return "", ErrMissingField{Section: section, Index: i, Field: key}
	}
	return v, nil
}
