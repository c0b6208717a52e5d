package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
	"github.com/antoniopresto/wasm-validator/internal/fs"
	"github.com/antoniopresto/wasm-validator/internal/validator"
)

// ConfigFile is looked up in the working directory when no other location
// is given.
const ConfigFile = "jsv.yml"

// Environment variables read by New.
const (
	EnvConfigPath = "JSV_CONFIG"
	EnvMaskValues = "JSV_MASK_VALUES"
)

// Server defaults.
const (
	DefaultAddr         = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	DefaultCacheSize    = 128
)

const DefaultConfigContent = `# jsv configuration

# MASKING
#
# When true, issue messages never contain values or property names taken from
# the validated document. Paths and codes are unaffected. The JSV_MASK_VALUES
# environment variable overrides this setting.
maskValues: false

# DEFAULT JSON SCHEMA VERSION
#
# Used for schemas that do not declare $schema. Supported versions:
# - http://json-schema.org/draft-04/schema#
# - http://json-schema.org/draft-06/schema#
# - http://json-schema.org/draft-07/schema#
# - https://json-schema.org/draft/2019-09/schema
# - https://json-schema.org/draft/2020-12/schema (Default)
defaultJsonSchemaVersion: "https://json-schema.org/draft/2020-12/schema"

# KEYWORD BEHAVIOUR
#
# format is checked by default. contentEncoding, contentMediaType and
# contentSchema are annotations unless assertContent is true.
assertFormat: true
assertContent: false

# Upper bound for a single pattern match, as a duration. 0s removes the bound.
regexTimeout: 1s

# Documents validated in parallel by 'jsv validate'. 0 means one per CPU.
workers: 0

server:
  addr: ":8080"
  readTimeout: 10s
  writeTimeout: 10s
  maxBodyBytes: 1048576
  cacheSize: 128 # compiled schemas kept for /v1/schemas
`

// ServerConfig configures 'jsv serve'.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	CacheSize    int           `yaml:"cacheSize"`
}

type Config struct {
	MaskValues               bool            `yaml:"maskValues"`
	DefaultJSONSchemaVersion validator.Draft `yaml:"defaultJsonSchemaVersion"`
	AssertFormat             *bool           `yaml:"assertFormat"`
	AssertContent            bool            `yaml:"assertContent"`
	RegexTimeout             *time.Duration  `yaml:"regexTimeout"`
	Workers                  int             `yaml:"workers"`
	Server                   ServerConfig    `yaml:"server"`

	// Path is the file the configuration was read from. It is empty when no
	// file was found and defaults apply.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// New locates, reads and validates the configuration. explicit is the
// value of --config and may be empty. Then the JSV_CONFIG variable is
// consulted, then jsv.yml in workDir. A file named explicitly or through
// JSV_CONFIG must exist; a missing jsv.yml in workDir means defaults.
func New(explicit string, env fs.EnvProvider, workDir string, compiler validator.Compiler) (*Config, error) {
	path, err := Find(explicit, env, workDir)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg = Default()
	} else if cfg, err = Load(path); err != nil {
		return nil, err
	}

	if err = cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err = cfg.Validate(compiler); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with the environment overrides applied. Hosts
// without a file system, such as the browser build, use it instead of New.
func FromEnv(env fs.EnvProvider, compiler validator.Compiler) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(compiler); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the configuration file to read, or "" when none applies.
func Find(explicit string, env fs.EnvProvider, workDir string) (string, error) {
	for _, p := range []string{explicit, env.Get(EnvConfigPath)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return "", &MissingConfigError{Path: p}
			}
			return "", err
		}
		return p, nil
	}

	p := filepath.Join(workDir, ConfigFile)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return p, nil
}

// Load reads the configuration file at path. Unknown properties are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingConfigError{Path: path}
		}
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}
	cfg.Path = path
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DefaultJSONSchemaVersion == "" {
		c.DefaultJSONSchemaVersion = validator.DefaultDraft
	}
	if c.AssertFormat == nil {
		assert := true
		c.AssertFormat = &assert
	}
	if c.RegexTimeout == nil {
		d := validator.DefaultRegexTimeout
		c.RegexTimeout = &d
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.CacheSize == 0 {
		c.Server.CacheSize = DefaultCacheSize
	}
}

func (c *Config) applyEnv(env fs.EnvProvider) error {
	if v := env.Get(EnvMaskValues); v != "" {
		mask, err := strconv.ParseBool(v)
		if err != nil {
			return &InvalidEnvValueError{Name: EnvMaskValues, Value: v}
		}
		c.MaskValues = mask
	}
	return nil
}

// Validate checks the values that cannot be expressed through the YAML types.
func (c *Config) Validate(compiler validator.Compiler) error {
	supported := compiler.SupportedSchemaVersions()
	if !slices.Contains(supported, c.DefaultJSONSchemaVersion) {
		return &InvalidDefaultJSONSchemaVersionError{
			Value:     string(c.DefaultJSONSchemaVersion),
			Supported: supported,
		}
	}
	if c.RegexTimeout != nil && *c.RegexTimeout < 0 {
		return &InvalidValueError{Property: "regexTimeout", Value: c.RegexTimeout.String(), Reason: "must not be negative"}
	}
	if c.Workers < 0 {
		return &InvalidValueError{Property: "workers", Value: strconv.Itoa(c.Workers), Reason: "must not be negative"}
	}
	if c.Server.MaxBodyBytes < 0 {
		return &InvalidValueError{
			Property: "server.maxBodyBytes",
			Value:    strconv.FormatInt(c.Server.MaxBodyBytes, 10),
			Reason:   "must not be negative",
		}
	}
	if c.Server.CacheSize < 0 {
		return &InvalidValueError{
			Property: "server.cacheSize",
			Value:    strconv.Itoa(c.Server.CacheSize),
			Reason:   "must not be negative",
		}
	}
	return nil
}

// WorkerCount is the number of documents validated in parallel.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// DiagnosticsOptions converts the configuration into compile options.
func (c *Config) DiagnosticsOptions() []diagnostics.Option {
	opts := []diagnostics.Option{
		diagnostics.WithMaskValues(c.MaskValues),
		diagnostics.WithDraft(c.DefaultJSONSchemaVersion),
		diagnostics.WithAssertContent(c.AssertContent),
	}
	if c.AssertFormat != nil {
		opts = append(opts, diagnostics.WithAssertFormat(*c.AssertFormat))
	}
	if c.RegexTimeout != nil {
		opts = append(opts, diagnostics.WithRegexTimeout(*c.RegexTimeout))
	}
	return opts
}
