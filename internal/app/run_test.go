package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/fs"
)

// runFixture is a directory holding a configuration file, a schema and two
// documents, one valid and one not.
type runFixture struct {
	dir     string
	schema  string
	valid   string
	invalid string
	env     fs.MapEnvProvider
}

func newRunFixture(t *testing.T) runFixture {
	t.Helper()
	dir := t.TempDir()

	f := runFixture{
		dir:     dir,
		schema:  writeFile(t, dir, "person.schema.json", personSchema),
		valid:   writeFile(t, dir, "ann.json", `{"name": "Ann", "age": 30}`),
		invalid: writeFile(t, dir, "bart.yaml", "name: Bartholomew Jr\nage: 12\n"),
	}
	cfgPath := writeFile(t, dir, config.ConfigFile, config.DefaultConfigContent)
	f.env = fs.MapEnvProvider{
		config.EnvConfigPath: cfgPath,
		LogEnvVar:            filepath.Join(dir, LogFile),
	}
	return f
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		var stdout bytes.Buffer
		err := Run(context.Background(), []string{"jsv", "--help"}, &stdout, io.Discard, f.env)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "jsv validates JSON and YAML documents")
	})

	t.Run("invalid command", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		var stderr bytes.Buffer
		err := Run(context.Background(), []string{"jsv", "invalid-command"}, io.Discard, &stderr, f.env)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Error:")
	})

	t.Run("missing configuration", func(t *testing.T) {
		t.Parallel()
		env := fs.MapEnvProvider{config.EnvConfigPath: "/non/existent/jsv.yml"}
		err := Run(context.Background(), []string{"jsv", "codes"}, io.Discard, io.Discard, env)
		var target *config.MissingConfigError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "/non/existent/jsv.yml", target.Path)
	})

	t.Run("invalid mask variable", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		f.env[config.EnvMaskValues] = "sometimes"
		err := Run(context.Background(), []string{"jsv", "codes"}, io.Discard, io.Discard, f.env)
		var target *config.InvalidEnvValueError
		require.ErrorAs(t, err, &target)
	})

	t.Run("codes", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		var stdout bytes.Buffer
		err := Run(context.Background(), []string{"jsv", "codes"}, &stdout, io.Discard, f.env)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "missing_property\n")
		assert.Contains(t, stdout.String(), "invalid_schema\n")
	})

	t.Run("validate valid document", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		var stdout bytes.Buffer
		args := []string{"jsv", "validate", "--nocolour", "-s", f.schema, f.valid}
		err := Run(context.Background(), args, &stdout, io.Discard, f.env)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "1 valid, 0 invalid, 0 unreadable")
	})

	t.Run("validate invalid document", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		var stdout, stderr bytes.Buffer
		args := []string{"jsv", "validate", "-c", "-s", f.schema, f.valid, f.invalid}
		err := Run(context.Background(), args, &stdout, &stderr, f.env)

		var target *ValidationFailedError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 1, target.Invalid)
		assert.Contains(t, stdout.String(), `"Bartholomew Jr" is longer than 10 characters`)
		assert.Contains(t, stderr.String(), "Error: validation failed: 1 invalid, 0 unreadable")
	})

	t.Run("mask values from the environment", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		f.env[config.EnvMaskValues] = "true"
		var stdout bytes.Buffer
		args := []string{"jsv", "validate", "-c", "-s", f.schema, f.invalid}
		err := Run(context.Background(), args, &stdout, io.Discard, f.env)
		require.Error(t, err)
		assert.Contains(t, stdout.String(), "value is longer than 10 characters")
		assert.NotContains(t, stdout.String(), "Bartholomew")
	})

	t.Run("writes the log file", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		args := []string{"jsv", "-d", "check-schema", f.schema}
		require.NoError(t, Run(context.Background(), args, io.Discard, io.Discard, f.env))

		data, err := os.ReadFile(f.env[LogEnvVar])
		require.NoError(t, err)
		assert.Contains(t, string(data), "checking schema")
	})

	t.Run("unwritable log file", func(t *testing.T) {
		t.Parallel()
		f := newRunFixture(t)
		f.env[LogEnvVar] = filepath.Join(f.dir, "missing", "dir", LogFile)
		var stdout, stderr bytes.Buffer
		args := []string{"jsv", "check-schema", f.schema}
		require.NoError(t, Run(context.Background(), args, &stdout, &stderr, f.env))
		assert.Contains(t, stderr.String(), "logging to file disabled")
		assert.Contains(t, stdout.String(), "is valid")
	})

	t.Run("nil env", func(t *testing.T) {
		t.Parallel()
		var stdout bytes.Buffer
		err := Run(context.Background(), []string{"jsv", "--help"}, &stdout, io.Discard, nil)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
	})

	t.Run("init", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		var stdout bytes.Buffer
		err := Run(context.Background(), []string{"jsv", "init", dir}, &stdout, io.Discard, fs.MapEnvProvider{})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, config.ConfigFile))
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
