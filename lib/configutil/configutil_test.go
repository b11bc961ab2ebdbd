package configutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Debug    bool              `json:"debug"`
	Name     string            `json:"name"`
	Interval int               `json:"interval"`
	Labels   map[string]string `json:"labels"`
}

type validatedConfig struct {
	Name string `json:"name"`
}

func (c *validatedConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("config", "tgnvoda.local.json5"), LocalName(filepath.Join("config", "tgnvoda.json5")))
	require.Equal(t, filepath.Join("config", "tgnvoda.local"), LocalName(filepath.Join("config", "tgnvoda")))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json5"), `{
		// comments and trailing commas are fine in json5
		name: "base",
		interval: 1800,
		labels: {a: "1"},
	}`)
	writeFile(t, filepath.Join(dir, "app.local.json5"), `{debug: true, name: "local"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.True(t, config.Debug)
	require.Equal(t, "local", config.Name)
	require.Equal(t, 1800, config.Interval)
	require.Equal(t, map[string]string{"a": "1"}, config.Labels)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigValidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json5"), `{name: ""}`)

	_, err := ReadConfig[validatedConfig](filepath.Join(dir, "app.json5"))
	require.ErrorContains(t, err, "name is required")
}
