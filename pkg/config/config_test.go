package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OJP_API_KEY", "")
	t.Setenv("OJP_V2_ENDPOINT", "")
	t.Setenv("DEFAULT_REQUESTOR_REF", "")
	t.Setenv("DEFAULT_TIMEOUT", "")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, config.Endpoint)
	assert.Equal(t, DefaultRequestorRef, config.RequestorRef)
	assert.Equal(t, DefaultTimeoutSeconds, config.TimeoutSeconds)
	assert.Equal(t, 30*time.Second, config.Timeout())
	assert.Empty(t, config.APIKey)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("OJP_API_KEY", "secret-key")
	t.Setenv("OJP_V2_ENDPOINT", "https://example.org/ojp")
	t.Setenv("DEFAULT_REQUESTOR_REF", "my-app")
	t.Setenv("DEFAULT_TIMEOUT", "5")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret-key", config.APIKey)
	assert.Equal(t, "https://example.org/ojp", config.Endpoint)
	assert.Equal(t, "my-app", config.RequestorRef)
	assert.Equal(t, 5*time.Second, config.Timeout())
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("DEFAULT_TIMEOUT", "soon")

	_, err := Load("")
	assert.ErrorContains(t, err, "DEFAULT_TIMEOUT")
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("OJP_API_KEY", "")
	t.Setenv("OJP_V2_ENDPOINT", "")
	t.Setenv("DEFAULT_REQUESTOR_REF", "")
	t.Setenv("DEFAULT_TIMEOUT", "")

	path := filepath.Join(t.TempDir(), "ojpilot.yaml")
	contents := []byte("api_key: file-key\nendpoint: https://staging.example.org/ojp20\ntimeout_seconds: 10\n")
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", config.APIKey)
	assert.Equal(t, "https://staging.example.org/ojp20", config.Endpoint)
	// Value not present in the file keeps its default.
	assert.Equal(t, DefaultRequestorRef, config.RequestorRef)
	assert.Equal(t, 10, config.TimeoutSeconds)
}

func TestEnvironmentBeatsConfigFile(t *testing.T) {
	t.Setenv("OJP_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "ojpilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\n"), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.APIKey)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := &Config{Endpoint: DefaultEndpoint, RequestorRef: "ref", TimeoutSeconds: 1}
	assert.NoError(t, valid.Validate())

	noEndpoint := &Config{RequestorRef: "ref", TimeoutSeconds: 1}
	assert.ErrorContains(t, noEndpoint.Validate(), "endpoint")

	badEndpoint := &Config{Endpoint: "not a url", RequestorRef: "ref", TimeoutSeconds: 1}
	assert.Error(t, badEndpoint.Validate())

	badTimeout := &Config{Endpoint: DefaultEndpoint, RequestorRef: "ref", TimeoutSeconds: 0}
	assert.ErrorContains(t, badTimeout.Validate(), "timeout_seconds")
}
