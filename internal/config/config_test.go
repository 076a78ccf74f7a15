package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvcrn/steepshot-go/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"STEEPSHOT_BASE_URL", "STEEPSHOT_USER_AGENT", "STEEPSHOT_DEFAULT_LIMIT", "STEEPSHOT_RATE_LIMIT"} {
		t.Setenv(k, "")
	}
	// keep a stray .env in the package directory from leaking in
	t.Chdir(t.TempDir())
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steepshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithEnvExpansionAndDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_HOST", "api.example.com")
	path := writeTempConfig(t, `
base_url: https://${API_HOST}/api/v1/
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api/v1/", cfg.BaseURL)
	assert.Equal(t, config.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 1, cfg.RateBurst)
	assert.Zero(t, cfg.RateLimit)
}

func TestLoadNonPositiveLimitFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	for _, limit := range []string{"0", "-10"} {
		t.Run(limit, func(t *testing.T) {
			path := writeTempConfig(t, "base_url: https://api.example.com/\ndefault_limit: "+limit+"\n")
			cfg, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, config.DefaultLimit, cfg.DefaultLimit)
		})
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
base_url: https://file.example.com/
default_limit: 5
`)
	t.Setenv("STEEPSHOT_BASE_URL", "http://localhost:8000/api/v1/")
	t.Setenv("STEEPSHOT_DEFAULT_LIMIT", "25")
	t.Setenv("STEEPSHOT_RATE_LIMIT", "2.5")
	t.Setenv("STEEPSHOT_USER_AGENT", "cli/1.0")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1/", cfg.BaseURL)
	assert.Equal(t, 25, cfg.DefaultLimit)
	assert.InDelta(t, 2.5, cfg.RateLimit, 0.0001)
	assert.Equal(t, "cli/1.0", cfg.UserAgent)
}

func TestLoadWithoutFileUsesEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("STEEPSHOT_BASE_URL", "https://api.example.com/")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/", cfg.BaseURL)
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set, even when empty
	require.NoError(t, os.Unsetenv("STEEPSHOT_BASE_URL"))
	require.NoError(t, os.WriteFile(".env", []byte("STEEPSHOT_BASE_URL=https://dotenv.example.com/\n"), 0o600))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com/", cfg.BaseURL)
}

func TestLoadFailures(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		env     map[string]string
		errText string
	}{
		{name: "missing base url", content: "user_agent: x\n", errText: "base_url is required"},
		{name: "relative base url", content: "base_url: /api/v1\n", errText: "base_url is invalid"},
		{name: "non http scheme", content: "base_url: ftp://example.com/\n", errText: "http/https"},
		{name: "negative rate", content: "base_url: https://example.com/\nrate_limit: -1\n", errText: "rate_limit"},
		{name: "bad yaml", content: "base_url: [\n", errText: "parse yaml"},
		{
			name:    "bad env limit",
			content: "base_url: https://example.com/\n",
			env:     map[string]string{"STEEPSHOT_DEFAULT_LIMIT": "ten"},
			errText: "STEEPSHOT_DEFAULT_LIMIT",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeTempConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadWithBaseURLOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STEEPSHOT_BASE_URL", "https://env.example.com/")

	cfg, err := config.Load("", config.WithBaseURL("http://127.0.0.1:9999/api/v1/"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/api/v1/", cfg.BaseURL)
}

func TestLoadWithBaseURLStillValidates(t *testing.T) {
	clearEnv(t)
	_, err := config.Load("", config.WithBaseURL("ftp://example.com/"))
	assert.Error(t, err)
}
