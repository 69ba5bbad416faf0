// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

var configEnvVars = []string{
	"TYPINGS_LOG_FILE", "TYPINGS_CACHE_DIR", "TYPINGS_REGISTRY_PACKAGE",
	"TYPINGS_SAFELIST", "TYPINGS_TYPESMAP", "NPM_LOCATION",
	"TYPINGS_THROTTLE_LIMIT", "TYPINGS_STATUS_ADDR",
}

// clearConfigEnv nettoie l'environnement et le restaure en fin de test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	oldValues := make(map[string]string)
	for _, key := range configEnvVars {
		oldValues[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for key, value := range oldValues {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	})
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := Load()

	assert.Empty(t, cfg.LogFile)
	assert.NotEmpty(t, cfg.GlobalCacheDir)
	assert.Equal(t, "types-registry", cfg.TypesRegistryPackage)
	assert.Equal(t, "safeList.json", filepath.Base(cfg.SafeListPath))
	assert.Equal(t, "typesMap.json", filepath.Base(cfg.TypesMapPath))
	assert.Empty(t, cfg.NpmLocation)
	assert.Equal(t, 5, cfg.ThrottleLimit)
	assert.Empty(t, cfg.StatusAddr)
	assert.Equal(t, "dev", cfg.Version)
}

func TestConfigLoadWithEnvVars(t *testing.T) {
	clearConfigEnv(t)

	os.Setenv("TYPINGS_LOG_FILE", "/var/log/ti.log")
	os.Setenv("TYPINGS_CACHE_DIR", "/custom/cache")
	os.Setenv("NPM_LOCATION", "/usr/local/bin/npm")
	os.Setenv("TYPINGS_THROTTLE_LIMIT", "10")
	os.Setenv("TYPINGS_STATUS_ADDR", "127.0.0.1:9515")

	cfg := Load()

	assert.Equal(t, "/var/log/ti.log", cfg.LogFile)
	assert.Equal(t, "/custom/cache", cfg.GlobalCacheDir)
	assert.Equal(t, "/usr/local/bin/npm", cfg.NpmLocation)
	assert.Equal(t, 10, cfg.ThrottleLimit)
	assert.Equal(t, "127.0.0.1:9515", cfg.StatusAddr)
}

func TestConfigInvalidThrottleLimitFallsBack(t *testing.T) {
	clearConfigEnv(t)

	os.Setenv("TYPINGS_THROTTLE_LIMIT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5, cfg.ThrottleLimit)
}

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", NormalizeVersion("1.2.3"))
	assert.Equal(t, "1.2.3", NormalizeVersion("v1.2.3"))
	assert.Equal(t, "2.0.0-beta.1", NormalizeVersion("2.0.0-beta.1"))
	assert.Equal(t, "dev", NormalizeVersion("dev"))
	assert.Equal(t, "dev", NormalizeVersion(""))
}
