package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// Config regroupe la configuration du worker, résolue une seule fois au
// démarrage. Les drapeaux de la ligne de commande priment sur les variables
// d'environnement, qui priment sur les défauts.
type Config struct {
	LogFile              string
	GlobalCacheDir       string
	TypesRegistryPackage string
	SafeListPath         string
	TypesMapPath         string
	NpmLocation          string // vide: dérivé au bootstrap depuis l'exécutable
	ThrottleLimit        int
	StatusAddr           string // vide: endpoint de statut désactivé
	Version              string
}

func Load() *Config {
	installDir := installDirectory()

	return &Config{
		LogFile:              getEnv("TYPINGS_LOG_FILE", ""),
		GlobalCacheDir:       getEnv("TYPINGS_CACHE_DIR", defaultCacheDir()),
		TypesRegistryPackage: getEnv("TYPINGS_REGISTRY_PACKAGE", "types-registry"),
		SafeListPath:         getEnv("TYPINGS_SAFELIST", filepath.Join(installDir, "safeList.json")),
		TypesMapPath:         getEnv("TYPINGS_TYPESMAP", filepath.Join(installDir, "typesMap.json")),
		NpmLocation:          getEnv("NPM_LOCATION", ""),
		ThrottleLimit:        getEnvInt("TYPINGS_THROTTLE_LIMIT", 5),
		StatusAddr:           getEnv("TYPINGS_STATUS_ADDR", ""),
		Version:              "dev",
	}
}

// installDirectory retourne le répertoire d'installation de l'outil,
// racine des fichiers safelist et type-map par défaut
func installDirectory() string {
	exePath, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exePath)
}

// defaultCacheDir retourne le répertoire de cache global par défaut
func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "typings-worker")
	}
	return filepath.Join(os.TempDir(), "typings-worker")
}

// NormalizeVersion valide la version de build pour le user-agent npm.
// Une version non semver retombe sur "dev".
func NormalizeVersion(version string) string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "dev"
	}
	return v.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
