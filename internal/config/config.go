package config

import (
	"fmt"
	"os"

	"github.com/screenwerk/signage/internal/domain"
)

type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	RedisURL        string
	LogLevel        string
	LogFormat       string
	MediaBaseURL    string
	MediaSigningKey string
	Tables          domain.TableRoles
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		MediaBaseURL:    getEnv("MEDIA_BASE_URL", ""),
		MediaSigningKey: getEnv("MEDIA_SIGNING_KEY", ""),
		Tables: domain.TableRoles{
			Layouts:      getEnv("LAYOUTS_TABLE", "layouts"),
			GridItems:    getEnv("GRID_ITEMS_TABLE", "grid_items"),
			ScheduledAds: getEnv("SCHEDULED_ADS_TABLE", "scheduled_ads"),
			Ads:          getEnv("ADS_TABLE", "ads"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	// Media config: both must be set together
	if cfg.MediaBaseURL != "" || cfg.MediaSigningKey != "" {
		if cfg.MediaBaseURL == "" {
			return nil, fmt.Errorf("MEDIA_BASE_URL is required when MEDIA_SIGNING_KEY is set")
		}
		if cfg.MediaSigningKey == "" {
			return nil, fmt.Errorf("MEDIA_SIGNING_KEY is required when MEDIA_BASE_URL is set")
		}
		if len(cfg.MediaSigningKey) < 16 {
			return nil, fmt.Errorf("MEDIA_SIGNING_KEY must be at least 16 characters")
		}
	}

	if err := validateTables(cfg.Tables); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateTables rejects an empty or duplicated table-role mapping at
// startup, so an unmapped table fails fast instead of silently producing
// unknownUpdate at runtime.
func validateTables(t domain.TableRoles) error {
	names := map[string]string{
		"LAYOUTS_TABLE":       t.Layouts,
		"GRID_ITEMS_TABLE":    t.GridItems,
		"SCHEDULED_ADS_TABLE": t.ScheduledAds,
		"ADS_TABLE":           t.Ads,
	}
	seen := make(map[string]string, len(names))
	for envVar, name := range names {
		if name == "" {
			return fmt.Errorf("%s must not be empty", envVar)
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s map to the same table %q", prev, envVar, name)
		}
		seen[name] = envVar
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
