package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// LRU cache settings
	TideLRUSize    int
	TideTTLMinutes int

	// DynamoDB persistent layer settings
	DynamoTTLMinutes  int
	EnableDynamoCache bool
}

const (
	// Default values
	defaultTideLRUSize    = 512
	defaultTideTTLMinutes = 10
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		TideLRUSize:       getEnvInt("CACHE_TIDE_LRU_SIZE", defaultTideLRUSize),
		TideTTLMinutes:    getEnvInt("CACHE_TIDE_TTL_MINUTES", defaultTideTTLMinutes),
		DynamoTTLMinutes:  getEnvInt("CACHE_DYNAMO_TTL_MINUTES", defaultTideTTLMinutes),
		EnableDynamoCache: getEnvBool("CACHE_ENABLE_DYNAMO", false),
	}

	log.Debug().
		Int("TideLRUSize", config.TideLRUSize).
		Int("TideTTLMinutes", config.TideTTLMinutes).
		Int("DynamoTTLMinutes", config.DynamoTTLMinutes).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Msg("Cache configuration loaded")

	return config
}

// Helper methods for the CacheConfig struct
func (c *CacheConfig) GetTideTTL() time.Duration {
	return time.Duration(c.TideTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetDynamoTTL() time.Duration {
	return time.Duration(c.DynamoTTLMinutes) * time.Minute
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
