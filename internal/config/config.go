// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // minutes
}

// LoadDBConfig reads PostgreSQL settings from DB_* environment variables.
func LoadDBConfig() (*DBConfig, error) {
	cfg := &DBConfig{
		Host:            getEnv("DB_HOST", "postgres"),
		User:            getEnv("DB_USER", "nimbus"),
		Password:        getEnv("DB_PASSWORD", "nimbus"),
		Name:            getEnv("DB_NAME", "nimbus_db"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
		Port:            getEnvInt("DB_PORT", 5432),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}
	return cfg, nil
}

// DSN builds a PostgreSQL connection string from the config.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// DSQLConfig holds Aurora DSQL connection settings. DSQL authenticates with
// short-lived IAM tokens instead of a static password.
type DSQLConfig struct {
	Endpoint string
	Region   string
	Database string
	User     string
}

// LoadDSQLConfig reads DSQL settings from DSQL_* environment variables.
func LoadDSQLConfig() (*DSQLConfig, error) {
	cfg := &DSQLConfig{
		Endpoint: getEnv("DSQL_ENDPOINT", ""),
		Region:   getEnv("DSQL_REGION", "us-west-2"),
		Database: getEnv("DSQL_DATABASE", "postgres"),
		User:     getEnv("DSQL_USER", "admin"),
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("invalid DSQL config: DSQL_ENDPOINT must be set")
	}
	return cfg, nil
}

// BedrockConfig holds the Bedrock model and knowledge base identifiers.
type BedrockConfig struct {
	Region          string
	ModelID         string
	VisionModelID   string
	KnowledgeBaseID string
}

// LoadBedrockConfig reads Bedrock settings from the environment.
func LoadBedrockConfig() *BedrockConfig {
	return &BedrockConfig{
		Region:          getEnv("BEDROCK_REGION", "us-west-2"),
		ModelID:         getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		VisionModelID:   getEnv("BEDROCK_VISION_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		KnowledgeBaseID: getEnv("KNOWLEDGE_BASE_ID", ""),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
