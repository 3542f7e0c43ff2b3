package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "loadmap/common/config"
	"loadmap/internal/blob"
)

// Store drivers for plans and rooms
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Jobs drivers
const (
	JobsMemory = "memory"
	JobsRedis  = "redis"
)

// Config loadmap HTTP API configuration, read from the environment.
type Config struct {
	AppName     string
	Environment string
	HTTP        struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}
	// RulesPath a file path or an http(s) URL
	RulesPath string

	StoreDriver string
	Database    commoncfg.DatabaseConfig
	SQLitePath  string

	JobsDriver string
	Redis      commoncfg.RedisConfig
	JobTTL     time.Duration

	Blob blob.Config

	MQTT struct {
		Enabled    bool
		RoomsTopic string
		commoncfg.MQTTConfig
	}

	SeedDemo bool
}

func Load() *Config {
	cfg := &Config{}
	cfg.AppName = getEnv("APP_NAME", "LoadMap AI")
	cfg.Environment = getEnv("ENVIRONMENT", "dev")
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	cfg.RulesPath = getEnv("RULES_PATH", "rules/asce7-22.yml")

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "loadmap",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "data/loadmap.db")

	cfg.JobsDriver = strings.ToLower(getEnv("JOBS_DRIVER", JobsMemory))
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.JobTTL = time.Duration(parseInt(getEnv("JOB_TTL_HOURS", "24"), 24)) * time.Hour

	cfg.Blob.Driver = blob.Driver(strings.ToLower(getEnv("BLOB_DRIVER", string(blob.DriverMemory))))
	cfg.Blob.Root = getEnv("UPLOAD_DIR", "uploads")
	cfg.Blob.S3 = blob.S3Config{
		Bucket:    getEnv("BLOB_S3_BUCKET", ""),
		Region:    getEnv("BLOB_S3_REGION", "us-east-1"),
		Endpoint:  getEnv("BLOB_S3_ENDPOINT", ""),
		PathStyle: getEnv("BLOB_S3_PATH_STYLE", "false") == "true",
	}

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.RoomsTopic = getEnv("MQTT_ROOMS_TOPIC", "loadmap/rooms")
	cfg.MQTT.MQTTConfig = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "loadmap-api",
		QoS:      1,
	}
	cfg.MQTT.MQTTConfig.LoadFromEnv("MQTT")

	cfg.SeedDemo = getEnv("SEED_DEMO", strconv.FormatBool(cfg.Environment == "dev")) == "true"
	return cfg
}

// Validate rejects unknown drivers before anything is opened.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver)
	}
	switch c.JobsDriver {
	case JobsMemory, JobsRedis:
	default:
		return fmt.Errorf("JOBS_DRIVER: unknown driver %q", c.JobsDriver)
	}
	switch c.Blob.Driver {
	case blob.DriverMemory, blob.DriverFilesystem:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("BLOB_DRIVER: unknown driver %q", c.Blob.Driver)
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("JOB_TTL_HOURS must be > 0")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
