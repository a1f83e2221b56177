package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Section names a part of Config a binary depends on. Only requested
// sections are validated.
type Section string

const (
	SectionMinIO    Section = "minio"
	SectionKafka    Section = "kafka"
	SectionDatabase Section = "database"
)

// Load reads configuration from defaults, an optional config.yaml and
// AIRPORT_* environment variables, in increasing precedence.
func Load(sections ...Section) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "airports")
	v.SetDefault("minio.region", "")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "airport-objects")
	v.SetDefault("kafka.group_id", "airport-indexer")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("metrics.addr", ":9100")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// AIRPORT_MINIO_ENDPOINT -> minio.endpoint
	v.SetEnvPrefix("AIRPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(sections...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the requested sections and reports every problem at once.
func (c *Config) Validate(sections ...Section) error {
	var errs []string

	for _, s := range sections {
		switch s {
		case SectionMinIO:
			if c.MinIO.Endpoint == "" {
				errs = append(errs, "minio.endpoint is required")
			}
			if c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
				errs = append(errs, "minio.access_key and minio.secret_key are required")
			}
			if c.MinIO.Bucket == "" {
				errs = append(errs, "minio.bucket is required")
			}
		case SectionKafka:
			if len(c.Kafka.Brokers) == 0 {
				errs = append(errs, "kafka.brokers is required")
			}
			if c.Kafka.Topic == "" {
				errs = append(errs, "kafka.topic is required")
			}
			if c.Kafka.GroupID == "" {
				errs = append(errs, "kafka.group_id is required")
			}
		case SectionDatabase:
			if c.Database.URL == "" {
				errs = append(errs, "database.url is required")
			}
			if c.Database.MaxConns <= 0 {
				errs = append(errs, fmt.Sprintf("database.max_conns must be positive, got %d", c.Database.MaxConns))
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown config section %q", s))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
