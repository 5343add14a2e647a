// Package config loads and validates the yaml configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration for both binaries; the apiserver
// ignores the workers section and the worker ignores the server section.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Server  ServerConfig   `mapstructure:"server"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Eric    EricConfig     `mapstructure:"eric"`
	Queue   QueueConfig    `mapstructure:"queue"`
	Workers []WorkerConfig `mapstructure:"workers"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxWait         time.Duration `mapstructure:"max_wait"` // upper bound for ?wait=N
}

// MySQLConfig holds the database settings.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds the notification channel settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig holds the queue connection settings.
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// EricConfig holds the transmission bridge settings.
type EricConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Testmerker bool          `mapstructure:"testmerker"` // default submission mode
}

// QueueConfig holds publishing settings shared by the API side.
type QueueConfig struct {
	Name string        `mapstructure:"name"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// WorkerConfig describes one worker instance.
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig tunes the pull side of a worker.
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`
	Rate         time.Duration `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TTR          time.Duration `mapstructure:"ttr"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// ProcessorConfig tunes the processing side of a worker.
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`
	BufferSize int           `mapstructure:"buffer_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load reads the yaml file at configPath.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the fields both binaries depend on.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	return nil
}

// ValidateServer checks the apiserver-only fields.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Queue.Name == "" {
		return fmt.Errorf("queue.name is required")
	}
	return nil
}

// ValidateWorker checks the worker-only fields.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Eric.Endpoint == "" {
		return fmt.Errorf("eric.endpoint is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}
