package config

import (
	"fmt"
	"time"
)

type ChainstoreConfig struct {
	LogLevel   string            `mapstructure:"logLevel" yaml:"logLevel"`
	LogFormat  string            `mapstructure:"logFormat" yaml:"logFormat"`
	Network    string            `mapstructure:"network" yaml:"network"`
	Db         *DbConfig         `mapstructure:"db" yaml:"db"`
	Sync       *SyncConfig       `mapstructure:"sync" yaml:"sync"`
	Prometheus *PrometheusConfig `mapstructure:"prometheus" yaml:"prometheus"`
	Tracing    *TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
}

type DbConfig struct {
	// Mode is postgres or sqlite.
	Mode     string          `mapstructure:"mode" yaml:"mode"`
	Postgres *PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Sqlite   *SqliteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Name         string `mapstructure:"name" yaml:"name"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	MaxIdleConns int    `mapstructure:"maxIdleConns" yaml:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns" yaml:"maxOpenConns"`
	SslMode      string `mapstructure:"sslMode" yaml:"sslMode"`
}

func (p *PostgresConfig) DBInfo() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		p.User, p.Password, p.Name, p.Host, p.Port, p.SslMode)
}

type SqliteConfig struct {
	// Path of the database file. Empty keeps the chain in memory.
	Path string `mapstructure:"path" yaml:"path"`
}

type SyncConfig struct {
	PollInterval    time.Duration `mapstructure:"pollInterval" yaml:"pollInterval"`
	MaxRetryElapsed time.Duration `mapstructure:"maxRetryElapsed" yaml:"maxRetryElapsed"`
	StatsInterval   time.Duration `mapstructure:"statsInterval" yaml:"statsInterval"`
}

type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
}

func (p *PrometheusConfig) IsEnabled() bool {
	return p != nil && p.Enabled && p.Addr != "" && p.Endpoint != ""
}

type TracingConfig struct {
	Enabled    bool              `mapstructure:"enabled" yaml:"enabled"`
	DialAddr   string            `mapstructure:"dialAddr" yaml:"dialAddr"`
	Sample     int               `mapstructure:"sample" yaml:"sample"`
	Attributes map[string]string `mapstructure:"attributes" yaml:"attributes,omitempty"`
}

func (t *TracingConfig) IsEnabled() bool {
	return t != nil && t.Enabled
}
