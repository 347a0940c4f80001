package config

import "time"

func getDefaultConfig() *ChainstoreConfig {
	return &ChainstoreConfig{
		LogLevel:   "DEBUG",
		LogFormat:  "text",
		Network:    "regtest",
		Db:         getDbConfig(),
		Sync:       getSyncConfig(),
		Prometheus: getPrometheusConfig(),
		Tracing:    getTracingConfig(),
	}
}

func getDbConfig() *DbConfig {
	return &DbConfig{
		Mode: "postgres",
		Postgres: &PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Name:         "chainstore",
			User:         "chainstore",
			Password:     "chainstore",
			MaxIdleConns: 10,
			MaxOpenConns: 80,
			SslMode:      "disable",
		},
		Sqlite: &SqliteConfig{
			Path: "",
		},
	}
}

func getSyncConfig() *SyncConfig {
	return &SyncConfig{
		PollInterval:    10 * time.Second,
		MaxRetryElapsed: time.Minute,
		StatsInterval:   60 * time.Second,
	}
}

func getPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Enabled:  false,
		Endpoint: "/metrics",
		Addr:     ":2112",
	}
}

func getTracingConfig() *TracingConfig {
	return &TracingConfig{
		Enabled:  false,
		DialAddr: "",
		Sample:   100,
	}
}
