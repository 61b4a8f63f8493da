package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	DataStore DataStoreConfig `yaml:"datastore"`
	JWT       JWTConfig       `yaml:"jwt"`
	LDAP      LDAPConfig      `yaml:"ldap"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// DataStoreConfig selects where system_users and available_versions live.
// The sql backend reuses the Database connection; the rest backend talks to
// a PostgREST-compatible service.
type DataStoreConfig struct {
	Backend string        `yaml:"backend"` // sql, rest
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

type LDAPConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BaseDN       string `yaml:"base_dn"`
	BindDN       string `yaml:"bind_dn"`
	BindPassword string `yaml:"bind_password"`
	UserFilter   string `yaml:"user_filter"`
	UseSSL       bool   `yaml:"use_ssl"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// TracingConfig enables OTLP/HTTP export of data store spans.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "lvepanel.db",
		},
		DataStore: DataStoreConfig{
			Backend: "sql",
			Timeout: 15 * time.Second,
		},
		JWT: JWTConfig{
			Secret:     "lvepanel-secret-key-change-in-production",
			ExpireHour: 24,
		},
		LDAP: LDAPConfig{
			Enabled:    false,
			Port:       389,
			UserFilter: "(uid=%s)",
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			ServiceName: "lvepanel",
			Insecure:    true,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if backend := os.Getenv("DATASTORE_BACKEND"); backend != "" {
		c.DataStore.Backend = backend
	}
	if url := os.Getenv("DATASTORE_URL"); url != "" {
		c.DataStore.URL = url
	}
	if key := os.Getenv("DATASTORE_API_KEY"); key != "" {
		c.DataStore.APIKey = key
	}
	if timeout := os.Getenv("DATASTORE_TIMEOUT_SECONDS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.DataStore.Timeout = time.Duration(secs) * time.Second
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		c.Tracing.Endpoint = endpoint
	}
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		c.Tracing.ServiceName = name
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
