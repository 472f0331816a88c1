package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every env tag below
const EnvPrefix = "BGRS_"

// Catalog sources
const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Config structure represents the server configuration
type Config struct {
	Server struct {
		Host        string `yaml:"host" env:"SERVER_HOST"`
		Port        string `yaml:"port" env:"SERVER_PORT"`
		WriteWait   string `yaml:"write_wait" env:"SERVER_WRITE_WAIT"`
		IdleTimeout string `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
		SendBuffer  int    `yaml:"send_buffer" env:"SERVER_SEND_BUFFER"`
	} `yaml:"server"`

	Ops struct {
		Enabled bool   `yaml:"enabled" env:"OPS_ENABLED"`
		Host    string `yaml:"host" env:"OPS_HOST"`
		Port    string `yaml:"port" env:"OPS_PORT"`
		Mode    string `yaml:"mode" env:"OPS_MODE"`
		// TrustedProxies may set X-Forwarded-For; comma separated in the environment
		TrustedProxies []string `yaml:"trusted_proxies" env:"OPS_TRUSTED_PROXIES"`
	} `yaml:"ops"`

	Catalog struct {
		Source string `yaml:"source" env:"CATALOG_SOURCE"`
		Path   string `yaml:"path" env:"CATALOG_PATH"`
		Table  string `yaml:"table" env:"CATALOG_TABLE"`
	} `yaml:"catalog"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Auth struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
	} `yaml:"auth"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	envApplied []string
}

// EnvOverrides lists the environment variables that overrode the file, in field order
func (c *Config) EnvOverrides() []string {
	return c.envApplied
}

// LoadConfig loads configuration from a file and environment variables. A missing
// file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Host = "0.0.0.0"
	config.Server.Port = "7777"
	config.Server.WriteWait = "10s"
	config.Server.IdleTimeout = "0s"
	config.Server.SendBuffer = 64

	// Ops API defaults
	config.Ops.Enabled = false
	config.Ops.Host = "127.0.0.1"
	config.Ops.Port = "8080"
	config.Ops.Mode = "release"

	// Catalog defaults
	config.Catalog.Source = CatalogSourceFile
	config.Catalog.Path = "Courses.txt"
	config.Catalog.Table = "courses"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "bgrs"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 1
	config.Database.MaxOpenConns = 4
	config.Database.ConnMaxLifetime = "1h"

	// Auth defaults
	config.Auth.BcryptCost = 10

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "bgrs"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	o := &envOverrides{prefix: EnvPrefix}
	if err := o.apply(config); err != nil {
		return err
	}
	config.envApplied = o.applied
	return nil
}

// Validate ensures that the configuration is consistent. It runs after loading and
// again after command-line overrides.
func (c *Config) Validate() error {
	if err := validatePort("server port", c.Server.Port); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Server.WriteWait); err != nil {
		return fmt.Errorf("invalid server write wait: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.IdleTimeout); err != nil {
		return fmt.Errorf("invalid server idle timeout: %w", err)
	}

	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required for the file source")
		}
	case CatalogSourcePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres source")
		}
		if c.Catalog.Table == "" {
			return fmt.Errorf("catalog table is required for the postgres source")
		}
		if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	if c.Ops.Enabled {
		if err := validatePort("ops port", c.Ops.Port); err != nil {
			return err
		}
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT secret is required when the ops API is enabled")
		}
	}
	if _, err := time.ParseDuration(c.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}

	return nil
}

func validatePort(name, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid %s %q", name, port)
	}
	return nil
}

// ServerAddress returns the address the BGRS listener binds to
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// OpsAddress returns the address the ops API binds to
func (c *Config) OpsAddress() string {
	return net.JoinHostPort(c.Ops.Host, c.Ops.Port)
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
