package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port         int
	DatabaseURL  string
	IdentitySalt string
}

// fileConfig is the shape of the optional TOML config file
type fileConfig struct {
	Server struct {
		Port int `toml:"port"`
	} `toml:"server"`

	Database struct {
		URL string `toml:"url"`
	} `toml:"database"`

	Auth struct {
		IdentitySalt string `toml:"identity_salt"`
	} `toml:"auth"`
}

// ParseFlags resolves configuration from flags, environment variables,
// and an optional TOML config file, in that precedence order.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var configPath string

	fs := flag.NewFlagSet("messvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&configPath, "c", "", "Path to TOML config file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IdentitySalt, "identity-salt", "", "Identity key salt shared with the identity provider (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.IdentitySalt == "" {
		cfg.IdentitySalt = os.Getenv("IDENTITY_SALT")
	}
	if configPath == "" {
		configPath = os.Getenv("MESSVOTE_CONFIG")
	}

	// Fall back to the config file for anything still unset
	if configPath != "" {
		fc, err := loadConfigFile(configPath)
		if err != nil {
			return Config{}, err
		}
		if cfg.Port == 0 {
			cfg.Port = fc.Server.Port
		}
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = fc.Database.URL
		}
		if cfg.IdentitySalt == "" {
			cfg.IdentitySalt = fc.Auth.IdentitySalt
		}
	}

	if cfg.Port == 0 {
		cfg.Port = 3320 // default
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d, DATABASE_URL env, or config file)")
	}
	if cfg.IdentitySalt == "" {
		return Config{}, errors.New("IDENTITY_SALT required")
	}

	return cfg, nil
}

func loadConfigFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return fc, nil
}
