package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	DBPath  string        `yaml:"db_path"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Workers WorkersConfig `yaml:"workers"`
}

// CatalogConfig configures the RAWG client.
type CatalogConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	PageSize int           `yaml:"page_size"`
	Ordering string        `yaml:"ordering"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// AuthConfig configures password storage.
type AuthConfig struct {
	PasswordHash string `yaml:"password_hash"` // "bcrypt" or "plain"
	BcryptCost   int    `yaml:"bcrypt_cost"`
}

// WorkersConfig sizes the background worker pool.
type WorkersConfig struct {
	IO int `yaml:"io"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DBPath: "gameshelf.db",
		Catalog: CatalogConfig{
			BaseURL:  "https://api.rawg.io/api",
			PageSize: 20,
			Ordering: "-rating",
			Timeout:  15 * time.Second,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			TokenTTL: 72 * time.Hour,
		},
		Auth: AuthConfig{
			PasswordHash: "bcrypt",
			BcryptCost:   12,
		},
		Workers: WorkersConfig{
			IO: 4,
		},
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		".gameshelf.yaml",
		".gameshelf.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "gameshelf", "config.yaml"),
			filepath.Join(home, ".config", "gameshelf", "config.yml"),
			filepath.Join(home, ".gameshelf.yaml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: env > explicit path > GAMESHELF_CONFIG > search paths > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("GAMESHELF_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if err := cfg.loadFromFile(p); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvOverrides() {
	if dbPath := os.Getenv("GAMESHELF_DB"); dbPath != "" {
		c.DBPath = dbPath
	}
	if key := os.Getenv("RAWG_API_KEY"); key != "" {
		c.Catalog.APIKey = key
	}
	if addr := os.Getenv("GAMESHELF_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if secret := os.Getenv("GAMESHELF_JWT_SECRET"); secret != "" {
		c.Server.JWTSecret = secret
	}
	if level := os.Getenv("GAMESHELF_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetDBPath returns the database path, applying defaults.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return "gameshelf.db"
}

// GetPageSize returns the catalog page size, applying defaults.
func (c *Config) GetPageSize() int {
	if c.Catalog.PageSize > 0 {
		return c.Catalog.PageSize
	}
	return 20
}

// GetIOWorkers returns the size of the background worker pool.
func (c *Config) GetIOWorkers() int {
	if c.Workers.IO > 0 {
		return c.Workers.IO
	}
	return 4
}

// Example returns a commented example configuration file.
func Example() string {
	return `# gameshelf configuration
db_path: gameshelf.db

catalog:
  base_url: https://api.rawg.io/api
  api_key: ""          # or set RAWG_API_KEY
  page_size: 20
  ordering: -rating    # -rating, popularity, -added, name
  timeout: 15s

logging:
  format: text         # text or json
  level: info
  file: ""             # the TUI logs here; empty discards

server:
  addr: :8080
  jwt_secret: ""       # or set GAMESHELF_JWT_SECRET
  token_ttl: 72h

auth:
  password_hash: bcrypt
  bcrypt_cost: 12

workers:
  io: 4
`
}
