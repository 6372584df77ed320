package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Env          string `yaml:"env"`
		ReadTimeout  int    `yaml:"read_timeout"`  // seconds
		WriteTimeout int    `yaml:"write_timeout"` // seconds
	} `yaml:"server"`

	Database struct {
		Driver      string `yaml:"driver"` // memory, postgres, mysql, sqlite
		DSN         string `yaml:"url"`
		AutoMigrate bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"`        // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		UseSSL     bool   `yaml:"use_ssl"`     // For S3/R2
		PublicRead bool   `yaml:"public_read"` // Make files public
	} `yaml:"storage"`

	Upload struct {
		MaxSize            int64    `yaml:"max_size"`             // bytes
		AllowedExtensions  []string `yaml:"allowed_extensions"`   // lower case, with dot
		AvatarMaxDimension int      `yaml:"avatar_max_dimension"` // pixels, 0 disables resizing
		ImageQuality       int      `yaml:"image_quality"`        // JPEG quality (1-100)
	} `yaml:"upload"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Default returns a configuration that runs without any file: in-memory
// store, local uploads under ./static/uploads.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "development"
	cfg.Server.ReadTimeout = 15
	cfg.Server.WriteTimeout = 15

	cfg.Database.Driver = DriverMemory
	cfg.Database.AutoMigrate = true

	cfg.JWT.Secret = "dev-secret-change-me"
	cfg.JWT.TTL = 30

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./static/uploads"
	cfg.Storage.BaseURL = "/static/uploads"

	cfg.Upload.MaxSize = 5 * 1024 * 1024 // 5MB
	cfg.Upload.AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	cfg.Upload.AvatarMaxDimension = 512
	cfg.Upload.ImageQuality = 85

	cfg.CORS.AllowedOrigins = []string{"*"}

	return &cfg
}

// LoadConfig reads CONFIG_PATH (default config/config.yaml) over the
// defaults and then applies environment overrides. A missing file is not an
// error; a malformed one is.
func LoadConfig() (*Config, error) {
	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if err := loadFile(configPath, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
		// A URL without an explicit driver means the default relational store.
		if os.Getenv("DATABASE_DRIVER") == "" && cfg.Database.Driver == DriverMemory {
			cfg.Database.Driver = DriverPostgres
		}
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_TTL_MINUTES"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL_MINUTES %q: %w", v, err)
		}
		cfg.JWT.TTL = ttl
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres, DriverMySQL, DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if !c.IsDevelopment() && c.JWT.Secret == Default().JWT.Secret {
		return errors.New("jwt.secret must be changed outside development")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be positive")
	}

	for i, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Upload.AllowedExtensions[i] = ext
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "test"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
