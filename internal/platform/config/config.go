package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Auth          AuthConfig          `mapstructure:"auth"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Opportunities OpportunitiesConfig `mapstructure:"opportunities"`
	Categories    []CategorySeed      `mapstructure:"categories"`
	Storage       StorageConfig       `mapstructure:"storage"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // development or production
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Debug() bool {
	return s.Mode == "development"
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

type AuthConfig struct {
	BcryptCost       int  `mapstructure:"bcrypt_cost"`
	AllowAdminSignup bool `mapstructure:"allow_admin_signup"`
}

type RateLimitConfig struct {
	AuthPerMinute int `mapstructure:"auth_per_minute"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type OpportunitiesConfig struct {
	DefaultImageURL string `mapstructure:"default_image_url"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
}

type CategorySeed struct {
	Name        string `mapstructure:"nome"`
	Description string `mapstructure:"descricao"`
}

type StorageConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	Region       string        `mapstructure:"region"`
	Bucket       string        `mapstructure:"bucket"`
	AccessKey    string        `mapstructure:"access_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Prefix       string        `mapstructure:"prefix"`
	UsePathStyle bool          `mapstructure:"path_style"`
	UploadExpiry time.Duration `mapstructure:"upload_expiry"`
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// DefaultCategories are seeded when the config file does not list any.
var DefaultCategories = []CategorySeed{
	{Name: "Tecnologia", Description: "Oportunidades na área de tecnologia e TI"},
	{Name: "Marketing", Description: "Oportunidades na área de marketing digital"},
	{Name: "Design", Description: "Oportunidades na área de design e UX/UI"},
	{Name: "Educação", Description: "Oportunidades na área de educação e ensino"},
	{Name: "Saúde", Description: "Oportunidades na área de saúde e bem-estar"},
	{Name: "Voluntariado", Description: "Trabalho voluntário e causas sociais"},
	{Name: "Estágio", Description: "Oportunidades de estágio para estudantes"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "production")
	v.SetDefault("server.public_url", "http://localhost:3000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "file:data/oportunidades.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "oportunidades")

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.allow_admin_signup", false)

	v.SetDefault("rate_limit.auth_per_minute", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "logs/api.log")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("opportunities.default_image_url", "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=800")
	v.SetDefault("opportunities.default_page_size", 20)
	v.SetDefault("opportunities.max_page_size", 100)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.base_url", "")
	v.SetDefault("storage.path_style", false)
	v.SetDefault("storage.prefix", "oportunidades")
	v.SetDefault("storage.upload_expiry", 15*time.Minute)
}

// Load reads an optional .env file, then the YAML file at path, then the
// environment (JWT_SECRET overrides jwt.secret). A missing config file is
// not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if len(config.Categories) == 0 {
		config.Categories = DefaultCategories
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required (set JWT_SECRET)")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return errors.New("jwt.access_token_ttl must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Opportunities.DefaultPageSize <= 0 || c.Opportunities.MaxPageSize <= 0 {
		return errors.New("opportunities page sizes must be positive")
	}
	if c.Opportunities.DefaultPageSize > c.Opportunities.MaxPageSize {
		return errors.New("opportunities.default_page_size exceeds max_page_size")
	}
	return nil
}
