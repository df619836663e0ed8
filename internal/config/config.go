package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStorageDriver        = errors.New("unknown storage driver")
)

// Storage drivers.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`     // current application environment (local, dev, production etc)
	TelegramAPIToken string  `mapstructure:"-"`       // Telegram API token loaded from environment, optional
	Storage          Storage `mapstructure:"storage"` // which record store serves queries
	Data             Data    `mapstructure:"data"`    // flat table locations
	Query            Query   `mapstructure:"query"`   // query classification settings
	HTTP             HTTP    `mapstructure:"http"`    // web transport
	DB               DB      `mapstructure:"database"`
}

// Storage selects the record store backend.
type Storage struct {
	Driver string `mapstructure:"driver"` // csv or postgres
}

// Data describes the CSV tables.
type Data struct {
	Dir               string `mapstructure:"dir"`                // directory holding the tables
	MasterFile        string `mapstructure:"master_file"`        // master question table
	CollectionPattern string `mapstructure:"collection_pattern"` // fmt pattern for collection tables
	MasterHasHeader   bool   `mapstructure:"master_has_header"`  // first master row is a header
	Preload           bool   `mapstructure:"preload"`            // read every table at startup
	PreloadWorkers    int    `mapstructure:"preload_workers"`    // parallel reads during preload
}

// Query contains classification parameters.
type Query struct {
	OriginPrefix string `mapstructure:"origin_prefix"` // site whose collection URLs are recognised
}

// HTTP contains web server parameters.
type HTTP struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`       // directory with index.html and assets
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // graceful stop budget
}

// Addr returns host:port.
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Pick up a local .env file if there is one.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("storage.driver", DriverCSV)
	v.SetDefault("data.dir", "happyread")
	v.SetDefault("data.master_file", "book_all.csv")
	v.SetDefault("data.collection_pattern", "Book_%d.csv")
	v.SetDefault("data.master_has_header", true)
	v.SetDefault("data.preload", false)
	v.SetDefault("data.preload_workers", 8)
	v.SetDefault("query.origin_prefix", "https://happyread.kh.edu.tw/")
	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 5000)
	v.SetDefault("http.static_dir", "web")
	v.SetDefault("http.shutdown_timeout", "5s")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverCSV:
	case DriverPostgres:
		if c.DB.URL == "" {
			return ErrMissingEnvironmentVariables
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, c.Storage.Driver)
	}

	return nil
}
