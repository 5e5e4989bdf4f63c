package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. Credential presence is not
// validated here: each feature checks the values it needs right before use
// and reports a configuration error, so a partially configured deployment
// can still run the features it has keys for.
type Config struct {
	App         App         `mapstructure:"app"`
	News        News        `mapstructure:"news"`
	Completion  Completion  `mapstructure:"completion"`
	Storage     Storage     `mapstructure:"storage"`
	SearchIndex SearchIndex `mapstructure:"search_index"`
	Cache       Cache       `mapstructure:"cache"`
	Server      Server      `mapstructure:"server"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// News holds news provider credentials and defaults.
type News struct {
	NewsAPIKey        string `mapstructure:"newsapi_key"`
	NaverClientID     string `mapstructure:"naver_client_id"`
	NaverClientSecret string `mapstructure:"naver_client_secret"`
	MaxResults        int    `mapstructure:"max_results"`
	Timeout           string `mapstructure:"timeout"`
}

// Completion holds the chat-completion service connection parameters.
type Completion struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	APIVersion  string  `mapstructure:"api_version"`
	Deployment  string  `mapstructure:"deployment"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     string  `mapstructure:"timeout"`
}

// Storage holds the blob-storage connection for document uploads.
type Storage struct {
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
}

// SearchIndex holds the document search index connection parameters.
type SearchIndex struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Index      string `mapstructure:"index"`
	Indexer    string `mapstructure:"indexer"`
	APIVersion string `mapstructure:"api_version"`
	Timeout    string `mapstructure:"timeout"`
}

// Cache holds cache configuration.
type Cache struct {
	Directory string `mapstructure:"directory"`
	TTL       TTL    `mapstructure:"ttl"`
}

// TTL holds cache lifetimes per content type.
type TTL struct {
	News        string `mapstructure:"news"`
	Documents   string `mapstructure:"documents"`
	Completions string `mapstructure:"completions"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORS          `mapstructure:"cors"`
}

// CORS holds CORS configuration for the API server.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var globalConfig *Config

// Load loads configuration from .env, an optional YAML config file and
// environment variables, in that order of increasing precedence.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists (local development convenience).
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".axinsight")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".axinsight-cache")

	viper.SetDefault("news.max_results", 5)
	viper.SetDefault("news.timeout", "20s")

	viper.SetDefault("completion.api_version", "2024-08-01-preview")
	viper.SetDefault("completion.temperature", 0.2)
	viper.SetDefault("completion.timeout", "60s")

	viper.SetDefault("storage.container", "docs")

	viper.SetDefault("search_index.api_version", "2023-11-01")
	viper.SetDefault("search_index.timeout", "20s")

	viper.SetDefault("cache.directory", ".axinsight-cache")
	viper.SetDefault("cache.ttl.news", "1h")
	viper.SetDefault("cache.ttl.documents", "10m")
	viper.SetDefault("cache.ttl.completions", "1h")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})
}

// bindEnvironmentVariables wires the environment variable names the
// original deployment uses to their config keys.
func bindEnvironmentVariables() {
	bindEnvKeys("news.newsapi_key", []string{"NEWSAPI_KEY"})
	bindEnvKeys("news.naver_client_id", []string{"NAVER_CLIENT_ID"})
	bindEnvKeys("news.naver_client_secret", []string{"NAVER_CLIENT_SECRET"})

	bindEnvKeys("completion.endpoint", []string{"AZURE_OPENAI_ENDPOINT"})
	bindEnvKeys("completion.api_key", []string{"AZURE_OPENAI_API_KEY"})
	bindEnvKeys("completion.api_version", []string{"AZURE_OPENAI_API_VERSION"})
	bindEnvKeys("completion.deployment", []string{"AZURE_OPENAI_DEPLOYMENT"})

	bindEnvKeys("storage.connection_string", []string{"AZURE_STORAGE_CONN"})
	bindEnvKeys("storage.container", []string{"AZURE_BLOB_CONTAINER"})

	bindEnvKeys("search_index.endpoint", []string{"AZURE_SEARCH_ENDPOINT"})
	bindEnvKeys("search_index.api_key", []string{"AZURE_SEARCH_KEY"})
	bindEnvKeys("search_index.index", []string{"AZURE_SEARCH_INDEX"})
	bindEnvKeys("search_index.indexer", []string{"AZURE_SEARCH_INDEXER"})
	bindEnvKeys("search_index.api_version", []string{"AZURE_SEARCH_API_VERSION"})
}

// bindEnvKeys binds the first set environment variable from the list to the
// config key.
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			return
		}
	}
}

// TimeoutOrDefault parses a duration string, falling back to def on error
// or empty input.
func TimeoutOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
