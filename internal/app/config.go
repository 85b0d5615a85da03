package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mktdata/internal/provider/alpaca"
	"mktdata/internal/provider/binance"
)

const (
	DefaultBlogURL     = "https://blog.coinbase.com/"
	DefaultProductsURL = "https://www.binance.com/exchange-api/v1/public/asset-service/product/get-products"
)

// Config holds application configuration from an optional YAML file and env.
// Env always wins over the file.
type Config struct {
	Alpaca struct {
		KeyID     string `yaml:"key_id"`
		SecretKey string `yaml:"secret_key"`
		DataURL   string `yaml:"data_url"`
	} `yaml:"alpaca"`
	Binance struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"binance"`
	Blog struct {
		URL         string `yaml:"url"`
		ProductsURL string `yaml:"products_url"`
	} `yaml:"blog"`

	DataDir      string        `yaml:"data_dir"`
	SaveFormat   string        `yaml:"save_format"`
	SymbolsFile  string        `yaml:"symbols_file"`
	Workers      int           `yaml:"workers"`
	LogLevel     string        `yaml:"log_level"` // debug | info | warn | error
	LogFile      string        `yaml:"log_file"`
	RateLimitRPS float64       `yaml:"rate_limit_rps"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
}

// LoadConfig reads .env (if present), then CONFIG_FILE (if set), then env.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		DataDir:    "data",
		SaveFormat: "csv",
		Workers:    4,
		LogLevel:   "info",
	}
	cfg.Alpaca.DataURL = alpaca.DefaultDataURL
	cfg.Binance.BaseURL = binance.DefaultBaseURL
	cfg.Blog.URL = DefaultBlogURL
	cfg.Blog.ProductsURL = DefaultProductsURL
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Alpaca.KeyID = getEnv("APCA_API_KEY_ID", c.Alpaca.KeyID)
	c.Alpaca.SecretKey = getEnv("APCA_API_SECRET_KEY", c.Alpaca.SecretKey)
	c.Alpaca.DataURL = getEnv("APCA_API_DATA_URL", c.Alpaca.DataURL)
	c.Binance.APIKey = getEnv("BINANCE_KEY", c.Binance.APIKey)
	c.Binance.BaseURL = getEnv("BINANCE_BASE_URL", c.Binance.BaseURL)
	c.Blog.URL = getEnv("BLOG_URL", c.Blog.URL)
	c.Blog.ProductsURL = getEnv("PRODUCTS_URL", c.Blog.ProductsURL)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.SaveFormat = getEnv("SAVE_FORMAT", c.SaveFormat)
	c.SymbolsFile = getEnv("SYMBOLS_FILE", c.SymbolsFile)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid WORKERS %q", v)
		}
		c.Workers = n
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q", v)
		}
		c.RateLimitRPS = rps
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
