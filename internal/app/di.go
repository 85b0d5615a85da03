package app

import (
	"fmt"
	"log/slog"

	"github.com/google/wire"

	"mktdata/internal/blog"
	"mktdata/internal/provider/alpaca"
	"mktdata/internal/provider/binance"
	"mktdata/internal/saver"
	"mktdata/internal/transport"
)

// TransportSet provides the shared HTTP client for every source.
var TransportSet = wire.NewSet(
	ProvideTransport,
	wire.Bind(new(transport.Getter), new(*transport.Client)),
)

// ProvideConfig loads config from .env, CONFIG_FILE and environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvideTransport creates the rate-limited HTTP client (for Wire).
func ProvideTransport(cfg *Config, logger *slog.Logger) *transport.Client {
	return transport.New(transport.Options{
		Timeout:      cfg.HTTPTimeout,
		RateLimitRPS: cfg.RateLimitRPS,
		Logger:       logger,
	})
}

// ProvideAlpacaSource creates the stock bars source (for Wire).
// Returns error if credentials are missing.
func ProvideAlpacaSource(cfg *Config, client transport.Getter) (*alpaca.Source, error) {
	return alpaca.NewSource(alpaca.Config{
		KeyID:     cfg.Alpaca.KeyID,
		SecretKey: cfg.Alpaca.SecretKey,
		DataURL:   cfg.Alpaca.DataURL,
	}, client)
}

// ProvideBinanceSource creates the klines source (for Wire).
func ProvideBinanceSource(cfg *Config, client transport.Getter) *binance.Source {
	return binance.NewSource(binance.Config{
		APIKey:  cfg.Binance.APIKey,
		BaseURL: cfg.Binance.BaseURL,
	}, client)
}

// ProvideTableSaver creates TableSaver from config (for Wire).
// Returns error if SaveFormat is not supported.
func ProvideTableSaver(cfg *Config) (saver.TableSaver, error) {
	s := saver.NewTableSaver(cfg.SaveFormat)
	if s == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: csv, parquet, json)", cfg.SaveFormat)
	}
	return s, nil
}

// ProvideRenderer creates the page renderer used by the blog miner (for Wire).
func ProvideRenderer(client transport.Getter) blog.Renderer {
	return blog.HTTPRenderer{Client: client}
}

// ProvideScraper creates the blog miner (for Wire).
func ProvideScraper(cfg *Config, r blog.Renderer, client transport.Getter, logger *slog.Logger) *blog.Scraper {
	return blog.NewScraper(blog.Config{
		BlogURL:     cfg.Blog.URL,
		ProductsURL: cfg.Blog.ProductsURL,
	}, r, client, logger)
}
