//go:build wireinject
// +build wireinject

package main

import (
	"log/slog"

	"github.com/google/wire"

	"mktdata/internal/app"
	"mktdata/internal/blog"
	"mktdata/internal/provider/alpaca"
	"mktdata/internal/provider/binance"
	"mktdata/internal/saver"
)

// InitializeAlpaca builds the Alpaca source. Fails when credentials are missing.
func InitializeAlpaca(cfg *app.Config, logger *slog.Logger) (*alpaca.Source, error) {
	wire.Build(app.TransportSet, app.ProvideAlpacaSource)
	return nil, nil
}

// InitializeBinance builds the Binance klines source.
func InitializeBinance(cfg *app.Config, logger *slog.Logger) *binance.Source {
	wire.Build(app.TransportSet, app.ProvideBinanceSource)
	return nil
}

// InitializeSaver picks the TableSaver for cfg.SaveFormat.
func InitializeSaver(cfg *app.Config) (saver.TableSaver, error) {
	wire.Build(app.ProvideTableSaver)
	return nil, nil
}

// InitializeScraper builds the blog miner on the shared transport.
func InitializeScraper(cfg *app.Config, logger *slog.Logger) *blog.Scraper {
	wire.Build(app.TransportSet, app.ProvideRenderer, app.ProvideScraper)
	return nil
}
