package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-adapters/internal/alphavantage"
	"github.com/felixgeelhaar/mcp-adapters/internal/stockserver"
)

func newStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Serve Alpha Vantage market data tools",
		Long: `Serve get-stock-data, get-daily-stock-data and get-stock-alerts, plus the
stock://{symbol}/{interval} resource. ALPHA_VANTAGE_API_KEY is required.`,
		Args: cobra.NoArgs,
		RunE: runStock,
	}
}

func runStock(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireMarketKey(); err != nil {
		logger.Error("cannot start stock server", zap.Error(err))
		return err
	}

	market := alphavantage.New(cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger.Named("alphavantage")))
	return serve(cmd, stockserver.New(market), cfg, logger)
}
