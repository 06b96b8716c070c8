package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcp "github.com/felixgeelhaar/mcp-adapters"
	"github.com/felixgeelhaar/mcp-adapters/internal/config"
	"github.com/felixgeelhaar/mcp-adapters/internal/logging"
	"github.com/felixgeelhaar/mcp-adapters/server"
	"github.com/felixgeelhaar/mcp-adapters/transport"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcp-adapters",
		Short: "MCP servers for Alpha Vantage market data and an LLM-graded question bank",
		Long: `mcp-adapters runs one of two MCP tool servers:

  stock  Alpha Vantage time series and price movement alerts
  quiz   a question bank whose answers are graded by a language model

Configuration comes from flags, the environment and an optional .env file.`,
		SilenceUsage: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newStockCmd(), newQuizCmd())
	return root
}

// setup loads the configuration and builds the process logger.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// serve runs srv until the command context is canceled. Stdio uses the
// command's input and output streams.
func serve(cmd *cobra.Command, srv *server.Server, cfg config.Config, logger *zap.Logger) error {
	info := srv.Info()
	logger.Info("starting server",
		zap.String("server", info.Name),
		zap.String("version", info.Version),
		zap.String("transport", cfg.Serve.Transport),
		zap.String("addr", cfg.Serve.Addr))

	err := mcp.Serve(cmd.Context(), srv,
		mcp.TransportConfig{Kind: cfg.Serve.Transport, Addr: cfg.Serve.Addr, SessionIdle: cfg.Serve.SessionIdle},
		mcp.WithLogger(logging.NewAdapter(logger)),
		mcp.WithStdio(transport.WithStdin(cmd.InOrStdin()), transport.WithStdout(cmd.OutOrStdout())),
	)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		logger.Error("server stopped", zap.String("server", info.Name), zap.Error(err))
		return err
	}
	logger.Info("server stopped", zap.String("server", info.Name))
	return nil
}
