// Package cmd provides the ledgerctl operator commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/core/services"
	"github.com/SscSPs/contractor_ledger/internal/platform/config"
	"github.com/SscSPs/contractor_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/contractor_ledger/pkg/database"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator tools for the contractor ledger",
	Long: `ledgerctl runs maintenance tasks against the contractor ledger database.

Example:
  ledgerctl migrate up
  ledgerctl audit
  ledgerctl balance 6f1c0c1e-... --recompute`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	},
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(balanceCmd)
}

// withServices opens the pool, builds the service container and hands it to fn.
func withServices(ctx context.Context, fn func(*portssvc.ServiceContainer) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool)

	repos := pgsql.NewRepositoryProvider(pool, cfg.TxMaxRetries, cfg.StatementTimeout)
	return fn(services.NewServiceContainer(cfg, repos))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
