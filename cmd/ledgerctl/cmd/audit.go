package cmd

import (
	"errors"
	"log/slog"

	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/spf13/cobra"
)

var failOnFindings bool

var errFindings = errors.New("reconciliation audit reported findings")

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the reconciliation audit and print the report",
	Long: `Run every reconciliation check once and print the report as JSON.
Nothing is repaired.

Example:
  ledgerctl audit --fail-on-findings`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&failOnFindings, "fail-on-findings", false, "exit non-zero when the report is not clean")
}

func runAudit(cmd *cobra.Command, args []string) error {
	return withServices(cmd.Context(), func(c *portssvc.ServiceContainer) error {
		report, err := c.Audit.RunAudit(cmd.Context())
		if err != nil {
			return err
		}
		resp := dto.ToAuditResponse(report)
		slog.Debug("Audit completed", "findings", resp.FindingCount)
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if failOnFindings && !resp.Clean {
			return errFindings
		}
		return nil
	})
}
