package cmd

import (
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/spf13/cobra"
)

var recompute bool

var balanceCmd = &cobra.Command{
	Use:   "balance <accountID>",
	Short: "Print the cached balance of an account",
	Long: `Print the cached balance of an account. With --recompute the balance
is also rebuilt from the transaction log and the drift is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().BoolVar(&recompute, "recompute", false, "recompute from the transaction log")
}

func runBalance(cmd *cobra.Command, args []string) error {
	accountID := args[0]
	return withServices(cmd.Context(), func(c *portssvc.ServiceContainer) error {
		balance, err := c.Ledger.GetBalance(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		resp := dto.AccountBalanceResponse{AccountID: accountID, Balance: balance}
		if recompute {
			recomputed, err := c.Ledger.RecomputeBalance(cmd.Context(), accountID)
			if err != nil {
				return err
			}
			drift := balance.Sub(recomputed)
			resp.Recomputed = &recomputed
			resp.Drift = &drift
		}
		return printJSON(cmd.OutOrStdout(), resp)
	})
}
