package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/output"
	"github.com/jonandersen/schwab/pkg/contract"
	"github.com/jonandersen/schwab/pkg/schwab"
)

// accountsOptions holds dependencies for the accounts command.
type accountsOptions struct {
	client         clientFunc
	mode           func() output.Mode
	defaultAccount func() string
}

// newAccountsCmd creates the accounts command with the given options.
func newAccountsCmd(opts accountsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "View account balances and positions",
		Long: `View your Schwab accounts, their balances and positions.

Examples:
  schwab accounts                      # Balances of every linked account
  schwab accounts numbers              # Account numbers and their hashes
  schwab accounts positions            # Positions across all accounts
  schwab accounts positions -a HASH    # Positions of one account`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountList(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(newAccountNumbersCmd(opts))
	cmd.AddCommand(newPositionsCmd(opts))

	return cmd
}

func runAccountList(cmd *cobra.Command, opts accountsOptions) error {
	client, err := opts.client()
	if err != nil {
		return err
	}

	accounts, err := client.GetAccounts(cmd.Context(), "")
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No accounts found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.mode())
	headers := []string{"Account", "Type", "Liquidation Value", "Cash", "Buying Power", "Day Trader"}
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		sa := a.SecuritiesAccount
		rows = append(rows, []string{
			sa.AccountNumber,
			sa.Type,
			output.FormatMoney(sa.CurrentBalances.LiquidationValue),
			output.FormatMoney(sa.CurrentBalances.CashBalance),
			output.FormatMoney(sa.CurrentBalances.BuyingPower),
			fmt.Sprintf("%t", sa.IsDayTrader),
		})
	}

	return formatter.Table(headers, rows)
}

func newAccountNumbersCmd(opts accountsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "numbers",
		Short: "List account numbers and their hashes",
		Long: `List plain account numbers with the hash values that other
account calls take in place of the number.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			numbers, err := client.GetAccountNumbers(cmd.Context())
			if err != nil {
				return err
			}

			formatter := output.New(cmd.OutOrStdout(), opts.mode())
			rows := make([][]string, 0, len(numbers))
			for _, n := range numbers {
				rows = append(rows, []string{n.AccountNumber, n.HashValue})
			}
			return formatter.Table([]string{"Account", "Hash"}, rows)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func newPositionsCmd(opts accountsOptions) *cobra.Command {
	var accountHash string

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "View positions",
		Long: `View positions with a signed quantity (long minus short). Option
positions also show the expiry and strike parsed from their symbol.

Uses the default account from config if --account is not specified, and
every account if neither is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountHash == "" && opts.defaultAccount != nil {
				accountHash = opts.defaultAccount()
			}
			return runPositions(cmd, opts, accountHash)
		},
	}

	cmd.Flags().StringVarP(&accountHash, "account", "a", "", "Account hash (see 'schwab accounts numbers')")
	cmd.SilenceUsage = true

	return cmd
}

func runPositions(cmd *cobra.Command, opts accountsOptions, accountHash string) error {
	client, err := opts.client()
	if err != nil {
		return err
	}

	var accounts []schwab.Account
	if accountHash != "" {
		account, err := client.GetAccount(cmd.Context(), accountHash, schwab.FieldsPositions)
		if err != nil {
			return err
		}
		accounts = []schwab.Account{*account}
	} else {
		accounts, err = client.GetAccounts(cmd.Context(), schwab.FieldsPositions)
		if err != nil {
			return err
		}
	}

	positions := contract.Positions(accounts)
	if len(positions) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No positions")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.mode())
	if formatter.Mode == output.ModeJSON {
		return formatter.Print(positions)
	}
	return formatter.Render(contract.PositionsTable(positions))
}

// configuredAccount returns the default account hash from config, or "".
func configuredAccount() string {
	rt, err := loadRuntime()
	if err != nil {
		return ""
	}
	return rt.cfg.DefaultAccount
}

func init() {
	rootCmd.AddCommand(newAccountsCmd(accountsOptions{
		client:         productionClient,
		mode:           GetOutputMode,
		defaultAccount: configuredAccount,
	}))
}
