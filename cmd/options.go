package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/export"
	"github.com/jonandersen/schwab/internal/output"
	"github.com/jonandersen/schwab/pkg/chain"
	"github.com/jonandersen/schwab/pkg/schwab"
)

// dateLayout is the format of every date flag.
const dateLayout = "2006-01-02"

// optionsOptions holds dependencies for the options command.
type optionsOptions struct {
	client clientFunc
	mode   func() output.Mode
}

// newOptionsCmd creates the options command with the given options.
func newOptionsCmd(opts optionsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "View option expirations and chains",
		Long: `View option expirations and chains for an underlying.

Examples:
  schwab options expirations AAPL
  schwab options chain AAPL --from 2024-06-21
  schwab options chain SPY --from 2024-06-21 --to 2024-07-19 --strikes 20
  schwab options chain AAPL --out aapl.parquet`,
	}

	cmd.AddCommand(newExpirationsCmd(opts))
	cmd.AddCommand(newChainCmd(opts))

	return cmd
}

func newExpirationsCmd(opts optionsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expirations SYMBOL",
		Short: "List option expiration dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := requireArg(args, "symbol")
			if err != nil {
				return err
			}
			return runExpirations(cmd, opts, strings.ToUpper(symbol))
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runExpirations(cmd *cobra.Command, opts optionsOptions, symbol string) error {
	client, err := opts.client()
	if err != nil {
		return err
	}

	exp, err := client.GetExpirationChain(cmd.Context(), symbol)
	if err != nil && !errors.Is(err, schwab.ErrEmptyResult) {
		return err
	}
	if len(exp.ExpirationList) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No expirations found for %s\n", symbol)
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.mode())
	headers := []string{"Expiration", "Days", "Type", "Standard"}
	rows := make([][]string, 0, len(exp.ExpirationList))
	for _, e := range exp.ExpirationList {
		rows = append(rows, []string{
			e.ExpirationDate,
			strconv.Itoa(e.DaysToExpiration),
			e.ExpirationType,
			strconv.FormatBool(e.Standard),
		})
	}
	return formatter.Table(headers, rows)
}

func newChainCmd(opts optionsOptions) *cobra.Command {
	var (
		from, to     string
		contractType string
		strikes      int
		outPath      string
		allColumns   bool
	)

	cmd := &cobra.Command{
		Use:   "chain SYMBOL",
		Short: "View an option chain, one row per expiration and strike",
		Long: `View an option chain with the call and put at each strike side by side.

Only strikes listed on both sides appear. Implied volatility is shown as a
fraction and intrinsic value is never negative. With --out the full chain
is written to a file whose extension picks the format (csv, json, parquet).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := requireArg(args, "symbol")
			if err != nil {
				return err
			}

			params := schwab.ChainParams{
				Symbol:       strings.ToUpper(symbol),
				ContractType: strings.ToUpper(contractType),
				StrikeCount:  strikes,
			}
			if params.FromDate, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if params.ToDate, err = parseDateFlag("to", to); err != nil {
				return err
			}
			return runChain(cmd, opts, params, outPath, allColumns)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First expiration to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last expiration to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&contractType, "type", "", "Contract type: CALL, PUT or ALL")
	cmd.Flags().IntVar(&strikes, "strikes", 0, "Number of strikes around the money")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the flattened chain to a file (.csv, .json, .parquet)")
	cmd.Flags().BoolVar(&allColumns, "all", false, "Show every column")
	cmd.SilenceUsage = true

	return cmd
}

func runChain(cmd *cobra.Command, opts optionsOptions, params schwab.ChainParams, outPath string, allColumns bool) error {
	var saver export.Saver
	if outPath != "" {
		s, err := export.ForPath(outPath)
		if err != nil {
			return err
		}
		saver = s
	}

	client, err := opts.client()
	if err != nil {
		return err
	}

	rows, err := chain.Fetch(cmd.Context(), client, params, client.Logger)
	if errors.Is(err, schwab.ErrEmptyResult) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No option chain found for %s\n", params.Symbol)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to flatten option chain: %w", err)
	}

	if saver != nil {
		if err := saver.Save(rows, outPath); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(rows), outPath)
		return nil
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No strikes quoted on both sides for %s\n", params.Symbol)
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.mode())
	if formatter.Mode == output.ModeJSON {
		return formatter.Print(rows)
	}

	t := rows.Table()
	if !allColumns {
		if t, err = t.Select(chain.SummaryHeaders...); err != nil {
			return err
		}
	}
	return formatter.Render(t)
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q (use YYYY-MM-DD)", name, value)
	}
	return t, nil
}

func init() {
	rootCmd.AddCommand(newOptionsCmd(optionsOptions{
		client: productionClient,
		mode:   GetOutputMode,
	}))
}
