package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/output"
	"github.com/jonandersen/schwab/pkg/schwab"
)

// historyOptions holds dependencies for the history command.
type historyOptions struct {
	client clientFunc
	mode   func() output.Mode
}

// newHistoryCmd creates the history command with the given options.
func newHistoryCmd(opts historyOptions) *cobra.Command {
	var (
		flagPeriodType    string
		flagPeriod        int
		flagFrequencyType string
		flagFrequency     int
		flagStart         string
		flagEnd           string
		flagExtended      bool
	)

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "View price history candles",
		Long: `View OHLCV price history for a symbol. Flags left unset are not sent
and the API picks its defaults.

Examples:
  schwab history AAPL
  schwab history AAPL --period-type year --period 1 --frequency-type daily
  schwab history SPY --start 2024-01-02 --end 2024-01-31 --frequency-type daily`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := requireArg(args, "symbol")
			if err != nil {
				return err
			}

			params := schwab.HistoryParams{
				Symbol:        strings.ToUpper(symbol),
				PeriodType:    flagPeriodType,
				Period:        flagPeriod,
				FrequencyType: flagFrequencyType,
				Frequency:     flagFrequency,
				ExtendedHours: boolFlag(cmd, "extended", flagExtended),
			}
			if params.StartDate, err = parseDateFlag("start", flagStart); err != nil {
				return err
			}
			if params.EndDate, err = parseDateFlag("end", flagEnd); err != nil {
				return err
			}
			if !params.StartDate.IsZero() && !params.EndDate.IsZero() && params.EndDate.Before(params.StartDate) {
				return fmt.Errorf("--end must not be before --start")
			}
			return runHistory(cmd, opts, params)
		},
	}

	cmd.Flags().StringVar(&flagPeriodType, "period-type", "", "Period type: day, month, year, ytd")
	cmd.Flags().IntVar(&flagPeriod, "period", 0, "Number of periods")
	cmd.Flags().StringVar(&flagFrequencyType, "frequency-type", "", "Frequency type: minute, daily, weekly, monthly")
	cmd.Flags().IntVar(&flagFrequency, "frequency", 0, "Frequency")
	cmd.Flags().StringVar(&flagStart, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagEnd, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flagExtended, "extended", false, "Include extended hours candles")
	cmd.SilenceUsage = true

	return cmd
}

func runHistory(cmd *cobra.Command, opts historyOptions, params schwab.HistoryParams) error {
	client, err := opts.client()
	if err != nil {
		return err
	}

	history, err := client.GetPriceHistory(cmd.Context(), params)
	if err != nil {
		return err
	}

	if history.Empty || len(history.Candles) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No price history for %s\n", params.Symbol)
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.mode())
	if formatter.Mode == output.ModeJSON {
		return formatter.Print(history)
	}

	headers := []string{"Time", "Open", "High", "Low", "Close", "Volume"}
	rows := make([][]string, 0, len(history.Candles))
	for _, c := range history.Candles {
		rows = append(rows, []string{
			schwab.FromEpochMillis(c.Datetime).UTC().Format("2006-01-02 15:04"),
			output.FormatPrice(c.Open),
			output.FormatPrice(c.High),
			output.FormatPrice(c.Low),
			output.FormatPrice(c.Close),
			output.FormatVolume(c.Volume),
		})
	}
	return formatter.Table(headers, rows)
}

func init() {
	rootCmd.AddCommand(newHistoryCmd(historyOptions{
		client: productionClient,
		mode:   GetOutputMode,
	}))
}
