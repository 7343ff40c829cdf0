package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/output"
	"github.com/jonandersen/schwab/pkg/contract"
	"github.com/jonandersen/schwab/pkg/schwab"
	"github.com/jonandersen/schwab/pkg/table"
)

// quoteOptions holds dependencies for the quote command.
type quoteOptions struct {
	client clientFunc
	mode   func() output.Mode
}

// quoteHeaders are the columns of the quote table.
var quoteHeaders = []string{"symbol", "description", "last", "bid", "ask", "change", "volume"}

// newQuoteCmd creates the quote command with the given options.
func newQuoteCmd(opts quoteOptions) *cobra.Command {
	var (
		fields     string
		indicative bool
		each       bool
		contracts  bool
	)

	cmd := &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Get quotes",
		Long: `Get quotes for one or more symbols in a single request.

With --each, every symbol is requested on its own; symbols that fail are
reported and skipped. With --contract, option symbols are annotated with
the expiry and strike encoded in them.

Examples:
  schwab quote AAPL                          # Quote for Apple
  schwab quote AAPL MSFT '$SPX'              # One batch request
  schwab quote 'AAPL  240621C00150000' --contract
  schwab quote AAPL BRK/B --each             # One request per symbol`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := make([]string, 0, len(args))
			for _, a := range args {
				symbols = append(symbols, strings.ToUpper(a))
			}

			var (
				quotes []schwab.QuoteResponse
				err    error
			)
			if each {
				quotes, err = quoteEach(cmd, opts, symbols, fields)
			} else {
				quotes, err = quoteBatch(cmd, opts, symbols, schwab.QuoteParams{
					Fields:     fields,
					Indicative: boolFlag(cmd, "indicative", indicative),
				})
			}
			if err != nil {
				return err
			}

			if len(quotes) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No quotes returned")
				return nil
			}

			t := quoteTable(quotes)
			if contracts {
				if err := contract.Annotate(t, "symbol"); err != nil {
					return err
				}
			}
			return output.New(cmd.OutOrStdout(), opts.mode()).Render(t)
		},
	}

	cmd.Flags().StringVar(&fields, "fields", "", "Quote fields to request (quote, fundamental, extended, reference, regular)")
	cmd.Flags().BoolVar(&indicative, "indicative", false, "Request indicative quotes for ETF symbols")
	cmd.Flags().BoolVar(&each, "each", false, "Request each symbol separately and skip failures")
	cmd.Flags().BoolVar(&contracts, "contract", false, "Add expiry and strike columns parsed from option symbols")
	cmd.SilenceUsage = true

	return cmd
}

func quoteBatch(cmd *cobra.Command, opts quoteOptions, symbols []string, params schwab.QuoteParams) ([]schwab.QuoteResponse, error) {
	client, err := opts.client()
	if err != nil {
		return nil, err
	}

	byKey, err := client.GetQuotes(cmd.Context(), symbols, params)
	if err != nil {
		return nil, err
	}

	// Keep the order the symbols were given in; anything else keyed by the
	// response follows alphabetically.
	quotes := make([]schwab.QuoteResponse, 0, len(byKey))
	seen := make(map[string]bool, len(byKey))
	for _, sym := range symbols {
		if q, ok := byKey[sym]; ok {
			quotes = append(quotes, q)
			seen[sym] = true
		}
	}
	var rest []string
	for k := range byKey {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		quotes = append(quotes, byKey[k])
	}
	return quotes, nil
}

func quoteEach(cmd *cobra.Command, opts quoteOptions, symbols []string, fields string) ([]schwab.QuoteResponse, error) {
	client, err := opts.client()
	if err != nil {
		return nil, err
	}

	var quotes []schwab.QuoteResponse
	for _, sym := range symbols {
		q, err := client.GetQuote(cmd.Context(), sym, fields)
		if err != nil {
			if errors.Is(err, schwab.ErrEmptyResult) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No quote for %s\n", sym)
				continue
			}
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

func quoteTable(quotes []schwab.QuoteResponse) *table.Table {
	t := table.New(quoteHeaders...)
	for _, q := range quotes {
		var description string
		if q.Reference != nil {
			description = q.Reference.Description
		}
		if q.Quote == nil {
			t.Append(q.Symbol, description, "-", "-", "-", "-", "-")
			continue
		}
		t.Append(
			q.Symbol,
			description,
			output.FormatPrice(q.Quote.LastPrice),
			output.FormatPrice(q.Quote.BidPrice),
			output.FormatPrice(q.Quote.AskPrice),
			output.FormatPrice(q.Quote.NetChange),
			output.FormatVolume(q.Quote.TotalVolume),
		)
	}
	return t
}

// boolFlag returns a pointer to v only when the flag was set explicitly.
func boolFlag(cmd *cobra.Command, name string, v bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func init() {
	rootCmd.AddCommand(newQuoteCmd(quoteOptions{
		client: productionClient,
		mode:   GetOutputMode,
	}))
}
