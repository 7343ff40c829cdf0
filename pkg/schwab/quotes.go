package schwab

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// QuoteParams holds the optional arguments of the batch quotes call.
type QuoteParams struct {
	// Fields restricts the response, e.g. "quote,reference".
	Fields string
	// Indicative requests indicative quotes for ETFs when set.
	Indicative *bool
}

// GetQuotes retrieves quotes for the given symbols in one request. The
// result is keyed by symbol; symbols the API rejected are logged and absent.
func (c *Client) GetQuotes(ctx context.Context, symbols []string, params QuoteParams) (map[string]QuoteResponse, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}

	query := map[string]string{"fields": params.Fields}
	if params.Indicative != nil {
		query["indicative"] = strconv.FormatBool(*params.Indicative)
	}

	var raw map[string]json.RawMessage
	path := "/marketdata/v1/quotes?symbols=" + joinSymbols(symbols)
	if err := c.getJSON(ctx, path, query, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	return c.decodeQuotes(raw)
}

// GetQuote retrieves the quote for one symbol. The symbol is sent as an
// escaped path segment, so "BRK/B" and "$SPX" are safe.
//
// A failed lookup is logged and returns a nil quote together with an
// *EmptyResultError, so a loop over many symbols can keep going.
func (c *Client) GetQuote(ctx context.Context, symbol, fields string) (*QuoteResponse, error) {
	var raw map[string]json.RawMessage
	path := "/marketdata/v1/" + escapeSegment(symbol) + "/quotes"
	err := c.getJSON(ctx, path, map[string]string{"fields": fields}, &raw)
	if err == nil {
		var quotes map[string]QuoteResponse
		quotes, err = c.decodeQuotes(raw)
		if err == nil {
			if q, ok := lookupQuote(quotes, symbol); ok {
				return &q, nil
			}
			err = fmt.Errorf("symbol not in response")
		}
	}

	c.logEmpty("quote", symbol, err)
	return nil, &EmptyResultError{Op: "quote", Symbol: symbol, Err: err}
}

func (c *Client) decodeQuotes(raw map[string]json.RawMessage) (map[string]QuoteResponse, error) {
	quotes := make(map[string]QuoteResponse, len(raw))
	for key, msg := range raw {
		if key == "errors" {
			var qe QuoteErrors
			if err := json.Unmarshal(msg, &qe); err == nil {
				c.Logger.Warn("quotes endpoint rejected symbols",
					zap.Strings("invalid_symbols", qe.InvalidSymbols),
					zap.Strings("invalid_cusips", qe.InvalidCusips))
			}
			continue
		}

		var q QuoteResponse
		if err := json.Unmarshal(msg, &q); err != nil {
			return nil, fmt.Errorf("failed to decode quote %s: %w", key, err)
		}
		quotes[key] = q
	}
	return quotes, nil
}

func lookupQuote(quotes map[string]QuoteResponse, symbol string) (QuoteResponse, bool) {
	if q, ok := quotes[symbol]; ok {
		return q, true
	}
	for key, q := range quotes {
		if strings.EqualFold(key, symbol) {
			return q, true
		}
	}
	return QuoteResponse{}, false
}

// logEmpty writes the diagnostic line for a lookup degraded to empty.
func (c *Client) logEmpty(op, symbol string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.String("symbol", symbol), zap.Error(err)}
	if apiErr, ok := asAPIError(err); ok {
		fields = append(fields, zap.Int("status", apiErr.StatusCode))
	}
	c.Logger.Warn("lookup returned no result", fields...)
}
