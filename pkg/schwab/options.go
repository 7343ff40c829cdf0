package schwab

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Contract types accepted by the chains endpoint.
const (
	ContractCall = "CALL"
	ContractPut  = "PUT"
	ContractAll  = "ALL"
)

// ChainParams holds the arguments of the chains call. Zero values are
// omitted from the request.
type ChainParams struct {
	Symbol       string
	ContractType string
	StrikeCount  int
	// FromDate and ToDate bound the expirations. When only one is set the
	// other takes the same value.
	FromDate time.Time
	ToDate   time.Time
}

const chainDateLayout = "2006-01-02"

func (p ChainParams) query() map[string]string {
	from, to := p.FromDate, p.ToDate
	switch {
	case !from.IsZero() && to.IsZero():
		to = from
	case from.IsZero() && !to.IsZero():
		from = to
	}

	q := map[string]string{
		"symbol":       p.Symbol,
		"contractType": p.ContractType,
	}
	if p.StrikeCount > 0 {
		q["strikeCount"] = strconv.Itoa(p.StrikeCount)
	}
	if !from.IsZero() {
		q["fromDate"] = from.Format(chainDateLayout)
		q["toDate"] = to.Format(chainDateLayout)
	}
	return q
}

// GetExpirationChain lists option expirations for symbol.
//
// Failures are logged and return an empty chain with an *EmptyResultError.
func (c *Client) GetExpirationChain(ctx context.Context, symbol string) (*ExpirationChain, error) {
	var chain ExpirationChain
	err := c.getJSON(ctx, "/marketdata/v1/expirationchain", map[string]string{"symbol": symbol}, &chain)
	if err != nil {
		c.logEmpty("expirations", symbol, err)
		return &ExpirationChain{}, &EmptyResultError{Op: "expirations", Symbol: symbol, Err: err}
	}
	return &chain, nil
}

// GetOptionChain retrieves the call and put maps for an underlying.
//
// Failures are logged and return an empty chain with an *EmptyResultError.
func (c *Client) GetOptionChain(ctx context.Context, params ChainParams) (*OptionChain, error) {
	if params.Symbol == "" {
		err := errors.New("symbol is required")
		return &OptionChain{}, &EmptyResultError{Op: "chain", Err: err}
	}

	var chain OptionChain
	if err := c.getJSON(ctx, "/marketdata/v1/chains", params.query(), &chain); err != nil {
		c.logEmpty("chain", params.Symbol, err)
		return &OptionChain{Symbol: params.Symbol}, &EmptyResultError{Op: "chain", Symbol: params.Symbol, Err: err}
	}
	return &chain, nil
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
