// Package chain flattens the two-sided option chain payload into one row per
// expiration and strike.
package chain

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonandersen/schwab/pkg/schwab"
)

const expirationLayout = "2006-01-02"

// now is swapped in tests.
var now = time.Now

// Source fetches a raw option chain.
type Source interface {
	GetOptionChain(ctx context.Context, params schwab.ChainParams) (*schwab.OptionChain, error)
}

// Fetch requests the chain and flattens it. Any failure yields an empty row
// set together with the error, and is logged.
func Fetch(ctx context.Context, src Source, params schwab.ChainParams, logger *zap.Logger) (Rows, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	oc, err := src.GetOptionChain(ctx, params)
	if err != nil {
		return Rows{}, err
	}

	rows, err := Flatten(oc, now())
	if err != nil {
		logger.Warn("failed to flatten option chain",
			zap.String("symbol", params.Symbol),
			zap.Error(err),
		)
		return Rows{}, err
	}
	return rows, nil
}

// Flatten joins the call and put maps of oc. Only expirations present in the
// call map are visited, and within each only strikes quoted on both sides
// produce a row. Expirations come out in key order, strikes ascending.
func Flatten(oc *schwab.OptionChain, capturedAt time.Time) (Rows, error) {
	rows := Rows{}
	if oc == nil {
		return rows, nil
	}

	keys := make([]string, 0, len(oc.CallExpDateMap))
	for k := range oc.CallExpDateMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stamp := schwab.EpochMillis(capturedAt)
	for _, key := range keys {
		expiry, dte, err := parseExpirationKey(key)
		if err != nil {
			return Rows{}, err
		}

		calls := oc.CallExpDateMap[key]
		puts := oc.PutExpDateMap[key]

		strikes, err := commonStrikes(calls, puts)
		if err != nil {
			return Rows{}, fmt.Errorf("expiration %s: %w", key, err)
		}

		for _, s := range strikes {
			call, err := firstLeg(calls[s.key])
			if err != nil {
				return Rows{}, fmt.Errorf("expiration %s call %s: %w", key, s.key, err)
			}
			put, err := firstLeg(puts[s.key])
			if err != nil {
				return Rows{}, fmt.Errorf("expiration %s put %s: %w", key, s.key, err)
			}

			row := Row{
				CapturedAt:       stamp,
				Expiration:       expiry.Format(expirationLayout),
				ExpirationYear:   expiry.Year(),
				ExpirationMonth:  int(expiry.Month()),
				ExpirationDay:    expiry.Day(),
				DaysToExpiration: dte,
				Strike:           s.value,
			}
			setCall(&row, call)
			setPut(&row, put)
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseExpirationKey splits "2024-06-21:5" into its date and day count.
func parseExpirationKey(key string) (time.Time, int, error) {
	date, days, ok := strings.Cut(key, ":")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("malformed expiration key %q", key)
	}
	expiry, err := time.Parse(expirationLayout, date)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("malformed expiration key %q: %w", key, err)
	}
	dte, err := strconv.Atoi(days)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("malformed expiration key %q: %w", key, err)
	}
	return expiry, dte, nil
}

type strike struct {
	key   string
	value float64
}

func commonStrikes(calls, puts map[string][]schwab.OptionContract) ([]strike, error) {
	var out []strike
	for k := range calls {
		if _, ok := puts[k]; !ok {
			continue
		}
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed strike %q: %w", k, err)
		}
		out = append(out, strike{key: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].value < out[j].value })
	return out, nil
}

func firstLeg(legs []schwab.OptionContract) (schwab.OptionContract, error) {
	if len(legs) == 0 {
		return schwab.OptionContract{}, fmt.Errorf("no contract listed")
	}
	return legs[0], nil
}

// impliedVol converts the percentage points the API reports to a fraction.
func impliedVol(v float64) float64 {
	return v / 100
}

func intrinsic(v float64) float64 {
	return math.Max(v, 0)
}

func setCall(r *Row, c schwab.OptionContract) {
	r.CallSymbol = c.Symbol
	r.CallRoot = c.OptionRoot
	r.CallType = c.PutCall
	r.CallStrike = c.StrikePrice
	r.CallVolume = c.TotalVolume
	r.CallOI = c.OpenInterest
	r.CallBid = c.Bid
	r.CallAsk = c.Ask
	r.CallLast = c.Last
	r.CallNetChange = c.NetChange
	r.CallDelta = c.Delta
	r.CallGamma = c.Gamma
	r.CallTheta = c.Theta
	r.CallVega = c.Vega
	r.CallRho = c.Rho
	r.CallIV = impliedVol(c.Volatility)
	r.CallITM = intrinsic(c.IntrinsicValue)
}

func setPut(r *Row, p schwab.OptionContract) {
	r.PutSymbol = p.Symbol
	r.PutRoot = p.OptionRoot
	r.PutType = p.PutCall
	r.PutStrike = p.StrikePrice
	r.PutVolume = p.TotalVolume
	r.PutOI = p.OpenInterest
	r.PutBid = p.Bid
	r.PutAsk = p.Ask
	r.PutLast = p.Last
	r.PutNetChange = p.NetChange
	r.PutDelta = p.Delta
	r.PutGamma = p.Gamma
	r.PutTheta = p.Theta
	r.PutVega = p.Vega
	r.PutRho = p.Rho
	r.PutIV = impliedVol(p.Volatility)
	r.PutITM = intrinsic(p.IntrinsicValue)
}
