package chain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonandersen/schwab/pkg/schwab"
)

var captured = time.Date(2024, 6, 16, 15, 0, 0, 0, time.UTC)

func leg(putCall, symbol string, strike, vol, itm float64) []schwab.OptionContract {
	return []schwab.OptionContract{{
		PutCall:        putCall,
		Symbol:         symbol,
		OptionRoot:     "AAPL",
		StrikePrice:    strike,
		Volatility:     vol,
		IntrinsicValue: itm,
		TotalVolume:    100,
		OpenInterest:   2500,
		Bid:            1.10,
		Ask:            1.15,
		Delta:          0.5,
	}}
}

func TestFlatten_IntersectsStrikes(t *testing.T) {
	oc := &schwab.OptionChain{
		Symbol: "AAPL",
		CallExpDateMap: schwab.ExpDateMap{
			"2024-06-21:5": {"150": leg("CALL", "AAPL  240621C00150000", 150, 25, 40)},
		},
		PutExpDateMap: schwab.ExpDateMap{
			"2024-06-21:5": {
				"150": leg("PUT", "AAPL  240621P00150000", 150, 27, -40),
				"155": leg("PUT", "AAPL  240621P00155000", 155, 26, -35),
			},
		},
	}

	rows, err := Flatten(oc, captured)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, 150.0, r.Strike)
	assert.Equal(t, "2024-06-21", r.Expiration)
	assert.Equal(t, 2024, r.ExpirationYear)
	assert.Equal(t, 6, r.ExpirationMonth)
	assert.Equal(t, 21, r.ExpirationDay)
	assert.Equal(t, 5, r.DaysToExpiration)
	assert.Equal(t, captured.UnixMilli(), r.CapturedAt)
	assert.Equal(t, "AAPL  240621C00150000", r.CallSymbol)
	assert.Equal(t, "AAPL  240621P00150000", r.PutSymbol)
	assert.Equal(t, "CALL", r.CallType)
	assert.Equal(t, "PUT", r.PutType)
	assert.Equal(t, "AAPL", r.CallRoot)
	assert.Equal(t, int64(2500), r.PutOI)
}

func TestFlatten_StrikesSortNumerically(t *testing.T) {
	calls := map[string][]schwab.OptionContract{}
	puts := map[string][]schwab.OptionContract{}
	for _, k := range []string{"1000.0", "95.0", "100.0", "97.5"} {
		calls[k] = leg("CALL", "C"+k, 0, 0, 0)
		puts[k] = leg("PUT", "P"+k, 0, 0, 0)
	}
	oc := &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{"2024-06-21:5": calls},
		PutExpDateMap:  schwab.ExpDateMap{"2024-06-21:5": puts},
	}

	rows, err := Flatten(oc, captured)

	require.NoError(t, err)
	var strikes []float64
	for _, r := range rows {
		strikes = append(strikes, r.Strike)
	}
	assert.Equal(t, []float64{95, 97.5, 100, 1000}, strikes)
}

func TestFlatten_Properties(t *testing.T) {
	calls := map[string][]schwab.OptionContract{}
	puts := map[string][]schwab.OptionContract{}
	callVol := map[float64]float64{}
	putVol := map[float64]float64{}

	// Calls on every 5, puts on every 10, with negative intrinsic values on
	// both sides.
	for i := range 20 {
		k := 100 + float64(i)*5
		key := fmt.Sprintf("%.1f", k)
		callVol[k] = 20 + float64(i)
		calls[key] = leg("CALL", "C"+key, k, callVol[k], 110-k)
		if i%2 == 0 {
			putVol[k] = 30 + float64(i)
			puts[key] = leg("PUT", "P"+key, k, putVol[k], k-110)
		}
	}
	oc := &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{"2024-07-19:33": calls},
		PutExpDateMap:  schwab.ExpDateMap{"2024-07-19:33": puts},
	}

	rows, err := Flatten(oc, captured)

	require.NoError(t, err)
	assert.Len(t, rows, 10)
	for _, r := range rows {
		_, inPuts := putVol[r.Strike]
		assert.True(t, inPuts, "strike %v not quoted on both sides", r.Strike)
		assert.InDelta(t, callVol[r.Strike]/100, r.CallIV, 1e-12)
		assert.InDelta(t, putVol[r.Strike]/100, r.PutIV, 1e-12)
		assert.GreaterOrEqual(t, r.CallITM, 0.0)
		assert.GreaterOrEqual(t, r.PutITM, 0.0)
	}
}

func TestFlatten_ClampsIntrinsicOnly(t *testing.T) {
	oc := &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{"2024-06-21:5": {"150.0": leg("CALL", "C", 150, 25, 12.5)}},
		PutExpDateMap:  schwab.ExpDateMap{"2024-06-21:5": {"150.0": leg("PUT", "P", 150, 25, -12.5)}},
	}

	rows, err := Flatten(oc, captured)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 12.5, rows[0].CallITM)
	assert.Equal(t, 0.0, rows[0].PutITM)
	assert.False(t, math.Signbit(rows[0].PutITM))
}

func TestFlatten_SkipsPutOnlyExpiration(t *testing.T) {
	oc := &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{
			"2024-06-21:5": {"150.0": leg("CALL", "C1", 150, 25, 0)},
		},
		PutExpDateMap: schwab.ExpDateMap{
			"2024-06-21:5":  {"150.0": leg("PUT", "P1", 150, 25, 0)},
			"2024-06-28:12": {"150.0": leg("PUT", "P2", 150, 25, 0)},
		},
	}

	rows, err := Flatten(oc, captured)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-06-21", rows[0].Expiration)
}

func TestFlatten_ExpirationOrder(t *testing.T) {
	oc := &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{
			"2024-07-19:33": {"150.0": leg("CALL", "C2", 150, 25, 0)},
			"2024-06-21:5":  {"150.0": leg("CALL", "C1", 150, 25, 0)},
		},
		PutExpDateMap: schwab.ExpDateMap{
			"2024-07-19:33": {"150.0": leg("PUT", "P2", 150, 25, 0)},
			"2024-06-21:5":  {"150.0": leg("PUT", "P1", 150, 25, 0)},
		},
	}

	rows, err := Flatten(oc, captured)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-06-21", rows[0].Expiration)
	assert.Equal(t, "2024-07-19", rows[1].Expiration)
}

func TestFlatten_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		calls schwab.ExpDateMap
		puts  schwab.ExpDateMap
	}{
		{
			name:  "key without day count",
			calls: schwab.ExpDateMap{"2024-06-21": {"150.0": leg("CALL", "C", 150, 0, 0)}},
		},
		{
			name:  "bad date",
			calls: schwab.ExpDateMap{"21/06/2024:5": {"150.0": leg("CALL", "C", 150, 0, 0)}},
		},
		{
			name:  "bad strike",
			calls: schwab.ExpDateMap{"2024-06-21:5": {"abc": leg("CALL", "C", 150, 0, 0)}},
			puts:  schwab.ExpDateMap{"2024-06-21:5": {"abc": leg("PUT", "P", 150, 0, 0)}},
		},
		{
			name:  "empty leg list",
			calls: schwab.ExpDateMap{"2024-06-21:5": {"150.0": {}}},
			puts:  schwab.ExpDateMap{"2024-06-21:5": {"150.0": leg("PUT", "P", 150, 0, 0)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Flatten(&schwab.OptionChain{CallExpDateMap: tt.calls, PutExpDateMap: tt.puts}, captured)

			require.Error(t, err)
			assert.NotNil(t, rows)
			assert.Empty(t, rows)
		})
	}
}

func TestFlatten_NilChain(t *testing.T) {
	rows, err := Flatten(nil, captured)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

type fakeSource struct {
	chain *schwab.OptionChain
	err   error
	got   schwab.ChainParams
}

func (f *fakeSource) GetOptionChain(_ context.Context, params schwab.ChainParams) (*schwab.OptionChain, error) {
	f.got = params
	return f.chain, f.err
}

func TestFetch(t *testing.T) {
	orig := now
	now = func() time.Time { return captured }
	t.Cleanup(func() { now = orig })

	src := &fakeSource{chain: &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{"2024-06-21:5": {"150.0": leg("CALL", "C", 150, 25, 0)}},
		PutExpDateMap:  schwab.ExpDateMap{"2024-06-21:5": {"150.0": leg("PUT", "P", 150, 25, 0)}},
	}}

	rows, err := Fetch(context.Background(), src, schwab.ChainParams{Symbol: "AAPL"}, nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", src.got.Symbol)
	assert.Equal(t, captured.UnixMilli(), rows[0].CapturedAt)
}

func TestFetch_RequestFailure(t *testing.T) {
	wantErr := &schwab.EmptyResultError{Op: "chain", Symbol: "NOPE", Err: errors.New("boom")}
	src := &fakeSource{chain: &schwab.OptionChain{}, err: wantErr}

	rows, err := Fetch(context.Background(), src, schwab.ChainParams{Symbol: "NOPE"}, nil)

	assert.ErrorIs(t, err, schwab.ErrEmptyResult)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFetch_FlattenFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &fakeSource{chain: &schwab.OptionChain{
		CallExpDateMap: schwab.ExpDateMap{"garbage": {}},
	}}

	rows, err := Fetch(context.Background(), src, schwab.ChainParams{Symbol: "AAPL"}, zap.New(core))

	require.Error(t, err)
	assert.Empty(t, rows)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "AAPL", logs.All()[0].ContextMap()["symbol"])
}

func TestRows_Table(t *testing.T) {
	rows := Rows{{
		Expiration:       "2024-06-21",
		DaysToExpiration: 5,
		Strike:           150,
		CallSymbol:       "AAPL  240621C00150000",
		CallBid:          1.1,
		CallVolume:       1200,
		CallIV:           0.255,
		PutSymbol:        "AAPL  240621P00150000",
	}}

	tbl := rows.Table()

	assert.Equal(t, Headers, tbl.Headers)
	assert.Len(t, Headers, 41)
	require.Equal(t, 1, tbl.Len())
	assert.Len(t, tbl.Rows[0], len(Headers))
	row := tbl.Rows[0]
	assert.Equal(t, "2024-06-21", row[tbl.Column("expiration")])
	assert.Equal(t, "150", row[tbl.Column("strike")])
	assert.Equal(t, "1.1", row[tbl.Column("call_bid")])
	assert.Equal(t, "1200", row[tbl.Column("call_volume")])
	assert.Equal(t, "0.255", row[tbl.Column("call_iv")])
	assert.Equal(t, "AAPL  240621P00150000", row[tbl.Column("put_symbol")])
}
