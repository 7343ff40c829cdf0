package schwab

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// HistoryParams holds the optional arguments of the price history call.
type HistoryParams struct {
	Symbol        string
	PeriodType    string // day, month, year, ytd
	Period        int
	FrequencyType string // minute, daily, weekly, monthly
	Frequency     int
	StartDate     time.Time
	EndDate       time.Time
	ExtendedHours *bool
}

func (p HistoryParams) query() map[string]string {
	q := map[string]string{
		"symbol":        p.Symbol,
		"periodType":    p.PeriodType,
		"frequencyType": p.FrequencyType,
	}
	if p.Period > 0 {
		q["period"] = strconv.Itoa(p.Period)
	}
	if p.Frequency > 0 {
		q["frequency"] = strconv.Itoa(p.Frequency)
	}
	if !p.StartDate.IsZero() {
		q["startDate"] = strconv.FormatInt(EpochMillis(p.StartDate), 10)
	}
	if !p.EndDate.IsZero() {
		q["endDate"] = strconv.FormatInt(EpochMillis(p.EndDate), 10)
	}
	if p.ExtendedHours != nil {
		q["needExtendedHoursData"] = strconv.FormatBool(*p.ExtendedHours)
	}
	return q
}

// GetPriceHistory retrieves candles for a symbol.
func (c *Client) GetPriceHistory(ctx context.Context, params HistoryParams) (*PriceHistory, error) {
	if params.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var history PriceHistory
	if err := c.getJSON(ctx, "/marketdata/v1/pricehistory", params.query(), &history); err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	return &history, nil
}

// EpochMillis converts t to Unix epoch milliseconds, the unit the API uses
// for date parameters and candle timestamps.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpochMillis is the inverse of EpochMillis.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
