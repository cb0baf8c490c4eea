package contracts

import (
	"encoding/json"
	"fmt"
)

// Quote holds the raw numeric fields of one provider quote
type Quote struct {
	Symbol           string
	Price            float64
	Change           float64
	ChangePercent    string // provider formatted, e.g. "1.6949%"
	Open             float64
	High             float64
	Low              float64
	PreviousClose    float64
	Volume           int64
	LatestTradingDay string
}

// PerformanceRecord is a normalized quote plus derived metrics.
// Fields are unexported so the derived values can only come from NewPerformanceRecord.
// ⭐ SSOT: derived quote metrics are computed here only
type PerformanceRecord struct {
	raw Quote

	dayRange           float64
	dayRangePercent    float64
	priceVsOpenPercent float64
	volumeMillions     float64
}

// NewPerformanceRecord validates q and computes the derived fields
func NewPerformanceRecord(q Quote) (*PerformanceRecord, error) {
	if q.Symbol == "" {
		return nil, fmt.Errorf("%w: quote has no symbol", ErrDataUnavailable)
	}
	if q.High < q.Low {
		return nil, fmt.Errorf("%w: %s high %.4f below low %.4f", ErrDataUnavailable, q.Symbol, q.High, q.Low)
	}
	if q.Volume < 0 {
		return nil, fmt.Errorf("%w: %s negative volume", ErrDataUnavailable, q.Symbol)
	}

	r := &PerformanceRecord{raw: q}
	r.dayRange = q.High - q.Low
	if q.Low != 0 {
		r.dayRangePercent = r.dayRange / q.Low * 100
	}
	if q.Open != 0 {
		r.priceVsOpenPercent = (q.Price - q.Open) / q.Open * 100
	}
	r.volumeMillions = float64(q.Volume) / 1_000_000

	return r, nil
}

func (r *PerformanceRecord) Symbol() string           { return r.raw.Symbol }
func (r *PerformanceRecord) Price() float64           { return r.raw.Price }
func (r *PerformanceRecord) Change() float64          { return r.raw.Change }
func (r *PerformanceRecord) ChangePercent() string    { return r.raw.ChangePercent }
func (r *PerformanceRecord) Open() float64            { return r.raw.Open }
func (r *PerformanceRecord) High() float64            { return r.raw.High }
func (r *PerformanceRecord) Low() float64             { return r.raw.Low }
func (r *PerformanceRecord) PreviousClose() float64   { return r.raw.PreviousClose }
func (r *PerformanceRecord) Volume() int64            { return r.raw.Volume }
func (r *PerformanceRecord) LatestTradingDay() string { return r.raw.LatestTradingDay }

func (r *PerformanceRecord) DayRange() float64           { return r.dayRange }
func (r *PerformanceRecord) DayRangePercent() float64    { return r.dayRangePercent }
func (r *PerformanceRecord) PriceVsOpenPercent() float64 { return r.priceVsOpenPercent }
func (r *PerformanceRecord) VolumeMillions() float64     { return r.volumeMillions }

// Quote returns a copy of the raw fields
func (r *PerformanceRecord) Quote() Quote { return r.raw }

type performanceJSON struct {
	Symbol             string  `json:"symbol"`
	Price              float64 `json:"price"`
	Change             float64 `json:"change"`
	ChangePercent      string  `json:"change_percent"`
	Open               float64 `json:"open"`
	High               float64 `json:"high"`
	Low                float64 `json:"low"`
	PreviousClose      float64 `json:"previous_close"`
	Volume             int64   `json:"volume"`
	LatestTradingDay   string  `json:"latest_trading_day"`
	DayRange           float64 `json:"day_range"`
	DayRangePercent    float64 `json:"day_range_percent"`
	PriceVsOpenPercent float64 `json:"price_vs_open_percent"`
	VolumeMillions     float64 `json:"volume_millions"`
}

// MarshalJSON writes raw and derived fields
func (r *PerformanceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(performanceJSON{
		Symbol:             r.raw.Symbol,
		Price:              r.raw.Price,
		Change:             r.raw.Change,
		ChangePercent:      r.raw.ChangePercent,
		Open:               r.raw.Open,
		High:               r.raw.High,
		Low:                r.raw.Low,
		PreviousClose:      r.raw.PreviousClose,
		Volume:             r.raw.Volume,
		LatestTradingDay:   r.raw.LatestTradingDay,
		DayRange:           r.dayRange,
		DayRangePercent:    r.dayRangePercent,
		PriceVsOpenPercent: r.priceVsOpenPercent,
		VolumeMillions:     r.volumeMillions,
	})
}

// UnmarshalJSON reads the raw fields and recomputes the derived ones.
// Stored derived values are ignored.
func (r *PerformanceRecord) UnmarshalJSON(data []byte) error {
	var in performanceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	rec, err := NewPerformanceRecord(Quote{
		Symbol:           in.Symbol,
		Price:            in.Price,
		Change:           in.Change,
		ChangePercent:    in.ChangePercent,
		Open:             in.Open,
		High:             in.High,
		Low:              in.Low,
		PreviousClose:    in.PreviousClose,
		Volume:           in.Volume,
		LatestTradingDay: in.LatestTradingDay,
	})
	if err != nil {
		return err
	}

	*r = *rec
	return nil
}
