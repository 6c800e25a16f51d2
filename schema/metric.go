package schema

import (
	"bytes"
	"encoding/json"
	"math"
)

// Metric is an average that may be undefined.
// NaN means "no data" (for example an empty period) and encodes as JSON null.
type Metric float64

// NoData is the Metric value for an average over zero messages.
var NoData = Metric(math.NaN())

// IsNoData reports whether the metric carries no value.
func (m Metric) IsNoData() bool {
	f := float64(m)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Float returns the raw value.
func (m Metric) Float() float64 {
	return float64(m)
}

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.IsNoData() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = NoData
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}

// Ratio returns num/den as a Metric, or NoData when den is zero.
func Ratio(num float64, den int) Metric {
	if den == 0 {
		return NoData
	}
	return Metric(num / float64(den))
}

// Ptr returns nil for NoData and a pointer to the value otherwise.
func (m Metric) Ptr() *float64 {
	if m.IsNoData() {
		return nil
	}
	f := float64(m)
	return &f
}
