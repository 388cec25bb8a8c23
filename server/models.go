package server

import "math"

type termStructureResponse struct {
	Underlying string      `json:"underlying"`
	TradeDate  string      `json:"trade_date"`
	Method     string      `json:"method"`
	Curve      *curveJSON  `json:"curve,omitempty"`
	Tenors     []tenorJSON `json:"tenors"`
}

type curveJSON struct {
	Beta0 float64 `json:"beta0"`
	Beta1 float64 `json:"beta1"`
	Beta2 float64 `json:"beta2"`
	Tau   float64 `json:"tau"`
}

type tenorJSON struct {
	Expiry       string   `json:"expiry"`
	Days         int      `json:"days"`
	Years        float64  `json:"years"`
	Rate         float64  `json:"rate"`
	Status       string   `json:"status"`
	Forward      *float64 `json:"forward,omitempty"`
	ForwardRatio *float64 `json:"forward_ratio,omitempty"`
}

type optionsResponse struct {
	Underlying string       `json:"underlying"`
	TradeDate  string       `json:"trade_date"`
	Options    []optionJSON `json:"options"`
}

type optionJSON struct {
	Expiry string  `json:"expiry"`
	Type   string  `json:"type"`
	Strike float64 `json:"strike"`
	Spot   float64 `json:"spot"`
	Last   float64 `json:"last"`
	Volume int64   `json:"volume"`

	DirectRate    *float64 `json:"direct_rate,omitempty"`
	DirectStatus  string   `json:"direct_status"`
	DirectIV      *float64 `json:"direct_iv,omitempty"`
	DirectForward *float64 `json:"direct_forward,omitempty"`

	SmoothRate    *float64 `json:"smooth_rate,omitempty"`
	SmoothStatus  string   `json:"smooth_status"`
	SmoothIV      *float64 `json:"smooth_iv,omitempty"`
	SmoothForward *float64 `json:"smooth_forward,omitempty"`
}

// jsonNum maps NaN to a missing field. encoding/json cannot represent NaN,
// so unresolved values are omitted.
func jsonNum(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// jsonPos additionally treats non-positive placeholders as missing; forwards
// and ratios are strictly positive when present.
func jsonPos(v float64) *float64 {
	if math.IsNaN(v) || v <= 0 {
		return nil
	}
	return &v
}
