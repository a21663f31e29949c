// Package service implements the dashboard business logic.
package service

import "math"

// DeltaPct is the percentage change from prev to cur. When the previous
// period had no data the delta is exactly zero rather than infinite,
// which the cards render as "no change".
func DeltaPct(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return math.Round((cur-prev)/prev*100*10) / 10
}

// KPI is one dashboard card. UpIsGood only steers the arrow color on
// the card; the delta math is identical either way.
type KPI struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	DeltaPct float64 `json:"deltaPct"`
	UpIsGood bool    `json:"upIsGood"`
}
