package service

import "testing"

func TestDeltaPct(t *testing.T) {
	cases := []struct {
		name string
		cur  float64
		prev float64
		want float64
	}{
		{"growth", 150, 100, 50},
		{"decline", 75, 100, -25},
		{"flat", 100, 100, 0},
		{"previous zero", 42, 0, 0},
		{"both zero", 0, 0, 0},
		{"current zero", 0, 80, -100},
		{"fractional", 105, 100, 5},
		{"rounds to tenth", 100.5, 100, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeltaPct(tc.cur, tc.prev); got != tc.want {
				t.Fatalf("DeltaPct(%v, %v) = %v, want %v", tc.cur, tc.prev, got, tc.want)
			}
		})
	}
}
