package service

import (
	"testing"

	"crm_portal_backend/internal/reports/repository"
)

func metricsFor(counts map[string]int) map[string]repository.StageMetrics {
	metrics := make(map[string]repository.StageMetrics)
	for stage, count := range counts {
		metrics[stage] = repository.StageMetrics{Stage: stage, Count: count}
	}
	return metrics
}

func TestBuildFunnelFirstStageIsFullWidth(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{
		"subscriber":  120,
		"lead":        60,
		"mql":         30,
		"sql":         12,
		"opportunity": 6,
		"customer":    3,
	}), nil)

	if stages[0].WidthPct != 100 {
		t.Fatalf("first stage width = %d, want 100", stages[0].WidthPct)
	}
	if stages[0].Percentage != 100 {
		t.Fatalf("first stage percentage = %v, want 100", stages[0].Percentage)
	}
	if stages[1].WidthPct != 50 {
		t.Errorf("lead width = %d, want 50", stages[1].WidthPct)
	}
	if stages[2].WidthPct != 25 {
		t.Errorf("mql width = %d, want 25", stages[2].WidthPct)
	}
}

func TestBuildFunnelWidthFlooredButPercentageExact(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{
		"subscriber": 100,
		"lead":       5,
	}), nil)

	if stages[1].WidthPct != 16 {
		t.Fatalf("lead width = %d, want floor 16", stages[1].WidthPct)
	}
	if stages[1].Percentage != 5 {
		t.Fatalf("lead percentage = %v, want the true share 5", stages[1].Percentage)
	}
	for _, s := range stages {
		if s.WidthPct < 16 {
			t.Errorf("stage %s width = %d, below floor", s.Stage, s.WidthPct)
		}
	}
}

func TestBuildFunnelEmptyFirstStageFallsBackToFloor(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{
		"lead": 40,
	}), nil)

	for _, s := range stages {
		if s.WidthPct != 16 {
			t.Errorf("stage %s width = %d, want 16 with empty first stage", s.Stage, s.WidthPct)
		}
		if s.Percentage != 0 {
			t.Errorf("stage %s percentage = %v, want 0 with empty first stage", s.Stage, s.Percentage)
		}
	}
}

func TestBuildFunnelStageOrderFixed(t *testing.T) {
	stages := BuildFunnel(metricsFor(nil), nil)

	want := []string{"subscriber", "lead", "mql", "sql", "opportunity", "customer"}
	if len(stages) != len(want) {
		t.Fatalf("got %d stages, want %d", len(stages), len(want))
	}
	for i, name := range want {
		if stages[i].Stage != name {
			t.Errorf("stage[%d] = %q, want %q", i, stages[i].Stage, name)
		}
	}
}

func TestBuildFunnelConversionFlowsIntoNextStage(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{
		"subscriber":  100,
		"lead":        40,
		"mql":         10,
		"sql":         8,
		"opportunity": 4,
		"customer":    2,
	}), nil)

	if stages[0].ConversionToNext == nil || stages[0].ConversionToNext.Rate != 40 {
		t.Fatalf("subscriber conversion = %+v, want rate 40 into lead", stages[0].ConversionToNext)
	}
	if stages[1].ConversionToNext == nil || stages[1].ConversionToNext.Rate != 25 {
		t.Fatalf("lead conversion = %+v, want rate 25 into mql", stages[1].ConversionToNext)
	}
	if stages[len(stages)-1].ConversionToNext != nil {
		t.Fatalf("terminal stage conversion = %+v, want absent", stages[len(stages)-1].ConversionToNext)
	}
}

func TestBuildFunnelEmptyStageHasNoConversion(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{
		"subscriber": 10,
		"mql":        5,
	}), nil)

	// lead stage is empty, so there is no base for a conversion rate.
	if stages[1].ConversionToNext != nil {
		t.Fatalf("empty lead stage conversion = %+v, want absent", stages[1].ConversionToNext)
	}
}

func TestBuildFunnelAttachesBreakdowns(t *testing.T) {
	breakdowns := map[string]repository.StageBreakdowns{
		"lead": {
			Sources: []repository.BreakdownRow{{Label: "website", Count: 7}, {Label: "referral", Count: 3}},
			Owners:  []repository.BreakdownRow{{Label: "unassigned", Count: 10}},
		},
	}

	stages := BuildFunnel(metricsFor(map[string]int{"subscriber": 20, "lead": 10}), breakdowns)

	if len(stages[1].TopSources) != 2 || stages[1].TopSources[0].Label != "website" {
		t.Fatalf("lead top sources = %+v", stages[1].TopSources)
	}
	if len(stages[1].TopOwners) != 1 {
		t.Fatalf("lead top owners = %+v", stages[1].TopOwners)
	}
	if stages[0].TopSources != nil {
		t.Errorf("subscriber top sources = %+v, want none", stages[0].TopSources)
	}
}

func TestFunnelCSVRowsShape(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{"subscriber": 4, "lead": 2}), nil)
	rows := funnelCSVRows(stages)

	wantHeader := []string{"Stage", "Count", "Percentual", "AvgDays", "ConversionRate", "ConversionAvgDays"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	if len(rows) != len(stages)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(stages)+1)
	}
	if rows[1][0] != "subscriber" || rows[1][1] != "4" || rows[1][2] != "100.0" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[2][1] != "2" || rows[2][2] != "50.0" {
		t.Errorf("unexpected second data row: %v", rows[2])
	}
	if rows[1][4] != "50.0" {
		t.Errorf("subscriber conversion rate = %q, want 50.0 into lead", rows[1][4])
	}
}

func TestFunnelCSVPercentualIsTrueShareNotWidth(t *testing.T) {
	stages := BuildFunnel(metricsFor(map[string]int{"subscriber": 100, "lead": 5}), nil)
	rows := funnelCSVRows(stages)

	if rows[2][2] != "5.0" {
		t.Fatalf("lead Percentual = %q, want the true percentage 5.0, not the floored width", rows[2][2])
	}
	if rows[len(rows)-1][4] != "" {
		t.Errorf("terminal stage ConversionRate = %q, want empty", rows[len(rows)-1][4])
	}
}
