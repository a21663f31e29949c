// Package service implements the reports business logic, primarily the
// lifecycle funnel.
package service

import (
	"math"
	"strconv"

	"crm_portal_backend/internal/reports/repository"
)

// Lifecycle stages in funnel order. The first three live on the lead
// table, the rest on the contact table.
var stageOrder = []string{"subscriber", "lead", "mql", "sql", "opportunity", "customer"}

// leadStages marks the stages whose drill-down shows lead records.
var leadStages = map[string]bool{
	"subscriber": true,
	"lead":       true,
	"mql":        true,
}

// minWidthPct keeps thin funnel segments clickable.
const minWidthPct = 16

// Conversion describes the flow from one stage into the next one.
type Conversion struct {
	Rate    float64 `json:"rate"`
	AvgDays float64 `json:"avgDays"`
}

// FunnelStage is one rendered funnel segment. Percentage is the true
// share of the top-of-funnel count; WidthPct is the floored render
// width derived from it.
type FunnelStage struct {
	Stage            string                    `json:"stage"`
	Count            int                       `json:"count"`
	Percentage       float64                   `json:"percentage"`
	WidthPct         int                       `json:"widthPct"`
	AvgDays          float64                   `json:"avgDays"`
	ConversionToNext *Conversion               `json:"conversionToNext,omitempty"`
	TopSources       []repository.BreakdownRow `json:"topSources,omitempty"`
	TopOwners        []repository.BreakdownRow `json:"topOwners,omitempty"`
}

// BuildFunnel assembles the funnel from per-stage metrics and
// breakdowns. Stage widths are proportional to the first stage's count
// with a floor of 16 so every segment stays visible; when the first
// stage is empty no ratio exists, every width falls back to the floor
// and every percentage reports 0. ConversionToNext measures the flow
// into the following stage and is absent on the terminal stage and on
// empty stages. The breakdowns map may be nil.
func BuildFunnel(metrics map[string]repository.StageMetrics, breakdowns map[string]repository.StageBreakdowns) []FunnelStage {
	stages := make([]FunnelStage, 0, len(stageOrder))
	firstCount := metrics[stageOrder[0]].Count

	for i, name := range stageOrder {
		m := metrics[name]
		stage := FunnelStage{
			Stage:      name,
			Count:      m.Count,
			Percentage: percentOfTop(m.Count, firstCount),
			WidthPct:   widthPct(m.Count, firstCount),
			AvgDays:    round1(m.AvgDays),
		}

		if i < len(stageOrder)-1 && m.Count > 0 {
			next := metrics[stageOrder[i+1]]
			stage.ConversionToNext = &Conversion{
				Rate:    round1(float64(next.Count) / float64(m.Count) * 100),
				AvgDays: round1(m.ConversionAvgDays),
			}
		}

		if b, ok := breakdowns[name]; ok {
			stage.TopSources = b.Sources
			stage.TopOwners = b.Owners
		}

		stages = append(stages, stage)
	}

	return stages
}

func percentOfTop(count, firstCount int) float64 {
	if firstCount == 0 {
		return 0
	}
	return round1(float64(count) / float64(firstCount) * 100)
}

func widthPct(count, firstCount int) int {
	if firstCount == 0 {
		return minWidthPct
	}
	pct := int(math.Round(float64(count) / float64(firstCount) * 100))
	if pct < minWidthPct {
		return minWidthPct
	}
	return pct
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// funnelCSVRows renders the funnel as export rows, header included.
// The Percentual column carries the true percentage of top-of-funnel,
// not the floored render width; conversion columns are empty where the
// stage has no conversion.
func funnelCSVRows(stages []FunnelStage) [][]string {
	rows := make([][]string, 0, len(stages)+1)
	rows = append(rows, []string{"Stage", "Count", "Percentual", "AvgDays", "ConversionRate", "ConversionAvgDays"})
	for _, s := range stages {
		rate, avgDays := "", ""
		if s.ConversionToNext != nil {
			rate = strconv.FormatFloat(s.ConversionToNext.Rate, 'f', 1, 64)
			avgDays = strconv.FormatFloat(s.ConversionToNext.AvgDays, 'f', 1, 64)
		}
		rows = append(rows, []string{
			s.Stage,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Percentage, 'f', 1, 64),
			strconv.FormatFloat(s.AvgDays, 'f', 1, 64),
			rate,
			avgDays,
		})
	}
	return rows
}
