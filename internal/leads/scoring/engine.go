// Package scoring computes qualification scores for leads.
// The model breaks a lead down into weighted factor categories and
// derives a composite score, a temperature tier and a short list of
// insights for the lead detail page.
package scoring

import "math"

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	// defaultBaseScore is used when a lead carries no stored score.
	defaultBaseScore = 50

	tierHot  = "hot"
	tierWarm = "warm"
	tierCold = "cold"

	trendUp     = "up"
	trendDown   = "down"
	trendStable = "stable"
)

// Factor names, in display order. The order is part of the contract:
// factor rows render in this order and ties between factors resolve to
// the earlier one.
const (
	FactorEngagement = "Engagement"
	FactorCompanyFit = "Company Fit"
	FactorIntent     = "Intent"
	FactorRecency    = "Recency"
	FactorHistory    = "History"
)

// factorWeights maps each factor to its share of the composite score.
// Weights sum to 1.0.
var factorWeights = []struct {
	name   string
	weight float64
}{
	{FactorEngagement, 0.25},
	{FactorCompanyFit, 0.20},
	{FactorIntent, 0.25},
	{FactorRecency, 0.15},
	{FactorHistory, 0.15},
}

// Input carries the lead attributes the model scores on.
type Input struct {
	// LeadScore is the stored base score, nil when the lead has none.
	LeadScore *int
	Email     string
	Company   string
	Source    string
	CreatedAt string
}

// FactorScore is one scored category with its weight, trend direction
// and a canned insight chosen from the input fields.
type FactorScore struct {
	Factor  string  `json:"factor"`
	Score   int     `json:"score"`
	Weight  float64 `json:"weight"`
	Trend   string  `json:"trend"`
	Insight string  `json:"insight"`
}

// Result is the full scoring breakdown for a lead.
type Result struct {
	Version   string        `json:"version"`
	Composite int           `json:"composite"`
	Tier      string        `json:"tier"`
	Factors   []FactorScore `json:"factors"`
	Insights  []string      `json:"insights"`
}

// Score runs the model over the given lead attributes.
func Score(in Input) Result {
	base := defaultBaseScore
	if in.LeadScore != nil {
		base = *in.LeadScore
	}

	raw := map[string]factorDetail{
		FactorEngagement: engagementFactor(base, in),
		FactorCompanyFit: companyFitFactor(base, in),
		FactorIntent:     intentFactor(base, in),
		FactorRecency:    recencyFactor(base, in),
		FactorHistory:    historyFactor(base),
	}

	factors := make([]FactorScore, 0, len(factorWeights))
	weighted := 0.0
	for _, fw := range factorWeights {
		d := raw[fw.name]
		score := clamp(d.score, 0, 100)
		factors = append(factors, FactorScore{
			Factor:  fw.name,
			Score:   score,
			Weight:  fw.weight,
			Trend:   d.trend,
			Insight: d.insight,
		})
		weighted += float64(score) * fw.weight
	}

	composite := clamp(int(math.Round(weighted)), 10, 100)
	tier := tierFor(composite)

	return Result{
		Version:   scoreVersion,
		Composite: composite,
		Tier:      tier,
		Factors:   factors,
		Insights:  buildInsights(tier, factors, in),
	}
}

// factorDetail is one factor's pre-clamp score with its trend and
// insight, both chosen from the input fields rather than the score.
type factorDetail struct {
	score   int
	trend   string
	insight string
}

// engagementFactor rewards a reachable lead. Without an email address
// outbound engagement is blocked, so the factor drops below base.
func engagementFactor(base int, in Input) factorDetail {
	if in.Email != "" {
		return factorDetail{base + 15, trendUp, "Email on file enables direct outreach"}
	}
	return factorDetail{base - 10, trendDown, "No email address captured"}
}

// companyFitFactor treats a known company as the strongest fit signal.
func companyFitFactor(base int, in Input) factorDetail {
	if in.Company != "" {
		return factorDetail{base + 20, trendUp, "Company identified, firmographic fit assumed"}
	}
	return factorDetail{base - 15, trendDown, "No company on record"}
}

// intentFactor starts slightly below base and credits sources that
// indicate the lead came to us rather than the other way around.
func intentFactor(base int, in Input) factorDetail {
	score := base - 5
	d := factorDetail{trend: trendDown, insight: "No inbound source recorded"}
	switch in.Source {
	case "website":
		score += 20
		d.trend = trendUp
		d.insight = "Came in through the website, strong buying intent"
	case "referral":
		score += 15
		d.trend = trendUp
		d.insight = "Referred lead, warm introduction"
	}
	if score < 10 {
		score = 10
	}
	d.score = score
	return d
}

// recencyFactor credits leads with a known creation date. Leads that
// were imported without one cannot be aged, so they stay at base.
func recencyFactor(base int, in Input) factorDetail {
	if in.CreatedAt != "" {
		return factorDetail{base + 25, trendUp, "Fresh record, recently entered the pipeline"}
	}
	return factorDetail{base, trendStable, "No creation date to age against"}
}

// historyFactor is below base until interaction history accrues.
func historyFactor(base int) factorDetail {
	score := base - 10
	if score < 10 {
		score = 10
	}
	return factorDetail{score, trendDown, "Little interaction history yet"}
}

func tierFor(composite int) string {
	switch {
	case composite >= 70:
		return tierHot
	case composite >= 40:
		return tierWarm
	default:
		return tierCold
	}
}

// maxInsights caps the insight list so the widget never overflows.
const maxInsights = 4

// buildInsights derives the textual hints shown next to the gauge.
// The tier message always comes first; the remaining slots fill in a
// fixed priority order (strength, bottleneck, suggested action).
func buildInsights(tier string, factors []FactorScore, in Input) []string {
	insights := make([]string, 0, maxInsights)
	insights = append(insights, tierMessage(tier))

	// On equal scores the earlier factor in display order wins both
	// the top and bottom pick.
	top, bottom := factors[0], factors[0]
	for _, f := range factors[1:] {
		if f.Score > top.Score {
			top = f
		}
		if f.Score < bottom.Score {
			bottom = f
		}
	}

	if top.Score >= 75 {
		insights = append(insights, top.Factor+" is this lead's strongest signal")
	}
	if bottom.Score < 40 {
		insights = append(insights, bottom.Factor+" is holding the score back")
	}
	if in.Email == "" {
		insights = append(insights, "Add an email address to unlock outreach")
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

func tierMessage(tier string) string {
	switch tier {
	case tierHot:
		return "Hot lead: prioritize immediate follow-up"
	case tierWarm:
		return "Warm lead: nurture with targeted touchpoints"
	default:
		return "Cold lead: keep on a low-frequency drip"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
