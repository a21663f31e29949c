package scoring

import "testing"

func intPtr(v int) *int { return &v }

func TestScoreFullSignalLead(t *testing.T) {
	result := Score(Input{
		LeadScore: intPtr(80),
		Email:     "buyer@acme.test",
		Company:   "Acme BV",
		Source:    "website",
		CreatedAt: "2026-08-01T09:00:00Z",
	})

	wantFactors := map[string]int{
		FactorEngagement: 95,
		FactorCompanyFit: 100,
		FactorIntent:     95,
		FactorRecency:    100,
		FactorHistory:    70,
	}
	for _, f := range result.Factors {
		if want := wantFactors[f.Factor]; f.Score != want {
			t.Errorf("factor %s = %d, want %d", f.Factor, f.Score, want)
		}
	}

	if result.Composite != 93 {
		t.Fatalf("composite = %d, want 93", result.Composite)
	}
	if result.Tier != "hot" {
		t.Fatalf("tier = %q, want hot", result.Tier)
	}
}

func TestScoreEmptyLeadDefaults(t *testing.T) {
	result := Score(Input{})

	wantFactors := map[string]int{
		FactorEngagement: 40,
		FactorCompanyFit: 35,
		FactorIntent:     45,
		FactorRecency:    50,
		FactorHistory:    40,
	}
	for _, f := range result.Factors {
		if want := wantFactors[f.Factor]; f.Score != want {
			t.Errorf("factor %s = %d, want %d", f.Factor, f.Score, want)
		}
	}

	if result.Composite != 42 {
		t.Fatalf("composite = %d, want 42", result.Composite)
	}
	if result.Tier != "warm" {
		t.Fatalf("tier = %q, want warm", result.Tier)
	}
}

func TestScoreCompositeStaysInRange(t *testing.T) {
	inputs := []Input{
		{},
		{LeadScore: intPtr(0)},
		{LeadScore: intPtr(100), Email: "a@b.c", Company: "X", Source: "website", CreatedAt: "2026-01-01T00:00:00Z"},
		{LeadScore: intPtr(5), Source: "other"},
		{LeadScore: intPtr(-20)},
		{LeadScore: intPtr(250), Email: "a@b.c", Company: "X", Source: "referral", CreatedAt: "2026-01-01T00:00:00Z"},
	}

	for _, in := range inputs {
		result := Score(in)
		if result.Composite < 10 || result.Composite > 100 {
			t.Errorf("composite %d out of range for input %+v", result.Composite, in)
		}
		for _, f := range result.Factors {
			if f.Score < 0 || f.Score > 100 {
				t.Errorf("factor %s score %d out of range for input %+v", f.Factor, f.Score, in)
			}
		}
	}
}

func TestScoreFactorOrderIsFixed(t *testing.T) {
	result := Score(Input{})

	want := []string{FactorEngagement, FactorCompanyFit, FactorIntent, FactorRecency, FactorHistory}
	if len(result.Factors) != len(want) {
		t.Fatalf("got %d factors, want %d", len(result.Factors), len(want))
	}
	for i, name := range want {
		if result.Factors[i].Factor != name {
			t.Errorf("factor[%d] = %q, want %q", i, result.Factors[i].Factor, name)
		}
	}
}

func TestScoreFactorTrendsAndInsightsFollowInputs(t *testing.T) {
	result := Score(Input{
		Email:     "buyer@acme.test",
		Source:    "referral",
		CreatedAt: "2026-08-01T09:00:00Z",
	})

	wantTrends := map[string]string{
		FactorEngagement: "up",
		FactorCompanyFit: "down",
		FactorIntent:     "up",
		FactorRecency:    "up",
		FactorHistory:    "down",
	}
	for _, f := range result.Factors {
		if f.Trend != wantTrends[f.Factor] {
			t.Errorf("factor %s trend = %q, want %q", f.Factor, f.Trend, wantTrends[f.Factor])
		}
		if f.Insight == "" {
			t.Errorf("factor %s has no insight", f.Factor)
		}
	}
}

func TestScoreFactorInsightsChosenByFields(t *testing.T) {
	withSource := Score(Input{Source: "referral"})
	withoutSource := Score(Input{})

	if withSource.Factors[2].Insight != "Referred lead, warm introduction" {
		t.Errorf("referral intent insight = %q", withSource.Factors[2].Insight)
	}
	if withoutSource.Factors[2].Insight != "No inbound source recorded" {
		t.Errorf("sourceless intent insight = %q", withoutSource.Factors[2].Insight)
	}
	if withoutSource.Factors[3].Trend != "stable" {
		t.Errorf("dateless recency trend = %q, want stable", withoutSource.Factors[3].Trend)
	}
}

func TestInsightsTierMessageFirst(t *testing.T) {
	result := Score(Input{})

	if len(result.Insights) == 0 {
		t.Fatal("expected at least one insight")
	}
	if result.Insights[0] != "Warm lead: nurture with targeted touchpoints" {
		t.Fatalf("first insight = %q, want warm tier message", result.Insights[0])
	}
}

func TestInsightsNeverExceedFour(t *testing.T) {
	// base 52 without email spreads the factors wide enough to trigger
	// every insight: strength (Recency 77), bottleneck (Company Fit 37)
	// and the missing-email action.
	result := Score(Input{
		LeadScore: intPtr(52),
		Source:    "website",
		CreatedAt: "2026-08-01T09:00:00Z",
	})

	if len(result.Insights) != 4 {
		t.Fatalf("got %d insights, want 4: %v", len(result.Insights), result.Insights)
	}
	if result.Insights[1] != "Recency is this lead's strongest signal" {
		t.Errorf("insight[1] = %q", result.Insights[1])
	}
	if result.Insights[2] != "Company Fit is holding the score back" {
		t.Errorf("insight[2] = %q", result.Insights[2])
	}
	if result.Insights[3] != "Add an email address to unlock outreach" {
		t.Errorf("insight[3] = %q", result.Insights[3])
	}
}

func TestInsightsTieBreaksToEarlierFactor(t *testing.T) {
	// Company Fit and Recency both hit 100 here; the earlier factor in
	// display order is named as the strongest signal.
	result := Score(Input{
		LeadScore: intPtr(80),
		Email:     "buyer@acme.test",
		Company:   "Acme BV",
		Source:    "website",
		CreatedAt: "2026-08-01T09:00:00Z",
	})

	if len(result.Insights) < 2 {
		t.Fatalf("expected strength insight, got %v", result.Insights)
	}
	if result.Insights[1] != "Company Fit is this lead's strongest signal" {
		t.Fatalf("insight[1] = %q, want Company Fit named", result.Insights[1])
	}
}

func TestScoreMissingEmailAlwaysSuggestsAction(t *testing.T) {
	result := Score(Input{LeadScore: intPtr(90), Company: "Acme BV", Source: "referral", CreatedAt: "2026-08-01T09:00:00Z"})

	found := false
	for _, insight := range result.Insights {
		if insight == "Add an email address to unlock outreach" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing email action not present in %v", result.Insights)
	}
}
