package topics

import (
	"testing"
	"time"

	"blogsmith/internal/config"
	"blogsmith/internal/core"
)

func TestFilter(t *testing.T) {
	banned := config.DefaultBannedWords
	cases := []struct {
		keyword string
		passed  bool
		reason  string
	}{
		{"how to bake bread", true, ""},
		{"bread", false, "too_short"},
		{"  bread  ", false, "too_short"},
		{"", false, "too_short"},
		{"online casino bonus", false, "banned_word"},
		{"sussex property prices", true, ""}, // token match, not substring
		{"free crack download", false, "banned_word"},
	}
	for _, tc := range cases {
		got := Filter(tc.keyword, banned)
		if got.Passed != tc.passed || got.Reason != tc.reason {
			t.Errorf("Filter(%q) = %+v, want passed=%v reason=%q", tc.keyword, got, tc.passed, tc.reason)
		}
	}
}

func TestPredictTemplateType(t *testing.T) {
	cases := []struct {
		keyword string
		want    core.TemplateType
	}{
		{"how to bake bread", core.TemplateHowTo},
		{"iPhone vs Samsung", core.TemplateComparison},
		{"Best restaurants near me", core.TemplateLocal},
		{"Breaking news: company launches product", core.TemplateTrend},
		{"Ultimate guide to investing", core.TemplateEvergreen},
		{"best laptops 2026", core.TemplateComparison},
		{"laptop deals today", core.TemplateHowTo}, // no marker, default
		{"difference between llc and corporation", core.TemplateComparison},
	}
	for _, tc := range cases {
		if got := PredictTemplateType(tc.keyword); got != tc.want {
			t.Errorf("PredictTemplateType(%q) = %q, want %q", tc.keyword, got, tc.want)
		}
	}
}

func TestEngagementScoreBounds(t *testing.T) {
	// No signal at all sits at the neutral base.
	if got := EngagementScore(core.Topic{}, core.HistoryStats{}); got != 60 {
		t.Errorf("neutral score = %d, want 60", got)
	}
	// Everything maxed clamps at 100.
	max := EngagementScore(
		core.Topic{SearchVolume: 1000000, IncreasePercentage: 10000},
		core.HistoryStats{AvgViews: 5000, AvgTimeOnPage: 300},
	)
	if max != 100 {
		t.Errorf("maxed score = %d, want 100", max)
	}
}

func TestEngagementScoreMonotonicInVolume(t *testing.T) {
	stats := core.HistoryStats{}
	prev := -1
	for _, vol := range []int{0, 1000, 5000, 10000, 50000} {
		got := EngagementScore(core.Topic{SearchVolume: vol}, stats)
		if got < prev {
			t.Errorf("score decreased at volume %d: %d < %d", vol, got, prev)
		}
		prev = got
	}
}

func TestEngagementScoreHistoryTiers(t *testing.T) {
	topic := core.Topic{}
	cases := []struct {
		views float64
		want  int
	}{
		{50, 60},
		{150, 65},
		{600, 70},
		{1500, 80},
	}
	for _, tc := range cases {
		if got := EngagementScore(topic, core.HistoryStats{AvgViews: tc.views}); got != tc.want {
			t.Errorf("score at avg views %.0f = %d, want %d", tc.views, got, tc.want)
		}
	}
}

func TestDetectDuplicate(t *testing.T) {
	now := time.Now()
	recent := []core.Topic{
		{Keyword: "ai tools", Timestamp: now.Add(-10 * time.Minute)},
		{Keyword: "AI Tools", Timestamp: now.Add(-30 * time.Minute)},
		{Keyword: "ai tools", Timestamp: now.Add(-3 * time.Hour)}, // outside window
		{Keyword: "solar panels", Timestamp: now.Add(-5 * time.Minute)},
	}
	if !DetectDuplicate("ai tools", recent, time.Hour, now) {
		t.Error("two in-window occurrences not detected as duplicate")
	}
	if DetectDuplicate("solar panels", recent, time.Hour, now) {
		t.Error("single occurrence flagged as duplicate")
	}
	if DetectDuplicate("ai tools", recent, time.Minute, now) {
		t.Error("window not honored")
	}
}

func TestFirstToken(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AI Tools for Productivity", "ai"},
		{"  solar panels ", "solar"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FirstToken(tc.in); got != tc.want {
			t.Errorf("FirstToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSelectBestPicksHighestScore(t *testing.T) {
	candidates := []core.Topic{
		{Keyword: "minor topic here", SearchVolume: 100},
		{Keyword: "how to invest in index funds", SearchVolume: 50000, IncreasePercentage: 400},
	}
	sel, ok := SelectBest(candidates, nil, nil, nil)
	if !ok {
		t.Fatal("SelectBest() found nothing")
	}
	if sel.Topic.Keyword != "how to invest in index funds" {
		t.Errorf("selected %q", sel.Topic.Keyword)
	}
	if sel.Template != core.TemplateHowTo {
		t.Errorf("template = %q", sel.Template)
	}
	if sel.Strategy != core.StrategyStandard {
		t.Errorf("strategy = %q", sel.Strategy)
	}
}

func TestSelectBestUsesPerKeywordHistory(t *testing.T) {
	// Equal topics except one subject has strong post history behind it.
	candidates := []core.Topic{
		{Keyword: "ai tools for productivity"},
		{Keyword: "solar panels at home"},
	}
	stats := map[string]core.HistoryStats{
		"solar": {PostCount: 3, AvgViews: 1500, AvgTimeOnPage: 150},
	}
	sel, ok := SelectBest(candidates, stats, nil, nil)
	if !ok {
		t.Fatal("SelectBest() found nothing")
	}
	if sel.Topic.Keyword != "solar panels at home" {
		t.Errorf("selected %q, want subject with stronger history", sel.Topic.Keyword)
	}
}

func TestSelectBestPrefersUncoveredAlternative(t *testing.T) {
	candidates := []core.Topic{
		{Keyword: "ai tools", SearchVolume: 100000, IncreasePercentage: 900},
		{Keyword: "solar panels at home", SearchVolume: 500},
	}
	recent := map[string][]core.TemplateType{
		"ai tools": {core.TemplateHowTo},
	}
	dupes := map[string]bool{"ai tools": true}

	sel, ok := SelectBest(candidates, nil, recent, dupes)
	if !ok {
		t.Fatal("SelectBest() found nothing")
	}
	if sel.Topic.Keyword != "solar panels at home" {
		t.Errorf("selected %q, want the uncovered alternative", sel.Topic.Keyword)
	}
	if sel.Strategy != core.StrategyStandard {
		t.Errorf("strategy = %q, want standard for an uncovered pick", sel.Strategy)
	}
}

func TestSelectBestAppliesFreshness(t *testing.T) {
	candidates := []core.Topic{{Keyword: "how to bake bread", SearchVolume: 20000}}
	recent := map[string][]core.TemplateType{
		"how to bake bread": {core.TemplateHowTo},
	}
	sel, ok := SelectBest(candidates, nil, recent, nil)
	if !ok {
		t.Fatal("SelectBest() found nothing")
	}
	if sel.Strategy == core.StrategyStandard {
		t.Error("repeat keyword kept standard strategy")
	}
	if sel.Template == core.TemplateHowTo {
		t.Error("repeat keyword kept an already-used template")
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, ok := SelectBest(nil, nil, nil, nil); ok {
		t.Error("SelectBest(nil) reported success")
	}
}

func TestFallbacksSkipUsed(t *testing.T) {
	now := time.Now()
	list := []string{"how to budget", "indoor plants guide"}
	got := Fallbacks(list, map[string]bool{"how to budget": true}, now)
	if len(got) != 1 {
		t.Fatalf("got %d fallbacks, want 1", len(got))
	}
	if got[0].Keyword != "indoor plants guide" || !got[0].IsFallback {
		t.Errorf("fallback = %+v", got[0])
	}
}
