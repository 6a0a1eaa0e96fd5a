// Package topics filters, scores, and classifies trending keywords ahead of
// content generation.
package topics

import (
	"strings"
	"time"

	"blogsmith/internal/core"
)

// FilterResult explains why a topic was rejected. Empty Reason means the
// topic passed.
type FilterResult struct {
	Passed bool
	Reason string
}

// Filter applies the topic quality gates: a keyword needs at least two
// tokens and must not contain a banned word. Matching is on whole tokens so
// "sussex" is not caught by "sex".
func Filter(keyword string, banned []string) FilterResult {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(keyword)))
	if len(tokens) < 2 {
		return FilterResult{Reason: "too_short"}
	}
	for _, tok := range tokens {
		for _, bad := range banned {
			if tok == bad {
				return FilterResult{Reason: "banned_word"}
			}
		}
	}
	return FilterResult{Passed: true}
}

// EngagementScore predicts engagement for a topic on a 0..100 scale. It
// starts from a neutral base and adds credit for historical post
// performance, search volume, and trend velocity.
func EngagementScore(t core.Topic, stats core.HistoryStats) int {
	score := 60.0

	switch {
	case stats.AvgViews > 1000:
		score += 20
	case stats.AvgViews > 500:
		score += 10
	case stats.AvgViews > 100:
		score += 5
	}

	switch {
	case stats.AvgTimeOnPage > 120:
		score += 20
	case stats.AvgTimeOnPage > 60:
		score += 10
	}

	vol := float64(t.SearchVolume) / 10000
	if vol > 1 {
		vol = 1
	}
	score += vol * 20

	incr := float64(t.IncreasePercentage) / 500
	if incr > 1 {
		incr = 1
	}
	score += incr * 20

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// templateRule maps keyword markers to a template type. Rules are checked
// in order and the first hit wins.
type templateRule struct {
	tt      core.TemplateType
	markers []string
}

var templateRules = []templateRule{
	{core.TemplateHowTo, []string{"how to", "diy", "tutorial", "step by step", "how do i"}},
	{core.TemplateComparison, []string{" vs ", " vs.", "versus", "comparison", "compare", "difference between", "alternatives to"}},
	{core.TemplateLocal, []string{"near me", "nearby", "in my area", " local "}},
	{core.TemplateComparison, []string{" best ", " top ", " review", " worst "}},
	{core.TemplateTrend, []string{"breaking", " news", "launches", "announces", "trending", "update", "latest"}},
	{core.TemplateEvergreen, []string{"guide", "ultimate", "tips", "what is", "history of", "benefits of"}},
}

// PredictTemplateType classifies a keyword into a template type using the
// ordered marker rules, defaulting to how_to when nothing matches.
func PredictTemplateType(keyword string) core.TemplateType {
	kw := " " + strings.ToLower(strings.TrimSpace(keyword)) + " "
	for _, rule := range templateRules {
		for _, m := range rule.markers {
			if strings.Contains(kw, m) {
				return rule.tt
			}
		}
	}
	return core.TemplateHowTo
}

// DetectDuplicate reports whether keyword has already appeared at least
// twice within the trailing window among the given topics. Comparison is
// case-insensitive on the normalized keyword.
func DetectDuplicate(keyword string, recent []core.Topic, window time.Duration, now time.Time) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	cutoff := now.Add(-window)
	count := 0
	for _, t := range recent {
		if t.Timestamp.Before(cutoff) {
			continue
		}
		if strings.ToLower(strings.TrimSpace(t.Keyword)) == kw {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// FirstToken returns the lowercased first token of a keyword. Engagement
// history is keyed by it so "ai tools" and "ai writing" share a record.
func FirstToken(keyword string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(keyword)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Selection is the outcome of choosing a topic for generation.
type Selection struct {
	Topic    core.Topic
	Template core.TemplateType
	Strategy core.FreshnessStrategy
	Notes    string
}

// SelectBest picks a topic and decides the freshness strategy. Candidates
// whose keyword already has recent posts are demoted: they are chosen only
// when no uncovered candidate exists, and then with a different-angle
// strategy and a template disjoint from previous coverage. Stats are keyed
// by the keyword's first token; duplicates marks repeating trend keywords.
func SelectBest(candidates []core.Topic, stats map[string]core.HistoryStats, recentTemplates map[string][]core.TemplateType, duplicates map[string]bool) (Selection, bool) {
	if len(candidates) == 0 {
		return Selection{}, false
	}

	var best core.Topic
	bestScore := -1
	bestCovered := false
	for _, c := range candidates {
		kw := strings.ToLower(strings.TrimSpace(c.Keyword))
		covered := len(recentTemplates[kw]) > 0
		score := EngagementScore(c, stats[FirstToken(c.Keyword)])
		switch {
		case bestScore < 0:
		case bestCovered && !covered:
			// An uncovered alternative always beats a covered pick.
		case covered && !bestCovered:
			continue
		case score <= bestScore:
			continue
		}
		best, bestScore, bestCovered = c, score, covered
	}

	sel := Selection{
		Topic:    best,
		Template: PredictTemplateType(best.Keyword),
		Strategy: core.StrategyStandard,
	}

	kw := strings.ToLower(strings.TrimSpace(best.Keyword))
	used := recentTemplates[kw]
	if len(used) == 0 {
		return sel, true
	}

	sel.Strategy = core.StrategyDifferentAngle
	sel.Notes = "keyword already covered " + strings.Join(templateNames(used), ", ")
	if duplicates[kw] {
		sel.Notes += "; keyword is a repeating trend"
	}
	if disjoint, ok := firstUnused(used); ok && contains(used, sel.Template) {
		sel.Template = disjoint
		sel.Strategy = core.StrategyNewTemplate
	}
	return sel, true
}

func templateNames(tts []core.TemplateType) []string {
	out := make([]string, len(tts))
	for i, tt := range tts {
		out[i] = string(tt)
	}
	return out
}

func contains(tts []core.TemplateType, tt core.TemplateType) bool {
	for _, t := range tts {
		if t == tt {
			return true
		}
	}
	return false
}

func firstUnused(used []core.TemplateType) (core.TemplateType, bool) {
	for _, tt := range core.AllTemplateTypes() {
		if !contains(used, tt) {
			return tt, true
		}
	}
	return "", false
}

// Fallbacks converts the curated fallback list into Topic candidates,
// skipping keywords already used in the trailing week.
func Fallbacks(list []string, usedRecently map[string]bool, now time.Time) []core.Topic {
	var out []core.Topic
	for i, kw := range list {
		if usedRecently[strings.ToLower(kw)] {
			continue
		}
		out = append(out, core.Topic{
			Keyword:    kw,
			Rank:       i + 1,
			Location:   "global",
			Timestamp:  now,
			IsFallback: true,
		})
	}
	return out
}
