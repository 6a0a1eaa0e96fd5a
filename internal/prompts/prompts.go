// Package prompts builds the model prompts used by the generation pipeline.
// Builders are pure: same inputs, same prompt text.
package prompts

import (
	"fmt"
	"strings"

	"blogsmith/internal/core"
)

// TopicCandidate is the slice of topic data exposed to the selection prompt.
type TopicCandidate struct {
	Keyword            string
	SearchVolume       int
	IncreasePercentage int
	Category           string
	Score              int
}

// CoveredTopic describes a candidate keyword that recent posts already
// cover, so the selection prompt can steer away from it.
type CoveredTopic struct {
	Keyword   string
	PostCount int
	Templates []string
}

// TopicSelection asks the model to pick the single best topic from the
// scored candidates. The response contract is a bare JSON object.
func TopicSelection(candidates []TopicCandidate, covered []CoveredTopic) string {
	var b strings.Builder
	b.WriteString("You are selecting the best blog topic from trending search data.\n\n")
	b.WriteString("Candidates:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %q (search volume: %d, increase: %d%%, category: %s, engagement score: %d)\n",
			i+1, c.Keyword, c.SearchVolume, c.IncreasePercentage, c.Category, c.Score)
	}
	if len(covered) > 0 {
		b.WriteString("\nTopics already covered by recent posts:\n")
		for _, c := range covered {
			fmt.Fprintf(&b, "- %q: %d recent post(s), template(s) used: %s\n",
				c.Keyword, c.PostCount, strings.Join(c.Templates, ", "))
		}
		b.WriteString("Prefer a fresh topic over these. Only pick a covered topic if it is clearly the strongest, and then plan a materially different angle or template.\n")
	}
	b.WriteString("\nPick the topic with the best mix of engagement potential and audience value.\n")
	b.WriteString("Respond with ONLY a JSON object, no prose and no code fences:\n")
	b.WriteString(`{"keyword": "<chosen keyword>", "reason": "<one sentence>"}`)
	return b.String()
}

// TemplateSelection asks the model to choose a template key for the keyword.
// The template catalog itself is injected as a system message elsewhere.
func TemplateSelection(keyword string, predicted core.TemplateType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Choose the best content template for a blog post about %q.\n", keyword)
	fmt.Fprintf(&b, "A keyword-based heuristic suggests %q, but override it if the topic clearly fits another template better.\n", predicted)
	b.WriteString("Respond with ONLY a JSON object, no prose and no code fences:\n")
	b.WriteString(`{"template_key": "<template1..template5>", "reason": "<one sentence>"}`)
	return b.String()
}

// ContentGeneration builds the main generation prompt for a keyword and
// template type, optionally adjusted by a freshness strategy and a list of
// related trending searches woven in for SEO. Callers cap the related list.
func ContentGeneration(keyword string, tt core.TemplateType, strategy core.FreshnessStrategy, strategyNotes string, related []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a complete, publication-ready blog post about %q.\n\n", keyword)
	b.WriteString(structureGuidance(tt))
	if angle := strategyGuidance(strategy, strategyNotes); angle != "" {
		b.WriteString("\n")
		b.WriteString(angle)
	}
	if len(related) > 0 {
		b.WriteString("\nIMPORTANT FOR SEO: this topic is trending together with these related searches: ")
		b.WriteString(strings.Join(related, ", "))
		b.WriteString(".\nIncorporate them naturally where they fit: in some H2 and H3 headings, in list items, and in FAQ questions and answers.\n")
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("- SEO-friendly title under 60 characters\n")
	b.WriteString("- meta_description between 120 and 160 characters\n")
	b.WriteString("- at least 3 sections with substantial, specific content\n")
	b.WriteString("- at least 3 FAQ entries\n")
	b.WriteString("- factual, helpful tone; no filler\n\n")
	b.WriteString("Respond with ONLY a JSON object matching this schema, no prose and no code fences:\n")
	b.WriteString(schema(tt))
	return b.String()
}

// ContentRetry builds the corrective prompt after an unusable response. It
// quotes the problem, a parse error or the missing fields, so the model can
// fix its own output.
func ContentRetry(keyword string, tt core.TemplateType, problem string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your previous response for the post about %q could not be used.\n", keyword)
	fmt.Fprintf(&b, "Problem: %s\n\n", problem)
	b.WriteString("Regenerate the full post. Respond with ONLY a JSON object matching this schema, no prose, no code fences, no trailing commas:\n")
	b.WriteString(schema(tt))
	return b.String()
}

func structureGuidance(tt core.TemplateType) string {
	switch tt {
	case core.TemplateEvergreen:
		return "Template: evergreen guide. Write timeless, comprehensive coverage with a table of contents. Avoid dates and current events.\n"
	case core.TemplateTrend:
		return "Template: trend analysis. Explain what is happening, why it matters now, and what to expect next.\n"
	case core.TemplateComparison:
		return "Template: comparison. Compare the main options head to head and include a comparison_table with consistent columns.\n"
	case core.TemplateLocal:
		return "Template: local spotlight. Include a local_info block with the location and practical details for visitors or residents.\n"
	case core.TemplateHowTo:
		return "Template: how-to tutorial. Include a prerequisites list and numbered, actionable steps in the sections.\n"
	default:
		return ""
	}
}

func strategyGuidance(strategy core.FreshnessStrategy, notes string) string {
	switch strategy {
	case core.StrategyDifferentAngle:
		s := "This keyword has been covered before. Take a clearly different angle from previous coverage."
		if notes != "" {
			s += " Previous coverage: " + notes + "."
		}
		return s + "\n"
	case core.StrategyNewTemplate:
		return "This keyword has been covered before with a different structure. Lean into this template's structure to differentiate the post.\n"
	case core.StrategyLatestData:
		return "This keyword has been covered before. Focus on the most recent data, numbers, and developments.\n"
	default:
		return ""
	}
}

func schema(tt core.TemplateType) string {
	base := `{
  "title": "...",
  "meta_description": "...",
  "introduction": "...",
  "table_of_contents": ["..."],
  "sections": [{"h2": "...", "content": "...", "subsections": [{"h3": "...", "content": "...", "list_items": ["..."]}]}],
  "conclusion": "...",
  "faq": [{"question": "...", "answer": "..."}]`
	switch tt {
	case core.TemplateHowTo:
		base += `,
  "prerequisites": ["..."]`
	case core.TemplateComparison:
		base += `,
  "comparison_table": {"headers": ["..."], "rows": [["..."]]}`
	case core.TemplateLocal:
		base += `,
  "local_info": {"location": "...", "description": "..."}`
	}
	base += `,
  "call_to_action": {"text": "...", "url": "..."}
}`
	return base
}
