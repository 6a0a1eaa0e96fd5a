// Package templates holds the content template catalog. Each template is
// addressed by a stable key used in model prompts and maps to a canonical
// template type.
package templates

import (
	"fmt"
	"strings"

	"blogsmith/internal/core"
)

// Template describes one entry in the catalog.
type Template struct {
	Key           string
	Type          core.TemplateType
	Name          string
	Description   string
	BestUsedFor   []string
	Structure     []string
	ExampleTopics []string
}

// catalog is ordered; the key order is stable across runs so prompt text is
// deterministic.
var catalog = []Template{
	{
		Key:           "template1",
		Type:          core.TemplateEvergreen,
		Name:          "Evergreen Guide",
		Description:   "A comprehensive, timeless guide on a topic that stays relevant long after publication.",
		BestUsedFor:   []string{"foundational topics", "reference content", "broad explainers"},
		Structure:     []string{"introduction", "table_of_contents", "sections", "faq", "conclusion"},
		ExampleTopics: []string{"ultimate guide to compound interest", "benefits of strength training"},
	},
	{
		Key:           "template2",
		Type:          core.TemplateTrend,
		Name:          "Trend Analysis",
		Description:   "Timely coverage of a developing topic with context on why it is trending now.",
		BestUsedFor:   []string{"breaking developments", "product launches", "spiking searches"},
		Structure:     []string{"introduction", "sections", "faq", "conclusion"},
		ExampleTopics: []string{"new ai model launches", "electric car price drop news"},
	},
	{
		Key:           "template3",
		Type:          core.TemplateComparison,
		Name:          "Comparison",
		Description:   "A side-by-side comparison of competing options with a structured comparison table.",
		BestUsedFor:   []string{"product matchups", "best-of roundups", "buying decisions"},
		Structure:     []string{"introduction", "comparison_table", "sections", "faq", "conclusion"},
		ExampleTopics: []string{"iphone vs samsung", "best budget laptops"},
	},
	{
		Key:           "template4",
		Type:          core.TemplateLocal,
		Name:          "Local Spotlight",
		Description:   "Location-focused coverage with practical local information.",
		BestUsedFor:   []string{"near-me searches", "city guides", "regional events"},
		Structure:     []string{"introduction", "local_info", "sections", "faq", "conclusion"},
		ExampleTopics: []string{"best coffee shops near me", "things to do in austin"},
	},
	{
		Key:           "template5",
		Type:          core.TemplateHowTo,
		Name:          "How-To Tutorial",
		Description:   "Step-by-step instructions with prerequisites and actionable sections.",
		BestUsedFor:   []string{"task-oriented searches", "tutorials", "practical skills"},
		Structure:     []string{"introduction", "prerequisites", "sections", "faq", "conclusion"},
		ExampleTopics: []string{"how to start a vegetable garden", "how to set up a home server"},
	},
}

// referenceDoc is the free-text template reference included alongside the
// structured catalog when the catalog is injected into a conversation.
const referenceDoc = `An evergreen guide answers a question that will still be asked in five years;
pick it when the keyword is informational and not tied to a date or event.
A trend analysis exists because something just happened; pick it when the
keyword spikes around news, a launch, or an announcement, and anchor the post
in why the spike is happening now. A comparison serves a reader deciding
between options; pick it when the keyword names competing things or asks for
the best of a category, and let the comparison table carry the verdict. A
local spotlight serves a reader in a place; pick it when the keyword carries
location intent, and make the local_info block concrete. A how-to tutorial
serves a reader with a task; pick it when the keyword describes something to
accomplish, and make every section an actionable step.`

// All returns the catalog in stable order.
func All() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// ByKey looks up a template by its catalog key.
func ByKey(key string) (Template, bool) {
	for _, t := range catalog {
		if t.Key == key {
			return t, true
		}
	}
	return Template{}, false
}

// ByType looks up the template for a canonical template type.
func ByType(tt core.TemplateType) (Template, bool) {
	for _, t := range catalog {
		if t.Type == tt {
			return t, true
		}
	}
	return Template{}, false
}

// TypeForKey maps a catalog key to its canonical template type, defaulting
// to how_to for unknown keys, matching the keyword classifier's default.
func TypeForKey(key string) core.TemplateType {
	if t, ok := ByKey(strings.TrimSpace(strings.ToLower(key))); ok {
		return t.Type
	}
	return core.TemplateHowTo
}

// ContextMessage renders the catalog as a system-message block for template
// selection conversations, followed by the free-text reference document.
func ContextMessage() string {
	var b strings.Builder
	b.WriteString("TEMPLATE INFORMATION\n\n")
	b.WriteString("The following content templates are available:\n\n")
	for _, t := range catalog {
		fmt.Fprintf(&b, "%s: %s\n", t.Key, t.Name)
		fmt.Fprintf(&b, "Purpose: %s\n", t.Description)
		fmt.Fprintf(&b, "Best Used For: %s\n", strings.Join(t.BestUsedFor, ", "))
		fmt.Fprintf(&b, "Structure: %s\n", strings.Join(t.Structure, ", "))
		fmt.Fprintf(&b, "Example Topics: %s\n\n", strings.Join(t.ExampleTopics, ", "))
	}
	b.WriteString("TEMPLATE SELECTION GUIDELINES:\n")
	b.WriteString(referenceDoc)
	b.WriteString("\n\nWhen selecting a template, refer to it by its key from the list above.")
	return b.String()
}
