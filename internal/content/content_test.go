package content

import (
	"strings"
	"testing"

	"blogsmith/internal/core"
)

const validPayload = `{
  "title": "Ultimate Guide to Cold Brew",
  "meta_description": "Everything you need to know about making cold brew coffee at home.",
  "introduction": "Cold brew is more than iced coffee.",
  "table_of_contents": ["Equipment", "Method"],
  "sections": [
    {"h2": "Equipment", "content": "You need a jar and a filter."},
    {"h2": "Method", "content": "Steep for 12 hours.", "subsections": [
      {"h3": "Ratios", "content": "Use 1:8.", "list_items": ["coarse grind", "cold water"]}
    ]}
  ],
  "conclusion": "Enjoy your brew.",
  "faq": [{"question": "How long does it keep?", "answer": "Up to two weeks."}],
  "template_type": "how_to"
}`

func TestParseValidPayload(t *testing.T) {
	gc, _, err := Parse(validPayload, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if gc.Title != "Ultimate Guide to Cold Brew" {
		t.Errorf("title = %q", gc.Title)
	}
	if gc.TemplateType != core.TemplateHowTo {
		t.Errorf("template_type = %q, want payload's own how_to", gc.TemplateType)
	}
	if len(gc.Sections) != 2 || len(gc.Sections[1].Subsections) != 1 {
		t.Errorf("sections not decoded: %+v", gc.Sections)
	}
}

func TestParseFencedPayload(t *testing.T) {
	raw := "Here is your article:\n```json\n" + validPayload + "\n```"
	gc, _, err := Parse(raw, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error on fenced payload: %v", err)
	}
	if gc.Title == "" {
		t.Error("title lost")
	}
}

func TestParseInvalidTemplateTypeFallsBack(t *testing.T) {
	raw := strings.Replace(validPayload, `"how_to"`, `"template7"`, 1)
	gc, _, err := Parse(raw, core.TemplateTrend)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if gc.TemplateType != core.TemplateTrend {
		t.Errorf("template_type = %q, want fallback trend", gc.TemplateType)
	}
}

func TestParseFillsMissingFields(t *testing.T) {
	gc, missing, err := Parse(`{"sections":[{"h2":"A","content":"b"}]}`, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error on payload without title: %v", err)
	}
	if gc.Title != "" {
		t.Errorf("title = %q, want empty default", gc.Title)
	}
	want := map[string]bool{"title": true, "meta_description": true}
	for _, f := range missing {
		if !want[f] {
			t.Errorf("unexpected missing field %q", f)
		}
		delete(want, f)
	}
	for f := range want {
		t.Errorf("field %q not reported missing", f)
	}
}

func TestParseFillsEmptySections(t *testing.T) {
	gc, missing, err := Parse(`{"title":"T","meta_description":"m"}`, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error on payload without sections: %v", err)
	}
	if gc.Sections == nil || len(gc.Sections) != 0 {
		t.Errorf("sections = %#v, want empty default", gc.Sections)
	}
	if len(missing) != 1 || missing[0] != "sections" {
		t.Errorf("missing = %v, want [sections]", missing)
	}
}

func TestParseIrrecoverableStillFails(t *testing.T) {
	if _, _, err := Parse("no json anywhere in this reply", core.TemplateEvergreen); err == nil {
		t.Error("Parse() accepted output with no JSON object")
	}
}

func TestParseTruncatesLongMetaDescription(t *testing.T) {
	long := strings.Repeat("meta words ", 30)
	gc, _, err := Parse(`{"title":"T","meta_description":"`+long+`","sections":[{"h2":"A","content":"b"}]}`, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := len([]rune(gc.MetaDescription)); got > 160 {
		t.Errorf("meta description length = %d, want <= 160", got)
	}
	if !strings.HasSuffix(gc.MetaDescription, "...") {
		t.Errorf("truncated meta description missing ellipsis: %q", gc.MetaDescription)
	}
}

func TestParseNormalizesSoftFields(t *testing.T) {
	gc, _, err := Parse(`{"title":"T","sections":[{"h2":"A","content":"b"},{"h2":"","content":""}]}`, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if gc.MetaDescription == "" || gc.Introduction == "" || gc.Conclusion == "" {
		t.Error("soft fields not filled")
	}
	if len(gc.Sections) != 1 {
		t.Errorf("empty section not dropped, got %d sections", len(gc.Sections))
	}
}

func TestParseCoercesInvalidUTF8(t *testing.T) {
	raw := "{\"title\":\"caf\xff\xfe\",\"sections\":[{\"h2\":\"A\",\"content\":\"b\"}]}"
	gc, _, err := Parse(raw, core.TemplateEvergreen)
	if err != nil {
		t.Fatalf("Parse() error on mangled bytes: %v", err)
	}
	if !strings.HasPrefix(gc.Title, "caf") {
		t.Errorf("title = %q", gc.Title)
	}
}

func TestParseWithFallbackDegrades(t *testing.T) {
	gc, degraded := ParseWithFallback("the model rambled with no JSON at all", "space tourism", core.TemplateTrend)
	if !degraded {
		t.Fatal("expected degradation")
	}
	if gc.Title != "space tourism" {
		t.Errorf("placeholder title = %q", gc.Title)
	}
	if gc.TemplateType != core.TemplateTrend {
		t.Errorf("placeholder template_type = %q", gc.TemplateType)
	}
	if len(gc.Sections) == 0 {
		t.Error("placeholder has no sections")
	}
}

func TestParseWithFallbackPassesThrough(t *testing.T) {
	gc, degraded := ParseWithFallback(validPayload, "kw", core.TemplateEvergreen)
	if degraded {
		t.Fatal("valid payload should not degrade")
	}
	if gc.Title != "Ultimate Guide to Cold Brew" {
		t.Errorf("title = %q", gc.Title)
	}
}
