package render

import (
	"strings"
	"testing"

	"blogsmith/internal/core"
)

func sampleContent() *core.GeneratedContent {
	return &core.GeneratedContent{
		Title:           "Cold Brew at Home",
		Introduction:    "Cold brew is smooth & simple.",
		TableOfContents: []string{"Getting Started", "Brewing Method"},
		Sections: []core.Section{
			{Heading: "Getting Started", Content: "Buy coarse grounds."},
			{Heading: "Brewing Method", Content: "Steep overnight.", Subsections: []core.Subsection{
				{Heading: "Ratios", Content: "Use 1:8.", ListItems: []string{"coarse grind", "filtered water"}},
			}},
		},
		Conclusion: "Enjoy.",
		FAQ:        []core.FAQItem{{Question: "Is it strong?", Answer: "Yes, dilute to taste."}},
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AI Tools for Productivity", "ai-tools-for-productivity"},
		{"  Spaces  &  Symbols!  ", "spaces-symbols"},
		{"Café au Lait", "caf-au-lait"},
		{"already-slugged", "already-slugged"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHTMLDeterministic(t *testing.T) {
	gc := sampleContent()
	a := HTML(gc, core.TemplateEvergreen)
	b := HTML(gc, core.TemplateEvergreen)
	if a != b {
		t.Error("same content produced different HTML")
	}
}

func TestHTMLEvergreenHasTOC(t *testing.T) {
	out := HTML(sampleContent(), core.TemplateEvergreen)
	if !strings.Contains(out, `<nav class="toc">`) {
		t.Error("evergreen output missing table of contents")
	}
	if !strings.Contains(out, `href="#getting-started"`) {
		t.Error("TOC anchors not slugified")
	}
	if !strings.Contains(out, `<h2 id="getting-started">`) {
		t.Error("section heading missing slug id")
	}
}

func TestHTMLTrendOmitsTOC(t *testing.T) {
	out := HTML(sampleContent(), core.TemplateTrend)
	if strings.Contains(out, `<nav class="toc">`) {
		t.Error("non-evergreen output should not carry a TOC")
	}
}

func TestHTMLHowToPrerequisites(t *testing.T) {
	gc := sampleContent()
	gc.Prerequisites = []string{"a jar", "12 hours"}
	out := HTML(gc, core.TemplateHowTo)
	if !strings.Contains(out, `<section class="prerequisites">`) {
		t.Error("how_to output missing prerequisites")
	}
	if !strings.Contains(out, "<li>a jar</li>") {
		t.Error("prerequisite item missing")
	}
}

func TestHTMLComparisonTable(t *testing.T) {
	gc := sampleContent()
	gc.ComparisonTable = &core.ComparisonTable{
		Headers: []string{"Feature", "Option A", "Option B"},
		Rows:    [][]string{{"Price", "$10"}}, // short row padded
	}
	out := HTML(gc, core.TemplateComparison)
	if !strings.Contains(out, `<table class="comparison">`) {
		t.Error("comparison output missing table")
	}
	if strings.Count(out, "<td>") != 3 {
		t.Errorf("short row not padded to header width, got %d cells", strings.Count(out, "<td>"))
	}
}

func TestHTMLLocalBlock(t *testing.T) {
	gc := sampleContent()
	gc.LocalInfo = &core.LocalInfo{Location: "Portland, OR", Description: "Coffee capital."}
	out := HTML(gc, core.TemplateLocal)
	if !strings.Contains(out, `<section class="local-info">`) {
		t.Error("local output missing local block")
	}
	if !strings.Contains(out, "Portland, OR") {
		t.Error("location missing")
	}
}

func TestHTMLEscapesContent(t *testing.T) {
	gc := sampleContent()
	gc.Title = `<script>alert("x")</script>`
	out := HTML(gc, core.TemplateEvergreen)
	if strings.Contains(out, "<script>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(out, "&amp;") {
		t.Error("introduction ampersand not escaped")
	}
}

func TestHTMLEmptySections(t *testing.T) {
	gc := &core.GeneratedContent{Title: "Bare"}
	out := HTML(gc, core.TemplateEvergreen)
	if !strings.Contains(out, "<h1>Bare</h1>") {
		t.Error("missing h1")
	}
	if strings.Contains(out, "<h2") {
		t.Errorf("unexpected section markup in bare output:\n%s", out)
	}
}

func TestHTMLUnicode(t *testing.T) {
	gc := sampleContent()
	gc.Title = "Кофе 咖啡 ☕"
	out := HTML(gc, core.TemplateEvergreen)
	if !strings.Contains(out, "Кофе 咖啡 ☕") {
		t.Error("unicode title mangled")
	}
}

func TestHTMLCallToAction(t *testing.T) {
	gc := sampleContent()
	gc.CallToAction = &core.CallToAction{Text: "Subscribe", URL: "https://example.com/sub"}
	out := HTML(gc, core.TemplateEvergreen)
	if !strings.Contains(out, `<a href="https://example.com/sub">Subscribe</a>`) {
		t.Error("CTA link missing")
	}
}
