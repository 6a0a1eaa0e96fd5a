package templates

import (
	"strings"
	"testing"

	"blogsmith/internal/core"
)

func TestCatalogCoversAllTypes(t *testing.T) {
	seen := map[core.TemplateType]bool{}
	for _, tpl := range All() {
		seen[tpl.Type] = true
	}
	for _, tt := range core.AllTemplateTypes() {
		if !seen[tt] {
			t.Errorf("no catalog entry for template type %q", tt)
		}
	}
}

func TestTypeForKey(t *testing.T) {
	cases := []struct {
		key  string
		want core.TemplateType
	}{
		{"template1", core.TemplateEvergreen},
		{"template2", core.TemplateTrend},
		{"template3", core.TemplateComparison},
		{"template4", core.TemplateLocal},
		{"template5", core.TemplateHowTo},
		{"TEMPLATE5", core.TemplateHowTo},
		{" template3 ", core.TemplateComparison},
		{"template99", core.TemplateHowTo},
		{"", core.TemplateHowTo},
	}
	for _, tc := range cases {
		if got := TypeForKey(tc.key); got != tc.want {
			t.Errorf("TypeForKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestCatalogEntriesComplete(t *testing.T) {
	for _, tpl := range All() {
		if len(tpl.BestUsedFor) == 0 {
			t.Errorf("%s has no best-used-for entries", tpl.Key)
		}
		if len(tpl.ExampleTopics) == 0 {
			t.Errorf("%s has no example topics", tpl.Key)
		}
		if len(tpl.Structure) == 0 {
			t.Errorf("%s has no structure outline", tpl.Key)
		}
	}
}

func TestContextMessageListsEveryKey(t *testing.T) {
	msg := ContextMessage()
	if !strings.HasPrefix(msg, "TEMPLATE INFORMATION") {
		t.Error("context message missing header")
	}
	for _, tpl := range All() {
		if !strings.Contains(msg, tpl.Key) {
			t.Errorf("context message missing key %q", tpl.Key)
		}
		if !strings.Contains(msg, tpl.ExampleTopics[0]) {
			t.Errorf("context message missing example topics for %q", tpl.Key)
		}
	}
	if !strings.Contains(msg, "TEMPLATE SELECTION GUIDELINES") {
		t.Error("context message missing reference document")
	}
}

func TestByTypeRoundTrip(t *testing.T) {
	for _, tt := range core.AllTemplateTypes() {
		tpl, ok := ByType(tt)
		if !ok {
			t.Fatalf("ByType(%q) not found", tt)
		}
		if TypeForKey(tpl.Key) != tt {
			t.Errorf("key %q does not map back to %q", tpl.Key, tt)
		}
	}
}
