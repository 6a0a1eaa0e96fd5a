// Package content turns raw model output into validated GeneratedContent.
package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"blogsmith/internal/core"
	"blogsmith/internal/jsonrepair"
	"blogsmith/internal/logger"
)

// Parse decodes raw model output into GeneratedContent. The fallback
// template type is applied unless the payload itself names a valid one.
// Validation is lenient: missing required fields (title, meta_description,
// sections) are filled with empty defaults and reported in the second
// return, never treated as fatal. Only irrecoverable JSON fails the parse.
func Parse(raw string, fallback core.TemplateType) (*core.GeneratedContent, []string, error) {
	raw = coerceUTF8(raw)

	fixed, ok := jsonrepair.Repair(raw)
	if !ok {
		return nil, nil, fmt.Errorf("no JSON object could be recovered from model output")
	}

	var gc core.GeneratedContent
	if err := json.Unmarshal([]byte(fixed), &gc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode content object: %w", err)
	}

	if !core.ValidTemplateType(string(gc.TemplateType)) {
		gc.TemplateType = fallback
	}
	missing := fillRequired(&gc)
	normalize(&gc)
	return &gc, missing, nil
}

// ParseWithFallback parses raw output, degrading to a minimal placeholder
// object built from recoverable fragments when parsing fails. The second
// return reports whether degradation happened.
func ParseWithFallback(raw, keyword string, fallback core.TemplateType) (*core.GeneratedContent, bool) {
	gc, _, err := Parse(raw, fallback)
	if err == nil {
		return gc, false
	}
	logger.Warn("content parse failed, using placeholder", "keyword", keyword, "error", err.Error())

	obj := jsonrepair.Fallback(raw, keyword)
	data, _ := json.Marshal(obj)
	var placeholder core.GeneratedContent
	_ = json.Unmarshal(data, &placeholder)
	placeholder.TemplateType = fallback
	normalize(&placeholder)
	return &placeholder, true
}

// fillRequired defaults the required top-level fields and returns the names
// of the ones that were missing, so callers can drive a corrective retry.
func fillRequired(gc *core.GeneratedContent) []string {
	var missing []string
	if strings.TrimSpace(gc.Title) == "" {
		gc.Title = ""
		missing = append(missing, "title")
	}
	if strings.TrimSpace(gc.MetaDescription) == "" {
		missing = append(missing, "meta_description")
	}
	if len(gc.Sections) == 0 {
		gc.Sections = []core.Section{}
		missing = append(missing, "sections")
	}
	return missing
}

// metaDescriptionMax caps the meta description length for search snippets.
const metaDescriptionMax = 160

// normalize fills soft fields so the renderer never deals with holes and
// clamps the meta description to its length bound.
func normalize(gc *core.GeneratedContent) {
	if strings.TrimSpace(gc.MetaDescription) == "" && strings.TrimSpace(gc.Title) != "" {
		gc.MetaDescription = fmt.Sprintf("An article about %s.", gc.Title)
	}
	if runes := []rune(gc.MetaDescription); len(runes) > metaDescriptionMax {
		gc.MetaDescription = strings.TrimSpace(string(runes[:metaDescriptionMax-3])) + "..."
	}
	if strings.TrimSpace(gc.Introduction) == "" && strings.TrimSpace(gc.Title) != "" {
		gc.Introduction = fmt.Sprintf("This article explores %s.", gc.Title)
	}
	if strings.TrimSpace(gc.Conclusion) == "" {
		gc.Conclusion = "Thank you for reading."
	}
	kept := gc.Sections[:0]
	for _, s := range gc.Sections {
		if strings.TrimSpace(s.Heading) == "" && strings.TrimSpace(s.Content) == "" {
			continue
		}
		kept = append(kept, s)
	}
	gc.Sections = kept
}

// coerceUTF8 replaces invalid byte sequences so json decoding and rendering
// stay deterministic on mangled transport data.
func coerceUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
