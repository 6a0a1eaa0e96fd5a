// Package jsonrepair recovers structured data from model output that is
// almost, but not quite, valid JSON. Extraction and repair are attempted in
// a fixed order from least to most invasive, and Fallback guarantees a
// minimal usable object when everything else fails.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceJSONRe  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fenceAnyRe   = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
	braceSpanRe  = regexp.MustCompile(`(?s)\{.*\}`)
	titleRe      = regexp.MustCompile(`"title"\s*:\s*"([^"]*)"`)
	metaDescRe   = regexp.MustCompile(`"meta_description"\s*:\s*"([^"]*)"`)
	unquotedKey  = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComa = regexp.MustCompile(`,\s*([}\]])`)
	adjacentObjs = regexp.MustCompile(`\}\s*\{`)
)

// Extract pulls the most plausible JSON payload out of raw model text. The
// candidates, in order: a ```json fence, any fence containing an object, the
// widest brace-delimited span, then the whole trimmed text.
func Extract(raw string) string {
	if m := fenceJSONRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fenceAnyRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := braceSpanRe.FindString(raw); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(raw)
}

// Repair attempts to turn raw model output into a JSON object. It returns
// the repaired JSON text and whether any candidate parsed successfully.
func Repair(raw string) (string, bool) {
	candidate := Extract(raw)
	if candidate == "" {
		return "", false
	}
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	if fixed := lightRepair(candidate); json.Valid([]byte(fixed)) {
		return fixed, true
	}
	if fixed := aggressiveRepair(candidate); json.Valid([]byte(fixed)) {
		return fixed, true
	}
	return "", false
}

// lightRepair fixes the most common model slips: leading or trailing prose
// around the object, stray odd quotes at end of line, adjacent objects, and
// trailing commas.
func lightRepair(s string) string {
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if i := strings.LastIndex(s, "}"); i >= 0 && i < len(s)-1 {
		s = s[:i+1]
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.Count(line, `"`)%2 == 1 && strings.HasSuffix(strings.TrimRight(line, " ,"), `"`) == false {
			trimmed := strings.TrimRight(line, " ")
			if strings.HasSuffix(trimmed, ",") {
				lines[i] = strings.TrimSuffix(trimmed, ",") + `",`
			} else {
				lines[i] = trimmed + `"`
			}
		}
	}
	s = strings.Join(lines, "\n")
	s = adjacentObjs.ReplaceAllString(s, "}, {")
	s = trailingComa.ReplaceAllString(s, "$1")
	return s
}

// aggressiveRepair additionally quotes bare keys and strips control
// characters that break the decoder.
func aggressiveRepair(s string) string {
	s = lightRepair(s)
	s = unquotedKey.ReplaceAllString(s, `$1"$2":`)
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	s = b.String()
	s = trailingComa.ReplaceAllString(s, "$1")
	return s
}

// Fallback builds a minimal content object from whatever fragments survive
// in the raw text. It never fails: missing fields get placeholders derived
// from the keyword.
func Fallback(raw, keyword string) map[string]any {
	title := keyword
	if m := titleRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		title = m[1]
	} else if title == "" {
		title = "Untitled Post"
	}
	meta := "An article about " + title + "."
	if m := metaDescRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		meta = m[1]
	}
	return map[string]any{
		"title":            title,
		"meta_description": meta,
		"introduction":     "This article explores " + title + ".",
		"table_of_contents": []any{
			"Overview",
		},
		"sections": []any{
			map[string]any{
				"h2":      "Overview",
				"content": "Content for this section is being prepared.",
			},
		},
		"conclusion": "Thank you for reading.",
		"faq":        []any{},
	}
}
