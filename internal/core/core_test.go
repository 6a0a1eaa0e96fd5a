package core

import (
	"strings"
	"testing"
	"time"
)

func TestValidTemplateType(t *testing.T) {
	for _, tt := range AllTemplateTypes() {
		if !ValidTemplateType(string(tt)) {
			t.Errorf("canonical type %q rejected", tt)
		}
	}
	for _, bad := range []string{"", "template1", "guide", "HOW_TO"} {
		if ValidTemplateType(bad) {
			t.Errorf("invalid type %q accepted", bad)
		}
	}
}

func TestPostIsPublished(t *testing.T) {
	p := Post{Status: StatusScheduled}
	if p.IsPublished() {
		t.Error("scheduled post reported published")
	}
	p.Status = StatusPublished
	if !p.IsPublished() {
		t.Error("published post not reported published")
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 1},
		{50, 1},
		{200, 1},
		{401, 2},
		{1000, 5},
	}
	for _, tc := range cases {
		p := Post{Content: strings.TrimSpace(strings.Repeat("word ", tc.words))}
		if got := p.ReadingTime(); got != tc.want {
			t.Errorf("ReadingTime(%d words) = %d, want %d", tc.words, got, tc.want)
		}
	}
}

func TestFreshnessLogZeroValue(t *testing.T) {
	var log FreshnessLog
	if log.OccurrenceCount != 0 || !log.FirstOccurrence.Equal(time.Time{}) {
		t.Errorf("zero value log = %+v", log)
	}
}
