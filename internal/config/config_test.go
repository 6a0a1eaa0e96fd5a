package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
	if cfg.SerpAPI.Region != "US" || cfg.SerpAPI.WindowHours != 24 {
		t.Errorf("serpapi defaults = %+v", cfg.SerpAPI)
	}
	if cfg.Pipeline.Interval != "5m" || cfg.Pipeline.PublishDelay != "10m" {
		t.Errorf("pipeline defaults = %+v", cfg.Pipeline)
	}
	if len(cfg.Content.BannedWords) == 0 {
		t.Error("banned words not filled")
	}
	if len(cfg.Content.FallbackTopics) == 0 {
		t.Error("fallback topics not filled")
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		in   string
		def  time.Duration
		want time.Duration
	}{
		{"", time.Minute, time.Minute},
		{"10m", time.Minute, 10 * time.Minute},
		{"24h", time.Minute, 24 * time.Hour},
		{"garbage", 5 * time.Second, 5 * time.Second},
	}
	for _, c := range cases {
		if got := Duration(c.in, c.def); got != c.want {
			t.Errorf("Duration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
