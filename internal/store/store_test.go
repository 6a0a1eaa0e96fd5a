package store

import (
	"testing"
	"time"

	"blogsmith/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateTopicDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ts := time.Now().UTC().Truncate(time.Second)
	topic := core.Topic{Keyword: "ai tools", Rank: 1, Location: "us", Timestamp: ts,
		SearchVolume: 50000, RelatedKeywords: []string{"free ai tools"}}

	id1, err := s.CreateTopic(&topic)
	if err != nil {
		t.Fatalf("CreateTopic() error: %v", err)
	}
	dup := topic
	dup.ID = 0
	id2, err := s.CreateTopic(&dup)
	if err != nil {
		t.Fatalf("CreateTopic() duplicate error: %v", err)
	}
	if id1 != id2 {
		t.Errorf("duplicate insert produced new id: %d != %d", id1, id2)
	}

	other := core.Topic{Keyword: "ai tools", Location: "uk", Timestamp: ts}
	id3, err := s.CreateTopic(&other)
	if err != nil {
		t.Fatalf("CreateTopic() other location error: %v", err)
	}
	if id3 == id1 {
		t.Error("different location collapsed into same topic")
	}
}

func TestTopicLifecycle(t *testing.T) {
	s := newTestStore(t)
	topic := core.Topic{Keyword: "solar panels cost", Rank: 2, Location: "us", Timestamp: time.Now().UTC()}
	id, err := s.CreateTopic(&topic)
	if err != nil {
		t.Fatal(err)
	}

	unprocessed, err := s.UnprocessedTopics(time.Hour, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(unprocessed) != 1 {
		t.Fatalf("unprocessed = %d, want 1", len(unprocessed))
	}
	if unprocessed[0].Keyword != "solar panels cost" {
		t.Errorf("keyword = %q", unprocessed[0].Keyword)
	}

	if err := s.MarkProcessed(id); err != nil {
		t.Fatal(err)
	}
	unprocessed, err = s.UnprocessedTopics(time.Hour, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(unprocessed) != 0 {
		t.Errorf("processed topic still listed")
	}

	recent, err := s.RecentTopics(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("processed topic dropped from recent list")
	}
}

func TestMarkFilteredOutKeepsRow(t *testing.T) {
	s := newTestStore(t)
	topic := core.Topic{Keyword: "casino bonus codes", Location: "us", Timestamp: time.Now().UTC()}
	id, err := s.CreateTopic(&topic)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MarkFilteredOut(id, "banned_word"); err != nil {
		t.Fatal(err)
	}
	recent, err := s.RecentTopics(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || !recent[0].FilteredOut || recent[0].FilterReason != "banned_word" {
		t.Errorf("filtered topic = %+v", recent)
	}
	unprocessed, _ := s.UnprocessedTopics(time.Hour, 10)
	if len(unprocessed) != 0 {
		t.Error("filtered topic offered as candidate")
	}
}

func TestSavePostAndSlugCollision(t *testing.T) {
	s := newTestStore(t)
	a := core.Post{Title: "AI Tools for Productivity", Slug: "ai-tools-for-productivity",
		TemplateType: core.TemplateEvergreen, Status: core.StatusDraft}
	if err := s.SavePost(&a); err != nil {
		t.Fatal(err)
	}
	if a.ID == "" {
		t.Error("SavePost did not assign an id")
	}

	b := core.Post{Title: "AI Tools for Productivity", Slug: "ai-tools-for-productivity",
		TemplateType: core.TemplateTrend, Status: core.StatusDraft}
	if err := s.SavePost(&b); err != nil {
		t.Fatal(err)
	}
	if b.Slug != "ai-tools-for-productivity-2" {
		t.Errorf("collision slug = %q", b.Slug)
	}

	// Re-saving the same post keeps its slug.
	if err := s.SavePost(&a); err != nil {
		t.Fatal(err)
	}
	if a.Slug != "ai-tools-for-productivity" {
		t.Errorf("re-save changed slug to %q", a.Slug)
	}

	got, err := s.GetPostBySlug("ai-tools-for-productivity-2")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID || got.TemplateType != core.TemplateTrend {
		t.Errorf("fetched post = %+v", got)
	}
}

func TestPublishDue(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	past := now.Add(-5 * time.Minute)
	future := now.Add(30 * time.Minute)

	due := core.Post{Title: "Due", Slug: "due", Status: core.StatusScheduled, ScheduledAt: &past}
	notYet := core.Post{Title: "Not Yet", Slug: "not-yet", Status: core.StatusScheduled, ScheduledAt: &future}
	draft := core.Post{Title: "Draft", Slug: "draft", Status: core.StatusDraft}
	for _, p := range []*core.Post{&due, &notYet, &draft} {
		if err := s.SavePost(p); err != nil {
			t.Fatal(err)
		}
	}

	published, err := s.PublishDue(now)
	if err != nil {
		t.Fatalf("PublishDue() error: %v", err)
	}
	if len(published) != 1 || published[0].Slug != "due" {
		t.Fatalf("published = %+v", published)
	}
	if published[0].PublishedAt == nil {
		t.Error("published_at not stamped")
	}

	got, err := s.GetPost(due.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != core.StatusPublished || !got.IsPublished() {
		t.Errorf("due post status = %q", got.Status)
	}
	still, _ := s.GetPost(notYet.ID)
	if still.Status != core.StatusScheduled {
		t.Errorf("future post flipped early: %q", still.Status)
	}
}

func TestHistoryStats(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.HistoryStats("")
	if err != nil {
		t.Fatal(err)
	}
	if stats.PostCount != 0 || stats.AvgViews != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	now := time.Now().UTC()
	for i, views := range []int{100, 300} {
		p := core.Post{Title: "P", Slug: "p-" + string(rune('a'+i)), Status: core.StatusPublished,
			PublishedAt: &now, ViewCount: views, AvgTimeOnPage: 90}
		if err := s.SavePost(&p); err != nil {
			t.Fatal(err)
		}
	}
	stats, err = s.HistoryStats("")
	if err != nil {
		t.Fatal(err)
	}
	if stats.PostCount != 2 || stats.AvgViews != 200 || stats.AvgTimeOnPage != 90 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHistoryStatsByKeywordToken(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	save := func(keyword, slug string, views int) {
		topic := core.Topic{Keyword: keyword, Location: "us", Timestamp: now}
		id, err := s.CreateTopic(&topic)
		if err != nil {
			t.Fatal(err)
		}
		p := core.Post{Title: keyword, Slug: slug, TopicID: id, Status: core.StatusPublished,
			PublishedAt: &now, ViewCount: views, AvgTimeOnPage: 100}
		if err := s.SavePost(&p); err != nil {
			t.Fatal(err)
		}
	}
	save("AI tools for productivity", "ai-tools", 1000)
	save("ai meeting notes", "ai-notes", 2000)
	save("solar panels at home", "solar-panels", 10)

	ai, err := s.HistoryStats("ai")
	if err != nil {
		t.Fatal(err)
	}
	if ai.PostCount != 2 || ai.AvgViews != 1500 {
		t.Errorf("ai stats = %+v, want 2 posts averaging 1500 views", ai)
	}

	solar, err := s.HistoryStats("solar")
	if err != nil {
		t.Fatal(err)
	}
	if solar.PostCount != 1 || solar.AvgViews != 10 {
		t.Errorf("solar stats = %+v", solar)
	}

	none, err := s.HistoryStats("bread")
	if err != nil {
		t.Fatal(err)
	}
	if none.PostCount != 0 {
		t.Errorf("unseen token stats = %+v", none)
	}
}

func TestUpdatePostMetrics(t *testing.T) {
	s := newTestStore(t)
	p := core.Post{Title: "Metrics", Slug: "metrics", Status: core.StatusPublished}
	if err := s.SavePost(&p); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdatePostMetrics(p.ID, 1200, 75.5); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != 1200 || got.AvgTimeOnPage != 75.5 {
		t.Errorf("metrics = %d / %v", got.ViewCount, got.AvgTimeOnPage)
	}

	if err := s.UpdatePostMetrics("missing", 1, 1); err == nil {
		t.Error("expected error for unknown post")
	}
}

func TestRecentTemplatesByKeyword(t *testing.T) {
	s := newTestStore(t)
	topic := core.Topic{Keyword: "How To Bake Bread", Location: "us", Timestamp: time.Now().UTC()}
	id, err := s.CreateTopic(&topic)
	if err != nil {
		t.Fatal(err)
	}
	p := core.Post{Title: "Bread", Slug: "bread", TopicID: id,
		TemplateType: core.TemplateHowTo, Status: core.StatusPublished}
	if err := s.SavePost(&p); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentTemplatesByKeyword(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tts := got["how to bake bread"]
	if len(tts) != 1 || tts[0] != core.TemplateHowTo {
		t.Errorf("templates = %v", got)
	}
}

func TestFreshnessLogLifecycle(t *testing.T) {
	s := newTestStore(t)
	if err := s.RecordOccurrence("AI Tools", "post-1", core.StrategyStandard, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordOccurrence("ai tools", "post-2", core.StrategyDifferentAngle, "covered as how_to"); err != nil {
		t.Fatal(err)
	}

	log, err := s.GetFreshnessLog("ai tools")
	if err != nil {
		t.Fatal(err)
	}
	if log.OccurrenceCount != 2 {
		t.Errorf("occurrence_count = %d, want 2", log.OccurrenceCount)
	}
	if log.StrategyApplied != core.StrategyDifferentAngle {
		t.Errorf("strategy = %q", log.StrategyApplied)
	}
	if len(log.RelatedPostIDs) != 2 {
		t.Errorf("related posts = %v", log.RelatedPostIDs)
	}

	if err := s.UpdateFreshnessOutcome("ai tools", 80, 10, 1.5); err != nil {
		t.Fatal(err)
	}
	log, err = s.GetFreshnessLog("AI TOOLS")
	if err != nil {
		t.Fatal(err)
	}
	if log.StrategySuccessScore != 80 || log.SEOImpact != 10 || log.EngagementLift != 1.5 {
		t.Errorf("outcome = %+v", log)
	}
}
