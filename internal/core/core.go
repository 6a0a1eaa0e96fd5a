package core

import "time"

// TemplateType identifies the content structure a post is generated and
// rendered with. The five values map to the template catalog in
// internal/templates (template1..template5).
type TemplateType string

const (
	TemplateEvergreen  TemplateType = "evergreen"
	TemplateTrend      TemplateType = "trend"
	TemplateComparison TemplateType = "comparison"
	TemplateLocal      TemplateType = "local"
	TemplateHowTo      TemplateType = "how_to"
)

// ValidTemplateType reports whether s is a member of the canonical enum.
func ValidTemplateType(s string) bool {
	switch TemplateType(s) {
	case TemplateEvergreen, TemplateTrend, TemplateComparison, TemplateLocal, TemplateHowTo:
		return true
	}
	return false
}

// AllTemplateTypes returns the canonical enum in catalog order.
func AllTemplateTypes() []TemplateType {
	return []TemplateType{TemplateEvergreen, TemplateTrend, TemplateComparison, TemplateLocal, TemplateHowTo}
}

// FreshnessStrategy names the approach used to generate materially different
// content for a topic that has recurred across runs.
type FreshnessStrategy string

const (
	StrategyStandard       FreshnessStrategy = "standard"
	StrategyDifferentAngle FreshnessStrategy = "different_angle"
	StrategyNewTemplate    FreshnessStrategy = "new_template"
	StrategyLatestData     FreshnessStrategy = "latest_data"
)

// PostStatus is the publication state of a Post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Topic is a candidate subject harvested from the trend source, eligible for
// article generation. Topics are unique on (Keyword, Timestamp, Location) and
// are never deleted; consumption flips Processed, rejection flips FilteredOut.
type Topic struct {
	ID                 int64     `json:"id"`
	Keyword            string    `json:"keyword"`
	Rank               int       `json:"rank"`
	Location           string    `json:"location"` // global, us, uk, ca, au, in
	Timestamp          time.Time `json:"timestamp"`
	Processed          bool      `json:"processed"`
	FilteredOut        bool      `json:"filtered_out"`
	FilterReason       string    `json:"filter_reason"`
	SearchVolume       int       `json:"search_volume"`
	IncreasePercentage int       `json:"increase_percentage"`
	Category           string    `json:"category"`
	RelatedKeywords    []string  `json:"related_keywords"`
	IsFallback         bool      `json:"is_fallback"`
}

// Post is a generated, persisted blog post.
type Post struct {
	ID              string       `json:"id"` // UUID
	Title           string       `json:"title"`
	Slug            string       `json:"slug"` // unique, URL-safe
	Content         string       `json:"content"` // rendered HTML
	MetaDescription string       `json:"meta_description"` // <= 160 chars
	TemplateType    TemplateType `json:"template_type"`
	TopicID         int64        `json:"topic_id"` // weak reference, 0 if none
	Status          PostStatus   `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	PublishedAt     *time.Time   `json:"published_at"`
	ScheduledAt     *time.Time   `json:"scheduled_at"`
	ViewCount       int          `json:"view_count"`
	AvgTimeOnPage   float64      `json:"avg_time_on_page"` // seconds
	IsFreshVariant  bool         `json:"is_fresh_variant"`
	FreshApproach   string       `json:"fresh_approach"`
}

// IsPublished reports whether the post is live.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// ReadingTime estimates reading time in minutes at 200 words per minute.
func (p *Post) ReadingTime() int {
	words := 0
	inWord := false
	for _, r := range p.Content {
		switch r {
		case ' ', '\n', '\t', '\r':
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}
	minutes := words / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// HistoryStats summarizes engagement across published posts. Zero values
// mean no history is available yet.
type HistoryStats struct {
	PostCount     int     `json:"post_count"`
	AvgViews      float64 `json:"avg_views"`
	AvgTimeOnPage float64 `json:"avg_time_on_page"` // seconds
}

// FreshnessLog tracks how often a keyword recurs across runs and how the
// applied freshness strategy performed. One row per normalized keyword.
type FreshnessLog struct {
	Keyword              string            `json:"keyword"` // lowercased
	FirstOccurrence      time.Time         `json:"first_occurrence"`
	LastOccurrence       time.Time         `json:"last_occurrence"`
	OccurrenceCount      int               `json:"occurrence_count"`
	RelatedPostIDs       []string          `json:"related_post_ids"`
	StrategyApplied      FreshnessStrategy `json:"strategy_applied"`
	StrategyNotes        string            `json:"strategy_notes"`
	StrategySuccessScore int               `json:"strategy_success_score"` // 0..100
	SEOImpact            int               `json:"seo_impact"`             // -100..100
	EngagementLift       float64           `json:"engagement_lift"`
}

// GeneratedContent is the transient structured article produced by an LLM
// call after parsing and repair. It is rendered to HTML and then discarded;
// only the resulting Post is persisted.
type GeneratedContent struct {
	Title           string           `json:"title"`
	MetaDescription string           `json:"meta_description"`
	Introduction    string           `json:"introduction"`
	TableOfContents []string         `json:"table_of_contents"`
	Sections        []Section        `json:"sections"`
	Conclusion      string           `json:"conclusion"`
	FAQ             []FAQItem        `json:"faq"`
	TemplateType    TemplateType     `json:"template_type"`
	Prerequisites   []string         `json:"prerequisites"`    // how_to
	ComparisonTable *ComparisonTable `json:"comparison_table"` // comparison
	LocalInfo       *LocalInfo       `json:"local_info"`       // local
	CallToAction    *CallToAction    `json:"call_to_action"`
}

// Section is one top-level article section.
type Section struct {
	Heading     string       `json:"h2"`
	Content     string       `json:"content"`
	Subsections []Subsection `json:"subsections"`
}

// Subsection is a nested section under an H2 heading.
type Subsection struct {
	Heading   string   `json:"h3"`
	Content   string   `json:"content"`
	ListItems []string `json:"list_items"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ComparisonTable holds the structured table a comparison post may include.
type ComparisonTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// LocalInfo holds the location framing block a local post may include.
type LocalInfo struct {
	Location    string `json:"location"`
	Description string `json:"description"`
}

// CallToAction renders as a single link at the end of a post.
type CallToAction struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}
