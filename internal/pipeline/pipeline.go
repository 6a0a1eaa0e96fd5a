// Package pipeline orchestrates one end-to-end generation run: fetch trends,
// filter and select a topic, generate and parse content, render, persist,
// and publish due posts. Fetch and parse failures degrade the run instead of
// aborting it; a failed generation call fails the run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogsmith/internal/content"
	"blogsmith/internal/core"
	"blogsmith/internal/jsonrepair"
	"blogsmith/internal/llm"
	"blogsmith/internal/logger"
	"blogsmith/internal/prompts"
	"blogsmith/internal/render"
	"blogsmith/internal/templates"
	"blogsmith/internal/topics"
)

// TrendFetcher supplies trending topics.
type TrendFetcher interface {
	FetchTrending(ctx context.Context, region string, windowHours int) ([]core.Topic, error)
}

// Chatter is the conversational LLM surface the pipeline drives.
type Chatter interface {
	Chat(ctx context.Context, conversationID, message string) llm.ChatResult
	AddTemplateContext(conversationID, contextMessage string)
	Model() string
}

// Storage is the persistence surface the pipeline needs.
type Storage interface {
	CreateTopic(t *core.Topic) (int64, error)
	RecentTopics(window time.Duration) ([]core.Topic, error)
	UnprocessedTopics(window time.Duration, limit int) ([]core.Topic, error)
	MarkProcessed(topicID int64) error
	MarkFilteredOut(topicID int64, reason string) error
	TopicHasPost(topicID int64) (bool, error)
	SavePost(p *core.Post) error
	PublishDue(now time.Time) ([]core.Post, error)
	HistoryStats(keywordToken string) (core.HistoryStats, error)
	RecentTemplatesByKeyword(window time.Duration) (map[string][]core.TemplateType, error)
	RecentKeywords(window time.Duration) (map[string]bool, error)
	RecordOccurrence(keyword string, postID string, strategy core.FreshnessStrategy, notes string) error
}

// Options tune a pipeline independent of its collaborators.
type Options struct {
	Region           string
	WindowHours      int
	TopicWindow      time.Duration
	CandidateLimit   int
	PublishDelay     time.Duration
	PublishInstantly bool
	DuplicateWindow  time.Duration
	RecencyWindow    time.Duration
	RelatedKwLimit   int
	BannedWords      []string
	FallbackTopics   []string
}

func (o *Options) fillDefaults() {
	if o.Region == "" {
		o.Region = "US"
	}
	if o.WindowHours <= 0 {
		o.WindowHours = 24
	}
	if o.TopicWindow <= 0 {
		o.TopicWindow = 4 * time.Hour
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = 10
	}
	if o.PublishDelay <= 0 {
		o.PublishDelay = 10 * time.Minute
	}
	if o.DuplicateWindow <= 0 {
		o.DuplicateWindow = time.Hour
	}
	if o.RecencyWindow <= 0 {
		o.RecencyWindow = 2 * time.Hour
	}
	if o.RelatedKwLimit <= 0 {
		o.RelatedKwLimit = 20
	}
}

// Pipeline wires the collaborators for a generation run.
type Pipeline struct {
	trends TrendFetcher
	chat   Chatter
	store  Storage
	opts   Options
}

// New creates a pipeline. Options not set get working defaults.
func New(trends TrendFetcher, chat Chatter, store Storage, opts Options) *Pipeline {
	opts.fillDefaults()
	return &Pipeline{trends: trends, chat: chat, store: store, opts: opts}
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	ProcessID string
	Post      *core.Post
	Published []core.Post
	Degraded  bool
	Skipped   bool
	SkipNote  string
}

// Run executes one full generation cycle. It returns an error only when no
// post could be produced and nothing was published.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	proc := logger.NewProcessLogger()
	result := &RunResult{ProcessID: proc.ProcessID()}

	p.fetchTopics(ctx, proc)

	candidates, err := p.filterTopics(proc)
	if err != nil {
		proc.EndProcess("FAILED", map[string]any{"reason": err.Error()})
		return result, err
	}

	if len(candidates) == 0 {
		result.Skipped = true
		result.SkipNote = "no usable topics"
		p.publishDue(proc, result)
		proc.EndProcess("COMPLETED", map[string]any{"skipped": true})
		return result, nil
	}

	sel := p.selectTopic(ctx, proc, candidates)
	sel.Template = p.selectTemplate(ctx, proc, sel)

	return p.finishRun(ctx, proc, result, sel)
}

// GenerateFor runs the generation stages for one caller-supplied keyword,
// bypassing trend fetch and filtering. The synthetic topic is stored and
// consumed like any fetched one.
func (p *Pipeline) GenerateFor(ctx context.Context, keyword string) (*RunResult, error) {
	proc := logger.NewProcessLogger()
	result := &RunResult{ProcessID: proc.ProcessID()}

	topic := core.Topic{
		Keyword:   keyword,
		Rank:      1,
		Location:  "global",
		Timestamp: time.Now().UTC(),
	}
	if _, err := p.store.CreateTopic(&topic); err != nil {
		proc.EndProcess("FAILED", map[string]any{"reason": err.Error()})
		return result, fmt.Errorf("failed to store topic: %w", err)
	}

	stats := p.historyByToken(proc, []core.Topic{topic})
	recentTemplates, err := p.store.RecentTemplatesByKeyword(p.opts.RecencyWindow)
	if err != nil {
		recentTemplates = map[string][]core.TemplateType{}
	}
	sel, _ := topics.SelectBest([]core.Topic{topic}, stats, recentTemplates, nil)
	sel.Template = p.selectTemplate(ctx, proc, sel)

	return p.finishRun(ctx, proc, result, sel)
}

// finishRun drives the shared tail of a run: generate, persist, publish due.
func (p *Pipeline) finishRun(ctx context.Context, proc *logger.ProcessLogger, result *RunResult, sel topics.Selection) (*RunResult, error) {
	gc, degraded, err := p.generate(ctx, proc, sel)
	if err != nil {
		p.publishDue(proc, result)
		proc.EndProcess("FAILED", map[string]any{"reason": err.Error()})
		return result, err
	}
	result.Degraded = degraded

	post, err := p.persist(proc, sel, gc)
	if err != nil {
		proc.EndProcess("FAILED", map[string]any{"reason": err.Error()})
		return result, err
	}
	result.Post = post

	p.publishDue(proc, result)
	proc.EndProcess("COMPLETED", map[string]any{
		"post_id":  post.ID,
		"slug":     post.Slug,
		"degraded": degraded,
	})
	return result, nil
}

// fetchTopics pulls trending topics and persists them. When the source
// fails or yields nothing, curated fallback topics are injected instead.
func (p *Pipeline) fetchTopics(ctx context.Context, proc *logger.ProcessLogger) {
	step := proc.Step("FETCH_TOPICS", "Fetching trending topics")

	fetched, err := p.trends.FetchTrending(ctx, p.opts.Region, p.opts.WindowHours)
	if err != nil {
		proc.Warn("trend fetch failed, using fallback topics", "error", err.Error())
	}
	if len(fetched) == 0 {
		used, kwErr := p.store.RecentKeywords(7 * 24 * time.Hour)
		if kwErr != nil {
			used = map[string]bool{}
		}
		fetched = topics.Fallbacks(p.opts.FallbackTopics, used, time.Now().UTC())
	}

	stored := 0
	for i := range fetched {
		if _, err := p.store.CreateTopic(&fetched[i]); err != nil {
			proc.Warn("topic store failed", "keyword", fetched[i].Keyword, "error", err.Error())
			continue
		}
		stored++
	}
	proc.CompleteStep(step, map[string]any{"fetched": len(fetched), "stored": stored})
}

// filterTopics applies the quality gates to unprocessed topics and returns
// the surviving candidates.
func (p *Pipeline) filterTopics(proc *logger.ProcessLogger) ([]core.Topic, error) {
	step := proc.Step("FILTER_TOPICS", "Filtering topic candidates")

	unprocessed, err := p.store.UnprocessedTopics(p.opts.TopicWindow, p.opts.CandidateLimit*2)
	if err != nil {
		proc.FailStep(step, err.Error())
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	var candidates []core.Topic
	rejected := 0
	for _, t := range unprocessed {
		res := topics.Filter(t.Keyword, p.opts.BannedWords)
		if !res.Passed {
			if err := p.store.MarkFilteredOut(t.ID, res.Reason); err != nil {
				proc.Warn("filter flag failed", "topic_id", t.ID, "error", err.Error())
			}
			rejected++
			continue
		}
		if has, err := p.store.TopicHasPost(t.ID); err == nil && has {
			if err := p.store.MarkProcessed(t.ID); err != nil {
				proc.Warn("mark processed failed", "topic_id", t.ID, "error", err.Error())
			}
			continue
		}
		candidates = append(candidates, t)
		if len(candidates) >= p.opts.CandidateLimit {
			break
		}
	}

	proc.CompleteStep(step, map[string]any{"candidates": len(candidates), "rejected": rejected})
	return candidates, nil
}

// selectTopic asks the model to choose among the scored candidates, falling
// back to the heuristic ranking when the reply is unusable. A model pick of
// an already covered keyword is overruled while fresh alternatives exist.
func (p *Pipeline) selectTopic(ctx context.Context, proc *logger.ProcessLogger, candidates []core.Topic) topics.Selection {
	step := proc.Step("SELECT_TOPIC", "Selecting the best topic")

	stats := p.historyByToken(proc, candidates)
	recentTemplates, err := p.store.RecentTemplatesByKeyword(p.opts.RecencyWindow)
	if err != nil {
		recentTemplates = map[string][]core.TemplateType{}
	}
	duplicates := p.duplicateTrends(proc, candidates)

	sel, _ := topics.SelectBest(candidates, stats, recentTemplates, duplicates)
	selCovered := len(recentTemplates[normalizeKeyword(sel.Topic.Keyword)]) > 0

	promptCandidates := make([]prompts.TopicCandidate, len(candidates))
	for i, c := range candidates {
		promptCandidates[i] = prompts.TopicCandidate{
			Keyword:            c.Keyword,
			SearchVolume:       c.SearchVolume,
			IncreasePercentage: c.IncreasePercentage,
			Category:           c.Category,
			Score:              topics.EngagementScore(c, stats[topics.FirstToken(c.Keyword)]),
		}
	}
	covered := coveredTopics(candidates, recentTemplates)

	res := p.chat.Chat(ctx, proc.ProcessID(), prompts.TopicSelection(promptCandidates, covered))
	if res.Err == nil {
		var choice struct {
			Keyword string `json:"keyword"`
		}
		if raw, ok := jsonrepair.Repair(res.Response); ok {
			_ = json.Unmarshal([]byte(raw), &choice)
		}
		if t, ok := matchCandidate(candidates, choice.Keyword); ok {
			if len(recentTemplates[normalizeKeyword(t.Keyword)]) > 0 && !selCovered {
				proc.Warn("model chose a covered keyword over a fresh alternative, keeping heuristic pick", "keyword", choice.Keyword)
			} else {
				refined, _ := topics.SelectBest([]core.Topic{t}, stats, recentTemplates, duplicates)
				sel = refined
			}
		} else if choice.Keyword != "" {
			proc.Warn("model chose unknown keyword, keeping heuristic pick", "keyword", choice.Keyword)
		}
	} else {
		proc.Warn("topic selection chat failed, keeping heuristic pick", "error", res.Err.Error())
	}

	proc.CompleteStep(step, map[string]any{
		"keyword":  sel.Topic.Keyword,
		"strategy": string(sel.Strategy),
	})
	return sel
}

// historyByToken loads engagement history for each distinct first keyword
// token among the candidates.
func (p *Pipeline) historyByToken(proc *logger.ProcessLogger, candidates []core.Topic) map[string]core.HistoryStats {
	stats := map[string]core.HistoryStats{}
	for _, c := range candidates {
		tok := topics.FirstToken(c.Keyword)
		if _, ok := stats[tok]; ok {
			continue
		}
		s, err := p.store.HistoryStats(tok)
		if err != nil {
			proc.Warn("history stats unavailable", "token", tok, "error", err.Error())
			continue
		}
		stats[tok] = s
	}
	return stats
}

// duplicateTrends flags candidate keywords that repeat within the trailing
// duplicate window.
func (p *Pipeline) duplicateTrends(proc *logger.ProcessLogger, candidates []core.Topic) map[string]bool {
	recent, err := p.store.RecentTopics(p.opts.DuplicateWindow)
	if err != nil {
		proc.Warn("recent topics unavailable", "error", err.Error())
		return map[string]bool{}
	}
	now := time.Now().UTC()
	dupes := map[string]bool{}
	for _, c := range candidates {
		if topics.DetectDuplicate(c.Keyword, recent, p.opts.DuplicateWindow, now) {
			dupes[normalizeKeyword(c.Keyword)] = true
		}
	}
	return dupes
}

// coveredTopics builds the duplicate-avoidance guidance for the selection
// prompt from candidates that already have recent posts.
func coveredTopics(candidates []core.Topic, recentTemplates map[string][]core.TemplateType) []prompts.CoveredTopic {
	var out []prompts.CoveredTopic
	seen := map[string]bool{}
	for _, c := range candidates {
		kw := normalizeKeyword(c.Keyword)
		used := recentTemplates[kw]
		if len(used) == 0 || seen[kw] {
			continue
		}
		seen[kw] = true
		names := make([]string, len(used))
		for i, tt := range used {
			names[i] = string(tt)
		}
		out = append(out, prompts.CoveredTopic{Keyword: c.Keyword, PostCount: len(used), Templates: names})
	}
	return out
}

func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

func matchCandidate(candidates []core.Topic, keyword string) (core.Topic, bool) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return core.Topic{}, false
	}
	for _, c := range candidates {
		if strings.ToLower(strings.TrimSpace(c.Keyword)) == kw {
			return c, true
		}
	}
	return core.Topic{}, false
}

// selectTemplate lets the model refine the heuristic template choice. The
// template catalog rides along as injected conversation context.
func (p *Pipeline) selectTemplate(ctx context.Context, proc *logger.ProcessLogger, sel topics.Selection) core.TemplateType {
	step := proc.Step("SELECT_TEMPLATE", "Choosing a content template")

	p.chat.AddTemplateContext(proc.ProcessID(), templates.ContextMessage())
	res := p.chat.Chat(ctx, proc.ProcessID(), prompts.TemplateSelection(sel.Topic.Keyword, sel.Template))

	chosen := sel.Template
	if res.Err == nil {
		var choice struct {
			TemplateKey string `json:"template_key"`
		}
		if raw, ok := jsonrepair.Repair(res.Response); ok {
			_ = json.Unmarshal([]byte(raw), &choice)
		}
		if _, ok := templates.ByKey(strings.ToLower(strings.TrimSpace(choice.TemplateKey))); ok {
			chosen = templates.TypeForKey(choice.TemplateKey)
		}
	} else {
		proc.Warn("template selection chat failed, keeping heuristic choice", "error", res.Err.Error())
	}

	// A freshness strategy that demands a new structure outranks the model.
	if sel.Strategy == core.StrategyNewTemplate && chosen != sel.Template {
		chosen = sel.Template
	}

	proc.CompleteStep(step, map[string]any{"template": string(chosen)})
	return chosen
}

// generate produces structured content for the selection. A failed model
// call is a run failure. Malformed or incomplete output gets one corrective
// retry and then degrades to a placeholder built from the raw response.
func (p *Pipeline) generate(ctx context.Context, proc *logger.ProcessLogger, sel topics.Selection) (*core.GeneratedContent, bool, error) {
	step := proc.Step("GENERATE_CONTENT", "Generating article content")

	related := sel.Topic.RelatedKeywords
	if len(related) > p.opts.RelatedKwLimit {
		related = related[:p.opts.RelatedKwLimit]
	}

	res := p.chat.Chat(ctx, proc.ProcessID(), prompts.ContentGeneration(sel.Topic.Keyword, sel.Template, sel.Strategy, sel.Notes, related))
	if res.Err != nil {
		proc.FailStep(step, res.Err.Error())
		return nil, false, fmt.Errorf("content generation call failed: %w", res.Err)
	}

	raw := res.Response
	gc, missing, err := content.Parse(raw, sel.Template)
	if err != nil || len(missing) > 0 {
		problem := "missing required fields: " + strings.Join(missing, ", ")
		if err != nil {
			problem = err.Error()
		}
		proc.Warn("content unusable, retrying once", "problem", problem)
		retry := p.chat.Chat(ctx, proc.ProcessID(), prompts.ContentRetry(sel.Topic.Keyword, sel.Template, problem))
		if retry.Err == nil {
			if gc2, missing2, err2 := content.Parse(retry.Response, sel.Template); err2 == nil {
				gc, missing, err = gc2, missing2, nil
				raw = retry.Response
			}
		}
	}

	degraded := false
	if err != nil {
		gc, degraded = content.ParseWithFallback(raw, sel.Topic.Keyword, sel.Template)
	} else if len(missing) > 0 {
		proc.Warn("content fields defaulted", "fields", strings.Join(missing, ", "))
	}

	if degraded {
		proc.CompleteStep(step, map[string]any{"degraded": true})
	} else {
		proc.CompleteStep(step, map[string]any{"title": gc.Title})
	}
	return gc, degraded, nil
}

// persist renders the content, saves the post, and updates topic and
// freshness bookkeeping.
func (p *Pipeline) persist(proc *logger.ProcessLogger, sel topics.Selection, gc *core.GeneratedContent) (*core.Post, error) {
	step := proc.Step("SAVE_POST", "Rendering and saving the post")

	title := gc.Title
	if strings.TrimSpace(title) == "" {
		title = sel.Topic.Keyword
	}

	now := time.Now().UTC()
	post := &core.Post{
		ID:              uuid.NewString(),
		Title:           title,
		Slug:            render.Slugify(title),
		Content:         render.HTML(gc, gc.TemplateType),
		MetaDescription: gc.MetaDescription,
		TemplateType:    gc.TemplateType,
		TopicID:         sel.Topic.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
		IsFreshVariant:  sel.Strategy != core.StrategyStandard,
		FreshApproach:   string(sel.Strategy),
	}
	if p.opts.PublishInstantly {
		post.Status = core.StatusPublished
		t := now
		post.PublishedAt = &t
	} else {
		post.Status = core.StatusScheduled
		t := now.Add(p.opts.PublishDelay)
		post.ScheduledAt = &t
	}

	if err := p.store.SavePost(post); err != nil {
		proc.FailStep(step, err.Error())
		return nil, fmt.Errorf("failed to save post: %w", err)
	}
	if sel.Topic.ID != 0 {
		if err := p.store.MarkProcessed(sel.Topic.ID); err != nil {
			proc.Warn("mark processed failed", "topic_id", sel.Topic.ID, "error", err.Error())
		}
	}
	if err := p.store.RecordOccurrence(sel.Topic.Keyword, post.ID, sel.Strategy, sel.Notes); err != nil {
		proc.Warn("freshness record failed", "keyword", sel.Topic.Keyword, "error", err.Error())
	}

	proc.CompleteStep(step, map[string]any{"post_id": post.ID, "slug": post.Slug, "status": string(post.Status)})
	return post, nil
}

// publishDue flips scheduled posts whose time has come.
func (p *Pipeline) publishDue(proc *logger.ProcessLogger, result *RunResult) {
	step := proc.Step("PUBLISH_DUE", "Publishing scheduled posts")
	published, err := p.store.PublishDue(time.Now().UTC())
	if err != nil {
		proc.FailStep(step, err.Error())
		return
	}
	result.Published = published
	proc.CompleteStep(step, map[string]any{"published": len(published)})
}
