// Package store persists topics, posts, and freshness history in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"blogsmith/internal/core"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "blogsmith.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	topicsTable := `
	CREATE TABLE IF NOT EXISTS topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword TEXT NOT NULL,
		rank INTEGER,
		location TEXT,
		timestamp DATETIME,
		processed INTEGER DEFAULT 0,
		filtered_out INTEGER DEFAULT 0,
		filter_reason TEXT DEFAULT '',
		search_volume INTEGER DEFAULT 0,
		increase_percentage INTEGER DEFAULT 0,
		category TEXT DEFAULT '',
		related_keywords TEXT,
		is_fallback INTEGER DEFAULT 0,
		UNIQUE (keyword, timestamp, location)
	);`

	postsTable := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		content TEXT,
		meta_description TEXT,
		template_type TEXT,
		topic_id INTEGER DEFAULT 0,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		published_at DATETIME,
		scheduled_at DATETIME,
		view_count INTEGER DEFAULT 0,
		avg_time_on_page REAL DEFAULT 0,
		is_fresh_variant INTEGER DEFAULT 0,
		fresh_approach TEXT DEFAULT ''
	);`

	freshnessTable := `
	CREATE TABLE IF NOT EXISTS freshness_logs (
		keyword TEXT PRIMARY KEY,
		first_occurrence DATETIME,
		last_occurrence DATETIME,
		occurrence_count INTEGER DEFAULT 0,
		related_post_ids TEXT,
		strategy_applied TEXT DEFAULT '',
		strategy_notes TEXT DEFAULT '',
		strategy_success_score INTEGER DEFAULT 0,
		seo_impact INTEGER DEFAULT 0,
		engagement_lift REAL DEFAULT 0
	);`

	conversationsTable := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		messages TEXT,
		touched DATETIME
	);`

	tables := []string{topicsTable, postsTable, freshnessTable, conversationsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTopic inserts a topic, returning its id. A topic that already
// exists for the same (keyword, timestamp, location) is left untouched and
// its existing id is returned.
func (s *Store) CreateTopic(t *core.Topic) (int64, error) {
	related, _ := json.Marshal(t.RelatedKeywords)

	query := `
	INSERT OR IGNORE INTO topics
	(keyword, rank, location, timestamp, processed, filtered_out, filter_reason,
	 search_volume, increase_percentage, category, related_keywords, is_fallback)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.Exec(query,
		t.Keyword, t.Rank, t.Location, t.Timestamp.UTC(),
		t.Processed, t.FilteredOut, t.FilterReason,
		t.SearchVolume, t.IncreasePercentage, t.Category,
		string(related), t.IsFallback,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		t.ID = id
		return id, nil
	}

	row := s.db.QueryRow(
		`SELECT id FROM topics WHERE keyword = ? AND timestamp = ? AND location = ?`,
		t.Keyword, t.Timestamp.UTC(), t.Location,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve existing topic: %w", err)
	}
	t.ID = id
	return id, nil
}

// RecentTopics returns topics whose timestamp falls inside the trailing
// window, newest first.
func (s *Store) RecentTopics(window time.Duration) ([]core.Topic, error) {
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.db.Query(`
	SELECT id, keyword, rank, location, timestamp, processed, filtered_out, filter_reason,
	       search_volume, increase_percentage, category, related_keywords, is_fallback
	FROM topics WHERE timestamp > ? ORDER BY timestamp DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

// UnprocessedTopics returns candidate topics inside the window that were
// neither consumed nor filtered out, best rank first, up to limit.
func (s *Store) UnprocessedTopics(window time.Duration, limit int) ([]core.Topic, error) {
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.db.Query(`
	SELECT id, keyword, rank, location, timestamp, processed, filtered_out, filter_reason,
	       search_volume, increase_percentage, category, related_keywords, is_fallback
	FROM topics
	WHERE timestamp > ? AND processed = 0 AND filtered_out = 0
	ORDER BY rank ASC LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func scanTopics(rows *sql.Rows) ([]core.Topic, error) {
	var topics []core.Topic
	for rows.Next() {
		var t core.Topic
		var related sql.NullString
		if err := rows.Scan(&t.ID, &t.Keyword, &t.Rank, &t.Location, &t.Timestamp,
			&t.Processed, &t.FilteredOut, &t.FilterReason,
			&t.SearchVolume, &t.IncreasePercentage, &t.Category,
			&related, &t.IsFallback); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		if related.Valid && related.String != "" {
			_ = json.Unmarshal([]byte(related.String), &t.RelatedKeywords)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// MarkProcessed flips the processed flag on a topic.
func (s *Store) MarkProcessed(topicID int64) error {
	_, err := s.db.Exec(`UPDATE topics SET processed = 1 WHERE id = ?`, topicID)
	if err != nil {
		return fmt.Errorf("failed to mark topic processed: %w", err)
	}
	return nil
}

// MarkFilteredOut flags a topic as rejected with its reason. Topics are
// never deleted.
func (s *Store) MarkFilteredOut(topicID int64, reason string) error {
	_, err := s.db.Exec(`UPDATE topics SET filtered_out = 1, filter_reason = ? WHERE id = ?`, reason, topicID)
	if err != nil {
		return fmt.Errorf("failed to mark topic filtered: %w", err)
	}
	return nil
}

// TopicHasPost reports whether a post was already generated for the topic.
func (s *Store) TopicHasPost(topicID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM posts WHERE topic_id = ?`, topicID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check topic posts: %w", err)
	}
	return n > 0, nil
}

// SavePost inserts or updates a post. A missing ID gets a fresh UUID, and a
// slug collision gets a numeric suffix.
func (s *Store) SavePost(p *core.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	slug, err := s.uniqueSlug(p.Slug, p.ID)
	if err != nil {
		return err
	}
	p.Slug = slug

	query := `
	INSERT OR REPLACE INTO posts
	(id, title, slug, content, meta_description, template_type, topic_id, status,
	 created_at, updated_at, published_at, scheduled_at, view_count, avg_time_on_page,
	 is_fresh_variant, fresh_approach)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		p.ID, p.Title, p.Slug, p.Content, p.MetaDescription, string(p.TemplateType),
		p.TopicID, string(p.Status), p.CreatedAt, p.UpdatedAt,
		nullTime(p.PublishedAt), nullTime(p.ScheduledAt),
		p.ViewCount, p.AvgTimeOnPage, p.IsFreshVariant, p.FreshApproach,
	)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	return nil
}

// uniqueSlug appends -2, -3, ... until the slug does not collide with a
// different post.
func (s *Store) uniqueSlug(slug, postID string) (string, error) {
	if slug == "" {
		slug = "post"
	}
	candidate := slug
	for i := 2; ; i++ {
		var existingID string
		err := s.db.QueryRow(`SELECT id FROM posts WHERE slug = ?`, candidate).Scan(&existingID)
		if err == sql.ErrNoRows {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if existingID == postID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}

// GetPostBySlug retrieves one post by its slug.
func (s *Store) GetPostBySlug(slug string) (*core.Post, error) {
	row := s.db.QueryRow(selectPosts+` WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post not found: %s", slug)
	}
	return p, err
}

// GetPost retrieves one post by id.
func (s *Store) GetPost(id string) (*core.Post, error) {
	row := s.db.QueryRow(selectPosts+` WHERE id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post not found: %s", id)
	}
	return p, err
}

const selectPosts = `
	SELECT id, title, slug, content, meta_description, template_type, topic_id, status,
	       created_at, updated_at, published_at, scheduled_at, view_count, avg_time_on_page,
	       is_fresh_variant, fresh_approach
	FROM posts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*core.Post, error) {
	var p core.Post
	var tt, status string
	var published, scheduled sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.MetaDescription, &tt,
		&p.TopicID, &status, &p.CreatedAt, &p.UpdatedAt, &published, &scheduled,
		&p.ViewCount, &p.AvgTimeOnPage, &p.IsFreshVariant, &p.FreshApproach)
	if err != nil {
		return nil, err
	}
	p.TemplateType = core.TemplateType(tt)
	p.Status = core.PostStatus(status)
	if published.Valid {
		t := published.Time
		p.PublishedAt = &t
	}
	if scheduled.Valid {
		t := scheduled.Time
		p.ScheduledAt = &t
	}
	return &p, nil
}

// ListPosts returns posts newest first, optionally restricted to a status.
func (s *Store) ListPosts(status core.PostStatus, limit int) ([]core.Post, error) {
	query := selectPosts
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []core.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// PublishDue flips every scheduled post whose scheduled_at has passed to
// published and stamps published_at. It returns the published posts.
func (s *Store) PublishDue(now time.Time) ([]core.Post, error) {
	now = now.UTC()
	rows, err := s.db.Query(selectPosts+` WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?`,
		string(core.StatusScheduled), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due posts: %w", err)
	}
	var due []core.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan due post: %w", err)
		}
		due = append(due, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range due {
		_, err := s.db.Exec(`UPDATE posts SET status = ?, published_at = ?, updated_at = ? WHERE id = ?`,
			string(core.StatusPublished), now, now, due[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to publish post %s: %w", due[i].ID, err)
		}
		due[i].Status = core.StatusPublished
		t := now
		due[i].PublishedAt = &t
	}
	return due, nil
}

// UpdatePostMetrics records analytics for a post. Metrics arrive from an
// external collector, so missing posts are an error rather than an upsert.
func (s *Store) UpdatePostMetrics(postID string, viewCount int, avgTimeOnPage float64) error {
	res, err := s.db.Exec(`UPDATE posts SET view_count = ?, avg_time_on_page = ?, updated_at = ? WHERE id = ?`,
		viewCount, avgTimeOnPage, time.Now().UTC(), postID)
	if err != nil {
		return fmt.Errorf("failed to update post metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no post with id %s", postID)
	}
	return nil
}

// HistoryStats aggregates engagement across published posts whose topic
// keyword starts with the given token, so candidates on different subjects
// see different history. An empty token aggregates everything.
func (s *Store) HistoryStats(keywordToken string) (core.HistoryStats, error) {
	var stats core.HistoryStats
	tok := strings.ToLower(strings.TrimSpace(keywordToken))

	var err error
	if tok == "" {
		err = s.db.QueryRow(`
	SELECT COUNT(1), COALESCE(AVG(view_count), 0), COALESCE(AVG(avg_time_on_page), 0)
	FROM posts WHERE status = ?`, string(core.StatusPublished)).
			Scan(&stats.PostCount, &stats.AvgViews, &stats.AvgTimeOnPage)
	} else {
		err = s.db.QueryRow(`
	SELECT COUNT(1), COALESCE(AVG(p.view_count), 0), COALESCE(AVG(p.avg_time_on_page), 0)
	FROM posts p JOIN topics t ON t.id = p.topic_id
	WHERE p.status = ? AND (LOWER(t.keyword) = ? OR LOWER(t.keyword) LIKE ?)`,
			string(core.StatusPublished), tok, tok+" %").
			Scan(&stats.PostCount, &stats.AvgViews, &stats.AvgTimeOnPage)
	}
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate history stats: %w", err)
	}
	return stats, nil
}

// RecentTemplatesByKeyword maps each keyword (lowercased) that produced a
// post inside the window to the template types already used for it.
func (s *Store) RecentTemplatesByKeyword(window time.Duration) (map[string][]core.TemplateType, error) {
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.db.Query(`
	SELECT t.keyword, p.template_type
	FROM posts p JOIN topics t ON t.id = p.topic_id
	WHERE p.created_at > ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent templates: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]core.TemplateType)
	for rows.Next() {
		var kw, tt string
		if err := rows.Scan(&kw, &tt); err != nil {
			return nil, fmt.Errorf("failed to scan recent template: %w", err)
		}
		kw = strings.ToLower(strings.TrimSpace(kw))
		out[kw] = append(out[kw], core.TemplateType(tt))
	}
	return out, rows.Err()
}

// RecentKeywords returns the lowercased keywords of topics consumed inside
// the window, used to rotate fallback topics.
func (s *Store) RecentKeywords(window time.Duration) (map[string]bool, error) {
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.db.Query(`SELECT keyword FROM topics WHERE processed = 1 AND timestamp > ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent keywords: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		out[strings.ToLower(strings.TrimSpace(kw))] = true
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
