package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"blogsmith/internal/core"
)

// RecordOccurrence bumps the freshness log for a keyword, creating the row
// on first sight. The applied strategy and related post are folded in.
func (s *Store) RecordOccurrence(keyword string, postID string, strategy core.FreshnessStrategy, notes string) error {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	now := time.Now().UTC()

	existing, err := s.GetFreshnessLog(kw)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing == nil {
		log := core.FreshnessLog{
			Keyword:         kw,
			FirstOccurrence: now,
			LastOccurrence:  now,
			OccurrenceCount: 1,
			StrategyApplied: strategy,
			StrategyNotes:   notes,
		}
		if postID != "" {
			log.RelatedPostIDs = []string{postID}
		}
		return s.putFreshnessLog(&log)
	}

	existing.LastOccurrence = now
	existing.OccurrenceCount++
	existing.StrategyApplied = strategy
	existing.StrategyNotes = notes
	if postID != "" {
		existing.RelatedPostIDs = append(existing.RelatedPostIDs, postID)
	}
	return s.putFreshnessLog(existing)
}

// GetFreshnessLog returns the log row for a keyword, or (nil, sql.ErrNoRows)
// when the keyword was never seen.
func (s *Store) GetFreshnessLog(keyword string) (*core.FreshnessLog, error) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	row := s.db.QueryRow(`
	SELECT keyword, first_occurrence, last_occurrence, occurrence_count, related_post_ids,
	       strategy_applied, strategy_notes, strategy_success_score, seo_impact, engagement_lift
	FROM freshness_logs WHERE keyword = ?`, kw)

	var log core.FreshnessLog
	var related sql.NullString
	var strategy string
	err := row.Scan(&log.Keyword, &log.FirstOccurrence, &log.LastOccurrence,
		&log.OccurrenceCount, &related, &strategy, &log.StrategyNotes,
		&log.StrategySuccessScore, &log.SEOImpact, &log.EngagementLift)
	if err != nil {
		return nil, err
	}
	log.StrategyApplied = core.FreshnessStrategy(strategy)
	if related.Valid && related.String != "" {
		_ = json.Unmarshal([]byte(related.String), &log.RelatedPostIDs)
	}
	return &log, nil
}

// UpdateFreshnessOutcome records how a strategy performed after the fact.
func (s *Store) UpdateFreshnessOutcome(keyword string, successScore, seoImpact int, engagementLift float64) error {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	res, err := s.db.Exec(`
	UPDATE freshness_logs
	SET strategy_success_score = ?, seo_impact = ?, engagement_lift = ?
	WHERE keyword = ?`, successScore, seoImpact, engagementLift, kw)
	if err != nil {
		return fmt.Errorf("failed to update freshness outcome: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no freshness log for keyword %q", kw)
	}
	return nil
}

func (s *Store) putFreshnessLog(log *core.FreshnessLog) error {
	related, _ := json.Marshal(log.RelatedPostIDs)
	_, err := s.db.Exec(`
	INSERT OR REPLACE INTO freshness_logs
	(keyword, first_occurrence, last_occurrence, occurrence_count, related_post_ids,
	 strategy_applied, strategy_notes, strategy_success_score, seo_impact, engagement_lift)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.Keyword, log.FirstOccurrence, log.LastOccurrence, log.OccurrenceCount,
		string(related), string(log.StrategyApplied), log.StrategyNotes,
		log.StrategySuccessScore, log.SEOImpact, log.EngagementLift,
	)
	if err != nil {
		return fmt.Errorf("failed to save freshness log: %w", err)
	}
	return nil
}
