package db

import (
	"context"
	"fmt"
)

// PipelineStats summarizes the article table for the stats command.
type PipelineStats struct {
	TotalArticles    int64            `json:"totalArticles"`
	ActiveArticles   int64            `json:"activeArticles"`
	FilteredArticles int64            `json:"filteredArticles"`
	ProjectedActive  int64            `json:"projectedActive"`
	ByLevel          map[string]int64 `json:"byLevel"`
	BySource         map[string]int64 `json:"bySource"`
}

func (p *Pool) GetPipelineStats(ctx context.Context) (*PipelineStats, error) {
	stats := &PipelineStats{
		ByLevel:  make(map[string]int64),
		BySource: make(map[string]int64),
	}

	row := p.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE status = $1),
			count(*) FILTER (WHERE status = $2),
			count(*) FILTER (WHERE status = $1 AND projected_at IS NOT NULL)
		FROM feed.articles`,
		StatusActive, StatusFiltered)
	if err := row.Scan(&stats.TotalArticles, &stats.ActiveArticles,
		&stats.FilteredArticles, &stats.ProjectedActive); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	levelRows, err := p.Query(ctx, `
		SELECT difficulty_level, count(*)
		FROM feed.articles
		WHERE status = $1
		GROUP BY difficulty_level`,
		StatusActive)
	if err != nil {
		return nil, fmt.Errorf("count by level: %w", err)
	}
	defer levelRows.Close()
	for levelRows.Next() {
		var level string
		var n int64
		if err := levelRows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		stats.ByLevel[level] = n
	}
	if err := levelRows.Err(); err != nil {
		return nil, err
	}

	sourceRows, err := p.Query(ctx, `
		SELECT source_key, count(*)
		FROM feed.articles
		WHERE status = $1
		GROUP BY source_key
		ORDER BY count(*) DESC
		LIMIT 20`,
		StatusActive)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	defer sourceRows.Close()
	for sourceRows.Next() {
		var source string
		var n int64
		if err := sourceRows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		stats.BySource[source] = n
	}
	return stats, sourceRows.Err()
}

// ProjectionStats summarizes the projection backlog over the most recent
// active articles. The counts are a bounded-window approximation, not a
// full-table total: Projected counts window articles placed into the
// given course, Pending counts window articles not yet placed anywhere.
type ProjectionStats struct {
	WindowSize     int              `json:"windowSize"`
	RecentActive   int64            `json:"recentActive"`
	Projected      int64            `json:"projected"`
	Pending        int64            `json:"pending"`
	PendingByLevel map[string]int64 `json:"pendingByLevel"`
	UnitCount      int64            `json:"unitCount"`
	LatestUnitKey  *int             `json:"latestUnitKey"`
}

const projectionStatsWindow = 300

func (p *Pool) GetProjectionStats(ctx context.Context, courseID string) (*ProjectionStats, error) {
	stats := &ProjectionStats{
		WindowSize:     projectionStatsWindow,
		PendingByLevel: make(map[string]int64),
	}

	row := p.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE projected_at IS NOT NULL AND projected_course_id = $3),
			count(*) FILTER (WHERE projected_at IS NULL)
		FROM (
			SELECT projected_at, projected_course_id
			FROM feed.articles
			WHERE status = $1
			ORDER BY published_at DESC
			LIMIT $2
		) recent`,
		StatusActive, projectionStatsWindow, courseID)
	if err := row.Scan(&stats.RecentActive, &stats.Projected, &stats.Pending); err != nil {
		return nil, fmt.Errorf("count projection window: %w", err)
	}

	levelRows, err := p.Query(ctx, `
		SELECT difficulty_level, count(*)
		FROM (
			SELECT difficulty_level, projected_at
			FROM feed.articles
			WHERE status = $1
			ORDER BY published_at DESC
			LIMIT $2
		) recent
		WHERE projected_at IS NULL
		GROUP BY difficulty_level`,
		StatusActive, projectionStatsWindow)
	if err != nil {
		return nil, fmt.Errorf("count pending by level: %w", err)
	}
	defer levelRows.Close()
	for levelRows.Next() {
		var level string
		var n int64
		if err := levelRows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan pending level count: %w", err)
		}
		stats.PendingByLevel[level] = n
	}
	if err := levelRows.Err(); err != nil {
		return nil, err
	}

	row = p.QueryRow(ctx, `
		SELECT count(DISTINCT unit_key), max(unit_key)
		FROM feed.unit_articles
		WHERE course_id = $1`,
		courseID)
	if err := row.Scan(&stats.UnitCount, &stats.LatestUnitKey); err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}

	return stats, nil
}
