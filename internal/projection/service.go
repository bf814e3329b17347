package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hanriver.app/readfeed/internal/db"
	"hanriver.app/readfeed/internal/globaltime"
	"hanriver.app/readfeed/internal/metrics"
)

const (
	maxBatchLimit = 300
	minScanWindow = 60
	maxScanWindow = 320

	maxErrorSamples = 10
)

// kst is the fixed offset used for date bucketing. Articles group into
// units by their Korean calendar day, independent of server timezone.
var kst = time.FixedZone("KST", 9*60*60)

// Result aggregates per-article projection outcomes.
type Result struct {
	Scanned   int      `json:"scanned"`
	Projected int      `json:"projected"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

func (r *Result) recordError(err error) {
	r.Failed++
	if err == nil || len(r.Errors) >= maxErrorSamples {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

type Service struct {
	pool *db.Pool
	log  zerolog.Logger
}

func NewService(pool *db.Pool, log zerolog.Logger) *Service {
	return &Service{
		pool: pool,
		log:  log.With().Str("component", "projection").Logger(),
	}
}

// UnitKey converts a publication time to its YYYYMMDD integer bucket at
// UTC+9.
func UnitKey(publishedAt time.Time) int {
	t := publishedAt.In(kst)
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxBatchLimit {
		return maxBatchLimit
	}
	return limit
}

func scanWindowFor(limit int) int {
	window := limit * 2
	if window < minScanWindow {
		window = minScanWindow
	}
	if window > maxScanWindow {
		window = maxScanWindow
	}
	return window
}

// ProjectBatch places up to limit pending articles into date-keyed reading
// units of the course. Bounded and resumable: callers re-invoke it until
// the backlog drains.
func (s *Service) ProjectBatch(ctx context.Context, courseID string, limit int) (*Result, error) {
	if courseID == "" {
		return nil, fmt.Errorf("courseID is required")
	}
	limit = clampLimit(limit)

	candidates, err := s.pool.ListUnprojectedActive(ctx, scanWindowFor(limit))
	if err != nil {
		return nil, fmt.Errorf("scan pending articles: %w", err)
	}

	result := &Result{}
	// Next-index cache per unit key, scoped to this invocation only.
	nextIndex := make(map[int]int)

	for _, candidate := range candidates {
		if result.Projected >= limit {
			break
		}
		result.Scanned++

		if candidate.BodyText == "" {
			result.Skipped++
			metrics.ProjectionArticles.WithLabelValues("skipped").Inc()
			continue
		}

		outcome, err := s.projectOne(ctx, courseID, candidate.ArticleID, nextIndex)
		if err != nil {
			result.recordError(err)
			metrics.ProjectionArticles.WithLabelValues("failed").Inc()
			s.log.Warn().Err(err).Int64("article_id", candidate.ArticleID).Msg("projection failed")
			continue
		}
		metrics.ProjectionArticles.WithLabelValues(outcome).Inc()
		if outcome == "projected" {
			result.Projected++
		} else {
			result.Skipped++
		}
	}

	s.log.Info().
		Str("course_id", courseID).
		Int("scanned", result.Scanned).
		Int("projected", result.Projected).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("projection batch complete")

	return result, nil
}

func (s *Service) projectOne(ctx context.Context, courseID string, articleID int64, nextIndex map[int]int) (string, error) {
	// Re-read live state right before mutating; a concurrent run may have
	// projected or filtered this article since the scan.
	fresh, err := s.pool.GetArticleByID(ctx, articleID)
	if err != nil {
		if db.IsNoRows(err) {
			return "skipped", nil
		}
		return "", fmt.Errorf("re-read article %d: %w", articleID, err)
	}
	if fresh.Status != db.StatusActive || fresh.ProjectedAt != nil {
		return "skipped", nil
	}

	unitKey := UnitKey(fresh.PublishedAt)

	index, cached := nextIndex[unitKey]
	if !cached {
		index, err = s.pool.NextUnitArticleIndex(ctx, courseID, unitKey)
		if err != nil {
			return "", err
		}
	}

	inserted, err := s.pool.InsertUnitArticle(ctx, &db.UnitArticle{
		CourseID:     courseID,
		UnitKey:      unitKey,
		ArticleIndex: index,
		ArticleID:    articleID,
	})
	if err != nil {
		return "", err
	}
	if !inserted {
		// Another run already slotted this article.
		return "skipped", nil
	}
	nextIndex[unitKey] = index + 1

	marked, err := s.pool.MarkArticleProjected(ctx, articleID, courseID, unitKey, index, globaltime.Now().UTC())
	if err != nil {
		return "", err
	}
	if !marked {
		return "skipped", nil
	}
	return "projected", nil
}

// Stats reports the projection backlog over a bounded recent window.
type Stats struct {
	CourseID          string `json:"courseId"`
	RecentActiveCount int64  `json:"recentActiveCount"`
	ProjectedCount    int64  `json:"projectedCount"`
	PendingCount      int64  `json:"pendingCount"`
}

// GetStats reports the backlog for one course over a bounded recent
// window of active articles (an approximation, not a full-table count).
func (s *Service) GetStats(ctx context.Context, courseID string) (*Stats, error) {
	dbStats, err := s.pool.GetProjectionStats(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("projection stats: %w", err)
	}
	return &Stats{
		CourseID:          courseID,
		RecentActiveCount: dbStats.RecentActive,
		ProjectedCount:    dbStats.Projected,
		PendingCount:      dbStats.Pending,
	}, nil
}
