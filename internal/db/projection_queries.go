package db

import (
	"context"
	"fmt"
	"time"
)

// ListUnprojectedActive returns active articles that have not been placed
// into a unit yet, newest published first.
func (p *Pool) ListUnprojectedActive(ctx context.Context, scanWindow int) ([]*Article, error) {
	if scanWindow <= 0 {
		return nil, nil
	}

	rows, err := p.Query(ctx, `
		SELECT `+articleColumns+`
		FROM feed.articles
		WHERE status = $1 AND projected_at IS NULL
		ORDER BY published_at DESC
		LIMIT $2`,
		StatusActive, scanWindow)
	if err != nil {
		return nil, fmt.Errorf("list unprojected articles: %w", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unprojected article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// NextUnitArticleIndex returns the next free slot index inside a unit.
func (p *Pool) NextUnitArticleIndex(ctx context.Context, courseID string, unitKey int) (int, error) {
	var next int
	row := p.QueryRow(ctx, `
		SELECT COALESCE(MAX(article_index) + 1, 0)
		FROM feed.unit_articles
		WHERE course_id = $1 AND unit_key = $2`,
		courseID, unitKey)
	if err := row.Scan(&next); err != nil {
		return 0, fmt.Errorf("next unit article index: %w", err)
	}
	return next, nil
}

// InsertUnitArticle places an article into a unit slot. The unique index
// on article_id makes a repeated placement a no-op. A concurrent writer
// taking the same slot index surfaces as an error; the article stays
// unprojected and is picked up again by the next batch.
func (p *Pool) InsertUnitArticle(ctx context.Context, ua *UnitArticle) (bool, error) {
	if ua == nil {
		return false, fmt.Errorf("unit article is nil")
	}

	row := p.QueryRow(ctx, `
		INSERT INTO feed.unit_articles (course_id, unit_key, article_index, article_id, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (article_id) DO NOTHING
		RETURNING unit_article_id`,
		ua.CourseID, ua.UnitKey, ua.ArticleIndex, ua.ArticleID)

	if err := row.Scan(&ua.UnitArticleID); err != nil {
		if IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert unit article: %w", err)
	}
	return true, nil
}

// MarkArticleProjected stamps the projection fields on an article. The
// WHERE guard keeps the update conditional: a row that was filtered or
// projected since the scan reports false instead of being overwritten.
func (p *Pool) MarkArticleProjected(ctx context.Context, articleID int64, courseID string, unitKey, articleIndex int, projectedAt time.Time) (bool, error) {
	tag, err := p.Exec(ctx, `
		UPDATE feed.articles
		SET projected_at = $1,
			projected_course_id = $2,
			projected_unit_index = $3,
			projected_article_index = $4,
			updated_at = now()
		WHERE article_id = $5
		  AND status = $6
		  AND projected_at IS NULL`,
		projectedAt, courseID, unitKey, articleIndex, articleID, StatusActive)
	if err != nil {
		return false, fmt.Errorf("mark article projected: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
