package db

import (
	"context"
	"fmt"
	"time"
)

const articleColumns = `
	article_id, url_hash, canonical_url, source_url, source_key, source_type,
	title, normalized_title, body_text, body_html, summary, section, tags,
	author, language, published_at, fetched_at,
	difficulty_level, difficulty_score, difficulty_reasons,
	simhash, dedupe_cluster_id, status, filter_reasons,
	projected_at, projected_course_id, projected_unit_index, projected_article_index,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(s rowScanner) (*Article, error) {
	var a Article
	err := s.Scan(
		&a.ArticleID, &a.URLHash, &a.CanonicalURL, &a.SourceURL, &a.SourceKey, &a.SourceType,
		&a.Title, &a.NormalizedTitle, &a.BodyText, &a.BodyHTML, &a.Summary, &a.Section, &a.Tags,
		&a.Author, &a.Language, &a.PublishedAt, &a.FetchedAt,
		&a.DifficultyLevel, &a.DifficultyScore, &a.DifficultyReasons,
		&a.Simhash, &a.DedupeClusterID, &a.Status, &a.FilterReasons,
		&a.ProjectedAt, &a.ProjectedCourseID, &a.ProjectedUnitIndex, &a.ProjectedArticleIndex,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *Pool) GetArticleByURLHash(ctx context.Context, urlHash string) (*Article, error) {
	row := p.QueryRow(ctx, `
		SELECT `+articleColumns+`
		FROM feed.articles
		WHERE url_hash = $1`,
		urlHash)
	return scanArticle(row)
}

func (p *Pool) GetArticleByID(ctx context.Context, articleID int64) (*Article, error) {
	row := p.QueryRow(ctx, `
		SELECT `+articleColumns+`
		FROM feed.articles
		WHERE article_id = $1`,
		articleID)
	return scanArticle(row)
}

// InsertArticle inserts a new article record. A concurrent insert of the
// same URL hash loses the race silently: ON CONFLICT DO NOTHING reports
// inserted=false and the caller falls back to the update path.
func (p *Pool) InsertArticle(ctx context.Context, a *Article) (bool, error) {
	if a == nil {
		return false, fmt.Errorf("article is nil")
	}

	row := p.QueryRow(ctx, `
		INSERT INTO feed.articles (
			url_hash, canonical_url, source_url, source_key, source_type,
			title, normalized_title, body_text, body_html, summary, section, tags,
			author, language, published_at, fetched_at,
			difficulty_level, difficulty_score, difficulty_reasons,
			simhash, dedupe_cluster_id, status, filter_reasons,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19,
			$20, $21, $22, $23,
			now(), now()
		)
		ON CONFLICT (url_hash) DO NOTHING
		RETURNING article_id`,
		a.URLHash, a.CanonicalURL, a.SourceURL, a.SourceKey, a.SourceType,
		a.Title, a.NormalizedTitle, a.BodyText, a.BodyHTML, a.Summary, a.Section, a.Tags,
		a.Author, a.Language, a.PublishedAt, a.FetchedAt,
		a.DifficultyLevel, a.DifficultyScore, a.DifficultyReasons,
		a.Simhash, a.DedupeClusterID, a.Status, a.FilterReasons)

	if err := row.Scan(&a.ArticleID); err != nil {
		if IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert article: %w", err)
	}
	return true, nil
}

// UpdateArticleContent refreshes the mutable content fields of an existing
// record after a re-fetch of the same canonical URL.
func (p *Pool) UpdateArticleContent(ctx context.Context, a *Article) error {
	if a == nil {
		return fmt.Errorf("article is nil")
	}

	tag, err := p.Exec(ctx, `
		UPDATE feed.articles
		SET title = $1,
			normalized_title = $2,
			body_text = $3,
			body_html = $4,
			summary = $5,
			section = $6,
			tags = $7,
			author = $8,
			language = $9,
			published_at = $10,
			fetched_at = $11,
			difficulty_level = $12,
			difficulty_score = $13,
			difficulty_reasons = $14,
			simhash = $15,
			status = $16,
			filter_reasons = $17,
			updated_at = now()
		WHERE article_id = $18`,
		a.Title, a.NormalizedTitle, a.BodyText, a.BodyHTML, a.Summary, a.Section, a.Tags,
		a.Author, a.Language, a.PublishedAt, a.FetchedAt,
		a.DifficultyLevel, a.DifficultyScore, a.DifficultyReasons,
		a.Simhash, a.Status, a.FilterReasons, a.ArticleID)
	if err != nil {
		return fmt.Errorf("update article content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update article content: article %d not found", a.ArticleID)
	}
	return nil
}

// MarkArticleFiltered demotes an article to the filtered status, recording
// why. Used both for policy rejections on re-ingest and for dedupe
// demotions when a later fetch wins the canonical slot.
func (p *Pool) MarkArticleFiltered(ctx context.Context, articleID int64, filterReasons []byte) error {
	tag, err := p.Exec(ctx, `
		UPDATE feed.articles
		SET status = $1,
			filter_reasons = $2,
			updated_at = now()
		WHERE article_id = $3`,
		StatusFiltered, filterReasons, articleID)
	if err != nil {
		return fmt.Errorf("mark article filtered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark article filtered: article %d not found", articleID)
	}
	return nil
}

// DedupCandidate carries the fields duplicate detection and canonical
// selection need, without dragging full body text across the wire.
type DedupCandidate struct {
	ArticleID       int64
	URLHash         string
	SourceKey       string
	NormalizedTitle string
	Simhash         string
	DedupeClusterID string
	PublishedAt     time.Time
}

const dedupCandidateLimit = 200

// ListDedupCandidates returns active articles published within the window
// around publishedAt, nearest first.
func (p *Pool) ListDedupCandidates(ctx context.Context, publishedAt time.Time, window time.Duration, excludeURLHash string) ([]DedupCandidate, error) {
	rows, err := p.Query(ctx, `
		SELECT article_id, url_hash, source_key, normalized_title,
			simhash, dedupe_cluster_id, published_at
		FROM feed.articles
		WHERE status = $1
		  AND url_hash <> $2
		  AND published_at BETWEEN $3 AND $4
		ORDER BY abs(extract(epoch FROM published_at - $5::timestamptz)) ASC
		LIMIT $6`,
		StatusActive, excludeURLHash,
		publishedAt.Add(-window), publishedAt.Add(window),
		publishedAt, dedupCandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list dedup candidates: %w", err)
	}
	defer rows.Close()

	var candidates []DedupCandidate
	for rows.Next() {
		var c DedupCandidate
		if err := rows.Scan(&c.ArticleID, &c.URLHash, &c.SourceKey, &c.NormalizedTitle,
			&c.Simhash, &c.DedupeClusterID, &c.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan dedup candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ListArticlesParams filters the public article listing.
type ListArticlesParams struct {
	DifficultyLevel string
	SourceKey       string
	Limit           int
}

const maxArticleListLimit = 100

func (p *Pool) ListRecentArticles(ctx context.Context, params ListArticlesParams) ([]*Article, error) {
	limit := params.Limit
	if limit <= 0 || limit > maxArticleListLimit {
		limit = maxArticleListLimit
	}

	query := `
		SELECT ` + articleColumns + `
		FROM feed.articles
		WHERE status = $1`
	args := []any{StatusActive}

	if params.DifficultyLevel != "" {
		args = append(args, params.DifficultyLevel)
		query += fmt.Sprintf(" AND difficulty_level = $%d", len(args))
	}
	if params.SourceKey != "" {
		args = append(args, params.SourceKey)
		query += fmt.Sprintf(" AND source_key = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d", len(args))

	rows, err := p.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
