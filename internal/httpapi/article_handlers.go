package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"hanriver.app/readfeed/internal/db"
)

const defaultArticleLimit = 25

type articleView struct {
	ArticleID       int64      `json:"articleId"`
	CanonicalURL    string     `json:"canonicalUrl"`
	SourceKey       string     `json:"sourceKey"`
	Title           string     `json:"title"`
	Summary         *string    `json:"summary,omitempty"`
	BodyText        string     `json:"bodyText"`
	Section         *string    `json:"section,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Author          *string    `json:"author,omitempty"`
	Language        string     `json:"language"`
	PublishedAt     time.Time  `json:"publishedAt"`
	DifficultyLevel string     `json:"difficultyLevel"`
	DifficultyScore int        `json:"difficultyScore"`
	ProjectedAt     *time.Time `json:"projectedAt,omitempty"`
	UnitKey         *int       `json:"unitKey,omitempty"`
	ArticleIndex    *int       `json:"articleIndex,omitempty"`
}

func articleToView(a *db.Article) articleView {
	view := articleView{
		ArticleID:       a.ArticleID,
		CanonicalURL:    a.CanonicalURL,
		SourceKey:       a.SourceKey,
		Title:           a.Title,
		Summary:         a.Summary,
		BodyText:        a.BodyText,
		Section:         a.Section,
		Author:          a.Author,
		Language:        a.Language,
		PublishedAt:     a.PublishedAt,
		DifficultyLevel: a.DifficultyLevel,
		DifficultyScore: a.DifficultyScore,
		ProjectedAt:     a.ProjectedAt,
		UnitKey:         a.ProjectedUnitIndex,
		ArticleIndex:    a.ProjectedArticleIndex,
	}
	if len(a.Tags) > 0 {
		_ = json.Unmarshal(a.Tags, &view.Tags)
	}
	return view
}

func parseLimit(raw string, fallback, ceiling int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > ceiling {
		return ceiling
	}
	return n
}

func (s *Server) handleListArticles(c echo.Context) error {
	params := db.ListArticlesParams{
		DifficultyLevel: c.QueryParam("difficulty"),
		SourceKey:       c.QueryParam("source"),
		Limit:           parseLimit(c.QueryParam("limit"), defaultArticleLimit, 100),
	}

	articles, err := s.pool.ListRecentArticles(c.Request().Context(), params)
	if err != nil {
		s.logger.Error().Err(err).Msg("list articles failed")
		return internalError(c, "failed to list articles")
	}

	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, articleToView(a))
	}
	return success(c, map[string]any{"articles": views})
}

func (s *Server) handleGetArticle(c echo.Context) error {
	articleID, err := strconv.ParseInt(c.Param("article_id"), 10, 64)
	if err != nil || articleID <= 0 {
		return fail(c, http.StatusBadRequest, "invalid article id", nil)
	}

	article, err := s.pool.GetArticleByID(c.Request().Context(), articleID)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "article not found")
		}
		s.logger.Error().Err(err).Int64("article_id", articleID).Msg("get article failed")
		return internalError(c, "failed to load article")
	}
	if article.Status != db.StatusActive {
		return failNotFound(c, "article not found")
	}

	return success(c, articleToView(article))
}
