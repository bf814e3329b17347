package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hanriver.app/readfeed/internal/config"
	"hanriver.app/readfeed/internal/db"
	"hanriver.app/readfeed/internal/difficulty"
	"hanriver.app/readfeed/internal/fingerprint"
	"hanriver.app/readfeed/internal/globaltime"
	"hanriver.app/readfeed/internal/langdetect"
	"hanriver.app/readfeed/internal/metrics"
	"hanriver.app/readfeed/internal/normalize"
	"hanriver.app/readfeed/internal/policy"
	"hanriver.app/readfeed/internal/reader"
)

const (
	dedupWindow     = 48 * time.Hour
	maxErrorSamples = 5

	reasonNearDuplicate = "near_duplicate"
)

// RawArticle is one scraped article descriptor inside a batch.
type RawArticle struct {
	SourceGUID   string     `json:"sourceGuid,omitempty"`
	SourceURL    string     `json:"sourceUrl"`
	CanonicalURL string     `json:"canonicalUrl,omitempty"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary,omitempty"`
	BodyText     string     `json:"bodyText,omitempty"`
	BodyHTML     string     `json:"bodyHtml,omitempty"`
	Section      string     `json:"section,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Author       string     `json:"author,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
}

// Batch is the unit of ingestion pushed by scraper collectors.
type Batch struct {
	SourceKey  string       `json:"sourceKey"`
	SourceType string       `json:"sourceType"`
	Articles   []RawArticle `json:"articles"`
}

// Result aggregates per-article outcomes. Individual article failures
// never abort the batch.
type Result struct {
	Fetched  int      `json:"fetched"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Deduped  int      `json:"deduped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

func (r *Result) recordError(err error) {
	r.Failed++
	if err == nil || len(r.Errors) >= maxErrorSamples {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

type Service struct {
	pool   *db.Pool
	policy *policy.Engine
	cfg    *config.Config
	log    zerolog.Logger
}

func NewService(pool *db.Pool, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		pool:   pool,
		policy: policy.NewEngine(cfg.MinBodyChars, cfg.MaxBodyChars),
		cfg:    cfg,
		log:    log.With().Str("component", "ingest").Logger(),
	}
}

// IngestBatch runs the dedup coordinator over one batch and logs a fetch
// run. Only a malformed batch propagates as an error; per-article problems
// land in the counters.
func (s *Service) IngestBatch(ctx context.Context, batch *Batch) (*Result, error) {
	if batch == nil {
		return nil, fmt.Errorf("batch is nil")
	}
	if batch.SourceKey == "" {
		return nil, fmt.Errorf("batch sourceKey is required")
	}
	if len(batch.Articles) == 0 {
		return nil, fmt.Errorf("batch contains no articles")
	}

	start := globaltime.Now()
	result := &Result{}

	for i := range batch.Articles {
		result.Fetched++
		outcome, err := s.ingestOne(ctx, batch, &batch.Articles[i])
		if err != nil {
			result.recordError(err)
			metrics.IngestArticles.WithLabelValues("failed").Inc()
			s.log.Warn().Err(err).
				Str("source_key", batch.SourceKey).
				Str("url", batch.Articles[i].SourceURL).
				Msg("article ingestion failed")
			continue
		}
		metrics.IngestArticles.WithLabelValues(string(outcome)).Inc()
		switch outcome {
		case outcomeInserted:
			result.Inserted++
		case outcomeUpdated:
			result.Updated++
		case outcomeDeduped:
			result.Deduped++
		}
	}

	duration := globaltime.Now().Sub(start)
	metrics.IngestDuration.Observe(duration.Seconds())

	status := "ok"
	if result.Failed > 0 {
		status = "partial"
		if result.Failed == result.Fetched {
			status = "failed"
		}
	}
	metrics.IngestBatches.WithLabelValues(status).Inc()

	run := &db.FetchRun{
		SourceKey:  batch.SourceKey,
		RunAt:      start.UTC(),
		DurationMS: duration.Milliseconds(),
		Fetched:    result.Fetched,
		Inserted:   result.Inserted,
		Updated:    result.Updated,
		Deduped:    result.Deduped,
		Failed:     result.Failed,
		Status:     status,
	}
	if len(result.Errors) > 0 {
		if sample, err := json.Marshal(result.Errors); err == nil {
			run.ErrorSample = sample
		}
	}
	if err := s.pool.InsertFetchRun(ctx, run); err != nil {
		s.log.Error().Err(err).Str("source_key", batch.SourceKey).Msg("failed to log fetch run")
	}

	s.log.Info().
		Str("source_key", batch.SourceKey).
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("deduped", result.Deduped).
		Int("failed", result.Failed).
		Dur("duration", duration).
		Msg("ingest batch complete")

	return result, nil
}

type articleOutcome string

const (
	outcomeInserted articleOutcome = "inserted"
	outcomeUpdated  articleOutcome = "updated"
	outcomeDeduped  articleOutcome = "deduped"
	outcomeDropped  articleOutcome = "dropped"
)

func (s *Service) ingestOne(ctx context.Context, batch *Batch, raw *RawArticle) (articleOutcome, error) {
	prepared, verdict, err := s.prepare(ctx, batch, raw)
	if err != nil {
		return "", err
	}

	existing, err := s.pool.GetArticleByURLHash(ctx, prepared.URLHash)
	if err != nil && !db.IsNoRows(err) {
		return "", fmt.Errorf("lookup by url hash: %w", err)
	}

	if !verdict.Allowed {
		// Rejected content that was never stored stays unstored.
		if existing == nil || existing.Status == db.StatusFiltered {
			return outcomeDropped, nil
		}
		reasons := mergeReasons(existing.FilterReasons, verdict.Reason)
		if err := s.pool.MarkArticleFiltered(ctx, existing.ArticleID, reasons); err != nil {
			return "", err
		}
		return outcomeUpdated, nil
	}

	if existing != nil {
		s.patchExisting(prepared, existing)
		if err := s.pool.UpdateArticleContent(ctx, existing); err != nil {
			return "", err
		}
		return outcomeUpdated, nil
	}

	candidates, err := s.pool.ListDedupCandidates(ctx, prepared.PublishedAt, dedupWindow, prepared.URLHash)
	if err != nil {
		return "", fmt.Errorf("list dedup candidates: %w", err)
	}

	duplicate := findDuplicate(prepared.NormalizedTitle, prepared.Simhash, candidates)
	if duplicate != nil {
		prepared.Status = db.StatusFiltered
		prepared.DedupeClusterID = duplicate.DedupeClusterID
		prepared.FilterReasons = mergeReasons(nil, reasonNearDuplicate)
	} else {
		prepared.Status = db.StatusActive
		prepared.DedupeClusterID = prepared.URLHash
	}

	inserted, err := s.pool.InsertArticle(ctx, prepared)
	if err != nil {
		return "", err
	}
	if !inserted {
		// Lost an insert race on url_hash; the row exists now, so patch it.
		fresh, err := s.pool.GetArticleByURLHash(ctx, prepared.URLHash)
		if err != nil {
			return "", fmt.Errorf("re-read after insert conflict: %w", err)
		}
		s.patchExisting(prepared, fresh)
		if err := s.pool.UpdateArticleContent(ctx, fresh); err != nil {
			return "", err
		}
		return outcomeUpdated, nil
	}

	if duplicate != nil {
		return outcomeDeduped, nil
	}
	return outcomeInserted, nil
}

// prepare normalizes, fingerprints, and classifies one raw article. It
// returns a validation error for an empty title or an unresolvable URL.
func (s *Service) prepare(ctx context.Context, batch *Batch, raw *RawArticle) (*db.Article, policy.Verdict, error) {
	title := normalize.Whitespace(raw.Title)
	if title == "" {
		return nil, policy.Verdict{}, fmt.Errorf("article has empty title")
	}

	sourceURL := raw.SourceURL
	canonicalURL := normalize.URL(raw.CanonicalURL)
	if canonicalURL == "" {
		canonicalURL = normalize.URL(sourceURL)
	}
	if canonicalURL == "" {
		return nil, policy.Verdict{}, fmt.Errorf("article URL cannot be canonicalized: %q", sourceURL)
	}

	bodyText := normalize.CleanBody(raw.BodyText, raw.BodyHTML)
	if bodyText == "" && s.cfg.ReaderFetchEnabled {
		fetched, err := reader.FetchBodyText(ctx, canonicalURL)
		if err != nil {
			s.log.Debug().Err(err).Str("url", canonicalURL).Msg("reader fetch failed")
		} else {
			bodyText = normalize.CleanBody(fetched, "")
		}
	}

	now := globaltime.Now().UTC()
	publishedAt := now
	if raw.PublishedAt != nil && !raw.PublishedAt.IsZero() {
		publishedAt = raw.PublishedAt.UTC()
	}

	diff := difficulty.Score(raw.Section, bodyText, batch.SourceKey)
	diffReasons, _ := json.Marshal(diff.Reasons)

	a := &db.Article{
		URLHash:         fingerprint.Hash32(canonicalURL),
		CanonicalURL:    canonicalURL,
		SourceURL:       sourceURL,
		SourceKey:       batch.SourceKey,
		SourceType:      batch.SourceType,
		Title:           title,
		NormalizedTitle: normalize.TitleKey(title),
		BodyText:        bodyText,
		Language:        langdetect.DetectISO6391(bodyText),
		PublishedAt:     publishedAt,
		FetchedAt:       now,

		DifficultyLevel:   diff.Level,
		DifficultyScore:   diff.Score,
		DifficultyReasons: diffReasons,

		Simhash: fingerprint.Simhash(bodyText),
	}
	if raw.BodyHTML != "" {
		a.BodyHTML = &raw.BodyHTML
	}
	if raw.Summary != "" {
		summary := normalize.Whitespace(raw.Summary)
		a.Summary = &summary
	}
	if raw.Section != "" {
		a.Section = &raw.Section
	}
	if len(raw.Tags) > 0 {
		if tags, err := json.Marshal(raw.Tags); err == nil {
			a.Tags = tags
		}
	}
	if raw.Author != "" {
		a.Author = &raw.Author
	}

	verdict := s.policy.Evaluate(policy.Input{
		Section:      raw.Section,
		Tags:         raw.Tags,
		Title:        title,
		SourceURL:    sourceURL,
		CanonicalURL: canonicalURL,
		BodyText:     bodyText,
	})

	return a, verdict, nil
}

// patchExisting copies the re-ingested content and classification onto the
// stored record, keeping the identity and dedup fields already decided.
func (s *Service) patchExisting(prepared, existing *db.Article) {
	existing.Title = prepared.Title
	existing.NormalizedTitle = prepared.NormalizedTitle
	existing.BodyText = prepared.BodyText
	existing.BodyHTML = prepared.BodyHTML
	existing.Summary = prepared.Summary
	existing.Section = prepared.Section
	existing.Tags = prepared.Tags
	existing.Author = prepared.Author
	existing.Language = prepared.Language
	existing.PublishedAt = prepared.PublishedAt
	existing.FetchedAt = prepared.FetchedAt
	existing.DifficultyLevel = prepared.DifficultyLevel
	existing.DifficultyScore = prepared.DifficultyScore
	existing.DifficultyReasons = prepared.DifficultyReasons
	existing.Simhash = prepared.Simhash
}

// findDuplicate returns the best duplicate among candidates, or nil. A
// candidate is a duplicate on exact normalized-title match or a SimHash
// within the near-duplicate Hamming threshold. Ties resolve to the
// higher-priority (lower number) source.
func findDuplicate(normalizedTitle, simhash string, candidates []db.DedupCandidate) *db.DedupCandidate {
	var best *db.DedupCandidate
	for i := range candidates {
		c := &candidates[i]
		if !isDuplicateOf(normalizedTitle, simhash, c) {
			continue
		}
		if best == nil || pickCanonical(c, best) == c {
			best = c
		}
	}
	return best
}

func isDuplicateOf(normalizedTitle, simhash string, c *db.DedupCandidate) bool {
	if normalizedTitle != "" && c.NormalizedTitle == normalizedTitle {
		return true
	}
	return fingerprint.IsNearDuplicate(simhash, c.Simhash)
}

// pickCanonical keeps the candidate from the higher-priority source (lower
// SOURCE_PRIORITY number). On a priority tie the earlier publication wins.
func pickCanonical(a, b *db.DedupCandidate) *db.DedupCandidate {
	pa, pb := priorityFor(a.SourceKey), priorityFor(b.SourceKey)
	switch {
	case pa < pb:
		return a
	case pb < pa:
		return b
	case a.PublishedAt.Before(b.PublishedAt):
		return a
	default:
		return b
	}
}

func mergeReasons(existing []byte, reason string) []byte {
	var reasons []string
	if len(existing) > 0 {
		_ = json.Unmarshal(existing, &reasons)
	}
	for _, r := range reasons {
		if r == reason {
			merged, _ := json.Marshal(reasons)
			return merged
		}
	}
	reasons = append(reasons, reason)
	merged, _ := json.Marshal(reasons)
	return merged
}
