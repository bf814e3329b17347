package db

import (
	"encoding/json"
	"time"
)

// Article statuses.
const (
	StatusActive   = "active"
	StatusFiltered = "filtered"
)

// Article maps feed.articles, the central record of the pipeline.
type Article struct {
	ArticleID    int64  `gorm:"column:article_id;primaryKey;autoIncrement"`
	URLHash      string `gorm:"column:url_hash;type:text;not null;unique"`
	CanonicalURL string `gorm:"column:canonical_url;type:text;not null"`
	SourceURL    string `gorm:"column:source_url;type:text;not null"`
	SourceKey    string `gorm:"column:source_key;type:text;not null"`
	SourceType   string `gorm:"column:source_type;type:text;not null"`

	Title           string          `gorm:"column:title;type:text;not null"`
	NormalizedTitle string          `gorm:"column:normalized_title;type:text;not null"`
	BodyText        string          `gorm:"column:body_text;type:text;not null;default:''"`
	BodyHTML        *string         `gorm:"column:body_html;type:text"`
	Summary         *string         `gorm:"column:summary;type:text"`
	Section         *string         `gorm:"column:section;type:text"`
	Tags            json.RawMessage `gorm:"column:tags;type:jsonb"`
	Author          *string         `gorm:"column:author;type:text"`
	Language        string          `gorm:"column:language;type:text;not null;default:und"`

	PublishedAt time.Time `gorm:"column:published_at;type:timestamptz;not null"`
	FetchedAt   time.Time `gorm:"column:fetched_at;type:timestamptz;not null"`

	DifficultyLevel   string          `gorm:"column:difficulty_level;type:text;not null"`
	DifficultyScore   int             `gorm:"column:difficulty_score;type:integer;not null;default:0"`
	DifficultyReasons json.RawMessage `gorm:"column:difficulty_reasons;type:jsonb"`

	Simhash         string          `gorm:"column:simhash;type:text;not null"`
	DedupeClusterID string          `gorm:"column:dedupe_cluster_id;type:text;not null"`
	Status          string          `gorm:"column:status;type:text;not null;default:active"`
	FilterReasons   json.RawMessage `gorm:"column:filter_reasons;type:jsonb"`

	ProjectedAt           *time.Time `gorm:"column:projected_at;type:timestamptz"`
	ProjectedCourseID     *string    `gorm:"column:projected_course_id;type:text"`
	ProjectedUnitIndex    *int       `gorm:"column:projected_unit_index;type:integer"`
	ProjectedArticleIndex *int       `gorm:"column:projected_article_index;type:integer"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Article) TableName() string { return "feed.articles" }

// FetchRun maps feed.fetch_runs, the append-only ingestion run log.
type FetchRun struct {
	RunID       int64           `gorm:"column:run_id;primaryKey;autoIncrement"`
	SourceKey   string          `gorm:"column:source_key;type:text;not null"`
	RunAt       time.Time       `gorm:"column:run_at;type:timestamptz;not null"`
	DurationMS  int64           `gorm:"column:duration_ms;type:bigint;not null;default:0"`
	Fetched     int             `gorm:"column:fetched;type:integer;not null;default:0"`
	Inserted    int             `gorm:"column:inserted;type:integer;not null;default:0"`
	Updated     int             `gorm:"column:updated;type:integer;not null;default:0"`
	Deduped     int             `gorm:"column:deduped;type:integer;not null;default:0"`
	Failed      int             `gorm:"column:failed;type:integer;not null;default:0"`
	Status      string          `gorm:"column:status;type:text;not null"`
	ErrorSample json.RawMessage `gorm:"column:error_sample;type:jsonb"`
	CreatedAt   time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (FetchRun) TableName() string { return "feed.fetch_runs" }

// UnitArticle maps feed.unit_articles: one article slotted into a
// date-keyed reading unit of a course.
type UnitArticle struct {
	UnitArticleID int64     `gorm:"column:unit_article_id;primaryKey;autoIncrement"`
	CourseID      string    `gorm:"column:course_id;type:text;not null"`
	UnitKey       int       `gorm:"column:unit_key;type:integer;not null"`
	ArticleIndex  int       `gorm:"column:article_index;type:integer;not null"`
	ArticleID     int64     `gorm:"column:article_id;type:bigint;not null;unique"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (UnitArticle) TableName() string { return "feed.unit_articles" }

func autoMigrateModels() []any {
	return []any{
		&Article{},
		&FetchRun{},
		&UnitArticle{},
	}
}
