package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hanriver.app/readfeed/internal/globaltime"
)

const projectionJobTimeout = 5 * time.Minute

type triggerProjectionRequest struct {
	CourseID string `json:"courseId"`
	Limit    int    `json:"limit"`
}

// handleTriggerProjection schedules a bounded projection batch and returns
// immediately; the batch itself runs in the background.
func (s *Server) handleTriggerProjection(c echo.Context) error {
	var req triggerProjectionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", nil)
	}

	courseID := req.CourseID
	if courseID == "" {
		courseID = s.courseID
	}
	limit := req.Limit
	if limit <= 0 || limit > 300 {
		limit = 300
	}

	jobID := fmt.Sprintf("proj-%d", globaltime.Now().UnixNano())
	logger := s.logger.With().Str("job_id", jobID).Str("course_id", courseID).Logger()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), projectionJobTimeout)
		defer cancel()

		result, err := s.projector.ProjectBatch(ctx, courseID, limit)
		if err != nil {
			logger.Error().Err(err).Msg("scheduled projection failed")
			return
		}
		logger.Info().
			Int("projected", result.Projected).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Msg("scheduled projection finished")
	}()

	return successWithStatus(c, http.StatusAccepted, map[string]any{
		"scheduled": true,
		"jobId":     jobID,
		"courseId":  courseID,
		"limit":     limit,
	})
}

func (s *Server) handleProjectionStats(c echo.Context) error {
	courseID := c.QueryParam("courseId")
	if courseID == "" {
		courseID = s.courseID
	}

	stats, err := s.projector.GetStats(c.Request().Context(), courseID)
	if err != nil {
		s.logger.Error().Err(err).Msg("projection stats failed")
		return internalError(c, "failed to compute projection stats")
	}
	return success(c, stats)
}

type fetchRunView struct {
	RunID       int64           `json:"runId"`
	SourceKey   string          `json:"sourceKey"`
	RunAt       time.Time       `json:"runAt"`
	DurationMS  int64           `json:"durationMs"`
	Fetched     int             `json:"fetched"`
	Inserted    int             `json:"inserted"`
	Updated     int             `json:"updated"`
	Deduped     int             `json:"deduped"`
	Failed      int             `json:"failed"`
	Status      string          `json:"status"`
	ErrorSample json.RawMessage `json:"errorSample,omitempty"`
}

func (s *Server) handleListRuns(c echo.Context) error {
	limit := parseLimit(c.QueryParam("limit"), 20, 50)

	runs, err := s.pool.ListFetchRuns(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list fetch runs failed")
		return internalError(c, "failed to list fetch runs")
	}

	views := make([]fetchRunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, fetchRunView{
			RunID:       run.RunID,
			SourceKey:   run.SourceKey,
			RunAt:       run.RunAt,
			DurationMS:  run.DurationMS,
			Fetched:     run.Fetched,
			Inserted:    run.Inserted,
			Updated:     run.Updated,
			Deduped:     run.Deduped,
			Failed:      run.Failed,
			Status:      run.Status,
			ErrorSample: run.ErrorSample,
		})
	}
	return success(c, map[string]any{"runs": views})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.pool.GetPipelineStats(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("pipeline stats failed")
		return internalError(c, "failed to compute stats")
	}
	return success(c, stats)
}
