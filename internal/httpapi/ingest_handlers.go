package httpapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	batchschema "hanriver.app/readfeed/schema"
)

const maxIngestPayloadBytes = 8 << 20

func (s *Server) handleIngest(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxIngestPayloadBytes+1))
	if err != nil {
		return fail(c, http.StatusBadRequest, "failed to read request body", nil)
	}
	if len(payload) > maxIngestPayloadBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "batch payload too large", nil)
	}

	batch, err := batchschema.ValidateIngestBatch(payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	result, err := s.ingester.IngestBatch(c.Request().Context(), batch)
	if err != nil {
		s.logger.Error().Err(err).Str("source_key", batch.SourceKey).Msg("ingest batch failed")
		return internalError(c, "ingestion failed")
	}
	return success(c, result)
}
