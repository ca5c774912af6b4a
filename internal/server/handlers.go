package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/assets"
	"github.com/spigell/job-change/internal/candidate"
	"github.com/spigell/job-change/internal/store"
)

type errorResponse struct {
	Error         string                   `json:"error"`
	MissingFields []string                 `json:"missing_fields,omitempty"`
	InvalidFields []candidate.InvalidField `json:"invalid_fields,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if s.assets != nil {
		if _, err := s.assets.Load(); err != nil {
			body["status"] = "degraded"
			body["assets"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["assets"] = "ready"
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) predict(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be a JSON object"})
		return
	}

	profile, err := candidate.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.predictor.PredictProfile(c.Request.Context(), profile)
	if err != nil {
		s.predictError(c, err)
		return
	}

	s.metrics.observePrediction(string(result.Label))
	c.JSON(http.StatusOK, result)
}

func (s *Server) predictError(c *gin.Context, err error) {
	var (
		missing     *candidate.ValidationError
		format      *candidate.FormatError
		unavailable *assets.AssetUnavailableError
	)

	switch {
	case errors.As(err, &missing):
		s.metrics.observePrediction("missing_fields")
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), MissingFields: missing.MissingFields})
	case errors.As(err, &format):
		s.metrics.observePrediction("invalid_fields")
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), InvalidFields: format.Fields})
	case errors.As(err, &unavailable):
		s.metrics.observePrediction("assets_unavailable")
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "prediction assets are unavailable"})
	default:
		s.metrics.observePrediction("error")
		_ = c.Error(err)
		s.logger.Error("prediction failed", zap.Error(err), zap.String(requestIDKey, c.GetString(requestIDKey)))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
	}
}

func (s *Server) analytics(c *gin.Context) {
	snapshot, err := s.snapshots.Load(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no analytics snapshot has been generated yet"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		s.logger.Error("loading analytics snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "analytics snapshot is unavailable"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
