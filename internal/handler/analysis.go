package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/aidoctor-pro/internal/advisory"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// ProfileResponse wraps the current profile, which is null until one is saved
type ProfileResponse struct {
	Profile *model.HealthProfile `json:"profile"`
}

// AnalysisResponse is the reply of a completed analysis
type AnalysisResponse struct {
	Kind           model.AnalysisKind `json:"kind"`
	Result         advisory.Result    `json:"result"`
	ConsultationID string             `json:"consultationId,omitempty"`
	SaveError      string             `json:"saveError,omitempty"`
}

// AnalysisHandler implements profile editing and analysis submission
type AnalysisHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(sessions Sessions, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetProfile returns the current health profile
// GET /api/v1/profile
func (h *AnalysisHandler) GetProfile(c *gin.Context) {
	snapshot := sessionController(c, h.sessions).Snapshot()
	c.JSON(http.StatusOK, ProfileResponse{Profile: snapshot.Profile})
}

// PutProfile validates and replaces the whole health profile
// PUT /api/v1/profile
func (h *AnalysisHandler) PutProfile(c *gin.Context) {
	var req model.HealthProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	profile, err := sessionController(c, h.sessions).SaveProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
}

// Submit runs one analysis of the requested kind against the current state
// POST /api/v1/analyses/:kind
func (h *AnalysisHandler) Submit(c *gin.Context) {
	kind, ok := model.ParseAnalysisKind(c.Param("kind"))
	if !ok {
		respondError(c, h.logger, apperr.New(apperr.CategoryValidation, apperr.CodeNotFound, "Unknown analysis kind"))
		return
	}

	ctrl := sessionController(c, h.sessions)

	startTime := time.Now()
	outcome, err := ctrl.Submit(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("analysis completed",
		zap.String("kind", string(kind)),
		zap.String("client_id", c.GetString(middleware.KeyClientID)),
		zap.String("consultation_id", outcome.ConsultationID),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.JSON(http.StatusOK, AnalysisResponse{
		Kind:           kind,
		Result:         outcome.Result,
		ConsultationID: outcome.ConsultationID,
		SaveError:      outcome.SaveError,
	})
}
