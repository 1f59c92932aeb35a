package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/aidoctor-pro/internal/controller"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// NavigateRequest is the body of POST /api/v1/session/navigate
type NavigateRequest struct {
	View controller.View `json:"view"`
}

// SymptomsRequest replaces the whole symptom list
type SymptomsRequest struct {
	Symptoms []model.Symptom `json:"symptoms"`
}

// NotesRequest sets the free-text notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// SessionHandler exposes the client's controller state and its editing operations
type SessionHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions Sessions, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetSession returns the current state
// GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	ctrl := sessionController(c, h.sessions)
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Navigate switches view
// POST /api/v1/session/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	ctrl := sessionController(c, h.sessions)
	if err := ctrl.Navigate(req.View); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// ReplaceSymptoms sets the whole symptom list
// PUT /api/v1/session/symptoms
func (h *SessionHandler) ReplaceSymptoms(c *gin.Context) {
	var req SymptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	symptoms, err := sessionController(c, h.sessions).SetSymptoms(req.Symptoms)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SymptomsRequest{Symptoms: symptoms})
}

// AddSymptom appends one symptom
// POST /api/v1/session/symptoms
func (h *SessionHandler) AddSymptom(c *gin.Context) {
	var req model.Symptom
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	symptom, err := sessionController(c, h.sessions).AddSymptom(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, symptom)
}

// UpdateSymptom replaces one symptom
// PATCH /api/v1/session/symptoms/:id
func (h *SessionHandler) UpdateSymptom(c *gin.Context) {
	var req model.Symptom
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	symptom, err := sessionController(c, h.sessions).UpdateSymptom(c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, symptom)
}

// RemoveSymptom deletes one symptom
// DELETE /api/v1/session/symptoms/:id
func (h *SessionHandler) RemoveSymptom(c *gin.Context) {
	sessionController(c, h.sessions).RemoveSymptom(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// SetNotes stores the additional notes
// PUT /api/v1/session/notes
func (h *SessionHandler) SetNotes(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	sessionController(c, h.sessions).SetNotes(req.Notes)
	c.Status(http.StatusNoContent)
}

// SetSecondOpinionForm stores the second opinion inputs
// PUT /api/v1/session/forms/second-opinion
func (h *SessionHandler) SetSecondOpinionForm(c *gin.Context) {
	var req controller.SecondOpinionForm
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	sessionController(c, h.sessions).SetSecondOpinionForm(req)
	c.Status(http.StatusNoContent)
}

// SetDietPlanForm stores the diet plan inputs
// PUT /api/v1/session/forms/diet-plan
func (h *SessionHandler) SetDietPlanForm(c *gin.Context) {
	var req model.DietPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	sessionController(c, h.sessions).SetDietPlanForm(req)
	c.Status(http.StatusNoContent)
}

// SetDrugForm stores the drug comparison inputs
// PUT /api/v1/session/forms/drug-compare
func (h *SessionHandler) SetDrugForm(c *gin.Context) {
	var req model.DrugComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	sessionController(c, h.sessions).SetDrugForm(req)
	c.Status(http.StatusNoContent)
}
