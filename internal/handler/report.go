package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/controller"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
	"github.com/vcscsvcscs/aidoctor-pro/internal/pdf"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// Records reads an account's saved consultations
type Records interface {
	GetData(ctx context.Context, accountID string) model.UserData
	GetConsultation(ctx context.Context, accountID, id string) (*model.ConsultationRecord, bool)
}

// ReportRenderer renders one consultation as a PDF document
type ReportRenderer interface {
	Generate(data *pdf.ReportData) ([]byte, error)
}

// ConsultationListResponse is the reply of GET /api/v1/consultations
type ConsultationListResponse struct {
	Consultations []model.ConsultationRecord `json:"consultations"`
	Count         int                        `json:"count"`
}

// ViewConsultationResponse carries the re-hydrated record and the resulting state
type ViewConsultationResponse struct {
	Consultation *model.ConsultationRecord `json:"consultation"`
	Session      controller.Snapshot       `json:"session"`
}

// ConsultationHandler implements the history endpoints. All routes require an account.
type ConsultationHandler struct {
	sessions Sessions
	records  Records
	reports  ReportRenderer
	logger   *zap.Logger
}

// NewConsultationHandler creates a new ConsultationHandler
func NewConsultationHandler(sessions Sessions, records Records, reports ReportRenderer, logger *zap.Logger) *ConsultationHandler {
	return &ConsultationHandler{
		sessions: sessions,
		records:  records,
		reports:  reports,
		logger:   logger,
	}
}

// List returns the saved consultations, newest first
// GET /api/v1/consultations
func (h *ConsultationHandler) List(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	consultations := h.records.GetData(c.Request.Context(), account.ID).Consultations
	if consultations == nil {
		consultations = []model.ConsultationRecord{}
	}

	c.JSON(http.StatusOK, ConsultationListResponse{
		Consultations: consultations,
		Count:         len(consultations),
	})
}

// View loads a saved consultation into the session without calling the provider
// POST /api/v1/consultations/:id/view
func (h *ConsultationHandler) View(c *gin.Context) {
	ctrl := sessionController(c, h.sessions)

	record, err := ctrl.ViewConsultation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ViewConsultationResponse{
		Consultation: record,
		Session:      ctrl.Snapshot(),
	})
}

// Delete removes a saved consultation
// DELETE /api/v1/consultations/:id
func (h *ConsultationHandler) Delete(c *gin.Context) {
	ctrl := sessionController(c, h.sessions)

	if err := ctrl.DeleteConsultation(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Report downloads a consultation as a PDF
// GET /api/v1/consultations/:id/report
func (h *ConsultationHandler) Report(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	consultationID := c.Param("id")

	record, ok := h.records.GetConsultation(c.Request.Context(), account.ID, consultationID)
	if !ok {
		respondError(c, h.logger, apperr.New(apperr.CategoryValidation, apperr.CodeNotFound, "Consultation not found"))
		return
	}

	pdfBytes, err := h.reports.Generate(&pdf.ReportData{
		PatientName:  account.Name,
		Consultation: *record,
	})
	if err != nil {
		h.logger.Error("failed to generate report",
			zap.Error(err),
			zap.String("account_id", account.ID),
			zap.String("consultation_id", consultationID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to generate report",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=consultation_%s.pdf", consultationID))
	c.Header("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)

	h.logger.Info("report downloaded",
		zap.String("consultation_id", consultationID),
		zap.Int("size_bytes", len(pdfBytes)),
	)
}
