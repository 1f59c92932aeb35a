package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/aidoctor-pro/internal/audit"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// exportAuditLimit bounds the audit entries included in an export
const exportAuditLimit = 100

// AuditTrail reads the recent audit entries of an account
type AuditTrail interface {
	Recent(ctx context.Context, accountID string, limit int) ([]audit.Entry, error)
}

// ExportDocument is the downloadable copy of everything stored for an account
type ExportDocument struct {
	Account    AccountResponse `json:"account"`
	Data       model.UserData  `json:"data"`
	AuditTrail []audit.Entry   `json:"auditTrail"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// GDPRHandler implements the data portability endpoint
type GDPRHandler struct {
	records Records
	audit   AuditTrail
	logger  *zap.Logger
}

// NewGDPRHandler creates a new GDPRHandler
func NewGDPRHandler(records Records, auditTrail AuditTrail, logger *zap.Logger) *GDPRHandler {
	return &GDPRHandler{
		records: records,
		audit:   auditTrail,
		logger:  logger,
	}
}

// ExportUserData handles user data export requests (GDPR right to data portability)
// GET /api/v1/account/export
func (h *GDPRHandler) ExportUserData(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	ctx := c.Request.Context()

	h.logger.Info("processing user data export request (GDPR)",
		zap.String("account_id", account.ID),
	)

	entries, err := h.audit.Recent(ctx, account.ID, exportAuditLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	data := h.records.GetData(ctx, account.ID)
	if data.Consultations == nil {
		data.Consultations = []model.ConsultationRecord{}
	}

	jsonData, err := json.MarshalIndent(ExportDocument{
		Account:    toAccountResponse(account),
		Data:       data,
		AuditTrail: entries,
		ExportedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("failed to marshal export: %w", err))
		return
	}

	h.logger.Info("user data exported successfully (GDPR)",
		zap.String("account_id", account.ID),
		zap.Int("data_size_bytes", len(jsonData)),
	)

	filename := fmt.Sprintf("user_data_%s.json", account.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", jsonData)
}
