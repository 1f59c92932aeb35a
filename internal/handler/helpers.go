package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/controller"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
	"go.uber.org/zap"
)

// CodeSuperseded is returned when an analysis finished after the client moved on
const CodeSuperseded = "Superseded"

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// Sessions hands out the controller of a client
type Sessions interface {
	Get(clientID string) *controller.Controller
}

// sessionController returns the controller of the calling client, bound to the
// account resolved for this request. A controller still holding an account the
// request no longer carries is returned to guest mode.
func sessionController(c *gin.Context, sessions Sessions) *controller.Controller {
	ctrl := sessions.Get(c.GetString(middleware.KeyClientID))
	account := middleware.CurrentAccount(c)

	switch {
	case account != nil && ctrl.AccountID() != account.ID:
		ctrl.AttachAccount(c.Request.Context(), *account)
	case account == nil && ctrl.AccountID() != "":
		ctrl.DetachAccount()
	}
	return ctrl
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	if errors.Is(err, controller.ErrSuperseded) {
		return http.StatusConflict
	}

	appErr, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case apperr.CodeBusy, apperr.CodeDuplicateEmail:
		return http.StatusConflict
	case apperr.CodeInvalidCredential, apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeProviderUnavailable:
		return http.StatusServiceUnavailable
	}

	switch appErr.Category {
	case apperr.CategoryValidation:
		return http.StatusBadRequest
	case apperr.CategoryAuth:
		return http.StatusUnauthorized
	case apperr.CategoryProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Server-side failures are attached
// to the context so the error logging middleware records them.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)

	resp := ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: apperr.UserMessage(err),
	}

	if errors.Is(err, controller.ErrSuperseded) {
		resp.Code = CodeSuperseded
		resp.Message = "The analysis was discarded because the session changed. Please try again."
	} else if appErr, ok := apperr.As(err); ok {
		resp.Code = appErr.Code
		if appErr.Category == apperr.CategoryValidation && appErr.Err != nil {
			resp.Details = stringPtr(appErr.Err.Error())
		}
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	} else {
		logger.Debug("request rejected",
			zap.String("code", resp.Code),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	c.JSON(status, resp)
}

// respondBindError rejects a malformed request body
func respondBindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    apperr.CodeValidationFailed,
		Message: "Invalid request body",
		Details: stringPtr(err.Error()),
	})
}

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// stringToUUID converts string to types.UUID pointer
func stringToUUID(s string) *types.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	apiUUID := types.UUID(u)
	return &apiUUID
}
