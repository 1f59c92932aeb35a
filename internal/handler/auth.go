package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/aidoctor-pro/internal/auth"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// Authenticator is the credential store behind the auth endpoints
type Authenticator interface {
	Register(ctx context.Context, email, password, name string) (*model.Account, *auth.Session, error)
	Login(ctx context.Context, email, password string) (*model.Account, *auth.Session, error)
	Logout(ctx context.Context, token string) error
}

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	Id        *types.UUID `json:"id,omitempty"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func toAccountResponse(account *model.Account) AccountResponse {
	return AccountResponse{
		Id:        stringToUUID(account.ID),
		Email:     account.Email,
		Name:      account.Name,
		CreatedAt: account.CreatedAt,
	}
}

// AuthHandler implements account endpoints
type AuthHandler struct {
	auth          Authenticator
	sessions      Sessions
	secureCookies bool
	logger        *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authenticator Authenticator, sessions Sessions, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          authenticator,
		sessions:      sessions,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Register creates an account and signs it in
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	account, session, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.startSession(c, account, session)
	c.JSON(http.StatusCreated, SessionResponse{
		Account:   toAccountResponse(account),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Login signs in an existing account
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	account, session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.startSession(c, account, session)
	c.JSON(http.StatusOK, SessionResponse{
		Account:   toAccountResponse(account),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout revokes the current session and returns the client to guest mode
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := c.GetString(middleware.KeyToken); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	h.sessions.Get(c.GetString(middleware.KeyClientID)).DetachAccount()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in account
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	c.JSON(http.StatusOK, toAccountResponse(account))
}

// startSession binds the new account to the client's controller and sets the session cookie
func (h *AuthHandler) startSession(c *gin.Context, account *model.Account, session *auth.Session) {
	ctrl := h.sessions.Get(c.GetString(middleware.KeyClientID))
	ctrl.AttachAccount(c.Request.Context(), *account)

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", h.secureCookies, true)

	h.logger.Info("session started",
		zap.String("account_id", account.ID),
		zap.String("client_id", c.GetString(middleware.KeyClientID)),
	)
}
