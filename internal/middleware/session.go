package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
)

// Cookie and header names carrying the client and session identity
const (
	ClientCookie  = "aidoctor_client"
	ClientHeader  = "X-Client-ID"
	SessionCookie = "aidoctor_session"
)

// AccountResolver maps a session token to its account
type AccountResolver interface {
	CurrentAccount(ctx context.Context, token string) *model.Account
}

// ClientMiddleware assigns every browser a stable client id used to key its
// session controller. An explicit X-Client-ID header takes precedence.
func ClientMiddleware(secure bool, maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(ClientHeader)
		if _, err := uuid.Parse(clientID); err != nil {
			clientID = ""
		}
		if clientID == "" {
			if cookie, err := c.Cookie(ClientCookie); err == nil {
				if _, err := uuid.Parse(cookie); err == nil {
					clientID = cookie
				}
			}
		}
		if clientID == "" {
			clientID = uuid.New().String()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ClientCookie, clientID, int(maxAge.Seconds()), "/", "", secure, true)
		c.Set(KeyClientID, clientID)
		c.Header(ClientHeader, clientID)

		c.Next()
	}
}

// AuthMiddleware resolves the bearer token or session cookie to an account.
// Requests without a valid token continue as guests.
func AuthMiddleware(resolver AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = cookie
			}
		}

		if token != "" {
			c.Set(KeyToken, token)
			if account := resolver.CurrentAccount(c.Request.Context(), token); account != nil {
				c.Set(KeyAccount, account)
			}
		}

		c.Next()
	}
}

// RequireAccount rejects guest requests with 401
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentAccount(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "Unauthenticated",
				"message": "Please sign in to continue.",
			})
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account resolved by AuthMiddleware, or nil for a guest
func CurrentAccount(c *gin.Context) *model.Account {
	value, ok := c.Get(KeyAccount)
	if !ok {
		return nil
	}
	account, _ := value.(*model.Account)
	return account
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
