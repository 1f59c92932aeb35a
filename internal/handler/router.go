package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/aidoctor-pro/internal/middleware"
)

// Handlers groups every endpoint implementation
type Handlers struct {
	Auth          *AuthHandler
	Session       *SessionHandler
	Analysis      *AnalysisHandler
	Consultations *ConsultationHandler
	GDPR          *GDPRHandler
	Health        *HealthHandler
}

// RegisterRoutes mounts the API. ClientMiddleware and AuthMiddleware must run
// before these routes.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	r.GET("/health", h.Health.GetHealth)

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", middleware.RequireAccount(), h.Auth.Me)

	session := v1.Group("/session")
	session.GET("", h.Session.GetSession)
	session.POST("/navigate", h.Session.Navigate)
	session.PUT("/symptoms", h.Session.ReplaceSymptoms)
	session.POST("/symptoms", h.Session.AddSymptom)
	session.PATCH("/symptoms/:id", h.Session.UpdateSymptom)
	session.DELETE("/symptoms/:id", h.Session.RemoveSymptom)
	session.PUT("/notes", h.Session.SetNotes)
	session.PUT("/forms/second-opinion", h.Session.SetSecondOpinionForm)
	session.PUT("/forms/diet-plan", h.Session.SetDietPlanForm)
	session.PUT("/forms/drug-compare", h.Session.SetDrugForm)

	v1.GET("/profile", h.Analysis.GetProfile)
	v1.PUT("/profile", h.Analysis.PutProfile)
	v1.POST("/analyses/:kind", h.Analysis.Submit)

	consultations := v1.Group("/consultations", middleware.RequireAccount())
	consultations.GET("", h.Consultations.List)
	consultations.POST("/:id/view", h.Consultations.View)
	consultations.DELETE("/:id", h.Consultations.Delete)
	consultations.GET("/:id/report", h.Consultations.Report)

	v1.GET("/account/export", middleware.RequireAccount(), h.GDPR.ExportUserData)
}
