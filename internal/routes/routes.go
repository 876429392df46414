package routes

import (
	"net/http"

	"medicare-pms/internal/handlers"
	"medicare-pms/internal/middleware"
	"medicare-pms/internal/models"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Options holds the middleware wiring that depends on configuration.
type Options struct {
	JWTSecret   []byte
	CORSOrigins []string
	RateLimiter *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.Use(middleware.CORSMiddleware(opts.CORSOrigins))
	if opts.RateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, http.StatusOK, true, "Server OK!", nil)
	})

	// Grouping API dengan Versi (v1)
	api := r.Group("/api/v1")
	{
		// Grouping Auth
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
		}

		// PROTECTED ROUTES (Harus Login / Punya Token)
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(opts.JWTSecret))

		// Dashboard Admin (dokter / resepsionis)
		admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/stats", h.GetDashboardStats)
			admin.GET("/patients", h.ListPatients)
			admin.POST("/patients", h.SavePatient)
			admin.GET("/patients/lookup", h.LookupPhone)
			admin.GET("/patients/:id", h.GetPatient)
			admin.PATCH("/patients/:id", h.UpdatePatient)
		}

		// Dashboard Apotek (admin boleh intip)
		medical := protected.Group("/medical", middleware.RequireRole(models.RoleMedical, models.RoleAdmin))
		{
			medical.GET("/patients", h.ListPrescriptions)
			medical.GET("/patients/:id/history", h.GetPatientHistory)
			medical.GET("/reports/daily", h.GetDailyReport)
			medical.GET("/reports/daily.csv", h.DownloadDailyReport)
		}
	}
}
