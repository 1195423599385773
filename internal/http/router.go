package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/peermatch/backend/internal/config"
	"github.com/peermatch/backend/internal/db"
	"github.com/peermatch/backend/internal/engine"
	"github.com/peermatch/backend/internal/http/handlers"
	"github.com/peermatch/backend/internal/http/middleware"

	_ "github.com/peermatch/backend/docs"
)

func Router(cfg config.Config, store *db.Store, engineCfg engine.Config, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
		Engine:    engineCfg,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/reviewers", h.ReviewersList)
		api.GET("/reviewers/:id", h.ReviewerDetails)
		api.GET("/reviewers/:id/coi", h.COICheck)
		api.GET("/organizations", h.OrganizationsList)
		api.POST("/match", h.Match)
		api.POST("/team", h.BuildTeam)
		api.POST("/availability/summary", h.AvailabilitySummary)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/import", h.Import)
		admin.POST("/reviewers/:id/status", h.UpdateStatus)
		admin.POST("/reviewers/:id/coi/:coiID/verify", h.VerifyCOI)
		admin.GET("/debug/score", h.DebugScore)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
