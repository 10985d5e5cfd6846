// Package server exposes briefing runs and preferences over HTTP.
package server

import (
	"context"
	"iter"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/logger"
	"github.com/samvad-hq/neura-briefing/internal/pipeline"
	"github.com/samvad-hq/neura-briefing/internal/storage"
)

type BriefingRunner interface {
	Run(ctx context.Context, topics []string, region string) iter.Seq[pipeline.Snapshot]
}

type PreferencesService interface {
	Load(ctx context.Context, profile string) domain.PreferenceRecord
	Save(ctx context.Context, profile string, rec domain.PreferenceRecord) storage.SaveOutcome
}

type Handler struct {
	runner         BriefingRunner
	prefs          PreferencesService
	defaultProfile string
	log            logger.Logger
}

func NewHandler(runner BriefingRunner, prefs PreferencesService, defaultProfile string, log logger.Logger) *Handler {
	if defaultProfile == "" {
		defaultProfile = "default"
	}
	return &Handler{
		runner:         runner,
		prefs:          prefs,
		defaultProfile: defaultProfile,
		log:            logger.Ensure(log),
	}
}

// NewRouter wires the handler routes onto a fresh engine.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.log))
	if len(allowedOrigins) > 0 {
		r.Use(corsMiddleware(allowedOrigins))
	}

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/preferences", h.GetPreferences)
		api.PUT("/preferences", h.PutPreferences)
		api.GET("/briefing", h.StreamBriefing)
	}
	return r
}
