package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/studygroups-backend/internal/config"
	"github.com/stemsi/studygroups-backend/internal/handler"
	"github.com/stemsi/studygroups-backend/internal/metrics"
	"github.com/stemsi/studygroups-backend/internal/middleware"
	"github.com/stemsi/studygroups-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	StudyGroup *handler.StudyGroupHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures the Gin engine. m may be nil, in which case no
// request metrics are recorded and /metrics is not served.
func SetupRouter(handlers *Handlers, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", response.HeaderRequestID, response.HeaderCorrelationID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, response.HeaderCorrelationID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request and correlation IDs first so the logger can see them.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	// The Prometheus handler negotiates its own compression.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPaths("/metrics"),
	}))

	router.NoRoute(func(c *gin.Context) {
		response.AbortFail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/health", handlers.Health.Health)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// ─── Study groups ──────────────────────────────────────────────────
	groups := router.Group("/studygroup")
	{
		groups.GET("", handlers.StudyGroup.ListStudyGroups)
		groups.POST("", handlers.StudyGroup.CreateStudyGroup)
		groups.POST("/create", handlers.StudyGroup.CreateStudyGroup)
		groups.GET("/search", handlers.StudyGroup.SearchStudyGroups)
		groups.GET("/:id", handlers.StudyGroup.GetStudyGroup)
		groups.PUT("/join", handlers.StudyGroup.JoinStudyGroup)
		groups.PUT("/join/:studyGroupId/:userId", handlers.StudyGroup.JoinStudyGroupByPath)
		groups.PUT("/leave", handlers.StudyGroup.LeaveStudyGroup)
		groups.PUT("/leave/:studyGroupId/:userId", handlers.StudyGroup.LeaveStudyGroupByPath)
		groups.POST("/leave", handlers.StudyGroup.LeaveStudyGroup)
	}

	router.GET("/users", handlers.StudyGroup.ListUsers)

	return router
}
