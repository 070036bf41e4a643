// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/api/handlers"
	"github.com/andresuchdata/autopo-proposals/internal/api/middleware"
	"github.com/andresuchdata/autopo-proposals/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Services struct {
	ProposalService *service.ProposalService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register request validators")
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ProposalService != nil {
		proposalHandler := handlers.NewProposalHandler(services.ProposalService)
		proposalGroup := apiGroup.Group("/proposals")
		{
			proposalGroup.POST("/generate", proposalHandler.Generate)
			proposalGroup.GET("/batch", proposalHandler.GetBatch)
			proposalGroup.GET("", proposalHandler.ListProposals)
			proposalGroup.POST("/transitions", proposalHandler.BulkTransition)
			proposalGroup.POST("/impact", proposalHandler.Impact)
			proposalGroup.GET("/export", proposalHandler.ExportCSV)
			proposalGroup.POST("/export", proposalHandler.UploadExport)
			proposalGroup.GET("/exports", proposalHandler.ListExports)
			proposalGroup.GET("/:id", proposalHandler.GetProposal)
			proposalGroup.POST("/:id/transitions", proposalHandler.Transition)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
