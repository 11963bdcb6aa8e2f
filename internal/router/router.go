package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/skillcheck-backend/internal/config"
	"github.com/stemsi/skillcheck-backend/internal/handler"
	"github.com/stemsi/skillcheck-backend/internal/middleware"
	"github.com/stemsi/skillcheck-backend/internal/response"
	"github.com/stemsi/skillcheck-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Client     *handler.ClientHandler
	Platform   *handler.PlatformHandler
	Question   *handler.QuestionHandler
	Assessment *handler.AssessmentHandler
	Result     *handler.ResultHandler
	Monitor    *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Client Group (No Auth) ─────────────────────────────────────
	// Examinees identify themselves per request by their station
	// identifier; there is no login on this surface.
	clientAPI := router.Group("/api/v1/client")
	{
		clientAPI.POST("/assessments/:assessment_id/session", handlers.Client.StartSession)
		clientAPI.POST("/sessions/:session_id/answer", handlers.Client.SubmitAnswer)
		clientAPI.POST("/sessions/:session_id/finish", handlers.Client.FinishSession)
	}

	// ─── 2. Admin Auth Group (Public) ──────────────────────────────────
	auth := router.Group("/api/v1/admin/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Platform management
		adminAPI.GET("/platforms", handlers.Platform.GetAll)
		adminAPI.POST("/platforms", handlers.Platform.Create)
		adminAPI.GET("/platforms/:id", handlers.Platform.Get)
		adminAPI.PUT("/platforms/:id", handlers.Platform.Update)
		adminAPI.DELETE("/platforms/:id", handlers.Platform.Delete)
		adminAPI.GET("/platforms/:id/question-banks", handlers.Question.ListBanks)

		// Question bank content
		adminAPI.POST("/question-banks", handlers.Question.CreateBank)
		adminAPI.GET("/question-banks/:id", handlers.Question.GetBankTree)
		adminAPI.PUT("/question-banks/:id", handlers.Question.RenameBank)
		adminAPI.DELETE("/question-banks/:id", handlers.Question.DeleteBank)
		adminAPI.POST("/question-banks/:id/refresh-cache", handlers.Question.RefreshBankCache)
		adminAPI.POST("/question-banks/:id/procedures", handlers.Question.CreateProcedure)
		adminAPI.DELETE("/procedures/:id", handlers.Question.DeleteProcedure)
		adminAPI.POST("/procedures/:id/questions", handlers.Question.CreateQuestion)
		adminAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Assessment scheduling
		adminAPI.GET("/assessments", handlers.Assessment.GetAll)
		adminAPI.POST("/assessments", handlers.Assessment.Create)
		adminAPI.GET("/assessments/:id", handlers.Assessment.Get)
		adminAPI.PUT("/assessments/:id", handlers.Assessment.Update)
		adminAPI.DELETE("/assessments/:id", handlers.Assessment.Delete)

		// Results
		adminAPI.GET("/assessments/:id/results", handlers.Result.ListByAssessment)
		adminAPI.GET("/sessions/:id", handlers.Result.GetSession)
	}

	// ─── 4. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/assessments/:id/monitor", handlers.Monitor.MonitorStream)
	}

	return router
}
