package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/handler"
	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/response"
	"github.com/titulhq/titul-gateway/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Public    *handler.PublicHandler
	Draft     *handler.DraftHandler
	Attempt   *handler.AttemptHandler
	Test      *handler.TestHandler
	Broadcast *handler.BroadcastHandler
	Admin     *handler.AdminHandler
	WS        *handler.WSHandler
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

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/stats", handlers.Public.Stats)
		publicAPI.GET("/announcements", handlers.Public.Announcements)
		publicAPI.GET("/prices", handlers.Public.Prices)
	}

	// Rate limiter for session issuance and code lookups (30 per minute
	// per IP) so access codes cannot be brute-forced.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/session", handlers.Auth.OpenSession)
		auth.GET("/me", middleware.RequireSession(authService), handlers.Auth.Me)
	}

	// ─── 2. Draft Group (Authoring, JWT) ───────────────────────────────
	drafts := router.Group("/api/v1/drafts")
	drafts.Use(middleware.RequireSession(authService))
	{
		drafts.GET("/subjects", handlers.Draft.Subjects)
		drafts.POST("", handlers.Draft.Create)
		drafts.POST("/edit", handlers.Draft.Edit)
		drafts.GET("/:draft_id", handlers.Draft.Get)
		drafts.PATCH("/:draft_id", handlers.Draft.SetMeta)
		drafts.DELETE("/:draft_id", handlers.Draft.Discard)

		drafts.POST("/:draft_id/choice", handlers.Draft.SetChoice)
		drafts.POST("/:draft_id/questions", handlers.Draft.AppendQuestion)
		drafts.POST("/:draft_id/parts", handlers.Draft.AddPart)
		drafts.POST("/:draft_id/parts/remove", handlers.Draft.RemovePart)
		drafts.POST("/:draft_id/alternatives", handlers.Draft.AddAlternative)
		drafts.POST("/:draft_id/alternatives/remove", handlers.Draft.RemoveAlternative)
		drafts.PUT("/:draft_id/alternatives", handlers.Draft.UpdateAlternative)
		drafts.POST("/:draft_id/points", handlers.Draft.SetPoints)

		drafts.POST("/:draft_id/keyboard/focus", handlers.Draft.Focus)
		drafts.POST("/:draft_id/keyboard/blur", handlers.Draft.Blur)
		drafts.POST("/:draft_id/keyboard/press", handlers.Draft.KeyPress)

		drafts.POST("/:draft_id/save", handlers.Draft.Save)
	}

	// ─── 3. Test Group (My-tests screen, JWT) ──────────────────────────
	tests := router.Group("/api/v1/tests")
	tests.Use(middleware.RequireSession(authService))
	{
		tests.GET("/mine", handlers.Test.ListMine)
		tests.GET("/:test_id", handlers.Test.Get)
		tests.POST("/:test_id/finish", handlers.Test.Finish)
		tests.POST("/:test_id/report", handlers.Test.SendReport)
		tests.PATCH("/:test_id/expiry", handlers.Test.SetExpiry)
		tests.GET("/:test_id/results", handlers.Test.Results)
	}
	router.GET("/api/v1/submissions/:submission_id/report",
		middleware.RequireSession(authService), handlers.Test.ReportPDF)

	// ─── 4. Attempt Group (Student, JWT) ───────────────────────────────
	attempts := router.Group("/api/v1/attempts")
	attempts.Use(middleware.RequireSession(authService))
	{
		attempts.GET("/code/:code", authLimiter.Middleware(), handlers.Attempt.Lookup)
		attempts.POST("", handlers.Attempt.Start)
		attempts.GET("/:attempt_id", handlers.Attempt.Get)

		attempts.POST("/:attempt_id/choice", handlers.Attempt.SetChoice)
		attempts.POST("/:attempt_id/slot", handlers.Attempt.SetSlot)

		attempts.POST("/:attempt_id/keyboard/focus", handlers.Attempt.Focus)
		attempts.POST("/:attempt_id/keyboard/blur", handlers.Attempt.Blur)
		attempts.POST("/:attempt_id/keyboard/press", handlers.Attempt.KeyPress)

		attempts.GET("/:attempt_id/unanswered", handlers.Attempt.Unanswered)
		attempts.POST("/:attempt_id/submit", handlers.Attempt.Submit)
		attempts.GET("/:attempt_id/status", handlers.Attempt.Status)
	}

	// ─── 5. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSSession(authService))
	{
		ws.GET("/attempts/:attempt_id/clock", handlers.WS.Clock)
	}

	// ─── 6. Admin Group (JWT + role) ───────────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(
		middleware.RequireSession(authService),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)
	{
		admin.GET("/stats", handlers.Admin.Stats)
		admin.GET("/activity", handlers.Admin.Activity)
		admin.GET("/users", handlers.Admin.Users)
		admin.PATCH("/users/:telegram_id", handlers.Admin.UpdateUser)
		admin.GET("/receipts", handlers.Admin.Receipts)
		admin.POST("/receipts/:receipt_id/verify", handlers.Admin.VerifyReceipt)
		admin.GET("/settings", handlers.Admin.Settings)
		admin.PATCH("/settings", handlers.Admin.UpdateSettings)

		admin.GET("/broadcasts", handlers.Broadcast.History)
		admin.DELETE("/broadcasts/watch", handlers.Broadcast.Unwatch)
		admin.POST("/broadcasts", handlers.Broadcast.Create)
		admin.PATCH("/broadcasts/:broadcast_id", handlers.Broadcast.Edit)
		admin.DELETE("/broadcasts/:broadcast_id", handlers.Broadcast.Delete)
	}

	return router
}
