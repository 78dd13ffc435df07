// api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Annany2002/nebula-docstore/api/handlers"
	"github.com/Annany2002/nebula-docstore/api/middleware" // Import middleware package
	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/auth"
	"github.com/Annany2002/nebula-docstore/internal/gateway"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(repo *storage.Repository, cfg *config.Config) *gin.Engine {
	// Filters keep numeric text instead of float64 rounding.
	binding.EnableDecoderUseNumber = true

	router := gin.Default() // Includes Logger and Recovery
	router.Use(cors.New(corsConfig(cfg)))

	// ErrorHandler wraps everything below it, the rate limiter included.
	router.Use(middleware.ErrorHandler())

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}
	router.Use(middleware.RateLimitMiddleware(limiter))

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(repo, cfg)
	dbHandler := handlers.NewDatabaseHandler(repo, cfg)
	tableHandler := handlers.NewTableHandler(repo, cfg)
	recordHandler := handlers.NewRecordHandler(repo, cfg)
	keyHandler := handlers.NewAPIKeyHandler(repo, cfg)
	logHandler := handlers.NewQueryLogHandler(repo)
	backupHandler := handlers.NewBackupHandler(repo)
	gatewayHandler := handlers.NewGatewayHandler(gateway.New(auth.NewResolver(repo), repo))

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// --- Data plane: authenticated by the api_key in the body ---
	router.POST("/api/db-api", gatewayHandler.Handle)

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		apiRoutes.GET("/me", authHandler.Me)
		apiRoutes.PATCH("/me/profile", authHandler.UpdateProfile)
		apiRoutes.PATCH("/me/password", authHandler.ChangePassword)

		apiRoutes.GET("/stats", dbHandler.GetStats)

		apiRoutes.GET("/databases", dbHandler.ListDatabases)
		apiRoutes.POST("/databases", dbHandler.CreateDatabase)
		apiRoutes.GET("/databases/:id", dbHandler.GetDatabase)
		apiRoutes.DELETE("/databases/:id", dbHandler.DeleteDatabase)
		apiRoutes.GET("/databases/:id/tables", tableHandler.ListTables)
		apiRoutes.POST("/databases/:id/tables", tableHandler.CreateTable)
		apiRoutes.POST("/databases/:id/api-keys", keyHandler.CreateAPIKey)

		apiRoutes.GET("/tables/:id", tableHandler.GetTable)
		apiRoutes.DELETE("/tables/:id", tableHandler.DeleteTable)
		apiRoutes.GET("/tables/:id/columns", tableHandler.ListColumns)
		apiRoutes.GET("/tables/:id/rows", recordHandler.ListRows)
		apiRoutes.POST("/tables/:id/rows", recordHandler.CreateRow)

		apiRoutes.GET("/rows/:id", recordHandler.GetRow)
		apiRoutes.PATCH("/rows/:id", recordHandler.UpdateRow)
		apiRoutes.DELETE("/rows/:id", recordHandler.DeleteRow)

		apiRoutes.GET("/api-keys", keyHandler.ListAPIKeys)
		apiRoutes.PATCH("/api-keys/:id", keyHandler.UpdateAPIKey)
		apiRoutes.PATCH("/api-keys/:id/regenerate", keyHandler.RegenerateAPIKey)
		apiRoutes.DELETE("/api-keys/:id", keyHandler.DeleteAPIKey)

		apiRoutes.GET("/query-logs", logHandler.ListQueryLogs)

		apiRoutes.GET("/admin/export", backupHandler.Export)
		apiRoutes.POST("/admin/import", backupHandler.Import)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsCfg.MaxAge = 12 * time.Hour

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}
