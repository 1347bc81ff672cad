package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"

	"github.com/sharesync/sharesync/internal/client/handlers"
	"github.com/sharesync/sharesync/internal/client/middleware"
	"github.com/sharesync/sharesync/internal/version"
)

type RouteConfig struct {
	Auth middleware.TokenAuthConfig
}

func SetupRoutes(client *Client, routeConfig *RouteConfig) http.Handler {
	r := gin.New()

	rateLimitStore := memory.NewStore()
	rateLimiter := limiter.New(rateLimitStore, limiter.Rate{
		Period: 1 * time.Second,
		Limit:  10,
	})

	syncH := handlers.NewSyncHandler(client.SDK().Sync, client.Tracker())
	statusH := handlers.NewStatusHandler(client.Tracker())
	notificationsH := handlers.NewNotificationsHandler(client.Notifications())
	historyH := handlers.NewHistoryHandler(client.Journal())
	logsH := handlers.NewLogsHandler()

	r.Use(gin.Recovery())
	r.Use(sloggin.NewWithConfig(slog.Default(), sloggin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}))
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip())
	r.Use(mgin.NewMiddleware(rateLimiter))

	r.GET("/", IndexHandler)

	v1 := r.Group("/v1")
	v1.Use(middleware.TokenAuth(routeConfig.Auth))
	{
		v1.GET("/status", statusH.Status)
		v1.GET("/logs", logsH.GetLogs)
		v1.GET("/history", historyH.List)

		v1Notifications := v1.Group("/notifications")
		{
			v1Notifications.GET("", notificationsH.Drain)
			v1Notifications.GET("/pending", notificationsH.Pending)
		}

		v1Syncs := v1.Group("/syncs")
		{
			v1Syncs.GET("", syncH.List)
			v1Syncs.POST("", syncH.Create)
			v1Syncs.POST("/preview", syncH.ListFolder)
			v1Syncs.GET("/:id", syncH.Get)
			v1Syncs.PATCH("/:id", syncH.Update)
			v1Syncs.DELETE("/:id", syncH.Delete)
			v1Syncs.GET("/:id/status", syncH.Status)
			v1Syncs.GET("/:id/logs", syncH.Logs)
			v1Syncs.POST("/:id/execute", syncH.Execute)
			v1Syncs.POST("/:id/cancel", syncH.Cancel)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Detailed())
}
