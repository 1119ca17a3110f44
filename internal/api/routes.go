package api

import (
	"github.com/andreddluiz/Dash-AOS/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, handler *Handler, m *metrics.Registry) {
	// Health check
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", handler.Login)
		v1.POST("/auth/logout", handler.Logout)
		v1.GET("/auth/session", handler.Session)

		v1.GET("/overview", handler.Overview)
		v1.POST("/chart/select", handler.SelectChart)
		v1.DELETE("/chart/select", handler.ClearChartSelection)

		v1.GET("/table", handler.GetTable)
		v1.POST("/table/search", handler.SearchTable())
		v1.POST("/table/filter", handler.FilterTable())
		v1.POST("/table/sort", handler.SortTable())
		v1.POST("/table/page", handler.SetPage())
		v1.POST("/table/page-size", handler.SetPageSize())
		v1.POST("/table/columns/move", handler.MoveColumn())
		v1.POST("/table/columns/resize", handler.ResizeColumn())

		v1.GET("/export", handler.Export)
		v1.POST("/summary", handler.Summary)

		// Admin routes
		admin := v1.Group("", AuthMiddleware(handler.auth))
		{
			admin.POST("/records/upload", handler.UploadRecords)
			admin.POST("/records/refresh", handler.RefreshRecords)
			admin.DELETE("/records/:id", handler.DeleteRecord)
			admin.DELETE("/records", handler.ClearRecords)
			admin.POST("/imports", handler.ScheduleImport)
			admin.GET("/imports/:id", handler.GetImport)
		}
	}
}

// NewRouter builds the engine with the middleware chain and every route.
func NewRouter(handler *Handler, m *metrics.Registry, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))
	router.Use(LoggingMiddleware())
	router.Use(MetricsMiddleware(m))

	SetupRoutes(router, handler, m)
	return router
}
