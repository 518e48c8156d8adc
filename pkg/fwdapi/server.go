package fwdapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/txn2/logfwd/pkg/fwdapi/handlers"
	"github.com/txn2/logfwd/pkg/fwdapi/middleware"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// routes builds the gin engine. Documentation lives at the root, the
// REST surface under /api and /api/v1.
func (m *Manager) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(),
		middleware.NoCache(),
		middleware.ErrorHandler(),
	)

	docs := handlers.NewDocsHandler(m.version)
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/docs") })
	r.GET("/docs", docs.Docs)
	r.GET("/docs/", docs.Docs)
	r.GET("/openapi.yaml", docs.OpenAPISpec)

	health := handlers.NewHealthHandler(m.version, m.startTime,
		func() types.ManagerInfo { return m }, m.listeners)
	channels := handlers.NewChannelsHandler(m.channels, m.replay, m.resolver)
	export := handlers.NewExportHandler(m.replay, m.exporter)
	metrics := handlers.NewMetricsHandler(m.metrics)
	logs := handlers.NewLogsHandler(func() types.LogBufferProvider { return m.logBuffer })
	listeners := handlers.NewListenersHandler(m.listeners)

	api := r.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/info", health.Info)

	v1 := api.Group("/v1")
	v1.GET("/channels", channels.List)
	v1.GET("/channels/:key/events", channels.Events)
	v1.GET("/channels/:key/stream", channels.Stream)
	v1.POST("/channels/:key/export", export.Export)
	v1.GET("/metrics", metrics.Summary)
	v1.GET("/logs/system", logs.System)
	v1.DELETE("/logs/system", logs.ClearSystem)
	v1.GET("/listeners", listeners.List)
	v1.PUT("/listeners", listeners.Restart)
	v1.DELETE("/listeners", listeners.Stop)

	return r
}
