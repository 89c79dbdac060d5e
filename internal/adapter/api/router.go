// Package api exposes a dashboard session over a JSON HTTP API.
package api

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/sensor-map-dashboard/internal/dashboard"
	"github.com/gin-gonic/gin"
)

// Handler serves requests against one session. Requests are serialized.
type Handler struct {
	mu       sync.Mutex
	session  *dashboard.Session
	renderer *chart.Renderer
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(session *dashboard.Session, renderer *chart.Renderer, logger *slog.Logger) *Handler {
	return &Handler{session: session, renderer: renderer, logger: logger}
}

// NewRouter builds the gin engine with every route under /api/v1.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	v1 := r.Group("/api/v1")
	v1.Use(serialize(&h.mu))
	{
		v1.GET("/snapshot", h.getSnapshot)
		v1.GET("/variables", h.listVariables)
		v1.PUT("/variables/selected", h.selectVariable)
		v1.GET("/map", h.getMap)
		v1.GET("/points", h.listPoints)
		v1.GET("/stats", h.getStats)
	}

	tl := v1.Group("/timeline")
	{
		tl.GET("", h.getSlider)
		tl.PUT("/window", h.setWindow)
		tl.PUT("/mode", h.setMode)
		tl.POST("/mode/toggle", h.toggleMode)
		tl.POST("/pointer/down", h.pointerDown)
		tl.POST("/pointer/move", h.pointerMove)
		tl.POST("/pointer/up", h.pointerUp)
		tl.POST("/click", h.clickTrack)
	}

	ch := v1.Group("/chart")
	{
		ch.GET("", h.getChart)
		ch.POST("/brush", h.brush)
		ch.GET("/image", h.chartImage)
	}

	dr := v1.Group("/draw")
	{
		dr.GET("", h.drawPreview)
		dr.POST("/enter", h.enterDrawing)
		dr.POST("/exit", h.exitDrawing)
		dr.POST("/toggle", h.toggleDrawing)
		dr.POST("/click", h.mapClick)
		dr.POST("/dblclick", h.mapDoubleClick)
	}

	rg := v1.Group("/regions")
	{
		rg.GET("", h.listRegions)
		rg.GET("/export", h.exportRegions)
		rg.POST("/undo", h.undoRegion)
		rg.GET("/:id/summary", h.regionSummary)
		rg.DELETE("/:id", h.deleteRegion)
	}

	return r
}
