package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
	"github.com/gin-gonic/gin"
)

const geoJSONContentType = "application/geo+json"

type selectVariableRequest struct {
	ID string `json:"id" binding:"required"`
}

type windowRequest struct {
	Start *int64 `json:"start" binding:"required"`
	End   *int64 `json:"end" binding:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type handleRequest struct {
	Handle string `json:"handle" binding:"required"`
}

type positionRequest struct {
	Position *float64 `json:"position" binding:"required"`
}

type brushRequest struct {
	StartIndex *int `json:"start_index" binding:"required"`
	EndIndex   *int `json:"end_index" binding:"required"`
}

type latLngRequest struct {
	Lat *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" binding:"required,min=-180,max=180"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

type windowResponse struct {
	Window domain.TimeWindow `json:"window"`
	Mode   string            `json:"mode"`
}

func (h *Handler) windowResponse() windowResponse {
	return windowResponse{Window: h.session.Window(), Mode: h.session.SliderMode().String()}
}

func (h *Handler) getSnapshot(c *gin.Context) {
	success(c, h.session.Snapshot())
}

func (h *Handler) listVariables(c *gin.Context) {
	success(c, gin.H{
		"variables": h.session.Variables(),
		"selected":  h.session.SelectedVariableID(),
	})
}

func (h *Handler) selectVariable(c *gin.Context) {
	var req selectVariableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	h.session.SelectVariable(req.ID)
	success(c, gin.H{"selected": h.session.SelectedVariableID()})
}

func (h *Handler) getMap(c *gin.Context) {
	success(c, h.session.Map())
}

func (h *Handler) listPoints(c *gin.Context) {
	success(c, h.session.FilteredPoints())
}

func (h *Handler) getStats(c *gin.Context) {
	success(c, gin.H{
		"stats":       h.session.Stats(),
		"range_stats": h.session.RangeStats(),
		"center":      h.session.Center(),
	})
}

func (h *Handler) getSlider(c *gin.Context) {
	success(c, h.session.Slider())
}

func (h *Handler) setWindow(c *gin.Context) {
	var req windowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	h.session.SetWindow(*req.Start, *req.End)
	success(c, h.windowResponse())
}

func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := timeline.ParseMode(req.Mode)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.session.SetSliderMode(m)
	success(c, h.windowResponse())
}

func (h *Handler) toggleMode(c *gin.Context) {
	h.session.ToggleSliderMode()
	success(c, h.windowResponse())
}

func (h *Handler) pointerDown(c *gin.Context) {
	var req handleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	handle, err := timeline.ParseHandle(req.Handle)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, acceptedResponse{Accepted: h.session.PointerDown(handle)})
}

func (h *Handler) pointerMove(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	h.session.PointerMove(*req.Position)
	success(c, h.windowResponse())
}

func (h *Handler) pointerUp(c *gin.Context) {
	h.session.PointerUp()
	success(c, h.windowResponse())
}

func (h *Handler) clickTrack(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	h.session.ClickTrack(*req.Position)
	success(c, h.windowResponse())
}

func (h *Handler) getChart(c *gin.Context) {
	success(c, h.session.Chart())
}

func (h *Handler) brush(c *gin.Context) {
	var req brushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if !h.session.Brush(*req.StartIndex, *req.EndIndex) {
		success(c, acceptedResponse{Accepted: false})
		return
	}
	success(c, h.windowResponse())
}

func (h *Handler) chartImage(c *gin.Context) {
	format, err := chart.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	w := h.session.Window()
	var buf bytes.Buffer
	err = h.renderer.Render(&buf, format, h.session.SelectedVariable(), h.session.Buckets(), &w)
	if errors.Is(err, chart.ErrNoData) {
		notFound(c, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "render chart failed")
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *Handler) drawPreview(c *gin.Context) {
	success(c, h.session.DrawPreview())
}

func (h *Handler) enterDrawing(c *gin.Context) {
	h.session.EnterDrawing()
	success(c, gin.H{"drawing": h.session.Drawing()})
}

func (h *Handler) exitDrawing(c *gin.Context) {
	h.session.ExitDrawing()
	success(c, gin.H{"drawing": h.session.Drawing()})
}

func (h *Handler) toggleDrawing(c *gin.Context) {
	success(c, gin.H{"drawing": h.session.ToggleDrawing()})
}

func (h *Handler) mapClick(c *gin.Context) {
	var req latLngRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	h.session.MapClick(domain.LatLng{Lat: *req.Lat, Lng: *req.Lng})
	success(c, h.session.DrawPreview())
}

func (h *Handler) mapDoubleClick(c *gin.Context) {
	p, ok, err := h.session.MapDoubleClick()
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "commit polygon failed")
		return
	}
	if !ok {
		success(c, gin.H{"created": false, "preview": h.session.DrawPreview()})
		return
	}
	success(c, gin.H{"created": true, "region": p})
}

func (h *Handler) listRegions(c *gin.Context) {
	success(c, h.session.Regions())
}

func (h *Handler) exportRegions(c *gin.Context) {
	body, err := h.session.RegionsGeoJSON()
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "export regions failed")
		return
	}
	c.Data(http.StatusOK, geoJSONContentType, body)
}

func (h *Handler) undoRegion(c *gin.Context) {
	p, ok := h.session.UndoLastRegion()
	if !ok {
		notFound(c, "no regions")
		return
	}
	success(c, p)
}

func (h *Handler) deleteRegion(c *gin.Context) {
	id := c.Param("id")
	if !h.session.DeleteRegion(id) {
		notFound(c, "region not found: "+id)
		return
	}
	success(c, gin.H{"deleted": id})
}

func (h *Handler) regionSummary(c *gin.Context) {
	id := c.Param("id")
	summary, ok := h.session.RegionSummary(id)
	if !ok {
		notFound(c, "region not found: "+id)
		return
	}
	success(c, summary)
}
