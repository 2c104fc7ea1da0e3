package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nightjar-editor/nightjar/internal/environment"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	env     *environment.Environment
	version string
}

func newHandlers(env *environment.Environment, version string) *Handlers {
	return &Handlers{env: env, version: version}
}

type locationPayload struct {
	PathToOpen       string `json:"path_to_open" binding:"required"`
	ForceAddToWindow bool   `json:"force_add_to_window"`
}

type openLocationsRequest struct {
	Locations []locationPayload `json:"locations" binding:"required"`
}

// Root reports basic liveness.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "nightjar-environd",
		"version": h.version,
	})
}

// Health reports detailed lifecycle status.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"scheduler":       h.env.Scheduler().State().String(),
		"release_channel": string(h.env.ReleaseChannel()),
		"stats":           h.env.Stats(),
	})
}

// OpenLocations relays a second invocation's locations into this window.
func (h *Handlers) OpenLocations(c *gin.Context) {
	var req openLocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	locations := make([]types.Location, 0, len(req.Locations))
	for _, l := range req.Locations {
		locations = append(locations, types.Location{
			PathToOpen:       l.PathToOpen,
			ForceAddToWindow: l.ForceAddToWindow,
		})
	}

	if err := h.env.OpenLocations(c.Request.Context(), locations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"opened":  len(locations),
	})
}

// AddProjectFolder runs the folder picker flow.
func (h *Handlers) AddProjectFolder(c *gin.Context) {
	if err := h.env.AddProjectFolder(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SaveState forces an immediate snapshot save.
func (h *Handlers) SaveState(c *gin.Context) {
	if err := h.env.SaveState(c.Request.Context(), types.SaveOptions{}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LoadState returns the snapshot saved for the current project path set.
func (h *Handlers) LoadState(c *gin.Context) {
	snap, err := h.env.LoadState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"found":    true,
		"snapshot": snap,
	})
}

// NoteActivity forwards a renderer input signal to the save scheduler.
func (h *Handlers) NoteActivity(c *gin.Context) {
	h.env.NoteActivity()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
