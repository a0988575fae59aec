// Package dashboard records conversion runs and streams their progress to
// operator pages over Server-Sent Events.
package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honghai9112k/tool-java2ts/internal/logging"
)

// KeepAliveInterval is the period of SSE ping comments.
var KeepAliveInterval = 30 * time.Second

// Dashboard ties together all dashboard components.
type Dashboard struct {
	Store   *Store
	Hub     *Hub
	Emitter *Emitter
}

// New creates a fully wired dashboard.
func New() *Dashboard {
	store := NewStore()
	hub := NewHub()
	return &Dashboard{
		Store:   store,
		Hub:     hub,
		Emitter: NewEmitter(store, hub),
	}
}

// RegisterRoutes mounts GET /events, /runs, /runs/:id and /stats.
func (d *Dashboard) RegisterRoutes(r gin.IRoutes) {
	r.GET("/events", d.handleEvents)
	r.GET("/runs", d.handleRuns)
	r.GET("/runs/:id", d.handleRun)
	r.GET("/stats", d.handleStats)
}

func (d *Dashboard) handleRuns(c *gin.Context) {
	c.JSON(http.StatusOK, d.Store.ListRuns())
}

func (d *Dashboard) handleRun(c *gin.Context) {
	run, ok := d.Store.GetRun(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (d *Dashboard) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, d.Store.GetStats())
}

func (d *Dashboard) handleEvents(c *gin.Context) {
	client, err := NewClient(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)

	d.Hub.Register(client)
	defer d.Hub.Unregister(client)

	log := logging.Named("dashboard")
	log.Debugw("event client connected", "remote", c.ClientIP())

	data, _ := json.Marshal(&Event{Type: EventConnected, Timestamp: time.Now()})
	client.send(data)

	go client.KeepAlive(KeepAliveInterval)

	<-c.Request.Context().Done()
	log.Debugw("event client disconnected", "remote", c.ClientIP())
}
