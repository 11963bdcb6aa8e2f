package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/skillcheck-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live session events of one assessment to admin
// dashboards over WebSocket, fed by the per-assessment Redis Pub/Sub
// channel the services publish into.
type MonitorHandler struct {
	monitorService *service.MonitorService
	resultService  *service.ResultService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService *service.MonitorService, resultService *service.ResultService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		resultService:  resultService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// MonitorStream godoc
// WS /ws/v1/admin/assessments/:id/monitor
// Upgrades to WebSocket and relays session lifecycle events as they happen.
func (h *MonitorHandler) MonitorStream(c *gin.Context) {
	assessmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment ID"})
		return
	}

	// Reject before upgrading so the client gets a proper HTTP status.
	if _, _, err := h.resultService.ListByAssessment(c.Request.Context(), assessmentID, 1, 1); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int64("assessment_id", assessmentID).Logger()
	wsLog.Info().Msg("Monitor connected")

	ctx := c.Request.Context()
	sub := h.monitorService.Subscribe(ctx, assessmentID)
	defer sub.Close()

	// Drain client frames so pings and closes are processed; the monitor
	// stream itself is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Monitor context cancelled")
			return
		case msg, ok := <-ch:
			if !ok {
				wsLog.Debug().Msg("Monitor disconnected")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Monitor write failed")
				return
			}
		}
	}
}
