package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/middleware"
	"github.com/titulhq/titul-gateway/internal/service"
	ws "github.com/titulhq/titul-gateway/internal/websocket"
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

// WSHandler streams the attempt countdown clock. Remaining time always
// derives from the expiry stored at attempt start; the clock never
// resynchronizes mid-attempt.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// Clock godoc
// GET /api/v1/attempts/:attempt_id/clock?token=...
func (h *WSHandler) Clock(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID := c.Param("attempt_id")

	sess, err := h.attemptService.Get(c.Request.Context(), claims.TelegramID, attemptID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.readLoop(ctx, cancel, conn)
	h.tickLoop(ctx, conn, claims.TelegramID, attemptID, sess.ExpiresAt)
}

// readLoop drains client messages, answering pings, until the client
// goes away.
func (h *WSHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		if ctx.Err() != nil {
			return
		}
		var env ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &env); err != nil {
			return
		}
		if env.Action == ws.ActionPing {
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		}
	}
}

// tickLoop sends one tick per second and polls the session every few
// ticks to notice a submit from another connection.
func (h *WSHandler) tickLoop(ctx context.Context, conn *websocket.Conn, studentID int64, attemptID string, expiresAt *time.Time) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tick++
		if tick%5 == 0 {
			sess, err := h.attemptService.Get(ctx, studentID, attemptID)
			if err != nil {
				_ = ws.WriteError(conn, "session lost")
				return
			}
			if sess.Submitted {
				_ = ws.WriteTyped(conn, ws.SubmittedResponse{Event: ws.EventSubmitted})
				return
			}
		}

		if expiresAt == nil {
			continue
		}

		remaining := int64(time.Until(*expiresAt).Seconds())
		if remaining <= 0 {
			_ = ws.WriteTyped(conn, ws.ExpiredResponse{Event: ws.EventExpired})
			return
		}
		if err := ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTick, RemainingSeconds: remaining}); err != nil {
			return
		}
	}
}
