package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"debate-relay/internal/models"
	"debate-relay/internal/observability"
	"debate-relay/internal/relay"
)

// RelayHandler owns the websocket endpoint: it upgrades connections, drives
// the session protocol handler for their lifecycle events, and acks every
// inbound frame to its originator.
type RelayHandler struct {
	hub     *Hub
	session *relay.Session
}

// NewRelayHandler constructs a RelayHandler.
func NewRelayHandler(hub *Hub, session *relay.Session) *RelayHandler {
	return &RelayHandler{hub: hub, session: session}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers it with the relay.
func (h *RelayHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("debate-relay/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	// Identity is accepted as presented; credential issuance happens upstream.
	userID := c.Query("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(info.ConnID, conn, info)

	registration := models.Connection{
		ConnectionID:  info.ConnID,
		UserID:        userID,
		EstablishedAt: info.ConnectedAt,
	}
	if err := h.session.HandleConnect(ctx, registration); err != nil {
		log.Printf("ws: register connection %s: %v", info.ConnID, err)
		h.hub.Remove(info.ConnID)
		conn.Close()
		return
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	publishLifecycleEvent(ctx, "ws_connect", info, "")

	// The request context is canceled as soon as Handle returns, but the
	// session outlives the handshake. Detach it so persistence and fanout
	// keep running for the lifetime of the socket.
	go h.readLoop(context.WithoutCancel(ctx), conn, info)
}

func (h *RelayHandler) readLoop(ctx context.Context, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		h.session.HandleDisconnect(ctx, info.ConnID)
		h.hub.Remove(info.ConnID)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		publishLifecycleEvent(ctx, "ws_disconnect", info, closeReason)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		var frame models.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.writeAck(info.ConnID, "error")
			continue
		}

		if err := h.session.HandleMessage(ctx, info.ConnID, frame); err != nil {
			log.Printf("ws: handle %s frame from %s: %v", frame.Type, info.ConnID, err)
			h.writeAck(info.ConnID, "error")
			continue
		}
		h.writeAck(info.ConnID, "ok")
	}
}

// writeAck reports the outcome of the client's own frame back to it. Peers
// never learn about individual delivery results.
func (h *RelayHandler) writeAck(connID, status string) {
	body, err := json.Marshal(models.Ack{Status: status})
	if err != nil {
		return
	}
	payload, err := json.Marshal(models.Frame{Type: models.FrameAck, Data: body})
	if err != nil {
		return
	}
	if err := h.hub.Send(connID, payload); err != nil {
		log.Printf("ws: ack %s: %v", connID, err)
	}
}

func publishLifecycleEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id": info.UserID,
			"ip":      info.IP,
		},
	}

	_ = observability.PublishEvent(ctx, "relay_events.connections", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
