package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/notifier"
	"github.com/KyleBrandon/thermometer-server/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// NewHandler serves the notification log and the live stream. store may be
// nil when no database is configured.
func NewHandler(store NotificationStore, hub *notifier.Hub, originPatterns []string) *Handler {
	return &Handler{
		store:          store,
		hub:            hub,
		originPatterns: originPatterns,
		heartbeat:      HeartbeatInterval,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/notifications", h.handlerNotificationsGet)
	mux.HandleFunc("GET /v1/notifications/ws", h.handleNotificationsWS)
}

func (h *Handler) handlerNotificationsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerNotificationsGet")

	if h.store == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "Notification log is not configured", nil)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	rows, err := h.store.FindRecentNotifications(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to read notifications", err)
		return
	}

	results := make([]Notification, 0, len(rows))
	for _, n := range rows {
		results = append(results, convertFromDatabaseNotification(n))
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) handleNotificationsWS(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleNotificationsWS: new incoming connection")
	defer slog.Debug("<<handleNotificationsWS")

	opts := &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept error:", "error", err)
		return
	}

	defer c.Close(websocket.StatusInternalError, "Unexpected connection close")

	ctx := c.CloseRead(r.Context())

	h.streamNotifications(ctx, c)
}

func (h *Handler) streamNotifications(ctx context.Context, c *websocket.Conn) {
	slog.Debug(">>streamNotifications")
	defer slog.Debug("<<streamNotifications")

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	heartbeatTicker := time.NewTicker(h.heartbeat)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("streamNotifications: client disconnected")
			c.Close(websocket.StatusNormalClosure, "Connection closed")
			return

		case event, ok := <-events:
			if !ok {
				c.Close(websocket.StatusGoingAway, "Server shutting down")
				return
			}

			err := wsjson.Write(ctx, c, event)
			if err != nil {
				slog.Error("streamNotifications: error writing to client", "error", err)
				c.Close(websocket.StatusInternalError, "error writing notification")
				return
			}

		case <-heartbeatTicker.C:
			err := c.Ping(ctx)
			if err != nil {
				slog.Error("streamNotifications: error sending ping", "error", err)
				c.Close(websocket.StatusInternalError, "error sending ping")
				return
			}
		}
	}
}

func parseLimit(value string) (int32, error) {
	if len(value) == 0 {
		return DefaultLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	if limit < 1 || limit > MaxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}

	return int32(limit), nil
}

func convertFromDatabaseNotification(n database.Notification) Notification {
	return Notification{
		ID:           n.ID.String(),
		CreatedAt:    n.CreatedAt,
		MonitorID:    n.MonitorID,
		MonitorName:  n.MonitorName.String,
		Direction:    n.Direction,
		TargetC:      n.TargetC,
		TemperatureC: n.TemperatureC,
		CapturedAt:   n.CapturedAt,
	}
}
