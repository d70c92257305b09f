package monitors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/thermometer-server/internal/threshold"
	"github.com/KyleBrandon/thermometer-server/pkg/utils"
)

// NewHandler serves the monitor registry. Every monitor created or observed
// through the API gets callback attached.
func NewHandler(registry MonitorRegistry, callback threshold.Callback) *Handler {
	return &Handler{
		registry: registry,
		callback: callback,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/monitors", h.handlerMonitorsGet)
	mux.HandleFunc("POST /v1/monitors", h.handlerMonitorsPost)
	mux.HandleFunc("GET /v1/monitors/{id}", h.handlerMonitorGet)
	mux.HandleFunc("DELETE /v1/monitors/{id}", h.handlerMonitorDelete)
	mux.HandleFunc("POST /v1/monitors/{id}/observers", h.handlerObserversPost)
	mux.HandleFunc("DELETE /v1/monitors/{id}/observers/{observer_id}", h.handlerObserverDelete)
}

func (h *Handler) handlerMonitorsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerMonitorsGet")

	utils.RespondWithJSON(w, http.StatusOK, h.registry.GetConfigs())
}

func (h *Handler) handlerMonitorGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	config, ok := h.registry.GetConfig(id)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Monitor not found", nil)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, config)
}

func (h *Handler) handlerMonitorsPost(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerMonitorsPost")

	var req MonitorRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for monitor", err)
		return
	}

	config, err := req.toMonitorConfig()
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid monitor", err)
		return
	}

	id, err := h.registry.AddConfig(config)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid monitor", err)
		return
	}

	response := MonitorResponse{}
	if h.callback != nil {
		response.ObserverID = h.registry.AddCallback(id, h.callback)
	}

	response.Monitor, _ = h.registry.GetConfig(id)

	utils.RespondWithJSON(w, http.StatusCreated, response)
}

// handlerMonitorDelete is idempotent; deleting an unknown monitor succeeds.
func (h *Handler) handlerMonitorDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slog.Debug("handlerMonitorDelete", "id", id)

	h.registry.RemoveConfig(id)

	utils.RespondWithNoContent(w, http.StatusNoContent)
}

func (h *Handler) handlerObserversPost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if h.callback == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "Notifications are not configured", nil)
		return
	}

	if _, ok := h.registry.GetConfig(id); !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Monitor not found", nil)
		return
	}

	observerID := h.registry.AddCallback(id, h.callback)

	utils.RespondWithJSON(w, http.StatusCreated, ObserverResponse{MonitorID: id, ObserverID: observerID})
}

func (h *Handler) handlerObserverDelete(w http.ResponseWriter, r *http.Request) {
	h.registry.RemoveCallback(r.PathValue("id"), r.PathValue("observer_id"))

	utils.RespondWithNoContent(w, http.StatusNoContent)
}

func (req MonitorRequest) toMonitorConfig() (threshold.MonitorConfig, error) {
	if req.TargetTemp == nil {
		return threshold.MonitorConfig{}, errors.New("target_temp is required")
	}

	if req.Direction == nil {
		return threshold.MonitorConfig{}, errors.New("direction is required")
	}

	if req.NotificationMode == nil {
		return threshold.MonitorConfig{}, errors.New("notification_mode is required")
	}

	if req.Hysteresis == nil {
		return threshold.MonitorConfig{}, errors.New("hysteresis is required")
	}

	return threshold.MonitorConfig{
		Name:             req.Name,
		Description:      req.Description,
		TargetTemp:       *req.TargetTemp,
		Direction:        *req.Direction,
		NotificationMode: *req.NotificationMode,
		Hysteresis:       *req.Hysteresis,
	}, nil
}
