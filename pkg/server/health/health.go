package health

import (
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/thermometer-server/pkg/utils"
)

type (
	Handler struct {
		level *slog.LevelVar
	}

	HealthResponse struct {
		Status   string `json:"status"`
		LogLevel string `json:"log_level"`
	}

	LogLevelRequest struct {
		LogLevel string `json:"log_level"`
	}
)

func NewHandler(level *slog.LevelVar) *Handler {
	return &Handler{level: level}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/health", h.handlerHealthGet)
	mux.HandleFunc("PUT /v1/health/log-level", h.handlerLogLevelPut)
}

func (h *Handler) handlerHealthGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerHealthGet")

	utils.RespondWithJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		LogLevel: h.level.Level().String(),
	})
}

func (h *Handler) handlerLogLevelPut(w http.ResponseWriter, r *http.Request) {
	var req LogLevelRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for log level", err)
		return
	}

	level, err := utils.ParseLogLevel(req.LogLevel)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid log level", err)
		return
	}

	slog.Info("changing log level", "from", h.level.Level().String(), "to", level.String())
	h.level.Set(level)

	utils.RespondWithNoContent(w, http.StatusNoContent)
}
