package temperatures

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/pkg/utils"
)

// NewHandler serves the in-memory samples from reader and, when store is not
// nil, the recorded samples.
func NewHandler(reader TemperatureReader, store SampleStore) *Handler {
	return &Handler{
		reader: reader,
		store:  store,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/temperatures", h.handlerTemperaturesGet)
	mux.HandleFunc("GET /v1/temperatures/history", h.handlerTemperatureHistoryGet)
	mux.HandleFunc("GET /v1/temperatures/recorded", h.handlerTemperaturesRecordedGet)
}

func (h *Handler) handlerTemperaturesGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerTemperaturesGet")

	sample, ok := h.reader.Current()
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "No temperature has been sampled yet", nil)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, convertFromSample(sample))
}

func (h *Handler) handlerTemperatureHistoryGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerTemperatureHistoryGet")

	samples := h.reader.Values()

	results := make([]TemperatureReading, 0, len(samples))
	for _, s := range samples {
		results = append(results, convertFromSample(s))
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

// handlerTemperaturesRecordedGet returns the recorded samples, newest first.
func (h *Handler) handlerTemperaturesRecordedGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerTemperaturesRecordedGet")

	if h.store == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "Sample recording is not configured", nil)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	rows, err := h.store.FindRecentSamples(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to read the recorded samples", err)
		return
	}

	results := make([]TemperatureReading, 0, len(rows))
	for _, row := range rows {
		results = append(results, convertFromDatabaseSample(row))
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
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

func convertFromDatabaseSample(s database.Sample) TemperatureReading {
	return TemperatureReading{
		Value:        s.Value,
		Unit:         s.Unit,
		TemperatureC: s.TemperatureC,
		TemperatureF: temperature.CelsiusToFahrenheit(s.TemperatureC),
		CapturedAt:   s.CapturedAt,
	}
}

func convertFromSample(s temperature.Sample) TemperatureReading {
	return TemperatureReading{
		Value:        s.Reading.Value,
		Unit:         s.Reading.Unit.String(),
		TemperatureC: s.Reading.ToCelsius(),
		TemperatureF: s.Reading.ToFahrenheit(),
		CapturedAt:   s.CapturedAt,
	}
}
