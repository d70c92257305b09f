package temperatures

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/temperature"
	"github.com/KyleBrandon/thermometer-server/pkg/utils"
)

type mockReader struct {
	samples []temperature.Sample
}

func (m *mockReader) Current() (temperature.Sample, bool) {
	if len(m.samples) == 0 {
		return temperature.Sample{}, false
	}

	return m.samples[len(m.samples)-1], true
}

func (m *mockReader) Values() []temperature.Sample {
	return m.samples
}

type mockStore struct {
	samples []database.Sample
	limit   int32
	err     error
}

func (m *mockStore) FindRecentSamples(ctx context.Context, limit int32) ([]database.Sample, error) {
	m.limit = limit
	return m.samples, m.err
}

func TestReadTemperature(t *testing.T) {
	t.Run("should fail before the first sample", func(t *testing.T) {
		h := NewHandler(&mockReader{}, nil)

		rr := utils.TestRequest(t, "GET /v1/temperatures", http.MethodGet, "/v1/temperatures", nil, h.handlerTemperaturesGet)
		utils.TestExpectedStatus(t, rr, http.StatusNotFound)
		utils.TestExpectedMessage(t, rr, "No temperature has been sampled yet")
	})

	t.Run("should return the latest sample in both units", func(t *testing.T) {
		now := time.Now()
		h := NewHandler(&mockReader{samples: []temperature.Sample{
			temperature.NewSample(temperature.NewCelsius(10), now),
			temperature.NewSample(temperature.NewCelsius(100), now.Add(time.Second)),
		}}, nil)

		rr := utils.TestRequest(t, "GET /v1/temperatures", http.MethodGet, "/v1/temperatures", nil, h.handlerTemperaturesGet)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		var reading TemperatureReading
		if err := json.Unmarshal(rr.Body.Bytes(), &reading); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if reading.TemperatureC != 100 || reading.TemperatureF != 212 || reading.Unit != "celsius" {
			t.Errorf("unexpected reading %+v", reading)
		}
	})
}

func TestReadTemperatureHistory(t *testing.T) {
	now := time.Now()
	h := NewHandler(&mockReader{samples: []temperature.Sample{
		temperature.NewSample(temperature.NewFahrenheit(50), now),
		temperature.NewSample(temperature.NewFahrenheit(68), now.Add(time.Second)),
	}}, nil)

	rr := utils.TestRequest(t, "GET /v1/temperatures/history", http.MethodGet, "/v1/temperatures/history", nil, h.handlerTemperatureHistoryGet)
	utils.TestExpectedStatus(t, rr, http.StatusOK)

	var readings []TemperatureReading
	if err := json.Unmarshal(rr.Body.Bytes(), &readings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(readings) != 2 || readings[0].TemperatureC != 10 || readings[1].TemperatureC != 20 {
		t.Errorf("unexpected readings %+v", readings)
	}
}

func TestReadRecordedTemperatures(t *testing.T) {
	t.Run("should report a missing store", func(t *testing.T) {
		h := NewHandler(&mockReader{}, nil)

		rr := utils.TestRequest(t, "GET /v1/temperatures/recorded", http.MethodGet, "/v1/temperatures/recorded", nil, h.handlerTemperaturesRecordedGet)
		utils.TestExpectedStatus(t, rr, http.StatusNotImplemented)
	})

	t.Run("should list recorded samples", func(t *testing.T) {
		store := &mockStore{samples: []database.Sample{
			{Value: 212, Unit: "fahrenheit", TemperatureC: 100, CapturedAt: time.Now()},
		}}
		h := NewHandler(&mockReader{}, store)

		rr := utils.TestRequest(t, "GET /v1/temperatures/recorded", http.MethodGet, "/v1/temperatures/recorded?limit=10", nil, h.handlerTemperaturesRecordedGet)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		var readings []TemperatureReading
		if err := json.Unmarshal(rr.Body.Bytes(), &readings); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(readings) != 1 || readings[0].TemperatureF != 212 || readings[0].Unit != "fahrenheit" {
			t.Errorf("unexpected readings %+v", readings)
		}

		if store.limit != 10 {
			t.Errorf("expected limit 10, got %d", store.limit)
		}
	})

	t.Run("should reject a bad limit", func(t *testing.T) {
		h := NewHandler(&mockReader{}, &mockStore{})

		rr := utils.TestRequest(t, "GET /v1/temperatures/recorded", http.MethodGet, "/v1/temperatures/recorded?limit=abc", nil, h.handlerTemperaturesRecordedGet)
		utils.TestExpectedStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("should report store failures", func(t *testing.T) {
		h := NewHandler(&mockReader{}, &mockStore{err: errors.New("connection refused")})

		rr := utils.TestRequest(t, "GET /v1/temperatures/recorded", http.MethodGet, "/v1/temperatures/recorded", nil, h.handlerTemperaturesRecordedGet)
		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
		utils.TestExpectedMessage(t, rr, "connection refused")
	})
}
