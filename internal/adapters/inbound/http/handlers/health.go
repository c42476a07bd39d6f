package handlers

import (
	"net/http"
	"time"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/usecases"
	"github.com/architeacher/items/internal/usecases/queries"
)

type (
	healthResponse struct {
		Status    model.HealthStatus                              `json:"status"`
		Version   string                                          `json:"version"`
		Timestamp time.Time                                       `json:"timestamp"`
		Services  map[model.DependencyName]model.ConnectionStatus `json:"services"`
	}

	probeResponse struct {
		Status    model.HealthStatus `json:"status"`
		Timestamp time.Time          `json:"timestamp"`
	}

	HealthHandler struct {
		app *usecases.WebApplication
	}
)

func NewHealthHandler(app *usecases.WebApplication) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, probeResponse{
			Status:    model.HealthStatusUnhealthy,
			Timestamp: time.Now().UTC(),
		})

		return
	}

	status := http.StatusOK
	if !report.IsHealthy() {
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, healthResponse{
		Status:    report.Status,
		Version:   report.Version,
		Timestamp: report.Timestamp,
		Services:  report.Services,
	})
}

func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Queries.FetchReadinessReport.Execute(r.Context(), queries.FetchReadinessReportQuery{})
	if err != nil || !report.IsReady() {
		writeJSONResponse(w, http.StatusServiceUnavailable, probeResponse{
			Status:    model.HealthStatusNotReady,
			Timestamp: time.Now().UTC(),
		})

		return
	}

	writeJSONResponse(w, http.StatusOK, probeResponse{Status: report.Status, Timestamp: report.Timestamp})
}

func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Queries.FetchLivenessReport.Execute(r.Context(), queries.FetchLivenessReportQuery{})
	if err != nil {
		report = &model.LivenessReport{Status: model.HealthStatusAlive, Timestamp: time.Now().UTC()}
	}

	writeJSONResponse(w, http.StatusOK, probeResponse{Status: report.Status, Timestamp: report.Timestamp})
}
