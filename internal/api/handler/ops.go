package handler

import (
	"net/http"
	"time"

	"github.com/weatherwear/weatherwear/internal/api/models"
	"github.com/weatherwear/weatherwear/internal/api/response"
	"github.com/weatherwear/weatherwear/internal/featureflags"
	"github.com/weatherwear/weatherwear/internal/provider/resilience"
)

// degradationFlags are reported by the readiness check when switched on.
var degradationFlags = []string{
	featureflags.FlagSyntheticWeather,
	featureflags.FlagDisableStylist,
	featureflags.FlagDisableAirQuality,
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	flags     *featureflags.Service
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler. registry and flags may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, flags *featureflags.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		flags:     flags,
		now:       time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(h.now()),
		Version: h.version,
		Details: map[string]any{
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. Upstream outages degrade the
// status but never fail readiness, since every weather product falls back
// to synthetic data.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ready := models.Readiness{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(h.now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, ph := range h.registry.All() {
			ps := providerStatus(ph)
			if ps.Status != models.HealthStatusOK {
				ready.Status = models.HealthStatusDegraded
			}
			ready.Providers = append(ready.Providers, ps)
		}
	}

	for _, key := range degradationFlags {
		if h.flags.IsEnabled(r.Context(), key) {
			ready.ActiveFlags = append(ready.ActiveFlags, key)
		}
	}

	response.JSON(w, r, http.StatusOK, ready)
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.State,
		ConsecutiveFailures: int(ph.ConsecutiveFailures),
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}

	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	case ph.LastFailureAt != nil && (ph.LastSuccessAt == nil || ph.LastFailureAt.After(*ph.LastSuccessAt)):
		ps.Status = models.HealthStatusDegraded
	}
	return ps
}
