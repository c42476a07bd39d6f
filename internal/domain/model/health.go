package model

import "time"

type (
	HealthStatus string

	DependencyName string

	LivenessReport struct {
		Status    HealthStatus
		Timestamp time.Time
	}

	ReadinessReport struct {
		Status    HealthStatus
		Timestamp time.Time
	}

	HealthReport struct {
		Status    HealthStatus
		Version   string
		Timestamp time.Time
		Services  map[DependencyName]ConnectionStatus
	}
)

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusReady     HealthStatus = "ready"
	HealthStatusNotReady  HealthStatus = "not ready"
	HealthStatusAlive     HealthStatus = "alive"

	DependencyPrimaryStore DependencyName = "primaryStore"
	DependencyCache        DependencyName = "cache"
)

func (r *HealthReport) IsHealthy() bool {
	return r.Status == HealthStatusHealthy
}

func (r *ReadinessReport) IsReady() bool {
	return r.Status == HealthStatusReady
}
