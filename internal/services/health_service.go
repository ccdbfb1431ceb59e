package services

import (
	"context"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	startTime time.Time
	analyses  interface{ Count() int }
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Analyses      int       `json:"analyses"`
	GoVersion     string    `json:"go_version"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, analyses interface{ Count() int }) *HealthService {
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		analyses:  analyses,
	}
}

// Check returns the current health status.
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	count := 0
	if h.analyses != nil {
		count = h.analyses.Count()
	}
	return HealthStatus{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Analyses:      count,
		GoVersion:     runtime.Version(),
	}
}
