package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticCounter int

func (c staticCounter) Count() int { return int(c) }

func TestHealthCheck(t *testing.T) {
	svc := NewHealthService("1.0.0", staticCounter(3))

	status := svc.Check(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, 3, status.Analyses)
	assert.NotEmpty(t, status.GoVersion)
	assert.False(t, status.Timestamp.IsZero())
	assert.GreaterOrEqual(t, status.UptimeSeconds, 0.0)
}

func TestHealthCheckNilCounter(t *testing.T) {
	svc := NewHealthService("1.0.0", nil)

	status := svc.Check(context.Background())

	assert.Equal(t, 0, status.Analyses)
}
