package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

type fixedClients int

func (f fixedClients) ClientCount() int { return int(f) }

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		ds         *domain.Dataset
		err        error
		hub        ClientCounter
		wantStatus string
	}{
		{name: "ready", ds: &domain.Dataset{Fingerprint: 7}, hub: fixedClients(2), wantStatus: "ready"},
		{name: "ready without hub", ds: &domain.Dataset{}, wantStatus: "ready"},
		{name: "source missing", err: errors.New("no such file"), hub: fixedClients(0), wantStatus: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(mockSource)
			src.On("Get", mock.Anything).Return(tt.ds, tt.err)
			hs := NewHealthService("1.2.0", src, tt.hub, testutil.DiscardLogger())

			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantStatus == "ready", status.Ready())
			assert.Equal(t, "1.2.0", status.Version)
			assert.Contains(t, status.Services, "dataset")
			assert.Contains(t, status.Services, "websocket")
		})
	}
}

func TestHealthService_HealthAndLiveness(t *testing.T) {
	src := new(mockSource)
	hs := NewHealthService("1.2.0", src, nil, testutil.DiscardLogger())

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	// neither check touches the dataset
	src.AssertNotCalled(t, "Get", mock.Anything)
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService("1.2.0", new(mockSource), nil, testutil.DiscardLogger())

	v := hs.Version()
	assert.Equal(t, "1.2.0", v["version"])
	assert.Equal(t, "v1", v["api_version"])
	assert.NotEmpty(t, v["go_version"])
}
