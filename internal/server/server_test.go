package server

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/scheduler"
)

type staticStatus scheduler.Snapshot

func (s staticStatus) Status(context.Context) scheduler.Snapshot {
	return scheduler.Snapshot(s)
}

func TestRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "thursday_test_hits_total", Help: "test"})
	registry.MustRegister(hits)
	hits.Inc()

	snap := scheduler.Snapshot{
		Now:           time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Today:         "Thursday",
		TodayEligible: true,
		FiredSlots:    []string{"2026-01-15_10:00@morning"},
	}
	srv := New(config.ServerConfig{Bind: "127.0.0.1:0"}, staticStatus(snap), registry)
	engine := srv.httpServer.Engine

	w := ut.PerformRequest(engine, "GET", "/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(w.Result().Body()))

	w = ut.PerformRequest(engine, "GET", "/status", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	var got scheduler.Snapshot
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &got))
	assert.Equal(t, "Thursday", got.Today)
	assert.True(t, got.TodayEligible)
	assert.Equal(t, snap.FiredSlots, got.FiredSlots)

	w = ut.PerformRequest(engine, "GET", "/metrics", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "thursday_test_hits_total 1")
}
