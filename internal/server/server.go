package server

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzServer "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	hertzprom "github.com/hertz-contrib/monitor-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/scheduler"
)

const requestTimeout = 10 * time.Second

// StatusSource produces the scheduler snapshot served on /status.
type StatusSource interface {
	Status(ctx context.Context) scheduler.Snapshot
}

// Server is the local status surface: /health, /status and /metrics.
type Server struct {
	httpServer *hzServer.Hertz
	bind       string
}

// New builds the server without binding. When cfg.MetricsBind is set the
// prometheus tracer serves /metrics on its own listener, otherwise
// /metrics is mounted on the main bind.
func New(cfg config.ServerConfig, src StatusSource, registry *prometheus.Registry) *Server {
	hlog.SetLogger(logs.NewHlogLogger(logs.DefaultLogger()))

	tracerOpts := []hertzprom.Option{hertzprom.WithRegistry(registry)}
	if cfg.MetricsBind == "" {
		tracerOpts = append(tracerOpts, hertzprom.WithDisableServer(true))
	}

	hzSvr := hzServer.Default(
		hzServer.WithHostPorts(cfg.Bind),
		hzServer.WithReadTimeout(requestTimeout),
		hzServer.WithWriteTimeout(requestTimeout),
		hzServer.WithExitWaitTime(2*time.Second),
		hzServer.WithTracer(hertzprom.NewServerTracer(cfg.MetricsBind, "/metrics", tracerOpts...)),
	)

	hzSvr.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
	hzSvr.GET("/status", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, src.Status(ctx))
	})
	if cfg.MetricsBind == "" {
		hzSvr.GET("/metrics", adaptor.HertzHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return &Server{
		httpServer: hzSvr,
		bind:       cfg.Bind,
	}
}

func (s *Server) Start(ctx context.Context) error {
	go s.httpServer.Spin()
	logs.CtxInfo(ctx, "[server] status server listening on %s", s.bind)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
