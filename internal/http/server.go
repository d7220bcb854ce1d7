package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/monosms/sms-agent/internal/automation"
	"github.com/monosms/sms-agent/internal/config"
	"github.com/monosms/sms-agent/internal/dispatcher"
	"github.com/monosms/sms-agent/internal/http/middleware"
	"github.com/monosms/sms-agent/internal/llm"
	"github.com/monosms/sms-agent/internal/logger"
	"github.com/monosms/sms-agent/internal/metrics"
	"github.com/monosms/sms-agent/internal/notify"
	"github.com/monosms/sms-agent/internal/parser"
	"github.com/monosms/sms-agent/internal/resolver"
	"github.com/monosms/sms-agent/internal/token"
)

type Server struct{ e *echo.Echo }

// NewServer wires the upstream clients, dispatcher, and webhook route.
// The registry must already be loaded.
func NewServer(cfg config.Config, registry *token.Registry, rds *redis.Client) *Server {
	// upstream clients
	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Timeout)
	cmdParser := parser.New(llmClient, cfg.LLM.Model)
	ens := resolver.New(cfg.ENS.Endpoint, cfg.ENS.Timeout)
	autoClient := automation.NewClient(cfg.Automation.BaseURL, cfg.Automation.AgentPath, cfg.Automation.Account, cfg.Automation.Salt, cfg.Automation.Timeout)
	notifier := notify.NewSender(cfg.SMS, logger.Log)

	disp := dispatcher.New(registry, ens, autoClient, notifier, cfg.Dispatch.DefaultTimeGapMS, logger.Log)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:sender:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	e.POST("/api/sms-handler", inboundSMSHandler(cmdParser, disp, notifier), rlMW)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
