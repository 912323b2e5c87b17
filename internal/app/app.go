package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/atomic"

	"twilio-gateway/internal/config"
	"twilio-gateway/internal/forwarder"
	"twilio-gateway/internal/handler/http/health"
	httpiface "twilio-gateway/internal/handler/http/interface"
	"twilio-gateway/internal/handler/http/webhook"
	"twilio-gateway/internal/metrics"
	"twilio-gateway/internal/relay"
	"twilio-gateway/internal/worker"
	"twilio-gateway/pkg/logger"
)

// App represents the gateway with its lifecycle management
type App struct {
	config       *config.Config
	echo         *echo.Echo
	readiness    *atomic.Bool
	httpHandlers []httpiface.HttpRouter
	relayClient  *relay.Client
	forwarder    forwarder.Forwarder
	cancel       context.CancelFunc
}

// NewApp creates a new App instance with the given configuration
func NewApp(cfg *config.Config) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return &App{
		config:    cfg,
		echo:      e,
		readiness: atomic.NewBool(false),
	}
}

// injectDependency initializes the relay client, the optional async
// forwarder and all HTTP handlers
func (a *App) injectDependency() {
	backendTimeout := time.Duration(a.config.BackendTimeoutSeconds) * time.Second
	shutdownTimeout := time.Duration(a.config.ShutdownTimeoutSeconds) * time.Second

	a.relayClient = relay.NewClient(a.config.BackendBaseURL, backendTimeout)

	switch a.config.ForwardingMode {
	case "pool":
		pool := worker.NewPool(a.relayClient, a.config.WorkerPoolSize, a.config.JobQueueSize, shutdownTimeout)
		a.forwarder = forwarder.NewPoolForwarder(pool)
		logger.Info("Using pool-based async forwarding (workers=%d, queueSize=%d)", a.config.WorkerPoolSize, a.config.JobQueueSize)
	case "semaphore":
		a.forwarder = forwarder.NewSemaphoreForwarder(a.relayClient, int64(a.config.SemaphoreMaxConcurrent), shutdownTimeout)
		logger.Info("Using semaphore-based async forwarding (maxConcurrent=%d)", a.config.SemaphoreMaxConcurrent)
	default:
		// sync: the webhook handler calls the backend inline and relays
		// its response to the provider
		a.forwarder = nil
		logger.Info("Using synchronous forwarding (timeout=%v)", backendTimeout)
	}

	a.httpHandlers = []httpiface.HttpRouter{
		health.NewHealthHandler(a.readiness),
		webhook.NewWebhookHandler(a.relayClient, a.forwarder),
	}
}

// preProcess is called before the server starts accepting traffic
func (a *App) preProcess() {
	logger.Info("Preparing to start server...")

	if a.forwarder != nil {
		a.forwarder.Start()
	}
}

// postProcess is called after the shutdown signal is received
func (a *App) postProcess() {
	logger.Info("Shutting down gracefully...")
}

// Run starts the Echo server and handles graceful shutdown
func (a *App) Run() error {
	_, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.injectDependency()
	a.preProcess()

	go func() {
		e := a.echo
		addr := fmt.Sprintf(":%d", a.config.ServerPort)

		// 1. Body size limit (webhook payloads are small; bound memory)
		limit := fmt.Sprintf("%dM", a.config.MaxRequestSizeMB)
		e.Use(middleware.BodyLimit(limit))

		// 2. Request logging
		e.Use(middleware.Logger())

		// 3. Panic recovery
		e.Use(middleware.Recover())

		// 4. Readiness gate: reject new webhook traffic while draining,
		// but keep probes and metrics reachable
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !a.readiness.Load() {
					p := c.Request().URL.Path
					if p != "/" && p != "/health" && p != "/readyz" && p != "/metrics" {
						logger.Info("readiness=false: reject new request path=%s", p)
						return c.NoContent(http.StatusServiceUnavailable)
					}
				}
				return next(c)
			}
		})

		// 5. Prometheus metrics middleware and endpoint
		e.Use(echoprometheus.NewMiddleware("twilio_gateway"))
		e.GET("/metrics", echoprometheus.NewHandler())

		// 6. Keep the queue depth gauge current in async modes
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if a.forwarder != nil {
					metrics.QueueDepthGauge.Set(float64(a.forwarder.GetQueueDepth()))
				}
				return next(c)
			}
		})

		// 7. Handler routes
		for _, handler := range a.httpHandlers {
			handler.SetupRoutes(e)
		}

		logger.Info("Starting Twilio gateway on %s (backend: %s)", addr, a.relayClient.BaseURL())

		a.readiness.Store(true)

		// http.ErrServerClosed is expected during graceful shutdown
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	logger.Info("Server ready. Waiting for interrupt signal...")
	<-quit

	a.postProcess()

	// Step 1: Mark as not ready so load balancers stop routing traffic
	a.readiness.Store(false)
	drainDuration := time.Duration(a.config.ShutdownDrainSeconds) * time.Second
	logger.Info("readiness=false: start drain window duration=%v", drainDuration)

	// Step 2: Drain period
	time.Sleep(drainDuration)

	// Step 3: Finish in-flight async deliveries
	if a.forwarder != nil {
		logger.Info("Stopping forwarder...")
		a.forwarder.Stop()
	}

	// Step 4: Shutdown Echo with timeout
	shutdownTimeout := time.Duration(a.config.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	logger.Info("Shutting down Echo server...")
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
		a.cancel()
		return err
	}

	a.cancel()

	logger.Info("Server stopped gracefully")
	return nil
}
