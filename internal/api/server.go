// Package api provides the HTTP REST API for the AnLex Guard cloud node.
//
// It exposes the mirrored security state, the event log, sensor
// history, and remote commands to dashboards and mobile clients. The
// cloud node never reaches the edge directly: every command is
// published to the broker and the edge applies it on its own schedule.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/anvsult/anlex-guard/internal/bridge"
	"github.com/anvsult/anlex-guard/internal/eventlog"
	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
	"github.com/anvsult/anlex-guard/internal/infrastructure/influxdb"
	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
	"github.com/anvsult/anlex-guard/internal/mirror"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Circuit breaker tuning for broker publishes.
const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 30 * time.Second
	breakerCountInterval       = time.Minute
)

// CommandPublisher sends a command towards the edge node.
// Satisfied by *bridge.Bridge.
type CommandPublisher interface {
	Publish(channel bridge.Channel, value string) error
	IsConnected() bool
}

// HistoryQuerier reads sensor history from the time series store.
// Satisfied by the InfluxDB client.
type HistoryQuerier interface {
	QuerySensorHistory(ctx context.Context, sensor string, start, end time.Time) ([]influxdb.HistoryPoint, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Mirror    *mirror.Mirror
	Events    eventlog.Repository
	Publisher CommandPublisher
	History   HistoryQuerier // optional; history endpoints return 503 without it
	Version   string
}

// Server is the cloud node's HTTP API server.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	mirror    *mirror.Mirror
	events    eventlog.Repository
	publisher CommandPublisher
	history   HistoryQuerier
	version   string
	breaker   *gobreaker.CircuitBreaker
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, mirror, event log, publisher)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Mirror == nil {
		return nil, fmt.Errorf("mirror is required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("event log is required")
	}
	if deps.Publisher == nil {
		return nil, fmt.Errorf("command publisher is required")
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		mirror:    deps.Mirror,
		events:    deps.Events,
		publisher: deps.Publisher,
		history:   deps.History,
		version:   deps.Version,
	}

	// Repeated publish failures trip the breaker so dashboards get a
	// fast 503 instead of queueing commands a dead broker will drop.
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "broker-publish",
		Interval: breakerCountInterval,
		Timeout:  breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			deps.Logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return s, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; stop it with Close().
//
// Parameters:
//   - ctx: Context for startup cancellation
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
