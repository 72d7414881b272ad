// AnLex Guard edge node.
//
// The edge node owns the physical installation: motion and environment
// sensors, the credential reader, and the LED, buzzer, and servo lock.
// It runs the security state machine locally so the system keeps
// protecting the home when the broker or the cloud node is
// unreachable, and synchronises state over the broker whenever the
// link is up.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/anvsult/anlex-guard/migrations"

	"github.com/anvsult/anlex-guard/internal/bridge"
	"github.com/anvsult/anlex-guard/internal/eventlog"
	"github.com/anvsult/anlex-guard/internal/hardware"
	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
	"github.com/anvsult/anlex-guard/internal/infrastructure/database"
	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
	"github.com/anvsult/anlex-guard/internal/infrastructure/mqtt"
	"github.com/anvsult/anlex-guard/internal/security"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/edge.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting AnLex Guard edge node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Open database and run migrations
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	events := eventlog.NewSQLiteRepository(db.DB)

	// Connect to the broker
	broker, err := mqtt.Connect(cfg.Broker)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer func() {
		log.Info("disconnecting from broker")
		if closeErr := broker.Close(); closeErr != nil {
			log.Error("error closing broker connection", "error", closeErr)
		}
	}()
	log.Info("broker connected",
		"host", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)

	broker.SetOnConnect(func() {
		log.Info("broker reconnected")
	})
	broker.SetOnDisconnect(func(err error) {
		log.Warn("broker disconnected", "error", err)
	})

	// Bridge and publish worker
	guardBridge := bridge.New(broker, cfg.Broker, bridge.RoleEdge, log)
	if err := guardBridge.Subscribe(); err != nil {
		return fmt.Errorf("subscribing to feeds: %w", err)
	}

	// Hardware. Simulated drivers stand in until GPIO backends are
	// wired up through the same interfaces.
	motionSensor := &hardware.SimMotionSensor{}
	envSensor := &hardware.SimEnvironmentSensor{}
	credentialReader := &hardware.SimCredentialReader{}
	actuators := security.Actuators{
		LED:    &hardware.SimLED{},
		Buzzer: &hardware.SimBuzzer{},
		Lock:   &hardware.SimLock{},
	}

	// State machine
	machine := security.New(
		cfg.Security,
		cfg.GracePeriod(),
		guardBridge.Intake(),
		actuators,
		nil, // publisher set below, after the worker exists
		events,
		nil,
		log,
	)

	worker := bridge.NewWorker(guardBridge, machine.PublishFailed, log)
	worker.SetOnSuccess(machine.PublishSucceeded)
	machine.SetPublisher(worker)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(runCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		machine.Run(runCtx)
	}()

	// Sensor pollers feed the machine through the bridge intake so
	// local observations and remote commands share one ordered queue.
	startPollers(runCtx, &wg, cfg, guardBridge, motionSensor, envSensor, credentialReader, log)

	// Announce the initial mode so the retained feed reflects reality
	// even after a fresh install.
	if err := worker.Enqueue(bridge.ChannelMode, machine.Snapshot().Mode.String()); err != nil {
		log.Warn("initial mode publish failed", "error", err)
	}

	log.Info("edge node running", "grace_period", cfg.GracePeriod())

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	cancel()
	wg.Wait()

	log.Info("AnLex Guard edge node stopped")
	return nil
}

// startPollers launches the sensor polling loops.
func startPollers(
	ctx context.Context,
	wg *sync.WaitGroup,
	cfg *config.Config,
	guardBridge *bridge.Bridge,
	motionSensor hardware.MotionSensor,
	envSensor hardware.EnvironmentSensor,
	credentialReader hardware.CredentialReader,
	log *logging.Logger,
) {
	motionPoller := hardware.NewMotionPoller(motionSensor, cfg.Hardware.MotionPollInterval,
		func(detected bool, at time.Time) {
			value := 0.0
			if detected {
				value = 1
			}
			guardBridge.Offer(bridge.SensorReading{
				Kind:       bridge.ReadingMotion,
				Value:      value,
				ObservedAt: at,
			})
		}, log)

	envPoller := hardware.NewEnvironmentPoller(envSensor, cfg.Hardware.EnvironmentPollInterval,
		func(reading hardware.EnvironmentReading, at time.Time) {
			guardBridge.Offer(bridge.SensorReading{
				Kind:       bridge.ReadingTemperature,
				Value:      reading.TemperatureC,
				ObservedAt: at,
			})
			guardBridge.Offer(bridge.SensorReading{
				Kind:       bridge.ReadingHumidity,
				Value:      reading.HumidityPct,
				ObservedAt: at,
			})
		}, log)

	credentialPoller := hardware.NewCredentialPoller(credentialReader, cfg.Hardware.CredentialPollInterval,
		func(id string, at time.Time) {
			guardBridge.Offer(bridge.CredentialScan{ID: id, ScannedAt: at})
		}, log)

	for _, poller := range []interface{ Run(context.Context) }{motionPoller, envPoller, credentialPoller} {
		wg.Add(1)
		go func(p interface{ Run(context.Context) }) {
			defer wg.Done()
			p.Run(ctx)
		}(poller)
	}
}

// getConfigPath returns the configuration file path.
// Uses ANLEXGUARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ANLEXGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
