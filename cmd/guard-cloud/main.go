// AnLex Guard cloud node.
//
// The cloud node mirrors the edge node's state over the broker and
// serves it to dashboards through a REST API. It never touches
// hardware: commands are published to the broker and the edge applies
// them, so a cloud outage degrades the dashboard but never the
// protection itself.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/anvsult/anlex-guard/migrations"

	"github.com/anvsult/anlex-guard/internal/api"
	"github.com/anvsult/anlex-guard/internal/bridge"
	"github.com/anvsult/anlex-guard/internal/eventlog"
	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
	"github.com/anvsult/anlex-guard/internal/infrastructure/database"
	"github.com/anvsult/anlex-guard/internal/infrastructure/influxdb"
	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
	"github.com/anvsult/anlex-guard/internal/infrastructure/mqtt"
	"github.com/anvsult/anlex-guard/internal/mirror"
)

// Version information - set at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/cloud.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting AnLex Guard cloud node",
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

	// The cloud keeps its own event log copy so dashboards work while
	// the edge is offline.
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

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled, history endpoints unavailable")
	}

	// Bridge and mirror
	guardBridge := bridge.New(broker, cfg.Broker, bridge.RoleCloud, log)
	if err := guardBridge.Subscribe(); err != nil {
		return fmt.Errorf("subscribing to feeds: %w", err)
	}

	var readings mirror.ReadingWriter
	var history api.HistoryQuerier
	if influxClient != nil {
		readings = influxClient
		history = influxClient
	}

	stateMirror := mirror.New(guardBridge.Intake(), events, readings, cfg.Node.ID, log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stateMirror.Run(runCtx)
	}()

	// API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Mirror:    stateMirror,
		Events:    events,
		Publisher: guardBridge,
		History:   history,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(runCtx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("cloud node running",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	cancel()
	wg.Wait()

	log.Info("AnLex Guard cloud node stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ANLEXGUARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ANLEXGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
