// Inventory - device inventory service
//
// This is the main entry point for the inventory service. It loads the
// device file, serves the REST API, records every registry outcome to the
// audit database and, when enabled, mirrors events to MQTT and InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-inventory/internal/api"
	"github.com/nerrad567/gray-logic-inventory/internal/audit"
	"github.com/nerrad567/gray-logic-inventory/internal/device"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-inventory/internal/metrics"
	"github.com/nerrad567/gray-logic-inventory/internal/notify"
	"github.com/nerrad567/gray-logic-inventory/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

const (
	// notifyQueueSize bounds MQTT messages waiting for the publisher.
	notifyQueueSize = 256

	// shutdownTimeout bounds the final save and the notifier drain.
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting inventory",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	var (
		recorders device.MultiRecorder
		notifiers device.MultiNotifier
		auditRepo audit.Repository
		health    = make(map[string]api.HealthChecker)
		registry  *device.Registry
	)

	// Audit database (optional)
	if cfg.Database.Enabled {
		db, dbErr := openDatabase(ctx, cfg.Database)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		repo := audit.NewSQLiteRepository(db.DB)
		auditRepo = repo
		recorders = append(recorders, audit.NewRecorder(repo, log.Component("audit")))
		health["database"] = db
	} else {
		log.Info("audit database disabled")
	}

	// Prometheus metrics (optional). Gauges read the registry at scrape time.
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(func() device.Stats { return registry.Stats() })
		recorders = append(recorders, m)
		notifiers = append(notifiers, m)
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorders = append(recorders, influxClient)
		health["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		bridge := notify.NewBridge(mqttClient, mqttClient.Topics(), log.Component("notify"), notifyQueueSize)
		bridge.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if stopErr := bridge.Stop(stopCtx); stopErr != nil {
				log.Warn("MQTT notifier did not drain", "error", stopErr, "dropped", bridge.Dropped())
			}
		}()
		recorders = append(recorders, bridge)
		notifiers = append(notifiers, bridge)
		health["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Device registry
	store := device.NewFileStore()
	store.SetLogger(log.Component("filestore"))
	registry, err = device.Open(ctx, device.Deps{
		Loader:      store,
		Saver:       store,
		Source:      cfg.Inventory.Source,
		Destination: cfg.Inventory.Destination,
		Logger:      log.Component("registry"),
		Recorder:    recorders,
		Notifier:    notifiers,
	})
	if err != nil {
		return fmt.Errorf("loading device registry: %w", err)
	}

	if mqttClient != nil {
		topics := mqttClient.Topics()
		if subErr := mqttClient.Subscribe(topics.AllCommands(), mqttClient.QoS(), notify.CommandHandler(registry, topics)); subErr != nil {
			return fmt.Errorf("subscribing to commands: %w", subErr)
		}
		log.Info("listening for MQTT commands", "topic", topics.AllCommands())
	}

	if influxClient != nil {
		go influxClient.RunSnapshots(ctx, time.Duration(cfg.InfluxDB.FlushInterval)*time.Second, registry.Stats)
	}

	// REST API
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Logger:      log.Component("api"),
		Registry:    registry,
		Audit:       auditRepo,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Health:      health,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, health); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	if cfg.Inventory.SaveOnShutdown {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer saveCancel()
		if saveErr := registry.Save(saveCtx); saveErr != nil {
			log.Error("error saving devices", "error", saveErr)
		}
	}

	// Deferred Close() calls run in reverse order:
	// API, MQTT notifier, MQTT, InfluxDB, database.

	log.Info("inventory stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses INVENTORY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INVENTORY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads path, falling back to built-in defaults when the file
// does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return cfg, err
}

// openDatabase opens the audit database and applies migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // already returning the migration error
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// healthCheck verifies every configured component. It returns the first
// failure.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, checker := range checks {
		if err := checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
