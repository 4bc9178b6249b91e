package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "chickencoop_bridge/docs"
	"chickencoop_bridge/internal/bus"
	"chickencoop_bridge/internal/codec"
	"chickencoop_bridge/internal/handlers"
	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/metrics"
	"chickencoop_bridge/internal/mirror"
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"
	"chickencoop_bridge/internal/repository"
	"chickencoop_bridge/internal/repository/db"
	"chickencoop_bridge/internal/repository/pg"
	"chickencoop_bridge/internal/server"
	"chickencoop_bridge/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	ingestTimeout   = 5 * time.Second
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title                       Chicken Coop Bridge API
// @version                     1.0
// @description                 Canonical coop state, device commands and history over the MQTT bus.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load config.yml (optional) and COOP_* env overrides
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(viper.GetString("log.level"))

	if viper.GetString("auth.signing_key") == "" {
		log.Fatalw("auth.signing_key is required (set COOP_AUTH_SIGNING_KEY)")
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// history backend
	repos, store, pool, err := openHistory(ctx, sqlDB, log)
	if err != nil {
		log.Fatalw("failed to init history store", "driver", viper.GetString("history.driver"), "err", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	rec := reconciler.New()
	cdc := codec.New(viper.GetString("mqtt.topic_prefix"))

	// The bus handler needs the services and the services publish through the
	// bus, so the handler closes over services assigned just below.
	var services *service.Service
	mq := bus.New(bus.Config{
		Broker:          viper.GetString("mqtt.broker"),
		ClientID:        viper.GetString("mqtt.client_id"),
		Username:        viper.GetString("mqtt.username"),
		Password:        viper.GetString("mqtt.password"),
		QoS:             byte(viper.GetUint("mqtt.qos")),
		ReconnectPeriod: viper.GetDuration("mqtt.reconnect_period"),
		PublishTimeout:  viper.GetDuration("mqtt.publish_timeout"),
		Topics:          cdc.SubscriptionTopics(),
	}, func(topic string, payload []byte) {
		ictx, icancel := context.WithTimeout(ctx, ingestTimeout)
		defer icancel()
		// Ingest logs decode and storage failures itself.
		_ = services.Ingest(ictx, topic, payload)
	}, log, bus.WithStatusHook(metrics.SetBusConnected))

	// wire dependencies
	services = service.NewService(service.Deps{
		Reconciler: rec,
		Codec:      cdc,
		Repos:      repos,
		Publisher:  mq,
		Bus:        mq,
		Auth: service.AuthConfig{
			SigningKey: viper.GetString("auth.signing_key"),
			TokenTTL:   viper.GetDuration("auth.token_ttl"),
		},
		Store: store,
		Log:   log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// hot state mirror for other dashboard services
	stopMirror := startMirror(ctx, rec, log)
	defer stopMirror()

	// stand-in coop controller for setups without hardware
	stopSim := startSimulator(ctx, services, cdc, rec, log)
	defer stopSim()

	mq.Start()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, mq, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	viper.SetEnvPrefix("coop")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "coop.db")
	viper.SetDefault("history.driver", "sqlite")
	viper.SetDefault("redis.ttl", 24*time.Hour)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.client_id", "coop-bridge")
	viper.SetDefault("mqtt.topic_prefix", codec.DefaultPrefix)
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.reconnect_period", 5*time.Second)
	viper.SetDefault("mqtt.publish_timeout", 5*time.Second)
	viper.SetDefault("auth.token_ttl", 12*time.Hour)
	viper.SetDefault("simulator.enabled", false)
	viper.SetDefault("simulator.interval", time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// openHistory picks the history backend. Operator accounts always live in
// sqlite; readings and inventory move to Postgres when configured.
func openHistory(ctx context.Context, sqlDB *sql.DB, log *logger.Logger) (*repository.Repository, string, *pgxpool.Pool, error) {
	repos := repository.NewRepository(sqlDB)
	driver := strings.ToLower(viper.GetString("history.driver"))
	switch driver {
	case "", "sqlite":
		return repos, "sqlite", nil, nil
	case "postgres":
	default:
		return nil, "", nil, errors.New("history.driver must be sqlite or postgres")
	}

	sctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	pool, err := pg.Connect(sctx, viper.GetString("postgres.url"))
	if err != nil {
		return nil, "", nil, err
	}
	if err := pg.EnsureSchema(sctx, pool); err != nil {
		pool.Close()
		return nil, "", nil, err
	}
	log.Infow("history store ready", "driver", driver)
	return pg.NewRepository(pool, repos.Auth), "postgres", pool, nil
}

// startMirror copies every state change into Redis when redis.addr is set.
// An unreachable Redis is logged and retried on each write.
func startMirror(ctx context.Context, rec *reconciler.Reconciler, log *logger.Logger) func() {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		return func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})
	pctx, cancel := context.WithTimeout(ctx, startupTimeout)
	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Warnw("redis not reachable; mirror will keep retrying", "addr", addr, "err", err)
	}
	cancel()

	m := mirror.New(rdb, viper.GetDuration("redis.ttl"), log)
	sub := rec.Subscribe()
	m.Seed(ctx, rec.Snapshot())
	go m.Run(ctx, sub.C)

	return func() {
		sub.Close()
		if err := rdb.Close(); err != nil {
			log.Warnw("failed to close redis", "err", err)
		}
	}
}

// startSimulator runs the coop controller simulator when simulator.enabled is set.
func startSimulator(ctx context.Context, services *service.Service, cdc *codec.Codec, rec *reconciler.Reconciler, log *logger.Logger) func() {
	if !viper.GetBool("simulator.enabled") {
		return func() {}
	}
	interval := viper.GetDuration("simulator.interval")
	if interval <= 0 {
		interval = time.Second
	}
	log.Warnw("simulator enabled; telemetry is synthetic", "interval", interval)

	sim := service.NewSimulatorService(services, cdc, log)
	sub := rec.Subscribe(models.KindFeederControl)
	go sim.Run(ctx, interval, sub.C)
	return sub.Close
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, mq *bus.Bus, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// unsubscribe and disconnect before the stores go away
	mq.Close()

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
