package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loadmap/common/database"
	"loadmap/common/logger"
	mqttc "loadmap/common/mqtt"
	commonredis "loadmap/common/redis"
	"loadmap/internal/blob"
	"loadmap/internal/config"
	httpapi "loadmap/internal/http"
	"loadmap/internal/mqtt"
	"loadmap/internal/repository"
	"loadmap/internal/rules"
	"loadmap/internal/service"
	"loadmap/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "loadmap")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("loadmap stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := rules.NewProvider(ctx, cfg.RulesPath, rules.NewHTTPClient(), log)
	if err != nil {
		return fmt.Errorf("rule table: %w", err)
	}

	plansRepo, roomsRepo, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	jobsRepo, redisClient, err := openJobs(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer commonredis.Close(redisClient)

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	log.Info("Blob store ready", zap.String("driver", string(blobs.Driver())))

	plans := service.NewPlanService(plansRepo, log)
	rooms := service.NewRoomService(roomsRepo, plansRepo, provider, log)
	files := service.NewFileService(blobs, log)
	jobs := service.NewJobService(jobsRepo, files, plans, rooms, log)
	defer jobs.Close()
	ruleSvc := service.NewRuleService(provider)

	if cfg.SeedDemo {
		if err := service.SeedDemo(ctx, plans, rooms, log); err != nil {
			log.Warn("Demo seed failed", zap.Error(err))
		}
	}

	metrics := httpapi.NewMetrics()
	rooms.SetRecorder(metrics)

	router := httpapi.NewRouter(metrics, log)
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(cfg.AppName))
	router.RegisterPlanRoutes(httpapi.NewPlansHandler(plans, rooms, log))
	router.RegisterRuleRoutes(httpapi.NewRulesHandler(ruleSvc, log))
	router.RegisterFileRoutes(httpapi.NewFilesHandler(files, log))
	router.RegisterJobRoutes(httpapi.NewJobsHandler(jobs, log))
	router.RegisterMetricsRoute()

	if cfg.MQTT.Enabled {
		client, err := mqttc.NewClient(&cfg.MQTT.MQTTConfig, log)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		defer client.Disconnect()
		broker := mqtt.NewRoomIngestBroker(rooms, log)
		if err := broker.Start(client, cfg.MQTT.RoomsTopic, cfg.MQTT.QoS); err != nil {
			return fmt.Errorf("mqtt subscribe: %w", err)
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var serveErr error
loop:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if _, err := ruleSvc.Reload(ctx); err != nil {
					log.Error("Rule reload on SIGHUP failed", zap.Error(err))
				}
				continue
			}
			log.Info("Shutting down", zap.String("signal", sig.String()))
			break loop
		case serveErr = <-errCh:
			break loop
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	return serveErr
}

// openStore picks the plans and rooms backend. db is nil for the memory driver.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.PlansRepo, repository.RoomsRepo, *sql.DB, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.EnsurePostgresSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		log.Info("Store ready", zap.String("driver", "postgres"), zap.String("host", cfg.Database.Host))
		return repository.NewPostgresPlansRepo(db), repository.NewPostgresRoomsRepo(db), db, nil
	case config.StoreSQLite:
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		s, err := repository.NewSQLiteStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		log.Info("Store ready", zap.String("driver", "sqlite"), zap.String("path", cfg.SQLitePath))
		return s, s, db, nil
	default:
		log.Info("Store ready", zap.String("driver", "memory"))
		return repository.NewMemoryPlansRepo(), repository.NewMemoryRoomsRepo(), nil, nil
	}
}

// openJobs picks the job status backend. The client is nil for the memory driver.
func openJobs(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.JobsRepo, *redis.Client, error) {
	if cfg.JobsDriver != config.JobsRedis {
		return repository.NewMemoryJobsRepo(), nil, nil
	}
	client := commonredis.NewRedisClient(&cfg.Redis)
	if err := commonredis.Ping(ctx, client); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("Jobs store ready", zap.String("driver", "redis"), zap.String("addr", cfg.Redis.Addr))
	return repository.NewKVJobsRepo(store.NewRedisKV(client, "loadmap:"), cfg.JobTTL), client, nil
}
