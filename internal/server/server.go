package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
	"github.com/redis/go-redis/v9"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/distributed"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/jobs"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/ledger"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/metrics"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/notify"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/session"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/version"
)

// throttleCleanupInterval paces bucket eviction. Buckets idle out after three
// minutes, so a one minute sweep keeps the map close to its live set.
const throttleCleanupInterval = time.Minute

type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	appCtx      *middlewares.AppContext
	httpServer  *http.Server
	debugServer *http.Server
	cooldowns   ledger.Ledger
	election    *distributed.Election
	jobManager  *jobs.JobManager
	cancel      context.CancelFunc
}

func New(cfg *config.Config) (*Server, error) {
	logger := setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	sessionManager, err := session.NewManager(logger, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	cooldowns, err := setupLedger(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	notifier := notify.NewWebhookSink(logger, cfg)

	var election *distributed.Election
	if cfg.Distributed != nil && cfg.Distributed.Enabled {
		var client *redis.Client

		if cfg.Redis.Sentinel != nil {
			logger.Info("connecting to redis via sentinel",
				"master", cfg.Redis.Sentinel.MasterName,
				"sentinels", cfg.Redis.Sentinel.SentinelAddresses)

			client = redis.NewFailoverClient(&redis.FailoverOptions{
				MasterName:       cfg.Redis.Sentinel.MasterName,
				SentinelAddrs:    cfg.Redis.Sentinel.SentinelAddresses,
				SentinelUsername: cfg.Redis.Sentinel.SentinelUsername,
				SentinelPassword: cfg.Redis.Sentinel.SentinelPassword,
				Username:         cfg.Redis.Username,
				Password:         cfg.Redis.Password,
				DB:               cfg.Redis.LeaderIndex,
				MinIdleConns:     2,
			})
		} else {
			client = redis.NewClient(&redis.Options{
				Addr:         cfg.Redis.Address,
				Username:     cfg.Redis.Username,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.LeaderIndex,
				MinIdleConns: 2,
			})
		}

		if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
			collector := redisprometheus.NewCollector(metrics.Namespace, "election", client)
			if err := prometheus.Register(collector); err != nil {
				logger.Debug("failed to register redis election collector: already registered", "error", err)
			}
		}

		hostname := os.Getenv("HOSTNAME")
		if hostname == "" {
			hostname = uuid.New().String()
		}

		election = &distributed.Election{
			Redis:      client,
			InstanceID: hostname,
			TTL:        cfg.Distributed.TTL,
		}
	}

	var throttleStore *middlewares.ThrottleStore
	if cfg.Throttle.Enabled {
		throttleStore = middlewares.NewThrottleStore(cfg)
	}

	appCtx := middlewares.NewAppContext(ctx, cfg, logger, sessionManager, cooldowns, notifier)

	jobManager := jobs.NewJobManager(election, logger)
	jobManager.Register(jobs.NewRetentionJob(cooldowns, cfg, logger))

	if throttleStore != nil {
		jobManager.Register(jobs.NewThrottleCleanupJob(throttleStore, throttleCleanupInterval, logger))
	}

	router := setupRouter(appCtx, throttleStore)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	var debugServer *http.Server
	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		debugRouter := setupDebugRouter()
		debugServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Debug.Host, cfg.Server.Debug.Port),
			Handler: debugRouter,
		}
	}

	return &Server{
		cfg:         cfg,
		logger:      logger,
		appCtx:      appCtx,
		httpServer:  httpServer,
		debugServer: debugServer,
		cooldowns:   cooldowns,
		election:    election,
		jobManager:  jobManager,
		cancel:      cancel,
	}, nil
}

func (s *Server) Start() error {
	if s.election != nil {
		go s.election.Start(*s.appCtx)
	}

	s.jobManager.Start(*s.appCtx)

	go func() {
		if s.election != nil {
			s.logger.Info("Server Started", "port", s.cfg.Server.Port, "version", version.Version, "instance", s.election.InstanceID)
		} else {
			s.logger.Info("Server Started", "port", s.cfg.Server.Port, "version", version.Version)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", "error", err)
			s.cancel()
		}
	}()

	if s.debugServer != nil {
		go func() {
			s.logger.Info("Metrics server starting", "address", s.debugServer.Addr)
			if err := s.debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed to start", "error", err)
				s.cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("Shutdown signal received")
	case <-s.appCtx.Done():
		s.logger.Info("Context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info("Shutting Down Server")

	s.jobManager.Shutdown(shutdownCtx)

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	if s.debugServer != nil {
		if err := s.debugServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Debug server forced to shutdown", "error", err)
		}
	}

	s.cooldowns.Close()

	s.logger.Info("Server Exited")
	return nil
}

func setupLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ledger.Ledger, error) {
	switch cfg.Ledger.Backend {
	case metrics.LedgerBackendMemory:
		return ledger.Instrument(metrics.LedgerBackendMemory, ledger.NewMemoryLedger(cfg.Ledger.Cooldown)), nil

	case metrics.LedgerBackendRedis:
		var client *redis.Client

		if cfg.Redis.Sentinel != nil {
			logger.Info("connecting to redis via sentinel",
				"master", cfg.Redis.Sentinel.MasterName,
				"sentinels", cfg.Redis.Sentinel.SentinelAddresses)

			client = redis.NewFailoverClient(&redis.FailoverOptions{
				MasterName:       cfg.Redis.Sentinel.MasterName,
				SentinelAddrs:    cfg.Redis.Sentinel.SentinelAddresses,
				SentinelUsername: cfg.Redis.Sentinel.SentinelUsername,
				SentinelPassword: cfg.Redis.Sentinel.SentinelPassword,
				Username:         cfg.Redis.Username,
				Password:         cfg.Redis.Password,
				DB:               cfg.Redis.CooldownIndex,
				MinIdleConns:     2,
			})
		} else {
			client = redis.NewClient(&redis.Options{
				Addr:         cfg.Redis.Address,
				Username:     cfg.Redis.Username,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.CooldownIndex,
				MinIdleConns: 2,
			})
		}

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}

		if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
			collector := redisprometheus.NewCollector(metrics.Namespace, "ledger", client)
			if err := prometheus.Register(collector); err != nil {
				logger.Debug("failed to register redis ledger collector: already registered", "error", err)
			}
		}

		return ledger.Instrument(metrics.LedgerBackendRedis, ledger.NewRedisLedger(client, cfg.Ledger.Cooldown, cfg.Ledger.Retention)), nil

	case metrics.LedgerBackendPostgres:
		pg, err := ledger.NewPostgresLedger(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres ledger: %w", err)
		}
		return ledger.Instrument(metrics.LedgerBackendPostgres, pg), nil

	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Ledger.Backend)
	}
}
