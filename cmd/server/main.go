package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ignite/deliverability-engine/internal/api"
	"github.com/ignite/deliverability-engine/internal/config"
	"github.com/ignite/deliverability-engine/internal/esp"
	"github.com/ignite/deliverability-engine/internal/pkg/httpretry"
	"github.com/ignite/deliverability-engine/internal/pkg/logger"
	"github.com/ignite/deliverability-engine/internal/render"
	"github.com/ignite/deliverability-engine/internal/reputation"
	"github.com/ignite/deliverability-engine/internal/repository/postgres"
	"github.com/ignite/deliverability-engine/internal/service/deliverability"
	"github.com/ignite/deliverability-engine/internal/storage"
	"github.com/ignite/deliverability-engine/internal/validation"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable fails fast when a stale process holds the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %w", port, addr, err)
	}
	return ln.Close()
}

func fatal(msg string, fields ...interface{}) {
	logger.Error(msg, fields...)
	os.Exit(1)
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fatal("failed to load config", "path", configPath, "error", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.ShouldRedactPII())

	if err := checkPortAvailable(cfg.Server.GetHost(), cfg.Server.Port); err != nil {
		fatal("pre-flight check failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event store
	if cfg.Database.URL == "" {
		fatal("database.url is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		fatal("failed to open database", "error", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("database ping failed, health endpoints will report it", "error", err)
	}
	pingCancel()

	// Reputation oracle, cached in Redis when reachable
	if cfg.Reputation.BaseURL == "" {
		fatal("reputation.base_url is required")
	}
	httpClient := &http.Client{Timeout: cfg.Reputation.Timeout()}
	var oracle deliverability.ReputationOracle = reputation.NewClient(
		cfg.Reputation.BaseURL,
		cfg.Reputation.APIKey,
		httpretry.NewRetryClient(httpClient, cfg.Reputation.MaxRetries),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	pingCtx, pingCancel = context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, reputation scores will not be cached", "addr", cfg.Redis.Addr, "error", err)
	} else {
		oracle = reputation.NewCachedOracle(oracle, redisClient, cfg.Reputation.CacheTTL())
		logger.Info("reputation cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Reputation.CacheTTL().String())
	}
	pingCancel()

	// Outbound transport and DNS/SMTP checks
	transport, err := esp.NewSESTransport(ctx, cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.Region, cfg.SES.ConfigurationSet, cfg.SES.Timeout())
	if err != nil {
		fatal("failed to initialize SES transport", "error", err)
	}
	mxChecker := esp.NewDNSMXChecker(cfg.Probe.DialTimeout())
	sessionChecker := esp.NewSMTPSessionChecker(cfg.Probe.SMTPPort, cfg.Probe.HeloName, cfg.Probe.DialTimeout())

	// Services
	validator := validation.New(cfg.Validation.Lexicon())
	probe := deliverability.NewProbe(oracle, mxChecker, sessionChecker, transport, render.New(), deliverability.ProbeConfig{
		FromEmail: cfg.Probe.FromEmail,
		FromName:  cfg.Probe.FromName,
		Subject:   cfg.Probe.Subject,
		HTML:      cfg.Probe.HTML,
	})
	events := postgres.NewEventRepo(db)
	aggregator := deliverability.NewMetricsAggregator(events, postgres.NewSubscriberRepo(db))
	scorer := deliverability.NewQualityScorer(events, validator)

	// Optional archive
	var archive api.ReportArchive
	var snapshots api.SnapshotStore
	if cfg.Archive.S3Bucket != "" || cfg.Archive.DynamoDBTable != "" {
		awsCfg, err := storage.LoadAWSConfig(ctx, cfg.Archive.Region, cfg.Archive.AWSProfile)
		if err != nil {
			fatal("failed to load AWS config for archive", "error", err)
		}
		if cfg.Archive.S3Bucket != "" {
			archive = storage.NewReportArchive(s3.NewFromConfig(awsCfg), cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
			logger.Info("list report archive enabled", "bucket", cfg.Archive.S3Bucket)
		}
		if cfg.Archive.DynamoDBTable != "" {
			snapshots = storage.NewSnapshotStore(dynamodb.NewFromConfig(awsCfg), cfg.Archive.DynamoDBTable)
			logger.Info("health history enabled", "table", cfg.Archive.DynamoDBTable)
		}
	}

	handlers := api.NewHandlers(validator, probe, aggregator, scorer, archive, snapshots)
	router := api.SetupRoutes(handlers, api.NewHealthChecker(db, redisClient), nil)
	server := api.NewServer(cfg.Server, router)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", "error", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
