package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/pharmacycle/pharma-cycle/internal/api"
	"github.com/pharmacycle/pharma-cycle/internal/awsutil"
	"github.com/pharmacycle/pharma-cycle/internal/cache"
	"github.com/pharmacycle/pharma-cycle/internal/config"
	"github.com/pharmacycle/pharma-cycle/internal/lookup"
	"github.com/pharmacycle/pharma-cycle/internal/metrics"
	"github.com/pharmacycle/pharma-cycle/internal/narrative"
	"github.com/pharmacycle/pharma-cycle/internal/pkg/logger"
	"github.com/pharmacycle/pharma-cycle/internal/repository/dynamo"
	"github.com/pharmacycle/pharma-cycle/internal/repository/postgres"
	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
	"github.com/pharmacycle/pharma-cycle/internal/service/partner"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func loadLookup(ctx context.Context, cfg config.LookupConfig, s3Client *s3.Client) (*lookup.Table, error) {
	if cfg.UseS3() {
		log.Printf("[lookup] loading s3://%s/%s", cfg.S3Bucket, cfg.S3Key)
		return lookup.LoadS3(ctx, s3Client, cfg.S3Bucket, cfg.S3Key)
	}
	log.Printf("[lookup] loading %s", cfg.Path)
	return lookup.LoadFile(cfg.Path)
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Pharma-Cycle Analytics Server (cmd/server/main.go)        ║")
	log.Println("║  Disposal reporting, spike alerts and partner portal       ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	if os.Getenv("LOG_REDACT_PII") == "false" {
		logger.SetRedactPII(false)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL backs the partner portal and, by default, reporting.
	var db *sql.DB
	if cfg.Database.URL != "" {
		log.Printf("DB URL host portion: ...@%s/...", extractHost(cfg.Database.URL))
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		log.Println("PostgreSQL connected")
	} else {
		log.Println("PostgreSQL not configured (no DATABASE_URL)")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = openRedis(ctx, cfg.Redis.URL)
		if err != nil {
			// the cache is optional; run without it
			log.Printf("WARNING: Redis unavailable, analytics will not be memoized: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Redis connected")
		}
	}

	awsCfg, err := awsutil.LoadConfig(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	table, err := loadLookup(ctx, cfg.Lookup, s3Client)
	if err != nil {
		log.Fatalf("Failed to load medicine lookup table: %v", err)
	}
	log.Printf("[lookup] %d entries loaded", table.Len())

	var repo analytics.Repository
	switch cfg.Analytics.Source {
	case "dynamodb":
		if cfg.DynamoDB.Table == "" {
			log.Fatal("analytics.source is dynamodb but no dynamodb.table is configured")
		}
		repo = dynamo.NewDisposalRepoFromConfig(awsCfg, cfg.DynamoDB.Table)
		log.Printf("[analytics] reading disposals from DynamoDB table %s", cfg.DynamoDB.Table)
	case "postgres":
		if db == nil {
			log.Fatal("analytics.source is postgres but DATABASE_URL is not set")
		}
		repo = postgres.NewDisposalRepo(db)
		log.Println("[analytics] reading disposals from PostgreSQL")
	default:
		log.Fatalf("unknown analytics.source %q (want postgres or dynamodb)", cfg.Analytics.Source)
	}

	svc := analytics.NewService(repo, table, analytics.Options{
		SpikeWindow:         cfg.Analytics.SpikeWindow,
		ZThreshold:          cfg.Analytics.ZThreshold,
		MonitoredCategories: cfg.Analytics.MonitoredCategories,
		CacheTTL:            cfg.Redis.CacheTTL(),
	})

	reg := metrics.NewRegistry()
	svc.SetObserver(reg)

	if redisClient != nil && cfg.Redis.CacheTTL() > 0 {
		svc.SetCache(cache.New(redisClient))
		log.Printf("[analytics] memoizing reports for %s", cfg.Redis.CacheTTL())
	}

	if cfg.Bedrock.Enabled {
		svc.SetNarrator(narrative.NewFromConfig(awsCfg, cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens, cfg.Bedrock.Timeout()))
		log.Printf("[analytics] narrative summaries via Bedrock model=%s region=%s", cfg.Bedrock.ModelID, awsCfg.Region)
	} else {
		log.Println("[analytics] Bedrock disabled; /api/analytics/summary will answer 503")
	}

	handlers := api.NewHandlers(svc, cfg.Analytics.DefaultFromTime())
	if db != nil {
		handlers.SetPartnerService(partner.NewService(postgres.NewDisposalRepo(db)))
		log.Println("Partner verification portal enabled")
	} else {
		log.Println("Partner verification portal disabled (requires PostgreSQL)")
	}

	hc := api.NewHealthChecker(db, redisClient)
	hc.SetLookupTable(svc.LookupSize)
	if cfg.Lookup.UseS3() {
		hc.SetLookupObject(s3Client, cfg.Lookup.S3Bucket, cfg.Lookup.S3Key)
	}

	server := api.NewServer(cfg.Server, handlers, hc, reg)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized, server is ready")

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
