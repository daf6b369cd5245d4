// Command seed loads demo users, partner pharmacies and a disposal history
// into PostgreSQL, and optionally mirrors the completed disposals into the
// DynamoDB reporting table.
//
// Usage:
//
//	DATABASE_URL=postgres://... go run ./cmd/seed --days=30 --dynamo-table=disposals
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/pharmacycle/pharma-cycle/internal/awsutil"
	"github.com/pharmacycle/pharma-cycle/internal/config"
	"github.com/pharmacycle/pharma-cycle/internal/domain"
	"github.com/pharmacycle/pharma-cycle/internal/pkg/distlock"
	"github.com/pharmacycle/pharma-cycle/internal/repository/dynamo"
	"github.com/pharmacycle/pharma-cycle/internal/repository/postgres"
)

const lockKey = "pharmacycle:seed"

var demoUsers = []domain.User{
	{Name: "Priya Sharma", Email: "priya@example.com"},
	{Name: "Amit Gupta", Email: "amit@example.com"},
	{Name: "Sneha Iyer", Email: "sneha@example.com"},
}

var demoPharmacies = []domain.Pharmacy{
	{Name: "Gupta Medicos", Address: "Connaught Place, Delhi", City: "Delhi", State: "Delhi", PartnerCode: "PHARMA001"},
	{Name: "HealthPlus Pharmacy", Address: "Bandra, Mumbai", City: "Mumbai", State: "Maharashtra", PartnerCode: "PHARMA002"},
	{Name: "Apollo Pharmacy", Address: "Koramangala, Bengaluru", City: "Bengaluru", State: "Karnataka", PartnerCode: "PHARMA003"},
}

func main() {
	days := flag.Int("days", 30, "days of completed-disposal history to generate")
	perDay := flag.Int("per-day", 4, "baseline disposals per day")
	spikeBrand := flag.String("spike-brand", "Benadryl", "brand that spikes on the last day (empty disables)")
	spikeQty := flag.Int("spike-qty", 40, "units of the spike brand on the last day")
	dynamoTable := flag.String("dynamo-table", os.Getenv("DYNAMODB_TABLE"), "mirror completed disposals into this DynamoDB table")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	var redisClient *redis.Client
	if url := os.Getenv("REDIS_URL"); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			log.Fatalf("parse REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	plan := historyPlan{
		Days:       *days,
		End:        time.Now(),
		PerDay:     *perDay,
		SpikeBrand: *spikeBrand,
		SpikeQty:   *spikeQty,
	}
	rng := rand.New(rand.NewSource(*randSeed))

	lock := distlock.NewLock(redisClient, db, lockKey, 10*time.Minute)
	err = distlock.Run(ctx, lock, func(ctx context.Context) error {
		return seed(ctx, db, rng, plan, *dynamoTable)
	})
	if errors.Is(err, distlock.ErrNotAcquired) {
		log.Println("[seed] another seed run holds the lock; exiting")
		return
	}
	if err != nil {
		log.Fatalf("[seed] %v", err)
	}
	log.Println("[seed] done")
}

func seed(ctx context.Context, db *sql.DB, rng *rand.Rand, plan historyPlan, dynamoTable string) error {
	dir := postgres.NewDirectoryRepo(db)

	users := append([]domain.User(nil), demoUsers...)
	for i := range users {
		if err := dir.CreateUser(ctx, &users[i]); err != nil {
			return err
		}
	}
	pharmacies := append([]domain.Pharmacy(nil), demoPharmacies...)
	for i := range pharmacies {
		if err := dir.CreatePharmacy(ctx, &pharmacies[i]); err != nil {
			return err
		}
	}
	log.Printf("[seed] %d users, %d pharmacies", len(users), len(pharmacies))

	history := buildHistory(rng, plan, users, pharmacies)

	// One pending disposal for the partner portal walkthrough.
	pending := domain.DisposalRecord{
		UserID:       users[0].ID,
		PharmacyID:   &pharmacies[0].ID,
		Status:       domain.DisposalPending,
		DisposalCode: newDisposalCode(),
		CreatedAt:    time.Now().UTC(),
		Items: []domain.Item{
			{MedicineName: "Crocin Advance", Quantity: 1, Unit: "strip", Sealed: true},
			{MedicineName: "Cough Syrup", Quantity: 1, Unit: "bottle"},
		},
	}

	disposals := postgres.NewDisposalRepo(db)
	n, err := disposals.BulkInsert(ctx, append(history, pending))
	if err != nil {
		return err
	}
	log.Printf("[seed] %d disposals inserted; pending code %s", n, pending.DisposalCode)

	if dynamoTable == "" {
		return nil
	}

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		return err
	}
	awsCfg, err := awsutil.LoadConfig(ctx, cfg.AWS)
	if err != nil {
		return err
	}
	docs := dynamo.NewDisposalRepoFromConfig(awsCfg, dynamoTable)
	for _, rec := range history {
		if err := docs.Put(ctx, rec); err != nil {
			return err
		}
	}
	log.Printf("[seed] %d disposals mirrored to DynamoDB table %s", len(history), dynamoTable)
	return nil
}
