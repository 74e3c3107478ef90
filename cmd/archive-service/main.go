package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"

	"auction-house/internal/config"
	"auction-house/internal/domain"
	"auction-house/internal/infrastructure/leader"
	"auction-house/internal/infrastructure/mysql"
	redisinfra "auction-house/internal/infrastructure/redis"
	"auction-house/pkg/logger"
)

// ArchiveService tails the item event stream and journals accepted bids to
// MySQL. Leader election keeps a single writer when several instances run.
type ArchiveService struct {
	subscriber domain.EventSubscriber
	journal    domain.BidJournal
	election   domain.LeaderElection
	instanceID string
	log        logger.Logger
}

func NewArchiveService(subscriber domain.EventSubscriber, journal domain.BidJournal,
	election domain.LeaderElection, instanceID string, log logger.Logger) *ArchiveService {
	return &ArchiveService{
		subscriber: subscriber,
		journal:    journal,
		election:   election,
		instanceID: instanceID,
		log:        log,
	}
}

func (as *ArchiveService) Start(ctx context.Context) error {
	as.log.Info("Starting archive service", "instance_id", as.instanceID)

	return as.subscriber.SubscribeToItemEvents(ctx, func(event *domain.ItemEvent) error {
		if event.Type != domain.BidAccepted {
			return nil
		}

		isLeader, err := as.election.IsLeader(ctx, as.instanceID)
		if err != nil {
			return err
		}
		if !isLeader {
			return nil
		}

		as.log.Info("Journaling bid event", "item_id", event.ItemID,
			"principal", event.Principal, "amount", event.Amount)
		// Inherit the service context so shutdown bounds in-flight inserts.
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return as.journal.AppendBidEvent(writeCtx, event)
	})
}

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}

	journal := mysql.NewMySQLBidJournal(db)
	subscriber := redisinfra.NewRedisEventSubscriber(rdb, log)
	election := leader.NewRedisLeaderElection(rdb, "archive", cfg.Leader.TTL)

	archiveService := NewArchiveService(subscriber, journal, election, cfg.Instance.ID, log)

	serviceCtx, stopService := context.WithCancel(context.Background())
	defer stopService()

	go func() {
		if err := archiveService.Start(serviceCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Archive service failed", "error", err)
			os.Exit(1)
		}
	}()

	// Keep trying for leadership; the current leader renews its own lease.
	go func() {
		for {
			became, err := election.BecomeLeader(context.Background(), cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became archive leader", "instance_id", cfg.Instance.ID)
			}
			time.Sleep(10 * time.Second)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down archive service...")
	stopService()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := election.ReleaseLeadership(ctx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}

	log.Info("Archive service stopped")
}
