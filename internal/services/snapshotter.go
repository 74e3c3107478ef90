package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"auction-house/internal/domain"
	"auction-house/internal/store"
	"auction-house/pkg/logger"
)

// Snapshotter periodically flushes the in-memory store to the MySQL archive
// so state survives restarts. Flushes are best-effort: a failed flush is
// logged and retried on the next tick, callers are never blocked.
type Snapshotter struct {
	cron     *cron.Cron
	store    *store.MemoryItemStore
	archive  domain.SnapshotArchive
	interval time.Duration
	log      logger.Logger
}

func NewSnapshotter(itemStore *store.MemoryItemStore, archive domain.SnapshotArchive,
	interval time.Duration, log logger.Logger) *Snapshotter {
	return &Snapshotter{
		cron:     cron.New(cron.WithSeconds()),
		store:    itemStore,
		archive:  archive,
		interval: interval,
		log:      log,
	}
}

func (s *Snapshotter) Start(ctx context.Context) error {
	s.log.Info("Starting snapshotter", "interval", s.interval)

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.Flush(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Snapshotter) Stop() error {
	s.log.Info("Stopping snapshotter")
	// Waits for an in-flight flush to finish.
	<-s.cron.Stop().Done()
	return nil
}

// Flush writes the current store state to the archive. Also called once
// during shutdown so the final state is not lost between ticks.
func (s *Snapshotter) Flush(ctx context.Context) {
	snapshot := s.store.SnapshotState()
	if err := s.archive.Save(ctx, snapshot); err != nil {
		s.log.Error("Failed to flush snapshot", "items", len(snapshot.Items), "error", err)
		return
	}
	s.log.Debug("Snapshot flushed", "items", len(snapshot.Items))
}

// RestoreStore loads the archived snapshot into the store at boot. An empty
// archive is not an error; the store simply starts fresh.
func RestoreStore(ctx context.Context, itemStore *store.MemoryItemStore,
	archive domain.SnapshotArchive, log logger.Logger) error {
	snapshot, err := archive.Load(ctx)
	if err != nil {
		return err
	}
	if len(snapshot.Items) == 0 {
		log.Info("Archive empty, starting with a fresh store")
		return nil
	}

	itemStore.Restore(snapshot)
	log.Info("Store restored from archive", "items", len(snapshot.Items))
	return nil
}
