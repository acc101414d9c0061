package jobs

import (
	"context"
	"fmt"
	"time"

	"dropship-hub/config"
	"dropship-hub/models"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// Store is what the scheduled jobs read and write
type Store interface {
	ExpireMemberships(ctx context.Context, now time.Time) (int64, error)
	DistinctCartProductIDs(ctx context.Context) ([]primitive.ObjectID, error)
	ExistingProductIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	RemoveCartItemsForProducts(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron  *cron.Cron
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func New(cfg config.JobsConfig, store Store, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(),
		store: store,
		log:   log.Named("jobs"),
		now:   time.Now,
	}
	if _, err := s.cron.AddFunc(cfg.MembershipExpiry, s.run("membership_expiry", s.ExpireMemberships)); err != nil {
		return nil, fmt.Errorf("invalid membership expiry schedule %q: %w", cfg.MembershipExpiry, err)
	}
	if _, err := s.cron.AddFunc(cfg.CartCleanup, s.run("cart_cleanup", s.CleanupCarts)); err != nil {
		return nil, fmt.Errorf("invalid cart cleanup schedule %q: %w", cfg.CartCleanup, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) run(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := s.now()
		if err := job(ctx); err != nil {
			s.log.Error("Job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("Job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

// ExpireMemberships revokes member pricing for subscriptions past their end date
func (s *Scheduler) ExpireMemberships(ctx context.Context) error {
	n, err := s.store.ExpireMemberships(ctx, s.now())
	if err != nil {
		return fmt.Errorf("expire memberships: %w", err)
	}
	if n > 0 {
		s.log.Info("Memberships expired", zap.Int64("count", n))
	}
	return nil
}

// CleanupCarts removes cart lines whose product was deleted
func (s *Scheduler) CleanupCarts(ctx context.Context) error {
	ids, err := s.store.DistinctCartProductIDs(ctx)
	if err != nil {
		return fmt.Errorf("list cart products: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	existing, err := s.store.ExistingProductIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("check products: %w", err)
	}

	var orphaned []primitive.ObjectID
	for _, id := range ids {
		if !existing[id] {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) == 0 {
		return nil
	}

	n, err := s.store.RemoveCartItemsForProducts(ctx, orphaned)
	if err != nil {
		return fmt.Errorf("remove orphaned cart items: %w", err)
	}
	s.log.Info("Orphaned cart items removed", zap.Int64("count", n), zap.Int("products", len(orphaned)))
	return nil
}

// MongoStore runs the jobs against the models package
type MongoStore struct{}

func (MongoStore) ExpireMemberships(ctx context.Context, now time.Time) (int64, error) {
	return models.ExpireMemberships(ctx, now)
}

func (MongoStore) DistinctCartProductIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return models.DistinctCartProductIDs(ctx)
}

func (MongoStore) ExistingProductIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return models.ExistingProductIDs(ctx, ids)
}

func (MongoStore) RemoveCartItemsForProducts(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return models.RemoveCartItemsForProducts(ctx, ids)
}
