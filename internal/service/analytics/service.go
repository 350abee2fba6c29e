// Package analytics turns raw livestock records into operational KPIs,
// weighted pricing statistics and a merged activity feed.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/internal/metrics"
	"github.com/mamadbah2/ganadero/internal/repository"
)

var (
	// ErrAnimalsUnavailable means no KPI can be trusted: every metric derives from the animal set.
	ErrAnimalsUnavailable = errors.New("animal records unavailable")
	// ErrPricingUnavailable means the buyer's sales or their line items could not be read.
	ErrPricingUnavailable = errors.New("pricing records unavailable")
	// ErrInvalidBuyer rejects an empty buyer id.
	ErrInvalidBuyer = errors.New("invalid buyer id")
)

// Source is the typed read surface the engine needs. *repository.Store implements it.
type Source interface {
	Animals(ctx context.Context, q repository.Query) ([]models.Animal, error)
	Purchases(ctx context.Context, q repository.Query) ([]models.Purchase, error)
	Sales(ctx context.Context, q repository.Query) ([]models.Sale, error)
	SaleDetails(ctx context.Context, q repository.Query) ([]models.SaleDetail, error)
	HealthEvents(ctx context.Context, q repository.Query) ([]models.HealthEvent, error)
	Buyers(ctx context.Context, q repository.Query) ([]models.Buyer, error)
	Suppliers(ctx context.Context, q repository.Query) ([]models.Supplier, error)
}

// Options tunes snapshot computation.
type Options struct {
	// FeedLimit bounds the merged activity feed. Defaults to DefaultFeedLimit.
	FeedLimit int
	// RecentWindow is the length of recent_purchases and recent_sales. Defaults to 5.
	RecentWindow int
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

const defaultRecentWindow = 5

// Service is the KPI aggregator.
type Service struct {
	source  Source
	opts    Options
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewService wires a new analytics service instance.
func NewService(source Source, opts Options, rec *metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FeedLimit <= 0 {
		opts.FeedLimit = DefaultFeedLimit
	}
	if opts.RecentWindow <= 0 {
		opts.RecentWindow = defaultRecentWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{source: source, opts: opts, metrics: rec, logger: logger}
}

// ComputeSnapshot builds a snapshot with the configured feed limit.
func (s *Service) ComputeSnapshot(ctx context.Context) (*models.KpiSnapshot, error) {
	return s.ComputeSnapshotWithLimit(ctx, s.opts.FeedLimit)
}

// ComputeSnapshotWithLimit builds a snapshot whose activity feed holds at most
// feedLimit items. Only an animal fetch failure is fatal; any other failed set
// is treated as empty and reported in FailedSources.
func (s *Service) ComputeSnapshotWithLimit(ctx context.Context, feedLimit int) (*models.KpiSnapshot, error) {
	if feedLimit <= 0 {
		feedLimit = s.opts.FeedLimit
	}
	now := s.opts.Now()
	window := max(feedLimit, s.opts.RecentWindow)

	var d Dataset
	var failures sourceFailures

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		animals, err := s.source.Animals(gctx, repository.Query{})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAnimalsUnavailable, err)
		}
		d.Animals = animals
		return nil
	})
	g.Go(func() (err error) {
		d.Purchases, err = s.source.Purchases(gctx, repository.Latest(window))
		failures.record(repository.CollectionPurchases, err)
		return nil
	})
	g.Go(func() (err error) {
		d.Sales, err = s.source.Sales(gctx, repository.Query{NewestFirst: true})
		failures.record(repository.CollectionSales, err)
		return nil
	})
	g.Go(func() (err error) {
		d.SaleDetails, err = s.source.SaleDetails(gctx, repository.Query{})
		failures.record(repository.CollectionSaleDetails, err)
		return nil
	})
	g.Go(func() (err error) {
		d.HealthEvents, err = s.source.HealthEvents(gctx, repository.Latest(window))
		failures.record(repository.CollectionHealthEvents, err)
		return nil
	})
	g.Go(func() (err error) {
		d.Buyers, err = s.source.Buyers(gctx, repository.Query{})
		failures.record(repository.CollectionBuyers, err)
		return nil
	})
	g.Go(func() (err error) {
		d.Suppliers, err = s.source.Suppliers(gctx, repository.Query{})
		failures.record(repository.CollectionSuppliers, err)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.ObserveSnapshot(metrics.OutcomeFailed)
		s.logger.Error("snapshot aborted", zap.Error(err))
		return nil, err
	}

	failed := failures.names()
	for _, name := range failed {
		s.logger.Warn("source unavailable, treated as empty", zap.String("source", name), zap.Error(failures.errs[name]))
	}

	rec := Reconcile(d)
	herd := Classify(rec.Animals, now)

	snapshot := &models.KpiSnapshot{
		AnimalsInField:        herd.InField,
		AnimalsSold:           herd.Sold,
		AnimalsCritical:       herd.Critical,
		AvgFieldResidencyDays: herd.AvgResidencyDays,
		AvgPriceDifferential:  PriceDifferential(rec),
		CategoryDistribution:  herd.Distribution,
		RecentActivity:        MergeFeed(head(rec.Purchases, window), head(rec.Sales, window), head(rec.HealthEvents, window), feedLimit),
		RecentPurchases:       head(rec.Purchases, s.opts.RecentWindow),
		RecentSales:           head(rec.Sales, s.opts.RecentWindow),
		Partial:               len(failed) > 0,
		FailedSources:         failed,
		GeneratedAt:           now.UTC(),
	}

	if snapshot.Partial {
		s.metrics.ObserveSnapshot(metrics.OutcomePartial)
	} else {
		s.metrics.ObserveSnapshot(metrics.OutcomeComplete)
	}
	return snapshot, nil
}

// ComputeBuyerPricing reports weighted selling prices per category for one buyer.
func (s *Service) ComputeBuyerPricing(ctx context.Context, buyerID string) (*models.BuyerPricing, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return nil, ErrInvalidBuyer
	}

	var d Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		animals, err := s.source.Animals(gctx, repository.Query{})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAnimalsUnavailable, err)
		}
		d.Animals = animals
		return nil
	})
	g.Go(func() error {
		sales, err := s.source.Sales(gctx, repository.Query{}.Where(repository.FieldBuyerID, buyerID))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPricingUnavailable, err)
		}
		d.Sales = sales
		return nil
	})
	g.Go(func() error {
		details, err := s.source.SaleDetails(gctx, repository.Query{})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPricingUnavailable, err)
		}
		d.SaleDetails = details
		return nil
	})
	g.Go(func() error {
		buyers, err := s.source.Buyers(gctx, repository.Query{}.Where(repository.FieldID, buyerID))
		if err != nil {
			s.logger.Warn("buyer lookup failed, using placeholder", zap.String("buyer_id", buyerID), zap.Error(err))
			return nil
		}
		d.Buyers = buyers
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("buyer pricing aborted", zap.String("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}

	pricing := BuyerPricing(Reconcile(d), buyerID)
	return &pricing, nil
}

// sourceFailures collects the errors of the non-critical fetches.
type sourceFailures struct {
	mu   sync.Mutex
	errs map[string]error
}

func (f *sourceFailures) record(c repository.Collection, err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	f.errs[string(c)] = err
}

func (f *sourceFailures) names() []string {
	if len(f.errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.errs))
	for name := range f.errs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
