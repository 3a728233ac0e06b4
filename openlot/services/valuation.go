package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	valuationCacheSize  = 10000
	valuationLookback   = 180 * 24 * time.Hour
	valuationCacheTTL   = 1 * time.Hour
	maxConcurrentValues = 5

	// MinComparables is the smallest sample that produces an estimate.
	MinComparables = 3
)

// Valuation is a market estimate derived from recent sold auctions of
// comparable properties (same kind, same city).
type Valuation struct {
	PropertyID  int64     `json:"property_id"`
	Estimate    int64     `json:"estimate"`
	Low         int64     `json:"low"`
	High        int64     `json:"high"`
	SampleSize  int       `json:"sample_size"`
	GeneratedAt time.Time `json:"generated_at"`
}

type cachedValuation struct {
	valuation *Valuation
	timestamp time.Time
}

// ValuationService estimates property values from comparable sales.
// Estimates for the same kind and city are cached; batch estimation is
// bounded by a weighted semaphore so a portfolio request cannot flood
// the database.
type ValuationService struct {
	auctions repositories.AuctionRepository
	cache    *lru.Cache
	sem      *semaphore.Weighted
}

func NewValuationService(auctions repositories.AuctionRepository) *ValuationService {
	cache, _ := lru.New(valuationCacheSize)
	return &ValuationService{
		auctions: auctions,
		cache:    cache,
		sem:      semaphore.NewWeighted(maxConcurrentValues),
	}
}

var ErrNotEnoughComparables = fmt.Errorf("not enough comparable sales for an estimate")

// Estimate values one property against sold auctions of the same kind in
// the same city over the lookback window.
func (s *ValuationService) Estimate(ctx context.Context, property *models.Property) (*Valuation, error) {
	cacheKey := fmt.Sprintf("%s:%s", property.Kind, property.City)

	if cached, ok := s.cache.Get(cacheKey); ok {
		entry := cached.(cachedValuation)
		if time.Since(entry.timestamp) < valuationCacheTTL {
			v := *entry.valuation
			v.PropertyID = property.ID
			return &v, nil
		}
		s.cache.Remove(cacheKey)
	}

	since := time.Now().Add(-valuationLookback)
	comparables, err := s.auctions.GetSoldComparables(ctx, property.Kind, property.City, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparables: %w", err)
	}

	if len(comparables) < MinComparables {
		return nil, ErrNotEnoughComparables
	}

	prices := make([]int64, len(comparables))
	for i, a := range comparables {
		prices[i] = a.CurrentPrice
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	valuation := &Valuation{
		PropertyID:  property.ID,
		Estimate:    median(prices),
		Low:         prices[0],
		High:        prices[len(prices)-1],
		SampleSize:  len(prices),
		GeneratedAt: time.Now(),
	}

	s.cache.Add(cacheKey, cachedValuation{valuation: valuation, timestamp: valuation.GeneratedAt})
	return valuation, nil
}

// EstimateMany values a batch of properties concurrently. Properties
// without enough comparables are skipped, not failed.
func (s *ValuationService) EstimateMany(ctx context.Context, properties []*models.Property) ([]*Valuation, error) {
	results := make([]*Valuation, len(properties))

	g, gctx := errgroup.WithContext(ctx)
	for i, property := range properties {
		i, property := i, property
		g.Go(func() error {
			if err := s.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer s.sem.Release(1)

			valuation, err := s.Estimate(gctx, property)
			if err != nil {
				if err == ErrNotEnoughComparables {
					return nil
				}
				return err
			}
			results[i] = valuation
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	valuations := make([]*Valuation, 0, len(results))
	for _, v := range results {
		if v != nil {
			valuations = append(valuations, v)
		}
	}
	return valuations, nil
}

func median(sorted []int64) int64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
