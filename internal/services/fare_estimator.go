package services

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"ridefare/internal/config"
	"ridefare/internal/domain/entities"
	"ridefare/pkg/utils"
)

// RandomSource supplies uniform draws in [0, 1). It must be safe for
// concurrent use because many trip sessions quote at the same time.
type RandomSource interface {
	Float64() float64
}

// lockedSource guards a *rand.Rand, which is not goroutine-safe on its own.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewSeededSource returns a RandomSource whose draws are reproducible for a
// given seed.
func NewSeededSource(seed int64) RandomSource {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// FareEstimator turns a route's distance and duration into one quote per
// catalog provider.
//
// Quotes are simulated, not fetched: each provider's rate card gives a raw
// fare and ETA, which are then jittered and may carry an informational surge
// multiplier. The catalog and rate table are injected and never modified.
type FareEstimator struct {
	catalog entities.Catalog
	rates   utils.RateTable
	pricing config.PricingConfig
	random  RandomSource
}

// NewFareEstimator builds an estimator. A nil random source falls back to a
// seeded source when pricing.Seed is set, or a time-seeded one otherwise.
func NewFareEstimator(catalog entities.Catalog, rates utils.RateTable, pricing config.PricingConfig, random RandomSource) *FareEstimator {
	if random == nil {
		seed := pricing.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		random = NewSeededSource(seed)
	}
	return &FareEstimator{
		catalog: catalog,
		rates:   rates,
		pricing: pricing,
		random:  random,
	}
}

// Catalog returns the providers this estimator quotes.
func (e *FareEstimator) Catalog() entities.Catalog {
	return e.catalog
}

// Estimate returns one quote per provider, sorted by fare ascending. Ties
// keep catalog order. Negative or NaN inputs count as zero.
//
// Random draws happen in a fixed order per provider (fare jitter, ETA
// jitter, surge roll, surge value) so a seeded source reproduces the same
// quotes.
func (e *FareEstimator) Estimate(distanceMeters, durationSeconds float64) []entities.FareQuote {
	km := utils.MetersToKm(clampNonNegative(distanceMeters))
	mins := utils.SecondsToMinutes(clampNonNegative(durationSeconds))

	quotes := make([]entities.FareQuote, 0, len(e.catalog))
	for _, provider := range e.catalog {
		card := e.rates.CardFor(provider)
		fare := card.RawFare(km, mins)
		eta := card.RawETA(mins)

		quote := entities.FareQuote{Provider: provider}
		if !e.pricing.Deterministic {
			fare *= e.jitter(e.pricing.FareJitter)
			eta *= e.jitter(e.pricing.ETAJitter)
			quote.Surge = e.surge()
		}
		quote.Fare = int(math.Round(fare))
		quote.ETAMinutes = int(math.Round(eta))
		quotes = append(quotes, quote)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Fare < quotes[j].Fare
	})
	return quotes
}

// jitter returns a multiplier uniform in [1-spread, 1+spread).
func (e *FareEstimator) jitter(spread float64) float64 {
	return 1 + (e.random.Float64()-0.5)*2*spread
}

// surge attaches a multiplier with the configured probability. It is shown
// to the user but does not change the fare.
func (e *FareEstimator) surge() *float64 {
	if e.random.Float64() <= 1-e.pricing.SurgeProbability {
		return nil
	}
	v := e.pricing.SurgeMin + e.random.Float64()*(e.pricing.SurgeMax-e.pricing.SurgeMin)
	return &v
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
