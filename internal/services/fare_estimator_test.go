package services

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridefare/internal/config"
	"ridefare/internal/domain/entities"
	"ridefare/pkg/utils"
)

// fixedSource replays a list of draws and then repeats the last one.
type fixedSource struct {
	draws []float64
	i     int
}

func (s *fixedSource) Float64() float64 {
	v := s.draws[len(s.draws)-1]
	if s.i < len(s.draws) {
		v = s.draws[s.i]
	}
	s.i++
	return v
}

func deterministicEstimator() *FareEstimator {
	pricing := config.NewDefaultConfig().Pricing
	pricing.Deterministic = true
	return NewFareEstimator(entities.DefaultCatalog(), utils.DefaultRateTable(), pricing, nil)
}

func quoteFor(t *testing.T, quotes []entities.FareQuote, id string) entities.FareQuote {
	t.Helper()
	for _, q := range quotes {
		if q.Provider.ID == id {
			return q
		}
	}
	t.Fatalf("no quote for %s", id)
	return entities.FareQuote{}
}

func TestFareEstimator_OneQuotePerProvider(t *testing.T) {
	e := NewFareEstimator(entities.DefaultCatalog(), utils.DefaultRateTable(), config.NewDefaultConfig().Pricing, nil)

	quotes := e.Estimate(8000, 1500)
	require.Len(t, quotes, len(entities.DefaultCatalog()))

	seen := map[string]bool{}
	for _, q := range quotes {
		assert.False(t, seen[q.Provider.ID], "duplicate quote for %s", q.Provider.ID)
		seen[q.Provider.ID] = true
	}
}

func TestFareEstimator_SortedByFare(t *testing.T) {
	pricing := config.NewDefaultConfig().Pricing
	e := NewFareEstimator(entities.DefaultCatalog(), utils.DefaultRateTable(), pricing, NewSeededSource(7))

	inputs := [][2]float64{{0, 0}, {500, 60}, {10000, 1200}, {42000, 5400}, {123456, 9999}}
	for i := 0; i < 50; i++ {
		for _, in := range inputs {
			quotes := e.Estimate(in[0], in[1])
			assert.True(t, sort.SliceIsSorted(quotes, func(a, b int) bool {
				return quotes[a].Fare < quotes[b].Fare
			}), "quotes not sorted for %v", in)
		}
	}
}

func TestFareEstimator_DeterministicValues(t *testing.T) {
	quotes := deterministicEstimator().Estimate(10000, 1200)

	tests := []struct {
		id   string
		fare int
		eta  int
	}{
		// 25 + 4*10 + 0.5*20, eta 20+3
		{id: "rapido", fare: 75, eta: 23},
		// 35 + 12*10 + 1*20, eta 20+5
		{id: "auto", fare: 175, eta: 25},
		// 40 + 14*10 + 2*20, eta 20+7
		{id: "namma-yatri", fare: 220, eta: 27},
		// 45 + 16*10 + 2*20
		{id: "ola", fare: 245, eta: 27},
		// 50 + 18*10 + 2*20
		{id: "uber", fare: 270, eta: 27},
	}

	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			q := quoteFor(t, quotes, tt.id)
			assert.Equal(t, tt.fare, q.Fare)
			assert.Equal(t, tt.eta, q.ETAMinutes)
			assert.Nil(t, q.Surge)
			assert.Equal(t, tt.id, quotes[i].Provider.ID, "sort order")
		})
	}
}

func TestFareEstimator_ZeroAndInvalidInput(t *testing.T) {
	e := deterministicEstimator()

	for _, in := range [][2]float64{{0, 0}, {-100, -60}, {math.NaN(), math.NaN()}} {
		quotes := e.Estimate(in[0], in[1])
		rapido := quoteFor(t, quotes, "rapido")
		assert.Equal(t, 25, rapido.Fare, "input %v", in)
		assert.Equal(t, 3, rapido.ETAMinutes, "input %v", in)
		assert.Equal(t, 50, quoteFor(t, quotes, "uber").Fare)
	}
}

func TestFareEstimator_SeededReproducible(t *testing.T) {
	pricing := config.NewDefaultConfig().Pricing
	a := NewFareEstimator(entities.DefaultCatalog(), utils.DefaultRateTable(), pricing, NewSeededSource(42))
	b := NewFareEstimator(entities.DefaultCatalog(), utils.DefaultRateTable(), pricing, NewSeededSource(42))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Estimate(15000, 1800), b.Estimate(15000, 1800))
	}
}

func TestFareEstimator_JitterBounds(t *testing.T) {
	pricing := config.NewDefaultConfig().Pricing
	e := NewFareEstimator(entities.DefaultCatalog(), utils.DefaultRateTable(), pricing, NewSeededSource(99))

	for i := 0; i < 200; i++ {
		q := quoteFor(t, e.Estimate(10000, 1200), "rapido")
		// raw 75 * [0.9, 1.1], raw 23 * [0.85, 1.15]
		assert.GreaterOrEqual(t, q.Fare, 67)
		assert.LessOrEqual(t, q.Fare, 83)
		assert.GreaterOrEqual(t, q.ETAMinutes, 19)
		assert.LessOrEqual(t, q.ETAMinutes, 27)
		if q.Surge != nil {
			assert.GreaterOrEqual(t, *q.Surge, 1.2)
			assert.Less(t, *q.Surge, 1.7)
		}
	}
}

func TestFareEstimator_DrawOrder(t *testing.T) {
	pricing := config.NewDefaultConfig().Pricing
	catalog := entities.Catalog{{ID: "rapido", VehicleClass: entities.VehicleTwoWheeler}}

	// fare jitter at the top of its range, eta jitter at the bottom, surge
	// roll above 0.7, surge value at the midpoint
	src := &fixedSource{draws: []float64{1, 0, 0.9, 0.5}}
	quotes := NewFareEstimator(catalog, utils.DefaultRateTable(), pricing, src).Estimate(10000, 1200)

	require.Len(t, quotes, 1)
	assert.Equal(t, 83, quotes[0].Fare)       // round(75 * 1.1)
	assert.Equal(t, 20, quotes[0].ETAMinutes) // round(23 * 0.85)
	require.NotNil(t, quotes[0].Surge)
	assert.InDelta(t, 1.45, *quotes[0].Surge, 1e-9)
}

func TestFareEstimator_SurgeDoesNotChangeFare(t *testing.T) {
	pricing := config.NewDefaultConfig().Pricing
	pricing.FareJitter = 0
	pricing.ETAJitter = 0
	pricing.SurgeProbability = 1
	catalog := entities.Catalog{{ID: "rapido", VehicleClass: entities.VehicleTwoWheeler}}

	quotes := NewFareEstimator(catalog, utils.DefaultRateTable(), pricing, NewSeededSource(1)).Estimate(10000, 1200)
	require.NotNil(t, quotes[0].Surge)
	assert.Equal(t, 75, quotes[0].Fare)
}

func TestFareEstimator_TiesKeepCatalogOrder(t *testing.T) {
	catalog := entities.Catalog{
		{ID: "first", VehicleClass: entities.VehicleFourWheeler},
		{ID: "second", VehicleClass: entities.VehicleFourWheeler},
		{ID: "cheap", VehicleClass: entities.VehicleTwoWheeler},
	}
	pricing := config.NewDefaultConfig().Pricing
	pricing.Deterministic = true

	quotes := NewFareEstimator(catalog, utils.DefaultRateTable(), pricing, nil).Estimate(5000, 600)
	ids := []string{quotes[0].Provider.ID, quotes[1].Provider.ID, quotes[2].Provider.ID}
	assert.Equal(t, []string{"cheap", "first", "second"}, ids)
}
