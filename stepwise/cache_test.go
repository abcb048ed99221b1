package stepwise

import (
	"math/rand"
	"testing"

	"github.com/YuminosukeSato/stepwise/core/dataset"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenModelCache(t *testing.T) {
	silenceWarnings(t)
	ds := ensembleData(40, 9)
	cache := NewCache(2)

	first, err := GenModel(ds, "Y", nil, 2, 0, WithCache(cache), WithLogger(log.Nop()))
	require.NoError(t, err)
	first.Coefficients["X1"] = 1000
	first.Terms[0] = "mutated"

	second, err := GenModel(ds, "Y", nil, 2, 0, WithCache(cache), WithLogger(log.Nop()))
	require.NoError(t, err)
	assert.Equal(t, "X1", second.Terms[0])
	assert.NotEqual(t, 1000.0, second.Coefficients["X1"])

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheEviction(t *testing.T) {
	cache := NewCache(2)
	m := &FittedModel{Terms: []string{"A"}}
	cache.Put(1, m)
	cache.Put(2, m)
	cache.Put(3, m)

	_, ok := cache.Get(1)
	assert.False(t, ok)
	_, ok = cache.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestFingerprint(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Column{Name: "A", Values: []float64{1, 2, 3}},
		dataset.Column{Name: "Y", Values: []float64{2, 4, 7}},
	)
	base := Fingerprint(ds, "Y", nil, 2, 0)
	assert.Equal(t, base, Fingerprint(ds, "Y", nil, 2, 0))

	changed := dataset.MustNew(
		dataset.Column{Name: "A", Values: []float64{1, 2, 3}},
		dataset.Column{Name: "Y", Values: []float64{2, 4, 7.5}},
	)
	assert.NotEqual(t, base, Fingerprint(changed, "Y", nil, 2, 0))
	assert.NotEqual(t, base, Fingerprint(ds, "A", nil, 2, 0))
	assert.NotEqual(t, base, Fingerprint(ds, "Y", []string{"A"}, 2, 0))
	assert.NotEqual(t, base, Fingerprint(ds, "Y", nil, 3, 0))
	assert.NotEqual(t, base, Fingerprint(ds, "Y", nil, 2, 2))
	assert.NotEqual(t, base, Fingerprint(ds, "Y", nil, 2, 0, InteractionTerm("A*B", []string{"A", "B"})))
	assert.NotEqual(t,
		Fingerprint(ds, "Y", nil, 2, 0, InteractionTerm("A*B", []string{"A", "B"})),
		Fingerprint(ds, "Y", nil, 2, 0, InteractionTerm("A*B", []string{"A"})),
	)
}

func TestCacheSeparatesInteractionTerms(t *testing.T) {
	silenceWarnings(t)
	rng := rand.New(rand.NewSource(5))
	n := 40
	a, b, ab, y := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = rng.NormFloat64()
		b[i] = rng.NormFloat64()
		ab[i] = a[i] * b[i]
		y[i] = 4*ab[i] + 0.5*a[i] + 0.2*rng.NormFloat64()
	}
	ds := dataset.MustNew(
		dataset.Column{Name: "A", Values: a},
		dataset.Column{Name: "B", Values: b},
		dataset.Column{Name: "A*B", Values: ab},
		dataset.Column{Name: "Y", Values: y},
	)
	cache := NewCache(4)

	_, err := NewSelector(WithCache(cache), WithLogger(log.Nop())).Run(ds, "Y", nil, 3)
	require.NoError(t, err)

	withInteractions := []Option{WithInteractions(interactionSpec("A*B", "A", "B")), WithLogger(log.Nop())}
	cached, err := NewSelector(append(withInteractions, WithCache(cache))...).Run(ds, "Y", nil, 3)
	require.NoError(t, err)
	fresh, err := NewSelector(withInteractions...).Run(ds, "Y", nil, 3)
	require.NoError(t, err)

	assert.Equal(t, fresh.Terms, cached.Terms)
	assert.Equal(t, []string{"A", "B", "A*B"}, cached.Steps[0].Added)
	hits, misses := cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(2), misses)
	assert.Equal(t, 2, cache.Len())
}

func TestRunRejectsNegativeDegreeBeforeCache(t *testing.T) {
	cache := NewCache(2)
	_, err := GenModel(ensembleData(20, 3), "Y", nil, 2, -1, WithCache(cache), WithLogger(log.Nop()))
	require.Error(t, err)

	var cfgErr *errors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "degree", cfgErr.Param)
	hits, misses := cache.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
