package hostref

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectorGenKnownValues(t *testing.T) {
	ref := NewReflectorGen[float64]()

	alpha := []float64{3}
	x := []float64{4}
	tau := []float64{0}
	ref.Larfg(2, alpha, x, 1, tau)

	assert.InDelta(t, -5.0, alpha[0], 1e-14)
	assert.InDelta(t, 1.6, tau[0], 1e-14)
	assert.InDelta(t, 0.5, x[0], 1e-14)
}

func TestReflectorGenOrderOne(t *testing.T) {
	ref := NewReflectorGen[float64]()

	alpha := []float64{7}
	tau := []float64{-1}
	ref.Larfg(1, alpha, nil, 1, tau)

	assert.Equal(t, 0.0, tau[0])
	assert.Equal(t, 7.0, alpha[0])
}

func TestReflectorGenSinglePrecision(t *testing.T) {
	ref := NewReflectorGen[float32]()

	alpha := []float32{3}
	x := []float32{4}
	tau := []float32{0}
	ref.Larfg(2, alpha, x, 1, tau)

	assert.InDelta(t, -5.0, float64(alpha[0]), 1e-6)
	assert.InDelta(t, 1.6, float64(tau[0]), 1e-6)
	assert.InDelta(t, 0.5, float64(x[0]), 1e-6)
}

func TestReflectorGenStrided(t *testing.T) {
	ref := NewReflectorGen[float64]()

	// three logical elements at stride 2; gaps must survive untouched
	alpha := []float64{1}
	x := []float64{2, -99, 3, -99, 4}
	tau := []float64{0}
	ref.Larfg(4, alpha, x, 2, tau)

	norm := math.Sqrt(1 + 4 + 9 + 16)
	require.InDelta(t, -norm, alpha[0], 1e-14)
	assert.Equal(t, -99.0, x[1])
	assert.Equal(t, -99.0, x[3])

	// reflector identity: tau*(beta-alpha) relationship
	assert.InDelta(t, (alpha[0]-1.0)/alpha[0], tau[0], 1e-14)
}
