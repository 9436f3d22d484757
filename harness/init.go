package harness

import "math/rand"

// Initializer is the single producer of randomized inputs for a run. Both
// the correctness and the performance paths draw from it, so both measure
// the same class of input. Reseed restarts the sequence; a host generation
// always reseeds first, making every regeneration within a run
// byte-identical and replayable from the seed.
type Initializer struct {
	seed int64
	rng  *rand.Rand
}

// NewInitializer creates an initializer with the given seed.
func NewInitializer(seed int64) *Initializer {
	ini := &Initializer{seed: seed}
	ini.Reseed()
	return ini
}

// Reseed restarts the pseudo-random sequence from the configured seed.
func (ini *Initializer) Reseed() {
	ini.rng = rand.New(rand.NewSource(ini.seed))
}

// Fill populates the whole footprint of v, stride gaps included, with
// small random integer values. Integers in [1,10] keep intermediate
// results well away from cancellation and overflow, so correct kernels
// stay within the size-scaled epsilon bound.
func Fill[T Float](ini *Initializer, v *HostVector[T]) {
	data := v.Data()
	for i := range data {
		data[i] = T(ini.rng.Intn(10) + 1)
	}
}
