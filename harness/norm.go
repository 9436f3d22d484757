package harness

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NormType selects the norm reduced over the compared region.
type NormType byte

const (
	NormOne NormType = 'O'
	NormInf NormType = 'I'
	NormFro NormType = 'F'
)

// NormError returns the distance between a reference region and a
// computed region, relative to the magnitude of the reference. The
// regions are m-by-n, column-major with leading dimension lda; a strided
// vector is the m=1 case with lda equal to its stride.
//
// An empty region compares trivially equal.
func NormError[T Float](nt NormType, m, n, lda int, gold, comp []T) float64 {
	if m <= 0 || n <= 0 {
		return 0
	}

	diff := mat.NewDense(m, n, nil)
	ref := mat.NewDense(m, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			g := float64(gold[j*lda+i])
			diff.Set(i, j, g-float64(comp[j*lda+i]))
			ref.Set(i, j, g)
		}
	}

	var ord float64
	switch nt {
	case NormInf:
		ord = math.Inf(1)
	case NormFro:
		ord = 2
	default:
		ord = 1
	}

	num := mat.Norm(diff, ord)
	den := mat.Norm(ref, ord)
	if den == 0 {
		return num
	}
	return num / den
}
