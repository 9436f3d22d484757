// Package hostref provides the trusted host-side implementations used as
// oracles by the verification harness. Implementations are assumed
// numerically correct; the harness only compares against them and never
// judges them.
package hostref

import (
	lapackimpl "gonum.org/v1/gonum/lapack/gonum"
)

// Float constrains the element types the reference routines cover.
type Float interface {
	~float32 | ~float64
}

// ReflectorGen is the host reference for elementary-reflector generation
// over one element type. Larfg overwrites alpha with beta and x with the
// reflector vector, and stores the scalar factor in tau. alpha and tau
// are one-element slices; x holds n-1 logical elements at stride incx.
type ReflectorGen[T Float] interface {
	Larfg(n int, alpha []T, x []T, incx int, tau []T)
}

// NewReflectorGen returns the reference implementation for T.
func NewReflectorGen[T Float]() ReflectorGen[T] {
	var t T
	switch any(t).(type) {
	case float32:
		return any(reflector32{}).(ReflectorGen[T])
	default:
		return any(reflector64{}).(ReflectorGen[T])
	}
}

// reflector64 delegates to gonum's native LAPACK Dlarfg.
type reflector64 struct{}

func (reflector64) Larfg(n int, alpha []float64, x []float64, incx int, tau []float64) {
	if n <= 1 {
		tau[0] = 0
		return
	}
	var impl lapackimpl.Implementation
	beta, t := impl.Dlarfg(n, alpha[0], x, incx)
	alpha[0] = beta
	tau[0] = t
}

// reflector32 promotes to float64, runs Dlarfg, and rounds back. gonum
// ships no single-precision LAPACK; the promoted result is at least as
// accurate as a native single-precision routine would be.
type reflector32 struct{}

func (reflector32) Larfg(n int, alpha []float32, x []float32, incx int, tau []float32) {
	if n <= 1 {
		tau[0] = 0
		return
	}
	wide := make([]float64, len(x))
	for i, v := range x {
		wide[i] = float64(v)
	}
	var impl lapackimpl.Implementation
	beta, t := impl.Dlarfg(n, float64(alpha[0]), wide, incx)
	for i, v := range wide {
		x[i] = float32(v)
	}
	alpha[0] = float32(beta)
	tau[0] = float32(t)
}
