package harness

// Epsilon returns the machine epsilon of the element type.
func Epsilon[T Float]() float64 {
	var t T
	switch any(t).(type) {
	case float32:
		return 0x1p-23
	default:
		return 0x1p-52
	}
}

// WithinTolerance reports whether an error scalar stays inside the
// size-scaled bound n times machine epsilon. Thresholding is the caller's
// decision; the evaluator itself only produces the scalar.
//
// The bound does not account for numerical reproducibility across
// devices; it matches the established policy rather than a stricter one.
func WithinTolerance[T Float](err float64, n int) bool {
	if n < 1 {
		n = 1
	}
	return err <= float64(n)*Epsilon[T]()
}
