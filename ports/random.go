package ports

// RandomSource supplies the randomness behind sample selection.
// Production sources must be cryptographically secure; tests and audit
// re-performance pin the stream with a seed. *math/rand/v2.Rand satisfies it.
type RandomSource interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64

	// IntN returns a uniform value in [0, n); panics if n <= 0
	IntN(n int) int
}
