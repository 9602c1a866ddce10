package diffusion

import "testing"

func benchField(n int) Field {
	c := make(Field, n)
	for i := 0; i < n/2; i++ {
		c[i] = 500
	}
	return c
}

func BenchmarkStep600(b *testing.B) {
	c := benchField(600)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c, _ = Step(c, 100, 0.00125, 0.5)
	}
}

func BenchmarkIntegrator600(b *testing.B) {
	it, _ := NewIntegrator(benchField(600), 100, 0.00125, 0.5, Dirichlet)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it.step()
	}
}

func BenchmarkIntegrator100k(b *testing.B) {
	it, _ := NewIntegrator(benchField(100_000), 1, 0.5, 1, Dirichlet)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it.step()
	}
}

func BenchmarkIntegratorPeriodic600(b *testing.B) {
	it, _ := NewIntegrator(benchField(600), 100, 0.00125, 0.5, Periodic)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it.step()
	}
}
