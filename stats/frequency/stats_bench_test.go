package frequency

import "testing"

func BenchmarkDescribe(b *testing.B) {
	freqs := Frequencies(1024, 100)
	power := make([]float64, len(freqs))
	for i := range power {
		power[i] = float64((i*37)%101) + 1
	}

	b.ResetTimer()
	for range b.N {
		_ = Describe(freqs, power, DefaultActiveFraction)
	}
}
