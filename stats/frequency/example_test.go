package frequency_test

import (
	"fmt"

	frequencystats "github.com/cwbudde/algo-periodnet/stats/frequency"
)

func ExampleDescribe() {
	freqs := frequencystats.Frequencies(8, 8)
	power := []float64{0, 1, 2, 1, 0}
	d := frequencystats.Describe(freqs, power, frequencystats.DefaultActiveFraction)
	fmt.Printf("dominant=%.0f centroid=%.0f active=%.0f..%.0f\n", d.Dominant, d.Centroid, d.ActiveLow, d.ActiveHigh)

	// Output:
	// dominant=2 centroid=2 active=1..3
}
