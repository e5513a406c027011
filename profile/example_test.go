package profile_test

import (
	"fmt"

	"github.com/cwbudde/algo-periodnet/internal/testutil"
	"github.com/cwbudde/algo-periodnet/profile"
)

func ExampleProfile() {
	windows := []profile.Window{
		{Samples: testutil.SineWindow(1, 50, 100, 3), Label: "walk"},
		{Samples: testutil.SineWindow(1, 50, 100, 3), Label: "walk"},
	}
	stats, err := profile.Profile(windows, 50)
	if err != nil {
		panic(err)
	}
	s := stats["walk"]
	fmt.Printf("dominant=%.1f Hz active=%.1f..%.1f low=%.0f%%\n",
		s.DominantFrequency, s.ActiveRange.Min, s.ActiveRange.Max, s.Energy[profile.Low])

	// Output:
	// dominant=1.0 Hz active=1.0..1.0 low=100%
}
