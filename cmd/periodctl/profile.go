package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-periodnet/dsp/window"
	"github.com/cwbudde/algo-periodnet/internal/store"
	"github.com/cwbudde/algo-periodnet/profile"
	"github.com/cwbudde/algo-periodnet/recommend"
	frequencystats "github.com/cwbudde/algo-periodnet/stats/frequency"
)

type profileOptions struct {
	sampleRate float64
	threshold  float64
	detrend    bool
	window     string
	labels     []string
	source     string
}

func (o *profileOptions) bind(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.sampleRate, "sample-rate", 0, "sample rate in Hz (default: rate stored with the windows)")
	cmd.Flags().Float64Var(&o.threshold, "threshold", frequencystats.DefaultActiveFraction, "active-range threshold as a fraction of the peak power")
	cmd.Flags().BoolVar(&o.detrend, "detrend", false, "remove each channel's mean before the transform")
	cmd.Flags().StringVar(&o.window, "window", "rectangular", "taper applied before the transform (rectangular, hann, hamming, blackman, blackman-harris)")
	cmd.Flags().StringSliceVar(&o.labels, "label", nil, "restrict to these labels")
	cmd.Flags().StringVar(&o.source, "source", "", "restrict to windows ingested from this file name")
}

func (o *profileOptions) apply(cmd *cobra.Command, a *app) {
	applyFloatConfig(cmd, "sample-rate", &o.sampleRate, a.fileCfg.Profile.SampleRate)
	applyFloatConfig(cmd, "threshold", &o.threshold, a.fileCfg.Profile.Threshold)
	applyBoolConfig(cmd, "detrend", &o.detrend, a.fileCfg.Profile.Detrend)
	applyStringConfig(cmd, "window", &o.window, a.fileCfg.Profile.Window)
}

func newProfileCmd(a *app) *cobra.Command {
	var opts profileOptions
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print per-class frequency statistics of the stored windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.apply(cmd, a)
			stats, err := profileStore(cmd, a, opts)
			if err != nil {
				return err
			}
			return writeProfileTable(cmd.OutOrStdout(), stats)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	var opts profileOptions
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Profile the stored windows and recommend a period configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.apply(cmd, a)
			stats, err := profileStore(cmd, a, opts)
			if err != nil {
				return err
			}
			rec, err := recommend.Recommend(stats)
			if err != nil {
				return err
			}
			slog.Info("recommendation", "config", rec.Config.ID, "confidence", rec.Confidence)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderRecommendation(rec))
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

func profileStore(cmd *cobra.Command, a *app, opts profileOptions) (map[string]profile.FrequencyStats, error) {
	taper, err := window.Parse(opts.window)
	if err != nil {
		return nil, err
	}

	st, err := a.openStore(cmd)
	if err != nil {
		return nil, err
	}
	defer closeStore(st)

	windows, storedRate, err := loadWindows(cmd.Context(), st, store.Filter{Labels: opts.labels, Source: opts.source})
	if err != nil {
		return nil, err
	}
	rate := opts.sampleRate
	if rate == 0 {
		rate = storedRate
	}
	slog.Debug("profiling", "windows", len(windows), "sample_rate", rate, "detrend", opts.detrend, "window", taper)

	return profile.Profile(windows, rate,
		profile.WithThreshold(opts.threshold),
		profile.WithDetrend(opts.detrend),
		profile.WithWindow(taper))
}

// loadWindows reads windows from st and returns them with their common
// sample rate. Windows recorded at different rates cannot be profiled
// together.
func loadWindows(ctx context.Context, st *store.Store, f store.Filter) ([]profile.Window, float64, error) {
	records, err := st.ListWindows(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load windows: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("no windows stored; run periodctl ingest first: %w", profile.ErrNoWindows)
	}

	rate := records[0].SampleRate
	windows := make([]profile.Window, len(records))
	for i, rec := range records {
		if rec.SampleRate != rate {
			return nil, 0, fmt.Errorf("windows %d and %d were recorded at %v Hz and %v Hz",
				records[0].ID, rec.ID, rate, rec.SampleRate)
		}
		windows[i] = rec.Window
	}
	return windows, rate, nil
}

func sortedLabels(stats map[string]profile.FrequencyStats) []string {
	labels := make([]string, 0, len(stats))
	for l := range stats {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func writeProfileTable(w io.Writer, stats map[string]profile.FrequencyStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "LABEL\tWINDOWS\tDOMINANT\tACTIVE\tCENTROID\tBANDWIDTH")
	for _, b := range profile.Bands {
		fmt.Fprintf(tw, "\t%s", b.Name)
	}
	fmt.Fprintln(tw)

	for _, label := range sortedLabels(stats) {
		s := stats[label]
		fmt.Fprintf(tw, "%s\t%d\t%.2f Hz\t%.2f-%.2f Hz\t%.2f Hz\t%.2f Hz",
			label, s.SampleCount, s.DominantFrequency, s.ActiveRange.Min, s.ActiveRange.Max, s.Centroid, s.Bandwidth)
		for _, pct := range s.Energy {
			fmt.Fprintf(tw, "\t%.1f%%", pct)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
