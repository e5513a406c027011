package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-periodnet/internal/store"
	"github.com/cwbudde/algo-periodnet/period"
	"github.com/cwbudde/algo-periodnet/profile"
	"github.com/cwbudde/algo-periodnet/recommend"
	"github.com/cwbudde/algo-periodnet/temporal"
)

type modelOptions struct {
	configID   string
	periods    []int
	adaptive   bool
	task       string
	dModel     int
	dFF        int
	numKernels int
	topK       int
	layers     int
	dropout    float64
	seed       int64
}

func (o *modelOptions) bind(cmd *cobra.Command) {
	def := temporal.DefaultTopology(1, 1, 1)
	cmd.Flags().StringVar(&o.configID, "period-config", "", "catalog configuration ID (A, B or C)")
	cmd.Flags().IntSliceVar(&o.periods, "periods", nil, "explicit fixed period list")
	cmd.Flags().BoolVar(&o.adaptive, "adaptive", false, "select periods from the spectrum of every batch")
	cmd.Flags().StringVar(&o.task, "task", def.Task.String(), "classification or anomaly")
	cmd.Flags().IntVar(&o.dModel, "d-model", def.DModel, "embedding width")
	cmd.Flags().IntVar(&o.dFF, "d-ff", def.DFF, "inception hidden width")
	cmd.Flags().IntVar(&o.numKernels, "num-kernels", def.NumKernels, "kernels per inception stack")
	cmd.Flags().IntVar(&o.topK, "top-k", def.TopK, "periods processed per block")
	cmd.Flags().IntVar(&o.layers, "layers", def.Layers, "number of temporal blocks")
	cmd.Flags().Float64Var(&o.dropout, "dropout", def.Dropout, "dropout rate")
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "weight initialization seed")
}

func (o *modelOptions) apply(cmd *cobra.Command, a *app) {
	m := a.fileCfg.Model
	applyStringConfig(cmd, "period-config", &o.configID, m.Config)
	applyIntSliceConfig(cmd, "periods", &o.periods, m.Periods)
	applyBoolConfig(cmd, "adaptive", &o.adaptive, m.Adaptive)
	applyStringConfig(cmd, "task", &o.task, m.Task)
	applyIntConfig(cmd, "d-model", &o.dModel, m.DModel)
	applyIntConfig(cmd, "d-ff", &o.dFF, m.DFF)
	applyIntConfig(cmd, "num-kernels", &o.numKernels, m.NumKernels)
	applyIntConfig(cmd, "top-k", &o.topK, m.TopK)
	applyIntConfig(cmd, "layers", &o.layers, m.Layers)
	applyFloatConfig(cmd, "dropout", &o.dropout, m.Dropout)
	applyInt64Config(cmd, "seed", &o.seed, m.Seed)
}

// source picks the period source: adaptive, then an explicit list, then a
// catalog entry, then the default cascade.
func (o *modelOptions) source() (period.Source, error) {
	switch {
	case o.adaptive:
		return period.Adaptive(), nil
	case len(o.periods) > 0:
		return period.Fixed(o.periods...), nil
	case o.configID != "":
		cfg, ok := recommend.Lookup(o.configID)
		if !ok {
			return period.Source{}, fmt.Errorf("unknown period configuration %q", o.configID)
		}
		return cfg.Source(), nil
	default:
		return period.Default(), nil
	}
}

func (o *modelOptions) topology(seqLen, channels, classes int) (temporal.Topology, error) {
	src, err := o.source()
	if err != nil {
		return temporal.Topology{}, err
	}
	task, err := temporal.ParseTask(o.task)
	if err != nil {
		return temporal.Topology{}, err
	}
	topo := temporal.DefaultTopology(seqLen, channels, classes)
	topo.Task = task
	topo.DModel = o.dModel
	topo.DFF = o.dFF
	topo.NumKernels = o.numKernels
	topo.TopK = o.topK
	topo.Layers = o.layers
	topo.Dropout = o.dropout
	topo.Periods = src
	return topo, nil
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the period configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeCatalog(cmd.OutOrStdout())
		},
	}
}

func writeCatalog(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRANGE\tPERIODS\tUSE CASE")
	for _, c := range recommend.Catalog() {
		fmt.Fprintf(tw, "%s\t%s\t%.1f-%.1f Hz\t%v\t%s\n", c.ID, c.Name, c.FreqRange.Min, c.FreqRange.Max, c.Periods, c.UseCase)
	}
	return tw.Flush()
}

type topologyOptions struct {
	model    modelOptions
	seqLen   int
	channels int
	classes  int
}

func newTopologyCmd(a *app) *cobra.Command {
	var opts topologyOptions
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Build a model and print its topology, parameter count and fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.model.apply(cmd, a)
			topo, err := opts.model.topology(opts.seqLen, opts.channels, opts.classes)
			if err != nil {
				return err
			}
			m, err := temporal.New(topo, temporal.WithSeed(opts.model.seed))
			if err != nil {
				return err
			}
			return writeTopology(cmd.OutOrStdout(), m)
		},
	}
	opts.model.bind(cmd)
	cmd.Flags().IntVar(&opts.seqLen, "seq-len", 100, "timesteps per window")
	cmd.Flags().IntVar(&opts.channels, "channels", 3, "sensor channels")
	cmd.Flags().IntVar(&opts.classes, "classes", 2, "number of classes")
	return cmd
}

func writeTopology(w io.Writer, m *temporal.Model) error {
	topo := m.Topology()
	exportable := "yes"
	if err := m.CheckExportable(); err != nil {
		exportable = "no (" + err.Error() + ")"
	}
	periods := "selected per batch"
	if p := m.Periods(); p != nil {
		periods = fmt.Sprint(p)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "input\t(batch, %d, %d)\n", topo.SeqLen, topo.Channels)
	fmt.Fprintf(tw, "output\t(batch, %d) %s\n", topo.OutputWidth(), topo.Task)
	fmt.Fprintf(tw, "period source\t%s\n", topo.Periods)
	fmt.Fprintf(tw, "periods\t%s, top_k %d\n", periods, topo.TopK)
	fmt.Fprintf(tw, "blocks\t%d x (d_model %d, d_ff %d, kernels %d)\n", topo.Layers, topo.DModel, topo.DFF, topo.NumKernels)
	fmt.Fprintf(tw, "parameters\t%d\n", m.ParamCount())
	fmt.Fprintf(tw, "exportable\t%s\n", exportable)
	fmt.Fprintf(tw, "fingerprint\t%s\n", topo.Fingerprint())
	return tw.Flush()
}

type inferOptions struct {
	model  modelOptions
	labels []string
	batch  int
}

func newInferCmd(a *app) *cobra.Command {
	var opts inferOptions
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run a seeded model over the stored windows and print class scores",
		Long: "The model is initialized from --seed, not trained; the output exercises " +
			"the full pipeline with the chosen topology.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.model.apply(cmd, a)
			return runInfer(cmd, a, opts)
		},
	}
	opts.model.bind(cmd)
	cmd.Flags().StringSliceVar(&opts.labels, "label", nil, "restrict to these labels")
	cmd.Flags().IntVar(&opts.batch, "batch", 32, "windows per forward pass")
	return cmd
}

func runInfer(cmd *cobra.Command, a *app, opts inferOptions) error {
	if opts.batch <= 0 {
		return fmt.Errorf("batch must be > 0")
	}
	st, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	classes, err := st.Labels(cmd.Context())
	if err != nil {
		return err
	}
	records, err := st.ListWindows(cmd.Context(), store.Filter{Labels: opts.labels})
	if err != nil {
		return err
	}
	if len(records) == 0 || len(classes) == 0 {
		return fmt.Errorf("no windows stored; run periodctl ingest first: %w", profile.ErrNoWindows)
	}

	first := records[0].Window
	topo, err := opts.model.topology(first.Len(), first.Channels(), len(classes))
	if err != nil {
		return err
	}
	m, err := temporal.New(topo, temporal.WithSeed(opts.model.seed))
	if err != nil {
		return err
	}
	slog.Info("model built", "topology", topo.Fingerprint()[:12], "parameters", m.ParamCount(), "windows", len(records))

	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Label
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tLABEL\tPREDICTED\t%s\n", strings.Join(names, "\t"))
	for start := 0; start < len(records); start += opts.batch {
		chunk := records[start:min(start+opts.batch, len(records))]
		windows := make([][][]float64, len(chunk))
		for i, rec := range chunk {
			windows[i] = rec.Window.Samples
		}
		x, err := temporal.Batch(windows)
		if err != nil {
			return fmt.Errorf("window %d: %w", chunk[0].ID, err)
		}
		logits, err := m.Forward(x)
		if err != nil {
			return err
		}
		if topo.Task == temporal.TaskAnomaly {
			for i, rec := range chunk {
				fmt.Fprintf(tw, "%d\t%s\tscore %.4f\n", rec.ID, rec.Window.Label, logits.At(i, 0))
			}
			continue
		}
		probs, err := temporal.Softmax(logits)
		if err != nil {
			return err
		}
		for i, rec := range chunk {
			best := 0
			cells := make([]string, len(names))
			for k := range names {
				p := probs.At(i, k)
				if p > probs.At(i, best) {
					best = k
				}
				cells[k] = fmt.Sprintf("%.3f", p)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rec.ID, rec.Window.Label, names[best], strings.Join(cells, "\t"))
		}
	}
	return tw.Flush()
}
