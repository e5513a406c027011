package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-periodnet/profile"
)

const defaultSampleRate = 50.0

var errEmptyRecording = errors.New("recording has no data rows")

type ingestOptions struct {
	label      string
	seqLen     int
	stride     int
	sampleRate float64
}

func newIngestCmd(a *app) *cobra.Command {
	var opts ingestOptions
	cmd := &cobra.Command{
		Use:   "ingest --label LABEL --seq-len N FILE.csv...",
		Short: "Slice CSV recordings into labeled windows and store them",
		Long: "Each CSV row is one timestep and each column one sensor channel. " +
			"A non-numeric first row is treated as a header.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFloatConfig(cmd, "sample-rate", &opts.sampleRate, a.fileCfg.Profile.SampleRate)
			return runIngest(cmd, a, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.label, "label", "", "class label of the recordings")
	cmd.Flags().IntVar(&opts.seqLen, "seq-len", 100, "timesteps per window")
	cmd.Flags().IntVar(&opts.stride, "stride", 0, "timesteps between window starts (default: seq-len)")
	cmd.Flags().Float64Var(&opts.sampleRate, "sample-rate", defaultSampleRate, "sample rate in Hz")
	if err := cmd.MarkFlagRequired("label"); err != nil {
		panic(err)
	}
	return cmd
}

func runIngest(cmd *cobra.Command, a *app, opts ingestOptions, files []string) error {
	if strings.TrimSpace(opts.label) == "" {
		return fmt.Errorf("label must not be empty")
	}
	if opts.sampleRate <= 0 {
		return fmt.Errorf("sample-rate must be > 0")
	}
	stride := opts.stride
	if stride == 0 {
		stride = opts.seqLen
	}

	st, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	total := 0
	for _, path := range files {
		rec, err := readCSVFile(path)
		if err != nil {
			return err
		}
		windows, err := profile.Slice(rec, opts.seqLen, stride, opts.label)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(windows) == 0 {
			slog.Warn("recording shorter than one window", "file", path, "rows", len(rec), "seq_len", opts.seqLen)
			continue
		}
		n, err := st.InsertWindows(cmd.Context(), filepath.Base(path), opts.sampleRate, windows)
		if err != nil {
			return fmt.Errorf("%s: failed to store windows: %w", path, err)
		}
		slog.Info("windows ingested", "file", path, "label", opts.label, "windows", n, "rows", len(rec))
		total += n
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %d windows for %q\n", total, opts.label)
	return err
}

func readCSVFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	rec, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// readCSV parses rows of numeric columns. Blank lines and lines starting
// with '#' are skipped. A first row that does not parse is taken as a header.
func readCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var out [][]float64
	line := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		row, perr := parseRow(fields)
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", line, perr)
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, errEmptyRecording
	}
	return out, nil
}

func parseRow(fields []string) ([]float64, error) {
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		row[i] = v
	}
	return row, nil
}
