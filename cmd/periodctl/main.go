// Command periodctl collects labeled sensor recordings, profiles their
// frequency content and chooses the fixed period list for the temporal
// model.
//
// Usage:
//
//	periodctl <command> [flags]
//
// Examples:
//
//	periodctl ingest --label walk --seq-len 100 walk.csv
//	periodctl profile --sample-rate 50 --detrend
//	periodctl recommend
//	periodctl delete --label idle
//	periodctl catalog
//	periodctl topology --period-config B --seq-len 100 --channels 3 --classes 4
//	periodctl infer --period-config B --label walk
//	periodctl env
//
// Settings are read from $XDG_CONFIG_HOME/periodnet/config.toml; flags given
// on the command line take precedence over the file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-periodnet/internal/config"
	"github.com/cwbudde/algo-periodnet/internal/store"
)

type app struct {
	configPath string
	dbPath     string
	verbose    bool

	fileCfg config.FileConfig
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "periodctl",
		Short:         "Frequency profiling and period selection for sensor classification",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd.ErrOrStderr(), a.verbose)
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.fileCfg = cfg
			slog.Debug("config loaded", "path", a.configPath)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config-file", config.DefaultConfigPath(), "TOML config file")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", config.DefaultDBPath(), "window database path")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newIngestCmd(a))
	rootCmd.AddCommand(newProfileCmd(a))
	rootCmd.AddCommand(newRecommendCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newTopologyCmd(a))
	rootCmd.AddCommand(newInferCmd(a))
	rootCmd.AddCommand(newEnvCmd())

	return rootCmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// openStore opens the database named by --db, or by [store] path in the
// config file when the flag was not given.
func (a *app) openStore(cmd *cobra.Command) (*store.Store, error) {
	path := a.dbPath
	applyStringConfig(cmd, "db", &path, a.fileCfg.Store.Path)
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	slog.Debug("store opened", "path", path)
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Warn("failed to close db", "error", err)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntSliceConfig(cmd *cobra.Command, name string, target *[]int, value []int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]int(nil), value...)
}
