package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "delete --label LABEL",
		Short: "Remove every stored window of a class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(label) == "" {
				return fmt.Errorf("label must not be empty")
			}
			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore(st)

			n, err := st.DeleteLabel(cmd.Context(), label)
			if err != nil {
				return fmt.Errorf("failed to delete %q: %w", label, err)
			}
			slog.Info("windows deleted", "label", label, "windows", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d windows for %q\n", n, label)
			return err
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "class label to remove")
	if err := cmd.MarkFlagRequired("label"); err != nil {
		panic(err)
	}
	return cmd
}
