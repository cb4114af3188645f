package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/statboard/saved"
)

func newSavedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved graphs",
	}
	cmd.AddCommand(newSavedListCmd(a), newSavedRmCmd(a), newSavedExportCmd(a))
	return cmd
}

func newSavedListCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.saved()
			if err != nil {
				return err
			}
			graphs, err := db.ListCategory(cmd.Context(), category)
			if err != nil {
				return err
			}
			if graphs == nil {
				graphs = []saved.Graph{}
			}
			return a.render(cmd.OutOrStdout(), graphs, func() { renderSaved(cmd.OutOrStdout(), graphs) })
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only graphs of this category")
	return cmd
}

func newSavedRmCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove saved graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("name a graph id or pass --all")
			}
			db, err := a.saved()
			if err != nil {
				return err
			}
			if all {
				return db.Clear(cmd.Context())
			}
			for _, id := range args {
				if err := db.Remove(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Remove every saved graph")
	return cmd
}

func newSavedExportCmd(a *app) *cobra.Command {
	var out, category string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved graphs as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.saved()
			if err != nil {
				return err
			}
			graphs, err := db.ListCategory(cmd.Context(), category)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return saved.ExportCSV(w, graphs)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&category, "category", "", "Only graphs of this category")
	return cmd
}
