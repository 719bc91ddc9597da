package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sipsociety/sipcms/internal/model"
	"github.com/sipsociety/sipcms/internal/snapshot"
)

func newImportCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|url|->",
		Short: "Import a content export into the local snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}

			source := args[0]
			var blocks []model.ExportBlock
			if source == "-" {
				source = "stdin"
				blocks, err = snapshot.Decode(cmd.InOrStdin())
			} else {
				blocks, err = snapshot.Read(source)
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			stderr := cmd.ErrOrStderr()
			rep, err := app.importer.ImportWithProgress(cmd.Context(), source, blocks, func(done, total int, result ImportResult) {
				label := result.Page + "/" + result.Key + "/" + result.Field
				switch {
				case result.Error != "":
					fmt.Fprintf(stderr, "[%d/%d] %s -> error: %s\n", done, total, label, result.Error)
				case !result.Clean:
					fmt.Fprintf(stderr, "[%d/%d] %s -> needs sanitizing (%d finding(s))\n", done, total, label, result.Findings.Count())
				}
			})
			if err != nil {
				return fmt.Errorf("import blocks: %w", err)
			}
			for _, warning := range rep.Warnings {
				fmt.Fprintf(stderr, "warning: %s\n", warning)
			}

			out := cmd.OutOrStdout()
			if getOutput() == OutputJSON {
				return writeJSON(out, rep)
			}
			fmt.Fprintf(out, "Imported %d blocks from %s (run %s)\n", rep.Total, rep.Source, rep.RunID)
			fmt.Fprintf(out, "Inserted: %d, Updated: %d, Unclean: %d, Failed: %d\n", rep.Inserted, rep.Updated, rep.Unclean, rep.Failed)
			if getOutput() == OutputWide {
				writeImportReportTable(out, rep)
			}
			return nil
		},
	}
	return cmd
}

func newExportCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var clean bool
	var page string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored blocks as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			blocks, err := app.store.AllBlocks(cmd.Context(), BlockListOptions{Page: page})
			if err != nil {
				return fmt.Errorf("list blocks: %w", err)
			}
			return snapshot.Write(cmd.OutOrStdout(), snapshot.FromBlocks(blocks), clean)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "Export sanitized HTML instead of the stored HTML")
	cmd.Flags().StringVar(&page, "page", "", "Only export blocks of this page")
	return cmd
}
