package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sipsociety/sipcms/internal/store"
)

func newGetCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get blocks, stats, and import runs",
	}

	cmd.AddCommand(newGetBlocksCmd(getApp, getOutput))
	cmd.AddCommand(newGetBlockCmd(getApp, getOutput))
	cmd.AddCommand(newGetStatsCmd(getApp, getOutput))
	cmd.AddCommand(newGetImportsCmd(getApp, getOutput))
	return cmd
}

func newGetBlocksCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var status string
	var page string
	var limit int

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List content blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			blocks, err := app.store.ListBlocks(cmd.Context(), BlockListOptions{
				Page:   page,
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("list blocks: %w", err)
			}

			out := cmd.OutOrStdout()
			switch getOutput() {
			case OutputJSON:
				return writeJSON(out, blocks)
			case OutputWide:
				writeBlocksTable(out, blocks, app.cfg.SummaryLength, true)
			default:
				writeBlocksTable(out, blocks, app.cfg.SummaryLength, false)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Block status: all, clean, unclean")
	cmd.Flags().StringVar(&page, "page", "", "Filter by page")
	cmd.Flags().IntVar(&limit, "limit", 50, "Result limit")
	return cmd
}

func newGetBlockCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block <id>",
		Short: "Get one block with its rendered content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
			}
			b, err := app.store.GetBlock(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get block: %w", err)
			}

			out := cmd.OutOrStdout()
			if getOutput() == OutputJSON {
				return writeJSON(out, b)
			}

			fmt.Fprintf(out, "# %s\n", blockPath(b))
			fmt.Fprintf(out, "id: %d | clean: %t | updated: %s | imported: %s\n", b.ID, b.Clean, formatDate(b.UpdatedAt), humanAgo(&b.ImportedAt))
			if !b.Clean {
				fmt.Fprintf(out, "removed: %s\n", fallback(summarizeFindings(b.Findings), "markup normalized"))
			}
			fmt.Fprintln(out)

			content := strings.TrimSpace(b.ContentMD)
			if content == "" {
				content = fallback(b.PlainText, "(empty)")
			}
			fmt.Fprintln(out, content)
			if getOutput() == OutputWide {
				fmt.Fprintf(out, "\nraw:   %s\nclean: %s\n", b.RawHTML, b.CleanHTML)
			}
			return nil
		},
	}
	return cmd
}

func newGetStatsCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Get aggregate stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			stats, err := app.store.GetStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}
			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			writeStatsTable(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	return cmd
}

func newGetImportsCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List recent import runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			runs, err := app.store.ListImports(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list imports: %w", err)
			}
			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			writeImportsTable(cmd.OutOrStdout(), runs, getOutput() == OutputWide)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Result limit")
	return cmd
}
