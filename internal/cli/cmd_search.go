package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSearchCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var page string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search block text with full-text search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			blocks, err := app.store.SearchBlocks(cmd.Context(), SearchOptions{
				Query: args[0],
				Page:  page,
				Limit: limit,
			})
			if err != nil {
				return fmt.Errorf("search blocks: %w", err)
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
	cmd.Flags().StringVar(&page, "page", "", "Filter by page")
	cmd.Flags().IntVar(&limit, "limit", 50, "Result limit")
	return cmd
}

func newAuditCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var page string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List blocks whose stored HTML still needs sanitizing",
		Long:  "List blocks whose stored HTML differs from its sanitized form. Exits with status 4 when any are found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			blocks, err := app.store.AllBlocks(cmd.Context(), BlockListOptions{Page: page})
			if err != nil {
				return fmt.Errorf("list blocks: %w", err)
			}

			resp := AuditResponse{Checked: len(blocks), Blocks: make([]AuditItem, 0)}
			for _, b := range blocks {
				if b.Clean {
					continue
				}
				resp.Blocks = append(resp.Blocks, AuditItem{
					ID:       b.ID,
					Page:     b.Page,
					Key:      b.Key,
					Field:    b.Field,
					Findings: b.Findings,
				})
			}
			resp.Unclean = len(resp.Blocks)

			out := cmd.OutOrStdout()
			if getOutput() == OutputJSON {
				if err := writeJSON(out, resp); err != nil {
					return err
				}
			} else if resp.Unclean == 0 {
				fmt.Fprintf(out, "All %d blocks are clean\n", resp.Checked)
			} else {
				writeAuditTable(out, resp, getOutput() == OutputWide)
			}

			app.log.Info("audit finished", zap.Int("checked", resp.Checked), zap.Int("unclean", resp.Unclean))
			if resp.Unclean > 0 {
				return fmt.Errorf("%w: %d of %d block(s) need sanitizing", ErrUncleanContent, resp.Unclean, resp.Checked)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "Only audit blocks of this page")
	return cmd
}
