package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sipsociety/sipcms/internal/store"
)

func newUpdateCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update stored blocks",
	}
	cmd.AddCommand(newUpdateBlocksCmd(getApp, getOutput))
	return cmd
}

func newUpdateBlocksCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var applyClean bool
	var all bool

	cmd := &cobra.Command{
		Use:   "blocks [id] [id...]",
		Short: "Replace stored HTML with its sanitized form",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			if !applyClean {
				return fmt.Errorf("%w: nothing to update; pass --apply-clean", store.ErrInvalidInput)
			}
			if all == (len(args) > 0) {
				return fmt.Errorf("%w: pass block ids or --all, not both", store.ErrInvalidInput)
			}

			resp := ApplyCleanResponse{All: all}
			if all {
				resp.Updated, err = app.store.ApplyCleanAll(cmd.Context())
			} else {
				resp.IDs, err = parseIDs(args)
				if err != nil {
					return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
				}
				resp.Updated, err = app.store.ApplyClean(cmd.Context(), resp.IDs)
			}
			if err != nil {
				return fmt.Errorf("apply clean: %w", err)
			}
			app.log.Info("applied sanitized html", zap.Int64("updated", resp.Updated), zap.Bool("all", all))

			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sanitized %d block(s)\n", resp.Updated)
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyClean, "apply-clean", false, "Overwrite stored HTML with the sanitized HTML")
	cmd.Flags().BoolVar(&all, "all", false, "Apply to every unclean block")
	return cmd
}
