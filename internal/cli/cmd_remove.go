package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sipsociety/sipcms/internal/store"
)

func newRemoveCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove resources",
	}
	cmd.AddCommand(newRemoveBlockCmd(getApp, getOutput))
	return cmd
}

func newRemoveBlockCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	return &cobra.Command{
		Use:   "block <id>",
		Short: "Remove a block from the local snapshot",
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
			if err := app.store.DeleteBlock(cmd.Context(), id); err != nil {
				return fmt.Errorf("remove block: %w", err)
			}
			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), RemoveBlockResponse{RemovedBlockID: id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed block %d\n", id)
			return nil
		},
	}
}
