package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sipsociety/sipcms/internal/ingest"
	"github.com/sipsociety/sipcms/internal/richtext"
	"github.com/sipsociety/sipcms/internal/store"
)

func newSanitizeCmd(getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sanitize [file|-]",
		Short: "Sanitize rich text HTML from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, findings := richtext.Analyze(in)

			switch getOutput() {
			case OutputJSON:
				return writeJSON(cmd.OutOrStdout(), SanitizeResponse{
					Input:    in,
					Output:   out,
					Changed:  out != in,
					Findings: findings,
				})
			case OutputWide:
				fmt.Fprintln(cmd.OutOrStdout(), out)
				if !findings.Empty() {
					fmt.Fprintf(cmd.ErrOrStderr(), "removed: %s\n", summarizeFindings(findings))
				}
			default:
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	return cmd
}

func newRenderCmd(getOutput func() OutputFormat) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Sanitize rich text and render it as markdown or plain text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "markdown" && format != "text" {
				return fmt.Errorf("%w: invalid format %q (expected markdown|text)", store.ErrInvalidInput, format)
			}
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var out string
			if format == "text" {
				out = richtext.PlainText(in)
			} else {
				out = ingest.NewRenderer().HTMLToMarkdown(richtext.Sanitize(in))
			}

			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), RenderResponse{Format: format, Output: out})
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "Render format: markdown, text")
	return cmd
}
