package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sipsociety/sipcms/internal/richtext"
)

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeBlocksTable(out io.Writer, blocks []Block, summaryLen int, wide bool) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if wide {
		fmt.Fprintln(tw, "ID\tPAGE\tKEY\tFIELD\tCLEAN\tUPDATED\tIMPORTED\tFINDINGS\tTEXT")
		for _, b := range blocks {
			fmt.Fprintf(
				tw,
				"%d\t%s\t%s\t%s\t%t\t%s\t%s\t%s\t%s\n",
				b.ID,
				b.Page,
				compactText(b.Key, 24),
				compactText(b.Field, 16),
				b.Clean,
				formatDate(b.UpdatedAt),
				humanAgo(&b.ImportedAt),
				compactText(fallback(summarizeFindings(b.Findings), "-"), 48),
				compactText(oneLine(b.PlainText), summaryLen),
			)
		}
	} else {
		fmt.Fprintln(tw, "ID\tPAGE\tKEY\tFIELD\tCLEAN\tTEXT")
		for _, b := range blocks {
			fmt.Fprintf(
				tw,
				"%d\t%s\t%s\t%s\t%t\t%s\n",
				b.ID,
				b.Page,
				compactText(b.Key, 24),
				compactText(b.Field, 16),
				b.Clean,
				compactText(oneLine(b.PlainText), summaryLen),
			)
		}
	}
	_ = tw.Flush()
}

func writeStatsTable(out io.Writer, st Stats) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintf(tw, "blocks\t%d\n", st.Blocks)
	fmt.Fprintf(tw, "clean\t%d\n", st.Clean)
	fmt.Fprintf(tw, "unclean\t%d\n", st.Unclean)
	fmt.Fprintf(tw, "imports\t%d\n", st.Imports)
	pages := make([]string, 0, len(st.ByPage))
	for page := range st.ByPage {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	for _, page := range pages {
		fmt.Fprintf(tw, "page:%s\t%d\n", page, st.ByPage[page])
	}
	_ = tw.Flush()
}

func writeImportReportTable(out io.Writer, rep ImportReport) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK_ID\tPAGE\tKEY\tFIELD\tINSERTED\tCLEAN\tERROR")
	for _, r := range rep.Results {
		fmt.Fprintf(
			tw,
			"%d\t%s\t%s\t%s\t%t\t%t\t%s\n",
			r.BlockID,
			r.Page,
			compactText(r.Key, 24),
			compactText(r.Field, 16),
			r.Inserted,
			r.Clean,
			compactText(oneLine(r.Error), 70),
		)
	}
	_ = tw.Flush()
}

func writeImportsTable(out io.Writer, runs []ImportRun, wide bool) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if wide {
		fmt.Fprintln(tw, "RUN_ID\tSOURCE\tSTARTED\tDURATION\tTOTAL\tINSERTED\tUPDATED\tUNCLEAN\tFAILED")
	} else {
		fmt.Fprintln(tw, "RUN_ID\tSOURCE\tSTARTED\tTOTAL\tUNCLEAN\tFAILED")
	}
	for _, r := range runs {
		started := r.StartedAt
		if wide {
			fmt.Fprintf(
				tw,
				"%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
				r.ID,
				compactText(r.Source, 40),
				humanAgo(&started),
				r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond),
				r.Total,
				r.Inserted,
				r.Updated,
				r.Unclean,
				r.Failed,
			)
			continue
		}
		fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%d\t%d\t%d\n",
			shortRunID(r.ID),
			compactText(r.Source, 32),
			humanAgo(&started),
			r.Total,
			r.Unclean,
			r.Failed,
		)
	}
	_ = tw.Flush()
}

func writeAuditTable(out io.Writer, resp AuditResponse, wide bool) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBLOCK\tFINDINGS\tDETAIL")
	for _, item := range resp.Blocks {
		detail := fallback(summarizeFindings(item.Findings), "markup normalized")
		if !wide {
			detail = compactText(detail, 70)
		}
		fmt.Fprintf(
			tw,
			"%d\t%s\t%d\t%s\n",
			item.ID,
			item.Page+"/"+item.Key+"/"+item.Field,
			item.Findings.Count(),
			detail,
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "%d of %d blocks need sanitizing\n", resp.Unclean, resp.Checked)
}

// summarizeFindings renders findings on one line, empty when there are none.
func summarizeFindings(f richtext.Findings) string {
	parts := make([]string, 0, 6)
	add := func(label string, values []string) {
		if len(values) > 0 {
			parts = append(parts, label+": "+strings.Join(values, ", "))
		}
	}
	add("tags", f.Tags)
	add("attrs", f.Attrs)
	add("styles", f.Styles)
	add("hrefs", f.Hrefs)
	if f.Markup > 0 {
		parts = append(parts, fmt.Sprintf("comments: %d", f.Markup))
	}
	if f.Unbalanced > 0 {
		parts = append(parts, fmt.Sprintf("stray closes: %d", f.Unbalanced))
	}
	return strings.Join(parts, "; ")
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(v string) string {
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(v)
}
