// Package output prints registry listings as tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nfrund/headstart/internal/hooks"
	"github.com/nfrund/headstart/internal/models"
	"github.com/nfrund/headstart/internal/reload"
)

// Formats accepted by the list commands.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// CheckFormat rejects unknown output formats.
func CheckFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, use %q or %q", format, FormatTable, FormatJSON)
	}
}

// Topics prints hook topics.
func Topics(w io.Writer, format string, topics []hooks.TopicInfo) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			Topics []hooks.TopicInfo `json:"topics"`
			Count  int               `json:"count"`
		}{topics, len(topics)})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tHANDLERS\tOWNERS")
	fmt.Fprintln(tw, "-----\t--------\t------")
	if len(topics) == 0 {
		fmt.Fprintln(tw, "No topics found")
	}
	for _, t := range topics {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Topic, t.Handlers, dash(strings.Join(t.Owners, ", ")))
	}
	return tw.Flush()
}

// Keys prints transformer keys.
func Keys(w io.Writer, format string, keys []models.KeyInfo) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			Transforms []models.KeyInfo `json:"transforms"`
			Count      int              `json:"count"`
		}{keys, len(keys)})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tVARIANT\tOWNER")
	fmt.Fprintln(tw, "----\t-------\t-----")
	if len(keys) == 0 {
		fmt.Fprintln(tw, "No transforms found")
	}
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k.Type, k.Variant, dash(k.Owner))
	}
	return tw.Flush()
}

// Report prints a reload report.
func Report(w io.Writer, format string, report *reload.Report) error {
	if format == FormatJSON {
		return writeJSON(w, report)
	}

	status := "ok"
	if !report.OK() {
		status = "failed"
	}
	fmt.Fprintf(w, "Reload %s: %s (%d callbacks in %s)\n", report.ID, status, report.Ran, report.Duration.Round(time.Millisecond))
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Label, f.Error)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
