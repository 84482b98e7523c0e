package admin

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/nfrund/headstart/internal/reload"
)

// ReportFragment renders a reload report. It is swapped in by htmx after the
// reload button is pressed and embedded in the full page otherwise.
func ReportFragment(report *reload.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if report == nil {
			_, err := io.WriteString(w, `<section id="reload-report"><p>No reload has run yet.</p></section>`)
			return err
		}

		status := "ok"
		if !report.OK() {
			status = "failed"
		}
		if _, err := fmt.Fprintf(w,
			`<section id="reload-report" class="Report Report--%s"><h2>Last reload: %s</h2><p>%s &middot; %s &middot; %d callbacks in %s</p>`,
			status,
			templ.EscapeString(status),
			templ.EscapeString(report.Reason),
			templ.EscapeString(report.StartedAt.Format("2006-01-02 15:04:05")),
			report.Ran,
			templ.EscapeString(report.Duration.String()),
		); err != nil {
			return err
		}

		if len(report.Failures) > 0 {
			if _, err := io.WriteString(w, `<ul class="Report__failures">`); err != nil {
				return err
			}
			for _, f := range report.Failures {
				if _, err := fmt.Fprintf(w, `<li><strong>%s</strong>: %s</li>`,
					templ.EscapeString(f.Label), templ.EscapeString(f.Error)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</section>`)
		return err
	})
}
