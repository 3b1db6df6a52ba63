// Package report renders run results as JSON or as a human-readable
// text report.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/constants"
	"github.com/Benjamin-Hogan/restload/internal/engine"
	"github.com/Benjamin-Hogan/restload/internal/task"
)

// savedReport is the on-disk JSON shape: the aggregate plus a timestamp.
type savedReport struct {
	ExecutedAt time.Time      `json:"executed_at"`
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Results    []*task.Result `json:"results"`
}

// WriteJSON writes the aggregate as indented JSON.
func WriteJSON(w io.Writer, rr *engine.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rr)
}

// SaveJSON writes the aggregate to path, wrapped with an executed_at
// timestamp.
func SaveJSON(path string, rr *engine.RunResult) error {
	data, err := json.MarshalIndent(savedReport{
		ExecutedAt: time.Now().UTC(),
		Total:      rr.Total,
		Successful: rr.Successful,
		Results:    rr.Results,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644) // #nosec G306 -- report output is meant to be readable
}

// WriteText renders one block per task with a final success count.
func WriteText(w io.Writer, rr *engine.RunResult) error {
	banner := strings.Repeat("=", constants.ReportBannerWidth)
	sep := strings.Repeat("-", constants.ReportBannerWidth)

	if _, err := fmt.Fprintln(w, banner); err != nil {
		return err
	}
	fmt.Fprintln(w, " restload run report")
	fmt.Fprintf(w, " executed_at: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintln(w, banner)

	for i, res := range rr.Results {
		if i > 0 {
			fmt.Fprintln(w, sep)
		}
		writeResult(w, i, res)
	}

	fmt.Fprintln(w, banner)
	_, err := fmt.Fprintf(w, " %d/%d tasks successful (%s)\n", rr.Successful, rr.Total, rr.State)
	return err
}

// SaveText writes the text report to path.
func SaveText(path string, rr *engine.RunResult) error {
	var b strings.Builder
	if err := WriteText(&b, rr); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644) // #nosec G306 -- report output is meant to be readable
}

func writeResult(w io.Writer, i int, res *task.Result) {
	t := res.Task
	fmt.Fprintf(w, "task %d: %s %s (config: %s)\n", i, t.CanonicalMethod(), t.Path, t.ConfigName)

	if res.Response != nil {
		if res.Response.Duration > 0 {
			fmt.Fprintf(w, "  status: %d (%s)\n", res.Response.StatusCode, res.Response.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "  status: %d\n", res.Response.StatusCode)
		}
		if body := strings.TrimSpace(res.Response.Body); body != "" {
			fmt.Fprintf(w, "  body: %s\n", truncate(body, constants.ReportBodyTruncate))
		}
	}
	if res.Error != nil {
		fmt.Fprintf(w, "  error: %s: %s\n", res.Error.Kind, res.Error.Message)
		if res.Error.Field != "" {
			fmt.Fprintf(w, "  field: %s\n", res.Error.Field)
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, "  warnings:")
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, "    - %s (%s): %s\n", warn.Var, warn.Path, warn.Message)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... [truncated]"
}
