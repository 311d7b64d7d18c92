package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is the result of processing a single input file.
type Outcome struct {
	File   string `json:"file"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`

	Pages         int `json:"pages,omitempty"`
	Images        int `json:"images,omitempty"`
	SkippedImages int `json:"skipped_images,omitempty"`

	Artifacts []string `json:"artifacts,omitempty"`

	Duration time.Duration `json:"-"`
}

type Report struct {
	RunID string `json:"run_id"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	Outcomes []Outcome `json:"files"`
}

func (r *Report) Count(status Status) int {
	var n int

	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}

	return n
}

func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Print writes one line per file followed by the totals.
func (r *Report) Print(w io.Writer) error {
	if len(r.Outcomes) == 0 {
		_, err := fmt.Fprintln(w, "No PDF or image files found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSucceeded:
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", o.File, o.Status, summary(o))
		default:
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", o.File, o.Status, o.Reason)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nProcessing complete!\nSucceeded: %d\nFailed: %d\nSkipped: %d\n",
		r.Count(StatusSucceeded),
		r.Count(StatusFailed),
		r.Count(StatusSkipped),
	)

	return err
}

func summary(o Outcome) string {
	s := plural(o.Pages, "page") + ", " + plural(o.Images, "image")

	if o.SkippedImages > 0 {
		s += " (" + plural(o.SkippedImages, "image") + " not saved)"
	}

	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}

	return fmt.Sprintf("%d %ss", n, word)
}
