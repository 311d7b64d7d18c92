package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"
	"github.com/adrianliechti/mistral-ocr/pkg/otel"
	"github.com/adrianliechti/mistral-ocr/pkg/projector"
	"github.com/adrianliechti/mistral-ocr/pkg/scanner"

	"github.com/google/uuid"
)

type Writer interface {
	Write(ctx context.Context, plan *projector.Plan) ([]string, error)
}

// Driver runs files through the OCR provider one at a time and writes the
// projected artifacts. A failing file never stops the batch.
type Driver struct {
	provider extractor.Provider
	writer   Writer

	model string
	runID string
}

type Option func(*Driver)

func WithModel(model string) Option {
	return func(d *Driver) {
		d.model = model
	}
}

func WithRunID(id string) Option {
	return func(d *Driver) {
		d.runID = id
	}
}

func New(provider extractor.Provider, writer Writer, options ...Option) *Driver {
	d := &Driver{
		provider: provider,
		writer:   writer,
	}

	for _, option := range options {
		option(d)
	}

	return d
}

// Run processes names, which are relative to dir, in order. The report has
// exactly one outcome per name.
func (d *Driver) Run(ctx context.Context, dir string, names []string) *Report {
	runID := d.runID

	if runID == "" {
		runID = uuid.New().String()
	}

	ctx = otel.WithRunID(ctx, runID)

	report := &Report{
		RunID:   runID,
		Started: time.Now(),

		Outcomes: make([]Outcome, 0, len(names)),
	}

	slog.Info("starting batch", "run", runID, "files", len(names))

	basenames := map[string]bool{}

	for _, name := range names {
		basename := strings.TrimSuffix(name, filepath.Ext(name))

		if basenames[strings.ToLower(basename)] {
			basename = name
		}

		basenames[strings.ToLower(basename)] = true

		var outcome Outcome

		if err := ctx.Err(); err != nil {
			outcome = Outcome{
				File:   name,
				Status: StatusFailed,
				Reason: err.Error(),
			}
		} else {
			outcome = d.process(ctx, dir, name, basename)
		}

		switch outcome.Status {
		case StatusSucceeded:
			slog.Info("processed file", "file", name, "pages", outcome.Pages, "images", outcome.Images, "duration", outcome.Duration)
		case StatusSkipped:
			slog.Warn("skipped file", "file", name, "reason", outcome.Reason)
		default:
			slog.Error("failed to process file", "file", name, "error", outcome.Reason)
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Finished = time.Now()

	return report
}

func (d *Driver) process(ctx context.Context, dir, name, basename string) Outcome {
	timestamp := time.Now()

	outcome := Outcome{
		File: name,
	}

	fail := func(err error) Outcome {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		outcome.Duration = time.Since(timestamp)

		return outcome
	}

	data, err := os.ReadFile(filepath.Join(dir, name))

	if err != nil {
		return fail(fmt.Errorf("read: %w", err))
	}

	file := extractor.File{
		Name: name,

		Content:     data,
		ContentType: scanner.ContentType(name),
	}

	slog.Debug("submitting file", "file", name, "size", len(data))

	doc, err := d.provider.Extract(ctx, file, &extractor.ExtractOptions{
		Model: d.model,
	})

	if errors.Is(err, extractor.ErrUnsupported) {
		outcome.Status = StatusSkipped
		outcome.Reason = err.Error()
		outcome.Duration = time.Since(timestamp)

		return outcome
	}

	if err != nil {
		return fail(err)
	}

	plan, err := projector.Project(doc, basename)

	if err != nil {
		return fail(err)
	}

	for _, s := range plan.Skipped {
		slog.Warn("image not saved", "file", name, "page", s.Page, "image", s.ID, "reason", s.Reason)
	}

	written, err := d.writer.Write(ctx, plan)

	outcome.Artifacts = written

	if err != nil {
		return fail(err)
	}

	outcome.Status = StatusSucceeded
	outcome.Pages = len(doc.Pages)
	outcome.Images = len(plan.Images)
	outcome.SkippedImages = len(plan.Skipped)
	outcome.Duration = time.Since(timestamp)

	return outcome
}
