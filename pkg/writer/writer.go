package writer

import (
	"context"
	"fmt"

	"github.com/adrianliechti/mistral-ocr/pkg/projector"
	"github.com/adrianliechti/mistral-ocr/pkg/render"
	"github.com/adrianliechti/mistral-ocr/pkg/storage"
)

type Writer struct {
	sink storage.Sink

	html bool
}

type Option func(*Writer)

// WithHTML additionally writes <basename>.html next to the markdown.
func WithHTML(enabled bool) Option {
	return func(w *Writer) {
		w.html = enabled
	}
}

func New(sink storage.Sink, options ...Option) *Writer {
	w := &Writer{
		sink: sink,
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Write persists a plan and returns the keys written, in order. Images left
// over from an earlier run are removed first; the image directory is only
// recreated when the plan carries images.
func (w *Writer) Write(ctx context.Context, plan *projector.Plan) ([]string, error) {
	if err := w.sink.Delete(ctx, plan.ImageDir()); err != nil {
		return nil, fmt.Errorf("clean %s: %w", plan.ImageDir(), err)
	}

	artifacts := plan.Artifacts()

	if w.html {
		data, err := render.HTML(plan.Basename, plan.Markdown)

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", plan.Basename, err)
		}

		artifacts = append(artifacts, projector.Artifact{
			Path:        plan.Basename + ".html",
			Content:     data,
			ContentType: "text/html; charset=utf-8",
		})
	}

	var written []string

	for _, a := range artifacts {
		if err := w.sink.Put(ctx, a.Path, a.Content, a.ContentType); err != nil {
			return written, fmt.Errorf("write %s: %w", a.Path, err)
		}

		written = append(written, a.Path)
	}

	return written, nil
}
