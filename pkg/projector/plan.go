package projector

import (
	"path"
)

// Artifact is one file to be written, addressed relative to the output
// root with forward slashes.
type Artifact struct {
	Path string

	Content     []byte
	ContentType string
}

// Skipped records an embedded image that produced no file.
type Skipped struct {
	Page int
	ID   string

	Reason string
}

// Plan is the complete set of outputs derived from one OCR result.
type Plan struct {
	Basename string

	Markdown string
	Raw      []byte

	Images  []Artifact
	Skipped []Skipped
}

func (p *Plan) MarkdownPath() string {
	return p.Basename + ".md"
}

func (p *Plan) RawPath() string {
	return p.Basename + "_full.json"
}

func (p *Plan) ImageDir() string {
	return p.Basename + "_images"
}

func (p *Plan) HasImages() bool {
	return len(p.Images) > 0
}

// Artifacts returns every file of the plan: markdown first, then the raw
// response, then the images in encountered order.
func (p *Plan) Artifacts() []Artifact {
	result := []Artifact{
		{
			Path:        p.MarkdownPath(),
			Content:     []byte(p.Markdown),
			ContentType: "text/markdown; charset=utf-8",
		},
		{
			Path:        p.RawPath(),
			Content:     p.Raw,
			ContentType: "application/json",
		},
	}

	return append(result, p.Images...)
}

func (p *Plan) imagePath(name string) string {
	return path.Join(p.ImageDir(), name)
}
