package projector_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"
	"github.com/adrianliechti/mistral-ocr/pkg/projector"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var raw = []byte(`{"pages":[]}`)

func inline(data string) extractor.Payload {
	return extractor.InlineData{ContentType: "image/png", Data: []byte(data)}
}

func imageDestinations(t *testing.T, markdown string) []string {
	t.Helper()

	source := []byte(markdown)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var result []string

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if image, ok := n.(*ast.Image); ok && entering {
			result = append(result, string(image.Destination))
		}

		return ast.WalkContinue, nil
	})

	return result
}

func TestProjectPageOrder(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 2, Markdown: "C"},
			{Index: 0, Markdown: "A"},
			{Index: 1, Markdown: "B"},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Equal(t, "A\n\nB\n\nC\n", plan.Markdown)
	require.False(t, plan.HasImages())
	require.Empty(t, plan.Images)
}

func TestProjectKeepsRepeatedContent(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "same"},
			{Index: 1, Markdown: "same"},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(plan.Markdown, "same"))
}

func TestProjectRewritesPlaceholder(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{
				Index:    0,
				Markdown: "Figure:\n\n![img-1]\n\nsee ![img-1] again",
				Images: []extractor.Image{
					{ID: "img-1", Format: "png", Payload: inline("png-bytes")},
				},
			},
		},
	}

	plan, err := projector.Project(doc, "X")
	require.NoError(t, err)

	require.True(t, plan.HasImages())
	require.Len(t, plan.Images, 1)
	require.Equal(t, "X_images/img-1.png", plan.Images[0].Path)
	require.Equal(t, []byte("png-bytes"), plan.Images[0].Content)

	require.NotContains(t, plan.Markdown, "![img-1]\n")
	require.Equal(t, 2, strings.Count(plan.Markdown, "![img-1](X_images/img-1.png)"))

	for _, dest := range imageDestinations(t, plan.Markdown) {
		require.True(t, strings.HasSuffix(dest, "img-1.png"), dest)
	}
}

func TestProjectMistralImageLinks(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{
				Index:    0,
				Markdown: "# Title\n\n![img-0.jpeg](img-0.jpeg)\n\n![other](other.png)",
				Images: []extractor.Image{
					{ID: "img-0.jpeg", Payload: extractor.InlineData{ContentType: "image/jpeg", Data: []byte("j")}},
				},
			},
		},
	}

	plan, err := projector.Project(doc, "my scan")
	require.NoError(t, err)

	require.Equal(t, "my scan_images/img-0.jpeg", plan.Images[0].Path)
	require.Equal(t, []string{"my%20scan_images/img-0.jpeg", "other.png"}, imageDestinations(t, plan.Markdown))
}

func TestProjectSkipsUndecodableImages(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{
				Index:    0,
				Markdown: "![img-0](img-0) ![img-1](img-1) ![img-2](img-2)",
				Images: []extractor.Image{
					{ID: "img-0", Payload: extractor.Reference{URL: "https://example.com/img-0.png"}},
					{ID: "img-1", Payload: extractor.Malformed{Raw: "??", Err: errors.New("invalid base64 payload")}},
					{ID: "img-2", Format: "gif", Payload: inline("gif")},
				},
			},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Len(t, plan.Images, 1)
	require.Equal(t, "doc_images/img-2.gif", plan.Images[0].Path)

	require.Len(t, plan.Skipped, 2)
	require.Equal(t, "img-0", plan.Skipped[0].ID)
	require.Equal(t, "img-1", plan.Skipped[1].ID)

	require.Contains(t, plan.Markdown, "![img-0](img-0)")
	require.Contains(t, plan.Markdown, "![img-1](img-1)")
	require.Contains(t, plan.Markdown, "![img-2](doc_images/img-2.gif)")
}

func TestProjectNoDecodedImages(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "![img-0](img-0)", Images: []extractor.Image{
				{ID: "img-0", Payload: extractor.Reference{URL: "https://example.com/a.png"}},
			}},
			{Index: 1, Markdown: "text"},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.False(t, plan.HasImages())

	for _, a := range plan.Artifacts() {
		require.False(t, strings.HasPrefix(a.Path, plan.ImageDir()), a.Path)
	}
}

func TestProjectDuplicateImageNames(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "![img-0.png](img-0.png)", Images: []extractor.Image{
				{ID: "img-0.png", Payload: inline("first")},
			}},
			{Index: 1, Markdown: "![img-0.png](img-0.png)", Images: []extractor.Image{
				{ID: "img-0.png", Payload: inline("second")},
			}},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Len(t, plan.Images, 2)
	require.Equal(t, "doc_images/img-0.png", plan.Images[0].Path)
	require.Equal(t, "doc_images/img-0-2.png", plan.Images[1].Path)

	require.Equal(t, []string{"doc_images/img-0.png", "doc_images/img-0-2.png"}, imageDestinations(t, plan.Markdown))
}

func TestProjectSanitizesImageIDs(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Images: []extractor.Image{
				{ID: "../../etc/passwd", Format: "png", Payload: inline("a")},
				{ID: "", Payload: inline("b")},
			}},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Equal(t, "doc_images/passwd.png", plan.Images[0].Path)
	require.Equal(t, "doc_images/image-2.png", plan.Images[1].Path)
}

func TestProjectRejectsUnsafeFormats(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "![img-1](img-1)", Images: []extractor.Image{
				{ID: "img-1", Format: "x/../../doc.md", Payload: inline("IMG")},
				{ID: "img-2", Format: "..", Payload: extractor.InlineData{ContentType: "image/jpeg", Data: []byte("J")}},
			}},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Len(t, plan.Images, 2)
	require.Equal(t, "doc_images/img-1.png", plan.Images[0].Path)
	require.Equal(t, "doc_images/img-2.jpeg", plan.Images[1].Path)

	paths := map[string]bool{}

	for _, a := range plan.Artifacts() {
		require.False(t, paths[a.Path], a.Path)
		paths[a.Path] = true
	}

	require.Equal(t, "![img-1](doc_images/img-1.png)\n", plan.Markdown)
}

func TestProjectRewritesAcrossPages(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "A", Images: []extractor.Image{
				{ID: "img-1", Payload: inline("png")},
			}},
			{Index: 1, Markdown: "![img-1]"},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Equal(t, "doc_images/img-1.png", plan.Images[0].Path)
	require.Equal(t, "A\n\n![img-1](doc_images/img-1.png)\n", plan.Markdown)
}

func TestProjectKeepsBlankPages(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "  A"},
			{Index: 1, Markdown: ""},
			{Index: 2, Markdown: "C\n"},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Equal(t, "  A\n\n\n\nC\n", plan.Markdown)
}

func TestProjectArtifacts(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "![a](a)", Images: []extractor.Image{{ID: "a", Format: ".PNG", Payload: inline("a")}}},
		},
	}

	plan, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	var paths []string

	for _, a := range plan.Artifacts() {
		paths = append(paths, a.Path)
	}

	require.Equal(t, []string{"doc.md", "doc_full.json", "doc_images/a.png"}, paths)
	require.Equal(t, raw, plan.Artifacts()[1].Content)
}

func TestProjectIdempotent(t *testing.T) {
	doc := &extractor.Document{
		Raw: raw,
		Pages: []extractor.Page{
			{Index: 0, Markdown: "![a](a) text", Images: []extractor.Image{{ID: "a", Payload: inline("a")}}},
			{Index: 1, Markdown: "more"},
		},
	}

	first, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	second, err := projector.Project(doc, "doc")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, "![a](a) text", doc.Pages[0].Markdown)
}

func TestProjectMalformed(t *testing.T) {
	_, err := projector.Project(nil, "doc")
	require.ErrorIs(t, err, extractor.ErrMalformed)

	_, err = projector.Project(&extractor.Document{}, "doc")
	require.ErrorIs(t, err, extractor.ErrMalformed)

	_, err = projector.Project(&extractor.Document{Raw: raw}, "../doc")
	require.Error(t, err)
}
