package writer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"
	"github.com/adrianliechti/mistral-ocr/pkg/projector"
	"github.com/adrianliechti/mistral-ocr/pkg/storage/local"
	"github.com/adrianliechti/mistral-ocr/pkg/writer"

	"github.com/stretchr/testify/require"
)

func project(t *testing.T, doc *extractor.Document) *projector.Plan {
	t.Helper()

	plan, err := projector.Project(doc, "X")
	require.NoError(t, err)

	return plan
}

func withImages() *extractor.Document {
	return &extractor.Document{
		Raw: []byte(`{"pages":[{"index":0}]}`),
		Pages: []extractor.Page{
			{Index: 0, Markdown: "![img-1]", Images: []extractor.Image{
				{ID: "img-1", Format: "png", Payload: extractor.InlineData{ContentType: "image/png", Data: []byte("one")}},
				{ID: "img-2", Format: "png", Payload: extractor.Reference{URL: "https://example.com/img-2.png"}},
				{ID: "img-3", Format: "jpeg", Payload: extractor.InlineData{ContentType: "image/jpeg", Data: []byte("three")}},
			}},
		},
	}
}

func withoutImages() *extractor.Document {
	return &extractor.Document{
		Raw: []byte(`{"pages":[{"index":0,"markdown":"text"}]}`),
		Pages: []extractor.Page{
			{Index: 0, Markdown: "text"},
		},
	}
}

func TestWriteWithImages(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	sink, _ := local.New(root)
	w := writer.New(sink)

	written, err := w.Write(ctx, project(t, withImages()))
	require.NoError(t, err)
	require.Equal(t, []string{"X.md", "X_full.json", "X_images/img-1.png", "X_images/img-3.jpeg"}, written)

	entries, err := os.ReadDir(filepath.Join(root, "X_images"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	data, err := os.ReadFile(filepath.Join(root, "X_images", "img-1.png"))
	require.NoError(t, err)
	require.Equal(t, "one", string(data))

	raw, err := os.ReadFile(filepath.Join(root, "X_full.json"))
	require.NoError(t, err)
	require.Equal(t, `{"pages":[{"index":0}]}`, string(raw))
}

func TestWriteWithoutImages(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	sink, _ := local.New(root)
	w := writer.New(sink)

	_, err := w.Write(ctx, project(t, withoutImages()))
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(root, "X.md"))
	require.FileExists(t, filepath.Join(root, "X_full.json"))
	require.NoDirExists(t, filepath.Join(root, "X_images"))
}

func TestWriteRemovesStaleImages(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	sink, _ := local.New(root)
	w := writer.New(sink)

	_, err := w.Write(ctx, project(t, withImages()))
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(root, "X_images"))

	_, err = w.Write(ctx, project(t, withoutImages()))
	require.NoError(t, err)
	require.NoDirExists(t, filepath.Join(root, "X_images"))
}

func TestWriteIdempotent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	sink, _ := local.New(root)
	w := writer.New(sink)

	read := func() (string, string) {
		md, err := os.ReadFile(filepath.Join(root, "X.md"))
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(root, "X_full.json"))
		require.NoError(t, err)

		return string(md), string(raw)
	}

	_, err := w.Write(ctx, project(t, withImages()))
	require.NoError(t, err)

	md1, raw1 := read()

	_, err = w.Write(ctx, project(t, withImages()))
	require.NoError(t, err)

	md2, raw2 := read()

	require.Equal(t, md1, md2)
	require.Equal(t, raw1, raw2)
}

func TestWriteHTML(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	sink, _ := local.New(root)
	w := writer.New(sink, writer.WithHTML(true))

	written, err := w.Write(ctx, project(t, withImages()))
	require.NoError(t, err)
	require.Contains(t, written, "X.html")

	data, err := os.ReadFile(filepath.Join(root, "X.html"))
	require.NoError(t, err)
	require.Contains(t, string(data), `src="X_images/img-1.png"`)
}
