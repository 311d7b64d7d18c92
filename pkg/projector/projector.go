package projector

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"
)

const pageSeparator = "\n\n"

// matches ![alt], ![alt](dest) and ![alt](dest "title")
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\](?:\(\s*<?([^)\s>]*)>?(?:\s+"[^"]*")?\s*\))?`)

// Project maps an OCR result onto the files that represent it on disk. The
// result is a pure function of doc and basename.
func Project(doc *extractor.Document, basename string) (*Plan, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty result", extractor.ErrMalformed)
	}

	if len(doc.Raw) == 0 {
		return nil, fmt.Errorf("%w: missing raw response", extractor.ErrMalformed)
	}

	if basename == "" || strings.ContainsAny(basename, `/\`) {
		return nil, errors.New("invalid basename: " + basename)
	}

	plan := &Plan{
		Basename: basename,
		Raw:      doc.Raw,
	}

	pages := make([]extractor.Page, len(doc.Pages))
	copy(pages, doc.Pages)

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})

	names := map[string]bool{}

	var links []imageLink
	linked := map[string]bool{}

	markdowns := make([]string, len(pages))

	for i, page := range pages {
		markdown := page.Markdown

		for _, image := range page.Images {
			switch payload := image.Payload.(type) {
			case extractor.InlineData:
				name := uniqueName(imageName(image, payload, len(plan.Images)), names)
				target := plan.imagePath(name)

				if path.Dir(target) != plan.ImageDir() {
					plan.Skipped = append(plan.Skipped, Skipped{
						Page:   page.Index,
						ID:     image.ID,
						Reason: "invalid image name " + name,
					})

					continue
				}

				plan.Images = append(plan.Images, Artifact{
					Path:        target,
					Content:     payload.Data,
					ContentType: payload.ContentType,
				})

				link := imageHref(plan.ImageDir(), name)
				markdown = rewriteReferences(markdown, image.ID, link)

				if image.ID != "" && !linked[image.ID] {
					linked[image.ID] = true
					links = append(links, imageLink{id: image.ID, href: link})
				}

			case extractor.Reference:
				plan.Skipped = append(plan.Skipped, Skipped{
					Page:   page.Index,
					ID:     image.ID,
					Reason: "remote reference " + payload.URL,
				})

			case extractor.Malformed:
				reason := "malformed payload"

				if payload.Err != nil {
					reason += ": " + payload.Err.Error()
				}

				plan.Skipped = append(plan.Skipped, Skipped{
					Page:   page.Index,
					ID:     image.ID,
					Reason: reason,
				})

			default:
				plan.Skipped = append(plan.Skipped, Skipped{
					Page:   page.Index,
					ID:     image.ID,
					Reason: "missing payload",
				})
			}
		}

		markdowns[i] = markdown
	}

	// placeholders may appear on a page other than the one carrying the image
	for i := range markdowns {
		for _, l := range links {
			markdowns[i] = rewriteReferences(markdowns[i], l.id, l.href)
		}
	}

	text := strings.Join(markdowns, pageSeparator)

	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	plan.Markdown = text

	return plan, nil
}

type imageLink struct {
	id   string
	href string
}

func imageName(image extractor.Image, payload extractor.InlineData, n int) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(image.ID), `\`, "/"))

	if name == "" || name == "." || name == ".." || name == "/" {
		name = "image-" + strconv.Itoa(n+1)
	}

	if format := normalizeFormat(image.Format); format != "" {
		if !strings.EqualFold(path.Ext(name), "."+format) {
			name += "." + format
		}

		return name
	}

	if path.Ext(name) != "" {
		return name
	}

	return name + "." + formatFromContentType(payload.ContentType)
}

var formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// normalizeFormat returns the declared format as a bare extension, or ""
// when it is not a plain alphanumeric token.
func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))

	if !formatPattern.MatchString(format) {
		return ""
	}

	return format
}

func formatFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	}

	return "png"
}

func uniqueName(name string, used map[string]bool) string {
	key := strings.ToLower(name)

	if !used[key] {
		used[key] = true
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 2; ; i++ {
		candidate := stem + "-" + strconv.Itoa(i) + ext
		key := strings.ToLower(candidate)

		if !used[key] {
			used[key] = true
			return candidate
		}
	}
}

func imageHref(dir, name string) string {
	return url.PathEscape(dir) + "/" + url.PathEscape(name)
}

// rewriteReferences points every markdown image whose alt text or
// destination is the placeholder id at link.
func rewriteReferences(markdown, id, link string) string {
	if id == "" {
		return markdown
	}

	matches := imagePattern.FindAllStringSubmatchIndex(markdown, -1)

	if len(matches) == 0 {
		return markdown
	}

	var builder strings.Builder
	last := 0

	for _, m := range matches {
		alt := markdown[m[2]:m[3]]

		hasDest := m[4] >= 0
		dest := ""

		if hasDest {
			dest = markdown[m[4]:m[5]]
		}

		if dest != id && !(alt == id && (dest == "" || dest == id)) {
			continue
		}

		builder.WriteString(markdown[last:m[0]])
		builder.WriteString("![" + alt + "](" + link + ")")

		last = m[1]
	}

	builder.WriteString(markdown[last:])

	return builder.String()
}
