package scanner

import (
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindPDF         Kind = "pdf"
	KindImage       Kind = "image"
	KindUnsupported Kind = ""
)

var DocumentExtensions = map[string]string{
	".pdf": "application/pdf",
}

var ImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".webp": "image/webp",
}

// Classify decides by extension alone whether name is a document the OCR
// service accepts.
func Classify(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))

	if _, ok := DocumentExtensions[ext]; ok {
		return KindPDF
	}

	if _, ok := ImageExtensions[ext]; ok {
		return KindImage
	}

	return KindUnsupported
}

func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))

	if t, ok := DocumentExtensions[ext]; ok {
		return t
	}

	if t, ok := ImageExtensions[ext]; ok {
		return t
	}

	return ""
}
