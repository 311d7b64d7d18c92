package mistral

import (
	"net/http"
)

type Option func(*Client)

func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// https://docs.mistral.ai/capabilities/document_ai/basic_ocr
var SupportedExtensions = []string{
	".pdf",

	".jpeg", ".jpg",
	".png",
	".gif",
	".bmp",
	".tiff", ".tif",
	".webp",
}

var SupportedMimeTypes = []string{
	"application/pdf",

	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/tiff",
	"image/webp",
}
