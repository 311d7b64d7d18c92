package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"
)

var _ extractor.Provider = &Client{}

type Client struct {
	client *http.Client

	url   string
	token string

	model string
}

func New(options ...Option) (*Client, error) {
	c := &Client{
		client: http.DefaultClient,

		url: "https://api.mistral.ai/v1/",

		model: "mistral-ocr-latest",
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	if options == nil {
		options = new(extractor.ExtractOptions)
	}

	if !isSupported(file) {
		return nil, extractor.ErrUnsupported
	}

	model := c.model

	if options.Model != "" {
		model = options.Model
	}

	contentType := detectContentType(file)
	dataurl := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(file.Content)

	document := map[string]any{
		"type":          "document_url",
		"document_name": file.Name,
		"document_url":  dataurl,
	}

	if strings.HasPrefix(contentType, "image/") {
		document = map[string]any{
			"type":      "image_url",
			"image_url": dataurl,
		}
	}

	body := map[string]any{
		"model":    model,
		"document": document,

		"include_image_base64": true,
	}

	data, err := json.Marshal(body)

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", strings.TrimRight(c.url, "/")+"/ocr", bytes.NewReader(data))

	if err != nil {
		return nil, &extractor.ServiceError{Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, &extractor.ServiceError{Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	raw, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, &extractor.ServiceError{Err: err}
	}

	var response Response

	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", extractor.ErrMalformed, err)
	}

	if response.Pages == nil {
		return nil, fmt.Errorf("%w: missing pages", extractor.ErrMalformed)
	}

	return convertResult(&response, raw), nil
}

func convertResult(response *Response, raw []byte) *extractor.Document {
	result := &extractor.Document{
		Model: response.Model,
		Pages: []extractor.Page{},

		Raw: raw,
	}

	if response.Usage != nil {
		result.Usage = &extractor.Usage{
			PagesProcessed: response.Usage.PagesProcessed,
		}

		if response.Usage.DocSizeBytes != nil {
			result.Usage.DocSizeBytes = *response.Usage.DocSizeBytes
		}
	}

	for _, p := range response.Pages {
		page := extractor.Page{
			Index:    p.Index,
			Markdown: p.Markdown,
		}

		if p.Dimensions != nil {
			page.Dimensions = &extractor.Dimensions{
				DPI:    p.Dimensions.DPI,
				Width:  p.Dimensions.Width,
				Height: p.Dimensions.Height,
			}
		}

		for _, i := range p.Images {
			data := i.ImageBase64

			if data == "" {
				data = i.Data
			}

			description := i.Description

			if description == "" {
				description = i.ImageAnnotation
			}

			page.Images = append(page.Images, extractor.Image{
				ID: i.ID,

				Payload: extractor.ParsePayload(data),
				Format:  i.Format,

				Description: description,

				TopLeftX:     i.TopLeftX,
				TopLeftY:     i.TopLeftY,
				BottomRightX: i.BottomRightX,
				BottomRightY: i.BottomRightY,
			})
		}

		result.Pages = append(result.Pages, page)
	}

	return result
}

func isSupported(file extractor.File) bool {
	if file.Name != "" {
		ext := strings.ToLower(path.Ext(file.Name))

		if slices.Contains(SupportedExtensions, ext) {
			return true
		}
	}

	if file.ContentType != "" {
		if slices.Contains(SupportedMimeTypes, file.ContentType) {
			return true
		}
	}

	return false
}

func detectContentType(file extractor.File) string {
	if file.ContentType != "" {
		return file.ContentType
	}

	if t := mime.TypeByExtension(strings.ToLower(path.Ext(file.Name))); t != "" {
		return t
	}

	return http.DetectContentType(file.Content)
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	message := strings.TrimSpace(string(data))

	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &extractor.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
