package extractor

import (
	"context"
	"errors"
	"strconv"
)

type Provider interface {
	Extract(ctx context.Context, file File, options *ExtractOptions) (*Document, error)
}

var (
	ErrUnsupported = errors.New("unsupported type")
	ErrMalformed   = errors.New("malformed response")
)

// ServiceError reports a failed call to the remote OCR service. Network,
// authentication, quota and upload failures are all surfaced as this type.
type ServiceError struct {
	StatusCode int
	Message    string

	Err error
}

func (e *ServiceError) Error() string {
	msg := e.Message

	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.StatusCode != 0 {
		return "service error (" + strconv.Itoa(e.StatusCode) + "): " + msg
	}

	return "service error: " + msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

type File struct {
	Name string

	Content     []byte
	ContentType string
}

type ExtractOptions struct {
	Model string
}

type Document struct {
	Model string

	Pages []Page
	Usage *Usage

	// Raw holds the response body exactly as received.
	Raw []byte
}

type Usage struct {
	PagesProcessed int
	DocSizeBytes   int
}

type Page struct {
	Index int

	Markdown string
	Images   []Image

	Dimensions *Dimensions
}

type Dimensions struct {
	DPI int

	Width  int
	Height int
}

type Image struct {
	ID string

	Payload Payload
	Format  string

	Description string

	TopLeftX     int
	TopLeftY     int
	BottomRightX int
	BottomRightY int
}
