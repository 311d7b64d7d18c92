package extractor

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// Payload is the content of an embedded image. It is one of InlineData,
// Reference or Malformed.
type Payload interface {
	payload()
}

type InlineData struct {
	ContentType string
	Data        []byte
}

type Reference struct {
	URL string
}

type Malformed struct {
	Raw string
	Err error
}

func (InlineData) payload() {}
func (Reference) payload()  {}
func (Malformed) payload()  {}

// ParsePayload classifies a raw image field as returned by the service:
// data URLs and bare base64 image data become InlineData, http(s) URLs
// become Reference.
func ParsePayload(raw string) Payload {
	value := strings.TrimSpace(raw)

	if value == "" {
		return Malformed{Raw: raw, Err: errors.New("empty payload")}
	}

	lower := strings.ToLower(value)

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Reference{URL: value}
	}

	if strings.HasPrefix(lower, "data:") {
		u, err := dataurl.DecodeString(value)

		if err != nil {
			return Malformed{Raw: raw, Err: err}
		}

		if len(u.Data) == 0 {
			return Malformed{Raw: raw, Err: errors.New("empty data url")}
		}

		return InlineData{
			ContentType: u.ContentType(),
			Data:        u.Data,
		}
	}

	data, err := decodeBase64(value)

	if err != nil {
		return Malformed{Raw: raw, Err: err}
	}

	contentType := http.DetectContentType(data)

	if !strings.HasPrefix(contentType, "image/") {
		return Malformed{Raw: raw, Err: errors.New("payload is not image data: " + contentType)}
	}

	return InlineData{
		ContentType: contentType,
		Data:        data,
	}
}

func decodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)

		if err == nil && len(data) > 0 {
			return data, nil
		}
	}

	return nil, errors.New("invalid base64 payload")
}
