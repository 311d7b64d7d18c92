package mistral

type Response struct {
	Model string `json:"model"`
	Pages []Page `json:"pages"`

	Usage *UsageInfo `json:"usage_info"`
}

type UsageInfo struct {
	PagesProcessed int  `json:"pages_processed"`
	DocSizeBytes   *int `json:"doc_size_bytes"`
}

type Page struct {
	Index      int         `json:"index"`
	Dimensions *Dimensions `json:"dimensions"`

	Markdown string  `json:"markdown"`
	Images   []Image `json:"images"`
}

type Dimensions struct {
	DPI int `json:"dpi"`

	Width  int `json:"width"`
	Height int `json:"height"`
}

type Image struct {
	ID string `json:"id"`

	TopLeftX     int `json:"top_left_x"`
	TopLeftY     int `json:"top_left_y"`
	BottomRightX int `json:"bottom_right_x"`
	BottomRightY int `json:"bottom_right_y"`

	ImageBase64 string `json:"image_base64"`

	// older responses and compatible services
	Data   string `json:"data"`
	Format string `json:"format"`

	Description     string `json:"description"`
	ImageAnnotation string `json:"image_annotation"`
}
