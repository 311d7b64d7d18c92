package config

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adrianliechti/mistral-ocr/pkg/extractor"
	"github.com/adrianliechti/mistral-ocr/pkg/extractor/mistral"
	"github.com/adrianliechti/mistral-ocr/pkg/otel"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ExtractorConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	Model string `yaml:"model"`

	Proxy *proxyConfig `yaml:"proxy"`
}

func (cfg *ExtractorConfig) merge(other ExtractorConfig) {
	if other.Type != "" {
		cfg.Type = other.Type
	}

	if other.URL != "" {
		cfg.URL = other.URL
	}

	if other.Token != "" {
		cfg.Token = other.Token
	}

	if other.Model != "" {
		cfg.Model = other.Model
	}

	if other.Proxy != nil {
		cfg.Proxy = other.Proxy
	}
}

func (cfg *ExtractorConfig) validate() error {
	switch strings.ToLower(cfg.Type) {
	case "", "mistral":
	default:
		return errors.New("invalid extractor type: " + cfg.Type)
	}

	if cfg.Token == "" {
		return errors.New("missing api key: set MISTRAL_API_KEY or extractor.token")
	}

	return nil
}

// Extractor builds the OCR client described by the configuration, with
// tracing around every call.
func (c *Config) Extractor() (extractor.Provider, error) {
	cfg := c.Extractor

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := httpClient(cfg.Proxy)

	if err != nil {
		return nil, err
	}

	p, err := mistralExtractor(cfg, client)

	if err != nil {
		return nil, err
	}

	model := cfg.Model

	if model == "" {
		model = "mistral-ocr-latest"
	}

	if _, ok := p.(otel.Extractor); !ok {
		p = otel.NewExtractor("mistral", model, p)
	}

	return p, nil
}

func mistralExtractor(cfg ExtractorConfig, client *http.Client) (extractor.Provider, error) {
	options := []mistral.Option{
		mistral.WithClient(client),
		mistral.WithToken(cfg.Token),
	}

	if cfg.URL != "" {
		options = append(options, mistral.WithURL(cfg.URL))
	}

	if cfg.Model != "" {
		options = append(options, mistral.WithModel(cfg.Model))
	}

	return mistral.New(options...)
}

func httpClient(proxy *proxyConfig) (*http.Client, error) {
	transport, err := proxy.proxyTransport()

	if err != nil {
		return nil, err
	}

	if transport == nil {
		return otel.HTTPClient(), nil
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
	}, nil
}
