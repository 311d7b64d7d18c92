package config

import (
	"bytes"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Input  string
	Output string

	HTML   bool
	Report string

	Extractor ExtractorConfig
	Storage   *StorageConfig
}

type configFile struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	HTML   bool   `yaml:"html"`
	Report string `yaml:"report"`

	Extractor *ExtractorConfig `yaml:"extractor"`
	Storage   *StorageConfig   `yaml:"storage"`
}

// Default returns the configuration used when no file is given: the
// current directory is both input and output, and the Mistral credentials
// come from the environment.
func Default() *Config {
	return &Config{
		Input: ".",

		Extractor: ExtractorConfig{
			Type: "mistral",

			URL:   os.Getenv("MISTRAL_URL"),
			Token: os.Getenv("MISTRAL_API_KEY"),
			Model: os.Getenv("MISTRAL_MODEL"),
		},
	}
}

// Parse loads a YAML file on top of Default. ${VAR} references in the file
// are expanded from the environment.
func Parse(path string) (*Config, error) {
	c := Default()

	if path == "" {
		return c, nil
	}

	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	if file.Input != "" {
		c.Input = file.Input
	}

	c.Output = file.Output

	c.HTML = file.HTML
	c.Report = file.Report

	if file.Extractor != nil {
		c.Extractor.merge(*file.Extractor)
	}

	c.Storage = file.Storage

	return c, nil
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input directory is required")
	}

	if err := c.Extractor.validate(); err != nil {
		return err
	}

	if c.Storage != nil {
		if err := c.Storage.validate(); err != nil {
			return err
		}
	}

	return nil
}

// OutputDir is where artifacts are written; it defaults to the input directory.
func (c *Config) OutputDir() string {
	if c.Output != "" {
		return c.Output
	}

	return c.Input
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
