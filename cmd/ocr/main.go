package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrianliechti/mistral-ocr/config"
	"github.com/adrianliechti/mistral-ocr/pkg/batch"
	"github.com/adrianliechti/mistral-ocr/pkg/otel"
	"github.com/adrianliechti/mistral-ocr/pkg/scanner"
	"github.com/adrianliechti/mistral-ocr/pkg/writer"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	configFlag := flag.String("config", "", "config file (yaml)")
	dirFlag := flag.String("dir", "", "directory to scan for PDF and image files")
	outputFlag := flag.String("output", "", "output directory (defaults to -dir)")
	modelFlag := flag.String("model", "", "ocr model")
	urlFlag := flag.String("url", "", "ocr api url")
	htmlFlag := flag.Bool("html", false, "also render markdown to html")
	reportFlag := flag.String("report", "", "write a json report to this file")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()

	shutdown, err := otel.Setup(ctx, "mistral-ocr", version, otel.RunID(runID))

	if err != nil {
		return err
	}

	defer shutdown(context.Background())

	cfg, err := config.Parse(*configFlag)

	if err != nil {
		return err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.Input = *dirFlag
		case "output":
			cfg.Output = *outputFlag
		case "model":
			cfg.Extractor.Model = *modelFlag
		case "url":
			cfg.Extractor.URL = *urlFlag
		case "html":
			cfg.HTML = *htmlFlag
		case "report":
			cfg.Report = *reportFlag
		}
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	names, err := scanner.Scan(cfg.Input)

	if err != nil {
		return err
	}

	provider, err := cfg.Extractor()

	if err != nil {
		return err
	}

	sink, err := cfg.Sink(ctx)

	if err != nil {
		return err
	}

	if len(names) > 0 {
		fmt.Printf("Found %d file(s) to process.\n", len(names))
	}

	driver := batch.New(provider, writer.New(sink, writer.WithHTML(cfg.HTML)),
		batch.WithModel(cfg.Extractor.Model),
		batch.WithRunID(runID),
	)

	report := driver.Run(ctx, cfg.Input, names)

	fmt.Println()

	if err := report.Print(os.Stdout); err != nil {
		return err
	}

	if cfg.Report != "" {
		data, err := report.JSON()

		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Clean(cfg.Report), data, 0644); err != nil {
			slog.Error("failed to write report", "path", cfg.Report, "error", err)
		}
	}

	return nil
}
