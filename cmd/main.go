package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/polisum/internal/app"
	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/pkg/config"
	"github.com/xhad/polisum/pkg/drafter"
	"github.com/xhad/polisum/pkg/extract"
	"github.com/xhad/polisum/pkg/processor"
)

type Options struct {
	ConfigPath string
	Text       string
	File       string
	URL        string
	Scenario   string
	Verbose    bool
}

func main() {
	opts := parseFlags()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if opts.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		color.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags() Options {
	var opts Options

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&opts.Text, "text", "", "Policy text to summarize")
	flag.StringVar(&opts.File, "file", "", "Policy file to summarize (.pdf or plain text)")
	flag.StringVar(&opts.URL, "url", "", "Policy page URL to summarize")
	flag.StringVar(&opts.Scenario, "scenario", "", fmt.Sprintf("Draft the summary for a scenario (%s)", strings.Join(drafter.Scenarios(), ", ")))
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	return opts
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(ctx context.Context, opts Options) error {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("  %s", e.Error())
		}
		return fmt.Errorf("invalid configuration: %d error(s)", len(errs))
	}
	cfg.Server.EnableHistory = false

	services, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	text, err := readPolicy(ctx, services, opts)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("no text provided: use -text, -file or -url")
	}

	var bar *progressbar.ProgressBar
	summary, err := services.Summarizer.SummarizeCleaned(ctx, text, func(p models.Progress) {
		if bar == nil {
			bar = getProgressBar(p.Total, "📄 Summarizing policy...")
		}
		bar.Set(p.Index)
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	color.Green("\n✓ Summary\n")
	fmt.Println(summary)

	if opts.Scenario == "" {
		return nil
	}

	spinner := getSpinner("✍️  Drafting " + opts.Scenario + "...")
	draft, err := services.Drafter.Draft(ctx, summary, opts.Scenario)
	spinner.Finish()
	fmt.Fprint(os.Stderr, "\r")
	if err != nil {
		return fmt.Errorf("failed to draft: %w", err)
	}

	color.Cyan("\n✓ Scenario draft\n")
	fmt.Println(draft)

	return nil
}

// readPolicy returns the cleaned text from whichever input flag is set.
func readPolicy(ctx context.Context, services *app.Services, opts Options) (string, error) {
	switch {
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
		if extract.IsPDFName(opts.File) {
			return extract.PDFBytes(data)
		}
		return processor.CleanText(string(data)), nil

	case opts.URL != "":
		spinner := getSpinner("🌐 Fetching " + opts.URL + "...")
		doc, err := services.Fetcher.Fetch(ctx, opts.URL)
		spinner.Finish()
		fmt.Fprint(os.Stderr, "\r")
		if err != nil {
			return "", err
		}
		return processor.CleanText(doc.Content), nil

	default:
		return processor.CleanText(opts.Text), nil
	}
}
