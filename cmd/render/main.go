// Command render draws a contribution chart from a JSON file or a live
// GitHub lookup and writes it as SVG or PNG, or previews it in the terminal.
//
// Usage:
//
//	render -user octocat -out chart.svg
//	render -input data.json -format png -theme ocean -out chart.png
//	render -user octocat -preview
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/contribgraph/contribgraph-server/internal/calendar"
	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	"github.com/contribgraph/contribgraph-server/internal/github"
	"github.com/contribgraph/contribgraph-server/internal/logger"
	"github.com/contribgraph/contribgraph-server/internal/preview"
	"github.com/contribgraph/contribgraph-server/internal/render"
)

type options struct {
	user    string
	input   string
	out     string
	format  string
	theme   string
	mode    string
	color   string
	preset  string
	date    string
	year    int
	scale   float64
	preview bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "render: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Writer: stderr, Level: logger.ParseLevel("info")})

	data, err := loadData(ctx, opts, log)
	if err != nil {
		return err
	}

	reference, err := referenceDate(opts)
	if err != nil {
		return err
	}

	mode, err := color.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	cfg := render.DefaultConfig()
	cfg.Username = opts.user
	cfg.Theme = opts.theme
	cfg.Mode = mode
	cfg.Color = opts.color
	cfg = render.Resolve(cfg, opts.preset, render.Overrides{})

	if opts.preview {
		scale, err := color.Resolve(cfg.Theme, cfg.Mode, cfg.Color)
		if err != nil {
			return err
		}
		popts := preview.DefaultOptions()
		popts.Renderer = lipgloss.NewRenderer(stdout)
		if opts.year != 0 {
			popts.Year = &opts.year
		}
		_, err = io.WriteString(stdout, preview.Render(calendar.Normalize(data.Days, reference), scale, popts))
		return err
	}

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	raster, err := render.NewRasterizer(opts.scale)
	if err != nil {
		return err
	}
	res, err := render.NewRenderer(raster).Render(data.Days, reference, cfg, format)
	if err != nil {
		return err
	}

	if opts.out == "" || opts.out == "-" {
		_, err = stdout.Write(res.Body)
		return err
	}
	if err := os.WriteFile(opts.out, res.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	log.Info("Chart written", "path", opts.out, "format", res.Format, "width", res.Width, "height", res.Height)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.user, "user", "", "GitHub username to fetch (also used as the caption)")
	fs.StringVar(&o.input, "input", "", "JSON file with {total, days} instead of fetching")
	fs.StringVar(&o.out, "out", "", "Output file (default stdout)")
	fs.StringVar(&o.format, "format", "svg", "Output format: svg or png")
	fs.StringVar(&o.theme, "theme", color.DefaultTheme, "Color theme")
	fs.StringVar(&o.mode, "mode", string(color.ModeLight), "Color mode: light or dark")
	fs.StringVar(&o.color, "color", "", "Custom base color, e.g. #40c463")
	fs.StringVar(&o.preset, "preset", "", "Named style preset")
	fs.StringVar(&o.date, "date", "", "Reference date YYYY-MM-DD (default today)")
	fs.IntVar(&o.year, "year", 0, "Calendar year to fetch")
	fs.Float64Var(&o.scale, "scale", 1, "PNG pixel density")
	fs.BoolVar(&o.preview, "preview", false, "Draw the chart in the terminal")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.user == "" && o.input == "" {
		fs.Usage()
		return o, errors.New("one of -user or -input is required")
	}
	return o, nil
}

func loadData(ctx context.Context, o options, log *logger.Logger) (domain.ContributionData, error) {
	if o.input != "" {
		raw, err := os.ReadFile(o.input)
		if err != nil {
			return domain.ContributionData{}, err
		}
		var data domain.ContributionData
		if err := json.Unmarshal(raw, &data); err != nil {
			return domain.ContributionData{}, fmt.Errorf("decode %s: %w", o.input, err)
		}
		return data, nil
	}

	client := github.New(github.Config{Token: os.Getenv("GITHUB_PAT")}, log.Logger)
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var year *int
	if o.year != 0 {
		year = &o.year
	}
	return client.FetchContributions(ctx, o.user, year)
}

// referenceDate is -date when given, Dec 31 of a past -year, or today.
func referenceDate(o options) (time.Time, error) {
	if o.date != "" {
		t, err := domain.ParseDate(o.date)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid -date: %w", err)
		}
		return t, nil
	}
	now := time.Now()
	if o.year != 0 && o.year < now.Year() {
		return time.Date(o.year, time.December, 31, 0, 0, 0, 0, time.UTC), nil
	}
	return now, nil
}
