package api

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
	"github.com/contribgraph/contribgraph-server/internal/render"
	"github.com/contribgraph/contribgraph-server/internal/service"
)

func (s *Server) registerChartRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getChart",
		Method:      http.MethodGet,
		Path:        "/api/chart/{username}",
		Summary:     "Render contribution chart",
		Description: "Renders a user's contribution heat map as SVG or PNG",
		Tags:        []string{"Charts"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Rendered chart",
				Content: map[string]*huma.MediaType{
					"image/svg+xml": {},
					"image/png":     {},
				},
			},
		},
	}, s.handleGetChart)
}

func (s *Server) registerDataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getContributions",
		Method:      http.MethodGet,
		Path:        "/api/data/{username}",
		Summary:     "Get contribution data",
		Description: "Returns the raw daily contribution counts for a user",
		Tags:        []string{"Charts"},
	}, s.handleGetData)
}

func (s *Server) registerThemeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listThemes",
		Method:      http.MethodGet,
		Path:        "/api/themes",
		Summary:     "List themes and presets",
		Tags:        []string{"Charts"},
	}, s.handleListThemes)
}

// === DTOs ===

// ChartInput carries the chart query. Boolean and numeric options are
// strings so that "absent" can be told apart from "false" or "0".
type ChartInput struct {
	Username string `path:"username" doc:"GitHub username"`

	Theme  string `query:"theme" doc:"Color theme"`
	Mode   string `query:"mode" doc:"light or dark"`
	Color  string `query:"color" doc:"Custom base color as 6-digit hex; overrides theme"`
	Format string `query:"format" doc:"svg or png" default:"svg"`
	Preset string `query:"preset" doc:"Named bundle of visual options"`
	Year   string `query:"year" doc:"Calendar year instead of the trailing year"`

	Background string `query:"bg" doc:"Draw the background"`
	Radius     string `query:"radius" doc:"Cell corner radius, 0-10"`
	Gap        string `query:"gap" doc:"Gap between cells, 0-5"`
	Size       string `query:"size" doc:"Cell size, 1-20"`
	Margin     string `query:"margin" doc:"Outer margin, 0-100"`
	Grid       string `query:"grid" doc:"Grid only, no labels"`
	Months     string `query:"months" doc:"Show month labels"`
	Days       string `query:"days" doc:"Show weekday labels"`
	Legend     string `query:"scale" doc:"Show the Less/More legend"`
	Caption    string `query:"username" doc:"Show the username caption"`
	Footer     string `query:"footer" doc:"Show legend and caption together"`
}

// ChartOutput is a rendered image.
type ChartOutput struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

// DataInput selects a user's contribution data.
type DataInput struct {
	Username string `path:"username" doc:"GitHub username"`
	Year     string `query:"year" doc:"Calendar year instead of the trailing year"`
}

// DataOutput wraps contribution data for Huma.
type DataOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         domain.ContributionData
}

// ThemesResponse lists what the chart endpoint accepts.
type ThemesResponse struct {
	Themes  []string        `json:"themes" doc:"Built-in theme names"`
	Presets []render.Preset `json:"presets" doc:"Built-in presets"`
	Modes   []string        `json:"modes" doc:"Color modes"`
	Formats []string        `json:"formats" doc:"Output formats"`
}

// ThemesOutput wraps the theme listing for Huma.
type ThemesOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ThemesResponse
}

// === Handlers ===

func (s *Server) handleGetChart(ctx context.Context, input *ChartInput) (*ChartOutput, error) {
	req, err := input.toRequest()
	if err != nil {
		return nil, err
	}

	res, err := s.charts.Chart(ctx, req)
	if err != nil {
		return nil, err
	}

	return &ChartOutput{
		ContentType:  res.ContentType,
		CacheControl: publicCache(s.opts.ChartMaxAge),
		Body:         res.Body,
	}, nil
}

func (s *Server) handleGetData(ctx context.Context, input *DataInput) (*DataOutput, error) {
	p := params{}
	year := p.number("year", input.Year)
	if err := p.err(); err != nil {
		return nil, err
	}

	data, err := s.charts.Data(ctx, input.Username, year)
	if err != nil {
		return nil, err
	}

	return &DataOutput{
		CacheControl: publicCache(s.opts.DataMaxAge),
		Body:         data,
	}, nil
}

func (s *Server) handleListThemes(_ context.Context, _ *struct{}) (*ThemesOutput, error) {
	return &ThemesOutput{
		CacheControl: publicCache(s.opts.DataMaxAge),
		Body: ThemesResponse{
			Themes:  color.Themes(),
			Presets: render.Presets(),
			Modes:   []string{string(color.ModeLight), string(color.ModeDark)},
			Formats: []string{string(render.FormatSVG), string(render.FormatPNG)},
		},
	}, nil
}

// toRequest parses the query strings into a service request.
func (in *ChartInput) toRequest() (service.ChartRequest, error) {
	p := params{}

	o := render.Overrides{
		Background:   p.flag("bg", in.Background),
		Radius:       p.number("radius", in.Radius),
		Gap:          p.number("gap", in.Gap),
		Size:         p.number("size", in.Size),
		Margin:       p.number("margin", in.Margin),
		GridOnly:     p.flag("grid", in.Grid),
		ShowMonths:   p.flag("months", in.Months),
		ShowDays:     p.flag("days", in.Days),
		ShowLegend:   p.flag("scale", in.Legend),
		ShowUsername: p.flag("username", in.Caption),
	}
	if footer := p.flag("footer", in.Footer); footer != nil {
		if o.ShowLegend == nil {
			o.ShowLegend = footer
		}
		if o.ShowUsername == nil {
			o.ShowUsername = footer
		}
	}

	req := service.ChartRequest{
		Username:  strings.TrimSpace(in.Username),
		Year:      p.number("year", in.Year),
		Theme:     in.Theme,
		Mode:      strings.ToLower(in.Mode),
		Color:     in.Color,
		Format:    strings.ToLower(in.Format),
		Preset:    in.Preset,
		Overrides: o,
	}
	return req, p.err()
}

// params collects query parse failures per field.
type params map[string]string

func (p params) flag(name, raw string) *bool {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p[name] = "must be true or false"
		return nil
	}
	return &v
}

func (p params) number(name, raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p[name] = "must be an integer"
		return nil
	}
	return &v
}

func (p params) err() error {
	if len(p) == 0 {
		return nil
	}
	names := slices.Sorted(maps.Keys(p))
	return domainerrors.ValidationWithDetails("invalid query parameters: "+strings.Join(names, ", "), map[string]string(p))
}
