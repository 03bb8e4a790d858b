package render

import (
	"math"
	"sync"
	"time"

	"github.com/contribgraph/contribgraph-server/internal/calendar"
	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	"github.com/contribgraph/contribgraph-server/internal/layout"
)

// Result is the output of one render.
type Result struct {
	Body        []byte
	ContentType string
	Format      Format
	Width       int
	Height      int
	Weeks       int
	// Total is the sum of counts inside the displayed window.
	Total int
}

// Renderer runs the pipeline. The zero value is not usable; use NewRenderer.
type Renderer struct {
	raster *Rasterizer
}

// NewRenderer returns a Renderer that encodes PNG output with raster.
func NewRenderer(raster *Rasterizer) *Renderer {
	return &Renderer{raster: raster}
}

var defaultRasterizer = sync.OnceValues(func() (*Rasterizer, error) {
	return NewRasterizer(1)
})

// Render runs the pipeline with a 1x rasterizer.
func Render(records []domain.ActivityRecord, reference time.Time, cfg Config, format Format) (*Result, error) {
	raster, err := defaultRasterizer()
	if err != nil {
		return nil, encodingError(err, "load fonts")
	}
	return NewRenderer(raster).Render(records, reference, cfg, format)
}

// Render normalizes records against reference, resolves the palette, lays
// out and composes the chart, and rasterizes it when format is PNG.
// cfg is clamped on a local copy.
func (r *Renderer) Render(records []domain.ActivityRecord, reference time.Time, cfg Config, format Format) (*Result, error) {
	cfg = cfg.Clamped()
	if cfg.Username == "" {
		cfg.ShowUsername = false
	}

	scale, err := color.Resolve(cfg.Theme, cfg.Mode, cfg.Color)
	if err != nil {
		return nil, err
	}

	cal := calendar.Normalize(records, reference)
	geo := layout.Compute(cal.WeekCount(), cfg.LayoutOptions())
	svg := Compose(cal, scale, geo, cfg)

	res := &Result{
		Format:      format,
		ContentType: format.ContentType(),
		Width:       geo.Width,
		Height:      geo.Height,
		Weeks:       cal.WeekCount(),
		Total:       cal.Total(),
	}

	if format != FormatPNG {
		res.Format = FormatSVG
		res.ContentType = FormatSVG.ContentType()
		res.Body = []byte(svg)
		return res, nil
	}

	body, err := r.raster.Encode(svg)
	if err != nil {
		return nil, err
	}
	res.Body = body
	res.Width = scaled(geo.Width, r.raster.Scale())
	res.Height = scaled(geo.Height, r.raster.Scale())
	return res, nil
}

func scaled(v int, s float64) int {
	return int(math.Ceil(float64(v) * s))
}
