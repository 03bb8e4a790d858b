package render

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/contribgraph/contribgraph-server/internal/calendar"
	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
	"github.com/contribgraph/contribgraph-server/internal/layout"
)

const fontFamily = "Figtree, system-ui, sans-serif"

// Canvas and text colors per mode.
const (
	lightBackground = "#ffffff"
	darkBackground  = "#0d1117"
	lightText       = "#24292e"
	darkText        = "#c9d1d9"
)

// Legend bound markers.
const (
	legendLow  = "Less"
	legendHigh = "More"
)

// emptyOpacity is applied to level-0 cells when there is no background.
const emptyOpacity = "0.5"

// Weekday rows that carry a label.
var labeledDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

// textStyle holds the presentation attributes of one class of label.
type textStyle struct {
	size    int
	weight  int
	opacity string
	anchor  string
}

var (
	monthStyle   = textStyle{size: 10, weight: 400, opacity: "0.8"}
	dayStyle     = textStyle{size: 9, weight: 400, opacity: "0.6", anchor: "end"}
	legendStyle  = textStyle{size: 9, weight: 400, opacity: "0.6"}
	captionStyle = textStyle{size: 10, weight: 500, opacity: "0.8"}
)

// Compose emits the SVG document for a calendar.
//
// Elements appear in a fixed order: background, month labels, day labels,
// cells, legend, caption. Decorations follow the effective flags on geo, so
// grid-only geometry yields a document with no text at all. The output is a
// pure function of its inputs.
func Compose(cal calendar.Dense, scale color.Scale, geo layout.Geometry, cfg Config) string {
	c := composer{geo: geo, cfg: cfg, scale: scale, text: lightText}
	if cfg.Mode == color.ModeDark {
		c.text = darkText
	}
	c.grow(len(cal.Days))

	c.open()
	c.background()
	if geo.ShowMonths {
		c.monthLabels(cal)
	}
	if geo.ShowDays {
		c.dayLabels()
	}
	c.cells(cal)
	if geo.ShowLegend {
		c.legend()
	}
	if geo.ShowUsername && cfg.Username != "" {
		c.caption()
	}
	c.b.WriteString("</svg>")

	return c.b.String()
}

type composer struct {
	b     strings.Builder
	geo   layout.Geometry
	cfg   Config
	scale color.Scale
	text  string
}

func (c *composer) grow(days int) {
	// Roughly 110 bytes per cell plus the fixed decorations.
	c.b.Grow(days*110 + 2048)
}

func (c *composer) open() {
	w, h := strconv.Itoa(c.geo.Width), strconv.Itoa(c.geo.Height)
	c.b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="`)
	c.b.WriteString(w)
	c.b.WriteString(`" height="`)
	c.b.WriteString(h)
	c.b.WriteString(`" viewBox="0 0 `)
	c.b.WriteString(w)
	c.b.WriteByte(' ')
	c.b.WriteString(h)
	c.b.WriteString(`">`)
}

func (c *composer) background() {
	if !c.cfg.Background {
		return
	}
	fill := lightBackground
	if c.cfg.Mode == color.ModeDark {
		fill = darkBackground
	}
	c.b.WriteString(`<rect width="`)
	c.b.WriteString(strconv.Itoa(c.geo.Width))
	c.b.WriteString(`" height="`)
	c.b.WriteString(strconv.Itoa(c.geo.Height))
	c.b.WriteString(`" fill="`)
	c.b.WriteString(fill)
	c.b.WriteString(`"/>`)
}

// monthLabels writes one label per year-month change across week starts.
func (c *composer) monthLabels(cal calendar.Dense) {
	prev := ""
	for i := range cal.WeekCount() {
		first := cal.Week(i)[0].Date
		if len(first) < 7 || first[:7] == prev {
			continue
		}
		prev = first[:7]

		name, ok := monthName(first)
		if !ok {
			continue
		}
		c.textNode(float64(c.geo.ColumnX(i)), float64(c.geo.MonthLabelY), monthStyle, name)
	}
}

func monthName(date string) (string, bool) {
	t, err := domain.ParseDate(date)
	if err != nil {
		return "", false
	}
	return t.Month().String()[:3], true
}

func (c *composer) dayLabels() {
	x := float64(c.geo.DayLabelX)
	for _, d := range labeledDays {
		c.textNode(x, c.geo.DayLabelY(int(d)), dayStyle, d.String()[:3])
	}
}

func (c *composer) cells(cal calendar.Dense) {
	size := strconv.Itoa(c.geo.CellSize)
	for i, day := range cal.Days {
		x, y := c.geo.Cell(i/calendar.DaysPerWeek, i%calendar.DaysPerWeek)
		level := domain.ClampLevel(day.Level)
		c.rect(x, y, size, c.scale[level], level == 0 && !c.cfg.Background)
	}
}

func (c *composer) legend() {
	y := float64(c.geo.LegendY)
	c.textNode(float64(c.geo.LegendLowX()), y, textStyle{
		size: legendStyle.size, weight: legendStyle.weight, opacity: legendStyle.opacity, anchor: "end",
	}, legendLow)

	size := strconv.Itoa(layout.LegendSwatch)
	top := c.geo.LegendSwatchY()
	for i, fill := range c.scale {
		c.rect(c.geo.LegendSwatchX(i), top, size, fill, i == 0 && !c.cfg.Background)
	}

	c.textNode(float64(c.geo.LegendHighX()), y, legendStyle, legendHigh)
}

func (c *composer) caption() {
	c.textNode(float64(c.geo.UsernameX), float64(c.geo.UsernameY), captionStyle, c.cfg.Username)
}

func (c *composer) rect(x, y int, size, fill string, faded bool) {
	radius := strconv.Itoa(c.cfg.Radius)
	c.b.WriteString(`<rect x="`)
	c.b.WriteString(strconv.Itoa(x))
	c.b.WriteString(`" y="`)
	c.b.WriteString(strconv.Itoa(y))
	c.b.WriteString(`" width="`)
	c.b.WriteString(size)
	c.b.WriteString(`" height="`)
	c.b.WriteString(size)
	c.b.WriteString(`" rx="`)
	c.b.WriteString(radius)
	c.b.WriteString(`" ry="`)
	c.b.WriteString(radius)
	c.b.WriteString(`" fill="`)
	c.b.WriteString(fill)
	if faded {
		c.b.WriteString(`" fill-opacity="`)
		c.b.WriteString(emptyOpacity)
	}
	c.b.WriteString(`"/>`)
}

func (c *composer) textNode(x, y float64, st textStyle, content string) {
	c.b.WriteString(`<text x="`)
	c.b.WriteString(formatFloat(x))
	c.b.WriteString(`" y="`)
	c.b.WriteString(formatFloat(y))
	c.b.WriteString(`" font-family="`)
	c.b.WriteString(fontFamily)
	c.b.WriteString(`" font-size="`)
	c.b.WriteString(strconv.Itoa(st.size))
	c.b.WriteString(`" font-weight="`)
	c.b.WriteString(strconv.Itoa(st.weight))
	c.b.WriteString(`" fill="`)
	c.b.WriteString(c.text)
	c.b.WriteString(`" opacity="`)
	c.b.WriteString(st.opacity)
	if st.anchor != "" {
		c.b.WriteString(`" text-anchor="`)
		c.b.WriteString(st.anchor)
	}
	c.b.WriteString(`">`)
	// strings.Builder never fails.
	_ = xml.EscapeText(&c.b, []byte(content))
	c.b.WriteString(`</text>`)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
