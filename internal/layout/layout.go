// Package layout computes the pixel geometry of a contribution chart.
//
// Geometry is derived, never stored: it is a pure function of the number of
// week columns and the visual options, recomputed on every render.
package layout

// Fixed decoration sizes in pixels.
const (
	DayLabelWidth    = 30 // fits a 3-letter weekday abbreviation
	MonthLabelHeight = 20
	LegendHeight     = 20
	UsernameHeight   = 20

	// LegendSwatch is the side of each legend square.
	LegendSwatch = 10
	// LegendTextWidth is the room reserved on each side for "Less" and "More".
	LegendTextWidth = 24
	// LegendPadding separates legend text from the swatches.
	LegendPadding = 4

	rows = 7
)

// Options are the already-clamped inputs to Compute.
type Options struct {
	CellSize     int
	Gap          int
	Margin       int
	ShowMonths   bool
	ShowDays     bool
	ShowLegend   bool
	ShowUsername bool
	GridOnly     bool
}

// Geometry holds canvas dimensions and decoration anchors.
// The Show* fields are the effective flags after the grid-only override.
type Geometry struct {
	Width  int
	Height int

	WeekCount int
	CellSize  int
	Gap       int
	Margin    int

	// GridX, GridY is the top-left corner of the first cell.
	GridX int
	GridY int

	ShowMonths   bool
	ShowDays     bool
	ShowLegend   bool
	ShowUsername bool

	// MonthLabelY is the baseline of the month label row.
	MonthLabelY int
	// DayLabelX is the right edge (text-anchor end) of the weekday labels.
	DayLabelX int
	// LegendY is the baseline of the legend text; swatches sit just above it.
	LegendY int
	// LegendX is the left edge of the first legend swatch.
	LegendX int
	// UsernameX, UsernameY anchor the caption's baseline at the grid's left edge.
	UsernameX int
	UsernameY int
}

// Compute lays out a chart with weekCount columns.
// Grid-only mode always wins: it disables every label, the legend and the caption.
func Compute(weekCount int, opts Options) Geometry {
	g := Geometry{
		WeekCount:    weekCount,
		CellSize:     opts.CellSize,
		Gap:          opts.Gap,
		Margin:       opts.Margin,
		ShowMonths:   opts.ShowMonths && !opts.GridOnly,
		ShowDays:     opts.ShowDays && !opts.GridOnly,
		ShowLegend:   opts.ShowLegend && !opts.GridOnly,
		ShowUsername: opts.ShowUsername && !opts.GridOnly,
	}

	pitch := g.CellSize + g.Gap

	g.Width = weekCount*pitch + 2*g.Margin
	if g.ShowDays {
		g.Width += DayLabelWidth
	}

	g.Height = rows*g.CellSize + (rows-1)*g.Gap + 2*g.Margin
	if g.ShowMonths {
		g.Height += MonthLabelHeight
	}
	if g.ShowLegend {
		g.Height += LegendHeight
	}
	if g.ShowUsername {
		g.Height += UsernameHeight
	}

	g.GridX = g.Margin
	if g.ShowDays {
		g.GridX += DayLabelWidth
	}
	g.GridY = g.Margin
	if g.ShowMonths {
		g.GridY += MonthLabelHeight
	}

	g.MonthLabelY = g.Margin + 15
	g.DayLabelX = g.GridX - 5

	// Bottom bands stack upward from the bottom margin: caption lowest, legend above it.
	bottom := g.Height - g.Margin
	if g.ShowUsername {
		g.UsernameX = g.GridX
		g.UsernameY = bottom - 6
		bottom -= UsernameHeight
	}
	if g.ShowLegend {
		g.LegendY = bottom - 6
		g.LegendX = g.GridRight() - LegendTextWidth - LegendPadding - g.LegendWidth()
	}

	return g
}

// GridRight is the x coordinate of the right edge of the last column.
func (g Geometry) GridRight() int {
	if g.WeekCount == 0 {
		return g.GridX
	}
	return g.GridX + g.WeekCount*(g.CellSize+g.Gap) - g.Gap
}

// GridBottom is the y coordinate of the bottom edge of the last row.
func (g Geometry) GridBottom() int {
	return g.GridY + rows*g.CellSize + (rows-1)*g.Gap
}

// Cell returns the top-left corner of the cell for a week column and weekday row.
func (g Geometry) Cell(week, day int) (x, y int) {
	pitch := g.CellSize + g.Gap
	return g.GridX + week*pitch, g.GridY + day*pitch
}

// ColumnX returns the left edge of a week column.
func (g Geometry) ColumnX(week int) int {
	x, _ := g.Cell(week, 0)
	return x
}

// DayLabelY returns the baseline of the label for weekday row day, centered on the row.
func (g Geometry) DayLabelY(day int) float64 {
	_, y := g.Cell(0, day)
	return float64(y) + float64(g.CellSize)/2 + 3
}

// LegendWidth is the total width of the five legend swatches and their gaps.
func (g Geometry) LegendWidth() int {
	const swatches = 5
	return swatches*LegendSwatch + (swatches-1)*g.Gap
}

// LegendSwatchX returns the left edge of legend swatch i.
func (g Geometry) LegendSwatchX(i int) int {
	return g.LegendX + i*(LegendSwatch+g.Gap)
}

// LegendSwatchY returns the top edge of every legend swatch.
func (g Geometry) LegendSwatchY() int {
	return g.LegendY - LegendSwatch + 1
}

// LegendLowX is the right edge of the "Less" marker.
func (g Geometry) LegendLowX() int {
	return g.LegendX - LegendPadding
}

// LegendHighX is the left edge of the "More" marker.
func (g Geometry) LegendHighX() int {
	return g.LegendX + g.LegendWidth() + LegendPadding
}
