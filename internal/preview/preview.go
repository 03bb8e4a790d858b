// Package preview draws a contribution calendar in the terminal.
package preview

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/contribgraph/contribgraph-server/internal/calendar"
	"github.com/contribgraph/contribgraph-server/internal/color"
	"github.com/contribgraph/contribgraph-server/internal/domain"
)

// Block is the glyph drawn for one day.
const Block = "■"

// cellWidth is the terminal columns used per week: the block and a space.
const cellWidth = 2

// dayGutter is the width of the weekday label column.
const dayGutter = 4

// Options controls the preview.
type Options struct {
	// Renderer decides the color profile. Nil means stdout's.
	Renderer *lipgloss.Renderer
	// Year replaces "the last year" in the summary line.
	Year       *int
	ShowMonths bool
	ShowDays   bool
	// Lang formats the summary count. Zero means English.
	Lang language.Tag
}

// DefaultOptions shows months and weekdays.
func DefaultOptions() Options {
	return Options{ShowMonths: true, ShowDays: true}
}

// Render draws cal with one row per weekday and one colored block per
// week, an optional month header and a summary line.
func Render(cal calendar.Dense, scale color.Scale, opts Options) string {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	base := r.NewStyle()
	var styles [color.Levels]lipgloss.Style
	for i, hex := range scale {
		styles[i] = base.Copy().Foreground(lipgloss.Color(hex))
	}
	label := base.Copy().Faint(true)

	var b strings.Builder

	if opts.ShowMonths {
		header := monthHeader(cal)
		if opts.ShowDays {
			b.WriteString(strings.Repeat(" ", dayGutter))
		}
		b.WriteString(label.Render(strings.TrimRight(header, " ")))
		b.WriteByte('\n')
	}

	for day := range calendar.DaysPerWeek {
		if opts.ShowDays {
			b.WriteString(label.Render(dayLabel(time.Weekday(day))))
		}
		for w := range cal.WeekCount() {
			rec := cal.Week(w)[day]
			b.WriteString(styles[domain.ClampLevel(rec.Level)].Render(Block))
			if w < cal.WeekCount()-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}

	b.WriteString(Summary(cal.Total(), opts.Year, opts.Lang))
	b.WriteByte('\n')
	return b.String()
}

// Summary formats the total line, e.g. "1,234 contributions in the last year".
func Summary(total int, year *int, lang language.Tag) string {
	if lang == language.Und {
		lang = language.English
	}
	p := message.NewPrinter(lang)

	noun := "contributions"
	if total == 1 {
		noun = "contribution"
	}
	if year != nil {
		return p.Sprintf("%d %s in %d", total, noun, *year)
	}
	return p.Sprintf("%d %s in the last year", total, noun)
}

// monthHeader places a month name above the first week that starts in a new
// month, skipping names that would overlap the previous one.
func monthHeader(cal calendar.Dense) string {
	line := []byte(strings.Repeat(" ", cal.WeekCount()*cellWidth))
	prev := ""
	free := 0
	for w := range cal.WeekCount() {
		first := cal.Week(w)[0].Date
		if len(first) < 7 || first[:7] == prev {
			continue
		}
		prev = first[:7]

		t, err := domain.ParseDate(first)
		if err != nil {
			continue
		}
		col := w * cellWidth
		name := t.Month().String()[:3]
		if col < free || col+len(name) > len(line) {
			continue
		}
		copy(line[col:], name)
		free = col + len(name) + 1
	}
	return string(line)
}

func dayLabel(d time.Weekday) string {
	switch d {
	case time.Monday, time.Wednesday, time.Friday:
		return d.String()[:3] + " "
	default:
		return strings.Repeat(" ", dayGutter)
	}
}
