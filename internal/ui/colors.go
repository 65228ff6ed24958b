package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/taskcal/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	box   lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Stats renders run counters in a box, coloring created events green and errors red.
func (p *Palette) Stats(stats *models.RunStats) string {
	errs := fmt.Sprintf("%d", stats.Errors)
	if stats.Errors > 0 {
		errs = p.err.Render(errs)
	}

	body := fmt.Sprintf(
		"Tasks found:     %d\nEvents created:  %s\nAlready synced:  %d\nErrors:          %s",
		stats.TasksFound,
		p.ok.Render(fmt.Sprintf("%d", stats.EventsCreated)),
		stats.AlreadySynced,
		errs,
	)
	return p.box.Render(body)
}
