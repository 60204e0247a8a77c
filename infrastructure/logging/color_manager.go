package logging

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var palette = []lipgloss.Color{
	"#8BE9FD", "#F1FA8C", "#50FA7B", "#FF79C6",
	"#BD93F9", "#FFB86C", "#66D9EF", "#A6E22E",
	"#E6DB74", "#FD971F", "#AE81FF",
}

// exchangePalette gives every exchange ID a stable color so that the
// interleaved lines of concurrent exchanges can be told apart.
type exchangePalette struct {
	mu        sync.Mutex
	next      uint32
	recent    map[string]uint32
	order     []string
	maxRecent int
}

var globalPalette = newExchangePalette(20)

func newExchangePalette(maxRecent int) *exchangePalette {
	return &exchangePalette{
		recent:    make(map[string]uint32),
		maxRecent: maxRecent,
	}
}

// Style returns the style assigned to id.
func (p *exchangePalette) Style(id string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.color(id)).Bold(true)
}

func (p *exchangePalette) color(id string) lipgloss.Color {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.recent[id]; ok {
		return palette[idx]
	}

	idx := p.next % uint32(len(palette))
	p.next++
	p.recent[id] = idx
	p.order = append(p.order, id)

	// 淘汰最早的
	if len(p.order) > p.maxRecent {
		delete(p.recent, p.order[0])
		p.order = p.order[1:]
	}
	return palette[idx]
}
