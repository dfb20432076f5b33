// Package pager draws a line document and a viewport status row onto a
// tcell screen.
package pager

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/scrollwatch/internal/viewport"
)

// StatusRows is the number of rows the pager reserves below the content.
const StatusRows = 1

// Pager renders a document at a scroll offset.
type Pager struct {
	screen tcell.Screen
	doc    *Document
	theme  Theme
	title  string
}

// New creates a pager for doc on screen.
func New(screen tcell.Screen, doc *Document, theme Theme) *Pager {
	return &Pager{screen: screen, doc: doc, theme: theme}
}

// SetTitle sets the name shown at the start of the status row.
func (p *Pager) SetTitle(title string) {
	p.title = title
}

// SetTheme replaces the styles.
func (p *Pager) SetTheme(theme Theme) {
	p.theme = theme
}

// Document returns the document being paged.
func (p *Pager) Document() *Document {
	return p.doc
}

// Draw paints the content at the snapshot's offset and the status row, then
// shows the screen. settled selects the idle status style.
func (p *Pager) Draw(snap viewport.Snapshot, settled bool) {
	w, h := p.screen.Size()
	p.screen.Clear()

	var x, y int
	if snap.Scroll != nil {
		x, y = snap.Scroll.X, snap.Scroll.Y
	}

	rows := max(h-StatusRows, 0)
	for row := 0; row < rows; row++ {
		p.drawLine(row, w, x, p.doc.Line(y+row), p.theme.Text)
	}

	if h > 0 {
		style := p.theme.Status
		if settled {
			style = p.theme.Idle
		}
		p.fillRow(h-1, w, style)
		p.drawLine(h-1, w, 0, p.statusText(snap, settled), style)
	}

	p.screen.Show()
}

// drawLine draws text on row starting skip cells into it. A wide cluster cut
// by the left edge is replaced by spaces.
func (p *Pager) drawLine(row, width, skip int, text string, style tcell.Style) {
	col := -skip
	g := uniseg.NewGraphemes(text)
	for g.Next() && col < width {
		runes := g.Runes()
		cw := g.Width()
		if cw == 0 {
			continue
		}
		switch {
		case col >= 0 && col+cw <= width:
			p.screen.SetContent(col, row, runes[0], runes[1:], style)
		case col < 0 && col+cw > 0:
			for c := 0; c < col+cw; c++ {
				p.screen.SetContent(c, row, ' ', nil, style)
			}
		}
		col += cw
	}
}

func (p *Pager) fillRow(row, width int, style tcell.Style) {
	for col := 0; col < width; col++ {
		p.screen.SetContent(col, row, ' ', nil, style)
	}
}

func (p *Pager) statusText(snap viewport.Snapshot, settled bool) string {
	var b strings.Builder
	if p.title != "" {
		b.WriteString(p.title)
		b.WriteString("  ")
	}
	b.WriteString(StatusLine(snap))
	if settled {
		b.WriteString("  [settled]")
	}
	return b.String()
}

// StatusLine summarises a snapshot, for example
//
//	↑ y:30 turn:50 Δ-20  → x:0 turn:0 Δ+0  80x23 of 80x1200
func StatusLine(snap viewport.Snapshot) string {
	var parts []string
	if s := snap.Scroll; s != nil {
		parts = append(parts,
			fmt.Sprintf("%s y:%d turn:%d Δ%+d", arrow(s.IsScrollingUp, s.IsScrollingDown, "↑", "↓"), s.Y, s.YTurn, s.YDTurn),
			fmt.Sprintf("%s x:%d turn:%d Δ%+d", arrow(s.IsScrollingLeft, s.IsScrollingRight, "←", "→"), s.X, s.XTurn, s.XDTurn),
		)
	}
	if d := snap.Dimensions; d != nil {
		parts = append(parts, fmt.Sprintf("%dx%d of %dx%d", d.ClientWidth, d.ClientHeight, d.DocumentWidth, d.DocumentHeight))
	}
	return strings.Join(parts, "  ")
}

// arrow picks a direction glyph. Before any movement both flags are false.
func arrow(towards, away bool, towardsGlyph, awayGlyph string) string {
	switch {
	case towards:
		return towardsGlyph
	case away:
		return awayGlyph
	default:
		return "·"
	}
}
