package flow

import (
	"github.com/Arconz/SnipeIT-Tools/pdf/layout"
	"github.com/Arconz/SnipeIT-Tools/pdf/text"
)

// Spacer is vertical whitespace.
type Spacer struct {
	Height float64
}

func (s Spacer) Wrap(availWidth, availHeight float64) (float64, float64) {
	return availWidth, s.Height
}

func (s Spacer) Draw(c *Canvas) error { return nil }

// Paragraph is a block of word-wrapped text. When Link is set the
// whole paragraph becomes a URI link.
type Paragraph struct {
	Text       string
	Style      text.Style
	Link       string
	SpaceAfter float64

	lines []string
}

func (p *Paragraph) Wrap(availWidth, availHeight float64) (float64, float64) {
	p.lines = p.Style.Wrap(p.Text, availWidth)
	return availWidth, float64(len(p.lines))*p.Style.LineHeight() + p.SpaceAfter
}

func (p *Paragraph) Draw(c *Canvas) error {
	lineHeight := p.Style.LineHeight()
	ascent := p.Style.Font.Ascender * p.Style.Size / 1000
	top := c.Height
	for i, line := range p.lines {
		baseline := top - float64(i)*lineHeight - ascent
		c.DrawText(0, baseline, p.Style, line)
	}
	if p.Link != "" {
		c.AddLink(p.Link, layout.Rect{
			X: 0, Y: p.SpaceAfter,
			Width: c.Width, Height: c.Height - p.SpaceAfter,
		})
	}
	return nil
}

// WidgetSpec describes a form widget embedded in a table cell.
type WidgetSpec struct {
	// Choice selects a combo box; otherwise a text input is placed.
	Choice  bool
	Name    string
	Tooltip string
	Options []string
	Value   string
	Width   float64
	Height  float64
}

// Cell is one table cell: static text, a form widget, or both stacked
// is not supported; Widget wins when set.
type Cell struct {
	Text   string
	Widget *WidgetSpec
}

// TextCell is shorthand for a plain text cell.
func TextCell(s string) Cell { return Cell{Text: s} }

// Table lays out rows of fixed-width columns. The header row repeats
// after every page break.
type Table struct {
	// ColumnWidths are absolute widths in points, one per column.
	ColumnWidths []float64

	Header      []string
	HeaderStyle text.Style
	HeaderFill  text.Color

	Rows      [][]Cell
	CellStyle text.Style
	RowFill   text.Color

	// Padding is applied inside every cell on all sides.
	Padding float64
}

func (t *Table) padding() float64 {
	if t.Padding > 0 {
		return t.Padding
	}
	return 3
}

func (t *Table) headerHeight() float64 {
	if len(t.Header) == 0 {
		return 0
	}
	return t.HeaderStyle.LineHeight() + 2*t.padding()
}

// rowHeight is the tallest cell in the row: wrapped text lines or the
// widget box, plus padding.
func (t *Table) rowHeight(row []Cell) float64 {
	pad := t.padding()
	h := t.CellStyle.LineHeight()
	for i, cell := range row {
		if i >= len(t.ColumnWidths) {
			break
		}
		if cell.Widget != nil {
			if cell.Widget.Height > h {
				h = cell.Widget.Height
			}
			continue
		}
		lines := t.CellStyle.Wrap(cell.Text, t.ColumnWidths[i]-2*pad)
		if lh := float64(len(lines)) * t.CellStyle.LineHeight(); lh > h {
			h = lh
		}
	}
	return h + 2*pad
}

func (t *Table) totalWidth() float64 {
	var w float64
	for _, cw := range t.ColumnWidths {
		w += cw
	}
	return w
}

func (t *Table) Wrap(availWidth, availHeight float64) (float64, float64) {
	h := t.headerHeight()
	for _, row := range t.Rows {
		h += t.rowHeight(row)
	}
	return t.totalWidth(), h
}

// Split breaks the table so at least one data row stays with the
// header. The tail repeats the header on the next page.
func (t *Table) Split(availWidth, availHeight float64) (Flowable, Flowable, bool) {
	used := t.headerHeight()
	fit := 0
	for _, row := range t.Rows {
		rh := t.rowHeight(row)
		if used+rh > availHeight {
			break
		}
		used += rh
		fit++
	}
	if fit == 0 || fit == len(t.Rows) {
		return nil, nil, false
	}
	head := *t
	head.Rows = t.Rows[:fit]
	tail := *t
	tail.Rows = t.Rows[fit:]
	return &head, &tail, true
}

func (t *Table) Draw(c *Canvas) error {
	pad := t.padding()
	top := c.Height

	if len(t.Header) > 0 {
		hh := t.headerHeight()
		c.FillRect(layout.Rect{X: 0, Y: top - hh, Width: t.totalWidth(), Height: hh}, t.HeaderFill)
		x := 0.0
		ascent := t.HeaderStyle.Font.Ascender * t.HeaderStyle.Size / 1000
		for i, label := range t.Header {
			if i >= len(t.ColumnWidths) {
				break
			}
			c.DrawText(x+pad, top-pad-ascent, t.HeaderStyle, label)
			x += t.ColumnWidths[i]
		}
		top -= hh
	}

	for _, row := range t.Rows {
		rh := t.rowHeight(row)
		c.FillRect(layout.Rect{X: 0, Y: top - rh, Width: t.totalWidth(), Height: rh}, t.RowFill)
		x := 0.0
		for i, cell := range row {
			if i >= len(t.ColumnWidths) {
				break
			}
			if err := t.drawCell(c, cell, x, top, rh, t.ColumnWidths[i]); err != nil {
				return err
			}
			x += t.ColumnWidths[i]
		}
		top -= rh
	}
	return nil
}

func (t *Table) drawCell(c *Canvas, cell Cell, x, top, rowHeight, colWidth float64) error {
	pad := t.padding()
	if w := cell.Widget; w != nil {
		r := layout.Rect{
			X:      x + pad,
			Y:      top - (rowHeight+w.Height)/2,
			Width:  w.Width,
			Height: w.Height,
		}
		if w.Choice {
			return c.AddChoiceField(w.Name, w.Tooltip, w.Options, w.Value, r)
		}
		return c.AddTextField(w.Name, w.Tooltip, w.Value, r)
	}

	ascent := t.CellStyle.Font.Ascender * t.CellStyle.Size / 1000
	lines := t.CellStyle.Wrap(cell.Text, colWidth-2*pad)
	for i, line := range lines {
		baseline := top - pad - ascent - float64(i)*t.CellStyle.LineHeight()
		c.DrawText(x+pad, baseline, t.CellStyle, line)
	}
	return nil
}

// SignatureAnchor records where a signature zone landed during layout.
type SignatureAnchor struct {
	X, Y          float64
	Width, Height float64
	// Page is the 1-based page number the zone was drawn on.
	Page int
}

// SignatureZone reserves a shaded box for a later signature field.
// After the build pass, Anchor holds the zone's absolute position.
type SignatureZone struct {
	Width      float64
	Height     float64
	Background text.Color
	Label      string
	LabelStyle text.Style

	Anchor SignatureAnchor
}

func (z *SignatureZone) Wrap(availWidth, availHeight float64) (float64, float64) {
	return z.Width, z.Height
}

func (z *SignatureZone) Draw(c *Canvas) error {
	c.FillRect(layout.Rect{Width: z.Width, Height: z.Height}, z.Background)
	if z.Label != "" {
		ascent := z.LabelStyle.Font.Ascender * z.LabelStyle.Size / 1000
		c.DrawText(2, z.Height-2-ascent, z.LabelStyle, z.Label)
	}
	x, y := c.AbsolutePosition(0, 0)
	z.Anchor = SignatureAnchor{
		X:      x,
		Y:      y,
		Width:  z.Width,
		Height: z.Height,
		Page:   c.PageNumber(),
	}
	return nil
}
