// Package layout provides page geometry: sizes, margins and
// bottom-left-origin rectangles in PDF points.
package layout

import "math"

// Unit is a measurement unit expressed in points.
type Unit float64

const (
	Pt Unit = 1
	In Unit = 72
	Cm Unit = 72 / 2.54
	Mm Unit = 72 / 25.4
)

// ToPoints converts a value in the given unit to points.
func ToPoints(value float64, unit Unit) float64 {
	return value * float64(unit)
}

// PageSize holds page dimensions in points.
type PageSize struct {
	Width  float64
	Height float64
}

var (
	Letter = PageSize{612, 792}
	Legal  = PageSize{612, 1008}
	A4     = PageSize{595, 842}
)

// Landscape returns the size rotated into landscape orientation.
func (p PageSize) Landscape() PageSize {
	if p.Width < p.Height {
		return PageSize{p.Height, p.Width}
	}
	return p
}

// Point is a position on the page.
type Point struct {
	X, Y float64
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// Rect is a rectangle anchored at its bottom-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the right edge X coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Top returns the top edge Y coordinate.
func (r Rect) Top() float64 { return r.Y + r.Height }

// Translate moves the rectangle by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Inset shrinks the rectangle by the given amounts per side.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + bottom,
		Width:  math.Max(0, r.Width-left-right),
		Height: math.Max(0, r.Height-top-bottom),
	}
}

// Margins is the spacing reserved around page content.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// NewMargins builds margins from the four side values.
func NewMargins(top, right, bottom, left float64) Margins {
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}
}

// Horizontal returns left + right.
func (m Margins) Horizontal() float64 { return m.Left + m.Right }

// Vertical returns top + bottom.
func (m Margins) Vertical() float64 { return m.Top + m.Bottom }

// PageLayout couples a page size with its margins.
type PageLayout struct {
	Size    PageSize
	Margins Margins
}

// ContentArea returns the rectangle inside the margins.
func (p PageLayout) ContentArea() Rect {
	return Rect{
		X:      p.Margins.Left,
		Y:      p.Margins.Bottom,
		Width:  p.Size.Width - p.Margins.Horizontal(),
		Height: p.Size.Height - p.Margins.Vertical(),
	}
}

// MediaBox returns the full page rectangle.
func (p PageLayout) MediaBox() Rect {
	return Rect{Width: p.Size.Width, Height: p.Size.Height}
}
