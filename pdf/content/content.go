// Package content builds PDF content streams through a fluent operator
// API.
package content

import (
	"bytes"
	"fmt"

	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
)

// Operator is a PDF content stream operator.
type Operator string

const (
	OpSaveState    Operator = "q"
	OpRestoreState Operator = "Q"
	OpSetCTM       Operator = "cm"
	OpSetLineWidth Operator = "w"

	OpMoveTo    Operator = "m"
	OpLineTo    Operator = "l"
	OpRectangle Operator = "re"

	OpStroke        Operator = "S"
	OpFill          Operator = "f"
	OpFillAndStroke Operator = "B"

	OpBeginText Operator = "BT"
	OpEndText   Operator = "ET"
	OpSetFont   Operator = "Tf"
	OpTextMove  Operator = "Td"
	OpShowText  Operator = "Tj"

	OpSetStrokeGray Operator = "G"
	OpSetFillGray   Operator = "g"
	OpSetStrokeRGB  Operator = "RG"
	OpSetFillRGB    Operator = "rg"
)

// Builder accumulates content stream operations. All methods return the
// builder for chaining.
type Builder struct {
	buf bytes.Buffer
}

// NewBuilder creates an empty content stream builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) op(operator Operator, operands ...float64) *Builder {
	for _, v := range operands {
		b.buf.WriteString(generic.FormatNumber(v))
		b.buf.WriteByte(' ')
	}
	b.buf.WriteString(string(operator))
	b.buf.WriteByte('\n')
	return b
}

// SaveState pushes the graphics state.
func (b *Builder) SaveState() *Builder { return b.op(OpSaveState) }

// RestoreState pops the graphics state.
func (b *Builder) RestoreState() *Builder { return b.op(OpRestoreState) }

// Translate concatenates a translation matrix.
func (b *Builder) Translate(dx, dy float64) *Builder {
	return b.op(OpSetCTM, 1, 0, 0, 1, dx, dy)
}

// SetLineWidth sets the stroke width.
func (b *Builder) SetLineWidth(w float64) *Builder { return b.op(OpSetLineWidth, w) }

// MoveTo starts a new subpath at x, y.
func (b *Builder) MoveTo(x, y float64) *Builder { return b.op(OpMoveTo, x, y) }

// LineTo appends a line segment to x, y.
func (b *Builder) LineTo(x, y float64) *Builder { return b.op(OpLineTo, x, y) }

// Rect appends a rectangle subpath.
func (b *Builder) Rect(x, y, w, h float64) *Builder { return b.op(OpRectangle, x, y, w, h) }

// Fill fills the current path.
func (b *Builder) Fill() *Builder { return b.op(OpFill) }

// Stroke strokes the current path.
func (b *Builder) Stroke() *Builder { return b.op(OpStroke) }

// FillAndStroke fills then strokes the current path.
func (b *Builder) FillAndStroke() *Builder { return b.op(OpFillAndStroke) }

// SetFillRGB sets the nonstroking color.
func (b *Builder) SetFillRGB(r, g, bl float64) *Builder { return b.op(OpSetFillRGB, r, g, bl) }

// SetStrokeRGB sets the stroking color.
func (b *Builder) SetStrokeRGB(r, g, bl float64) *Builder { return b.op(OpSetStrokeRGB, r, g, bl) }

// SetFillGray sets the nonstroking gray level.
func (b *Builder) SetFillGray(level float64) *Builder { return b.op(OpSetFillGray, level) }

// SetStrokeGray sets the stroking gray level.
func (b *Builder) SetStrokeGray(level float64) *Builder { return b.op(OpSetStrokeGray, level) }

// BeginText opens a text object.
func (b *Builder) BeginText() *Builder { return b.op(OpBeginText) }

// EndText closes the current text object.
func (b *Builder) EndText() *Builder { return b.op(OpEndText) }

// SetFont selects the font resource and size.
func (b *Builder) SetFont(resource string, size float64) *Builder {
	generic.NameObject(resource).Write(&b.buf)
	fmt.Fprintf(&b.buf, " %s %s\n", generic.FormatNumber(size), OpSetFont)
	return b
}

// TextPosition moves the text line matrix to x, y.
func (b *Builder) TextPosition(x, y float64) *Builder { return b.op(OpTextMove, x, y) }

// ShowText shows a pre-encoded string.
func (b *Builder) ShowText(encoded []byte) *Builder {
	s := &generic.StringObject{Value: encoded}
	s.Write(&b.buf)
	b.buf.WriteString(" " + string(OpShowText) + "\n")
	return b
}

// Len returns the number of bytes emitted so far.
func (b *Builder) Len() int { return b.buf.Len() }

// Bytes returns the accumulated content stream.
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }
