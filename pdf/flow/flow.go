// Package flow lays out a linear story of flowables across pages and
// produces a complete document. Widget annotations and absolute draw
// positions are resolved during the single layout pass, so callers can
// capture coordinates for later incremental updates.
package flow

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Arconz/SnipeIT-Tools/pdf/content"
	"github.com/Arconz/SnipeIT-Tools/pdf/form"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/layout"
	"github.com/Arconz/SnipeIT-Tools/pdf/text"
	"github.com/Arconz/SnipeIT-Tools/pdf/writer"
)

var ErrEmptyStory = errors.New("story has no flowables")

// Flowable is a block element that knows its own size and can draw
// itself onto a canvas.
type Flowable interface {
	// Wrap computes the size the flowable will occupy given the
	// available width and height.
	Wrap(availWidth, availHeight float64) (w, h float64)

	// Draw renders the flowable. The canvas origin is the flowable's
	// lower-left corner; y grows upward.
	Draw(c *Canvas) error
}

// Splittable is implemented by flowables that can break across a page
// boundary.
type Splittable interface {
	Flowable

	// Split returns the part that fits in availHeight and the
	// remainder for the next page. ok is false when no part fits.
	Split(availWidth, availHeight float64) (head, tail Flowable, ok bool)
}

// pageState accumulates one page's content stream and annotations.
type pageState struct {
	number  int // 1-based
	builder *content.Builder
	annots  []generic.Reference
	used    bool
}

// Canvas is handed to a flowable's Draw. Local coordinates are
// relative to the flowable's lower-left corner.
type Canvas struct {
	doc    *DocTemplate
	page   *pageState
	origin layout.Point

	// Width and Height are the box the flowable was given.
	Width, Height float64
}

// PageNumber returns the 1-based number of the page being drawn.
func (c *Canvas) PageNumber() int { return c.page.number }

// AbsolutePosition converts local coordinates to page coordinates.
func (c *Canvas) AbsolutePosition(x, y float64) (float64, float64) {
	return c.origin.X + x, c.origin.Y + y
}

// FillRect paints a solid rectangle.
func (c *Canvas) FillRect(r layout.Rect, col text.Color) {
	ax, ay := c.AbsolutePosition(r.X, r.Y)
	c.page.builder.
		SetFillRGB(col.R, col.G, col.B).
		Rect(ax, ay, r.Width, r.Height).
		Fill()
}

// StrokeRect outlines a rectangle.
func (c *Canvas) StrokeRect(r layout.Rect, col text.Color, lineWidth float64) {
	ax, ay := c.AbsolutePosition(r.X, r.Y)
	c.page.builder.
		SetStrokeRGB(col.R, col.G, col.B).
		SetLineWidth(lineWidth).
		Rect(ax, ay, r.Width, r.Height).
		Stroke()
}

// DrawText renders a single line with its baseline at (x, y).
func (c *Canvas) DrawText(x, y float64, style text.Style, s string) {
	ax, ay := c.AbsolutePosition(x, y)
	c.page.builder.
		BeginText().
		SetFont(fontResource(style.Font), style.Size).
		SetFillRGB(style.Color.R, style.Color.G, style.Color.B).
		TextPosition(ax, ay).
		ShowText(style.Font.Encode(s)).
		EndText()
}

// AddTextField places a text form field widget at r.
func (c *Canvas) AddTextField(name, tooltip, value string, r layout.Rect) error {
	spec := form.TextFieldSpec{
		Name:    name,
		Tooltip: tooltip,
		Value:   value,
		Rect:    c.widgetRect(r),
	}
	return c.addField(spec.Build())
}

// AddChoiceField places a combo box widget at r.
func (c *Canvas) AddChoiceField(name, tooltip string, options []string, value string, r layout.Rect) error {
	spec := form.ChoiceFieldSpec{
		Name:    name,
		Tooltip: tooltip,
		Options: options,
		Value:   value,
		Rect:    c.widgetRect(r),
	}
	return c.addField(spec.Build())
}

// AddLink overlays a URI link annotation on r.
func (c *Canvas) AddLink(url string, r layout.Rect) {
	action := generic.NewDictionary()
	action.Set("S", generic.NameObject("URI"))
	action.Set("URI", generic.NewLiteralString(url))

	annot := generic.NewDictionary()
	annot.Set("Type", generic.NameObject("Annot"))
	annot.Set("Subtype", generic.NameObject("Link"))
	rect := c.widgetRect(r)
	annot.Set("Rect", rect.ToArray())
	annot.Set("Border", generic.NewArray(
		generic.IntegerObject(0), generic.IntegerObject(0), generic.IntegerObject(0),
	))
	annot.Set("A", action)

	ref := c.doc.writer.AddObject(annot)
	c.page.annots = append(c.page.annots, ref)
}

func (c *Canvas) widgetRect(r layout.Rect) generic.Rectangle {
	ax, ay := c.AbsolutePosition(r.X, r.Y)
	return generic.Rectangle{LLX: ax, LLY: ay, URX: ax + r.Width, URY: ay + r.Height}
}

func (c *Canvas) addField(field *generic.DictionaryObject) error {
	ref, err := c.doc.writer.AddFormField(field)
	if err != nil {
		return err
	}
	c.page.annots = append(c.page.annots, ref)
	return nil
}

// fontResource maps standard fonts to their page resource names.
func fontResource(f *text.Font) string {
	switch f.BaseFont {
	case "Helvetica-Bold":
		return "HeBo"
	case "Helvetica-Oblique":
		return "HeOb"
	default:
		return form.FontResourceName
	}
}

// DocTemplate drives the layout pass: flowables are placed top to
// bottom inside the content area, breaking to a new page when one does
// not fit.
type DocTemplate struct {
	Page  layout.PageLayout
	Title string

	writer  *writer.PdfFileWriter
	current *pageState
	frame   layout.Rect
	cursorY float64
}

// NewDocTemplate creates a template for the given page geometry.
func NewDocTemplate(page layout.PageLayout) *DocTemplate {
	return &DocTemplate{Page: page}
}

// Build runs the layout pass over story and serializes the resulting
// document. Identical stories produce identical bytes.
func (d *DocTemplate) Build(story []Flowable) ([]byte, error) {
	if len(story) == 0 {
		return nil, ErrEmptyStory
	}

	d.writer = writer.NewPdfFileWriter("1.7")
	if d.Title != "" {
		d.writer.SetInfoEntry("Title", d.Title)
	}

	helvRef := d.writer.AddObject(form.StandardFontDictionary("Helvetica"))
	boldRef := d.writer.AddObject(form.StandardFontDictionary("Helvetica-Bold"))
	obliqueRef := d.writer.AddObject(form.StandardFontDictionary("Helvetica-Oblique"))
	fonts := generic.NewDictionary()
	fonts.Set(form.FontResourceName, helvRef)
	fonts.Set("HeBo", boldRef)
	fonts.Set("HeOb", obliqueRef)
	d.writer.SetFontResources(fonts)
	d.writer.SetAcroForm(form.NewAcroForm(helvRef))

	d.frame = d.Page.ContentArea()
	d.startPage(1)

	queue := make([]Flowable, len(story))
	copy(queue, story)

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if err := d.place(f, &queue); err != nil {
			return nil, err
		}
	}

	if err := d.flushPage(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := d.writer.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *DocTemplate) place(f Flowable, queue *[]Flowable) error {
	avail := d.cursorY - d.frame.Y
	w, h := f.Wrap(d.frame.Width, avail)

	if h > avail {
		if s, ok := f.(Splittable); ok {
			head, tail, split := s.Split(d.frame.Width, avail)
			if split {
				hw, hh := head.Wrap(d.frame.Width, avail)
				if err := d.drawAt(head, hw, hh); err != nil {
					return err
				}
				if err := d.pageBreak(); err != nil {
					return err
				}
				*queue = append([]Flowable{tail}, *queue...)
				return nil
			}
		}
		if d.current.used {
			if err := d.pageBreak(); err != nil {
				return err
			}
			avail = d.cursorY - d.frame.Y
			w, h = f.Wrap(d.frame.Width, avail)
		}
		// Taller than a whole page: draw anyway rather than loop.
	}

	return d.drawAt(f, w, h)
}

func (d *DocTemplate) drawAt(f Flowable, w, h float64) error {
	c := &Canvas{
		doc:    d,
		page:   d.current,
		origin: layout.Point{X: d.frame.X, Y: d.cursorY - h},
		Width:  w,
		Height: h,
	}
	if err := f.Draw(c); err != nil {
		return fmt.Errorf("drawing flowable on page %d: %w", d.current.number, err)
	}
	d.cursorY -= h
	d.current.used = true
	return nil
}

func (d *DocTemplate) startPage(number int) {
	d.current = &pageState{number: number, builder: content.NewBuilder()}
	d.cursorY = d.frame.Top()
}

func (d *DocTemplate) flushPage() error {
	box := d.Page.MediaBox()
	mediaBox := generic.Rectangle{LLX: box.X, LLY: box.Y, URX: box.Right(), URY: box.Top()}
	_, err := d.writer.AddPage(mediaBox, d.current.builder.Bytes(), d.current.annots)
	return err
}

func (d *DocTemplate) pageBreak() error {
	if err := d.flushPage(); err != nil {
		return err
	}
	d.startPage(d.current.number + 1)
	return nil
}
