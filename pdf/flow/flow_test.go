package flow

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Arconz/SnipeIT-Tools/pdf/form"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/layout"
	"github.com/Arconz/SnipeIT-Tools/pdf/reader"
	"github.com/Arconz/SnipeIT-Tools/pdf/text"
)

func testPageLayout() layout.PageLayout {
	return layout.PageLayout{
		Size:    layout.Letter,
		Margins: layout.NewMargins(18, 24, 18, 24),
	}
}

func bodyStyle() text.Style {
	return text.Style{Font: text.Helvetica, Size: 9, Color: text.Black}
}

func TestBuildSinglePage(t *testing.T) {
	doc := NewDocTemplate(testPageLayout())
	data, err := doc.Build([]Flowable{
		&Paragraph{Text: "Equipment loan agreement", Style: bodyStyle()},
		Spacer{Height: 12},
		&Paragraph{Text: "Please review the assigned items below.", Style: bodyStyle()},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("re-reading built document: %v", err)
	}
	if r.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", r.PageCount())
	}
}

func TestBuildEmptyStory(t *testing.T) {
	doc := NewDocTemplate(testPageLayout())
	if _, err := doc.Build(nil); err != ErrEmptyStory {
		t.Fatalf("Build err = %v, want ErrEmptyStory", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	build := func() []byte {
		doc := NewDocTemplate(testPageLayout())
		zone := &SignatureZone{Width: 216, Height: 36, Background: text.Hex("#D3D3D3")}
		data, err := doc.Build([]Flowable{
			&Paragraph{Text: "repeatable output check", Style: bodyStyle()},
			zone,
		})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return data
	}
	if !bytes.Equal(build(), build()) {
		t.Fatal("identical stories produced different bytes")
	}
}

func TestSignatureZoneAnchor(t *testing.T) {
	doc := NewDocTemplate(testPageLayout())
	zone := &SignatureZone{Width: 216, Height: 36, Background: text.Hex("#D3D3D3")}
	if _, err := doc.Build([]Flowable{
		&Paragraph{Text: "sign below", Style: bodyStyle()},
		zone,
	}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := zone.Anchor
	if a.Page != 1 {
		t.Errorf("Anchor.Page = %d, want 1", a.Page)
	}
	if a.Width != 216 || a.Height != 36 {
		t.Errorf("Anchor size = %vx%v, want 216x36", a.Width, a.Height)
	}
	if a.X != 24 {
		t.Errorf("Anchor.X = %v, want left margin 24", a.X)
	}
	if a.Y <= 0 || a.Y >= 792 {
		t.Errorf("Anchor.Y = %v, outside page", a.Y)
	}
}

func TestSignatureZoneAnchorOnLaterPage(t *testing.T) {
	story := []Flowable{}
	for i := 0; i < 120; i++ {
		story = append(story, &Paragraph{
			Text:  fmt.Sprintf("filler line %d", i),
			Style: bodyStyle(),
		}, Spacer{Height: 4})
	}
	zone := &SignatureZone{Width: 216, Height: 36, Background: text.Hex("#D3D3D3")}
	story = append(story, zone)

	doc := NewDocTemplate(testPageLayout())
	data, err := doc.Build(story)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("re-reading: %v", err)
	}
	if r.PageCount() < 2 {
		t.Fatalf("PageCount = %d, want at least 2", r.PageCount())
	}
	if zone.Anchor.Page != r.PageCount() {
		t.Errorf("Anchor.Page = %d, want last page %d", zone.Anchor.Page, r.PageCount())
	}
}

func TestTableSplitsAcrossPagesWithHeader(t *testing.T) {
	table := &Table{
		ColumnWidths: []float64{200, 200},
		Header:       []string{"Item", "Serial"},
		HeaderStyle:  text.Style{Font: text.HelveticaBold, Size: 9, Color: text.White},
		HeaderFill:   text.Hex("#041E42"),
		CellStyle:    bodyStyle(),
		RowFill:      text.Hex("#EEEEEE"),
	}
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []Cell{
			TextCell(fmt.Sprintf("Item %d", i)),
			TextCell(fmt.Sprintf("SN-%04d", i)),
		})
	}

	doc := NewDocTemplate(testPageLayout())
	data, err := doc.Build([]Flowable{table})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("re-reading: %v", err)
	}
	if r.PageCount() < 2 {
		t.Fatalf("PageCount = %d, want at least 2", r.PageCount())
	}
}

func TestTableWidgetCellsBecomeFormFields(t *testing.T) {
	table := &Table{
		ColumnWidths: []float64{200, 100},
		Header:       []string{"Asset", "Status"},
		HeaderStyle:  text.Style{Font: text.HelveticaBold, Size: 9, Color: text.White},
		HeaderFill:   text.Hex("#041E42"),
		CellStyle:    bodyStyle(),
		RowFill:      text.Hex("#EEEEEE"),
		Rows: [][]Cell{
			{
				TextCell("Laptop"),
				{Widget: &WidgetSpec{
					Choice:  true,
					Name:    "Asset Status 1234",
					Options: []string{"", "Present", "Missing", "Returned", "Other"},
					Value:   "Present",
					Width:   80,
					Height:  14,
				}},
			},
		},
	}

	doc := NewDocTemplate(testPageLayout())
	data, err := doc.Build([]Flowable{table})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("re-reading: %v", err)
	}
	acro, err := r.AcroForm()
	if err != nil {
		t.Fatalf("AcroForm: %v", err)
	}
	fields := acro.GetArray("Fields")
	if len(fields) != 1 {
		t.Fatalf("Fields has %d entries, want 1", len(fields))
	}
	obj, err := r.Resolve(fields[0])
	if err != nil {
		t.Fatalf("resolving field: %v", err)
	}
	dict := obj.(*generic.DictionaryObject)
	if got := form.FieldName(dict); got != "Asset Status 1234" {
		t.Errorf("field name = %q", got)
	}
	if got := dict.GetName("FT"); got != "Ch" {
		t.Errorf("FT = %q, want Ch", got)
	}
	if len(dict.GetArray("Opt")) != 5 {
		t.Errorf("Opt has %d entries, want 5", len(dict.GetArray("Opt")))
	}

	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.GetArray("Annots")) != 1 {
		t.Errorf("page Annots has %d entries, want 1", len(page.GetArray("Annots")))
	}
}

func TestParagraphLinkAnnotation(t *testing.T) {
	doc := NewDocTemplate(testPageLayout())
	data, err := doc.Build([]Flowable{
		&Paragraph{
			Text:  "Acceptable Use Policy",
			Style: bodyStyle(),
			Link:  "https://example.org/aup",
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("re-reading: %v", err)
	}
	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	annots := page.GetArray("Annots")
	if len(annots) != 1 {
		t.Fatalf("Annots has %d entries, want 1", len(annots))
	}
	obj, err := r.Resolve(annots[0])
	if err != nil {
		t.Fatalf("resolving annot: %v", err)
	}
	dict := obj.(*generic.DictionaryObject)
	if got := dict.GetName("Subtype"); got != "Link" {
		t.Errorf("Subtype = %q, want Link", got)
	}
	action := dict.GetDict("A")
	if action == nil {
		t.Fatal("missing /A action")
	}
	uri, ok := action.Get("URI").(*generic.StringObject)
	if !ok || uri.Text() != "https://example.org/aup" {
		t.Errorf("URI = %v", action.Get("URI"))
	}
}
