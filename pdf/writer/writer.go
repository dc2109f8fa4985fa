// Package writer serializes PDF documents: full files and incremental
// update sections appended to existing ones.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Arconz/SnipeIT-Tools/pdf/filters"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
)

// ErrAlreadyWritten is returned when Write is called twice on the same
// writer.
var ErrAlreadyWritten = errors.New("document has already been written")

// PdfFileWriter builds a new PDF from scratch. Output is deterministic:
// identical object sequences produce identical bytes.
type PdfFileWriter struct {
	Version string

	objects    map[int]*generic.IndirectObject
	nextObjNum int

	root     *generic.DictionaryObject
	info     *generic.DictionaryObject
	pages    *generic.DictionaryObject
	pagesRef generic.Reference
	pageRefs []generic.Reference

	acroForm      *generic.DictionaryObject
	acroFormRef   generic.Reference
	fontResources *generic.DictionaryObject

	written bool
}

// NewPdfFileWriter creates a writer with an empty catalog and page
// tree. version defaults to 1.7.
func NewPdfFileWriter(version string) *PdfFileWriter {
	if version == "" {
		version = "1.7"
	}
	w := &PdfFileWriter{
		Version:    version,
		objects:    make(map[int]*generic.IndirectObject),
		nextObjNum: 1,
	}

	w.pages = generic.NewDictionary()
	w.pages.Set("Type", generic.NameObject("Pages"))
	w.pages.Set("Kids", generic.ArrayObject{})
	w.pages.Set("Count", generic.IntegerObject(0))
	w.pagesRef = w.AddObject(w.pages)

	w.root = generic.NewDictionary()
	w.root.Set("Type", generic.NameObject("Catalog"))
	w.root.Set("Pages", w.pagesRef)

	w.info = generic.NewDictionary()
	w.info.Set("Producer", generic.NewTextString("SnipeIT-Tools"))

	return w
}

// AddObject registers obj as the next indirect object and returns its
// reference.
func (w *PdfFileWriter) AddObject(obj generic.PdfObject) generic.Reference {
	objNum := w.nextObjNum
	w.nextObjNum++
	w.objects[objNum] = generic.NewIndirectObject(objNum, 0, obj)
	return generic.Reference{ObjectNumber: objNum}
}

// SetInfoEntry stores a text entry in the document info dictionary.
func (w *PdfFileWriter) SetInfoEntry(key, value string) {
	w.info.Set(key, generic.NewTextString(value))
}

// AddPage appends a page with the given media box, Flate-compressed
// content stream and widget annotation references.
func (w *PdfFileWriter) AddPage(mediaBox generic.Rectangle, contents []byte, annots []generic.Reference) (generic.Reference, error) {
	page := generic.NewDictionary()
	page.Set("Type", generic.NameObject("Page"))
	page.Set("Parent", w.pagesRef)
	page.Set("MediaBox", mediaBox.ToArray())
	page.Set("Resources", w.pageResources())

	if len(contents) > 0 {
		encoded, err := filters.FlateEncode(contents)
		if err != nil {
			return generic.Reference{}, fmt.Errorf("compressing page content: %w", err)
		}
		dict := generic.NewDictionary()
		dict.Set("Filter", generic.NameObject(filters.FlateName))
		stream := generic.NewStream(dict, encoded)
		page.Set("Contents", w.AddObject(stream))
	}

	if len(annots) > 0 {
		arr := make(generic.ArrayObject, len(annots))
		for i, ref := range annots {
			arr[i] = ref
		}
		page.Set("Annots", arr)
	}

	pageRef := w.AddObject(page)
	w.pageRefs = append(w.pageRefs, pageRef)

	kids := w.pages.GetArray("Kids")
	w.pages.Set("Kids", append(kids, pageRef))
	w.pages.Set("Count", generic.IntegerObject(len(w.pageRefs)))

	return pageRef, nil
}

// pageResources builds the shared resource dictionary referencing the
// form's default font when an AcroForm is present.
func (w *PdfFileWriter) pageResources() *generic.DictionaryObject {
	res := generic.NewDictionary()
	res.Set("ProcSet", generic.NewArray(generic.NameObject("PDF"), generic.NameObject("Text")))
	if w.fontResources != nil {
		res.Set("Font", w.fontResources)
	}
	return res
}

// SetAcroForm installs the interactive form dictionary into the
// catalog and returns its reference.
func (w *PdfFileWriter) SetAcroForm(acro *generic.DictionaryObject) generic.Reference {
	w.acroForm = acro
	w.acroFormRef = w.AddObject(acro)
	w.root.Set("AcroForm", w.acroFormRef)
	return w.acroFormRef
}

// AcroForm returns the installed form dictionary, or nil.
func (w *PdfFileWriter) AcroForm() *generic.DictionaryObject { return w.acroForm }

// AddFormField adds a field/widget dictionary as an object, appends it
// to the AcroForm field list and returns the reference the caller must
// attach to the page's Annots.
func (w *PdfFileWriter) AddFormField(field *generic.DictionaryObject) (generic.Reference, error) {
	if w.acroForm == nil {
		return generic.Reference{}, errors.New("no AcroForm installed")
	}
	ref := w.AddObject(field)
	fields := w.acroForm.GetArray("Fields")
	w.acroForm.Set("Fields", append(fields, ref))
	return ref, nil
}

// SetFontResources installs the /Font dictionary shared by all pages,
// keyed by resource name (e.g. Helv) with font object references as
// values. Must be called before AddPage.
func (w *PdfFileWriter) SetFontResources(fonts *generic.DictionaryObject) {
	w.fontResources = fonts
}

// PageCount returns the number of pages added so far.
func (w *PdfFileWriter) PageCount() int { return len(w.pageRefs) }

// PageRef returns the reference of an already added page.
func (w *PdfFileWriter) PageRef(index int) (generic.Reference, error) {
	if index < 0 || index >= len(w.pageRefs) {
		return generic.Reference{}, fmt.Errorf("page index %d out of range", index)
	}
	return w.pageRefs[index], nil
}

// Write serializes the document. The file ID is derived from the body
// bytes, so identical documents serialize identically.
func (w *PdfFileWriter) Write(out io.Writer) error {
	if w.written {
		return ErrAlreadyWritten
	}
	w.written = true

	rootRef := w.AddObject(w.root)
	infoRef := w.AddObject(w.info)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", w.Version)
	// binary marker comment
	buf.Write([]byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'})

	offsets := make(map[int]int64, len(w.objects))
	for objNum := 1; objNum < w.nextObjNum; objNum++ {
		obj := w.objects[objNum]
		if obj == nil {
			continue
		}
		offsets[objNum] = int64(buf.Len())
		if err := obj.Write(&buf); err != nil {
			return err
		}
	}

	fileID := generic.ComputeFileID(buf.Bytes())

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 %d\n", w.nextObjNum)
	buf.WriteString("0000000000 65535 f \n")
	for objNum := 1; objNum < w.nextObjNum; objNum++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[objNum])
	}

	trailer := generic.NewDictionary()
	trailer.Set("Size", generic.IntegerObject(w.nextObjNum))
	trailer.Set("Root", rootRef)
	trailer.Set("Info", infoRef)
	trailer.Set("ID", generic.ArrayObject{
		generic.NewHexString(fileID),
		generic.NewHexString(fileID),
	})

	buf.WriteString("trailer\n")
	if err := trailer.Write(&buf); err != nil {
		return err
	}
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}
