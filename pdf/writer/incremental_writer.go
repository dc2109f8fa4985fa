package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/reader"
)

// ErrNoChanges is returned when an incremental write is attempted with
// no modified or added objects.
var ErrNoChanges = errors.New("no changes to write")

// IncrementalPdfFileWriter appends an update section to an existing
// document. The original bytes are never touched; modified and new
// objects go into a new body with an xref section chaining back via
// Prev.
type IncrementalPdfFileWriter struct {
	Reader *reader.PdfFileReader

	modified   map[int]*generic.IndirectObject
	nextObjNum int
}

// NewIncrementalPdfFileWriter wraps an already parsed document.
func NewIncrementalPdfFileWriter(r *reader.PdfFileReader) *IncrementalPdfFileWriter {
	return &IncrementalPdfFileWriter{
		Reader:     r,
		modified:   make(map[int]*generic.IndirectObject),
		nextObjNum: r.MaxObjectNumber() + 1,
	}
}

// GetObject resolves an object number, preferring the in-flight
// modified version over the original document's.
func (w *IncrementalPdfFileWriter) GetObject(objNum int) (generic.PdfObject, error) {
	if obj, ok := w.modified[objNum]; ok {
		return obj.Object, nil
	}
	return w.Reader.GetObject(objNum)
}

// Resolve follows obj if it is a reference, through the modified
// overlay first.
func (w *IncrementalPdfFileWriter) Resolve(obj generic.PdfObject) (generic.PdfObject, error) {
	if ref, ok := obj.(generic.Reference); ok {
		return w.GetObject(ref.ObjectNumber)
	}
	return obj, nil
}

// AddObject registers a brand new object and returns its reference.
func (w *IncrementalPdfFileWriter) AddObject(obj generic.PdfObject) generic.Reference {
	objNum := w.nextObjNum
	w.nextObjNum++
	w.modified[objNum] = generic.NewIndirectObject(objNum, 0, obj)
	return generic.Reference{ObjectNumber: objNum}
}

// UpdateObject schedules a replacement for an existing object number.
func (w *IncrementalPdfFileWriter) UpdateObject(objNum int, obj generic.PdfObject) {
	w.modified[objNum] = generic.NewIndirectObject(objNum, 0, obj)
}

// HasChanges reports whether anything would be written.
func (w *IncrementalPdfFileWriter) HasChanges() bool { return len(w.modified) > 0 }

func (w *IncrementalPdfFileWriter) populateTrailer() (*generic.DictionaryObject, error) {
	trailer := generic.NewDictionary()
	trailer.Set("Size", generic.IntegerObject(w.nextObjNum))
	trailer.Set("Prev", generic.IntegerObject(w.Reader.LastXRefOffset()))

	rootRef, err := w.Reader.RootRef()
	if err != nil {
		return nil, err
	}
	trailer.Set("Root", rootRef)

	if infoRef, ok := w.Reader.Trailer.GetReference("Info"); ok {
		trailer.Set("Info", infoRef)
	}
	// Carry the original ID pair forward so the document keeps its
	// identity across updates.
	if id := w.Reader.Trailer.GetArray("ID"); len(id) == 2 {
		trailer.Set("ID", id)
	}
	return trailer, nil
}

// writeUpdateSection serializes the modified objects, xref and trailer
// into buf. baseOffset is the byte position the section will start at
// in the final file.
func (w *IncrementalPdfFileWriter) writeUpdateSection(buf *bytes.Buffer, baseOffset int64) error {
	objNums := make([]int, 0, len(w.modified))
	for objNum := range w.modified {
		objNums = append(objNums, objNum)
	}
	sort.Ints(objNums)

	offsets := make(map[int]int64, len(objNums))
	for _, objNum := range objNums {
		offsets[objNum] = baseOffset + int64(buf.Len())
		if err := w.modified[objNum].Write(buf); err != nil {
			return err
		}
	}

	xrefOffset := baseOffset + int64(buf.Len())
	buf.WriteString("xref\n")
	// Group consecutive object numbers into xref subsections.
	for i := 0; i < len(objNums); {
		j := i
		for j+1 < len(objNums) && objNums[j+1] == objNums[j]+1 {
			j++
		}
		fmt.Fprintf(buf, "%d %d\n", objNums[i], j-i+1)
		for _, objNum := range objNums[i : j+1] {
			fmt.Fprintf(buf, "%010d 00000 n \n", offsets[objNum])
		}
		i = j + 1
	}

	trailer, err := w.populateTrailer()
	if err != nil {
		return err
	}
	buf.WriteString("trailer\n")
	if err := trailer.Write(buf); err != nil {
		return err
	}
	fmt.Fprintf(buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return nil
}

// Write emits the full updated document: the original bytes followed
// by the new update section.
func (w *IncrementalPdfFileWriter) Write(out io.Writer) error {
	if !w.HasChanges() {
		return ErrNoChanges
	}
	original := w.Reader.Data()
	if _, err := out.Write(original); err != nil {
		return err
	}
	return w.WriteUpdatedSection(out, int64(len(original)))
}

// WriteUpdatedSection emits only the update section, with object
// offsets computed relative to baseOffset. Useful for appending to a
// file already on disk.
func (w *IncrementalPdfFileWriter) WriteUpdatedSection(out io.Writer, baseOffset int64) error {
	if !w.HasChanges() {
		return ErrNoChanges
	}
	var buf bytes.Buffer
	// A newline keeps the section separated if the original does not
	// end with one.
	original := w.Reader.Data()
	if baseOffset == int64(len(original)) && len(original) > 0 && original[len(original)-1] != '\n' {
		buf.WriteByte('\n')
	}
	if err := w.writeUpdateSection(&buf, baseOffset); err != nil {
		return err
	}
	_, err := out.Write(buf.Bytes())
	return err
}
