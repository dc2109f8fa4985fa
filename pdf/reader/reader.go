// Package reader parses existing PDF files far enough to support
// incremental updates: header, classic xref chain, trailer, page tree
// and the interactive form dictionary.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
)

var (
	ErrNotAPDF         = errors.New("file does not start with a PDF header")
	ErrNoXRef          = errors.New("cannot locate cross-reference table")
	ErrXRefStream      = errors.New("cross-reference streams are not supported")
	ErrObjectNotFound  = errors.New("object not found")
	ErrPageOutOfRange  = errors.New("page index out of range")
	ErrNoAcroForm      = errors.New("document has no AcroForm")
	ErrMalformedObject = errors.New("malformed object")
)

// XRefEntry describes one slot of the cross-reference table.
type XRefEntry struct {
	Offset     int64
	Generation int
	InUse      bool
}

// PdfFileReader gives random access to the objects of a parsed PDF.
type PdfFileReader struct {
	// Version is the header version, e.g. "1.7".
	Version string

	// XRef maps object numbers to their newest xref entries.
	XRef map[int]*XRefEntry

	// XRefOffsets lists the xref section offsets, newest first.
	XRefOffsets []int64

	// Trailer is the newest trailer dictionary, with Prev chain merged
	// into XRef.
	Trailer *generic.TrailerDictionary

	data     []byte
	pageRefs []generic.Reference
	cache    map[int]generic.PdfObject
}

// NewPdfFileReader reads and parses a complete PDF from r.
func NewPdfFileReader(r io.Reader) (*PdfFileReader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewPdfFileReaderFromBytes(data)
}

// NewPdfFileReaderFromBytes parses a PDF held in memory. The reader
// keeps a reference to data; callers must not mutate it.
func NewPdfFileReaderFromBytes(data []byte) (*PdfFileReader, error) {
	r := &PdfFileReader{
		XRef:  make(map[int]*XRefEntry),
		data:  data,
		cache: make(map[int]generic.PdfObject),
	}
	if err := r.parseHeader(); err != nil {
		return nil, err
	}
	if err := r.parseXRefChain(); err != nil {
		return nil, err
	}
	if err := r.collectPages(); err != nil {
		return nil, fmt.Errorf("walking page tree: %w", err)
	}
	return r, nil
}

// Data returns the raw bytes the reader was built from.
func (r *PdfFileReader) Data() []byte { return r.data }

// LastXRefOffset returns the offset of the newest xref section.
func (r *PdfFileReader) LastXRefOffset() int64 {
	if len(r.XRefOffsets) == 0 {
		return 0
	}
	return r.XRefOffsets[0]
}

// MaxObjectNumber returns the highest object number in the xref table.
func (r *PdfFileReader) MaxObjectNumber() int {
	max := 0
	for objNum := range r.XRef {
		if objNum > max {
			max = objNum
		}
	}
	return max
}

func (r *PdfFileReader) parseHeader() error {
	head := r.data
	if len(head) > 1024 {
		head = head[:1024]
	}
	idx := bytes.Index(head, []byte("%PDF-"))
	if idx < 0 {
		return ErrNotAPDF
	}
	rest := head[idx+5:]
	end := 0
	for end < len(rest) && rest[end] != '\r' && rest[end] != '\n' {
		end++
	}
	r.Version = strings.TrimSpace(string(rest[:end]))
	if r.Version == "" {
		return ErrNotAPDF
	}
	return nil
}

// findStartXRef locates the startxref value near the end of the file.
func (r *PdfFileReader) findStartXRef() (int64, error) {
	tail := r.data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, ErrNoXRef
	}
	p := generic.NewParserFromBytes(tail)
	p.Seek(idx + len("startxref"))
	obj, err := p.ParseObject()
	if err != nil {
		return 0, fmt.Errorf("%w: bad startxref value", ErrNoXRef)
	}
	offset, ok := obj.(generic.IntegerObject)
	if !ok || int64(offset) < 0 || int64(offset) >= int64(len(r.data)) {
		return 0, fmt.Errorf("%w: startxref out of bounds", ErrNoXRef)
	}
	return int64(offset), nil
}

func (r *PdfFileReader) parseXRefChain() error {
	offset, err := r.findStartXRef()
	if err != nil {
		return err
	}

	seen := make(map[int64]bool)
	for {
		if seen[offset] {
			return fmt.Errorf("%w: xref chain loops", ErrNoXRef)
		}
		seen[offset] = true
		r.XRefOffsets = append(r.XRefOffsets, offset)

		trailer, err := r.parseXRefSection(int(offset))
		if err != nil {
			return err
		}
		if r.Trailer == nil {
			r.Trailer = &generic.TrailerDictionary{DictionaryObject: trailer}
		}
		prev, ok := trailer.GetInt("Prev")
		if !ok {
			return nil
		}
		offset = prev
	}
}

// parseXRefSection parses one classic xref table plus its trailer.
// Entries already present from newer sections win.
func (r *PdfFileReader) parseXRefSection(offset int) (*generic.DictionaryObject, error) {
	p := generic.NewParserFromBytes(r.data)
	p.Seek(offset)

	if tok := p.ReadToken(); tok != "xref" {
		// Probably an xref stream ("N 0 obj" at this offset).
		if _, err := strconv.Atoi(tok); err == nil {
			return nil, ErrXRefStream
		}
		return nil, fmt.Errorf("%w: expected 'xref' at offset %d, got %q", ErrNoXRef, offset, tok)
	}

	for {
		tok := p.ReadToken()
		if tok == "trailer" {
			break
		}
		start, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: bad subsection start %q", ErrNoXRef, tok)
		}
		count, err := strconv.Atoi(p.ReadToken())
		if err != nil {
			return nil, fmt.Errorf("%w: bad subsection count", ErrNoXRef)
		}
		for i := 0; i < count; i++ {
			entryOffset, err := strconv.ParseInt(p.ReadToken(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad entry offset", ErrNoXRef)
			}
			gen, err := strconv.Atoi(p.ReadToken())
			if err != nil {
				return nil, fmt.Errorf("%w: bad entry generation", ErrNoXRef)
			}
			kind := p.ReadToken()
			if kind != "n" && kind != "f" {
				return nil, fmt.Errorf("%w: bad entry type %q", ErrNoXRef, kind)
			}
			objNum := start + i
			if _, exists := r.XRef[objNum]; exists {
				continue
			}
			r.XRef[objNum] = &XRefEntry{
				Offset:     entryOffset,
				Generation: gen,
				InUse:      kind == "n",
			}
		}
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	trailer, ok := obj.(*generic.DictionaryObject)
	if !ok {
		return nil, fmt.Errorf("%w: trailer is not a dictionary", ErrNoXRef)
	}
	return trailer, nil
}

// GetObject returns the object with the given number, parsed from its
// xref offset. Results are cached.
func (r *PdfFileReader) GetObject(objNum int) (generic.PdfObject, error) {
	if obj, ok := r.cache[objNum]; ok {
		return obj, nil
	}
	entry, ok := r.XRef[objNum]
	if !ok || !entry.InUse {
		return nil, fmt.Errorf("%w: %d", ErrObjectNotFound, objNum)
	}
	if entry.Offset < 0 || entry.Offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("%w: offset of object %d out of bounds", ErrMalformedObject, objNum)
	}

	p := generic.NewParserFromBytes(r.data)
	p.Seek(int(entry.Offset))
	p.ResolveLength = func(ref generic.Reference) (int64, bool) {
		obj, err := r.GetObject(ref.ObjectNumber)
		if err != nil {
			return 0, false
		}
		if n, ok := obj.(generic.IntegerObject); ok {
			return int64(n), true
		}
		return 0, false
	}
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	if ind.ObjectNumber != objNum {
		return nil, fmt.Errorf("%w: expected object %d at offset %d, found %d",
			ErrMalformedObject, objNum, entry.Offset, ind.ObjectNumber)
	}
	r.cache[objNum] = ind.Object
	return ind.Object, nil
}

// Resolve dereferences obj when it is a reference, otherwise returns it
// unchanged.
func (r *PdfFileReader) Resolve(obj generic.PdfObject) (generic.PdfObject, error) {
	ref, ok := obj.(generic.Reference)
	if !ok {
		return obj, nil
	}
	return r.GetObject(ref.ObjectNumber)
}

// Root returns the document catalog.
func (r *PdfFileReader) Root() (*generic.DictionaryObject, error) {
	if r.Trailer == nil {
		return nil, ErrNoXRef
	}
	rootRef := r.Trailer.GetRoot()
	if rootRef == nil {
		return nil, fmt.Errorf("%w: trailer has no /Root", ErrMalformedObject)
	}
	obj, err := r.GetObject(rootRef.ObjectNumber)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(*generic.DictionaryObject)
	if !ok {
		return nil, fmt.Errorf("%w: catalog is not a dictionary", ErrMalformedObject)
	}
	return dict, nil
}

// RootRef returns the catalog reference from the trailer.
func (r *PdfFileReader) RootRef() (generic.Reference, error) {
	if r.Trailer == nil {
		return generic.Reference{}, ErrNoXRef
	}
	ref := r.Trailer.GetRoot()
	if ref == nil {
		return generic.Reference{}, fmt.Errorf("%w: trailer has no /Root", ErrMalformedObject)
	}
	return *ref, nil
}

func (r *PdfFileReader) collectPages() error {
	root, err := r.Root()
	if err != nil {
		return err
	}
	pagesRef, ok := root.GetReference("Pages")
	if !ok {
		return fmt.Errorf("%w: catalog has no /Pages reference", ErrMalformedObject)
	}
	visited := make(map[int]bool)
	return r.walkPageTree(pagesRef, visited)
}

func (r *PdfFileReader) walkPageTree(ref generic.Reference, visited map[int]bool) error {
	if visited[ref.ObjectNumber] {
		return fmt.Errorf("%w: page tree loops at object %d", ErrMalformedObject, ref.ObjectNumber)
	}
	visited[ref.ObjectNumber] = true

	obj, err := r.GetObject(ref.ObjectNumber)
	if err != nil {
		return err
	}
	node, ok := obj.(*generic.DictionaryObject)
	if !ok {
		return fmt.Errorf("%w: page tree node %d is not a dictionary", ErrMalformedObject, ref.ObjectNumber)
	}

	switch node.GetName("Type") {
	case "Pages":
		for _, kid := range node.GetArray("Kids") {
			kidRef, ok := kid.(generic.Reference)
			if !ok {
				return fmt.Errorf("%w: page tree kid is not a reference", ErrMalformedObject)
			}
			if err := r.walkPageTree(kidRef, visited); err != nil {
				return err
			}
		}
	case "Page":
		r.pageRefs = append(r.pageRefs, ref)
	default:
		return fmt.Errorf("%w: unexpected page tree node type %q", ErrMalformedObject, node.GetName("Type"))
	}
	return nil
}

// PageCount returns the number of pages found in the page tree.
func (r *PdfFileReader) PageCount() int { return len(r.pageRefs) }

// PageRef returns the reference of the page at index (0-based, in
// document order).
func (r *PdfFileReader) PageRef(index int) (generic.Reference, error) {
	if index < 0 || index >= len(r.pageRefs) {
		return generic.Reference{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, len(r.pageRefs))
	}
	return r.pageRefs[index], nil
}

// GetPage returns the page dictionary at index.
func (r *PdfFileReader) GetPage(index int) (*generic.DictionaryObject, error) {
	ref, err := r.PageRef(index)
	if err != nil {
		return nil, err
	}
	obj, err := r.GetObject(ref.ObjectNumber)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(*generic.DictionaryObject)
	if !ok {
		return nil, fmt.Errorf("%w: page %d is not a dictionary", ErrMalformedObject, index)
	}
	return dict, nil
}

// AcroFormRef returns the catalog's AcroForm reference.
func (r *PdfFileReader) AcroFormRef() (generic.Reference, error) {
	root, err := r.Root()
	if err != nil {
		return generic.Reference{}, err
	}
	ref, ok := root.GetReference("AcroForm")
	if !ok {
		return generic.Reference{}, ErrNoAcroForm
	}
	return ref, nil
}

// AcroForm returns the resolved AcroForm dictionary.
func (r *PdfFileReader) AcroForm() (*generic.DictionaryObject, error) {
	root, err := r.Root()
	if err != nil {
		return nil, err
	}
	obj := root.Get("AcroForm")
	if obj == nil {
		return nil, ErrNoAcroForm
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	dict, ok := resolved.(*generic.DictionaryObject)
	if !ok {
		return nil, fmt.Errorf("%w: AcroForm is not a dictionary", ErrMalformedObject)
	}
	return dict, nil
}
