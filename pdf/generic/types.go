// Package generic provides the PDF object model shared by the reader
// and the writers: names, numbers, strings, arrays, dictionaries and
// streams, plus indirect references between them.
package generic

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PdfObject is the base interface for all PDF objects.
type PdfObject interface {
	// Write serializes the object in PDF syntax.
	Write(w io.Writer) error
}

// Reference is an indirect reference to an object ("12 0 R").
type Reference struct {
	ObjectNumber     int
	GenerationNumber int
}

// NewReference creates a reference to the given object and generation.
func NewReference(objNum, genNum int) Reference {
	return Reference{ObjectNumber: objNum, GenerationNumber: genNum}
}

func (r Reference) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d %d R", r.ObjectNumber, r.GenerationNumber)
	return err
}

func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// IndirectObject pairs an object with its object and generation numbers,
// serialized as "N G obj ... endobj".
type IndirectObject struct {
	ObjectNumber     int
	GenerationNumber int
	Object           PdfObject
}

// NewIndirectObject wraps obj as indirect object objNum/genNum.
func NewIndirectObject(objNum, genNum int, obj PdfObject) *IndirectObject {
	return &IndirectObject{ObjectNumber: objNum, GenerationNumber: genNum, Object: obj}
}

func (i *IndirectObject) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d %d obj\n", i.ObjectNumber, i.GenerationNumber); err != nil {
		return err
	}
	if i.Object != nil {
		if err := i.Object.Write(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\nendobj\n")
	return err
}

// GetReference returns a reference pointing at this object.
func (i *IndirectObject) GetReference() Reference {
	return Reference{ObjectNumber: i.ObjectNumber, GenerationNumber: i.GenerationNumber}
}

// NullObject is the PDF null value.
type NullObject struct{}

func (NullObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, "null")
	return err
}

// BooleanObject is a PDF boolean.
type BooleanObject bool

func (b BooleanObject) Write(w io.Writer) error {
	s := "false"
	if b {
		s = "true"
	}
	_, err := io.WriteString(w, s)
	return err
}

// IntegerObject is a PDF integer.
type IntegerObject int64

func (i IntegerObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(i), 10))
	return err
}

// RealObject is a PDF real number.
type RealObject float64

func (r RealObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, FormatNumber(float64(r)))
	return err
}

// FormatNumber renders a float the way PDF content expects: no exponent,
// no trailing zeros, integers without a decimal point.
func FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// NameObject is a PDF name ("/Type"). The stored string excludes the slash.
type NameObject string

func (n NameObject) Write(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		b := n[i]
		if b < '!' || b > '~' || strings.IndexByte("#%/()<>[]{}", b) >= 0 {
			fmt.Fprintf(&buf, "#%02X", b)
		} else {
			buf.WriteByte(b)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (n NameObject) String() string { return string(n) }

// StringObject is a PDF string, written in literal or hex form.
type StringObject struct {
	Value []byte
	IsHex bool
}

// NewLiteralString creates a literal string from raw bytes.
func NewLiteralString(s string) *StringObject {
	return &StringObject{Value: []byte(s)}
}

// NewHexString creates a hex-encoded string.
func NewHexString(data []byte) *StringObject {
	return &StringObject{Value: data, IsHex: true}
}

// NewTextString creates a PDF text string, switching to UTF-16BE with a
// BOM when the value does not fit in Latin-1.
func NewTextString(s string) *StringObject {
	wide := false
	for _, r := range s {
		if r > 0xFF {
			wide = true
			break
		}
	}
	if !wide {
		b := make([]byte, 0, len(s))
		for _, r := range s {
			b = append(b, byte(r))
		}
		return &StringObject{Value: b}
	}
	var buf bytes.Buffer
	buf.Write([]byte{0xFE, 0xFF})
	for _, r := range s {
		if r > 0xFFFF {
			r = '?'
		}
		buf.WriteByte(byte(r >> 8))
		buf.WriteByte(byte(r))
	}
	return &StringObject{Value: buf.Bytes()}
}

func (s *StringObject) Write(w io.Writer) error {
	if s.IsHex {
		_, err := fmt.Fprintf(w, "<%s>", hex.EncodeToString(s.Value))
		return err
	}
	var buf bytes.Buffer
	buf.WriteByte('(')
	for _, b := range s.Value {
		switch b {
		case '\\', '(', ')':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if b < 32 || b > 126 {
				fmt.Fprintf(&buf, `\%03o`, b)
			} else {
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte(')')
	_, err := w.Write(buf.Bytes())
	return err
}

// Text decodes the string value, honoring a UTF-16BE BOM.
func (s *StringObject) Text() string {
	v := s.Value
	if len(v) >= 2 && v[0] == 0xFE && v[1] == 0xFF {
		var b strings.Builder
		for i := 2; i+1 < len(v); i += 2 {
			b.WriteRune(rune(v[i])<<8 | rune(v[i+1]))
		}
		return b.String()
	}
	return string(v)
}

// ArrayObject is a PDF array.
type ArrayObject []PdfObject

// NewArray creates an array from the given items.
func NewArray(items ...PdfObject) ArrayObject {
	return ArrayObject(items)
}

func (a ArrayObject) Write(w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, item := range a {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := item.Write(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

// Get returns the item at index, or nil when out of range.
func (a ArrayObject) Get(index int) PdfObject {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// DictionaryObject is a PDF dictionary. Keys keep insertion order so
// output stays byte-stable across runs.
type DictionaryObject struct {
	entries map[string]PdfObject
	order   []string
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *DictionaryObject {
	return &DictionaryObject{entries: make(map[string]PdfObject)}
}

func (d *DictionaryObject) Write(w io.Writer) error {
	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, key := range d.order {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := NameObject(key).Write(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := d.entries[key].Write(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n>>")
	return err
}

// Set stores a key-value pair, appending new keys to the order.
func (d *DictionaryObject) Set(key string, value PdfObject) {
	if _, ok := d.entries[key]; !ok {
		d.order = append(d.order, key)
	}
	d.entries[key] = value
}

// Get returns the value for key, or nil.
func (d *DictionaryObject) Get(key string) PdfObject {
	return d.entries[key]
}

// GetName returns the name value for key, or "".
func (d *DictionaryObject) GetName(key string) string {
	if n, ok := d.Get(key).(NameObject); ok {
		return string(n)
	}
	return ""
}

// GetInt returns the integer value for key.
func (d *DictionaryObject) GetInt(key string) (int64, bool) {
	if i, ok := d.Get(key).(IntegerObject); ok {
		return int64(i), true
	}
	return 0, false
}

// GetArray returns the array value for key, or nil.
func (d *DictionaryObject) GetArray(key string) ArrayObject {
	if a, ok := d.Get(key).(ArrayObject); ok {
		return a
	}
	return nil
}

// GetDict returns the dictionary value for key, or nil.
func (d *DictionaryObject) GetDict(key string) *DictionaryObject {
	if sub, ok := d.Get(key).(*DictionaryObject); ok {
		return sub
	}
	return nil
}

// GetReference returns the reference value for key.
func (d *DictionaryObject) GetReference(key string) (Reference, bool) {
	if r, ok := d.Get(key).(Reference); ok {
		return r, true
	}
	return Reference{}, false
}

// Delete removes a key.
func (d *DictionaryObject) Delete(key string) {
	if _, ok := d.entries[key]; !ok {
		return
	}
	delete(d.entries, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Has reports whether key is present.
func (d *DictionaryObject) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Keys returns the keys in insertion order.
func (d *DictionaryObject) Keys() []string { return d.order }

// Len returns the number of entries.
func (d *DictionaryObject) Len() int { return len(d.entries) }

// Clone deep-copies the dictionary. Scalar values are shared, nested
// dictionaries and arrays are copied.
func (d *DictionaryObject) Clone() *DictionaryObject {
	out := NewDictionary()
	for _, key := range d.order {
		out.Set(key, cloneValue(d.entries[key]))
	}
	return out
}

func cloneValue(obj PdfObject) PdfObject {
	switch v := obj.(type) {
	case *DictionaryObject:
		return v.Clone()
	case ArrayObject:
		out := make(ArrayObject, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case *StringObject:
		val := make([]byte, len(v.Value))
		copy(val, v.Value)
		return &StringObject{Value: val, IsHex: v.IsHex}
	default:
		return obj
	}
}

// StreamObject is a PDF stream: a dictionary plus raw data. Write sets
// the Length entry from the data it emits.
type StreamObject struct {
	Dictionary *DictionaryObject
	Data       []byte
}

// NewStream creates a stream with the given dictionary (nil for empty)
// and data.
func NewStream(dict *DictionaryObject, data []byte) *StreamObject {
	if dict == nil {
		dict = NewDictionary()
	}
	return &StreamObject{Dictionary: dict, Data: data}
}

func (s *StreamObject) Write(w io.Writer) error {
	s.Dictionary.Set("Length", IntegerObject(len(s.Data)))
	if err := s.Dictionary.Write(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(s.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

// Rectangle holds a PDF rectangle as lower-left and upper-right corners.
type Rectangle struct {
	LLX, LLY float64
	URX, URY float64
}

// NewRectangle builds a rectangle from a four-element numeric array.
func NewRectangle(arr ArrayObject) (*Rectangle, error) {
	if len(arr) != 4 {
		return nil, fmt.Errorf("rectangle must have 4 elements, got %d", len(arr))
	}
	var v [4]float64
	for i, obj := range arr {
		switch n := obj.(type) {
		case IntegerObject:
			v[i] = float64(n)
		case RealObject:
			v[i] = float64(n)
		default:
			return nil, fmt.Errorf("rectangle element %d is not numeric", i)
		}
	}
	return &Rectangle{LLX: v[0], LLY: v[1], URX: v[2], URY: v[3]}, nil
}

// ToArray converts the rectangle to a PDF array.
func (r *Rectangle) ToArray() ArrayObject {
	return ArrayObject{RealObject(r.LLX), RealObject(r.LLY), RealObject(r.URX), RealObject(r.URY)}
}

// Width returns URX - LLX.
func (r *Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns URY - LLY.
func (r *Rectangle) Height() float64 { return r.URY - r.LLY }

// TrailerDictionary is the dictionary at the end of an xref section.
type TrailerDictionary struct {
	*DictionaryObject
}

// NewTrailer creates an empty trailer dictionary.
func NewTrailer() *TrailerDictionary {
	return &TrailerDictionary{DictionaryObject: NewDictionary()}
}

// GetRoot returns the document catalog reference.
func (t *TrailerDictionary) GetRoot() *Reference {
	if ref, ok := t.Get("Root").(Reference); ok {
		return &ref
	}
	return nil
}

// GetSize returns the Size entry, or 0.
func (t *TrailerDictionary) GetSize() int64 {
	size, _ := t.GetInt("Size")
	return size
}

// GetPrev returns the offset of the previous xref section.
func (t *TrailerDictionary) GetPrev() (int64, bool) {
	return t.GetInt("Prev")
}

// ComputeFileID derives a file identifier from the serialized document
// body. Hashing the bytes keeps the ID stable for identical input.
func ComputeFileID(body []byte) []byte {
	sum := md5.Sum(body)
	return sum[:]
}
