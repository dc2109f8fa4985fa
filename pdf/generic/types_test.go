package generic

import (
	"bytes"
	"strings"
	"testing"
)

func writeToString(t *testing.T, obj PdfObject) string {
	t.Helper()
	var buf bytes.Buffer
	if err := obj.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.String()
}

func TestScalarSerialization(t *testing.T) {
	tests := []struct {
		obj  PdfObject
		want string
	}{
		{NullObject{}, "null"},
		{BooleanObject(true), "true"},
		{BooleanObject(false), "false"},
		{IntegerObject(0), "0"},
		{IntegerObject(-123), "-123"},
		{RealObject(612), "612"},
		{RealObject(36.5), "36.5"},
		{RealObject(-0.25), "-0.25"},
		{NameObject("Type"), "/Type"},
		{NameObject("Asset Status"), "/Asset#20Status"},
		{Reference{ObjectNumber: 12, GenerationNumber: 0}, "12 0 R"},
	}
	for _, tt := range tests {
		if got := writeToString(t, tt.obj); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestFormatNumberTrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{612, "612"},
		{792.0, "792"},
		{18.5, "18.5"},
		{0.123456, "0.123456"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLiteralStringEscaping(t *testing.T) {
	s := NewLiteralString("a(b)c\\d\ne")
	got := writeToString(t, s)
	want := `(a\(b\)c\\d\ne)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHexString(t *testing.T) {
	s := NewHexString([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	if got := writeToString(t, s); got != "<deadbeef>" {
		t.Errorf("got %q", got)
	}
}

func TestTextStringRoundTrip(t *testing.T) {
	tests := []string{"Jane's Doe", "Łukasz"}
	for _, in := range tests {
		s := NewTextString(in)
		if got := s.Text(); got != in {
			t.Errorf("Text() = %q, want %q", got, in)
		}
	}
}

func TestTextStringUnicodeBOM(t *testing.T) {
	s := NewTextString("Łukasz")
	if len(s.Value) < 2 || s.Value[0] != 0xFE || s.Value[1] != 0xFF {
		t.Error("wide text string should carry a UTF-16BE BOM")
	}
}

func TestDictionaryInsertionOrder(t *testing.T) {
	d := NewDictionary()
	d.Set("Type", NameObject("Page"))
	d.Set("MediaBox", NewArray(IntegerObject(0), IntegerObject(0), IntegerObject(612), IntegerObject(792)))
	d.Set("Contents", Reference{ObjectNumber: 4})

	got := writeToString(t, d)
	typeIdx := strings.Index(got, "/Type")
	boxIdx := strings.Index(got, "/MediaBox")
	contIdx := strings.Index(got, "/Contents")
	if !(typeIdx < boxIdx && boxIdx < contIdx) {
		t.Errorf("keys not in insertion order: %q", got)
	}
}

func TestDictionaryDelete(t *testing.T) {
	d := NewDictionary()
	d.Set("A", IntegerObject(1))
	d.Set("B", IntegerObject(2))
	d.Delete("A")
	if d.Has("A") {
		t.Error("A should be gone")
	}
	if got := d.Keys(); len(got) != 1 || got[0] != "B" {
		t.Errorf("Keys() = %v", got)
	}
}

func TestDictionaryCloneIsDeep(t *testing.T) {
	inner := NewDictionary()
	inner.Set("V", NameObject("Present"))
	d := NewDictionary()
	d.Set("Field", inner)

	c := d.Clone()
	c.GetDict("Field").Set("V", NameObject("Missing"))

	if d.GetDict("Field").GetName("V") != "Present" {
		t.Error("clone mutated the original")
	}
}

func TestStreamWriteSetsLength(t *testing.T) {
	data := []byte("0 0 100 100 re f")
	s := NewStream(nil, data)
	got := writeToString(t, s)
	if !strings.Contains(got, "/Length 16") {
		t.Errorf("missing Length entry: %q", got)
	}
	if !strings.Contains(got, "stream\n0 0 100 100 re f\nendstream") {
		t.Errorf("bad stream framing: %q", got)
	}
}

func TestRectangle(t *testing.T) {
	r := &Rectangle{LLX: 24, LLY: 100, URX: 240, URY: 136}
	if r.Width() != 216 || r.Height() != 36 {
		t.Errorf("Width/Height = %v/%v", r.Width(), r.Height())
	}

	back, err := NewRectangle(r.ToArray())
	if err != nil {
		t.Fatalf("NewRectangle: %v", err)
	}
	if *back != *r {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestNewRectangleRejectsBadArray(t *testing.T) {
	if _, err := NewRectangle(NewArray(IntegerObject(1))); err == nil {
		t.Error("expected error for short array")
	}
	if _, err := NewRectangle(NewArray(NameObject("a"), IntegerObject(1), IntegerObject(2), IntegerObject(3))); err == nil {
		t.Error("expected error for non-numeric element")
	}
}

func TestComputeFileIDStable(t *testing.T) {
	a := ComputeFileID([]byte("same body"))
	b := ComputeFileID([]byte("same body"))
	if !bytes.Equal(a, b) {
		t.Error("file ID should be deterministic for identical input")
	}
	if len(a) != 16 {
		t.Errorf("file ID length = %d", len(a))
	}
}
