package fields

import (
	"bytes"
	"testing"

	"github.com/Arconz/SnipeIT-Tools/pdf/form"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/reader"
	"github.com/Arconz/SnipeIT-Tools/pdf/writer"
)

func buildBaseDoc(t *testing.T) []byte {
	t.Helper()
	w := writer.NewPdfFileWriter("1.7")
	helvRef := w.AddObject(form.StandardFontDictionary("Helvetica"))
	fonts := generic.NewDictionary()
	fonts.Set(form.FontResourceName, helvRef)
	w.SetFontResources(fonts)
	w.SetAcroForm(form.NewAcroForm(helvRef))
	if _, err := w.AddPage(generic.Rectangle{URX: 612, URY: 792}, []byte("BT ET"), nil); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func sigFieldNames(t *testing.T, data []byte) []string {
	t.Helper()
	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	acro, err := r.AcroForm()
	if err != nil {
		t.Fatalf("AcroForm: %v", err)
	}
	var names []string
	for _, entry := range acro.GetArray("Fields") {
		obj, err := r.Resolve(entry)
		if err != nil {
			t.Fatalf("resolving field: %v", err)
		}
		dict, ok := obj.(*generic.DictionaryObject)
		if !ok {
			t.Fatalf("field entry is %T", obj)
		}
		if dict.GetName("FT") == "Sig" {
			names = append(names, form.FieldName(dict))
		}
	}
	return names
}

func TestAppendSignatureField(t *testing.T) {
	base := buildBaseDoc(t)
	r, err := reader.NewPdfFileReaderFromBytes(base)
	if err != nil {
		t.Fatalf("reading base: %v", err)
	}
	w := writer.NewIncrementalPdfFileWriter(r)

	box := generic.Rectangle{LLX: 24, LLY: 100, URX: 240, URY: 136}
	if err := AppendSignatureField(w, SigFieldSpec{SigFieldName: "Sig1", OnPage: 0, Box: &box}); err != nil {
		t.Fatalf("AppendSignatureField: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	names := sigFieldNames(t, buf.Bytes())
	if len(names) != 1 || names[0] != "Sig1" {
		t.Fatalf("signature fields = %v, want [Sig1]", names)
	}

	r2, err := reader.NewPdfFileReaderFromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("re-reading: %v", err)
	}
	acro, err := r2.AcroForm()
	if err != nil {
		t.Fatalf("AcroForm: %v", err)
	}
	if flags, _ := acro.GetInt("SigFlags"); flags&3 != 3 {
		t.Errorf("SigFlags = %d, want SignaturesExist|AppendOnly set", flags)
	}

	page, err := r2.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.GetArray("Annots")) != 1 {
		t.Errorf("page Annots has %d entries, want 1", len(page.GetArray("Annots")))
	}
}

func TestAppendTwoSignatureFields(t *testing.T) {
	base := buildBaseDoc(t)
	r, err := reader.NewPdfFileReaderFromBytes(base)
	if err != nil {
		t.Fatalf("reading base: %v", err)
	}
	w := writer.NewIncrementalPdfFileWriter(r)

	sig := generic.Rectangle{LLX: 24, LLY: 100, URX: 240, URY: 136}
	auth := generic.Rectangle{LLX: 300, LLY: 100, URX: 516, URY: 136}
	if err := AppendSignatureField(w, SigFieldSpec{SigFieldName: "Sig1", OnPage: 0, Box: &sig}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendSignatureField(w, SigFieldSpec{SigFieldName: "Auth1", OnPage: 0, Box: &auth}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	names := sigFieldNames(t, buf.Bytes())
	if len(names) != 2 || names[0] != "Sig1" || names[1] != "Auth1" {
		t.Fatalf("signature fields = %v, want [Sig1 Auth1]", names)
	}
}

func TestAppendDuplicateNamesAccumulate(t *testing.T) {
	base := buildBaseDoc(t)
	r, err := reader.NewPdfFileReaderFromBytes(base)
	if err != nil {
		t.Fatalf("reading base: %v", err)
	}
	w := writer.NewIncrementalPdfFileWriter(r)

	box := generic.Rectangle{LLX: 24, LLY: 100, URX: 240, URY: 136}
	if err := AppendSignatureField(w, SigFieldSpec{SigFieldName: "Sig1", OnPage: 0, Box: &box}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendSignatureField(w, SigFieldSpec{SigFieldName: "Sig1", OnPage: 0, Box: &box}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	names := sigFieldNames(t, buf.Bytes())
	if len(names) != 2 || names[0] != "Sig1" || names[1] != "Sig1" {
		t.Fatalf("signature fields = %v, want two entries both named Sig1", names)
	}
}

func TestAppendRejectsEmptyName(t *testing.T) {
	base := buildBaseDoc(t)
	r, err := reader.NewPdfFileReaderFromBytes(base)
	if err != nil {
		t.Fatalf("reading base: %v", err)
	}
	w := writer.NewIncrementalPdfFileWriter(r)
	if err := AppendSignatureField(w, SigFieldSpec{}); err == nil {
		t.Fatal("empty field name accepted")
	}
}

func TestAppendOutOfRangePage(t *testing.T) {
	base := buildBaseDoc(t)
	r, err := reader.NewPdfFileReaderFromBytes(base)
	if err != nil {
		t.Fatalf("reading base: %v", err)
	}
	w := writer.NewIncrementalPdfFileWriter(r)
	box := generic.Rectangle{LLX: 0, LLY: 0, URX: 10, URY: 10}
	if err := AppendSignatureField(w, SigFieldSpec{SigFieldName: "Sig1", OnPage: 5, Box: &box}); err == nil {
		t.Fatal("out-of-range page accepted")
	}
}
