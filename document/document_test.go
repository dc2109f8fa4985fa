package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Arconz/SnipeIT-Tools/inventory"
	"github.com/Arconz/SnipeIT-Tools/pdf/flow"
	"github.com/Arconz/SnipeIT-Tools/pdf/form"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/reader"
	"github.com/Arconz/SnipeIT-Tools/snipeit"
)

func testParams() Params {
	return Params{
		UserName:  "Jane&#39;s Doe",
		UserEmail: "nobody@example.org",
		UserID:    7,
		AssetRows: inventory.BuildAssetRows([]snipeit.HardwareAsset{
			{AssetTag: "A1", Name: "Laptop", Model: snipeit.Model{Name: "X1"}, Serial: "S1"},
		}),
		AccessoryRows:     inventory.BuildAccessoryRows(nil),
		Issuer:            "Nevada System of Higher Education",
		IssuerBC:          "Business Center North",
		IssuerInstitution: "University of Nevada, Reno",
		IssuerDepartment:  "CASAT",
		Telephone:         "775-784-6265",
		AddressOptions:    []string{"NJC 109", "WRB 1001", "EJC 239", "Off Site", "Hybrid"},
		AUPURL:            "https://example.org/aup",
	}
}

func fieldNames(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
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
		if dict, ok := obj.(*generic.DictionaryObject); ok {
			names = append(names, form.FieldName(dict))
		}
	}
	return names
}

func TestFilename(t *testing.T) {
	if got := Filename("Jane&#39;s Doe"); got != "Jane's Doe_inventory.pdf" {
		t.Errorf("Filename = %q", got)
	}
	if got := Filename("Sam Roe"); got != "Sam Roe_inventory.pdf" {
		t.Errorf("Filename = %q", got)
	}
}

func TestRenderEndToEnd(t *testing.T) {
	dir := t.TempDir()
	doc, err := Render(testParams(), dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if filepath.Base(doc.FilePath) != "Jane's Doe_inventory.pdf" {
		t.Errorf("FilePath = %q", doc.FilePath)
	}
	if _, err := os.Stat(doc.FilePath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	for _, zone := range []struct {
		label  string
		anchor flow.SignatureAnchor
	}{
		{"employee", doc.EmployeeSig.Anchor},
		{"authorizer", doc.AuthorizerSig.Anchor},
	} {
		if zone.anchor.Page < 1 {
			t.Errorf("%s anchor page = %d, want >= 1", zone.label, zone.anchor.Page)
		}
		if zone.anchor.Width != 216 || zone.anchor.Height != 36 {
			t.Errorf("%s anchor size = %vx%v, want 216x36",
				zone.label, zone.anchor.Width, zone.anchor.Height)
		}
	}
	if doc.EmployeeSig.Anchor == doc.AuthorizerSig.Anchor {
		t.Error("the two signature zones captured identical anchors")
	}

	names := fieldNames(t, doc.FilePath)
	var hasAssetStatus, hasEmail bool
	for _, name := range names {
		if name == "Asset Status A1" {
			hasAssetStatus = true
		}
		if name == "Email" {
			hasEmail = true
		}
		if strings.HasPrefix(name, "Accessory Status") {
			t.Errorf("sentinel accessory row produced field %q", name)
		}
	}
	if !hasAssetStatus {
		t.Errorf("missing Asset Status A1 field; fields = %v", names)
	}
	if !hasEmail {
		t.Errorf("missing Email field; fields = %v", names)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	docA, err := Render(testParams(), dirA)
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}
	docB, err := Render(testParams(), dirB)
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}

	a, err := os.ReadFile(docA.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(docB.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatal("identical input produced different bytes")
	}
	if docA.EmployeeSig.Anchor != docB.EmployeeSig.Anchor {
		t.Error("anchors differ across identical renders")
	}
}

func TestAddSignatureFields(t *testing.T) {
	dir := t.TempDir()
	doc, err := Render(testParams(), dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	before, err := os.ReadFile(doc.FilePath)
	if err != nil {
		t.Fatal(err)
	}

	if err := AddSignatureFields(doc.FilePath, PatchesFor(doc)); err != nil {
		t.Fatalf("AddSignatureFields: %v", err)
	}

	after, err := os.ReadFile(doc.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) <= len(before) || string(after[:len(before)]) != string(before) {
		t.Fatal("patch did not append-only")
	}

	var sig, auth int
	for _, name := range fieldNames(t, doc.FilePath) {
		switch name {
		case EmployeeSigFieldName:
			sig++
		case AuthorizerSigFieldName:
			auth++
		}
	}
	if sig != 1 || auth != 1 {
		t.Fatalf("Sig1 count = %d, Auth1 count = %d, want 1 each", sig, auth)
	}
}

func TestAddSignatureFieldsTwiceAccumulates(t *testing.T) {
	dir := t.TempDir()
	doc, err := Render(testParams(), dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if err := AddSignatureFields(doc.FilePath, PatchesFor(doc)); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	if err := AddSignatureFields(doc.FilePath, PatchesFor(doc)); err != nil {
		t.Fatalf("second patch: %v", err)
	}

	var sig, auth int
	for _, name := range fieldNames(t, doc.FilePath) {
		switch name {
		case EmployeeSigFieldName:
			sig++
		case AuthorizerSigFieldName:
			auth++
		}
	}
	if sig != 2 || auth != 2 {
		t.Fatalf("Sig1 count = %d, Auth1 count = %d, want 2 each", sig, auth)
	}
}

func TestAddSignatureFieldsRejectsUnsetAnchor(t *testing.T) {
	err := AddSignatureFields("does-not-matter.pdf", []SignaturePatch{
		{FieldName: EmployeeSigFieldName},
	})
	if err == nil {
		t.Fatal("unset anchor accepted")
	}
}
