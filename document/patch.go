package document

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Arconz/SnipeIT-Tools/pdf/flow"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/reader"
	"github.com/Arconz/SnipeIT-Tools/pdf/writer"
	"github.com/Arconz/SnipeIT-Tools/sign/fields"
)

// ErrAnchorUnset means a signature zone was never drawn: the patch
// pass must not guess a placement.
var ErrAnchorUnset = errors.New("signature zone was never drawn")

// SignaturePatch names one signature field and the anchor captured
// for it during layout.
type SignaturePatch struct {
	FieldName string
	Anchor    flow.SignatureAnchor
}

// PatchesFor pairs the rendered document's two zones with their fixed
// field names, employee first.
func PatchesFor(doc *RenderedDocument) []SignaturePatch {
	return []SignaturePatch{
		{FieldName: EmployeeSigFieldName, Anchor: doc.EmployeeSig.Anchor},
		{FieldName: AuthorizerSigFieldName, Anchor: doc.AuthorizerSig.Anchor},
	}
}

// AddSignatureFields reopens a finished document and appends one
// signature field per patch through an incremental update, leaving the
// rendered bytes untouched. Re-running against an already patched file
// appends further fields with the same names; nothing is deduplicated.
func AddSignatureFields(path string, patches []SignaturePatch) error {
	for _, p := range patches {
		if p.Anchor.Page < 1 {
			return fmt.Errorf("%w: %s", ErrAnchorUnset, p.FieldName)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := reader.NewPdfFileReaderFromBytes(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	w := writer.NewIncrementalPdfFileWriter(r)
	for _, p := range patches {
		a := p.Anchor
		box := generic.Rectangle{
			LLX: a.X,
			LLY: a.Y,
			URX: a.X + a.Width,
			URY: a.Y + a.Height,
		}
		spec := fields.SigFieldSpec{
			SigFieldName: p.FieldName,
			OnPage:       a.Page - 1,
			Box:          &box,
		}
		if err := fields.AppendSignatureField(w, spec); err != nil {
			return fmt.Errorf("appending %s: %w", spec.SigFieldName, err)
		}
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return w.WriteUpdatedSection(f, int64(len(data)))
}
