// Package fields appends empty signature form fields to existing
// documents through incremental updates, leaving the original bytes
// untouched.
package fields

import (
	"errors"
	"fmt"

	"github.com/Arconz/SnipeIT-Tools/pdf/form"
	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
	"github.com/Arconz/SnipeIT-Tools/pdf/writer"
)

var ErrInvalidFieldSpec = errors.New("invalid signature field specification")

// SigFlags bits set on the AcroForm once a signature field is present:
// SignaturesExist | AppendOnly.
const sigFlags = 3

// SigFieldSpec describes an empty signature field to add.
type SigFieldSpec struct {
	// SigFieldName is the fully qualified field name, e.g. Sig1.
	SigFieldName string

	// OnPage is the zero-based page index for the widget.
	OnPage int

	// Box is the widget rectangle. nil produces an invisible field
	// with a zero-sized rect.
	Box *generic.Rectangle
}

// AppendSignatureField adds an unsigned signature field to the
// document behind w. The AcroForm and the target page are cloned and
// rewritten in the update section; repeated calls accumulate fields.
func AppendSignatureField(w *writer.IncrementalPdfFileWriter, spec SigFieldSpec) error {
	if spec.SigFieldName == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidFieldSpec)
	}

	pageRef, err := w.Reader.PageRef(spec.OnPage)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFieldSpec, err)
	}

	acroRef, err := w.Reader.AcroFormRef()
	if err != nil {
		return err
	}
	acroObj, err := w.GetObject(acroRef.ObjectNumber)
	if err != nil {
		return fmt.Errorf("resolving AcroForm: %w", err)
	}
	acro, ok := acroObj.(*generic.DictionaryObject)
	if !ok {
		return fmt.Errorf("AcroForm is %T, want dictionary", acroObj)
	}

	fieldList, err := resolveArray(w, acro.Get("Fields"))
	if err != nil {
		return fmt.Errorf("resolving AcroForm fields: %w", err)
	}

	// Duplicate names are not rejected: re-patching an already patched
	// file simply accumulates more fields.
	fieldRef := w.AddObject(buildSigField(spec, pageRef))

	updatedAcro := acro.Clone()
	updatedAcro.Set("Fields", appendRef(fieldList, fieldRef))
	flags, _ := updatedAcro.GetInt("SigFlags")
	updatedAcro.Set("SigFlags", generic.IntegerObject(flags|sigFlags))
	w.UpdateObject(acroRef.ObjectNumber, updatedAcro)

	pageObj, err := w.GetObject(pageRef.ObjectNumber)
	if err != nil {
		return fmt.Errorf("resolving page: %w", err)
	}
	page, ok := pageObj.(*generic.DictionaryObject)
	if !ok {
		return fmt.Errorf("page is %T, want dictionary", pageObj)
	}
	annots, err := resolveArray(w, page.Get("Annots"))
	if err != nil {
		return fmt.Errorf("resolving page annotations: %w", err)
	}
	updatedPage := page.Clone()
	updatedPage.Set("Annots", appendRef(annots, fieldRef))
	w.UpdateObject(pageRef.ObjectNumber, updatedPage)

	return nil
}

func buildSigField(spec SigFieldSpec, pageRef generic.Reference) *generic.DictionaryObject {
	field := generic.NewDictionary()
	field.Set("Type", generic.NameObject("Annot"))
	field.Set("Subtype", generic.NameObject("Widget"))
	field.Set("FT", generic.NameObject("Sig"))
	field.Set("T", generic.NewLiteralString(spec.SigFieldName))
	if spec.Box != nil {
		field.Set("Rect", spec.Box.ToArray())
	} else {
		field.Set("Rect", generic.NewArray(
			generic.IntegerObject(0), generic.IntegerObject(0),
			generic.IntegerObject(0), generic.IntegerObject(0),
		))
	}
	field.Set("F", generic.IntegerObject(form.AnnotFlagPrint|form.AnnotFlagLocked))
	field.Set("P", pageRef)
	field.Set("Ff", generic.IntegerObject(0))
	return field
}

// appendRef copies arr so the original document's array is never
// mutated in place.
func appendRef(arr generic.ArrayObject, ref generic.Reference) generic.ArrayObject {
	out := make(generic.ArrayObject, 0, len(arr)+1)
	out = append(out, arr...)
	return append(out, ref)
}

// resolveArray follows obj if it is a reference and returns the array
// behind it. A missing entry yields an empty array.
func resolveArray(w *writer.IncrementalPdfFileWriter, obj generic.PdfObject) (generic.ArrayObject, error) {
	if obj == nil {
		return generic.ArrayObject{}, nil
	}
	resolved, err := w.Resolve(obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(generic.ArrayObject)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", resolved)
	}
	return arr, nil
}
