// Package form builds AcroForm field dictionaries: text inputs, combo
// boxes and the form-level defaults they share.
package form

import (
	"fmt"

	"github.com/Arconz/SnipeIT-Tools/pdf/generic"
)

// FieldType identifies an AcroForm field type.
type FieldType string

const (
	FieldTypeButton    FieldType = "Btn"
	FieldTypeText      FieldType = "Tx"
	FieldTypeChoice    FieldType = "Ch"
	FieldTypeSignature FieldType = "Sig"
)

// FieldFlags is the /Ff bit set of a form field.
type FieldFlags uint32

const (
	FieldFlagReadOnly FieldFlags = 1 << 0
	FieldFlagRequired FieldFlags = 1 << 1

	// Choice field flags
	ChoiceFieldCombo FieldFlags = 1 << 17
	ChoiceFieldEdit  FieldFlags = 1 << 18
)

// Annotation flags for widget /F entries.
const (
	AnnotFlagPrint  = 1 << 2
	AnnotFlagLocked = 1 << 7
)

// DefaultAppearance is the /DA string shared by generated widgets.
const DefaultAppearance = "/Helv 9 Tf 0 g"

// FontResourceName is the name the form's default font is registered
// under in the /DR resource dictionary.
const FontResourceName = "Helv"

// TextFieldSpec describes a single-line text input widget.
type TextFieldSpec struct {
	Name    string
	Tooltip string
	Value   string
	Rect    generic.Rectangle
}

// Build produces the merged field/widget annotation dictionary.
func (s TextFieldSpec) Build() *generic.DictionaryObject {
	d := widgetBase(s.Name, s.Tooltip, s.Rect)
	d.Set("FT", generic.NameObject(FieldTypeText))
	if s.Value != "" {
		d.Set("V", generic.NewTextString(s.Value))
	}
	d.Set("DA", generic.NewLiteralString(DefaultAppearance))
	return d
}

// ChoiceFieldSpec describes a combo box widget with a fixed option set.
type ChoiceFieldSpec struct {
	Name    string
	Tooltip string
	Value   string
	Options []string
	Rect    generic.Rectangle
}

// Build produces the merged field/widget annotation dictionary.
func (s ChoiceFieldSpec) Build() *generic.DictionaryObject {
	d := widgetBase(s.Name, s.Tooltip, s.Rect)
	d.Set("FT", generic.NameObject(FieldTypeChoice))
	d.Set("Ff", generic.IntegerObject(ChoiceFieldCombo))
	opts := make(generic.ArrayObject, len(s.Options))
	for i, opt := range s.Options {
		opts[i] = generic.NewTextString(opt)
	}
	d.Set("Opt", opts)
	if s.Value != "" {
		d.Set("V", generic.NewTextString(s.Value))
	}
	d.Set("DA", generic.NewLiteralString(DefaultAppearance))
	return d
}

func widgetBase(name, tooltip string, rect generic.Rectangle) *generic.DictionaryObject {
	d := generic.NewDictionary()
	d.Set("Type", generic.NameObject("Annot"))
	d.Set("Subtype", generic.NameObject("Widget"))
	d.Set("Rect", rect.ToArray())
	d.Set("T", generic.NewTextString(name))
	if tooltip != "" {
		d.Set("TU", generic.NewTextString(tooltip))
	}
	d.Set("F", generic.IntegerObject(AnnotFlagPrint))
	d.Set("MK", appearanceCharacteristics())
	return d
}

func appearanceCharacteristics() *generic.DictionaryObject {
	mk := generic.NewDictionary()
	// white background, thin gray border
	mk.Set("BG", generic.NewArray(generic.RealObject(1), generic.RealObject(1), generic.RealObject(1)))
	mk.Set("BC", generic.NewArray(generic.RealObject(0.6), generic.RealObject(0.6), generic.RealObject(0.6)))
	return mk
}

// NewAcroForm builds the document-level AcroForm dictionary. helvRef
// points at the form's default font object.
func NewAcroForm(helvRef generic.Reference) *generic.DictionaryObject {
	font := generic.NewDictionary()
	font.Set(FontResourceName, helvRef)
	dr := generic.NewDictionary()
	dr.Set("Font", font)

	acro := generic.NewDictionary()
	acro.Set("Fields", generic.ArrayObject{})
	acro.Set("DR", dr)
	acro.Set("DA", generic.NewLiteralString(DefaultAppearance))
	// viewers must regenerate widget appearances, none are embedded
	acro.Set("NeedAppearances", generic.BooleanObject(true))
	return acro
}

// StandardFontDictionary builds a Type1 font dictionary for one of the
// base fourteen fonts.
func StandardFontDictionary(baseFont string) *generic.DictionaryObject {
	d := generic.NewDictionary()
	d.Set("Type", generic.NameObject("Font"))
	d.Set("Subtype", generic.NameObject("Type1"))
	d.Set("BaseFont", generic.NameObject(baseFont))
	d.Set("Encoding", generic.NameObject("WinAnsiEncoding"))
	return d
}

// FieldName extracts the partial name of a field dictionary.
func FieldName(field *generic.DictionaryObject) string {
	if s, ok := field.Get("T").(*generic.StringObject); ok {
		return s.Text()
	}
	return ""
}

// FieldRect extracts the annotation rectangle of a field dictionary.
func FieldRect(field *generic.DictionaryObject) (*generic.Rectangle, error) {
	obj := field.Get("Rect")
	if obj == nil {
		return nil, fmt.Errorf("field %q has no /Rect", FieldName(field))
	}
	return generic.ParseRectangle(obj)
}
