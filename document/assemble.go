// Package document assembles the equipment loan agreement PDF for one
// user and patches signature fields into the rendered file.
package document

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/Arconz/SnipeIT-Tools/inventory"
	"github.com/Arconz/SnipeIT-Tools/pdf/flow"
	"github.com/Arconz/SnipeIT-Tools/pdf/layout"
	"github.com/Arconz/SnipeIT-Tools/pdf/text"
)

// Signature field names used by the patch pass. The employee field is
// always appended before the authorizer field.
const (
	EmployeeSigFieldName   = "Sig1"
	AuthorizerSigFieldName = "Auth1"
)

// Params carries everything the assembler needs for one user.
type Params struct {
	UserName  string // may contain HTML entities from the source system
	UserEmail string // already resolved; blank emails are the caller's concern
	UserID    int64

	AssetRows     []inventory.AssetRow
	AccessoryRows []inventory.AccessoryRow

	// Issuer display strings from configuration.
	Issuer            string
	IssuerBC          string
	IssuerInstitution string
	IssuerDepartment  string

	Telephone      string
	AddressOptions []string
	AUPURL         string
}

// RenderedDocument is a finished loan agreement on disk plus the
// signature zone anchors captured during layout.
type RenderedDocument struct {
	FilePath string

	EmployeeSig   *flow.SignatureZone
	AuthorizerSig *flow.SignatureZone
}

// Filename derives the output file name from a possibly HTML-escaped
// display name. Entities are decoded exactly once.
func Filename(userName string) string {
	return html.UnescapeString(userName) + "_inventory.pdf"
}

var (
	bodyStyle    = text.Style{Font: text.Helvetica, Size: 9, Color: text.Black}
	captionStyle = text.Style{Font: text.Helvetica, Size: 6, Color: text.Black}
	headingStyle = text.Style{Font: text.HelveticaBold, Size: 12, Color: text.Black}
	titleStyle   = text.Style{Font: text.HelveticaBold, Size: 14, Color: text.Black}
	linkStyle    = text.Style{Font: text.HelveticaOblique, Size: 9, Color: text.RGB(0, 0, 238)}

	headerFill = text.Hex("#041E42")
	rowFill    = text.Hex("#EEEEEE")
	zoneFill   = text.Hex("#D3D3D3")

	tableHeaderStyle = text.Style{Font: text.HelveticaBold, Size: 9, Color: text.White}
)

const (
	sigZoneWidth  = 216
	sigZoneHeight = 36
)

// Render lays out and writes the loan agreement into outDir, returning
// the file path and the two populated signature zones.
func Render(params Params, outDir string) (*RenderedDocument, error) {
	userName := html.UnescapeString(params.UserName)

	empSig := &flow.SignatureZone{
		Width: sigZoneWidth, Height: sigZoneHeight, Background: zoneFill,
	}
	authSig := &flow.SignatureZone{
		Width: sigZoneWidth, Height: sigZoneHeight, Background: zoneFill,
	}

	story := buildStory(params, userName, empSig, authSig)

	doc := flow.NewDocTemplate(layout.PageLayout{
		Size:    layout.Letter,
		Margins: layout.NewMargins(18, 24, 18, 24),
	})
	doc.Title = "Equipment Loan Agreement"

	data, err := doc.Build(story)
	if err != nil {
		return nil, fmt.Errorf("building document for %s: %w", userName, err)
	}

	path := filepath.Join(outDir, Filename(params.UserName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	return &RenderedDocument{
		FilePath:      path,
		EmployeeSig:   empSig,
		AuthorizerSig: authSig,
	}, nil
}

func buildStory(params Params, userName string, empSig, authSig *flow.SignatureZone) []flow.Flowable {
	var story []flow.Flowable

	story = append(story, headerBlock(params, userName)...)

	story = append(story,
		&flow.Paragraph{
			Text: "The undersigned hereby acknowledges receipt of the equipment " +
				"listed below, to be in good condition, except as otherwise noted. " +
				params.Issuer + " employee may be held responsible for damage or " +
				"loss of loaned equipment.",
			Style:      bodyStyle,
			SpaceAfter: 8,
		},
		&flow.Paragraph{Text: "Assets:", Style: headingStyle, SpaceAfter: 4},
		assetTable(params.AssetRows),
		flow.Spacer{Height: 8},
		&flow.Paragraph{Text: "Accessories:", Style: headingStyle, SpaceAfter: 4},
		accessoryTable(params.AccessoryRows),
		flow.Spacer{Height: 10},
	)

	story = append(story, contactBlock(params, userName)...)
	story = append(story, agreementBlock(params, empSig, authSig)...)

	story = append(story, &flow.Paragraph{
		Text:  fmt.Sprintf("Asset User ID: %d", params.UserID),
		Style: bodyStyle,
	})

	return story
}

// headerBlock is the institution banner: issuer lines, then text
// fields for the institution, department, and employee name, each with
// a small caption, then the document title.
func headerBlock(params Params, userName string) []flow.Flowable {
	labeled := func(name, tooltip, value string, width float64, caption string) []flow.Flowable {
		return []flow.Flowable{
			widgetRow(flow.WidgetSpec{
				Name: name, Tooltip: tooltip, Value: value,
				Width: width, Height: 16,
			}),
			&flow.Paragraph{Text: caption, Style: captionStyle, SpaceAfter: 4},
		}
	}

	story := []flow.Flowable{
		&flow.Paragraph{Text: params.Issuer, Style: bodyStyle, SpaceAfter: 2},
		&flow.Paragraph{Text: params.IssuerBC, Style: bodyStyle, SpaceAfter: 6},
	}
	story = append(story, labeled(
		"Name of lending issuer Institution",
		"Enter the name of the lending institution",
		params.IssuerInstitution, 200,
		"Name of lending issuer Institution")...)
	story = append(story, labeled(
		"Name of lending issuer Department",
		"Enter the name of the lending department",
		params.IssuerDepartment, 90,
		"Name of issuer Lending Department")...)
	story = append(story, labeled(
		"Name of lending issuer Employee",
		"Enter the name of the issuer employee",
		userName, 200,
		"Name of issuer Employee")...)
	story = append(story,
		&flow.Paragraph{Text: "Equipment Loan Agreement", Style: titleStyle, SpaceAfter: 8},
	)
	return story
}

// widgetRow wraps a lone widget in a single-cell table so it flows
// like any other block element.
func widgetRow(spec flow.WidgetSpec) *flow.Table {
	return &flow.Table{
		ColumnWidths: []float64{spec.Width + 6},
		CellStyle:    bodyStyle,
		RowFill:      text.White,
		Rows:         [][]flow.Cell{{{Widget: &spec}}},
	}
}

func assetTable(rows []inventory.AssetRow) *flow.Table {
	t := &flow.Table{
		ColumnWidths: []float64{90, 80, 120, 110, 74, 90},
		Header:       []string{"Asset Status", "Asset Tag", "Asset Name", "Asset Model", "Serial #", "Asset Condition"},
		HeaderStyle:  tableHeaderStyle,
		HeaderFill:   headerFill,
		CellStyle:    bodyStyle,
		RowFill:      rowFill,
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []flow.Cell{
			choiceCell(row.Status),
			flow.TextCell(row.Tag),
			flow.TextCell(row.Name),
			flow.TextCell(row.Model),
			flow.TextCell(row.Serial),
			choiceCell(row.Condition),
		})
	}
	return t
}

func accessoryTable(rows []inventory.AccessoryRow) *flow.Table {
	t := &flow.Table{
		ColumnWidths: []float64{110, 200, 120, 110},
		Header:       []string{"Accessory Status", "Accessory Name", "Accessory ID", "Accessory Condition"},
		HeaderStyle:  tableHeaderStyle,
		HeaderFill:   headerFill,
		CellStyle:    bodyStyle,
		RowFill:      rowFill,
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []flow.Cell{
			choiceCell(row.Status),
			flow.TextCell(row.Name),
			flow.TextCell(row.ID),
			choiceCell(row.Condition),
		})
	}
	return t
}

// choiceCell converts a field descriptor to a widget cell; sentinel
// rows carry no descriptor and render as an empty cell.
func choiceCell(fd *inventory.FieldDescriptor) flow.Cell {
	if fd == nil {
		return flow.TextCell("")
	}
	return flow.Cell{Widget: &flow.WidgetSpec{
		Choice:  fd.Kind == inventory.KindChoice,
		Name:    fd.Name,
		Tooltip: fd.Tooltip,
		Options: fd.Options,
		Value:   fd.Value,
		Width:   fd.Width,
		Height:  fd.Height,
	}}
}

// contactBlock holds the operator data entry fields: employee name,
// telephone, campus address, and email.
func contactBlock(params Params, userName string) []flow.Flowable {
	return []flow.Flowable{
		&flow.Table{
			ColumnWidths: []float64{120, 210, 70, 100},
			CellStyle:    bodyStyle,
			RowFill:      text.White,
			Rows: [][]flow.Cell{{
				flow.TextCell("Employee Name:"),
				{Widget: &flow.WidgetSpec{
					Name:    "employee_name",
					Tooltip: "Enter the name of the issuer employee",
					Value:   userName,
					Width:   200, Height: 16,
				}},
				flow.TextCell("Telephone:"),
				{Widget: &flow.WidgetSpec{
					Name:    "Telephone",
					Tooltip: "Issuer employee telephone",
					Value:   params.Telephone,
					Width:   90, Height: 18,
				}},
			}},
		},
		flow.Spacer{Height: 4},
		&flow.Table{
			ColumnWidths: []float64{140, 96, 120, 210},
			CellStyle:    bodyStyle,
			RowFill:      text.White,
			Rows: [][]flow.Cell{{
				flow.TextCell("Employee Campus Address:"),
				{Widget: &flow.WidgetSpec{
					Choice:  true,
					Name:    "address",
					Tooltip: "Primary equipment address",
					Options: params.AddressOptions,
					Value:   firstOption(params.AddressOptions),
					Width:   80, Height: 18,
				}},
				flow.TextCell(params.IssuerDepartment + " Email:"),
				{Widget: &flow.WidgetSpec{
					Name:    "Email",
					Tooltip: "Issuer employee email",
					Value:   params.UserEmail,
					Width:   200, Height: 18,
				}},
			}},
		},
		flow.Spacer{Height: 10},
	}
}

func firstOption(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

// agreementBlock carries the acceptable-use acknowledgment and the two
// signature zones.
func agreementBlock(params Params, empSig, authSig *flow.SignatureZone) []flow.Flowable {
	return []flow.Flowable{
		&flow.Table{
			ColumnWidths: []float64{260, 80},
			CellStyle:    bodyStyle,
			RowFill:      text.White,
			Rows: [][]flow.Cell{{
				flow.TextCell("Please read and accept the Acceptable Use Policy:"),
				{Widget: &flow.WidgetSpec{
					Choice:  true,
					Name:    "AUP",
					Tooltip: "AUP Select",
					Options: []string{"Accept", "Deny"},
					Value:   "Accept",
					Width:   60, Height: 14,
				}},
			}},
		},
		&flow.Paragraph{
			Text:       "Acceptable Use Policy",
			Style:      linkStyle,
			Link:       params.AUPURL,
			SpaceAfter: 8,
		},
		&flow.Paragraph{Text: "Digital Signature:", Style: bodyStyle, SpaceAfter: 2},
		empSig,
		flow.Spacer{Height: 8},
		&flow.Paragraph{Text: "Approved by:", Style: bodyStyle, SpaceAfter: 2},
		authSig,
		flow.Spacer{Height: 8},
	}
}
