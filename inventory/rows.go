// Package inventory turns raw Snipe-IT records into the table rows and
// form field descriptors the loan document is assembled from.
package inventory

import (
	"fmt"
	"html"

	"github.com/Arconz/SnipeIT-Tools/snipeit"
)

// FieldKind classifies a form field descriptor.
type FieldKind int

const (
	KindText FieldKind = iota
	KindChoice
	KindSignature
)

// FieldDescriptor describes one interactive field to be placed in the
// document. Width and Height are in points.
type FieldDescriptor struct {
	Kind    FieldKind
	Name    string
	Tooltip string
	Value   string
	Options []string
	Width   float64
	Height  float64
}

// Option sets and defaults for the per-item choice fields.
var (
	StatusOptions    = []string{"", "Present", "Missing", "Returned", "Other"}
	ConditionOptions = []string{"New", "Good", "Fair", "Poor", "Other"}
)

const (
	DefaultStatus    = "Present"
	DefaultCondition = "Good"

	choiceWidth  = 80
	choiceHeight = 14
)

// Sentinel texts shown in place of real rows.
const (
	NoAssets      = "No Assets Assigned"
	NoAccessories = "No Accessories Assigned to user"
	DataSetError  = "Error in data set"
)

// AssetRow is one line of the asset table. Status and Condition are
// nil on sentinel rows.
type AssetRow struct {
	Status    *FieldDescriptor
	Tag       string
	Name      string
	Model     string
	Serial    string
	Condition *FieldDescriptor
}

// AccessoryRow is one line of the accessory table. Status and
// Condition are nil on sentinel rows.
type AccessoryRow struct {
	Status    *FieldDescriptor
	Name      string
	ID        string
	Condition *FieldDescriptor
}

func choiceField(name, tooltip, value string, options []string) *FieldDescriptor {
	return &FieldDescriptor{
		Kind:    KindChoice,
		Name:    name,
		Tooltip: tooltip,
		Value:   value,
		Options: options,
		Width:   choiceWidth,
		Height:  choiceHeight,
	}
}

// BuildAssetRows maps a user's assets to table rows, one per asset,
// keyed by the asset tag. Zero assets yield a single sentinel row.
func BuildAssetRows(assets []snipeit.HardwareAsset) []AssetRow {
	if len(assets) == 0 {
		return []AssetRow{{Tag: NoAssets}}
	}
	rows := make([]AssetRow, 0, len(assets))
	for _, asset := range assets {
		rows = append(rows, AssetRow{
			Status: choiceField(
				fmt.Sprintf("Asset Status %s", asset.AssetTag),
				"Status", DefaultStatus, StatusOptions,
			),
			Tag:    asset.AssetTag,
			Name:   html.UnescapeString(asset.Name),
			Model:  html.UnescapeString(asset.Model.Name),
			Serial: asset.Serial,
			Condition: choiceField(
				fmt.Sprintf("Asset Condition %s", asset.AssetTag),
				"Condition", DefaultCondition, ConditionOptions,
			),
		})
	}
	return rows
}

// AssetErrorRows is the sentinel emitted when the asset lookup failed
// or its response was malformed.
func AssetErrorRows() []AssetRow {
	return []AssetRow{{Tag: DataSetError}}
}

// BuildAccessoryRows maps a user's accessory units to table rows.
// A user may hold several units of the same accessory; the second and
// later units get a _2, _3, ... suffix on their field names so each
// unit's status and condition stay independently addressable. The
// first unit keeps the bare name.
func BuildAccessoryRows(accessories []snipeit.Accessory) []AccessoryRow {
	if len(accessories) == 0 {
		return []AccessoryRow{{Name: NoAccessories}}
	}
	seen := make(map[int64]int)
	rows := make([]AccessoryRow, 0, len(accessories))
	for _, acc := range accessories {
		seen[acc.ID]++
		statusName := fmt.Sprintf("Accessory Status %d", acc.ID)
		conditionName := fmt.Sprintf("Accessory Condition %d", acc.ID)
		if n := seen[acc.ID]; n > 1 {
			statusName = fmt.Sprintf("%s_%d", statusName, n)
			conditionName = fmt.Sprintf("%s_%d", conditionName, n)
		}
		rows = append(rows, AccessoryRow{
			Status: choiceField(statusName, "Status", DefaultStatus, StatusOptions),
			Name:   html.UnescapeString(acc.Name),
			ID:     fmt.Sprintf("%d", acc.ID),
			Condition: choiceField(
				conditionName, "Accessory Condition", DefaultCondition, ConditionOptions,
			),
		})
	}
	return rows
}

// AccessoryErrorRows is the sentinel emitted when the accessory lookup
// failed or its response was malformed.
func AccessoryErrorRows() []AccessoryRow {
	return []AccessoryRow{{Name: DataSetError}}
}
