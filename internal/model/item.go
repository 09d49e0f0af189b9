package model

// PRLineItem is one purchase-request row for a steel fitting material.
// Loaded from the reference dataset and immutable for the life of a run.
type PRLineItem struct {
	MaterialNo     string `yaml:"material_no" json:"material_no"`
	PRNo           string `yaml:"pr_no" json:"pr_no"`
	Description    string `yaml:"description" json:"description"`
	AttributeGroup string `yaml:"attribute_group" json:"attribute_group"`
	Grade          string `yaml:"grade" json:"grade"`
	TypeCode       string `yaml:"type_code" json:"type_code"`
	Fabricator     string `yaml:"fabricator" json:"fabricator"`
	PaintCode      string `yaml:"paint_code" json:"paint_code"`
}

// PriceEntry is one row of the contract price table, keyed by type code and
// material-attribute group.
type PriceEntry struct {
	TypeCode       string  `yaml:"type_code" json:"type_code"`
	AttributeGroup string  `yaml:"attribute_group" json:"attribute_group"`
	UnitPrice      float64 `yaml:"unit_price" json:"unit_price"`
}

// Disposition is the supplier's review outcome category for a line item.
type Disposition string

const (
	DispositionUnchanged   Disposition = "unchanged"
	DispositionTypeChanged Disposition = "type-changed"
	DispositionNegotiation Disposition = "negotiation-required"
	DispositionImpossible  Disposition = "fabrication-impossible"
)

// ReviewResponse is a supplier counter-review for a single material.
// Read-only; joined to Phase 1 output by material number.
type ReviewResponse struct {
	MaterialNo        string      `yaml:"material_no" json:"material_no"`
	Disposition       Disposition `yaml:"disposition" json:"disposition"`
	RequestedTypeCode string      `yaml:"requested_type_code" json:"requested_type_code,omitempty"`
	RequestedPrice    float64     `yaml:"requested_price" json:"requested_price,omitempty"`
	DrawingNo         string      `yaml:"drawing_no" json:"drawing_no,omitempty"`
	DrawingAvailable  bool        `yaml:"drawing_available" json:"drawing_available"`
}

// DrawingRecord is a drawing-to-type reference record, keyed by drawing
// number. Annotation carries the drawing's caption text used for keyword
// based type inference.
type DrawingRecord struct {
	DrawingNo  string `yaml:"drawing_no" json:"drawing_no"`
	MaterialNo string `yaml:"material_no" json:"material_no"`
	Annotation string `yaml:"annotation" json:"annotation"`
	Grade      string `yaml:"grade" json:"grade"`
}
