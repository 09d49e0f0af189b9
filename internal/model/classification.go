package model

// FinalClass is the Phase 1 routing decision for a line item.
type FinalClass string

const (
	// ClassQuantityReview routes the item to supplier quantity review
	// (contract price exists, order can proceed once quantity is agreed).
	ClassQuantityReview FinalClass = "quantity-review-required"
	// ClassQuoteRequired routes the item to a fresh quotation cycle
	// (no contract price on file).
	ClassQuoteRequired FinalClass = "quote-required"
)

// Classification is the Phase 1 record for one PR line item. Created once
// per run; the paint-vendor fields are recomputed deterministically in the
// same pass, everything else is immutable afterward.
type Classification struct {
	MaterialNo string `json:"material_no"`

	// Denormalized source fields for downstream display.
	PRNo           string `json:"pr_no"`
	Description    string `json:"description"`
	AttributeGroup string `json:"attribute_group"`
	Grade          string `json:"grade"`
	TypeCode       string `json:"type_code"`
	Fabricator     string `json:"fabricator"`
	PaintCode      string `json:"paint_code"`

	ContractPriceExists bool   `json:"contract_price_exists"`
	ContractPriceReason string `json:"contract_price_reason"`

	InferredTypeCode    string `json:"inferred_type_code"`
	TypeCodeAdequate    bool   `json:"type_code_adequate"`
	RecommendedTypeCode string `json:"recommended_type_code,omitempty"`
	TypeCodeReason      string `json:"type_code_reason"`

	// PassThrough is "Y" or "N". Always recomputed from the paint code;
	// the inference output for this field is discarded.
	PassThrough     string `json:"pass_through"`
	PaintVendorName string `json:"paint_vendor_name,omitempty"`
	PaintVendorCode string `json:"paint_vendor_code,omitempty"`

	FinalClass  FinalClass `json:"final_class"`
	OrderAmount int        `json:"order_amount"`
}
