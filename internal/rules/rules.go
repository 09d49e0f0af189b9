// Package rules implements the deterministic business-rule layer for
// fitting classification: paint-vendor pass-through, vendor assignment,
// order-amount calculation, drawing/text based type-code inference, and
// contract-price lookup. Everything here is pure; these rules override
// whatever the inference layer returned for the same fields.
package rules

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/width"

	"github.com/steelfab-ops/fitpo/internal/model"
)

// Paint-code sentinels. "N0" means no external painting; codes starting
// with internalPaintPrefix are handled by the in-house paint shop.
const (
	paintCodeNone       = "N0"
	internalPaintPrefix = "C"
)

// unitPrices maps type codes to per-kg contract unit prices (JPY).
var unitPrices = map[string]float64{
	"B": 120, // base plate
	"A": 260, // SUS316 fittings
	"S": 240, // SUS304 fittings
	"G": 150, // bent / formed parts
	"I": 170, // pipe, tube, beam sections
	"M": 290, // stainless pipe
	"N": 200, // checkered plate
	"E": 180, // electro-galvanized parts
}

// baseTypeCode is the fallback pricing code for unknown type codes.
const baseTypeCode = "B"

// fabricatorPaintVendors is the fixed fabricator to paint-vendor mapping
// used when pass-through is Y.
var fabricatorPaintVendors = map[string]struct{ Name, Code string }{
	"MARUWA KOGYO":    {"TOKAI COATING", "PV-01"},
	"SANSHIN TEKKO":   {"NISSHO PAINT WORKS", "PV-02"},
	"DAIICHI FITTING": {"TOKAI COATING", "PV-01"},
	"KYOEI STEEL FAB": {"HOKURIKU FINISHING", "PV-03"},
	"WAKO SEISAKUSHO": {"NISSHO PAINT WORKS", "PV-02"},
}

// VendorUnassigned is assigned when a fabricator has no paint-vendor mapping.
const VendorUnassigned = "unassigned"

// PassThrough reports whether a material must route through an external
// painting vendor. Returns "N" when the trimmed paint code is empty, the
// no-painting sentinel, or an internal paint-shop code; "Y" otherwise.
func PassThrough(paintCode string) string {
	code := strings.TrimSpace(paintCode)
	if code == "" || code == paintCodeNone || strings.HasPrefix(code, internalPaintPrefix) {
		return "N"
	}
	return "Y"
}

// AssignPaintVendor resolves the external paint vendor for a fabricator.
// Only meaningful when PassThrough returned "Y".
func AssignPaintVendor(fabricator string) (name, code string) {
	key := strings.ToUpper(strings.TrimSpace(fabricator))
	if v, ok := fabricatorPaintVendors[key]; ok {
		return v.Name, v.Code
	}
	return VendorUnassigned, ""
}

// OrderAmount computes the estimated order amount (JPY) for a material.
// The pseudo-weight is derived from the material number's byte codes so
// the result is reproducible: the same material number and type code
// always price identically, whether computed in Phase 1 or Phase 2.
func OrderAmount(materialNo, typeCode string) int {
	sum := 0
	for _, b := range []byte(materialNo) {
		sum += int(b)
	}
	weight := 50 + sum%451 // pseudo-weight in kg, range [50, 500]

	price, ok := unitPrices[typeCode]
	if !ok {
		price = unitPrices[baseTypeCode]
	}
	return int(math.Round(float64(weight) * price))
}

// normalize folds full-width characters to their half-width forms and
// upper-cases, so zenkaku descriptions match the keyword tables.
func normalize(s string) string {
	return strings.ToUpper(width.Fold.String(s))
}

// InferTypeCode derives a type code from a material description and grade.
// Priority-ordered; the first matching rule wins. Also applied to drawing
// annotations when verifying a requested type change.
func InferTypeCode(description, grade string) string {
	desc := normalize(description)
	gr := normalize(grade)

	stainless := strings.Contains(gr, "SUS304")
	altStainless := strings.Contains(gr, "SUS316")

	switch {
	case strings.Contains(desc, "CHECK PLATE") || strings.Contains(desc, "CHECKERED"):
		return "N"
	case stainless && strings.Contains(desc, "PIPE"):
		return "M"
	case stainless:
		return "S"
	case altStainless:
		return "A"
	case containsAny(desc, "PIPE", "TUBE", "BEAM"):
		return "I"
	case containsAny(desc, "BENDING", "COVER", "BOX", "COAMING"):
		return "G"
	default:
		return "B"
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// HasContractPrice reports whether the contract price table carries a row
// for the item's material-attribute group, with a display rationale.
func HasContractPrice(entries []model.PriceEntry, attributeGroup string) (bool, string) {
	group := strings.TrimSpace(attributeGroup)
	for _, e := range entries {
		if strings.EqualFold(e.AttributeGroup, group) {
			return true, fmt.Sprintf("contract price on file for attribute group %s (type %s)", e.AttributeGroup, e.TypeCode)
		}
	}
	return false, fmt.Sprintf("no contract price for attribute group %s", group)
}

// Classify derives the final routing class from contract-price existence.
func Classify(contractPriceExists bool) model.FinalClass {
	if contractPriceExists {
		return model.ClassQuantityReview
	}
	return model.ClassQuoteRequired
}
