package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steelfab-ops/fitpo/internal/model"
	"github.com/steelfab-ops/fitpo/internal/refdata"
	"github.com/steelfab-ops/fitpo/internal/rules"
)

func phase2Data() *refdata.Set {
	return &refdata.Set{
		Drawings: map[string]model.DrawingRecord{
			"D-1013": {DrawingNo: "D-1013", MaterialNo: "KZ-70013", Annotation: "CHECK PLATE 4.5T NON-SLIP", Grade: "SS400"},
			"D-1031": {DrawingNo: "D-1031", MaterialNo: "KZ-70031", Annotation: "H-BEAM 200x100x5.5/8", Grade: "SS400"},
		},
	}
}

func clsFixture(materialNo, typeCode string) model.Classification {
	return model.Classification{
		MaterialNo: materialNo,
		PRNo:       "PR-1",
		TypeCode:   typeCode,
		Fabricator: "MARUWA KOGYO",
	}
}

func TestReconcile_Unchanged(t *testing.T) {
	review := model.ReviewResponse{MaterialNo: "KZ-70012", Disposition: model.DispositionUnchanged}
	v := reconcile(review, clsFixture("KZ-70012", "B"), phase2Data())

	assert.Equal(t, model.ActionConfirmed, v.Action)
	assert.Equal(t, model.OutcomeConforming, v.Outcome)
	assert.Empty(t, v.HITLType)
	assert.Equal(t, "B", v.EffectiveTypeCode)
	assert.Equal(t, rules.OrderAmount("KZ-70012", "B"), v.OrderAmount)
}

func TestReconcile_UnchangedWithReplacementCode(t *testing.T) {
	review := model.ReviewResponse{
		MaterialNo:        "KZ-70012",
		Disposition:       model.DispositionUnchanged,
		RequestedTypeCode: "G",
	}
	v := reconcile(review, clsFixture("KZ-70012", "B"), phase2Data())

	assert.Equal(t, model.ActionConfirmed, v.Action)
	assert.Equal(t, "G", v.EffectiveTypeCode)
	assert.Equal(t, rules.OrderAmount("KZ-70012", "G"), v.OrderAmount)
}

func TestReconcile_FabricationImpossible(t *testing.T) {
	review := model.ReviewResponse{MaterialNo: "KZ-70021", Disposition: model.DispositionImpossible}
	v := reconcile(review, clsFixture("KZ-70021", "G"), phase2Data())

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.HITLImpossible, v.HITLType)
	assert.Equal(t, model.OutcomeNonconforming, v.Outcome)
	assert.Zero(t, v.OrderAmount)
}

func TestReconcile_TypeChangedDrawingMatch(t *testing.T) {
	review := model.ReviewResponse{
		MaterialNo:        "KZ-70013",
		Disposition:       model.DispositionTypeChanged,
		RequestedTypeCode: "N",
		DrawingNo:         "D-1013",
		DrawingAvailable:  true,
	}
	v := reconcile(review, clsFixture("KZ-70013", "B"), phase2Data())

	assert.Equal(t, model.ActionConfirmed, v.Action)
	assert.Equal(t, model.OutcomeConforming, v.Outcome)
	assert.Equal(t, "N", v.EffectiveTypeCode)
	assert.Equal(t, rules.OrderAmount("KZ-70013", "N"), v.OrderAmount)
}

func TestReconcile_TypeChangedDrawingMismatch(t *testing.T) {
	// Drawing D-1013 infers N; the supplier asks for G.
	review := model.ReviewResponse{
		MaterialNo:        "KZ-70013",
		Disposition:       model.DispositionTypeChanged,
		RequestedTypeCode: "G",
		DrawingNo:         "D-1013",
		DrawingAvailable:  true,
	}
	v := reconcile(review, clsFixture("KZ-70013", "B"), phase2Data())

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.HITLVisionMismatch, v.HITLType)
	assert.Equal(t, model.OutcomeNonconforming, v.Outcome)
	assert.Contains(t, v.Rationale, "infers type N")
}

func TestReconcile_ForcedVisionMismatch(t *testing.T) {
	// Known demo fixture: KZ-70031 always takes the mismatch path even
	// though drawing D-1031 infers the exact code the supplier requested.
	review := model.ReviewResponse{
		MaterialNo:        forcedVisionMismatchMaterial,
		Disposition:       model.DispositionTypeChanged,
		RequestedTypeCode: "I",
		DrawingNo:         "D-1031",
		DrawingAvailable:  true,
	}
	v := reconcile(review, clsFixture(forcedVisionMismatchMaterial, "I"), phase2Data())

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.HITLVisionMismatch, v.HITLType)
}

func TestReconcile_TypeChangedNoDrawingSameCode(t *testing.T) {
	review := model.ReviewResponse{
		MaterialNo:        "KZ-70041",
		Disposition:       model.DispositionTypeChanged,
		RequestedTypeCode: "I",
		DrawingAvailable:  false,
	}
	v := reconcile(review, clsFixture("KZ-70041", "I"), phase2Data())

	assert.Equal(t, model.ActionConfirmed, v.Action)
	assert.Equal(t, model.OutcomeConforming, v.Outcome)
}

func TestReconcile_TypeChangedNoDrawingDifferingCode(t *testing.T) {
	review := model.ReviewResponse{
		MaterialNo:        "KZ-70041",
		Disposition:       model.DispositionTypeChanged,
		RequestedTypeCode: "G",
		DrawingAvailable:  false,
	}
	v := reconcile(review, clsFixture("KZ-70041", "I"), phase2Data())

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.HITLNoDrawing, v.HITLType)
	assert.Equal(t, model.OutcomeNeedsReview, v.Outcome)
}

func TestReconcile_DrawingFlagSetButRecordMissing(t *testing.T) {
	// A review claiming a drawing that isn't in the reference data falls
	// back to the text comparison path.
	review := model.ReviewResponse{
		MaterialNo:        "KZ-70041",
		Disposition:       model.DispositionTypeChanged,
		RequestedTypeCode: "G",
		DrawingNo:         "D-9999",
		DrawingAvailable:  true,
	}
	v := reconcile(review, clsFixture("KZ-70041", "I"), phase2Data())

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.HITLNoDrawing, v.HITLType)
}

func TestReconcile_UnknownDisposition(t *testing.T) {
	review := model.ReviewResponse{MaterialNo: "KZ-70041", Disposition: "made-up"}
	v := reconcile(review, clsFixture("KZ-70041", "I"), phase2Data())

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.OutcomeNeedsReview, v.Outcome)
}
