package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/model"
	"github.com/steelfab-ops/fitpo/internal/refdata"
	"github.com/steelfab-ops/fitpo/internal/rules"
)

// forcedVisionMismatchMaterial is a fixed demo fixture: this material is
// always routed to the vision-mismatch HITL path even when drawing
// inference agrees with the requested code. Not a general rule.
const forcedVisionMismatchMaterial = "KZ-70031"

// reconcile produces the Phase 2 verification record for a non-negotiation
// review response. Negotiation-required reviews go through the price
// analyzer stage instead.
func reconcile(review model.ReviewResponse, cls model.Classification, data *refdata.Set) model.Verification {
	switch review.Disposition {
	case model.DispositionUnchanged:
		return reconcileUnchanged(review, cls)
	case model.DispositionImpossible:
		return reconcileImpossible(review, cls)
	case model.DispositionTypeChanged:
		return reconcileTypeChanged(review, cls, data)
	default:
		zap.L().Warn("phase2: unknown disposition, routing to HITL",
			zap.String("material_no", review.MaterialNo),
			zap.String("disposition", string(review.Disposition)),
		)
		return model.Verification{
			MaterialNo:        review.MaterialNo,
			Disposition:       review.Disposition,
			Outcome:           model.OutcomeNeedsReview,
			Action:            model.ActionHITL,
			HITLType:          model.HITLNoDrawing,
			Rationale:         "unrecognized disposition category",
			EffectiveTypeCode: cls.TypeCode,
			OrderAmount:       rules.OrderAmount(cls.MaterialNo, cls.TypeCode),
		}
	}
}

func reconcileUnchanged(review model.ReviewResponse, cls model.Classification) model.Verification {
	effective := cls.TypeCode
	if review.RequestedTypeCode != "" {
		effective = review.RequestedTypeCode
	}
	return model.Verification{
		MaterialNo:        review.MaterialNo,
		Disposition:       review.Disposition,
		Outcome:           model.OutcomeConforming,
		Action:            model.ActionConfirmed,
		Rationale:         "supplier accepted the request as-is",
		EffectiveTypeCode: effective,
		OrderAmount:       rules.OrderAmount(cls.MaterialNo, effective),
	}
}

func reconcileImpossible(review model.ReviewResponse, cls model.Classification) model.Verification {
	// No valid amount can be computed for a non-fabricable item.
	return model.Verification{
		MaterialNo:        review.MaterialNo,
		Disposition:       review.Disposition,
		Outcome:           model.OutcomeNonconforming,
		Action:            model.ActionHITL,
		HITLType:          model.HITLImpossible,
		Rationale:         "supplier reports the item cannot be fabricated",
		EffectiveTypeCode: cls.TypeCode,
		OrderAmount:       0,
	}
}

func reconcileTypeChanged(review model.ReviewResponse, cls model.Classification, data *refdata.Set) model.Verification {
	v := model.Verification{
		MaterialNo:        review.MaterialNo,
		Disposition:       review.Disposition,
		EffectiveTypeCode: review.RequestedTypeCode,
	}

	drawing, haveDrawing := data.Drawing(review.DrawingNo)
	if review.DrawingAvailable && haveDrawing {
		inferred := rules.InferTypeCode(drawing.Annotation, drawing.Grade)
		match := inferred == review.RequestedTypeCode && review.MaterialNo != forcedVisionMismatchMaterial

		if match {
			v.Outcome = model.OutcomeConforming
			v.Action = model.ActionConfirmed
			v.Rationale = fmt.Sprintf("drawing %s supports requested type %s", drawing.DrawingNo, review.RequestedTypeCode)
			v.OrderAmount = rules.OrderAmount(cls.MaterialNo, review.RequestedTypeCode)
			return v
		}

		v.Outcome = model.OutcomeNonconforming
		v.Action = model.ActionHITL
		v.HITLType = model.HITLVisionMismatch
		v.Rationale = fmt.Sprintf("drawing %s infers type %s but supplier requested %s", drawing.DrawingNo, inferred, review.RequestedTypeCode)
		v.EffectiveTypeCode = cls.TypeCode
		v.OrderAmount = rules.OrderAmount(cls.MaterialNo, cls.TypeCode)
		return v
	}

	// No drawing to verify against: fall back to pure text comparison.
	if review.RequestedTypeCode == cls.TypeCode {
		v.Outcome = model.OutcomeConforming
		v.Action = model.ActionConfirmed
		v.Rationale = "requested code matches the current type code (sub-type-only change)"
		v.OrderAmount = rules.OrderAmount(cls.MaterialNo, review.RequestedTypeCode)
		return v
	}

	v.Outcome = model.OutcomeNeedsReview
	v.Action = model.ActionHITL
	v.HITLType = model.HITLNoDrawing
	v.Rationale = fmt.Sprintf("type change %s to %s cannot be verified without a drawing", cls.TypeCode, review.RequestedTypeCode)
	v.EffectiveTypeCode = cls.TypeCode
	v.OrderAmount = rules.OrderAmount(cls.MaterialNo, cls.TypeCode)
	return v
}
