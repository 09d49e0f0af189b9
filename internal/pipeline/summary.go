package pipeline

import "github.com/steelfab-ops/fitpo/internal/model"

// computeSummary derives run-level statistics from the current result set.
// It is always recomputed from scratch so repeated invocations (stage 6,
// every HITL mutation) stay idempotent.
func computeSummary(state *model.RunState) *model.Summary {
	s := &model.Summary{
		TotalItems: len(state.Classifications),
		Verified:   len(state.Verifications),
		POCount:    len(state.Orders),
	}

	for _, c := range state.Classifications {
		switch c.FinalClass {
		case model.ClassQuantityReview:
			s.QuantityReview++
		case model.ClassQuoteRequired:
			s.QuoteRequired++
		}
	}

	for _, v := range state.Verifications {
		switch v.Action {
		case model.ActionConfirmed:
			s.Confirmed++
		case model.ActionHITL:
			s.HITLPending++
		case model.ActionCancelled:
			s.Cancelled++
		}
	}

	if s.Verified > 0 {
		s.AutomationRate = float64(s.Confirmed+s.Cancelled) / float64(s.Verified)
	}

	for _, o := range state.Orders {
		s.TotalPOValue += o.OrderAmount
	}

	return s
}
