package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/config"
	"github.com/steelfab-ops/fitpo/internal/model"
	"github.com/steelfab-ops/fitpo/internal/rules"
	"github.com/steelfab-ops/fitpo/pkg/anthropic"
)

const negotiateSystemPrompt = `You are a procurement price analyst for steel fitting materials. Given one negotiation request and up to 10 contract reference prices for the same type code, recommend a counter price. Respond with ONLY a JSON object:
{"recommended_price": <number, JPY per kg>, "strategy": "<accept|moderate|firm>", "rationale": ["<short point>", ...], "historical_summary": "<one sentence>"}`

// strategyModerate is the fallback negotiation tier.
const strategyModerate = "moderate"

var fallbackRationale = []string{
	"reference contract prices for the same type code were used as the anchor",
	"automated analysis was unavailable, apply standard negotiation margins",
}

// negotiationResponse is the single-object shape expected from the
// per-item analysis call.
type negotiationResponse struct {
	RecommendedPrice  float64  `json:"recommended_price"`
	Strategy          string   `json:"strategy"`
	Rationale         []string `json:"rationale"`
	HistoricalSummary string   `json:"historical_summary"`
}

// analyzePrice produces a price recommendation for one negotiation-required
// item. One inference call per item (these are comparatively rare, so they
// are not batched). Any call or parse failure degrades to the
// deterministic fallback; the analyzer never fails its caller.
func analyzePrice(ctx context.Context, ai anthropic.Client, aiCfg config.AnthropicConfig, review model.ReviewResponse, cls model.Classification, refs []model.PriceEntry) *model.PriceAnalysis {
	avg := localAverage(refs, review.RequestedPrice)

	resp, err := ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     aiCfg.Model,
		MaxTokens: 1024,
		System:    []anthropic.SystemBlock{{Text: negotiateSystemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: buildNegotiatePrompt(review, cls, refs, avg)},
		},
	})
	if err != nil {
		zap.L().Warn("negotiate: inference call failed, using deterministic fallback",
			zap.String("material_no", review.MaterialNo),
			zap.Error(err),
		)
		return fallbackAnalysis(review, avg)
	}
	resp.Usage.LogCost(aiCfg.Model, "negotiation-analysis")

	var rec negotiationResponse
	if err := recoverJSONObject(extractText(resp), &rec); err != nil {
		zap.L().Warn("negotiate: malformed analysis output, using deterministic fallback",
			zap.String("material_no", review.MaterialNo),
			zap.Error(err),
		)
		return fallbackAnalysis(review, avg)
	}

	// Backfill missing fields from the local average.
	if rec.RecommendedPrice <= 0 {
		rec.RecommendedPrice = avg
	}
	if rec.Strategy == "" {
		rec.Strategy = strategyModerate
	}
	if len(rec.Rationale) == 0 {
		rec.Rationale = fallbackRationale
	}

	return &model.PriceAnalysis{
		RecommendedPrice:  rec.RecommendedPrice,
		Strategy:          rec.Strategy,
		Rationale:         rec.Rationale,
		HistoricalSummary: rec.HistoricalSummary,
		ReferenceAverage:  avg,
		Source:            "model",
	}
}

// localAverage is the arithmetic mean of the reference slice, or the
// requested price itself when the slice is empty (a zero average would
// mislead the negotiation recommendation).
func localAverage(refs []model.PriceEntry, requested float64) float64 {
	if len(refs) == 0 {
		return requested
	}
	sum := 0.0
	for _, r := range refs {
		sum += r.UnitPrice
	}
	return sum / float64(len(refs))
}

func fallbackAnalysis(review model.ReviewResponse, avg float64) *model.PriceAnalysis {
	price := avg
	if price <= 0 {
		price = review.RequestedPrice * 0.9
	}
	return &model.PriceAnalysis{
		RecommendedPrice:  price,
		Strategy:          strategyModerate,
		Rationale:         fallbackRationale,
		HistoricalSummary: "no model analysis available for this item",
		ReferenceAverage:  avg,
		Source:            "fallback",
	}
}

func buildNegotiatePrompt(review model.ReviewResponse, cls model.Classification, refs []model.PriceEntry, avg float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Material %s (%s), type code %s, attribute group %s.\n",
		cls.MaterialNo, cls.Description, cls.TypeCode, cls.AttributeGroup)
	fmt.Fprintf(&b, "Supplier requests %.0f JPY/kg.\n", review.RequestedPrice)
	fmt.Fprintf(&b, "Local reference average: %.1f JPY/kg.\n", avg)

	b.WriteString("Reference contract prices (attribute group / unit price):\n")
	for _, r := range refs {
		fmt.Fprintf(&b, "- %s / %.0f\n", r.AttributeGroup, r.UnitPrice)
	}

	return b.String()
}

// reconcileNegotiation wraps the analyzer result into a verification
// record. Negotiation items always route to HITL; the order amount is an
// estimate from the current type code and does not imply confirmation.
func reconcileNegotiation(ctx context.Context, ai anthropic.Client, aiCfg config.AnthropicConfig, review model.ReviewResponse, cls model.Classification, refs []model.PriceEntry) model.Verification {
	analysis := analyzePrice(ctx, ai, aiCfg, review, cls, refs)
	return model.Verification{
		MaterialNo:        review.MaterialNo,
		Disposition:       review.Disposition,
		Outcome:           model.OutcomeNeedsReview,
		Action:            model.ActionHITL,
		HITLType:          model.HITLNegotiation,
		Rationale:         fmt.Sprintf("supplier requests price negotiation at %.0f JPY/kg", review.RequestedPrice),
		PriceAnalysis:     analysis,
		EffectiveTypeCode: cls.TypeCode,
		OrderAmount:       rules.OrderAmount(cls.MaterialNo, cls.TypeCode),
	}
}
