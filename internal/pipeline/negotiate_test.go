package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/steelfab-ops/fitpo/internal/model"
)

var negotiationRefs = []model.PriceEntry{
	{TypeCode: "M", AttributeGroup: "FTG-200", UnitPrice: 290},
	{TypeCode: "M", AttributeGroup: "FTG-210", UnitPrice: 285},
	{TypeCode: "M", AttributeGroup: "FTG-220", UnitPrice: 300},
}

func negotiationReview() model.ReviewResponse {
	return model.ReviewResponse{
		MaterialNo:     "KZ-70014",
		Disposition:    model.DispositionNegotiation,
		RequestedPrice: 310,
	}
}

func TestLocalAverage(t *testing.T) {
	assert.InDelta(t, (290.0+285.0+300.0)/3.0, localAverage(negotiationRefs, 310), 0.001)

	// Empty slice: the requested price itself, never a misleading zero.
	assert.Equal(t, 310.0, localAverage(nil, 310))
}

func TestAnalyzePrice_ModelResponse(t *testing.T) {
	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"recommended_price": 295, "strategy": "firm", "rationale": ["requested price is above all references"], "historical_summary": "contract prices for type M cluster around 290"}`), nil).
		Once()

	pa := analyzePrice(context.Background(), ai, phase1Config(), negotiationReview(), clsFixture("KZ-70014", "M"), negotiationRefs)
	require.NotNil(t, pa)

	assert.Equal(t, "model", pa.Source)
	assert.Equal(t, 295.0, pa.RecommendedPrice)
	assert.Equal(t, "firm", pa.Strategy)
	assert.NotEmpty(t, pa.Rationale)
}

func TestAnalyzePrice_BackfillsMissingFields(t *testing.T) {
	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"recommended_price": 0, "strategy": "", "rationale": []}`), nil).
		Once()

	pa := analyzePrice(context.Background(), ai, phase1Config(), negotiationReview(), clsFixture("KZ-70014", "M"), negotiationRefs)
	require.NotNil(t, pa)

	assert.Equal(t, "model", pa.Source)
	assert.InDelta(t, pa.ReferenceAverage, pa.RecommendedPrice, 0.001)
	assert.Equal(t, strategyModerate, pa.Strategy)
	assert.NotEmpty(t, pa.Rationale)
}

func TestAnalyzePrice_CallFailureFallsBack(t *testing.T) {
	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout")).
		Once()

	pa := analyzePrice(context.Background(), ai, phase1Config(), negotiationReview(), clsFixture("KZ-70014", "M"), negotiationRefs)
	require.NotNil(t, pa)

	assert.Equal(t, "fallback", pa.Source)
	assert.InDelta(t, (290.0+285.0+300.0)/3.0, pa.RecommendedPrice, 0.001)
	assert.Equal(t, strategyModerate, pa.Strategy)
}

func TestAnalyzePrice_MalformedOutputFallsBack(t *testing.T) {
	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("I think the supplier price seems reasonable."), nil).
		Once()

	pa := analyzePrice(context.Background(), ai, phase1Config(), negotiationReview(), clsFixture("KZ-70014", "M"), negotiationRefs)
	require.NotNil(t, pa)
	assert.Equal(t, "fallback", pa.Source)
}

func TestAnalyzePrice_FallbackWithNonPositiveAverage(t *testing.T) {
	// Zero-priced references force the 90%-of-requested floor.
	zeroRefs := []model.PriceEntry{{TypeCode: "M", UnitPrice: 0}}

	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom")).
		Once()

	pa := analyzePrice(context.Background(), ai, phase1Config(), negotiationReview(), clsFixture("KZ-70014", "M"), zeroRefs)
	require.NotNil(t, pa)
	assert.InDelta(t, 310*0.9, pa.RecommendedPrice, 0.001)
}

func TestReconcileNegotiation(t *testing.T) {
	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("unavailable")).
		Once()

	v := reconcileNegotiation(context.Background(), ai, phase1Config(), negotiationReview(), clsFixture("KZ-70014", "M"), negotiationRefs)

	assert.Equal(t, model.ActionHITL, v.Action)
	assert.Equal(t, model.HITLNegotiation, v.HITLType)
	assert.Equal(t, model.OutcomeNeedsReview, v.Outcome)
	require.NotNil(t, v.PriceAnalysis)
	assert.Equal(t, "fallback", v.PriceAnalysis.Source)
	assert.Positive(t, v.OrderAmount)
}
