package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/config"
	"github.com/steelfab-ops/fitpo/internal/model"
	"github.com/steelfab-ops/fitpo/internal/rules"
	"github.com/steelfab-ops/fitpo/pkg/anthropic"
)

const classifySystemPrompt = `You are a procurement classifier for steel fitting materials. For every purchase-request line item in the user message, judge whether a contract price is on file (the contract price table excerpt is included) and whether the existing type code fits the material description. Respond with ONLY a JSON array, one object per item, in the same order as the input, with this shape:
{"contract_price_exists": <bool>, "contract_price_reason": "<short reason>", "type_code": "<single letter>", "type_code_adequate": <bool>, "recommended_type_code": "<single letter or empty>", "type_code_reason": "<short reason>", "paint_pass_through": "<Y or N>"}`

// phase1Item is the per-line shape expected back from the batched
// classification call.
type phase1Item struct {
	ContractPriceExists bool   `json:"contract_price_exists"`
	ContractPriceReason string `json:"contract_price_reason"`
	TypeCode            string `json:"type_code"`
	TypeCodeAdequate    bool   `json:"type_code_adequate"`
	RecommendedTypeCode string `json:"recommended_type_code"`
	TypeCodeReason      string `json:"type_code_reason"`
	PassThrough         string `json:"paint_pass_through"`
}

// classifyItems runs Phase 1: one batched inference call covering every PR
// line item (a deliberate throughput/cost decision), recovered as a JSON
// array and joined back by positional index. The deterministic rule layer
// then overrides contract-price existence, the final routing class, the
// paint pass-through and vendor fields, and the order amount. A failed
// call or exhausted recovery aborts the stage; a recovered array shorter
// than the input means the trailing items get no classification record.
func classifyItems(ctx context.Context, ai anthropic.Client, aiCfg config.AnthropicConfig, items []model.PRLineItem, prices []model.PriceEntry) ([]model.Classification, error) {
	if len(items) == 0 {
		return nil, nil
	}

	resp, err := ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     aiCfg.Model,
		MaxTokens: int64(aiCfg.MaxTokens),
		System:    anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: buildClassifyPrompt(items, prices)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(ErrInferenceCall, "phase1: batched classification call: "+err.Error())
	}
	resp.Usage.LogCost(aiCfg.Model, "phase1-classification")

	var recovered []phase1Item
	if err := recoverJSONArray(extractText(resp), &recovered); err != nil {
		return nil, eris.Wrap(err, "phase1: recover classification array")
	}

	if len(recovered) < len(items) {
		zap.L().Warn("phase1: recovered fewer records than items, trailing items unclassified",
			zap.Int("items", len(items)),
			zap.Int("recovered", len(recovered)),
		)
	}

	n := len(recovered)
	if n > len(items) {
		n = len(items)
	}

	out := make([]model.Classification, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, buildClassification(items[i], recovered[i], prices))
	}
	return out, nil
}

// buildClassification merges one recovered inference record with its
// source item and applies the deterministic overrides.
func buildClassification(item model.PRLineItem, inf phase1Item, prices []model.PriceEntry) model.Classification {
	cls := model.Classification{
		MaterialNo:     item.MaterialNo,
		PRNo:           item.PRNo,
		Description:    item.Description,
		AttributeGroup: item.AttributeGroup,
		Grade:          item.Grade,
		TypeCode:       item.TypeCode,
		Fabricator:     item.Fabricator,
		PaintCode:      item.PaintCode,

		InferredTypeCode:    inf.TypeCode,
		TypeCodeAdequate:    inf.TypeCodeAdequate,
		RecommendedTypeCode: inf.RecommendedTypeCode,
		TypeCodeReason:      inf.TypeCodeReason,
	}

	// Contract-price existence is a business rule, not a model judgment.
	// The model's rationale is kept only when it agrees with the rule.
	exists, reason := rules.HasContractPrice(prices, item.AttributeGroup)
	cls.ContractPriceExists = exists
	cls.ContractPriceReason = reason
	if inf.ContractPriceExists == exists && inf.ContractPriceReason != "" {
		cls.ContractPriceReason = inf.ContractPriceReason
	}

	// Pass-through is always recomputed; the inference value is discarded.
	cls.PassThrough = rules.PassThrough(item.PaintCode)
	if cls.PassThrough == "Y" {
		cls.PaintVendorName, cls.PaintVendorCode = rules.AssignPaintVendor(item.Fabricator)
	}

	cls.FinalClass = rules.Classify(exists)
	cls.OrderAmount = rules.OrderAmount(item.MaterialNo, item.TypeCode)

	return cls
}

func buildClassifyPrompt(items []model.PRLineItem, prices []model.PriceEntry) string {
	var b strings.Builder

	b.WriteString("Contract price table (type code / attribute group / unit price JPY per kg):\n")
	for _, p := range prices {
		fmt.Fprintf(&b, "- %s / %s / %.0f\n", p.TypeCode, p.AttributeGroup, p.UnitPrice)
	}

	b.WriteString("\nPurchase-request line items:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. material_no=%s pr_no=%s description=%q attribute_group=%s grade=%s type_code=%s fabricator=%q paint_code=%q\n",
			i+1, item.MaterialNo, item.PRNo, item.Description, item.AttributeGroup,
			item.Grade, item.TypeCode, item.Fabricator, item.PaintCode)
	}

	fmt.Fprintf(&b, "\nReturn a JSON array with exactly %d objects, in input order.\n", len(items))
	return b.String()
}

// extractText concatenates the text blocks of a message response.
func extractText(resp *anthropic.MessageResponse) string {
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
