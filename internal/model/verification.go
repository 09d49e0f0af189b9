package model

// VerificationOutcome grades a supplier response against expectations.
type VerificationOutcome string

const (
	OutcomeConforming    VerificationOutcome = "conforming"
	OutcomeNonconforming VerificationOutcome = "nonconforming"
	OutcomeNeedsReview   VerificationOutcome = "needs-review"
)

// RecommendedAction is what the reconciler wants done with the item.
type RecommendedAction string

const (
	ActionConfirmed RecommendedAction = "confirmed"
	ActionHITL      RecommendedAction = "hitl"
	ActionCancelled RecommendedAction = "review-cancelled"
)

// HITLType narrows why an item needs a human decision. Set exactly when
// the recommended action is ActionHITL.
type HITLType string

const (
	HITLNegotiation    HITLType = "negotiation"
	HITLVisionMismatch HITLType = "vision-mismatch"
	HITLNoDrawing      HITLType = "no-drawing"
	HITLImpossible     HITLType = "fabrication-impossible"
)

// PriceAnalysis is the negotiation analyzer's recommendation for one
// negotiation-required item. Source records whether the payload came from
// the model or the deterministic fallback.
type PriceAnalysis struct {
	RecommendedPrice  float64  `json:"recommended_price"`
	Strategy          string   `json:"strategy"`
	Rationale         []string `json:"rationale"`
	HistoricalSummary string   `json:"historical_summary"`
	ReferenceAverage  float64  `json:"reference_average"`
	Source            string   `json:"source"` // "model" or "fallback"
}

// Verification is the Phase 2 record for one reviewed material. This is
// the only mutable entity in the model: a HITL decision transitions
// ActionHITL to ActionConfirmed or ActionCancelled and appends to the
// rationale.
type Verification struct {
	MaterialNo        string              `json:"material_no"`
	Disposition       Disposition         `json:"disposition"`
	Outcome           VerificationOutcome `json:"outcome"`
	Action            RecommendedAction   `json:"action"`
	Rationale         string              `json:"rationale"`
	HITLType          HITLType            `json:"hitl_type,omitempty"`
	PriceAnalysis     *PriceAnalysis      `json:"price_analysis,omitempty"`
	EffectiveTypeCode string              `json:"effective_type_code"`
	OrderAmount       int                 `json:"order_amount"`
}
