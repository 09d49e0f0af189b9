package model

import "time"

// StageStatus tracks one stage of the run state machine.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageProcessing StageStatus = "processing"
	StageCompleted  StageStatus = "completed"
	StageError      StageStatus = "error"
)

// Stage indices into RunState.Stages. Stages execute strictly in order.
const (
	StageClassification = iota
	StageReviewIntake
	StageReconciliation
	StageNegotiation
	StagePOIssuance
	StageSummary
	StageCount
)

// StageNames maps stage indices to their display names.
var StageNames = [StageCount]string{
	"classification",
	"review-intake",
	"reconciliation",
	"negotiation-analysis",
	"po-issuance",
	"summary",
}

// StageState is the live status of a single pipeline stage.
type StageState struct {
	Name    string      `json:"name"`
	Status  StageStatus `json:"status"`
	Message string      `json:"message,omitempty"`
	Payload any         `json:"payload,omitempty"`
}

// Summary holds run-level statistics derived from the current result set.
// Always recomputed from scratch, never incrementally accumulated.
type Summary struct {
	TotalItems     int     `json:"total_items"`
	QuantityReview int     `json:"quantity_review"`
	QuoteRequired  int     `json:"quote_required"`
	Verified       int     `json:"verified"`
	Confirmed      int     `json:"confirmed"`
	HITLPending    int     `json:"hitl_pending"`
	Cancelled      int     `json:"cancelled"`
	AutomationRate float64 `json:"automation_rate"`
	POCount        int     `json:"po_count"`
	TotalPOValue   int     `json:"total_po_value"`
}

// RunState is the process-lifetime state of the classification run. It is
// not persisted across restarts; reset clears it entirely.
type RunState struct {
	RunID        string                 `json:"run_id"`
	Running      bool                   `json:"running"`
	CurrentStage int                    `json:"current_stage"`
	Stages       [StageCount]StageState `json:"stages"`

	Classifications []Classification `json:"classifications"`
	Verifications   []Verification   `json:"verifications"`
	Orders          []PurchaseOrder  `json:"orders"`
	Summary         *Summary         `json:"summary,omitempty"`

	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// NewRunState returns an empty state with all stages pending.
func NewRunState() *RunState {
	s := &RunState{}
	for i := range s.Stages {
		s.Stages[i] = StageState{Name: StageNames[i], Status: StagePending}
	}
	return s
}
