package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelfab-ops/fitpo/internal/config"
	"github.com/steelfab-ops/fitpo/internal/model"
	"github.com/steelfab-ops/fitpo/internal/refdata"
	"github.com/steelfab-ops/fitpo/pkg/anthropic"
)

// Engine owns the run state machine: six sequential stages over the
// reference dataset, plus the out-of-band HITL decision entry points. All
// entry points serialize on one mutex; concurrent starts and HITL
// mutations against an in-progress run are rejected rather than
// interleaved, because the run state and PO sequence are shared instances
// with no isolation.
type Engine struct {
	mu    sync.Mutex
	cfg   *config.Config
	ai    anthropic.Client
	data  *refdata.Set
	state *model.RunState
	poGen *poNumberGenerator

	// reviews joined during stage 2, consumed by stages 3 and 4.
	reviews []model.ReviewResponse

	now func() time.Time
}

// NewEngine creates an engine over a loaded reference dataset.
func NewEngine(cfg *config.Config, ai anthropic.Client, data *refdata.Set) *Engine {
	return &Engine{
		cfg:   cfg,
		ai:    ai,
		data:  data,
		state: model.NewRunState(),
		poGen: newPONumberGenerator(cfg.PO.Prefix, time.Now()),
		now:   time.Now,
	}
}

// Run executes stages 1-6 synchronously. A second Run while one is in
// progress fails with ErrAlreadyRunning. On stage error the run halts with
// the partial state preserved (not rolled back) and the error propagates.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Running {
		e.mu.Unlock()
		return eris.Wrap(ErrAlreadyRunning, "run: start rejected")
	}
	if err := e.cfg.Validate(); err != nil {
		e.mu.Unlock()
		return eris.Wrap(ErrConfiguration, err.Error())
	}

	// Fresh state and PO sequence per run so repeated demo runs within
	// the same process never collide on order numbers.
	e.state = model.NewRunState()
	e.state.RunID = uuid.NewString()
	e.state.Running = true
	e.state.StartedAt = e.now()
	e.poGen = newPONumberGenerator(e.cfg.PO.Prefix, e.now())
	e.reviews = nil
	e.mu.Unlock()

	zap.L().Info("run: starting", zap.String("run_id", e.state.RunID))
	err := e.runStages(ctx)

	e.mu.Lock()
	e.state.Running = false
	e.state.FinishedAt = e.now()
	e.mu.Unlock()

	if err != nil {
		zap.L().Error("run: halted", zap.Error(err))
		return err
	}
	zap.L().Info("run: completed", zap.String("run_id", e.state.RunID))
	return nil
}

func (e *Engine) runStages(ctx context.Context) error {
	stages := []struct {
		idx int
		fn  func(context.Context) (string, error)
	}{
		{model.StageClassification, e.stageClassification},
		{model.StageReviewIntake, e.stageReviewIntake},
		{model.StageReconciliation, e.stageReconciliation},
		{model.StageNegotiation, e.stageNegotiation},
		{model.StagePOIssuance, e.stagePOIssuance},
		{model.StageSummary, e.stageSummary},
	}

	for _, s := range stages {
		e.setStage(s.idx, model.StageProcessing, "")
		msg, err := s.fn(ctx)
		if err != nil {
			e.setStage(s.idx, model.StageError, err.Error())
			return err
		}
		e.setStage(s.idx, model.StageCompleted, msg)
		zap.L().Info("run: stage completed",
			zap.String("stage", model.StageNames[s.idx]),
			zap.String("result", msg),
		)
	}
	return nil
}

func (e *Engine) setStage(idx int, status model.StageStatus, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CurrentStage = idx
	e.state.Stages[idx].Status = status
	e.state.Stages[idx].Message = msg
}

// callCtx bounds a single inference call. No automatic retry; failure
// handling is the caller's contract.
func (e *Engine) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(e.cfg.Anthropic.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// --- stages ---

func (e *Engine) stageClassification(ctx context.Context) (string, error) {
	cctx, cancel := e.callCtx(ctx)
	defer cancel()

	cls, err := classifyItems(cctx, e.ai, e.cfg.Anthropic, e.data.Items, e.data.Prices)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.state.Classifications = cls
	e.mu.Unlock()
	return fmt.Sprintf("%d of %d items classified", len(cls), len(e.data.Items)), nil
}

func (e *Engine) stageReviewIntake(context.Context) (string, error) {
	e.mu.Lock()
	targets := make(map[string]bool)
	for _, c := range e.state.Classifications {
		if c.FinalClass == model.ClassQuantityReview {
			targets[c.MaterialNo] = true
		}
	}
	e.mu.Unlock()

	e.reviews = e.data.ReviewsFor(targets)
	return fmt.Sprintf("%d review responses joined for %d review targets", len(e.reviews), len(targets)), nil
}

func (e *Engine) stageReconciliation(context.Context) (string, error) {
	count := 0
	for _, review := range e.reviews {
		if review.Disposition == model.DispositionNegotiation {
			continue
		}
		cls, ok := e.classification(review.MaterialNo)
		if !ok {
			continue
		}
		v := reconcile(review, cls, e.data)
		e.appendVerification(v)
		count++
	}
	return fmt.Sprintf("%d responses reconciled", count), nil
}

func (e *Engine) stageNegotiation(ctx context.Context) (string, error) {
	count := 0
	for _, review := range e.reviews {
		if review.Disposition != model.DispositionNegotiation {
			continue
		}
		cls, ok := e.classification(review.MaterialNo)
		if !ok {
			continue
		}

		cctx, cancel := e.callCtx(ctx)
		refs := e.data.PricesForType(cls.TypeCode, 10)
		v := reconcileNegotiation(cctx, e.ai, e.cfg.Anthropic, review, cls, refs)
		cancel()

		e.appendVerification(v)
		count++
	}
	return fmt.Sprintf("%d negotiation items analyzed", count), nil
}

func (e *Engine) stagePOIssuance(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, v := range e.state.Verifications {
		if v.Action != model.ActionConfirmed || e.hasOrderLocked(v.MaterialNo) {
			continue
		}
		if cls, ok := e.classificationLocked(v.MaterialNo); ok {
			e.state.Orders = append(e.state.Orders, e.buildOrderLocked(cls, v))
		}
	}
	return fmt.Sprintf("%d purchase orders issued", len(e.state.Orders)), nil
}

func (e *Engine) stageSummary(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Summary = computeSummary(e.state)
	e.state.Stages[model.StageSummary].Payload = e.state.Summary
	return fmt.Sprintf("automation rate %.0f%%", e.state.Summary.AutomationRate*100), nil
}

// --- HITL decisions ---

// Approve transitions a pending HITL verification to confirmed, issues its
// purchase order if none exists, and recomputes the issuance/summary
// display data. Stages 1-4 are not re-run.
func (e *Engine) Approve(materialNo string) (*model.RunState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Running {
		return nil, eris.Wrap(ErrAlreadyRunning, "hitl: decisions are rejected while a run is in progress")
	}

	v := e.pendingHITLLocked(materialNo)
	if v == nil {
		return nil, eris.Wrap(ErrNotFound, "hitl: no pending decision for material "+materialNo)
	}

	v.Action = model.ActionConfirmed
	v.Rationale += "; approved by reviewer"

	if !e.hasOrderLocked(materialNo) {
		if cls, ok := e.classificationLocked(materialNo); ok {
			e.state.Orders = append(e.state.Orders, e.buildOrderLocked(cls, *v))
		}
	}

	e.refreshDerivedLocked()
	zap.L().Info("hitl: approved", zap.String("material_no", materialNo))

	st := e.snapshotLocked()
	return &st, nil
}

// Reject transitions a pending HITL verification to review-cancelled with
// the given reason. No purchase order is issued.
func (e *Engine) Reject(materialNo, reason string) (*model.RunState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Running {
		return nil, eris.Wrap(ErrAlreadyRunning, "hitl: decisions are rejected while a run is in progress")
	}

	v := e.pendingHITLLocked(materialNo)
	if v == nil {
		return nil, eris.Wrap(ErrNotFound, "hitl: no pending decision for material "+materialNo)
	}

	v.Action = model.ActionCancelled
	if reason == "" {
		reason = "rejected by reviewer"
	}
	v.Rationale += "; rejected: " + reason

	e.refreshDerivedLocked()
	zap.L().Info("hitl: rejected",
		zap.String("material_no", materialNo),
		zap.String("reason", reason),
	)

	st := e.snapshotLocked()
	return &st, nil
}

// Reset clears all run state and restarts the PO sequence with a fresh
// date stamp. Rejected while a run is in progress.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Running {
		return eris.Wrap(ErrAlreadyRunning, "reset: rejected while a run is in progress")
	}

	e.state = model.NewRunState()
	e.poGen = newPONumberGenerator(e.cfg.PO.Prefix, e.now())
	e.reviews = nil
	zap.L().Info("run: state reset")
	return nil
}

// State returns a copy of the current run state.
func (e *Engine) State() model.RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// --- locked helpers ---

func (e *Engine) appendVerification(v model.Verification) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Verifications = append(e.state.Verifications, v)
}

func (e *Engine) classification(materialNo string) (model.Classification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classificationLocked(materialNo)
}

func (e *Engine) classificationLocked(materialNo string) (model.Classification, bool) {
	for _, c := range e.state.Classifications {
		if c.MaterialNo == materialNo {
			return c, true
		}
	}
	return model.Classification{}, false
}

func (e *Engine) pendingHITLLocked(materialNo string) *model.Verification {
	for i := range e.state.Verifications {
		v := &e.state.Verifications[i]
		if v.MaterialNo == materialNo && v.Action == model.ActionHITL {
			return v
		}
	}
	return nil
}

func (e *Engine) hasOrderLocked(materialNo string) bool {
	for _, o := range e.state.Orders {
		if o.MaterialNo == materialNo {
			return true
		}
	}
	return false
}

func (e *Engine) buildOrderLocked(cls model.Classification, v model.Verification) model.PurchaseOrder {
	return model.PurchaseOrder{
		PONo:        e.poGen.Generate(),
		PRNo:        cls.PRNo,
		MaterialNo:  cls.MaterialNo,
		Fabricator:  cls.Fabricator,
		OrderAmount: v.OrderAmount,
		OrderDate:   e.now(),
		Status:      model.POStatusIssued,
		Disposition: v.Disposition,
		Outcome:     v.Outcome,
	}
}

// refreshDerivedLocked recomputes the stage-5/6 display data and the
// summary after a HITL mutation, when those stages have already completed.
func (e *Engine) refreshDerivedLocked() {
	if e.state.Stages[model.StagePOIssuance].Status == model.StageCompleted {
		e.state.Stages[model.StagePOIssuance].Message = fmt.Sprintf("%d purchase orders issued", len(e.state.Orders))
	}
	if e.state.Stages[model.StageSummary].Status == model.StageCompleted {
		e.state.Summary = computeSummary(e.state)
		e.state.Stages[model.StageSummary].Payload = e.state.Summary
		e.state.Stages[model.StageSummary].Message = fmt.Sprintf("automation rate %.0f%%", e.state.Summary.AutomationRate*100)
	}
}

func (e *Engine) snapshotLocked() model.RunState {
	st := *e.state
	st.Classifications = append([]model.Classification(nil), e.state.Classifications...)
	st.Verifications = append([]model.Verification(nil), e.state.Verifications...)
	st.Orders = append([]model.PurchaseOrder(nil), e.state.Orders...)
	if e.state.Summary != nil {
		s := *e.state.Summary
		st.Summary = &s
	}
	return st
}
