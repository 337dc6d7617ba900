package workflow

import (
	"context"
	"sync"

	"github.com/oneacrefund/fieldops-console/pkg/serrors"
)

// Phase is where a record action currently stands. Transitions are
// Closed -> Open -> Submitting, with Submitting falling back to Open when
// the remote call fails and closing only on success or cancel.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Kind names the action a workflow was opened for.
type Kind string

const (
	KindCreate Kind = "create"
	KindEdit   Kind = "edit"
	KindView   Kind = "view"
	KindDelete Kind = "delete"
	KindKeep   Kind = "keep"
)

var (
	// ErrBusy rejects opening a workflow while another one is active.
	ErrBusy = serrors.NewError("WORKFLOW_BUSY", "another action is already in progress", "Workflows.Errors.Busy")
	// ErrNotOpen rejects submit and confirm outside an open workflow.
	ErrNotOpen = serrors.NewError("WORKFLOW_NOT_OPEN", "no action is in progress", "Workflows.Errors.NotOpen")
	// ErrNotConfirmed gates destructive submits behind an explicit confirmation.
	ErrNotConfirmed = serrors.NewError("WORKFLOW_NOT_CONFIRMED", "the action has not been confirmed", "Workflows.Errors.NotConfirmed")
)

// ValidationError wraps a pre-dispatch validation failure so callers can
// distinguish it from a remote rejection. The workflow stays open with its
// context intact.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ValidateFunc checks the workflow context before any remote dispatch.
type ValidateFunc[C any] func(C) error

// DispatchFunc performs the remote call carrying out the action.
type DispatchFunc[C any] func(ctx context.Context, record C) error

// Workflow is a single-slot record action: one record context, one phase.
// A screen typically holds one per action family so a farmer edit cannot
// race a farmer delete.
type Workflow[C any] struct {
	mu        sync.Mutex
	phase     Phase
	kind      Kind
	record    C
	confirmed bool
}

func New[C any]() *Workflow[C] {
	return &Workflow[C]{}
}

// Open starts an action for record. A workflow that is already open or
// submitting rejects the attempt so a second dialog cannot trample the
// first one's context.
func (w *Workflow[C]) Open(kind Kind, record C) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseClosed {
		return ErrBusy
	}
	w.phase = PhaseOpen
	w.kind = kind
	w.record = record
	w.confirmed = false
	return nil
}

// Prepare readies the workflow for kind. A closed workflow opens; a
// workflow left open by a failed submit of the same kind adopts the new
// record context, which is how a correct-and-retry arrives from the
// dashboard as a fresh request. A different kind, or a dispatch still in
// flight, is rejected.
func (w *Workflow[C]) Prepare(kind Kind, record C) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseSubmitting {
		return ErrBusy
	}
	if w.phase == PhaseOpen && w.kind != kind {
		return ErrBusy
	}
	w.phase = PhaseOpen
	w.kind = kind
	w.record = record
	w.confirmed = false
	return nil
}

// Phase returns the current phase.
func (w *Workflow[C]) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Kind returns the action the workflow was opened for. Meaningless while
// closed.
func (w *Workflow[C]) Kind() Kind {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.kind
}

// Record returns the action's record context. The second return value is
// false while closed.
func (w *Workflow[C]) Record() (C, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record, w.phase != PhaseClosed
}

// Confirm marks a destructive action as confirmed by the user.
func (w *Workflow[C]) Confirm() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseOpen {
		return ErrNotOpen
	}
	w.confirmed = true
	return nil
}

// Cancel discards an open action and its context. A submitting workflow
// cannot be cancelled out from under its in-flight request.
func (w *Workflow[C]) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.phase {
	case PhaseSubmitting:
		return ErrBusy
	case PhaseClosed:
		return nil
	}
	w.reset()
	return nil
}

// Submit validates the context and dispatches the remote call. Validation
// failures never reach the network and leave the workflow open. A failed
// dispatch also returns the workflow to open with the record context intact
// so the user can correct and retry; success closes it.
func (w *Workflow[C]) Submit(ctx context.Context, validate ValidateFunc[C], dispatch DispatchFunc[C]) error {
	w.mu.Lock()
	if w.phase != PhaseOpen {
		w.mu.Unlock()
		return ErrNotOpen
	}
	if w.kind == KindDelete && !w.confirmed {
		w.mu.Unlock()
		return ErrNotConfirmed
	}
	record := w.record
	if validate != nil {
		if err := validate(record); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	w.phase = PhaseSubmitting
	w.mu.Unlock()

	err := dispatch(ctx, record)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.phase = PhaseOpen
		return err
	}
	w.reset()
	return nil
}

func (w *Workflow[C]) reset() {
	var zero C
	w.phase = PhaseClosed
	w.kind = ""
	w.record = zero
	w.confirmed = false
}
