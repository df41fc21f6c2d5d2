package pos

// ActionKind tags the outcome of a quantity change decision.
type ActionKind int

const (
	// ActionCreateLine asks the cart to create a new line with quantity 1.
	ActionCreateLine ActionKind = iota
	// ActionApplyDirect changes the line quantity in place by Amount.
	ActionApplyDirect
	// ActionRequestCancellation opens a cancellation flow capped at MaxQty.
	// The line is not mutated until the flow is confirmed.
	ActionRequestCancellation
	// ActionReject aborts the change with a user-facing Reason.
	ActionReject
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreateLine:
		return "create_line"
	case ActionApplyDirect:
		return "apply_direct"
	case ActionRequestCancellation:
		return "request_cancellation"
	case ActionReject:
		return "reject"
	}
	return "unknown"
}

// Action is the decided effect of a requested quantity change. The handler
// interprets it; the decision itself performs no side effects.
type Action struct {
	Kind   ActionKind
	Amount int    // signed quantity delta, ActionApplyDirect only
	MaxQty int    // cancellation cap, ActionRequestCancellation only
	Reason string // ActionReject only
}

const (
	ReasonNoSuchLine    = "no such order line"
	ReasonNoChange      = "no quantity change requested"
	ReasonInPreparation = "cannot cancel further: item already in preparation"
)

// DecideQuantityChange resolves a requested quantity delta against the units
// already committed to the kitchen.
//
// Increases are always permitted: they only add new work. A decrease that
// consumes only not-yet-notified quantity applies directly. A decrease that
// would cut into already-notified quantity must go through an explicit
// cancellation flow, and is rejected outright when no notified unit is still
// cancellable.
func DecideQuantityChange(exists bool, cur, delta, totalSent, cancellable int) Action {
	if !exists {
		if delta > 0 {
			return Action{Kind: ActionCreateLine}
		}
		return Action{Kind: ActionReject, Reason: ReasonNoSuchLine}
	}

	if delta == 0 {
		return Action{Kind: ActionReject, Reason: ReasonNoChange}
	}

	if delta > 0 {
		return Action{Kind: ActionApplyDirect, Amount: delta}
	}

	next := cur + delta
	if next >= totalSent {
		// The reduction only consumes unsent quantity.
		nonSent := cur - totalSent
		if nonSent < 0 {
			nonSent = 0
		}
		apply := delta
		if apply < -nonSent {
			apply = -nonSent
		}
		return Action{Kind: ActionApplyDirect, Amount: apply}
	}

	if cancellable <= 0 {
		return Action{Kind: ActionReject, Reason: ReasonInPreparation}
	}

	return Action{Kind: ActionRequestCancellation, MaxQty: cancellable}
}
