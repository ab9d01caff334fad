package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidReason     = errors.New("invalid return reason")
	ErrInvalidResolution = errors.New("invalid return resolution")
	ErrRefundNotAllowed  = errors.New("refund status requires refund to wallet")
	ErrInvalidStep       = errors.New("invalid return step")
)

type ReturnReason string

const (
	ReasonDamaged            ReturnReason = "Damaged product"
	ReasonWrongItem          ReturnReason = "Wrong item"
	ReasonNotSatisfied       ReturnReason = "Not satisfied"
	ReasonWrongItemDelivered ReturnReason = "Wrong item delivered"
	ReasonNotAsDescribed     ReturnReason = "Item not as described"
	ReasonBetterPrice        ReturnReason = "Better price available"
	ReasonNoLongerNeeded     ReturnReason = "No longer needed"
)

var returnReasons = []ReturnReason{
	ReasonDamaged,
	ReasonWrongItem,
	ReasonNotSatisfied,
	ReasonWrongItemDelivered,
	ReasonNotAsDescribed,
	ReasonBetterPrice,
	ReasonNoLongerNeeded,
}

func ParseReturnReason(s string) (ReturnReason, error) {
	for _, r := range returnReasons {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidReason
}

type Resolution string

const (
	ResolutionRefund      Resolution = "Refund to Wallet"
	ResolutionReplacement Resolution = "Replacement"
)

func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionRefund, ResolutionReplacement:
		return Resolution(s), nil
	}
	return "", ErrInvalidResolution
}

type ReturnStep string

const (
	StepRequested          ReturnStep = "Return Requested"
	StepPickupScheduled    ReturnStep = "Pickup Scheduled"
	StepPickedUp           ReturnStep = "Item Picked Up"
	StepRefundInitiated    ReturnStep = "Refund Initiated"
	StepReplacementShipped ReturnStep = "Replacement Shipped"
)

var returnStepTransitions = transitions[ReturnStep]{
	StepRequested:       {StepPickupScheduled},
	StepPickupScheduled: {StepPickedUp},
	StepPickedUp:        {StepRefundInitiated, StepReplacementShipped},
}

func (s ReturnStep) Terminal() bool {
	return s == StepRefundInitiated || s == StepReplacementShipped
}

type RefundStatus string

const (
	RefundInitiated  RefundStatus = "Initiated"
	RefundProcessing RefundStatus = "Processing"
	RefundCompleted  RefundStatus = "Completed"
)

var refundTransitions = transitions[RefundStatus]{
	RefundInitiated:  {RefundProcessing},
	RefundProcessing: {RefundCompleted},
}

type TimelineEntry struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// ReturnRequest is owned by the Order it is attached to.
type ReturnRequest struct {
	Reason       ReturnReason    `json:"reason"`
	Resolution   Resolution      `json:"resolution"`
	StatusStep   ReturnStep      `json:"statusStep"`
	RefundStatus RefundStatus    `json:"refundStatus,omitempty"`
	PickupDate   string          `json:"pickupDate,omitempty"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	RequestedAt  time.Time       `json:"requestedAt"`
	Timeline     []TimelineEntry `json:"timeline"`
}

func NewReturnRequest(reason ReturnReason, resolution Resolution, pickupDate string, amount decimal.Decimal, now time.Time) ReturnRequest {
	r := ReturnRequest{
		Reason:       reason,
		Resolution:   resolution,
		StatusStep:   StepRequested,
		PickupDate:   pickupDate,
		RefundAmount: amount,
		RequestedAt:  now,
		Timeline:     []TimelineEntry{{Label: string(StepRequested), At: now}},
	}
	if resolution == ResolutionRefund {
		r.RefundStatus = RefundInitiated
	}
	return r
}

func (r ReturnRequest) Validate() error {
	if _, err := ParseReturnReason(string(r.Reason)); err != nil {
		return err
	}
	if _, err := ParseResolution(string(r.Resolution)); err != nil {
		return err
	}
	if r.RefundStatus != "" && r.Resolution != ResolutionRefund {
		return ErrRefundNotAllowed
	}
	if _, ok := refundRank[r.RefundStatus]; !ok {
		return ErrInvalidStep
	}
	if _, ok := stepRank[r.StatusStep]; !ok {
		return ErrInvalidStep
	}
	if r.StatusStep.Terminal() && r.StatusStep != r.FinalStep() {
		return ErrInvalidStep
	}
	return nil
}

// Replaces checks that r may take the place of current without moving the
// step or the refund status backward.
func (r ReturnRequest) Replaces(current ReturnRequest) error {
	if stepRank[r.StatusStep] < stepRank[current.StatusStep] {
		return &TransitionError{Entity: "return", From: string(current.StatusStep), To: string(r.StatusStep)}
	}
	if r.Resolution == current.Resolution && refundRank[r.RefundStatus] < refundRank[current.RefundStatus] {
		return &TransitionError{Entity: "refund", From: string(current.RefundStatus), To: string(r.RefundStatus)}
	}
	return nil
}

// Advance moves the request one step forward. The terminal step has to match
// the resolution.
func (r *ReturnRequest) Advance(next ReturnStep, now time.Time) error {
	if err := returnStepTransitions.check("return", r.StatusStep, next); err != nil {
		return err
	}
	if (next == StepRefundInitiated && r.Resolution != ResolutionRefund) ||
		(next == StepReplacementShipped && r.Resolution != ResolutionReplacement) {
		return &TransitionError{Entity: "return", From: string(r.StatusStep), To: string(next)}
	}

	r.StatusStep = next
	r.Timeline = append(r.Timeline, TimelineEntry{Label: string(next), At: now})
	return nil
}

func (r *ReturnRequest) AdvanceRefund(next RefundStatus, now time.Time) error {
	if r.Resolution != ResolutionRefund {
		return ErrRefundNotAllowed
	}
	if err := refundTransitions.check("refund", r.RefundStatus, next); err != nil {
		return err
	}

	r.RefundStatus = next
	r.Timeline = append(r.Timeline, TimelineEntry{Label: "Refund " + string(next), At: now})
	return nil
}

// FinalStep is the terminal step that matches the resolution.
func (r ReturnRequest) FinalStep() ReturnStep {
	if r.Resolution == ResolutionRefund {
		return StepRefundInitiated
	}
	return StepReplacementShipped
}

var refundRank = map[RefundStatus]int{
	"":               0,
	RefundInitiated:  1,
	RefundProcessing: 2,
	RefundCompleted:  3,
}

var stepRank = map[ReturnStep]int{
	StepRequested:          0,
	StepPickupScheduled:    1,
	StepPickedUp:           2,
	StepRefundInitiated:    3,
	StepReplacementShipped: 3,
}

// AdvanceTo walks the request forward one step at a time until it reaches
// target. It reports whether anything moved; a request already at or past
// target is left alone.
func (r *ReturnRequest) AdvanceTo(target ReturnStep, now time.Time) (bool, error) {
	if _, ok := stepRank[target]; !ok {
		return false, &TransitionError{Entity: "return", From: string(r.StatusStep), To: string(target)}
	}

	moved := false
	for stepRank[r.StatusStep] < stepRank[target] {
		next := StepPickupScheduled
		switch r.StatusStep {
		case StepPickupScheduled:
			next = StepPickedUp
		case StepPickedUp:
			next = r.FinalStep()
		}
		if err := r.Advance(next, now); err != nil {
			return moved, err
		}
		moved = true
	}
	return moved, nil
}

// CompleteRefund walks the refund status to Completed.
func (r *ReturnRequest) CompleteRefund(now time.Time) (bool, error) {
	moved := false
	for r.RefundStatus != RefundCompleted {
		next := RefundProcessing
		if r.RefundStatus == RefundProcessing {
			next = RefundCompleted
		}
		if err := r.AdvanceRefund(next, now); err != nil {
			return moved, err
		}
		moved = true
	}
	return moved, nil
}

// ReturnDraft is the scratch state of the three-step return flow.
type ReturnDraft struct {
	OwnerID    string       `json:"ownerId"`
	OrderID    string       `json:"orderId"`
	Reason     ReturnReason `json:"reason,omitempty"`
	PickupDate string       `json:"pickupDate,omitempty"`
	Resolution Resolution   `json:"resolution,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func ReturnDraftKey(owner, orderID string) string {
	return owner + "/" + orderID
}

func (d ReturnDraft) Key() string {
	return ReturnDraftKey(d.OwnerID, d.OrderID)
}

// ReturnView is a read-only row of the derived returns list.
type ReturnView struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	ReturnRequest
}
