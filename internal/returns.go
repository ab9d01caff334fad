package internal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

type ReasonInput struct {
	Reason string `json:"reason" validate:"required"`
}

type PickupInput struct {
	PickupDate string `json:"pickupDate" validate:"required"`
	Resolution string `json:"resolution" validate:"required"`
}

// ReturnPreview is what the customer reviews before confirming a return.
type ReturnPreview struct {
	Order        model.Order       `json:"order"`
	Draft        model.ReturnDraft `json:"draft"`
	RefundAmount string            `json:"refundAmount"`
}

type ReturnService struct {
	stores *Stores
	orders *OrderService
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewReturnService(stores *Stores, orders *OrderService, logger *zap.SugaredLogger) *ReturnService {
	return &ReturnService{stores: stores, orders: orders, logger: logger, now: time.Now}
}

func returnable(o model.Order) error {
	if o.ReturnRequest != nil {
		return ErrReturnExists
	}
	if o.Status != model.OrderStatusDelivered {
		return ErrOrderNotDelivered
	}
	return nil
}

func (s *ReturnService) eligibleOrder(ctx context.Context, owner, orderID string) (model.Order, error) {
	o, err := s.orders.CustomerOrder(ctx, owner, orderID)
	if err != nil {
		return model.Order{}, err
	}
	return o, returnable(o)
}

func (s *ReturnService) Draft(ctx context.Context, owner, orderID string) (model.ReturnDraft, error) {
	return s.stores.ReturnDrafts.Find(ctx, model.ReturnDraftKey(owner, orderID))
}

// SelectReason starts a fresh draft holding only the reason.
func (s *ReturnService) SelectReason(ctx context.Context, owner, orderID, reason string) (model.ReturnDraft, error) {
	if _, err := s.eligibleOrder(ctx, owner, orderID); err != nil {
		return model.ReturnDraft{}, err
	}

	r, err := model.ParseReturnReason(reason)
	if err != nil {
		return model.ReturnDraft{}, err
	}

	draft := model.ReturnDraft{OwnerID: owner, OrderID: orderID, Reason: r, UpdatedAt: s.now()}
	return draft, s.putDraft(ctx, draft)
}

// SchedulePickup adds the pickup date and resolution to the draft.
func (s *ReturnService) SchedulePickup(ctx context.Context, owner, orderID string, in PickupInput) (model.ReturnDraft, error) {
	if _, err := s.eligibleOrder(ctx, owner, orderID); err != nil {
		return model.ReturnDraft{}, err
	}

	res, err := model.ParseResolution(in.Resolution)
	if err != nil {
		return model.ReturnDraft{}, err
	}
	if in.PickupDate == "" {
		return model.ReturnDraft{}, ErrDraftIncomplete
	}

	draft := model.ReturnDraft{OwnerID: owner, OrderID: orderID, PickupDate: in.PickupDate, Resolution: res, UpdatedAt: s.now()}
	var merged model.ReturnDraft
	err = s.stores.ReturnDrafts.Mutate(ctx, func(drafts []model.ReturnDraft) ([]model.ReturnDraft, error) {
		for i := range drafts {
			if drafts[i].Key() == draft.Key() {
				drafts[i].PickupDate = draft.PickupDate
				drafts[i].Resolution = draft.Resolution
				drafts[i].UpdatedAt = draft.UpdatedAt
				merged = drafts[i]
				return drafts, nil
			}
		}
		merged = draft
		return append(drafts, draft), nil
	})
	return merged, err
}

func (s *ReturnService) putDraft(ctx context.Context, draft model.ReturnDraft) error {
	return s.stores.ReturnDrafts.Mutate(ctx, func(drafts []model.ReturnDraft) ([]model.ReturnDraft, error) {
		for i := range drafts {
			if drafts[i].Key() == draft.Key() {
				drafts[i] = draft
				return drafts, nil
			}
		}
		return append(drafts, draft), nil
	})
}

func (s *ReturnService) dropDraft(ctx context.Context, owner, orderID string) error {
	key := model.ReturnDraftKey(owner, orderID)
	return s.stores.ReturnDrafts.Mutate(ctx, func(drafts []model.ReturnDraft) ([]model.ReturnDraft, error) {
		kept := drafts[:0]
		for _, d := range drafts {
			if d.Key() != key {
				kept = append(kept, d)
			}
		}
		return kept, nil
	})
}

func (s *ReturnService) Review(ctx context.Context, owner, orderID string) (ReturnPreview, error) {
	o, err := s.eligibleOrder(ctx, owner, orderID)
	if err != nil {
		return ReturnPreview{}, err
	}

	d, err := s.Draft(ctx, owner, orderID)
	if err != nil {
		return ReturnPreview{}, err
	}
	return ReturnPreview{Order: o, Draft: d, RefundAmount: o.Total.String()}, nil
}

// Confirm turns a complete draft into the order's return request. The order
// write is the only authoritative step; the draft is discarded afterwards.
func (s *ReturnService) Confirm(ctx context.Context, owner, orderID string) (model.Order, error) {
	d, err := s.Draft(ctx, owner, orderID)
	if isNotFound(err) {
		return model.Order{}, ErrDraftIncomplete
	}
	if err != nil {
		return model.Order{}, err
	}
	if d.Reason == "" || d.Resolution == "" {
		return model.Order{}, ErrDraftIncomplete
	}

	now := s.now()
	o, err := s.stores.Orders.Update(ctx, orderID, func(o *model.Order) error {
		if o.CustomerID != owner {
			return ErrNoRecords
		}
		if err := returnable(*o); err != nil {
			return err
		}

		rr := model.NewReturnRequest(d.Reason, d.Resolution, d.PickupDate, o.Total, now)
		o.ReturnRequest = &rr
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Infof("return requested for %s: %s, %s", orderID, d.Reason, d.Resolution)

	if err = s.dropDraft(ctx, owner, orderID); err != nil {
		s.logger.Errorf("drop return draft %s: %s", d.Key(), err.Error())
	}
	return o, nil
}

// ListReturns derives the returns list from orders that carry a request.
func (s *ReturnService) ListReturns(ctx context.Context) ([]model.ReturnView, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return returnViews(orders, ""), nil
}

func (s *ReturnService) ListCustomerReturns(ctx context.Context, owner string) ([]model.ReturnView, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return returnViews(orders, owner), nil
}

func returnViews(orders []model.Order, owner string) []model.ReturnView {
	out := make([]model.ReturnView, 0)
	for _, o := range orders {
		if o.ReturnRequest == nil || (owner != "" && o.CustomerID != owner) {
			continue
		}
		out = append(out, model.ReturnView{OrderID: o.ID, CustomerID: o.CustomerID, ReturnRequest: *o.ReturnRequest})
	}
	return out
}

func (s *ReturnService) AdvanceReturn(ctx context.Context, orderID string, next model.ReturnStep) (model.Order, error) {
	now := s.now()
	return s.stores.Orders.Update(ctx, orderID, func(o *model.Order) error {
		if o.ReturnRequest == nil {
			return ErrNoReturn
		}
		return o.ReturnRequest.Advance(next, now)
	})
}

func (s *ReturnService) AdvanceRefund(ctx context.Context, orderID string, next model.RefundStatus) (model.Order, error) {
	now := s.now()
	return s.stores.Orders.Update(ctx, orderID, func(o *model.Order) error {
		if o.ReturnRequest == nil {
			return ErrNoReturn
		}
		return o.ReturnRequest.AdvanceRefund(next, now)
	})
}
