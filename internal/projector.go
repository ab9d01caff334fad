package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

const (
	sellerReturnPrefix = "RET-"
	adminReturnPrefix  = "ret_"
	adminPaymentPrefix = "pay_"
)

var commissionRate = decimal.New(7, -2)

var adminOrderRank = map[model.AdminOrderStatus]int{
	model.AdminOrderPlaced:     0,
	model.AdminOrderProcessing: 1,
	model.AdminOrderShipped:    2,
	model.AdminOrderDelivered:  3,
}

var sellerToAdminStatus = map[model.SellerOrderStatus]model.AdminOrderStatus{
	model.SellerOrderPacked:    model.AdminOrderProcessing,
	model.SellerOrderShipped:   model.AdminOrderShipped,
	model.SellerOrderDelivered: model.AdminOrderDelivered,
	model.SellerOrderReturned:  model.AdminOrderDelivered,
}

// Projector keeps the seller and admin views of checkout orders in step with
// the canonical order store, in both directions. Seeded records that have no
// canonical order are left alone.
type Projector struct {
	stores *Stores
	orders *OrderService
	logger *zap.SugaredLogger
	now    func() time.Time

	mu          sync.Mutex
	running     bool
	dirty       bool
	unsubscribe []func()
}

func NewProjector(stores *Stores, orders *OrderService, logger *zap.SugaredLogger) *Projector {
	return &Projector{stores: stores, orders: orders, logger: logger, now: time.Now}
}

// Start subscribes to the stores that drive the projections and runs a first
// pass.
func (p *Projector) Start() {
	p.unsubscribe = append(p.unsubscribe,
		p.stores.Orders.Subscribe(p.trigger),
		p.stores.SellerOrders.Subscribe(p.trigger),
		p.stores.SellerReturns.Subscribe(p.trigger),
	)
	p.trigger()
}

func (p *Projector) Stop() {
	for _, u := range p.unsubscribe {
		u()
	}
	p.unsubscribe = nil
}

// trigger runs Sync until no change arrives while it is running. Changes made
// by Sync itself come back as nested triggers and only mark another pass.
func (p *Projector) trigger() {
	p.mu.Lock()
	if p.running {
		p.dirty = true
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	for {
		if err := p.Sync(context.Background()); err != nil {
			p.logger.Errorf("projection sync error: %s", err.Error())
		}

		p.mu.Lock()
		if !p.dirty {
			p.running = false
			p.mu.Unlock()
			return
		}
		p.dirty = false
		p.mu.Unlock()
	}
}

// Sync performs one full reconciliation pass. Every step writes only when
// something differs.
func (p *Projector) Sync(ctx context.Context) error {
	orders, err := p.stores.Orders.Snapshot(ctx)
	if err != nil {
		return err
	}

	steps := []func(context.Context, []model.Order) error{
		p.projectSellerOrders,
		p.projectSellerReturns,
		p.projectAdminOrders,
		p.projectAdminPayments,
		p.projectAdminReturns,
		p.pullSellerOrders,
		p.pullSellerReturns,
	}
	for _, step := range steps {
		if err = step(ctx, orders); err != nil {
			return err
		}
	}
	return nil
}

func unchanged(err error) error {
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

func indexOrders(orders []model.Order) map[string]model.Order {
	m := make(map[string]model.Order, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}
	return m
}

func refundCompleted(o model.Order) bool {
	return o.ReturnRequest != nil && o.ReturnRequest.RefundStatus == model.RefundCompleted
}

func itemsLabel(items []model.OrderItem) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0].Title
	}
	return items[0].Title + " and more"
}

func (p *Projector) projectSellerOrders(ctx context.Context, orders []model.Order) error {
	err := p.stores.SellerOrders.Mutate(ctx, func(items []model.SellerOrder) ([]model.SellerOrder, error) {
		index := make(map[string]int, len(items))
		for i, it := range items {
			index[it.ID] = i
		}

		var added []model.SellerOrder
		changed := false
		for _, o := range orders {
			i, ok := index[o.ID]
			if !ok {
				added = append(added, sellerOrderFrom(o))
				changed = true
				continue
			}
			if o.ReturnRequest != nil && !items[i].HasReturn {
				items[i].HasReturn = true
				changed = true
			}
			if o.Status == model.OrderStatusDelivered && sellerOrderPending(items[i].Status) {
				items[i].Status = model.SellerOrderDelivered
				changed = true
			}
		}

		if !changed {
			return nil, errNoChange
		}
		return append(added, items...), nil
	})
	return unchanged(err)
}

// sellerOrderPending reports whether the seller has not delivered the order yet.
func sellerOrderPending(s model.SellerOrderStatus) bool {
	switch s {
	case model.SellerOrderNew, model.SellerOrderPacked, model.SellerOrderShipped:
		return true
	}
	return false
}

func sellerOrderFrom(o model.Order) model.SellerOrder {
	so := model.SellerOrder{
		ID:              o.ID,
		Date:            o.CreatedAt,
		CustomerName:    o.CustomerID,
		CustomerAddress: o.Address,
		Amount:          o.Total,
		PaymentStatus:   model.SellerPaymentPaid,
		Status:          model.SellerOrderNew,
		HasReturn:       o.ReturnRequest != nil,
	}
	if o.Payment == model.PaymentCOD {
		so.PaymentStatus = model.SellerPaymentCOD
	}
	if o.Status == model.OrderStatusDelivered {
		so.Status = model.SellerOrderDelivered
	}
	for _, it := range o.Items {
		so.Items = append(so.Items, model.SellerOrderItem{
			ID:       it.ProductID,
			Name:     it.Title,
			Image:    it.Image,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return so
}

func (p *Projector) projectSellerReturns(ctx context.Context, orders []model.Order) error {
	err := p.stores.SellerReturns.Mutate(ctx, func(items []model.SellerReturn) ([]model.SellerReturn, error) {
		known := make(map[string]bool, len(items))
		for _, it := range items {
			known[it.ID] = true
		}

		var added []model.SellerReturn
		for _, o := range orders {
			if o.ReturnRequest == nil || known[sellerReturnPrefix+o.ID] {
				continue
			}
			added = append(added, model.SellerReturn{
				ID:           sellerReturnPrefix + o.ID,
				OrderID:      o.ID,
				ProductName:  itemsLabel(o.Items),
				Reason:       string(o.ReturnRequest.Reason),
				Status:       model.SellerReturnRequested,
				RefundAmount: o.ReturnRequest.RefundAmount,
				RequestedAt:  o.ReturnRequest.RequestedAt,
			})
		}

		if len(added) == 0 {
			return nil, errNoChange
		}
		return append(added, items...), nil
	})
	return unchanged(err)
}

func (p *Projector) projectAdminOrders(ctx context.Context, orders []model.Order) error {
	err := p.stores.AdminOrders.Mutate(ctx, func(items []model.AdminOrder) ([]model.AdminOrder, error) {
		index := make(map[string]int, len(items))
		for i, it := range items {
			index[it.ID] = i
		}

		var added []model.AdminOrder
		changed := false
		for _, o := range orders {
			i, ok := index[o.ID]
			if !ok {
				added = append(added, adminOrderFrom(o))
				changed = true
				continue
			}

			ao := &items[i]
			if o.ReturnRequest != nil && ao.ReturnStatus == model.AdminReturnNone {
				ao.ReturnStatus = model.AdminReturnPending
				changed = true
			}
			if o.Status == model.OrderStatusDelivered && ao.OrderStatus != model.AdminOrderDelivered && ao.OrderStatus != model.AdminOrderCancelled {
				ao.OrderStatus = model.AdminOrderDelivered
				changed = true
			}
			if refundCompleted(o) && ao.PaymentStatus == model.AdminPaymentPaid {
				ao.PaymentStatus = model.AdminPaymentRefunded
				changed = true
			}
		}

		if !changed {
			return nil, errNoChange
		}
		return append(added, items...), nil
	})
	return unchanged(err)
}

func adminOrderFrom(o model.Order) model.AdminOrder {
	ao := model.AdminOrder{
		ID:            o.ID,
		Date:          o.CreatedAt,
		UserName:      o.CustomerID,
		VendorName:    o.Seller,
		Value:         o.Total,
		PaymentStatus: model.AdminPaymentPaid,
		OrderStatus:   model.AdminOrderPlaced,
		ReturnStatus:  model.AdminReturnNone,
		PaymentMethod: string(o.Payment),
		TransactionID: "TXN-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0]),
		Cashback:      o.CashbackTotal,
		Commission:    o.Total.Mul(commissionRate).Round(0),
	}
	if o.Payment == model.PaymentCOD {
		ao.PaymentStatus = model.AdminPaymentPending
	}
	if o.Status == model.OrderStatusDelivered {
		ao.OrderStatus = model.AdminOrderDelivered
	}
	if o.ReturnRequest != nil {
		ao.ReturnStatus = model.AdminReturnPending
	}
	for _, it := range o.Items {
		ao.Items = append(ao.Items, model.AdminOrderItem{ID: it.ProductID, Name: it.Title, Qty: it.Quantity, Price: it.Price})
	}
	return ao
}

func (p *Projector) projectAdminPayments(ctx context.Context, orders []model.Order) error {
	err := p.stores.AdminPayments.Mutate(ctx, func(items []model.AdminPayment) ([]model.AdminPayment, error) {
		index := make(map[string]int, len(items))
		for i, it := range items {
			index[it.ID] = i
		}

		var added []model.AdminPayment
		changed := false
		for _, o := range orders {
			i, ok := index[adminPaymentPrefix+o.ID]
			if !ok {
				pay := model.AdminPayment{
					ID:         adminPaymentPrefix + o.ID,
					OrderID:    o.ID,
					UserName:   o.CustomerID,
					VendorName: o.Seller,
					Amount:     o.Total,
					Method:     o.Payment,
					Status:     model.PaymentStatusSuccess,
					Date:       o.CreatedAt,
				}
				if o.Payment == model.PaymentCOD {
					pay.Status = model.PaymentStatusPending
				}
				added = append(added, pay)
				changed = true
				continue
			}

			if refundCompleted(o) && items[i].Status == model.PaymentStatusSuccess {
				items[i].Status = model.PaymentStatusRefunded
				changed = true
			}
		}

		if !changed {
			return nil, errNoChange
		}
		return append(added, items...), nil
	})
	return unchanged(err)
}

func (p *Projector) projectAdminReturns(ctx context.Context, orders []model.Order) error {
	err := p.stores.AdminReturns.Mutate(ctx, func(items []model.AdminReturn) ([]model.AdminReturn, error) {
		known := make(map[string]bool, len(items))
		for _, it := range items {
			known[it.ID] = true
		}

		var added []model.AdminReturn
		for _, o := range orders {
			if o.ReturnRequest == nil || known[adminReturnPrefix+o.ID] {
				continue
			}
			added = append(added, adminReturnFrom(o))
		}

		if len(added) == 0 {
			return nil, errNoChange
		}
		return append(added, items...), nil
	})
	return unchanged(err)
}

func adminReturnFrom(o model.Order) model.AdminReturn {
	rr := o.ReturnRequest
	ar := model.AdminReturn{
		ID:             adminReturnPrefix + o.ID,
		OrderID:        o.ID,
		UserName:       o.CustomerID,
		VendorName:     o.Seller,
		Reason:         string(rr.Reason),
		RefundAmount:   rr.RefundAmount,
		Status:         model.AdminReturnPendingReview,
		RefundMethod:   "Wallet",
		WalletImpact:   "Cashback reversal " + o.CashbackTotal.String(),
		VendorDecision: "Pending vendor approval",
	}
	if rr.Resolution == model.ResolutionReplacement {
		ar.RefundMethod = string(model.ResolutionReplacement)
		ar.WalletImpact = "No refund issued"
	}
	for _, t := range rr.Timeline {
		ar.Timeline = append(ar.Timeline, model.AdminTimelineEntry{Label: t.Label, Date: t.At})
	}
	return ar
}

// pullSellerOrders delivers canonical orders the seller marked delivered and
// moves the admin view forward with the seller.
func (p *Projector) pullSellerOrders(ctx context.Context, orders []model.Order) error {
	canonical := indexOrders(orders)
	sellerOrders, err := p.stores.SellerOrders.Snapshot(ctx)
	if err != nil {
		return err
	}

	progress := make(map[string]model.AdminOrderStatus)
	for _, so := range sellerOrders {
		o, ok := canonical[so.ID]
		if !ok {
			continue
		}
		if target, ok := sellerToAdminStatus[so.Status]; ok {
			progress[so.ID] = target
		}
		if so.Status == model.SellerOrderDelivered && o.Status == model.OrderStatusInTransit {
			if _, err = p.orders.MarkDelivered(ctx, o.ID); err != nil && !errors.Is(err, ErrInvalidTransition) {
				return err
			}
		}
	}
	if len(progress) == 0 {
		return nil
	}

	err = p.stores.AdminOrders.Mutate(ctx, func(items []model.AdminOrder) ([]model.AdminOrder, error) {
		changed := false
		for i := range items {
			target, ok := progress[items[i].ID]
			if !ok || items[i].OrderStatus == model.AdminOrderCancelled {
				continue
			}
			if adminOrderRank[target] > adminOrderRank[items[i].OrderStatus] {
				items[i].OrderStatus = target
				changed = true
			}
		}
		if !changed {
			return nil, errNoChange
		}
		return items, nil
	})
	return unchanged(err)
}

// pullSellerReturns carries seller decisions on checkout returns back to the
// canonical return request and to the admin views.
func (p *Projector) pullSellerReturns(ctx context.Context, orders []model.Order) error {
	canonical := indexOrders(orders)
	sellerReturns, err := p.stores.SellerReturns.Snapshot(ctx)
	if err != nil {
		return err
	}

	decisions := make(map[string]model.SellerReturn)
	for _, sr := range sellerReturns {
		o, ok := canonical[sr.OrderID]
		if !ok || o.ReturnRequest == nil || sr.ID != sellerReturnPrefix+o.ID {
			continue
		}
		decisions[o.ID] = sr

		if err = p.advanceCanonical(ctx, o, sr.Status); err != nil {
			return err
		}
		if sr.Status == model.SellerReturnRefunded {
			if err = p.markReturned(ctx, o.ID); err != nil {
				return err
			}
		}
	}
	if len(decisions) == 0 {
		return nil
	}
	return p.pushAdminDecisions(ctx, decisions)
}

func (p *Projector) advanceCanonical(ctx context.Context, o model.Order, status model.SellerReturnStatus) error {
	var target model.ReturnStep
	switch status {
	case model.SellerReturnApproved:
		target = model.StepPickupScheduled
	case model.SellerReturnPicked:
		target = model.StepPickedUp
	case model.SellerReturnRefunded:
		target = o.ReturnRequest.FinalStep()
	default:
		return nil
	}

	now := p.now()
	_, err := p.stores.Orders.Update(ctx, o.ID, func(o *model.Order) error {
		rr := o.ReturnRequest
		if rr == nil {
			return errNoChange
		}

		moved, err := rr.AdvanceTo(target, now)
		if err != nil {
			return err
		}
		if status == model.SellerReturnRefunded && rr.Resolution == model.ResolutionRefund {
			done, err := rr.CompleteRefund(now)
			if err != nil {
				return err
			}
			moved = moved || done
		}

		if !moved {
			return errNoChange
		}
		return nil
	})
	if err == nil {
		p.logger.Infof("return of %s advanced by seller decision %s", o.ID, status)
	}
	return unchanged(err)
}

func (p *Projector) markReturned(ctx context.Context, orderID string) error {
	_, err := p.stores.SellerOrders.Update(ctx, orderID, func(so *model.SellerOrder) error {
		if so.Status != model.SellerOrderDelivered {
			return errNoChange
		}
		so.Status = model.SellerOrderReturned
		return nil
	})
	if isNotFound(err) {
		return nil
	}
	return unchanged(err)
}

func (p *Projector) pushAdminDecisions(ctx context.Context, decisions map[string]model.SellerReturn) error {
	now := p.now()
	flags := make(map[string]model.AdminReturnFlag)

	err := p.stores.AdminReturns.Mutate(ctx, func(items []model.AdminReturn) ([]model.AdminReturn, error) {
		changed := false
		for i := range items {
			ar := &items[i]
			sr, ok := decisions[ar.OrderID]
			if !ok || ar.ID != adminReturnPrefix+ar.OrderID || ar.Status != model.AdminReturnPendingReview {
				continue
			}

			switch sr.Status {
			case model.SellerReturnApproved, model.SellerReturnPicked, model.SellerReturnRefunded:
				ar.Status = model.AdminReturnApprovedState
				ar.VendorDecision = "Approved by vendor"
				ar.Timeline = append(ar.Timeline, model.AdminTimelineEntry{Label: "Approved by vendor", Date: now})
				flags[ar.OrderID] = model.AdminReturnApproved
			case model.SellerReturnRejected:
				ar.Status = model.AdminReturnRejectedState
				ar.VendorDecision = "Rejected by vendor: " + sr.RejectionReason
				ar.WalletImpact = "No refund issued"
				ar.Timeline = append(ar.Timeline, model.AdminTimelineEntry{Label: "Vendor rejected", Date: now})
				flags[ar.OrderID] = model.AdminReturnRejected
			default:
				continue
			}
			changed = true
		}
		if !changed {
			return nil, errNoChange
		}
		return items, nil
	})
	if err = unchanged(err); err != nil || len(flags) == 0 {
		return err
	}

	err = p.stores.AdminOrders.Mutate(ctx, func(items []model.AdminOrder) ([]model.AdminOrder, error) {
		changed := false
		for i := range items {
			if flag, ok := flags[items[i].ID]; ok && items[i].ReturnStatus != flag {
				items[i].ReturnStatus = flag
				changed = true
			}
		}
		if !changed {
			return nil, errNoChange
		}
		return items, nil
	})
	return unchanged(err)
}
