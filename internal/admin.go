package internal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

type AdminOrderPatch struct {
	OrderStatus   *model.AdminOrderStatus  `json:"orderStatus"`
	PaymentStatus *model.AdminPaymentState `json:"paymentStatus"`
	InternalNote  *string                  `json:"internalNote" validate:"omitempty,max=2000"`
}

type AdminReturnPatch struct {
	Status *model.AdminReturnStatus `json:"status" validate:"required"`
}

type AdminPaymentPatch struct {
	Status *model.AdminPaymentStatus `json:"status" validate:"required"`
}

type SettlementPatch struct {
	Status *model.SettlementStatus `json:"status" validate:"required"`
}

type SettlementControlInput struct {
	Paused bool   `json:"paused"`
	Note   string `json:"note" validate:"max=500"`
}

type VendorPatch struct {
	StoreStatus *model.StoreStatus `json:"storeStatus"`
	KYCStatus   *model.KYCStatus   `json:"kycStatus"`
	Category    *string            `json:"category"`
	Address     *string            `json:"address"`
}

type UserPatch struct {
	Status *model.AccountStatus `json:"status"`
	Role   *model.Role          `json:"role"`
}

type WalletTxnPatch struct {
	Status *model.WalletTxnStatus `json:"status" validate:"required"`
}

var adminDecisionLabels = map[model.AdminReturnStatus]string{
	model.AdminReturnApprovedState: "Approved by admin",
	model.AdminReturnRejectedState: "Rejected by admin",
	model.AdminReturnForcedRefund:  "Refund forced by admin",
}

var adminDecisionFlags = map[model.AdminReturnStatus]model.AdminReturnFlag{
	model.AdminReturnApprovedState: model.AdminReturnApproved,
	model.AdminReturnRejectedState: model.AdminReturnRejected,
	model.AdminReturnForcedRefund:  model.AdminReturnApproved,
}

type AdminService struct {
	stores *Stores
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewAdminService(stores *Stores, logger *zap.SugaredLogger) *AdminService {
	return &AdminService{stores: stores, logger: logger, now: time.Now}
}

func (s *AdminService) Orders(ctx context.Context) ([]model.AdminOrder, error) {
	return s.stores.AdminOrders.Snapshot(ctx)
}

func (s *AdminService) Order(ctx context.Context, id string) (model.AdminOrder, error) {
	return s.stores.AdminOrders.Find(ctx, id)
}

func (s *AdminService) UpdateOrder(ctx context.Context, id string, patch AdminOrderPatch) (model.AdminOrder, error) {
	o, err := s.stores.AdminOrders.Update(ctx, id, func(o *model.AdminOrder) error {
		if err := moveTo(&o.OrderStatus, patch.OrderStatus); err != nil {
			return err
		}
		if err := moveTo(&o.PaymentStatus, patch.PaymentStatus); err != nil {
			return err
		}
		setIf(&o.InternalNote, patch.InternalNote)
		return nil
	})
	if err != nil {
		return model.AdminOrder{}, err
	}

	s.logger.Infof("admin order %s updated: %s, %s", id, o.OrderStatus, o.PaymentStatus)
	return o, nil
}

func (s *AdminService) Returns(ctx context.Context) ([]model.AdminReturn, error) {
	return s.stores.AdminReturns.Snapshot(ctx)
}

func (s *AdminService) Return(ctx context.Context, id string) (model.AdminReturn, error) {
	return s.stores.AdminReturns.Find(ctx, id)
}

// DecideReturn records the admin decision on a return and flags the linked
// admin order.
func (s *AdminService) DecideReturn(ctx context.Context, id string, patch AdminReturnPatch) (model.AdminReturn, error) {
	now := s.now()
	r, err := s.stores.AdminReturns.Update(ctx, id, func(r *model.AdminReturn) error {
		if patch.Status == nil {
			return nil
		}
		if err := r.Status.CanMoveTo(*patch.Status); err != nil {
			return err
		}
		r.Status = *patch.Status
		r.Timeline = append(r.Timeline, model.AdminTimelineEntry{Label: adminDecisionLabels[r.Status], Date: now})
		return nil
	})
	if err != nil {
		return model.AdminReturn{}, err
	}

	s.logger.Infof("admin return %s moved to %s", id, r.Status)

	if flag, ok := adminDecisionFlags[r.Status]; ok {
		_, err = s.stores.AdminOrders.Update(ctx, r.OrderID, func(o *model.AdminOrder) error {
			o.ReturnStatus = flag
			return nil
		})
		if err != nil && !isNotFound(err) {
			s.logger.Errorf("flag admin order %s: %s", r.OrderID, err.Error())
		}
	}
	return r, nil
}

func (s *AdminService) Payments(ctx context.Context) ([]model.AdminPayment, error) {
	return s.stores.AdminPayments.Snapshot(ctx)
}

func (s *AdminService) UpdatePayment(ctx context.Context, id string, patch AdminPaymentPatch) (model.AdminPayment, error) {
	return s.stores.AdminPayments.Update(ctx, id, func(p *model.AdminPayment) error {
		return moveTo(&p.Status, patch.Status)
	})
}

func (s *AdminService) Settlements(ctx context.Context) ([]model.AdminSettlement, error) {
	return s.stores.AdminSettlements.Snapshot(ctx)
}

func (s *AdminService) UpdateSettlement(ctx context.Context, id string, patch SettlementPatch) (model.AdminSettlement, error) {
	return s.stores.AdminSettlements.Update(ctx, id, func(st *model.AdminSettlement) error {
		return moveTo(&st.Status, patch.Status)
	})
}

func (s *AdminService) SettlementControl(ctx context.Context) (model.SettlementControl, error) {
	return s.stores.SettlementControl.Get(ctx)
}

func (s *AdminService) SetSettlementControl(ctx context.Context, in SettlementControlInput) (model.SettlementControl, error) {
	c, err := s.stores.SettlementControl.Update(ctx, func(model.SettlementControl) (model.SettlementControl, error) {
		return model.SettlementControl{Paused: in.Paused, Note: in.Note, UpdatedAt: s.now()}, nil
	})
	if err != nil {
		return model.SettlementControl{}, err
	}

	s.logger.Infof("settlements paused: %t", c.Paused)
	return c, nil
}

// RunSettlements moves every pending payout to processing unless payouts are
// paused and returns how many moved.
func (s *AdminService) RunSettlements(ctx context.Context) (int, error) {
	c, err := s.stores.SettlementControl.Get(ctx)
	if err != nil {
		return 0, err
	}
	if c.Paused {
		return 0, nil
	}

	moved := 0
	err = s.stores.AdminSettlements.Mutate(ctx, func(items []model.AdminSettlement) ([]model.AdminSettlement, error) {
		moved = 0
		for i := range items {
			if items[i].Status == model.SettlementPending {
				items[i].Status = model.SettlementProcessing
				moved++
			}
		}
		if moved == 0 {
			return nil, errNoChange
		}
		return items, nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return 0, err
	}
	return moved, nil
}

func (s *AdminService) Vendors(ctx context.Context) ([]model.AdminVendor, error) {
	return s.stores.AdminVendors.Snapshot(ctx)
}

func (s *AdminService) Vendor(ctx context.Context, id string) (model.AdminVendor, error) {
	return s.stores.AdminVendors.Find(ctx, id)
}

func (s *AdminService) UpdateVendor(ctx context.Context, id string, patch VendorPatch) (model.AdminVendor, error) {
	v, err := s.stores.AdminVendors.Update(ctx, id, func(v *model.AdminVendor) error {
		if err := moveTo(&v.StoreStatus, patch.StoreStatus); err != nil {
			return err
		}
		if err := moveTo(&v.KYCStatus, patch.KYCStatus); err != nil {
			return err
		}
		setIf(&v.Category, patch.Category)
		setIf(&v.Address, patch.Address)
		return nil
	})
	if err != nil {
		return model.AdminVendor{}, err
	}

	s.logger.Infof("vendor %s: store %s, kyc %s", id, v.StoreStatus, v.KYCStatus)
	return v, nil
}

func (s *AdminService) Users(ctx context.Context) ([]model.AdminUser, error) {
	return s.stores.AdminUsers.Snapshot(ctx)
}

func (s *AdminService) User(ctx context.Context, id string) (model.AdminUser, error) {
	return s.stores.AdminUsers.Find(ctx, id)
}

func (s *AdminService) UpdateUser(ctx context.Context, id string, patch UserPatch) (model.AdminUser, error) {
	if patch.Role != nil {
		if _, ok := model.ParseRole(string(*patch.Role)); !ok {
			return model.AdminUser{}, ErrInvalidRole
		}
	}

	u, err := s.stores.AdminUsers.Update(ctx, id, func(u *model.AdminUser) error {
		if err := moveTo(&u.Status, patch.Status); err != nil {
			return err
		}
		setIf(&u.Role, patch.Role)
		return nil
	})
	if err != nil {
		return model.AdminUser{}, err
	}

	s.logger.Infof("user %s: %s, %s", id, u.Role, u.Status)
	return u, nil
}

func (s *AdminService) Wallets(ctx context.Context) (model.Wallets, error) {
	return s.stores.AdminWallets.Get(ctx)
}

func (s *AdminService) UpdateWalletTxn(ctx context.Context, id string, patch WalletTxnPatch) (model.WalletTxn, error) {
	var updated model.WalletTxn
	_, err := s.stores.AdminWallets.Update(ctx, func(w model.Wallets) (model.Wallets, error) {
		for i := range w.Txns {
			if w.Txns[i].ID != id {
				continue
			}
			if err := moveTo(&w.Txns[i].Status, patch.Status); err != nil {
				return w, err
			}
			updated = w.Txns[i]
			return w, nil
		}
		return w, ErrNoRecords
	})
	if err != nil {
		return model.WalletTxn{}, err
	}
	return updated, nil
}
