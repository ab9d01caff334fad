package internal

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

// WalletService derives wallet and settlement figures by scanning the stores
// on every read.
type WalletService struct {
	stores *Stores
	logger *zap.SugaredLogger
}

func NewWalletService(stores *Stores, logger *zap.SugaredLogger) *WalletService {
	return &WalletService{stores: stores, logger: logger}
}

func (s *WalletService) SellerWallet(ctx context.Context) (model.SellerWallet, error) {
	orders, err := s.stores.SellerOrders.Snapshot(ctx)
	if err != nil {
		return model.SellerWallet{}, err
	}
	returns, err := s.stores.SellerReturns.Snapshot(ctx)
	if err != nil {
		return model.SellerWallet{}, err
	}

	w := model.SellerWallet{Entries: make([]model.LedgerEntry, 0, len(orders))}
	for _, o := range orders {
		w.TotalEarnings = w.TotalEarnings.Add(o.Amount)

		status := model.EntryPending
		if o.Status == model.SellerOrderDelivered {
			w.CompletedSettlements = w.CompletedSettlements.Add(o.Amount)
			status = model.EntrySettled
		} else {
			w.PendingSettlement = w.PendingSettlement.Add(o.Amount)
		}

		w.Entries = append(w.Entries, model.LedgerEntry{
			ID:        "order-" + o.ID,
			Date:      o.Date,
			Reference: o.ID,
			Type:      model.EntryOrderCredit,
			Amount:    o.Amount,
			Status:    status,
		})
	}

	for _, r := range returns {
		if r.Status != model.SellerReturnRefunded {
			continue
		}
		w.RefundDeductions = w.RefundDeductions.Add(r.RefundAmount)
		w.Entries = append(w.Entries, model.LedgerEntry{
			ID:        "return-" + r.ID,
			Date:      r.RequestedAt,
			Reference: r.ID,
			Type:      model.EntryRefundDebit,
			Amount:    r.RefundAmount,
			Status:    model.EntrySettled,
		})
	}

	newestFirst(w.Entries)
	return w, nil
}

// UserWallet sums the owner's cashback by delivery state and the owner's
// wallet refunds by whether the refund was initiated.
func (s *WalletService) UserWallet(ctx context.Context, owner string) (model.UserWallet, error) {
	all, err := s.stores.Orders.Snapshot(ctx)
	if err != nil {
		return model.UserWallet{}, err
	}

	w := model.UserWallet{History: make([]model.LedgerEntry, 0)}
	for _, o := range all {
		if o.CustomerID != owner {
			continue
		}

		status := model.EntryPending
		if o.Status == model.OrderStatusDelivered {
			w.CreditedCashback = w.CreditedCashback.Add(o.CashbackTotal)
			status = model.EntryCredited
		} else {
			w.PendingCashback = w.PendingCashback.Add(o.CashbackTotal)
		}
		w.History = append(w.History, model.LedgerEntry{
			ID:        "cashback-" + o.ID,
			Date:      o.CreatedAt,
			Reference: o.ID,
			Type:      model.EntryCashback,
			Amount:    o.CashbackTotal,
			Status:    status,
		})

		rr := o.ReturnRequest
		if rr == nil || rr.Resolution != model.ResolutionRefund {
			continue
		}

		status = model.EntryPending
		if rr.StatusStep == model.StepRefundInitiated {
			w.CreditedRefunds = w.CreditedRefunds.Add(rr.RefundAmount)
			status = model.EntryCredited
		} else {
			w.PendingRefunds = w.PendingRefunds.Add(rr.RefundAmount)
		}
		w.History = append(w.History, model.LedgerEntry{
			ID:        "refund-" + o.ID,
			Date:      rr.RequestedAt,
			Reference: "Refund for Order " + o.ID,
			Type:      model.EntryRefundCredit,
			Amount:    rr.RefundAmount,
			Status:    status,
		})
	}

	newestFirst(w.History)
	return w, nil
}

func (s *WalletService) SettlementSummary(ctx context.Context) (model.SettlementSummary, error) {
	items, err := s.stores.AdminSettlements.Snapshot(ctx)
	if err != nil {
		return model.SettlementSummary{}, err
	}
	control, err := s.stores.SettlementControl.Get(ctx)
	if err != nil {
		return model.SettlementSummary{}, err
	}

	sum := model.SettlementSummary{Paused: control.Paused}
	for _, st := range items {
		sum.Total = sum.Total.Add(st.Amount)
		switch st.Status {
		case model.SettlementPending:
			sum.Pending = sum.Pending.Add(st.Amount)
		case model.SettlementProcessing:
			sum.Processing = sum.Processing.Add(st.Amount)
		case model.SettlementCompleted:
			sum.Completed = sum.Completed.Add(st.Amount)
		}
	}
	return sum, nil
}

// WalletTotals returns the sum of the admin wallet balances.
func (s *WalletService) WalletTotals(ctx context.Context) (decimal.Decimal, error) {
	w, err := s.stores.AdminWallets.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, b := range w.Balances {
		total = total.Add(b.Balance)
	}
	return total, nil
}

func newestFirst(entries []model.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}
