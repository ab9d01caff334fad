package internal

import (
	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/state"
)

const (
	keyOrders            = "orders"
	keyCart              = "cart"
	keyLastOrder         = "last_order_id"
	keyReturnDrafts      = "return_drafts"
	keySellerOrders      = "seller_orders"
	keySellerReturns     = "seller_returns"
	keySellerProducts    = "seller_products"
	keyAdminOrders       = "admin_orders"
	keyAdminReturns      = "admin_returns"
	keyAdminPayments     = "admin_payments"
	keyAdminSettlements  = "admin_settlements"
	keyAdminVendors      = "admin_vendors"
	keyAdminUsers        = "admin_users"
	keyAdminWallets      = "admin_wallets"
	keySettlementControl = "settlement_control"
)

// Stores holds every persisted key of the marketplace. All of them share one
// storage and one bus.
type Stores struct {
	Bus *state.Bus

	Orders       *state.Collection[model.Order]
	Cart         *state.Collection[model.CartLine]
	LastOrder    *state.Value[map[string]string]
	ReturnDrafts *state.Collection[model.ReturnDraft]

	SellerOrders   *state.Collection[model.SellerOrder]
	SellerReturns  *state.Collection[model.SellerReturn]
	SellerProducts *state.Collection[model.SellerProduct]

	AdminOrders       *state.Collection[model.AdminOrder]
	AdminReturns      *state.Collection[model.AdminReturn]
	AdminPayments     *state.Collection[model.AdminPayment]
	AdminSettlements  *state.Collection[model.AdminSettlement]
	AdminVendors      *state.Collection[model.AdminVendor]
	AdminUsers        *state.Collection[model.AdminUser]
	AdminWallets      *state.Value[model.Wallets]
	SettlementControl *state.Value[model.SettlementControl]
}

func NewStores(storage state.Storage, bus *state.Bus, seed Seed) *Stores {
	return &Stores{
		Bus: bus,

		Orders: state.NewCollection(keyOrders, storage, bus,
			func(o model.Order) string { return o.ID }, nil),
		Cart: state.NewCollection(keyCart, storage, bus,
			func(l model.CartLine) string { return l.Key() }, nil),
		LastOrder: state.NewValue(keyLastOrder, storage, bus,
			func() map[string]string { return map[string]string{} }),
		ReturnDrafts: state.NewCollection(keyReturnDrafts, storage, bus,
			func(d model.ReturnDraft) string { return d.Key() }, nil),

		SellerOrders: state.NewCollection(keySellerOrders, storage, bus,
			func(o model.SellerOrder) string { return o.ID }, seed.SellerOrders),
		SellerReturns: state.NewCollection(keySellerReturns, storage, bus,
			func(r model.SellerReturn) string { return r.ID }, seed.SellerReturns),
		SellerProducts: state.NewCollection(keySellerProducts, storage, bus,
			func(p model.SellerProduct) string { return p.ID }, seed.SellerProducts),

		AdminOrders: state.NewCollection(keyAdminOrders, storage, bus,
			func(o model.AdminOrder) string { return o.ID }, seed.AdminOrders),
		AdminReturns: state.NewCollection(keyAdminReturns, storage, bus,
			func(r model.AdminReturn) string { return r.ID }, seed.AdminReturns),
		AdminPayments: state.NewCollection(keyAdminPayments, storage, bus,
			func(p model.AdminPayment) string { return p.ID }, seed.AdminPayments),
		AdminSettlements: state.NewCollection(keyAdminSettlements, storage, bus,
			func(s model.AdminSettlement) string { return s.ID }, seed.AdminSettlements),
		AdminVendors: state.NewCollection(keyAdminVendors, storage, bus,
			func(v model.AdminVendor) string { return v.ID }, seed.AdminVendors),
		AdminUsers: state.NewCollection(keyAdminUsers, storage, bus,
			func(u model.AdminUser) string { return u.ID }, seed.AdminUsers),
		AdminWallets: state.NewValue(keyAdminWallets, storage, bus,
			func() model.Wallets { return seed.AdminWallets }),
		SettlementControl: state.NewValue(keySettlementControl, storage, bus,
			func() model.SettlementControl { return model.SettlementControl{} }),
	}
}
