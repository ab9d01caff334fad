package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID       int
	Login    string
	Password string
}

type LoginInput struct {
	Login    string `json:"login" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=255"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleSeller    Role = "seller"
	RoleAffiliate Role = "affiliate"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleSeller, RoleAffiliate, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Area is the path prefix of the role's part of the application.
// SelfService reports whether a caller may pick the role for itself.
func (r Role) SelfService() bool {
	return r == RoleUser || r == RoleSeller || r == RoleAffiliate
}

func (r Role) Area() string {
	return "/" + string(r)
}

// Profile is the authoritative identity-linked record. VendorID and AccountID
// link the identity to its vendor store and admin-managed account.
type Profile struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	FullName  string    `json:"full_name,omitempty"`
	VendorID  string    `json:"vendor_id,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is what the identity provider tells about the caller.
type Session struct {
	Identity  string `json:"identity"`
	RoleClaim string `json:"role,omitempty"`
}

type SettlementEntryType string

const (
	EntryOrderCredit  SettlementEntryType = "Order Credit"
	EntryRefundDebit  SettlementEntryType = "Refund Debit"
	EntryCashback     SettlementEntryType = "Cashback"
	EntryRefundCredit SettlementEntryType = "Refund"
)

type EntryStatus string

const (
	EntryPending  EntryStatus = "Pending"
	EntrySettled  EntryStatus = "Settled"
	EntryCredited EntryStatus = "Credited"
)

type LedgerEntry struct {
	ID        string              `json:"id"`
	Date      time.Time           `json:"date"`
	Reference string              `json:"reference"`
	Type      SettlementEntryType `json:"type"`
	Amount    decimal.Decimal     `json:"amount"`
	Status    EntryStatus         `json:"status"`
}

type SellerWallet struct {
	TotalEarnings        decimal.Decimal `json:"totalEarnings"`
	PendingSettlement    decimal.Decimal `json:"pendingSettlement"`
	CompletedSettlements decimal.Decimal `json:"completedSettlements"`
	RefundDeductions     decimal.Decimal `json:"refundDeductions"`
	Entries              []LedgerEntry   `json:"entries"`
}

type UserWallet struct {
	PendingCashback  decimal.Decimal `json:"pendingCashback"`
	CreditedCashback decimal.Decimal `json:"creditedCashback"`
	PendingRefunds   decimal.Decimal `json:"pendingRefunds"`
	CreditedRefunds  decimal.Decimal `json:"creditedRefunds"`
	History          []LedgerEntry   `json:"history"`
}

type SettlementSummary struct {
	Total      decimal.Decimal `json:"total"`
	Pending    decimal.Decimal `json:"pending"`
	Processing decimal.Decimal `json:"processing"`
	Completed  decimal.Decimal `json:"completed"`
	Paused     bool            `json:"paused"`
}
