package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdminOrderStatus string

const (
	AdminOrderPlaced     AdminOrderStatus = "Placed"
	AdminOrderProcessing AdminOrderStatus = "Processing"
	AdminOrderShipped    AdminOrderStatus = "Shipped"
	AdminOrderDelivered  AdminOrderStatus = "Delivered"
	AdminOrderCancelled  AdminOrderStatus = "Cancelled"
)

var adminOrderTransitions = transitions[AdminOrderStatus]{
	AdminOrderPlaced:     {AdminOrderProcessing, AdminOrderCancelled},
	AdminOrderProcessing: {AdminOrderShipped, AdminOrderCancelled},
	AdminOrderShipped:    {AdminOrderDelivered, AdminOrderCancelled},
}

func (s AdminOrderStatus) CanMoveTo(next AdminOrderStatus) error {
	return adminOrderTransitions.check("admin order", s, next)
}

type AdminPaymentState string

const (
	AdminPaymentPaid     AdminPaymentState = "Paid"
	AdminPaymentFailed   AdminPaymentState = "Failed"
	AdminPaymentPending  AdminPaymentState = "Pending"
	AdminPaymentRefunded AdminPaymentState = "Refunded"
)

var adminPaymentStateTransitions = transitions[AdminPaymentState]{
	AdminPaymentPending: {AdminPaymentPaid, AdminPaymentFailed},
	AdminPaymentFailed:  {AdminPaymentPaid},
	AdminPaymentPaid:    {AdminPaymentRefunded},
}

func (s AdminPaymentState) CanMoveTo(next AdminPaymentState) error {
	return adminPaymentStateTransitions.check("order payment", s, next)
}

type AdminReturnFlag string

const (
	AdminReturnNone     AdminReturnFlag = "None"
	AdminReturnPending  AdminReturnFlag = "Pending"
	AdminReturnApproved AdminReturnFlag = "Approved"
	AdminReturnRejected AdminReturnFlag = "Rejected"
)

type AdminOrderItem struct {
	ID    string          `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Qty   int             `json:"qty" yaml:"qty"`
	Price decimal.Decimal `json:"price" yaml:"price"`
}

type AdminOrder struct {
	ID            string            `json:"id" yaml:"id"`
	Date          time.Time         `json:"date" yaml:"date"`
	UserName      string            `json:"userName" yaml:"userName"`
	UserEmail     string            `json:"userEmail" yaml:"userEmail"`
	VendorName    string            `json:"vendorName" yaml:"vendorName"`
	VendorID      string            `json:"vendorId" yaml:"vendorId"`
	Value         decimal.Decimal   `json:"value" yaml:"value"`
	PaymentStatus AdminPaymentState `json:"paymentStatus" yaml:"paymentStatus"`
	OrderStatus   AdminOrderStatus  `json:"orderStatus" yaml:"orderStatus"`
	ReturnStatus  AdminReturnFlag   `json:"returnStatus" yaml:"returnStatus"`
	Items         []AdminOrderItem  `json:"items" yaml:"items"`
	PaymentMethod string            `json:"paymentMethod" yaml:"paymentMethod"`
	TransactionID string            `json:"transactionId" yaml:"transactionId"`
	Cashback      decimal.Decimal   `json:"cashback" yaml:"cashback"`
	Commission    decimal.Decimal   `json:"commission" yaml:"commission"`
	InternalNote  string            `json:"internalNote,omitempty" yaml:"internalNote"`
}

type AdminReturnStatus string

const (
	AdminReturnPendingReview AdminReturnStatus = "Pending Review"
	AdminReturnApprovedState AdminReturnStatus = "Approved"
	AdminReturnRejectedState AdminReturnStatus = "Rejected"
	AdminReturnForcedRefund  AdminReturnStatus = "Forced Refund"
)

var adminReturnTransitions = transitions[AdminReturnStatus]{
	AdminReturnPendingReview: {AdminReturnApprovedState, AdminReturnRejectedState, AdminReturnForcedRefund},
}

func (s AdminReturnStatus) CanMoveTo(next AdminReturnStatus) error {
	return adminReturnTransitions.check("admin return", s, next)
}

type AdminTimelineEntry struct {
	Label string    `json:"label" yaml:"label"`
	Date  time.Time `json:"date" yaml:"date"`
}

type AdminReturn struct {
	ID             string               `json:"id" yaml:"id"`
	OrderID        string               `json:"orderId" yaml:"orderId"`
	UserName       string               `json:"userName" yaml:"userName"`
	VendorName     string               `json:"vendorName" yaml:"vendorName"`
	Reason         string               `json:"reason" yaml:"reason"`
	RefundAmount   decimal.Decimal      `json:"refundAmount" yaml:"refundAmount"`
	Status         AdminReturnStatus    `json:"status" yaml:"status"`
	Timeline       []AdminTimelineEntry `json:"timeline" yaml:"timeline"`
	RefundMethod   string               `json:"refundMethod" yaml:"refundMethod"`
	WalletImpact   string               `json:"walletImpact" yaml:"walletImpact"`
	VendorDecision string               `json:"vendorDecision" yaml:"vendorDecision"`
}

type AdminPaymentStatus string

const (
	PaymentStatusPending  AdminPaymentStatus = "Pending"
	PaymentStatusSuccess  AdminPaymentStatus = "Success"
	PaymentStatusFailed   AdminPaymentStatus = "Failed"
	PaymentStatusRefunded AdminPaymentStatus = "Refunded"
)

var adminPaymentTransitions = transitions[AdminPaymentStatus]{
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPending},
	PaymentStatusSuccess: {PaymentStatusRefunded},
}

func (s AdminPaymentStatus) CanMoveTo(next AdminPaymentStatus) error {
	return adminPaymentTransitions.check("payment", s, next)
}

type AdminPayment struct {
	ID         string             `json:"id" yaml:"id"`
	OrderID    string             `json:"orderId" yaml:"orderId"`
	UserName   string             `json:"userName" yaml:"userName"`
	VendorName string             `json:"vendorName" yaml:"vendorName"`
	Amount     decimal.Decimal    `json:"amount" yaml:"amount"`
	Method     PaymentMethod      `json:"method" yaml:"method"`
	Status     AdminPaymentStatus `json:"status" yaml:"status"`
	Date       time.Time          `json:"date" yaml:"date"`
}

type SettlementStatus string

const (
	SettlementPending    SettlementStatus = "Pending"
	SettlementProcessing SettlementStatus = "Processing"
	SettlementCompleted  SettlementStatus = "Completed"
)

var settlementTransitions = transitions[SettlementStatus]{
	SettlementPending:    {SettlementProcessing, SettlementCompleted},
	SettlementProcessing: {SettlementCompleted},
}

func (s SettlementStatus) CanMoveTo(next SettlementStatus) error {
	return settlementTransitions.check("settlement", s, next)
}

type SettlementType string

const (
	SettlementVendorPayout    SettlementType = "Vendor Payout"
	SettlementAffiliatePayout SettlementType = "Affiliate Payout"
)

type AdminSettlement struct {
	ID           string           `json:"id" yaml:"id"`
	Counterparty string           `json:"counterparty" yaml:"counterparty"`
	Period       string           `json:"period" yaml:"period"`
	Amount       decimal.Decimal  `json:"amount" yaml:"amount"`
	Type         SettlementType   `json:"type" yaml:"type"`
	Status       SettlementStatus `json:"status" yaml:"status"`
}

// SettlementControl is the admin switch that holds scheduled payouts.
type SettlementControl struct {
	Paused    bool      `json:"paused"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type KYCStatus string

const (
	KYCNotSubmitted KYCStatus = "Not Submitted"
	KYCUnderReview  KYCStatus = "Under Review"
	KYCApproved     KYCStatus = "Approved"
)

var kycTransitions = transitions[KYCStatus]{
	KYCNotSubmitted: {KYCUnderReview},
	KYCUnderReview:  {KYCApproved},
}

func (s KYCStatus) CanMoveTo(next KYCStatus) error {
	return kycTransitions.check("kyc", s, next)
}

type StoreStatus string

const (
	StorePending   StoreStatus = "Pending"
	StoreApproved  StoreStatus = "Approved"
	StoreSuspended StoreStatus = "Suspended"
	StoreRejected  StoreStatus = "Rejected"
)

var storeTransitions = transitions[StoreStatus]{
	StorePending:   {StoreApproved, StoreRejected},
	StoreApproved:  {StoreSuspended},
	StoreSuspended: {StoreApproved},
	StoreRejected:  {StorePending},
}

func (s StoreStatus) CanMoveTo(next StoreStatus) error {
	return storeTransitions.check("store", s, next)
}

// Blocked reports whether a store in this status may not operate.
func (s StoreStatus) Blocked() bool {
	return s == StoreSuspended || s == StoreRejected
}

type AdminVendor struct {
	ID            string          `json:"id" yaml:"id"`
	StoreName     string          `json:"storeName" yaml:"storeName"`
	Category      string          `json:"category" yaml:"category"`
	Address       string          `json:"address" yaml:"address"`
	OwnerName     string          `json:"ownerName" yaml:"ownerName"`
	OwnerEmail    string          `json:"ownerEmail" yaml:"ownerEmail"`
	OwnerPhone    string          `json:"ownerPhone" yaml:"ownerPhone"`
	KYCStatus     KYCStatus       `json:"kycStatus" yaml:"kycStatus"`
	StoreStatus   StoreStatus     `json:"storeStatus" yaml:"storeStatus"`
	JoinedAt      time.Time       `json:"joinedAt" yaml:"joinedAt"`
	TotalProducts int             `json:"totalProducts" yaml:"totalProducts"`
	TotalOrders   int             `json:"totalOrders" yaml:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue" yaml:"totalRevenue"`
	KYCFiles      []string        `json:"kycFiles" yaml:"kycFiles"`
}

type AccountStatus string

const (
	AccountActive    AccountStatus = "Active"
	AccountSuspended AccountStatus = "Suspended"
)

var accountTransitions = transitions[AccountStatus]{
	AccountActive:    {AccountSuspended},
	AccountSuspended: {AccountActive},
}

func (s AccountStatus) CanMoveTo(next AccountStatus) error {
	return accountTransitions.check("account", s, next)
}

type AdminUser struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Email        string        `json:"email" yaml:"email"`
	Phone        string        `json:"phone" yaml:"phone"`
	Role         Role          `json:"role" yaml:"role"`
	Status       AccountStatus `json:"status" yaml:"status"`
	JoinedAt     time.Time     `json:"joinedAt" yaml:"joinedAt"`
	OrdersCount  int           `json:"ordersCount" yaml:"ordersCount"`
	ReturnsCount int           `json:"returnsCount" yaml:"returnsCount"`
}

type WalletType string

const (
	WalletUser      WalletType = "User"
	WalletVendor    WalletType = "Vendor"
	WalletAffiliate WalletType = "Affiliate"
)

type Direction string

const (
	Credit Direction = "Credit"
	Debit  Direction = "Debit"
)

type WalletTxnStatus string

const (
	TxnCompleted WalletTxnStatus = "Completed"
	TxnPending   WalletTxnStatus = "Pending"
	TxnReversed  WalletTxnStatus = "Reversed"
)

var walletTxnTransitions = transitions[WalletTxnStatus]{
	TxnPending:   {TxnCompleted, TxnReversed},
	TxnCompleted: {TxnReversed},
}

func (s WalletTxnStatus) CanMoveTo(next WalletTxnStatus) error {
	return walletTxnTransitions.check("wallet transaction", s, next)
}

type WalletBalance struct {
	Type    WalletType      `json:"type" yaml:"type"`
	Label   string          `json:"label" yaml:"label"`
	Balance decimal.Decimal `json:"balance" yaml:"balance"`
}

type WalletTxn struct {
	ID         string          `json:"id" yaml:"id"`
	WalletType WalletType      `json:"walletType" yaml:"walletType"`
	Reference  string          `json:"reference" yaml:"reference"`
	Direction  Direction       `json:"direction" yaml:"direction"`
	Amount     decimal.Decimal `json:"amount" yaml:"amount"`
	Status     WalletTxnStatus `json:"status" yaml:"status"`
	Date       time.Time       `json:"date" yaml:"date"`
}

type Wallets struct {
	Balances []WalletBalance `json:"balances" yaml:"balances"`
	Txns     []WalletTxn     `json:"txns" yaml:"txns"`
}
