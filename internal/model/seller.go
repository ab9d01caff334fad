package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SellerOrderStatus string

const (
	SellerOrderNew       SellerOrderStatus = "New"
	SellerOrderPacked    SellerOrderStatus = "Packed"
	SellerOrderShipped   SellerOrderStatus = "Shipped"
	SellerOrderDelivered SellerOrderStatus = "Delivered"
	SellerOrderReturned  SellerOrderStatus = "Returned"
)

// Returned is absent on purpose: only a refunded return moves an order there.
var sellerOrderTransitions = transitions[SellerOrderStatus]{
	SellerOrderNew:     {SellerOrderPacked},
	SellerOrderPacked:  {SellerOrderShipped},
	SellerOrderShipped: {SellerOrderDelivered},
}

func (s SellerOrderStatus) CanMoveTo(next SellerOrderStatus) error {
	return sellerOrderTransitions.check("seller order", s, next)
}

// Next returns the status a seller may move to, if any.
func (s SellerOrderStatus) Next() (SellerOrderStatus, bool) {
	n := sellerOrderTransitions.next(s)
	if len(n) == 0 {
		return "", false
	}
	return n[0], true
}

type SellerPaymentStatus string

const (
	SellerPaymentPaid SellerPaymentStatus = "Paid"
	SellerPaymentCOD  SellerPaymentStatus = "COD"
)

type SellerOrderItem struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Image    string          `json:"image,omitempty" yaml:"image"`
	Quantity int             `json:"quantity" yaml:"quantity"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
}

type SellerOrder struct {
	ID              string              `json:"id" yaml:"id"`
	Date            time.Time           `json:"date" yaml:"date"`
	CustomerName    string              `json:"customerName" yaml:"customerName"`
	CustomerPhone   string              `json:"customerPhone" yaml:"customerPhone"`
	CustomerAddress string              `json:"customerAddress" yaml:"customerAddress"`
	Items           []SellerOrderItem   `json:"items" yaml:"items"`
	Amount          decimal.Decimal     `json:"amount" yaml:"amount"`
	PaymentStatus   SellerPaymentStatus `json:"paymentStatus" yaml:"paymentStatus"`
	Status          SellerOrderStatus   `json:"status" yaml:"status"`
	HasReturn       bool                `json:"hasReturn" yaml:"hasReturn"`
}

type SellerReturnStatus string

const (
	SellerReturnRequested SellerReturnStatus = "Requested"
	SellerReturnApproved  SellerReturnStatus = "Approved"
	SellerReturnRejected  SellerReturnStatus = "Rejected"
	SellerReturnPicked    SellerReturnStatus = "Picked"
	SellerReturnRefunded  SellerReturnStatus = "Refunded"
)

var sellerReturnTransitions = transitions[SellerReturnStatus]{
	SellerReturnRequested: {SellerReturnApproved, SellerReturnRejected},
	SellerReturnApproved:  {SellerReturnPicked},
	SellerReturnPicked:    {SellerReturnRefunded},
}

func (s SellerReturnStatus) CanMoveTo(next SellerReturnStatus) error {
	return sellerReturnTransitions.check("seller return", s, next)
}

func (s SellerReturnStatus) Resolved() bool {
	return s == SellerReturnRejected || s == SellerReturnRefunded
}

type SellerReturn struct {
	ID              string             `json:"id" yaml:"id"`
	OrderID         string             `json:"orderId" yaml:"orderId"`
	ProductName     string             `json:"productName" yaml:"productName"`
	Reason          string             `json:"reason" yaml:"reason"`
	Status          SellerReturnStatus `json:"status" yaml:"status"`
	RefundAmount    decimal.Decimal    `json:"refundAmount" yaml:"refundAmount"`
	RequestedAt     time.Time          `json:"requestedAt" yaml:"requestedAt"`
	RejectionReason string             `json:"rejectionReason,omitempty" yaml:"rejectionReason"`
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "Active"
	ProductInactive ProductStatus = "Inactive"
)

var productTransitions = transitions[ProductStatus]{
	ProductActive:   {ProductInactive},
	ProductInactive: {ProductActive},
}

func (s ProductStatus) CanMoveTo(next ProductStatus) error {
	return productTransitions.check("product", s, next)
}

type SellerProduct struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Category    string          `json:"category" yaml:"category"`
	Brand       string          `json:"brand" yaml:"brand"`
	Description string          `json:"description" yaml:"description"`
	MRP         decimal.Decimal `json:"mrp" yaml:"mrp"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Stock       int             `json:"stock" yaml:"stock"`
	SKU         string          `json:"sku" yaml:"sku"`
	Status      ProductStatus   `json:"status" yaml:"status"`
	Image       string          `json:"image,omitempty" yaml:"image"`
}
