package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusInTransit OrderStatus = "In Transit"
	OrderStatusDelivered OrderStatus = "Delivered"
)

var orderTransitions = transitions[OrderStatus]{
	OrderStatusInTransit: {OrderStatusDelivered},
}

func (s OrderStatus) CanMoveTo(next OrderStatus) error {
	return orderTransitions.check("order", s, next)
}

type PaymentMethod string

const (
	PaymentUPI        PaymentMethod = "UPI"
	PaymentCard       PaymentMethod = "Card"
	PaymentNetBanking PaymentMethod = "NetBanking"
	PaymentCOD        PaymentMethod = "COD"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentUPI, PaymentCard, PaymentNetBanking, PaymentCOD:
		return true
	}
	return false
}

const (
	orderIDPrefix = "GLN-"
	DefaultSeller = "Glonni Verified Seller"

	DeliveryWindow = 6 * 24 * time.Hour
)

// CheckoutDiscount is the flat discount taken off every order.
var CheckoutDiscount = decimal.NewFromInt(350)

type OrderItem struct {
	ProductID string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Cashback  decimal.Decimal `json:"cashback"`
	Image     string          `json:"image,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) LineCashback() decimal.Decimal {
	return i.Cashback.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customerId"`
	Items            []OrderItem     `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
	CashbackTotal    decimal.Decimal `json:"cashbackTotal"`
	Status           OrderStatus     `json:"status"`
	Payment          PaymentMethod   `json:"payment"`
	CreatedAt        time.Time       `json:"createdAt"`
	ExpectedDelivery time.Time       `json:"expectedDelivery"`
	DeliveredAt      *time.Time      `json:"deliveredAt,omitempty"`
	Address          string          `json:"address"`
	Seller           string          `json:"seller"`
	ReturnRequest    *ReturnRequest  `json:"returnRequest,omitempty"`
}

// Totals returns the payable amount (subtotal minus discount, never below
// zero) and the cashback earned by items.
func Totals(items []OrderItem, discount decimal.Decimal) (subtotal, total, cashback decimal.Decimal) {
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
		cashback = cashback.Add(it.LineCashback())
	}

	total = subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return subtotal, total, cashback
}

func FormatOrderID(seq int) string {
	return fmt.Sprintf("%s%05d", orderIDPrefix, seq)
}

func ParseOrderSeq(id string) (int, bool) {
	if !strings.HasPrefix(id, orderIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, orderIDPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// CartLine is one product in a customer's cart.
type CartLine struct {
	OwnerID   string          `json:"ownerId"`
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Cashback  decimal.Decimal `json:"cashback"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

func CartLineKey(owner, productID string) string {
	return owner + "/" + productID
}

func (l CartLine) Key() string {
	return CartLineKey(l.OwnerID, l.ProductID)
}

func (l CartLine) Item() OrderItem {
	return OrderItem{
		ProductID: l.ProductID,
		Title:     l.Title,
		Price:     l.Price,
		Quantity:  l.Quantity,
		Cashback:  l.Cashback,
		Image:     l.Image,
	}
}
