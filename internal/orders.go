package internal

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/theplant/luhn"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

type CheckoutInput struct {
	Address    string              `json:"address" validate:"required"`
	Payment    model.PaymentMethod `json:"payment" validate:"required"`
	CardNumber string              `json:"cardNumber"`
}

type OrderService struct {
	stores *Stores
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewOrderService(stores *Stores, logger *zap.SugaredLogger) *OrderService {
	return &OrderService{stores: stores, logger: logger, now: time.Now}
}

// CreateOrder turns the owner's cart into an order, clears the cart and
// remembers the order as the owner's last one.
func (s *OrderService) CreateOrder(ctx context.Context, owner string, in CheckoutInput) (model.Order, error) {
	if !in.Payment.Valid() {
		return model.Order{}, ErrInvalidPayment
	}
	if in.Payment == model.PaymentCard && !validCard(in.CardNumber) {
		return model.Order{}, ErrLuhnInvalid
	}

	lines, err := s.Cart(ctx, owner)
	if err != nil {
		return model.Order{}, err
	}
	if len(lines) == 0 {
		return model.Order{}, ErrCartEmpty
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.Item())
	}
	subtotal, total, cashback := model.Totals(items, model.CheckoutDiscount)

	now := s.now()
	order, err := s.stores.Orders.Insert(ctx, func(current []model.Order) (model.Order, error) {
		return model.Order{
			ID:               model.FormatOrderID(nextOrderSeq(current)),
			CustomerID:       owner,
			Items:            items,
			Subtotal:         subtotal,
			Discount:         model.CheckoutDiscount,
			Total:            total,
			CashbackTotal:    cashback,
			Status:           model.OrderStatusInTransit,
			Payment:          in.Payment,
			CreatedAt:        now,
			ExpectedDelivery: now.Add(model.DeliveryWindow),
			Address:          in.Address,
			Seller:           model.DefaultSeller,
		}, nil
	})
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Infof("order %s placed by %s, total %s", order.ID, owner, order.Total)

	if err = s.ClearCart(ctx, owner); err != nil {
		s.logger.Errorf("clear cart of %s after %s: %s", owner, order.ID, err.Error())
	}

	_, err = s.stores.LastOrder.Update(ctx, func(m map[string]string) (map[string]string, error) {
		if m == nil {
			m = map[string]string{}
		}
		m[owner] = order.ID
		return m, nil
	})
	if err != nil {
		s.logger.Errorf("remember last order of %s: %s", owner, err.Error())
	}

	return order, nil
}

func nextOrderSeq(orders []model.Order) int {
	last := 0
	for _, o := range orders {
		if n, ok := model.ParseOrderSeq(o.ID); ok && n > last {
			last = n
		}
	}
	return last + 1
}

const maxCardDigits = 19

// validCard checks the number with Luhn. The check digit is compared against
// the one computed for the rest, which keeps 19 digit numbers within int.
func validCard(number string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
	if len(digits) < 2 || len(digits) > maxCardDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}

	body, err := strconv.Atoi(digits[:len(digits)-1])
	if err != nil || body <= 0 {
		return false
	}
	check := int(digits[len(digits)-1] - '0')
	return luhn.CalculateLuhn(body) == check
}

func (s *OrderService) LastOrderID(ctx context.Context, owner string) (string, error) {
	m, err := s.stores.LastOrder.Get(ctx)
	if err != nil {
		return "", err
	}

	id, ok := m[owner]
	if !ok {
		return "", ErrNoRecords
	}
	return id, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (model.Order, error) {
	return s.stores.Orders.Find(ctx, id)
}

// CustomerOrder returns the order only when it belongs to owner.
func (s *OrderService) CustomerOrder(ctx context.Context, owner, id string) (model.Order, error) {
	o, err := s.stores.Orders.Find(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	if o.CustomerID != owner {
		return model.Order{}, ErrNoRecords
	}
	return o, nil
}

// ListOrders returns every order, most recent first.
func (s *OrderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.stores.Orders.Snapshot(ctx)
}

func (s *OrderService) ListCustomerOrders(ctx context.Context, owner string) ([]model.Order, error) {
	all, err := s.stores.Orders.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Order, 0)
	for _, o := range all {
		if o.CustomerID == owner {
			out = append(out, o)
		}
	}
	return out, nil
}

// AttachReturn replaces the return request of an order. A replacement may
// not move the request back.
func (s *OrderService) AttachReturn(ctx context.Context, orderID string, rr model.ReturnRequest) (model.Order, error) {
	if err := rr.Validate(); err != nil {
		return model.Order{}, err
	}

	return s.stores.Orders.Update(ctx, orderID, func(o *model.Order) error {
		if o.ReturnRequest != nil {
			if err := rr.Replaces(*o.ReturnRequest); err != nil {
				return err
			}
		}
		o.ReturnRequest = &rr
		return nil
	})
}

func (s *OrderService) MarkDelivered(ctx context.Context, orderID string) (model.Order, error) {
	now := s.now()
	o, err := s.stores.Orders.Update(ctx, orderID, func(o *model.Order) error {
		if err := o.Status.CanMoveTo(model.OrderStatusDelivered); err != nil {
			return err
		}
		o.Status = model.OrderStatusDelivered
		o.DeliveredAt = &now
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Infof("order %s delivered", orderID)
	return o, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNoRecords)
}
