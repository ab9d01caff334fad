package internal

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/DrGermanius/Glonni/internal/model"
)

type CartInput struct {
	ProductID string          `json:"id" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Cashback  decimal.Decimal `json:"cashback"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	Image     string          `json:"image"`
}

func (s *OrderService) Cart(ctx context.Context, owner string) ([]model.CartLine, error) {
	lines, err := s.stores.Cart.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.OwnerID == owner {
			out = append(out, l)
		}
	}
	return out, nil
}

// AddToCart adds the product or raises the quantity of an existing line.
func (s *OrderService) AddToCart(ctx context.Context, owner string, in CartInput) error {
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	return s.stores.Cart.Mutate(ctx, func(lines []model.CartLine) ([]model.CartLine, error) {
		key := model.CartLineKey(owner, in.ProductID)
		for i := range lines {
			if lines[i].Key() == key {
				lines[i].Quantity += in.Quantity
				return lines, nil
			}
		}

		return append(lines, model.CartLine{
			OwnerID:   owner,
			ProductID: in.ProductID,
			Title:     in.Title,
			Price:     in.Price,
			Cashback:  in.Cashback,
			Quantity:  in.Quantity,
			Image:     in.Image,
		}), nil
	})
}

// SetCartQuantity sets the quantity of a line; zero or less removes it.
func (s *OrderService) SetCartQuantity(ctx context.Context, owner, productID string, qty int) error {
	return s.stores.Cart.Mutate(ctx, func(lines []model.CartLine) ([]model.CartLine, error) {
		key := model.CartLineKey(owner, productID)
		for i := range lines {
			if lines[i].Key() != key {
				continue
			}
			if qty <= 0 {
				return append(lines[:i], lines[i+1:]...), nil
			}
			lines[i].Quantity = qty
			return lines, nil
		}
		return nil, ErrNoRecords
	})
}

func (s *OrderService) RemoveFromCart(ctx context.Context, owner, productID string) error {
	return s.SetCartQuantity(ctx, owner, productID, 0)
}

func (s *OrderService) ClearCart(ctx context.Context, owner string) error {
	return s.stores.Cart.Mutate(ctx, func(lines []model.CartLine) ([]model.CartLine, error) {
		kept := lines[:0]
		for _, l := range lines {
			if l.OwnerID != owner {
				kept = append(kept, l)
			}
		}
		return kept, nil
	})
}
