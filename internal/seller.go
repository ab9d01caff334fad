package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

type SellerOrderStatusInput struct {
	Status model.SellerOrderStatus `json:"status" validate:"required"`
}

type SellerReturnInput struct {
	Status          model.SellerReturnStatus `json:"status" validate:"required"`
	RejectionReason string                   `json:"rejectionReason"`
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	MRP         decimal.Decimal `json:"mrp"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	SKU         string          `json:"sku"`
	Image       string          `json:"image"`
}

type ProductPatch struct {
	Name        *string              `json:"name"`
	Category    *string              `json:"category"`
	Brand       *string              `json:"brand"`
	Description *string              `json:"description"`
	MRP         *decimal.Decimal     `json:"mrp"`
	Price       *decimal.Decimal     `json:"price"`
	Stock       *int                 `json:"stock" validate:"omitempty,min=0"`
	Status      *model.ProductStatus `json:"status"`
	Image       *string              `json:"image"`
}

type SellerService struct {
	stores *Stores
	logger *zap.SugaredLogger
}

func NewSellerService(stores *Stores, logger *zap.SugaredLogger) *SellerService {
	return &SellerService{stores: stores, logger: logger}
}

func (s *SellerService) Orders(ctx context.Context) ([]model.SellerOrder, error) {
	return s.stores.SellerOrders.Snapshot(ctx)
}

func (s *SellerService) Order(ctx context.Context, id string) (model.SellerOrder, error) {
	return s.stores.SellerOrders.Find(ctx, id)
}

// unresolvedReturn reports whether orderID has a return that is neither
// rejected nor refunded.
func (s *SellerService) unresolvedReturn(ctx context.Context, orderID string) (bool, error) {
	returns, err := s.stores.SellerReturns.Snapshot(ctx)
	if err != nil {
		return false, err
	}

	for _, r := range returns {
		if r.OrderID == orderID && !r.Status.Resolved() {
			return true, nil
		}
	}
	return false, nil
}

// UpdateOrderStatus moves a seller order along its fulfilment flow. Orders
// with an unresolved return are locked.
func (s *SellerService) UpdateOrderStatus(ctx context.Context, id string, next model.SellerOrderStatus) (model.SellerOrder, error) {
	pending, err := s.unresolvedReturn(ctx, id)
	if err != nil {
		return model.SellerOrder{}, err
	}
	if pending {
		return model.SellerOrder{}, ErrReturnPending
	}

	o, err := s.stores.SellerOrders.Update(ctx, id, func(o *model.SellerOrder) error {
		if err := o.Status.CanMoveTo(next); err != nil {
			return err
		}
		o.Status = next
		return nil
	})
	if err != nil {
		return model.SellerOrder{}, err
	}

	s.logger.Infof("seller order %s moved to %s", id, next)
	return o, nil
}

func (s *SellerService) Returns(ctx context.Context) ([]model.SellerReturn, error) {
	return s.stores.SellerReturns.Snapshot(ctx)
}

func (s *SellerService) Return(ctx context.Context, id string) (model.SellerReturn, error) {
	return s.stores.SellerReturns.Find(ctx, id)
}

// UpdateReturnStatus records the seller decision or progress on a return.
// Rejection needs a reason.
func (s *SellerService) UpdateReturnStatus(ctx context.Context, id string, in SellerReturnInput) (model.SellerReturn, error) {
	reason := strings.TrimSpace(in.RejectionReason)
	if in.Status == model.SellerReturnRejected && reason == "" {
		return model.SellerReturn{}, ErrRejectionReason
	}

	r, err := s.stores.SellerReturns.Update(ctx, id, func(r *model.SellerReturn) error {
		if err := r.Status.CanMoveTo(in.Status); err != nil {
			return err
		}
		r.Status = in.Status
		if in.Status == model.SellerReturnRejected {
			r.RejectionReason = reason
		}
		return nil
	})
	if err != nil {
		return model.SellerReturn{}, err
	}

	s.logger.Infof("seller return %s moved to %s", id, in.Status)
	return r, nil
}

func (s *SellerService) Products(ctx context.Context) ([]model.SellerProduct, error) {
	return s.stores.SellerProducts.Snapshot(ctx)
}

func (s *SellerService) Product(ctx context.Context, id string) (model.SellerProduct, error) {
	return s.stores.SellerProducts.Find(ctx, id)
}

func (s *SellerService) AddProduct(ctx context.Context, in ProductInput) (model.SellerProduct, error) {
	sku := in.SKU
	if sku == "" {
		sku = makeSKU(in.Name)
	}

	p, err := s.stores.SellerProducts.Insert(ctx, func([]model.SellerProduct) (model.SellerProduct, error) {
		return model.SellerProduct{
			ID:          "prd_" + strings.SplitN(uuid.NewString(), "-", 2)[0],
			Name:        in.Name,
			Category:    in.Category,
			Brand:       in.Brand,
			Description: in.Description,
			MRP:         in.MRP,
			Price:       in.Price,
			Stock:       in.Stock,
			SKU:         sku,
			Status:      model.ProductActive,
			Image:       in.Image,
		}, nil
	})
	if err != nil {
		return model.SellerProduct{}, err
	}

	s.logger.Infof("product %s added as %s", p.ID, p.SKU)
	return p, nil
}

func (s *SellerService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (model.SellerProduct, error) {
	return s.stores.SellerProducts.Update(ctx, id, func(p *model.SellerProduct) error {
		if err := moveTo(&p.Status, patch.Status); err != nil {
			return err
		}
		setIf(&p.Name, patch.Name)
		setIf(&p.Category, patch.Category)
		setIf(&p.Brand, patch.Brand)
		setIf(&p.Description, patch.Description)
		setIf(&p.MRP, patch.MRP)
		setIf(&p.Price, patch.Price)
		setIf(&p.Stock, patch.Stock)
		setIf(&p.Image, patch.Image)
		return nil
	})
}

// makeSKU upper-cases name, collapses every run of other characters into a
// dash, keeps eight characters and appends a three digit suffix.
func makeSKU(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	base := b.String()
	if len(base) > 8 {
		base = base[:8]
	}
	return fmt.Sprintf("%s-%d", base, uuid.New().ID()%900+100)
}
