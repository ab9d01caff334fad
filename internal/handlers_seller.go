package internal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/toast"
)

var sellerReturnNotices = map[model.SellerReturnStatus]string{
	model.SellerReturnApproved: "Return approved. Pickup will be scheduled.",
	model.SellerReturnRejected: "Return rejected.",
	model.SellerReturnPicked:   "Item marked as picked up.",
	model.SellerReturnRefunded: "Refund processed.",
}

func (h *Handlers) sellerRoutes(r fiber.Router) {
	r.Get("/orders", h.GetSellerOrders)
	r.Get("/orders/:id", h.GetSellerOrder)
	r.Patch("/orders/:id", h.UpdateSellerOrder)

	r.Get("/returns", h.GetSellerReturns)
	r.Get("/returns/:id", h.GetSellerReturn)
	r.Patch("/returns/:id", h.UpdateSellerReturn)

	r.Get("/products", h.GetProducts)
	r.Get("/products/:id", h.GetProduct)
	r.Post("/products", h.AddProduct)
	r.Patch("/products/:id", h.UpdateProduct)

	r.Get("/wallet", h.GetSellerWallet)
}

func (h *Handlers) GetSellerOrders(c *fiber.Ctx) error {
	orders, err := h.seller.Orders(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) GetSellerOrder(c *fiber.Ctx) error {
	o, err := h.seller.Order(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) UpdateSellerOrder(c *fiber.Ctx) error {
	var i SellerOrderStatusInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	o, err := h.seller.UpdateOrderStatus(c.Context(), c.Params("id"), i.Status)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Order marked as "+string(o.Status)+".")
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) GetSellerReturns(c *fiber.Ctx) error {
	returns, err := h.seller.Returns(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(returns)
}

func (h *Handlers) GetSellerReturn(c *fiber.Ctx) error {
	r, err := h.seller.Return(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *Handlers) UpdateSellerReturn(c *fiber.Ctx) error {
	var i SellerReturnInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	r, err := h.seller.UpdateReturnStatus(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}

	if msg, ok := sellerReturnNotices[r.Status]; ok {
		h.notify(c, toast.Success, msg)
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *Handlers) GetProducts(c *fiber.Ctx) error {
	products, err := h.seller.Products(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(products)
}

func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	p, err := h.seller.Product(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *Handlers) AddProduct(c *fiber.Ctx) error {
	var i ProductInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	p, err := h.seller.AddProduct(c.Context(), i)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Product added successfully")
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	var i ProductPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	p, err := h.seller.UpdateProduct(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Product updated")
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *Handlers) GetSellerWallet(c *fiber.Ctx) error {
	w, err := h.wallet.SellerWallet(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(w)
}
