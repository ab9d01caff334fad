package internal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DrGermanius/Glonni/internal/toast"
)

type QuantityInput struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) userRoutes(r fiber.Router) {
	r.Get("/cart", h.GetCart)
	r.Post("/cart", h.AddToCart)
	r.Put("/cart/:productId", h.SetCartQuantity)
	r.Delete("/cart/:productId", h.RemoveFromCart)
	r.Delete("/cart", h.ClearCart)

	r.Post("/checkout", h.Checkout)

	r.Get("/orders", h.GetOrders)
	r.Get("/orders/last", h.GetLastOrder)
	r.Get("/orders/:id", h.GetOrder)

	r.Get("/orders/:id/return", h.GetReturnDraft)
	r.Post("/orders/:id/return/reason", h.SelectReturnReason)
	r.Post("/orders/:id/return/pickup", h.ScheduleReturnPickup)
	r.Get("/orders/:id/return/review", h.ReviewReturn)
	r.Post("/orders/:id/return/confirm", h.ConfirmReturn)

	r.Get("/returns", h.GetReturns)
	r.Get("/wallet", h.GetUserWallet)
}

func (h *Handlers) GetCart(c *fiber.Ctx) error {
	lines, err := h.orders.Cart(c.Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(lines)
}

func (h *Handlers) AddToCart(c *fiber.Ctx) error {
	var i CartInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	if err := h.orders.AddToCart(c.Context(), identity(c), i); err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Added to cart")
	return h.GetCart(c)
}

func (h *Handlers) SetCartQuantity(c *fiber.Ctx) error {
	var i QuantityInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	if err := h.orders.SetCartQuantity(c.Context(), identity(c), c.Params("productId"), i.Quantity); err != nil {
		return h.fail(c, err)
	}
	return h.GetCart(c)
}

func (h *Handlers) RemoveFromCart(c *fiber.Ctx) error {
	if err := h.orders.RemoveFromCart(c.Context(), identity(c), c.Params("productId")); err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Info, "Removed from cart")
	return h.GetCart(c)
}

func (h *Handlers) ClearCart(c *fiber.Ctx) error {
	if err := h.orders.ClearCart(c.Context(), identity(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) Checkout(c *fiber.Ctx) error {
	var i CheckoutInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	o, err := h.orders.CreateOrder(c.Context(), identity(c), i)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Order placed successfully")
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handlers) GetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListCustomerOrders(c.Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) GetLastOrder(c *fiber.Ctx) error {
	id, err := h.orders.LastOrderID(c.Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"orderId": id})
}

func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	o, err := h.orders.CustomerOrder(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) GetReturnDraft(c *fiber.Ctx) error {
	d, err := h.returns.Draft(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(d)
}

func (h *Handlers) SelectReturnReason(c *fiber.Ctx) error {
	var i ReasonInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	d, err := h.returns.SelectReason(c.Context(), identity(c), c.Params("id"), i.Reason)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(d)
}

func (h *Handlers) ScheduleReturnPickup(c *fiber.Ctx) error {
	var i PickupInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	d, err := h.returns.SchedulePickup(c.Context(), identity(c), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(d)
}

func (h *Handlers) ReviewReturn(c *fiber.Ctx) error {
	p, err := h.returns.Review(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *Handlers) ConfirmReturn(c *fiber.Ctx) error {
	o, err := h.returns.Confirm(c.Context(), identity(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Return request submitted")
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handlers) GetReturns(c *fiber.Ctx) error {
	returns, err := h.returns.ListCustomerReturns(c.Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(returns)
}

func (h *Handlers) GetUserWallet(c *fiber.Ctx) error {
	w, err := h.wallet.UserWallet(c.Context(), identity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(w)
}
