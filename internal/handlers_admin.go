package internal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/toast"
)

type ReturnStepInput struct {
	Step model.ReturnStep `json:"step" validate:"required"`
}

type RefundStatusInput struct {
	Status model.RefundStatus `json:"status" validate:"required"`
}

func (h *Handlers) adminRoutes(r fiber.Router) {
	r.Get("/orders", h.GetAdminOrders)
	r.Get("/orders/:id", h.GetAdminOrder)
	r.Patch("/orders/:id", h.UpdateAdminOrder)

	r.Get("/returns", h.GetAdminReturns)
	r.Get("/returns/:id", h.GetAdminReturn)
	r.Patch("/returns/:id", h.DecideAdminReturn)

	r.Get("/payments", h.GetAdminPayments)
	r.Patch("/payments/:id", h.UpdateAdminPayment)

	r.Get("/settlements", h.GetSettlements)
	r.Get("/settlements/summary", h.GetSettlementSummary)
	r.Get("/settlements/control", h.GetSettlementControl)
	r.Put("/settlements/control", h.SetSettlementControl)
	r.Post("/settlements/run", h.RunSettlements)
	r.Patch("/settlements/:id", h.UpdateSettlement)

	r.Get("/vendors", h.GetVendors)
	r.Get("/vendors/:id", h.GetVendor)
	r.Patch("/vendors/:id", h.UpdateVendor)

	r.Get("/users", h.GetUsers)
	r.Get("/users/:id", h.GetUser)
	r.Patch("/users/:id", h.UpdateUser)

	r.Get("/wallets", h.GetWallets)
	r.Get("/wallets/total", h.GetWalletTotal)
	r.Patch("/wallets/transactions/:id", h.UpdateWalletTxn)

	ops := r.Group("/operations")
	ops.Get("/orders", h.GetAllOrders)
	ops.Get("/returns", h.GetAllReturns)
	ops.Post("/orders/:id/deliver", h.DeliverOrder)
	ops.Post("/orders/:id/return", h.AdvanceReturn)
	ops.Post("/orders/:id/refund", h.AdvanceRefund)
}

func (h *Handlers) GetAdminOrders(c *fiber.Ctx) error {
	orders, err := h.admin.Orders(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) GetAdminOrder(c *fiber.Ctx) error {
	o, err := h.admin.Order(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) UpdateAdminOrder(c *fiber.Ctx) error {
	var i AdminOrderPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	o, err := h.admin.UpdateOrder(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Order updated")
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) GetAdminReturns(c *fiber.Ctx) error {
	returns, err := h.admin.Returns(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(returns)
}

func (h *Handlers) GetAdminReturn(c *fiber.Ctx) error {
	r, err := h.admin.Return(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *Handlers) DecideAdminReturn(c *fiber.Ctx) error {
	var i AdminReturnPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	r, err := h.admin.DecideReturn(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Return marked as "+string(r.Status))
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *Handlers) GetAdminPayments(c *fiber.Ctx) error {
	payments, err := h.admin.Payments(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(payments)
}

func (h *Handlers) UpdateAdminPayment(c *fiber.Ctx) error {
	var i AdminPaymentPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	p, err := h.admin.UpdatePayment(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *Handlers) GetSettlements(c *fiber.Ctx) error {
	items, err := h.admin.Settlements(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(items)
}

func (h *Handlers) GetSettlementSummary(c *fiber.Ctx) error {
	sum, err := h.wallet.SettlementSummary(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(sum)
}

func (h *Handlers) GetSettlementControl(c *fiber.Ctx) error {
	ctl, err := h.admin.SettlementControl(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ctl)
}

func (h *Handlers) SetSettlementControl(c *fiber.Ctx) error {
	var i SettlementControlInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	ctl, err := h.admin.SetSettlementControl(c.Context(), i)
	if err != nil {
		return h.fail(c, err)
	}

	msg := "Settlements resumed"
	if ctl.Paused {
		msg = "Settlements paused"
	}
	h.notify(c, toast.Info, msg)
	return c.Status(fiber.StatusOK).JSON(ctl)
}

func (h *Handlers) RunSettlements(c *fiber.Ctx) error {
	n, err := h.admin.RunSettlements(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"moved": n})
}

func (h *Handlers) UpdateSettlement(c *fiber.Ctx) error {
	var i SettlementPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	st, err := h.admin.UpdateSettlement(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(st)
}

func (h *Handlers) GetVendors(c *fiber.Ctx) error {
	vendors, err := h.admin.Vendors(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(vendors)
}

func (h *Handlers) GetVendor(c *fiber.Ctx) error {
	v, err := h.admin.Vendor(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(v)
}

func (h *Handlers) UpdateVendor(c *fiber.Ctx) error {
	var i VendorPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	v, err := h.admin.UpdateVendor(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}

	h.notify(c, toast.Success, "Vendor updated")
	return c.Status(fiber.StatusOK).JSON(v)
}

func (h *Handlers) GetUsers(c *fiber.Ctx) error {
	users, err := h.admin.Users(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *Handlers) GetUser(c *fiber.Ctx) error {
	u, err := h.admin.User(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(u)
}

func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	var i UserPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	u, err := h.admin.UpdateUser(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}
	if i.Role != nil {
		if err = h.access.GrantRole(c.Context(), u.ID, u.Role); err != nil {
			return h.fail(c, err)
		}
	}

	h.notify(c, toast.Success, "User updated")
	return c.Status(fiber.StatusOK).JSON(u)
}

func (h *Handlers) GetWallets(c *fiber.Ctx) error {
	w, err := h.admin.Wallets(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(w)
}

func (h *Handlers) GetWalletTotal(c *fiber.Ctx) error {
	total, err := h.wallet.WalletTotals(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"total": total})
}

func (h *Handlers) UpdateWalletTxn(c *fiber.Ctx) error {
	var i WalletTxnPatch
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	t, err := h.admin.UpdateWalletTxn(c.Context(), c.Params("id"), i)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

func (h *Handlers) GetAllOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListOrders(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) GetAllReturns(c *fiber.Ctx) error {
	returns, err := h.returns.ListReturns(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(returns)
}

func (h *Handlers) DeliverOrder(c *fiber.Ctx) error {
	o, err := h.orders.MarkDelivered(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) AdvanceReturn(c *fiber.Ctx) error {
	var i ReturnStepInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	o, err := h.returns.AdvanceReturn(c.Context(), c.Params("id"), i.Step)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *Handlers) AdvanceRefund(c *fiber.Ctx) error {
	var i RefundStatusInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	o, err := h.returns.AdvanceRefund(c.Context(), c.Params("id"), i.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(o)
}
