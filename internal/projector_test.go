package internal_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/Glonni/internal"
	"github.com/DrGermanius/Glonni/internal/model"
)

var _ = Describe("Projector", func() {
	var (
		ctx       context.Context
		stores    *internal.Stores
		orders    *internal.OrderService
		returns   *internal.ReturnService
		seller    *internal.SellerService
		admin     *internal.AdminService
		projector *internal.Projector
	)
	BeforeEach(func() {
		ctx = context.Background()
		stores = newStores()
		orders = internal.NewOrderService(stores, nopLogger())
		returns = internal.NewReturnService(stores, orders, nopLogger())
		seller = internal.NewSellerService(stores, nopLogger())
		admin = internal.NewAdminService(stores, nopLogger())
		projector = internal.NewProjector(stores, orders, nopLogger())
		projector.Start()
	})
	AfterEach(func() {
		projector.Stop()
	})
	sellerDelivers := func(id string) {
		for _, next := range []model.SellerOrderStatus{model.SellerOrderPacked, model.SellerOrderShipped, model.SellerOrderDelivered} {
			_, err := seller.UpdateOrderStatus(ctx, id, next)
			Expect(err).ShouldNot(HaveOccurred())
		}
	}
	requestReturn := func(id string, resolution model.Resolution) {
		_, err := returns.SelectReason(ctx, "u1", id, string(model.ReasonNotAsDescribed))
		Expect(err).ShouldNot(HaveOccurred())
		_, err = returns.SchedulePickup(ctx, "u1", id, internal.PickupInput{PickupDate: "2026-03-02", Resolution: string(resolution)})
		Expect(err).ShouldNot(HaveOccurred())
		_, err = returns.Confirm(ctx, "u1", id)
		Expect(err).ShouldNot(HaveOccurred())
	}
	Context("Checkout", func() {
		It("shows a new order to seller and admin", func() {
			o := placeOrder(ctx, orders, "u1", model.PaymentUPI)

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.Status).To(Equal(model.SellerOrderNew))
			Expect(so.PaymentStatus).To(Equal(model.SellerPaymentPaid))
			Expect(so.Amount.String()).To(Equal("4648"))
			Expect(so.Items).To(HaveLen(1))

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.OrderStatus).To(Equal(model.AdminOrderPlaced))
			Expect(ao.ReturnStatus).To(Equal(model.AdminReturnNone))
			Expect(ao.Commission.String()).To(Equal("325"))
			Expect(ao.Cashback.String()).To(Equal("240"))
			Expect(ao.TransactionID).To(HavePrefix("TXN-"))

			payments, err := admin.Payments(ctx)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(payments[0].ID).To(Equal("pay_" + o.ID))
			Expect(payments[0].Status).To(Equal(model.PaymentStatusSuccess))
		})
		It("keeps cash on delivery payments pending", func() {
			o := placeOrder(ctx, orders, "u1", model.PaymentCOD)

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.PaymentStatus).To(Equal(model.SellerPaymentCOD))

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.PaymentStatus).To(Equal(model.AdminPaymentPending))
		})
		It("leaves seeded records alone", func() {
			placeOrder(ctx, orders, "u1", model.PaymentUPI)

			so, err := seller.Order(ctx, "ORD-30241")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.Status).To(Equal(model.SellerOrderNew))

			all, err := seller.Orders(ctx)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(all).To(HaveLen(7))
		})
	})
	Context("Delivery", func() {
		It("delivers the order when the seller does", func() {
			o := placeOrder(ctx, orders, "u1", model.PaymentUPI)
			sellerDelivers(o.ID)

			got, err := orders.CustomerOrder(ctx, "u1", o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(got.Status).To(Equal(model.OrderStatusDelivered))

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.OrderStatus).To(Equal(model.AdminOrderDelivered))
		})
		It("follows the seller with the admin view", func() {
			o := placeOrder(ctx, orders, "u1", model.PaymentUPI)
			_, err := seller.UpdateOrderStatus(ctx, o.ID, model.SellerOrderPacked)
			Expect(err).ShouldNot(HaveOccurred())

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.OrderStatus).To(Equal(model.AdminOrderProcessing))
		})
		It("marks seller and admin orders delivered on direct delivery", func() {
			o := deliveredOrder(ctx, orders, "u1")

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.OrderStatus).To(Equal(model.AdminOrderDelivered))

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.Status).To(Equal(model.SellerOrderDelivered))

			_, err = seller.UpdateOrderStatus(ctx, o.ID, model.SellerOrderPacked)
			Expect(err).Should(MatchError(internal.ErrInvalidTransition))
		})
		It("catches up a packed order delivered directly", func() {
			o := placeOrder(ctx, orders, "u1", model.PaymentUPI)
			_, err := seller.UpdateOrderStatus(ctx, o.ID, model.SellerOrderPacked)
			Expect(err).ShouldNot(HaveOccurred())

			_, err = orders.MarkDelivered(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.Status).To(Equal(model.SellerOrderDelivered))
		})
		It("returns a directly delivered order after a refund", func() {
			o := deliveredOrder(ctx, orders, "u1")
			requestReturn(o.ID, model.ResolutionRefund)

			for _, next := range []model.SellerReturnStatus{model.SellerReturnApproved, model.SellerReturnPicked, model.SellerReturnRefunded} {
				_, err := seller.UpdateReturnStatus(ctx, "RET-"+o.ID, internal.SellerReturnInput{Status: next})
				Expect(err).ShouldNot(HaveOccurred())
			}

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.Status).To(Equal(model.SellerOrderReturned))

			_, err = seller.UpdateOrderStatus(ctx, o.ID, model.SellerOrderPacked)
			Expect(err).Should(HaveOccurred())
		})
	})
	Context("Returns", func() {
		var o model.Order
		BeforeEach(func() {
			o = placeOrder(ctx, orders, "u1", model.PaymentUPI)
			sellerDelivers(o.ID)
		})
		It("creates seller and admin returns", func() {
			requestReturn(o.ID, model.ResolutionRefund)

			sr, err := seller.Return(ctx, "RET-"+o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(sr.Status).To(Equal(model.SellerReturnRequested))
			Expect(sr.Reason).To(Equal(string(model.ReasonNotAsDescribed)))
			Expect(sr.RefundAmount.String()).To(Equal("4648"))

			ar, err := admin.Return(ctx, "ret_"+o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ar.Status).To(Equal(model.AdminReturnPendingReview))
			Expect(ar.RefundMethod).To(Equal("Wallet"))
			Expect(ar.Timeline).To(HaveLen(1))

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.HasReturn).To(BeTrue())

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.ReturnStatus).To(Equal(model.AdminReturnPending))
		})
		It("carries seller progress back to the customer", func() {
			requestReturn(o.ID, model.ResolutionRefund)
			id := "RET-" + o.ID

			_, err := seller.UpdateReturnStatus(ctx, id, internal.SellerReturnInput{Status: model.SellerReturnApproved})
			Expect(err).ShouldNot(HaveOccurred())

			got, err := orders.CustomerOrder(ctx, "u1", o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(got.ReturnRequest.StatusStep).To(Equal(model.StepPickupScheduled))

			ar, err := admin.Return(ctx, "ret_"+o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ar.Status).To(Equal(model.AdminReturnApprovedState))
			Expect(ar.VendorDecision).To(Equal("Approved by vendor"))

			_, err = seller.UpdateReturnStatus(ctx, id, internal.SellerReturnInput{Status: model.SellerReturnPicked})
			Expect(err).ShouldNot(HaveOccurred())
			_, err = seller.UpdateReturnStatus(ctx, id, internal.SellerReturnInput{Status: model.SellerReturnRefunded})
			Expect(err).ShouldNot(HaveOccurred())

			got, err = orders.CustomerOrder(ctx, "u1", o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(got.ReturnRequest.StatusStep).To(Equal(model.StepRefundInitiated))
			Expect(got.ReturnRequest.RefundStatus).To(Equal(model.RefundCompleted))

			so, err := seller.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(so.Status).To(Equal(model.SellerOrderReturned))

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.PaymentStatus).To(Equal(model.AdminPaymentRefunded))
			Expect(ao.ReturnStatus).To(Equal(model.AdminReturnApproved))

			payments, err := admin.Payments(ctx)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(payments[0].ID).To(Equal("pay_" + o.ID))
			Expect(payments[0].Status).To(Equal(model.PaymentStatusRefunded))
		})
		It("ships a replacement without touching the refund", func() {
			requestReturn(o.ID, model.ResolutionReplacement)
			id := "RET-" + o.ID

			for _, next := range []model.SellerReturnStatus{model.SellerReturnApproved, model.SellerReturnPicked, model.SellerReturnRefunded} {
				_, err := seller.UpdateReturnStatus(ctx, id, internal.SellerReturnInput{Status: next})
				Expect(err).ShouldNot(HaveOccurred())
			}

			got, err := orders.CustomerOrder(ctx, "u1", o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(got.ReturnRequest.StatusStep).To(Equal(model.StepReplacementShipped))
			Expect(got.ReturnRequest.RefundStatus).To(BeEmpty())

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.PaymentStatus).To(Equal(model.AdminPaymentPaid))
		})
		It("carries a rejection to the admin side", func() {
			requestReturn(o.ID, model.ResolutionRefund)

			_, err := seller.UpdateReturnStatus(ctx, "RET-"+o.ID, internal.SellerReturnInput{Status: model.SellerReturnRejected, RejectionReason: "Used item"})
			Expect(err).ShouldNot(HaveOccurred())

			ar, err := admin.Return(ctx, "ret_"+o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ar.Status).To(Equal(model.AdminReturnRejectedState))
			Expect(ar.VendorDecision).To(Equal("Rejected by vendor: Used item"))

			ao, err := admin.Order(ctx, o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ao.ReturnStatus).To(Equal(model.AdminReturnRejected))

			got, err := orders.CustomerOrder(ctx, "u1", o.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(got.ReturnRequest.StatusStep).To(Equal(model.StepRequested))
		})
		It("writes nothing on a repeated pass", func() {
			requestReturn(o.ID, model.ResolutionRefund)

			before, err := stores.AdminOrders.Version(ctx)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(projector.Sync(ctx)).To(Succeed())

			after, err := stores.AdminOrders.Version(ctx)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(after).To(Equal(before))
		})
	})
})
