package internal_test

import (
	"context"

	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/Glonni/internal"
	"github.com/DrGermanius/Glonni/internal/model"
)

var _ = Describe("ReturnService", func() {
	var (
		ctx     context.Context
		orders  *internal.OrderService
		returns *internal.ReturnService
		order   model.Order
	)
	BeforeEach(func() {
		ctx = context.Background()
		stores := newStores()
		orders = internal.NewOrderService(stores, nopLogger())
		returns = internal.NewReturnService(stores, orders, nopLogger())
		order = deliveredOrder(ctx, orders, "u1")
	})
	request := func(resolution model.Resolution) model.Order {
		_, err := returns.SelectReason(ctx, "u1", order.ID, string(model.ReasonDamaged))
		Expect(err).ShouldNot(HaveOccurred())
		_, err = returns.SchedulePickup(ctx, "u1", order.ID, internal.PickupInput{PickupDate: "2026-03-01", Resolution: string(resolution)})
		Expect(err).ShouldNot(HaveOccurred())

		o, err := returns.Confirm(ctx, "u1", order.ID)
		Expect(err).ShouldNot(HaveOccurred())
		return o
	}
	Context("Return flow", func() {
		It("builds the draft step by step", func() {
			d, err := returns.SelectReason(ctx, "u1", order.ID, string(model.ReasonWrongItemDelivered))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(d.Reason).To(Equal(model.ReasonWrongItemDelivered))

			d, err = returns.SchedulePickup(ctx, "u1", order.ID, internal.PickupInput{PickupDate: "2026-03-01", Resolution: "Replacement"})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(d.Reason).To(Equal(model.ReasonWrongItemDelivered))
			Expect(d.Resolution).To(Equal(model.ResolutionReplacement))

			p, err := returns.Review(ctx, "u1", order.ID)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.RefundAmount).To(Equal("4648"))
			Expect(p.Draft.PickupDate).To(Equal("2026-03-01"))
		})
		It("attaches the request to the order on confirm", func() {
			o := request(model.ResolutionRefund)

			rr := o.ReturnRequest
			Expect(rr).NotTo(BeNil())
			Expect(rr.StatusStep).To(Equal(model.StepRequested))
			Expect(rr.RefundStatus).To(Equal(model.RefundInitiated))
			Expect(rr.RefundAmount.Equal(decimal.NewFromInt(4648))).To(BeTrue())
			Expect(rr.Timeline).To(HaveLen(1))

			_, err := returns.Draft(ctx, "u1", order.ID)
			Expect(err).To(MatchError(internal.ErrNoRecords))

			views, err := returns.ListCustomerReturns(ctx, "u1")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].OrderID).To(Equal(order.ID))

			all, err := returns.ListReturns(ctx)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})
		It("leaves refund status out of replacements", func() {
			o := request(model.ResolutionReplacement)
			Expect(o.ReturnRequest.RefundStatus).To(BeEmpty())

			_, err := returns.AdvanceRefund(ctx, order.ID, model.RefundProcessing)
			Expect(err).To(MatchError(model.ErrRefundNotAllowed))
		})
		It("allows one return per order", func() {
			request(model.ResolutionRefund)

			_, err := returns.SelectReason(ctx, "u1", order.ID, string(model.ReasonDamaged))
			Expect(err).To(MatchError(internal.ErrReturnExists))
		})
		It("needs a delivered order", func() {
			pending := placeOrder(ctx, orders, "u1", model.PaymentUPI)

			_, err := returns.SelectReason(ctx, "u1", pending.ID, string(model.ReasonDamaged))
			Expect(err).To(MatchError(internal.ErrOrderNotDelivered))
		})
		It("needs the owner", func() {
			_, err := returns.SelectReason(ctx, "u2", order.ID, string(model.ReasonDamaged))
			Expect(err).To(MatchError(internal.ErrNoRecords))
		})
		It("rejects unknown reasons and resolutions", func() {
			_, err := returns.SelectReason(ctx, "u1", order.ID, "changed my mind")
			Expect(err).To(MatchError(model.ErrInvalidReason))

			_, err = returns.SchedulePickup(ctx, "u1", order.ID, internal.PickupInput{PickupDate: "2026-03-01", Resolution: "Store credit"})
			Expect(err).To(MatchError(model.ErrInvalidResolution))
		})
		It("refuses an incomplete draft", func() {
			_, err := returns.Confirm(ctx, "u1", order.ID)
			Expect(err).To(MatchError(internal.ErrDraftIncomplete))

			_, err = returns.SelectReason(ctx, "u1", order.ID, string(model.ReasonDamaged))
			Expect(err).ShouldNot(HaveOccurred())

			_, err = returns.Confirm(ctx, "u1", order.ID)
			Expect(err).To(MatchError(internal.ErrDraftIncomplete))
		})
	})
	Context("Progress", func() {
		It("moves forward one step at a time", func() {
			request(model.ResolutionRefund)

			_, err := returns.AdvanceReturn(ctx, order.ID, model.StepPickedUp)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))

			for _, step := range []model.ReturnStep{model.StepPickupScheduled, model.StepPickedUp, model.StepRefundInitiated} {
				_, err = returns.AdvanceReturn(ctx, order.ID, step)
				Expect(err).ShouldNot(HaveOccurred())
			}

			_, err = returns.AdvanceReturn(ctx, order.ID, model.StepPickupScheduled)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))

			o, err := returns.AdvanceRefund(ctx, order.ID, model.RefundProcessing)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(o.ReturnRequest.RefundStatus).To(Equal(model.RefundProcessing))
			Expect(o.ReturnRequest.Timeline).To(HaveLen(5))
		})
		It("needs a return to advance", func() {
			_, err := returns.AdvanceReturn(ctx, order.ID, model.StepPickupScheduled)
			Expect(err).To(MatchError(internal.ErrNoReturn))
		})
	})
})
