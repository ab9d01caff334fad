package internal_test

import (
	"context"
	"errors"

	"github.com/golang/mock/gomock"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/Glonni/internal"
	mock_internal "github.com/DrGermanius/Glonni/internal/mock"
	"github.com/DrGermanius/Glonni/internal/model"
)

var _ = Describe("AccessService", func() {
	var (
		ctx      context.Context
		ctrl     *gomock.Controller
		profiles *mock_internal.MockIProfiles
		access   *internal.AccessService
		session  *model.Session
	)
	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		profiles = mock_internal.NewMockIProfiles(ctrl)
		access = internal.NewAccessService(profiles, newStores(), nopLogger())
		session = &model.Session{Identity: "42"}
	})
	AfterEach(func() {
		ctrl.Finish()
	})
	Context("Authorize", func() {
		It("sends anonymous callers to login", func() {
			_, err := access.Authorize(ctx, nil, model.RoleUser)
			Expect(err).Should(Equal(internal.ErrNotAuthenticated))
			Expect(internal.Redirect(err, model.Profile{})).To(Equal("/login"))
		})
		It("asks for a role when there is no profile", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{}, internal.ErrNoRecords)

			_, err := access.Authorize(ctx, session, model.RoleUser)
			Expect(err).Should(Equal(internal.ErrNoRole))
			Expect(internal.Redirect(err, model.Profile{})).To(Equal("/auth/select-role"))
		})
		It("reports an unreachable profile source", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{}, errors.New("connection refused"))

			_, err := access.Authorize(ctx, session, model.RoleUser)
			Expect(err).To(MatchError(internal.ErrProfileUnavailable))
			Expect(internal.Redirect(err, model.Profile{})).To(BeEmpty())
		})
		It("sends callers to their own area", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleUser}, nil)

			p, err := access.Authorize(ctx, session, model.RoleAdmin)
			Expect(err).Should(Equal(internal.ErrRoleMismatch))
			Expect(internal.Redirect(err, p)).To(Equal("/user"))
		})
		It("lets a matching role in", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller, VendorID: "vnd_2001"}, nil)

			p, err := access.Authorize(ctx, session, model.RoleSeller)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.VendorID).To(Equal("vnd_2001"))
		})
		It("blocks sellers of a suspended store", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller, VendorID: "vnd_2004"}, nil)

			_, err := access.Authorize(ctx, session, model.RoleSeller)
			Expect(err).Should(Equal(internal.ErrAccountSuspended))
		})
		It("blocks suspended accounts", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleUser, AccountID: "usr_1005"}, nil)

			_, err := access.Authorize(ctx, session, model.RoleUser)
			Expect(err).Should(Equal(internal.ErrAccountSuspended))
			Expect(internal.Redirect(err, model.Profile{})).To(Equal("/auth/select-role"))
		})
	})
	Context("Profiles", func() {
		It("creates a missing profile with the user role", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{}, internal.ErrNoRecords)
			profiles.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(true, nil)

			p, created, err := access.EnsureProfile(ctx, "42", "Neha Rao")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(p.Role).To(Equal(model.RoleUser))
			Expect(p.FullName).To(Equal("Neha Rao"))
		})
		It("reads the profile another request created first", func() {
			gomock.InOrder(
				profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{}, internal.ErrNoRecords),
				profiles.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(false, nil),
				profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller}, nil),
			)

			p, created, err := access.EnsureProfile(ctx, "42", "")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(p.Role).To(Equal(model.RoleSeller))
		})
		It("stores the selected role", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleUser}, nil)
			profiles.EXPECT().UpdateProfile(gomock.Any(), model.Profile{ID: "42", Role: model.RoleAffiliate}).Return(nil)

			p, err := access.SelectRole(ctx, "42", model.RoleAffiliate)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Role).To(Equal(model.RoleAffiliate))
		})
		It("rejects unknown roles", func() {
			_, err := access.SelectRole(ctx, "42", model.Role("owner"))
			Expect(err).Should(Equal(internal.ErrInvalidRole))
		})
		It("links known records only", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller}, nil)

			_, err := access.Link(ctx, "42", internal.LinkInput{VendorID: "vnd_404"})
			Expect(err).To(MatchError(internal.ErrNoRecords))
		})
		It("never lets a caller pick admin", func() {
			_, err := access.SelectRole(ctx, "42", model.RoleAdmin)
			Expect(err).Should(Equal(internal.ErrInvalidRole))
		})
		It("refuses a vendor another identity linked", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller}, nil)
			profiles.EXPECT().FindProfileByVendor(gomock.Any(), "vnd_2001").Return(model.Profile{ID: "7", VendorID: "vnd_2001"}, nil)

			_, err := access.Link(ctx, "42", internal.LinkInput{VendorID: "vnd_2001"})
			Expect(err).To(MatchError(internal.ErrAlreadyLinked))
		})
		It("keeps an existing link", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller, VendorID: "vnd_2002"}, nil)

			_, err := access.Link(ctx, "42", internal.LinkInput{VendorID: "vnd_2001"})
			Expect(err).To(MatchError(internal.ErrAlreadyLinked))
		})
		It("links an unclaimed vendor", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "42").Return(model.Profile{ID: "42", Role: model.RoleSeller}, nil)
			profiles.EXPECT().FindProfileByVendor(gomock.Any(), "vnd_2001").Return(model.Profile{}, internal.ErrNoRecords)
			profiles.EXPECT().UpdateProfile(gomock.Any(), model.Profile{ID: "42", Role: model.RoleSeller, VendorID: "vnd_2001"}).Return(nil)

			p, err := access.Link(ctx, "42", internal.LinkInput{VendorID: "vnd_2001"})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.VendorID).To(Equal("vnd_2001"))
		})
	})
	Context("Admin provisioning", func() {
		BeforeEach(func() {
			access.SetAdmins([]string{"root", " "})
		})
		It("grants admin to listed logins", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "1").Return(model.Profile{ID: "1", Role: model.RoleUser}, nil)
			profiles.EXPECT().UpdateProfile(gomock.Any(), model.Profile{ID: "1", Role: model.RoleAdmin}).Return(nil)

			p, err := access.Provision(ctx, "1", "root", "")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Role).To(Equal(model.RoleAdmin))
		})
		It("leaves other logins alone", func() {
			profiles.EXPECT().GetProfile(gomock.Any(), "2").Return(model.Profile{ID: "2", Role: model.RoleUser}, nil)

			p, err := access.Provision(ctx, "2", "neha", "")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Role).To(Equal(model.RoleUser))
		})
		It("carries an account role to the linked profile", func() {
			profiles.EXPECT().FindProfileByAccount(gomock.Any(), "usr_1004").Return(model.Profile{ID: "2", Role: model.RoleUser, AccountID: "usr_1004"}, nil)
			profiles.EXPECT().UpdateProfile(gomock.Any(), model.Profile{ID: "2", Role: model.RoleSeller, AccountID: "usr_1004"}).Return(nil)

			Expect(access.GrantRole(ctx, "usr_1004", model.RoleSeller)).To(Succeed())
		})
		It("ignores accounts without a profile", func() {
			profiles.EXPECT().FindProfileByAccount(gomock.Any(), "usr_1006").Return(model.Profile{}, internal.ErrNoRecords)

			Expect(access.GrantRole(ctx, "usr_1006", model.RoleSeller)).To(Succeed())
		})
	})
})
