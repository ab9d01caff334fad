package internal_test

import (
	"context"
	"errors"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/Glonni/internal"
	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/state"
)

var _ = Describe("Repository", func() {
	var (
		ctx  context.Context
		repo internal.Repository
		mock sqlmock.Sqlmock
	)
	BeforeEach(func() {
		ctx = context.Background()

		db, m, err := sqlmock.New()
		Expect(err).ShouldNot(HaveOccurred())

		mock = m
		repo = internal.Repository{
			Conn:   db,
			Logger: nopLogger(),
		}
	})
	AfterEach(func() {
		err := mock.ExpectationsWereMet()
		Expect(err).ShouldNot(HaveOccurred())
	})
	Context("Users", func() {
		It("Register without error", func() {
			mock.ExpectQuery("INSERT INTO users").
				WithArgs("login", "hash").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

			id, err := repo.Register(ctx, "login", "hash")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(id).To(Equal(5))
		})
		It("IsUserExist without error", func() {
			mock.ExpectQuery("SELECT EXISTS").
				WithArgs("login").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			exist, err := repo.IsUserExist(ctx, "login")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(exist).To(BeTrue())
		})
		It("GetCredentials without error", func() {
			mock.ExpectQuery("SELECT id, password FROM users WHERE login = \\$1").
				WithArgs("login").
				WillReturnRows(sqlmock.NewRows([]string{"id", "password"}).AddRow(5, "hash"))

			id, hash, err := repo.GetCredentials(ctx, "login")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(id).To(Equal(5))
			Expect(hash).To(Equal("hash"))
		})
		It("GetCredentials with unknown login", func() {
			mock.ExpectQuery("SELECT id, password FROM users WHERE login = \\$1").
				WithArgs("login").
				WillReturnRows(sqlmock.NewRows([]string{"id", "password"}))

			_, _, err := repo.GetCredentials(ctx, "login")
			Expect(err).Should(Equal(internal.ErrInvalidCredentials))
		})
	})
	Context("Profiles", func() {
		It("GetProfile without error", func() {
			t := time.Now()
			mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id = \\$1").
				WithArgs("42").
				WillReturnRows(sqlmock.NewRows([]string{"id", "role", "full_name", "vendor_id", "account_id", "created_at"}).
					AddRow("42", "seller", "Kabir Nair", "vnd_2001", nil, t))

			p, err := repo.GetProfile(ctx, "42")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.Role).To(Equal(model.RoleSeller))
			Expect(p.VendorID).To(Equal("vnd_2001"))
			Expect(p.AccountID).To(BeEmpty())
		})
		It("GetProfile with no records", func() {
			mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id = \\$1").
				WithArgs("42").
				WillReturnRows(sqlmock.NewRows([]string{"id", "role", "full_name", "vendor_id", "account_id", "created_at"}))

			_, err := repo.GetProfile(ctx, "42")
			Expect(err).Should(Equal(internal.ErrNoRecords))
		})
		It("FindProfileByAccount without error", func() {
			mock.ExpectQuery("SELECT (.+) FROM profiles WHERE account_id = \\$1").
				WithArgs("usr_1004").
				WillReturnRows(sqlmock.NewRows([]string{"id", "role", "full_name", "vendor_id", "account_id", "created_at"}).
					AddRow("42", "user", nil, nil, "usr_1004", time.Now()))

			p, err := repo.FindProfileByAccount(ctx, "usr_1004")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(p.ID).To(Equal("42"))
			Expect(p.AccountID).To(Equal("usr_1004"))
		})
		It("FindProfileByVendor with no records", func() {
			mock.ExpectQuery("SELECT (.+) FROM profiles WHERE vendor_id = \\$1").
				WithArgs("vnd_2001").
				WillReturnRows(sqlmock.NewRows([]string{"id", "role", "full_name", "vendor_id", "account_id", "created_at"}))

			_, err := repo.FindProfileByVendor(ctx, "vnd_2001")
			Expect(err).Should(Equal(internal.ErrNoRecords))
		})
		It("CreateProfile reports an existing profile", func() {
			mock.ExpectExec("INSERT INTO profiles").
				WithArgs("42", "user", nil, sqlmock.AnyArg()).
				WillReturnError(&pgconn.PgError{Code: "23505"})

			created, err := repo.CreateProfile(ctx, model.Profile{ID: "42", Role: model.RoleUser, CreatedAt: time.Now()})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(created).To(BeFalse())
		})
		It("CreateProfile with error", func() {
			mock.ExpectExec("INSERT INTO profiles").
				WillReturnError(errors.New("some error"))

			_, err := repo.CreateProfile(ctx, model.Profile{ID: "42", Role: model.RoleUser})
			Expect(err).Should(HaveOccurred())
		})
		It("UpdateProfile with no records", func() {
			mock.ExpectExec("UPDATE profiles SET").
				WithArgs("admin", nil, nil, nil, "42").
				WillReturnResult(sqlmock.NewResult(0, 0))

			err := repo.UpdateProfile(ctx, model.Profile{ID: "42", Role: model.RoleAdmin})
			Expect(err).Should(Equal(internal.ErrNoRecords))
		})
	})
	Context("State", func() {
		It("Load of an unwritten key", func() {
			mock.ExpectQuery("SELECT payload, version FROM state WHERE key = \\$1").
				WithArgs("orders").
				WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}))

			e, err := repo.Load(ctx, "orders")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(e.Version).To(BeZero())
			Expect(e.Payload).To(BeEmpty())
		})
		It("Load without error", func() {
			mock.ExpectQuery("SELECT payload, version FROM state WHERE key = \\$1").
				WithArgs("orders").
				WillReturnRows(sqlmock.NewRows([]string{"payload", "version"}).AddRow([]byte("[]"), 3))

			e, err := repo.Load(ctx, "orders")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(e.Version).To(Equal(int64(3)))
			Expect(string(e.Payload)).To(Equal("[]"))
		})
		It("Save notifies other processes", func() {
			mock.ExpectBegin()
			mock.ExpectQuery("INSERT INTO state").
				WithArgs("orders", "[]", sqlmock.AnyArg(), int64(3)).
				WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(4))
			mock.ExpectExec("SELECT pg_notify").
				WithArgs("glonni_state", "orders:4").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			v, err := repo.Save(ctx, "orders", []byte("[]"), 3)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(v).To(Equal(int64(4)))
		})
		It("Save with a stale version", func() {
			mock.ExpectBegin()
			mock.ExpectQuery("INSERT INTO state").
				WithArgs("orders", "[]", sqlmock.AnyArg(), int64(1)).
				WillReturnRows(sqlmock.NewRows([]string{"version"}))
			mock.ExpectRollback()

			_, err := repo.Save(ctx, "orders", []byte("[]"), 1)
			Expect(err).Should(Equal(state.ErrVersionConflict))
		})
	})
})
