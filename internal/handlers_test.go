package internal_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/Glonni/internal"
	"github.com/DrGermanius/Glonni/internal/toast"
)

var _ = Describe("Handlers", func() {
	var (
		app    *fiber.App
		cookie *http.Cookie
	)
	BeforeEach(func() {
		stores := newStores()
		accounts := internal.NewMemoryAccounts()
		orders := internal.NewOrderService(stores, nopLogger())
		access := internal.NewAccessService(accounts, stores, nopLogger())
		access.SetAdmins([]string{"root"})

		h := internal.NewHandlers(internal.Services{
			Auth:    internal.NewService(accounts, "secret", nopLogger()),
			Access:  access,
			Orders:  orders,
			Returns: internal.NewReturnService(stores, orders, nopLogger()),
			Seller:  internal.NewSellerService(stores, nopLogger()),
			Admin:   internal.NewAdminService(stores, nopLogger()),
			Wallet:  internal.NewWalletService(stores, nopLogger()),
			Toasts:  toast.New(time.Minute),
		}, nopLogger())

		app = fiber.New()
		h.Routes(app.Group("/api"))
		cookie = nil
	})
	send := func(method, path, body string) (int, map[string]interface{}) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}

		resp, err := app.Test(req, -1)
		Expect(err).ShouldNot(HaveOccurred())
		defer resp.Body.Close()

		for _, c := range resp.Cookies() {
			if c.Name == "token" {
				cookie = c
			}
		}

		raw, err := io.ReadAll(resp.Body)
		Expect(err).ShouldNot(HaveOccurred())

		var res map[string]interface{}
		if len(raw) > 0 && raw[0] == '{' {
			Expect(json.Unmarshal(raw, &res)).To(Succeed())
		}
		return resp.StatusCode, res
	}
	register := func() {
		status, res := send(http.MethodPost, "/api/auth/register", `{"login":"neha","password":"secret1","fullName":"Neha Rao"}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["redirect"]).To(Equal("/user"))
		Expect(cookie).NotTo(BeNil())
	}
	It("sends anonymous callers to login", func() {
		status, res := send(http.MethodGet, "/api/user/cart", "")
		Expect(status).To(Equal(fiber.StatusUnauthorized))
		Expect(res["redirect"]).To(Equal("/login"))
	})
	It("checks out a cart", func() {
		register()

		status, _ := send(http.MethodPost, "/api/user/cart", `{"id":"prd_1001","title":"Aether Linen Shirt","price":2499,"cashback":120,"quantity":2}`)
		Expect(status).To(Equal(fiber.StatusOK))

		status, res := send(http.MethodPost, "/api/user/checkout", `{"address":"12 MG Road, Bengaluru","payment":"UPI"}`)
		Expect(status).To(Equal(fiber.StatusCreated))
		Expect(res["id"]).To(Equal("GLN-00001"))
		Expect(res["status"]).To(Equal("In Transit"))

		status, res = send(http.MethodGet, "/api/user/orders/last", "")
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["orderId"]).To(Equal("GLN-00001"))

		req := httptest.NewRequest(http.MethodGet, "/api/toasts", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req, -1)
		Expect(err).ShouldNot(HaveOccurred())

		var toasts []toast.Toast
		Expect(json.NewDecoder(resp.Body).Decode(&toasts)).To(Succeed())
		Expect(toasts).To(HaveLen(2))
		Expect(toasts[1].Message).To(Equal("Order placed successfully"))
	})
	It("validates the request body", func() {
		register()

		status, _ := send(http.MethodPost, "/api/user/checkout", `{"payment":"UPI"}`)
		Expect(status).To(Equal(fiber.StatusUnprocessableEntity))

		status, _ = send(http.MethodPost, "/api/user/checkout", `{"address":`)
		Expect(status).To(Equal(fiber.StatusBadRequest))

		status, res := send(http.MethodPost, "/api/user/checkout", `{"address":"12 MG Road","payment":"UPI"}`)
		Expect(status).To(Equal(fiber.StatusUnprocessableEntity))
		Expect(res["message"]).To(Equal(internal.ErrCartEmpty.Error()))
	})
	It("keeps callers in their own area", func() {
		register()

		status, res := send(http.MethodGet, "/api/seller/orders", "")
		Expect(status).To(Equal(fiber.StatusForbidden))
		Expect(res["redirect"]).To(Equal("/user"))

		status, res = send(http.MethodPost, "/api/auth/select-role", `{"role":"seller"}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["redirect"]).To(Equal("/seller"))

		status, _ = send(http.MethodGet, "/api/seller/orders", "")
		Expect(status).To(Equal(fiber.StatusOK))
	})
	It("refuses a taken login", func() {
		register()

		status, _ := send(http.MethodPost, "/api/auth/register", `{"login":"neha","password":"secret2"}`)
		Expect(status).To(Equal(fiber.StatusConflict))

		status, _ = send(http.MethodPost, "/api/auth/login", `{"login":"neha","password":"wrong-one"}`)
		Expect(status).To(Equal(fiber.StatusUnauthorized))

		status, _ = send(http.MethodPost, "/api/auth/login", `{"login":"neha","password":"secret1"}`)
		Expect(status).To(Equal(fiber.StatusOK))
	})
	It("maps domain errors to statuses", func() {
		register()
		_, _ = send(http.MethodPost, "/api/auth/select-role", `{"role":"seller"}`)

		status, _ := send(http.MethodPatch, "/api/seller/orders/ORD-30241", `{"status":"Packed"}`)
		Expect(status).To(Equal(fiber.StatusConflict))

		status, _ = send(http.MethodGet, "/api/seller/orders/ORD-1", "")
		Expect(status).To(Equal(fiber.StatusNotFound))

		status, res := send(http.MethodPatch, "/api/seller/orders/ORD-30240", `{"status":"Shipped"}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["status"]).To(Equal("Shipped"))
	})
	It("never grants admin on request", func() {
		register()

		status, _ := send(http.MethodPost, "/api/auth/select-role", `{"role":"admin"}`)
		Expect(status).To(Equal(fiber.StatusUnprocessableEntity))

		status, res := send(http.MethodGet, "/api/admin/vendors", "")
		Expect(status).To(Equal(fiber.StatusForbidden))
		Expect(res["redirect"]).To(Equal("/user"))

		status, _ = send(http.MethodPatch, "/api/admin/vendors/vnd_2001", `{"storeStatus":"Suspended"}`)
		Expect(status).To(Equal(fiber.StatusForbidden))
	})
	It("lets a provisioned admin grant roles to linked accounts", func() {
		register()
		status, res := send(http.MethodPost, "/api/auth/link", `{"accountId":"usr_1004"}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["account_id"]).To(Equal("usr_1004"))
		neha := cookie

		status, _ = send(http.MethodPost, "/api/auth/link", `{"accountId":"usr_1006"}`)
		Expect(status).To(Equal(fiber.StatusConflict))

		cookie = nil
		status, res = send(http.MethodPost, "/api/auth/register", `{"login":"root","password":"rootpass1"}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["redirect"]).To(Equal("/admin"))

		status, _ = send(http.MethodPost, "/api/auth/link", `{"accountId":"usr_1004"}`)
		Expect(status).To(Equal(fiber.StatusConflict))

		status, res = send(http.MethodPatch, "/api/admin/users/usr_1004", `{"role":"seller"}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(res["role"]).To(Equal("seller"))

		cookie = neha
		status, _ = send(http.MethodGet, "/api/seller/orders", "")
		Expect(status).To(Equal(fiber.StatusOK))
	})
})
