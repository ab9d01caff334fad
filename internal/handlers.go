package internal

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/toast"
)

var errBadBody = errors.New("malformed request body")

// Services groups what the handlers depend on.
type Services struct {
	Auth    IService
	Access  *AccessService
	Orders  *OrderService
	Returns *ReturnService
	Seller  *SellerService
	Admin   *AdminService
	Wallet  *WalletService
	Toasts  *toast.Toaster
}

type Handlers struct {
	Service  IService
	access   *AccessService
	orders   *OrderService
	returns  *ReturnService
	seller   *SellerService
	admin    *AdminService
	wallet   *WalletService
	toasts   *toast.Toaster
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandlers(s Services, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{
		Service:  s.Auth,
		access:   s.Access,
		orders:   s.Orders,
		returns:  s.Returns,
		seller:   s.Seller,
		admin:    s.Admin,
		wallet:   s.Wallet,
		toasts:   s.Toasts,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes registers the whole API on r.
func (h *Handlers) Routes(r fiber.Router) {
	r.Use(h.Session)

	auth := r.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/profile", h.Authenticated, h.Profile)
	auth.Post("/select-role", h.Authenticated, h.SelectRole)
	auth.Post("/link", h.Authenticated, h.Link)

	toasts := r.Group("/toasts", h.Authenticated)
	toasts.Get("/", h.Toasts)
	toasts.Delete("/:id", h.DismissToast)

	h.userRoutes(r.Group("/user", h.RequireRole(model.RoleUser)))
	h.sellerRoutes(r.Group("/seller", h.RequireRole(model.RoleSeller)))
	h.adminRoutes(r.Group("/admin", h.RequireRole(model.RoleAdmin)))
}

// parse decodes the body into v and validates it.
func (h *Handlers) parse(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return h.validate.Struct(v)
}

func statusOf(err error) int {
	var verr validator.ValidationErrors

	switch {
	case errors.Is(err, errBadBody):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNoRole), errors.Is(err, ErrRoleMismatch), errors.Is(err, ErrAccountSuspended):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNoRecords), errors.Is(err, ErrNoReturn):
		return fiber.StatusNotFound
	case errors.Is(err, ErrLoginIsAlreadyTaken),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrReturnPending),
		errors.Is(err, ErrReturnExists),
		errors.Is(err, ErrOrderNotDelivered),
		errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrAlreadyLinked):
		return fiber.StatusConflict
	case errors.As(err, &verr),
		errors.Is(err, ErrCartEmpty),
		errors.Is(err, ErrInvalidPayment),
		errors.Is(err, ErrLuhnInvalid),
		errors.Is(err, model.ErrInvalidReason),
		errors.Is(err, model.ErrInvalidResolution),
		errors.Is(err, model.ErrRefundNotAllowed),
		errors.Is(err, model.ErrInvalidStep),
		errors.Is(err, ErrDraftIncomplete),
		errors.Is(err, ErrRejectionReason),
		errors.Is(err, ErrInvalidRole):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrProfileUnavailable):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	return h.deny(c, err, model.Profile{})
}

// deny writes the error response. Access errors carry a redirect hint
// computed from p.
func (h *Handlers) deny(c *fiber.Ctx, err error, p model.Profile) error {
	status := statusOf(err)

	message := err.Error()
	switch status {
	case fiber.StatusInternalServerError:
		h.logger.Errorf("Error on %s %s request: %s", c.Method(), c.Path(), err.Error())
		message = "something went wrong"
	case fiber.StatusBadGateway:
		h.logger.Errorf("Error on %s %s request: %s", c.Method(), c.Path(), err.Error())
		message = "profile service is unavailable, try again later"
	}

	body := fiber.Map{"status": "error", "message": message}
	if r := Redirect(err, p); r != "" {
		body["redirect"] = r
	}
	return c.Status(status).JSON(body)
}

func (h *Handlers) notify(c *fiber.Ctx, level toast.Level, message string) {
	if owner := identity(c); owner != "" {
		h.toasts.Push(owner, level, message)
	}
}

func (h *Handlers) Register(c *fiber.Ctx) error {
	var i model.LoginInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	id, err := h.Service.Register(c.Context(), i.Login, i.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return h.startSession(c, id, i.Login, i.FullName)
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var i model.LoginInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	id, err := h.Service.Login(c.Context(), i.Login, i.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return h.startSession(c, id, i.Login, i.FullName)
}

// startSession makes sure the identity has a profile and issues its token.
func (h *Handlers) startSession(c *fiber.Ctx, id, login, fullName string) error {
	p, err := h.access.Provision(c.Context(), id, login, fullName)
	if err != nil {
		return h.fail(c, err)
	}

	t, err := h.Service.GetJWTToken(id, p.Role)
	if err != nil {
		return h.fail(c, err)
	}

	setAuthCookie(c, t)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profile": p, "redirect": p.Role.Area()})
}

func (h *Handlers) Logout(c *fiber.Ctx) error {
	clearAuthCookie(c)
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handlers) Profile(c *fiber.Ctx) error {
	p, _, err := h.access.EnsureProfile(c.Context(), identity(c), "")
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *Handlers) SelectRole(c *fiber.Ctx) error {
	var i RoleInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	p, err := h.access.SelectRole(c.Context(), identity(c), model.Role(i.Role))
	if err != nil {
		return h.fail(c, err)
	}

	t, err := h.Service.GetJWTToken(p.ID, p.Role)
	if err != nil {
		return h.fail(c, err)
	}

	setAuthCookie(c, t)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profile": p, "redirect": p.Role.Area()})
}

func (h *Handlers) Link(c *fiber.Ctx) error {
	var i LinkInput
	if err := h.parse(c, &i); err != nil {
		return h.fail(c, err)
	}

	p, err := h.access.Link(c.Context(), identity(c), i)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *Handlers) Toasts(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.toasts.Active(identity(c)))
}

func (h *Handlers) DismissToast(c *fiber.Ctx) error {
	if !h.toasts.Dismiss(identity(c), c.Params("id")) {
		return h.fail(c, ErrNoRecords)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
