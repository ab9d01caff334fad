package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
)

const (
	loginPath      = "/login"
	selectRolePath = "/auth/select-role"
)

type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=user seller affiliate"`
}

type LinkInput struct {
	VendorID  string `json:"vendorId"`
	AccountID string `json:"accountId"`
}

// AccessService decides which role area a session may enter. Role and
// account state come from the identity's profile and the records it links to.
type AccessService struct {
	profiles IProfiles
	stores   *Stores
	logger   *zap.SugaredLogger
	now      func() time.Time
	admins   map[string]bool
}

func NewAccessService(profiles IProfiles, stores *Stores, logger *zap.SugaredLogger) *AccessService {
	return &AccessService{profiles: profiles, stores: stores, logger: logger, now: time.Now}
}

// SetAdmins lists the logins that are provisioned with the admin role when
// they sign in.
func (s *AccessService) SetAdmins(logins []string) {
	s.admins = make(map[string]bool, len(logins))
	for _, l := range logins {
		if l = strings.TrimSpace(l); l != "" {
			s.admins[l] = true
		}
	}
}

func (s *AccessService) profile(ctx context.Context, identity string) (model.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, identity)
	if errors.Is(err, ErrNoRecords) || errors.Is(err, ErrProfileUnavailable) {
		return model.Profile{}, err
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	return p, nil
}

// Authorize returns the caller's profile when it may enter the area of role.
// On ErrRoleMismatch the returned profile tells where the caller belongs.
func (s *AccessService) Authorize(ctx context.Context, session *model.Session, role model.Role) (model.Profile, error) {
	if session == nil || session.Identity == "" {
		return model.Profile{}, ErrNotAuthenticated
	}

	p, err := s.profile(ctx, session.Identity)
	if errors.Is(err, ErrNoRecords) {
		return model.Profile{}, ErrNoRole
	}
	if err != nil {
		return model.Profile{}, err
	}
	if _, ok := model.ParseRole(string(p.Role)); !ok {
		return p, ErrNoRole
	}

	if err = s.checkAccount(ctx, p); err != nil {
		return p, err
	}

	if p.Role != role {
		return p, ErrRoleMismatch
	}

	if role == model.RoleSeller {
		if err = s.checkVendor(ctx, p); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s *AccessService) checkAccount(ctx context.Context, p model.Profile) error {
	if p.AccountID == "" {
		return nil
	}

	u, err := s.stores.AdminUsers.Find(ctx, p.AccountID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.Status == model.AccountSuspended {
		s.logger.Infof("identity %s denied: account %s suspended", p.ID, u.ID)
		return ErrAccountSuspended
	}
	return nil
}

func (s *AccessService) checkVendor(ctx context.Context, p model.Profile) error {
	if p.VendorID == "" {
		return nil
	}

	v, err := s.stores.AdminVendors.Find(ctx, p.VendorID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if v.StoreStatus.Blocked() {
		s.logger.Infof("identity %s denied: vendor %s is %s", p.ID, v.ID, v.StoreStatus)
		return ErrAccountSuspended
	}
	return nil
}

// EnsureProfile creates the identity's profile with the default role when it
// does not exist yet and reports whether it did so.
func (s *AccessService) EnsureProfile(ctx context.Context, identity, fullName string) (model.Profile, bool, error) {
	p, err := s.profile(ctx, identity)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrNoRecords) {
		return model.Profile{}, false, err
	}

	p = model.Profile{ID: identity, Role: model.RoleUser, FullName: fullName, CreatedAt: s.now()}
	created, err := s.profiles.CreateProfile(ctx, p)
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	if !created {
		p, err = s.profile(ctx, identity)
		return p, false, err
	}

	s.logger.Infof("profile created for %s", identity)
	return p, true, nil
}

// Provision makes sure the identity has a profile and grants the admin role
// to logins listed with SetAdmins.
func (s *AccessService) Provision(ctx context.Context, identity, login, fullName string) (model.Profile, error) {
	p, _, err := s.EnsureProfile(ctx, identity, fullName)
	if err != nil {
		return model.Profile{}, err
	}
	if !s.admins[login] || p.Role == model.RoleAdmin {
		return p, nil
	}

	p.Role = model.RoleAdmin
	if err = s.profiles.UpdateProfile(ctx, p); err != nil {
		return model.Profile{}, err
	}

	s.logger.Infof("identity %s provisioned as admin", identity)
	return p, nil
}

// SelectRole switches the caller to one of the self-service roles. Admin is
// never granted here.
func (s *AccessService) SelectRole(ctx context.Context, identity string, role model.Role) (model.Profile, error) {
	if !role.SelfService() {
		return model.Profile{}, ErrInvalidRole
	}

	p, _, err := s.EnsureProfile(ctx, identity, "")
	if err != nil {
		return model.Profile{}, err
	}

	p.Role = role
	if err = s.profiles.UpdateProfile(ctx, p); err != nil {
		return model.Profile{}, err
	}

	s.logger.Infof("identity %s selected role %s", identity, role)
	return p, nil
}

// GrantRole sets the role of the profile linked to an admin-managed account.
// Accounts no profile links to have nothing to update.
func (s *AccessService) GrantRole(ctx context.Context, accountID string, role model.Role) error {
	if _, ok := model.ParseRole(string(role)); !ok {
		return ErrInvalidRole
	}

	p, err := s.profiles.FindProfileByAccount(ctx, accountID)
	if errors.Is(err, ErrNoRecords) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Role == role {
		return nil
	}

	p.Role = role
	if err = s.profiles.UpdateProfile(ctx, p); err != nil {
		return err
	}

	s.logger.Infof("identity %s granted role %s through account %s", p.ID, role, accountID)
	return nil
}

// Link ties an identity to its vendor store and admin-managed account. A link
// is set once and a record links to one identity only. Empty fields keep the
// current link.
func (s *AccessService) Link(ctx context.Context, identity string, in LinkInput) (model.Profile, error) {
	p, err := s.profile(ctx, identity)
	if err != nil {
		return model.Profile{}, err
	}

	if in.VendorID != "" && in.VendorID != p.VendorID {
		if p.VendorID != "" {
			return model.Profile{}, ErrAlreadyLinked
		}
		if _, err = s.stores.AdminVendors.Find(ctx, in.VendorID); err != nil {
			return model.Profile{}, err
		}
		if err = s.unclaimed(ctx, s.profiles.FindProfileByVendor, in.VendorID, identity); err != nil {
			return model.Profile{}, err
		}
		p.VendorID = in.VendorID
	}
	if in.AccountID != "" && in.AccountID != p.AccountID {
		if p.AccountID != "" {
			return model.Profile{}, ErrAlreadyLinked
		}
		if _, err = s.stores.AdminUsers.Find(ctx, in.AccountID); err != nil {
			return model.Profile{}, err
		}
		if err = s.unclaimed(ctx, s.profiles.FindProfileByAccount, in.AccountID, identity); err != nil {
			return model.Profile{}, err
		}
		p.AccountID = in.AccountID
	}

	if err = s.profiles.UpdateProfile(ctx, p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func (s *AccessService) unclaimed(ctx context.Context, find func(context.Context, string) (model.Profile, error), id, identity string) error {
	owner, err := find(ctx, id)
	if errors.Is(err, ErrNoRecords) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner.ID != identity {
		return ErrAlreadyLinked
	}
	return nil
}

// Redirect is where a caller refused with err should be sent.
func Redirect(err error, p model.Profile) string {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return loginPath
	case errors.Is(err, ErrRoleMismatch):
		if _, ok := model.ParseRole(string(p.Role)); ok {
			return p.Role.Area()
		}
		return selectRolePath
	case errors.Is(err, ErrNoRole), errors.Is(err, ErrAccountSuspended):
		return selectRolePath
	}
	return ""
}
