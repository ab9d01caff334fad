package internal

import (
	"errors"

	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/state"
)

var (
	ErrLoginIsAlreadyTaken = errors.New("login is already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoRole             = errors.New("no role assigned")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleMismatch       = errors.New("role mismatch")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrProfileUnavailable = errors.New("profile source unavailable")
	ErrAlreadyLinked      = errors.New("record is already linked")

	ErrNoRecords = state.ErrNotFound

	ErrCartEmpty      = errors.New("cart is empty")
	ErrInvalidPayment = errors.New("invalid payment choice")
	ErrLuhnInvalid    = errors.New("number invalid by luhn")

	ErrOrderNotDelivered = errors.New("order is not delivered")
	ErrReturnExists      = errors.New("return already requested")
	ErrNoReturn          = errors.New("order has no return request")
	ErrDraftIncomplete   = errors.New("return draft is incomplete")
	ErrReturnPending     = errors.New("order has an unresolved return")
	ErrRejectionReason   = errors.New("rejection reason is required")

	ErrInvalidTransition = model.ErrInvalidTransition
	ErrVersionConflict   = state.ErrVersionConflict

	errNoChange = errors.New("nothing to change")
)
