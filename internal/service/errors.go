package service

import "errors"

// 交付业务错误
var (
	ErrDeliveryInvalid          = errors.New("delivery input invalid")
	ErrDeliveryNotFound         = errors.New("delivery record not found")
	ErrDeliveryMethodInvalid    = errors.New("delivery method invalid")
	ErrDeliveryNotesTooShort    = errors.New("dispute notes too short")
	ErrDeliveryStatusConflict   = errors.New("delivery status conflict")
	ErrDeliveryFetchFailed      = errors.New("delivery fetch failed")
	ErrDeliveryCreateFailed     = errors.New("delivery create failed")
	ErrDeliveryUpdateFailed     = errors.New("delivery update failed")
	ErrRescheduleReasonTooShort = errors.New("reschedule reason too short")
	ErrRescheduleDateInvalid    = errors.New("reschedule date invalid")
	ErrReschedulePending        = errors.New("reschedule request already pending")
	ErrRescheduleNotPending     = errors.New("no pending reschedule request")
)

// 授权错误
var (
	ErrActorForbidden = errors.New("actor not permitted")
)

// 订单错误
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderFetchFailed   = errors.New("order fetch failed")
	ErrOrderStatusInvalid = errors.New("order status invalid")
)

// 用户与认证错误
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserRoleInvalid    = errors.New("user role invalid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrProfileEmpty       = errors.New("profile empty")
)
