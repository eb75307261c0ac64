package constants

// 交付状态常量
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusReady     = "ready"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusConfirmed = "confirmed"
	DeliveryStatusDisputed  = "disputed"
)

// 交付方式常量
const (
	DeliveryMethodInPerson  = "in_person"
	DeliveryMethodLocker    = "locker"
	DeliveryMethodFrontDesk = "front_desk"
	DeliveryMethodShipped   = "shipped"
)

// 改期请求状态常量。
// 审批或拒绝后字段直接清空回 NULL，不落审批结果。
const (
	RescheduleStatusPending = "pending"
)

// 操作者角色常量
const (
	ActorRoleTrainer      = "trainer"
	ActorRoleClient       = "client"
	ActorRoleOrderCreator = "order_creator"
)

// 订单状态常量
const (
	OrderStatusPaid     = "paid"
	OrderStatusCanceled = "canceled"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 用户角色常量
const (
	UserRoleTrainer = "trainer"
	UserRoleClient  = "client"
)

// 队列常量
const (
	QueueDefault       = "default"
	TaskDeliveryNotify = "delivery:notify"
	TaskDeliveryFanOut = "delivery:create_for_order"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "fm"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}
