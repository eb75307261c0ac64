package repository

import "time"

// DeliveryListFilter 查询交付记录列表的过滤条件
type DeliveryListFilter struct {
	Page               int
	PageSize           int
	TrainerID          uint
	ClientID           uint
	OrderID            uint
	Status             string
	OpenRescheduleOnly bool
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	TrainerID   uint
	ClientID    uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	Status   string
}
