package models

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryRecord 交付记录表（每个订单项一条）
type DeliveryRecord struct {
	ID          uint   `gorm:"primarykey" json:"id"`                                                      // 主键
	OrderID     uint   `gorm:"index;not null" json:"order_id"`                                            // 订单ID（外部创建，不可变）
	OrderItemID uint   `gorm:"uniqueIndex;not null" json:"order_item_id"`                                 // 订单项ID（不可变）
	TrainerID   uint   `gorm:"not null;index:idx_deliveries_trainer_status,priority:1" json:"trainer_id"` // 教练ID（不可变）
	ClientID    uint   `gorm:"not null;index:idx_deliveries_client_status,priority:1" json:"client_id"`   // 客户ID（不可变）
	ProductID   *uint  `gorm:"index" json:"product_id,omitempty"`                                         // 商品ID快照
	ProductName string `gorm:"type:varchar(200);not null" json:"product_name"`                            // 商品名称快照
	Quantity    int    `gorm:"not null" json:"quantity"`                                                  // 数量（恒为正）

	Status string `gorm:"not null;default:'pending';index:idx_deliveries_trainer_status,priority:2;index:idx_deliveries_client_status,priority:2" json:"status"` // 交付状态

	ScheduledDate  *time.Time `json:"scheduled_date,omitempty"`                        // 计划交付日期
	DeliveryMethod string     `gorm:"type:varchar(20)" json:"delivery_method"`         // 交付方式
	TrackingNumber string     `gorm:"type:varchar(100)" json:"tracking_number"`        // 快递单号（仅 shipped）
	DeliveredAt    *time.Time `gorm:"index" json:"delivered_at,omitempty"`             // 交付时间（只写一次）
	ConfirmedAt    *time.Time `gorm:"index" json:"confirmed_at,omitempty"`             // 确认时间（只写一次）
	TrainerNotes   string     `gorm:"type:text" json:"trainer_notes"`                  // 教练备注
	ClientNotes    string     `gorm:"type:text" json:"client_notes"`                   // 客户备注
	DisputeReason  string     `gorm:"type:text" json:"dispute_reason,omitempty"`       // 争议原因

	RescheduleStatus       *string    `gorm:"type:varchar(20);index" json:"reschedule_status,omitempty"` // 改期请求状态（NULL 表示无请求）
	RescheduleRequestedAt  *time.Time `json:"reschedule_requested_at,omitempty"`                         // 改期请求时间
	RescheduleProposedDate *time.Time `json:"reschedule_proposed_date,omitempty"`                        // 改期提议日期
	RescheduleReason       string     `gorm:"type:text" json:"reschedule_reason,omitempty"`              // 改期原因

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (DeliveryRecord) TableName() string {
	return "delivery_records"
}
