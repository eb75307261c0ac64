package queue

import (
	"encoding/json"

	"github.com/fitmarket-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDeliveryNotify 交付变更徽标刷新任务
	TaskDeliveryNotify = constants.TaskDeliveryNotify
	// TaskDeliveryFanOut 订单交付记录展开任务
	TaskDeliveryFanOut = constants.TaskDeliveryFanOut
)

// DeliveryNotifyPayload 交付变更通知任务载荷
type DeliveryNotifyPayload struct {
	TrainerID uint `json:"trainer_id"`
	ClientID  uint `json:"client_id"`
}

// DeliveryFanOutPayload 订单交付记录展开任务载荷
type DeliveryFanOutPayload struct {
	OrderID uint `json:"order_id"`
}

// NewDeliveryNotifyTask 创建交付变更通知任务
func NewDeliveryNotifyTask(payload DeliveryNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryNotify, body), nil
}

// NewDeliveryFanOutTask 创建订单交付记录展开任务
func NewDeliveryFanOutTask(payload DeliveryFanOutPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryFanOut, body), nil
}
