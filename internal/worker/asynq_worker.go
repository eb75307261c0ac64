package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fitmarket-next/internal/cache"
	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/logger"
	"github.com/fitmarket-next/internal/provider"
	"github.com/fitmarket-next/internal/queue"
	"github.com/fitmarket-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDeliveryNotify, c.handleDeliveryNotify)
	mux.HandleFunc(queue.TaskDeliveryFanOut, c.handleDeliveryFanOut)
}

// badgeTTL 徽标缓存过期时间，与请求侧读取的配置保持一致
func (c *Consumer) badgeTTL() time.Duration {
	if c == nil || c.Container == nil || c.Config == nil {
		return 0
	}
	return time.Duration(c.Config.Delivery.BadgeTTLSeconds) * time.Second
}

// handleDeliveryNotify 重算交付双方的关注徽标并写入缓存。
// 徽标只是提示数据，缓存写入失败不重试。
func (c *Consumer) handleDeliveryNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_delivery_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DeliveryNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_delivery_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.TrainerID == 0 && payload.ClientID == 0 {
		logger.Debugw("worker_delivery_notify_skip_invalid_payload")
		return nil
	}

	if payload.TrainerID != 0 {
		awaiting, err := c.DeliveryRepo.CountAwaitingTrainer(payload.TrainerID)
		if err != nil {
			logger.Warnw("worker_delivery_notify_count_trainer_failed", "trainer_id", payload.TrainerID, "error", err)
			return err
		}
		badge := &cache.DeliveryBadge{
			UserID:   payload.TrainerID,
			Role:     constants.ActorRoleTrainer,
			Awaiting: awaiting,
		}
		if err := cache.SetDeliveryBadge(ctx, badge, c.badgeTTL()); err != nil {
			logger.Warnw("worker_delivery_notify_badge_write_failed", "trainer_id", payload.TrainerID, "error", err)
		}
	}
	if payload.ClientID != 0 {
		awaiting, err := c.DeliveryRepo.CountAwaitingClient(payload.ClientID)
		if err != nil {
			logger.Warnw("worker_delivery_notify_count_client_failed", "client_id", payload.ClientID, "error", err)
			return err
		}
		badge := &cache.DeliveryBadge{
			UserID:   payload.ClientID,
			Role:     constants.ActorRoleClient,
			Awaiting: awaiting,
		}
		if err := cache.SetDeliveryBadge(ctx, badge, c.badgeTTL()); err != nil {
			logger.Warnw("worker_delivery_notify_badge_write_failed", "client_id", payload.ClientID, "error", err)
		}
	}
	return nil
}

// handleDeliveryFanOut 下单方异步路径：为订单的每个订单项创建交付记录
func (c *Consumer) handleDeliveryFanOut(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_delivery_fan_out_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DeliveryFanOutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_delivery_fan_out_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_delivery_fan_out_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.DeliveryService == nil {
		logger.Warnw("worker_delivery_fan_out_skip_delivery_service_nil", "order_id", payload.OrderID)
		return nil
	}
	_, err := c.DeliveryService.CreateForOrder(service.OrderCreatorActor(), payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_delivery_fan_out_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderStatusInvalid):
			logger.Debugw("worker_delivery_fan_out_skip_invalid_status", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrDeliveryInvalid):
			logger.Debugw("worker_delivery_fan_out_skip_invalid_order", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_delivery_fan_out_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}
