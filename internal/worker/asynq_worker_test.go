package worker

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fitmarket-next/internal/config"
	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"
	"github.com/fitmarket-next/internal/provider"
	"github.com/fitmarket-next/internal/queue"
	"github.com/fitmarket-next/internal/repository"
	"github.com/fitmarket-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}, &models.DeliveryRecord{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	deliveryRepo := repository.NewDeliveryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	container := &provider.Container{
		OrderRepo:    orderRepo,
		DeliveryRepo: deliveryRepo,
		DeliveryService: service.NewDeliveryService(deliveryRepo, orderRepo, nil,
			service.DeliveryServiceOptions{}),
	}
	return NewConsumer(container), db
}

func seedPaidOrder(t *testing.T, db *gorm.DB, itemCount int) *models.Order {
	t.Helper()
	paidAt := time.Now()
	order := &models.Order{
		OrderNo:   fmt.Sprintf("FM-%s", strings.ReplaceAll(t.Name(), "/", "-")),
		TrainerID: 11,
		ClientID:  22,
		Status:    constants.OrderStatusPaid,
		Currency:  "CNY",
		PaidAt:    &paidAt,
	}
	for i := 0; i < itemCount; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ProductName: fmt.Sprintf("item-%d", i+1),
			Quantity:    1,
		})
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func TestHandleDeliveryFanOutCreatesRecords(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	order := seedPaidOrder(t, db, 2)

	task, err := queue.NewDeliveryFanOutTask(queue.DeliveryFanOutPayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleDeliveryFanOut(context.Background(), task); err != nil {
		t.Fatalf("handle fan out failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.DeliveryRecord{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count records failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("records want 2 got %d", count)
	}
}

func TestHandleDeliveryFanOutMissingOrderSkips(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task, err := queue.NewDeliveryFanOutTask(queue.DeliveryFanOutPayload{OrderID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleDeliveryFanOut(context.Background(), task); err != nil {
		t.Fatalf("missing order should not fail the task: %v", err)
	}
}

func TestHandleDeliveryFanOutBadPayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task := asynq.NewTask(queue.TaskDeliveryFanOut, []byte("{not-json"))
	if err := consumer.handleDeliveryFanOut(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestBadgeTTLFollowsConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Delivery.BadgeTTLSeconds = 600
	consumer := NewConsumer(&provider.Container{Config: cfg})

	if got := consumer.badgeTTL(); got != 600*time.Second {
		t.Fatalf("badge ttl want 600s got %v", got)
	}

	// 未注入配置时回退到缓存层默认值
	bare := NewConsumer(&provider.Container{})
	if got := bare.badgeTTL(); got != 0 {
		t.Fatalf("badge ttl without config want 0 got %v", got)
	}
}

func TestHandleDeliveryNotifyInvalidPayloadSkips(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task, err := queue.NewDeliveryNotifyTask(queue.DeliveryNotifyPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleDeliveryNotify(context.Background(), task); err != nil {
		t.Fatalf("empty payload should be skipped: %v", err)
	}
}
