package service

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"
	"github.com/fitmarket-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDeliveryServiceTest(t *testing.T) (*DeliveryService, *gorm.DB) {
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

	svc := NewDeliveryService(
		repository.NewDeliveryRepository(db),
		repository.NewOrderRepository(db),
		nil,
		DeliveryServiceOptions{},
	)
	return svc, db
}

var seedOrderItemSeq uint32

func seedDelivery(t *testing.T, db *gorm.DB, mutate func(*models.DeliveryRecord)) *models.DeliveryRecord {
	t.Helper()
	record := &models.DeliveryRecord{
		OrderID:     1,
		OrderItemID: uint(atomic.AddUint32(&seedOrderItemSeq, 1)),
		TrainerID:   10,
		ClientID:    20,
		ProductName: "私教课程包",
		Quantity:    1,
		Status:      constants.DeliveryStatusPending,
	}
	if mutate != nil {
		mutate(record)
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("seed delivery failed: %v", err)
	}
	return record
}

func TestMarkReady(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	got, err := svc.MarkReady(TrainerActor(10), record.ID)
	if err != nil {
		t.Fatalf("mark ready failed: %v", err)
	}
	if got.Status != constants.DeliveryStatusReady {
		t.Fatalf("status want ready got %s", got.Status)
	}
}

func TestMarkReadyWrongRole(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	if _, err := svc.MarkReady(ClientActor(20), record.ID); !errors.Is(err, ErrActorForbidden) {
		t.Fatalf("want ErrActorForbidden got %v", err)
	}
}

func TestMarkReadyOtherTrainerLooksMissing(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	// 他人记录与不存在的记录返回同一个错误
	if _, err := svc.MarkReady(TrainerActor(99), record.ID); !errors.Is(err, ErrDeliveryNotFound) {
		t.Fatalf("want ErrDeliveryNotFound got %v", err)
	}
	if _, err := svc.MarkReady(TrainerActor(10), record.ID+1000); !errors.Is(err, ErrDeliveryNotFound) {
		t.Fatalf("want ErrDeliveryNotFound for missing id got %v", err)
	}
}

func TestMarkReadyConflict(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	if _, err := svc.MarkReady(TrainerActor(10), record.ID); !errors.Is(err, ErrDeliveryStatusConflict) {
		t.Fatalf("want ErrDeliveryStatusConflict got %v", err)
	}
}

func TestMarkDeliveredFromPendingShortcut(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	got, err := svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID: record.ID,
		Method:     constants.DeliveryMethodInPerson,
		Notes:      "现场交付",
	})
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if got.Status != constants.DeliveryStatusDelivered {
		t.Fatalf("status want delivered got %s", got.Status)
	}
	if got.DeliveredAt == nil {
		t.Fatalf("delivered_at should be set")
	}
	if got.TrainerNotes != "现场交付" {
		t.Fatalf("trainer notes want 现场交付 got %q", got.TrainerNotes)
	}
}

func TestMarkDeliveredShippedKeepsTracking(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusReady
	})

	got, err := svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID:     record.ID,
		Method:         constants.DeliveryMethodShipped,
		TrackingNumber: " SF123456 ",
	})
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if got.TrackingNumber != "SF123456" {
		t.Fatalf("tracking number want SF123456 got %q", got.TrackingNumber)
	}
}

func TestMarkDeliveredNonShippedDropsTracking(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	got, err := svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID:     record.ID,
		Method:         constants.DeliveryMethodLocker,
		TrackingNumber: "SF123456",
	})
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if got.TrackingNumber != "" {
		t.Fatalf("tracking number should be dropped for non-shipped, got %q", got.TrackingNumber)
	}
}

func TestMarkDeliveredTwiceKeepsFirstRecord(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	first, err := svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID: record.ID,
		Method:     constants.DeliveryMethodInPerson,
	})
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}

	_, err = svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID: record.ID,
		Method:     constants.DeliveryMethodLocker,
		Notes:      "二次投递",
	})
	if !errors.Is(err, ErrDeliveryStatusConflict) {
		t.Fatalf("want ErrDeliveryStatusConflict got %v", err)
	}

	// delivered_at 只写一次，落空的重放不得篡改首次交付信息
	var reloaded models.DeliveryRecord
	if err := db.First(&reloaded, record.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.DeliveryMethod != constants.DeliveryMethodInPerson {
		t.Fatalf("delivery method want in_person got %s", reloaded.DeliveryMethod)
	}
	if reloaded.DeliveredAt == nil || !reloaded.DeliveredAt.Equal(*first.DeliveredAt) {
		t.Fatalf("delivered_at changed: want %v got %v", first.DeliveredAt, reloaded.DeliveredAt)
	}
	if reloaded.TrainerNotes != "" {
		t.Fatalf("trainer notes should stay empty, got %q", reloaded.TrainerNotes)
	}
}

func TestMarkDeliveredInvalidMethod(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	_, err := svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID: record.ID,
		Method:     "pigeon",
	})
	if !errors.Is(err, ErrDeliveryMethodInvalid) {
		t.Fatalf("want ErrDeliveryMethodInvalid got %v", err)
	}
}

func TestConfirmReceipt(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	got, err := svc.ConfirmReceipt(ClientActor(20), record.ID, "收到了")
	if err != nil {
		t.Fatalf("confirm receipt failed: %v", err)
	}
	if got.Status != constants.DeliveryStatusConfirmed {
		t.Fatalf("status want confirmed got %s", got.Status)
	}
	if got.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}
}

func TestConfirmReceiptTwice(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	first, err := svc.ConfirmReceipt(ClientActor(20), record.ID, "第一次确认")
	if err != nil {
		t.Fatalf("confirm receipt failed: %v", err)
	}

	if _, err := svc.ConfirmReceipt(ClientActor(20), record.ID, "第二次确认"); !errors.Is(err, ErrDeliveryStatusConflict) {
		t.Fatalf("want ErrDeliveryStatusConflict got %v", err)
	}

	// confirmed_at 与客户备注保持首次确认的值
	var reloaded models.DeliveryRecord
	if err := db.First(&reloaded, record.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ConfirmedAt == nil || !reloaded.ConfirmedAt.Equal(*first.ConfirmedAt) {
		t.Fatalf("confirmed_at changed: want %v got %v", first.ConfirmedAt, reloaded.ConfirmedAt)
	}
	if reloaded.ClientNotes != "第一次确认" {
		t.Fatalf("client notes want 第一次确认 got %q", reloaded.ClientNotes)
	}
}

func TestConfirmReceiptWrongRole(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	if _, err := svc.ConfirmReceipt(TrainerActor(10), record.ID, ""); !errors.Is(err, ErrActorForbidden) {
		t.Fatalf("want ErrActorForbidden got %v", err)
	}
}

func TestConfirmReceiptOtherClientLooksMissing(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	if _, err := svc.ConfirmReceipt(ClientActor(99), record.ID, ""); !errors.Is(err, ErrDeliveryNotFound) {
		t.Fatalf("want ErrDeliveryNotFound got %v", err)
	}
	if _, err := svc.ConfirmReceipt(ClientActor(20), record.ID+1000, ""); !errors.Is(err, ErrDeliveryNotFound) {
		t.Fatalf("want ErrDeliveryNotFound for missing id got %v", err)
	}
}

func TestConfirmReceiptBeforeDelivered(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	if _, err := svc.ConfirmReceipt(ClientActor(20), record.ID, ""); !errors.Is(err, ErrDeliveryStatusConflict) {
		t.Fatalf("want ErrDeliveryStatusConflict got %v", err)
	}
}

func TestReportIssueWrongRole(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	if _, err := svc.ReportIssue(TrainerActor(10), record.ID, "教练不能替客户报告问题"); !errors.Is(err, ErrActorForbidden) {
		t.Fatalf("want ErrActorForbidden got %v", err)
	}
}

func TestReportIssueNotesTooShort(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	if _, err := svc.ReportIssue(ClientActor(20), record.ID, "太短了"); !errors.Is(err, ErrDeliveryNotesTooShort) {
		t.Fatalf("want ErrDeliveryNotesTooShort got %v", err)
	}
}

func TestReportIssue(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})

	reason := "货品与订单描述不符，缺少两件"
	got, err := svc.ReportIssue(ClientActor(20), record.ID, reason)
	if err != nil {
		t.Fatalf("report issue failed: %v", err)
	}
	if got.Status != constants.DeliveryStatusDisputed {
		t.Fatalf("status want disputed got %s", got.Status)
	}
	if got.DisputeReason != reason {
		t.Fatalf("dispute reason want %q got %q", reason, got.DisputeReason)
	}
}

func TestCreateForOrderIdempotent(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	paidAt := time.Now()
	order := &models.Order{
		OrderNo:   "FM-TEST-0001",
		TrainerID: 10,
		ClientID:  20,
		Status:    constants.OrderStatusPaid,
		Currency:  "CNY",
		PaidAt:    &paidAt,
		Items: []models.OrderItem{
			{ProductName: "课程包", Quantity: 1},
			{ProductName: "蛋白粉", Quantity: 2},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	created, err := svc.CreateForOrder(OrderCreatorActor(), order.ID)
	if err != nil {
		t.Fatalf("create for order failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created want 2 got %d", len(created))
	}

	again, err := svc.CreateForOrder(OrderCreatorActor(), order.ID)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second create should skip existing items, got %d", len(again))
	}
}

func TestCreateForOrderRejectsUnpaid(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	order := &models.Order{
		OrderNo:   "FM-TEST-0002",
		TrainerID: 10,
		ClientID:  20,
		Status:    constants.OrderStatusCanceled,
		Currency:  "CNY",
		Items:     []models.OrderItem{{ProductName: "课程包", Quantity: 1}},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	if _, err := svc.CreateForOrder(OrderCreatorActor(), order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := svc.CreateForOrder(OrderCreatorActor(), 9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound got %v", err)
	}
	if _, err := svc.CreateForOrder(TrainerActor(10), order.ID); !errors.Is(err, ErrActorForbidden) {
		t.Fatalf("want ErrActorForbidden for non-creator got %v", err)
	}
}

func TestStatsByTrainer(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	pending := constants.RescheduleStatusPending
	for i, status := range []string{
		constants.DeliveryStatusPending,
		constants.DeliveryStatusPending,
		constants.DeliveryStatusDelivered,
		constants.DeliveryStatusConfirmed,
	} {
		s := status
		withReschedule := i == 2
		seedDelivery(t, db, func(r *models.DeliveryRecord) {
			r.Status = s
			if withReschedule {
				r.RescheduleStatus = &pending
			}
		})
	}
	// 其他教练的记录不计入
	seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.TrainerID = 99
	})

	stats, err := svc.StatsByTrainer(TrainerActor(10))
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Pending != 2 || stats.Delivered != 1 || stats.Confirmed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.OpenReschedules != 1 {
		t.Fatalf("open reschedules want 1 got %d", stats.OpenReschedules)
	}
	if stats.Total != 4 {
		t.Fatalf("total want 4 got %d", stats.Total)
	}
}

func TestListByTrainerScoped(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	seedDelivery(t, db, nil)
	seedDelivery(t, db, nil)
	seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.TrainerID = 99
	})

	records, total, err := svc.ListByTrainer(TrainerActor(10), DeliveryListInput{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("want 2 records got total=%d len=%d", total, len(records))
	}
	for _, record := range records {
		if record.TrainerID != 10 {
			t.Fatalf("leaked record of trainer %d", record.TrainerID)
		}
	}
}
