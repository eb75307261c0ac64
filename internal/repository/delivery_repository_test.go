package repository

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDeliveryRepoTest(t *testing.T) (*GormDeliveryRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.DeliveryRecord{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewDeliveryRepository(db), db
}

var repoOrderItemSeq uint32

func createRecord(t *testing.T, repo *GormDeliveryRepository, mutate func(*models.DeliveryRecord)) *models.DeliveryRecord {
	t.Helper()
	record := &models.DeliveryRecord{
		OrderID:     1,
		OrderItemID: uint(atomic.AddUint32(&repoOrderItemSeq, 1)),
		TrainerID:   10,
		ClientID:    20,
		ProductName: "测试商品",
		Quantity:    1,
		Status:      constants.DeliveryStatusPending,
	}
	if mutate != nil {
		mutate(record)
	}
	if err := repo.Create(record); err != nil {
		t.Fatalf("create record failed: %v", err)
	}
	return record
}

func TestCASUpdateStatus(t *testing.T) {
	repo, _ := setupDeliveryRepoTest(t)
	record := createRecord(t, repo, nil)

	affected, err := repo.CASUpdateStatus(record.ID,
		[]string{constants.DeliveryStatusPending},
		map[string]interface{}{"status": constants.DeliveryStatusReady})
	if err != nil {
		t.Fatalf("cas update failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	// 同一前提条件的第二次写入必须落空
	affected, err = repo.CASUpdateStatus(record.ID,
		[]string{constants.DeliveryStatusPending},
		map[string]interface{}{"status": constants.DeliveryStatusReady})
	if err != nil {
		t.Fatalf("second cas update failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("stale precondition should affect 0 rows, got %d", affected)
	}
}

func TestCASOpenRescheduleRequiresNoOpenRequest(t *testing.T) {
	repo, _ := setupDeliveryRepoTest(t)
	record := createRecord(t, repo, nil)
	open := []string{constants.DeliveryStatusPending, constants.DeliveryStatusReady, constants.DeliveryStatusDelivered}
	updates := map[string]interface{}{
		"reschedule_status":        constants.RescheduleStatusPending,
		"reschedule_requested_at":  time.Now(),
		"reschedule_proposed_date": time.Now().AddDate(0, 0, 2),
		"reschedule_reason":        "时间冲突",
	}

	affected, err := repo.CASOpenReschedule(record.ID, open, updates)
	if err != nil {
		t.Fatalf("open reschedule failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	affected, err = repo.CASOpenReschedule(record.ID, open, updates)
	if err != nil {
		t.Fatalf("second open reschedule failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("open request already exists, want 0 affected got %d", affected)
	}
}

func TestCASResolveRescheduleOnlyPending(t *testing.T) {
	repo, _ := setupDeliveryRepoTest(t)
	record := createRecord(t, repo, nil)

	affected, err := repo.CASResolveReschedule(record.ID, map[string]interface{}{
		"reschedule_status": nil,
	})
	if err != nil {
		t.Fatalf("resolve without pending failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("no pending request, want 0 affected got %d", affected)
	}

	pending := constants.RescheduleStatusPending
	if err := repo.db.Model(record).Update("reschedule_status", &pending).Error; err != nil {
		t.Fatalf("prepare pending failed: %v", err)
	}
	affected, err = repo.CASResolveReschedule(record.ID, map[string]interface{}{
		"reschedule_status": nil,
		"reschedule_reason": "",
	})
	if err != nil {
		t.Fatalf("resolve pending failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}
}

func TestDeliveryListFilters(t *testing.T) {
	repo, _ := setupDeliveryRepoTest(t)
	pending := constants.RescheduleStatusPending
	createRecord(t, repo, nil)
	createRecord(t, repo, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
	})
	createRecord(t, repo, func(r *models.DeliveryRecord) {
		r.RescheduleStatus = &pending
	})
	createRecord(t, repo, func(r *models.DeliveryRecord) {
		r.TrainerID = 99
		r.ClientID = 88
	})

	records, total, err := repo.List(DeliveryListFilter{TrainerID: 10})
	if err != nil {
		t.Fatalf("list by trainer failed: %v", err)
	}
	if total != 3 || len(records) != 3 {
		t.Fatalf("trainer scope want 3 got total=%d len=%d", total, len(records))
	}

	_, total, err = repo.List(DeliveryListFilter{TrainerID: 10, Status: constants.DeliveryStatusDelivered})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("status filter want 1 got %d", total)
	}

	_, total, err = repo.List(DeliveryListFilter{TrainerID: 10, OpenRescheduleOnly: true})
	if err != nil {
		t.Fatalf("list open reschedule failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("open reschedule filter want 1 got %d", total)
	}

	records, total, err = repo.List(DeliveryListFilter{TrainerID: 10, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if total != 3 || len(records) != 1 {
		t.Fatalf("page 2 want total=3 len=1 got total=%d len=%d", total, len(records))
	}
}

func TestGetByIDScopes(t *testing.T) {
	repo, _ := setupDeliveryRepoTest(t)
	record := createRecord(t, repo, nil)

	got, err := repo.GetByIDForTrainer(record.ID, 10)
	if err != nil || got == nil {
		t.Fatalf("owner lookup failed: %v %v", got, err)
	}

	got, err = repo.GetByIDForTrainer(record.ID, 99)
	if err != nil {
		t.Fatalf("foreign lookup errored: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign trainer must not see the record")
	}

	got, err = repo.GetByIDForClient(record.ID, 20)
	if err != nil || got == nil {
		t.Fatalf("client lookup failed: %v %v", got, err)
	}

	got, err = repo.GetByID(record.ID + 1000)
	if err != nil {
		t.Fatalf("missing lookup errored: %v", err)
	}
	if got != nil {
		t.Fatalf("missing record should be nil")
	}
}

func TestCountAwaiting(t *testing.T) {
	repo, _ := setupDeliveryRepoTest(t)
	pending := constants.RescheduleStatusPending
	createRecord(t, repo, nil)
	createRecord(t, repo, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusReady
	})
	createRecord(t, repo, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusDelivered
		r.RescheduleStatus = &pending
	})
	createRecord(t, repo, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusConfirmed
	})

	trainerCount, err := repo.CountAwaitingTrainer(10)
	if err != nil {
		t.Fatalf("count awaiting trainer failed: %v", err)
	}
	if trainerCount != 3 {
		t.Fatalf("trainer awaiting want 3 got %d", trainerCount)
	}

	clientCount, err := repo.CountAwaitingClient(20)
	if err != nil {
		t.Fatalf("count awaiting client failed: %v", err)
	}
	if clientCount != 1 {
		t.Fatalf("client awaiting want 1 got %d", clientCount)
	}
}
