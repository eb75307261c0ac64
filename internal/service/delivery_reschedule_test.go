package service

import (
	"errors"
	"testing"
	"time"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"
)

func TestRequestReschedule(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	proposed := time.Now().AddDate(0, 0, 5)
	got, err := svc.RequestReschedule(ClientActor(20), RequestRescheduleInput{
		DeliveryID:   record.ID,
		ProposedDate: proposed,
		Reason:       "临时出差，下周再约",
	})
	if err != nil {
		t.Fatalf("request reschedule failed: %v", err)
	}
	if got.RescheduleStatus == nil || *got.RescheduleStatus != constants.RescheduleStatusPending {
		t.Fatalf("reschedule status want pending got %v", got.RescheduleStatus)
	}
	if got.RescheduleProposedDate == nil {
		t.Fatalf("proposed date should be set")
	}
	if got.Status != constants.DeliveryStatusPending {
		t.Fatalf("delivery status must not change, got %s", got.Status)
	}
}

func TestRequestRescheduleReasonTooShort(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	_, err := svc.RequestReschedule(ClientActor(20), RequestRescheduleInput{
		DeliveryID:   record.ID,
		ProposedDate: time.Now().AddDate(0, 0, 1),
		Reason:       "忙",
	})
	if !errors.Is(err, ErrRescheduleReasonTooShort) {
		t.Fatalf("want ErrRescheduleReasonTooShort got %v", err)
	}
}

func TestRequestReschedulePastDate(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	_, err := svc.RequestReschedule(ClientActor(20), RequestRescheduleInput{
		DeliveryID:   record.ID,
		ProposedDate: time.Now().AddDate(0, 0, -1),
		Reason:       "想改到昨天",
	})
	if !errors.Is(err, ErrRescheduleDateInvalid) {
		t.Fatalf("want ErrRescheduleDateInvalid got %v", err)
	}
}

func TestRequestRescheduleTodayAllowed(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	// 当天 0 点起算，今天本身是合法的提议日期
	if _, err := svc.RequestReschedule(ClientActor(20), RequestRescheduleInput{
		DeliveryID:   record.ID,
		ProposedDate: time.Now(),
		Reason:       "改到今天晚上",
	}); err != nil {
		t.Fatalf("today should be a valid proposed date: %v", err)
	}
}

func TestRequestRescheduleOnlyOneOpen(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	pending := constants.RescheduleStatusPending
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.RescheduleStatus = &pending
	})

	_, err := svc.RequestReschedule(ClientActor(20), RequestRescheduleInput{
		DeliveryID:   record.ID,
		ProposedDate: time.Now().AddDate(0, 0, 2),
		Reason:       "再改一次时间",
	})
	if !errors.Is(err, ErrReschedulePending) {
		t.Fatalf("want ErrReschedulePending got %v", err)
	}
}

func TestRequestRescheduleAfterTerminalStatus(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusConfirmed
	})

	_, err := svc.RequestReschedule(ClientActor(20), RequestRescheduleInput{
		DeliveryID:   record.ID,
		ProposedDate: time.Now().AddDate(0, 0, 2),
		Reason:       "确认后又想改期",
	})
	if !errors.Is(err, ErrDeliveryStatusConflict) {
		t.Fatalf("want ErrDeliveryStatusConflict got %v", err)
	}
}

func TestApproveReschedule(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	pending := constants.RescheduleStatusPending
	proposed := time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)
	requestedAt := time.Now()
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.Status = constants.DeliveryStatusReady
		r.RescheduleStatus = &pending
		r.RescheduleRequestedAt = &requestedAt
		r.RescheduleProposedDate = &proposed
		r.RescheduleReason = "时间冲突"
	})

	got, err := svc.ApproveReschedule(TrainerActor(10), record.ID)
	if err != nil {
		t.Fatalf("approve reschedule failed: %v", err)
	}
	if got.ScheduledDate == nil || !got.ScheduledDate.Equal(proposed) {
		t.Fatalf("scheduled date want %v got %v", proposed, got.ScheduledDate)
	}
	if got.RescheduleStatus != nil || got.RescheduleProposedDate != nil || got.RescheduleReason != "" {
		t.Fatalf("reschedule fields should be cleared: %+v", got)
	}
	if got.Status != constants.DeliveryStatusReady {
		t.Fatalf("delivery status must not change, got %s", got.Status)
	}
}

func TestApproveRescheduleWithoutPending(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	record := seedDelivery(t, db, nil)

	if _, err := svc.ApproveReschedule(TrainerActor(10), record.ID); !errors.Is(err, ErrRescheduleNotPending) {
		t.Fatalf("want ErrRescheduleNotPending got %v", err)
	}
}

func TestRejectRescheduleAppendsNote(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	pending := constants.RescheduleStatusPending
	proposed := time.Now().AddDate(0, 0, 3)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.RescheduleStatus = &pending
		r.RescheduleProposedDate = &proposed
		r.TrainerNotes = "首次备注"
	})

	got, err := svc.RejectReschedule(TrainerActor(10), record.ID, "该时段已有其他客户")
	if err != nil {
		t.Fatalf("reject reschedule failed: %v", err)
	}
	if got.RescheduleStatus != nil {
		t.Fatalf("reschedule status should be cleared, got %v", *got.RescheduleStatus)
	}
	if got.TrainerNotes != "首次备注\n该时段已有其他客户" {
		t.Fatalf("trainer notes want appended note got %q", got.TrainerNotes)
	}
	if got.ScheduledDate != nil {
		t.Fatalf("scheduled date must stay unchanged on reject")
	}
}

func TestMarkDeliveredWithOpenReschedule(t *testing.T) {
	svc, db := setupDeliveryServiceTest(t)
	pending := constants.RescheduleStatusPending
	proposed := time.Now().AddDate(0, 0, 3)
	record := seedDelivery(t, db, func(r *models.DeliveryRecord) {
		r.RescheduleStatus = &pending
		r.RescheduleProposedDate = &proposed
	})

	// 改期协商与状态推进正交，未决改期不阻塞交付
	got, err := svc.MarkDelivered(TrainerActor(10), MarkDeliveredInput{
		DeliveryID: record.ID,
		Method:     constants.DeliveryMethodFrontDesk,
	})
	if err != nil {
		t.Fatalf("mark delivered with open reschedule failed: %v", err)
	}
	if got.Status != constants.DeliveryStatusDelivered {
		t.Fatalf("status want delivered got %s", got.Status)
	}
	if got.RescheduleStatus == nil || *got.RescheduleStatus != constants.RescheduleStatusPending {
		t.Fatalf("open reschedule must survive delivery, got %v", got.RescheduleStatus)
	}
}
