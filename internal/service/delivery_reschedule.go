package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"
)

// 改期协商独立于交付状态推进：请求/批准/拒绝只改写 reschedule 子字段，
// 终态（confirmed/disputed）之前的任意状态都可以发起。

// 可发起改期的状态集合
var rescheduleOpenStatuses = []string{
	constants.DeliveryStatusPending,
	constants.DeliveryStatusReady,
	constants.DeliveryStatusDelivered,
}

func rescheduleAllowedFrom(status string) bool {
	for _, s := range rescheduleOpenStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RequestRescheduleInput 改期请求输入
type RequestRescheduleInput struct {
	DeliveryID   uint
	ProposedDate time.Time
	Reason       string
}

// RequestReschedule 客户发起改期请求。同一时间最多一个未决请求，
// 上一个请求被解决（reschedule_status 回到 NULL）后才能再次发起。
func (s *DeliveryService) RequestReschedule(actor Actor, input RequestRescheduleInput) (*models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorClient); err != nil {
		return nil, err
	}
	if input.DeliveryID == 0 {
		return nil, ErrDeliveryInvalid
	}
	reason := strings.TrimSpace(input.Reason)
	if utf8.RuneCountInString(reason) < s.rescheduleMinChars {
		return nil, ErrRescheduleReasonTooShort
	}
	proposed := startOfDay(input.ProposedDate)
	if proposed.Before(startOfDay(time.Now())) {
		return nil, ErrRescheduleDateInvalid
	}

	record, err := s.getForActor(actor, input.DeliveryID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	if record == nil {
		return nil, ErrDeliveryNotFound
	}
	if record.RescheduleStatus != nil {
		return nil, ErrReschedulePending
	}
	if !rescheduleAllowedFrom(record.Status) {
		return nil, ErrDeliveryStatusConflict
	}

	now := time.Now()
	affected, err := s.deliveryRepo.CASOpenReschedule(record.ID, rescheduleOpenStatuses,
		map[string]interface{}{
			"reschedule_status":        constants.RescheduleStatusPending,
			"reschedule_requested_at":  now,
			"reschedule_proposed_date": proposed,
			"reschedule_reason":        reason,
			"updated_at":               now,
		})
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrReschedulePending
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

// ApproveReschedule 教练批准改期：提议日期写入 scheduled_date，
// 改期子字段整体清空。不改变交付状态。
func (s *DeliveryService) ApproveReschedule(actor Actor, deliveryID uint) (*models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorTrainer); err != nil {
		return nil, err
	}
	if deliveryID == 0 {
		return nil, ErrDeliveryInvalid
	}

	record, err := s.getForActor(actor, deliveryID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	if record == nil {
		return nil, ErrDeliveryNotFound
	}
	if record.RescheduleStatus == nil || *record.RescheduleStatus != constants.RescheduleStatusPending {
		return nil, ErrRescheduleNotPending
	}
	if record.RescheduleProposedDate == nil {
		return nil, ErrRescheduleNotPending
	}

	now := time.Now()
	affected, err := s.deliveryRepo.CASResolveReschedule(record.ID,
		map[string]interface{}{
			"scheduled_date":           *record.RescheduleProposedDate,
			"reschedule_status":        nil,
			"reschedule_requested_at":  nil,
			"reschedule_proposed_date": nil,
			"reschedule_reason":        "",
			"updated_at":               now,
		})
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrRescheduleNotPending
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

// RejectReschedule 教练拒绝改期：子字段清空，可附拒绝说明（追加到教练备注）。
func (s *DeliveryService) RejectReschedule(actor Actor, deliveryID uint, note string) (*models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorTrainer); err != nil {
		return nil, err
	}
	if deliveryID == 0 {
		return nil, ErrDeliveryInvalid
	}

	record, err := s.getForActor(actor, deliveryID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	if record == nil {
		return nil, ErrDeliveryNotFound
	}
	if record.RescheduleStatus == nil || *record.RescheduleStatus != constants.RescheduleStatusPending {
		return nil, ErrRescheduleNotPending
	}

	now := time.Now()
	updates := map[string]interface{}{
		"reschedule_status":        nil,
		"reschedule_requested_at":  nil,
		"reschedule_proposed_date": nil,
		"reschedule_reason":        "",
		"updated_at":               now,
	}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		updates["trainer_notes"] = appendNote(record.TrainerNotes, trimmed)
	}

	affected, err := s.deliveryRepo.CASResolveReschedule(record.ID, updates)
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrRescheduleNotPending
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

func appendNote(existing, note string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
