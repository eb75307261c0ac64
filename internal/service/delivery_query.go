package service

import (
	"context"

	"github.com/fitmarket-next/internal/cache"
	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/logger"
	"github.com/fitmarket-next/internal/models"
	"github.com/fitmarket-next/internal/repository"
)

// DeliveryListInput 交付记录列表查询输入
type DeliveryListInput struct {
	Page               int
	PageSize           int
	Status             string
	OpenRescheduleOnly bool
}

// DeliveryStats 教练的交付统计
type DeliveryStats struct {
	Pending         int64 `json:"pending"`
	Ready           int64 `json:"ready"`
	Delivered       int64 `json:"delivered"`
	Confirmed       int64 `json:"confirmed"`
	Disputed        int64 `json:"disputed"`
	OpenReschedules int64 `json:"open_reschedules"`
	Total           int64 `json:"total"`
}

func (s *DeliveryService) normalizePage(input DeliveryListInput) (int, int) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

// ListByTrainer 教练名下的交付记录列表，只见自己的记录
func (s *DeliveryService) ListByTrainer(actor Actor, input DeliveryListInput) ([]models.DeliveryRecord, int64, error) {
	if err := requireActor(actor, ActorTrainer); err != nil {
		return nil, 0, err
	}
	page, pageSize := s.normalizePage(input)
	records, total, err := s.deliveryRepo.List(repository.DeliveryListFilter{
		Page:               page,
		PageSize:           pageSize,
		TrainerID:          actor.ID,
		Status:             input.Status,
		OpenRescheduleOnly: input.OpenRescheduleOnly,
	})
	if err != nil {
		return nil, 0, ErrDeliveryFetchFailed
	}
	return records, total, nil
}

// ListByClient 客户名下的交付记录列表，只见自己的记录
func (s *DeliveryService) ListByClient(actor Actor, input DeliveryListInput) ([]models.DeliveryRecord, int64, error) {
	if err := requireActor(actor, ActorClient); err != nil {
		return nil, 0, err
	}
	page, pageSize := s.normalizePage(input)
	records, total, err := s.deliveryRepo.List(repository.DeliveryListFilter{
		Page:               page,
		PageSize:           pageSize,
		ClientID:           actor.ID,
		Status:             input.Status,
		OpenRescheduleOnly: input.OpenRescheduleOnly,
	})
	if err != nil {
		return nil, 0, ErrDeliveryFetchFailed
	}
	return records, total, nil
}

// PendingByTrainer 教练待处理的交付记录（尚未交付）
func (s *DeliveryService) PendingByTrainer(actor Actor) ([]models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorTrainer); err != nil {
		return nil, err
	}
	records, _, err := s.deliveryRepo.List(repository.DeliveryListFilter{
		TrainerID: actor.ID,
		Status:    constants.DeliveryStatusPending,
	})
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	return records, nil
}

// StatsByTrainer 教练的分状态统计与未决改期数
func (s *DeliveryService) StatsByTrainer(actor Actor) (*DeliveryStats, error) {
	if err := requireActor(actor, ActorTrainer); err != nil {
		return nil, err
	}
	counts, err := s.deliveryRepo.CountByStatusForTrainer(actor.ID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	openReschedules, err := s.deliveryRepo.CountOpenReschedulesForTrainer(actor.ID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	stats := &DeliveryStats{
		Pending:         counts[constants.DeliveryStatusPending],
		Ready:           counts[constants.DeliveryStatusReady],
		Delivered:       counts[constants.DeliveryStatusDelivered],
		Confirmed:       counts[constants.DeliveryStatusConfirmed],
		Disputed:        counts[constants.DeliveryStatusDisputed],
		OpenReschedules: openReschedules,
	}
	stats.Total = stats.Pending + stats.Ready + stats.Delivered + stats.Confirmed + stats.Disputed
	return stats, nil
}

// GetForActor 按归属读取单条交付记录详情
func (s *DeliveryService) GetForActor(actor Actor, deliveryID uint) (*models.DeliveryRecord, error) {
	if !actor.Valid() {
		return nil, ErrActorForbidden
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
	return record, nil
}

// Badge 读取当前用户的关注徽标，缓存未命中时现算并回填
func (s *DeliveryService) Badge(ctx context.Context, actor Actor) (*cache.DeliveryBadge, error) {
	if !actor.Valid() || actor.Role == ActorOrderCreator {
		return nil, ErrActorForbidden
	}
	role := string(actor.Role)
	badge, hit, err := cache.GetDeliveryBadge(ctx, role, actor.ID)
	if err != nil {
		logger.Warnw("delivery_badge_cache_read_failed", "role", role, "user_id", actor.ID, "error", err)
	}
	if hit && badge != nil {
		return badge, nil
	}

	var awaiting int64
	switch actor.Role {
	case ActorTrainer:
		awaiting, err = s.deliveryRepo.CountAwaitingTrainer(actor.ID)
	case ActorClient:
		awaiting, err = s.deliveryRepo.CountAwaitingClient(actor.ID)
	}
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	badge = &cache.DeliveryBadge{UserID: actor.ID, Role: role, Awaiting: awaiting}
	if err := cache.SetDeliveryBadge(ctx, badge, s.badgeTTL); err != nil {
		logger.Warnw("delivery_badge_cache_write_failed", "role", role, "user_id", actor.ID, "error", err)
	}
	return badge, nil
}

// AcknowledgeDeliveries 将若干交付记录标记为当前用户已读。
// 纯前端提示状态，不参与核心不变量，Redis 丢失可接受。
func (s *DeliveryService) AcknowledgeDeliveries(ctx context.Context, actor Actor, deliveryIDs []uint) error {
	if !actor.Valid() || actor.Role == ActorOrderCreator {
		return ErrActorForbidden
	}
	if len(deliveryIDs) == 0 {
		return nil
	}
	return cache.AddAcknowledgedDeliveries(ctx, actor.ID, deliveryIDs, s.ackTTL)
}

// UnacknowledgedCompleted 返回已进入交付后段（delivered/confirmed/disputed）
// 且用户尚未标记已读的记录
func (s *DeliveryService) UnacknowledgedCompleted(ctx context.Context, actor Actor) ([]models.DeliveryRecord, error) {
	if !actor.Valid() || actor.Role == ActorOrderCreator {
		return nil, ErrActorForbidden
	}

	filter := repository.DeliveryListFilter{}
	switch actor.Role {
	case ActorTrainer:
		filter.TrainerID = actor.ID
	case ActorClient:
		filter.ClientID = actor.ID
	}

	acknowledged, err := cache.ListAcknowledgedDeliveries(ctx, actor.ID)
	if err != nil {
		logger.Warnw("delivery_ack_cache_read_failed", "user_id", actor.ID, "error", err)
		acknowledged = map[uint]bool{}
	}

	unacknowledged := make([]models.DeliveryRecord, 0)
	for _, status := range []string{
		constants.DeliveryStatusDelivered,
		constants.DeliveryStatusConfirmed,
		constants.DeliveryStatusDisputed,
	} {
		filter.Status = status
		records, _, err := s.deliveryRepo.List(filter)
		if err != nil {
			return nil, ErrDeliveryFetchFailed
		}
		for _, record := range records {
			if !acknowledged[record.ID] {
				unacknowledged = append(unacknowledged, record)
			}
		}
	}
	return unacknowledged, nil
}
