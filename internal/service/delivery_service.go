package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/logger"
	"github.com/fitmarket-next/internal/models"
	"github.com/fitmarket-next/internal/queue"
	"github.com/fitmarket-next/internal/repository"

	"gorm.io/gorm"
)

// 交付状态机：pending -> ready -> delivered -> {confirmed, disputed}，
// pending 可直接跳到 delivered（现场交付不经备货）。
var allowedDeliveryTransitions = map[string]map[string]bool{
	constants.DeliveryStatusPending: {
		constants.DeliveryStatusReady:     true,
		constants.DeliveryStatusDelivered: true,
	},
	constants.DeliveryStatusReady: {
		constants.DeliveryStatusDelivered: true,
	},
	constants.DeliveryStatusDelivered: {
		constants.DeliveryStatusConfirmed: true,
		constants.DeliveryStatusDisputed:  true,
	},
}

func canTransitDelivery(current, target string) bool {
	nexts, ok := allowedDeliveryTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

var deliveryMethods = map[string]bool{
	constants.DeliveryMethodInPerson:  true,
	constants.DeliveryMethodLocker:    true,
	constants.DeliveryMethodFrontDesk: true,
	constants.DeliveryMethodShipped:   true,
}

const (
	defaultDisputeMinChars    = 10
	defaultRescheduleMinChars = 5
	defaultListPageSize       = 20
	defaultListMaxPageSize    = 100
	defaultAckTTLSeconds      = 7 * 24 * 3600
	defaultBadgeTTLSeconds    = 24 * 3600
)

// DeliveryService 交付服务
type DeliveryService struct {
	deliveryRepo       repository.DeliveryRepository
	orderRepo          repository.OrderRepository
	queueClient        *queue.Client
	disputeMinChars    int
	rescheduleMinChars int
	defaultPageSize    int
	maxPageSize        int
	ackTTL             time.Duration
	badgeTTL           time.Duration
}

// DeliveryServiceOptions 交付服务可调参数
type DeliveryServiceOptions struct {
	DisputeMinChars    int
	RescheduleMinChars int
	DefaultPageSize    int
	MaxPageSize        int
	AckTTLSeconds      int
	BadgeTTLSeconds    int
}

// NewDeliveryService 创建交付服务
func NewDeliveryService(deliveryRepo repository.DeliveryRepository, orderRepo repository.OrderRepository, queueClient *queue.Client, options DeliveryServiceOptions) *DeliveryService {
	disputeMin := options.DisputeMinChars
	if disputeMin <= 0 {
		disputeMin = defaultDisputeMinChars
	}
	rescheduleMin := options.RescheduleMinChars
	if rescheduleMin <= 0 {
		rescheduleMin = defaultRescheduleMinChars
	}
	pageSize := options.DefaultPageSize
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}
	maxPageSize := options.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = defaultListMaxPageSize
	}
	ackTTLSeconds := options.AckTTLSeconds
	if ackTTLSeconds <= 0 {
		ackTTLSeconds = defaultAckTTLSeconds
	}
	badgeTTLSeconds := options.BadgeTTLSeconds
	if badgeTTLSeconds <= 0 {
		badgeTTLSeconds = defaultBadgeTTLSeconds
	}
	return &DeliveryService{
		deliveryRepo:       deliveryRepo,
		orderRepo:          orderRepo,
		queueClient:        queueClient,
		disputeMinChars:    disputeMin,
		rescheduleMinChars: rescheduleMin,
		defaultPageSize:    pageSize,
		maxPageSize:        maxPageSize,
		ackTTL:             time.Duration(ackTTLSeconds) * time.Second,
		badgeTTL:           time.Duration(badgeTTLSeconds) * time.Second,
	}
}

// getForActor 按角色归属读取交付记录。非本人记录与不存在的记录
// 返回同一个 nil 结果，存在性不对外泄露。
func (s *DeliveryService) getForActor(actor Actor, deliveryID uint) (*models.DeliveryRecord, error) {
	switch actor.Role {
	case ActorTrainer:
		return s.deliveryRepo.GetByIDForTrainer(deliveryID, actor.ID)
	case ActorClient:
		return s.deliveryRepo.GetByIDForClient(deliveryID, actor.ID)
	case ActorOrderCreator:
		return s.deliveryRepo.GetByID(deliveryID)
	default:
		return nil, ErrActorForbidden
	}
}

// requireActor 校验操作者角色与归属合法性
func requireActor(actor Actor, role ActorRole) error {
	if !actor.Valid() {
		return ErrActorForbidden
	}
	if actor.Role != role {
		return ErrActorForbidden
	}
	return nil
}

// MarkReady 教练将交付记录标记为已备货
func (s *DeliveryService) MarkReady(actor Actor, deliveryID uint) (*models.DeliveryRecord, error) {
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
	if !canTransitDelivery(record.Status, constants.DeliveryStatusReady) {
		return nil, ErrDeliveryStatusConflict
	}

	now := time.Now()
	affected, err := s.deliveryRepo.CASUpdateStatus(record.ID,
		[]string{constants.DeliveryStatusPending},
		map[string]interface{}{
			"status":     constants.DeliveryStatusReady,
			"updated_at": now,
		})
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrDeliveryStatusConflict
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

// MarkDeliveredInput 交付完成输入
type MarkDeliveredInput struct {
	DeliveryID     uint
	Method         string
	Notes          string
	TrackingNumber string
}

// MarkDelivered 教练确认货品已交付。快递单号仅在 shipped 方式下保留。
func (s *DeliveryService) MarkDelivered(actor Actor, input MarkDeliveredInput) (*models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorTrainer); err != nil {
		return nil, err
	}
	if input.DeliveryID == 0 {
		return nil, ErrDeliveryInvalid
	}
	method := strings.ToLower(strings.TrimSpace(input.Method))
	if !deliveryMethods[method] {
		return nil, ErrDeliveryMethodInvalid
	}

	record, err := s.getForActor(actor, input.DeliveryID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	if record == nil {
		return nil, ErrDeliveryNotFound
	}
	if !canTransitDelivery(record.Status, constants.DeliveryStatusDelivered) {
		return nil, ErrDeliveryStatusConflict
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":          constants.DeliveryStatusDelivered,
		"delivery_method": method,
		"delivered_at":    now,
		"updated_at":      now,
	}
	if method == constants.DeliveryMethodShipped {
		updates["tracking_number"] = strings.TrimSpace(input.TrackingNumber)
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		updates["trainer_notes"] = notes
	}

	affected, err := s.deliveryRepo.CASUpdateStatus(record.ID,
		[]string{constants.DeliveryStatusPending, constants.DeliveryStatusReady},
		updates)
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrDeliveryStatusConflict
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

// ConfirmReceipt 客户确认收货。仅允许从 delivered 状态确认一次。
func (s *DeliveryService) ConfirmReceipt(actor Actor, deliveryID uint, notes string) (*models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorClient); err != nil {
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
	if !canTransitDelivery(record.Status, constants.DeliveryStatusConfirmed) {
		return nil, ErrDeliveryStatusConflict
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       constants.DeliveryStatusConfirmed,
		"confirmed_at": now,
		"updated_at":   now,
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		updates["client_notes"] = trimmed
	}

	affected, err := s.deliveryRepo.CASUpdateStatus(record.ID,
		[]string{constants.DeliveryStatusDelivered},
		updates)
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrDeliveryStatusConflict
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

// ReportIssue 客户对已交付货品发起争议，备注至少 disputeMinChars 个字符
func (s *DeliveryService) ReportIssue(actor Actor, deliveryID uint, notes string) (*models.DeliveryRecord, error) {
	if err := requireActor(actor, ActorClient); err != nil {
		return nil, err
	}
	if deliveryID == 0 {
		return nil, ErrDeliveryInvalid
	}
	trimmed := strings.TrimSpace(notes)
	if utf8.RuneCountInString(trimmed) < s.disputeMinChars {
		return nil, ErrDeliveryNotesTooShort
	}

	record, err := s.getForActor(actor, deliveryID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	if record == nil {
		return nil, ErrDeliveryNotFound
	}
	if !canTransitDelivery(record.Status, constants.DeliveryStatusDisputed) {
		return nil, ErrDeliveryStatusConflict
	}

	now := time.Now()
	affected, err := s.deliveryRepo.CASUpdateStatus(record.ID,
		[]string{constants.DeliveryStatusDelivered},
		map[string]interface{}{
			"status":         constants.DeliveryStatusDisputed,
			"dispute_reason": trimmed,
			"client_notes":   trimmed,
			"updated_at":     now,
		})
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if affected == 0 {
		return nil, ErrDeliveryStatusConflict
	}

	s.notifyParties(record.TrainerID, record.ClientID)
	return s.reload(actor, record.ID)
}

// CreateForOrder 为订单的每个订单项创建一条待交付记录。
// 已存在交付记录的订单项跳过，重复调用不产生重复记录。
func (s *DeliveryService) CreateForOrder(actor Actor, orderID uint) ([]models.DeliveryRecord, error) {
	if !actor.Valid() || actor.Role != ActorOrderCreator {
		return nil, ErrActorForbidden
	}
	if orderID == 0 {
		return nil, ErrDeliveryInvalid
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPaid {
		return nil, ErrOrderStatusInvalid
	}
	if len(order.Items) == 0 {
		return nil, ErrDeliveryInvalid
	}

	now := time.Now()
	created := make([]models.DeliveryRecord, 0, len(order.Items))
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.deliveryRepo.WithTx(tx)
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				return ErrDeliveryInvalid
			}
			existing, err := repo.GetByOrderItemID(item.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			record := &models.DeliveryRecord{
				OrderID:     order.ID,
				OrderItemID: item.ID,
				TrainerID:   order.TrainerID,
				ClientID:    order.ClientID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Status:      constants.DeliveryStatusPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := repo.Create(record); err != nil {
				return err
			}
			created = append(created, *record)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDeliveryInvalid) {
			return nil, ErrDeliveryInvalid
		}
		return nil, ErrDeliveryCreateFailed
	}

	if len(created) > 0 {
		s.notifyParties(order.TrainerID, order.ClientID)
	}
	return created, nil
}

// reload 返回操作落库后的最新记录
func (s *DeliveryService) reload(actor Actor, deliveryID uint) (*models.DeliveryRecord, error) {
	record, err := s.getForActor(actor, deliveryID)
	if err != nil {
		return nil, ErrDeliveryFetchFailed
	}
	if record == nil {
		return nil, ErrDeliveryNotFound
	}
	return record, nil
}

// notifyParties 入队徽标刷新任务，失败仅记日志，不回滚已完成的变更
func (s *DeliveryService) notifyParties(trainerID, clientID uint) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueDeliveryNotify(queue.DeliveryNotifyPayload{
		TrainerID: trainerID,
		ClientID:  clientID,
	}); err != nil {
		logger.Warnw("delivery_enqueue_notify_failed",
			"trainer_id", trainerID,
			"client_id", clientID,
			"error", err,
		)
	}
}
