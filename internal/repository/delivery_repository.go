package repository

import (
	"errors"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/models"

	"gorm.io/gorm"
)

// DeliveryRepository 交付记录数据访问接口
type DeliveryRepository interface {
	WithTx(tx *gorm.DB) *GormDeliveryRepository
	Create(record *models.DeliveryRecord) error
	CreateBatch(records []*models.DeliveryRecord) error
	GetByID(id uint) (*models.DeliveryRecord, error)
	GetByIDForTrainer(id, trainerID uint) (*models.DeliveryRecord, error)
	GetByIDForClient(id, clientID uint) (*models.DeliveryRecord, error)
	GetByOrderItemID(orderItemID uint) (*models.DeliveryRecord, error)
	CASUpdateStatus(id uint, fromStatuses []string, updates map[string]interface{}) (int64, error)
	CASOpenReschedule(id uint, allowedStatuses []string, updates map[string]interface{}) (int64, error)
	CASResolveReschedule(id uint, updates map[string]interface{}) (int64, error)
	List(filter DeliveryListFilter) ([]models.DeliveryRecord, int64, error)
	CountByStatusForTrainer(trainerID uint) (map[string]int64, error)
	CountOpenReschedulesForTrainer(trainerID uint) (int64, error)
	CountAwaitingTrainer(trainerID uint) (int64, error)
	CountAwaitingClient(clientID uint) (int64, error)
}

// GormDeliveryRepository GORM 实现
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository 创建交付记录仓库
func NewDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryRepository) WithTx(tx *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: tx}
}

// Create 创建交付记录
func (r *GormDeliveryRepository) Create(record *models.DeliveryRecord) error {
	return r.db.Create(record).Error
}

// CreateBatch 批量创建交付记录（每个订单项一条）
func (r *GormDeliveryRepository) CreateBatch(records []*models.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(records).Error
}

// GetByID 根据 ID 获取交付记录
func (r *GormDeliveryRepository) GetByID(id uint) (*models.DeliveryRecord, error) {
	var record models.DeliveryRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByIDForTrainer 按教练归属获取交付记录，非本人记录视同不存在
func (r *GormDeliveryRepository) GetByIDForTrainer(id, trainerID uint) (*models.DeliveryRecord, error) {
	var record models.DeliveryRecord
	if err := r.db.Where("id = ? AND trainer_id = ?", id, trainerID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByIDForClient 按客户归属获取交付记录，非本人记录视同不存在
func (r *GormDeliveryRepository) GetByIDForClient(id, clientID uint) (*models.DeliveryRecord, error) {
	var record models.DeliveryRecord
	if err := r.db.Where("id = ? AND client_id = ?", id, clientID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByOrderItemID 根据订单项 ID 获取交付记录
func (r *GormDeliveryRepository) GetByOrderItemID(orderItemID uint) (*models.DeliveryRecord, error) {
	var record models.DeliveryRecord
	if err := r.db.Where("order_item_id = ?", orderItemID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// CASUpdateStatus 条件更新状态：仅当当前状态仍在 fromStatuses 中时写入。
// 返回受影响行数；0 行表示状态已被并发修改。
func (r *GormDeliveryRepository) CASUpdateStatus(id uint, fromStatuses []string, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&models.DeliveryRecord{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CASOpenReschedule 条件开启改期请求：仅当没有未决请求且状态允许时写入。
func (r *GormDeliveryRepository) CASOpenReschedule(id uint, allowedStatuses []string, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&models.DeliveryRecord{}).
		Where("id = ? AND reschedule_status IS NULL AND status IN ?", id, allowedStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CASResolveReschedule 条件解决改期请求：仅当请求仍为 pending 时写入。
func (r *GormDeliveryRepository) CASResolveReschedule(id uint, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&models.DeliveryRecord{}).
		Where("id = ? AND reschedule_status = ?", id, constants.RescheduleStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// List 交付记录列表
func (r *GormDeliveryRepository) List(filter DeliveryListFilter) ([]models.DeliveryRecord, int64, error) {
	query := r.db.Model(&models.DeliveryRecord{})

	if filter.TrainerID > 0 {
		query = query.Where("trainer_id = ?", filter.TrainerID)
	}
	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OpenRescheduleOnly {
		query = query.Where("reschedule_status = ?", constants.RescheduleStatusPending)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.DeliveryRecord
	if err := query.Order("id DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

// CountByStatusForTrainer 按状态统计教练的交付记录数
func (r *GormDeliveryRepository) CountByStatusForTrainer(trainerID uint) (map[string]int64, error) {
	var rows []statusCountRow
	err := r.db.Model(&models.DeliveryRecord{}).
		Select("status, COUNT(*) AS count").
		Where("trainer_id = ?", trainerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountOpenReschedulesForTrainer 统计教练名下未决改期请求数
func (r *GormDeliveryRepository) CountOpenReschedulesForTrainer(trainerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.DeliveryRecord{}).
		Where("trainer_id = ? AND reschedule_status = ?", trainerID, constants.RescheduleStatusPending).
		Count(&count).Error
	return count, err
}

// CountAwaitingTrainer 统计等待教练处理的记录数（待交付 + 未决改期）
func (r *GormDeliveryRepository) CountAwaitingTrainer(trainerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.DeliveryRecord{}).
		Where("trainer_id = ?", trainerID).
		Where("status IN ? OR reschedule_status = ?",
			[]string{constants.DeliveryStatusPending, constants.DeliveryStatusReady},
			constants.RescheduleStatusPending).
		Count(&count).Error
	return count, err
}

// CountAwaitingClient 统计等待客户确认的记录数
func (r *GormDeliveryRepository) CountAwaitingClient(clientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.DeliveryRecord{}).
		Where("client_id = ? AND status = ?", clientID, constants.DeliveryStatusDelivered).
		Count(&count).Error
	return count, err
}
