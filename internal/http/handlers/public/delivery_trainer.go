package public

import (
	handlershared "github.com/fitmarket-next/internal/http/handlers/shared"
	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/service"

	"github.com/gin-gonic/gin"
)

// DeliveryListQuery 交付列表查询参数
type DeliveryListQuery struct {
	Page               int    `form:"page"`
	PageSize           int    `form:"page_size"`
	Status             string `form:"status"`
	OpenRescheduleOnly bool   `form:"open_reschedule_only"`
}

func (q DeliveryListQuery) toInput() service.DeliveryListInput {
	return service.DeliveryListInput{
		Page:               q.Page,
		PageSize:           q.PageSize,
		Status:             q.Status,
		OpenRescheduleOnly: q.OpenRescheduleOnly,
	}
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// TrainerDeliveryList 教练查询自己的交付列表
func (h *Handler) TrainerDeliveryList(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	var query DeliveryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	records, total, err := h.DeliveryService.ListByTrainer(actor, query.toInput())
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	page, pageSize := handlershared.NormalizePagination(query.Page, query.PageSize)
	response.SuccessWithPage(c, records, buildPagination(page, pageSize, total))
}

// TrainerDeliveryPending 教练待处理交付列表
func (h *Handler) TrainerDeliveryPending(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	records, err := h.DeliveryService.PendingByTrainer(actor)
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	response.Success(c, records)
}

// TrainerDeliveryStats 教练交付统计
func (h *Handler) TrainerDeliveryStats(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	stats, err := h.DeliveryService.StatsByTrainer(actor)
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	response.Success(c, stats)
}

// TrainerDeliveryBadge 教练关注徽标
func (h *Handler) TrainerDeliveryBadge(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	badge, err := h.DeliveryService.Badge(c.Request.Context(), actor)
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	response.Success(c, badge)
}

// TrainerDeliveryDetail 教练查看交付详情
func (h *Handler) TrainerDeliveryDetail(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.DeliveryService.GetForActor(actor, deliveryID)
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	response.Success(c, record)
}

// TrainerMarkReady 教练标记货品已备妥
func (h *Handler) TrainerMarkReady(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.DeliveryService.MarkReady(actor, deliveryID)
	if err != nil {
		respondDeliveryStatusError(c, err)
		return
	}
	response.Success(c, record)
}

// TrainerMarkDeliveredRequest 交付完成请求
type TrainerMarkDeliveredRequest struct {
	Method         string `json:"method" binding:"required"`
	Notes          string `json:"notes"`
	TrackingNumber string `json:"tracking_number"`
}

// TrainerMarkDelivered 教练确认货品已交付
func (h *Handler) TrainerMarkDelivered(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TrainerMarkDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	record, err := h.DeliveryService.MarkDelivered(actor, service.MarkDeliveredInput{
		DeliveryID:     deliveryID,
		Method:         req.Method,
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondDeliveryStatusError(c, err)
		return
	}
	response.Success(c, record)
}

// TrainerApproveReschedule 教练批准改期申请
func (h *Handler) TrainerApproveReschedule(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.DeliveryService.ApproveReschedule(actor, deliveryID)
	if err != nil {
		respondDeliveryRescheduleError(c, err)
		return
	}
	response.Success(c, record)
}

// TrainerRejectRescheduleRequest 拒绝改期请求
type TrainerRejectRescheduleRequest struct {
	Note string `json:"note"`
}

// TrainerRejectReschedule 教练拒绝改期申请
func (h *Handler) TrainerRejectReschedule(c *gin.Context) {
	actor, ok := getTrainerActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req TrainerRejectRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	record, err := h.DeliveryService.RejectReschedule(actor, deliveryID, req.Note)
	if err != nil {
		respondDeliveryRescheduleError(c, err)
		return
	}
	response.Success(c, record)
}
