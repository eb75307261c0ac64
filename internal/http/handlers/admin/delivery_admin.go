package admin

import (
	"errors"
	"strconv"

	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/queue"
	"github.com/fitmarket-next/internal/repository"
	"github.com/fitmarket-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAdminDeliveries 获取交付记录列表 (Admin)
func (h *Handler) ListAdminDeliveries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	trainerID, _ := strconv.ParseUint(c.Query("trainer_id"), 10, 64)
	clientID, _ := strconv.ParseUint(c.Query("client_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	filter := repository.DeliveryListFilter{
		Page:               page,
		PageSize:           pageSize,
		TrainerID:          uint(trainerID),
		ClientID:           uint(clientID),
		OrderID:            uint(orderID),
		Status:             c.Query("status"),
		OpenRescheduleOnly: c.Query("open_reschedule_only") == "true",
	}

	records, total, err := h.DeliveryRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.delivery_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, records, pagination)
}

// GetAdminDelivery 获取交付记录详情 (Admin)
func (h *Handler) GetAdminDelivery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	record, err := h.DeliveryRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "error.delivery_fetch_failed", err)
		return
	}
	if record == nil {
		respondError(c, response.CodeNotFound, "error.delivery_not_found", nil)
		return
	}
	response.Success(c, record)
}

// ListAdminDisputes 获取争议中的交付记录列表 (Admin)
func (h *Handler) ListAdminDisputes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	records, total, err := h.DeliveryRepo.List(repository.DeliveryListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   constants.DeliveryStatusDisputed,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.delivery_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, records, pagination)
}

// RegisterOrderDeliveriesRequest 订单交付记录登记请求
type RegisterOrderDeliveriesRequest struct {
	Async bool `json:"async"`
}

// RegisterOrderDeliveries 为已支付订单登记交付记录 (Admin)
// async 为真时仅入队，由 worker 异步展开。
func (h *Handler) RegisterOrderDeliveries(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req RegisterOrderDeliveriesRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if req.Async && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueDeliveryFanOut(queue.DeliveryFanOutPayload{OrderID: uint(orderID)}); err != nil {
			respondError(c, response.CodeInternal, "error.delivery_create_failed", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}

	records, err := h.DeliveryService.CreateForOrder(service.OrderCreatorActor(), uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
		case errors.Is(err, service.ErrDeliveryInvalid):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.delivery_create_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"created": len(records),
		"records": records,
	})
}
