package admin

import (
	"strconv"

	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAdminOrders 获取订单列表 (Admin)
func (h *Handler) ListAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	trainerID, _ := strconv.ParseUint(c.Query("trainer_id"), 10, 64)
	clientID, _ := strconv.ParseUint(c.Query("client_id"), 10, 64)

	orders, total, err := h.OrderRepo.List(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		TrainerID: uint(trainerID),
		ClientID:  uint(clientID),
		Status:    c.Query("status"),
		OrderNo:   c.Query("order_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// GetAdminOrder 获取订单详情 (Admin)
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		return
	}
	response.Success(c, order)
}
