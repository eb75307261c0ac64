package public

import (
	"time"

	handlershared "github.com/fitmarket-next/internal/http/handlers/shared"
	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientDeliveryList 客户查询自己的交付列表
func (h *Handler) ClientDeliveryList(c *gin.Context) {
	actor, ok := getClientActor(c)
	if !ok {
		return
	}
	var query DeliveryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	records, total, err := h.DeliveryService.ListByClient(actor, query.toInput())
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	page, pageSize := handlershared.NormalizePagination(query.Page, query.PageSize)
	response.SuccessWithPage(c, records, buildPagination(page, pageSize, total))
}

// ClientDeliveryBadge 客户关注徽标
func (h *Handler) ClientDeliveryBadge(c *gin.Context) {
	actor, ok := getClientActor(c)
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

// ClientDeliveryDetail 客户查看交付详情
func (h *Handler) ClientDeliveryDetail(c *gin.Context) {
	actor, ok := getClientActor(c)
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

// ClientConfirmReceiptRequest 确认收货请求
type ClientConfirmReceiptRequest struct {
	Notes string `json:"notes"`
}

// ClientConfirmReceipt 客户确认收货
func (h *Handler) ClientConfirmReceipt(c *gin.Context) {
	actor, ok := getClientActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ClientConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	record, err := h.DeliveryService.ConfirmReceipt(actor, deliveryID, req.Notes)
	if err != nil {
		respondDeliveryStatusError(c, err)
		return
	}
	response.Success(c, record)
}

// ClientReportIssueRequest 交付异议请求
type ClientReportIssueRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// ClientReportIssue 客户对交付提出异议
func (h *Handler) ClientReportIssue(c *gin.Context) {
	actor, ok := getClientActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ClientReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	record, err := h.DeliveryService.ReportIssue(actor, deliveryID, req.Notes)
	if err != nil {
		respondDeliveryStatusError(c, err)
		return
	}
	response.Success(c, record)
}

// ClientRequestRescheduleRequest 改期申请请求
type ClientRequestRescheduleRequest struct {
	ProposedDate string `json:"proposed_date" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

// ClientRequestReschedule 客户发起改期申请
func (h *Handler) ClientRequestReschedule(c *gin.Context) {
	actor, ok := getClientActor(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ClientRequestRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	proposed, err := time.ParseInLocation("2006-01-02", req.ProposedDate, time.Local)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.reschedule_date_invalid", nil)
		return
	}

	record, err := h.DeliveryService.RequestReschedule(actor, service.RequestRescheduleInput{
		DeliveryID:   deliveryID,
		ProposedDate: proposed,
		Reason:       req.Reason,
	})
	if err != nil {
		respondDeliveryRescheduleError(c, err)
		return
	}
	response.Success(c, record)
}

// ClientAcknowledgeRequest 已读确认请求
type ClientAcknowledgeRequest struct {
	DeliveryIDs []uint `json:"delivery_ids" binding:"required"`
}

// ClientAcknowledgeDeliveries 客户标记交付完结提醒为已读
func (h *Handler) ClientAcknowledgeDeliveries(c *gin.Context) {
	actor, ok := getClientActor(c)
	if !ok {
		return
	}
	var req ClientAcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.DeliveryService.AcknowledgeDeliveries(c.Request.Context(), actor, req.DeliveryIDs); err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	response.Success(c, gin.H{"acknowledged": len(req.DeliveryIDs)})
}

// ClientUnacknowledgedDeliveries 客户查询未读的完结交付
func (h *Handler) ClientUnacknowledgedDeliveries(c *gin.Context) {
	actor, ok := getClientActor(c)
	if !ok {
		return
	}
	records, err := h.DeliveryService.UnacknowledgedCompleted(c.Request.Context(), actor)
	if err != nil {
		respondDeliveryQueryError(c, err)
		return
	}
	response.Success(c, records)
}
