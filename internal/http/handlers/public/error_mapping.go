package public

import (
	"errors"

	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var deliveryCommonErrorRules = []mappedHandlerError{
	{target: service.ErrDeliveryInvalid, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrActorForbidden, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrDeliveryNotFound, code: response.CodeNotFound, key: "error.delivery_not_found"},
	{target: service.ErrDeliveryFetchFailed, code: response.CodeInternal, key: "error.delivery_fetch_failed"},
}

var deliveryStatusErrorRules = []mappedHandlerError{
	{target: service.ErrDeliveryStatusConflict, code: response.CodeBadRequest, key: "error.delivery_status_conflict"},
	{target: service.ErrDeliveryMethodInvalid, code: response.CodeBadRequest, key: "error.delivery_method_invalid"},
	{target: service.ErrDeliveryNotesTooShort, code: response.CodeBadRequest, key: "error.dispute_reason_too_short"},
}

var deliveryRescheduleErrorRules = []mappedHandlerError{
	{target: service.ErrRescheduleReasonTooShort, code: response.CodeBadRequest, key: "error.reschedule_reason_too_short"},
	{target: service.ErrRescheduleDateInvalid, code: response.CodeBadRequest, key: "error.reschedule_date_invalid"},
	{target: service.ErrReschedulePending, code: response.CodeBadRequest, key: "error.reschedule_pending"},
	{target: service.ErrRescheduleNotPending, code: response.CodeBadRequest, key: "error.reschedule_not_pending"},
}

func respondDeliveryStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(deliveryCommonErrorRules, deliveryStatusErrorRules),
		response.CodeInternal, "error.delivery_update_failed")
}

func respondDeliveryRescheduleError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(deliveryCommonErrorRules, deliveryRescheduleErrorRules),
		response.CodeInternal, "error.delivery_update_failed")
}

func respondDeliveryQueryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, deliveryCommonErrorRules,
		response.CodeInternal, "error.delivery_fetch_failed")
}
