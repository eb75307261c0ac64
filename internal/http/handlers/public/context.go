package public

import (
	"strconv"

	"github.com/fitmarket-next/internal/constants"
	handlershared "github.com/fitmarket-next/internal/http/handlers/shared"
	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/service"

	"github.com/gin-gonic/gin"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getUserID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

// getTrainerActor 要求当前登录用户为教练角色。
func getTrainerActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	if c.GetString("user_role") != constants.UserRoleTrainer {
		respondError(c, response.CodeForbidden, "error.forbidden", nil)
		return service.Actor{}, false
	}
	return service.TrainerActor(userID), true
}

// getClientActor 要求当前登录用户为客户角色。
func getClientActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	if c.GetString("user_role") != constants.UserRoleClient {
		respondError(c, response.CodeForbidden, "error.forbidden", nil)
		return service.Actor{}, false
	}
	return service.ClientActor(userID), true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
