package controller

import (
	"strconv"

	"cyber_heist_backend/internal/service"
	"cyber_heist_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	InteractionService *service.InteractionService
}

func NewAdminController(interactionService *service.InteractionService) *AdminController {
	return &AdminController{InteractionService: interactionService}
}

// @Summary 最近的交互日志
// @Description 支持按玩家过滤，默认返回最近 100 条
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param userId query int false "玩家ID"
// @Param limit query int false "数量" default(100)
// @Success 200 {object} util.Response
// @Router /api/admin/interactions [get]
func (c *AdminController) RecentInteractions(ctx *gin.Context) {
	limit := 100
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	if u := ctx.Query("userId"); u != "" {
		userID, err := strconv.Atoi(u)
		if err != nil {
			util.BadRequest(ctx, "invalid userId")
			return
		}
		logs, err := c.InteractionService.RecentByUser(uint(userID), limit)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, logs)
		return
	}

	logs, err := c.InteractionService.Recent(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}
