package controller

import (
	"strconv"

	"cyber_heist_backend/internal/service"
	"cyber_heist_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AlarmController struct {
	AlarmService *service.AlarmService
}

func NewAlarmController(alarmService *service.AlarmService) *AlarmController {
	return &AlarmController{AlarmService: alarmService}
}

// @Summary 当前警报状态
// @Description 返回警报等级、历史峰值及最近的升级记录
// @Tags 警报
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/alarm [get]
func (c *AlarmController) GetStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.AlarmService.GetStatus(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary 重置指定玩家的警报等级
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "玩家ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/alarm/reset [post]
func (c *AlarmController) ResetAlarm(ctx *gin.Context) {
	targetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	admin := util.GetUserFromContext(ctx)
	reason := "admin_reset"
	if admin != nil {
		reason = "admin_reset:" + strconv.Itoa(int(admin.UserID))
	}

	stats, err := c.AlarmService.Reset(uint(targetID), reason)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
