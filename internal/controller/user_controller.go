package controller

import (
	"errors"

	"cyber_heist_backend/internal/service"
	"cyber_heist_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary 玩家个人信息
// @Tags 玩家
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/profile [get]
func (c *UserController) Profile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.Profile(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 经验排行榜
// @Tags 玩家
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	entries, err := c.UserService.Leaderboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
