package controller

import (
	"errors"
	"strconv"

	"cyber_heist_backend/internal/service"
	"cyber_heist_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	GameService    *service.GameService
	MissionService *service.MissionService
}

func NewGameController(gameService *service.GameService, missionService *service.MissionService) *GameController {
	return &GameController{GameService: gameService, MissionService: missionService}
}

// @Summary 城市列表
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/cities [get]
func (c *GameController) ListCities(ctx *gin.Context) {
	cities, err := c.GameService.ListCities()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cities)
}

// @Summary 城市下的任务列表
// @Description 附带当前玩家的任务完成状态
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Param id path int true "城市ID"
// @Success 200 {object} util.Response
// @Router /api/cities/{id}/missions [get]
func (c *GameController) CityMissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	cityID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid city id")
		return
	}

	missions, err := c.GameService.CityMissions(user.UserID, uint(cityID))
	if err != nil {
		if errors.Is(err, util.ErrCityNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, missions)
}

// @Summary 任务下的房间列表
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Success 200 {object} util.Response
// @Router /api/missions/{id}/rooms [get]
func (c *GameController) MissionRooms(ctx *gin.Context) {
	missionID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid mission id")
		return
	}

	rooms, err := c.GameService.MissionRooms(uint(missionID))
	if err != nil {
		if errors.Is(err, util.ErrMissionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rooms)
}

// @Summary 房间内的谜题列表
// @Description 谜题视图不含答案和提示，并合并玩家自己的进度
// @Tags 内容
// @Produce json
// @Security BearerAuth
// @Param id path int true "房间ID"
// @Success 200 {object} util.Response
// @Router /api/rooms/{id}/puzzles [get]
func (c *GameController) RoomPuzzles(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	roomID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid room id")
		return
	}

	puzzles, err := c.GameService.RoomPuzzles(user.UserID, uint(roomID))
	if err != nil {
		if errors.Is(err, util.ErrRoomNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, puzzles)
}

// @Summary 玩家任务进度总览
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *GameController) Progress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	overview, err := c.MissionService.ProgressOverview(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
