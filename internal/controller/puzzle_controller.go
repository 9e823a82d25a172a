package controller

import (
	"errors"
	"strconv"

	"cyber_heist_backend/internal/service"
	"cyber_heist_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PuzzleController struct {
	SolveService *service.SolveService
}

func NewPuzzleController(solveService *service.SolveService) *PuzzleController {
	return &PuzzleController{SolveService: solveService}
}

// @Summary 提交谜题答案
// @Description 校验答案、推进尝试计数、按需触发警报与任务结算
// @Tags 谜题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "谜题ID"
// @Param answer body service.SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/puzzles/{id}/submit [post]
func (c *PuzzleController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	puzzleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid puzzle id")
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SolveService.SubmitAnswer(user.UserID, uint(puzzleID), req)
	if err != nil {
		if errors.Is(err, util.ErrPuzzleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 获取谜题提示
// @Tags 谜题
// @Produce json
// @Security BearerAuth
// @Param id path int true "谜题ID"
// @Success 200 {object} util.Response
// @Router /api/puzzles/{id}/hint [post]
func (c *PuzzleController) UseHint(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	puzzleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid puzzle id")
		return
	}

	hint, hintsUsed, err := c.SolveService.UseHint(user.UserID, uint(puzzleID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPuzzleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNoHintAvailable):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"hint": hint, "hintsUsed": hintsUsed})
}

// @Summary 跳过谜题
// @Description 只记录行为日志，不改变通关进度
// @Tags 谜题
// @Produce json
// @Security BearerAuth
// @Param id path int true "谜题ID"
// @Success 200 {object} util.Response
// @Router /api/puzzles/{id}/skip [post]
func (c *PuzzleController) SkipPuzzle(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	puzzleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid puzzle id")
		return
	}

	if err := c.SolveService.SkipPuzzle(user.UserID, uint(puzzleID)); err != nil {
		if errors.Is(err, util.ErrPuzzleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"skipped": true})
}
