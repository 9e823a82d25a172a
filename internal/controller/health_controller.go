package controller

import (
	"context"
	"net/http"
	"time"

	"cyber_heist_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, RDB: rdb}
}

// @Summary 健康检查
// @Description 检查数据库与缓存连接状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	redisStatus := "disabled"
	if c.RDB != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.RDB.Ping(pingCtx).Err(); err != nil {
			redisStatus = "unavailable"
		} else {
			redisStatus = "ok"
		}
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "ok",
			"redis":    redisStatus,
		},
		"time": time.Now().Format(time.RFC3339),
	})
}
