package middleware

import (
	"cyber_heist_backend/internal/util"
	"cyber_heist_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserActivityRepo 只需要能刷新最近活跃时间
type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

// ActivityMiddleware 异步刷新玩家的 last_seen，不阻塞请求
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := util.GetUserFromContext(c); user != nil {
			go func(userID uint) {
				if err := repo.UpdateLastSeen(userID); err != nil {
					logger.Log.Warn("更新玩家活跃时间失败",
						zap.Uint("user_id", userID),
						zap.Error(err))
				}
			}(user.UserID)
		}
		c.Next()
	}
}
