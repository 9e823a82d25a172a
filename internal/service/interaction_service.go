package service

import (
	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"
	"cyber_heist_backend/pkg/logger"

	"go.uber.org/zap"
)

// InteractionService 行为分析落库。写入是 fire-and-forget：
// 失败只打日志，绝不回滚或阻塞游戏主流程
type InteractionService struct {
	InteractionRepo *repository.InteractionRepository
}

func NewInteractionService(interactionRepo *repository.InteractionRepository) *InteractionService {
	return &InteractionService{InteractionRepo: interactionRepo}
}

func (s *InteractionService) LogInteraction(entry model.InteractionLog) {
	go func() {
		if err := s.InteractionRepo.Create(&entry); err != nil {
			logger.Log.Warn("interaction log write failed",
				zap.Uint("userId", entry.UserID),
				zap.Uint("puzzleId", entry.PuzzleID),
				zap.String("actionType", entry.ActionType),
				zap.Error(err),
			)
		}
	}()
}

func (s *InteractionService) Recent(limit int) ([]model.InteractionLog, error) {
	return s.InteractionRepo.Recent(limit)
}

func (s *InteractionService) RecentByUser(userID uint, limit int) ([]model.InteractionLog, error) {
	return s.InteractionRepo.RecentByUser(userID, limit)
}
