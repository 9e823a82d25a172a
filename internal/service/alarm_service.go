package service

import (
	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlarmService struct {
	AlarmRepo *repository.AlarmRepository
	DB        *gorm.DB
}

func NewAlarmService(alarmRepo *repository.AlarmRepository, db *gorm.DB) *AlarmService {
	return &AlarmService{AlarmRepo: alarmRepo, DB: db}
}

// EscalationResult 一次警报升级的净效果
type EscalationResult struct {
	Increased  bool `json:"increased"`
	FirstAlarm bool `json:"firstAlarm"` // 0 -> 1 的首次升级
	NewLevel   int  `json:"newLevel"`
}

// AlarmStatus 玩家当前警报状态与近期记录
type AlarmStatus struct {
	Stats   *model.AlarmStats    `json:"stats"`
	History []model.AlarmHistory `json:"history"`
}

// Raise 在调用方事务内把警报等级 +1（封顶 10），记录历史并更新峰值。
// 必须与触发它的尝试计数更新同事务提交，避免崩溃后出现
// "计满未升级" 或 "升级未清零" 的半截状态
func (s *AlarmService) Raise(tx *gorm.DB, userID uint, reason string, puzzleID, missionID *uint) (*EscalationResult, error) {
	stats := model.AlarmStats{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stats).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, err
	}

	oldLevel := stats.CurrentAlarmLevel
	newLevel := oldLevel + 1
	if newLevel > model.MaxAlarmLevel {
		newLevel = model.MaxAlarmLevel
	}
	increased := newLevel > oldLevel

	stats.CurrentAlarmLevel = newLevel
	if newLevel > stats.MaxAlarmLevelReached {
		stats.MaxAlarmLevelReached = newLevel
	}
	if increased {
		stats.TotalAlarmIncreases++
	}
	if err := tx.Save(&stats).Error; err != nil {
		return nil, err
	}

	history := model.AlarmHistory{
		UserID:     userID,
		AlarmLevel: newLevel,
		Reason:     reason,
		PuzzleID:   puzzleID,
		MissionID:  missionID,
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, err
	}

	return &EscalationResult{
		Increased:  increased,
		FirstAlarm: oldLevel == 0 && newLevel == 1,
		NewLevel:   newLevel,
	}, nil
}

// Reset 显式清零当前等级（运营/管理操作）。峰值与累计次数保留
func (s *AlarmService) Reset(userID uint, reason string) (*model.AlarmStats, error) {
	var result *model.AlarmStats
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		stats := model.AlarmStats{UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stats).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			return err
		}

		stats.CurrentAlarmLevel = 0
		if err := tx.Save(&stats).Error; err != nil {
			return err
		}

		history := model.AlarmHistory{UserID: userID, AlarmLevel: 0, Reason: reason}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		result = &stats
		return nil
	})
	return result, err
}

func (s *AlarmService) GetStatus(userID uint) (*AlarmStatus, error) {
	stats, err := s.AlarmRepo.FindStats(userID)
	if err != nil {
		return nil, err
	}
	history, err := s.AlarmRepo.RecentHistory(userID, 20)
	if err != nil {
		return nil, err
	}
	return &AlarmStatus{Stats: stats, History: history}, nil
}
