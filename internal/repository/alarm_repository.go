package repository

import (
	"cyber_heist_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type AlarmRepository struct {
	DB *gorm.DB
}

func NewAlarmRepository(db *gorm.DB) *AlarmRepository {
	return &AlarmRepository{DB: db}
}

// FindStats 返回玩家的警报计数器；没有行时返回零值统计（等级0）
func (r *AlarmRepository) FindStats(userID uint) (*model.AlarmStats, error) {
	var stats model.AlarmStats
	err := r.DB.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.AlarmStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *AlarmRepository) RecentHistory(userID uint, limit int) ([]model.AlarmHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var history []model.AlarmHistory
	err := r.DB.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}
