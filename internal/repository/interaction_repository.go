package repository

import (
	"cyber_heist_backend/internal/model"

	"gorm.io/gorm"
)

type InteractionRepository struct {
	DB *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(entry *model.InteractionLog) error {
	return r.DB.Create(entry).Error
}

func (r *InteractionRepository) Recent(limit int) ([]model.InteractionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []model.InteractionLog
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *InteractionRepository) RecentByUser(userID uint, limit int) ([]model.InteractionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []model.InteractionLog
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
