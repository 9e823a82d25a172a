package repository

import (
	"cyber_heist_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindPuzzleProgress 返回 (user, puzzle) 的进度行，不存在时返回 nil 而非错误
func (r *ProgressRepository) FindPuzzleProgress(userID, puzzleID uint) (*model.PuzzleProgress, error) {
	var progress model.PuzzleProgress
	err := r.DB.Where("user_id = ? AND puzzle_id = ?", userID, puzzleID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListPuzzleProgress(userID uint, puzzleIDs []uint) ([]model.PuzzleProgress, error) {
	var progress []model.PuzzleProgress
	if len(puzzleIDs) == 0 {
		return progress, nil
	}
	err := r.DB.Where("user_id = ? AND puzzle_id IN ?", userID, puzzleIDs).Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) ListMissionProgress(userID uint) ([]model.MissionProgress, error) {
	var progress []model.MissionProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) CountCompleted(userID uint, puzzleIDs []uint) (int64, error) {
	if len(puzzleIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.PuzzleProgress{}).
		Where("user_id = ? AND puzzle_id IN ? AND is_completed = ?", userID, puzzleIDs, true).
		Count(&count).Error
	return count, err
}

// IncrementHintsUsed 提示计数只增不减；进度行不存在则惰性创建
func (r *ProgressRepository) IncrementHintsUsed(userID, puzzleID uint) (*model.PuzzleProgress, error) {
	var progress *model.PuzzleProgress
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var row model.PuzzleProgress
		err := tx.Where("user_id = ? AND puzzle_id = ?", userID, puzzleID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.PuzzleProgress{UserID: userID, PuzzleID: puzzleID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		row.HintsUsed++
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		progress = &row
		return nil
	})
	return progress, err
}
