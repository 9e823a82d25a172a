package repository

import (
	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type PuzzleRepository struct {
	DB *gorm.DB
}

func NewPuzzleRepository(db *gorm.DB) *PuzzleRepository {
	return &PuzzleRepository{DB: db}
}

func (r *PuzzleRepository) FindByID(id uint) (*model.Puzzle, error) {
	var puzzle model.Puzzle
	err := r.DB.First(&puzzle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPuzzleNotFound
	}
	return &puzzle, err
}

// FindActiveByID 仅返回已上架的谜题，下架内容对玩家等同于不存在
func (r *PuzzleRepository) FindActiveByID(id uint) (*model.Puzzle, error) {
	var puzzle model.Puzzle
	err := r.DB.Where("id = ? AND is_active = ?", id, true).First(&puzzle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPuzzleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &puzzle, nil
}

func (r *PuzzleRepository) ListByRoom(roomID uint) ([]model.Puzzle, error) {
	var puzzles []model.Puzzle
	err := r.DB.Where("room_id = ? AND is_active = ?", roomID, true).
		Order("`order` ASC, id ASC").
		Find(&puzzles).Error
	return puzzles, err
}

// OwningMissionID 解析谜题所属任务：puzzle -> room -> mission
func (r *PuzzleRepository) OwningMissionID(puzzleID uint) (uint, error) {
	var missionID uint
	err := r.DB.Model(&model.Puzzle{}).
		Select("rooms.mission_id").
		Joins("JOIN rooms ON rooms.id = puzzles.room_id").
		Where("puzzles.id = ?", puzzleID).
		Scan(&missionID).Error
	if err != nil {
		return 0, err
	}
	if missionID == 0 {
		return 0, util.ErrMissionNotFound
	}
	return missionID, nil
}

// RequiredIDsByMission 任务下所有必做谜题的ID集合
func (r *PuzzleRepository) RequiredIDsByMission(missionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Puzzle{}).
		Select("puzzles.id").
		Joins("JOIN rooms ON rooms.id = puzzles.room_id").
		Where("rooms.mission_id = ? AND puzzles.is_required = ? AND puzzles.is_active = ?", missionID, true, true).
		Scan(&ids).Error
	return ids, err
}
