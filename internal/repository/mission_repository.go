package repository

import (
	"cyber_heist_backend/internal/model"

	"gorm.io/gorm"
)

type MissionRepository struct {
	DB *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{DB: db}
}

func (r *MissionRepository) FindByID(id uint) (*model.Mission, error) {
	var mission model.Mission
	err := r.DB.First(&mission, id).Error
	return &mission, err
}

func (r *MissionRepository) ListByCity(cityID uint) ([]model.Mission, error) {
	var missions []model.Mission
	err := r.DB.Where("city_id = ? AND is_active = ?", cityID, true).
		Order("`order` ASC, id ASC").
		Find(&missions).Error
	return missions, err
}

func (r *MissionRepository) ListRooms(missionID uint) ([]model.Room, error) {
	var rooms []model.Room
	err := r.DB.Where("mission_id = ?", missionID).
		Order("`order` ASC, id ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *MissionRepository) FindRoomByID(id uint) (*model.Room, error) {
	var room model.Room
	err := r.DB.First(&room, id).Error
	return &room, err
}
