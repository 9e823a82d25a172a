package service

import (
	"math"
	"time"

	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MissionService struct {
	MissionRepo  *repository.MissionRepository
	PuzzleRepo   *repository.PuzzleRepository
	ProgressRepo *repository.ProgressRepository
	DB           *gorm.DB
}

func NewMissionService(
	missionRepo *repository.MissionRepository,
	puzzleRepo *repository.PuzzleRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
) *MissionService {
	return &MissionService{
		MissionRepo:  missionRepo,
		PuzzleRepo:   puzzleRepo,
		ProgressRepo: progressRepo,
		DB:           db,
	}
}

// levelForExperience 等级是总经验的单调函数：floor(1 + sqrt(exp/100))
func levelForExperience(experience int) int {
	if experience <= 0 {
		return 1
	}
	return int(1 + math.Sqrt(float64(experience)/100.0))
}

// CascadePuzzleSolved 解题后的任务级联：谜题 -> 房间 -> 任务，
// 全部必做谜题完成时记录任务完成并发放奖励。
// 完成行的插入走 (user_id, mission_id) 唯一索引上的 insert-if-absent，
// 只有抢到首次插入的那条请求才发奖，重放/并发触发全部空转。
// 必须在调用方的事务内执行
func (s *MissionService) CascadePuzzleSolved(tx *gorm.DB, userID, puzzleID uint) (bool, error) {
	missionID, err := owningMissionID(tx, puzzleID)
	if err != nil {
		return false, err
	}
	if missionID == 0 {
		// 没挂到任务上的谜题（内容尚未编排完），不算错误
		return false, nil
	}

	requiredIDs, err := requiredPuzzleIDs(tx, missionID)
	if err != nil {
		return false, err
	}
	// 没有必做谜题的任务不会被此路径自动完成
	if len(requiredIDs) == 0 {
		return false, nil
	}

	var completed int64
	err = tx.Model(&model.PuzzleProgress{}).
		Where("user_id = ? AND puzzle_id IN ? AND is_completed = ?", userID, requiredIDs, true).
		Count(&completed).Error
	if err != nil {
		return false, err
	}
	if completed < int64(len(requiredIDs)) {
		return false, nil
	}

	now := time.Now()
	progress := model.MissionProgress{
		UserID:           userID,
		MissionID:        missionID,
		IsCompleted:      true,
		CompletedAt:      &now,
		RewardsClaimed:   true,
		PuzzlesCompleted: len(requiredIDs),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// 已有完成记录，奖励发过了
		return false, nil
	}

	return true, s.applyRewards(tx, userID, missionID)
}

func (s *MissionService) applyRewards(tx *gorm.DB, userID, missionID uint) error {
	var mission model.Mission
	if err := tx.First(&mission, missionID).Error; err != nil {
		return err
	}
	var user model.User
	if err := tx.First(&user, userID).Error; err != nil {
		return err
	}

	user.Bitcoin += mission.BitcoinReward
	user.Experience += mission.ExperienceReward
	// 等级只升不降
	if level := levelForExperience(user.Experience); level > user.Level {
		user.Level = level
	}
	return tx.Save(&user).Error
}

// MissionOverview 玩家视角的任务进度
type MissionOverview struct {
	MissionID      uint   `json:"missionId"`
	Name           string `json:"name"`
	RequiredCount  int    `json:"requiredCount"`
	CompletedCount int    `json:"completedCount"`
	IsCompleted    bool   `json:"isCompleted"`
	RewardsClaimed bool   `json:"rewardsClaimed"`
}

// ProgressOverview 只读的任务进度汇总。发奖只发生在解题级联里，
// 这条读路径永远不修改任何状态
func (s *MissionService) ProgressOverview(userID uint) ([]MissionOverview, error) {
	var missions []model.Mission
	if err := s.DB.Where("is_active = ?", true).Order("`order` ASC, id ASC").Find(&missions).Error; err != nil {
		return nil, err
	}

	missionProgress, err := s.ProgressRepo.ListMissionProgress(userID)
	if err != nil {
		return nil, err
	}
	progressByMission := make(map[uint]model.MissionProgress, len(missionProgress))
	for _, mp := range missionProgress {
		progressByMission[mp.MissionID] = mp
	}

	overview := make([]MissionOverview, 0, len(missions))
	for _, mission := range missions {
		requiredIDs, err := s.PuzzleRepo.RequiredIDsByMission(mission.ID)
		if err != nil {
			return nil, err
		}
		completedCount, err := s.ProgressRepo.CountCompleted(userID, requiredIDs)
		if err != nil {
			return nil, err
		}

		entry := MissionOverview{
			MissionID:      mission.ID,
			Name:           mission.Name,
			RequiredCount:  len(requiredIDs),
			CompletedCount: int(completedCount),
		}
		if mp, ok := progressByMission[mission.ID]; ok {
			entry.IsCompleted = mp.IsCompleted
			entry.RewardsClaimed = mp.RewardsClaimed
		}
		overview = append(overview, entry)
	}
	return overview, nil
}

// owningMissionID / requiredPuzzleIDs 是级联在事务内使用的查询，
// 与 PuzzleRepository 的读路径等价，但跑在传入的 tx 上

func owningMissionID(tx *gorm.DB, puzzleID uint) (uint, error) {
	var missionID uint
	err := tx.Model(&model.Puzzle{}).
		Select("rooms.mission_id").
		Joins("JOIN rooms ON rooms.id = puzzles.room_id").
		Where("puzzles.id = ?", puzzleID).
		Scan(&missionID).Error
	return missionID, err
}

func requiredPuzzleIDs(tx *gorm.DB, missionID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.Puzzle{}).
		Select("puzzles.id").
		Joins("JOIN rooms ON rooms.id = puzzles.room_id").
		Where("rooms.mission_id = ? AND puzzles.is_required = ? AND puzzles.is_active = ?", missionID, true, true).
		Scan(&ids).Error
	return ids, err
}
