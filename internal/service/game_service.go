package service

import (
	"errors"
	"time"

	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"
	"cyber_heist_backend/internal/util"

	"gorm.io/gorm"
)

// GameService 玩家侧的内容读取：城市 / 任务 / 房间 / 谜题视图
type GameService struct {
	CityRepo     *repository.CityRepository
	MissionRepo  *repository.MissionRepository
	PuzzleRepo   *repository.PuzzleRepository
	ProgressRepo *repository.ProgressRepository
}

func NewGameService(
	cityRepo *repository.CityRepository,
	missionRepo *repository.MissionRepository,
	puzzleRepo *repository.PuzzleRepository,
	progressRepo *repository.ProgressRepository,
) *GameService {
	return &GameService{
		CityRepo:     cityRepo,
		MissionRepo:  missionRepo,
		PuzzleRepo:   puzzleRepo,
		ProgressRepo: progressRepo,
	}
}

func (s *GameService) ListCities() ([]model.City, error) {
	return s.CityRepo.ListActive()
}

// MissionView 任务列表项，带调用者的完成状态
type MissionView struct {
	model.Mission
	IsCompleted    bool `json:"isCompleted"`
	RewardsClaimed bool `json:"rewardsClaimed"`
}

func (s *GameService) CityMissions(userID, cityID uint) ([]MissionView, error) {
	if _, err := s.CityRepo.FindByID(cityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCityNotFound
		}
		return nil, err
	}

	missions, err := s.MissionRepo.ListByCity(cityID)
	if err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo.ListMissionProgress(userID)
	if err != nil {
		return nil, err
	}
	progressByMission := make(map[uint]model.MissionProgress, len(progress))
	for _, mp := range progress {
		progressByMission[mp.MissionID] = mp
	}

	views := make([]MissionView, 0, len(missions))
	for _, mission := range missions {
		view := MissionView{Mission: mission}
		if mp, ok := progressByMission[mission.ID]; ok {
			view.IsCompleted = mp.IsCompleted
			view.RewardsClaimed = mp.RewardsClaimed
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *GameService) MissionRooms(missionID uint) ([]model.Room, error) {
	if _, err := s.MissionRepo.FindByID(missionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMissionNotFound
		}
		return nil, err
	}
	return s.MissionRepo.ListRooms(missionID)
}

// PuzzleView 发给客户端的谜题视图。答案、提示、摘要等字段绝不过网，
// 多选题只露选项文本
type PuzzleView struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	PuzzleType      string     `json:"puzzleType"`
	Options         []string   `json:"options,omitempty"`
	MaxAttempts     int        `json:"maxAttempts"`
	IsRequired      bool       `json:"isRequired"`
	Order           int        `json:"order"`
	HasHint         bool       `json:"hasHint"`
	Attempts        int        `json:"attempts"`
	IsCompleted     bool       `json:"isCompleted"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	BestTimeSeconds *int       `json:"bestTimeSeconds,omitempty"`
	HintsUsed       int        `json:"hintsUsed"`
}

func (s *GameService) RoomPuzzles(userID, roomID uint) ([]PuzzleView, error) {
	if _, err := s.MissionRepo.FindRoomByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoomNotFound
		}
		return nil, err
	}

	puzzles, err := s.PuzzleRepo.ListByRoom(roomID)
	if err != nil {
		return nil, err
	}

	puzzleIDs := make([]uint, len(puzzles))
	for i, p := range puzzles {
		puzzleIDs[i] = p.ID
	}
	progress, err := s.ProgressRepo.ListPuzzleProgress(userID, puzzleIDs)
	if err != nil {
		return nil, err
	}
	progressByPuzzle := make(map[uint]model.PuzzleProgress, len(progress))
	for _, pp := range progress {
		progressByPuzzle[pp.PuzzleID] = pp
	}

	views := make([]PuzzleView, 0, len(puzzles))
	for _, puzzle := range puzzles {
		view := PuzzleView{
			ID:          puzzle.ID,
			Name:        puzzle.Name,
			Description: puzzle.Description,
			PuzzleType:  puzzle.PuzzleType,
			MaxAttempts: puzzle.MaxAttempts,
			IsRequired:  puzzle.IsRequired,
			Order:       puzzle.Order,
			HasHint:     puzzle.HintText != "",
		}
		if puzzle.PuzzleType == model.PuzzleTypeMultipleChoice {
			view.Options = decodeTypeData(&puzzle).Options
		}
		if pp, ok := progressByPuzzle[puzzle.ID]; ok {
			view.Attempts = pp.Attempts
			view.IsCompleted = pp.IsCompleted
			view.CompletedAt = pp.CompletedAt
			view.BestTimeSeconds = pp.BestTimeSeconds
			view.HintsUsed = pp.HintsUsed
		}
		views = append(views, view)
	}
	return views, nil
}
