package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"
	"cyber_heist_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const leaderboardCacheKey = "leaderboard:experience"

type UserService struct {
	UserRepo *repository.UserRepository
	RDB      *redis.Client

	LeaderboardSize int
	LeaderboardTTL  time.Duration
}

func NewUserService(userRepo *repository.UserRepository, rdb *redis.Client, leaderboardSize int, leaderboardTTL time.Duration) *UserService {
	if leaderboardSize <= 0 {
		leaderboardSize = 10
	}
	if leaderboardTTL <= 0 {
		leaderboardTTL = 30 * time.Second
	}
	return &UserService{
		UserRepo:        userRepo,
		RDB:             rdb,
		LeaderboardSize: leaderboardSize,
		LeaderboardTTL:  leaderboardTTL,
	}
}

func (s *UserService) Profile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// LeaderboardEntry 排行榜单行，只暴露公开字段
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Level         int    `json:"level"`
	Experience    int    `json:"experience"`
	PuzzlesSolved int    `json:"puzzlesSolved"`
}

// Leaderboard 按经验排名的前 N 名，短 TTL 缓存挡住热点读
func (s *UserService) Leaderboard() ([]LeaderboardEntry, error) {
	ctx := context.Background()

	if s.RDB != nil {
		if cached, err := s.RDB.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	users, err := s.UserRepo.FindTopByExperience(s.LeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			Name:          user.Name,
			Avatar:        user.Avatar,
			Level:         user.Level,
			Experience:    user.Experience,
			PuzzlesSolved: user.PuzzlesSolved,
		})
	}

	if s.RDB != nil {
		if data, err := json.Marshal(entries); err == nil {
			s.RDB.Set(ctx, leaderboardCacheKey, data, s.LeaderboardTTL)
		}
	}

	return entries, nil
}
