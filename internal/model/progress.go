package model

import "time"

// PuzzleProgress 每个 (user, puzzle) 一行，首次提交时惰性创建
// swagger:model PuzzleProgress
type PuzzleProgress struct {
	BaseModel
	UserID          uint       `gorm:"uniqueIndex:idx_user_puzzle;type:bigint unsigned" json:"userId"`
	PuzzleID        uint       `gorm:"uniqueIndex:idx_user_puzzle;type:bigint unsigned" json:"puzzleId"`
	Attempts        int        `gorm:"default:0" json:"attempts"`
	IsCompleted     bool       `gorm:"default:false" json:"isCompleted"` // 只置位一次，绝不回退
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	BestTimeSeconds *int       `json:"bestTimeSeconds,omitempty"` // 只保留最小值
	HintsUsed       int        `gorm:"default:0" json:"hintsUsed"`
}

func (PuzzleProgress) TableName() string {
	return "puzzle_progresses"
}

// MissionProgress 每个 (user, mission) 至多插入一行且 is_completed=true；
// 唯一索引是奖励幂等发放的保证
// swagger:model MissionProgress
type MissionProgress struct {
	BaseModel
	UserID           uint       `gorm:"uniqueIndex:idx_user_mission;type:bigint unsigned" json:"userId"`
	MissionID        uint       `gorm:"uniqueIndex:idx_user_mission;type:bigint unsigned" json:"missionId"`
	IsCompleted      bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	RewardsClaimed   bool       `gorm:"default:false" json:"rewardsClaimed"`
	PuzzlesCompleted int        `gorm:"default:0" json:"puzzlesCompleted"` // 完成时点的必做谜题数
}

func (MissionProgress) TableName() string {
	return "mission_progresses"
}
