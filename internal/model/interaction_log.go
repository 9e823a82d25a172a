package model

const (
	ActionAttempted = "attempted"
	ActionSolved    = "solved"
	ActionFailed    = "failed"
	ActionSkipped   = "skipped"
)

// InteractionLog 行为分析日志：尽力而为写入，失败不影响游戏状态
// swagger:model InteractionLog
type InteractionLog struct {
	UUIDBase
	UserID           uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	PuzzleID         uint   `gorm:"index;type:bigint unsigned" json:"puzzleId"`
	ActionType       string `gorm:"size:20" json:"actionType"` // attempted/solved/failed/skipped
	AttemptNumber    int    `json:"attemptNumber"`
	IsCorrect        bool   `json:"isCorrect"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

func (InteractionLog) TableName() string {
	return "interaction_logs"
}
