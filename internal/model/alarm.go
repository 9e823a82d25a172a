package model

// MaxAlarmLevel 警报等级上限
const MaxAlarmLevel = 10

// AlarmStats 每个玩家一行的警报计数器
// swagger:model AlarmStats
type AlarmStats struct {
	BaseModel
	UserID               uint `gorm:"uniqueIndex;type:bigint unsigned" json:"userId"`
	CurrentAlarmLevel    int  `gorm:"default:0" json:"currentAlarmLevel"`    // 0-10，只能升级或显式清零
	MaxAlarmLevelReached int  `gorm:"default:0" json:"maxAlarmLevelReached"` // 恒 >= CurrentAlarmLevel
	TotalAlarmIncreases  int  `gorm:"default:0" json:"totalAlarmIncreases"`
}

func (AlarmStats) TableName() string {
	return "alarm_stats"
}

// AlarmHistory 只追加的警报日志，核心逻辑不修改不删除
// swagger:model AlarmHistory
type AlarmHistory struct {
	BaseModel
	UserID     uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	AlarmLevel int    `json:"alarmLevel"`
	Reason     string `gorm:"size:255" json:"reason"`
	PuzzleID   *uint  `gorm:"type:bigint unsigned" json:"puzzleId,omitempty"`
	MissionID  *uint  `gorm:"type:bigint unsigned" json:"missionId,omitempty"`
}

func (AlarmHistory) TableName() string {
	return "alarm_histories"
}
