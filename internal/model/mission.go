package model

// Mission 任务：城市下的一组房间，全部必做谜题完成后发放奖励
// swagger:model Mission
type Mission struct {
	BaseModel
	CityID           uint    `gorm:"index;type:bigint unsigned" json:"cityId"`
	Name             string  `gorm:"size:255;not null" json:"name"`
	Description      string  `gorm:"type:text" json:"description"`
	BitcoinReward    float64 `gorm:"default:0" json:"bitcoinReward"`
	ExperienceReward int     `gorm:"default:0" json:"experienceReward"`
	Order            int     `gorm:"default:0" json:"order"`
	IsActive         bool    `json:"isActive"`
}

func (Mission) TableName() string {
	return "missions"
}

// swagger:model Room
type Room struct {
	BaseModel
	MissionID     uint   `gorm:"index;type:bigint unsigned" json:"missionId"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	BackgroundURL string `gorm:"size:255" json:"backgroundUrl"`
	Order         int    `gorm:"default:0" json:"order"`
}

func (Room) TableName() string {
	return "rooms"
}
