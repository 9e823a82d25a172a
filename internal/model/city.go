package model

// swagger:model City
type City struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:255" json:"imageUrl"`
	Order       int    `gorm:"default:0" json:"order"`
	IsActive    bool   `json:"isActive"` // 未上架内容必须能存 false，不挂 default
}

func (City) TableName() string {
	return "cities"
}
