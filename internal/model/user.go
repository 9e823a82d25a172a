package model

import (
	"time"
)

type UserRole string

const (
	Player UserRole = "player"
	Admin  UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name          string    `gorm:"size:100;not null" json:"name"`
	Email         string    `gorm:"size:100;unique;not null" json:"email"`
	Role          UserRole  `gorm:"size:20;default:'player'" json:"role"`
	Bitcoin       float64   `gorm:"default:0" json:"bitcoin"`         // 游戏内货币余额
	Experience    int       `gorm:"default:0" json:"experience"`      // 总经验值
	Level         int       `gorm:"default:1" json:"level"`           // 由经验值推导，只增不减
	PuzzlesSolved int       `gorm:"default:0" json:"puzzlesSolved"`
	Avatar        string    `gorm:"size:255" json:"avatar"`
	Disabled      bool      `gorm:"default:false" json:"disabled"`
	// autoCreateTime 在应用侧填初始时间，DDL 不依赖具体数据库方言
	LastLogin     time.Time `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen      time.Time `gorm:"autoCreateTime" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
