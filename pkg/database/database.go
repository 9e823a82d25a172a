package database

import (
	"cyber_heist_backend/internal/config"
	"cyber_heist_backend/internal/model"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建立 MySQL 连接。runMigrations 为真时执行表结构迁移并
// 播种演示内容；release 模式下默认跳过，由 -migrate 显式打开
func InitDB(cfg *config.DatabaseConfig, runMigrations bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if runMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")

		seedDefaultContent(db)
	}

	return db, nil
}

// Migrate 执行全部表结构迁移（测试代码也复用）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.City{},
		&model.Mission{},
		&model.Room{},
		&model.Puzzle{},
		&model.PuzzleProgress{},
		&model.MissionProgress{},
		&model.AlarmStats{},
		&model.AlarmHistory{},
		&model.InteractionLog{},
	)
}

// seedDefaultContent 首次启动时插入一座演示城市，方便前端联调
func seedDefaultContent(db *gorm.DB) {
	var count int64
	db.Model(&model.City{}).Count(&count)
	if count > 0 {
		return
	}

	city := &model.City{Name: "Neon Harbor", Description: "入门城市：学习基本操作", Order: 1, IsActive: true}
	if err := db.Create(city).Error; err != nil {
		return
	}

	mission := &model.Mission{
		CityID:           city.ID,
		Name:             "First Breach",
		Description:      "潜入废弃数据中心，找回丢失的钱包密钥。",
		BitcoinReward:    0.005,
		ExperienceReward: 150,
		Order:            1,
		IsActive:         true,
	}
	if err := db.Create(mission).Error; err != nil {
		return
	}

	room := &model.Room{MissionID: mission.ID, Name: "Server Room", Order: 1}
	if err := db.Create(room).Error; err != nil {
		return
	}

	mcData, _ := json.Marshal(model.PuzzleTypeData{Options: []string{"22", "80", "443"}})
	termData, _ := json.Marshal(model.PuzzleTypeData{AllowedCommands: []string{"nmap", "ping"}})

	puzzles := []model.Puzzle{
		{
			RoomID:      room.ID,
			Name:        "Open Port",
			Description: "哪个端口开放了明文 HTTP？",
			PuzzleType:  model.PuzzleTypeMultipleChoice,
			Solution:    "80",
			TypeData:    mcData,
			MaxAttempts: 3,
			IsRequired:  true,
			HintText:    "不是加密端口。",
			Order:       1,
			IsActive:    true,
		},
		{
			RoomID:      room.ID,
			Name:        "Scan the Subnet",
			Description: "用一个扫描命令探测内网主机。",
			PuzzleType:  model.PuzzleTypeTerminalCommand,
			TypeData:    termData,
			MaxAttempts: 5,
			IsRequired:  true,
			Order:       2,
			IsActive:    true,
		},
	}
	for i := range puzzles {
		db.Create(&puzzles[i])
	}
}
