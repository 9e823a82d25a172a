// 手动导入内容包脚本
//
// 内容（城市/任务/房间/谜题）平时通过内容库直接维护，
// 此脚本用于首次部署或批量上新时从 YAML 内容包一次性导入。
//
// 用法: go run scripts/import_content.go content_pack.yaml

package main

import (
	"encoding/json"
	"log"
	"os"

	"cyber_heist_backend/internal/config"
	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/pkg/database"
	"cyber_heist_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

type contentPack struct {
	Cities []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Order       int    `yaml:"order"`
		Missions    []struct {
			Name             string  `yaml:"name"`
			Description      string  `yaml:"description"`
			BitcoinReward    float64 `yaml:"bitcoin_reward"`
			ExperienceReward int     `yaml:"experience_reward"`
			Order            int     `yaml:"order"`
			Rooms            []struct {
				Name        string `yaml:"name"`
				Description string `yaml:"description"`
				Order       int    `yaml:"order"`
				Puzzles     []struct {
					Name        string                 `yaml:"name"`
					Description string                 `yaml:"description"`
					Type        string                 `yaml:"type"`
					Solution    string                 `yaml:"solution"`
					TypeData    map[string]interface{} `yaml:"type_data"`
					MaxAttempts int                    `yaml:"max_attempts"`
					Required    *bool                  `yaml:"required"`
					Hint        string                 `yaml:"hint"`
					Order       int                    `yaml:"order"`
				} `yaml:"puzzles"`
			} `yaml:"rooms"`
		} `yaml:"missions"`
	} `yaml:"cities"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("用法: go run scripts/import_content.go <content_pack.yaml>")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("无法读取内容包: %v", err)
	}

	var pack contentPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		log.Fatalf("解析内容包失败: %v", err)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	// 导入脚本可能跑在全新库上，总是带上迁移
	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("开始导入内容包...")
	imported := 0

	for _, c := range pack.Cities {
		city := model.City{Name: c.Name, Description: c.Description, Order: c.Order, IsActive: true}
		if err := db.Create(&city).Error; err != nil {
			log.Fatalf("导入城市 %q 失败: %v", c.Name, err)
		}
		for _, m := range c.Missions {
			mission := model.Mission{
				CityID:           city.ID,
				Name:             m.Name,
				Description:      m.Description,
				BitcoinReward:    m.BitcoinReward,
				ExperienceReward: m.ExperienceReward,
				Order:            m.Order,
				IsActive:         true,
			}
			if err := db.Create(&mission).Error; err != nil {
				log.Fatalf("导入任务 %q 失败: %v", m.Name, err)
			}
			for _, r := range m.Rooms {
				room := model.Room{MissionID: mission.ID, Name: r.Name, Description: r.Description, Order: r.Order}
				if err := db.Create(&room).Error; err != nil {
					log.Fatalf("导入房间 %q 失败: %v", r.Name, err)
				}
				for _, p := range r.Puzzles {
					puzzle := model.Puzzle{
						RoomID:      room.ID,
						Name:        p.Name,
						Description: p.Description,
						PuzzleType:  p.Type,
						Solution:    p.Solution,
						MaxAttempts: p.MaxAttempts,
						IsRequired:  p.Required == nil || *p.Required,
						HintText:    p.Hint,
						Order:       p.Order,
						IsActive:    true,
					}
					if puzzle.MaxAttempts == 0 {
						puzzle.MaxAttempts = cfg.Game.DefaultMaxAttempts
					}
					if len(p.TypeData) > 0 {
						raw, err := json.Marshal(p.TypeData)
						if err != nil {
							log.Fatalf("谜题 %q 的 type_data 无法序列化: %v", p.Name, err)
						}
						puzzle.TypeData = raw
					}
					if err := db.Create(&puzzle).Error; err != nil {
						log.Fatalf("导入谜题 %q 失败: %v", p.Name, err)
					}
					imported++
				}
			}
		}
	}

	log.Printf("完成！共导入 %d 个谜题", imported)
}
