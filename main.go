// @title CyberHeist 后端 API
// @version 1.0
// @description CyberHeist 解谜游戏的后端服务器。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"cyber_heist_backend/internal/app"
	"cyber_heist_backend/internal/config"
	"cyber_heist_backend/pkg/configwatcher"
	"cyber_heist_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	// 配置热加载：排行榜大小、缓存 TTL 等参数在线调整
	go configwatcher.WatchConfig("configs/config.yaml", func(next *config.Config) {
		application.ApplyConfig(next)
	})

	application.Run()
}
