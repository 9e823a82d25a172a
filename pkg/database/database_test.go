package database

import (
	"testing"
	"time"

	"cyber_heist_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 迁移不能依赖 MySQL 方言的 DDL，换个驱动也要能建表
func TestMigrateOnSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	// 时间戳由应用侧填充
	user := model.User{Name: "trinity", Email: "trinity@test.local", Role: model.Player}
	require.NoError(t, db.Create(&user).Error)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.WithinDuration(t, time.Now(), stored.LastLogin, time.Minute)
	assert.WithinDuration(t, time.Now(), stored.LastSeen, time.Minute)
}
