package repository

import (
	"context"
	"cyber_heist_backend/internal/model"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const cityCacheKey = "catalog:cities"

// CityRepository 城市目录读取，带 Redis 缓存（内容后台改动不频繁）
type CityRepository struct {
	DB       *gorm.DB
	RDB      *redis.Client
	CacheTTL time.Duration
}

func NewCityRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *CityRepository {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CityRepository{DB: db, RDB: rdb, CacheTTL: cacheTTL}
}

func (r *CityRepository) ListActive() ([]model.City, error) {
	ctx := context.Background()

	if r.RDB != nil {
		if cached, err := r.RDB.Get(ctx, cityCacheKey).Result(); err == nil {
			var cities []model.City
			if json.Unmarshal([]byte(cached), &cities) == nil {
				return cities, nil
			}
		}
	}

	var cities []model.City
	err := r.DB.Where("is_active = ?", true).
		Order("`order` ASC, id ASC").
		Find(&cities).Error
	if err != nil {
		return nil, err
	}

	if r.RDB != nil {
		if data, err := json.Marshal(cities); err == nil {
			// 缓存失败不影响读取
			r.RDB.Set(ctx, cityCacheKey, data, r.CacheTTL)
		}
	}

	return cities, nil
}

func (r *CityRepository) FindByID(id uint) (*model.City, error) {
	var city model.City
	err := r.DB.First(&city, id).Error
	return &city, err
}
