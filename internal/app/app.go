package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyber_heist_backend/internal/config"
	"cyber_heist_backend/internal/controller"
	"cyber_heist_backend/internal/repository"
	"cyber_heist_backend/internal/service"
	"cyber_heist_backend/pkg/database"
	"cyber_heist_backend/pkg/logger"
	"cyber_heist_backend/pkg/monitoring"
	"cyber_heist_backend/pkg/security"
	"cyber_heist_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	city        *repository.CityRepository
	mission     *repository.MissionRepository
	puzzle      *repository.PuzzleRepository
	progress    *repository.ProgressRepository
	alarm       *repository.AlarmRepository
	interaction *repository.InteractionRepository
}

type services struct {
	game        *service.GameService
	solve       *service.SolveService
	alarm       *service.AlarmService
	mission     *service.MissionService
	interaction *service.InteractionService
	user        *service.UserService
}

type controllers struct {
	game   *controller.GameController
	puzzle *controller.PuzzleController
	alarm  *controller.AlarmController
	user   *controller.UserController
	admin  *controller.AdminController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，由 configwatcher 调用
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("配置已热更新")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		city:        repository.NewCityRepository(db, rdb, cfg.Game.CityCacheTTL),
		mission:     repository.NewMissionRepository(db),
		puzzle:      repository.NewPuzzleRepository(db),
		progress:    repository.NewProgressRepository(db),
		alarm:       repository.NewAlarmRepository(db),
		interaction: repository.NewInteractionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.alarm = service.NewAlarmService(repos.alarm, db)
	s.mission = service.NewMissionService(repos.mission, repos.puzzle, repos.progress, db)
	s.interaction = service.NewInteractionService(repos.interaction)
	s.solve = service.NewSolveService(repos.puzzle, repos.progress, repos.alarm, s.alarm, s.mission, s.interaction, db)
	s.game = service.NewGameService(repos.city, repos.mission, repos.puzzle, repos.progress)
	s.user = service.NewUserService(repos.user, rdb, cfg.Game.LeaderboardSize, cfg.Game.LeaderboardCacheTTL)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		game:   controller.NewGameController(s.game, s.mission),
		puzzle: controller.NewPuzzleController(s.solve),
		alarm:  controller.NewAlarmController(s.alarm),
		user:   controller.NewUserController(s.user),
		admin:  controller.NewAdminController(s.interaction),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	// release 模式下迁移需要 -migrate 显式打开，避免上线时意外改表
	runMigrations := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, runMigrations)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis 不可用，缓存降级为直读数据库", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 热更新时同步游戏参数，无需重启
	app.RegisterConfigCallback(func(next *config.Config) {
		if next.Game.LeaderboardSize > 0 {
			services.user.LeaderboardSize = next.Game.LeaderboardSize
		}
		if next.Game.LeaderboardCacheTTL > 0 {
			services.user.LeaderboardTTL = next.Game.LeaderboardCacheTTL
		}
		if next.Game.CityCacheTTL > 0 {
			repos.city.CacheTTL = next.Game.CityCacheTTL
		}
	})

	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("cyber-heist", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
