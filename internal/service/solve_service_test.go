package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"
	"cyber_heist_backend/internal/util"
	"cyber_heist_backend/pkg/database"
	"cyber_heist_backend/pkg/logger"
	"cyber_heist_backend/pkg/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db      *gorm.DB
	solve   *SolveService
	alarm   *AlarmService
	mission *MissionService
}

// newTestEnv 每个测试一个独立的内存库。cache=shared 让行为日志的
// 异步写入和测试断言落在同一个库上，单连接串行化访问
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	puzzleRepo := repository.NewPuzzleRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	alarmRepo := repository.NewAlarmRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	alarm := NewAlarmService(alarmRepo, db)
	mission := NewMissionService(missionRepo, puzzleRepo, progressRepo, db)
	interactions := NewInteractionService(interactionRepo)
	solve := NewSolveService(puzzleRepo, progressRepo, alarmRepo, alarm, mission, interactions, db)

	return &testEnv{db: db, solve: solve, alarm: alarm, mission: mission}
}

func (e *testEnv) createPlayer(t *testing.T) *model.User {
	t.Helper()
	user := &model.User{
		Name:  "neo",
		Email: fmt.Sprintf("%s@test.local", strings.ReplaceAll(t.Name(), "/", "_")),
		Role:  model.Player,
		Level: 1,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

type puzzleSpec struct {
	solution    string
	maxAttempts int
	required    bool
	hint        string
}

// createMission 搭一条 城市->任务->房间->谜题 的最小内容链
func (e *testEnv) createMission(t *testing.T, bitcoin float64, experience int, specs ...puzzleSpec) (*model.Mission, []model.Puzzle) {
	t.Helper()

	city := model.City{Name: "Neon Harbor", IsActive: true}
	require.NoError(t, e.db.Create(&city).Error)

	mission := model.Mission{
		CityID:           city.ID,
		Name:             "First Breach",
		BitcoinReward:    bitcoin,
		ExperienceReward: experience,
		IsActive:         true,
	}
	require.NoError(t, e.db.Create(&mission).Error)

	room := model.Room{MissionID: mission.ID, Name: "Server Room"}
	require.NoError(t, e.db.Create(&room).Error)

	puzzles := make([]model.Puzzle, 0, len(specs))
	for i, spec := range specs {
		puzzle := model.Puzzle{
			RoomID:      room.ID,
			Name:        fmt.Sprintf("puzzle-%d", i+1),
			PuzzleType:  model.PuzzleTypeLogic,
			Solution:    spec.solution,
			MaxAttempts: spec.maxAttempts,
			IsRequired:  spec.required,
			HintText:    spec.hint,
			IsActive:    true,
			Order:       i,
		}
		require.NoError(t, e.db.Create(&puzzle).Error)
		puzzles = append(puzzles, puzzle)
	}
	return &mission, puzzles
}

func (e *testEnv) findProgress(t *testing.T, userID, puzzleID uint) *model.PuzzleProgress {
	t.Helper()
	var progress model.PuzzleProgress
	require.NoError(t, e.db.Where("user_id = ? AND puzzle_id = ?", userID, puzzleID).First(&progress).Error)
	return &progress
}

func TestSubmitWrongAnswersEscalatesAndResets(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0, puzzleSpec{solution: "42", maxAttempts: 3, required: true})
	puzzle := puzzles[0]

	escalationsBefore := testutil.ToFloat64(monitoring.AlarmEscalations)

	// 前两次答错只涨计数
	for want := 1; want <= 2; want++ {
		result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)
		assert.False(t, result.MaxAttemptsReached)
		assert.False(t, result.AlarmLevelIncreased)
		assert.Equal(t, want, result.Attempts)
		assert.Equal(t, 0, result.NewAlarmLevel)
	}
	// 没升级就不上报
	assert.Equal(t, escalationsBefore, testutil.ToFloat64(monitoring.AlarmEscalations))

	// 第三次用尽预算：警报 0->1，计数清零
	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.True(t, result.MaxAttemptsReached)
	assert.True(t, result.AlarmLevelIncreased)
	assert.True(t, result.IsFirstAlarmLevel)
	assert.Equal(t, 1, result.NewAlarmLevel)
	assert.Equal(t, 0, result.Attempts)
	assert.Equal(t, escalationsBefore+1, testutil.ToFloat64(monitoring.AlarmEscalations))

	progress := env.findProgress(t, user.ID, puzzle.ID)
	assert.Equal(t, 0, progress.Attempts)
	assert.False(t, progress.IsCompleted)

	var stats model.AlarmStats
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&stats).Error)
	assert.Equal(t, 1, stats.CurrentAlarmLevel)
	assert.Equal(t, 1, stats.MaxAlarmLevelReached)
	assert.Equal(t, 1, stats.TotalAlarmIncreases)

	var historyCount int64
	require.NoError(t, env.db.Model(&model.AlarmHistory{}).Where("user_id = ?", user.ID).Count(&historyCount).Error)
	assert.Equal(t, int64(1), historyCount)
}

// 最后一次机会即使原始答案正确也作废
func TestCorrectOnFinalAttemptIsForfeited(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 10, 100, puzzleSpec{solution: "42", maxAttempts: 2, required: true})
	puzzle := puzzles[0]

	_, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
	require.NoError(t, err)

	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "42"})
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.True(t, result.MaxAttemptsReached)
	assert.True(t, result.AlarmLevelIncreased)
	assert.False(t, result.MissionCompleted)

	progress := env.findProgress(t, user.ID, puzzle.ID)
	assert.False(t, progress.IsCompleted)

	// 奖励没有发出去
	var fresh model.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0.0, fresh.Bitcoin)
	assert.Equal(t, 0, fresh.Experience)
}

func TestSolvingAllRequiredPuzzlesCompletesMission(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 50, 400,
		puzzleSpec{solution: "alpha", maxAttempts: 5, required: true},
		puzzleSpec{solution: "beta", maxAttempts: 5, required: true},
		puzzleSpec{solution: "gamma", maxAttempts: 5, required: false}, // 选做，不卡任务
	)

	result, err := env.solve.SubmitAnswer(user.ID, puzzles[0].ID, SubmitAnswerRequest{Answer: "alpha", TimeSpentSeconds: 30})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.False(t, result.MissionCompleted)

	result, err = env.solve.SubmitAnswer(user.ID, puzzles[1].ID, SubmitAnswerRequest{Answer: "beta"})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.True(t, result.MissionCompleted)

	var fresh model.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	assert.Equal(t, 50.0, fresh.Bitcoin)
	assert.Equal(t, 400, fresh.Experience)
	assert.Equal(t, 3, fresh.Level) // floor(1+sqrt(400/100))
	assert.Equal(t, 2, fresh.PuzzlesSolved)

	progress := env.findProgress(t, user.ID, puzzles[0].ID)
	require.NotNil(t, progress.BestTimeSeconds)
	assert.Equal(t, 30, *progress.BestTimeSeconds)
	assert.NotNil(t, progress.CompletedAt)

	var missionProgress model.MissionProgress
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&missionProgress).Error)
	assert.True(t, missionProgress.IsCompleted)
	assert.True(t, missionProgress.RewardsClaimed)
	assert.Equal(t, 2, missionProgress.PuzzlesCompleted)
}

func TestReplayDoesNotDoubleReward(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 25, 100, puzzleSpec{solution: "key", maxAttempts: 5, required: true})
	puzzle := puzzles[0]

	first, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "key"})
	require.NoError(t, err)
	assert.True(t, first.IsCorrect)
	assert.True(t, first.MissionCompleted)

	// 重放：不涨计数，不再发奖
	for i := 0; i < 3; i++ {
		replay, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "whatever"})
		require.NoError(t, err)
		assert.True(t, replay.AlreadyCompleted)
		assert.False(t, replay.IsCorrect)
		assert.False(t, replay.MissionCompleted)
		assert.Equal(t, first.Attempts, replay.Attempts)
	}

	var fresh model.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	assert.Equal(t, 25.0, fresh.Bitcoin)
	assert.Equal(t, 100, fresh.Experience)
	assert.Equal(t, 1, fresh.PuzzlesSolved)

	var missionRows int64
	require.NoError(t, env.db.Model(&model.MissionProgress{}).Where("user_id = ?", user.ID).Count(&missionRows).Error)
	assert.Equal(t, int64(1), missionRows)
}

func TestAlarmLevelCappedAtMax(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0, puzzleSpec{solution: "42", maxAttempts: 1, required: true})
	puzzle := puzzles[0]

	require.NoError(t, env.db.Create(&model.AlarmStats{
		UserID:               user.ID,
		CurrentAlarmLevel:    model.MaxAlarmLevel,
		MaxAlarmLevelReached: model.MaxAlarmLevel,
		TotalAlarmIncreases:  12,
	}).Error)

	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
	require.NoError(t, err)
	assert.True(t, result.MaxAttemptsReached)
	assert.False(t, result.AlarmLevelIncreased)
	assert.Equal(t, model.MaxAlarmLevel, result.NewAlarmLevel)

	var stats model.AlarmStats
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&stats).Error)
	assert.Equal(t, model.MaxAlarmLevel, stats.CurrentAlarmLevel)
	assert.Equal(t, 12, stats.TotalAlarmIncreases) // 封顶后不再计数

	// 封顶的升级尝试仍然留痕
	var history model.AlarmHistory
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&history).Error)
	assert.Equal(t, model.MaxAlarmLevel, history.AlarmLevel)
}

func TestUnlimitedAttemptsNeverEscalate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0, puzzleSpec{solution: "42", maxAttempts: 0, required: true})
	puzzle := puzzles[0]

	for i := 1; i <= 7; i++ {
		result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
		require.NoError(t, err)
		assert.False(t, result.MaxAttemptsReached)
		assert.False(t, result.AlarmLevelIncreased)
		assert.Equal(t, i, result.Attempts)
	}

	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "42"})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
}

func TestBestTimeKeepsMinimum(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0,
		puzzleSpec{solution: "a", maxAttempts: 5, required: true},
		puzzleSpec{solution: "b", maxAttempts: 5, required: true},
	)

	// 没报时长就不写 best_time
	result, err := env.solve.SubmitAnswer(user.ID, puzzles[0].ID, SubmitAnswerRequest{Answer: "a"})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Nil(t, env.findProgress(t, user.ID, puzzles[0].ID).BestTimeSeconds)

	_, err = env.solve.SubmitAnswer(user.ID, puzzles[1].ID, SubmitAnswerRequest{Answer: "b", TimeSpentSeconds: 90})
	require.NoError(t, err)
	best := env.findProgress(t, user.ID, puzzles[1].ID).BestTimeSeconds
	require.NotNil(t, best)
	assert.Equal(t, 90, *best)
}

func TestSubmitAnswerUnknownPuzzle(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)

	_, err := env.solve.SubmitAnswer(user.ID, 9999, SubmitAnswerRequest{Answer: "42"})
	assert.ErrorIs(t, err, util.ErrPuzzleNotFound)
}

func TestUseHint(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0,
		puzzleSpec{solution: "a", maxAttempts: 5, required: true, hint: "look behind the painting"},
		puzzleSpec{solution: "b", maxAttempts: 5, required: true},
	)

	hint, used, err := env.solve.UseHint(user.ID, puzzles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "look behind the painting", hint)
	assert.Equal(t, 1, used)

	_, used, err = env.solve.UseHint(user.ID, puzzles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, used)

	_, _, err = env.solve.UseHint(user.ID, puzzles[1].ID)
	assert.ErrorIs(t, err, util.ErrNoHintAvailable)
}

func TestAlarmResetKeepsPeak(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0, puzzleSpec{solution: "42", maxAttempts: 1, required: true})
	puzzle := puzzles[0]

	// 连触三次警报
	for i := 0; i < 3; i++ {
		_, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
		require.NoError(t, err)
	}

	stats, err := env.alarm.Reset(user.ID, "admin_reset:1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CurrentAlarmLevel)
	assert.Equal(t, 3, stats.MaxAlarmLevelReached)
	assert.Equal(t, 3, stats.TotalAlarmIncreases)

	status, err := env.alarm.GetStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Stats.CurrentAlarmLevel)
	assert.Len(t, status.History, 4) // 3 次升级 + 1 次清零

	// 清零后预算重新计数，再触顶从 1 开始
	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "wrong"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewAlarmLevel)
	assert.True(t, result.IsFirstAlarmLevel)
}

// 只有选做谜题的任务不会被解题级联自动完成
func TestMissionWithNoRequiredPuzzlesNeverAutoCompletes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 99, 999,
		puzzleSpec{solution: "a", maxAttempts: 5, required: false},
	)

	result, err := env.solve.SubmitAnswer(user.ID, puzzles[0].ID, SubmitAnswerRequest{Answer: "a"})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.False(t, result.MissionCompleted)

	var missionRows int64
	require.NoError(t, env.db.Model(&model.MissionProgress{}).Where("user_id = ?", user.ID).Count(&missionRows).Error)
	assert.Equal(t, int64(0), missionRows)

	var fresh model.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0, fresh.Experience)
}

// 游离谜题（房间还没挂任务）能正常完成，只是不触发任务结算
func TestPuzzleWithoutMissionDoesNotCascade(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)

	room := model.Room{MissionID: 0, Name: "draft room"}
	require.NoError(t, env.db.Create(&room).Error)
	puzzle := model.Puzzle{
		RoomID:      room.ID,
		Name:        "orphan",
		PuzzleType:  model.PuzzleTypeLogic,
		Solution:    "7",
		MaxAttempts: 5,
		IsRequired:  true,
		IsActive:    true,
	}
	require.NoError(t, env.db.Create(&puzzle).Error)

	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "7"})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.False(t, result.MissionCompleted)
}

func TestProgressOverview(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	mission, puzzles := env.createMission(t, 10, 100,
		puzzleSpec{solution: "a", maxAttempts: 5, required: true},
		puzzleSpec{solution: "b", maxAttempts: 5, required: true},
	)

	_, err := env.solve.SubmitAnswer(user.ID, puzzles[0].ID, SubmitAnswerRequest{Answer: "a"})
	require.NoError(t, err)

	overview, err := env.mission.ProgressOverview(user.ID)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, mission.ID, overview[0].MissionID)
	assert.Equal(t, 2, overview[0].RequiredCount)
	assert.Equal(t, 1, overview[0].CompletedCount)
	assert.False(t, overview[0].IsCompleted)
}

// 多选题走完整提交链路：选项字母在 TypeData 里解码
func TestSubmitMultipleChoiceEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0, puzzleSpec{solution: "placeholder", maxAttempts: 5, required: true})
	puzzle := puzzles[0]

	typeData, err := json.Marshal(model.PuzzleTypeData{Options: []string{"firewall", "proxy", "honeypot"}})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.Puzzle{}).Where("id = ?", puzzle.ID).Updates(map[string]interface{}{
		"puzzle_type": model.PuzzleTypeMultipleChoice,
		"solution":    "honeypot",
		"type_data":   typeData,
	}).Error)

	result, err := env.solve.SubmitAnswer(user.ID, puzzle.ID, SubmitAnswerRequest{Answer: "c"})
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
}

// 选做 + 不限次数的零值字段要原样落库，不能被列默认值顶掉
func TestOptionalUnlimitedPuzzlePersistsZeroValues(t *testing.T) {
	env := newTestEnv(t)
	_, puzzles := env.createMission(t, 0, 0,
		puzzleSpec{solution: "a", maxAttempts: 0, required: false},
	)

	var stored model.Puzzle
	require.NoError(t, env.db.First(&stored, puzzles[0].ID).Error)
	assert.False(t, stored.IsRequired)
	assert.Equal(t, 0, stored.MaxAttempts)

	// 下架状态同样不能被默认值翻回 true
	require.NoError(t, env.db.Model(&model.Puzzle{}).Where("id = ?", stored.ID).
		Update("is_active", false).Error)
	downed := model.Puzzle{
		RoomID:     stored.RoomID,
		Name:       "draft",
		PuzzleType: model.PuzzleTypeLogic,
		Solution:   "b",
	}
	require.NoError(t, env.db.Create(&downed).Error)
	var fresh model.Puzzle
	require.NoError(t, env.db.First(&fresh, downed.ID).Error)
	assert.False(t, fresh.IsActive)
}

// 两条请求拿着同一份未完成快照结算，只有翻转标记的那条算首解
func TestConcurrentFirstSolveFlipsOnce(t *testing.T) {
	env := newTestEnv(t)
	user := env.createPlayer(t)
	_, puzzles := env.createMission(t, 0, 0, puzzleSpec{solution: "42", maxAttempts: 5, required: true})

	progress := model.PuzzleProgress{UserID: user.ID, PuzzleID: puzzles[0].ID, Attempts: 1}
	require.NoError(t, env.db.Create(&progress).Error)

	staleA := progress
	staleB := progress

	won, err := env.solve.markCompleted(env.db, &staleA, 2, 40)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = env.solve.markCompleted(env.db, &staleB, 2, 30)
	require.NoError(t, err)
	assert.False(t, won)

	stored := env.findProgress(t, user.ID, puzzles[0].ID)
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.BestTimeSeconds)
	assert.Equal(t, 40, *stored.BestTimeSeconds) // 输掉的那条不覆盖成绩
}
