package service

import (
	"errors"
	"time"

	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/internal/repository"
	"cyber_heist_backend/internal/util"
	"cyber_heist_backend/pkg/monitoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SolveService 是答案提交的入口：校验 -> 尝试计数 -> 警报 -> 任务级联，
// 所有游戏状态变更在一个事务里提交，要么全部生效要么全部回滚
type SolveService struct {
	PuzzleRepo   *repository.PuzzleRepository
	ProgressRepo *repository.ProgressRepository
	AlarmRepo    *repository.AlarmRepository
	Alarm        *AlarmService
	Mission      *MissionService
	Interactions *InteractionService
	DB           *gorm.DB
}

func NewSolveService(
	puzzleRepo *repository.PuzzleRepository,
	progressRepo *repository.ProgressRepository,
	alarmRepo *repository.AlarmRepository,
	alarm *AlarmService,
	mission *MissionService,
	interactions *InteractionService,
	db *gorm.DB,
) *SolveService {
	return &SolveService{
		PuzzleRepo:   puzzleRepo,
		ProgressRepo: progressRepo,
		AlarmRepo:    alarmRepo,
		Alarm:        alarm,
		Mission:      mission,
		Interactions: interactions,
		DB:           db,
	}
}

type SubmitAnswerRequest struct {
	Answer           string `json:"answer" binding:"required"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// SolveResult 提交一次答案的完整反馈
type SolveResult struct {
	IsCorrect           bool `json:"isCorrect"`
	AlreadyCompleted    bool `json:"alreadyCompleted"`
	Attempts            int  `json:"attempts"`
	MaxAttempts         int  `json:"maxAttempts"`
	MaxAttemptsReached  bool `json:"maxAttemptsReached"`
	AlarmLevelIncreased bool `json:"alarmLevelIncreased"`
	IsFirstAlarmLevel   bool `json:"isFirstAlarmLevel"`
	NewAlarmLevel       int  `json:"newAlarmLevel"`
	MissionCompleted    bool `json:"missionCompleted"`
}

func (s *SolveService) SubmitAnswer(userID, puzzleID uint, req SubmitAnswerRequest) (*SolveResult, error) {
	puzzle, err := s.PuzzleRepo.FindActiveByID(puzzleID)
	if err != nil {
		return nil, err
	}

	result := &SolveResult{MaxAttempts: puzzle.MaxAttempts}
	attemptNumber := 0

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var progress model.PuzzleProgress
		err := tx.Where("user_id = ? AND puzzle_id = ?", userID, puzzleID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 惰性创建；并发首提交时另一边可能先插入，重读拿权威行
			progress = model.PuzzleProgress{UserID: userID, PuzzleID: puzzleID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ? AND puzzle_id = ?", userID, puzzleID).First(&progress).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		// 重放路径：已解出的谜题不再消耗尝试，但仍要跑任务级联——
		// 老存档可能在级联上线前就解完了全部谜题
		if progress.IsCompleted {
			result.AlreadyCompleted = true
			result.Attempts = progress.Attempts
			attemptNumber = progress.Attempts
			missionCompleted, err := s.Mission.CascadePuzzleSolved(tx, userID, puzzleID)
			if err != nil {
				return err
			}
			result.MissionCompleted = missionCompleted
			return nil
		}

		rawCorrect := CheckSolution(puzzle, req.Answer)
		outcome := nextAttemptState(progress.Attempts, puzzle.MaxAttempts, rawCorrect)
		attemptNumber = progress.Attempts + 1

		progress.Attempts = outcome.Attempts
		result.IsCorrect = outcome.EffectiveCorrect
		result.Attempts = outcome.Attempts
		result.MaxAttemptsReached = outcome.CeilingHit

		if outcome.Completed {
			won, err := s.markCompleted(tx, &progress, outcome.Attempts, req.TimeSpentSeconds)
			if err != nil {
				return err
			}
			if won {
				err := tx.Model(&model.User{}).
					Where("id = ?", userID).
					Update("puzzles_solved", gorm.Expr("puzzles_solved + ?", 1)).Error
				if err != nil {
					return err
				}
			}
		} else {
			err := tx.Model(&model.PuzzleProgress{}).
				Where("id = ?", progress.ID).
				Update("attempts", outcome.Attempts).Error
			if err != nil {
				return err
			}
		}

		if outcome.Escalated {
			missionID, err := owningMissionID(tx, puzzleID)
			if err != nil {
				return err
			}
			var missionRef *uint
			if missionID != 0 {
				missionRef = &missionID
			}
			puzzleRef := puzzle.ID

			escalation, err := s.Alarm.Raise(tx, userID, puzzle.Name, &puzzleRef, missionRef)
			if err != nil {
				return err
			}
			result.AlarmLevelIncreased = escalation.Increased
			result.IsFirstAlarmLevel = escalation.FirstAlarm
			result.NewAlarmLevel = escalation.NewLevel
		}

		if outcome.Completed {
			missionCompleted, err := s.Mission.CascadePuzzleSolved(tx, userID, puzzleID)
			if err != nil {
				return err
			}
			result.MissionCompleted = missionCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 没有升级时补上当前警报等级，方便客户端渲染
	if !result.AlarmLevelIncreased {
		if stats, err := s.AlarmRepo.FindStats(userID); err == nil {
			result.NewAlarmLevel = stats.CurrentAlarmLevel
		}
	}

	s.recordSubmission(userID, puzzle, result, attemptNumber, req.TimeSpentSeconds)
	return result, nil
}

// markCompleted 把进度行翻成已完成并顺带更新最好成绩。
// 更新条件带 is_completed = false：MySQL 的普通 SELECT 不加行锁，
// 并发首解时两边都可能读到未完成的快照，只有把标记真正翻过去的
// 那条请求返回 true，解题计数才不会加两次
func (s *SolveService) markCompleted(tx *gorm.DB, progress *model.PuzzleProgress, attempts, timeSpent int) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"attempts":     attempts,
		"is_completed": true,
		"completed_at": now,
	}
	if timeSpent > 0 &&
		(progress.BestTimeSeconds == nil || timeSpent < *progress.BestTimeSeconds) {
		updates["best_time_seconds"] = timeSpent
	}

	res := tx.Model(&model.PuzzleProgress{}).
		Where("id = ? AND is_completed = ?", progress.ID, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}

	progress.Attempts = attempts
	progress.IsCompleted = true
	progress.CompletedAt = &now
	return res.RowsAffected == 1, nil
}

// recordSubmission 指标 + 行为日志。重放按 attempted 记
// （而不是按是否触顶推断 failed，那个口径在旧版里就是错的）
func (s *SolveService) recordSubmission(userID uint, puzzle *model.Puzzle, result *SolveResult, attemptNumber, timeSpent int) {
	action := model.ActionAttempted
	metric := "incorrect"
	switch {
	case result.AlreadyCompleted:
		metric = "replay"
	case result.IsCorrect:
		action = model.ActionSolved
		metric = "correct"
	case result.MaxAttemptsReached:
		action = model.ActionFailed
		metric = "escalated"
	}
	monitoring.SubmissionCounter.WithLabelValues(metric).Inc()
	// 升级计数和提交计数一样只在事务提交之后上报，回滚的升级不计
	if result.AlarmLevelIncreased {
		monitoring.AlarmEscalations.Inc()
	}

	s.Interactions.LogInteraction(model.InteractionLog{
		UserID:           userID,
		PuzzleID:         puzzle.ID,
		ActionType:       action,
		AttemptNumber:    attemptNumber,
		IsCorrect:        result.IsCorrect,
		TimeSpentSeconds: timeSpent,
	})
}

// SkipPuzzle 只记一条 skipped 行为日志，不动任何游戏状态
func (s *SolveService) SkipPuzzle(userID, puzzleID uint) error {
	puzzle, err := s.PuzzleRepo.FindActiveByID(puzzleID)
	if err != nil {
		return err
	}
	s.Interactions.LogInteraction(model.InteractionLog{
		UserID:     userID,
		PuzzleID:   puzzle.ID,
		ActionType: model.ActionSkipped,
	})
	return nil
}

// UseHint 返回提示文本并把 hints_used +1（只增不减）
func (s *SolveService) UseHint(userID, puzzleID uint) (string, int, error) {
	puzzle, err := s.PuzzleRepo.FindActiveByID(puzzleID)
	if err != nil {
		return "", 0, err
	}
	if puzzle.HintText == "" {
		return "", 0, util.ErrNoHintAvailable
	}
	progress, err := s.ProgressRepo.IncrementHintsUsed(userID, puzzleID)
	if err != nil {
		return "", 0, err
	}
	return puzzle.HintText, progress.HintsUsed, nil
}
