package service

// attemptOutcome 一次提交经过尝试预算策略后的净效果。
// Attempts 是落库后的尝试数（升级警报时已重置为 0）
type attemptOutcome struct {
	EffectiveCorrect bool
	Completed        bool
	Escalated        bool
	CeilingHit       bool
	Attempts         int
}

// nextAttemptState 尝试计数的状态转移，独立于持久化可单测。
// 规则：
//   - 每次非重放提交都消耗一次尝试
//   - 答对且未触顶：完成
//   - 触顶（本次提交恰好用尽预算）：本次提交作废，
//     即使原始比对是对的也判错，并触发警报升级 + 尝试清零
//   - maxAttempts <= 0 表示不限次数，永远不会触顶
func nextAttemptState(attempts, maxAttempts int, rawCorrect bool) attemptOutcome {
	out := attemptOutcome{Attempts: attempts + 1}

	ceiling := maxAttempts > 0 && out.Attempts >= maxAttempts
	out.CeilingHit = ceiling

	switch {
	case rawCorrect && !ceiling:
		out.EffectiveCorrect = true
		out.Completed = true
	case ceiling:
		out.Escalated = true
		out.Attempts = 0
	}
	return out
}
