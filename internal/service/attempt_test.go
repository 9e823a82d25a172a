package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextAttemptStateWrongBelowCeiling(t *testing.T) {
	out := nextAttemptState(0, 3, false)
	assert.Equal(t, 1, out.Attempts)
	assert.False(t, out.EffectiveCorrect)
	assert.False(t, out.Completed)
	assert.False(t, out.Escalated)
	assert.False(t, out.CeilingHit)
}

func TestNextAttemptStateCorrectBelowCeiling(t *testing.T) {
	out := nextAttemptState(1, 3, true)
	assert.Equal(t, 2, out.Attempts)
	assert.True(t, out.EffectiveCorrect)
	assert.True(t, out.Completed)
	assert.False(t, out.Escalated)
}

func TestNextAttemptStateCeilingResetsAndEscalates(t *testing.T) {
	out := nextAttemptState(2, 3, false)
	assert.True(t, out.CeilingHit)
	assert.True(t, out.Escalated)
	assert.False(t, out.Completed)
	assert.Equal(t, 0, out.Attempts)
}

// 最后一次机会答对也作废：预算在比对之前就已经花掉了
func TestNextAttemptStateCorrectOnCeilingForfeits(t *testing.T) {
	out := nextAttemptState(2, 3, true)
	assert.True(t, out.CeilingHit)
	assert.True(t, out.Escalated)
	assert.False(t, out.EffectiveCorrect)
	assert.False(t, out.Completed)
	assert.Equal(t, 0, out.Attempts)
}

func TestNextAttemptStateUnlimited(t *testing.T) {
	for _, maxAttempts := range []int{0, -1} {
		out := nextAttemptState(999, maxAttempts, false)
		assert.False(t, out.CeilingHit)
		assert.False(t, out.Escalated)
		assert.Equal(t, 1000, out.Attempts)

		out = nextAttemptState(999, maxAttempts, true)
		assert.True(t, out.Completed)
	}
}

func TestNextAttemptStateSingleAttemptBudget(t *testing.T) {
	// 预算为 1 时任何首次提交都触顶
	out := nextAttemptState(0, 1, true)
	assert.True(t, out.CeilingHit)
	assert.False(t, out.Completed)
}

func TestLevelForExperience(t *testing.T) {
	assert.Equal(t, 1, levelForExperience(0))
	assert.Equal(t, 1, levelForExperience(-50))
	assert.Equal(t, 1, levelForExperience(99))
	assert.Equal(t, 2, levelForExperience(100))
	assert.Equal(t, 2, levelForExperience(399))
	assert.Equal(t, 3, levelForExperience(400))
	assert.Equal(t, 4, levelForExperience(900))
}
