package infrastructure

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.IncrementInterviewsStarted()
			m.IncrementQuestionsAsked()
			m.IncrementAPICall(i%2 == 0)
		}(i)
	}
	wg.Wait()
	m.IncrementAnswersEvaluated()
	m.IncrementInterviewsCompleted()
	m.IncrementFallbacks()

	snap := m.GetSnapshot()
	assert.EqualValues(t, 10, snap.InterviewsStarted)
	assert.EqualValues(t, 10, snap.QuestionsAsked)
	assert.EqualValues(t, 10, snap.APICallsTotal)
	assert.EqualValues(t, 5, snap.APICallsSuccessful)
	assert.EqualValues(t, 1, snap.AnswersEvaluated)
	assert.EqualValues(t, 1, snap.InterviewsCompleted)
	assert.EqualValues(t, 1, snap.Fallbacks)
	assert.False(t, snap.LastUpdateTime.IsZero())
}
