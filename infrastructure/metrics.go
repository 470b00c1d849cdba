package infrastructure

import (
	"sync"
	"time"
)

// Metrics holds process-wide usage counters served at /api/stats.
type Metrics struct {
	mu                  sync.RWMutex
	InterviewsStarted   int64     `json:"interviewsStarted"`
	InterviewsCompleted int64     `json:"interviewsCompleted"`
	QuestionsAsked      int64     `json:"questionsAsked"`
	AnswersEvaluated    int64     `json:"answersEvaluated"`
	Fallbacks           int64     `json:"fallbacks"`
	APICallsTotal       int64     `json:"apiCallsTotal"`
	APICallsSuccessful  int64     `json:"apiCallsSuccessful"`
	LastUpdateTime      time.Time `json:"lastUpdateTime"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) bump(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsStarted()   { m.bump(&m.InterviewsStarted) }
func (m *Metrics) IncrementInterviewsCompleted() { m.bump(&m.InterviewsCompleted) }
func (m *Metrics) IncrementQuestionsAsked()      { m.bump(&m.QuestionsAsked) }
func (m *Metrics) IncrementAnswersEvaluated()    { m.bump(&m.AnswersEvaluated) }
func (m *Metrics) IncrementFallbacks()           { m.bump(&m.Fallbacks) }

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

// MetricsSnapshot is a lock-free copy of the counters.
type MetricsSnapshot struct {
	InterviewsStarted   int64     `json:"interviewsStarted"`
	InterviewsCompleted int64     `json:"interviewsCompleted"`
	QuestionsAsked      int64     `json:"questionsAsked"`
	AnswersEvaluated    int64     `json:"answersEvaluated"`
	Fallbacks           int64     `json:"fallbacks"`
	APICallsTotal       int64     `json:"apiCallsTotal"`
	APICallsSuccessful  int64     `json:"apiCallsSuccessful"`
	ActiveSessions      int       `json:"activeSessions"`
	LastUpdateTime      time.Time `json:"lastUpdateTime"`
}

func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		InterviewsStarted:   m.InterviewsStarted,
		InterviewsCompleted: m.InterviewsCompleted,
		QuestionsAsked:      m.QuestionsAsked,
		AnswersEvaluated:    m.AnswersEvaluated,
		Fallbacks:           m.Fallbacks,
		APICallsTotal:       m.APICallsTotal,
		APICallsSuccessful:  m.APICallsSuccessful,
		LastUpdateTime:      m.LastUpdateTime,
	}
}
