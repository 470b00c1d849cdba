// Package interview runs mock interviews: it hands out questions slot by
// slot, evaluates answers and aggregates a final summary.
package interview

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"career-coach/application/llmjson"
	"career-coach/config"
	"career-coach/domain"
)

const (
	questionTemperature   float32 = 0.8
	evaluationTemperature float32 = 0.3
	evaluationMaxTokens   int32   = 800
	summaryTemperature    float32 = 0.2

	completedMessage = "Interview completed! 5 questions answered."
	publishTimeout   = 10 * time.Second
)

// Options wires a Service. Store, Completer and Plan are required.
type Options struct {
	Store     domain.SessionStore
	Completer domain.Completer
	Plan      *config.InterviewPlan
	Publisher domain.SummaryPublisher
	Metrics   domain.UsageMetrics
	Logger    logrus.FieldLogger

	// EvictAfter is how long a summarized session stays readable.
	EvictAfter time.Duration
	Now        func() time.Time
	RandIntN   func(n int) int
}

type Service struct {
	store      domain.SessionStore
	completer  domain.Completer
	plan       *config.InterviewPlan
	publisher  domain.SummaryPublisher
	metrics    domain.UsageMetrics
	log        logrus.FieldLogger
	evictAfter time.Duration
	now        func() time.Time
	randIntN   func(n int) int
}

func NewService(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		completer:  opts.Completer,
		plan:       opts.Plan,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		evictAfter: opts.EvictAfter,
		now:        opts.Now,
		randIntN:   opts.RandIntN,
	}
	if s.plan == nil {
		s.plan = config.DefaultInterviewPlan()
	}
	if s.publisher == nil {
		s.publisher = domain.NopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = domain.NopMetrics{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "interview")
	if s.evictAfter <= 0 {
		s.evictAfter = 5 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.randIntN == nil {
		s.randIntN = rand.IntN
	}
	return s
}

type StartRequest struct {
	Role       string `json:"role"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	SessionID  string `json:"sessionId"`
}

// Start creates a session when no id is given and asks its first question,
// or asks the next question of an existing session. A session with every
// slot asked gets a completion signal instead.
func (s *Service) Start(ctx context.Context, req StartRequest) (domain.Turn, error) {
	var session *domain.Session
	if req.SessionID == "" {
		if err := domain.Required("role", req.Role); err != nil {
			return domain.Turn{}, err
		}
		if err := domain.Required("type", req.Type); err != nil {
			return domain.Turn{}, err
		}
		difficulty, err := domain.ParseDifficulty(req.Difficulty)
		if err != nil {
			return domain.Turn{}, err
		}
		session, err = s.store.Create(domain.SessionParams{
			Role:       strings.TrimSpace(req.Role),
			Type:       strings.TrimSpace(req.Type),
			Difficulty: difficulty,
		})
		if err != nil {
			return domain.Turn{}, err
		}
		s.metrics.IncrementInterviewsStarted()
		s.log.WithFields(logrus.Fields{"session_id": session.ID, "role": session.Role}).Info("interview started")
	} else {
		var err error
		if session, err = s.store.Get(req.SessionID); err != nil {
			return domain.Turn{}, err
		}
	}

	snap := session.Snapshot()
	if snap.Completed() {
		return domain.Turn{
			SessionID:      snap.ID,
			QuestionNumber: snap.QuestionCount(),
			TotalQuestions: domain.TotalSlots,
			Completed:      true,
			Message:        completedMessage,
		}, nil
	}

	slot := snap.QuestionCount() + 1
	focus := ""
	if sl, ok := s.plan.Slot(slot); ok {
		focus = sl.Focus
	}

	question, fallback := s.generateQuestion(ctx, snap, slot, focus)
	if err := s.store.AppendQuestion(snap.ID, slot, question); err != nil {
		return domain.Turn{}, err
	}
	s.metrics.IncrementQuestionsAsked()

	return domain.Turn{
		Question:       question,
		SessionID:      snap.ID,
		QuestionNumber: slot,
		TotalQuestions: domain.TotalSlots,
		Fallback:       fallback,
	}, nil
}

func (s *Service) generateQuestion(ctx context.Context, snap domain.SessionSnapshot, slot int, focus string) (string, bool) {
	text, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Prompt:      questionPrompt(snap, slot, focus),
		Temperature: questionTemperature,
	})
	if question := strings.TrimSpace(text); err == nil && question != "" {
		return question, false
	}
	if err == nil {
		err = domain.ErrEmptyOutput
	}
	s.log.WithError(err).WithFields(logrus.Fields{"session_id": snap.ID, "slot": slot}).Warn("using fallback question")
	s.metrics.IncrementFallbacks()
	return s.fallbackQuestion(slot, snap.Role), true
}

type EvaluateRequest struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Role           string `json:"role"`
	Type           string `json:"type"`
	SessionID      string `json:"sessionId"`
	QuestionNumber int    `json:"questionNumber"`
}

// rawEvaluation mirrors the evaluation JSON with every field left loose so
// wrongly-typed values can be coerced instead of failing the whole decode.
type rawEvaluation struct {
	Feedback     any `json:"feedback"`
	IdealAnswer  any `json:"idealAnswer"`
	Score        any `json:"score"`
	Strengths    any `json:"strengths"`
	Improvements any `json:"improvements"`
}

// Evaluate scores one answer. With a session id the evaluation is recorded
// in that session's next unanswered slot (or the given one); without it the
// evaluation is stateless.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (domain.Evaluation, error) {
	if err := domain.Required("question", req.Question); err != nil {
		return domain.Evaluation{}, err
	}
	if err := domain.Required("answer", req.Answer); err != nil {
		return domain.Evaluation{}, err
	}

	role, interviewType, slot := strings.TrimSpace(req.Role), strings.TrimSpace(req.Type), req.QuestionNumber
	if req.SessionID != "" {
		session, err := s.store.Get(req.SessionID)
		if err != nil {
			return domain.Evaluation{}, err
		}
		snap := session.Snapshot()
		if role == "" {
			role = snap.Role
		}
		if interviewType == "" {
			interviewType = snap.Type
		}
		if slot == 0 {
			slot = len(snap.Answers) + 1
		}
		if err := session.CheckAnswerSlot(slot); err != nil {
			return domain.Evaluation{}, err
		}
	}
	if role == "" {
		role = defaultRole
	}

	eval := s.evaluate(ctx, req, role, interviewType, slot)

	if req.SessionID != "" {
		if err := s.store.AppendAnswer(req.SessionID, slot, eval.Record(req.Question, req.Answer)); err != nil {
			return domain.Evaluation{}, err
		}
	}
	s.metrics.IncrementAnswersEvaluated()
	return eval, nil
}

func (s *Service) evaluate(ctx context.Context, req EvaluateRequest, role, interviewType string, slot int) domain.Evaluation {
	logger := s.log.WithFields(logrus.Fields{"session_id": req.SessionID, "slot": slot})

	text, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Prompt:          evaluationPrompt(role, interviewType, slot, req.Question, req.Answer),
		Temperature:     evaluationTemperature,
		MaxOutputTokens: evaluationMaxTokens,
		JSON:            true,
	})
	if err != nil {
		logger.WithError(err).Warn("evaluation failed, using fallback")
		s.metrics.IncrementFallbacks()
		return s.fallbackEvaluation(req.Question, role, slot)
	}

	raw, stage, err := llmjson.Decode[rawEvaluation](text)
	if err != nil {
		logger.WithError(err).Warn("evaluation reply unusable, using fallback")
		s.metrics.IncrementFallbacks()
		return s.fallbackEvaluation(req.Question, role, slot)
	}
	logger.WithField("stage", stage).Debug("evaluation decoded")
	return normalizeEvaluation(raw, role)
}

func normalizeEvaluation(raw rawEvaluation, role string) domain.Evaluation {
	eval := domain.Evaluation{
		Feedback:     llmjson.Strings(raw.Feedback),
		IdealAnswer:  strings.TrimSpace(llmjson.String(raw.IdealAnswer)),
		Score:        defaultScore,
		Strengths:    nonNil(llmjson.Strings(raw.Strengths)),
		Improvements: nonNil(llmjson.Strings(raw.Improvements)),
	}
	if len(eval.Feedback) == 0 {
		eval.Feedback = []string{defaultFeedback}
	}
	if eval.IdealAnswer == "" {
		eval.IdealAnswer = "An ideal answer would provide specific examples and demonstrate your experience with " +
			role + " responsibilities."
	}
	if score, ok := llmjson.Int(raw.Score); ok {
		eval.Score = llmjson.Clamp(score, 0, 10)
	}
	return eval
}

// rawSummary mirrors the summary JSON with loose field types.
type rawSummary struct {
	OverallRating       any `json:"overallRating"`
	Summary             any `json:"summary"`
	KeyStrengths        any `json:"keyStrengths"`
	AreasForImprovement any `json:"areasForImprovement"`
	Recommendation      any `json:"recommendation"`
	NextSteps           any `json:"nextSteps"`
}

// Summarize aggregates the recorded answers of a session. It can be called
// repeatedly; eviction is scheduled and the summary event published only
// the first time.
func (s *Service) Summarize(ctx context.Context, sessionID string) (domain.Summary, error) {
	if err := domain.Required("sessionId", sessionID); err != nil {
		return domain.Summary{}, err
	}
	session, err := s.store.Get(sessionID)
	if err != nil {
		return domain.Summary{}, err
	}
	snap := session.Snapshot()

	avg := averageScore(snap.Answers)
	duration := int(math.Round(s.now().Sub(snap.StartedAt).Minutes()))
	logger := s.log.WithField("session_id", snap.ID)

	summary := fallbackSummary(snap, avg)
	text, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Prompt:      summaryPrompt(snap, duration, avg),
		Temperature: summaryTemperature,
		JSON:        true,
	})
	if err == nil {
		var raw rawSummary
		if raw, _, err = llmjson.Decode[rawSummary](text); err == nil {
			summary = mergeSummary(summary, raw)
		}
	}
	if err != nil {
		logger.WithError(err).Warn("summary generation failed, using computed summary")
		s.metrics.IncrementFallbacks()
		summary.Fallback = true
	}

	summary.SessionDetails = domain.SessionDetails{
		Role:              snap.Role,
		Type:              snap.Type,
		Difficulty:        string(snap.Difficulty),
		Duration:          duration,
		QuestionsAnswered: len(snap.Answers),
		AverageScore:      avg,
		StartTime:         snap.StartedAt,
	}
	summary.QuestionDetails = make([]domain.QuestionDetail, 0, len(snap.Answers))
	for i, a := range snap.Answers {
		summary.QuestionDetails = append(summary.QuestionDetails, domain.QuestionDetail{
			QuestionNumber: i + 1,
			Question:       a.Question,
			Answer:         a.Answer,
			Score:          a.Score,
			Feedback:       a.Feedback,
		})
	}

	if session.MarkSummarized() {
		s.metrics.IncrementInterviewsCompleted()
		s.scheduleEviction(snap.ID)
		s.publish(snap.ID, summary)
		logger.WithFields(logrus.Fields{"average_score": avg, "rating": summary.OverallRating}).Info("interview summarized")
	}
	return summary, nil
}

// mergeSummary overlays usable AI fields on the computed summary.
func mergeSummary(base domain.Summary, raw rawSummary) domain.Summary {
	if r, ok := domain.ParseRating(llmjson.String(raw.OverallRating)); ok {
		base.OverallRating = r
	}
	if v := strings.TrimSpace(llmjson.String(raw.Summary)); v != "" {
		base.Summary = v
	}
	if v := llmjson.Strings(raw.KeyStrengths); len(v) > 0 {
		base.KeyStrengths = v
	}
	if v := llmjson.Strings(raw.AreasForImprovement); len(v) > 0 {
		base.AreasForImprovement = v
	}
	if v := strings.TrimSpace(llmjson.String(raw.Recommendation)); v != "" {
		base.Recommendation = v
	}
	if v := llmjson.Strings(raw.NextSteps); len(v) > 0 {
		base.NextSteps = v
	}
	return base
}

func (s *Service) scheduleEviction(id string) {
	time.AfterFunc(s.evictAfter, func() {
		if s.store.Evict(id) {
			s.log.WithField("session_id", id).Debug("summarized session evicted")
		}
	})
}

func (s *Service) publish(id string, summary domain.Summary) {
	event := domain.SummaryEvent{SessionID: id, Summary: summary, GeneratedAt: s.now()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishSummary(ctx, event); err != nil {
			s.log.WithError(err).WithField("session_id", id).Warn("failed to publish summary")
		}
	}()
}

// Evict drops a session immediately. It reports whether the session existed.
func (s *Service) Evict(sessionID string) (bool, error) {
	if err := domain.Required("sessionId", sessionID); err != nil {
		return false, err
	}
	return s.store.Evict(sessionID), nil
}

// ActiveSessions is the number of sessions currently held.
func (s *Service) ActiveSessions() int {
	return s.store.Len()
}

func averageScore(answers []domain.AnswerRecord) float64 {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	return math.Round(float64(total)/float64(len(answers))*10) / 10
}

func formatScore(avg float64) string {
	return strconv.FormatFloat(avg, 'f', -1, 64)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

