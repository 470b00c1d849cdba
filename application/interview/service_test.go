package interview

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-coach/config"
	"career-coach/domain"
	"career-coach/infrastructure"
)

type completerFunc func(ctx context.Context, req domain.CompletionRequest) (string, error)

func (f completerFunc) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	return f(ctx, req)
}

var errDown = &domain.CapabilityError{Provider: "stub", Err: errors.New("service unavailable")}

func downCompleter() domain.Completer {
	return completerFunc(func(context.Context, domain.CompletionRequest) (string, error) {
		return "", errDown
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SummaryEvent
}

func (p *recordingPublisher) PublishSummary(_ context.Context, e domain.SummaryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, c domain.Completer, opts ...func(*Options)) (*Service, *infrastructure.MemorySessionStore) {
	t.Helper()
	store := infrastructure.NewMemorySessionStore(100, time.Hour, quietLogger())
	o := Options{
		Store:      store,
		Completer:  c,
		Plan:       config.DefaultInterviewPlan(),
		Logger:     quietLogger(),
		EvictAfter: time.Hour,
		RandIntN:   func(int) int { return 1 },
	}
	for _, fn := range opts {
		fn(&o)
	}
	return NewService(o), store
}

// scriptedInterviewer answers question prompts with a numbered question,
// evaluation prompts with a fixed score and summary prompts with canned JSON.
func scriptedInterviewer(score int) domain.Completer {
	return completerFunc(func(_ context.Context, req domain.CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "conducting a professional interview"):
			return "  Generated question?  \n", nil
		case strings.Contains(req.Prompt, "expert interviewer"):
			return `{"feedback":["clear"],"idealAnswer":"ideal","score":` + strconv.Itoa(score) + `,"strengths":["s"],"improvements":["i"]}`, nil
		default:
			return `{"overallRating":"Good","summary":"Solid.","keyStrengths":["a"],"areasForImprovement":["b"],"recommendation":"Hire","nextSteps":["c"]}`, nil
		}
	})
}

func checkInvariant(t *testing.T, store *infrastructure.MemorySessionStore, id string) {
	t.Helper()
	s, err := store.Get(id)
	require.NoError(t, err)
	snap := s.Snapshot()
	assert.LessOrEqual(t, len(snap.Answers), len(snap.Questions))
	assert.LessOrEqual(t, len(snap.Questions), domain.TotalSlots)
}

func TestStart_NewSessionThenResume(t *testing.T) {
	svc, store := newTestService(t, scriptedInterviewer(7))
	ctx := context.Background()

	first, err := svc.Start(ctx, StartRequest{Role: "Backend Engineer", Type: "technical"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, 1, first.QuestionNumber)
	assert.Equal(t, domain.TotalSlots, first.TotalQuestions)
	assert.Equal(t, "Generated question?", first.Question)
	assert.False(t, first.Completed)
	assert.False(t, first.Fallback)

	second, err := svc.Start(ctx, StartRequest{SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 2, second.QuestionNumber)
	checkInvariant(t, store, first.SessionID)

	other, err := svc.Start(ctx, StartRequest{Role: "Backend Engineer", Type: "technical"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, other.SessionID)
	assert.Equal(t, 1, other.QuestionNumber)
}

func TestStart_Validation(t *testing.T) {
	svc, _ := newTestService(t, scriptedInterviewer(7))
	ctx := context.Background()

	var verr *domain.ValidationError
	_, err := svc.Start(ctx, StartRequest{Type: "technical"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)

	_, err = svc.Start(ctx, StartRequest{Role: "Engineer", Type: " "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)

	_, err = svc.Start(ctx, StartRequest{Role: "Engineer", Type: "technical", Difficulty: "brutal"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "difficulty", verr.Field)

	_, err = svc.Start(ctx, StartRequest{SessionID: "does-not-exist"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStart_PromptCarriesContext(t *testing.T) {
	var prompts []string
	c := completerFunc(func(_ context.Context, req domain.CompletionRequest) (string, error) {
		prompts = append(prompts, req.Prompt)
		assert.InDelta(t, 0.8, req.Temperature, 1e-6)
		return "Q" + strconv.Itoa(len(prompts)), nil
	})
	svc, _ := newTestService(t, c)
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "Data Scientist", Type: "behavioral", Difficulty: "HARD"})
	require.NoError(t, err)
	_, err = svc.Start(ctx, StartRequest{SessionID: turn.SessionID})
	require.NoError(t, err)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "question 1 of 5")
	assert.Contains(t, prompts[0], "Role: Data Scientist")
	assert.Contains(t, prompts[0], "Difficulty: hard")
	assert.Contains(t, prompts[0], "introduction and background")
	assert.NotContains(t, prompts[0], "Previous questions")
	assert.Contains(t, prompts[1], "question 2 of 5")
	assert.Contains(t, prompts[1], "technical skills and experience")
	assert.Contains(t, prompts[1], "Previous questions asked: Q1")
}

func TestInterview_FullScenario(t *testing.T) {
	pub := &recordingPublisher{}
	svc, store := newTestService(t, scriptedInterviewer(8), func(o *Options) { o.Publisher = pub })
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "Backend Engineer", Type: "technical", Difficulty: "medium"})
	require.NoError(t, err)
	id := turn.SessionID

	for slot := 1; slot <= domain.TotalSlots; slot++ {
		if slot > 1 {
			turn, err = svc.Start(ctx, StartRequest{SessionID: id})
			require.NoError(t, err)
		}
		assert.Equal(t, slot, turn.QuestionNumber)
		checkInvariant(t, store, id)

		eval, err := svc.Evaluate(ctx, EvaluateRequest{Question: turn.Question, Answer: "my answer", SessionID: id, QuestionNumber: slot})
		require.NoError(t, err)
		assert.Equal(t, 8, eval.Score)
		checkInvariant(t, store, id)
	}

	done, err := svc.Start(ctx, StartRequest{SessionID: id})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Empty(t, done.Question)
	assert.Equal(t, completedMessage, done.Message)
	checkInvariant(t, store, id)

	again, err := svc.Start(ctx, StartRequest{SessionID: id})
	require.NoError(t, err)
	assert.True(t, again.Completed)

	summary, err := svc.Summarize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingGood, summary.OverallRating)
	assert.Equal(t, "Solid.", summary.Summary)
	assert.Equal(t, "Hire", summary.Recommendation)
	assert.False(t, summary.Fallback)
	assert.Equal(t, 5, summary.SessionDetails.QuestionsAnswered)
	assert.Equal(t, 8.0, summary.SessionDetails.AverageScore)
	assert.Equal(t, "medium", summary.SessionDetails.Difficulty)
	require.Len(t, summary.QuestionDetails, 5)
	assert.Equal(t, 5, summary.QuestionDetails[4].QuestionNumber)

	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestInterview_CapabilityDownThroughout(t *testing.T) {
	svc, _ := newTestService(t, downCompleter())
	ctx := context.Background()
	plan := config.DefaultInterviewPlan()

	turn, err := svc.Start(ctx, StartRequest{Role: "Backend Engineer", Type: "technical"})
	require.NoError(t, err)
	id := turn.SessionID

	for slot := 1; slot <= domain.TotalSlots; slot++ {
		if slot > 1 {
			turn, err = svc.Start(ctx, StartRequest{SessionID: id})
			require.NoError(t, err)
		}
		assert.True(t, turn.Fallback)
		assert.Equal(t, config.WithRole(plan.Slots[slot-1].FallbackQuestion, "Backend Engineer"), turn.Question)

		eval, err := svc.Evaluate(ctx, EvaluateRequest{Question: turn.Question, Answer: "answer", SessionID: id})
		require.NoError(t, err)
		assert.True(t, eval.Fallback)
		assert.Equal(t, 6, eval.Score)
		assert.Len(t, eval.Feedback, 2)
	}

	summary, err := svc.Summarize(ctx, id)
	require.NoError(t, err)
	assert.True(t, summary.Fallback)
	assert.Equal(t, 6.0, summary.SessionDetails.AverageScore)
	assert.Equal(t, domain.RatingGood, summary.OverallRating)
	assert.Equal(t, "Additional evaluation needed", summary.Recommendation)
	assert.Equal(t, []string{"Clear communication", "Relevant experience", "Clear communication"}, summary.KeyStrengths)
	assert.Equal(t, fallbackNextSteps, summary.NextSteps)
	assert.Contains(t, summary.Summary, "5-question technical interview for Backend Engineer")
}

func TestEvaluate_FallbackScoreRange(t *testing.T) {
	for n, want := range map[int]int{0: 5, 1: 6, 2: 7} {
		n := n
		svc, _ := newTestService(t, downCompleter(), func(o *Options) {
			o.RandIntN = func(max int) int {
				assert.Equal(t, 3, max)
				return n
			}
		})
		eval, err := svc.Evaluate(context.Background(), EvaluateRequest{Question: "q", Answer: "a", Role: "r", QuestionNumber: 1})
		require.NoError(t, err)
		assert.Equal(t, want, eval.Score)
	}
}

func TestEvaluate_MalformedOutputStillComplete(t *testing.T) {
	for _, reply := range []string{"not json at all", "{broken", "```json\n{\"feedback\": }\n```", "[]"} {
		c := completerFunc(func(context.Context, domain.CompletionRequest) (string, error) { return reply, nil })
		svc, _ := newTestService(t, c)

		eval, err := svc.Evaluate(context.Background(), EvaluateRequest{Question: "Why Go?", Answer: "Because.", Role: "Gopher", QuestionNumber: 2})
		require.NoError(t, err, reply)
		assert.NotEmpty(t, eval.Feedback, reply)
		assert.NotEmpty(t, eval.IdealAnswer, reply)
		assert.GreaterOrEqual(t, eval.Score, 0)
		assert.LessOrEqual(t, eval.Score, 10)
		assert.NotNil(t, eval.Strengths)
		assert.NotNil(t, eval.Improvements)
	}
}

func TestEvaluate_Normalization(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		check func(t *testing.T, e domain.Evaluation)
	}{
		{
			name:  "string feedback promoted to list",
			reply: `{"feedback":"Nice","idealAnswer":"x","score":6}`,
			check: func(t *testing.T, e domain.Evaluation) {
				assert.Equal(t, []string{"Nice"}, e.Feedback)
				assert.Equal(t, []string{}, e.Strengths)
			},
		},
		{
			name:  "score clamped",
			reply: `{"feedback":["a"],"idealAnswer":"x","score":"12"}`,
			check: func(t *testing.T, e domain.Evaluation) { assert.Equal(t, 10, e.Score) },
		},
		{
			name:  "fractional score string",
			reply: `{"feedback":["a"],"idealAnswer":"x","score":"7/10"}`,
			check: func(t *testing.T, e domain.Evaluation) { assert.Equal(t, 7, e.Score) },
		},
		{
			name:  "missing fields get defaults",
			reply: `{}`,
			check: func(t *testing.T, e domain.Evaluation) {
				assert.Equal(t, []string{defaultFeedback}, e.Feedback)
				assert.Contains(t, e.IdealAnswer, "Gopher responsibilities")
				assert.Equal(t, defaultScore, e.Score)
				assert.False(t, e.Fallback)
			},
		},
		{
			name:  "object recovered from prose",
			reply: "Sure! Here it is: {\"feedback\":[\"good\"],\"idealAnswer\":\"y\",\"score\":9} Hope that helps.",
			check: func(t *testing.T, e domain.Evaluation) {
				assert.Equal(t, 9, e.Score)
				assert.Equal(t, "y", e.IdealAnswer)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := completerFunc(func(_ context.Context, req domain.CompletionRequest) (string, error) {
				assert.True(t, req.JSON)
				assert.EqualValues(t, 800, req.MaxOutputTokens)
				return tc.reply, nil
			})
			svc, _ := newTestService(t, c)
			eval, err := svc.Evaluate(context.Background(), EvaluateRequest{Question: "q", Answer: "a", Role: "Gopher"})
			require.NoError(t, err)
			tc.check(t, eval)
		})
	}
}

func TestEvaluate_SessionRules(t *testing.T) {
	svc, store := newTestService(t, scriptedInterviewer(7))
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, EvaluateRequest{Question: "q", Answer: "a", SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	var verr *domain.ValidationError
	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: " ", Answer: "a"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "question", verr.Field)

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)
	id := turn.SessionID

	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: "q", Answer: "a", SessionID: id, QuestionNumber: 2})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: "q", Answer: "a", SessionID: id, QuestionNumber: 1})
	require.NoError(t, err)
	checkInvariant(t, store, id)

	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: "q", Answer: "again", SessionID: id, QuestionNumber: 1})
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: "q", Answer: "a", SessionID: id})
	assert.ErrorAs(t, err, &verr, "slot 2 not asked yet")

	s, err := store.Get(id)
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Answers, 1)
}

func TestEvaluate_StatelessStoresNothing(t *testing.T) {
	svc, store := newTestService(t, scriptedInterviewer(7))
	_, err := svc.Evaluate(context.Background(), EvaluateRequest{Question: "q", Answer: "a", Role: "r", QuestionNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestSummarize_Idempotent(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(t, downCompleter(), func(o *Options) { o.Publisher = pub })
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: turn.Question, Answer: "a", SessionID: turn.SessionID})
	require.NoError(t, err)

	first, err := svc.Summarize(ctx, turn.SessionID)
	require.NoError(t, err)
	second, err := svc.Summarize(ctx, turn.SessionID)
	require.NoError(t, err)

	assert.Equal(t, first.SessionDetails.AverageScore, second.SessionDetails.AverageScore)
	assert.Equal(t, 1, second.SessionDetails.QuestionsAnswered)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, pub.count())
}

func TestSummarize_NoAnswers(t *testing.T) {
	svc, _ := newTestService(t, downCompleter())
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, turn.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.SessionDetails.AverageScore)
	assert.Equal(t, 0, summary.SessionDetails.QuestionsAnswered)
	assert.Equal(t, domain.RatingNeedsImprovement, summary.OverallRating)
	assert.Equal(t, []string{}, summary.KeyStrengths)
	assert.Equal(t, []domain.QuestionDetail{}, summary.QuestionDetails)
}

func TestSummarize_UnknownAndMissing(t *testing.T) {
	svc, _ := newTestService(t, downCompleter())

	_, err := svc.Summarize(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	var verr *domain.ValidationError
	_, err = svc.Summarize(context.Background(), "")
	assert.ErrorAs(t, err, &verr)
}

func TestSummarize_UnrecognizedRatingReplaced(t *testing.T) {
	c := completerFunc(func(_ context.Context, req domain.CompletionRequest) (string, error) {
		if strings.Contains(req.Prompt, "interview summary") {
			return `{"overallRating":"Stellar","summary":"Great","keyStrengths":"Focus"}`, nil
		}
		if strings.Contains(req.Prompt, "expert interviewer") {
			return `{"score":9}`, nil
		}
		return "Q?", nil
	})
	svc, _ := newTestService(t, c)
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, EvaluateRequest{Question: turn.Question, Answer: "a", SessionID: turn.SessionID})
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, turn.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingExcellent, summary.OverallRating)
	assert.Equal(t, "Great", summary.Summary)
	assert.Equal(t, []string{"Focus"}, summary.KeyStrengths)
	assert.Equal(t, "Consider for next round", summary.Recommendation)
	assert.False(t, summary.Fallback)
}

func TestSummarize_SchedulesEviction(t *testing.T) {
	svc, store := newTestService(t, downCompleter(), func(o *Options) { o.EvictAfter = 30 * time.Millisecond })
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)
	_, err = svc.Summarize(ctx, turn.SessionID)
	require.NoError(t, err)

	_, err = store.Get(turn.SessionID)
	require.NoError(t, err, "still readable right after the summary")

	assert.Eventually(t, func() bool {
		_, err := store.Get(turn.SessionID)
		return errors.Is(err, domain.ErrSessionNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestSummarize_DurationInMinutes(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc, store := newTestService(t, downCompleter(), func(o *Options) { o.Now = func() time.Time { return clock } })
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)
	s, err := store.Get(turn.SessionID)
	require.NoError(t, err)

	clock = s.StartedAt.Add(14*time.Minute + 40*time.Second)
	summary, err := svc.Summarize(ctx, turn.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 15, summary.SessionDetails.Duration)
}

func TestStart_ConcurrentOnOneSession(t *testing.T) {
	var gate sync.WaitGroup
	gate.Add(2)
	calls := 0
	var mu sync.Mutex
	c := completerFunc(func(context.Context, domain.CompletionRequest) (string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n > 1 {
			gate.Done()
			gate.Wait()
		}
		return "Q", nil
	})
	svc, store := newTestService(t, c)
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Start(ctx, StartRequest{SessionID: turn.SessionID})
			errs <- err
		}()
	}
	var conflicts, ok int
	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			ok++
		} else if errors.Is(err, domain.ErrSlotConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
	checkInvariant(t, store, turn.SessionID)

	s, err := store.Get(turn.SessionID)
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Questions, 2)
}

func TestEvict(t *testing.T) {
	svc, _ := newTestService(t, scriptedInterviewer(7))
	ctx := context.Background()

	turn, err := svc.Start(ctx, StartRequest{Role: "r", Type: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.ActiveSessions())

	ok, err := svc.Evict(turn.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, svc.ActiveSessions())

	_, err = svc.Start(ctx, StartRequest{SessionID: turn.SessionID})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
